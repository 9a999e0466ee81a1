// Package remote carries boundary crossings over a websocket, so the engine
// can live in another process. Each Call travels as one JSON text message and
// is answered by exactly one response message.
package remote

import "github.com/Faultbox/scenelink/pkg/boundary"

// request is the client -> server message.
type request struct {
	Seq  uint64        `json:"seq"`
	Call boundary.Call `json:"call"`
}

// response is the server -> client message. Code is empty on success.
type response struct {
	Seq   uint64         `json:"seq"`
	Reply boundary.Reply `json:"reply"`
	Code  string         `json:"code,omitempty"`
	Error string         `json:"error,omitempty"`
}

func newResponse(seq uint64, reply boundary.Reply, err error) response {
	resp := response{Seq: seq, Reply: reply}
	if err != nil {
		resp.Code = boundary.Code(err)
		resp.Error = err.Error()
	}
	return resp
}

func (r response) result() (boundary.Reply, error) {
	if r.Code != "" {
		return boundary.Reply{}, boundary.FromCode(r.Code, r.Error)
	}
	return r.Reply, nil
}
