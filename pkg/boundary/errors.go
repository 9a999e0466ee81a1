package boundary

import (
	"errors"
	"fmt"

	"github.com/Faultbox/scenelink/pkg/layers"
)

var (
	// ErrDanglingHandle is returned when a call names a node the engine no
	// longer holds. It is never swallowed: caller state and scene state have
	// diverged and only the caller can resynchronise.
	ErrDanglingHandle = errors.New("dangling handle")

	// ErrUnknownOp is returned for an Op the engine does not implement.
	ErrUnknownOp = errors.New("unknown op")

	// ErrBadCall is returned when a call's payload does not fit its Op.
	ErrBadCall = errors.New("bad call")

	// ErrNotCamera is returned when a camera-only op targets another kind.
	ErrNotCamera = errors.New("node is not a camera")

	// ErrHierarchy is returned for parent/child edits that would break the tree.
	ErrHierarchy = errors.New("invalid hierarchy change")

	// ErrClosed is returned by transports after Close.
	ErrClosed = errors.New("boundary closed")
)

// Dangling wraps ErrDanglingHandle with the offending id.
func Dangling(id NodeID) error {
	return fmt.Errorf("%w: node %d", ErrDanglingHandle, id)
}

var codes = []struct {
	code string
	err  error
}{
	{"dangling_handle", ErrDanglingHandle},
	{"unknown_op", ErrUnknownOp},
	{"bad_call", ErrBadCall},
	{"not_camera", ErrNotCamera},
	{"hierarchy", ErrHierarchy},
	{"closed", ErrClosed},
	{"invalid_layer", layers.ErrInvalidLayer},
}

// Code returns a stable wire code for err, or "internal" when err does not
// wrap a known sentinel. Code(nil) is "".
func Code(err error) string {
	if err == nil {
		return ""
	}
	for _, c := range codes {
		if errors.Is(err, c.err) {
			return c.code
		}
	}
	return "internal"
}

// FromCode rebuilds an error from a wire code and message so that errors.Is
// keeps working on the far side of a transport.
func FromCode(code, msg string) error {
	if code == "" {
		return nil
	}
	for _, c := range codes {
		if c.code == code {
			return &wireError{msg: msg, sentinel: c.err}
		}
	}
	return &wireError{msg: msg}
}

type wireError struct {
	msg      string
	sentinel error
}

func (e *wireError) Error() string { return e.msg }

func (e *wireError) Unwrap() error { return e.sentinel }
