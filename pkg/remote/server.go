package remote

import (
	"context"
	"net/http"
	"sync/atomic"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/Faultbox/scenelink/pkg/boundary"
)

// Server exposes an engine over websocket connections. The engine is only
// ever touched by the goroutine running Run; connection handlers queue their
// calls to it, so any number of clients can share one engine.
type Server struct {
	engine   boundary.Boundary
	upgrader websocket.Upgrader
	log      *zap.Logger

	jobs    chan job
	stopped chan struct{}
	clients atomic.Int32
}

type job struct {
	call boundary.Call
	done chan response
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithServerLogger sets the logger for connection lifecycle events.
func WithServerLogger(log *zap.Logger) ServerOption {
	return func(s *Server) {
		if log != nil {
			s.log = log
		}
	}
}

// WithCheckOrigin overrides the upgrader's origin check.
func WithCheckOrigin(check func(r *http.Request) bool) ServerOption {
	return func(s *Server) {
		s.upgrader.CheckOrigin = check
	}
}

// NewServer creates a server for engine. Nothing is served until Run is
// running and the server is mounted on an http.Server.
func NewServer(engine boundary.Boundary, opts ...ServerOption) *Server {
	s := &Server{
		engine:  engine,
		log:     zap.NewNop(),
		jobs:    make(chan job),
		stopped: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Clients returns the number of open connections.
func (s *Server) Clients() int {
	return int(s.clients.Load())
}

// Run executes queued calls against the engine until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	defer close(s.stopped)
	s.log.Info("engine loop started")
	for {
		select {
		case <-ctx.Done():
			s.log.Info("engine loop stopped")
			return nil
		case j := <-s.jobs:
			reply, err := s.engine.Cross(j.call)
			j.done <- newResponse(0, reply, err)
		}
	}
}

// exec hands call to the engine goroutine and waits for the result.
func (s *Server) exec(ctx context.Context, seq uint64, call boundary.Call) response {
	j := job{call: call, done: make(chan response, 1)}
	select {
	case s.jobs <- j:
	case <-s.stopped:
		return newResponse(seq, boundary.Reply{}, boundary.ErrClosed)
	case <-ctx.Done():
		return newResponse(seq, boundary.Reply{}, boundary.ErrClosed)
	}
	resp := <-j.done
	resp.Seq = seq
	return resp
}

// ServeHTTP upgrades the request and serves calls until the client leaves.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("upgrade failed", zap.String("remote", r.RemoteAddr), zap.Error(err))
		return
	}
	defer conn.Close()

	n := s.clients.Add(1)
	defer s.clients.Add(-1)
	log := s.log.With(zap.String("remote", r.RemoteAddr))
	log.Info("client connected", zap.Int32("clients", n))

	for {
		var req request
		if err := conn.ReadJSON(&req); err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Info("client disconnected")
			} else {
				log.Warn("connection lost", zap.Error(err))
			}
			return
		}

		resp := s.exec(r.Context(), req.Seq, req.Call)
		if err := conn.WriteJSON(resp); err != nil {
			log.Warn("write failed", zap.String("op", string(req.Call.Op)), zap.Error(err))
			return
		}
	}
}
