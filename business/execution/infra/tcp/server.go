// Package tcp implements the engine's TCP transport: a listener that
// accepts connections indefinitely and runs one handler goroutine per
// connection.
package tcp

import (
	"context"
	"errors"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/fd1az/funding-engine/business/execution/app"
	"github.com/fd1az/funding-engine/internal/logger"
	"github.com/fd1az/funding-engine/internal/metrics"
)

// Config holds the TCP server settings.
type Config struct {
	ListenAddr        string
	MaxFrameBytes     int
	RequestTimeout    time.Duration // 0 = no per-request timeout
	IdleTimeout       time.Duration // 0 = no idle timeout
	RequestsPerMinute int           // 0 = unlimited
}

// Server accepts client connections and dispatches their requests to
// the engine. A stuck handler never blocks the accept loop, and a
// failed connection never affects the others.
type Server struct {
	cfg         Config
	engine      *app.Engine
	reporter    app.Reporter
	log         logger.LoggerInterface
	instruments *metrics.EngineInstruments

	listener net.Listener
	conns    map[net.Conn]struct{}
	connsMu  sync.Mutex
	active   atomic.Int64
	wg       sync.WaitGroup
	closed   atomic.Bool
}

// NewServer creates a Server. The reporter may be nil.
func NewServer(
	cfg Config,
	engine *app.Engine,
	reporter app.Reporter,
	log logger.LoggerInterface,
	instruments *metrics.EngineInstruments,
) *Server {
	if reporter == nil {
		reporter = app.NewNopReporter()
	}
	return &Server{
		cfg:         cfg,
		engine:      engine,
		reporter:    reporter,
		log:         log,
		instruments: instruments,
		conns:       make(map[net.Conn]struct{}),
	}
}

// Start binds the listening socket and launches the accept loop.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.ListenAddr)
	if err != nil {
		return err
	}
	s.listener = ln

	s.log.Info(ctx, "tcp server listening", "addr", ln.Addr().String())

	s.wg.Add(1)
	go s.acceptLoop(ctx)

	return nil
}

// Addr returns the bound listener address. Valid after Start.
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Ready reports whether the listener is bound. Used as a health check.
func (s *Server) Ready(ctx context.Context) (bool, string) {
	if s.listener == nil || s.closed.Load() {
		return false, "listener not bound"
	}
	return true, ""
}

func (s *Server) acceptLoop(ctx context.Context) {
	defer s.wg.Done()

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}
			// Transient accept failures never bring the server down.
			s.log.Warn(ctx, "accept failed", "error", err)
			continue
		}

		s.track(conn)

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.serveConn(ctx, conn)
		}()
	}
}

func (s *Server) serveConn(ctx context.Context, conn net.Conn) {
	id := uuid.NewString()

	active := s.active.Add(1)
	s.instruments.ConnOpened(ctx)
	s.reporter.UpdateConnections(int(active))
	s.log.Info(ctx, "connection opened",
		"conn_id", id,
		"remote", conn.RemoteAddr().String(),
	)

	defer func() {
		s.untrack(conn)
		conn.Close()

		active := s.active.Add(-1)
		s.instruments.ConnClosed(ctx)
		s.reporter.UpdateConnections(int(active))
		s.log.Info(ctx, "connection closed", "conn_id", id)
	}()

	h := newHandler(s.cfg, conn, id, s.engine, s.log, s.instruments)
	h.run(ctx)
}

// Shutdown closes the listener, force-closes open connections and
// waits for all handlers to finish or the context to expire.
func (s *Server) Shutdown(ctx context.Context) error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}

	var err error
	if s.listener != nil {
		err = s.listener.Close()
	}

	s.connsMu.Lock()
	for conn := range s.conns {
		conn.Close()
	}
	s.connsMu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Server) track(conn net.Conn) {
	s.connsMu.Lock()
	s.conns[conn] = struct{}{}
	s.connsMu.Unlock()
}

func (s *Server) untrack(conn net.Conn) {
	s.connsMu.Lock()
	delete(s.conns, conn)
	s.connsMu.Unlock()
}
