// Package ws implements an optional WebSocket transport for the
// engine. It shares the wire codec with the TCP transport: one request
// message in, one response message out, per connection in order.
package ws

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"

	"github.com/fd1az/funding-engine/business/execution/app"
	"github.com/fd1az/funding-engine/business/execution/domain"
	"github.com/fd1az/funding-engine/business/execution/infra/wire"
	"github.com/fd1az/funding-engine/internal/logger"
	"github.com/fd1az/funding-engine/internal/metrics"
)

// Config holds the WebSocket server settings.
type Config struct {
	ListenAddr     string
	MaxFrameBytes  int
	RequestTimeout time.Duration // 0 = no per-request timeout
}

// Server serves the engine over WebSocket.
type Server struct {
	cfg         Config
	engine      *app.Engine
	log         logger.LoggerInterface
	instruments *metrics.EngineInstruments
	httpServer  *http.Server
	listener    net.Listener
}

// NewServer creates a WebSocket Server.
func NewServer(cfg Config, engine *app.Engine, log logger.LoggerInterface, instruments *metrics.EngineInstruments) *Server {
	s := &Server{
		cfg:         cfg,
		engine:      engine,
		log:         log,
		instruments: instruments,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/execute", s.handleUpgrade)

	s.httpServer = &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return s
}

// Start binds the listener and serves until Shutdown.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.ListenAddr)
	if err != nil {
		return err
	}
	s.listener = ln

	s.log.Info(ctx, "websocket server listening", "addr", ln.Addr().String())

	go func() {
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error(ctx, "websocket server stopped", "error", err)
		}
	}()

	return nil
}

// Addr returns the bound listener address. Valid after Start.
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Shutdown gracefully stops accepting upgrades and closes sessions.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleUpgrade(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		s.log.Warn(r.Context(), "websocket accept failed", "error", err)
		return
	}

	if s.cfg.MaxFrameBytes > 0 {
		conn.SetReadLimit(int64(s.cfg.MaxFrameBytes))
	}

	id := uuid.NewString()
	ctx := r.Context()

	s.instruments.ConnOpened(ctx)
	s.log.Info(ctx, "websocket session opened", "conn_id", id, "remote", r.RemoteAddr)

	defer func() {
		s.instruments.ConnClosed(ctx)
		conn.Close(websocket.StatusNormalClosure, "")
		s.log.Info(ctx, "websocket session closed", "conn_id", id)
	}()

	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			// Peer closure or transport failure ends this session only.
			return
		}

		resp := s.process(ctx, data)

		out, err := wire.EncodeResponse(resp)
		if err != nil {
			s.log.Error(ctx, "encode failed", "conn_id", id, "error", err)
			return
		}

		if err := conn.Write(ctx, websocket.MessageText, out); err != nil {
			return
		}
	}
}

func (s *Server) process(ctx context.Context, data []byte) domain.Response {
	req, err := wire.DecodeRequest(data)
	if err != nil {
		s.instruments.RecordDecodeError(ctx)
		return domain.Failure(err)
	}

	if s.cfg.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.RequestTimeout)
		defer cancel()
	}

	return s.engine.Execute(ctx, req)
}
