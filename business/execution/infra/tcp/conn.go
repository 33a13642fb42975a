package tcp

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"
	"net"
	"time"

	"github.com/fd1az/funding-engine/business/execution/app"
	"github.com/fd1az/funding-engine/business/execution/domain"
	"github.com/fd1az/funding-engine/business/execution/infra/wire"
	"github.com/fd1az/funding-engine/internal/apperror"
	"github.com/fd1az/funding-engine/internal/logger"
	"github.com/fd1az/funding-engine/internal/metrics"
	"github.com/fd1az/funding-engine/internal/ratelimit"
)

// errFrameTooLarge marks a frame that exceeded the configured limit.
var errFrameTooLarge = apperror.New(apperror.CodeFrameTooLarge)

// handler runs one connection's read-decode-execute-encode-write loop.
// Requests on the same connection are processed strictly in arrival
// order. Messages are newline-delimited JSON; a partial final frame
// before EOF is still processed.
type handler struct {
	cfg         Config
	conn        net.Conn
	id          string
	engine      *app.Engine
	log         logger.LoggerInterface
	instruments *metrics.EngineInstruments
	limiter     *ratelimit.Limiter
	reader      *bufio.Reader
}

func newHandler(
	cfg Config,
	conn net.Conn,
	id string,
	engine *app.Engine,
	log logger.LoggerInterface,
	instruments *metrics.EngineInstruments,
) *handler {
	var limiter *ratelimit.Limiter
	if cfg.RequestsPerMinute > 0 {
		limiter = ratelimit.New(cfg.RequestsPerMinute)
	}

	return &handler{
		cfg:         cfg,
		conn:        conn,
		id:          id,
		engine:      engine,
		log:         log,
		instruments: instruments,
		limiter:     limiter,
		reader:      bufio.NewReader(conn),
	}
}

func (h *handler) run(ctx context.Context) {
	for {
		if h.cfg.IdleTimeout > 0 {
			h.conn.SetReadDeadline(time.Now().Add(h.cfg.IdleTimeout))
		}

		frame, resync, err := h.readFrame()

		switch {
		case errors.Is(err, errFrameTooLarge):
			// Answer first. Only a frame abandoned mid-read needs a
			// discard to the next delimiter; a frame that completed
			// past the limit already consumed its delimiter.
			h.instruments.RecordDecodeError(ctx)
			if werr := h.write(ctx, domain.Failure(err)); werr != nil {
				return
			}
			if resync {
				if derr := h.discardFrame(); derr != nil {
					return
				}
			}
			continue

		case errors.Is(err, io.EOF):
			// Orderly peer shutdown. A partial frame without a final
			// delimiter still gets an answer.
			if len(frame) > 0 {
				h.handleFrame(ctx, frame)
			}
			return

		case err != nil:
			// Read failure is fatal for this connection only.
			h.log.Warn(ctx, "read failed", "conn_id", h.id, "error", err)
			return
		}

		if len(frame) == 0 {
			// Blank line between messages; nothing to answer.
			continue
		}

		if !h.handleFrame(ctx, frame) {
			return
		}
	}
}

// handleFrame decodes and executes one frame. Returns false when the
// connection must be torn down (write failure).
func (h *handler) handleFrame(ctx context.Context, frame []byte) bool {
	// Over-limit requests are answered, not queued; the connection
	// stays open.
	if h.limiter != nil && !h.limiter.Allow() {
		err := apperror.New(apperror.CodeRateLimitExceeded)
		return h.write(ctx, domain.Failure(err)) == nil
	}

	req, err := wire.DecodeRequest(frame)
	if err != nil {
		// Malformed payloads do not close the connection; the caller
		// gets a parseable error response and the loop continues.
		h.instruments.RecordDecodeError(ctx)
		h.log.Warn(ctx, "decode failed", "conn_id", h.id, "error", err)
		return h.write(ctx, domain.Failure(err)) == nil
	}

	reqCtx := ctx
	if h.cfg.RequestTimeout > 0 {
		var cancel context.CancelFunc
		reqCtx, cancel = context.WithTimeout(ctx, h.cfg.RequestTimeout)
		defer cancel()
	}

	resp := h.engine.Execute(reqCtx, req)

	return h.write(ctx, resp) == nil
}

func (h *handler) write(ctx context.Context, resp domain.Response) error {
	data, err := wire.EncodeResponse(resp)
	if err != nil {
		h.log.Error(ctx, "encode failed", "conn_id", h.id, "error", err)
		return err
	}

	if _, err := h.conn.Write(append(data, '\n')); err != nil {
		h.log.Warn(ctx, "write failed", "conn_id", h.id, "error", err)
		return err
	}
	return nil
}

// readFrame reads one newline-delimited frame, bounded by
// MaxFrameBytes. The returned frame has the delimiter stripped. The
// resync result reports whether the stream was left mid-frame: true
// only when the limit was exceeded before a delimiter was seen; a
// frame that completed past the limit has already consumed its
// delimiter and needs no discard.
func (h *handler) readFrame() ([]byte, bool, error) {
	var frame []byte
	for {
		chunk, err := h.reader.ReadSlice('\n')
		frame = append(frame, chunk...)

		if err == nil {
			break
		}
		if errors.Is(err, bufio.ErrBufferFull) {
			if len(frame) > h.cfg.MaxFrameBytes {
				return nil, true, errFrameTooLarge
			}
			continue
		}
		return trimFrame(frame), false, err
	}

	if len(frame) > h.cfg.MaxFrameBytes+1 {
		return nil, false, errFrameTooLarge
	}
	return trimFrame(frame), false, nil
}

// discardFrame drops the remainder of an oversized frame. Each read is
// re-armed with the idle deadline so a peer stalling mid-frame cannot
// hold the handler past it.
func (h *handler) discardFrame() error {
	for {
		if h.cfg.IdleTimeout > 0 {
			h.conn.SetReadDeadline(time.Now().Add(h.cfg.IdleTimeout))
		}
		_, err := h.reader.ReadSlice('\n')
		if err == nil {
			return nil
		}
		if errors.Is(err, bufio.ErrBufferFull) {
			continue
		}
		return err
	}
}

func trimFrame(frame []byte) []byte {
	frame = bytes.TrimSuffix(frame, []byte("\n"))
	frame = bytes.TrimSuffix(frame, []byte("\r"))
	return bytes.TrimSpace(frame)
}
