// Package stream serves simulation runs over websockets, one fresh run per
// connection.
package stream

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"
	json "github.com/json-iterator/go"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/san-kum/loopsim/internal/dynamo"
	"github.com/san-kum/loopsim/internal/metrics"
)

const (
	writeWait       = 10 * time.Second
	shutdownTimeout = 5 * time.Second
	maxMessageSize  = 512
)

type MessageType string

const (
	MsgSample MessageType = "sample"
	MsgDone   MessageType = "done"
)

// Message is one websocket frame. Sample frames carry Sample; the final
// done frame carries the stop reason, launch and metrics.
type Message struct {
	Type    MessageType        `json:"type"`
	Sample  *dynamo.Sample     `json:"sample,omitempty"`
	Reason  *dynamo.StopReason `json:"reason,omitempty"`
	Launch  *dynamo.Launch     `json:"launch,omitempty"`
	Metrics map[string]float64 `json:"metrics,omitempty"`
}

type Server struct {
	params   dynamo.Params
	limit    rate.Limit
	logger   *zap.Logger
	upgrader websocket.Upgrader
}

// New builds a server running p for every client. samplesPerSecond <= 0
// disables pacing.
func New(p dynamo.Params, samplesPerSecond float64, logger *zap.Logger) (*Server, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	limit := rate.Inf
	if samplesPerSecond > 0 {
		limit = rate.Limit(samplesPerSecond)
	}
	return &Server{
		params: p,
		limit:  limit,
		logger: logger.Named("stream"),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}, nil
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}

// ListenAndServe blocks until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	httpServer := &http.Server{
		Handler:     s.Handler(),
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("stream server listening", zap.String("address", ln.Addr().String()))
		errCh <- httpServer.Serve(ln)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down stream server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("stream server shutdown", zap.Error(err))
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// paramsFor applies the optional v0 query override.
func (s *Server) paramsFor(r *http.Request) (dynamo.Params, error) {
	p := s.params
	if raw := r.URL.Query().Get("v0"); raw != "" {
		v0, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return p, fmt.Errorf("invalid v0 %q: %w", raw, err)
		}
		p.V0 = v0
	}
	return p, p.Validate()
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	p, err := s.paramsFor(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	sim, err := dynamo.New(p)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	ms := metrics.Standard(p)
	metrics.Attach(sim, ms)

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade", zap.Error(err))
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	readDone := make(chan struct{})
	go func() {
		defer close(readDone)
		s.readPump(conn, cancel)
	}()
	defer func() {
		conn.Close()
		<-readDone
	}()

	log := s.logger.With(zap.String("remote", r.RemoteAddr), zap.Float64("v0", p.V0))
	log.Info("client connected")

	limiter := rate.NewLimiter(s.limit, 1)
	err = sim.RunWithCallback(ctx, func(smp dynamo.Sample) bool {
		if err := limiter.Wait(ctx); err != nil {
			return false
		}
		if err := s.write(conn, Message{Type: MsgSample, Sample: &smp}); err != nil {
			log.Debug("write sample", zap.Error(err))
			cancel()
			return false
		}
		return true
	})
	if err != nil || ctx.Err() != nil {
		log.Info("client stream canceled", zap.Float64("t", sim.State().T))
		return
	}

	reason := sim.Reason()
	done := Message{Type: MsgDone, Reason: &reason, Metrics: make(map[string]float64)}
	if l, ok := sim.Launch(); ok {
		done.Launch = &l
	}
	for _, m := range ms {
		done.Metrics[m.Name()] = m.Value()
	}
	if err := s.write(conn, done); err != nil {
		log.Debug("write done", zap.Error(err))
		return
	}
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, reason.String()),
		time.Now().Add(writeWait))
	log.Info("client stream finished", zap.Stringer("reason", reason), zap.Int("samples", sim.State().Step))
}

// readPump discards client frames and cancels the run once the peer goes
// away.
func (s *Server) readPump(conn *websocket.Conn, cancel context.CancelFunc) {
	conn.SetReadLimit(maxMessageSize)
	for {
		if _, _, err := conn.NextReader(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Debug("websocket closed unexpectedly", zap.Error(err))
			}
			cancel()
			return
		}
	}
}

func (s *Server) write(conn *websocket.Conn, msg Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return conn.WriteMessage(websocket.TextMessage, data)
}
