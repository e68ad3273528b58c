package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/gorilla/websocket"
	"github.com/lox/blackjackd/internal/blackjack"
	"github.com/lox/blackjackd/internal/protocol"
	"github.com/lox/blackjackd/internal/randutil"
)

// Server serves one blackjack session per websocket connection. Each session
// is private to its connection and serialized by the engine, so concurrent
// clients never share table state.
type Server struct {
	cfg      *Config
	upgrader websocket.Upgrader
	logger   *log.Logger
	clock    quartz.Clock

	baseSeed   int64
	sessionSeq int64

	mu          sync.RWMutex
	connections map[*Connection]struct{}

	ctx      context.Context
	cancel   context.CancelFunc
	listener net.Listener
	httpSrv  *http.Server
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithClock swaps the wall clock, letting tests drive the idle reaper.
func WithClock(clock quartz.Clock) ServerOption {
	return func(s *Server) { s.clock = clock }
}

// NewServer creates a websocket server. Sessions derive their shuffle seeds
// from baseSeed, so a fixed seed makes every connection's deals reproducible.
func NewServer(cfg *Config, logger *log.Logger, baseSeed int64, opts ...ServerOption) *Server {
	ctx, cancel := context.WithCancel(context.Background())

	s := &Server{
		cfg: cfg,
		upgrader: websocket.Upgrader{
			CheckOrigin:     func(r *http.Request) bool { return true },
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		logger:      logger.WithPrefix("server"),
		clock:       quartz.NewReal(),
		baseSeed:    baseSeed,
		connections: make(map[*Connection]struct{}),
		ctx:         ctx,
		cancel:      cancel,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start begins listening and serving. It returns once the listener is bound;
// use Addr to discover the bound address when the config port is 0.
func (s *Server) Start() error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/health", s.handleHealth)

	listener, err := net.Listen("tcp", s.cfg.Server.Address)
	if err != nil {
		return err
	}
	s.listener = listener
	s.httpSrv = &http.Server{Handler: mux}

	idle, err := s.cfg.ParsedIdleTimeout()
	if err != nil {
		return err
	}
	if idle > 0 {
		s.startReaper(idle)
	}

	s.logger.Info("listening", "addr", listener.Addr().String())

	go func() {
		if err := s.httpSrv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("serve failed", "error", err)
		}
	}()
	return nil
}

// Addr returns the bound listen address.
func (s *Server) Addr() string {
	if s.listener == nil {
		return s.cfg.Server.Address
	}
	return s.listener.Addr().String()
}

// Shutdown stops the server and closes all connections.
func (s *Server) Shutdown(ctx context.Context) error {
	s.cancel()

	s.mu.Lock()
	open := make([]*Connection, 0, len(s.connections))
	for conn := range s.connections {
		open = append(open, conn)
	}
	s.mu.Unlock()
	for _, conn := range open {
		_ = conn.Close()
	}

	if s.httpSrv != nil {
		return s.httpSrv.Shutdown(ctx)
	}
	return nil
}

// startReaper closes connections that have been idle longer than the timeout.
// The quartz clock is injectable so tests can advance time directly.
func (s *Server) startReaper(timeout time.Duration) {
	interval := timeout / 4
	if interval < time.Second {
		interval = time.Second
	}
	s.clock.TickerFunc(s.ctx, interval, func() error {
		s.sweepIdle(timeout)
		return nil
	}, "reaper")
}

// sweepIdle closes every connection whose last request is older than the
// timeout.
func (s *Server) sweepIdle(timeout time.Duration) {
	now := s.clock.Now("reaper")
	s.mu.RLock()
	var idle []*Connection
	for conn := range s.connections {
		if now.Sub(conn.LastActive()) > timeout {
			idle = append(idle, conn)
		}
	}
	s.mu.RUnlock()
	for _, conn := range idle {
		s.logger.Info("closing idle connection", "idle", now.Sub(conn.LastActive()).String())
		_ = conn.Close()
	}
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", "error", err)
		return
	}

	s.mu.Lock()
	s.sessionSeq++
	seed := s.baseSeed + s.sessionSeq
	s.mu.Unlock()

	sess, err := blackjack.NewSession(s.cfg.Rules(),
		blackjack.WithRNG(randutil.New(seed)),
		blackjack.WithLogger(s.logger),
	)
	if err != nil {
		s.logger.Error("session create failed", "error", err)
		_ = ws.Close()
		return
	}

	conn := NewConnection(ws, sess, s, s.logger)

	s.mu.Lock()
	s.connections[conn] = struct{}{}
	s.mu.Unlock()

	s.logger.Info("client connected", "remote", ws.RemoteAddr().String(), "seed", seed)
	conn.Start()
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

// removeConnection unregisters a closed connection.
func (s *Server) removeConnection(conn *Connection) {
	s.mu.Lock()
	delete(s.connections, conn)
	s.mu.Unlock()
}

// dispatch executes one request against a session and builds the response.
// Engine errors map onto the two wire error kinds; hit and stand on an idle
// table are informational no-ops rather than failures.
func (s *Server) dispatch(sess *blackjack.Session, req protocol.Request) protocol.Response {
	var (
		res *blackjack.Result
		err error
	)

	switch req.Op {
	case protocol.OpInitGame:
		cfg := blackjack.DefaultConfig()
		if req.Config != nil {
			cfg = *req.Config
		}
		err = sess.Reconfigure(cfg)
	case protocol.OpAddCredits:
		err = sess.AddCredits(req.Amount)
	case protocol.OpGetState:
		// Projection only.
	case protocol.OpReset:
		sess.Reset()
	case protocol.OpPlaceBet:
		res, err = sess.PlaceBet(req.Amount)
	case protocol.OpHit:
		res, err = sess.Hit()
	case protocol.OpStand:
		res, err = sess.Stand()
	case protocol.OpDoubleDown:
		res, err = sess.DoubleDown()
	default:
		state := sess.View()
		return protocol.Response{
			Op:    req.Op,
			State: &state,
			Error: &protocol.Error{Kind: protocol.ErrorKindValidation, Reason: "unknown operation"},
		}
	}

	state := sess.View()
	resp := protocol.Response{Op: req.Op, State: &state}

	if err != nil {
		if errors.Is(err, blackjack.ErrNoRound) && (req.Op == protocol.OpHit || req.Op == protocol.OpStand) {
			resp.Message = protocol.NoRoundMessage
			return resp
		}
		resp.Error = toWireError(err)
		return resp
	}

	resp.Message = protocol.Describe(req.Op, res)
	return resp
}

func toWireError(err error) *protocol.Error {
	var validation blackjack.ValidationError
	if errors.As(err, &validation) {
		return &protocol.Error{Kind: protocol.ErrorKindValidation, Reason: validation.Reason}
	}
	var state blackjack.StateError
	if errors.As(err, &state) {
		return &protocol.Error{Kind: protocol.ErrorKindState, Reason: state.Reason}
	}
	return &protocol.Error{Kind: protocol.ErrorKindState, Reason: err.Error()}
}
