package ws

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// shutdownTimeout bounds the graceful HTTP shutdown.
const shutdownTimeout = 5 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Handler returns the HTTP handler serving the /ws endpoint for hub.
func Handler(hub *Hub, logger *zap.Logger) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Warn("upgrading websocket connection", zap.String("remote", r.RemoteAddr), zap.Error(err))
			return
		}
		client := NewClient(hub, conn)
		if !hub.join(client) {
			conn.Close()
			return
		}
		go client.WritePump()
		go client.ReadPump()
	})
	return mux
}

// Server runs the hub behind an HTTP listener.
type Server struct {
	addr   string
	hub    *Hub
	logger *zap.Logger

	mu       sync.Mutex
	http     *http.Server
	listener net.Listener
	cancel   context.CancelFunc
	hubDone  chan struct{}
}

// NewServer creates a Server listening on addr once started.
//
// Precondition: addr is a "host:port"; game and logger must be non-nil.
func NewServer(addr string, game Game, logger *zap.Logger) *Server {
	return &Server{addr: addr, hub: NewHub(game, logger), logger: logger}
}

// Hub returns the server's hub.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Addr returns the bound address once listening, otherwise the configured address.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.addr
}

// Start listens and serves until Stop. It blocks.
//
// Postcondition: Returns nil after Stop, or the listen error.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithCancel(context.Background())
	srv := &http.Server{Handler: Handler(s.hub, s.logger), ReadHeaderTimeout: 10 * time.Second}
	hubDone := make(chan struct{})

	s.mu.Lock()
	s.listener = ln
	s.http = srv
	s.cancel = cancel
	s.hubDone = hubDone
	s.mu.Unlock()

	go func() {
		s.hub.Run(ctx)
		close(hubDone)
	}()
	s.logger.Info("websocket server listening", zap.String("addr", ln.Addr().String()))
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		cancel()
		return err
	}
	return nil
}

// Stop closes every client and shuts the listener down.
func (s *Server) Stop() {
	s.mu.Lock()
	srv, cancel, hubDone := s.http, s.cancel, s.hubDone
	s.mu.Unlock()
	if srv == nil {
		return
	}
	cancel()
	<-hubDone
	ctx, done := context.WithTimeout(context.Background(), shutdownTimeout)
	defer done()
	if err := srv.Shutdown(ctx); err != nil {
		s.logger.Warn("websocket server shutdown", zap.Error(err))
	}
}
