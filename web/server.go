package web

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"markestedt/ahkgen/session"
	"markestedt/ahkgen/storage"
)

//go:embed static/*
var staticFiles embed.FS

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // the builder is only served on localhost
	},
}

// Server serves the sequence builder UI and its JSON API
type Server struct {
	session *session.Session
	db      *storage.DB
	port    int
	hub     *Hub
}

// NewServer creates a web server for sess. db may be nil when history is disabled.
func NewServer(sess *session.Session, db *storage.DB, port int) *Server {
	hub := NewHub()
	go hub.Run()

	s := &Server{
		session: sess,
		db:      db,
		port:    port,
		hub:     hub,
	}
	sess.Subscribe(s.onSessionEvent)
	return s
}

// URL returns the address the builder is reachable at
func (s *Server) URL() string {
	return fmt.Sprintf("http://localhost:%d", s.port)
}

// Handler returns the HTTP routes
func (s *Server) Handler() (http.Handler, error) {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/options", s.handleOptions)
	mux.HandleFunc("GET /api/sequence", s.handleGetSequence)
	mux.HandleFunc("POST /api/sequence", s.handleAddAction)
	mux.HandleFunc("DELETE /api/sequence", s.handleClearSequence)
	mux.HandleFunc("DELETE /api/sequence/{index}", s.handleRemoveAction)
	mux.HandleFunc("POST /api/sequence/{index}/up", s.handleMoveUp)
	mux.HandleFunc("POST /api/sequence/{index}/down", s.handleMoveDown)
	mux.HandleFunc("POST /api/translate", s.handleTranslate)
	mux.HandleFunc("GET /api/preview", s.handlePreview)
	mux.HandleFunc("POST /api/generate", s.handleGenerate)
	mux.HandleFunc("GET /api/history", s.handleGetHistory)
	mux.HandleFunc("DELETE /api/history/{id}", s.handleDeleteHistory)
	mux.HandleFunc("GET /api/stats", s.handleStats)
	mux.HandleFunc("/api/config", s.handleConfig)
	mux.HandleFunc("GET /api/status", s.handleStatus)
	mux.HandleFunc("/ws", s.handleWebSocket)

	staticFS, err := fs.Sub(staticFiles, "static")
	if err != nil {
		return nil, fmt.Errorf("failed to load static files: %w", err)
	}
	mux.Handle("/", http.FileServer(http.FS(staticFS)))

	return mux, nil
}

// Listen binds the builder port so address conflicts surface before
// anything else starts
func (s *Server) Listen() (net.Listener, error) {
	ln, err := net.Listen("tcp", fmt.Sprintf("localhost:%d", s.port))
	if err != nil {
		return nil, fmt.Errorf("failed to listen on port %d: %w", s.port, err)
	}
	return ln, nil
}

// Serve serves on ln until ctx is cancelled
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	handler, err := s.Handler()
	if err != nil {
		ln.Close()
		return err
	}

	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Warn("Web server shutdown failed", "error", err)
		}
		s.hub.Stop()
	}()

	slog.Info("Starting web server", "addr", ln.Addr().String(), "url", s.URL())

	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("web server failed: %w", err)
	}
	return nil
}

// BroadcastStatus pushes a message for the builder pages to display
func (s *Server) BroadcastStatus(level, message string) {
	s.hub.BroadcastMessage(Message{
		Type: MessageTypeStatus,
		Data: problem{Level: level, Message: message},
	})
}

func (s *Server) onSessionEvent(evt session.Event) {
	switch evt.Type {
	case session.SequenceChanged:
		s.hub.BroadcastMessage(Message{
			Type: MessageTypeSequence,
			Data: sequenceResponse{Actions: evt.Actions},
		})
	case session.ScriptGenerated:
		s.hub.BroadcastMessage(Message{
			Type: MessageTypeGenerated,
			Data: evt.Export,
		})
	case session.GenerateFailed:
		p := generateProblem(evt.Err)
		s.BroadcastStatus(p.Level, p.Message)
	}
}

// handleWebSocket handles WebSocket connections
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("Failed to upgrade WebSocket connection", "error", err)
		return
	}

	client := &Client{
		hub:  s.hub,
		conn: conn,
		send: make(chan []byte, 256),
	}

	select {
	case s.hub.register <- client:
	case <-s.hub.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}
