package web

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
)

// NewRouter wires the spectator API.
func NewRouter(s *Service) *mux.Router {
	router := mux.NewRouter()
	router.Use(corsMiddleware)

	routes := []struct {
		path    string
		handler http.HandlerFunc
	}{
		{"/api/health", s.HealthHandler},
		{"/api/board", s.BoardHandler},
		{"/api/moves", s.MovesHandler},
	}
	for _, rt := range routes {
		router.HandleFunc(rt.path, rt.handler).Methods("GET", "OPTIONS")
		// Any other method on a known path is a write attempt.
		router.HandleFunc(rt.path, methodNotAllowed)
	}

	router.HandleFunc("/ws", s.WebSocketHandler)
	return router
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Allow", "GET, OPTIONS")
	http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// Server runs the spectator hub and HTTP listener together.
type Server struct {
	srv *http.Server
	hub *Hub
	svc *Service
}

func NewServer(host string, port int, s *Service) *Server {
	return &Server{
		srv: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", host, port),
			Handler:      NewRouter(s),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		hub: s.hub,
		svc: s,
	}
}

func (s *Server) Addr() string { return s.srv.Addr }

// ListenAndServe blocks until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	hubCtx, stopHub := context.WithCancel(ctx)
	defer stopHub()
	go s.hub.Run(hubCtx)

	errc := make(chan error, 1)
	go func() {
		s.svc.logger.Info().Str("addr", s.srv.Addr).Msg("Starting spectator server")
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err, ok := <-errc:
		if ok {
			return fmt.Errorf("spectator server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("spectator server shutdown: %w", err)
	}
	s.svc.logger.Info().Msg("Spectator server exited")
	return nil
}
