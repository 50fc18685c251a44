package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/atinylittleshell/gsuggest/internal/catalog"
	"github.com/atinylittleshell/gsuggest/internal/lookup"
	"go.uber.org/zap"
)

// Handler answers GET <path>?matching=<query> with a JSON array of entries.
type Handler struct {
	Matcher catalog.Matcher
	Limit   int
	Logger  *zap.Logger
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	start := time.Now()
	query := r.URL.Query().Get(lookup.QueryParam)

	entries := []catalog.Entry{}
	if query != "" {
		var err error
		entries, err = h.Matcher.Match(query, h.Limit)
		if err != nil {
			h.Logger.Error("match failed", zap.String("query", query), zap.Error(err))
			http.Error(w, "lookup failed", http.StatusInternalServerError)
			return
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(entries); err != nil {
		h.Logger.Warn("writing response failed", zap.Error(err))
		return
	}

	h.Logger.Debug(
		"served lookup",
		zap.String("query", query),
		zap.Int("count", len(entries)),
		zap.Duration("elapsed", time.Since(start)),
	)
}

// Server serves a Handler at a single path.
type Server struct {
	httpServer *http.Server
	logger     *zap.Logger
}

func New(addr string, basePath string, handler *Handler, logger *zap.Logger) *Server {
	mux := http.NewServeMux()
	mux.Handle(basePath, handler)

	return &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
		logger: logger,
	}
}

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("lookup server listening", zap.String("addr", s.httpServer.Addr))
		errCh <- s.httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.logger.Info("lookup server shutting down")
		return s.httpServer.Shutdown(shutdownCtx)
	}
}
