package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/promptdex/promptdex/pipeline"
)

// serve exposes the published artifacts over HTTP: the dataset, its stats,
// and a liveness probe. Read-only; regeneration stays a batch concern.
func serve(ctx context.Context, cfg *pipeline.Config, logger *slog.Logger) error {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(15 * time.Second))

	r.Get("/prompts.json", serveFile(cfg.OutputPath, logger))
	r.Get("/stats.json", serveFile(cfg.StatsPath, logger))
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	srv := &http.Server{Addr: cfg.Listen, Handler: r}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("serving artifacts", "listen", cfg.Listen)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		logger.Info("server stopped")
		return nil
	}
}

// serveFile returns a handler for one artifact. A missing artifact is 404:
// the pipeline simply hasn't produced it yet.
func serveFile(path string, logger *slog.Logger) http.HandlerFunc {
	if logger == nil {
		logger = slog.Default()
	}
	return func(w http.ResponseWriter, r *http.Request) {
		data, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				http.Error(w, "not generated yet", http.StatusNotFound)
				return
			}
			logger.Error("serve artifact", "path", path, "error", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.Write(data)
	}
}
