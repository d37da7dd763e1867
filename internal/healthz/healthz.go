// Package healthz runs a small liveness endpoint next to the bot.
package healthz

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
)

// NormalizeListen turns a bare port ("8080" or ":8080") into a listen
// address; empty input means the server stays off.
func NormalizeListen(listen string) string {
	listen = strings.TrimSpace(listen)
	if listen == "" {
		return ""
	}
	if !strings.Contains(listen, ":") {
		return ":" + listen
	}
	return listen
}

// Start serves GET /healthz until ctx ends. The returned server is already
// listening; Shutdown is wired to context cancellation.
func Start(ctx context.Context, logger *slog.Logger, listen, component string) (*http.Server, error) {
	r := chi.NewRouter()
	started := time.Now().UTC()
	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status":    "ok",
			"component": component,
			"uptime":    time.Since(started).Round(time.Second).String(),
		})
	})

	srv := &http.Server{Addr: listen, Handler: r}
	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// Give the listener a beat to fail fast on a bad address.
	select {
	case err := <-errCh:
		return nil, err
	case <-time.After(50 * time.Millisecond):
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("health_server_shutdown_error", "error", err.Error())
		}
	}()

	logger.Info("health_server_start", "addr", listen, "component", component)
	return srv, nil
}
