package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/digi0/ACE/internal/pkg/response"
)

// Pinger is a dependency checked by /ready.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Health handles GET /health.
func Health(w http.ResponseWriter, r *http.Request) {
	response.OK(w, map[string]string{"status": "ok"})
}

// Ready returns the GET /ready handler. All components are pinged
// concurrently; the first failure makes the server not ready.
func Ready(components map[string]Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		g, gctx := errgroup.WithContext(ctx)
		for name, p := range components {
			g.Go(func() error {
				if err := p.Ping(gctx); err != nil {
					return fmt.Errorf("%s: %w", name, err)
				}
				return nil
			})
		}

		if err := g.Wait(); err != nil {
			response.JSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "error",
				"error":  err.Error(),
			})
			return
		}

		body := map[string]string{"status": "ok"}
		for name := range components {
			body[name] = "connected"
		}
		response.OK(w, body)
	}
}
