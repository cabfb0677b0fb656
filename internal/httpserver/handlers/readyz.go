package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/webclipper/internal/httpserver/deps"
	"github.com/MrSnakeDoc/webclipper/internal/logger"
)

const readyzTimeout = 2 * time.Second

type componentStatus struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

type readyzResponse struct {
	Ready      bool                       `json:"ready"`
	Components map[string]componentStatus `json:"components"`
}

// Readyz reports ready only when redis answers a ping.
func Readyz(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		redis := checkStore(r.Context(), d)

		resp := readyzResponse{
			Ready:      redis.OK,
			Components: map[string]componentStatus{"redis": redis},
		}

		status := http.StatusOK
		if !resp.Ready {
			d.Logger.Warn("readiness check failed", logger.String("redis", redis.Error))
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, resp)
	}
}

func checkStore(ctx context.Context, d deps.Deps) componentStatus {
	if d.Store == nil {
		return componentStatus{OK: false, Error: "client not initialized"}
	}

	ctx, cancel := context.WithTimeout(ctx, readyzTimeout)
	defer cancel()

	if err := d.Store.Ping(ctx); err != nil {
		return componentStatus{OK: false, Error: err.Error()}
	}
	return componentStatus{OK: true}
}
