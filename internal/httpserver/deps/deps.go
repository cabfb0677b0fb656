package deps

import (
	"context"
	"time"

	"github.com/MrSnakeDoc/webclipper/internal/coordinator"
	"github.com/MrSnakeDoc/webclipper/internal/extension"
	"github.com/MrSnakeDoc/webclipper/internal/logger"
	"github.com/MrSnakeDoc/webclipper/internal/notify"
	"github.com/MrSnakeDoc/webclipper/internal/state"
)

// Pinger reports whether the durable store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Executor runs coordinator commands and waits for their result.
type Executor interface {
	Execute(ctx context.Context, cmd coordinator.Command) (any, error)
}

type Deps struct {
	Logger         logger.Logger
	StartTime      time.Time
	Version        string
	Commit         string
	BuildDate      string
	GoVersion      string
	AllowedHosts   []string            // Host headers allowed to access the API
	AllowedOrigins []string            // CORS origins (browser extensions) allowed to call the API
	AllowedCIDRS   []string            // IPs allowed to access the server
	TrustProxy     bool                // true if running behind a trusted reverse proxy (e.g., cloudflared)
	RateBurst      int                 // per-client burst on /api
	RateRefill     int                 // per-client refill per minute on /api
	Store          Pinger              // durable store, probed by /readyz
	State          *state.Store        // application state
	Registry       *extension.Registry // compiled-in extensions
	Coordinator    Executor            // runs commands
	Notifications  *notify.Hub         // recent user notifications
	ReloadTrigger  chan struct{}       // Channel to trigger manual manifest reload
}
