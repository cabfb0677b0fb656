package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/MrSnakeDoc/webclipper/internal/domain"
	"github.com/MrSnakeDoc/webclipper/internal/logger"
	"github.com/MrSnakeDoc/webclipper/internal/manifest"
)

// Arranger is the registry side of a manifest reload.
type Arranger interface {
	Arrange(order []string, disabled []string)
	Metas() []domain.ExtensionMeta
}

// ManifestState receives what a reload publishes.
type ManifestState interface {
	SetExtensions(metas []domain.ExtensionMeta)
	SetServicesMeta(meta map[string]domain.ServiceMeta)
}

// ManifestReloader handles periodic reloading of the clipper manifest
type ManifestReloader struct {
	loader        *manifest.Loader
	registry      Arranger
	state         ManifestState
	logger        logger.Logger
	interval      time.Duration
	stopCh        chan struct{}
	stopOnce      sync.Once
	manualTrigger chan struct{}
	watchPath     string
}

// NewManifestReloader creates a new manifest reloader. A zero interval
// disables periodic reloads; manualTrigger still works.
func NewManifestReloader(
	manifestFile string,
	registry Arranger,
	st ManifestState,
	log logger.Logger,
	interval time.Duration,
	manualTrigger chan struct{},
) *ManifestReloader {
	return &ManifestReloader{
		loader:        manifest.NewLoader(manifestFile),
		registry:      registry,
		state:         st,
		logger:        log,
		interval:      interval,
		stopCh:        make(chan struct{}),
		manualTrigger: manualTrigger,
	}
}

// Start loads the manifest once, then keeps reloading it in the background
func (mr *ManifestReloader) Start(ctx context.Context) error {
	if err := mr.Reload(ctx); err != nil {
		return fmt.Errorf("initial reload failed: %w", err)
	}

	if mr.watchPath != "" {
		if err := mr.startWatch(ctx); err != nil {
			// Periodic and manual reloads still work.
			mr.logger.Warn("manifest file watch disabled", logger.Error(err))
		}
	}

	go func() {
		var tick <-chan time.Time
		if mr.interval > 0 {
			ticker := time.NewTicker(mr.interval)
			defer ticker.Stop()
			tick = ticker.C
		}

		for {
			select {
			case <-tick:
				if err := mr.Reload(ctx); err != nil {
					mr.logger.Error("failed to reload manifest",
						logger.Error(err))
				}
			case <-mr.manualTrigger:
				mr.logger.Info("manual reload triggered")
				if err := mr.Reload(ctx); err != nil {
					mr.logger.Error("failed to reload manifest",
						logger.Error(err))
				}
			case <-mr.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the reloader
func (mr *ManifestReloader) Stop() {
	mr.stopOnce.Do(func() { close(mr.stopCh) })
}

// Reload applies the manifest to the registry and publishes the result.
// A broken manifest leaves the previous arrangement in place.
func (mr *ManifestReloader) Reload(_ context.Context) error {
	mr.logger.Debug("reloading manifest")

	m, err := mr.loader.Load()
	if err != nil {
		return fmt.Errorf("failed to load manifest: %w", err)
	}

	mr.registry.Arrange(m.Order(), m.Disabled())
	metas := mr.registry.Metas()
	mr.state.SetExtensions(metas)
	mr.state.SetServicesMeta(m.Services)

	mr.logger.Info("manifest applied",
		logger.Int("extensions", len(metas)),
		logger.Int("services", len(m.Services)))

	return nil
}
