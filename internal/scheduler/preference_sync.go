package scheduler

import (
	"context"

	"github.com/MrSnakeDoc/webclipper/internal/domain"
	"github.com/MrSnakeDoc/webclipper/internal/logger"
)

// PreferenceSource is where durable preferences are read from.
type PreferenceSource interface {
	LoadPreferences(ctx context.Context) (domain.Preferences, error)
}

// PreferenceSink is hydrated with what was read.
type PreferenceSink interface {
	Hydrate(p domain.Preferences)
}

// PreferenceSyncer loads preferences from Redis into state on startup
type PreferenceSyncer struct {
	store  PreferenceSource
	state  PreferenceSink
	logger logger.Logger
}

// NewPreferenceSyncer creates a new preference syncer
func NewPreferenceSyncer(
	store PreferenceSource,
	st PreferenceSink,
	log logger.Logger,
) *PreferenceSyncer {
	return &PreferenceSyncer{
		store:  store,
		state:  st,
		logger: log,
	}
}

// Sync loads preferences and hydrates state
func (ps *PreferenceSyncer) Sync(ctx context.Context) error {
	ps.logger.Info("syncing preferences from redis")

	prefs, err := ps.store.LoadPreferences(ctx)
	if err != nil {
		return err
	}

	ps.state.Hydrate(prefs)

	if len(prefs.Accounts) == 0 {
		ps.logger.Info("no accounts found in redis")
		return nil
	}

	ps.logger.Info("synced preferences from redis",
		logger.Int("accounts", len(prefs.Accounts)),
		logger.String("default_account", prefs.DefaultAccountID))

	return nil
}
