// Package state holds the application state owned by the coordinator.
//
// Every mutation goes through a named reducer method on Store; readers get
// deep copies so they never observe a half-applied change.
package state

import (
	"maps"
	"sync"
	"time"

	"github.com/MrSnakeDoc/webclipper/internal/domain"
)

// Router is the current navigation location. There is exactly one.
type Router struct {
	Pathname string `json:"pathname"`
}

// ClipperState is the page being clipped and its captured content.
type ClipperState struct {
	Title               string                 `json:"title,omitempty"`
	URL                 string                 `json:"url,omitempty"`
	CurrentAccountID    string                 `json:"currentAccountId"`
	LoadingRepositories bool                   `json:"loadingRepositories"`
	Repositories        []domain.Repository    `json:"repositories"`
	CurrentRepository   *domain.Repository     `json:"currentRepository,omitempty"`
	ClipperData         map[string]domain.Clip `json:"clipperData"`
	CreatingDocument    bool                   `json:"creatingDocument"`
	CompleteStatus      *domain.CompleteStatus `json:"completeStatus,omitempty"`
}

// UserPreferenceState mirrors the durable preferences plus UI-only fields.
type UserPreferenceState struct {
	Accounts              []domain.Account              `json:"accounts"`
	DefaultPluginID       string                        `json:"defaultPluginId,omitempty"`
	DefaultAccountID      string                        `json:"defaultAccountId,omitempty"`
	ShowQuickResponseCode bool                          `json:"showQuickResponseCode"`
	ShowLineNumber        bool                          `json:"showLineNumber"`
	LiveRendering         bool                          `json:"liveRendering"`
	InitializeForm        domain.InitializeForm         `json:"initializeForm"`
	ServicesMeta          map[string]domain.ServiceMeta `json:"servicesMeta"`
	Extensions            []domain.ExtensionMeta        `json:"extensions"`
}

// RunRecord is the latest outcome of an extension run.
type RunRecord struct {
	RunID      string    `json:"runId"`
	Result     any       `json:"result"`
	Pathname   string    `json:"pathname"`
	FinishedAt time.Time `json:"finishedAt"`
}

// AppState is a point-in-time copy of everything.
type AppState struct {
	Router         Router               `json:"router"`
	Clipper        ClipperState         `json:"clipper"`
	UserPreference UserPreferenceState  `json:"userPreference"`
	ExtensionRuns  map[string]RunRecord `json:"extensionRuns"`
}

// Store is the single owner of AppState.
type Store struct {
	mu  sync.RWMutex
	s   AppState
	now func() time.Time
}

// New creates an empty store positioned on the root route.
func New() *Store {
	return &Store{
		s: AppState{
			Router: Router{Pathname: "/"},
			Clipper: ClipperState{
				ClipperData: make(map[string]domain.Clip),
			},
			UserPreference: UserPreferenceState{
				ServicesMeta: make(map[string]domain.ServiceMeta),
			},
			ExtensionRuns: make(map[string]RunRecord),
		},
		now: time.Now,
	}
}

// Snapshot returns a deep copy of the whole state.
func (st *Store) Snapshot() AppState {
	st.mu.RLock()
	defer st.mu.RUnlock()

	out := st.s
	out.Clipper.Repositories = append([]domain.Repository(nil), st.s.Clipper.Repositories...)
	if st.s.Clipper.CurrentRepository != nil {
		repo := *st.s.Clipper.CurrentRepository
		out.Clipper.CurrentRepository = &repo
	}
	if st.s.Clipper.CompleteStatus != nil {
		cs := *st.s.Clipper.CompleteStatus
		out.Clipper.CompleteStatus = &cs
	}
	out.Clipper.ClipperData = make(map[string]domain.Clip, len(st.s.Clipper.ClipperData))
	for k, v := range st.s.Clipper.ClipperData {
		out.Clipper.ClipperData[k] = copyClip(v)
	}
	out.UserPreference.Accounts = copyAccounts(st.s.UserPreference.Accounts)
	out.UserPreference.InitializeForm = copyForm(st.s.UserPreference.InitializeForm)
	out.UserPreference.ServicesMeta = maps.Clone(st.s.UserPreference.ServicesMeta)
	out.UserPreference.Extensions = append([]domain.ExtensionMeta(nil), st.s.UserPreference.Extensions...)
	out.ExtensionRuns = maps.Clone(st.s.ExtensionRuns)
	return out
}

func copyClip(c domain.Clip) domain.Clip {
	if c.Image != nil {
		img := *c.Image
		c.Image = &img
	}
	return c
}

func copyAccount(a domain.Account) domain.Account {
	a.Info = maps.Clone(a.Info)
	return a
}

func copyAccounts(in []domain.Account) []domain.Account {
	if in == nil {
		return nil
	}
	out := make([]domain.Account, len(in))
	for i, a := range in {
		out[i] = copyAccount(a)
	}
	return out
}

func copyForm(f domain.InitializeForm) domain.InitializeForm {
	f.Info = maps.Clone(f.Info)
	f.Repositories = append([]domain.Repository(nil), f.Repositories...)
	if f.UserInfo != nil {
		u := *f.UserInfo
		f.UserInfo = &u
	}
	return f
}
