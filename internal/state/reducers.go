package state

import (
	"maps"

	"github.com/MrSnakeDoc/webclipper/internal/domain"
)

// ─────────────────────────────────────────────────────────────────
// Router & clipper
// ─────────────────────────────────────────────────────────────────

// SetRoute moves the router to pathname.
func (st *Store) SetRoute(pathname string) {
	st.mu.Lock()
	defer st.mu.Unlock()

	st.s.Router.Pathname = pathname
}

// Pathname returns the current route without copying the rest of the state.
func (st *Store) Pathname() string {
	st.mu.RLock()
	defer st.mu.RUnlock()

	return st.s.Router.Pathname
}

// SetPage records the title and URL of the page being clipped.
func (st *Store) SetPage(title, url string) {
	st.mu.Lock()
	defer st.mu.Unlock()

	st.s.Clipper.Title = title
	st.s.Clipper.URL = url
}

// SetClip stores the captured content for pathname.
func (st *Store) SetClip(pathname string, clip domain.Clip) {
	st.mu.Lock()
	defer st.mu.Unlock()

	st.s.Clipper.ClipperData[pathname] = copyClip(clip)
}

// CurrentClip returns the current route and its clip.
func (st *Store) CurrentClip() (pathname string, clip domain.Clip, ok bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()

	pathname = st.s.Router.Pathname
	clip, ok = st.s.Clipper.ClipperData[pathname]
	return pathname, copyClip(clip), ok
}

// CurrentAccount returns the selected account, falling back to the default one.
func (st *Store) CurrentAccount() (domain.Account, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()

	id := st.s.Clipper.CurrentAccountID
	if id == "" {
		id = st.s.UserPreference.DefaultAccountID
	}
	for _, a := range st.s.UserPreference.Accounts {
		if a.ID == id {
			return copyAccount(a), true
		}
	}
	return domain.Account{}, false
}

// CurrentAccountType is the type of the current account, or "".
func (st *Store) CurrentAccountType() string {
	a, ok := st.CurrentAccount()
	if !ok {
		return ""
	}
	return a.Type
}

// ─────────────────────────────────────────────────────────────────
// Extension runs
// ─────────────────────────────────────────────────────────────────

// RecordRun stores the latest outcome for an extension, replacing any earlier run.
// A clip result also replaces the clip of the route it ran on.
func (st *Store) RecordRun(name, runID, pathname string, result any) {
	st.mu.Lock()
	defer st.mu.Unlock()

	st.s.ExtensionRuns[name] = RunRecord{
		RunID:      runID,
		Result:     result,
		Pathname:   pathname,
		FinishedAt: st.now(),
	}
	if clip, ok := result.(domain.Clip); ok {
		st.s.Clipper.ClipperData[pathname] = copyClip(clip)
	}
}

// Run returns the latest run of an extension.
func (st *Store) Run(name string) (RunRecord, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()

	rec, ok := st.s.ExtensionRuns[name]
	return rec, ok
}

// SetExtensions publishes the registered extension list.
func (st *Store) SetExtensions(metas []domain.ExtensionMeta) {
	st.mu.Lock()
	defer st.mu.Unlock()

	st.s.UserPreference.Extensions = append([]domain.ExtensionMeta(nil), metas...)
}

// SetServicesMeta publishes how each account type is displayed.
func (st *Store) SetServicesMeta(meta map[string]domain.ServiceMeta) {
	st.mu.Lock()
	defer st.mu.Unlock()

	st.s.UserPreference.ServicesMeta = maps.Clone(meta)
	if st.s.UserPreference.ServicesMeta == nil {
		st.s.UserPreference.ServicesMeta = make(map[string]domain.ServiceMeta)
	}
}

// ─────────────────────────────────────────────────────────────────
// Preferences
// ─────────────────────────────────────────────────────────────────

// Hydrate loads the durable preferences, usually once at startup.
func (st *Store) Hydrate(p domain.Preferences) {
	st.mu.Lock()
	defer st.mu.Unlock()

	up := &st.s.UserPreference
	up.Accounts = copyAccounts(p.Accounts)
	up.DefaultAccountID = p.DefaultAccountID
	up.DefaultPluginID = p.DefaultPluginID
	up.ShowQuickResponseCode = p.ShowQuickResponseCode
	up.ShowLineNumber = p.ShowLineNumber
	up.LiveRendering = p.LiveRendering
	st.s.Clipper.CurrentAccountID = p.DefaultAccountID
}

// SetAccounts republishes the account list and default id read from storage.
func (st *Store) SetAccounts(accounts []domain.Account, defaultAccountID string) {
	st.mu.Lock()
	defer st.mu.Unlock()

	st.s.UserPreference.Accounts = copyAccounts(accounts)
	st.s.UserPreference.DefaultAccountID = defaultAccountID
	if !hasAccount(accounts, st.s.Clipper.CurrentAccountID) {
		st.s.Clipper.CurrentAccountID = defaultAccountID
	}
}

func hasAccount(accounts []domain.Account, id string) bool {
	for _, a := range accounts {
		if a.ID == id {
			return true
		}
	}
	return false
}

// SetDefaultAccountID selects id as both default and current account.
func (st *Store) SetDefaultAccountID(id string) {
	st.mu.Lock()
	defer st.mu.Unlock()

	st.s.UserPreference.DefaultAccountID = id
	st.s.Clipper.CurrentAccountID = id
}

func (st *Store) SetShowLineNumber(v bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.s.UserPreference.ShowLineNumber = v
}

func (st *Store) SetLiveRendering(v bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.s.UserPreference.LiveRendering = v
}

func (st *Store) SetShowQuickResponseCode(v bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.s.UserPreference.ShowQuickResponseCode = v
}

func (st *Store) SetDefaultPluginID(id string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.s.UserPreference.DefaultPluginID = id
}

// ─────────────────────────────────────────────────────────────────
// Initialize form
// ─────────────────────────────────────────────────────────────────

// InitializeForm returns a copy of the pending account form.
func (st *Store) InitializeForm() domain.InitializeForm {
	st.mu.RLock()
	defer st.mu.RUnlock()

	return copyForm(st.s.UserPreference.InitializeForm)
}

// StartVerification opens the form for (type, info) and marks it verifying.
func (st *Store) StartVerification(accountType string, info map[string]string) {
	st.mu.Lock()
	defer st.mu.Unlock()

	f := &st.s.UserPreference.InitializeForm
	f.Type = accountType
	f.Info = maps.Clone(info)
	f.Visible = true
	f.Verifying = true
	f.Verified = false
	f.UserInfo = nil
	f.Repositories = nil
	f.DefaultRepositoryID = ""
}

// VerificationSucceeded stores what the document service returned.
func (st *Store) VerificationSucceeded(user domain.UserInfo, repos []domain.Repository) {
	st.mu.Lock()
	defer st.mu.Unlock()

	f := &st.s.UserPreference.InitializeForm
	f.Verifying = false
	f.Verified = true
	f.UserInfo = &user
	f.Repositories = append([]domain.Repository(nil), repos...)
	if !hasRepository(repos, f.DefaultRepositoryID) {
		f.DefaultRepositoryID = ""
		if len(repos) > 0 {
			f.DefaultRepositoryID = repos[0].ID
		}
	}
}

func hasRepository(repos []domain.Repository, id string) bool {
	for _, r := range repos {
		if r.ID == id {
			return true
		}
	}
	return false
}

// VerificationFailed keeps the form so the user can retry.
func (st *Store) VerificationFailed() {
	st.mu.Lock()
	defer st.mu.Unlock()

	f := &st.s.UserPreference.InitializeForm
	f.Verifying = false
	f.Verified = false
}

// SetFormDefaultRepository picks the repository the new account will default to.
func (st *Store) SetFormDefaultRepository(id string) {
	st.mu.Lock()
	defer st.mu.Unlock()

	st.s.UserPreference.InitializeForm.DefaultRepositoryID = id
}

// ResetInitializeForm closes and clears the form.
func (st *Store) ResetInitializeForm() {
	st.mu.Lock()
	defer st.mu.Unlock()

	st.s.UserPreference.InitializeForm = domain.InitializeForm{}
}
