package httpserver_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/webclipper/internal/backend"
	"github.com/MrSnakeDoc/webclipper/internal/coordinator"
	"github.com/MrSnakeDoc/webclipper/internal/domain"
	"github.com/MrSnakeDoc/webclipper/internal/extension"
	"github.com/MrSnakeDoc/webclipper/internal/httpserver"
	"github.com/MrSnakeDoc/webclipper/internal/httpserver/deps"
	"github.com/MrSnakeDoc/webclipper/internal/logger"
	"github.com/MrSnakeDoc/webclipper/internal/notify"
	"github.com/MrSnakeDoc/webclipper/internal/state"
	redisstore "github.com/MrSnakeDoc/webclipper/internal/store/redis"
)

type fakeDocs struct{}

func (fakeDocs) GetUserInfo(context.Context) (domain.UserInfo, error) {
	return domain.UserInfo{Name: "Alice", Login: "alice"}, nil
}

func (fakeDocs) GetRepositories(context.Context) ([]domain.Repository, error) {
	return []domain.Repository{{ID: "r1", Name: "Notes"}}, nil
}

type fakeServices struct{}

func (fakeServices) DocumentService(accountType string, _ map[string]string) (backend.DocumentService, error) {
	if accountType != "yuque" {
		return nil, domain.ErrUnknownServiceType
	}
	return fakeDocs{}, nil
}

type articleOnly struct{}

func (articleOnly) Meta() extension.Meta { return extension.Meta{Name: "article", Icon: "read"} }
func (articleOnly) Applicable(ic extension.InitContext) bool {
	return ic.Pathname == "/article"
}

type env struct {
	handler http.Handler
	mr      *miniredis.Miniredis
	state   *state.Store
	reload  chan struct{}
}

func newEnv(t *testing.T) *env {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })

	log := logger.Nop()
	store := redisstore.NewStore(client)
	st := state.New()
	hub := notify.NewHub(log, 0)

	reg := extension.NewRegistry(log)
	reg.MustRegister(articleOnly{})
	orch := extension.NewOrchestrator(st, nil, nil, hub, log)

	coord := coordinator.New(coordinator.Deps{
		Storage:    store,
		Services:   fakeServices{},
		State:      st,
		Extensions: reg,
		Runner:     orch,
		Message:    hub,
		Logger:     log,
	})
	ctx, cancel := context.WithCancel(context.Background())
	coord.Start(ctx)
	t.Cleanup(func() {
		cancel()
		coord.Stop()
	})

	reload := make(chan struct{}, 1)
	d := deps.Deps{
		Logger:        log,
		StartTime:     time.Now(),
		Version:       "test",
		RateBurst:     1000,
		RateRefill:    1000,
		Store:         store,
		State:         st,
		Registry:      reg,
		Coordinator:   coord,
		Notifications: hub,
		ReloadTrigger: reload,
	}

	return &env{
		handler: httpserver.NewRouter(log, d),
		mr:      mr,
		state:   st,
		reload:  reload,
	}
}

func (e *env) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	r := httptest.NewRequest(method, path, &buf)
	r.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.handler.ServeHTTP(w, r)
	return w
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	return v
}

func TestProbes(t *testing.T) {
	e := newEnv(t)

	assert.Equal(t, http.StatusOK, e.do(t, http.MethodGet, "/healthz", nil).Code)
	assert.Equal(t, http.StatusOK, e.do(t, http.MethodGet, "/readyz", nil).Code)

	e.mr.Close()
	assert.Equal(t, http.StatusServiceUnavailable, e.do(t, http.MethodGet, "/readyz", nil).Code)
}

func TestRouteClipAndExtensions(t *testing.T) {
	e := newEnv(t)

	w := e.do(t, http.MethodGet, "/api/extensions?applicable=1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decodeBody[[]domain.ExtensionMeta](t, w))

	w = e.do(t, http.MethodPut, "/api/route", map[string]string{"pathname": "/article", "title": "T", "url": "https://x"})
	require.Equal(t, http.StatusOK, w.Code)

	w = e.do(t, http.MethodGet, "/api/extensions?applicable=1", nil)
	metas := decodeBody[[]domain.ExtensionMeta](t, w)
	require.Len(t, metas, 1)
	assert.Equal(t, "article", metas[0].Name)

	w = e.do(t, http.MethodPut, "/api/clips", map[string]string{"text": "hello"})
	require.Equal(t, http.StatusOK, w.Code)

	_, clip, ok := e.state.CurrentClip()
	require.True(t, ok)
	assert.Equal(t, "hello", clip.Text)

	w = e.do(t, http.MethodPost, "/api/extensions/article/run", nil)
	require.Equal(t, http.StatusOK, w.Code)
	out := decodeBody[extension.Outcome](t, w)
	assert.Equal(t, "/article", out.Pathname)
	assert.Nil(t, out.Result)

	assert.Equal(t, http.StatusNotFound, e.do(t, http.MethodPost, "/api/extensions/nope/run", nil).Code)
	assert.Equal(t, http.StatusBadRequest, e.do(t, http.MethodPut, "/api/route", map[string]string{"pathname": "relative"}).Code)
}

func TestAccountLifecycle(t *testing.T) {
	e := newEnv(t)
	info := map[string]any{"type": "yuque", "info": map[string]string{"access_token": "t"}}

	w := e.do(t, http.MethodPost, "/api/accounts/verify", info)
	require.Equal(t, http.StatusOK, w.Code)
	form := decodeBody[domain.InitializeForm](t, w)
	assert.True(t, form.Verified)

	w = e.do(t, http.MethodPost, "/api/accounts", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	accounts := decodeBody[coordinator.Accounts](t, w)
	require.Len(t, accounts.Accounts, 1)
	id := accounts.Accounts[0].ID

	require.Equal(t, http.StatusOK, e.do(t, http.MethodPost, "/api/accounts/verify", info).Code)
	assert.Equal(t, http.StatusConflict, e.do(t, http.MethodPost, "/api/accounts", nil).Code)

	assert.Equal(t, http.StatusOK, e.do(t, http.MethodPut, "/api/accounts/current", map[string]string{"id": id}).Code)
	assert.Equal(t, http.StatusNotFound, e.do(t, http.MethodPut, "/api/accounts/current", map[string]string{"id": "missing"}).Code)

	w = e.do(t, http.MethodDelete, "/api/accounts/"+id, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decodeBody[coordinator.Accounts](t, w).Accounts)

	assert.Equal(t, http.StatusNotFound, e.do(t, http.MethodDelete, "/api/accounts/"+id, nil).Code)

	w = e.do(t, http.MethodGet, "/api/notifications", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, decodeBody[[]notify.Notification](t, w))
}

func TestVerifyFailureIsUnprocessable(t *testing.T) {
	e := newEnv(t)
	w := e.do(t, http.MethodPost, "/api/accounts/verify", map[string]any{"type": "notion"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, http.StatusBadRequest, e.do(t, http.MethodPost, "/api/accounts/verify", map[string]any{}).Code)
}

func TestPreferences(t *testing.T) {
	e := newEnv(t)

	w := e.do(t, http.MethodPost, "/api/preferences/showLineNumber", map[string]bool{"value": true})
	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeBody[map[string]any](t, w)
	assert.Equal(t, false, resp["value"])

	assert.Equal(t, http.StatusNotFound, e.do(t, http.MethodPost, "/api/preferences/bogus", map[string]bool{"value": true}).Code)

	w = e.do(t, http.MethodPut, "/api/preferences/plugin", map[string]string{"pluginId": "article"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "article", e.state.Snapshot().UserPreference.DefaultPluginID)
}

func TestToolsWithoutTab(t *testing.T) {
	e := newEnv(t)
	assert.Equal(t, http.StatusServiceUnavailable, e.do(t, http.MethodPost, "/api/tools/hide", nil).Code)
	assert.Equal(t, http.StatusNotFound, e.do(t, http.MethodPost, "/api/tools/explode", nil).Code)
}

func TestManifestReloadTrigger(t *testing.T) {
	e := newEnv(t)
	assert.Equal(t, http.StatusAccepted, e.do(t, http.MethodPost, "/api/manifest/reload", nil).Code)
	assert.Equal(t, http.StatusTooManyRequests, e.do(t, http.MethodPost, "/api/manifest/reload", nil).Code)
	<-e.reload
}
