package extension

import (
	"context"
	"sync"

	"github.com/MrSnakeDoc/webclipper/internal/browser"
	"github.com/MrSnakeDoc/webclipper/internal/domain"
	"github.com/MrSnakeDoc/webclipper/internal/rehost"
)

// bare has metadata and a predicate only.
type bare struct {
	name       string
	applicable func(InitContext) bool
}

func (b bare) Meta() Meta { return Meta{Name: b.name, Version: "0.0.1"} }

func (b bare) Applicable(ic InitContext) bool {
	if b.applicable == nil {
		return true
	}
	return b.applicable(ic)
}

// full implements every phase through function fields and records call order.
type full struct {
	bare
	mu       sync.Mutex
	calls    []Phase
	inject   func(context.Context, browser.Tab) (any, error)
	post     func(context.Context, *RunContext) (any, error)
	teardown func(context.Context, browser.Tab) error
}

func (f *full) record(p Phase) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, p)
}

func (f *full) Inject(ctx context.Context, tab browser.Tab) (any, error) {
	f.record(PhaseInject)
	return f.inject(ctx, tab)
}

func (f *full) PostProcess(ctx context.Context, rc *RunContext) (any, error) {
	f.record(PhasePostProcess)
	return f.post(ctx, rc)
}

func (f *full) Teardown(ctx context.Context, tab browser.Tab) error {
	f.record(PhaseTeardown)
	return f.teardown(ctx, tab)
}

type fakeTab struct {
	mu      sync.Mutex
	actions []browser.Action
	respond func(browser.Action) (any, error)
}

func (t *fakeTab) SendAction(_ context.Context, a browser.Action) (any, error) {
	t.mu.Lock()
	t.actions = append(t.actions, a)
	t.mu.Unlock()
	if t.respond == nil {
		return nil, nil
	}
	return t.respond(a)
}

func (t *fakeTab) CaptureVisibleTab(context.Context) (string, error) {
	return "data:image/png;base64,", nil
}

type fakeImages struct {
	uploader rehost.ImageUploader
	err      error
}

func (f fakeImages) ImageService(domain.Account) (rehost.ImageUploader, error) {
	return f.uploader, f.err
}

type recordingSink struct {
	mu     sync.Mutex
	infos  []string
	errors []string
}

func (s *recordingSink) Info(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.infos = append(s.infos, msg)
}

func (s *recordingSink) Error(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errors = append(s.errors, msg)
}
