package extension

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/MrSnakeDoc/webclipper/internal/blob"
	"github.com/MrSnakeDoc/webclipper/internal/browser"
	"github.com/MrSnakeDoc/webclipper/internal/domain"
	"github.com/MrSnakeDoc/webclipper/internal/logger"
	"github.com/MrSnakeDoc/webclipper/internal/notify"
	"github.com/MrSnakeDoc/webclipper/internal/rehost"
)

// State is the part of the application state a run reads and writes.
type State interface {
	CurrentClip() (pathname string, clip domain.Clip, ok bool)
	CurrentAccount() (domain.Account, bool)
	RecordRun(name, runID, pathname string, result any)
}

// ImageServices resolves the image host of an account.
type ImageServices interface {
	ImageService(account domain.Account) (rehost.ImageUploader, error)
}

// Outcome is what a run publishes.
type Outcome struct {
	RunID     string `json:"runId"`
	Extension string `json:"extension"`
	Result    any    `json:"result"`
	Pathname  string `json:"pathname"`
}

// Orchestrator executes one extension run at a time per call; phases are sequential.
type Orchestrator struct {
	state   State
	tab     browser.Tab
	images  ImageServices
	message notify.Sink
	logger  logger.Logger
	newID   func() string
}

// NewOrchestrator wires the collaborators of a run. A nil tab behaves as a
// detached one.
func NewOrchestrator(st State, tab browser.Tab, images ImageServices, message notify.Sink, log logger.Logger) *Orchestrator {
	if tab == nil {
		tab = browser.Detached{}
	}
	return &Orchestrator{
		state:   st,
		tab:     tab,
		images:  images,
		message: message,
		logger:  log,
		newID:   func() string { return uuid.New().String() },
	}
}

// Run executes inject, snapshot, post-process and teardown for ext, then
// records {result, pathname} under the extension's name.
//
// An inject or post-process failure aborts the run with a *PhaseError; teardown
// still runs. Teardown failures are only logged. Nothing is recorded for a
// failed run.
func (o *Orchestrator) Run(ctx context.Context, ext Extension) (Outcome, error) {
	name := ext.Meta().Name
	runID := o.newID()
	log := o.logger.With(logger.String("extension", name), logger.String("run_id", runID))
	start := time.Now()

	log.Info("extension run started")

	var result any

	if inj, ok := ext.(Injector); ok {
		res, err := callInject(ctx, inj, o.tab)
		if err != nil {
			log.Error("inject phase failed", logger.Error(err))
			o.teardown(ctx, ext, log)
			return Outcome{}, &PhaseError{Extension: name, Phase: PhaseInject, Err: err}
		}
		result = res
	}

	// Inject may have changed the route or the clip.
	pathname, data, _ := o.state.CurrentClip()

	if pp, ok := ext.(PostProcessor); ok {
		rc := o.runContext(result, pathname, data, log)
		res, err := callPostProcess(ctx, pp, rc)
		if err != nil {
			log.Error("post-process phase failed", logger.Error(err))
			o.teardown(ctx, ext, log)
			return Outcome{}, &PhaseError{Extension: name, Phase: PhasePostProcess, Err: err}
		}
		result = res
	}

	o.teardown(ctx, ext, log)

	o.state.RecordRun(name, runID, pathname, result)

	log.Info("extension run finished",
		logger.String("pathname", pathname),
		logger.Duration("elapsed", time.Since(start)))

	return Outcome{RunID: runID, Extension: name, Result: result, Pathname: pathname}, nil
}

func (o *Orchestrator) runContext(result any, pathname string, data domain.Clip, log logger.Logger) *RunContext {
	rc := &RunContext{
		Result:            result,
		Data:              data,
		Pathname:          pathname,
		Message:           o.message,
		LoadImage:         blob.LoadImage,
		CaptureVisibleTab: o.tab.CaptureVisibleTab,
		Logger:            log,
	}

	account, ok := o.state.CurrentAccount()
	if !ok || o.images == nil {
		return rc
	}
	svc, err := o.images.ImageService(account)
	if err != nil {
		log.Debug("no image service for current account",
			logger.String("account_type", account.Type),
			logger.Error(err))
		return rc
	}
	rc.ImageService = svc
	return rc
}

func (o *Orchestrator) teardown(ctx context.Context, ext Extension, log logger.Logger) {
	d, ok := ext.(Destroyer)
	if !ok {
		return
	}
	if err := callTeardown(ctx, d, o.tab); err != nil {
		log.Warn("teardown phase failed", logger.Error(err))
	}
}

func callInject(ctx context.Context, inj Injector, tab browser.Tab) (res any, err error) {
	defer recoverInto(&err)
	return inj.Inject(ctx, tab)
}

func callPostProcess(ctx context.Context, pp PostProcessor, rc *RunContext) (res any, err error) {
	defer recoverInto(&err)
	return pp.PostProcess(ctx, rc)
}

func callTeardown(ctx context.Context, d Destroyer, tab browser.Tab) (err error) {
	defer recoverInto(&err)
	return d.Teardown(ctx, tab)
}

func recoverInto(err *error) {
	if r := recover(); r != nil {
		*err = panicError(r)
	}
}

// IsPhase reports whether err is a PhaseError for phase.
func IsPhase(err error, phase Phase) bool {
	var pe *PhaseError
	return errors.As(err, &pe) && pe.Phase == phase
}
