// Package coordinator turns user intents into side effects and state updates.
//
// Every command kind has one watcher goroutine reading from its own queue, so
// commands of the same kind are handled in arrival order while different kinds
// proceed independently.
package coordinator

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/MrSnakeDoc/webclipper/internal/backend"
	"github.com/MrSnakeDoc/webclipper/internal/browser"
	"github.com/MrSnakeDoc/webclipper/internal/domain"
	"github.com/MrSnakeDoc/webclipper/internal/extension"
	"github.com/MrSnakeDoc/webclipper/internal/logger"
	"github.com/MrSnakeDoc/webclipper/internal/notify"
	"github.com/MrSnakeDoc/webclipper/internal/state"
)

// DefaultQueueSize is the per-watcher buffer.
const DefaultQueueSize = 16

var (
	ErrStopped        = errors.New("coordinator stopped")
	ErrUnknownCommand = errors.New("unknown command")
)

// Storage is the durable side of the preferences.
type Storage interface {
	AddAccount(ctx context.Context, account domain.Account) error
	GetAccounts(ctx context.Context) ([]domain.Account, error)
	GetDefaultAccountID(ctx context.Context) (string, error)
	DeleteAccountByID(ctx context.Context, id string) error
	SetDefaultAccountID(ctx context.Context, id string) error
	SetShowLineNumber(ctx context.Context, v bool) error
	SetLiveRendering(ctx context.Context, v bool) error
	SetShowQuickResponseCode(ctx context.Context, v bool) error
	SetDefaultPluginID(ctx context.Context, id string) error
}

// Services builds document services for verification.
type Services interface {
	DocumentService(accountType string, info map[string]string) (backend.DocumentService, error)
}

// Extensions resolves extensions by name.
type Extensions interface {
	Get(name string) (extension.Extension, error)
}

// Runner executes an extension run.
type Runner interface {
	Run(ctx context.Context, ext extension.Extension) (extension.Outcome, error)
}

// Deps are the collaborators of the coordinator.
type Deps struct {
	Storage    Storage
	Services   Services
	State      *state.Store
	Tab        browser.Tab
	Extensions Extensions
	Runner     Runner
	Message    notify.Sink
	Logger     logger.Logger
	QueueSize  int
}

type reply struct {
	value any
	err   error
}

type envelope struct {
	ctx   context.Context
	cmd   Command
	reply chan reply
}

// Coordinator owns the watchers.
type Coordinator struct {
	storage    Storage
	services   Services
	state      *state.Store
	tab        browser.Tab
	extensions Extensions
	runner     Runner
	message    notify.Sink
	logger     logger.Logger

	queues   map[Kind]chan envelope
	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// New creates a coordinator. Call Start before dispatching.
func New(d Deps) *Coordinator {
	size := d.QueueSize
	if size <= 0 {
		size = DefaultQueueSize
	}
	tab := d.Tab
	if tab == nil {
		tab = browser.Detached{}
	}

	c := &Coordinator{
		storage:    d.Storage,
		services:   d.Services,
		state:      d.State,
		tab:        tab,
		extensions: d.Extensions,
		runner:     d.Runner,
		message:    d.Message,
		logger:     d.Logger,
		queues:     make(map[Kind]chan envelope, len(Kinds)),
		stopCh:     make(chan struct{}),
	}
	for _, k := range Kinds {
		c.queues[k] = make(chan envelope, size)
	}
	return c
}

// Start launches one watcher per command kind.
func (c *Coordinator) Start(ctx context.Context) {
	for _, k := range Kinds {
		c.wg.Add(1)
		go c.watch(ctx, k, c.queues[k])
	}
	c.logger.Info("coordinator started", logger.Int("watchers", len(Kinds)))
}

// Stop stops the watchers and waits for the running handlers to return.
// Queued commands that were not picked up are dropped.
func (c *Coordinator) Stop() {
	c.stopOnce.Do(func() { close(c.stopCh) })
	c.wg.Wait()
}

// Dispatch enqueues cmd and returns without waiting for it to be handled.
// The handler outlives ctx cancellation but keeps its values.
func (c *Coordinator) Dispatch(ctx context.Context, cmd Command) error {
	return c.enqueue(ctx, envelope{ctx: context.WithoutCancel(ctx), cmd: cmd})
}

// Execute enqueues cmd and waits for the handler's result.
func (c *Coordinator) Execute(ctx context.Context, cmd Command) (any, error) {
	env := envelope{ctx: ctx, cmd: cmd, reply: make(chan reply, 1)}
	if err := c.enqueue(ctx, env); err != nil {
		return nil, err
	}

	select {
	case r := <-env.reply:
		return r.value, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-c.stopCh:
		return nil, ErrStopped
	}
}

func (c *Coordinator) enqueue(ctx context.Context, env envelope) error {
	if env.cmd == nil {
		return fmt.Errorf("%w: nil", ErrUnknownCommand)
	}
	q, ok := c.queues[env.cmd.Kind()]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownCommand, env.cmd.Kind())
	}

	select {
	case <-c.stopCh:
		return ErrStopped
	default:
	}

	select {
	case q <- env:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-c.stopCh:
		return ErrStopped
	}
}

func (c *Coordinator) watch(ctx context.Context, kind Kind, q <-chan envelope) {
	defer c.wg.Done()
	log := c.logger.With(logger.String("watcher", string(kind)))

	for {
		select {
		case env := <-q:
			value, err := c.safeHandle(env.ctx, env.cmd)
			if err != nil {
				log.Debug("command failed", logger.Error(err))
			}
			if env.reply != nil {
				env.reply <- reply{value: value, err: err}
			}
		case <-c.stopCh:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (c *Coordinator) safeHandle(ctx context.Context, cmd Command) (value any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("command %s panicked: %v", cmd.Kind(), r)
			c.logger.Error("command handler panicked",
				logger.String("kind", string(cmd.Kind())),
				logger.Error(err))
		}
	}()
	return c.handle(ctx, cmd)
}

func (c *Coordinator) handle(ctx context.Context, cmd Command) (any, error) {
	switch cmd := cmd.(type) {
	case VerifyAccount:
		return c.verifyAccount(ctx, cmd)
	case AddAccount:
		return c.addAccount(ctx, cmd)
	case DeleteAccount:
		return c.deleteAccount(ctx, cmd)
	case SetCurrentAccount:
		return c.setCurrentAccount(ctx, cmd)
	case SetShowLineNumber:
		return c.setShowLineNumber(ctx, cmd)
	case SetLiveRendering:
		return c.setLiveRendering(ctx, cmd)
	case SetShowQuickResponseCode:
		return c.setShowQuickResponseCode(ctx, cmd)
	case SetDefaultPlugin:
		return c.setDefaultPlugin(ctx, cmd)
	case HideTool:
		return c.sendToolAction(ctx, browser.HideTool())
	case RemoveTool:
		return c.sendToolAction(ctx, browser.RemoveTool())
	case RunExtension:
		return c.runExtension(ctx, cmd)
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnknownCommand, cmd)
	}
}
