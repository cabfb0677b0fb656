package coordinator

import (
	"context"
	"errors"
	"fmt"

	"github.com/MrSnakeDoc/webclipper/internal/browser"
	"github.com/MrSnakeDoc/webclipper/internal/domain"
	"github.com/MrSnakeDoc/webclipper/internal/logger"
)

// User-facing notification texts.
const (
	MsgVerificationFailed = "Invalid access token"
	MsgDuplicateAccount   = "Duplicate accounts are not allowed"
	MsgAddAccountFailed   = "Failed to add account: unknown error"
	MsgDeleteFailed       = "Failed to delete account"
	MsgSaveFailed         = "Failed to save preference"
)

var (
	ErrVerificationFailed = errors.New("account verification failed")
	ErrFormNotVerified    = errors.New("account form is not verified")
)

// Accounts is what account-changing commands publish.
type Accounts struct {
	Accounts         []domain.Account `json:"accounts"`
	DefaultAccountID string           `json:"defaultAccountId"`
}

// ─────────────────────────────────────────────────────────────────
// Accounts
// ─────────────────────────────────────────────────────────────────

func (c *Coordinator) verifyAccount(ctx context.Context, cmd VerifyAccount) (domain.InitializeForm, error) {
	c.state.StartVerification(cmd.Type, cmd.Info)

	fail := func(err error) (domain.InitializeForm, error) {
		c.logger.Warn("account verification failed",
			logger.String("type", cmd.Type),
			logger.Error(err))
		c.message.Error(MsgVerificationFailed)
		c.state.VerificationFailed()
		return c.state.InitializeForm(), fmt.Errorf("%w: %w", ErrVerificationFailed, err)
	}

	svc, err := c.services.DocumentService(cmd.Type, cmd.Info)
	if err != nil {
		return fail(err)
	}
	user, err := svc.GetUserInfo(ctx)
	if err != nil {
		return fail(err)
	}
	repos, err := svc.GetRepositories(ctx)
	if err != nil {
		return fail(err)
	}

	c.state.VerificationSucceeded(user, repos)
	c.logger.Info("account verified",
		logger.String("type", cmd.Type),
		logger.String("login", user.Login),
		logger.Int("repositories", len(repos)))

	return c.state.InitializeForm(), nil
}

func (c *Coordinator) addAccount(ctx context.Context, cmd AddAccount) (Accounts, error) {
	form := c.state.InitializeForm()
	if !form.Verified || form.UserInfo == nil {
		c.message.Error(MsgAddAccountFailed)
		return Accounts{}, ErrFormNotVerified
	}

	repoID := cmd.DefaultRepositoryID
	if repoID == "" {
		repoID = form.DefaultRepositoryID
	}
	account := domain.NewAccount(form.Type, form.Info, *form.UserInfo, repoID)

	if err := c.storage.AddAccount(ctx, account); err != nil {
		if errors.Is(err, domain.ErrDuplicateAccount) {
			c.message.Error(MsgDuplicateAccount)
		} else {
			c.logger.Error("failed to add account", logger.Error(err))
			c.message.Error(MsgAddAccountFailed)
		}
		return Accounts{}, err
	}

	published, err := c.resyncAccounts(ctx)
	if err != nil {
		c.message.Error(MsgAddAccountFailed)
		return Accounts{}, err
	}
	c.state.ResetInitializeForm()

	c.logger.Info("account added",
		logger.String("account_id", account.ID),
		logger.String("type", account.Type))

	return published, nil
}

func (c *Coordinator) deleteAccount(ctx context.Context, cmd DeleteAccount) (Accounts, error) {
	if err := c.storage.DeleteAccountByID(ctx, cmd.ID); err != nil {
		c.logger.Warn("failed to delete account",
			logger.String("account_id", cmd.ID),
			logger.Error(err))
		c.message.Error(MsgDeleteFailed)
		return Accounts{}, err
	}

	published, err := c.resyncAccounts(ctx)
	if err != nil {
		c.message.Error(MsgDeleteFailed)
		return Accounts{}, err
	}

	c.logger.Info("account deleted", logger.String("account_id", cmd.ID))
	return published, nil
}

func (c *Coordinator) setCurrentAccount(ctx context.Context, cmd SetCurrentAccount) (string, error) {
	if err := c.storage.SetDefaultAccountID(ctx, cmd.ID); err != nil {
		c.message.Error(MsgSaveFailed)
		return "", err
	}
	c.state.SetDefaultAccountID(cmd.ID)
	return cmd.ID, nil
}

// resyncAccounts re-reads the account list and default id and publishes them.
func (c *Coordinator) resyncAccounts(ctx context.Context) (Accounts, error) {
	accounts, err := c.storage.GetAccounts(ctx)
	if err != nil {
		return Accounts{}, fmt.Errorf("failed to read accounts: %w", err)
	}
	defaultID, err := c.storage.GetDefaultAccountID(ctx)
	if err != nil {
		return Accounts{}, fmt.Errorf("failed to read default account: %w", err)
	}
	c.state.SetAccounts(accounts, defaultID)
	return Accounts{Accounts: accounts, DefaultAccountID: defaultID}, nil
}

// ─────────────────────────────────────────────────────────────────
// Preferences
// ─────────────────────────────────────────────────────────────────

func (c *Coordinator) setShowLineNumber(ctx context.Context, cmd SetShowLineNumber) (bool, error) {
	return c.toggle(ctx, cmd.Value, c.storage.SetShowLineNumber, c.state.SetShowLineNumber)
}

func (c *Coordinator) setLiveRendering(ctx context.Context, cmd SetLiveRendering) (bool, error) {
	return c.toggle(ctx, cmd.Value, c.storage.SetLiveRendering, c.state.SetLiveRendering)
}

func (c *Coordinator) setShowQuickResponseCode(ctx context.Context, cmd SetShowQuickResponseCode) (bool, error) {
	return c.toggle(ctx, cmd.Value, c.storage.SetShowQuickResponseCode, c.state.SetShowQuickResponseCode)
}

// toggle stores and publishes the complement of shown.
func (c *Coordinator) toggle(
	ctx context.Context,
	shown bool,
	persist func(context.Context, bool) error,
	publish func(bool),
) (bool, error) {
	v := !shown
	if err := persist(ctx, v); err != nil {
		c.logger.Warn("failed to save preference", logger.Error(err))
		c.message.Error(MsgSaveFailed)
		return shown, err
	}
	publish(v)
	return v, nil
}

func (c *Coordinator) setDefaultPlugin(ctx context.Context, cmd SetDefaultPlugin) (string, error) {
	if err := c.storage.SetDefaultPluginID(ctx, cmd.PluginID); err != nil {
		c.message.Error(MsgSaveFailed)
		return "", err
	}
	c.state.SetDefaultPluginID(cmd.PluginID)
	return cmd.PluginID, nil
}

// ─────────────────────────────────────────────────────────────────
// Page
// ─────────────────────────────────────────────────────────────────

// sendToolAction forwards a tool action to the current tab. Failures are
// reported to the caller but not to the user.
func (c *Coordinator) sendToolAction(ctx context.Context, action browser.Action) (any, error) {
	res, err := c.tab.SendAction(ctx, action)
	if err != nil {
		c.logger.Debug("tool action not delivered",
			logger.String("action", string(action.Type)),
			logger.Error(err))
		return nil, err
	}
	return res, nil
}

func (c *Coordinator) runExtension(ctx context.Context, cmd RunExtension) (any, error) {
	ext, err := c.extensions.Get(cmd.Name)
	if err != nil {
		return nil, err
	}

	out, err := c.runner.Run(ctx, ext)
	if err != nil {
		c.message.Error(fmt.Sprintf("%s failed: %v", cmd.Name, err))
		return nil, err
	}
	return out, nil
}
