package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/webclipper/internal/domain"
)

// Store persists accounts and user preferences in Redis
type Store struct {
	client *redis.Client
}

// NewStore creates a new Redis store
func NewStore(client *redis.Client) *Store {
	return &Store{
		client: client,
	}
}

// Ping checks the connection, used by the readiness probe
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// AddAccount stores a new account. The first account becomes the default.
// An account whose id is already stored is rejected with domain.ErrDuplicateAccount.
func (s *Store) AddAccount(ctx context.Context, account domain.Account) error {
	data, err := json.Marshal(account)
	if err != nil {
		return fmt.Errorf("failed to marshal account: %w", err)
	}

	added, err := addAccountScript.Run(ctx, s.client,
		[]string{AccountsKey(), AccountOrderKey(), PreferenceKey(PrefDefaultAccountID)},
		account.ID, data,
	).Int()
	if err != nil {
		return fmt.Errorf("failed to save account: %w", err)
	}
	if added == 0 {
		return domain.ErrDuplicateAccount
	}

	return nil
}

// addAccountScript runs the duplicate check and the indexing as one server-side step.
// KEYS: accounts hash, order list, default account id. ARGV: id, JSON.
var addAccountScript = redis.NewScript(`
if redis.call("HSETNX", KEYS[1], ARGV[1], ARGV[2]) == 0 then
	return 0
end
redis.call("RPUSH", KEYS[2], ARGV[1])
redis.call("SETNX", KEYS[3], ARGV[1])
return 1
`)

// GetAccounts returns all accounts in insertion order
func (s *Store) GetAccounts(ctx context.Context) ([]domain.Account, error) {
	ids, err := s.client.LRange(ctx, AccountOrderKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get account ids: %w", err)
	}

	if len(ids) == 0 {
		return []domain.Account{}, nil
	}

	values, err := s.client.HMGet(ctx, AccountsKey(), ids...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get accounts: %w", err)
	}

	accounts := make([]domain.Account, 0, len(values))
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			// Listed but missing from the hash, skip it
			continue
		}
		var account domain.Account
		if err := json.Unmarshal([]byte(raw), &account); err != nil {
			return nil, fmt.Errorf("failed to unmarshal account %s: %w", ids[i], err)
		}
		accounts = append(accounts, account)
	}

	return accounts, nil
}

// GetDefaultAccountID returns the default account id, "" when unset
func (s *Store) GetDefaultAccountID(ctx context.Context) (string, error) {
	return s.getString(ctx, PrefDefaultAccountID)
}

// DeleteAccountByID removes an account. When it was the default, the first
// remaining account becomes the default.
func (s *Store) DeleteAccountByID(ctx context.Context, id string) error {
	var del *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		del = pipe.HDel(ctx, AccountsKey(), id)
		pipe.LRem(ctx, AccountOrderKey(), 0, id)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}
	if del.Val() == 0 {
		return fmt.Errorf("%w: %s", domain.ErrAccountNotFound, id)
	}

	current, err := s.GetDefaultAccountID(ctx)
	if err != nil {
		return err
	}
	if current != id {
		return nil
	}

	next, err := s.client.LIndex(ctx, AccountOrderKey(), 0).Result()
	if errors.Is(err, redis.Nil) {
		if err := s.client.Del(ctx, PreferenceKey(PrefDefaultAccountID)).Err(); err != nil {
			return fmt.Errorf("failed to clear default account: %w", err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to pick next default account: %w", err)
	}
	return s.setString(ctx, PrefDefaultAccountID, next)
}

// SetDefaultAccountID selects the default account; it must exist
func (s *Store) SetDefaultAccountID(ctx context.Context, id string) error {
	exists, err := s.client.HExists(ctx, AccountsKey(), id).Result()
	if err != nil {
		return fmt.Errorf("failed to check account: %w", err)
	}
	if !exists {
		return fmt.Errorf("%w: %s", domain.ErrAccountNotFound, id)
	}
	return s.setString(ctx, PrefDefaultAccountID, id)
}

// SetDefaultPluginID stores the default plugin; "" clears it
func (s *Store) SetDefaultPluginID(ctx context.Context, id string) error {
	if id == "" {
		if err := s.client.Del(ctx, PreferenceKey(PrefDefaultPluginID)).Err(); err != nil {
			return fmt.Errorf("failed to clear default plugin: %w", err)
		}
		return nil
	}
	return s.setString(ctx, PrefDefaultPluginID, id)
}

func (s *Store) SetShowQuickResponseCode(ctx context.Context, v bool) error {
	return s.setBool(ctx, PrefShowQuickResponseCode, v)
}

func (s *Store) SetShowLineNumber(ctx context.Context, v bool) error {
	return s.setBool(ctx, PrefShowLineNumber, v)
}

func (s *Store) SetLiveRendering(ctx context.Context, v bool) error {
	return s.setBool(ctx, PrefLiveRendering, v)
}

// LoadPreferences reads everything needed to hydrate the application state
func (s *Store) LoadPreferences(ctx context.Context) (domain.Preferences, error) {
	var p domain.Preferences
	var err error

	if p.Accounts, err = s.GetAccounts(ctx); err != nil {
		return p, err
	}
	if p.DefaultAccountID, err = s.GetDefaultAccountID(ctx); err != nil {
		return p, err
	}
	if p.DefaultPluginID, err = s.getString(ctx, PrefDefaultPluginID); err != nil {
		return p, err
	}
	if p.ShowQuickResponseCode, err = s.getBool(ctx, PrefShowQuickResponseCode); err != nil {
		return p, err
	}
	if p.ShowLineNumber, err = s.getBool(ctx, PrefShowLineNumber); err != nil {
		return p, err
	}
	if p.LiveRendering, err = s.getBool(ctx, PrefLiveRendering); err != nil {
		return p, err
	}

	return p, nil
}

func (s *Store) getString(ctx context.Context, name string) (string, error) {
	v, err := s.client.Get(ctx, PreferenceKey(name)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", fmt.Errorf("failed to get %s: %w", name, err)
	}
	return v, nil
}

func (s *Store) setString(ctx context.Context, name, value string) error {
	if err := s.client.Set(ctx, PreferenceKey(name), value, 0).Err(); err != nil {
		return fmt.Errorf("failed to set %s: %w", name, err)
	}
	return nil
}

func (s *Store) getBool(ctx context.Context, name string) (bool, error) {
	v, err := s.getString(ctx, name)
	if err != nil || v == "" {
		return false, err
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid boolean for %s: %w", name, err)
	}
	return b, nil
}

func (s *Store) setBool(ctx context.Context, name string, v bool) error {
	return s.setString(ctx, name, strconv.FormatBool(v))
}
