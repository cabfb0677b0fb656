package domain

import (
	"encoding/json"
	"strconv"

	"github.com/cespare/xxhash/v2"
)

// Account is a verified connection to a document service.
//
// Its ID is derived from the defining fields (Type + Info) so the same
// credentials can never be registered twice.
type Account struct {
	// ─────────────────────────────
	// Identity (immutable)
	// ─────────────────────────────

	// ID is AccountID(Info, Type).
	ID string `json:"id"`

	// Type selects the document service implementation.
	// Example: yuque
	Type string `json:"type"`

	// Info holds the service-specific verification fields
	// (access token, custom host, ...).
	Info map[string]string `json:"info,omitempty"`

	// ─────────────────────────────
	// Profile (copied from UserInfo at creation time)
	// ─────────────────────────────

	Name        string `json:"name"`
	Login       string `json:"login,omitempty"`
	Avatar      string `json:"avatar,omitempty"`
	HomePage    string `json:"homePage,omitempty"`
	Description string `json:"description,omitempty"`

	// DefaultRepositoryID is the repository new documents land in.
	DefaultRepositoryID string `json:"defaultRepositoryId,omitempty"`
}

// UserInfo is the identity a document service reports for a token.
type UserInfo struct {
	Name        string `json:"name"`
	Login       string `json:"login,omitempty"`
	Avatar      string `json:"avatar,omitempty"`
	HomePage    string `json:"homePage,omitempty"`
	Description string `json:"description,omitempty"`
}

// accountKey is the hashed shape. Field order is fixed by the struct and
// map keys are sorted by encoding/json, so the encoding is stable.
type accountKey struct {
	Info map[string]string `json:"info"`
	Type string            `json:"type"`
}

// AccountID returns the deterministic identity of an (info, type) pair.
func AccountID(info map[string]string, accountType string) string {
	data, err := json.Marshal(accountKey{Info: info, Type: accountType})
	if err != nil {
		// map[string]string always encodes; keep the signature total anyway.
		data = []byte(accountType)
	}
	return strconv.FormatUint(xxhash.Sum64(data), 16)
}

// NewAccount merges a verified form into an Account.
func NewAccount(accountType string, info map[string]string, user UserInfo, defaultRepositoryID string) Account {
	copied := make(map[string]string, len(info))
	for k, v := range info {
		copied[k] = v
	}
	return Account{
		ID:                  AccountID(info, accountType),
		Type:                accountType,
		Info:                copied,
		Name:                user.Name,
		Login:               user.Login,
		Avatar:              user.Avatar,
		HomePage:            user.HomePage,
		Description:         user.Description,
		DefaultRepositoryID: defaultRepositoryID,
	}
}
