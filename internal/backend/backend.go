// Package backend talks to the document services accounts are attached to.
package backend

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/webclipper/internal/domain"
	"github.com/MrSnakeDoc/webclipper/internal/rehost"
)

// DefaultTimeout bounds every request made by a document service client.
const DefaultTimeout = 15 * time.Second

// DocumentService is what account verification needs from a service.
type DocumentService interface {
	GetUserInfo(ctx context.Context) (domain.UserInfo, error)
	GetRepositories(ctx context.Context) ([]domain.Repository, error)
}

// Service is a document service that can also host images.
type Service interface {
	DocumentService
	rehost.ImageUploader
}

// Builder creates a Service from the verification info of an account.
type Builder func(info map[string]string, client *http.Client) (Service, error)

// Factory builds services by account type.
type Factory struct {
	client   *http.Client
	builders map[string]Builder
}

// NewFactory creates a factory knowing the built-in service types.
func NewFactory(client *http.Client) *Factory {
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}
	f := &Factory{
		client:   client,
		builders: make(map[string]Builder),
	}
	f.Register(YuqueType, NewYuque)
	return f
}

// Register adds or replaces the builder for accountType.
func (f *Factory) Register(accountType string, b Builder) {
	f.builders[accountType] = b
}

// Service returns the service for (accountType, info).
func (f *Factory) Service(accountType string, info map[string]string) (Service, error) {
	b, ok := f.builders[accountType]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownServiceType, accountType)
	}
	return b(info, f.client)
}

// DocumentService is the verification view of Service.
func (f *Factory) DocumentService(accountType string, info map[string]string) (DocumentService, error) {
	return f.Service(accountType, info)
}

// ImageService returns the image host of account.
func (f *Factory) ImageService(account domain.Account) (rehost.ImageUploader, error) {
	return f.Service(account.Type, account.Info)
}
