package domain

import (
	"context"
	"errors"
)

var (
	ErrInvalidDomain   = errors.New("invalid_domain")
	ErrInvalidPlatform = errors.New("invalid_platform")
	ErrDomainExists    = errors.New("domain_exists")
	ErrNotFound        = errors.New("store_not_found")
)

type ConnectStoreRequest struct {
	Domain      string
	Platform    string
	Name        string
	AccessToken string
}

type Service interface {
	Connect(ctx context.Context, req ConnectStoreRequest) (Store, error)
	GetByID(ctx context.Context, id string) (Store, error)
	GetByDomain(ctx context.Context, domain string) (Store, error)
	ListByPlatform(ctx context.Context, platform string) ([]Store, error)
	Teardown(ctx context.Context, id string) error
}
