// Package accounts is the client for the upstream store/account directory.
// The broker treats it as an external collaborator: stores, customers and
// store-custom OAuth apps all live behind this interface.
package accounts

import (
	"context"
	"errors"
	"fmt"

	"github.com/ecomstore/passport/config"
	"github.com/ecomstore/passport/domain"
)

// ErrNotFound is returned when the upstream directory has no matching
// store or customer. Callers branch on it to fall back to account creation.
var ErrNotFound = errors.New("accounts: not found")

// UpstreamError is a Store API failure that carried a human-readable
// message, e.g. a validation rejection on customer creation.
type UpstreamError struct {
	StatusCode int
	Message    string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("accounts: upstream status %d: %s", e.StatusCode, e.Message)
}

// Service is the store/account directory contract.
//
// FindCustomerByProviderIdentity and FindCustomerByEmail return ErrNotFound
// on a miss; every other error is an upstream failure.
type Service interface {
	// ReadStore fetches one store record.
	ReadStore(ctx context.Context, storeID int) (*domain.Store, error)

	// ListStores lists every active store on the platform.
	ListStores(ctx context.Context) ([]domain.Store, error)

	// ProviderApps fetches a store's custom OAuth apps keyed by provider
	// name. Stores without custom apps return an empty map.
	ProviderApps(ctx context.Context, storeID int) (map[string]config.ProviderCredentials, error)

	// FindCustomerByProviderIdentity resolves a customer by
	// (provider, subject ID). The email, when non-empty, is forwarded to
	// help the directory dedup against existing accounts.
	FindCustomerByProviderIdentity(ctx context.Context, storeID int, provider, subjectID, email string) (*domain.Customer, error)

	// CreateCustomer creates a customer account from a provider profile.
	CreateCustomer(ctx context.Context, storeID int, profile *domain.Profile) (*domain.Customer, error)

	// FindCustomerByEmail resolves a customer by email, optionally
	// cross-checked against a document number.
	FindCustomerByEmail(ctx context.Context, storeID int, email, docNumber string) (*domain.Customer, error)
}
