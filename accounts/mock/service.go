// Package mock provides a testify mock of the accounts.Service contract.
package mock

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/ecomstore/passport/config"
	"github.com/ecomstore/passport/domain"
)

// Service is a mock accounts.Service.
type Service struct {
	mock.Mock
}

func (m *Service) ReadStore(ctx context.Context, storeID int) (*domain.Store, error) {
	args := m.Called(ctx, storeID)
	if store := args.Get(0); store != nil {
		return store.(*domain.Store), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Service) ListStores(ctx context.Context) ([]domain.Store, error) {
	args := m.Called(ctx)
	if stores := args.Get(0); stores != nil {
		return stores.([]domain.Store), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Service) ProviderApps(ctx context.Context, storeID int) (map[string]config.ProviderCredentials, error) {
	args := m.Called(ctx, storeID)
	if apps := args.Get(0); apps != nil {
		return apps.(map[string]config.ProviderCredentials), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Service) FindCustomerByProviderIdentity(
	ctx context.Context, storeID int, provider, subjectID, email string,
) (*domain.Customer, error) {
	args := m.Called(ctx, storeID, provider, subjectID, email)
	if customer := args.Get(0); customer != nil {
		return customer.(*domain.Customer), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Service) CreateCustomer(ctx context.Context, storeID int, profile *domain.Profile) (*domain.Customer, error) {
	args := m.Called(ctx, storeID, profile)
	if customer := args.Get(0); customer != nil {
		return customer.(*domain.Customer), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Service) FindCustomerByEmail(ctx context.Context, storeID int, email, docNumber string) (*domain.Customer, error) {
	args := m.Called(ctx, storeID, email, docNumber)
	if customer := args.Get(0); customer != nil {
		return customer.(*domain.Customer), args.Error(1)
	}
	return nil, args.Error(1)
}
