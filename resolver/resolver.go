// Package resolver maps a provider profile to a store-scoped customer
// account, creating one when the directory has no match.
package resolver

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/ecomstore/passport/accounts"
	"github.com/ecomstore/passport/domain"
	apperrors "github.com/ecomstore/passport/errors"
)

// Resolver resolves provider identities against the account directory.
type Resolver struct {
	accounts accounts.Service
}

// New creates a resolver over the given account directory.
func New(svc accounts.Service) *Resolver {
	return &Resolver{accounts: svc}
}

// Resolve finds the customer for a provider profile, or creates one. The
// lookup is by (provider, subject ID) first; the profile's primary email,
// when present, is forwarded so the directory can dedup, but the resolver
// itself does not branch on it. Only a directory "no match" triggers
// creation.
func (r *Resolver) Resolve(ctx context.Context, storeID int, profile *domain.Profile) (*domain.Customer, error) {
	email := profile.PrimaryEmail()

	customer, err := r.accounts.FindCustomerByProviderIdentity(ctx, storeID, profile.Provider, profile.ID, email)
	if err == nil {
		return customer, nil
	}
	if !errors.Is(err, accounts.ErrNotFound) {
		log.Error().Err(err).
			Int("store_id", storeID).
			Str("provider", profile.Provider).
			Msg("customer lookup failed")
		return nil, upstreamError(err)
	}

	customer, err = r.accounts.CreateCustomer(ctx, storeID, profile)
	if err != nil {
		log.Error().Err(err).
			Int("store_id", storeID).
			Str("provider", profile.Provider).
			Msg("customer creation failed")
		return nil, upstreamError(err)
	}
	return customer, nil
}

// ResolveByEmail is the simple-login lookup: email plus an optional
// document number, with no account creation fallback.
func (r *Resolver) ResolveByEmail(ctx context.Context, storeID int, email, docNumber string) (*domain.Customer, error) {
	customer, err := r.accounts.FindCustomerByEmail(ctx, storeID, email, docNumber)
	if err != nil {
		if errors.Is(err, accounts.ErrNotFound) {
			return nil, err
		}
		log.Error().Err(err).Int("store_id", storeID).Msg("customer email lookup failed")
		return nil, upstreamError(err)
	}
	return customer, nil
}

// upstreamError converts a directory failure into the client-facing error:
// the upstream message when one exists, a generic internal failure
// otherwise.
func upstreamError(err error) *apperrors.Error {
	var upstream *accounts.UpstreamError
	if errors.As(err, &upstream) && upstream.Message != "" {
		return apperrors.NewUpstream(upstream.Message)
	}
	return apperrors.NewInternal()
}
