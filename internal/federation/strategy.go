// Package federation wraps the wire-level OAuth protocol of each supported
// identity provider behind one Strategy interface, and owns the runtime
// registry of (provider, store) strategy registrations.
package federation

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"golang.org/x/oauth2"

	"github.com/ecomstore/passport/domain"
)

// Credentials is an OAuth client credential pair.
type Credentials struct {
	ClientID     string
	ClientSecret string
}

// Empty reports whether the pair is unusable.
func (c Credentials) Empty() bool {
	return c.ClientID == "" || c.ClientSecret == ""
}

// Fingerprint identifies a credential pair. The reconciler compares
// fingerprints to decide whether an upstream app changed since the last
// pass; identical credentials never trigger a re-registration.
func (c Credentials) Fingerprint() string {
	sum := sha256.Sum256([]byte(c.ClientID + c.ClientSecret))
	return hex.EncodeToString(sum[:])
}

// Strategy is the capability set of one provider family: build the redirect
// that sends the browser to the provider, then turn the callback code into
// a normalized profile.
type Strategy interface {
	// Name returns the provider name ("facebook", "google", "windowslive").
	Name() string

	// Scopes returns the scopes requested on the redirect.
	Scopes() []string

	// AuthCodeURL builds the provider authorization URL. The state value
	// is echoed back on the callback; redirectURL must match the app's
	// registered callback.
	AuthCodeURL(state, redirectURL string) string

	// ExchangeProfile exchanges the callback code for a token and fetches
	// the user's profile in one step.
	ExchangeProfile(ctx context.Context, redirectURL, code string) (*domain.Profile, error)
}

// New constructs the strategy for a provider name. The provider set is
// closed at build time.
func New(provider string, creds Credentials) (Strategy, error) {
	if creds.Empty() {
		return nil, ErrMisconfigured
	}
	switch provider {
	case "facebook":
		return newFacebookStrategy(creds), nil
	case "google":
		return newGoogleStrategy(creds), nil
	case "windowslive":
		return newWindowsLiveStrategy(creds), nil
	}
	return nil, ErrUnknownProvider
}

// Supported lists the provider names the broker can register.
func Supported() []string {
	return []string{"facebook", "google", "windowslive"}
}

// baseStrategy carries the pieces shared by every provider family.
type baseStrategy struct {
	name     string
	creds    Credentials
	scopes   []string
	endpoint oauth2.Endpoint
}

func (b *baseStrategy) Name() string     { return b.name }
func (b *baseStrategy) Scopes() []string { return b.scopes }

func (b *baseStrategy) config(redirectURL string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     b.creds.ClientID,
		ClientSecret: b.creds.ClientSecret,
		RedirectURL:  redirectURL,
		Scopes:       b.scopes,
		Endpoint:     b.endpoint,
	}
}

func (b *baseStrategy) AuthCodeURL(state, redirectURL string) string {
	return b.config(redirectURL).AuthCodeURL(state)
}

func (b *baseStrategy) exchange(ctx context.Context, redirectURL, code string) (*oauth2.Token, error) {
	token, err := b.config(redirectURL).Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExchangeFailed, err)
	}
	return token, nil
}
