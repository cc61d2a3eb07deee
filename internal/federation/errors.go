package federation

import "errors"

var (
	// ErrUnknownProvider means the provider name is outside the supported set.
	ErrUnknownProvider = errors.New("federation: unknown provider")
	// ErrNotConfigured means no strategy is registered for the lookup key.
	ErrNotConfigured = errors.New("federation: provider not configured")
	// ErrMisconfigured means a strategy was registered with unusable credentials.
	ErrMisconfigured = errors.New("federation: provider misconfigured")
	// ErrExchangeFailed wraps a failed code-for-token exchange.
	ErrExchangeFailed = errors.New("federation: code exchange failed")
	// ErrFetchProfileFailed wraps a failed userinfo fetch.
	ErrFetchProfileFailed = errors.New("federation: fetching profile failed")
)
