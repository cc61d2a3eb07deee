package federation

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
)

// registryKey identifies one registration. StoreID 0 means an app-wide
// registration shared by every store.
type registryKey struct {
	Provider string
	StoreID  int
}

// Registration is an active strategy entry.
type Registration struct {
	Strategy Strategy
	StoreID  int
	// Endpoint is the URL segment the registration answers on:
	// "facebook" for app-wide apps, "facebook-151" for store 151's own app.
	Endpoint    string
	fingerprint string
}

// Custom reports whether the registration belongs to one store.
func (r *Registration) Custom() bool {
	return r.StoreID != 0
}

// Registry owns the set of active (provider, store) strategy registrations.
// Registrations are inserted or replaced per key, never mutated in place,
// so lookups may interleave freely with reconciliation writes.
type Registry struct {
	mu      sync.RWMutex
	entries map[registryKey]*Registration
}

// NewRegistry creates an empty strategy registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[registryKey]*Registration)}
}

// Endpoint returns the URL segment for a (provider, store) pair.
func Endpoint(provider string, storeID int) string {
	if storeID == 0 {
		return provider
	}
	return fmt.Sprintf("%s-%d", provider, storeID)
}

// ParseEndpoint splits an endpoint segment back into provider and store ID.
// Plain segments ("facebook") yield store 0.
func ParseEndpoint(endpoint string) (string, int) {
	i := strings.LastIndex(endpoint, "-")
	if i < 0 {
		return endpoint, 0
	}
	storeID, err := strconv.Atoi(endpoint[i+1:])
	if err != nil || storeID <= 0 {
		return endpoint, 0
	}
	return endpoint[:i], storeID
}

// Register activates a provider for one store (or app-wide with storeID 0).
// Registration is idempotent per credential pair: re-observing the same
// fingerprint leaves the existing entry untouched. Returns true when a new
// or replaced registration was installed.
func (r *Registry) Register(provider string, storeID int, creds Credentials) (bool, error) {
	if creds.Empty() {
		return false, ErrMisconfigured
	}

	key := registryKey{Provider: provider, StoreID: storeID}
	fingerprint := creds.Fingerprint()

	r.mu.RLock()
	existing, ok := r.entries[key]
	r.mu.RUnlock()
	if ok && existing.fingerprint == fingerprint {
		return false, nil
	}

	strategy, err := New(provider, creds)
	if err != nil {
		return false, err
	}

	reg := &Registration{
		Strategy:    strategy,
		StoreID:     storeID,
		Endpoint:    Endpoint(provider, storeID),
		fingerprint: fingerprint,
	}

	r.mu.Lock()
	r.entries[key] = reg
	r.mu.Unlock()

	log.Info().
		Str("provider", provider).
		Int("store_id", storeID).
		Str("endpoint", reg.Endpoint).
		Msg("oauth strategy registered")

	return true, nil
}

// Lookup returns the active registration for a (provider, store) pair, or
// ErrNotConfigured. It never falls back from store-custom to app-wide; the
// caller decides which scope it wants.
func (r *Registry) Lookup(provider string, storeID int) (*Registration, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	reg, ok := r.entries[registryKey{Provider: provider, StoreID: storeID}]
	if !ok {
		return nil, ErrNotConfigured
	}
	return reg, nil
}

// LookupEndpoint resolves a URL endpoint segment to its registration.
func (r *Registry) LookupEndpoint(endpoint string) (*Registration, error) {
	provider, storeID := ParseEndpoint(endpoint)
	return r.Lookup(provider, storeID)
}

// Providers returns the sorted provider names with an app-wide
// registration.
func (r *Registry) Providers() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var names []string
	for key := range r.entries {
		if key.StoreID == 0 {
			names = append(names, key.Provider)
		}
	}
	sort.Strings(names)
	return names
}

// StoreProviders returns the provider names a store has a custom
// registration for.
func (r *Registry) StoreProviders(storeID int) map[string]bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	custom := make(map[string]bool)
	for key := range r.entries {
		if key.StoreID == storeID {
			custom[key.Provider] = true
		}
	}
	return custom
}

// PruneStore drops the store's registrations whose provider is not in
// keep. The reconciler calls it after a successful fetch for that store, so
// credentials revoked upstream stop being callable instead of lingering
// until overwritten.
func (r *Registry) PruneStore(storeID int, keep map[string]bool) {
	if storeID == 0 {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for key := range r.entries {
		if key.StoreID != storeID || keep[key.Provider] {
			continue
		}
		delete(r.entries, key)
		log.Info().
			Str("provider", key.Provider).
			Int("store_id", storeID).
			Msg("oauth strategy invalidated, upstream credentials removed")
	}
}

// Len returns the number of active registrations.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
