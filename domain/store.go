package domain

import "encoding/json"

// MinStoreID is the lower bound of real store IDs. IDs at or below it are
// reserved for tests and platform internals and are rejected everywhere.
const MinStoreID = 100

// Store is a storefront (tenant) record from the platform API.
type Store struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Logo *struct {
		URL string `json:"url"`
	} `json:"logo,omitempty"`

	// OAuthProviders lists the providers the store configured a custom
	// OAuth app for, keyed by provider name. Only the keys matter here;
	// the credentials themselves come from the Store API.
	OAuthProviders map[string]json.RawMessage `json:"oauth_providers,omitempty"`
}

// ValidStoreID reports whether id is in the range allowed for real stores.
func ValidStoreID(id int) bool {
	return id > MinStoreID
}
