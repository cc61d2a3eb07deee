package domain

import "encoding/json"

// ProfileEmail is one email entry on a provider profile. Providers list
// verified addresses first, so Emails[0] is treated as the primary one.
type ProfileEmail struct {
	Value string `json:"value"`
}

// ProfileName carries the structured name fields providers return.
type ProfileName struct {
	GivenName  string `json:"givenName,omitempty"`
	MiddleName string `json:"middleName,omitempty"`
	FamilyName string `json:"familyName,omitempty"`
}

// ProfilePhoto is a profile picture reference.
type ProfilePhoto struct {
	Value string `json:"value"`
}

// Profile is the normalized identity returned by a provider strategy.
// Raw holds the provider's transport payload for debugging and is excluded
// from serialization so it never reaches the profile cache.
type Profile struct {
	Provider    string         `json:"provider"`
	ID          string         `json:"id"`
	DisplayName string         `json:"displayName,omitempty"`
	Name        *ProfileName   `json:"name,omitempty"`
	Emails      []ProfileEmail `json:"emails,omitempty"`
	Photos      []ProfilePhoto `json:"photos,omitempty"`
	Gender      string         `json:"gender,omitempty"`
	Locale      string         `json:"locale,omitempty"`
	Birthday    string         `json:"birthday,omitempty"`

	Raw json.RawMessage `json:"-"`
}

// PrimaryEmail returns the first listed email, or "" when the provider
// returned none.
func (p *Profile) PrimaryEmail() string {
	if len(p.Emails) > 0 {
		return p.Emails[0].Value
	}
	return ""
}
