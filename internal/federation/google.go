package federation

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/oauth2"
	googleOAuth2 "golang.org/x/oauth2/google"

	"github.com/ecomstore/passport/domain"
)

var googleUserInfoEndpoint = "https://www.googleapis.com/oauth2/v3/userinfo"

type googleStrategy struct {
	baseStrategy
}

func newGoogleStrategy(creds Credentials) *googleStrategy {
	return &googleStrategy{baseStrategy{
		name:  "google",
		creds: creds,
		scopes: []string{
			"https://www.googleapis.com/auth/userinfo.profile",
			"https://www.googleapis.com/auth/userinfo.email",
		},
		endpoint: googleOAuth2.Endpoint,
	}}
}

// ExchangeProfile implements Strategy.ExchangeProfile against Google's
// OIDC userinfo endpoint.
func (g *googleStrategy) ExchangeProfile(ctx context.Context, redirectURL, code string) (*domain.Profile, error) {
	token, err := g.exchange(ctx, redirectURL, code)
	if err != nil {
		return nil, err
	}

	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(token))
	resp, err := client.Get(googleUserInfoEndpoint)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchProfileFailed, err)
	}
	defer resp.Body.Close()

	rawBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %v", ErrFetchProfileFailed, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d: %s", ErrFetchProfileFailed, resp.StatusCode, rawBody)
	}

	var info struct {
		Sub        string `json:"sub"`
		Name       string `json:"name"`
		GivenName  string `json:"given_name"`
		FamilyName string `json:"family_name"`
		Picture    string `json:"picture"`
		Email      string `json:"email"`
		Locale     string `json:"locale"`
	}
	if err := json.Unmarshal(rawBody, &info); err != nil {
		return nil, fmt.Errorf("%w: unmarshal userinfo: %v", ErrFetchProfileFailed, err)
	}

	profile := &domain.Profile{
		Provider:    "google",
		ID:          info.Sub,
		DisplayName: info.Name,
		Name: &domain.ProfileName{
			GivenName:  info.GivenName,
			FamilyName: info.FamilyName,
		},
		Locale: info.Locale,
		Raw:    rawBody,
	}
	if info.Email != "" {
		profile.Emails = []domain.ProfileEmail{{Value: info.Email}}
	}
	if info.Picture != "" {
		profile.Photos = []domain.ProfilePhoto{{Value: info.Picture}}
	}
	return profile, nil
}

var _ Strategy = (*googleStrategy)(nil)
