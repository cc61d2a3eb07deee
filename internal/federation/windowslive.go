package federation

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/oauth2"
	microsoftOAuth2 "golang.org/x/oauth2/microsoft"

	"github.com/ecomstore/passport/domain"
)

var windowsLiveUserInfoEndpoint = "https://apis.live.net/v5.0/me"

type windowsLiveStrategy struct {
	baseStrategy
}

func newWindowsLiveStrategy(creds Credentials) *windowsLiveStrategy {
	return &windowsLiveStrategy{baseStrategy{
		name:  "windowslive",
		creds: creds,
		scopes: []string{
			"wl.signin",
			"wl.basic",
			"wl.emails",
			"wl.birthday",
		},
		endpoint: microsoftOAuth2.LiveConnectEndpoint,
	}}
}

// ExchangeProfile implements Strategy.ExchangeProfile against the Live
// Connect API.
func (w *windowsLiveStrategy) ExchangeProfile(ctx context.Context, redirectURL, code string) (*domain.Profile, error) {
	token, err := w.exchange(ctx, redirectURL, code)
	if err != nil {
		return nil, err
	}

	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(token))
	resp, err := client.Get(windowsLiveUserInfoEndpoint)
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
		ID        string `json:"id"`
		Name      string `json:"name"`
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
		Gender    string `json:"gender"`
		Locale    string `json:"locale"`
		Emails    *struct {
			Preferred string `json:"preferred"`
			Account   string `json:"account"`
		} `json:"emails"`
	}
	if err := json.Unmarshal(rawBody, &info); err != nil {
		return nil, fmt.Errorf("%w: unmarshal profile: %v", ErrFetchProfileFailed, err)
	}

	profile := &domain.Profile{
		Provider:    "windowslive",
		ID:          info.ID,
		DisplayName: info.Name,
		Name: &domain.ProfileName{
			GivenName:  info.FirstName,
			FamilyName: info.LastName,
		},
		Gender: info.Gender,
		Locale: info.Locale,
		Raw:    rawBody,
	}
	if info.Emails != nil {
		email := info.Emails.Preferred
		if email == "" {
			email = info.Emails.Account
		}
		if email != "" {
			profile.Emails = []domain.ProfileEmail{{Value: email}}
		}
	}
	return profile, nil
}

var _ Strategy = (*windowsLiveStrategy)(nil)
