package federation

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/oauth2"
	facebookOAuth2 "golang.org/x/oauth2/facebook"

	"github.com/ecomstore/passport/domain"
)

var facebookGraphEndpoint = "https://graph.facebook.com/v12.0/me"

// facebookProfileFields are the extended fields requested from the Graph
// API on top of the default id/name set.
var facebookProfileFields = []string{
	"id",
	"first_name",
	"middle_name",
	"last_name",
	"age_range",
	"gender",
	"locale",
	"verified",
	"picture",
	"email",
	"birthday",
}

type facebookStrategy struct {
	baseStrategy
}

func newFacebookStrategy(creds Credentials) *facebookStrategy {
	return &facebookStrategy{baseStrategy{
		name:  "facebook",
		creds: creds,
		scopes: []string{
			"email",
			"public_profile",
			"user_birthday",
		},
		endpoint: facebookOAuth2.Endpoint,
	}}
}

// ExchangeProfile implements Strategy.ExchangeProfile against the Facebook
// Graph API, requesting the extended profile field set.
func (f *facebookStrategy) ExchangeProfile(ctx context.Context, redirectURL, code string) (*domain.Profile, error) {
	token, err := f.exchange(ctx, redirectURL, code)
	if err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("fields", strings.Join(facebookProfileFields, ","))

	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(token))
	resp, err := client.Get(facebookGraphEndpoint + "?" + q.Encode())
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
		ID         string `json:"id"`
		FirstName  string `json:"first_name"`
		MiddleName string `json:"middle_name"`
		LastName   string `json:"last_name"`
		Gender     string `json:"gender"`
		Locale     string `json:"locale"`
		Email      string `json:"email"`
		Birthday   string `json:"birthday"`
		Picture    *struct {
			Data struct {
				URL string `json:"url"`
			} `json:"data"`
		} `json:"picture"`
	}
	if err := json.Unmarshal(rawBody, &info); err != nil {
		return nil, fmt.Errorf("%w: unmarshal profile: %v", ErrFetchProfileFailed, err)
	}

	profile := &domain.Profile{
		Provider:    "facebook",
		ID:          info.ID,
		DisplayName: strings.TrimSpace(strings.Join([]string{info.FirstName, info.LastName}, " ")),
		Name: &domain.ProfileName{
			GivenName:  info.FirstName,
			MiddleName: info.MiddleName,
			FamilyName: info.LastName,
		},
		Gender:   info.Gender,
		Locale:   info.Locale,
		Birthday: info.Birthday,
		Raw:      rawBody,
	}
	if info.Email != "" {
		profile.Emails = []domain.ProfileEmail{{Value: info.Email}}
	}
	if info.Picture != nil && info.Picture.Data.URL != "" {
		profile.Photos = []domain.ProfilePhoto{{Value: info.Picture.Data.URL}}
	}
	return profile, nil
}

var _ Strategy = (*facebookStrategy)(nil)
