package accounts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ecomstore/passport/config"
	"github.com/ecomstore/passport/domain"
)

// HTTPClient implements Service against the platform's REST APIs.
// The Store API serves per-store resources (customers, oauth apps); the
// main API serves the platform-wide store listing.
type HTTPClient struct {
	storeAPI string
	mainAPI  string
	http     *http.Client
}

// NewHTTPClient creates a Store API client. Base URLs must not end with a
// trailing slash.
func NewHTTPClient(storeAPIURL, mainAPIURL string) *HTTPClient {
	return &HTTPClient{
		storeAPI: strings.TrimSuffix(storeAPIURL, "/"),
		mainAPI:  strings.TrimSuffix(mainAPIURL, "/"),
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

var _ Service = (*HTTPClient)(nil)

// apiError is the upstream error body shape: either a user_message or a
// plain message, depending on the endpoint.
type apiError struct {
	UserMessage string `json:"user_message"`
	Message     string `json:"message"`
}

func (c *HTTPClient) do(ctx context.Context, method, rawURL string, storeID int, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("accounts: marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, reqBody)
	if err != nil {
		return fmt.Errorf("accounts: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if storeID > 0 {
		req.Header.Set("X-Store-ID", fmt.Sprintf("%d", storeID))
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("accounts: %s %s: %w", method, rawURL, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode >= 400:
		var apiErr apiError
		raw, _ := io.ReadAll(resp.Body)
		_ = json.Unmarshal(raw, &apiErr)
		msg := apiErr.UserMessage
		if msg == "" {
			msg = apiErr.Message
		}
		log.Warn().
			Int("status", resp.StatusCode).
			Str("url", rawURL).
			Str("upstream_error", msg).
			Msg("store api request failed")
		return &UpstreamError{StatusCode: resp.StatusCode, Message: msg}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("accounts: decode response: %w", err)
	}
	return nil
}

// ReadStore implements Service.ReadStore.
func (c *HTTPClient) ReadStore(ctx context.Context, storeID int) (*domain.Store, error) {
	var store domain.Store
	u := fmt.Sprintf("%s/stores/%d.json", c.storeAPI, storeID)
	if err := c.do(ctx, http.MethodGet, u, storeID, nil, &store); err != nil {
		return nil, err
	}
	return &store, nil
}

// ListStores implements Service.ListStores.
func (c *HTTPClient) ListStores(ctx context.Context) ([]domain.Store, error) {
	var result struct {
		Result []domain.Store `json:"result"`
	}
	u := c.mainAPI + "/stores.json"
	if err := c.do(ctx, http.MethodGet, u, 0, nil, &result); err != nil {
		return nil, err
	}
	return result.Result, nil
}

// ProviderApps implements Service.ProviderApps.
func (c *HTTPClient) ProviderApps(ctx context.Context, storeID int) (map[string]config.ProviderCredentials, error) {
	apps := make(map[string]config.ProviderCredentials)
	u := fmt.Sprintf("%s/stores/%d/oauth-apps.json", c.storeAPI, storeID)
	if err := c.do(ctx, http.MethodGet, u, storeID, nil, &apps); err != nil {
		if err == ErrNotFound {
			return map[string]config.ProviderCredentials{}, nil
		}
		return nil, err
	}
	return apps, nil
}

// FindCustomerByProviderIdentity implements the primary OAuth-path lookup.
func (c *HTTPClient) FindCustomerByProviderIdentity(
	ctx context.Context, storeID int, provider, subjectID, email string,
) (*domain.Customer, error) {
	q := url.Values{}
	q.Set("provider", provider)
	q.Set("oauth_id", subjectID)
	if email != "" {
		q.Set("email", email)
	}

	var found struct {
		Result []domain.Customer `json:"result"`
	}
	u := fmt.Sprintf("%s/customers/find.json?%s", c.storeAPI, q.Encode())
	if err := c.do(ctx, http.MethodGet, u, storeID, nil, &found); err != nil {
		return nil, err
	}
	if len(found.Result) == 0 {
		return nil, ErrNotFound
	}
	return &found.Result[0], nil
}

// CreateCustomer implements Service.CreateCustomer. The full profile is
// forwarded; the directory decides which fields to keep.
func (c *HTTPClient) CreateCustomer(ctx context.Context, storeID int, profile *domain.Profile) (*domain.Customer, error) {
	var customer domain.Customer
	u := c.storeAPI + "/customers.json"
	if err := c.do(ctx, http.MethodPost, u, storeID, profile, &customer); err != nil {
		return nil, err
	}
	return &customer, nil
}

// FindCustomerByEmail implements the simple-login lookup.
func (c *HTTPClient) FindCustomerByEmail(ctx context.Context, storeID int, email, docNumber string) (*domain.Customer, error) {
	q := url.Values{}
	q.Set("email", email)
	if docNumber != "" {
		q.Set("doc_number", docNumber)
	}

	var found struct {
		Result []domain.Customer `json:"result"`
	}
	u := fmt.Sprintf("%s/customers/find.json?%s", c.storeAPI, q.Encode())
	if err := c.do(ctx, http.MethodGet, u, storeID, nil, &found); err != nil {
		return nil, err
	}
	if len(found.Result) == 0 {
		return nil, ErrNotFound
	}
	return &found.Result[0], nil
}
