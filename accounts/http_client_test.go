package accounts_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecomstore/passport/accounts"
	"github.com/ecomstore/passport/domain"
)

func TestReadStore(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/stores/151.json", r.URL.Path)
		assert.Equal(t, "151", r.Header.Get("X-Store-ID"))
		w.Write([]byte(`{"id":151,"name":"Acme","oauth_providers":{"facebook":{}}}`))
	}))
	defer srv.Close()

	store, err := accounts.NewHTTPClient(srv.URL, srv.URL).ReadStore(context.Background(), 151)
	require.NoError(t, err)
	assert.Equal(t, 151, store.ID)
	assert.Equal(t, "Acme", store.Name)
	assert.Contains(t, store.OAuthProviders, "facebook")
}

func TestReadStoreNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := accounts.NewHTTPClient(srv.URL, srv.URL).ReadStore(context.Background(), 151)
	assert.ErrorIs(t, err, accounts.ErrNotFound)
}

func TestListStores(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/stores.json", r.URL.Path)
		assert.Empty(t, r.Header.Get("X-Store-ID"))
		w.Write([]byte(`{"result":[{"id":151},{"id":152}]}`))
	}))
	defer srv.Close()

	stores, err := accounts.NewHTTPClient("http://store.invalid", srv.URL).ListStores(context.Background())
	require.NoError(t, err)
	require.Len(t, stores, 2)
	assert.Equal(t, 152, stores[1].ID)
}

func TestProviderAppsNotFoundMeansNone(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	apps, err := accounts.NewHTTPClient(srv.URL, srv.URL).ProviderApps(context.Background(), 151)
	require.NoError(t, err)
	assert.Empty(t, apps)
}

func TestProviderApps(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/stores/151/oauth-apps.json", r.URL.Path)
		w.Write([]byte(`{"facebook":{"client_id":"fb-id","client_secret":"fb-secret"}}`))
	}))
	defer srv.Close()

	apps, err := accounts.NewHTTPClient(srv.URL, srv.URL).ProviderApps(context.Background(), 151)
	require.NoError(t, err)
	require.Contains(t, apps, "facebook")
	assert.Equal(t, "fb-id", apps["facebook"].ClientID)
}

func TestFindCustomerByProviderIdentity(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/customers/find.json", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "facebook", q.Get("provider"))
		assert.Equal(t, "fb-42", q.Get("oauth_id"))
		assert.Equal(t, "ada@example.com", q.Get("email"))
		w.Write([]byte(`{"result":[{"_id":"cust-1","main_email":"ada@example.com"}]}`))
	}))
	defer srv.Close()

	customer, err := accounts.NewHTTPClient(srv.URL, srv.URL).
		FindCustomerByProviderIdentity(context.Background(), 151, "facebook", "fb-42", "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, "cust-1", customer.ID)
}

func TestFindCustomerEmptyResultIsNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"result":[]}`))
	}))
	defer srv.Close()

	_, err := accounts.NewHTTPClient(srv.URL, srv.URL).
		FindCustomerByProviderIdentity(context.Background(), 151, "facebook", "fb-42", "")
	assert.ErrorIs(t, err, accounts.ErrNotFound)
}

func TestCreateCustomerUpstreamMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"user_message":"Email is already taken"}`))
	}))
	defer srv.Close()

	_, err := accounts.NewHTTPClient(srv.URL, srv.URL).
		CreateCustomer(context.Background(), 151, &domain.Profile{Provider: "facebook", ID: "fb-42"})
	var upstream *accounts.UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, http.StatusUnprocessableEntity, upstream.StatusCode)
	assert.Equal(t, "Email is already taken", upstream.Message)
}

func TestCreateCustomer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/customers.json", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		w.Write([]byte(`{"_id":"cust-new"}`))
	}))
	defer srv.Close()

	customer, err := accounts.NewHTTPClient(srv.URL, srv.URL).
		CreateCustomer(context.Background(), 151, &domain.Profile{Provider: "google", ID: "g-1"})
	require.NoError(t, err)
	assert.Equal(t, "cust-new", customer.ID)
}

func TestFindCustomerByEmail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "ada@example.com", q.Get("email"))
		assert.Equal(t, "123", q.Get("doc_number"))
		w.Write([]byte(`{"result":[{"_id":"cust-1"}]}`))
	}))
	defer srv.Close()

	customer, err := accounts.NewHTTPClient(srv.URL, srv.URL).
		FindCustomerByEmail(context.Background(), 151, "ada@example.com", "123")
	require.NoError(t, err)
	assert.Equal(t, "cust-1", customer.ID)
}

func TestUpstreamMessageFallsBackToMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`{"message":"backend unavailable"}`))
	}))
	defer srv.Close()

	_, err := accounts.NewHTTPClient(srv.URL, srv.URL).ListStores(context.Background())
	var upstream *accounts.UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, "backend unavailable", upstream.Message)
}
