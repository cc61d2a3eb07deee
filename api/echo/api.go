// Package echo exposes the broker's HTTP surface: the login flow endpoints,
// the provider redirect and callback legs, and token retrieval.
package echo

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/ecomstore/passport/accounts"
	"github.com/ecomstore/passport/cache"
	"github.com/ecomstore/passport/config"
	"github.com/ecomstore/passport/domain"
	apperrors "github.com/ecomstore/passport/errors"
	"github.com/ecomstore/passport/internal/federation"
	"github.com/ecomstore/passport/internal/metrics"
	"github.com/ecomstore/passport/resolver"
	"github.com/ecomstore/passport/session"
	"github.com/ecomstore/passport/token"
)

// PassportAPI holds the handler dependencies.
type PassportAPI struct {
	cfg      *config.Config
	registry *federation.Registry
	sessions *session.Manager
	profiles cache.ProfileCache
	accounts accounts.Service
	resolver *resolver.Resolver
	issuer   *token.Issuer
}

// NewPassportAPI initializes the passport HTTP API.
func NewPassportAPI(
	cfg *config.Config,
	registry *federation.Registry,
	sessions *session.Manager,
	profiles cache.ProfileCache,
	accountsSvc accounts.Service,
	idResolver *resolver.Resolver,
	issuer *token.Issuer,
) *PassportAPI {
	return &PassportAPI{
		cfg:      cfg,
		registry: registry,
		sessions: sessions,
		profiles: profiles,
		accounts: accountsSvc,
		resolver: idResolver,
		issuer:   issuer,
	}
}

// RegisterRoutes registers the passport routes on g, which must be mounted
// at the configured base URI so the callback URLs handed to providers and
// the oauth paths handed to clients resolve back here.
func (a *PassportAPI) RegisterRoutes(g *echo.Group) {
	g.GET("/", a.AvailableProvidersHandler)
	g.GET("/:lang/:store/:id/login.html", a.LoginPageHandler)
	g.GET("/:lang/:store/:id/oauth-providers", a.OAuthProvidersHandler)
	g.POST("/:lang/:store/login.json", a.SimpleLoginHandler)
	g.GET("/:endpoint/:store/:id/:sig/oauth", a.OAuthStartHandler)
	g.GET("/:endpoint/callback.html", a.OAuthCallbackHandler)
	g.GET("/:store/:id/token.json", a.TokenHandler)
	g.GET("/:endpoint/:store/:id/token.json", a.TokenHandler)
}

// providerEntry is one provider in the login flow responses.
type providerEntry struct {
	Scope          []string `json:"scope,omitempty"`
	CustomStrategy bool     `json:"custom_strategy,omitempty"`
}

// loginFlowResponse is the payload of login.html and oauth-providers.
type loginFlowResponse struct {
	Store     *storeInfo               `json:"store,omitempty"`
	BaseURI   string                   `json:"base_uri"`
	OAuthPath string                   `json:"oauth_path"`
	Providers map[string]providerEntry `json:"providers"`
}

type storeInfo struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Logo string `json:"logo,omitempty"`
}

// authResponse is the success payload of token.json and login.json.
type authResponse struct {
	Customer any          `json:"customer"`
	Auth     authIdentity `json:"auth"`
}

type authIdentity struct {
	ID    string `json:"id"`
	Token string `json:"token"`
}

// AvailableProvidersHandler lists the app-wide providers accepting logins.
func (a *PassportAPI) AvailableProvidersHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, a.registry.Providers())
}

// LoginPageHandler starts a login flow: it validates the request ID,
// resolves the store, stamps the correlation cookie and returns the
// provider list with the computed oauth path.
func (a *PassportAPI) LoginPageHandler(c echo.Context) error {
	return a.startFlow(c, true)
}

// OAuthProvidersHandler is the JSON-only variant of LoginPageHandler: same
// resolution and cookie side effect, no store rendering data.
func (a *PassportAPI) OAuthProvidersHandler(c echo.Context) error {
	return a.startFlow(c, false)
}

func (a *PassportAPI) startFlow(c echo.Context, includeStore bool) error {
	requestID := c.Param("id")
	if !session.ValidRequestID(requestID) {
		return apperrors.NewValidation(`Invalid request ID, must follow RegEx pattern ^[\w.]{32}$`)
	}
	storeID, err := strconv.Atoi(c.Param("store"))
	if err != nil || !domain.ValidStoreID(storeID) {
		return apperrors.NewValidation("Invalid Store ID")
	}

	store, err := a.accounts.ReadStore(c.Request().Context(), storeID)
	if err != nil {
		if errors.Is(err, accounts.ErrNotFound) {
			return apperrors.NewNotFoundUpstream("Store not found")
		}
		log.Error().Err(err).Int("store_id", storeID).Msg("reading store failed")
		return apperrors.NewInternal()
	}

	state := a.sessions.Start(c, storeID, requestID)
	metrics.LoginStartedTotal.Inc()

	resp := loginFlowResponse{
		BaseURI:   a.cfg.BaseURI,
		OAuthPath: state.OAuthPath(),
		Providers: a.providerList(storeID, store),
	}
	if includeStore {
		info := &storeInfo{ID: storeID, Name: store.Name}
		if store.Logo != nil {
			info.Logo = store.Logo.URL
		}
		resp.Store = info
	}
	return c.JSON(http.StatusOK, resp)
}

// providerList merges the app-wide providers with the store's custom apps,
// marking the latter so the client can route through the combined
// provider-store endpoint.
func (a *PassportAPI) providerList(storeID int, store *domain.Store) map[string]providerEntry {
	providers := make(map[string]providerEntry)
	for _, name := range a.registry.Providers() {
		entry := providerEntry{}
		if reg, err := a.registry.Lookup(name, 0); err == nil {
			entry.Scope = reg.Strategy.Scopes()
		}
		providers[name] = entry
	}
	for name := range a.registry.StoreProviders(storeID) {
		entry := providers[name]
		entry.CustomStrategy = true
		if reg, err := a.registry.Lookup(name, storeID); err == nil {
			entry.Scope = reg.Strategy.Scopes()
		}
		providers[name] = entry
	}
	// A store may list a custom app upstream that is not registered yet;
	// it still shows up flagged so the client knows a pass is pending.
	for name := range store.OAuthProviders {
		if entry, ok := providers[name]; ok && !entry.CustomStrategy {
			entry.CustomStrategy = true
			providers[name] = entry
		}
	}
	return providers
}

// OAuthStartHandler begins the provider redirect. It validates the session
// handoff, binds the pending request cookies and sends the browser to the
// provider's authorization URL.
func (a *PassportAPI) OAuthStartHandler(c echo.Context) error {
	endpoint := c.Param("endpoint")
	storeID, err := strconv.Atoi(c.Param("store"))
	if err != nil {
		return apperrors.NewValidation("Invalid Store ID")
	}

	// A custom endpoint embeds the store ID; it must match the one on
	// the path.
	if _, endpointStore := federation.ParseEndpoint(endpoint); endpointStore != 0 && endpointStore != storeID {
		return apperrors.NewValidation("Invalid Store ID")
	}

	state, err := a.sessions.Validate(c, storeID, c.Param("id"), c.Param("sig"))
	if err != nil {
		metrics.LoginFailureTotal.Inc()
		return err
	}

	reg, err := a.registry.LookupEndpoint(endpoint)
	if err != nil {
		return apperrors.NewNotFoundUpstream("Provider not configured")
	}

	authURL := reg.Strategy.AuthCodeURL(state.RequestID, a.callbackURL(reg))
	return c.Redirect(http.StatusFound, authURL)
}

// OAuthCallbackHandler receives the provider redirect. On success it writes
// the profile cache entry; cache-side problems are logged and swallowed so
// the browser always gets the confirmation page. Provider protocol errors
// surface as the forbidden envelope.
func (a *PassportAPI) OAuthCallbackHandler(c echo.Context) error {
	reg, err := a.registry.LookupEndpoint(c.Param("endpoint"))
	if err != nil {
		return echo.ErrNotFound
	}

	if errParam := c.QueryParam("error"); errParam != "" {
		metrics.LoginFailureTotal.Inc()
		msg := c.QueryParam("error_description")
		if msg == "" {
			msg = errParam
		}
		return apperrors.NewForbidden(msg)
	}
	code := c.QueryParam("code")
	if code == "" {
		metrics.LoginFailureTotal.Inc()
		return apperrors.NewForbidden("Missing authorization code")
	}

	ctx := c.Request().Context()
	profile, err := reg.Strategy.ExchangeProfile(ctx, a.callbackURL(reg), code)
	if err != nil {
		metrics.LoginFailureTotal.Inc()
		log.Warn().Err(err).Str("endpoint", reg.Endpoint).Msg("provider exchange failed")
		return apperrors.NewForbidden(err.Error())
	}

	a.storeProfile(c, reg, profile)

	return c.HTML(http.StatusOK, callbackPage)
}

// storeProfile writes the callback's profile to the cache. Every failure
// path only logs: a missing write reads back as "absent" on the poll side,
// which is the correct signal.
func (a *PassportAPI) storeProfile(c echo.Context, reg *federation.Registration, profile *domain.Profile) {
	storeID := reg.StoreID
	if storeID == 0 {
		id, ok := a.sessions.CallbackStoreID(c)
		if !ok {
			log.Warn().Str("endpoint", reg.Endpoint).Msg("callback without store cookie, profile dropped")
			return
		}
		storeID = id
	}

	requestID, ok := a.sessions.PendingRequestID(c, storeID)
	if !ok || !session.ValidRequestID(requestID) {
		log.Warn().Int("store_id", storeID).Msg("callback without valid pending request ID, profile dropped")
		return
	}

	// Raw transport data is excluded from the profile's JSON encoding, so
	// the cached value carries identity fields only.
	payload, err := json.Marshal(profile)
	if err != nil {
		log.Error().Err(err).Int("store_id", storeID).Msg("profile serialization failed, write skipped")
		return
	}

	ctx := c.Request().Context()
	if err := a.profiles.Put(ctx, storeID, requestID, payload, a.cfg.ProfileTTL()); err != nil {
		log.Error().Err(err).Int("store_id", storeID).Msg("profile cache write failed")
		return
	}
	metrics.ProfilesCachedTotal.Inc()
}

// TokenHandler resolves the cached profile to a customer account and
// returns the signed credential. The pending request ID cookie is consumed
// on the first successful cache read, whatever happens after.
func (a *PassportAPI) TokenHandler(c echo.Context) error {
	storeID, err := strconv.Atoi(c.Param("store"))
	if err != nil || !domain.ValidStoreID(storeID) {
		return apperrors.NewUnauthorized(fmt.Sprintf("Unauthorized, invalid store ID: %s", c.Param("store")))
	}
	requestID := c.Param("id")

	ctx := c.Request().Context()
	payload, err := a.profiles.Get(ctx, storeID, requestID)
	if err != nil {
		if errors.Is(err, cache.ErrAbsent) {
			return apperrors.NewUnauthorized(fmt.Sprintf("Unauthorized, request ID (%s) doesn't match", requestID))
		}
		log.Error().Err(err).Int("store_id", storeID).Msg("profile cache read failed")
		return apperrors.NewInternal()
	}

	a.sessions.ConsumePendingRequestID(c, storeID)

	if len(payload) == 0 {
		return apperrors.NewForbidden("Forbidden, no profile found, restart the OAuth flux")
	}

	var profile domain.Profile
	if err := json.Unmarshal(payload, &profile); err != nil {
		return apperrors.NewForbidden("Forbidden, invalid profile object, restart the OAuth flux")
	}

	customer, err := a.resolver.Resolve(ctx, storeID, &profile)
	if err != nil {
		metrics.LoginFailureTotal.Inc()
		return err
	}

	signed, err := a.issuer.Issue(storeID, customer.ID, token.LevelIdentity, a.cfg.TokenTTL())
	if err != nil {
		log.Error().Err(err).Int("store_id", storeID).Msg("token signing failed")
		return apperrors.NewInternal()
	}
	metrics.TokensIssuedTotal.Inc()

	return c.JSON(http.StatusOK, authResponse{
		Customer: customer,
		Auth:     authIdentity{ID: customer.ID, Token: signed},
	})
}

// simpleLoginRequest is the login.json body.
type simpleLoginRequest struct {
	Email     string `json:"email"`
	DocNumber string `json:"doc_number"`
}

// SimpleLoginHandler is the non-OAuth login path: email plus optional
// document number, straight against the account directory. Trust level is 2
// only when both were supplied and matched.
func (a *PassportAPI) SimpleLoginHandler(c echo.Context) error {
	storeID, err := strconv.Atoi(c.Param("store"))
	if err != nil || !domain.ValidStoreID(storeID) {
		return apperrors.NewValidation("Invalid Store ID")
	}

	var body simpleLoginRequest
	if err := c.Bind(&body); err != nil || body.Email == "" {
		return apperrors.NewForbidden("Forbidden, no profile found with email provided")
	}

	ctx := c.Request().Context()
	customer, err := a.resolver.ResolveByEmail(ctx, storeID, body.Email, body.DocNumber)
	if err != nil {
		metrics.LoginFailureTotal.Inc()
		if errors.Is(err, accounts.ErrNotFound) {
			return apperrors.NewForbidden("Forbidden, no profile found with email provided")
		}
		return err
	}

	level := token.LevelIdentity
	if body.DocNumber != "" {
		level = token.LevelVerified
	}

	signed, err := a.issuer.Issue(storeID, customer.ID, level, a.cfg.TokenTTL())
	if err != nil {
		log.Error().Err(err).Int("store_id", storeID).Msg("token signing failed")
		return apperrors.NewInternal()
	}
	metrics.TokensIssuedTotal.Inc()

	return c.JSON(http.StatusOK, authResponse{
		Customer: customer.Public(),
		Auth:     authIdentity{ID: customer.ID, Token: signed},
	})
}

// callbackURL builds the absolute callback the provider redirects back to.
// The pattern is identical for every registration.
func (a *PassportAPI) callbackURL(reg *federation.Registration) string {
	return a.cfg.Host + a.cfg.BaseURI + reg.Endpoint + "/callback.html"
}
