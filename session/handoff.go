// Package session manages the cookie handoff that correlates a login
// attempt across the provider redirect round-trip. Three cookies are
// involved: a per-store correlation value stamped when the flow starts, a
// per-store pending request ID bound once the correlation is validated, and
// a plain store ID used to route custom-provider callbacks. All are
// httpOnly and live only for the browser session.
package session

import (
	"fmt"
	"net/http"
	"regexp"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/ecomstore/passport/domain"
	apperrors "github.com/ecomstore/passport/errors"
)

// StoreCookie carries the store ID across the provider redirect, so the
// callback for a custom app can recover which tenant started the flow.
const StoreCookie = "_passport_store"

var requestIDPattern = regexp.MustCompile(`^[\w.]{32}$`)

// ValidRequestID reports whether id is exactly 32 characters from
// [A-Za-z0-9_.].
func ValidRequestID(id string) bool {
	return requestIDPattern.MatchString(id)
}

// SigCookie returns the correlation cookie name for a store.
func SigCookie(storeID int) string {
	return fmt.Sprintf("_passport_%d_sig", storeID)
}

// IDCookie returns the pending request ID cookie name for a store.
func IDCookie(storeID int) string {
	return fmt.Sprintf("_passport_%d_id", storeID)
}

// HandoffState binds one login attempt: which store, which request, and the
// correlation value the browser must echo back on the oauth step. It is
// constructed at flow start and revalidated before the provider redirect.
type HandoffState struct {
	StoreID     int
	RequestID   string
	Correlation string
}

// OAuthPath returns the path the client must follow to begin the provider
// redirect for this handoff.
func (s HandoffState) OAuthPath() string {
	return fmt.Sprintf("/%d/%s/%s/oauth", s.StoreID, s.RequestID, s.Correlation)
}

// Manager issues and validates handoff state.
type Manager struct{}

// NewManager creates a session handoff manager.
func NewManager() *Manager {
	return &Manager{}
}

// Start begins a login flow: it generates a fresh correlation value, stamps
// it on the store-scoped correlation cookie, and returns the handoff state.
func (m *Manager) Start(c echo.Context, storeID int, requestID string) HandoffState {
	state := HandoffState{
		StoreID:     storeID,
		RequestID:   requestID,
		Correlation: uuid.NewString(),
	}
	setSessionCookie(c, SigCookie(storeID), state.Correlation)
	return state
}

// Validate checks a presented handoff against the browser's cookies. The
// rules apply in order and each failure is final:
//
//  1. the request ID must match the fixed pattern,
//  2. the store ID must be in the real-store range,
//  3. the presented correlation must equal the stored cookie value.
//
// On success the pending request ID and store cookies are bound for the
// callback leg and the validated state is returned.
func (m *Manager) Validate(c echo.Context, storeID int, requestID, correlation string) (HandoffState, error) {
	if !ValidRequestID(requestID) {
		return HandoffState{}, apperrors.NewValidation(
			`Invalid request ID, must follow RegEx pattern ^[\w.]{32}$`)
	}
	if !domain.ValidStoreID(storeID) {
		return HandoffState{}, apperrors.NewValidation("Invalid Store ID")
	}

	cookie, err := c.Cookie(SigCookie(storeID))
	if err != nil || cookie.Value == "" || cookie.Value != correlation {
		return HandoffState{}, apperrors.NewSession("Invalid session, restart flow at login.html")
	}

	setSessionCookie(c, IDCookie(storeID), requestID)
	setSessionCookie(c, StoreCookie, strconv.Itoa(storeID))

	return HandoffState{StoreID: storeID, RequestID: requestID, Correlation: correlation}, nil
}

// PendingRequestID reads the request ID bound for a store's callback leg.
func (m *Manager) PendingRequestID(c echo.Context, storeID int) (string, bool) {
	cookie, err := c.Cookie(IDCookie(storeID))
	if err != nil || cookie.Value == "" {
		return "", false
	}
	return cookie.Value, true
}

// ConsumePendingRequestID clears the pending request ID cookie. Called on
// the first successful profile read; the ID is single-use regardless of
// what happens downstream.
func (m *Manager) ConsumePendingRequestID(c echo.Context, storeID int) {
	clearCookie(c, IDCookie(storeID))
}

// CallbackStoreID recovers the store ID stamped before the redirect.
func (m *Manager) CallbackStoreID(c echo.Context) (int, bool) {
	cookie, err := c.Cookie(StoreCookie)
	if err != nil || cookie.Value == "" {
		return 0, false
	}
	id, err := strconv.Atoi(cookie.Value)
	if err != nil {
		return 0, false
	}
	return id, true
}

func setSessionCookie(c echo.Context, name, value string) {
	c.SetCookie(&http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
	})
}

func clearCookie(c echo.Context, name string) {
	c.SetCookie(&http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
}
