package session_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/ecomstore/passport/errors"
	"github.com/ecomstore/passport/session"
)

const validRequestID = "a1b2c3d4e5f6a1b2c3d4e5f6a1b2c3d4"

func newEchoContext(t *testing.T, cookies ...*http.Cookie) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	return echo.New().NewContext(req, rec), rec
}

func TestValidRequestID(t *testing.T) {
	tests := []struct {
		name string
		id   string
		want bool
	}{
		{"valid hex", validRequestID, true},
		{"valid with underscore and dot", "abc_def.0123456789abcdef01234567", true},
		{"all underscores", strings.Repeat("_", 32), true},
		{"empty", "", false},
		{"too short", validRequestID[:31], false},
		{"too long", validRequestID + "0", false},
		{"hyphen not allowed", "a1b2c3d4e5f6a1b2c3d4e5f6a1b2c3d-", false},
		{"space not allowed", "a1b2c3d4e5f6a1b2c3d4e5f6a1b2c3d ", false},
		{"slash not allowed", "a1b2c3d4e5f6a1b2c3d4e5f6a1b2c3d/", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, session.ValidRequestID(tt.id))
		})
	}
}

func TestStartStampsCorrelationCookie(t *testing.T) {
	c, rec := newEchoContext(t)
	m := session.NewManager()

	state := m.Start(c, 150, validRequestID)

	require.NotEmpty(t, state.Correlation)
	assert.Equal(t, 150, state.StoreID)
	assert.Equal(t, "/150/"+validRequestID+"/"+state.Correlation+"/oauth", state.OAuthPath())

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "_passport_150_sig", cookies[0].Name)
	assert.Equal(t, state.Correlation, cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
	// Session-lifetime cookie: no explicit expiry.
	assert.Zero(t, cookies[0].MaxAge)
	assert.True(t, cookies[0].Expires.IsZero())
}

func TestValidateRejectsMalformedRequestID(t *testing.T) {
	c, _ := newEchoContext(t)
	m := session.NewManager()

	_, err := m.Validate(c, 150, "short", "sig")

	var appErr *apperrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, http.StatusBadRequest, appErr.Status)
	assert.Contains(t, appErr.Message, "Invalid request ID")
}

func TestValidateRejectsReservedStoreIDs(t *testing.T) {
	m := session.NewManager()

	for _, storeID := range []int{-1, 0, 1, 50, 100} {
		c, _ := newEchoContext(t, &http.Cookie{Name: session.SigCookie(storeID), Value: "sig"})
		_, err := m.Validate(c, storeID, validRequestID, "sig")

		var appErr *apperrors.Error
		require.ErrorAs(t, err, &appErr, "store %d must be rejected", storeID)
		assert.Equal(t, http.StatusBadRequest, appErr.Status)
		assert.Equal(t, "Invalid Store ID", appErr.Message)
	}
}

func TestValidateRejectsCorrelationMismatch(t *testing.T) {
	m := session.NewManager()

	c, _ := newEchoContext(t, &http.Cookie{Name: session.SigCookie(150), Value: "expected"})
	_, err := m.Validate(c, 150, validRequestID, "presented")

	var appErr *apperrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, http.StatusBadRequest, appErr.Status)
	assert.Contains(t, appErr.Message, "Invalid session")
}

func TestValidateRejectsMissingCorrelationCookie(t *testing.T) {
	m := session.NewManager()

	c, _ := newEchoContext(t)
	_, err := m.Validate(c, 150, validRequestID, "anything")

	var appErr *apperrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Contains(t, appErr.Message, "Invalid session")
}

func TestValidateSuccessBindsPendingCookies(t *testing.T) {
	m := session.NewManager()

	c, rec := newEchoContext(t, &http.Cookie{Name: session.SigCookie(150), Value: "match"})
	state, err := m.Validate(c, 150, validRequestID, "match")
	require.NoError(t, err)
	assert.Equal(t, validRequestID, state.RequestID)

	byName := make(map[string]*http.Cookie)
	for _, cookie := range rec.Result().Cookies() {
		byName[cookie.Name] = cookie
	}
	require.Contains(t, byName, "_passport_150_id")
	assert.Equal(t, validRequestID, byName["_passport_150_id"].Value)
	require.Contains(t, byName, session.StoreCookie)
	assert.Equal(t, "150", byName[session.StoreCookie].Value)
}

func TestPendingRequestIDConsume(t *testing.T) {
	m := session.NewManager()

	c, rec := newEchoContext(t, &http.Cookie{Name: session.IDCookie(150), Value: validRequestID})
	id, ok := m.PendingRequestID(c, 150)
	require.True(t, ok)
	assert.Equal(t, validRequestID, id)

	m.ConsumePendingRequestID(c, 150)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, session.IDCookie(150), cookies[0].Name)
	assert.Negative(t, cookies[0].MaxAge)
}

func TestCallbackStoreID(t *testing.T) {
	m := session.NewManager()

	c, _ := newEchoContext(t, &http.Cookie{Name: session.StoreCookie, Value: "151"})
	id, ok := m.CallbackStoreID(c)
	require.True(t, ok)
	assert.Equal(t, 151, id)

	c, _ = newEchoContext(t, &http.Cookie{Name: session.StoreCookie, Value: "not-a-number"})
	_, ok = m.CallbackStoreID(c)
	assert.False(t, ok)

	c, _ = newEchoContext(t)
	_, ok = m.CallbackStoreID(c)
	assert.False(t, ok)
}
