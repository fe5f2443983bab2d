package web

import (
	"encoding/json"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zachkp/portfolio-contact/internal/config"
	"github.com/Zachkp/portfolio-contact/internal/handoff"
)

func (e *testEnv) login(t *testing.T, username, password string) *http.Cookie {
	t.Helper()
	w := e.do(http.MethodPost, "/admin/login",
		formBody(url.Values{"username": {username}, "password": {password}}),
		map[string]string{"Content-Type": "application/x-www-form-urlencoded"})
	for _, c := range w.Result().Cookies() {
		if c.Name == adminCookie && c.Value != "" {
			return c
		}
	}
	return nil
}

func cookieHeader(c *http.Cookie) map[string]string {
	return map[string]string{"Cookie": c.Name + "=" + c.Value}
}

func TestAdminLoginRejectsBadCredentials(t *testing.T) {
	e := newTestEnv(t, nil)

	assert.Nil(t, e.login(t, "owner", "wrong"))
	assert.Nil(t, e.login(t, "admin", "admin123"), "dev defaults only apply without configured credentials")
}

func TestAdminLoginSetsStrictCookie(t *testing.T) {
	e := newTestEnv(t, nil)

	c := e.login(t, "owner", "s3cret")
	require.NotNil(t, c)
	assert.Equal(t, e.server.adminToken, c.Value)
	assert.Equal(t, "/admin", c.Path)
	assert.True(t, c.HttpOnly)
	assert.Equal(t, http.SameSiteStrictMode, c.SameSite)
}

func TestAdminRoutesRequireToken(t *testing.T) {
	e := newTestEnv(t, nil)

	for _, path := range []string{"/admin/api/stats", "/admin/api/handoffs"} {
		w := e.do(http.MethodGet, path, nil, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)

		w = e.do(http.MethodGet, path, nil, map[string]string{"Cookie": adminCookie + "=forged"})
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}
	w := e.do(http.MethodPost, "/admin/privacy/cleanup", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminStatsAndHandoffs(t *testing.T) {
	e := newTestEnv(t, nil)
	h := map[string]string{"User-Agent": desktopUA, "Accept": "application/json"}
	require.Equal(t, http.StatusOK, e.do(http.MethodPost, "/contact/start-project", nil, h).Code)
	require.Equal(t, http.StatusOK, e.do(http.MethodPost, "/contact/schedule-call", nil, h).Code)

	c := e.login(t, "owner", "s3cret")
	require.NotNil(t, c)

	w := e.do(http.MethodGet, "/admin/api/stats", nil, cookieHeader(c))
	require.Equal(t, http.StatusOK, w.Code)
	var stats handoff.Stats
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.EqualValues(t, 2, stats.TotalHandoffs)
	assert.EqualValues(t, 1, stats.ByChannel["email"])
	assert.EqualValues(t, 1, stats.ByChannel["whatsapp"])
	assert.EqualValues(t, 2, stats.ByEnvironment["desktop"])

	w = e.do(http.MethodGet, "/admin/api/handoffs?limit=1", nil, cookieHeader(c))
	require.Equal(t, http.StatusOK, w.Code)
	var got struct {
		Handoffs []handoff.Record `json:"handoffs"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got.Handoffs, 1)
	assert.Equal(t, "whatsapp", got.Handoffs[0].Channel)
}

func TestAdminPrivacyCleanup(t *testing.T) {
	e := newTestEnv(t, nil)
	c := e.login(t, "owner", "s3cret")
	require.NotNil(t, c)

	w := e.do(http.MethodPost, "/admin/privacy/cleanup", nil, cookieHeader(c))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"removed":0}`, w.Body.String())
}

func TestAdminLogoutClearsCookie(t *testing.T) {
	e := newTestEnv(t, nil)

	w := e.do(http.MethodGet, "/admin/logout", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var cleared bool
	for _, c := range w.Result().Cookies() {
		if c.Name == adminCookie && c.MaxAge < 0 {
			cleared = true
		}
	}
	assert.True(t, cleared)
}

func TestAdminDevDefaults(t *testing.T) {
	e := newTestEnv(t, func(c *config.Config) {
		c.AdminUsername, c.AdminPassword = "", ""
	})
	assert.NotNil(t, e.login(t, "admin", "admin123"))
}

func TestAdminDisabledInProductionWithoutCredentials(t *testing.T) {
	e := newTestEnv(t, func(c *config.Config) {
		c.Env = "production"
		c.AdminUsername, c.AdminPassword = "", ""
	})

	w := e.do(http.MethodPost, "/admin/login",
		formBody(url.Values{"username": {"admin"}, "password": {"admin123"}}),
		map[string]string{"Content-Type": "application/x-www-form-urlencoded"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdminDashboard(t *testing.T) {
	e := newTestEnv(t, nil)
	h := map[string]string{"User-Agent": desktopUA, "Accept": "application/json", PopupBlockedHeader: "1"}
	require.Equal(t, http.StatusOK, e.do(http.MethodPost, "/contact/start-project", nil, h).Code)

	assert.Equal(t, http.StatusUnauthorized, e.do(http.MethodGet, "/admin/dashboard", nil, nil).Code)

	c := e.login(t, "owner", "s3cret")
	require.NotNil(t, c)
	w := e.do(http.MethodGet, "/admin/dashboard", nil, cookieHeader(c))
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "1 total, 1 used the same-tab fallback")
	assert.Contains(t, body, "<td>native-new</td>")
	assert.NotContains(t, body, "No handoffs yet.")
}
