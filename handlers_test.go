package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *WebServer {
	t.Helper()
	server, err := NewWebServer(ServerConfig{
		DBPath:       filepath.Join(t.TempDir(), "test.db"),
		SessionKey:   "test-key",
		TemplateGlob: "templates/*.html",
	})
	require.NoError(t, err)
	t.Cleanup(server.Close)
	return server
}

// signupAndLogin registers a user and returns the session cookies from a
// successful login.
func signupAndLogin(t *testing.T, server *WebServer, email, password string) []*http.Cookie {
	t.Helper()

	form := url.Values{}
	form.Add("email", email)
	form.Add("password", password)

	req := httptest.NewRequest("POST", "/signup", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	server.router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusSeeOther, rr.Code)

	req = httptest.NewRequest("POST", "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr = httptest.NewRecorder()
	server.router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusSeeOther, rr.Code)
	require.Equal(t, "/dashboard", rr.Header().Get("Location"))

	cookies := rr.Result().Cookies()
	require.NotEmpty(t, cookies)
	return cookies
}

func apiRequest(server *WebServer, method, path, body string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}
	rr := httptest.NewRecorder()
	server.router.ServeHTTP(rr, req)
	return rr
}

func TestAPIRequiresAuthentication(t *testing.T) {
	server := newTestServer(t)

	rr := apiRequest(server, "GET", "/api/watchlist", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestDashboardRedirectsWithoutAuth(t *testing.T) {
	server := newTestServer(t)

	req := httptest.NewRequest("GET", "/dashboard", nil)
	rr := httptest.NewRecorder()
	server.router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/login", rr.Header().Get("Location"))
}

func TestSignupDuplicateEmail(t *testing.T) {
	server := newTestServer(t)
	signupAndLogin(t, server, "alice@example.com", "password123")

	form := url.Values{}
	form.Add("email", "alice@example.com")
	form.Add("password", "other-password")

	req := httptest.NewRequest("POST", "/signup", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	server.router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Contains(t, rr.Body.String(), "already registered")
}

func TestLoginRejectsBadPassword(t *testing.T) {
	server := newTestServer(t)
	signupAndLogin(t, server, "alice@example.com", "password123")

	form := url.Values{}
	form.Add("email", "alice@example.com")
	form.Add("password", "wrong")

	req := httptest.NewRequest("POST", "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	server.router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestWatchlistLifecycle(t *testing.T) {
	server := newTestServer(t)
	cookies := signupAndLogin(t, server, "alice@example.com", "password123")

	// Add
	rr := apiRequest(server, "POST", "/api/watchlist", `{"symbol": "aapl", "company": "Apple Inc"}`, cookies)
	require.Equal(t, http.StatusCreated, rr.Code)

	var op OperationResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &op))
	assert.True(t, op.Success)
	assert.Equal(t, "AAPL", op.Symbol)

	// Duplicate add is a distinct conflict outcome
	rr = apiRequest(server, "POST", "/api/watchlist", `{"symbol": "AAPL", "company": "Apple Inc"}`, cookies)
	assert.Equal(t, http.StatusConflict, rr.Code)

	rr = apiRequest(server, "POST", "/api/watchlist", `{"symbol": "MSFT", "company": "Microsoft"}`, cookies)
	require.Equal(t, http.StatusCreated, rr.Code)

	// List: most recently added first, bare fields without an API key
	rr = apiRequest(server, "GET", "/api/watchlist", "", cookies)
	require.Equal(t, http.StatusOK, rr.Code)

	var list WatchlistResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &list))
	require.Equal(t, 2, list.Count)
	assert.Equal(t, "MSFT", list.Entries[0].Symbol)
	assert.Equal(t, "AAPL", list.Entries[1].Symbol)
	assert.Nil(t, list.Entries[0].CurrentPrice)
	assert.Empty(t, list.Entries[0].FormattedPrice)

	// Remove
	rr = apiRequest(server, "DELETE", "/api/watchlist/AAPL", "", cookies)
	assert.Equal(t, http.StatusOK, rr.Code)

	// Repeat remove yields not-found, not success
	rr = apiRequest(server, "DELETE", "/api/watchlist/AAPL", "", cookies)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = apiRequest(server, "GET", "/api/watchlist", "", cookies)
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &list))
	assert.Equal(t, 1, list.Count)
}

func TestAddRejectsInvalidSymbol(t *testing.T) {
	server := newTestServer(t)
	cookies := signupAndLogin(t, server, "alice@example.com", "password123")

	rr := apiRequest(server, "POST", "/api/watchlist", `{"symbol": "TOOLONG", "company": "Nope"}`, cookies)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = apiRequest(server, "POST", "/api/watchlist", `{"symbol": "A1", "company": "Nope"}`, cookies)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = apiRequest(server, "POST", "/api/watchlist", `{"company": "Missing symbol"}`, cookies)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestWatchlistsAreIsolatedPerUser(t *testing.T) {
	server := newTestServer(t)
	alice := signupAndLogin(t, server, "alice@example.com", "password123")
	bob := signupAndLogin(t, server, "bob@example.com", "password123")

	rr := apiRequest(server, "POST", "/api/watchlist", `{"symbol": "AAPL", "company": "Apple Inc"}`, alice)
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = apiRequest(server, "GET", "/api/watchlist", "", bob)
	require.Equal(t, http.StatusOK, rr.Code)

	var list WatchlistResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &list))
	assert.Equal(t, 0, list.Count)

	// Bob cannot remove Alice's entry
	rr = apiRequest(server, "DELETE", "/api/watchlist/AAPL", "", bob)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestSnapshotHistoryEndpoint(t *testing.T) {
	server := newTestServer(t)
	cookies := signupAndLogin(t, server, "alice@example.com", "password123")

	rr := apiRequest(server, "GET", "/api/watchlist/AAPL/history?days=7", "", cookies)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		Symbol string `json:"symbol"`
		Days   int    `json:"days"`
		Count  int    `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "AAPL", resp.Symbol)
	assert.Equal(t, 7, resp.Days)
	assert.Equal(t, 0, resp.Count)
}
