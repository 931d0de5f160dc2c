package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cavos-labs/forma-app/internal/checkout"
	"github.com/cavos-labs/forma-app/internal/config"
	"github.com/cavos-labs/forma-app/internal/logger"
	"github.com/cavos-labs/forma-app/internal/session"
	"github.com/cavos-labs/forma-app/internal/upstream"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v79"
)

func init() {
	logger.Init()
	gin.SetMode(gin.TestMode)
}

type stubStripe struct{}

func (stubStripe) New(*stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	return &stripe.CheckoutSession{ID: "cs_test", URL: "https://checkout.stripe.com/c/pay/cs_test"}, nil
}

// upstreamStub fakes the gym API end to end so the whole router can be
// exercised over HTTP.
type upstreamStub struct {
	gymIsActive bool
	sawAPIKey   string
	sawCookie   string
	proxied     []string
}

func (u *upstreamStub) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/signin", func(w http.ResponseWriter, r *http.Request) {
		var req upstream.SignInRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Password != "correct" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"Invalid credentials"}`))
			return
		}
		_ = json.NewEncoder(w).Encode(upstream.AuthResponse{
			Success: true,
			User:    &upstream.User{ID: "operator-1", Email: req.Email},
			Gym:     &upstream.Gym{ID: "gym-1", Name: "Forma", MonthlyFee: 25000, IsActive: u.gymIsActive},
		})
	})
	mux.HandleFunc("POST /api/auth/signout", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":true}`))
	})
	mux.HandleFunc("GET /api/memberships", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":true,"memberships":[]}`))
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		u.sawAPIKey = r.Header.Get("x-api-key")
		u.sawCookie = r.Header.Get("Cookie")
		u.proxied = append(u.proxied, r.Method+" "+r.URL.Path)
		_, _ = w.Write([]byte(`{"success":true}`))
	})
	return mux
}

func newTestServer(t *testing.T, stub *upstreamStub) (*Server, *httptest.Server) {
	t.Helper()
	backend := httptest.NewServer(stub.handler())
	t.Cleanup(backend.Close)

	cfg := &config.Config{
		Port:          "0",
		PublicBaseURL: "https://forma.example.com",
	}
	client := upstream.New(backend.URL, "test-key", backend.URL, "activation-key")
	store := session.NewMemoryStore()
	sessions := session.NewManager(store, store, "test-secret")

	srv, err := New(cfg, client, sessions, checkout.SessionCreator(stubStripe{}))
	require.NoError(t, err)
	return srv, backend
}

func signIn(t *testing.T, srv *Server, rememberMe bool) *http.Cookie {
	t.Helper()
	body, _ := json.Marshal(gin.H{"email": "admin@gym.cr", "password": "correct", "rememberMe": rememberMe})
	req := httptest.NewRequest(http.MethodPost, "/auth/signin", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	for _, c := range w.Result().Cookies() {
		if c.Name == session.CookieName {
			return c
		}
	}
	t.Fatal("no session cookie set")
	return nil
}

func TestSignIn_SetsCookieAndRedirect(t *testing.T) {
	stub := &upstreamStub{gymIsActive: true}
	srv, _ := newTestServer(t, stub)

	body, _ := json.Marshal(gin.H{"email": "admin@gym.cr", "password": "correct", "rememberMe": true})
	req := httptest.NewRequest(http.MethodPost, "/auth/signin", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp SignInResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "/dashboard", resp.Redirect)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, session.CookieName, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
	// rememberMe makes the cookie persistent.
	assert.Greater(t, cookies[0].MaxAge, 0)
}

func TestSignIn_BrowserScopedCookie(t *testing.T) {
	stub := &upstreamStub{gymIsActive: true}
	srv, _ := newTestServer(t, stub)

	cookie := signIn(t, srv, false)
	assert.Equal(t, 0, cookie.MaxAge)
}

func TestSignIn_InactiveGymGoesToPricing(t *testing.T) {
	stub := &upstreamStub{gymIsActive: false}
	srv, _ := newTestServer(t, stub)

	body, _ := json.Marshal(gin.H{"email": "admin@gym.cr", "password": "correct"})
	req := httptest.NewRequest(http.MethodPost, "/auth/signin", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp SignInResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "/pricing", resp.Redirect)
}

func TestSignIn_BadCredentials(t *testing.T) {
	stub := &upstreamStub{}
	srv, _ := newTestServer(t, stub)

	body, _ := json.Marshal(gin.H{"email": "admin@gym.cr", "password": "wrong"})
	req := httptest.NewRequest(http.MethodPost, "/auth/signin", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid credentials")
}

func TestApp_RequiresSession(t *testing.T) {
	stub := &upstreamStub{gymIsActive: true}
	srv, _ := newTestServer(t, stub)

	req := httptest.NewRequest(http.MethodGet, "/app/memberships", nil)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestApp_WithSession(t *testing.T) {
	stub := &upstreamStub{gymIsActive: true}
	srv, _ := newTestServer(t, stub)
	cookie := signIn(t, srv, true)

	req := httptest.NewRequest(http.MethodGet, "/app/memberships", nil)
	req.AddCookie(cookie)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestApp_InactiveGymIsBlockedButCheckoutIsNot(t *testing.T) {
	stub := &upstreamStub{gymIsActive: false}
	srv, _ := newTestServer(t, stub)
	cookie := signIn(t, srv, true)

	req := httptest.NewRequest(http.MethodGet, "/app/memberships", nil)
	req.AddCookie(cookie)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	body, _ := json.Marshal(gin.H{"plan": "monthly"})
	req = httptest.NewRequest(http.MethodPost, "/checkout/session", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(cookie)
	w = httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSignOut_ExpiresCookieAndKillsSession(t *testing.T) {
	stub := &upstreamStub{gymIsActive: true}
	srv, _ := newTestServer(t, stub)
	cookie := signIn(t, srv, true)

	req := httptest.NewRequest(http.MethodPost, "/auth/signout", nil)
	req.AddCookie(cookie)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Less(t, cookies[0].MaxAge, 0)

	// The old cookie no longer resolves.
	req = httptest.NewRequest(http.MethodGet, "/app/memberships", nil)
	req.AddCookie(cookie)
	w = httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

// closeNotifyRecorder adds the http.CloseNotifier method that
// httputil.ReverseProxy requires but httptest.ResponseRecorder lacks.
type closeNotifyRecorder struct {
	*httptest.ResponseRecorder
}

func (closeNotifyRecorder) CloseNotify() <-chan bool { return make(chan bool) }

func TestProxy_InjectsKeyAndStripsCookie(t *testing.T) {
	stub := &upstreamStub{gymIsActive: true}
	srv, _ := newTestServer(t, stub)
	cookie := signIn(t, srv, true)

	req := httptest.NewRequest(http.MethodGet, "/api/gyms/gym-1", nil)
	req.AddCookie(cookie)
	w := closeNotifyRecorder{httptest.NewRecorder()}
	srv.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, "test-key", stub.sawAPIKey)
	assert.Empty(t, stub.sawCookie)
	assert.Contains(t, stub.proxied, "GET /api/gyms/gym-1")
}

func TestProxy_RequiresSession(t *testing.T) {
	stub := &upstreamStub{gymIsActive: true}
	srv, _ := newTestServer(t, stub)

	req := httptest.NewRequest(http.MethodGet, "/api/gyms/gym-1", nil)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Empty(t, stub.proxied)
}

func TestHealth(t *testing.T) {
	stub := &upstreamStub{}
	srv, _ := newTestServer(t, stub)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ok")
}

func TestCORS_Preflight(t *testing.T) {
	stub := &upstreamStub{}
	srv, _ := newTestServer(t, stub)

	req := httptest.NewRequest(http.MethodOptions, "/auth/signin", nil)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(1, 2, time.Minute)

	assert.True(t, rl.Allow("1.2.3.4"))
	assert.True(t, rl.Allow("1.2.3.4"))
	assert.False(t, rl.Allow("1.2.3.4"))

	// Other clients are unaffected.
	assert.True(t, rl.Allow("5.6.7.8"))
}

func TestMe_ReturnsSessionAndPrefs(t *testing.T) {
	stub := &upstreamStub{gymIsActive: true}
	srv, _ := newTestServer(t, stub)
	cookie := signIn(t, srv, true)

	req := httptest.NewRequest(http.MethodGet, "/app/me", nil)
	req.AddCookie(cookie)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp MeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "operator-1", resp.User.ID)
	assert.Equal(t, "gym-1", resp.Gym.ID)
	assert.Equal(t, session.DefaultPrefs(), resp.Prefs)
}

func TestUpdatePrefs_Persists(t *testing.T) {
	stub := &upstreamStub{gymIsActive: true}
	srv, _ := newTestServer(t, stub)
	cookie := signIn(t, srv, true)

	body, _ := json.Marshal(gin.H{"language": "en", "theme": "light"})
	req := httptest.NewRequest(http.MethodPut, "/app/prefs", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(cookie)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/app/me", nil)
	req.AddCookie(cookie)
	w = httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp MeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "en", resp.Prefs.Language)
	assert.Equal(t, "light", resp.Prefs.Theme)
}
