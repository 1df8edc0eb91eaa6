package http_test

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/geocoder89/authhub/internal/config"
	apphttp "github.com/geocoder89/authhub/internal/http"
	"github.com/geocoder89/authhub/internal/repo/memory"
	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testConfig() config.Config {
	return config.Config{
		Env:           "test",
		Port:          0,
		SessionSecret: "test-secret-key",
		SessionMaxAge: time.Hour,
	}
}

// full stack on the in-memory store
func setupServer(t *testing.T) (*httptest.Server, *memory.UsersRepo) {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug}))

	store := memory.NewUsersRepo()

	router := apphttp.NewRouterWithStore(testConfig(), logger, store, nil)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return srv, store
}

// client with a cookie jar that does not follow redirects, so tests can
// assert on Location while still carrying the session cookie
func newClient(t *testing.T) *http.Client {
	t.Helper()

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookie jar: %v", err)
	}

	return &http.Client{
		Jar: jar,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func postForm(t *testing.T, client *http.Client, rawURL string, form url.Values) *http.Response {
	t.Helper()

	resp, err := client.Post(rawURL, "application/x-www-form-urlencoded", strings.NewReader(form.Encode()))
	if err != nil {
		t.Fatalf("POST %s: %v", rawURL, err)
	}

	return resp
}

func get(t *testing.T, client *http.Client, rawURL string) *http.Response {
	t.Helper()

	resp, err := client.Get(rawURL)
	if err != nil {
		t.Fatalf("GET %s: %v", rawURL, err)
	}

	return resp
}

func bodyString(t *testing.T, resp *http.Response) string {
	t.Helper()

	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}

	return string(b)
}

func credentials(email, password string) url.Values {
	return url.Values{"email": {email}, "password": {password}}
}

func TestAnonymousIsRedirectedToLogin(t *testing.T) {
	srv, _ := setupServer(t)
	client := newClient(t)

	for _, path := range []string{"/", "/users"} {
		resp := get(t, client, srv.URL+path)
		resp.Body.Close()

		if resp.StatusCode != http.StatusFound {
			t.Fatalf("GET %s: got status %d, want %d", path, resp.StatusCode, http.StatusFound)
		}

		if loc := resp.Header.Get("Location"); loc != "/login" {
			t.Fatalf("GET %s: redirected to %q, want /login", path, loc)
		}
	}
}

func TestRegisterLoginLogoutFlow(t *testing.T) {
	srv, _ := setupServer(t)
	client := newClient(t)

	// register a@x.com/secret1 -> success, redirect to login
	resp := postForm(t, client, srv.URL+"/register", credentials("a@x.com", "secret1"))
	resp.Body.Close()

	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("register: got status %d, want %d", resp.StatusCode, http.StatusSeeOther)
	}

	if loc := resp.Header.Get("Location"); loc != "/login" {
		t.Fatalf("register redirected to %q, want /login", loc)
	}

	// duplicate register -> form re-rendered with a generic error
	resp = postForm(t, client, srv.URL+"/register", credentials("a@x.com", "secret2"))
	body := bodyString(t, resp)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("duplicate register: got status %d, want %d", resp.StatusCode, http.StatusOK)
	}

	if !strings.Contains(body, "Email already registered or fields empty.") {
		t.Fatalf("duplicate register did not show the generic error, body=%s", body)
	}

	// login with the rejected password -> failure, identical to any other failure
	resp = postForm(t, client, srv.URL+"/login", credentials("a@x.com", "secret2"))
	body = bodyString(t, resp)

	if resp.StatusCode != http.StatusOK || !strings.Contains(body, "Email or password is incorrect.") {
		t.Fatalf("wrong-password login: status=%d body=%s", resp.StatusCode, body)
	}

	// login with the real password -> session established, redirect home
	resp = postForm(t, client, srv.URL+"/login", credentials("a@x.com", "secret1"))
	resp.Body.Close()

	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("login: got status %d, want %d", resp.StatusCode, http.StatusSeeOther)
	}

	if loc := resp.Header.Get("Location"); loc != "/" {
		t.Fatalf("login redirected to %q, want /", loc)
	}

	// home greets the bound user id
	resp = get(t, client, srv.URL+"/")
	body = bodyString(t, resp)

	if resp.StatusCode != http.StatusOK || !strings.Contains(body, "user #1") {
		t.Fatalf("index: status=%d body=%s", resp.StatusCode, body)
	}

	// the listing shows the registered user
	resp = get(t, client, srv.URL+"/users")
	body = bodyString(t, resp)

	if resp.StatusCode != http.StatusOK || !strings.Contains(body, "a@x.com") {
		t.Fatalf("users: status=%d body=%s", resp.StatusCode, body)
	}

	// logout clears the session
	resp = get(t, client, srv.URL+"/logout")
	resp.Body.Close()

	if resp.StatusCode != http.StatusFound {
		t.Fatalf("logout: got status %d, want %d", resp.StatusCode, http.StatusFound)
	}

	// /users is protected again
	resp = get(t, client, srv.URL+"/users")
	resp.Body.Close()

	if resp.StatusCode != http.StatusFound {
		t.Fatalf("post-logout /users: got status %d, want %d", resp.StatusCode, http.StatusFound)
	}

	if loc := resp.Header.Get("Location"); loc != "/login" {
		t.Fatalf("post-logout /users redirected to %q, want /login", loc)
	}
}

func TestRegisterWithEmptyFieldsCreatesNothing(t *testing.T) {
	srv, store := setupServer(t)
	client := newClient(t)

	tests := []struct {
		name string
		form url.Values
	}{
		{name: "empty_email", form: credentials("", "secret1")},
		{name: "empty_password", form: credentials("a@x.com", "")},
		{name: "both_empty", form: credentials("", "")},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			resp := postForm(t, client, srv.URL+"/register", tt.form)
			body := bodyString(t, resp)

			if resp.StatusCode != http.StatusBadRequest {
				t.Fatalf("got status %d, want %d", resp.StatusCode, http.StatusBadRequest)
			}

			if !strings.Contains(body, "Email already registered or fields empty.") {
				t.Fatalf("missing generic error, body=%s", body)
			}
		})
	}

	listings, err := store.ListAll(t.Context())
	if err != nil {
		t.Fatalf("list: %v", err)
	}

	if len(listings) != 0 {
		t.Fatalf("store holds %d records after rejected registrations", len(listings))
	}
}

func TestLoginWithUnknownEmailFails(t *testing.T) {
	srv, _ := setupServer(t)
	client := newClient(t)

	// nothing registered; failure must look exactly like a wrong password
	resp := postForm(t, client, srv.URL+"/login", credentials("ghost@x.com", "whatever"))
	body := bodyString(t, resp)

	if resp.StatusCode != http.StatusOK || !strings.Contains(body, "Email or password is incorrect.") {
		t.Fatalf("unknown-email login: status=%d body=%s", resp.StatusCode, body)
	}
}

func TestHealthEndpoints(t *testing.T) {
	srv, _ := setupServer(t)
	client := newClient(t)

	for _, path := range []string{"/healthz", "/readyz"} {
		resp := get(t, client, srv.URL+path)
		resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			t.Fatalf("GET %s: got status %d", path, resp.StatusCode)
		}
	}
}

func TestMetricsExposed(t *testing.T) {
	srv, _ := setupServer(t)
	client := newClient(t)

	// generate at least one observed request before scraping
	warm := get(t, client, srv.URL+"/healthz")
	warm.Body.Close()

	resp := get(t, client, srv.URL+"/metrics")
	body := bodyString(t, resp)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET /metrics: got status %d", resp.StatusCode)
	}

	if !strings.Contains(body, "authhub_http_requests_total") {
		t.Fatalf("metrics output missing request counter, body=%s", body)
	}
}
