package api

import (
	"context"
	"html/template"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spellaudit/internal/data"
	"spellaudit/internal/service"

	_ "modernc.org/sqlite"
)

type stubChecker struct {
	tokens []string
}

func (s *stubChecker) Check(ctx context.Context, text string) ([]string, error) {
	return s.tokens, nil
}

type testApp struct {
	srv    *httptest.Server
	repos  struct{ logins *data.LoginRepo }
	client *http.Client
}

// newTestApp wires the router the way cmd/spellaudit does, against a fresh
// sqlite store and a stub checker.
func newTestApp(t *testing.T) *testApp {
	t.Helper()

	db, err := data.InitDB("sqlite", filepath.Join(t.TempDir(), "spellaudit.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	userRepo := data.NewUserRepo(db)
	loginRepo := data.NewLoginRepo(db)
	queryRepo := data.NewQueryRepo(db)

	authSvc := service.NewAuthService(userRepo, loginRepo)
	historySvc := service.NewHistoryService(loginRepo, queryRepo)
	spellSvc := service.NewSpellService(&stubChecker{tokens: []string{"helllo", "wrold"}}, queryRepo)
	require.NoError(t, authSvc.EnsureAdmin("admin", "Administrator@1", "12345678901"))

	templates, err := template.ParseGlob("../../web/templates/*.html")
	require.NoError(t, err)

	authHandler := NewAuthHandler(authSvc, userRepo, "0123456789abcdef0123456789abcdef", templates)
	webHandler := NewWebHandler(spellSvc, historySvc, templates)

	r := chi.NewRouter()
	r.Use(SecurityHeaders)
	r.Get("/register", authHandler.RegisterPage)
	r.Post("/register", authHandler.DoRegister)
	r.Get("/login", authHandler.LoginPage)
	r.Post("/login", authHandler.DoLogin)
	r.Get("/logout", authHandler.Logout)
	r.Group(func(r chi.Router) {
		r.Use(authHandler.RequireUser)
		webHandler.RegisterRoutes(r)
	})
	r.NotFound(webHandler.NotFound)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	app := &testApp{srv: srv, client: &http.Client{Jar: jar}}
	app.repos.logins = loginRepo
	return app
}

func (a *testApp) postForm(t *testing.T, path string, form url.Values) (string, int) {
	t.Helper()
	resp, err := a.client.PostForm(a.srv.URL+path, form)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(body), resp.StatusCode
}

func (a *testApp) get(t *testing.T, path string) (string, int) {
	t.Helper()
	resp, err := a.client.Get(a.srv.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(body), resp.StatusCode
}

func (a *testApp) register(t *testing.T, username, password, token string) {
	t.Helper()
	body, _ := a.postForm(t, "/register", url.Values{
		"username": {username}, "password": {password}, "twofa": {token},
	})
	require.Contains(t, body, "Success")
}

func (a *testApp) login(t *testing.T, username, password, token string) {
	t.Helper()
	body, status := a.postForm(t, "/login", url.Values{
		"username": {username}, "password": {password}, "twofa": {token},
	})
	require.Equal(t, http.StatusOK, status)
	require.Contains(t, body, "Spell Check")
}

func TestRegisterAndLoginFlow(t *testing.T) {
	app := newTestApp(t)

	app.register(t, "alice", "Secret1", "999999")

	// Duplicate registration reports failure
	body, _ := app.postForm(t, "/register", url.Values{
		"username": {"alice"}, "password": {"Other2"}, "twofa": {"111111"},
	})
	assert.Contains(t, body, "Failure")

	// Wrong password and unknown user render the same message
	body, _ = app.postForm(t, "/login", url.Values{
		"username": {"alice"}, "password": {"wrong"}, "twofa": {"999999"},
	})
	assert.Contains(t, body, "Incorrect")
	body, _ = app.postForm(t, "/login", url.Values{
		"username": {"nobody"}, "password": {"wrong"}, "twofa": {"999999"},
	})
	assert.Contains(t, body, "Incorrect")

	// Wrong token is a distinct message
	body, _ = app.postForm(t, "/login", url.Values{
		"username": {"alice"}, "password": {"Secret1"}, "twofa": {"000000"},
	})
	assert.Contains(t, body, "Two-factor Failure")

	app.login(t, "alice", "Secret1", "999999")

	records, err := app.repos.logins.ListByUsername("alice")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Nil(t, records[0].LoggedOutAt)

	// Logout closes the record and drops the session
	_, status := app.get(t, "/logout")
	assert.Equal(t, http.StatusOK, status) // landed on /login after redirect
	records, err = app.repos.logins.ListByUsername("alice")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.NotNil(t, records[0].LoggedOutAt)

	body, _ = app.get(t, "/spell_check")
	assert.Contains(t, body, "Login") // bounced back to the login page
}

func TestSpellCheckAndHistoryFlow(t *testing.T) {
	app := newTestApp(t)
	app.register(t, "alice", "Secret1", "999999")
	app.login(t, "alice", "Secret1", "999999")

	body, status := app.postForm(t, "/spell_check", url.Values{"inputtext": {"helllo wrold"}})
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "helllo wrold")
	assert.Contains(t, body, "helllo, wrold")

	body, _ = app.get(t, "/history")
	assert.Contains(t, body, "helllo wrold")
	assert.Contains(t, body, "/history/query/1")

	body, status = app.get(t, "/history/query/1")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "helllo, wrold")

	body, _ = app.get(t, "/login_history")
	assert.Contains(t, body, "alice")
	assert.Contains(t, body, "(open)")
}

func TestQueryReviewAuthorization(t *testing.T) {
	app := newTestApp(t)
	app.register(t, "alice", "Secret1", "999999")
	app.login(t, "alice", "Secret1", "999999")
	_, status := app.postForm(t, "/spell_check", url.Values{"inputtext": {"helllo"}})
	require.Equal(t, http.StatusOK, status)
	app.get(t, "/logout")

	// Another user may not view alice's record
	app.register(t, "bob", "Secret2", "888888")
	app.login(t, "bob", "Secret2", "888888")
	body, status := app.get(t, "/history/query/1")
	assert.Equal(t, http.StatusForbidden, status)
	assert.Contains(t, body, "Not Authorized")

	// Missing record is a 404, not a 403
	_, status = app.get(t, "/history/query/999")
	assert.Equal(t, http.StatusNotFound, status)
	app.get(t, "/logout")

	// The admin may view it
	app.login(t, "admin", "Administrator@1", "12345678901")
	body, status = app.get(t, "/history/query/1")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "helllo")
}

func TestAdminHistoryRequiresTarget(t *testing.T) {
	app := newTestApp(t)
	app.register(t, "alice", "Secret1", "999999")
	app.login(t, "alice", "Secret1", "999999")
	_, status := app.postForm(t, "/spell_check", url.Values{"inputtext": {"helllo"}})
	require.Equal(t, http.StatusOK, status)
	app.get(t, "/logout")

	app.login(t, "admin", "Administrator@1", "12345678901")

	// No target: admin gets the lookup form, never a listing
	body, _ := app.get(t, "/history")
	assert.Contains(t, body, "Username to Query")
	assert.NotContains(t, body, "helllo")

	body, _ = app.postForm(t, "/history", url.Values{"userquery": {"alice"}})
	assert.Contains(t, body, "helllo")

	body, _ = app.get(t, "/login_history")
	assert.Contains(t, body, "Username to Query")
	body, _ = app.postForm(t, "/login_history", url.Values{"userquery": {"alice"}})
	assert.Contains(t, body, "alice")
}

func TestSecurityHeadersPresent(t *testing.T) {
	app := newTestApp(t)

	resp, err := app.client.Get(app.srv.URL + "/login")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
	assert.Equal(t, "SAMEORIGIN", resp.Header.Get("X-Frame-Options"))
}

func TestRateLimiterBlocksBursts(t *testing.T) {
	rl := NewRateLimiter(5, 3)

	allowed := 0
	for i := 0; i < 10; i++ {
		if rl.Allow("1.2.3.4") {
			allowed++
		}
	}
	assert.Equal(t, 3, allowed)

	// Other clients are unaffected
	assert.True(t, rl.Allow("5.6.7.8"))
}
