package api

import (
	"errors"
	"html/template"
	"net/http"

	"github.com/gorilla/sessions"

	"spellaudit/internal/core"
	"spellaudit/internal/logger"
	"spellaudit/internal/service"
)

const sessionName = "spellaudit-session"

type AuthHandler struct {
	authSvc   *service.AuthService
	users     core.UserRepository
	store     *sessions.CookieStore
	templates *template.Template
}

func NewAuthHandler(authSvc *service.AuthService, users core.UserRepository, sessionKey string, templates *template.Template) *AuthHandler {
	store := sessions.NewCookieStore([]byte(sessionKey))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400, // 1 day
		HttpOnly: true,
		Secure:   false, // Set to true if HTTPS
	}

	return &AuthHandler{
		authSvc:   authSvc,
		users:     users,
		store:     store,
		templates: templates,
	}
}

func (h *AuthHandler) RegisterPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, "register.html", nil)
}

func (h *AuthHandler) DoRegister(w http.ResponseWriter, r *http.Request) {
	username := r.FormValue("username")
	password := r.FormValue("password")
	token := r.FormValue("twofa")

	if err := h.authSvc.Register(username, password, token); err != nil {
		if errors.Is(err, core.ErrValidation) {
			h.render(w, "register_result.html", map[string]interface{}{"Success": false})
			return
		}
		logger.Log.Error().Err(err).Msg("registration failed")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	h.render(w, "register_result.html", map[string]interface{}{"Success": true})
}

func (h *AuthHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, "login.html", nil)
}

func (h *AuthHandler) DoLogin(w http.ResponseWriter, r *http.Request) {
	username := r.FormValue("username")
	password := r.FormValue("password")
	token := r.FormValue("twofa")

	user, err := h.authSvc.Authenticate(username, password, token)
	switch {
	case err == nil:
	case errors.Is(err, core.ErrIncorrect):
		h.render(w, "login.html", map[string]interface{}{"Result": "Incorrect"})
		return
	case errors.Is(err, core.ErrTwoFactor):
		h.render(w, "login.html", map[string]interface{}{"Result": "Two-factor Failure"})
		return
	default:
		logger.Log.Error().Err(err).Msg("login failed")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	session, _ := h.store.Get(r, sessionName)
	session.Values["username"] = user.Username
	session.Save(r, w)

	http.Redirect(w, r, "/spell_check", http.StatusFound)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	session, _ := h.store.Get(r, sessionName)
	if username, ok := session.Values["username"].(string); ok && username != "" {
		if err := h.authSvc.Logout(username); err != nil && !errors.Is(err, core.ErrNoOpenSession) {
			logger.Log.Error().Err(err).Str("username", username).Msg("failed to close login record")
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
	}
	session.Options.MaxAge = -1
	session.Save(r, w)
	http.Redirect(w, r, "/login", http.StatusFound)
}

// RequireUser protects routes behind a valid session. The User row is
// re-read from the store on every request, so the admin flag is never stale.
func (h *AuthHandler) RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, _ := h.store.Get(r, sessionName)
		username, ok := session.Values["username"].(string)
		if !ok || username == "" {
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}

		user, err := h.users.GetByUsername(username)
		if err != nil {
			logger.Log.Error().Err(err).Msg("session user lookup failed")
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		if user == nil {
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}

		next.ServeHTTP(w, r.WithContext(withUser(r.Context(), user)))
	})
}

func (h *AuthHandler) render(w http.ResponseWriter, tmplName string, data interface{}) {
	if err := h.templates.ExecuteTemplate(w, tmplName, data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
