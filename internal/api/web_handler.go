package api

import (
	"errors"
	"html/template"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"spellaudit/internal/core"
	"spellaudit/internal/logger"
	"spellaudit/internal/service"
)

type WebHandler struct {
	spellSvc   *service.SpellService
	historySvc *service.HistoryService
	templates  *template.Template
}

func NewWebHandler(spellSvc *service.SpellService, historySvc *service.HistoryService, templates *template.Template) *WebHandler {
	return &WebHandler{
		spellSvc:   spellSvc,
		historySvc: historySvc,
		templates:  templates,
	}
}

// LoadTemplates parses the page templates from disk.
func LoadTemplates() (*template.Template, error) {
	return template.ParseGlob("web/templates/*.html")
}

// RegisterRoutes mounts the session-protected pages.
func (h *WebHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.Home)
	r.Get("/spell_check", h.SpellCheckPage)
	r.Post("/spell_check", h.DoSpellCheck)
	r.Get("/history", h.QueryHistory)
	r.Post("/history", h.QueryHistory)
	r.Get("/history/query/{id}", h.QueryReview)
	r.Get("/login_history", h.LoginHistory)
	r.Post("/login_history", h.LoginHistory)
}

func (h *WebHandler) Home(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/spell_check", http.StatusFound)
}

func (h *WebHandler) SpellCheckPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, "spell_check.html", nil)
}

func (h *WebHandler) DoSpellCheck(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFromContext(r.Context())

	text := r.FormValue("inputtext")
	if text == "" {
		h.render(w, "spell_check.html", map[string]interface{}{"Error": "Text is required"})
		return
	}

	rec, err := h.spellSvc.Submit(r.Context(), user.Username, text)
	if err != nil {
		if errors.Is(err, core.ErrGateway) {
			logger.Log.Error().Err(err).Msg("spell check failed")
			h.render(w, "spell_check.html", map[string]interface{}{"Error": "Spell checker unavailable, please try again later"})
			return
		}
		logger.Log.Error().Err(err).Msg("failed to record query")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	h.render(w, "spell_check_result.html", map[string]interface{}{
		"Text":       rec.QueryText,
		"Misspelled": rec.ResultText,
	})
}

func (h *WebHandler) QueryHistory(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFromContext(r.Context())
	target := r.FormValue("userquery")

	records, err := h.historySvc.ListQueryHistory(user, target)
	if err != nil {
		if errors.Is(err, core.ErrTargetRequired) {
			h.render(w, "history_admin_form.html", map[string]interface{}{"Action": "/history"})
			return
		}
		logger.Log.Error().Err(err).Msg("failed to list query history")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	h.render(w, "history.html", map[string]interface{}{"Records": records})
}

func (h *WebHandler) QueryReview(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFromContext(r.Context())

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.NotFound(w, r)
		return
	}

	rec, err := h.historySvc.GetQueryRecord(user, id)
	switch {
	case err == nil:
	case errors.Is(err, core.ErrNotFound):
		h.NotFound(w, r)
		return
	case errors.Is(err, core.ErrForbidden):
		h.Forbidden(w, r)
		return
	default:
		logger.Log.Error().Err(err).Msg("failed to load query record")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	h.render(w, "query_review.html", map[string]interface{}{"Record": rec})
}

func (h *WebHandler) LoginHistory(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFromContext(r.Context())
	target := r.FormValue("userquery")

	records, err := h.historySvc.ListLoginHistory(user, target)
	if err != nil {
		if errors.Is(err, core.ErrTargetRequired) {
			h.render(w, "history_admin_form.html", map[string]interface{}{"Action": "/login_history"})
			return
		}
		logger.Log.Error().Err(err).Msg("failed to list login history")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	h.render(w, "login_history.html", map[string]interface{}{"Records": records})
}

func (h *WebHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNotFound)
	h.render(w, "not_found.html", nil)
}

func (h *WebHandler) Forbidden(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusForbidden)
	h.render(w, "forbidden.html", nil)
}

func (h *WebHandler) render(w http.ResponseWriter, tmplName string, data interface{}) {
	if err := h.templates.ExecuteTemplate(w, tmplName, data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
