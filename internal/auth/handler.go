package auth

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/chillzone/chillzone-pos/internal/platform/httpx"
	"github.com/chillzone/chillzone-pos/internal/shared"
)

// Handler exposes login, logout and the current cashier.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	sessions *shared.SessionManager
	csrf     *shared.CSRFManager
}

// NewHandler builds the auth handler.
func NewHandler(logger *slog.Logger, service *Service, sessions *shared.SessionManager, csrf *shared.CSRFManager) *Handler {
	return &Handler{logger: logger, service: service, sessions: sessions, csrf: csrf}
}

// MountRoutes registers auth routes. /auth/me and /auth/logout require a
// logged-in session.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/auth", func(r chi.Router) {
		r.Get("/csrf", h.csrfToken)
		r.Post("/login", h.login)
		r.Group(func(r chi.Router) {
			r.Use(RequireUser(h.logger))
			r.Get("/me", h.me)
			r.Post("/logout", h.logout)
		})
	})
}

type csrfResponse struct {
	Token string `json:"csrfToken"`
}

func (h *Handler) csrfToken(w http.ResponseWriter, r *http.Request) {
	token, err := h.csrf.EnsureToken(shared.SessionFromContext(r.Context()))
	if err != nil {
		h.logger.Error("issue csrf token", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, csrfResponse{Token: token})
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var creds Credentials
	if err := httpx.DecodeJSON(r, &creds); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", "malformed login payload")
		return
	}
	sess := shared.SessionFromContext(r.Context())
	user, err := h.service.Login(r.Context(), sess, creds)
	if err != nil {
		var fieldErr *FieldError
		if errors.As(err, &fieldErr) {
			httpx.FieldErrors(w, fieldErr.Fields)
			return
		}
		h.logger.Warn("login failed", slog.String("email", creds.Email), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	h.logger.Info("cashier logged in", slog.Int64("user_id", user.ID), slog.String("session", sess.ID))
	httpx.JSON(w, http.StatusOK, user)
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	user, err := h.service.Me(r.Context(), shared.SessionFromContext(r.Context()))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, user)
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	h.sessions.Destroy(sess)
	w.WriteHeader(http.StatusNoContent)
}
