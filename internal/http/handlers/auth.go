package handlers

import (
	"net/http"

	"github.com/pribylovaa/sportsmap-api/internal/http/middleware"
	"github.com/pribylovaa/sportsmap-api/internal/session"
)

func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) error {
	var in loginRequest
	if err := decodeStrict(w, r, &in); err != nil {
		return err
	}

	user, sess, err := h.svc.Login(r.Context(), in.Email, in.Password)
	if err != nil {
		return err
	}

	return writeJSON(w, http.StatusOK, newSessionResponse(user, sess))
}

func (h *Handlers) RefreshToken(w http.ResponseWriter, r *http.Request) error {
	var in refreshRequest
	if err := decodeStrict(w, r, &in); err != nil {
		return err
	}

	user, sess, err := h.svc.Refresh(r.Context(), in.AccessToken, in.RefreshToken)
	if err != nil {
		return err
	}

	return writeJSON(w, http.StatusOK, newSessionResponse(user, sess))
}

// Logout отзывает сессию, которой подписан запрос.
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) error {
	if err := h.svc.Logout(r.Context(), middleware.AccessTokenFrom(r.Context())); err != nil {
		return err
	}

	w.WriteHeader(http.StatusNoContent)
	return nil
}

// AuthPing отвечает только авторизованному клиенту.
func (h *Handlers) AuthPing(w http.ResponseWriter, r *http.Request) error {
	email, _ := session.PrincipalFrom(r.Context())
	return writeJSON(w, http.StatusOK, statusResponse{Status: "ok", Email: email})
}
