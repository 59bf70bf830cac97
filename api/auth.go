package api

import (
	"net/http"
	"time"

	"github.com/billbatista/acasinha-ledger/middleware"
	"github.com/billbatista/acasinha-ledger/session"
	"github.com/billbatista/acasinha-ledger/user"
	"github.com/google/uuid"
)

type credentials struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	User    *user.User `json:"user"`
	Token   string     `json:"token"`
	Expires string     `json:"expires_at"`
}

func newSessionResponse(u *user.User, sess *session.Session) sessionResponse {
	return sessionResponse{User: u, Token: sess.Token, Expires: sess.ExpiresAt.Format(time.RFC3339)}
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	u, sess, err := h.state.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}

	middleware.SetSessionCookie(w, sess)
	writeJSON(w, http.StatusCreated, newSessionResponse(u, sess))
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	u, sess, err := h.state.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}

	middleware.SetSessionCookie(w, sess)
	writeJSON(w, http.StatusOK, newSessionResponse(u, sess))
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	if token := middleware.SessionToken(r); token != "" {
		if err := h.state.Logout(r.Context(), token); err != nil {
			writeError(w, r, err)
			return
		}
	}

	middleware.ClearSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	u, err := h.state.GetUser(r.Context(), currentUser(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func currentUser(r *http.Request) uuid.UUID {
	userID, _ := middleware.GetUserID(r.Context())
	return userID
}
