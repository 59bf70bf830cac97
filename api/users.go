package api

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/billbatista/acasinha-ledger/app"
)

type memberRequest struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.state.ListUsers(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

func (h *Handler) addUser(w http.ResponseWriter, r *http.Request) {
	var req memberRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	u, err := h.state.AddMember(r.Context(), currentUser(r), req.Name, req.Color)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, u)
}

func (h *Handler) renameUser(w http.ResponseWriter, r *http.Request) {
	userID, err := idParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req memberRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	u, err := h.state.RenameUser(r.Context(), userID, req.Name)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (h *Handler) deleteUser(w http.ResponseWriter, r *http.Request) {
	userID, err := idParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.state.DeleteUser(r.Context(), currentUser(r), userID); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) avatar(w http.ResponseWriter, r *http.Request) {
	userID, err := idParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	u, err := h.state.GetUser(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if len(u.Avatar) == 0 {
		writeMessage(w, http.StatusNotFound, "user has no avatar")
		return
	}

	w.Header().Set("Content-Type", http.DetectContentType(u.Avatar))
	w.Write(u.Avatar)
}

// uploadAvatar takes a multipart form with an "avatar" file field.
func (h *Handler) uploadAvatar(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(app.MaxAvatarSize); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid form data")
		return
	}
	file, header, err := r.FormFile("avatar")
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "avatar file is required")
		return
	}
	defer file.Close()

	img, err := io.ReadAll(io.LimitReader(file, app.MaxAvatarSize+1))
	if err != nil {
		slog.Error("reading file", "error", err)
		writeMessage(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if err := h.state.UpdateAvatar(r.Context(), currentUser(r), img); err != nil {
		writeError(w, r, err)
		return
	}
	slog.Debug("avatar updated", "file", header.Filename, "bytes", len(img))
	w.WriteHeader(http.StatusNoContent)
}
