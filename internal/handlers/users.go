package handlers

import (
	"io"
	"net/http"

	"github.com/pliu/messenger/internal/middleware"
	"github.com/pliu/messenger/internal/service"
)

// maxImageSize caps avatar uploads.
const maxImageSize = 5 << 20

type UserHandler struct {
	Services *service.Services
}

type UpdateNameRequest struct {
	Name string `json:"name"`
}

type UpdateEmailRequest struct {
	Email string `json:"email"`
}

type UpdatePasswordRequest struct {
	OldPassword *string `json:"old_password"`
	NewPassword string  `json:"new_password"`
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.Services.Users.List()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

func (h *UserHandler) Profile(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := authorizeUser(r, id); err != nil {
		writeError(w, err)
		return
	}

	profile, err := h.Services.Profile(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// IDByEmail returns the id of the user registered with ?email=.
func (h *UserHandler) IDByEmail(w http.ResponseWriter, r *http.Request) {
	address := r.URL.Query().Get("email")
	if address == "" {
		writeError(w, badRequest("email is required"))
		return
	}

	user, err := h.Services.Users.GetByEmail(address)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user.ID)
}

func (h *UserHandler) UpdateName(w http.ResponseWriter, r *http.Request) {
	id, ok := h.authorizedID(w, r)
	if !ok {
		return
	}
	var req UpdateNameRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.Name == "" {
		writeError(w, badRequest("name is required"))
		return
	}

	user, err := h.Services.Users.UpdateName(id, req.Name)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *UserHandler) UpdateEmail(w http.ResponseWriter, r *http.Request) {
	id, ok := h.authorizedID(w, r)
	if !ok {
		return
	}
	var req UpdateEmailRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.Email == "" {
		writeError(w, badRequest("email is required"))
		return
	}

	user, err := h.Services.Users.UpdateEmail(id, req.Email)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *UserHandler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	id, ok := h.authorizedID(w, r)
	if !ok {
		return
	}
	var req UpdatePasswordRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.NewPassword == "" {
		writeError(w, badRequest("new_password is required"))
		return
	}
	// Only the admin may skip the current password.
	if req.OldPassword == nil && !middleware.IsAdmin(r.Context()) {
		writeError(w, badRequest("old_password is required"))
		return
	}

	if err := h.Services.Users.UpdatePassword(id, req.OldPassword, req.NewPassword); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// UpdateImage reads the avatar from the multipart field "image".
func (h *UserHandler) UpdateImage(w http.ResponseWriter, r *http.Request) {
	id, ok := h.authorizedID(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxImageSize+1<<10)
	file, _, err := r.FormFile("image")
	if err != nil {
		writeError(w, badRequest("image is required: "+err.Error()))
		return
	}
	defer file.Close()

	image, err := io.ReadAll(io.LimitReader(file, maxImageSize+1))
	if err != nil {
		writeError(w, badRequest("failed to read image: "+err.Error()))
		return
	}
	if len(image) > maxImageSize {
		writeError(w, badRequest("image is too large"))
		return
	}

	if _, err := h.Services.Users.UpdateAvatar(id, image); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *UserHandler) DeleteImage(w http.ResponseWriter, r *http.Request) {
	id, ok := h.authorizedID(w, r)
	if !ok {
		return
	}
	if _, err := h.Services.Users.UpdateAvatar(id, nil); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.authorizedID(w, r)
	if !ok {
		return
	}
	if err := h.Services.Users.Delete(id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// authorizedID parses the path id and checks the caller may act on it. It
// writes the error response itself.
func (h *UserHandler) authorizedID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := pathID(r)
	if err == nil {
		err = authorizeUser(r, id)
	}
	if err != nil {
		writeError(w, err)
		return 0, false
	}
	return id, true
}
