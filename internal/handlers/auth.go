package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/pliu/messenger/internal/auth"
	"github.com/pliu/messenger/internal/email"
	"github.com/pliu/messenger/internal/service"
)

type ResetCodeSender interface {
	SendResetCode(to, name, code string) error
}

type AuthHandler struct {
	Services *service.Services
	Tokens   *auth.Tokens
	Codes    *auth.ResetCodes
	Mailer   ResetCodeSender
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token   string           `json:"token"`
	Profile *service.Profile `json:"profile"`
}

type ResetPasswordRequest struct {
	Email    string `json:"email"`
	Code     string `json:"code"`
	Password string `json:"password"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		writeError(w, badRequest("name, email and password are required"))
		return
	}

	user, err := h.Services.Users.Register(req.Name, req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var creds Credentials
	if err := decode(r, &creds); err != nil {
		writeError(w, err)
		return
	}

	user, err := h.Services.Users.VerifyLogin(creds.Email, creds.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	token, err := h.Tokens.Issue(user.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	profile, err := h.Services.Profile(user.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, LoginResponse{Token: token, Profile: profile})
}

// SendResetCode emails a one-time code for the account. The code itself is
// never returned.
func (h *AuthHandler) SendResetCode(w http.ResponseWriter, r *http.Request) {
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

	code, err := email.GenerateCode()
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.Mailer.SendResetCode(user.Email, user.Name, code); err != nil {
		writeError(w, err)
		return
	}
	h.Codes.Put(user.Email, code)

	slog.Info("http: Reset code sent", "user_id", user.ID)
	writeJSON(w, http.StatusOK, map[string]string{"status": "sent"})
}

func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req ResetPasswordRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.Password == "" {
		writeError(w, badRequest("password is required"))
		return
	}

	user, err := h.Services.Users.GetByEmail(req.Email)
	if err != nil {
		writeError(w, err)
		return
	}
	if !h.Codes.Consume(user.Email, req.Code) {
		writeError(w, errors.Join(service.ErrUnauthorized, errors.New("invalid or expired code")))
		return
	}

	if err := h.Services.Users.UpdatePassword(user.ID, nil, req.Password); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}
