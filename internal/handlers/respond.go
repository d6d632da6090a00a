package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/pliu/messenger/internal/middleware"
	"github.com/pliu/messenger/internal/models"
	"github.com/pliu/messenger/internal/service"
)

var (
	errForbidden  = errors.New("forbidden")
	errBadRequest = errors.New("bad request")
)

type ErrorResponse struct {
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("http: Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, service.ErrUnauthorized):
		status = http.StatusUnauthorized
	case errors.Is(err, errForbidden):
		status = http.StatusForbidden
	case errors.Is(err, errBadRequest):
		status = http.StatusBadRequest
	}

	message := err.Error()
	if status == http.StatusInternalServerError {
		slog.Error("http: Request failed", "error", err)
		message = "Internal server error"
	}
	writeJSON(w, status, ErrorResponse{Message: message, Timestamp: time.Now()})
}

func badRequest(reason string) error {
	return errors.Join(errBadRequest, errors.New(reason))
}

func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return badRequest("invalid JSON body: " + err.Error())
	}
	return nil
}

func pathID(r *http.Request) (int64, error) {
	return parseID(mux.Vars(r)["id"], "id")
}

func parseID(raw, name string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, badRequest("invalid " + name + " " + strconv.Quote(raw))
	}
	return id, nil
}

// actingUser resolves who the request acts for. A token user acts for
// themself, and username, when given, must name them. The admin credential
// acts for the user named by username.
func actingUser(svc *service.Services, r *http.Request, username string) (*models.User, error) {
	if userID, ok := middleware.UserIDFromContext(r.Context()); ok {
		user, err := svc.Users.GetByID(userID)
		if err != nil {
			return nil, err
		}
		if username != "" && username != user.Name {
			return nil, errForbidden
		}
		return user, nil
	}
	if middleware.IsAdmin(r.Context()) {
		if username == "" {
			return nil, badRequest("username is required")
		}
		return svc.Users.GetByName(username)
	}
	return nil, service.ErrUnauthorized
}

// authorizeUser allows the user themself and the admin.
func authorizeUser(r *http.Request, userID int64) error {
	if middleware.IsAdmin(r.Context()) {
		return nil
	}
	if id, ok := middleware.UserIDFromContext(r.Context()); ok && id == userID {
		return nil
	}
	return errForbidden
}

// authorizeParticipant allows the admin and the two users of the chat.
func authorizeParticipant(r *http.Request, chat *models.Chat) error {
	if middleware.IsAdmin(r.Context()) {
		return nil
	}
	if id, ok := middleware.UserIDFromContext(r.Context()); ok && chat.Has(id) {
		return nil
	}
	return errForbidden
}

// authorizeChannelAdmin allows the admin and members whose role is an admin
// role in the channel.
func authorizeChannelAdmin(svc *service.Services, r *http.Request, channelID int64) error {
	if middleware.IsAdmin(r.Context()) {
		return nil
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		return errForbidden
	}
	member, err := svc.Members.GetByUserAndChannel(userID, channelID)
	if errors.Is(err, service.ErrNotFound) {
		return errForbidden
	}
	if err != nil {
		return err
	}
	role, err := svc.Members.GetRole(member.RoleID)
	if errors.Is(err, service.ErrNotFound) {
		return errForbidden
	}
	if err != nil {
		return err
	}
	if !role.IsAdmin {
		return errForbidden
	}
	return nil
}
