package handlers

import (
	"net/http"

	"github.com/pliu/messenger/internal/service"
)

type SavedMessageHandler struct {
	Services *service.Services
}

type SaveMessageRequest struct {
	Username  string `json:"username"`
	MessageID int64  `json:"message_id"`
}

func (h *SavedMessageHandler) Save(w http.ResponseWriter, r *http.Request) {
	var req SaveMessageRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}

	user, err := actingUser(h.Services, r, req.Username)
	if err != nil {
		writeError(w, err)
		return
	}

	saved, err := h.Services.Bookmarks.Save(req.MessageID, user.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

// Delete removes ?message_id= from the bookmarks of ?user_id=.
func (h *SavedMessageHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.authorizedUserID(w, r)
	if !ok {
		return
	}
	messageID, err := parseID(r.URL.Query().Get("message_id"), "message_id")
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.Services.Bookmarks.DeleteOne(messageID, userID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *SavedMessageHandler) DeleteAll(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.authorizedUserID(w, r)
	if !ok {
		return
	}

	if err := h.Services.Bookmarks.DeleteAll(userID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *SavedMessageHandler) authorizedUserID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	userID, err := parseID(r.URL.Query().Get("user_id"), "user_id")
	if err == nil {
		err = authorizeUser(r, userID)
	}
	if err != nil {
		writeError(w, err)
		return 0, false
	}
	return userID, true
}
