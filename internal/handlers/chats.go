package handlers

import (
	"net/http"

	"github.com/pliu/messenger/internal/models"
	"github.com/pliu/messenger/internal/service"
)

type ChatHandler struct {
	Services *service.Services
}

// ChatContact is a directory entry for starting a chat.
type ChatContact struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Image []byte `json:"image,omitempty"`
}

type ChatMessageRequest struct {
	CurrentUsername string `json:"current_username"`
	OtherUsername   string `json:"other_username"`
	Message         string `json:"message"`
}

type ChatMessageResponse struct {
	Chat    *models.Chat    `json:"chat"`
	Message *models.Message `json:"message"`
}

func (h *ChatHandler) Directory(w http.ResponseWriter, r *http.Request) {
	users, err := h.Services.Users.List()
	if err != nil {
		writeError(w, err)
		return
	}

	contacts := make([]ChatContact, 0, len(users))
	for _, u := range users {
		contacts = append(contacts, ChatContact{ID: u.ID, Name: u.Name, Image: u.Image})
	}
	writeJSON(w, http.StatusOK, contacts)
}

func (h *ChatHandler) AddMessage(w http.ResponseWriter, r *http.Request) {
	var req ChatMessageRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.OtherUsername == "" || req.Message == "" {
		writeError(w, badRequest("other_username and message are required"))
		return
	}

	sender, err := actingUser(h.Services, r, req.CurrentUsername)
	if err != nil {
		writeError(w, err)
		return
	}
	recipient, err := h.Services.Users.GetByName(req.OtherUsername)
	if err != nil {
		writeError(w, err)
		return
	}

	chat, msg, err := h.Services.SendChatMessage(sender.ID, recipient.ID, req.Message)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ChatMessageResponse{Chat: chat, Message: msg})
}

// Messages lists a chat's messages. Only its participants and the admin may
// read it.
func (h *ChatHandler) Messages(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	chat, err := h.Services.Chats.GetByID(id)
	if err != nil {
		writeError(w, err)
		return
	}
	h.writeMessages(w, r, chat)
}

// MessagesByUsernames looks the chat up by ?first_user= and ?second_user=
// without creating it.
func (h *ChatHandler) MessagesByUsernames(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	first, err := h.Services.Users.GetByName(query.Get("first_user"))
	if err != nil {
		writeError(w, err)
		return
	}
	second, err := h.Services.Users.GetByName(query.Get("second_user"))
	if err != nil {
		writeError(w, err)
		return
	}

	chat, err := h.Services.Chats.GetByUsers(first.ID, second.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	h.writeMessages(w, r, chat)
}

func (h *ChatHandler) writeMessages(w http.ResponseWriter, r *http.Request, chat *models.Chat) {
	if err := authorizeParticipant(r, chat); err != nil {
		writeError(w, err)
		return
	}

	messages, err := h.Services.Messages.ListByChat(chat.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, messages)
}

func (h *ChatHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	chat, err := h.Services.Chats.GetByID(id)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := authorizeParticipant(r, chat); err != nil {
		writeError(w, err)
		return
	}

	if err := h.Services.Chats.Delete(id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}
