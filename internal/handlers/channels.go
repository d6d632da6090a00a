package handlers

import (
	"net/http"

	"github.com/pliu/messenger/internal/models"
	"github.com/pliu/messenger/internal/service"
)

type ChannelHandler struct {
	Services *service.Services
}

type CreateChannelRequest struct {
	Username    string `json:"username"`
	ChannelName string `json:"channel_name"`
}

type ChannelMessageRequest struct {
	CurrentUsername string `json:"current_username"`
	ChannelName     string `json:"channel_name"`
	Message         string `json:"message"`
}

type CreateRoleRequest struct {
	Username    string `json:"username"`
	ChannelName string `json:"channel_name"`
	Name        string `json:"name"`
	IsAdmin     bool   `json:"is_admin"`
}

type ChannelResponse struct {
	Channel  *models.Channel  `json:"channel"`
	Members  []models.Member  `json:"members"`
	Messages []models.Message `json:"messages"`
}

func (h *ChannelHandler) List(w http.ResponseWriter, r *http.Request) {
	channels, err := h.Services.Channels.ListAll()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, channels)
}

func (h *ChannelHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateChannelRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.ChannelName == "" {
		writeError(w, badRequest("channel_name is required"))
		return
	}

	creator, err := actingUser(h.Services, r, req.Username)
	if err != nil {
		writeError(w, err)
		return
	}
	channel, _, err := h.Services.CreateChannel(creator.ID, req.ChannelName)
	if err != nil {
		writeError(w, err)
		return
	}
	h.writeChannel(w, channel)
}

func (h *ChannelHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	channel, err := h.Services.Channels.GetByID(id)
	if err != nil {
		writeError(w, err)
		return
	}
	h.writeChannel(w, channel)
}

func (h *ChannelHandler) writeChannel(w http.ResponseWriter, channel *models.Channel) {
	members, err := h.Services.Members.ListByChannel(channel.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	messages, err := h.Services.Messages.ListByChannel(channel.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ChannelResponse{Channel: channel, Members: members, Messages: messages})
}

func (h *ChannelHandler) AddMessage(w http.ResponseWriter, r *http.Request) {
	var req ChannelMessageRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.Message == "" {
		writeError(w, badRequest("message is required"))
		return
	}

	sender, err := actingUser(h.Services, r, req.CurrentUsername)
	if err != nil {
		writeError(w, err)
		return
	}
	channel, err := h.Services.Channels.GetByName(req.ChannelName)
	if err != nil {
		writeError(w, err)
		return
	}

	msg, err := h.Services.Messages.PostToChannel(sender.ID, channel.ID, req.Message)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, msg)
}

// Join adds the caller to ?channel_name=.
func (h *ChannelHandler) Join(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	user, err := actingUser(h.Services, r, query.Get("username"))
	if err != nil {
		writeError(w, err)
		return
	}
	channel, err := h.Services.Channels.GetByName(query.Get("channel_name"))
	if err != nil {
		writeError(w, err)
		return
	}

	member, err := h.Services.JoinChannel(user.ID, channel.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, member)
}

func (h *ChannelHandler) Leave(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	user, err := actingUser(h.Services, r, r.URL.Query().Get("username"))
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.Services.LeaveChannel(user.ID, id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// Rename sets the name from ?name=. Channel admins only.
func (h *ChannelHandler) Rename(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	name := r.URL.Query().Get("name")
	if name == "" {
		writeError(w, badRequest("name is required"))
		return
	}
	if err := authorizeChannelAdmin(h.Services, r, id); err != nil {
		writeError(w, err)
		return
	}

	channel, err := h.Services.Channels.Rename(id, name)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, channel)
}

func (h *ChannelHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if _, err := h.Services.Channels.GetByID(id); err != nil {
		writeError(w, err)
		return
	}
	if err := authorizeChannelAdmin(h.Services, r, id); err != nil {
		writeError(w, err)
		return
	}

	if err := h.Services.DeleteChannelCascade(id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// CreateRole gives the named user a new role in the channel. Channel admins
// only.
func (h *ChannelHandler) CreateRole(w http.ResponseWriter, r *http.Request) {
	var req CreateRoleRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.Name == "" || req.Username == "" {
		writeError(w, badRequest("username and name are required"))
		return
	}

	user, err := h.Services.Users.GetByName(req.Username)
	if err != nil {
		writeError(w, err)
		return
	}
	channel, err := h.Services.Channels.GetByName(req.ChannelName)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := authorizeChannelAdmin(h.Services, r, channel.ID); err != nil {
		writeError(w, err)
		return
	}

	role, err := h.Services.AssignRole(user.ID, channel.ID, req.Name, req.IsAdmin)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, role)
}
