package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/pliu/messenger/internal/models"
)

func TestChatDirectoryIsPublic(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "alice")
	env.register(t, "bob")

	rr := env.do(t, "GET", "/api/chats", nil, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %v", rr.Code)
	}
	var contacts []ChatContact
	if err := json.NewDecoder(rr.Body).Decode(&contacts); err != nil {
		t.Fatal(err)
	}
	if len(contacts) != 2 {
		t.Errorf("Expected 2 contacts, got %d", len(contacts))
	}
}

func TestChatAddMessage(t *testing.T) {
	env := newTestEnv(t)
	alice := env.register(t, "alice")
	bob := env.register(t, "bob")
	carol := env.register(t, "carol")

	rr := env.do(t, "POST", "/api/chats/add_message", ChatMessageRequest{OtherUsername: "bob", Message: "hi"}, env.token(t, alice))
	if rr.Code != http.StatusOK {
		t.Fatalf("add_message returned %v: %s", rr.Code, rr.Body.String())
	}
	var first ChatMessageResponse
	if err := json.NewDecoder(rr.Body).Decode(&first); err != nil {
		t.Fatal(err)
	}

	rr = env.do(t, "POST", "/api/chats/add_message", ChatMessageRequest{OtherUsername: "alice", Message: "hey"}, env.token(t, bob))
	if rr.Code != http.StatusOK {
		t.Fatalf("add_message returned %v", rr.Code)
	}
	var second ChatMessageResponse
	if err := json.NewDecoder(rr.Body).Decode(&second); err != nil {
		t.Fatal(err)
	}
	if first.Chat.ID != second.Chat.ID {
		t.Errorf("Expected the same chat, got %d and %d", first.Chat.ID, second.Chat.ID)
	}

	// Acting for someone else is forbidden.
	rr = env.do(t, "POST", "/api/chats/add_message", ChatMessageRequest{CurrentUsername: "bob", OtherUsername: "carol", Message: "x"}, env.token(t, alice))
	if rr.Code != http.StatusForbidden {
		t.Errorf("Expected 403, got %v", rr.Code)
	}

	path := "/api/chats/" + strconv.FormatInt(first.Chat.ID, 10)
	rr = env.do(t, "GET", path, nil, env.token(t, bob))
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %v", rr.Code)
	}
	var messages []models.Message
	if err := json.NewDecoder(rr.Body).Decode(&messages); err != nil {
		t.Fatal(err)
	}
	if len(messages) != 2 || messages[0].Text != "hi" || messages[1].Text != "hey" {
		t.Errorf("Unexpected messages: %+v", messages)
	}

	if rr := env.do(t, "GET", path, nil, env.token(t, carol)); rr.Code != http.StatusForbidden {
		t.Errorf("Expected 403 for outsider, got %v", rr.Code)
	}

	rr = env.do(t, "GET", "/api/chats/usernames?first_user=bob&second_user=alice", nil, env.token(t, alice))
	if rr.Code != http.StatusOK {
		t.Errorf("Expected 200 by usernames, got %v", rr.Code)
	}
	rr = env.do(t, "GET", "/api/chats/usernames?first_user=alice&second_user=carol", nil, env.token(t, alice))
	if rr.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for missing chat, got %v", rr.Code)
	}

	rr = env.do(t, "DELETE", "/api/chats/delete/"+strconv.FormatInt(first.Chat.ID, 10), nil, env.token(t, alice))
	if rr.Code != http.StatusOK {
		t.Fatalf("delete returned %v", rr.Code)
	}
	if rr := env.do(t, "GET", path, nil, env.token(t, alice)); rr.Code != http.StatusNotFound {
		t.Errorf("Expected 404 after delete, got %v", rr.Code)
	}
}

func TestChatAddMessageUnknownRecipient(t *testing.T) {
	env := newTestEnv(t)
	alice := env.register(t, "alice")

	rr := env.do(t, "POST", "/api/chats/add_message", ChatMessageRequest{OtherUsername: "ghost", Message: "hi"}, env.token(t, alice))
	if rr.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %v", rr.Code)
	}
}

func TestAuthorizeParticipant(t *testing.T) {
	chat := &models.Chat{ID: 1, UserFirst: 2, UserSecond: 3}

	tests := []struct {
		name    string
		prepare func(*http.Request) *http.Request
		allowed bool
	}{
		{"first user", func(r *http.Request) *http.Request { return asUser(r, 2) }, true},
		{"second user", func(r *http.Request) *http.Request { return asUser(r, 3) }, true},
		{"outsider", func(r *http.Request) *http.Request { return asUser(r, 4) }, false},
		{"admin", asAdmin, true},
		{"anonymous", func(r *http.Request) *http.Request { return r }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.prepare(httptest.NewRequest("GET", "/", nil))
			err := authorizeParticipant(req, chat)
			if tt.allowed && err != nil {
				t.Errorf("Expected access, got %v", err)
			}
			if !tt.allowed && !errors.Is(err, errForbidden) {
				t.Errorf("Expected errForbidden, got %v", err)
			}
		})
	}
}

func TestChatDeleteByOutsider(t *testing.T) {
	env := newTestEnv(t)
	alice := env.register(t, "alice")
	env.register(t, "bob")
	carol := env.register(t, "carol")

	rr := env.do(t, "POST", "/api/chats/add_message", ChatMessageRequest{OtherUsername: "bob", Message: "hi"}, env.token(t, alice))
	if rr.Code != http.StatusOK {
		t.Fatalf("add_message returned %v", rr.Code)
	}
	var resp ChatMessageResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}

	rr = env.do(t, "DELETE", "/api/chats/delete/"+strconv.FormatInt(resp.Chat.ID, 10), nil, env.token(t, carol))
	if rr.Code != http.StatusForbidden {
		t.Errorf("Expected 403 for outsider, got %v", rr.Code)
	}
	if _, err := env.services.Chats.GetByID(resp.Chat.ID); err != nil {
		t.Errorf("Expected chat to survive, got %v", err)
	}
}
