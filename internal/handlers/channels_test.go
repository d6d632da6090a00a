package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gorilla/mux"
	"github.com/pliu/messenger/internal/models"
)

func createChannel(t *testing.T, env *testEnv, owner *models.User, name string) ChannelResponse {
	t.Helper()
	rr := env.do(t, "POST", "/api/channels/create", CreateChannelRequest{ChannelName: name}, env.token(t, owner))
	if rr.Code != http.StatusOK {
		t.Fatalf("create returned %v: %s", rr.Code, rr.Body.String())
	}
	var resp ChannelResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	return resp
}

func TestChannelLifecycle(t *testing.T) {
	env := newTestEnv(t)
	alice := env.register(t, "alice")
	bob := env.register(t, "bob")

	created := createChannel(t, env, alice, "general")
	if len(created.Members) != 1 || created.Members[0].UserID != alice.ID {
		t.Fatalf("Expected creator as the only member, got %+v", created.Members)
	}
	id := strconv.FormatInt(created.Channel.ID, 10)

	rr := env.do(t, "POST", "/api/channels/create", CreateChannelRequest{ChannelName: "general"}, env.token(t, bob))
	if rr.Code != http.StatusConflict {
		t.Errorf("Expected 409 for duplicate channel, got %v", rr.Code)
	}

	rr = env.do(t, "POST", "/api/channels/join?channel_name=general", nil, env.token(t, bob))
	if rr.Code != http.StatusOK {
		t.Fatalf("join returned %v", rr.Code)
	}
	rr = env.do(t, "POST", "/api/channels/join?channel_name=general", nil, env.token(t, bob))
	if rr.Code != http.StatusConflict {
		t.Errorf("Expected 409 on second join, got %v", rr.Code)
	}

	rr = env.do(t, "POST", "/api/channels/add_message", ChannelMessageRequest{ChannelName: "general", Message: "hello"}, env.token(t, bob))
	if rr.Code != http.StatusOK {
		t.Fatalf("add_message returned %v", rr.Code)
	}

	// Public listing.
	rr = env.do(t, "GET", "/api/channels", nil, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("list returned %v", rr.Code)
	}

	rr = env.do(t, "GET", "/api/channels/"+id, nil, env.token(t, bob))
	var got ChannelResponse
	if err := json.NewDecoder(rr.Body).Decode(&got); err != nil {
		t.Fatal(err)
	}
	if len(got.Members) != 2 || len(got.Messages) != 1 || got.Messages[0].Text != "hello" {
		t.Errorf("Unexpected channel: %+v", got)
	}

	// Only channel admins may rename.
	if rr := env.do(t, "PUT", "/api/channels/"+id+"/update?name=lobby", nil, env.token(t, bob)); rr.Code != http.StatusForbidden {
		t.Errorf("Expected 403 for plain member, got %v", rr.Code)
	}
	if rr := env.do(t, "PUT", "/api/channels/"+id+"/update?name=lobby", nil, env.token(t, alice)); rr.Code != http.StatusOK {
		t.Errorf("Expected rename to succeed, got %v", rr.Code)
	}

	if rr := env.do(t, "DELETE", "/api/channels/"+id+"/leave", nil, env.token(t, bob)); rr.Code != http.StatusOK {
		t.Errorf("leave returned %v", rr.Code)
	}
	if rr := env.do(t, "DELETE", "/api/channels/"+id+"/leave", nil, env.token(t, bob)); rr.Code != http.StatusNotFound {
		t.Errorf("Expected 404 on second leave, got %v", rr.Code)
	}

	if rr := env.do(t, "DELETE", "/api/channels/delete/"+id, nil, env.token(t, bob)); rr.Code != http.StatusForbidden {
		t.Errorf("Expected 403 for non-member delete, got %v", rr.Code)
	}
	if rr := env.do(t, "DELETE", "/api/channels/delete/"+id, nil, env.token(t, alice)); rr.Code != http.StatusOK {
		t.Errorf("delete returned %v", rr.Code)
	}
	if rr := env.do(t, "GET", "/api/channels/"+id, nil, env.token(t, alice)); rr.Code != http.StatusNotFound {
		t.Errorf("Expected 404 after delete, got %v", rr.Code)
	}
}

func TestCreateRole(t *testing.T) {
	env := newTestEnv(t)
	alice := env.register(t, "alice")
	bob := env.register(t, "bob")
	created := createChannel(t, env, alice, "general")
	if _, err := env.services.JoinChannel(bob.ID, created.Channel.ID); err != nil {
		t.Fatal(err)
	}

	req := CreateRoleRequest{Username: "bob", ChannelName: "general", Name: "moderator", IsAdmin: true}
	if rr := env.do(t, "POST", "/api/roles/create", req, env.token(t, bob)); rr.Code != http.StatusForbidden {
		t.Errorf("Expected 403 for plain member, got %v", rr.Code)
	}
	if rr := env.do(t, "POST", "/api/roles/create", req, env.token(t, alice)); rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %v", rr.Code)
	}

	member, err := env.services.Members.GetByUserAndChannel(bob.ID, created.Channel.ID)
	if err != nil {
		t.Fatal(err)
	}
	role, err := env.services.Members.GetRole(member.RoleID)
	if err != nil {
		t.Fatal(err)
	}
	if role.Name != "moderator" || !role.IsAdmin {
		t.Errorf("Unexpected role: %+v", role)
	}
}

func TestChannelGetBadID(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest("GET", "/api/channels/abc", nil)
	req = mux.SetURLVars(req, map[string]string{"id": "abc"})
	rr := httptest.NewRecorder()
	http.HandlerFunc(env.router.Channels.Get).ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %v", rr.Code)
	}
}
