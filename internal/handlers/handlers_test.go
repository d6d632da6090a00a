package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pliu/messenger/internal/auth"
	"github.com/pliu/messenger/internal/middleware"
	"github.com/pliu/messenger/internal/models"
	"github.com/pliu/messenger/internal/service"
	"github.com/pliu/messenger/internal/store/sqlstore"
	"golang.org/x/crypto/bcrypt"
)

type fakeMailer struct {
	to, name, code string
}

func (m *fakeMailer) SendResetCode(to, name, code string) error {
	m.to, m.name, m.code = to, name, code
	return nil
}

type testEnv struct {
	services *service.Services
	tokens   *auth.Tokens
	mailer   *fakeMailer
	router   *Router
	server   http.Handler
}

var adminCredential = middleware.AdminCredential{Username: "admin", Password: "secret"}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	st, err := sqlstore.New("sqlite3", ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { st.Close() })

	services := service.New(st, auth.NewBcryptHasher(bcrypt.MinCost), time.Now)
	tokens := auth.NewTokens("test-secret", time.Hour)
	mailer := &fakeMailer{}
	router := &Router{
		Auth:          &AuthHandler{Services: services, Tokens: tokens, Codes: auth.NewResetCodes(time.Minute), Mailer: mailer},
		Users:         &UserHandler{Services: services},
		Chats:         &ChatHandler{Services: services},
		Channels:      &ChannelHandler{Services: services},
		SavedMessages: &SavedMessageHandler{Services: services},
		Authenticate:  middleware.AuthMiddleware(tokens, adminCredential),
	}
	return &testEnv{services: services, tokens: tokens, mailer: mailer, router: router, server: router.Handler()}
}

func (e *testEnv) register(t *testing.T, name string) *models.User {
	t.Helper()
	user, err := e.services.Users.Register(name, name+"@x.com", "pw-"+name)
	if err != nil {
		t.Fatalf("Failed to register %s: %v", name, err)
	}
	return user
}

func (e *testEnv) token(t *testing.T, user *models.User) string {
	t.Helper()
	token, err := e.tokens.Issue(user.ID)
	if err != nil {
		t.Fatal(err)
	}
	return token
}

// do sends a request through the full router. A non-empty token is sent as
// a bearer token.
func (e *testEnv) do(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	e.server.ServeHTTP(rr, req)
	return rr
}

// asUser puts the user id in the request context the way AuthMiddleware does.
func asUser(req *http.Request, userID int64) *http.Request {
	return req.WithContext(context.WithValue(req.Context(), middleware.UserIDKey, userID))
}

func asAdmin(req *http.Request) *http.Request {
	return req.WithContext(context.WithValue(req.Context(), middleware.AdminKey, true))
}
