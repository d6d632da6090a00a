package sqlstore

import (
	"errors"
	"testing"

	"github.com/pliu/messenger/internal/models"
	"github.com/pliu/messenger/internal/store"
)

var testStore *SQLStore

func SetupTestDB(t *testing.T) {
	var err error
	testStore, err = New("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
}

func TeardownTestDB() {
	testStore.Close()
}

func createTestUser(t *testing.T, name string) *models.User {
	t.Helper()
	user := &models.User{Name: name, Email: name + "@example.com", PasswordHash: "hash"}
	if err := testStore.CreateUser(user); err != nil {
		t.Fatalf("Failed to create user %s: %v", name, err)
	}
	return user
}

func TestWithTxRollsBackOnError(t *testing.T) {
	SetupTestDB(t)
	defer TeardownTestDB()

	boom := errors.New("boom")
	err := testStore.WithTx(func(tx store.Store) error {
		if err := tx.CreateUser(&models.User{Name: "ghost", Email: "ghost@example.com", PasswordHash: "x"}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Expected boom, got %v", err)
	}

	if _, err := testStore.GetUserByName("ghost"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Expected user to be rolled back, got %v", err)
	}
}

func TestWithTxCommits(t *testing.T) {
	SetupTestDB(t)
	defer TeardownTestDB()

	err := testStore.WithTx(func(tx store.Store) error {
		// Nested calls join the enclosing transaction.
		return tx.WithTx(func(inner store.Store) error {
			return inner.CreateUser(&models.User{Name: "kept", Email: "kept@example.com", PasswordHash: "x"})
		})
	})
	if err != nil {
		t.Fatalf("WithTx failed: %v", err)
	}

	if _, err := testStore.GetUserByName("kept"); err != nil {
		t.Errorf("Expected committed user, got %v", err)
	}
}

func TestRebind(t *testing.T) {
	s := &SQLStore{driverName: "pgx"}
	got := s.rebind("SELECT 1 WHERE a = ? AND b = ?")
	if got != "SELECT 1 WHERE a = $1 AND b = $2" {
		t.Errorf("Unexpected rebind result: %s", got)
	}

	s = &SQLStore{driverName: "sqlite3"}
	if got := s.rebind("a = ?"); got != "a = ?" {
		t.Errorf("Expected sqlite query unchanged, got %s", got)
	}
}
