package service

import (
	"errors"
	"testing"
	"time"

	"github.com/pliu/messenger/internal/auth"
	"github.com/pliu/messenger/internal/models"
	"github.com/pliu/messenger/internal/store/sqlstore"
	"golang.org/x/crypto/bcrypt"
)

var testServices *Services

func SetupTestServices(t *testing.T) {
	st, err := sqlstore.New("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	testServices = New(st, auth.NewBcryptHasher(bcrypt.MinCost), time.Now)
	t.Cleanup(func() { st.Close() })
}

func registerTestUser(t *testing.T, name string) *models.User {
	t.Helper()
	user, err := testServices.Users.Register(name, name+"@x.com", "pw-"+name)
	if err != nil {
		t.Fatalf("Failed to register %s: %v", name, err)
	}
	return user
}

func TestCreateChannelBindsOwner(t *testing.T) {
	SetupTestServices(t)
	alice := registerTestUser(t, "alice")

	channel, member, err := testServices.CreateChannel(alice.ID, "general")
	if err != nil {
		t.Fatalf("CreateChannel failed: %v", err)
	}
	if member.UserID != alice.ID || member.ChannelID != channel.ID {
		t.Fatalf("Unexpected member: %+v", member)
	}

	role, err := testServices.Members.GetRole(member.RoleID)
	if err != nil {
		t.Fatalf("GetRole failed: %v", err)
	}
	if !role.IsAdmin || !role.IsCreator || role.Name != OwnerRoleName {
		t.Errorf("Expected owner role, got %+v", role)
	}

	if _, _, err := testServices.CreateChannel(alice.ID, "general"); !errors.Is(err, ErrConflict) {
		t.Errorf("Expected ErrConflict for duplicate channel, got %v", err)
	}
}

func TestJoinAndLeaveChannel(t *testing.T) {
	SetupTestServices(t)
	alice := registerTestUser(t, "alice")
	bob := registerTestUser(t, "bob")
	channel, _, err := testServices.CreateChannel(alice.ID, "general")
	if err != nil {
		t.Fatalf("CreateChannel failed: %v", err)
	}

	member, err := testServices.JoinChannel(bob.ID, channel.ID)
	if err != nil {
		t.Fatalf("JoinChannel failed: %v", err)
	}
	role, err := testServices.Members.GetRole(member.RoleID)
	if err != nil {
		t.Fatalf("GetRole failed: %v", err)
	}
	if role.IsAdmin || role.IsCreator || role.Name != MemberRoleName {
		t.Errorf("Expected plain member role, got %+v", role)
	}

	if _, err := testServices.JoinChannel(bob.ID, channel.ID); !errors.Is(err, ErrConflict) {
		t.Errorf("Expected ErrConflict on second join, got %v", err)
	}
	if _, err := testServices.JoinChannel(bob.ID, 999); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound for unknown channel, got %v", err)
	}

	if err := testServices.LeaveChannel(bob.ID, channel.ID); err != nil {
		t.Fatalf("LeaveChannel failed: %v", err)
	}
	if _, err := testServices.Members.GetByUserAndChannel(bob.ID, channel.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected membership to be gone, got %v", err)
	}
	if _, err := testServices.Members.GetRole(member.RoleID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected role to be deleted with the member, got %v", err)
	}
	if err := testServices.LeaveChannel(bob.ID, channel.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound when leaving twice, got %v", err)
	}
}

func TestAssignRoleReplacesPreviousRole(t *testing.T) {
	SetupTestServices(t)
	alice := registerTestUser(t, "alice")
	bob := registerTestUser(t, "bob")
	channel, _, err := testServices.CreateChannel(alice.ID, "general")
	if err != nil {
		t.Fatalf("CreateChannel failed: %v", err)
	}
	joined, err := testServices.JoinChannel(bob.ID, channel.ID)
	if err != nil {
		t.Fatalf("JoinChannel failed: %v", err)
	}

	role, err := testServices.AssignRole(bob.ID, channel.ID, "moderator", true)
	if err != nil {
		t.Fatalf("AssignRole failed: %v", err)
	}
	if !role.IsAdmin || role.IsCreator {
		t.Errorf("Unexpected role flags: %+v", role)
	}

	member, err := testServices.Members.GetByUserAndChannel(bob.ID, channel.ID)
	if err != nil {
		t.Fatalf("GetByUserAndChannel failed: %v", err)
	}
	if member.RoleID != role.ID {
		t.Errorf("Expected role %d, got %d", role.ID, member.RoleID)
	}
	if _, err := testServices.Members.GetRole(joined.RoleID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected previous role to be deleted, got %v", err)
	}
}

func TestDeleteChannelCascade(t *testing.T) {
	SetupTestServices(t)
	alice := registerTestUser(t, "alice")
	bob := registerTestUser(t, "bob")
	channel, owner, err := testServices.CreateChannel(alice.ID, "general")
	if err != nil {
		t.Fatalf("CreateChannel failed: %v", err)
	}
	joined, err := testServices.JoinChannel(bob.ID, channel.ID)
	if err != nil {
		t.Fatalf("JoinChannel failed: %v", err)
	}
	msg, err := testServices.Messages.PostToChannel(bob.ID, channel.ID, "hello")
	if err != nil {
		t.Fatalf("PostToChannel failed: %v", err)
	}
	if _, err := testServices.Bookmarks.Save(msg.ID, alice.ID); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if err := testServices.DeleteChannelCascade(channel.ID); err != nil {
		t.Fatalf("DeleteChannelCascade failed: %v", err)
	}

	if _, err := testServices.Channels.GetByID(channel.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected channel to be gone, got %v", err)
	}
	for _, roleID := range []int64{owner.RoleID, joined.RoleID} {
		if _, err := testServices.Members.GetRole(roleID); !errors.Is(err, ErrNotFound) {
			t.Errorf("Expected role %d to be gone, got %v", roleID, err)
		}
	}
	members, err := testServices.Members.ListByChannel(channel.ID)
	if err != nil {
		t.Fatalf("ListByChannel failed: %v", err)
	}
	if len(members) != 0 {
		t.Errorf("Expected no members, got %d", len(members))
	}
	bookmarks, err := testServices.Bookmarks.ListByUser(alice.ID)
	if err != nil {
		t.Fatalf("ListByUser failed: %v", err)
	}
	if len(bookmarks) != 0 {
		t.Errorf("Expected bookmarks of deleted messages to be gone, got %d", len(bookmarks))
	}

	if err := testServices.DeleteChannelCascade(channel.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound for deleted channel, got %v", err)
	}
}

func TestSendChatMessage(t *testing.T) {
	SetupTestServices(t)
	alice := registerTestUser(t, "alice")
	bob := registerTestUser(t, "bob")

	chat, first, err := testServices.SendChatMessage(alice.ID, bob.ID, "hi")
	if err != nil {
		t.Fatalf("SendChatMessage failed: %v", err)
	}
	again, second, err := testServices.SendChatMessage(bob.ID, alice.ID, "hey")
	if err != nil {
		t.Fatalf("SendChatMessage failed: %v", err)
	}
	if again.ID != chat.ID {
		t.Errorf("Expected reply in chat %d, got %d", chat.ID, again.ID)
	}
	if !second.CreatedAt.After(first.CreatedAt) {
		t.Errorf("Expected increasing timestamps, got %v then %v", first.CreatedAt, second.CreatedAt)
	}

	if _, _, err := testServices.SendChatMessage(alice.ID, 999, "hello?"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound for unknown recipient, got %v", err)
	}
}

func TestProfile(t *testing.T) {
	SetupTestServices(t)
	alice := registerTestUser(t, "alice")
	bob := registerTestUser(t, "bob")

	_, msg, err := testServices.SendChatMessage(bob.ID, alice.ID, "hi")
	if err != nil {
		t.Fatalf("SendChatMessage failed: %v", err)
	}
	channel, _, err := testServices.CreateChannel(alice.ID, "general")
	if err != nil {
		t.Fatalf("CreateChannel failed: %v", err)
	}
	if _, err := testServices.Bookmarks.Save(msg.ID, alice.ID); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	profile, err := testServices.Profile(alice.ID)
	if err != nil {
		t.Fatalf("Profile failed: %v", err)
	}
	if profile.User.ID != alice.ID {
		t.Errorf("Unexpected user: %+v", profile.User)
	}
	if len(profile.Chats) != 1 {
		t.Errorf("Expected 1 chat, got %d", len(profile.Chats))
	}
	if len(profile.Channels) != 1 || profile.Channels[0].ID != channel.ID {
		t.Errorf("Unexpected channels: %+v", profile.Channels)
	}
	if len(profile.Bookmarks) != 1 || profile.Bookmarks[0].Chat == nil {
		t.Errorf("Unexpected bookmarks: %+v", profile.Bookmarks)
	}

	if _, err := testServices.Profile(999); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestStamperIsStrictlyIncreasing(t *testing.T) {
	fixed := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s := newStamper(func() time.Time { return fixed })

	a := s.next()
	b := s.next()
	if !b.After(a) {
		t.Errorf("Expected %v after %v", b, a)
	}
	if !a.Equal(fixed) {
		t.Errorf("Expected first stamp to be the clock time, got %v", a)
	}
}
