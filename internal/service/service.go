// Package service holds the messenger's domain rules: identity, direct
// chats, channels and their membership, messages and bookmarks.
package service

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/pliu/messenger/internal/auth"
	"github.com/pliu/messenger/internal/models"
	"github.com/pliu/messenger/internal/store"
)

type Services struct {
	Users     *UserService
	Chats     *ChatService
	Channels  *ChannelService
	Members   *MemberService
	Messages  *MessageService
	Bookmarks *BookmarkService

	store  store.Store
	hasher auth.PasswordHasher
	stamp  *stamper
}

func New(st store.Store, hasher auth.PasswordHasher, clock Clock) *Services {
	return bind(st, hasher, newStamper(clock))
}

func bind(st store.Store, hasher auth.PasswordHasher, stamp *stamper) *Services {
	return &Services{
		Users:     &UserService{store: st, hasher: hasher},
		Chats:     &ChatService{store: st},
		Channels:  &ChannelService{store: st},
		Members:   &MemberService{store: st},
		Messages:  &MessageService{store: st, stamp: stamp},
		Bookmarks: &BookmarkService{store: st},
		store:     st,
		hasher:    hasher,
		stamp:     stamp,
	}
}

// withTx runs fn against a copy of the services bound to one transaction.
func (s *Services) withTx(fn func(tx *Services) error) error {
	return s.store.WithTx(func(tx store.Store) error {
		return fn(bind(tx, s.hasher, s.stamp))
	})
}

// found reports whether a lookup returned a row. A store.ErrNotFound is
// treated as absence, any other error is returned.
func found(err error) (bool, error) {
	if err == nil {
		return true, nil
	}
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	return false, err
}

// CreateChannel creates the channel and binds its creator as owner.
func (s *Services) CreateChannel(creatorID int64, name string) (*models.Channel, *models.Member, error) {
	var (
		channel *models.Channel
		member  *models.Member
	)
	err := s.withTx(func(tx *Services) error {
		var err error
		if channel, err = tx.Channels.Create(creatorID, name); err != nil {
			return err
		}
		member, err = tx.Members.AddOwner(channel.ID, creatorID)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return channel, member, nil
}

// JoinChannel adds the user to the channel with a fresh member role. A user
// who already belongs to the channel gets ErrConflict.
func (s *Services) JoinChannel(userID, channelID int64) (*models.Member, error) {
	var member *models.Member
	err := s.withTx(func(tx *Services) error {
		if _, err := tx.Channels.GetByID(channelID); err != nil {
			return err
		}
		_, err := tx.store.GetMemberByUserAndChannel(userID, channelID)
		exists, err := found(err)
		if err != nil {
			return storeError(err, "look up membership of user %d in channel %d", userID, channelID)
		}
		if exists {
			slog.Warn("service: User already in channel", "user_id", userID, "channel_id", channelID)
			return fmt.Errorf("%w: user %d is already a member of channel %d", ErrConflict, userID, channelID)
		}
		member, err = tx.Members.AddParticipant(channelID, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return member, nil
}

// LeaveChannel removes the user's membership and its role.
func (s *Services) LeaveChannel(userID, channelID int64) error {
	return s.withTx(func(tx *Services) error {
		member, err := tx.Members.GetByUserAndChannel(userID, channelID)
		if err != nil {
			return err
		}
		return tx.Members.Remove(member)
	})
}

// AssignRole gives the user's membership a new role and deletes the role it
// replaces.
func (s *Services) AssignRole(userID, channelID int64, name string, isAdmin bool) (*models.Role, error) {
	var role *models.Role
	err := s.withTx(func(tx *Services) error {
		member, err := tx.Members.GetByUserAndChannel(userID, channelID)
		if err != nil {
			return err
		}
		if role, err = tx.Members.CreateRole(name, isAdmin, false); err != nil {
			return err
		}
		if err := tx.Members.ReassignRole(member.ID, role.ID); err != nil {
			return err
		}
		return tx.Members.DeleteRole(member.RoleID)
	})
	if err != nil {
		return nil, err
	}
	slog.Info("service: Role assigned", "user_id", userID, "channel_id", channelID, "role", name, "admin", isAdmin)
	return role, nil
}

// DeleteChannelCascade deletes the roles of every member, then the members,
// then the channel with its messages.
func (s *Services) DeleteChannelCascade(channelID int64) error {
	err := s.withTx(func(tx *Services) error {
		if _, err := tx.Channels.GetByID(channelID); err != nil {
			return err
		}
		members, err := tx.Members.ListByChannel(channelID)
		if err != nil {
			return err
		}
		for _, m := range members {
			if err := tx.Members.DeleteRole(m.RoleID); err != nil {
				return err
			}
		}
		for _, m := range members {
			if err := tx.Members.RemoveMember(m.ID); err != nil {
				return err
			}
		}
		return tx.Channels.Delete(channelID)
	})
	if err != nil {
		return err
	}
	slog.Info("service: Channel deleted with members", "channel_id", channelID)
	return nil
}

// SendChatMessage posts text to the direct chat between sender and
// recipient, creating the chat on first contact. The chat is kept even if
// the post fails.
func (s *Services) SendChatMessage(senderID, recipientID int64, text string) (*models.Chat, *models.Message, error) {
	if _, err := s.Users.GetByID(senderID); err != nil {
		return nil, nil, err
	}
	if _, err := s.Users.GetByID(recipientID); err != nil {
		return nil, nil, err
	}
	chat, err := s.Chats.GetOrCreate(senderID, recipientID)
	if err != nil {
		return nil, nil, err
	}
	msg, err := s.Messages.PostToChat(senderID, chat.ID, text)
	if err != nil {
		return nil, nil, err
	}
	return chat, msg, nil
}

type Profile struct {
	User      models.User      `json:"user"`
	Chats     []models.Chat    `json:"chats"`
	Channels  []models.Channel `json:"channels"`
	Bookmarks []Bookmark       `json:"saved_messages"`
}

// Profile gathers the user with the chats and channels they take part in
// and their resolved bookmarks.
func (s *Services) Profile(userID int64) (*Profile, error) {
	var p *Profile
	err := s.withTx(func(tx *Services) error {
		user, err := tx.Users.GetByID(userID)
		if err != nil {
			return err
		}
		chats, err := tx.Chats.ListForUser(userID)
		if err != nil {
			return err
		}
		members, err := tx.Members.ListByUser(userID)
		if err != nil {
			return err
		}
		channels := make([]models.Channel, 0, len(members))
		for _, m := range members {
			channel, err := tx.Channels.GetByID(m.ChannelID)
			if errors.Is(err, ErrNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			channels = append(channels, *channel)
		}
		bookmarks, err := tx.Bookmarks.ListByUser(userID)
		if err != nil {
			return err
		}
		p = &Profile{User: *user, Chats: chats, Channels: channels, Bookmarks: bookmarks}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}
