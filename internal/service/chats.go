package service

import (
	"errors"
	"log/slog"

	"github.com/pliu/messenger/internal/models"
	"github.com/pliu/messenger/internal/store"
)

type ChatService struct {
	store store.Store
}

// GetOrCreate returns the chat between two users, creating it if the pair
// has none. The pair is unordered. If a concurrent caller creates the same
// chat first, its chat is returned.
func (s *ChatService) GetOrCreate(userA, userB int64) (*models.Chat, error) {
	var (
		chat    *models.Chat
		created bool
	)
	err := s.store.WithTx(func(tx store.Store) error {
		existing, err := tx.FindChatByUsers(userA, userB)
		if exists, err := found(err); err != nil {
			return err
		} else if exists {
			chat = existing
			return nil
		}

		chat = &models.Chat{UserFirst: userA, UserSecond: userB}
		if err := tx.CreateChat(chat); err != nil {
			return err
		}
		created = true
		return nil
	})
	if errors.Is(err, store.ErrConflict) {
		slog.Debug("service: Chat created concurrently, re-reading", "user_a", userA, "user_b", userB)
		chat, err = s.store.FindChatByUsers(userA, userB)
		created = false
	}
	if err != nil {
		return nil, storeError(err, "get or create chat between %d and %d", userA, userB)
	}

	if created {
		slog.Info("service: Chat created", "chat_id", chat.ID, "user_a", userA, "user_b", userB)
	}
	return chat, nil
}

// GetByUsers finds the chat for the pair without creating one.
func (s *ChatService) GetByUsers(userA, userB int64) (*models.Chat, error) {
	chat, err := s.store.FindChatByUsers(userA, userB)
	if err != nil {
		return nil, storeError(err, "chat between %d and %d", userA, userB)
	}
	return chat, nil
}

func (s *ChatService) GetByID(id int64) (*models.Chat, error) {
	chat, err := s.store.GetChatByID(id)
	if err != nil {
		return nil, storeError(err, "chat %d", id)
	}
	return chat, nil
}

func (s *ChatService) ListForUser(userID int64) ([]models.Chat, error) {
	chats, err := s.store.GetUserChats(userID)
	if err != nil {
		return nil, storeError(err, "list chats of user %d", userID)
	}
	return chats, nil
}

func (s *ChatService) Delete(id int64) error {
	if err := s.store.DeleteChat(id); err != nil {
		return storeError(err, "delete chat %d", id)
	}
	slog.Info("service: Chat deleted", "chat_id", id)
	return nil
}
