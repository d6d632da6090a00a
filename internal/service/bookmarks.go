package service

import (
	"log/slog"

	"github.com/pliu/messenger/internal/models"
	"github.com/pliu/messenger/internal/store"
)

type BookmarkService struct {
	store store.Store
}

// Bookmark is a saved message resolved to its message and to the chat or
// channel that owns it. Exactly one of Chat and Channel is set unless the
// owner has since disappeared.
type Bookmark struct {
	ID      int64           `json:"id"`
	Message models.Message  `json:"message"`
	Chat    *models.Chat    `json:"chat,omitempty"`
	Channel *models.Channel `json:"channel,omitempty"`
}

// Save bookmarks the message for the user. Saving the same message twice
// creates two bookmarks.
func (s *BookmarkService) Save(messageID, userID int64) (*models.SavedMessage, error) {
	saved := &models.SavedMessage{MessageID: messageID, UserID: userID}
	err := s.store.WithTx(func(tx store.Store) error {
		if _, err := tx.GetMessageByID(messageID); err != nil {
			return storeError(err, "message %d", messageID)
		}
		if err := tx.CreateSavedMessage(saved); err != nil {
			return storeError(err, "save message %d", messageID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	slog.Info("service: Message saved", "message_id", messageID, "user_id", userID)
	return saved, nil
}

func (s *BookmarkService) ListByUser(userID int64) ([]Bookmark, error) {
	saved, err := s.store.GetSavedMessagesByUser(userID)
	if err != nil {
		return nil, storeError(err, "list saved messages of user %d", userID)
	}

	bookmarks := make([]Bookmark, 0, len(saved))
	for _, sm := range saved {
		msg, err := s.store.GetMessageByID(sm.MessageID)
		if exists, err := found(err); err != nil {
			return nil, storeError(err, "message %d", sm.MessageID)
		} else if !exists {
			slog.Warn("service: Saved message points at a missing message", "saved_id", sm.ID, "message_id", sm.MessageID)
			continue
		}

		b := Bookmark{ID: sm.ID, Message: *msg}
		if err := s.resolveOwner(&b); err != nil {
			return nil, err
		}
		bookmarks = append(bookmarks, b)
	}
	return bookmarks, nil
}

func (s *BookmarkService) resolveOwner(b *Bookmark) error {
	owner := b.Message.Owner
	var err error
	switch owner.Kind {
	case models.OwnerChat:
		b.Chat, err = s.store.GetChatByID(owner.ID)
	case models.OwnerChannel:
		b.Channel, err = s.store.GetChannelByID(owner.ID)
	}
	if _, err := found(err); err != nil {
		return storeError(err, "%s %d", owner.Kind, owner.ID)
	}
	return nil
}

// DeleteOne removes every bookmark the user holds on the message.
func (s *BookmarkService) DeleteOne(messageID, userID int64) error {
	if err := s.store.DeleteSavedMessage(messageID, userID); err != nil {
		return storeError(err, "delete saved message %d", messageID)
	}
	slog.Info("service: Saved message deleted", "message_id", messageID, "user_id", userID)
	return nil
}

func (s *BookmarkService) DeleteAll(userID int64) error {
	if err := s.store.DeleteSavedMessagesByUser(userID); err != nil {
		return storeError(err, "delete saved messages of user %d", userID)
	}
	slog.Info("service: Saved messages cleared", "user_id", userID)
	return nil
}
