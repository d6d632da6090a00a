package service

import (
	"github.com/pliu/messenger/internal/models"
	"github.com/pliu/messenger/internal/store"
)

// MessageService appends to and reads the message log. Messages are
// immutable once posted.
type MessageService struct {
	store store.Store
	stamp *stamper
}

func (s *MessageService) PostToChat(senderID, chatID int64, text string) (*models.Message, error) {
	return s.post(senderID, models.ChatOwner(chatID), text, func(tx store.Store) error {
		if _, err := tx.GetChatByID(chatID); err != nil {
			return storeError(err, "chat %d", chatID)
		}
		return nil
	})
}

func (s *MessageService) PostToChannel(senderID, channelID int64, text string) (*models.Message, error) {
	return s.post(senderID, models.ChannelOwner(channelID), text, func(tx store.Store) error {
		if _, err := tx.GetChannelByID(channelID); err != nil {
			return storeError(err, "channel %d", channelID)
		}
		return nil
	})
}

// post checks that the owner exists and stores the message stamped with the
// next server time.
func (s *MessageService) post(senderID int64, owner models.Owner, text string, ownerExists func(tx store.Store) error) (*models.Message, error) {
	msg := &models.Message{SenderID: senderID, Owner: owner, Text: text}
	err := s.store.WithTx(func(tx store.Store) error {
		if err := ownerExists(tx); err != nil {
			return err
		}
		msg.CreatedAt = s.stamp.next()
		if err := tx.CreateMessage(msg); err != nil {
			return storeError(err, "post message to %s %d", owner.Kind, owner.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return msg, nil
}

func (s *MessageService) GetByID(id int64) (*models.Message, error) {
	msg, err := s.store.GetMessageByID(id)
	if err != nil {
		return nil, storeError(err, "message %d", id)
	}
	return msg, nil
}

// ListByChat returns the chat's messages in the order they were posted.
func (s *MessageService) ListByChat(chatID int64) ([]models.Message, error) {
	messages, err := s.store.GetChatMessages(chatID)
	if err != nil {
		return nil, storeError(err, "list messages of chat %d", chatID)
	}
	return messages, nil
}

func (s *MessageService) ListByChannel(channelID int64) ([]models.Message, error) {
	messages, err := s.store.GetChannelMessages(channelID)
	if err != nil {
		return nil, storeError(err, "list messages of channel %d", channelID)
	}
	return messages, nil
}
