package sqlstore

import (
	"database/sql"
	"fmt"

	"github.com/pliu/messenger/internal/models"
)

const messageColumns = "id, sender, chat_id, channel_id, data, created_at"

func (s *SQLStore) CreateMessage(message *models.Message) error {
	if !message.Owner.Valid() {
		return fmt.Errorf("message owner must be a chat or a channel, got %+v", message.Owner)
	}
	chatID, channelID := message.Owner.Columns()
	id, err := s.insert("INSERT INTO messages (sender, chat_id, channel_id, data, created_at) VALUES (?, ?, ?, ?, ?)",
		message.SenderID, chatID, channelID, message.Text, message.CreatedAt.UTC())
	if err != nil {
		return err
	}
	message.ID = id
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMessage(row rowScanner) (*models.Message, error) {
	var (
		m         models.Message
		chatID    sql.NullInt64
		channelID sql.NullInt64
	)
	if err := row.Scan(&m.ID, &m.SenderID, &chatID, &channelID, &m.Text, &m.CreatedAt); err != nil {
		return nil, err
	}
	owner, ok := models.OwnerFromColumns(nullableID(chatID), nullableID(channelID))
	if !ok {
		return nil, fmt.Errorf("message %d has no single owner", m.ID)
	}
	m.Owner = owner
	return &m, nil
}

func (s *SQLStore) GetMessageByID(id int64) (*models.Message, error) {
	row := s.q.QueryRow(s.rebind("SELECT "+messageColumns+" FROM messages WHERE id = ?"), id)
	m, err := scanMessage(row)
	if err != nil {
		return nil, translate(err)
	}
	return m, nil
}

func (s *SQLStore) GetChatMessages(chatID int64) ([]models.Message, error) {
	return s.listMessages("chat_id", chatID)
}

func (s *SQLStore) GetChannelMessages(channelID int64) ([]models.Message, error) {
	return s.listMessages("channel_id", channelID)
}

// listMessages returns messages in insertion order.
func (s *SQLStore) listMessages(where string, arg int64) ([]models.Message, error) {
	query := s.rebind("SELECT " + messageColumns + " FROM messages WHERE " + where + " = ? ORDER BY id ASC")
	rows, err := s.q.Query(query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []models.Message
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		messages = append(messages, *m)
	}
	return messages, rows.Err()
}
