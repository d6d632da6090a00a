package sqlstore

import (
	"github.com/pliu/messenger/internal/models"
)

func (s *SQLStore) CreateSavedMessage(saved *models.SavedMessage) error {
	id, err := s.insert("INSERT INTO saved_messages (message_id, user_id) VALUES (?, ?)", saved.MessageID, saved.UserID)
	if err != nil {
		return err
	}
	saved.ID = id
	return nil
}

func (s *SQLStore) GetSavedMessagesByUser(userID int64) ([]models.SavedMessage, error) {
	query := s.rebind("SELECT id, message_id, user_id FROM saved_messages WHERE user_id = ? ORDER BY id")
	rows, err := s.q.Query(query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var saved []models.SavedMessage
	for rows.Next() {
		var sm models.SavedMessage
		if err := rows.Scan(&sm.ID, &sm.MessageID, &sm.UserID); err != nil {
			return nil, err
		}
		saved = append(saved, sm)
	}
	return saved, rows.Err()
}

func (s *SQLStore) DeleteSavedMessage(messageID, userID int64) error {
	return s.exec("DELETE FROM saved_messages WHERE message_id = ? AND user_id = ?", messageID, userID)
}

func (s *SQLStore) DeleteSavedMessagesByUser(userID int64) error {
	return s.exec("DELETE FROM saved_messages WHERE user_id = ?", userID)
}
