package sqlstore

import (
	"github.com/pliu/messenger/internal/models"
)

func (s *SQLStore) CreateChat(chat *models.Chat) error {
	low, high := chat.Pair()
	id, err := s.insert("INSERT INTO chats (first_user, second_user, user_low, user_high) VALUES (?, ?, ?, ?)",
		chat.UserFirst, chat.UserSecond, low, high)
	if err != nil {
		return err
	}
	chat.ID = id
	return nil
}

func (s *SQLStore) GetChatByID(id int64) (*models.Chat, error) {
	var chat models.Chat
	query := s.rebind("SELECT id, first_user, second_user FROM chats WHERE id = ?")
	if err := s.q.QueryRow(query, id).Scan(&chat.ID, &chat.UserFirst, &chat.UserSecond); err != nil {
		return nil, translate(err)
	}
	return &chat, nil
}

func (s *SQLStore) FindChatByUsers(userA, userB int64) (*models.Chat, error) {
	low, high := models.OrderedPair(userA, userB)
	var chat models.Chat
	query := s.rebind("SELECT id, first_user, second_user FROM chats WHERE user_low = ? AND user_high = ?")
	if err := s.q.QueryRow(query, low, high).Scan(&chat.ID, &chat.UserFirst, &chat.UserSecond); err != nil {
		return nil, translate(err)
	}
	return &chat, nil
}

func (s *SQLStore) GetUserChats(userID int64) ([]models.Chat, error) {
	query := s.rebind("SELECT id, first_user, second_user FROM chats WHERE first_user = ? OR second_user = ? ORDER BY id")
	rows, err := s.q.Query(query, userID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chats []models.Chat
	for rows.Next() {
		var chat models.Chat
		if err := rows.Scan(&chat.ID, &chat.UserFirst, &chat.UserSecond); err != nil {
			return nil, err
		}
		chats = append(chats, chat)
	}
	return chats, rows.Err()
}

func (s *SQLStore) DeleteChat(id int64) error {
	return s.withTx(func(tx *SQLStore) error {
		// Delete bookmarks and messages first
		if err := tx.exec("DELETE FROM saved_messages WHERE message_id IN (SELECT id FROM messages WHERE chat_id = ?)", id); err != nil {
			return err
		}
		if err := tx.exec("DELETE FROM messages WHERE chat_id = ?", id); err != nil {
			return err
		}
		return tx.exec("DELETE FROM chats WHERE id = ?", id)
	})
}
