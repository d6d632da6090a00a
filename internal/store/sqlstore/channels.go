package sqlstore

import (
	"github.com/pliu/messenger/internal/models"
)

func (s *SQLStore) CreateChannel(channel *models.Channel) error {
	id, err := s.insert("INSERT INTO channels (name, creator) VALUES (?, ?)", channel.Name, channel.CreatorID)
	if err != nil {
		return err
	}
	channel.ID = id
	return nil
}

func (s *SQLStore) getChannel(where string, arg any) (*models.Channel, error) {
	var channel models.Channel
	query := s.rebind("SELECT id, name, creator FROM channels WHERE " + where + " = ?")
	if err := s.q.QueryRow(query, arg).Scan(&channel.ID, &channel.Name, &channel.CreatorID); err != nil {
		return nil, translate(err)
	}
	return &channel, nil
}

func (s *SQLStore) GetChannelByID(id int64) (*models.Channel, error) {
	return s.getChannel("id", id)
}

func (s *SQLStore) GetChannelByName(name string) (*models.Channel, error) {
	return s.getChannel("name", name)
}

func (s *SQLStore) ListChannels() ([]models.Channel, error) {
	rows, err := s.q.Query("SELECT id, name, creator FROM channels ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var channels []models.Channel
	for rows.Next() {
		var channel models.Channel
		if err := rows.Scan(&channel.ID, &channel.Name, &channel.CreatorID); err != nil {
			return nil, err
		}
		channels = append(channels, channel)
	}
	return channels, rows.Err()
}

func (s *SQLStore) UpdateChannel(channel *models.Channel) error {
	return s.execAffecting("UPDATE channels SET name = ?, creator = ? WHERE id = ?",
		channel.Name, channel.CreatorID, channel.ID)
}

func (s *SQLStore) DeleteChannel(id int64) error {
	return s.withTx(func(tx *SQLStore) error {
		if err := tx.exec("DELETE FROM saved_messages WHERE message_id IN (SELECT id FROM messages WHERE channel_id = ?)", id); err != nil {
			return err
		}
		if err := tx.exec("DELETE FROM messages WHERE channel_id = ?", id); err != nil {
			return err
		}
		return tx.exec("DELETE FROM channels WHERE id = ?", id)
	})
}
