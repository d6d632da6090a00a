package service

import (
	"fmt"
	"log/slog"

	"github.com/pliu/messenger/internal/models"
	"github.com/pliu/messenger/internal/store"
)

type ChannelService struct {
	store store.Store
}

// Create adds a channel owned by creatorID. It does not bind any members;
// see Services.CreateChannel.
func (s *ChannelService) Create(creatorID int64, name string) (*models.Channel, error) {
	channel := &models.Channel{Name: name, CreatorID: creatorID}
	err := s.store.WithTx(func(tx store.Store) error {
		_, err := tx.GetChannelByName(name)
		if exists, err := found(err); err != nil {
			return storeError(err, "look up channel %q", name)
		} else if exists {
			return fmt.Errorf("%w: channel %q already exists", ErrConflict, name)
		}
		if err := tx.CreateChannel(channel); err != nil {
			return storeError(err, "create channel %q", name)
		}
		return nil
	})
	if err != nil {
		slog.Warn("service: Channel creation rejected", "name", name, "error", err)
		return nil, err
	}

	slog.Info("service: Channel created", "channel_id", channel.ID, "name", name, "creator_id", creatorID)
	return channel, nil
}

func (s *ChannelService) GetByID(id int64) (*models.Channel, error) {
	channel, err := s.store.GetChannelByID(id)
	if err != nil {
		return nil, storeError(err, "channel %d", id)
	}
	return channel, nil
}

func (s *ChannelService) GetByName(name string) (*models.Channel, error) {
	channel, err := s.store.GetChannelByName(name)
	if err != nil {
		return nil, storeError(err, "channel %q", name)
	}
	return channel, nil
}

func (s *ChannelService) ListAll() ([]models.Channel, error) {
	channels, err := s.store.ListChannels()
	if err != nil {
		return nil, storeError(err, "list channels")
	}
	return channels, nil
}

// Rename changes a channel's name. Renaming a channel to its current name
// succeeds without writing.
func (s *ChannelService) Rename(id int64, name string) (*models.Channel, error) {
	var channel *models.Channel
	err := s.store.WithTx(func(tx store.Store) error {
		var err error
		if channel, err = tx.GetChannelByID(id); err != nil {
			return storeError(err, "channel %d", id)
		}
		if channel.Name == name {
			return nil
		}

		other, err := tx.GetChannelByName(name)
		if exists, err := found(err); err != nil {
			return storeError(err, "look up channel %q", name)
		} else if exists && other.ID != id {
			return fmt.Errorf("%w: channel %q already exists", ErrConflict, name)
		}

		channel.Name = name
		if err := tx.UpdateChannel(channel); err != nil {
			return storeError(err, "rename channel %d", id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return channel, nil
}

// Delete removes the channel row and the messages it owns. Members and
// their roles must be removed first; see Services.DeleteChannelCascade.
func (s *ChannelService) Delete(id int64) error {
	if err := s.store.DeleteChannel(id); err != nil {
		return storeError(err, "delete channel %d", id)
	}
	slog.Info("service: Channel deleted", "channel_id", id)
	return nil
}
