package gormstore

import (
	"time"

	"github.com/pliu/messenger/internal/models"
)

type User struct {
	ID       int64  `gorm:"primaryKey"`
	Name     string `gorm:"uniqueIndex;not null"`
	Email    string `gorm:"uniqueIndex;not null"`
	Password string `gorm:"not null"`
	Image    []byte
}

func (u User) toModel() models.User {
	return models.User{ID: u.ID, Name: u.Name, Email: u.Email, PasswordHash: u.Password, Image: u.Image}
}

// Chat stores the normalized pair alongside the original order so the
// unique index covers both orderings.
type Chat struct {
	ID         int64 `gorm:"primaryKey"`
	FirstUser  int64 `gorm:"not null;index"`
	SecondUser int64 `gorm:"not null;index"`
	UserLow    int64 `gorm:"not null;uniqueIndex:idx_chat_pair"`
	UserHigh   int64 `gorm:"not null;uniqueIndex:idx_chat_pair"`
}

func (c Chat) toModel() models.Chat {
	return models.Chat{ID: c.ID, UserFirst: c.FirstUser, UserSecond: c.SecondUser}
}

type Channel struct {
	ID      int64  `gorm:"primaryKey"`
	Name    string `gorm:"uniqueIndex;not null"`
	Creator int64  `gorm:"not null"`
}

func (c Channel) toModel() models.Channel {
	return models.Channel{ID: c.ID, Name: c.Name, CreatorID: c.Creator}
}

type Role struct {
	ID        int64  `gorm:"primaryKey"`
	Name      string `gorm:"not null"`
	IsAdmin   bool   `gorm:"not null"`
	IsCreator bool   `gorm:"not null"`
}

func (r Role) toModel() models.Role {
	return models.Role{ID: r.ID, Name: r.Name, IsAdmin: r.IsAdmin, IsCreator: r.IsCreator}
}

type Member struct {
	ID        int64 `gorm:"primaryKey"`
	ChannelID int64 `gorm:"not null;index"`
	UserID    int64 `gorm:"not null;index"`
	RoleID    int64 `gorm:"not null"`
}

func (m Member) toModel() models.Member {
	return models.Member{ID: m.ID, ChannelID: m.ChannelID, UserID: m.UserID, RoleID: m.RoleID}
}

type Message struct {
	ID        int64     `gorm:"primaryKey"`
	Sender    int64     `gorm:"not null"`
	ChatID    *int64    `gorm:"index;check:chk_messages_owner,(chat_id IS NULL) <> (channel_id IS NULL)"`
	ChannelID *int64    `gorm:"index"`
	Data      string    `gorm:"type:text;not null"`
	CreatedAt time.Time `gorm:"not null"`
}

type SavedMessage struct {
	ID        int64 `gorm:"primaryKey"`
	MessageID int64 `gorm:"not null;index"`
	UserID    int64 `gorm:"not null;index"`
}

func (s SavedMessage) toModel() models.SavedMessage {
	return models.SavedMessage{ID: s.ID, MessageID: s.MessageID, UserID: s.UserID}
}
