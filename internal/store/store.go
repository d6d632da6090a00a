package store

import (
	"errors"

	"github.com/pliu/messenger/internal/models"
)

var (
	ErrNotFound = errors.New("record not found")
	ErrConflict = errors.New("record already exists")
)

type Store interface {
	// User operations
	CreateUser(user *models.User) error
	GetUserByID(id int64) (*models.User, error)
	GetUserByName(name string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	ListUsers() ([]models.User, error)
	UpdateUser(user *models.User) error
	DeleteUser(id int64) error

	// Chat operations
	CreateChat(chat *models.Chat) error
	GetChatByID(id int64) (*models.Chat, error)
	// FindChatByUsers matches the pair in either order.
	FindChatByUsers(userA, userB int64) (*models.Chat, error)
	GetUserChats(userID int64) ([]models.Chat, error)
	// DeleteChat also removes the chat's messages and their bookmarks.
	DeleteChat(id int64) error

	// Channel operations
	CreateChannel(channel *models.Channel) error
	GetChannelByID(id int64) (*models.Channel, error)
	GetChannelByName(name string) (*models.Channel, error)
	ListChannels() ([]models.Channel, error)
	UpdateChannel(channel *models.Channel) error
	// DeleteChannel also removes the channel's messages and their bookmarks.
	// Members and roles are left to the caller.
	DeleteChannel(id int64) error

	// Role operations
	CreateRole(role *models.Role) error
	GetRoleByID(id int64) (*models.Role, error)
	DeleteRole(id int64) error

	// Member operations
	CreateMember(member *models.Member) error
	GetMemberByUserAndChannel(userID, channelID int64) (*models.Member, error)
	GetMembersByUser(userID int64) ([]models.Member, error)
	GetMembersByChannel(channelID int64) ([]models.Member, error)
	UpdateMemberRole(memberID, roleID int64) error
	DeleteMember(id int64) error

	// Message operations
	CreateMessage(message *models.Message) error
	GetMessageByID(id int64) (*models.Message, error)
	GetChatMessages(chatID int64) ([]models.Message, error)
	GetChannelMessages(channelID int64) ([]models.Message, error)

	// Saved message operations
	CreateSavedMessage(saved *models.SavedMessage) error
	GetSavedMessagesByUser(userID int64) ([]models.SavedMessage, error)
	DeleteSavedMessage(messageID, userID int64) error
	DeleteSavedMessagesByUser(userID int64) error

	// WithTx runs fn in a single transaction. fn must only use the Store it
	// is given. Calling WithTx on a transactional Store runs fn in the
	// enclosing transaction.
	WithTx(fn func(tx Store) error) error
	Close() error
}
