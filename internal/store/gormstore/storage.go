package gormstore

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/mattn/go-sqlite3"
	"github.com/pliu/messenger/internal/models"
	"github.com/pliu/messenger/internal/store"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Storage struct {
	db   *gorm.DB
	inTx bool
}

var _ store.Store = (*Storage)(nil)

func New(dbPath string) (*Storage, error) {
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		slog.Error("storage: Failed to connect to database", "error", err, "path", dbPath)
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	s := &Storage{db: db}
	if err := s.migrate(); err != nil {
		sqlDB.Close()
		return nil, err
	}

	return s, nil
}

func (s *Storage) migrate() error {
	err := s.db.AutoMigrate(&User{}, &Chat{}, &Channel{}, &Role{}, &Member{}, &Message{}, &SavedMessage{})
	if err != nil {
		slog.Error("storage: Failed to migrate database", "error", err)
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

func (s *Storage) WithTx(fn func(tx store.Store) error) error {
	return s.withTx(func(tx *Storage) error { return fn(tx) })
}

func (s *Storage) withTx(fn func(tx *Storage) error) error {
	if s.inTx {
		return fn(s)
	}
	return translate(s.db.Transaction(func(tx *gorm.DB) error {
		return fn(&Storage{db: tx, inTx: true})
	}))
}

func (s *Storage) Close() error {
	if s.inTx {
		return nil
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, store.ErrNotFound) || errors.Is(err, store.ErrConflict) {
		return err
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return store.ErrNotFound
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) || isUniqueViolation(err) {
		return fmt.Errorf("%w: %v", store.ErrConflict, err)
	}
	return err
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}

// updateOne applies updates to the row with the given id and reports
// store.ErrNotFound when no row matched.
func (s *Storage) updateOne(model any, id int64, updates map[string]any) error {
	result := s.db.Model(model).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

// User operations

func (s *Storage) CreateUser(user *models.User) error {
	row := User{Name: user.Name, Email: user.Email, Password: user.PasswordHash, Image: user.Image}
	if err := s.db.Create(&row).Error; err != nil {
		return translate(err)
	}
	user.ID = row.ID
	return nil
}

func (s *Storage) getUser(query string, arg any) (*models.User, error) {
	var row User
	if err := s.db.Where(query, arg).First(&row).Error; err != nil {
		return nil, translate(err)
	}
	user := row.toModel()
	return &user, nil
}

func (s *Storage) GetUserByID(id int64) (*models.User, error) {
	return s.getUser("id = ?", id)
}

func (s *Storage) GetUserByName(name string) (*models.User, error) {
	return s.getUser("name = ?", name)
}

func (s *Storage) GetUserByEmail(email string) (*models.User, error) {
	return s.getUser("email = ?", email)
}

func (s *Storage) ListUsers() ([]models.User, error) {
	var rows []User
	if err := s.db.Order("id").Find(&rows).Error; err != nil {
		return nil, translate(err)
	}
	users := make([]models.User, 0, len(rows))
	for _, row := range rows {
		users = append(users, row.toModel())
	}
	return users, nil
}

func (s *Storage) UpdateUser(user *models.User) error {
	return s.updateOne(&User{}, user.ID, map[string]any{
		"name":     user.Name,
		"email":    user.Email,
		"password": user.PasswordHash,
		"image":    user.Image,
	})
}

func (s *Storage) DeleteUser(id int64) error {
	return translate(s.db.Delete(&User{}, id).Error)
}

// Chat operations

func (s *Storage) CreateChat(chat *models.Chat) error {
	low, high := chat.Pair()
	row := Chat{FirstUser: chat.UserFirst, SecondUser: chat.UserSecond, UserLow: low, UserHigh: high}
	if err := s.db.Create(&row).Error; err != nil {
		return translate(err)
	}
	chat.ID = row.ID
	return nil
}

func (s *Storage) GetChatByID(id int64) (*models.Chat, error) {
	var row Chat
	if err := s.db.First(&row, id).Error; err != nil {
		return nil, translate(err)
	}
	chat := row.toModel()
	return &chat, nil
}

func (s *Storage) FindChatByUsers(userA, userB int64) (*models.Chat, error) {
	low, high := models.OrderedPair(userA, userB)
	var row Chat
	if err := s.db.Where("user_low = ? AND user_high = ?", low, high).First(&row).Error; err != nil {
		return nil, translate(err)
	}
	chat := row.toModel()
	return &chat, nil
}

func (s *Storage) GetUserChats(userID int64) ([]models.Chat, error) {
	var rows []Chat
	if err := s.db.Where("first_user = ? OR second_user = ?", userID, userID).Order("id").Find(&rows).Error; err != nil {
		return nil, translate(err)
	}
	chats := make([]models.Chat, 0, len(rows))
	for _, row := range rows {
		chats = append(chats, row.toModel())
	}
	return chats, nil
}

func (s *Storage) DeleteChat(id int64) error {
	return s.withTx(func(tx *Storage) error {
		return tx.deleteOwned("chat_id", id, &Chat{})
	})
}

// deleteOwned removes the bookmarks and messages owned by a conversation and
// then the conversation row itself.
func (s *Storage) deleteOwned(column string, id int64, owner any) error {
	owned := s.db.Model(&Message{}).Select("id").Where(column+" = ?", id)
	if err := s.db.Where("message_id IN (?)", owned).Delete(&SavedMessage{}).Error; err != nil {
		return translate(err)
	}
	if err := s.db.Where(column+" = ?", id).Delete(&Message{}).Error; err != nil {
		return translate(err)
	}
	return translate(s.db.Delete(owner, id).Error)
}

// Channel operations

func (s *Storage) CreateChannel(channel *models.Channel) error {
	row := Channel{Name: channel.Name, Creator: channel.CreatorID}
	if err := s.db.Create(&row).Error; err != nil {
		return translate(err)
	}
	channel.ID = row.ID
	return nil
}

func (s *Storage) GetChannelByID(id int64) (*models.Channel, error) {
	var row Channel
	if err := s.db.First(&row, id).Error; err != nil {
		return nil, translate(err)
	}
	channel := row.toModel()
	return &channel, nil
}

func (s *Storage) GetChannelByName(name string) (*models.Channel, error) {
	var row Channel
	if err := s.db.Where("name = ?", name).First(&row).Error; err != nil {
		return nil, translate(err)
	}
	channel := row.toModel()
	return &channel, nil
}

func (s *Storage) ListChannels() ([]models.Channel, error) {
	var rows []Channel
	if err := s.db.Order("id").Find(&rows).Error; err != nil {
		return nil, translate(err)
	}
	channels := make([]models.Channel, 0, len(rows))
	for _, row := range rows {
		channels = append(channels, row.toModel())
	}
	return channels, nil
}

func (s *Storage) UpdateChannel(channel *models.Channel) error {
	return s.updateOne(&Channel{}, channel.ID, map[string]any{
		"name":    channel.Name,
		"creator": channel.CreatorID,
	})
}

func (s *Storage) DeleteChannel(id int64) error {
	return s.withTx(func(tx *Storage) error {
		return tx.deleteOwned("channel_id", id, &Channel{})
	})
}

// Role operations

func (s *Storage) CreateRole(role *models.Role) error {
	row := Role{Name: role.Name, IsAdmin: role.IsAdmin, IsCreator: role.IsCreator}
	if err := s.db.Create(&row).Error; err != nil {
		return translate(err)
	}
	role.ID = row.ID
	return nil
}

func (s *Storage) GetRoleByID(id int64) (*models.Role, error) {
	var row Role
	if err := s.db.First(&row, id).Error; err != nil {
		return nil, translate(err)
	}
	role := row.toModel()
	return &role, nil
}

func (s *Storage) DeleteRole(id int64) error {
	return translate(s.db.Delete(&Role{}, id).Error)
}

// Member operations

func (s *Storage) CreateMember(member *models.Member) error {
	row := Member{ChannelID: member.ChannelID, UserID: member.UserID, RoleID: member.RoleID}
	if err := s.db.Create(&row).Error; err != nil {
		return translate(err)
	}
	member.ID = row.ID
	return nil
}

func (s *Storage) GetMemberByUserAndChannel(userID, channelID int64) (*models.Member, error) {
	var row Member
	if err := s.db.Where("user_id = ? AND channel_id = ?", userID, channelID).First(&row).Error; err != nil {
		return nil, translate(err)
	}
	member := row.toModel()
	return &member, nil
}

func (s *Storage) GetMembersByUser(userID int64) ([]models.Member, error) {
	return s.listMembers("user_id = ?", userID)
}

func (s *Storage) GetMembersByChannel(channelID int64) ([]models.Member, error) {
	return s.listMembers("channel_id = ?", channelID)
}

func (s *Storage) listMembers(query string, arg int64) ([]models.Member, error) {
	var rows []Member
	if err := s.db.Where(query, arg).Order("id").Find(&rows).Error; err != nil {
		return nil, translate(err)
	}
	members := make([]models.Member, 0, len(rows))
	for _, row := range rows {
		members = append(members, row.toModel())
	}
	return members, nil
}

func (s *Storage) UpdateMemberRole(memberID, roleID int64) error {
	return s.updateOne(&Member{}, memberID, map[string]any{"role_id": roleID})
}

func (s *Storage) DeleteMember(id int64) error {
	return translate(s.db.Delete(&Member{}, id).Error)
}

// Message operations

func (s *Storage) CreateMessage(message *models.Message) error {
	if !message.Owner.Valid() {
		return fmt.Errorf("message owner must be a chat or a channel, got %+v", message.Owner)
	}
	chatID, channelID := message.Owner.Columns()
	row := Message{
		Sender:    message.SenderID,
		ChatID:    chatID,
		ChannelID: channelID,
		Data:      message.Text,
		CreatedAt: message.CreatedAt.UTC(),
	}
	if err := s.db.Create(&row).Error; err != nil {
		return translate(err)
	}
	message.ID = row.ID
	return nil
}

func toMessage(row Message) (models.Message, error) {
	owner, ok := models.OwnerFromColumns(row.ChatID, row.ChannelID)
	if !ok {
		return models.Message{}, fmt.Errorf("message %d has no single owner", row.ID)
	}
	return models.Message{
		ID:        row.ID,
		SenderID:  row.Sender,
		Owner:     owner,
		Text:      row.Data,
		CreatedAt: row.CreatedAt,
	}, nil
}

func (s *Storage) GetMessageByID(id int64) (*models.Message, error) {
	var row Message
	if err := s.db.First(&row, id).Error; err != nil {
		return nil, translate(err)
	}
	message, err := toMessage(row)
	if err != nil {
		return nil, err
	}
	return &message, nil
}

func (s *Storage) GetChatMessages(chatID int64) ([]models.Message, error) {
	return s.listMessages("chat_id = ?", chatID)
}

func (s *Storage) GetChannelMessages(channelID int64) ([]models.Message, error) {
	return s.listMessages("channel_id = ?", channelID)
}

func (s *Storage) listMessages(query string, arg int64) ([]models.Message, error) {
	var rows []Message
	if err := s.db.Where(query, arg).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, translate(err)
	}
	messages := make([]models.Message, 0, len(rows))
	for _, row := range rows {
		message, err := toMessage(row)
		if err != nil {
			return nil, err
		}
		messages = append(messages, message)
	}
	return messages, nil
}

// Saved message operations

func (s *Storage) CreateSavedMessage(saved *models.SavedMessage) error {
	row := SavedMessage{MessageID: saved.MessageID, UserID: saved.UserID}
	if err := s.db.Create(&row).Error; err != nil {
		return translate(err)
	}
	saved.ID = row.ID
	return nil
}

func (s *Storage) GetSavedMessagesByUser(userID int64) ([]models.SavedMessage, error) {
	var rows []SavedMessage
	if err := s.db.Where("user_id = ?", userID).Order("id").Find(&rows).Error; err != nil {
		return nil, translate(err)
	}
	saved := make([]models.SavedMessage, 0, len(rows))
	for _, row := range rows {
		saved = append(saved, row.toModel())
	}
	return saved, nil
}

func (s *Storage) DeleteSavedMessage(messageID, userID int64) error {
	return translate(s.db.Where("message_id = ? AND user_id = ?", messageID, userID).Delete(&SavedMessage{}).Error)
}

func (s *Storage) DeleteSavedMessagesByUser(userID int64) error {
	return translate(s.db.Where("user_id = ?", userID).Delete(&SavedMessage{}).Error)
}
