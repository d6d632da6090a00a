package models

import "time"

type User struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
	Image        []byte `json:"image,omitempty"`
}

type Channel struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	CreatorID int64  `json:"creator_id"`
}

// Role is owned by exactly one Member; it is never shared.
type Role struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	IsAdmin   bool   `json:"is_admin"`
	IsCreator bool   `json:"is_creator"`
}

type Member struct {
	ID        int64 `json:"id"`
	ChannelID int64 `json:"channel_id"`
	UserID    int64 `json:"user_id"`
	RoleID    int64 `json:"role_id"`
}

// Chat is a direct conversation between two users. The pair is unordered.
type Chat struct {
	ID         int64 `json:"id"`
	UserFirst  int64 `json:"user_first"`
	UserSecond int64 `json:"user_second"`
}

// Has reports whether userID is one of the chat's participants.
func (c Chat) Has(userID int64) bool {
	return c.UserFirst == userID || c.UserSecond == userID
}

// Pair returns the participants ordered low to high.
func (c Chat) Pair() (low, high int64) {
	return OrderedPair(c.UserFirst, c.UserSecond)
}

func OrderedPair(a, b int64) (low, high int64) {
	if a > b {
		return b, a
	}
	return a, b
}

type OwnerKind int

const (
	OwnerChat OwnerKind = iota + 1
	OwnerChannel
)

func (k OwnerKind) String() string {
	switch k {
	case OwnerChat:
		return "chat"
	case OwnerChannel:
		return "channel"
	default:
		return "unknown"
	}
}

// Owner is the conversation a message belongs to: a chat or a channel,
// never both and never neither.
type Owner struct {
	Kind OwnerKind `json:"kind"`
	ID   int64     `json:"id"`
}

func ChatOwner(chatID int64) Owner {
	return Owner{Kind: OwnerChat, ID: chatID}
}

func ChannelOwner(channelID int64) Owner {
	return Owner{Kind: OwnerChannel, ID: channelID}
}

func (o Owner) Valid() bool {
	return (o.Kind == OwnerChat || o.Kind == OwnerChannel) && o.ID != 0
}

// Columns splits the owner into the nullable chat and channel references
// used by the stores.
func (o Owner) Columns() (chatID, channelID *int64) {
	id := o.ID
	switch o.Kind {
	case OwnerChat:
		return &id, nil
	case OwnerChannel:
		return nil, &id
	}
	return nil, nil
}

// OwnerFromColumns is the inverse of Owner.Columns. It returns false when
// both or neither reference is set.
func OwnerFromColumns(chatID, channelID *int64) (Owner, bool) {
	switch {
	case chatID != nil && channelID == nil:
		return ChatOwner(*chatID), true
	case chatID == nil && channelID != nil:
		return ChannelOwner(*channelID), true
	}
	return Owner{}, false
}

type Message struct {
	ID        int64     `json:"id"`
	SenderID  int64     `json:"sender_id"`
	Owner     Owner     `json:"owner"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// SavedMessage is a user's bookmark of a message.
type SavedMessage struct {
	ID        int64 `json:"id"`
	MessageID int64 `json:"message_id"`
	UserID    int64 `json:"user_id"`
}
