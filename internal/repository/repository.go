package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Rachitt19/BlogApp/internal/models"
)

// ChatRepository owns the chats collection.
type ChatRepository interface {
	Insert(ctx context.Context, chat *models.Chat) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Chat, error)
	FindDirectByKey(ctx context.Context, key string) (*models.Chat, error)
	ListForUser(ctx context.Context, userID primitive.ObjectID) ([]*models.Chat, error)
	AddParticipant(ctx context.Context, chatID, userID primitive.ObjectID) error
	RemoveParticipant(ctx context.Context, chatID, userID primitive.ObjectID) error
	SetGroupAdmin(ctx context.Context, chatID, userID primitive.ObjectID) error
	UpdateGroupMeta(ctx context.Context, chatID primitive.ObjectID, name, image *string) error
	SetLastMessage(ctx context.Context, chatID, messageID primitive.ObjectID, at time.Time) error
}

// MessageRepository owns the messages collection.
type MessageRepository interface {
	Insert(ctx context.Context, msg *models.Message) error
	ListByChat(ctx context.Context, chatID primitive.ObjectID) ([]*models.Message, error)
	LastInChat(ctx context.Context, chatID primitive.ObjectID) (*models.Message, error)
	CountUnread(ctx context.Context, chatIDs []primitive.ObjectID, userID primitive.ObjectID) (int64, error)
	MarkRead(ctx context.Context, chatID, userID primitive.ObjectID) error
}

// UserRepository reads profiles from the users collection. Account
// lifecycle lives in the auth service; this side only resolves display
// data.
type UserRepository interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error)
}

// UnreadCache caches per-user unread counts between writes.
type UnreadCache interface {
	Get(ctx context.Context, userID string) (int64, bool)
	Set(ctx context.Context, userID string, count int64)
	Invalidate(ctx context.Context, userIDs ...string)
}
