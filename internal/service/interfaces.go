package service

import (
	"context"

	"github.com/Rachitt19/BlogApp/internal/models"
)

// Events pushed to personal rooms when chat state changes.
const (
	EventChatUpdated  = "chat_updated"
	EventNewGroupChat = "new_group_chat"
)

// Notifier delivers an event to every live connection subscribed to a
// user's personal room. The websocket hub implements it; services get
// it injected rather than reaching for a global broadcaster.
type Notifier interface {
	NotifyUser(userID, event string, payload any)
}

type Chats interface {
	FindOrCreateDirect(ctx context.Context, userA, userB string) (*models.ChatInfo, error)
	ListForUser(ctx context.Context, userID string) ([]*models.ChatInfo, error)
	Messages(ctx context.Context, chatID string) ([]*models.MessageInfo, error)
	// Append persists a message, bumps the chat's last-message pointer
	// and returns the resolved message plus the chat's participant ids.
	Append(ctx context.Context, chatID, senderID, content string) (*models.MessageInfo, []string, error)
}

type Groups interface {
	Create(ctx context.Context, creatorID string, memberIDs []string, name string) (*models.ChatInfo, error)
	AddMember(ctx context.Context, chatID, actorID, userID string) (*models.ChatInfo, error)
	RemoveMember(ctx context.Context, chatID, actorID, userID string) (*models.ChatInfo, error)
	Leave(ctx context.Context, chatID, userID string) (*models.ChatInfo, error)
	UpdateMetadata(ctx context.Context, chatID, actorID string, name, image *string) (*models.ChatInfo, error)
}

type Unread interface {
	Count(ctx context.Context, userID string) (int64, error)
	MarkRead(ctx context.Context, chatID, userID string) error
}
