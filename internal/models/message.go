package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Message is an immutable chat utterance. ReadBy only ever grows;
// there is no edit or delete path.
type Message struct {
	ID        primitive.ObjectID   `bson:"_id,omitempty"`
	ChatID    primitive.ObjectID   `bson:"chat_id"`
	SenderID  primitive.ObjectID   `bson:"sender_id"`
	Content   string               `bson:"content"`
	ReadBy    []primitive.ObjectID `bson:"read_by,omitempty"`
	CreatedAt time.Time            `bson:"created_at"`
}

// MessageInfo is the API shape of a message with its sender resolved.
type MessageInfo struct {
	ID        string    `json:"id"`
	ChatID    string    `json:"chatId"`
	Sender    User      `json:"sender"`
	Content   string    `json:"content"`
	ReadBy    []string  `json:"readBy,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}
