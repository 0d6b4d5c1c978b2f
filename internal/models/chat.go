package models

import (
	"sort"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Chat is the stored form of a conversation, direct or group.
// Direct chats carry a DirectKey (sorted participant pair) backed by a
// unique partial index so two users racing through find-or-create
// cannot end up with duplicate chats.
type Chat struct {
	ID            primitive.ObjectID   `bson:"_id,omitempty"`
	Participants  []primitive.ObjectID `bson:"participants"`
	IsGroup       bool                 `bson:"is_group"`
	GroupName     string               `bson:"group_name,omitempty"`
	GroupImage    string               `bson:"group_image,omitempty"`
	GroupAdmin    primitive.ObjectID   `bson:"group_admin,omitempty"`
	DirectKey     string               `bson:"direct_key,omitempty"`
	LastMessageID primitive.ObjectID   `bson:"last_message_id,omitempty"`
	CreatedAt     time.Time            `bson:"created_at"`
	UpdatedAt     time.Time            `bson:"updated_at"`
}

// DirectKey builds the canonical key for a 1:1 chat between two users.
// The pair is unordered, so both orderings map to the same key.
func DirectKey(a, b primitive.ObjectID) string {
	pair := []string{a.Hex(), b.Hex()}
	sort.Strings(pair)
	return strings.Join(pair, ":")
}

// HasParticipant reports whether id is in the chat's participant set.
func (c *Chat) HasParticipant(id primitive.ObjectID) bool {
	for _, p := range c.Participants {
		if p == id {
			return true
		}
	}
	return false
}

// ChatInfo is the API shape of a chat: participants and admin resolved
// to profiles, last message resolved with its sender.
type ChatInfo struct {
	ID           string       `json:"id"`
	Participants []User       `json:"participants"`
	IsGroup      bool         `json:"isGroup"`
	GroupName    string       `json:"groupName,omitempty"`
	GroupImage   string       `json:"groupImage,omitempty"`
	GroupAdmin   *User        `json:"groupAdmin,omitempty"`
	LastMessage  *MessageInfo `json:"lastMessage,omitempty"`
	CreatedAt    time.Time    `json:"createdAt"`
	UpdatedAt    time.Time    `json:"updatedAt"`
}
