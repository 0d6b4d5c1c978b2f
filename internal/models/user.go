package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// User is the minimal profile projection the chat subsystem needs.
// Accounts themselves are owned by the auth service; we only read
// display data to resolve chat participants and message senders.
type User struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	DisplayName string             `bson:"display_name" json:"displayName"`
	PhotoURL    string             `bson:"photo_url,omitempty" json:"photoURL,omitempty"`
}
