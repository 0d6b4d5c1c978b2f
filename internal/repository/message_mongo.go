package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Rachitt19/BlogApp/internal/models"
)

type messageMongoRepo struct {
	coll *mongo.Collection
}

func NewMessageRepository(coll *mongo.Collection) MessageRepository {
	ix := mongo.IndexModel{
		Keys:    bson.D{{Key: "chat_id", Value: 1}, {Key: "created_at", Value: 1}},
		Options: options.Index().SetName("chat_created_idx"),
	}
	_, _ = coll.Indexes().CreateOne(context.Background(), ix)
	return &messageMongoRepo{coll: coll}
}

func (r *messageMongoRepo) Insert(ctx context.Context, m *models.Message) error {
	if m.ID.IsZero() {
		m.ID = primitive.NewObjectID()
	}
	m.CreatedAt = time.Now().UTC()
	_, err := r.coll.InsertOne(ctx, m)
	return err
}

func (r *messageMongoRepo) ListByChat(ctx context.Context, chatID primitive.ObjectID) ([]*models.Message, error) {
	// ascending created_at is the canonical conversation order; _id
	// breaks ties in insertion order
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := r.coll.Find(ctx, bson.M{"chat_id": chatID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []*models.Message
	for cur.Next(ctx) {
		var m models.Message
		if err := cur.Decode(&m); err != nil {
			return nil, err
		}
		out = append(out, &m)
	}
	return out, cur.Err()
}

func (r *messageMongoRepo) LastInChat(ctx context.Context, chatID primitive.ObjectID) (*models.Message, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	var m models.Message
	if err := r.coll.FindOne(ctx, bson.M{"chat_id": chatID}, opts).Decode(&m); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}

// CountUnread is a count-only query: messages in the given chats not
// sent by the user and not yet acknowledged by them.
func (r *messageMongoRepo) CountUnread(ctx context.Context, chatIDs []primitive.ObjectID, userID primitive.ObjectID) (int64, error) {
	if len(chatIDs) == 0 {
		return 0, nil
	}
	filter := bson.M{
		"chat_id":   bson.M{"$in": chatIDs},
		"sender_id": bson.M{"$ne": userID},
		"read_by":   bson.M{"$ne": userID},
	}
	return r.coll.CountDocuments(ctx, filter)
}

func (r *messageMongoRepo) MarkRead(ctx context.Context, chatID, userID primitive.ObjectID) error {
	filter := bson.M{
		"chat_id":   chatID,
		"sender_id": bson.M{"$ne": userID},
		"read_by":   bson.M{"$ne": userID},
	}
	_, err := r.coll.UpdateMany(ctx, filter, bson.M{"$addToSet": bson.M{"read_by": userID}})
	return err
}
