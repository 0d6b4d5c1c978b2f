package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Rachitt19/BlogApp/internal/models"
)

var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned when an insert hits a unique index, which
// for chats means a concurrent find-or-create won the race.
var ErrDuplicate = errors.New("duplicate")

type chatMongoRepo struct {
	coll *mongo.Collection
}

// NewChatRepository wraps the chats collection. The unique partial
// index on direct_key is what makes find-or-create for direct chats
// safe when both participants call it at once.
func NewChatRepository(coll *mongo.Collection) ChatRepository {
	members := mongo.IndexModel{
		Keys:    bson.D{{Key: "participants", Value: 1}},
		Options: options.Index().SetName("participants_idx"),
	}
	directKey := mongo.IndexModel{
		Keys: bson.D{{Key: "direct_key", Value: 1}},
		Options: options.Index().
			SetName("direct_key_uniq").
			SetUnique(true).
			SetPartialFilterExpression(bson.M{"is_group": false}),
	}
	_, _ = coll.Indexes().CreateMany(context.Background(), []mongo.IndexModel{members, directKey})
	return &chatMongoRepo{coll: coll}
}

func (r *chatMongoRepo) Insert(ctx context.Context, chat *models.Chat) error {
	now := time.Now().UTC()
	chat.CreatedAt = now
	chat.UpdatedAt = now
	if chat.ID.IsZero() {
		chat.ID = primitive.NewObjectID()
	}
	_, err := r.coll.InsertOne(ctx, chat)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicate
	}
	return err
}

func (r *chatMongoRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Chat, error) {
	var c models.Chat
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&c); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *chatMongoRepo) FindDirectByKey(ctx context.Context, key string) (*models.Chat, error) {
	var c models.Chat
	filter := bson.M{"direct_key": key, "is_group": false}
	if err := r.coll.FindOne(ctx, filter).Decode(&c); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *chatMongoRepo) ListForUser(ctx context.Context, userID primitive.ObjectID) ([]*models.Chat, error) {
	filter := bson.M{"participants": userID}
	opts := options.Find().SetSort(bson.D{{Key: "updated_at", Value: -1}})
	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []*models.Chat
	for cur.Next(ctx) {
		var c models.Chat
		if err := cur.Decode(&c); err != nil {
			return nil, err
		}
		out = append(out, &c)
	}
	return out, cur.Err()
}

func (r *chatMongoRepo) AddParticipant(ctx context.Context, chatID, userID primitive.ObjectID) error {
	update := bson.M{
		"$addToSet": bson.M{"participants": userID},
		"$set":      bson.M{"updated_at": time.Now().UTC()},
	}
	return r.updateByID(ctx, chatID, update)
}

func (r *chatMongoRepo) RemoveParticipant(ctx context.Context, chatID, userID primitive.ObjectID) error {
	update := bson.M{
		"$pull": bson.M{"participants": userID},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	}
	return r.updateByID(ctx, chatID, update)
}

func (r *chatMongoRepo) SetGroupAdmin(ctx context.Context, chatID, userID primitive.ObjectID) error {
	return r.updateByID(ctx, chatID, bson.M{"$set": bson.M{"group_admin": userID}})
}

func (r *chatMongoRepo) UpdateGroupMeta(ctx context.Context, chatID primitive.ObjectID, name, image *string) error {
	set := bson.M{"updated_at": time.Now().UTC()}
	if name != nil {
		set["group_name"] = *name
	}
	if image != nil {
		set["group_image"] = *image
	}
	return r.updateByID(ctx, chatID, bson.M{"$set": set})
}

func (r *chatMongoRepo) SetLastMessage(ctx context.Context, chatID, messageID primitive.ObjectID, at time.Time) error {
	update := bson.M{"$set": bson.M{"last_message_id": messageID, "updated_at": at}}
	return r.updateByID(ctx, chatID, update)
}

func (r *chatMongoRepo) updateByID(ctx context.Context, chatID primitive.ObjectID, update bson.M) error {
	res, err := r.coll.UpdateByID(ctx, chatID, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
