package service

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Rachitt19/BlogApp/internal/apperror"
	"github.com/Rachitt19/BlogApp/internal/repository"
)

// UnreadTracker computes per-user unread counts and records read
// acknowledgments.
type UnreadTracker struct {
	chats  repository.ChatRepository
	msgs   repository.MessageRepository
	unread repository.UnreadCache
}

func NewUnreadTracker(chats repository.ChatRepository, msgs repository.MessageRepository, unread repository.UnreadCache) *UnreadTracker {
	return &UnreadTracker{chats: chats, msgs: msgs, unread: unread}
}

// Count sums unread messages across every chat the user belongs to.
// The count is served from cache when fresh; storage only does a
// count query, never loads message bodies.
func (t *UnreadTracker) Count(ctx context.Context, userID string) (int64, error) {
	uid, err := parseID(userID)
	if err != nil {
		return 0, err
	}
	if n, ok := t.unread.Get(ctx, userID); ok {
		return n, nil
	}

	chats, err := t.chats.ListForUser(ctx, uid)
	if err != nil {
		return 0, err
	}
	ids := make([]primitive.ObjectID, 0, len(chats))
	for _, c := range chats {
		ids = append(ids, c.ID)
	}
	n, err := t.msgs.CountUnread(ctx, ids, uid)
	if err != nil {
		return 0, err
	}
	t.unread.Set(ctx, userID, n)
	return n, nil
}

// MarkRead acknowledges every unread message in the chat for the user.
// Re-running it is a no-op.
func (t *UnreadTracker) MarkRead(ctx context.Context, chatID, userID string) error {
	cid, err := parseID(chatID)
	if err != nil {
		return err
	}
	uid, err := parseID(userID)
	if err != nil {
		return err
	}
	if _, err := t.chats.FindByID(ctx, cid); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperror.NotFound("chat not found")
		}
		return err
	}
	if err := t.msgs.MarkRead(ctx, cid, uid); err != nil {
		return err
	}
	t.unread.Invalidate(ctx, userID)
	return nil
}
