package service

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/Rachitt19/BlogApp/internal/apperror"
	"github.com/Rachitt19/BlogApp/internal/models"
	"github.com/Rachitt19/BlogApp/internal/repository"
)

// ChatService owns direct-chat creation, chat listing and message
// persistence.
type ChatService struct {
	chats  repository.ChatRepository
	msgs   repository.MessageRepository
	users  repository.UserRepository
	unread repository.UnreadCache
	log    *zap.SugaredLogger
}

func NewChatService(chats repository.ChatRepository, msgs repository.MessageRepository, users repository.UserRepository, unread repository.UnreadCache, log *zap.SugaredLogger) *ChatService {
	return &ChatService{chats: chats, msgs: msgs, users: users, unread: unread, log: log}
}

// FindOrCreateDirect returns the unique 1:1 chat between two users,
// creating it if absent. The unordered participant pair is unique in
// storage, so a concurrent create from the other side loses the insert
// and we pick up the winner's chat.
func (s *ChatService) FindOrCreateDirect(ctx context.Context, userA, userB string) (*models.ChatInfo, error) {
	a, err := parseID(userA)
	if err != nil {
		return nil, err
	}
	b, err := parseID(userB)
	if err != nil {
		return nil, err
	}
	if a == b {
		return nil, apperror.Validation("cannot start a chat with yourself")
	}

	userMap, err := fetchUsers(ctx, s.users, []primitive.ObjectID{a, b})
	if err != nil {
		return nil, err
	}
	if len(userMap) < 2 {
		return nil, apperror.NotFound("user not found")
	}

	key := models.DirectKey(a, b)
	chat, err := s.chats.FindDirectByKey(ctx, key)
	if errors.Is(err, repository.ErrNotFound) {
		chat = &models.Chat{
			Participants: []primitive.ObjectID{a, b},
			IsGroup:      false,
			DirectKey:    key,
		}
		err = s.chats.Insert(ctx, chat)
		if errors.Is(err, repository.ErrDuplicate) {
			chat, err = s.chats.FindDirectByKey(ctx, key)
		}
	}
	if err != nil {
		return nil, err
	}
	return chatInfo(ctx, s.users, s.msgs, chat, userMap)
}

// ListForUser returns the caller's chats, most recently active first,
// with participants and last messages resolved.
func (s *ChatService) ListForUser(ctx context.Context, userID string) ([]*models.ChatInfo, error) {
	uid, err := parseID(userID)
	if err != nil {
		return nil, err
	}
	chats, err := s.chats.ListForUser(ctx, uid)
	if err != nil {
		return nil, err
	}

	// one profile fetch across all chats
	seen := map[primitive.ObjectID]struct{}{}
	var ids []primitive.ObjectID
	for _, c := range chats {
		for _, pid := range c.Participants {
			if _, ok := seen[pid]; !ok {
				seen[pid] = struct{}{}
				ids = append(ids, pid)
			}
		}
		if c.IsGroup && !c.GroupAdmin.IsZero() {
			if _, ok := seen[c.GroupAdmin]; !ok {
				seen[c.GroupAdmin] = struct{}{}
				ids = append(ids, c.GroupAdmin)
			}
		}
	}
	userMap, err := fetchUsers(ctx, s.users, ids)
	if err != nil {
		return nil, err
	}

	out := make([]*models.ChatInfo, 0, len(chats))
	for _, c := range chats {
		info, err := chatInfo(ctx, s.users, s.msgs, c, userMap)
		if err != nil {
			return nil, err
		}
		out = append(out, info)
	}
	return out, nil
}

// Messages returns the full history of a chat in conversation order.
func (s *ChatService) Messages(ctx context.Context, chatID string) ([]*models.MessageInfo, error) {
	cid, err := parseID(chatID)
	if err != nil {
		return nil, err
	}
	if _, err := s.chats.FindByID(ctx, cid); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperror.NotFound("chat not found")
		}
		return nil, err
	}
	msgs, err := s.msgs.ListByChat(ctx, cid)
	if err != nil {
		return nil, err
	}

	var senderIDs []primitive.ObjectID
	seen := map[primitive.ObjectID]struct{}{}
	for _, m := range msgs {
		if _, ok := seen[m.SenderID]; !ok {
			seen[m.SenderID] = struct{}{}
			senderIDs = append(senderIDs, m.SenderID)
		}
	}
	userMap, err := fetchUsers(ctx, s.users, senderIDs)
	if err != nil {
		return nil, err
	}

	out := make([]*models.MessageInfo, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, messageInfo(m, userMap[m.SenderID]))
	}
	return out, nil
}

// Append validates the sender's membership, persists the message and
// bumps the chat's last-message pointer. The two writes are separate;
// a failed pointer update is tolerated because reads resolve the last
// message by query.
func (s *ChatService) Append(ctx context.Context, chatID, senderID, content string) (*models.MessageInfo, []string, error) {
	cid, err := parseID(chatID)
	if err != nil {
		return nil, nil, err
	}
	sid, err := parseID(senderID)
	if err != nil {
		return nil, nil, err
	}
	if strings.TrimSpace(content) == "" {
		return nil, nil, apperror.Validation("message content is required")
	}

	chat, err := s.chats.FindByID(ctx, cid)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, apperror.NotFound("chat not found")
		}
		return nil, nil, err
	}
	if !chat.HasParticipant(sid) {
		return nil, nil, apperror.Forbidden("sender is not a participant of this chat")
	}

	msg := &models.Message{ChatID: cid, SenderID: sid, Content: content}
	if err := s.msgs.Insert(ctx, msg); err != nil {
		return nil, nil, err
	}
	if err := s.chats.SetLastMessage(ctx, cid, msg.ID, msg.CreatedAt); err != nil {
		s.log.Warnw("last-message pointer update failed", "chat", chatID, "err", err)
	}

	sender, err := s.users.FindByID(ctx, sid)
	if err != nil {
		return nil, nil, err
	}

	participants := make([]string, 0, len(chat.Participants))
	var stale []string
	for _, pid := range chat.Participants {
		participants = append(participants, pid.Hex())
		if pid != sid {
			stale = append(stale, pid.Hex())
		}
	}
	s.unread.Invalidate(ctx, stale...)

	return messageInfo(msg, *sender), participants, nil
}
