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

// GroupService is the membership state machine for group chats. Every
// mutation fans a chat_updated event out to the resulting participants
// through the injected Notifier.
type GroupService struct {
	chats    repository.ChatRepository
	msgs     repository.MessageRepository
	users    repository.UserRepository
	notifier Notifier
	log      *zap.SugaredLogger
}

func NewGroupService(chats repository.ChatRepository, msgs repository.MessageRepository, users repository.UserRepository, notifier Notifier, log *zap.SugaredLogger) *GroupService {
	return &GroupService{chats: chats, msgs: msgs, users: users, notifier: notifier, log: log}
}

// Create makes a new group chat. The creator becomes admin and is
// always part of the group, whether or not they listed themselves.
func (s *GroupService) Create(ctx context.Context, creatorID string, memberIDs []string, name string) (*models.ChatInfo, error) {
	creator, err := parseID(creatorID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(name) == "" {
		return nil, apperror.Validation("group name is required")
	}
	if len(memberIDs) < 1 {
		return nil, apperror.Validation("at least 1 user is required to form a group chat")
	}

	participants := []primitive.ObjectID{creator}
	seen := map[primitive.ObjectID]struct{}{creator: {}}
	for _, hex := range memberIDs {
		id, err := parseID(hex)
		if err != nil {
			return nil, err
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		participants = append(participants, id)
	}
	// a list naming only the creator dedups down to a group of one
	if len(participants) < 2 {
		return nil, apperror.Validation("at least 1 user is required to form a group chat")
	}

	userMap, err := fetchUsers(ctx, s.users, participants)
	if err != nil {
		return nil, err
	}
	if len(userMap) < len(participants) {
		return nil, apperror.NotFound("user not found")
	}

	chat := &models.Chat{
		Participants: participants,
		IsGroup:      true,
		GroupName:    name,
		GroupAdmin:   creator,
	}
	if err := s.chats.Insert(ctx, chat); err != nil {
		return nil, err
	}

	info, err := chatInfo(ctx, s.users, s.msgs, chat, userMap)
	if err != nil {
		return nil, err
	}
	for _, pid := range participants {
		if pid != creator {
			s.notifier.NotifyUser(pid.Hex(), EventNewGroupChat, info)
		}
	}
	return info, nil
}

// AddMember lets any current participant bring a new user in.
func (s *GroupService) AddMember(ctx context.Context, chatID, actorID, userID string) (*models.ChatInfo, error) {
	chat, actor, target, err := s.loadGroup(ctx, chatID, actorID, userID)
	if err != nil {
		return nil, err
	}
	if !chat.HasParticipant(actor) {
		return nil, apperror.Forbidden("only participants can add members")
	}
	if chat.HasParticipant(target) {
		return nil, apperror.Conflict("user already in group")
	}
	if _, err := s.users.FindByID(ctx, target); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperror.NotFound("user not found")
		}
		return nil, err
	}

	if err := s.chats.AddParticipant(ctx, chat.ID, target); err != nil {
		return nil, err
	}
	chat.Participants = append(chat.Participants, target)

	info, err := resolveChat(ctx, s.users, s.msgs, chat)
	if err != nil {
		return nil, err
	}
	s.notifyParticipants(chat, info)
	// distinct event so the new member's client materializes a chat it
	// has never seen
	s.notifier.NotifyUser(userID, EventNewGroupChat, info)
	return info, nil
}

// RemoveMember is the one admin-gated operation.
func (s *GroupService) RemoveMember(ctx context.Context, chatID, actorID, userID string) (*models.ChatInfo, error) {
	chat, actor, target, err := s.loadGroup(ctx, chatID, actorID, userID)
	if err != nil {
		return nil, err
	}
	if chat.GroupAdmin != actor {
		return nil, apperror.Forbidden("only group admin can remove members")
	}

	if err := s.chats.RemoveParticipant(ctx, chat.ID, target); err != nil {
		return nil, err
	}
	chat.Participants = without(chat.Participants, target)

	info, err := resolveChat(ctx, s.users, s.msgs, chat)
	if err != nil {
		return nil, err
	}
	s.notifyParticipants(chat, info)
	// the removed user learns their membership changed too
	s.notifier.NotifyUser(userID, EventChatUpdated, info)
	return info, nil
}

// Leave removes the caller unconditionally. When the departing user is
// the admin and members remain, the role passes to the longest-standing
// remaining participant so the group never goes adminless.
func (s *GroupService) Leave(ctx context.Context, chatID, userID string) (*models.ChatInfo, error) {
	chat, uid, _, err := s.loadGroup(ctx, chatID, userID, userID)
	if err != nil {
		return nil, err
	}
	if !chat.HasParticipant(uid) {
		return nil, apperror.Forbidden("not a participant of this chat")
	}

	if err := s.chats.RemoveParticipant(ctx, chat.ID, uid); err != nil {
		return nil, err
	}
	chat.Participants = without(chat.Participants, uid)

	if chat.GroupAdmin == uid && len(chat.Participants) > 0 {
		next := chat.Participants[0]
		if err := s.chats.SetGroupAdmin(ctx, chat.ID, next); err != nil {
			return nil, err
		}
		chat.GroupAdmin = next
		s.log.Infow("group admin handed over", "chat", chatID, "admin", next.Hex())
	}

	info, err := resolveChat(ctx, s.users, s.msgs, chat)
	if err != nil {
		return nil, err
	}
	s.notifyParticipants(chat, info)
	return info, nil
}

// UpdateMetadata renames or re-images a group. Restricted to
// participants; the wide-open variant invited drive-by renames.
func (s *GroupService) UpdateMetadata(ctx context.Context, chatID, actorID string, name, image *string) (*models.ChatInfo, error) {
	chat, actor, _, err := s.loadGroup(ctx, chatID, actorID, actorID)
	if err != nil {
		return nil, err
	}
	if !chat.HasParticipant(actor) {
		return nil, apperror.Forbidden("only participants can update the group")
	}
	if name != nil && strings.TrimSpace(*name) == "" {
		return nil, apperror.Validation("group name cannot be empty")
	}

	if err := s.chats.UpdateGroupMeta(ctx, chat.ID, name, image); err != nil {
		return nil, err
	}
	if name != nil {
		chat.GroupName = *name
	}
	if image != nil {
		chat.GroupImage = *image
	}

	info, err := resolveChat(ctx, s.users, s.msgs, chat)
	if err != nil {
		return nil, err
	}
	s.notifyParticipants(chat, info)
	return info, nil
}

func (s *GroupService) loadGroup(ctx context.Context, chatID, actorID, targetID string) (*models.Chat, primitive.ObjectID, primitive.ObjectID, error) {
	cid, err := parseID(chatID)
	if err != nil {
		return nil, primitive.NilObjectID, primitive.NilObjectID, err
	}
	actor, err := parseID(actorID)
	if err != nil {
		return nil, primitive.NilObjectID, primitive.NilObjectID, err
	}
	target, err := parseID(targetID)
	if err != nil {
		return nil, primitive.NilObjectID, primitive.NilObjectID, err
	}
	chat, err := s.chats.FindByID(ctx, cid)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, primitive.NilObjectID, primitive.NilObjectID, apperror.NotFound("chat not found")
		}
		return nil, primitive.NilObjectID, primitive.NilObjectID, err
	}
	if !chat.IsGroup {
		return nil, primitive.NilObjectID, primitive.NilObjectID, apperror.Validation("not a group chat")
	}
	return chat, actor, target, nil
}

func (s *GroupService) notifyParticipants(chat *models.Chat, info *models.ChatInfo) {
	for _, pid := range chat.Participants {
		s.notifier.NotifyUser(pid.Hex(), EventChatUpdated, info)
	}
}

func without(ids []primitive.ObjectID, drop primitive.ObjectID) []primitive.ObjectID {
	out := ids[:0]
	for _, id := range ids {
		if id != drop {
			out = append(out, id)
		}
	}
	return out
}
