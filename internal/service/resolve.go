package service

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Rachitt19/BlogApp/internal/apperror"
	"github.com/Rachitt19/BlogApp/internal/models"
	"github.com/Rachitt19/BlogApp/internal/repository"
)

func parseID(hex string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return primitive.NilObjectID, apperror.Validation("invalid id %q", hex)
	}
	return id, nil
}

func fetchUsers(ctx context.Context, users repository.UserRepository, ids []primitive.ObjectID) (map[primitive.ObjectID]models.User, error) {
	found, err := users.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	m := make(map[primitive.ObjectID]models.User, len(found))
	for _, u := range found {
		m[u.ID] = u
	}
	return m, nil
}

func messageInfo(m *models.Message, sender models.User) *models.MessageInfo {
	readBy := make([]string, 0, len(m.ReadBy))
	for _, id := range m.ReadBy {
		readBy = append(readBy, id.Hex())
	}
	return &models.MessageInfo{
		ID:        m.ID.Hex(),
		ChatID:    m.ChatID.Hex(),
		Sender:    sender,
		Content:   m.Content,
		ReadBy:    readBy,
		CreatedAt: m.CreatedAt,
	}
}

// chatInfo builds the resolved API view of a chat from a prefetched
// user map. The last message is looked up by query rather than through
// the cached pointer, so a failed pointer update heals on the next
// read.
func chatInfo(ctx context.Context, users repository.UserRepository, msgs repository.MessageRepository, chat *models.Chat, userMap map[primitive.ObjectID]models.User) (*models.ChatInfo, error) {
	info := &models.ChatInfo{
		ID:         chat.ID.Hex(),
		IsGroup:    chat.IsGroup,
		GroupName:  chat.GroupName,
		GroupImage: chat.GroupImage,
		CreatedAt:  chat.CreatedAt,
		UpdatedAt:  chat.UpdatedAt,
	}

	info.Participants = make([]models.User, 0, len(chat.Participants))
	for _, pid := range chat.Participants {
		if u, ok := userMap[pid]; ok {
			info.Participants = append(info.Participants, u)
		}
	}

	if chat.IsGroup && !chat.GroupAdmin.IsZero() {
		if u, ok := userMap[chat.GroupAdmin]; ok {
			admin := u
			info.GroupAdmin = &admin
		}
	}

	last, err := msgs.LastInChat(ctx, chat.ID)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		// no messages yet
	case err != nil:
		return nil, err
	default:
		sender, ok := userMap[last.SenderID]
		if !ok {
			// sender may have left the chat; resolve separately
			if u, uerr := users.FindByID(ctx, last.SenderID); uerr == nil {
				sender = *u
			}
		}
		info.LastMessage = messageInfo(last, sender)
	}
	return info, nil
}

// resolveChat is the single-chat variant: fetches participants and the
// admin, then delegates to chatInfo.
func resolveChat(ctx context.Context, users repository.UserRepository, msgs repository.MessageRepository, chat *models.Chat) (*models.ChatInfo, error) {
	ids := append([]primitive.ObjectID(nil), chat.Participants...)
	if chat.IsGroup && !chat.GroupAdmin.IsZero() {
		ids = append(ids, chat.GroupAdmin)
	}
	userMap, err := fetchUsers(ctx, users, ids)
	if err != nil {
		return nil, err
	}
	return chatInfo(ctx, users, msgs, chat, userMap)
}
