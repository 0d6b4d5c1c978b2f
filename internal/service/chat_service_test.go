package service

import (
	"context"
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/Rachitt19/BlogApp/internal/apperror"
	"github.com/Rachitt19/BlogApp/internal/models"
)

func testUsers(names ...string) []models.User {
	out := make([]models.User, 0, len(names))
	for _, n := range names {
		out = append(out, models.User{ID: primitive.NewObjectID(), DisplayName: n})
	}
	return out
}

func newChatFixture(users ...models.User) (*ChatService, *memChatRepo, *memMessageRepo, *memUnreadCache) {
	chats := newMemChatRepo()
	msgs := newMemMessageRepo()
	cache := newMemUnreadCache()
	svc := NewChatService(chats, msgs, newMemUserRepo(users...), cache, zap.NewNop().Sugar())
	return svc, chats, msgs, cache
}

func TestFindOrCreateDirectIsStableAcrossOrderings(t *testing.T) {
	us := testUsers("alice", "bob")
	svc, _, _, _ := newChatFixture(us...)
	ctx := context.Background()

	first, err := svc.FindOrCreateDirect(ctx, us[0].ID.Hex(), us[1].ID.Hex())
	if err != nil {
		t.Fatalf("first create: %v", err)
	}
	second, err := svc.FindOrCreateDirect(ctx, us[1].ID.Hex(), us[0].ID.Hex())
	if err != nil {
		t.Fatalf("second create: %v", err)
	}
	if first.ID != second.ID {
		t.Errorf("same pair produced different chats: %s vs %s", first.ID, second.ID)
	}
	if first.IsGroup {
		t.Error("direct chat flagged as group")
	}
	if len(first.Participants) != 2 {
		t.Errorf("participants = %d, want 2", len(first.Participants))
	}
}

func TestFindOrCreateDirectRejectsSelf(t *testing.T) {
	us := testUsers("alice")
	svc, _, _, _ := newChatFixture(us...)

	_, err := svc.FindOrCreateDirect(context.Background(), us[0].ID.Hex(), us[0].ID.Hex())
	if !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("err = %v, want validation error", err)
	}
}

func TestFindOrCreateDirectUnknownUser(t *testing.T) {
	us := testUsers("alice")
	svc, _, _, _ := newChatFixture(us...)

	_, err := svc.FindOrCreateDirect(context.Background(), us[0].ID.Hex(), primitive.NewObjectID().Hex())
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("err = %v, want not found", err)
	}
}

func TestAppendKeepsConversationOrderAndLastMessage(t *testing.T) {
	us := testUsers("alice", "bob")
	svc, _, _, _ := newChatFixture(us...)
	ctx := context.Background()

	chat, err := svc.FindOrCreateDirect(ctx, us[0].ID.Hex(), us[1].ID.Hex())
	if err != nil {
		t.Fatalf("create chat: %v", err)
	}

	contents := []string{"one", "two", "three"}
	for i, c := range contents {
		sender := us[i%2]
		if _, _, err := svc.Append(ctx, chat.ID, sender.ID.Hex(), c); err != nil {
			t.Fatalf("append %q: %v", c, err)
		}
	}

	msgs, err := svc.Messages(ctx, chat.ID)
	if err != nil {
		t.Fatalf("messages: %v", err)
	}
	if len(msgs) != len(contents) {
		t.Fatalf("messages = %d, want %d", len(msgs), len(contents))
	}
	for i, m := range msgs {
		if m.Content != contents[i] {
			t.Errorf("msgs[%d].Content = %q, want %q", i, m.Content, contents[i])
		}
		if i > 0 && m.CreatedAt.Before(msgs[i-1].CreatedAt) {
			t.Errorf("msgs[%d] out of order", i)
		}
	}

	list, err := svc.ListForUser(ctx, us[0].ID.Hex())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("chats = %d, want 1", len(list))
	}
	if list[0].LastMessage == nil || list[0].LastMessage.Content != "three" {
		t.Errorf("lastMessage = %+v, want content three", list[0].LastMessage)
	}
}

func TestAppendByNonParticipantIsForbidden(t *testing.T) {
	us := testUsers("alice", "bob", "mallory")
	svc, _, _, _ := newChatFixture(us...)
	ctx := context.Background()

	chat, err := svc.FindOrCreateDirect(ctx, us[0].ID.Hex(), us[1].ID.Hex())
	if err != nil {
		t.Fatalf("create chat: %v", err)
	}

	_, _, err = svc.Append(ctx, chat.ID, us[2].ID.Hex(), "hi")
	if !errors.Is(err, apperror.ErrForbidden) {
		t.Errorf("err = %v, want forbidden", err)
	}
	msgs, _ := svc.Messages(ctx, chat.ID)
	if len(msgs) != 0 {
		t.Errorf("messages = %d, want 0 after forbidden send", len(msgs))
	}
}

func TestAppendRejectsEmptyContent(t *testing.T) {
	us := testUsers("alice", "bob")
	svc, _, _, _ := newChatFixture(us...)
	ctx := context.Background()

	chat, _ := svc.FindOrCreateDirect(ctx, us[0].ID.Hex(), us[1].ID.Hex())
	_, _, err := svc.Append(ctx, chat.ID, us[0].ID.Hex(), "   ")
	if !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("err = %v, want validation error", err)
	}
}

func TestAppendUnknownChat(t *testing.T) {
	us := testUsers("alice")
	svc, _, _, _ := newChatFixture(us...)

	_, _, err := svc.Append(context.Background(), primitive.NewObjectID().Hex(), us[0].ID.Hex(), "hi")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("err = %v, want not found", err)
	}
}

// First message into a fresh direct chat: both sides see the chat with
// that message as its last.
func TestDirectChatHelloScenario(t *testing.T) {
	us := testUsers("alice", "bob")
	svc, _, _, _ := newChatFixture(us...)
	ctx := context.Background()

	chat, err := svc.FindOrCreateDirect(ctx, us[0].ID.Hex(), us[1].ID.Hex())
	if err != nil {
		t.Fatalf("create chat: %v", err)
	}
	msg, participants, err := svc.Append(ctx, chat.ID, us[0].ID.Hex(), "hello")
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if msg.Sender.DisplayName != "alice" {
		t.Errorf("sender = %q, want alice", msg.Sender.DisplayName)
	}
	if len(participants) != 2 {
		t.Errorf("participants = %d, want 2", len(participants))
	}

	for _, u := range us {
		list, err := svc.ListForUser(ctx, u.ID.Hex())
		if err != nil {
			t.Fatalf("list for %s: %v", u.DisplayName, err)
		}
		if len(list) != 1 {
			t.Fatalf("%s sees %d chats, want 1", u.DisplayName, len(list))
		}
		if list[0].LastMessage == nil || list[0].LastMessage.Content != "hello" {
			t.Errorf("%s lastMessage = %+v, want hello", u.DisplayName, list[0].LastMessage)
		}
		if list[0].IsGroup {
			t.Errorf("%s sees a group chat", u.DisplayName)
		}
	}
}

func TestListForUserOrdersByActivity(t *testing.T) {
	us := testUsers("alice", "bob", "carol")
	svc, _, _, _ := newChatFixture(us...)
	ctx := context.Background()

	withBob, _ := svc.FindOrCreateDirect(ctx, us[0].ID.Hex(), us[1].ID.Hex())
	withCarol, _ := svc.FindOrCreateDirect(ctx, us[0].ID.Hex(), us[2].ID.Hex())

	if _, _, err := svc.Append(ctx, withBob.ID, us[1].ID.Hex(), "ping"); err != nil {
		t.Fatalf("append: %v", err)
	}

	list, err := svc.ListForUser(ctx, us[0].ID.Hex())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("chats = %d, want 2", len(list))
	}
	if list[0].ID != withBob.ID {
		t.Errorf("most recently active chat should sort first, got %s", list[0].ID)
	}
	if list[1].ID != withCarol.ID {
		t.Errorf("idle chat should sort last, got %s", list[1].ID)
	}
}

func TestMessagesUnknownChat(t *testing.T) {
	svc, _, _, _ := newChatFixture(testUsers("alice")...)
	_, err := svc.Messages(context.Background(), primitive.NewObjectID().Hex())
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("err = %v, want not found", err)
	}
}

func TestInvalidIDsAreValidationErrors(t *testing.T) {
	svc, _, _, _ := newChatFixture()
	ctx := context.Background()

	if _, err := svc.ListForUser(ctx, "nope"); !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("ListForUser err = %v, want validation", err)
	}
	if _, err := svc.FindOrCreateDirect(ctx, "nope", primitive.NewObjectID().Hex()); !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("FindOrCreateDirect err = %v, want validation", err)
	}
}
