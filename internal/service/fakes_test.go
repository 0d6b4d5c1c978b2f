package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Rachitt19/BlogApp/internal/models"
	"github.com/Rachitt19/BlogApp/internal/repository"
)

// memChatRepo mimics the chats collection, including the unique
// direct_key index.
type memChatRepo struct {
	mu    sync.Mutex
	chats map[primitive.ObjectID]*models.Chat
}

func newMemChatRepo() *memChatRepo {
	return &memChatRepo{chats: make(map[primitive.ObjectID]*models.Chat)}
}

func (r *memChatRepo) Insert(_ context.Context, chat *models.Chat) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !chat.IsGroup && chat.DirectKey != "" {
		for _, c := range r.chats {
			if !c.IsGroup && c.DirectKey == chat.DirectKey {
				return repository.ErrDuplicate
			}
		}
	}
	if chat.ID.IsZero() {
		chat.ID = primitive.NewObjectID()
	}
	now := time.Now().UTC()
	chat.CreatedAt = now
	chat.UpdatedAt = now
	cp := *chat
	cp.Participants = append([]primitive.ObjectID(nil), chat.Participants...)
	r.chats[chat.ID] = &cp
	return nil
}

func (r *memChatRepo) FindByID(_ context.Context, id primitive.ObjectID) (*models.Chat, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.chats[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *c
	cp.Participants = append([]primitive.ObjectID(nil), c.Participants...)
	return &cp, nil
}

func (r *memChatRepo) FindDirectByKey(_ context.Context, key string) (*models.Chat, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.chats {
		if !c.IsGroup && c.DirectKey == key {
			cp := *c
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memChatRepo) ListForUser(_ context.Context, userID primitive.ObjectID) ([]*models.Chat, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Chat
	for _, c := range r.chats {
		if c.HasParticipant(userID) {
			cp := *c
			cp.Participants = append([]primitive.ObjectID(nil), c.Participants...)
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (r *memChatRepo) AddParticipant(_ context.Context, chatID, userID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.chats[chatID]
	if !ok {
		return repository.ErrNotFound
	}
	if !c.HasParticipant(userID) {
		c.Participants = append(c.Participants, userID)
	}
	c.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *memChatRepo) RemoveParticipant(_ context.Context, chatID, userID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.chats[chatID]
	if !ok {
		return repository.ErrNotFound
	}
	kept := c.Participants[:0]
	for _, p := range c.Participants {
		if p != userID {
			kept = append(kept, p)
		}
	}
	c.Participants = kept
	c.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *memChatRepo) SetGroupAdmin(_ context.Context, chatID, userID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.chats[chatID]
	if !ok {
		return repository.ErrNotFound
	}
	c.GroupAdmin = userID
	return nil
}

func (r *memChatRepo) UpdateGroupMeta(_ context.Context, chatID primitive.ObjectID, name, image *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.chats[chatID]
	if !ok {
		return repository.ErrNotFound
	}
	if name != nil {
		c.GroupName = *name
	}
	if image != nil {
		c.GroupImage = *image
	}
	c.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *memChatRepo) SetLastMessage(_ context.Context, chatID, messageID primitive.ObjectID, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.chats[chatID]
	if !ok {
		return repository.ErrNotFound
	}
	c.LastMessageID = messageID
	c.UpdatedAt = at
	return nil
}

// memMessageRepo mimics the messages collection. Timestamps are
// strictly increasing so ordering assertions are deterministic.
type memMessageRepo struct {
	mu   sync.Mutex
	msgs []*models.Message
	seq  int64
}

func newMemMessageRepo() *memMessageRepo { return &memMessageRepo{} }

func (r *memMessageRepo) Insert(_ context.Context, m *models.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m.ID.IsZero() {
		m.ID = primitive.NewObjectID()
	}
	// strictly increasing timestamps keep ordering deterministic
	r.seq++
	m.CreatedAt = time.Now().Add(time.Duration(r.seq) * time.Millisecond).UTC()
	cp := *m
	r.msgs = append(r.msgs, &cp)
	return nil
}

func (r *memMessageRepo) ListByChat(_ context.Context, chatID primitive.ObjectID) ([]*models.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Message
	for _, m := range r.msgs {
		if m.ChatID == chatID {
			cp := *m
			out = append(out, &cp)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *memMessageRepo) LastInChat(_ context.Context, chatID primitive.ObjectID) (*models.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var last *models.Message
	for _, m := range r.msgs {
		if m.ChatID == chatID && (last == nil || m.CreatedAt.After(last.CreatedAt)) {
			last = m
		}
	}
	if last == nil {
		return nil, repository.ErrNotFound
	}
	cp := *last
	return &cp, nil
}

func (r *memMessageRepo) CountUnread(_ context.Context, chatIDs []primitive.ObjectID, userID primitive.ObjectID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	in := make(map[primitive.ObjectID]struct{}, len(chatIDs))
	for _, id := range chatIDs {
		in[id] = struct{}{}
	}
	var n int64
	for _, m := range r.msgs {
		if _, ok := in[m.ChatID]; !ok {
			continue
		}
		if m.SenderID == userID || contains(m.ReadBy, userID) {
			continue
		}
		n++
	}
	return n, nil
}

func (r *memMessageRepo) MarkRead(_ context.Context, chatID, userID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.msgs {
		if m.ChatID == chatID && m.SenderID != userID && !contains(m.ReadBy, userID) {
			m.ReadBy = append(m.ReadBy, userID)
		}
	}
	return nil
}

func contains(ids []primitive.ObjectID, id primitive.ObjectID) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}

type memUserRepo struct {
	users map[primitive.ObjectID]models.User
}

func newMemUserRepo(users ...models.User) *memUserRepo {
	r := &memUserRepo{users: make(map[primitive.ObjectID]models.User)}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *memUserRepo) FindByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (r *memUserRepo) FindByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	var out []models.User
	seen := map[primitive.ObjectID]struct{}{}
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		if u, ok := r.users[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

type memUnreadCache struct {
	mu     sync.Mutex
	counts map[string]int64
}

func newMemUnreadCache() *memUnreadCache {
	return &memUnreadCache{counts: make(map[string]int64)}
}

func (c *memUnreadCache) Get(_ context.Context, userID string) (int64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	n, ok := c.counts[userID]
	return n, ok
}

func (c *memUnreadCache) Set(_ context.Context, userID string, count int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counts[userID] = count
}

func (c *memUnreadCache) Invalidate(_ context.Context, userIDs ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, id := range userIDs {
		delete(c.counts, id)
	}
}

// recordedEvent captures a Notifier emission for assertions.
type recordedEvent struct {
	UserID  string
	Event   string
	Payload any
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (n *recordingNotifier) NotifyUser(userID, event string, payload any) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, recordedEvent{UserID: userID, Event: event, Payload: payload})
}

func (n *recordingNotifier) byEvent(event string) []recordedEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []recordedEvent
	for _, e := range n.events {
		if e.Event == event {
			out = append(out, e)
		}
	}
	return out
}
