package ws

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/Rachitt19/BlogApp/internal/models"
	"github.com/Rachitt19/BlogApp/internal/service"
)

// Client-to-server events.
const (
	EventJoin        = "join"
	EventJoinChat    = "join_chat"
	EventSendMessage = "send_message"
)

// Server-to-client events owned by the relay. chat_updated and
// new_group_chat live in the service package since membership changes
// emit them too.
const (
	EventReceiveMessage = "receive_message"
	EventSendError      = "send_error"
)

const eventTimeout = 5 * time.Second

type inboundEvent struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type sendMessageData struct {
	ChatID   string `json:"chatId"`
	SenderID string `json:"senderId"`
	Content  string `json:"content"`
}

type chatUpdatedData struct {
	ChatID      string              `json:"chatId"`
	LastMessage *models.MessageInfo `json:"lastMessage"`
}

type sendErrorData struct {
	ChatID  string `json:"chatId"`
	Message string `json:"message"`
}

// Relay dispatches socket events: it persists sends through the chat
// service, streams messages to chat rooms and pushes list-level
// updates to personal rooms.
type Relay struct {
	hub   *Hub
	chats service.Chats
	log   *zap.SugaredLogger

	pingInterval  time.Duration
	writeDeadline time.Duration
	maxMsgSize    int64
}

func NewRelay(hub *Hub, chats service.Chats, log *zap.SugaredLogger, pingInterval, writeDeadline time.Duration, maxMsgSize int64) *Relay {
	return &Relay{
		hub:           hub,
		chats:         chats,
		log:           log,
		pingInterval:  pingInterval,
		writeDeadline: writeDeadline,
		maxMsgSize:    maxMsgSize,
	}
}

func (r *Relay) Hub() *Hub { return r.hub }

// HandleConn runs the connection until the client goes away. The
// caller has already authenticated the user.
func (r *Relay) HandleConn(conn *websocket.Conn, userID string) {
	client := NewClient(conn, userID)
	go client.writePump(r.pingInterval, r.writeDeadline)

	defer func() {
		r.hub.Remove(client)
		client.close()
	}()

	conn.SetReadLimit(r.maxMsgSize)
	_ = conn.SetReadDeadline(time.Now().Add(r.pingInterval * 2))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(r.pingInterval * 2))
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var ev inboundEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			continue
		}
		r.dispatch(client, ev)
	}
}

func (r *Relay) dispatch(client *Client, ev inboundEvent) {
	switch ev.Event {
	case EventJoin:
		var userID string
		if err := json.Unmarshal(ev.Data, &userID); err != nil {
			return
		}
		if userID != client.UserID {
			r.log.Warnw("join for foreign personal room ignored", "claimed", userID, "authenticated", client.UserID)
			return
		}
		r.hub.Join(client.UserID, client)

	case EventJoinChat:
		var chatID string
		if err := json.Unmarshal(ev.Data, &chatID); err != nil || chatID == "" {
			return
		}
		r.hub.Join(chatID, client)

	case EventSendMessage:
		var d sendMessageData
		if err := json.Unmarshal(ev.Data, &d); err != nil {
			return
		}
		r.handleSend(client, d)
	}
}

func (r *Relay) handleSend(client *Client, d sendMessageData) {
	if d.SenderID != "" && d.SenderID != client.UserID {
		r.log.Warnw("sender id mismatch, using authenticated user", "claimed", d.SenderID, "authenticated", client.UserID)
	}

	ctx, cancel := context.WithTimeout(context.Background(), eventTimeout)
	defer cancel()

	msg, participants, err := r.chats.Append(ctx, d.ChatID, client.UserID, d.Content)
	if err != nil {
		r.log.Errorw("message persist failed", "chat", d.ChatID, "sender", client.UserID, "err", err)
		b, merr := json.Marshal(envelope{Event: EventSendError, Data: sendErrorData{ChatID: d.ChatID, Message: "message could not be delivered"}})
		if merr == nil {
			client.trySend(b)
		}
		return
	}

	// full message to everyone viewing the chat
	r.hub.Broadcast(d.ChatID, EventReceiveMessage, msg)

	// lightweight update to every other participant's personal room so
	// chat lists refresh without the full stream
	for _, pid := range participants {
		if pid == client.UserID {
			continue
		}
		r.hub.NotifyUser(pid, service.EventChatUpdated, chatUpdatedData{ChatID: d.ChatID, LastMessage: msg})
	}
}
