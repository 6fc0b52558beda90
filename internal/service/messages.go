package service

import (
	"cmp"
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/raphaelgruber/estatehub/internal/db"
	"github.com/raphaelgruber/estatehub/internal/metrics"
	"github.com/raphaelgruber/estatehub/internal/models"
)

// readMarks maps user id to chat id to the id of the last message the user
// has read.
type readMarks map[string]map[string]string

// ListMessages returns the messages of chatID in arrival order. An unknown
// chat yields an empty slice.
func (s *Service) ListMessages(ctx context.Context, chatID string) (_ []models.Message, err error) {
	defer s.observe(metrics.OpListMessages, time.Now(), &err)

	if err := s.simulate(ctx, metrics.OpListMessages); err != nil {
		return nil, err
	}

	sent, err := s.sentMessages(ctx)
	if err != nil {
		return nil, err
	}

	out := []models.Message{}
	out = append(out, s.seed.ChatMessages(chatID)...)
	out = append(out, sent[chatID]...)
	return out, nil
}

// SendMessage appends a new message to chatID, creating the chat if needed.
func (s *Service) SendMessage(
	ctx context.Context,
	chatID string,
	text string,
	senderID string,
	senderName string,
	receiverID string,
) (_ *models.Message, err error) {
	defer s.observe(metrics.OpSendMessage, time.Now(), &err)

	switch {
	case chatID == "":
		return nil, &ValidationError{Field: "chat", Reason: "is required"}
	case strings.TrimSpace(text) == "":
		return nil, &ValidationError{Field: "text", Reason: "must not be blank"}
	case senderID == "" || receiverID == "":
		return nil, &ValidationError{Field: "participants", Reason: "sender and receiver are required"}
	}

	if err := s.simulate(ctx, metrics.OpSendMessage); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sent, err := s.sentMessages(ctx)
	if err != nil {
		return nil, err
	}

	msg := models.Message{
		ID:         newID("msg"),
		Text:       text,
		SenderID:   senderID,
		SenderName: senderName,
		ReceiverID: receiverID,
		Timestamp:  s.now(),
	}

	updated := maps.Clone(sent)
	if updated == nil {
		updated = make(map[string][]models.Message)
	}
	updated[chatID] = append(slices.Clone(sent[chatID]), msg)
	if err := s.store.Put(ctx, db.KeyMessages, updated); err != nil {
		return nil, fmt.Errorf("persist message: %w", err)
	}

	s.logger.Debug("message sent", "chat_id", chatID, "message_id", msg.ID)
	return &msg, nil
}

// ListConversations derives one conversation per chat whose latest message
// was sent or received by userID, newest activity first. Chats whose
// property or other participant cannot be resolved are skipped.
func (s *Service) ListConversations(ctx context.Context, userID string) (_ []models.Conversation, err error) {
	defer s.observe(metrics.OpListConversations, time.Now(), &err)

	if err := s.simulate(ctx, metrics.OpListConversations); err != nil {
		return nil, err
	}

	chats, err := s.allChats(ctx)
	if err != nil {
		return nil, err
	}
	published, err := s.publishedProperties(ctx)
	if err != nil {
		return nil, err
	}
	registered, err := s.registeredUsers(ctx)
	if err != nil {
		return nil, err
	}
	marks, err := s.readMarks(ctx)
	if err != nil {
		return nil, err
	}

	conversations := []models.Conversation{}
	for _, chatID := range slices.Sorted(maps.Keys(chats)) {
		msgs := chats[chatID]
		if len(msgs) == 0 {
			continue
		}
		last := msgs[len(msgs)-1]

		var otherID string
		switch userID {
		case last.SenderID:
			otherID = last.ReceiverID
		case last.ReceiverID:
			otherID = last.SenderID
		default:
			continue
		}

		propertyID, ok := models.PropertyIDFromChatID(chatID)
		if !ok {
			continue
		}
		property, ok := propertyByID(published, propertyID)
		if !ok {
			if property, ok = s.seed.PropertyByID(propertyID); !ok {
				s.logger.Debug("skipping conversation with unknown property", "chat_id", chatID, "property_id", propertyID)
				continue
			}
		}
		other, ok := s.findUserByID(registered, otherID)
		if !ok {
			s.logger.Debug("skipping conversation with unknown participant", "chat_id", chatID, "user_id", otherID)
			continue
		}

		conversations = append(conversations, models.Conversation{
			ID:              chatID,
			PropertyID:      property.ID,
			PropertyTitle:   property.Title,
			OtherUserID:     other.ID,
			OtherUserName:   other.Name,
			LastMessageText: last.Text,
			LastMessageAt:   last.Timestamp,
			UnreadCount:     unreadCount(msgs, userID, marks[userID][chatID]),
		})
	}

	slices.SortStableFunc(conversations, func(a, b models.Conversation) int {
		return cmp.Or(b.LastMessageAt.Compare(a.LastMessageAt), strings.Compare(a.ID, b.ID))
	})
	return conversations, nil
}

// MarkConversationRead records that userID has read chatID up to and
// including the message lastReadID. An empty lastReadID marks the newest
// message at the time of the call. A mark never moves backwards.
func (s *Service) MarkConversationRead(ctx context.Context, userID, chatID, lastReadID string) (err error) {
	defer s.observe(metrics.OpMarkRead, time.Now(), &err)

	if userID == "" || chatID == "" {
		return &ValidationError{Field: "conversation", Reason: "user and chat are required"}
	}

	if err := s.simulate(ctx, metrics.OpMarkRead); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sent, err := s.sentMessages(ctx)
	if err != nil {
		return err
	}
	msgs := append(s.seed.ChatMessages(chatID), sent[chatID]...)
	if len(msgs) == 0 {
		return nil
	}

	idx := len(msgs) - 1
	if lastReadID != "" {
		if idx = messageIndex(msgs, lastReadID); idx < 0 {
			return &ValidationError{Field: "message", Reason: fmt.Sprintf("%q is not part of chat %s", lastReadID, chatID)}
		}
	}

	marks, err := s.readMarks(ctx)
	if err != nil {
		return err
	}
	if messageIndex(msgs, marks[userID][chatID]) >= idx {
		return nil
	}
	if marks == nil {
		marks = make(readMarks)
	}
	if marks[userID] == nil {
		marks[userID] = make(map[string]string)
	}
	marks[userID][chatID] = msgs[idx].ID

	if err := s.store.Put(ctx, db.KeyReadMarks, marks); err != nil {
		return fmt.Errorf("persist read mark: %w", err)
	}
	return nil
}

// unreadCount counts messages addressed to userID that come after the
// message lastReadID. With no usable mark every such message is unread.
func unreadCount(msgs []models.Message, userID, lastReadID string) int {
	n := 0
	for _, m := range msgs[messageIndex(msgs, lastReadID)+1:] {
		if m.ReceiverID == userID {
			n++
		}
	}
	return n
}

// messageIndex returns the position of id in msgs, or -1.
func messageIndex(msgs []models.Message, id string) int {
	if id == "" {
		return -1
	}
	return slices.IndexFunc(msgs, func(m models.Message) bool { return m.ID == id })
}

// sentMessages loads messages sent through SendMessage, keyed by chat id.
func (s *Service) sentMessages(ctx context.Context) (map[string][]models.Message, error) {
	var sent map[string][]models.Message
	if _, err := s.store.Get(ctx, db.KeyMessages, &sent); err != nil {
		return nil, fmt.Errorf("read messages: %w", err)
	}
	return sent, nil
}

// allChats merges seeded chats with sent messages.
func (s *Service) allChats(ctx context.Context) (map[string][]models.Message, error) {
	sent, err := s.sentMessages(ctx)
	if err != nil {
		return nil, err
	}
	chats := s.seed.Messages()
	for chatID, msgs := range sent {
		chats[chatID] = append(chats[chatID], msgs...)
	}
	return chats, nil
}

func (s *Service) readMarks(ctx context.Context) (readMarks, error) {
	var marks readMarks
	if _, err := s.store.Get(ctx, db.KeyReadMarks, &marks); err != nil {
		return nil, fmt.Errorf("read marks: %w", err)
	}
	return marks, nil
}
