package models

import (
	"strings"
	"time"
)

// chatIDSeparator splits a chat id into its property and participant parts.
// Property ids must not contain it.
const chatIDSeparator = "_"

// Message is a direct message exchanged about a property. Immutable once sent.
type Message struct {
	ID         string    `json:"id" yaml:"id"`
	Text       string    `json:"text" yaml:"text"`
	SenderID   string    `json:"senderId" yaml:"senderId"`
	SenderName string    `json:"senderName" yaml:"senderName"`
	ReceiverID string    `json:"receiverId" yaml:"receiverId"`
	Timestamp  time.Time `json:"timestamp" yaml:"timestamp"`
}

// Conversation is derived from the messages of one chat; it is never stored.
type Conversation struct {
	ID              string    `json:"id"`
	PropertyID      string    `json:"propertyId"`
	PropertyTitle   string    `json:"propertyTitle"`
	OtherUserID     string    `json:"otherUserId"`
	OtherUserName   string    `json:"otherUserName"`
	LastMessageText string    `json:"lastMessageText"`
	LastMessageAt   time.Time `json:"lastMessageAt"`
	UnreadCount     int       `json:"unreadCount"`
}

// ChatID builds the conversation identifier between an interested user and
// the owner of a property.
func ChatID(propertyID, userID string) string {
	return propertyID + chatIDSeparator + userID
}

// PropertyIDFromChatID recovers the property id embedded in a chat id.
// Returns false if the chat id has no property part.
func PropertyIDFromChatID(chatID string) (string, bool) {
	propertyID, _, _ := strings.Cut(chatID, chatIDSeparator)
	if propertyID == "" {
		return "", false
	}
	return propertyID, true
}

// CloneMessages copies a message slice. Messages hold no references, so a
// shallow copy of the slice is a deep copy.
func CloneMessages(msgs []Message) []Message {
	if msgs == nil {
		return nil
	}
	return append([]Message(nil), msgs...)
}
