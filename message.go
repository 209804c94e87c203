package chatconnect

import (
	"strings"
	"time"
)

// MessageRole identifies the sender of a conversation turn.
// Using a typed constant prevents typos and provides compile-time safety.
type MessageRole string

// Known message roles
const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
	RoleSystem    MessageRole = "system"
)

// String returns the string representation of the role
func (r MessageRole) String() string {
	return string(r)
}

// IsValid returns true if the role is a known role
func (r MessageRole) IsValid() bool {
	switch r {
	case RoleUser, RoleAssistant, RoleSystem:
		return true
	default:
		return false
	}
}

// MessageType indicates how a message should be rendered by a UI collaborator.
// The type never crosses the wire to the inference endpoint; it exists purely
// for display dispatch on the consumer side.
type MessageType string

// Known message types
const (
	TypeText     MessageType = "text"
	TypeCode     MessageType = "code"
	TypeMarkdown MessageType = "markdown"
	TypeChart    MessageType = "chart"
	TypeForm     MessageType = "form"
	TypeTable    MessageType = "table"
)

// String returns the string representation of the message type
func (t MessageType) String() string {
	return string(t)
}

// IsValid returns true if the type is a known message type
func (t MessageType) IsValid() bool {
	switch t {
	case TypeText, TypeCode, TypeMarkdown, TypeChart, TypeForm, TypeTable:
		return true
	default:
		return false
	}
}

// Message represents a single conversation turn.
// Messages are immutable once created: they are appended to a conversation
// log in chronological order and never mutated or individually removed.
type Message struct {
	// Content is the message text
	Content string `json:"content"`

	// Role is the sender: user, assistant, or system
	Role MessageRole `json:"role"`

	// Type drives rendering on the consumer side (text, code, markdown, ...)
	Type MessageType `json:"type"`

	// Metadata carries optional type-specific data (e.g. {"language": "go"}
	// for code messages)
	Metadata map[string]interface{} `json:"metadata,omitempty"`

	// Timestamp records when the message was created
	Timestamp time.Time `json:"timestamp"`
}

// NewMessage creates a message with the standard structure. Metadata may be
// nil; the timestamp is assigned at creation time.
func NewMessage(content string, role MessageRole, msgType MessageType) Message {
	return Message{
		Content:   content,
		Role:      role,
		Type:      msgType,
		Metadata:  map[string]interface{}{},
		Timestamp: time.Now(),
	}
}

// IsUser returns true if the message was sent by the user
func (m Message) IsUser() bool {
	return m.Role == RoleUser
}

// IsAssistant returns true if the message was sent by the assistant
func (m Message) IsAssistant() bool {
	return m.Role == RoleAssistant
}

// IsSystem returns true if the message is a system message
func (m Message) IsSystem() bool {
	return m.Role == RoleSystem
}

// IsEmpty returns true if the message content is empty after trimming
// whitespace. Empty messages are dropped by the request formatter.
func (m Message) IsEmpty() bool {
	return strings.TrimSpace(m.Content) == ""
}
