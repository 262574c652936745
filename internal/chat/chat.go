// Package chat keeps the assistant conversation log: a TTL-bounded,
// per-user collection that always holds at least the greeting, and a
// reply collaborator backed by an LLM.
package chat

import (
	"errors"
	"time"

	"content-studio/internal/history"
)

const (
	RoleUser   = "user"
	RoleModel  = "model"
	RoleSystem = "system"
)

// DefaultWindow expires conversation records not touched for 12 hours.
const DefaultWindow = 12 * time.Hour

// GreetingText seeds every fresh or fully-expired conversation.
const GreetingText = "Hi! I'm your content assistant. Ask me anything about sharpening your copy or growing your audience."

// Message is one conversation turn. Immutable; destroyed only by TTL
// expiry or an explicit clear.
type Message struct {
	Role           string `json:"role"`
	Content        string `json:"content"`
	SuggestedVideo string `json:"suggestedVideo,omitempty"`
}

func validateMessage(m Message) error {
	switch m.Role {
	case RoleUser, RoleModel, RoleSystem:
	default:
		return errors.New("message has unknown role")
	}
	if m.Content == "" {
		return errors.New("message has empty content")
	}
	return nil
}

// Policy returns the eviction policy of the conversation log: TTL
// bounded and seeded, so it is never empty.
func Policy(window time.Duration) history.Policy[Message] {
	if window <= 0 {
		window = DefaultWindow
	}
	return history.Policy[Message]{
		TTL: window,
		Seed: func(now time.Time) []history.Record[Message] {
			return []history.Record[Message]{
				history.NewRecord(now, Message{Role: RoleModel, Content: GreetingText}),
			}
		},
		Validate: validateMessage,
	}
}
