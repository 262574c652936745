package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"content-studio/internal/history"
	"content-studio/internal/llm"
	"content-studio/internal/storage"
)

const systemPrompt = `You are the studio's content assistant. Help the user improve their marketing copy and grow their audience. When one of our tutorial videos fits the question, reference it.
Respond with JSON only, no prose:
{"reply": "<your answer>", "suggestedVideo": "<video reference or empty string>"}`

// unavailableNotice is synthesized locally when the reply collaborator
// fails, so the failure is visible in the conversation instead of a
// silent drop.
const unavailableNotice = "The assistant is unavailable right now. Please try again in a moment."

type llmReply struct {
	Reply          string `json:"reply"`
	SuggestedVideo string `json:"suggestedVideo"`
}

// Service owns the conversation log and the reply collaborator.
type Service struct {
	store  *history.Store[Message]
	client llm.Client
}

func NewService(backend storage.Backend, namespace history.NamespaceFunc, client llm.Client, window time.Duration) *Service {
	return &Service{
		store:  history.New(backend, storage.PrefixChatHistory, namespace, Policy(window)),
		client: client,
	}
}

// Send appends the user turn, asks the collaborator for a reply with
// the conversation as context, and appends the model turn. On
// collaborator failure a system notice is appended instead and the
// upstream error is returned alongside the updated conversation; the
// user turn is never dropped.
func (s *Service) Send(ctx context.Context, text string) ([]history.Record[Message], error) {
	if _, err := s.store.Append(Message{Role: RoleUser, Content: text}); err != nil {
		// persistence failure degrades to session memory; keep going
		if !isWriteFailure(err) {
			return nil, err
		}
	}

	resp, err := s.client.Generate(ctx, s.context())
	if err != nil {
		_, _ = s.store.Append(Message{Role: RoleSystem, Content: unavailableNotice})
		return s.store.Items(), fmt.Errorf("chat reply failed: %w", err)
	}

	reply := parseReply(resp.Content)
	if _, err := s.store.Append(reply); err != nil && !isWriteFailure(err) {
		return nil, err
	}
	return s.store.Items(), nil
}

// Messages loads the conversation under the identity current at call
// time, applying TTL expiry and reseeding.
func (s *Service) Messages() ([]history.Record[Message], error) {
	return s.store.Load()
}

// Items returns the in-memory conversation snapshot without touching
// the backend.
func (s *Service) Items() []history.Record[Message] { return s.store.Items() }

// Clear resets the conversation to the greeting and removes the
// physical key.
func (s *Service) Clear() error { return s.store.Clear() }

// Reload refreshes in-memory state after a cross-context change.
func (s *Service) Reload() error {
	_, err := s.store.Load()
	return err
}

// ActiveKey exposes the bound storage key for teardown flows.
func (s *Service) ActiveKey() string { return s.store.ActiveKey() }

// context converts the stored most-recent-first collection into the
// chronological role/content shape the collaborator expects. System
// notices are local artifacts and stay out of the prompt.
func (s *Service) context() []llm.Message {
	items := s.store.Items()
	msgs := make([]llm.Message, 0, len(items)+1)
	msgs = append(msgs, llm.Message{Role: "system", Content: systemPrompt})
	for i := len(items) - 1; i >= 0; i-- {
		m := items[i].Payload
		switch m.Role {
		case RoleUser:
			msgs = append(msgs, llm.Message{Role: "user", Content: m.Content})
		case RoleModel:
			msgs = append(msgs, llm.Message{Role: "assistant", Content: m.Content})
		}
	}
	return msgs
}

// parseReply decodes the collaborator's JSON reply (possibly wrapped in
// a markdown block), falling back to the raw content when the model
// ignored the format.
func parseReply(content string) Message {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start == -1 || end <= start {
		return Message{Role: RoleModel, Content: content}
	}
	var r llmReply
	if err := json.Unmarshal([]byte(content[start:end+1]), &r); err != nil || r.Reply == "" {
		return Message{Role: RoleModel, Content: content}
	}
	return Message{Role: RoleModel, Content: r.Reply, SuggestedVideo: r.SuggestedVideo}
}

func isWriteFailure(err error) bool {
	return errors.Is(err, history.ErrWriteFailed)
}
