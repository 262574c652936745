package analysis

import (
	"context"
	"errors"
	"testing"

	"content-studio/internal/llm"
	"content-studio/internal/storage"
)

// fakeClient replays canned responses keyed by the system prompt.
type fakeClient struct {
	readability string
	engagement  string
	err         error
}

func (f *fakeClient) Generate(_ context.Context, messages []llm.Message) (llm.Response, error) {
	if f.err != nil {
		return llm.Response{}, f.err
	}
	if len(messages) == 0 {
		return llm.Response{}, errors.New("no messages")
	}
	if messages[0].Content == readabilityPrompt {
		return llm.Response{Content: f.readability}, nil
	}
	return llm.Response{Content: f.engagement}, nil
}

func newService(t *testing.T, client llm.Client) *Service {
	t.Helper()
	b, err := storage.NewFileBackend(t.TempDir())
	if err != nil {
		t.Fatalf("init backend: %v", err)
	}
	return NewService(b, func() string { return "guest" }, NewAnalyzer(client), DefaultHistoryLimit)
}

func TestService_AnalyzeAppendsRecord(t *testing.T) {
	client := &fakeClient{
		// markdown-wrapped JSON must still parse
		readability: "```json\n{\"fleschKincaidScore\": 62.5, \"suggestions\": [\"shorter sentences\"]}\n```",
		engagement:  `{"predictedEngagement": "High", "actionableTips": ["add a hook"]}`,
	}
	s := newService(t, client)

	rec, err := s.Analyze(context.Background(), "Some draft copy.")
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if rec.Payload.Readability == nil || rec.Payload.Readability.FleschKincaidScore != 62.5 {
		t.Fatalf("readability not captured: %+v", rec.Payload)
	}
	if rec.Payload.Engagement == nil || rec.Payload.Engagement.PredictedEngagement != "High" {
		t.Fatalf("engagement not captured: %+v", rec.Payload)
	}

	items, err := s.History()
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(items) != 1 || items[0].ID != rec.ID {
		t.Fatalf("record not in history: %+v", items)
	}
}

func TestService_CollaboratorFailureWritesNothing(t *testing.T) {
	s := newService(t, &fakeClient{err: errors.New("upstream down")})

	if _, err := s.Analyze(context.Background(), "draft"); err == nil {
		t.Fatalf("expected analysis error")
	}
	items, err := s.History()
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("partial record written on failure: %+v", items)
	}
}

func TestService_MalformedLLMReplyWritesNothing(t *testing.T) {
	s := newService(t, &fakeClient{
		readability: "sorry, I cannot help with that",
		engagement:  `{}`,
	})
	if _, err := s.Analyze(context.Background(), "draft"); err == nil {
		t.Fatalf("expected parse error")
	}
	items, _ := s.History()
	if len(items) != 0 {
		t.Fatalf("record written despite parse failure: %+v", items)
	}
}
