package analysis

import (
	"context"
	"errors"
	"fmt"

	"content-studio/internal/history"
	"content-studio/internal/storage"
)

// DefaultHistoryLimit caps the analysis history; appending past it
// evicts the oldest record.
const DefaultHistoryLimit = 15

// Record is the stored payload of one completed analysis. Immutable
// once stored; removed only by explicit deletion or cap eviction.
type Record struct {
	Content     string       `json:"content"`
	Readability *Readability `json:"readabilityResult"`
	Engagement  *Engagement  `json:"engagementResult"`
}

func validateRecord(r Record) error {
	if r.Content == "" {
		return errors.New("analysis record has empty content")
	}
	return nil
}

// Policy returns the eviction policy of the analysis history.
func Policy(limit int) history.Policy[Record] {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return history.Policy[Record]{MaxItems: limit, Validate: validateRecord}
}

// Service runs analyses and owns the per-user analysis history.
type Service struct {
	analyzer *Analyzer
	store    *history.Store[Record]
}

func NewService(backend storage.Backend, namespace history.NamespaceFunc, analyzer *Analyzer, limit int) *Service {
	return &Service{
		analyzer: analyzer,
		store:    history.New(backend, storage.PrefixAnalysisHistory, namespace, Policy(limit)),
	}
}

// Analyze runs both collaborators on content and appends the completed
// record to history. A collaborator failure propagates to the caller
// and writes nothing (no partial records). A persistence failure keeps
// the record in session memory and reports history.ErrWriteFailed.
func (s *Service) Analyze(ctx context.Context, content string) (history.Record[Record], error) {
	read, err := s.analyzer.Readability(ctx, content)
	if err != nil {
		return history.Record[Record]{}, fmt.Errorf("analysis failed: %w", err)
	}
	eng, err := s.analyzer.Engagement(ctx, content)
	if err != nil {
		return history.Record[Record]{}, fmt.Errorf("analysis failed: %w", err)
	}
	return s.store.Append(Record{Content: content, Readability: read, Engagement: eng})
}

// History loads the collection under the identity current at call time.
func (s *Service) History() ([]history.Record[Record], error) {
	return s.store.Load()
}

func (s *Service) Remove(id string) error { return s.store.Remove(id) }

func (s *Service) Clear() error { return s.store.Clear() }

// Reload refreshes in-memory state after a cross-context change.
func (s *Service) Reload() error {
	_, err := s.store.Load()
	return err
}

// ActiveKey exposes the bound storage key for mutation matching.
func (s *Service) ActiveKey() string { return s.store.ActiveKey() }
