// Package analysis scores draft content for readability and predicted
// engagement through an LLM collaborator and keeps the per-user
// analysis history (capped at the most recent entries).
package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"content-studio/internal/llm"
)

// Readability is the readability collaborator result.
type Readability struct {
	FleschKincaidScore float64  `json:"fleschKincaidScore"`
	Suggestions        []string `json:"suggestions"`
}

// Engagement is the engagement-prediction collaborator result.
type Engagement struct {
	PredictedEngagement string   `json:"predictedEngagement"`
	ActionableTips      []string `json:"actionableTips"`
}

const readabilityPrompt = `You are a copy-editing assistant. Score the user's content with the Flesch-Kincaid readability test and suggest concrete improvements.
Respond with JSON only, no prose:
{"fleschKincaidScore": <number>, "suggestions": ["...", "..."]}`

const engagementPrompt = `You are a content-marketing assistant. Predict how engaging the user's content will be for a professional audience and give actionable tips.
Respond with JSON only, no prose:
{"predictedEngagement": "<short verdict>", "actionableTips": ["...", "..."]}`

// Analyzer runs the two analysis collaborators. Failures are surfaced
// to the caller untouched; nothing here writes to history.
type Analyzer struct {
	client llm.Client
}

func NewAnalyzer(client llm.Client) *Analyzer {
	return &Analyzer{client: client}
}

func (a *Analyzer) Readability(ctx context.Context, content string) (*Readability, error) {
	var out Readability
	if err := a.generateJSON(ctx, readabilityPrompt, content, &out); err != nil {
		return nil, fmt.Errorf("readability analysis: %w", err)
	}
	return &out, nil
}

func (a *Analyzer) Engagement(ctx context.Context, content string) (*Engagement, error) {
	var out Engagement
	if err := a.generateJSON(ctx, engagementPrompt, content, &out); err != nil {
		return nil, fmt.Errorf("engagement analysis: %w", err)
	}
	return &out, nil
}

func (a *Analyzer) generateJSON(ctx context.Context, systemPrompt, content string, out any) error {
	resp, err := a.client.Generate(ctx, []llm.Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: content},
	})
	if err != nil {
		return err
	}
	return parseJSONBlock(resp.Content, out)
}

// parseJSONBlock extracts the JSON object from an LLM reply that may be
// wrapped in a markdown block or surrounding prose.
func parseJSONBlock(content string, out any) error {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start == -1 || end <= start {
		return errors.New("no JSON found in LLM response")
	}
	if err := json.Unmarshal([]byte(content[start:end+1]), out); err != nil {
		return fmt.Errorf("failed to parse LLM response: %w", err)
	}
	return nil
}
