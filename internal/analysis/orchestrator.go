// Package analysis turns normalized document content into a validated
// AnalysisResult via a conversational model call. Responses are parsed
// defensively: one corrective follow-up turn is allowed before the response
// is rejected, keeping latency and backend cost bounded.
package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"strings"

	"github.com/daniel/docinsight/internal/llm"
	"github.com/daniel/docinsight/internal/prompts"
	"github.com/daniel/docinsight/internal/schemas"
	"github.com/daniel/docinsight/internal/types"
)

// promptBudget caps how many normalized-content characters are embedded in
// the prompt. Content beyond it is clipped and the clipping is flagged to
// the model.
const promptBudget = 16000

// Orchestrator drives the model call and response validation for one
// document at a time. It is safe for concurrent use across pipeline workers.
type Orchestrator struct {
	client llm.Client
}

// NewOrchestrator creates an Orchestrator over an established backend client
func NewOrchestrator(client llm.Client) *Orchestrator {
	return &Orchestrator{client: client}
}

// Model returns the identifier of the backend model in use
func (o *Orchestrator) Model() string {
	return o.client.Model()
}

// rawResponse mirrors the JSON shape the model is instructed to produce
type rawResponse struct {
	Summary         string   `json:"summary"`
	Insights        []string `json:"insights"`
	Recommendations []string `json:"recommendations"`
	GeneratedCode   string   `json:"generated_code,omitempty"`
}

// Analyze submits normalized content for structured analysis.
// On a malformed response it issues exactly one corrective follow-up turn
// quoting the validation error; a second failure surfaces InvalidResponse.
func (o *Orchestrator) Analyze(ctx context.Context, doc *types.SourceDocument, content *types.NormalizedContent) (*types.AnalysisResult, error) {
	messages := o.buildMessages(doc, content)

	raw, err := o.client.Chat(ctx, messages)
	if err != nil {
		return nil, classifyChatError(err)
	}

	result, verr := parseResponse(raw)
	if verr == nil {
		return result, nil
	}

	// Single corrective round-trip: quote the validation error back and ask
	// for strictly valid output.
	retryPrompt := prompts.Format(prompts.MustGet("analysis.json", "corrective-retry"), map[string]string{
		"Error": verr.Error(),
	})
	messages = append(messages,
		llm.Message{Role: llm.RoleAssistant, Content: raw},
		llm.Message{Role: llm.RoleUser, Content: retryPrompt},
	)

	raw, err = o.client.Chat(ctx, messages)
	if err != nil {
		return nil, classifyChatError(err)
	}

	result, verr = parseResponse(raw)
	if verr != nil {
		return nil, &ModelError{
			Kind:    KindInvalidResponse,
			Message: "response still malformed after corrective retry",
			Cause:   verr,
		}
	}
	return result, nil
}

// buildMessages assembles the system instruction and the document turn
func (o *Orchestrator) buildMessages(doc *types.SourceDocument, content *types.NormalizedContent) []llm.Message {
	text := content.Text()
	truncationNote := ""
	if content.Truncated {
		truncationNote = prompts.MustGet("analysis.json", "truncation-note")
	}
	if len(text) > promptBudget {
		text = text[:promptBudget]
		truncationNote = prompts.MustGet("analysis.json", "truncation-note")
	}

	user := prompts.Format(prompts.MustGet("analysis.json", "analyze-document"), map[string]string{
		"Name":           doc.Name,
		"Kind":           string(doc.Kind),
		"TruncationNote": truncationNote,
		"Content":        text,
	})

	return []llm.Message{
		{Role: llm.RoleSystem, Content: prompts.MustGet("analysis.json", "system-instruction")},
		{Role: llm.RoleUser, Content: user},
	}
}

// parseResponse cleans, validates, decodes, and post-processes one raw model
// reply. The returned error is suitable for quoting back to the model.
func parseResponse(raw string) (*types.AnalysisResult, error) {
	cleaned := llm.CleanJSONBlock(raw)

	if err := schemas.ValidateAnalysisResponse([]byte(cleaned)); err != nil {
		return nil, err
	}

	var resp rawResponse
	if err := json.Unmarshal([]byte(cleaned), &resp); err != nil {
		return nil, err
	}

	if strings.TrimSpace(resp.Summary) == "" {
		return nil, errors.New("summary must be a non-empty string")
	}

	return &types.AnalysisResult{
		Summary:         strings.TrimSpace(resp.Summary),
		Insights:        dedupe(resp.Insights, types.MaxInsights),
		Recommendations: dedupe(resp.Recommendations, 0),
		GeneratedCode:   strings.TrimSpace(resp.GeneratedCode),
	}, nil
}

// dedupe trims, drops empty and duplicate entries, and caps the list when
// limit is positive.
func dedupe(items []string, limit int) []string {
	out := make([]string, 0, len(items))
	seen := make(map[string]bool, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" || seen[item] {
			continue
		}
		seen[item] = true
		out = append(out, item)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

// classifyChatError maps a transport failure onto the model error taxonomy
func classifyChatError(err error) *ModelError {
	var nerr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &nerr) && nerr.Timeout()) {
		return &ModelError{Kind: KindTimeout, Message: "backend call exceeded deadline", Cause: err}
	}
	return &ModelError{Kind: KindUnreachable, Message: "backend call failed", Cause: err}
}
