// Package llm abstracts text completion behind a small provider interface so
// the agents never touch a vendor SDK directly and tests can substitute a
// deterministic stub.
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrCompletionFailed wraps provider failures after the retry budget is spent.
var ErrCompletionFailed = errors.New("completion failed")

// Request is one completion call.
type Request struct {
	Prompt            string
	SystemInstruction string
	// JSONMode asks the model for a bare JSON object response.
	JSONMode bool
}

// CompletionProvider produces text for a prompt. Implementations must be safe
// for concurrent use.
type CompletionProvider interface {
	GenerateText(ctx context.Context, req Request) (string, error)
}

// GenerateJSON runs a completion in JSON mode and unmarshals the reply into
// out. Markdown code fences around the object are tolerated; models add them
// even when told not to.
func GenerateJSON(ctx context.Context, p CompletionProvider, req Request, out any) error {
	req.JSONMode = true
	raw, err := p.GenerateText(ctx, req)
	if err != nil {
		return err
	}
	cleaned := StripFences(raw)
	if err := json.Unmarshal([]byte(cleaned), out); err != nil {
		return fmt.Errorf("parse completion JSON: %w", err)
	}
	return nil
}

// StripFences removes a surrounding markdown code fence, if any, and trims
// whitespace.
func StripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
