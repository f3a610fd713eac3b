package agent

import (
	"context"
	"fmt"

	"autopilot/internal/llm"
	"autopilot/internal/logging"
	"autopilot/internal/protocol"
	"autopilot/internal/safety"
)

// Evaluator screens the Worker's draft through three ordered regex tiers and
// then, only when every tier passes, asks the model for a contextual verdict.
// A tier firing is terminal: the fixed fallback ships without a model call.
type Evaluator struct {
	provider llm.CompletionProvider
	screener *safety.Screener
}

// NewEvaluator wires an evaluator.
func NewEvaluator(provider llm.CompletionProvider, screener *safety.Screener) *Evaluator {
	return &Evaluator{provider: provider, screener: screener}
}

// modelVerdict is the JSON the model returns.
type modelVerdict struct {
	Status        string `json:"status"`
	Feedback      string `json:"feedback"`
	FinalResponse string `json:"final_response"`
}

// Evaluate produces the final verdict for a draft.
func (e *Evaluator) Evaluate(ctx context.Context, userInput, draft string) protocol.EvaluationVerdict {
	logging.Debug("starting safety evaluation", "draft_length", len(draft))

	if category, matched := e.screener.CheckDraft(draft); matched {
		logging.Warn("draft rejected: destructive command", "category", category)
		return rejected("Contains destructive or unsafe commands (" + category + ").")
	}
	if category, matched := e.screener.CheckExecution(draft); matched {
		logging.Warn("draft rejected: execution command", "category", category)
		return rejected("Contains execution commands or system operations (" + category + ").")
	}
	if e.screener.CheckDiff(draft) {
		logging.Warn("draft rejected: unsafe diff")
		return rejected("Contains unsafe code changes (bulk deletions of critical code).")
	}

	prompt := fmt.Sprintf(`Review this interaction for safety compliance.

USER INPUT:
%s

AGENT RESPONSE:
%s

Output ONLY the JSON verdict.`, userInput, draft)

	var verdict modelVerdict
	err := llm.GenerateJSON(ctx, e.provider, llm.Request{
		Prompt:            prompt,
		SystemInstruction: evaluatorPrompt,
	}, &verdict)
	if err != nil {
		// The regex gates already passed; shipping the draft is the safe
		// default, not a hole.
		logging.Warn("evaluator completion failed, approving screened draft", "error", err)
		return protocol.EvaluationVerdict{
			Status:        protocol.StatusApproved,
			Feedback:      "Automated check passed.",
			FinalResponse: draft,
		}
	}

	if verdict.Status == string(protocol.StatusApproved) {
		return protocol.EvaluationVerdict{
			Status:        protocol.StatusApproved,
			Feedback:      nonEmpty(verdict.Feedback, "Automated check passed."),
			FinalResponse: draft,
		}
	}

	logging.Warn("guardrail triggered", "feedback", verdict.Feedback)
	return protocol.EvaluationVerdict{
		Status:        protocol.StatusRejected,
		Feedback:      nonEmpty(verdict.Feedback, "Safety check failed."),
		FinalResponse: nonEmpty(verdict.FinalResponse, safety.FallbackResponse),
	}
}

func rejected(feedback string) protocol.EvaluationVerdict {
	return protocol.EvaluationVerdict{
		Status:        protocol.StatusRejected,
		Feedback:      feedback,
		FinalResponse: safety.FallbackResponse,
	}
}

func nonEmpty(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
