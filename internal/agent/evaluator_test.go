package agent

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"autopilot/internal/protocol"
	"autopilot/internal/safety"
)

func TestEvaluateRejectsDestructiveDraft(t *testing.T) {
	stub := &scriptedLLM{verdictJSON: `{"status":"APPROVED"}`}
	e := NewEvaluator(stub, newTestScreener())

	verdict := e.Evaluate(context.Background(), "clean up", "Just run rm -rf /var/log and you're done.")

	assert.Equal(t, protocol.StatusRejected, verdict.Status)
	assert.Equal(t, safety.FallbackResponse, verdict.FinalResponse)
	assert.Zero(t, stub.calls, "a fired tier must not consult the model")
}

func TestEvaluateApprovesSafeDraft(t *testing.T) {
	stub := &scriptedLLM{verdictJSON: `{"status":"APPROVED","feedback":"looks fine"}`}
	e := NewEvaluator(stub, newTestScreener())
	draft := "The repository has 42 files. The most complex module is the parser."

	verdict := e.Evaluate(context.Background(), "analyze", draft)

	assert.Equal(t, protocol.StatusApproved, verdict.Status)
	assert.Equal(t, draft, verdict.FinalResponse)
}

func TestEvaluateIdempotentOnSafeText(t *testing.T) {
	stub := &scriptedLLM{verdictJSON: `{"status":"APPROVED"}`}
	e := NewEvaluator(stub, newTestScreener())
	draft := "Average complexity is 4.2 across 17 functions."

	first := e.Evaluate(context.Background(), "analyze", draft)
	second := e.Evaluate(context.Background(), "analyze", draft)

	assert.Equal(t, first.Status, second.Status)
	assert.Equal(t, first.FinalResponse, second.FinalResponse)
}

func TestEvaluateModelFailureDegradesToApproved(t *testing.T) {
	stub := &scriptedLLM{err: errors.New("network down")}
	e := NewEvaluator(stub, newTestScreener())
	draft := "Here is a safe summary of your logs."

	verdict := e.Evaluate(context.Background(), "analyze my logs", draft)

	assert.Equal(t, protocol.StatusApproved, verdict.Status)
	assert.Equal(t, draft, verdict.FinalResponse)
}

func TestEvaluateModelRejectionUsesSuggestedResponse(t *testing.T) {
	stub := &scriptedLLM{verdictJSON: `{"status":"REJECTED","feedback":"subtle issue","final_response":"Here is a safer framing."}`}
	e := NewEvaluator(stub, newTestScreener())

	verdict := e.Evaluate(context.Background(), "analyze", "A borderline but regex-clean draft.")

	assert.Equal(t, protocol.StatusRejected, verdict.Status)
	assert.Equal(t, "Here is a safer framing.", verdict.FinalResponse)
}

func TestEvaluateModelRejectionWithoutSuggestionUsesFallback(t *testing.T) {
	stub := &scriptedLLM{verdictJSON: `{"status":"REJECTED","feedback":"nope"}`}
	e := NewEvaluator(stub, newTestScreener())

	verdict := e.Evaluate(context.Background(), "analyze", "A regex-clean draft.")

	assert.Equal(t, protocol.StatusRejected, verdict.Status)
	assert.Equal(t, safety.FallbackResponse, verdict.FinalResponse)
}

func TestEvaluateRejectsUnsafeDiffDraft(t *testing.T) {
	stub := &scriptedLLM{verdictJSON: `{"status":"APPROVED"}`}
	// Tight thresholds so the fixture diff stays small.
	screener := safety.NewScreener(safety.DiffThresholds{MinRemovals: 2, RemovalRatio: 1})
	e := NewEvaluator(stub, screener)

	draft := "Apply this:\n--- a/db.py\n+++ b/db.py\n-import os\n-def delete_users():\n-    pass\n"
	verdict := e.Evaluate(context.Background(), "refactor", draft)

	assert.Equal(t, protocol.StatusRejected, verdict.Status)
	assert.Equal(t, safety.FallbackResponse, verdict.FinalResponse)
}
