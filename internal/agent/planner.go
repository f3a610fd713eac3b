// Package agent implements the three pipeline roles and the orchestrator
// that runs them in sequence for each user message.
package agent

import (
	"context"
	"fmt"

	"autopilot/internal/llm"
	"autopilot/internal/logging"
	"autopilot/internal/protocol"
	"autopilot/internal/safety"
)

// Planner classifies a user message into a PlanRequest. The destructive
// pre-check is a hard rule evaluated before the model sees the input; the
// model can never override it.
type Planner struct {
	provider llm.CompletionProvider
	screener *safety.Screener
}

// NewPlanner wires a planner.
func NewPlanner(provider llm.CompletionProvider, screener *safety.Screener) *Planner {
	return &Planner{provider: provider, screener: screener}
}

var knownActions = map[string]bool{
	protocol.ActionRepoAnalysis:     true,
	protocol.ActionIncidentAnalysis: true,
	protocol.ActionMigration:        true,
	protocol.ActionRefactor:         true,
	protocol.ActionDocumentation:    true,
	protocol.ActionArchitecture:     true,
	protocol.ActionEnforceBoundary:  true,
	protocol.ActionGeneralChat:      true,
}

// Plan produces the structured plan for one message. Model failure degrades
// to a general_chat plan; it never propagates.
func (p *Planner) Plan(ctx context.Context, userInput, history, preferences string) protocol.PlanRequest {
	if p.screener.CheckRequest(userInput) {
		logging.Warn("destructive operation detected in request")
		return protocol.PlanRequest{
			Action:          protocol.ActionEnforceBoundary,
			TaskType:        protocol.ActionEnforceBoundary,
			Complexity:      protocol.ComplexityHigh,
			Instruction:     boundaryInstruction,
			NeedsValidation: true,
		}
	}

	prompt := fmt.Sprintf(`Analyze this DevOps request and produce a structured plan.

USER PREFERENCES/CONTEXT:
%s

CONVERSATION HISTORY:
%s

CURRENT USER REQUEST:
%s

Remember:
1. Output ONLY valid JSON.
2. Map the request to the appropriate task_type and action.
3. Identify required tools and target paths.`, preferences, history, userInput)

	var plan protocol.PlanRequest
	err := llm.GenerateJSON(ctx, p.provider, llm.Request{
		Prompt:            prompt,
		SystemInstruction: plannerPrompt,
	}, &plan)
	if err != nil {
		logging.Warn("planner completion failed, using fallback plan", "error", err)
		return fallbackPlan(userInput)
	}

	normalizePlan(&plan, userInput)
	return plan
}

// fallbackPlan routes to conversation when classification is unavailable.
func fallbackPlan(userInput string) protocol.PlanRequest {
	return protocol.PlanRequest{
		Action:      protocol.ActionGeneralChat,
		TaskType:    "conversation",
		Complexity:  protocol.ComplexityLow,
		Instruction: userInput,
	}
}

// normalizePlan repairs model output: unknown actions become general_chat,
// the legacy "chat" alias is mapped, and an empty instruction falls back to
// the raw request.
func normalizePlan(plan *protocol.PlanRequest, userInput string) {
	if plan.Action == "chat" {
		plan.Action = protocol.ActionGeneralChat
	}
	if !knownActions[plan.Action] {
		logging.Debug("unknown planned action, defaulting to chat", "action", plan.Action)
		plan.Action = protocol.ActionGeneralChat
	}
	// A model must not classify its way into the boundary path with lowered
	// stakes; the pre-check owns that route.
	if plan.Action == protocol.ActionEnforceBoundary {
		plan.Complexity = protocol.ComplexityHigh
		plan.NeedsValidation = true
		if plan.Instruction == "" {
			plan.Instruction = boundaryInstruction
		}
	}
	switch plan.Complexity {
	case protocol.ComplexityLow, protocol.ComplexityMedium, protocol.ComplexityHigh:
	default:
		plan.Complexity = protocol.ComplexityLow
	}
	if plan.Instruction == "" {
		plan.Instruction = userInput
	}
}
