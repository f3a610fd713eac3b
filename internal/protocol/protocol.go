// Package protocol defines the data contracts passed between the Planner,
// Worker, Evaluator and Orchestrator.
package protocol

import (
	"time"

	"autopilot/internal/analysis"
	"autopilot/internal/render"
)

// Complexity classifies the effort tier of a planned task.
type Complexity string

const (
	ComplexityLow    Complexity = "LOW"
	ComplexityMedium Complexity = "MEDIUM"
	ComplexityHigh   Complexity = "HIGH"
)

// Known plan actions. The Worker's dispatch table is keyed by these.
const (
	ActionRepoAnalysis     = "repo_analysis"
	ActionIncidentAnalysis = "incident_analysis"
	ActionMigration        = "migration"
	ActionRefactor         = "refactor"
	ActionDocumentation    = "documentation"
	ActionArchitecture     = "architecture"
	ActionEnforceBoundary  = "enforce_boundary"
	ActionGeneralChat      = "general_chat"
)

// Preference is a key/value preference the Planner asks to persist.
type Preference struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// PlanRequest is the Planner's structured intent classification for one user
// message. It is created fresh per message and never mutated after the Worker
// consumes it; the Orchestrator only annotates RepoPath before dispatch.
type PlanRequest struct {
	Action          string      `json:"action"`
	TaskType        string      `json:"task_type"`
	Complexity      Complexity  `json:"complexity"`
	Instruction     string      `json:"instruction"`
	ToolsNeeded     []string    `json:"tools_needed"`
	TargetPaths     []string    `json:"target_paths"`
	NeedsValidation bool        `json:"needs_validation"`
	SavePreference  *Preference `json:"save_preference,omitempty"`
	RepoPath        string      `json:"repo_path,omitempty"`
}

// WorkerResult is the Worker's unvalidated candidate response plus the
// structured analysis it performed.
type WorkerResult struct {
	Draft     string       `json:"draft_response"`
	ToolsUsed []string     `json:"tools_used"`
	Bundle    ReportBundle `json:"analysis_bundle"`
}

// Status is the Evaluator's verdict on a draft.
type Status string

const (
	StatusApproved Status = "APPROVED"
	StatusRejected Status = "REJECTED"
)

// EvaluationVerdict is the Evaluator's decision. FinalResponse is always
// non-empty; on rejection it carries the safe fallback, never the draft.
type EvaluationVerdict struct {
	Status        Status `json:"status"`
	Feedback      string `json:"feedback"`
	FinalResponse string `json:"final_response"`
}

// Message is one conversation turn.
type Message struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// ConversationStats summarizes a session's history.
type ConversationStats struct {
	TotalMessages     int `json:"total_messages"`
	UserMessages      int `json:"user_messages"`
	AssistantMessages int `json:"assistant_messages"`
}

// Response is the final structured result handed back to the UI collaborator.
// The five named reports are always present and well-typed, even when the
// handler produced nothing.
type Response struct {
	Text           string                      `json:"response"`
	Plan           PlanRequest                 `json:"plan"`
	ToolsUsed      []string                    `json:"tools_used"`
	SafetyStatus   Status                      `json:"safety_status"`
	Stats          ConversationStats           `json:"conversation_stats"`
	Visualizations map[string]*render.Artifact `json:"visualizations"`

	DeadCodeReport            analysis.DeadCodeReport       `json:"dead_code_report"`
	MigrationPlanReport       analysis.MigrationReport      `json:"migration_plan_report"`
	RefactorSuggestionsReport []analysis.RefactorSuggestion `json:"refactor_suggestions_report"`
	DuplicateCodeReport       analysis.DuplicateReport      `json:"duplicate_code_report"`
	PostmortemReport          analysis.PostmortemReport     `json:"postmortem_report"`
}

// FillReports populates the Response's total report fields from a bundle.
func (r *Response) FillReports(b ReportBundle) {
	r.DeadCodeReport = b.DeadCodeOrEmpty()
	r.MigrationPlanReport = b.MigrationOrEmpty()
	r.RefactorSuggestionsReport = b.RefactorsOrEmpty()
	r.DuplicateCodeReport = b.DuplicatesOrEmpty()
	r.PostmortemReport = b.PostmortemOrEmpty()
	r.Visualizations = b.Visuals.Map()
}
