package protocol

import (
	"autopilot/internal/analysis"
	"autopilot/internal/render"
)

// VisualizationSet holds the chart artifacts a handler produced. Slots are
// nil when the handler did not draw that chart.
type VisualizationSet struct {
	DependencyGraph *render.Artifact `json:"dependency_graph,omitempty"`
	Heatmap         *render.Artifact `json:"complexity_heatmap,omitempty"`
	Timeline        *render.Artifact `json:"error_timeline,omitempty"`
}

// Map returns the non-nil artifacts keyed by chart name, for the Response's
// visualization field.
func (v VisualizationSet) Map() map[string]*render.Artifact {
	m := make(map[string]*render.Artifact)
	if v.DependencyGraph != nil {
		m["dependency_graph"] = v.DependencyGraph
	}
	if v.Heatmap != nil {
		m["complexity_heatmap"] = v.Heatmap
	}
	if v.Timeline != nil {
		m["error_timeline"] = v.Timeline
	}
	return m
}

// ReportBundle carries each handler's structured output in a typed slot. A
// handler fills only the slots for the reports it produced; consumers read
// through the accessors and never probe types at runtime.
type ReportBundle struct {
	DeadCode   *analysis.DeadCodeReport      `json:"dead_code,omitempty"`
	Duplicates *analysis.DuplicateReport     `json:"duplicates,omitempty"`
	Migration  *analysis.MigrationReport     `json:"migration,omitempty"`
	Refactors  []analysis.RefactorSuggestion `json:"refactors,omitempty"`
	Postmortem *analysis.PostmortemReport    `json:"postmortem,omitempty"`
	Visuals    VisualizationSet              `json:"visuals,omitempty"`
}

// DeadCodeOrEmpty returns the dead-code report, or a zero report when the
// slot is empty. Accessors keep the Response's report fields total: every
// consumer gets a well-typed value regardless of which handler ran.
func (b ReportBundle) DeadCodeOrEmpty() analysis.DeadCodeReport {
	if b.DeadCode == nil {
		return analysis.DeadCodeReport{}
	}
	return *b.DeadCode
}

// DuplicatesOrEmpty returns the duplicate report or a zero report.
func (b ReportBundle) DuplicatesOrEmpty() analysis.DuplicateReport {
	if b.Duplicates == nil {
		return analysis.DuplicateReport{}
	}
	return *b.Duplicates
}

// MigrationOrEmpty returns the migration plan or a zero report.
func (b ReportBundle) MigrationOrEmpty() analysis.MigrationReport {
	if b.Migration == nil {
		return analysis.MigrationReport{}
	}
	return *b.Migration
}

// RefactorsOrEmpty returns the refactor suggestions, never nil.
func (b ReportBundle) RefactorsOrEmpty() []analysis.RefactorSuggestion {
	if b.Refactors == nil {
		return []analysis.RefactorSuggestion{}
	}
	return b.Refactors
}

// PostmortemOrEmpty returns the postmortem or a zero report.
func (b ReportBundle) PostmortemOrEmpty() analysis.PostmortemReport {
	if b.Postmortem == nil {
		return analysis.PostmortemReport{}
	}
	return *b.Postmortem
}
