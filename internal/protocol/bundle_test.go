package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"autopilot/internal/analysis"
	"autopilot/internal/render"
)

func TestEmptyBundleAccessorsAreTotal(t *testing.T) {
	var b ReportBundle

	assert.Zero(t, b.DeadCodeOrEmpty().TotalFunctions)
	assert.Zero(t, b.DuplicatesOrEmpty().TotalPairs)
	assert.Zero(t, b.MigrationOrEmpty().From)
	assert.NotNil(t, b.RefactorsOrEmpty())
	assert.Empty(t, b.RefactorsOrEmpty())
	assert.Zero(t, b.PostmortemOrEmpty().ErrorCount)
	assert.Empty(t, b.Visuals.Map())
}

func TestFilledBundleRoundTrips(t *testing.T) {
	b := ReportBundle{
		DeadCode:  &analysis.DeadCodeReport{UnusedFunctions: []string{"orphan"}, TotalFunctions: 3},
		Refactors: []analysis.RefactorSuggestion{{File: "a.go", Kind: analysis.RefactorDecompose}},
	}
	b.Visuals.Heatmap = render.Placeholder("complexity_heatmap", "test")

	assert.Equal(t, []string{"orphan"}, b.DeadCodeOrEmpty().UnusedFunctions)
	require.Len(t, b.RefactorsOrEmpty(), 1)

	m := b.Visuals.Map()
	require.Contains(t, m, "complexity_heatmap")
	assert.NotContains(t, m, "dependency_graph")
}

func TestFillReportsIsTotal(t *testing.T) {
	var resp Response
	resp.FillReports(ReportBundle{})

	// Every report field is well-typed even when no handler produced it.
	assert.NotNil(t, resp.RefactorSuggestionsReport)
	assert.NotNil(t, resp.Visualizations)
	assert.Zero(t, resp.DeadCodeReport.TotalFunctions)
	assert.Zero(t, resp.MigrationPlanReport.From)
	assert.Zero(t, resp.PostmortemReport.ErrorCount)
}
