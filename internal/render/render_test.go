package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDependencyGraphRendersNodesAndEdges(t *testing.T) {
	art := DependencyGraph(GraphData{
		Nodes: []string{"main.go", "util/util.go"},
		Edges: [][2]string{{"main.go", "util/util.go"}},
	})

	require.NotNil(t, art)
	assert.Equal(t, "image/svg+xml", art.MIME)
	svg := art.SVG()
	assert.Contains(t, svg, "<svg")
	assert.Contains(t, svg, "main.go")
	assert.Contains(t, svg, "<line")
}

func TestDependencyGraphEmptyInputPlaceholder(t *testing.T) {
	art := DependencyGraph(GraphData{})
	require.NotNil(t, art)
	assert.Contains(t, art.SVG(), "No modules found")
}

func TestComplexityHeatmapColorsBySeverity(t *testing.T) {
	art := ComplexityHeatmap([]HeatmapEntry{
		{File: "calm.go", Score: 2},
		{File: "warm.go", Score: 7},
		{File: "hot.go", Score: 15},
	})

	svg := art.SVG()
	assert.Contains(t, svg, "hot.go")
	assert.Contains(t, svg, "#ff6b6b")
	assert.Contains(t, svg, "#f7b731")
	assert.Contains(t, svg, "#4ecdc4")
}

func TestComplexityHeatmapEmptyInputPlaceholder(t *testing.T) {
	art := ComplexityHeatmap(nil)
	require.NotNil(t, art)
	assert.Contains(t, strings.ToLower(art.SVG()), "no")
}

func TestErrorTimelineRendersBuckets(t *testing.T) {
	art := ErrorTimeline([]TimelinePoint{
		{Bucket: "2024-03-01 10", Errors: 3, Warnings: 1},
		{Bucket: "2024-03-01 11", Errors: 0, Warnings: 2},
	})

	require.NotNil(t, art)
	assert.Contains(t, art.SVG(), "2024-03-01 10")
}

func TestErrorTimelineEmptyInputPlaceholder(t *testing.T) {
	art := ErrorTimeline(nil)
	require.NotNil(t, art)
	assert.NotEmpty(t, art.Data)
}

func TestArtifactEscapesMarkup(t *testing.T) {
	art := Placeholder("test", `<script>&"attack"</script>`)
	svg := art.SVG()
	assert.NotContains(t, svg, "<script>")
	assert.Contains(t, svg, "&lt;script&gt;")
}
