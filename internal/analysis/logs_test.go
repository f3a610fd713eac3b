package analysis

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLogsClassifiesLevels(t *testing.T) {
	log := `2024-03-01 10:00:01 INFO service started
2024-03-01 10:00:02 ERROR TimeoutError: upstream timed out
2024-03-01 10:00:03 WARNING slow response
plain line without level
2024-03-01 10:00:05 CRITICAL giving up
`
	path := writeTestFile(t, t.TempDir(), "svc.log", log)

	report := ParseLogs(path)
	require.Empty(t, report.Error)
	assert.Equal(t, 2, report.ErrorCount)
	assert.Equal(t, 1, report.WarningCount)
	assert.Equal(t, "2024-03-01 10:00:02", report.Errors[0].Timestamp)
}

func TestParseLogsMissingFile(t *testing.T) {
	report := ParseLogs("/nonexistent/path.log")
	assert.NotEmpty(t, report.Error)
	assert.Zero(t, report.TotalLines)
}

func TestClusterErrorsGroupsByExceptionType(t *testing.T) {
	log := LogReport{Errors: []LogEntry{
		{Content: "ERROR TimeoutError: upstream timed out"},
		{Content: "ERROR TimeoutError: upstream timed out again"},
		{Content: "ERROR ConnectionError: refused"},
		{Content: "ERROR something vague happened"},
	}}

	clusters := ClusterErrors(log)
	assert.Equal(t, 4, clusters.TotalErrors)
	assert.Equal(t, 3, clusters.UniquePatterns)

	// Sorted by frequency: TimeoutError first.
	require.NotEmpty(t, clusters.Clusters)
	assert.Equal(t, "TimeoutError", clusters.Clusters[0].Pattern)
	assert.Equal(t, 2, clusters.Clusters[0].Count)
}

func TestDetectAnomaliesFlagsSpikes(t *testing.T) {
	var entries []LogEntry
	// Baseline: one error per minute across ten minutes.
	for i := 0; i < 10; i++ {
		entries = append(entries, LogEntry{
			Content:   "ERROR baseline",
			Timestamp: fmt.Sprintf("2024-03-01 10:0%d:00", i),
		})
	}
	// Spike: ten errors in one minute.
	for i := 0; i < 10; i++ {
		entries = append(entries, LogEntry{
			Content:   "ERROR spike",
			Timestamp: "2024-03-01 11:00:00",
		})
	}

	report := DetectAnomalies(LogReport{Errors: entries})
	require.Len(t, report.Spikes, 1)
	assert.Equal(t, "2024-03-01 11:00", report.Spikes[0].Bucket)
	assert.Equal(t, 10, report.Spikes[0].Count)
	assert.Equal(t, 1, report.TotalAnomalies)
}

func TestDetectAnomaliesNoTimestamps(t *testing.T) {
	report := DetectAnomalies(LogReport{Errors: []LogEntry{{Content: "ERROR no ts"}}})
	assert.Empty(t, report.Spikes)
	assert.Zero(t, report.TotalAnomalies)
}

func TestBuildPostmortemSections(t *testing.T) {
	log := LogReport{TotalLines: 100, ErrorCount: 5, WarningCount: 2}
	clusters := ClusterReport{
		Clusters:       []ErrorGroup{{Pattern: "TimeoutError", Count: 5}},
		TopErrors:      []TopError{{Message: "ERROR TimeoutError: upstream", Count: 5}},
		TotalErrors:    5,
		UniquePatterns: 1,
	}

	pm := BuildPostmortem("svc.log", log, clusters, AnomalyReport{})

	for _, section := range []string{
		"## Summary", "## Timeline", "## Impact",
		"## Root Cause Candidates", "## Detection", "## Action Items",
	} {
		assert.Contains(t, pm.Document, section)
	}
	assert.Contains(t, pm.Document, "TimeoutError")
	assert.True(t, strings.HasPrefix(pm.Title, "Incident Postmortem:"))
}
