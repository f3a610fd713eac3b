package agent

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"autopilot/internal/config"
	"autopilot/internal/memory"
	"autopilot/internal/protocol"
	"autopilot/internal/safety"
)

func newTestWorker(t *testing.T, stub *scriptedLLM) *Worker {
	t.Helper()
	cfg := config.DefaultConfig()
	prefs := memory.OpenLongTerm(filepath.Join(t.TempDir(), "prefs.json"))
	return NewWorker(stub, cfg, prefs)
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

const sampleGoFile = `package sample

import "fmt"

func Greet(name string) string {
	if name == "" {
		return "hello"
	}
	return fmt.Sprintf("hello %s", name)
}

func unusedHelper() int {
	return 42
}
`

func TestWorkEnforceBoundarySkipsModel(t *testing.T) {
	stub := &scriptedLLM{narration: "should not be used"}
	w := newTestWorker(t, stub)

	result := w.Work(context.Background(), protocol.PlanRequest{
		Action: protocol.ActionEnforceBoundary,
	})

	assert.Equal(t, safety.FallbackResponse, result.Draft)
	assert.Empty(t, result.ToolsUsed)
	assert.Zero(t, stub.calls)
}

func TestWorkGeneralChatNarrates(t *testing.T) {
	stub := &scriptedLLM{narration: "A dependency graph shows which modules import which."}
	w := newTestWorker(t, stub)

	result := w.Work(context.Background(), protocol.PlanRequest{
		Action:      protocol.ActionGeneralChat,
		Instruction: "what is a dependency graph",
	})

	assert.Equal(t, stub.narration, result.Draft)
	assert.Equal(t, 1, stub.calls)
}

func TestWorkRepoAnalysisFillsBundle(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "sample.go", sampleGoFile)
	writeFile(t, dir, "other.go", "package sample\n\nfunc Other() {}\n")

	stub := &scriptedLLM{narration: "Analysis complete."}
	w := newTestWorker(t, stub)

	result := w.Work(context.Background(), protocol.PlanRequest{
		Action:   protocol.ActionRepoAnalysis,
		RepoPath: dir,
	})

	assert.Equal(t, "Analysis complete.", result.Draft)
	assert.Contains(t, result.ToolsUsed, "read_directory_tree")
	assert.Contains(t, result.ToolsUsed, "detect_dead_code")
	require.NotNil(t, result.Bundle.DeadCode)
	assert.Contains(t, result.Bundle.DeadCode.UnusedFunctions, "unusedHelper")
	assert.NotNil(t, result.Bundle.Visuals.DependencyGraph)
	assert.NotNil(t, result.Bundle.Visuals.Heatmap)
}

func TestWorkIncidentAnalysisBuildsPostmortem(t *testing.T) {
	dir := t.TempDir()
	log := `2024-03-01 10:00:01 INFO service started
2024-03-01 10:00:02 ERROR ConnectionError: db unreachable
2024-03-01 10:00:03 ERROR ConnectionError: db unreachable
2024-03-01 10:00:04 WARNING retry scheduled
`
	writeFile(t, dir, "service.log", log)

	stub := &scriptedLLM{narration: "Incident summarized."}
	w := newTestWorker(t, stub)

	result := w.Work(context.Background(), protocol.PlanRequest{
		Action:      protocol.ActionIncidentAnalysis,
		TargetPaths: []string{"service.log"},
		RepoPath:    dir,
	})

	assert.Contains(t, result.ToolsUsed, "parse_logs")
	assert.Contains(t, result.ToolsUsed, "generate_postmortem")
	require.NotNil(t, result.Bundle.Postmortem)
	assert.Equal(t, 2, result.Bundle.Postmortem.ErrorCount)
	assert.Contains(t, result.Bundle.Postmortem.Document, "## Root Cause Candidates")
	assert.NotNil(t, result.Bundle.Visuals.Timeline)
}

func TestWorkRepoAnalysisRecordsSummary(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "main.go", sampleGoFile)

	stub := &scriptedLLM{narration: "done"}
	cfg := config.DefaultConfig()
	prefs := memory.OpenLongTerm(filepath.Join(t.TempDir(), "prefs.json"))
	w := NewWorker(stub, cfg, prefs)

	w.Work(context.Background(), protocol.PlanRequest{
		Action:   protocol.ActionRepoAnalysis,
		RepoPath: dir,
	})

	repos := prefs.AnalyzedRepos()
	require.Contains(t, repos, dir)
	assert.Contains(t, repos[dir], "files")
}

func TestWorkComplexityKeywordScansWholeRepo(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "main.go", sampleGoFile)
	writeFile(t, dir, "util.go", "package sample\n\nfunc Util(n int) int {\n\tif n > 0 {\n\t\treturn n\n\t}\n\treturn -n\n}\n")

	stub := &scriptedLLM{narration: "done"}
	w := newTestWorker(t, stub)

	// Targeted plan without a complexity keyword scores only the targets.
	targeted := w.Work(context.Background(), protocol.PlanRequest{
		Action:      protocol.ActionRepoAnalysis,
		RepoPath:    dir,
		TargetPaths: []string{"main.go"},
		Instruction: "analyze main.go",
	})
	require.NotNil(t, targeted.Bundle.Visuals.Heatmap)
	assert.NotContains(t, targeted.Bundle.Visuals.Heatmap.SVG(), "util.go")

	// The same targets with a complexity keyword widen to the whole repo.
	widened := w.Work(context.Background(), protocol.PlanRequest{
		Action:      protocol.ActionRepoAnalysis,
		RepoPath:    dir,
		TargetPaths: []string{"main.go"},
		Instruction: "show me the complexity hotspots",
	})
	require.NotNil(t, widened.Bundle.Visuals.Heatmap)
	assert.Contains(t, widened.Bundle.Visuals.Heatmap.SVG(), "util.go")
}

func TestWorkIncidentAnalysisCleanFileKeepsTimeline(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "first.log",
		"2024-03-01 10:00:02 ERROR ConnectionError: db unreachable\n")
	writeFile(t, dir, "second.log",
		"2024-03-01 11:00:00 INFO all good\n")

	stub := &scriptedLLM{narration: "Incident summarized."}
	w := newTestWorker(t, stub)

	result := w.Work(context.Background(), protocol.PlanRequest{
		Action:      protocol.ActionIncidentAnalysis,
		TargetPaths: []string{"first.log", "second.log"},
		RepoPath:    dir,
	})

	// The clean second file must not displace the first file's results.
	require.NotNil(t, result.Bundle.Visuals.Timeline)
	svg := result.Bundle.Visuals.Timeline.SVG()
	assert.Contains(t, svg, "2024-03-01 10")
	assert.NotContains(t, svg, "No errors found")
	require.NotNil(t, result.Bundle.Postmortem)
	assert.Equal(t, 1, result.Bundle.Postmortem.ErrorCount)
}

func TestWorkIncidentAnalysisMissingLogStillResponds(t *testing.T) {
	stub := &scriptedLLM{narration: "No log data found."}
	w := newTestWorker(t, stub)

	result := w.Work(context.Background(), protocol.PlanRequest{
		Action:      protocol.ActionIncidentAnalysis,
		TargetPaths: []string{"nope.log"},
		RepoPath:    t.TempDir(),
	})

	assert.Equal(t, "No log data found.", result.Draft)
	assert.Nil(t, result.Bundle.Postmortem)
	assert.NotNil(t, result.Bundle.Visuals.Timeline, "timeline is drawn even for missing logs")
}

func TestWorkMigrationUsesPreferenceTarget(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "requirements.txt", "flask==2.0\nnose==1.3\n")

	stub := &scriptedLLM{narration: "Migration planned."}
	cfg := config.DefaultConfig()
	prefs := memory.OpenLongTerm(filepath.Join(t.TempDir(), "prefs.json"))
	w := NewWorker(stub, cfg, prefs)

	result := w.Work(context.Background(), protocol.PlanRequest{
		Action:   protocol.ActionMigration,
		RepoPath: dir,
	})

	require.NotNil(t, result.Bundle.Migration)
	assert.Equal(t, "flask", result.Bundle.Migration.From)
	assert.Equal(t, "fastapi", result.Bundle.Migration.To)
	assert.True(t, result.Bundle.Migration.Compatible)
	assert.NotEmpty(t, result.Bundle.Migration.Steps)
	assert.NotEmpty(t, result.Bundle.Migration.BreakingChanges)
}

func TestWorkNarrationFailureUsesApology(t *testing.T) {
	stub := &scriptedLLM{err: errors.New("model down")}
	w := newTestWorker(t, stub)

	result := w.Work(context.Background(), protocol.PlanRequest{
		Action:      protocol.ActionGeneralChat,
		Instruction: "hello",
	})

	assert.Equal(t, workerApology, result.Draft)
}

func TestWorkUnknownActionFallsBackToChat(t *testing.T) {
	stub := &scriptedLLM{narration: "chatting"}
	w := newTestWorker(t, stub)

	result := w.Work(context.Background(), protocol.PlanRequest{Action: "telepathy"})

	assert.Equal(t, "chatting", result.Draft)
	assert.Empty(t, result.ToolsUsed)
}
