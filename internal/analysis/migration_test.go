package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlanMigrationKnownPair(t *testing.T) {
	plan := PlanMigration("Flask", "FastAPI")

	assert.True(t, plan.Compatible)
	assert.Equal(t, "flask", plan.From)
	assert.Equal(t, "fastapi", plan.To)
	assert.Equal(t, "MEDIUM", plan.Effort)
	require.Len(t, plan.Steps, 6)
	assert.Equal(t, 1, plan.Steps[0].Order)
	assert.Contains(t, plan.Steps[1].Title, "Pydantic")
	require.NotEmpty(t, plan.BreakingChanges)
	assert.Contains(t, plan.BreakingChanges[0], "request object")
}

func TestPlanMigrationDeterministic(t *testing.T) {
	first := PlanMigration("django", "fastapi")
	second := PlanMigration("django", "fastapi")
	assert.Equal(t, first, second)
}

func TestPlanMigrationUnknownPairGetsGenericPlan(t *testing.T) {
	plan := PlanMigration("cobol", "rust")

	assert.False(t, plan.Compatible)
	assert.Equal(t, "UNKNOWN", plan.Effort)
	assert.NotEmpty(t, plan.Notes)
	require.Len(t, plan.Steps, 4)
	assert.Contains(t, plan.Steps[0].Description, "cobol")
	require.NotEmpty(t, plan.BreakingChanges, "even the generic plan names breaking changes")
	assert.Contains(t, plan.BreakingChanges[0], "cobol")
}

func TestDetectFrameworks(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, dir, "requirements.txt", "flask==2.3\nrequests\n")

	w := NewWalker(nil)
	assert.Equal(t, []string{"flask"}, w.DetectFrameworks(dir))

	assert.Empty(t, w.DetectFrameworks(t.TempDir()))
}

func TestScanOutdatedFlagsDeprecatedDeps(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, dir, "requirements.txt", "nose==1.3.7\nflask==2.3\npycrypto\n")

	w := NewWalker(nil)
	report := w.ScanOutdated(dir)

	assert.Equal(t, []string{"requirements.txt"}, report.ManifestsScanned)
	var names []string
	for _, d := range report.Deps {
		names = append(names, d.Name)
	}
	assert.ElementsMatch(t, []string{"nose", "pycrypto"}, names)
}

func TestScanOutdatedWordBoundary(t *testing.T) {
	dir := t.TempDir()
	// "requests" must not match the deprecated "request" package.
	writeTestFile(t, dir, "package.json", `{"dependencies":{"requests-like":"1.0","moment":"2.29"}}`)

	w := NewWalker(nil)
	report := w.ScanOutdated(dir)

	var names []string
	for _, d := range report.Deps {
		names = append(names, d.Name)
	}
	assert.NotContains(t, names, "request")
	assert.Contains(t, names, "moment")
}

func TestGenerateDocsCoversGoFiles(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, dir, "main.go", `package main

import "fmt"

func main() { fmt.Println("hi") }
`)
	writeTestFile(t, dir, "README.md", "# app\n")

	w := NewWalker(nil)
	docs, err := w.GenerateDocs(dir)
	require.NoError(t, err)

	assert.Equal(t, 1, docs.FilesCovered)
	assert.Contains(t, docs.Document, "## Structure")
	assert.Contains(t, docs.Document, "`main.go`")
	assert.Contains(t, docs.Document, "| main |")
}

func TestSuggestRefactorsRules(t *testing.T) {
	dir := t.TempDir()

	// A file whose single function has complexity > 10.
	branchy := "package p\n\nfunc busy(a int) int {\n"
	for i := 0; i < 12; i++ {
		branchy += "\tif a > " + string(rune('0'+i%10)) + " {\n\t\ta++\n\t}\n"
	}
	branchy += "\treturn a\n}\n"
	writeTestFile(t, dir, "busy.go", branchy)

	w := NewWalker(nil)
	suggestions, err := w.SuggestRefactors(dir, 5)
	require.NoError(t, err)

	require.NotEmpty(t, suggestions)
	assert.Equal(t, RefactorDecompose, suggestions[0].Kind)
	assert.Equal(t, "HIGH", suggestions[0].Severity)
	assert.Equal(t, "busy.go", suggestions[0].File)
}

func TestSuggestRefactorsFlagsLikelyUnusedImports(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, dir, "a.go", `package p

import "strings"

func Trim(s string) string { return strings.TrimSpace(s) }
`)

	w := NewWalker(nil)
	suggestions, err := w.SuggestRefactors(dir, 5)
	require.NoError(t, err)

	var pruned *RefactorSuggestion
	for i := range suggestions {
		if suggestions[i].Kind == RefactorPruneImports {
			pruned = &suggestions[i]
		}
	}
	require.NotNil(t, pruned)
	assert.Equal(t, "LOW", pruned.Severity)
	assert.Contains(t, pruned.Suggestion, "1 likely-unused")
}
