package analysis

import (
	"fmt"
	"path/filepath"
)

// RefactorSuggestion is one actionable improvement found by the static rules.
type RefactorSuggestion struct {
	File       string `json:"file"`
	Kind       string `json:"type"`
	Severity   string `json:"severity"`
	Suggestion string `json:"suggestion"`
}

// Suggestion kinds.
const (
	RefactorDecompose    = "decompose"
	RefactorDecouple     = "decouple"
	RefactorDedup        = "deduplicate"
	RefactorPruneImports = "prune-imports"
)

const refactorResultLimit = 25

// SuggestRefactors runs rule-based checks over the repository: files whose
// average complexity exceeds 10 should be decomposed, files importing more
// than 20 packages should be decoupled, duplicate pairs should be merged,
// and likely-unused imports should be pruned.
func (w *Walker) SuggestRefactors(root string, minDuplicateLines int) ([]RefactorSuggestion, error) {
	files, err := w.GoFiles(root)
	if err != nil {
		return nil, err
	}

	var suggestions []RefactorSuggestion
	add := func(s RefactorSuggestion) {
		if len(suggestions) < refactorResultLimit {
			suggestions = append(suggestions, s)
		}
	}

	for _, f := range files {
		full := filepath.Join(root, f)

		complexity := ComputeComplexity(full)
		if complexity.Error == "" && complexity.Average > 10 {
			add(RefactorSuggestion{
				File:     f,
				Kind:     RefactorDecompose,
				Severity: "HIGH",
				Suggestion: fmt.Sprintf(
					"average cyclomatic complexity is %.1f across %d functions; split the largest functions into smaller units",
					complexity.Average, complexity.FunctionCount),
			})
		}

		imports := ExtractImports(full)
		if len(imports.Imports) > 20 {
			add(RefactorSuggestion{
				File:     f,
				Kind:     RefactorDecouple,
				Severity: "MEDIUM",
				Suggestion: fmt.Sprintf(
					"file imports %d packages; extract cohesive pieces so each file depends on less",
					len(imports.Imports)),
			})
		}
	}

	duplicates, err := w.DetectDuplicates(root, minDuplicateLines)
	if err == nil {
		for _, pair := range duplicates.Pairs {
			add(RefactorSuggestion{
				File:     pair.File1,
				Kind:     RefactorDedup,
				Severity: "MEDIUM",
				Suggestion: fmt.Sprintf(
					"shares %d duplicated block(s) with %s; extract the common code into a shared helper",
					len(pair.Blocks), pair.File2),
			})
		}
	}

	deadCode, err := w.DetectDeadCode(root)
	if err == nil && len(deadCode.UnusedImports) > 0 {
		add(RefactorSuggestion{
			File:     "(repository)",
			Kind:     RefactorPruneImports,
			Severity: "LOW",
			Suggestion: fmt.Sprintf(
				"%d likely-unused import(s) detected across the repository; verify and remove stale dependencies",
				len(deadCode.UnusedImports)),
		})
	}

	return suggestions, nil
}
