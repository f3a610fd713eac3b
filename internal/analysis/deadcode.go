package analysis

import "path/filepath"

// DeadCodeReport lists identifiers that look unused. The heuristic is
// name-frequency based: a function or import whose name appears exactly once
// across the repository has no caller besides its declaration.
type DeadCodeReport struct {
	UnusedFunctions []string `json:"unused_functions"`
	UnusedImports   []string `json:"unused_imports"`
	TotalFunctions  int      `json:"total_functions"`
	TotalImports    int      `json:"total_imports"`
}

const deadCodeResultLimit = 20

// DetectDeadCode scans Go files under root for likely-unused functions and
// imports. This is a heuristic, not call-graph analysis; exported API entry
// points will show up as false positives by design of the usage-count rule.
func (w *Walker) DetectDeadCode(root string) (DeadCodeReport, error) {
	files, err := w.GoFiles(root)
	if err != nil {
		return DeadCodeReport{}, err
	}

	funcCount := make(map[string]int)
	importCount := make(map[string]int)
	var funcOrder, importOrder []string

	for _, f := range files {
		full := filepath.Join(root, f)

		complexity := ComputeComplexity(full)
		for _, fn := range complexity.Functions {
			if funcCount[fn.Name] == 0 {
				funcOrder = append(funcOrder, fn.Name)
			}
			funcCount[fn.Name]++
		}

		imports := ExtractImports(full)
		for _, imp := range imports.Imports {
			if importCount[imp] == 0 {
				importOrder = append(importOrder, imp)
			}
			importCount[imp]++
		}
	}

	report := DeadCodeReport{
		TotalFunctions: len(funcOrder),
		TotalImports:   len(importOrder),
	}
	for _, name := range funcOrder {
		if funcCount[name] == 1 && len(report.UnusedFunctions) < deadCodeResultLimit {
			report.UnusedFunctions = append(report.UnusedFunctions, name)
		}
	}
	for _, imp := range importOrder {
		if importCount[imp] == 1 && len(report.UnusedImports) < deadCodeResultLimit {
			report.UnusedImports = append(report.UnusedImports, imp)
		}
	}

	return report, nil
}
