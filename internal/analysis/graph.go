package analysis

import (
	"path/filepath"
	"strings"
)

// Edge is a resolved import relationship between two files.
type Edge struct {
	From string `json:"from"`
	To   string `json:"to"`
	Type string `json:"type"`
}

// GraphReport is a file-level dependency graph: node = file, edge = import
// resolved to another file in the same repository.
type GraphReport struct {
	Nodes     []string `json:"nodes"`
	Edges     []Edge   `json:"edges"`
	NodeCount int      `json:"node_count"`
	EdgeCount int      `json:"edge_count"`
}

// DependencyGraph builds the intra-repo dependency graph for Go files under
// root. An import is resolved when its trailing path segments name a package
// directory containing one of the scanned files.
func (w *Walker) DependencyGraph(root string) (GraphReport, error) {
	files, err := w.GoFiles(root)
	if err != nil {
		return GraphReport{}, err
	}

	// Package directory -> files inside it.
	byDir := make(map[string][]string)
	for _, f := range files {
		dir := filepath.ToSlash(filepath.Dir(f))
		byDir[dir] = append(byDir[dir], f)
	}

	report := GraphReport{Nodes: files}
	seen := make(map[[2]string]bool)

	for _, f := range files {
		imports := ExtractImports(filepath.Join(root, f))
		for _, imp := range imports.Imports {
			target, ok := resolveImport(imp, byDir)
			if !ok {
				continue
			}
			for _, dest := range target {
				if dest == f {
					continue
				}
				key := [2]string{f, dest}
				if seen[key] {
					continue
				}
				seen[key] = true
				report.Edges = append(report.Edges, Edge{From: f, To: dest, Type: "import"})
			}
		}
	}

	report.NodeCount = len(report.Nodes)
	report.EdgeCount = len(report.Edges)
	return report, nil
}

// resolveImport maps an import path to repo files by matching its suffix
// against known package directories.
func resolveImport(importPath string, byDir map[string][]string) ([]string, bool) {
	for dir, files := range byDir {
		if dir == "." {
			continue
		}
		if importPath == dir || strings.HasSuffix(importPath, "/"+dir) {
			return files, true
		}
	}
	return nil, false
}
