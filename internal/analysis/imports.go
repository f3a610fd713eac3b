package analysis

import (
	"go/parser"
	"go/token"
	"strconv"
	"strings"
)

// ImportReport lists the imports of a single Go source file.
type ImportReport struct {
	Imports []string      `json:"imports"`
	Named   []NamedImport `json:"named_imports"`
	Errors  []string      `json:"errors,omitempty"`
}

// NamedImport is an import with an explicit local name.
type NamedImport struct {
	Path string `json:"path"`
	Name string `json:"name"`
}

// ExtractImports parses a Go file and returns its import paths. Parse errors
// are reported in-band so a single broken file never aborts a repo scan.
func ExtractImports(path string) ImportReport {
	var report ImportReport

	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, path, nil, parser.ImportsOnly)
	if err != nil {
		report.Errors = append(report.Errors, err.Error())
		return report
	}

	for _, imp := range file.Imports {
		importPath, err := strconv.Unquote(imp.Path.Value)
		if err != nil {
			importPath = strings.Trim(imp.Path.Value, `"`)
		}
		report.Imports = append(report.Imports, importPath)
		if imp.Name != nil && imp.Name.Name != "_" && imp.Name.Name != "." {
			report.Named = append(report.Named, NamedImport{Path: importPath, Name: imp.Name.Name})
		}
	}

	return report
}
