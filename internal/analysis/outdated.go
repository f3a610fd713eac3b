package analysis

import (
	"path/filepath"
	"regexp"
	"strings"
)

// OutdatedDep is a dependency flagged by the deprecation table.
type OutdatedDep struct {
	Name        string `json:"name"`
	Manifest    string `json:"manifest"`
	Reason      string `json:"reason"`
	Replacement string `json:"replacement,omitempty"`
}

// OutdatedReport lists dependencies known to be deprecated or abandoned.
type OutdatedReport struct {
	Deps             []OutdatedDep `json:"outdated"`
	ManifestsScanned []string      `json:"manifests_scanned"`
}

// Known-deprecated packages per manifest kind. Static table; not a registry
// lookup, so offline runs behave the same as online ones.
var deprecatedDeps = map[string][]OutdatedDep{
	"requirements.txt": {
		{Name: "nose", Reason: "unmaintained since 2015", Replacement: "pytest"},
		{Name: "flask-script", Reason: "superseded by Flask's built-in CLI", Replacement: "flask.cli"},
		{Name: "pycrypto", Reason: "abandoned, known CVEs", Replacement: "pycryptodome"},
		{Name: "imp", Reason: "removed in Python 3.12", Replacement: "importlib"},
	},
	"go.mod": {
		{Name: "github.com/pkg/errors", Reason: "frozen; wrapping is in the standard library since Go 1.13", Replacement: "fmt %w"},
		{Name: "github.com/golang/protobuf", Reason: "superseded", Replacement: "google.golang.org/protobuf"},
		{Name: "io/ioutil", Reason: "deprecated since Go 1.16", Replacement: "os and io"},
	},
	"package.json": {
		{Name: "request", Reason: "deprecated in 2020", Replacement: "fetch or axios"},
		{Name: "moment", Reason: "in maintenance mode", Replacement: "date-fns or Temporal"},
	},
}

var manifestNames = []string{"requirements.txt", "go.mod", "package.json"}

// ScanOutdated checks the repository's dependency manifests against the
// deprecation table.
func (w *Walker) ScanOutdated(root string) OutdatedReport {
	var report OutdatedReport
	for _, manifest := range manifestNames {
		file := ReadFile(filepath.Join(root, manifest))
		if !file.Exists {
			continue
		}
		report.ManifestsScanned = append(report.ManifestsScanned, manifest)

		content := strings.ToLower(file.Content)
		for _, dep := range deprecatedDeps[manifest] {
			if containsDep(content, strings.ToLower(dep.Name)) {
				flagged := dep
				flagged.Manifest = manifest
				report.Deps = append(report.Deps, flagged)
			}
		}
	}
	return report
}

// containsDep matches a dependency name on a word boundary so "request" does
// not match "requests".
func containsDep(content, name string) bool {
	pattern := regexp.QuoteMeta(name) + `(\s|$|==|>=|<=|@|")`
	re, err := regexp.Compile(`(?m)(^|\s|")` + pattern)
	if err != nil {
		return strings.Contains(content, name)
	}
	return re.MatchString(content)
}
