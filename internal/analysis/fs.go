// Package analysis provides the read-only code-intelligence capabilities the
// Worker dispatches to: directory walking, Go import extraction, cyclomatic
// complexity, dead-code and duplicate detection, log parsing and clustering,
// migration planning and postmortem assembly. Every function is a pure
// function over paths or already-parsed data and returns JSON-serializable
// results; nothing here executes code or mutates files.
package analysis

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// DefaultExcludeDirs are directory names skipped by every repository walk.
var DefaultExcludeDirs = []string{
	".git", "__pycache__", "venv", "node_modules",
	".autopilot", "tests", "dist", "build",
}

// Walker walks repository trees with a configurable exclusion list. Exclusion
// entries are matched as doublestar globs against directory base names, so
// both plain names (".git") and patterns (".*cache") work.
type Walker struct {
	ExcludeDirs []string
}

// NewWalker returns a Walker with the given exclusions, or the defaults when
// none are supplied.
func NewWalker(excludeDirs []string) *Walker {
	if len(excludeDirs) == 0 {
		excludeDirs = DefaultExcludeDirs
	}
	return &Walker{ExcludeDirs: excludeDirs}
}

func (w *Walker) excluded(name string) bool {
	for _, pattern := range w.ExcludeDirs {
		if ok, err := doublestar.Match(pattern, name); err == nil && ok {
			return true
		}
	}
	return false
}

// GoFiles returns repo-relative paths of all Go source files under root,
// sorted, skipping excluded directories and _ -prefixed trees.
func (w *Walker) GoFiles(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil // unreadable entries are skipped, not fatal
		}
		if d.IsDir() {
			name := d.Name()
			if path != root && (w.excluded(name) || strings.HasPrefix(name, "_")) {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasSuffix(d.Name(), ".go") {
			rel, relErr := filepath.Rel(root, path)
			if relErr != nil {
				rel = path
			}
			files = append(files, rel)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// FileInfo is the result of reading a single file.
type FileInfo struct {
	Exists  bool   `json:"exists"`
	Content string `json:"content"`
	Size    int    `json:"size"`
	Lines   int    `json:"lines"`
	Error   string `json:"error,omitempty"`
}

// ReadFile reads a file and returns its contents with metadata. Missing files
// are reported in-band, not as errors.
func ReadFile(path string) FileInfo {
	data, err := os.ReadFile(path)
	if err != nil {
		return FileInfo{Error: err.Error()}
	}
	content := string(data)
	return FileInfo{
		Exists:  true,
		Content: content,
		Size:    len(content),
		Lines:   len(strings.Split(content, "\n")),
	}
}

// TreeReport summarizes a repository's directory structure.
type TreeReport struct {
	Root      string   `json:"root"`
	Files     []string `json:"files"`
	FileCount int      `json:"file_count"`
	DirCount  int      `json:"dir_count"`
}

// DirectoryTree walks the repository and returns a flat file inventory.
// Binary build products are skipped.
func (w *Walker) DirectoryTree(root string) (TreeReport, error) {
	report := TreeReport{Root: root}
	skipExt := map[string]bool{
		".exe": true, ".so": true, ".dll": true, ".a": true, ".o": true,
		".pyc": true, ".pyo": true,
	}

	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if path != root && w.excluded(d.Name()) {
				return filepath.SkipDir
			}
			if path != root {
				report.DirCount++
			}
			return nil
		}
		if skipExt[filepath.Ext(d.Name())] {
			return nil
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			rel = path
		}
		report.Files = append(report.Files, rel)
		return nil
	})
	if err != nil {
		return report, err
	}
	sort.Strings(report.Files)
	report.FileCount = len(report.Files)
	return report, nil
}
