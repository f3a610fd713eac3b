package memory

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"autopilot/internal/logging"
)

// prefsDocument is the on-disk shape of the long-term store. AnalyzedRepos
// maps a repository path to a one-line summary of its last analysis.
type prefsDocument struct {
	Preferences          map[string]string `json:"preferences"`
	AnalyzedRepos        map[string]string `json:"analyzed_repos"`
	MigrationPreferences map[string]string `json:"migration_preferences"`
}

// LongTerm is the cross-session preference store. Every mutation flushes to
// disk synchronously; a corrupt or missing file resets to empty rather than
// failing startup.
type LongTerm struct {
	mu   sync.Mutex
	path string
	doc  prefsDocument
}

// OpenLongTerm loads (or initializes) the preference store at path.
func OpenLongTerm(path string) *LongTerm {
	lt := &LongTerm{path: path, doc: emptyDocument()}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			logging.Warn("preference store unreadable, starting empty", "path", path, "error", err)
		}
		return lt
	}
	if err := json.Unmarshal(data, &lt.doc); err != nil {
		logging.Warn("preference store corrupt, starting empty", "path", path, "error", err)
		lt.doc = emptyDocument()
		return lt
	}
	if lt.doc.Preferences == nil {
		lt.doc.Preferences = make(map[string]string)
	}
	if lt.doc.AnalyzedRepos == nil {
		lt.doc.AnalyzedRepos = make(map[string]string)
	}
	if lt.doc.MigrationPreferences == nil {
		lt.doc.MigrationPreferences = make(map[string]string)
	}
	return lt
}

func emptyDocument() prefsDocument {
	return prefsDocument{
		Preferences:          make(map[string]string),
		AnalyzedRepos:        make(map[string]string),
		MigrationPreferences: make(map[string]string),
	}
}

// flush writes the store to disk. Caller holds the lock.
func (lt *LongTerm) flush() {
	data, err := json.MarshalIndent(lt.doc, "", "  ")
	if err != nil {
		logging.Error("marshal preference store", "error", err)
		return
	}
	if dir := filepath.Dir(lt.path); dir != "." {
		os.MkdirAll(dir, 0o755)
	}
	if err := os.WriteFile(lt.path, data, 0o644); err != nil {
		logging.Error("write preference store", "path", lt.path, "error", err)
	}
}

// SetPreference stores one key/value preference and flushes.
func (lt *LongTerm) SetPreference(key, value string) {
	lt.mu.Lock()
	defer lt.mu.Unlock()
	lt.doc.Preferences[key] = value
	lt.flush()
}

// Preference returns a stored preference value, or "".
func (lt *LongTerm) Preference(key string) string {
	lt.mu.Lock()
	defer lt.mu.Unlock()
	return lt.doc.Preferences[key]
}

// AddAnalyzedRepo records a completed analysis of the repository at path.
// Re-analyzing a repository replaces its summary.
func (lt *LongTerm) AddAnalyzedRepo(path, summary string) {
	lt.mu.Lock()
	defer lt.mu.Unlock()
	lt.doc.AnalyzedRepos[path] = summary
	lt.flush()
}

// AnalyzedRepos returns the recorded repositories keyed by path.
func (lt *LongTerm) AnalyzedRepos() map[string]string {
	lt.mu.Lock()
	defer lt.mu.Unlock()
	out := make(map[string]string, len(lt.doc.AnalyzedRepos))
	for k, v := range lt.doc.AnalyzedRepos {
		out[k] = v
	}
	return out
}

// SetMigrationPreference records a preferred migration target for a source
// framework.
func (lt *LongTerm) SetMigrationPreference(from, to string) {
	lt.mu.Lock()
	defer lt.mu.Unlock()
	lt.doc.MigrationPreferences[strings.ToLower(from)] = strings.ToLower(to)
	lt.flush()
}

// MigrationTarget returns the preferred target for a source framework,
// defaulting to fastapi when none is stored.
func (lt *LongTerm) MigrationTarget(from string) string {
	lt.mu.Lock()
	defer lt.mu.Unlock()
	if to, ok := lt.doc.MigrationPreferences[strings.ToLower(from)]; ok {
		return to
	}
	return "fastapi"
}

// PreferencesString renders the store for prompt injection.
func (lt *LongTerm) PreferencesString() string {
	lt.mu.Lock()
	defer lt.mu.Unlock()

	if len(lt.doc.Preferences) == 0 && len(lt.doc.AnalyzedRepos) == 0 {
		return ""
	}

	var b strings.Builder
	if len(lt.doc.Preferences) > 0 {
		keys := make([]string, 0, len(lt.doc.Preferences))
		for k := range lt.doc.Preferences {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		b.WriteString("Stored preferences:\n")
		for _, k := range keys {
			fmt.Fprintf(&b, "- %s: %s\n", k, lt.doc.Preferences[k])
		}
	}
	if len(lt.doc.AnalyzedRepos) > 0 {
		repos := make([]string, 0, len(lt.doc.AnalyzedRepos))
		for r := range lt.doc.AnalyzedRepos {
			repos = append(repos, r)
		}
		sort.Strings(repos)
		fmt.Fprintf(&b, "Previously analyzed repositories: %s\n",
			strings.Join(repos, ", "))
	}
	return b.String()
}
