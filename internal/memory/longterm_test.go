package memory

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLongTermPersistsAcrossOpens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.json")

	lt := OpenLongTerm(path)
	lt.SetPreference("style", "terse")
	lt.AddAnalyzedRepo("/repos/acme_api", "12 files, 3 dependency edges")
	lt.SetMigrationPreference("django", "fastapi")

	reopened := OpenLongTerm(path)
	assert.Equal(t, "terse", reopened.Preference("style"))
	assert.Equal(t, map[string]string{"/repos/acme_api": "12 files, 3 dependency edges"},
		reopened.AnalyzedRepos())
	assert.Equal(t, "fastapi", reopened.MigrationTarget("django"))
}

func TestLongTermCorruptFileResetsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	lt := OpenLongTerm(path)
	assert.Empty(t, lt.Preference("anything"))
	assert.Empty(t, lt.AnalyzedRepos())

	// The store still works after the reset.
	lt.SetPreference("k", "v")
	assert.Equal(t, "v", OpenLongTerm(path).Preference("k"))
}

func TestMigrationTargetDefaultsToFastAPI(t *testing.T) {
	lt := OpenLongTerm(filepath.Join(t.TempDir(), "prefs.json"))
	assert.Equal(t, "fastapi", lt.MigrationTarget("flask"))
}

func TestAnalyzedRepoSummaryOverwrites(t *testing.T) {
	lt := OpenLongTerm(filepath.Join(t.TempDir(), "prefs.json"))
	lt.AddAnalyzedRepo("/repos/acme_api", "10 files")
	lt.AddAnalyzedRepo("/repos/acme_api", "14 files")

	repos := lt.AnalyzedRepos()
	assert.Len(t, repos, 1)
	assert.Equal(t, "14 files", repos["/repos/acme_api"])
}

func TestPreferencesString(t *testing.T) {
	lt := OpenLongTerm(filepath.Join(t.TempDir(), "prefs.json"))
	assert.Empty(t, lt.PreferencesString())

	lt.SetPreference("tone", "direct")
	lt.AddAnalyzedRepo("/repos/acme_api", "12 files")
	rendered := lt.PreferencesString()
	assert.Contains(t, rendered, "tone: direct")
	assert.Contains(t, rendered, "acme_api")
}
