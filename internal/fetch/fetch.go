// Package fetch resolves GitHub references to local working directories.
// Repositories are shallow-cloned into a per-user cache and reused across
// sessions; a fetch failure is never fatal to a message.
package fetch

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"autopilot/internal/logging"
)

// Repo is a parsed GitHub reference.
type Repo struct {
	Owner string
	Name  string
}

// Slug returns owner/name.
func (r Repo) Slug() string { return r.Owner + "/" + r.Name }

// cacheDirName is the directory under the system temp dir holding clones.
const cacheDirName = "autopilot_repos"

var (
	httpsPattern = regexp.MustCompile(`^https?://github\.com/([\w.-]+)/([\w.-]+?)(?:\.git)?/?$`)
	sshPattern   = regexp.MustCompile(`^git@github\.com:([\w.-]+)/([\w.-]+?)(?:\.git)?$`)
	shortPattern = regexp.MustCompile(`^([\w.-]+)/([\w.-]+)$`)
	// URLPattern finds a GitHub URL embedded anywhere in free text.
	URLPattern = regexp.MustCompile(`https?://github\.com/[\w.-]+/[\w.-]+`)
)

// ParseURL accepts https URLs, ssh remotes, and bare owner/repo slugs.
func ParseURL(ref string) (Repo, error) {
	ref = strings.TrimSpace(ref)
	for _, pattern := range []*regexp.Regexp{httpsPattern, sshPattern, shortPattern} {
		if m := pattern.FindStringSubmatch(ref); m != nil {
			return Repo{Owner: m[1], Name: m[2]}, nil
		}
	}
	return Repo{}, fmt.Errorf("unrecognized repository reference: %q", ref)
}

// Fetcher clones and caches repositories.
type Fetcher struct {
	// Token authenticates clones of private repositories. Optional.
	Token string
	// CacheRoot overrides the cache location; defaults to the system temp dir.
	CacheRoot string
}

// NewFetcher returns a Fetcher using the given GitHub token.
func NewFetcher(token string) *Fetcher {
	return &Fetcher{Token: token}
}

func (f *Fetcher) cacheDir() string {
	root := f.CacheRoot
	if root == "" {
		root = os.TempDir()
	}
	return filepath.Join(root, cacheDirName)
}

func (f *Fetcher) localPath(repo Repo) string {
	return filepath.Join(f.cacheDir(), repo.Owner+"_"+repo.Name)
}

// CloneOrReuse returns a local checkout of the repository, cloning shallowly
// on first use and reusing the cached copy afterwards.
func (f *Fetcher) CloneOrReuse(ctx context.Context, repo Repo) (string, error) {
	dest := f.localPath(repo)
	if _, err := os.Stat(filepath.Join(dest, ".git")); err == nil {
		logging.Debug("reusing cached clone", "repo", repo.Slug(), "path", dest)
		return dest, nil
	}

	if err := os.MkdirAll(f.cacheDir(), 0o755); err != nil {
		return "", fmt.Errorf("create cache dir: %w", err)
	}

	cloneURL := "https://github.com/" + repo.Slug() + ".git"
	if f.Token != "" {
		cloneURL = "https://" + f.Token + "@github.com/" + repo.Slug() + ".git"
	}

	logging.Info("cloning repository", "repo", repo.Slug())
	cmd := exec.CommandContext(ctx, "git", "clone", "--depth", "1", cloneURL, dest)
	if out, err := cmd.CombinedOutput(); err != nil {
		os.RemoveAll(dest) // partial clones poison the cache
		return "", fmt.Errorf("git clone %s: %s: %w", repo.Slug(), redactToken(string(out), f.Token), err)
	}
	return dest, nil
}

// Update pulls the latest commit into a cached clone. Errors are returned but
// callers treat the stale copy as usable.
func (f *Fetcher) Update(ctx context.Context, repo Repo) error {
	dest := f.localPath(repo)
	cmd := exec.CommandContext(ctx, "git", "-C", dest, "pull", "--ff-only", "--depth", "1")
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("git pull %s: %s: %w", repo.Slug(), redactToken(string(out), f.Token), err)
	}
	return nil
}

// CachedRepo is one entry of the clone cache.
type CachedRepo struct {
	Name     string    `json:"name"`
	Path     string    `json:"path"`
	Modified time.Time `json:"modified"`
}

// ListCached returns the cached clones, newest first.
func (f *Fetcher) ListCached() ([]CachedRepo, error) {
	entries, err := os.ReadDir(f.cacheDir())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var repos []CachedRepo
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		repos = append(repos, CachedRepo{
			Name:     e.Name(),
			Path:     filepath.Join(f.cacheDir(), e.Name()),
			Modified: info.ModTime(),
		})
	}
	sort.Slice(repos, func(i, j int) bool { return repos[i].Modified.After(repos[j].Modified) })
	return repos, nil
}

// Cleanup removes cached clones older than maxAge. Zero maxAge removes all.
func (f *Fetcher) Cleanup(maxAge time.Duration) (int, error) {
	repos, err := f.ListCached()
	if err != nil {
		return 0, err
	}
	removed := 0
	cutoff := time.Now().Add(-maxAge)
	for _, r := range repos {
		if maxAge > 0 && r.Modified.After(cutoff) {
			continue
		}
		if err := os.RemoveAll(r.Path); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, nil
}

// redactToken keeps credentials out of error messages and logs.
func redactToken(s, token string) string {
	if token == "" {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(strings.ReplaceAll(s, token, "***"))
}
