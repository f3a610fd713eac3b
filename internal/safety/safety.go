// Package safety implements the layered safety gates: the request pre-check
// used by the Planner and the three draft-screening tiers used by the
// Evaluator. Rules live in ordered declarative tables, one matcher evaluates
// them, so the pattern set can be audited and tested as data.
package safety

import (
	"regexp"
	"strings"
)

// Rule is one entry of a screening table. Suppressors are phrases whose
// presence anywhere in the text waives the match; they let the model quote a
// dangerous command inside its own refusal without tripping the gate.
type Rule struct {
	Pattern     *regexp.Regexp
	Category    string
	Suppressors []string
}

// refusalSuppressors waive matches inside refusal language.
var refusalSuppressors = []string{"cannot", "do not", "refuse", "not allowed"}

// executionSuppressors additionally waive matches framed as warnings.
var executionSuppressors = []string{"cannot", "do not", "refuse", "not allowed", "warning", "avoid"}

// requestRules is the Planner's destructive-request pre-check. No
// suppressors: a user asking for deletion is blocked even when polite.
var requestRules = []Rule{
	{Pattern: regexp.MustCompile(`rm\s+-rf`), Category: "file deletion"},
	{Pattern: regexp.MustCompile(`delete\s+.*file`), Category: "file deletion"},
	{Pattern: regexp.MustCompile(`drop\s+table`), Category: "database destruction"},
	{Pattern: regexp.MustCompile(`format\s+disk`), Category: "disk formatting"},
	{Pattern: regexp.MustCompile(`shutdown`), Category: "system disruption"},
	{Pattern: regexp.MustCompile(`sudo\s+`), Category: "privilege escalation"},
	{Pattern: regexp.MustCompile(`systemctl\s+(stop|restart|disable)`), Category: "service disruption"},
	{Pattern: regexp.MustCompile(`kubectl\s+delete`), Category: "orchestration deletion"},
	{Pattern: regexp.MustCompile(`chmod\s+777`), Category: "unsafe permissions"},
	{Pattern: regexp.MustCompile(`remove\s+.*directory`), Category: "file deletion"},
	{Pattern: regexp.MustCompile(`uninstall`), Category: "removal"},
	{Pattern: regexp.MustCompile(`destroy`), Category: "destruction"},
}

// destructiveRules is the Evaluator's tier-1 scan over draft text.
var destructiveRules = []Rule{
	{Pattern: regexp.MustCompile(`rm\s+-rf`), Category: "file deletion", Suppressors: refusalSuppressors},
	{Pattern: regexp.MustCompile(`rm\s+.*-r`), Category: "recursive deletion", Suppressors: refusalSuppressors},
	{Pattern: regexp.MustCompile(`delete\s+.*file`), Category: "file deletion", Suppressors: refusalSuppressors},
	{Pattern: regexp.MustCompile(`drop\s+table`), Category: "database drop", Suppressors: refusalSuppressors},
	{Pattern: regexp.MustCompile(`drop\s+database`), Category: "database drop", Suppressors: refusalSuppressors},
	{Pattern: regexp.MustCompile(`truncate\s+table`), Category: "table truncation", Suppressors: refusalSuppressors},
	{Pattern: regexp.MustCompile(`delete\s+from.*where\s+1=1`), Category: "mass deletion", Suppressors: refusalSuppressors},
	{Pattern: regexp.MustCompile(`format\s+disk`), Category: "disk formatting", Suppressors: refusalSuppressors},
	{Pattern: regexp.MustCompile(`shutdown`), Category: "system shutdown", Suppressors: refusalSuppressors},
	{Pattern: regexp.MustCompile(`sudo\s+`), Category: "privilege escalation", Suppressors: refusalSuppressors},
	{Pattern: regexp.MustCompile(`systemctl\s+(stop|restart|disable)`), Category: "service control", Suppressors: refusalSuppressors},
	{Pattern: regexp.MustCompile(`kubectl\s+delete`), Category: "orchestration deletion", Suppressors: refusalSuppressors},
	{Pattern: regexp.MustCompile(`chmod\s+777`), Category: "unsafe permissions", Suppressors: refusalSuppressors},
	{Pattern: regexp.MustCompile(`chmod\s+.*-r\s+777`), Category: "unsafe permissions", Suppressors: refusalSuppressors},
	{Pattern: regexp.MustCompile(`uninstall`), Category: "removal", Suppressors: refusalSuppressors},
	{Pattern: regexp.MustCompile(`destroy`), Category: "destruction", Suppressors: refusalSuppressors},
	{Pattern: regexp.MustCompile(`kill\s+-9`), Category: "force kill", Suppressors: refusalSuppressors},
	{Pattern: regexp.MustCompile(`pkill\s+-9`), Category: "force kill", Suppressors: refusalSuppressors},
	{Pattern: regexp.MustCompile(`os\.system`), Category: "system call", Suppressors: refusalSuppressors},
	{Pattern: regexp.MustCompile(`eval\s*\(`), Category: "dynamic execution", Suppressors: refusalSuppressors},
	{Pattern: regexp.MustCompile(`exec\s*\(`), Category: "dynamic execution", Suppressors: refusalSuppressors},
	{Pattern: regexp.MustCompile(`__import__`), Category: "dynamic import", Suppressors: refusalSuppressors},
}

// executionRules is the Evaluator's tier-2 scan: shell and interpreter
// invocation syntax inside the draft.
var executionRules = []Rule{
	{Pattern: regexp.MustCompile(`subprocess\.`), Category: "subprocess", Suppressors: executionSuppressors},
	{Pattern: regexp.MustCompile(`os\.system`), Category: "system call", Suppressors: executionSuppressors},
	{Pattern: regexp.MustCompile(`os\.popen`), Category: "system call", Suppressors: executionSuppressors},
	{Pattern: regexp.MustCompile(`eval\s*\(`), Category: "dynamic execution", Suppressors: executionSuppressors},
	{Pattern: regexp.MustCompile(`exec\s*\(`), Category: "dynamic execution", Suppressors: executionSuppressors},
	{Pattern: regexp.MustCompile(`bash\s+-c`), Category: "shell invocation", Suppressors: executionSuppressors},
	{Pattern: regexp.MustCompile(`sh\s+-c`), Category: "shell invocation", Suppressors: executionSuppressors},
	{Pattern: regexp.MustCompile(`python\s+-c`), Category: "inline interpreter", Suppressors: executionSuppressors},
	{Pattern: regexp.MustCompile(`exec\.command`), Category: "subprocess", Suppressors: executionSuppressors},
}

// diffCriticalPatterns are removal lines that upgrade a bulk deletion to an
// unsafe diff. Matched case-insensitively against the raw (non-lowered) text.
var diffCriticalPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)-\s*import\s+os`),
	regexp.MustCompile(`(?i)-\s*import\s+subprocess`),
	regexp.MustCompile(`(?i)-\s*def\s+.*delete`),
	regexp.MustCompile(`(?i)-\s*def\s+.*remove`),
	regexp.MustCompile(`(?i)-\s*func\s+.*Delete`),
	regexp.MustCompile(`(?i)-\s*DROP\s+TABLE`),
}

// DiffThresholds parameterize the tier-3 heuristic. The defaults are
// empirical constants; they are configurable rather than hard-coded because
// their derivation was never recorded.
type DiffThresholds struct {
	MinRemovals  int // deletion floor before the heuristic applies
	RemovalRatio int // removals must exceed ratio * additions
}

// DefaultDiffThresholds returns the production tuning.
func DefaultDiffThresholds() DiffThresholds {
	return DiffThresholds{MinRemovals: 50, RemovalRatio: 2}
}

// Screener evaluates the rule tables.
type Screener struct {
	Diff DiffThresholds
}

// NewScreener returns a screener with the given diff thresholds, or the
// defaults when zero-valued.
func NewScreener(diff DiffThresholds) *Screener {
	if diff.MinRemovals == 0 {
		diff.MinRemovals = DefaultDiffThresholds().MinRemovals
	}
	if diff.RemovalRatio == 0 {
		diff.RemovalRatio = DefaultDiffThresholds().RemovalRatio
	}
	return &Screener{Diff: diff}
}

// matchRules runs one table over lowered text, honoring suppressors. It
// returns the category of the first firing rule.
func matchRules(rules []Rule, text string) (string, bool) {
	lowered := strings.ToLower(text)
	for _, rule := range rules {
		if !rule.Pattern.MatchString(lowered) {
			continue
		}
		suppressed := false
		for _, phrase := range rule.Suppressors {
			if strings.Contains(lowered, phrase) {
				suppressed = true
				break
			}
		}
		if suppressed {
			continue
		}
		return rule.Category, true
	}
	return "", false
}

// CheckRequest reports whether a user request asks for a destructive
// operation. This is the Planner's hard pre-check; it is never waived.
func (s *Screener) CheckRequest(text string) bool {
	_, matched := matchRules(requestRules, text)
	return matched
}

// CheckDraft is tier 1: destructive commands in the draft, with refusal
// suppression.
func (s *Screener) CheckDraft(text string) (string, bool) {
	return matchRules(destructiveRules, text)
}

// CheckExecution is tier 2: execution-command syntax in the draft, with
// refusal and warning suppression.
func (s *Screener) CheckExecution(text string) (string, bool) {
	return matchRules(executionRules, text)
}

// CheckDiff is tier 3: the conjunctive unsafe-diff heuristic. It fires only
// when the text contains unified-diff markers, removals exceed the floor and
// the addition ratio, AND a critical removal pattern co-occurs. Bulk deletion
// alone never fires.
func (s *Screener) CheckDiff(text string) bool {
	if !strings.Contains(text, "---") || !strings.Contains(text, "+++") {
		return false
	}

	var removals, additions int
	for _, line := range strings.Split(text, "\n") {
		switch {
		case strings.HasPrefix(line, "---") || strings.HasPrefix(line, "+++"):
		case strings.HasPrefix(line, "-"):
			removals++
		case strings.HasPrefix(line, "+"):
			additions++
		}
	}

	if removals <= s.Diff.MinRemovals || removals <= additions*s.Diff.RemovalRatio {
		return false
	}

	for _, pattern := range diffCriticalPatterns {
		if pattern.MatchString(text) {
			return true
		}
	}
	return false
}

// FallbackResponse is the fixed safe substitute returned whenever a gate
// fires. It is deliberately verbatim-stable so callers and tests can rely on
// its content.
const FallbackResponse = `I apologize, but I cannot perform that operation. I am a read-only DevOps analysis tool designed for code intelligence and log analysis.

**What I CAN do:**
- Analyze codebases and generate documentation
- Parse logs and identify incidents
- Suggest safe refactoring improvements
- Generate migration plans (text-only)
- Build dependency graphs
- Calculate code complexity

**What I CANNOT do:**
- Execute shell commands or system operations
- Delete or modify files
- Run code or execute scripts
- Modify system configurations
- Perform destructive database operations

Would you like me to suggest a safe alternative that provides read-only analysis?`
