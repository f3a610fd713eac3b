package analysis

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// DuplicateBlock is one shared block between two files.
type DuplicateBlock struct {
	Lines   int    `json:"lines"`
	Preview string `json:"content_preview"`
}

// DuplicatePair records duplicated blocks between a pair of files.
type DuplicatePair struct {
	File1      string           `json:"file1"`
	File2      string           `json:"file2"`
	Blocks     []DuplicateBlock `json:"common_blocks"`
	Similarity float64          `json:"similarity"`
}

// DuplicateReport lists duplicated code across a repository.
type DuplicateReport struct {
	Pairs         []DuplicatePair `json:"duplicates"`
	TotalPairs    int             `json:"total_duplicates"`
	FilesAnalyzed int             `json:"files_analyzed"`
}

const duplicateResultLimit = 20

// DetectDuplicates finds exact duplicate blocks of at least minLines
// normalized lines (comments and blanks stripped) between Go files, using a
// sliding window. Pair similarity is refined with a line-level diff so near
// misses around a shared block do not inflate the score.
func (w *Walker) DetectDuplicates(root string, minLines int) (DuplicateReport, error) {
	if minLines <= 0 {
		minLines = 5
	}

	files, err := w.GoFiles(root)
	if err != nil {
		return DuplicateReport{}, err
	}

	type fileLines struct {
		path  string
		lines []string
	}
	var contents []fileLines
	for _, f := range files {
		data, err := os.ReadFile(filepath.Join(root, f))
		if err != nil {
			continue
		}
		contents = append(contents, fileLines{path: f, lines: normalizeLines(string(data))})
	}

	report := DuplicateReport{FilesAnalyzed: len(contents)}
	dmp := diffmatchpatch.New()

	for i := 0; i < len(contents); i++ {
		for j := i + 1; j < len(contents); j++ {
			blocks := commonBlocks(contents[i].lines, contents[j].lines, minLines)
			if len(blocks) == 0 {
				continue
			}
			report.TotalPairs++
			if len(report.Pairs) >= duplicateResultLimit {
				continue
			}
			report.Pairs = append(report.Pairs, DuplicatePair{
				File1:      contents[i].path,
				File2:      contents[j].path,
				Blocks:     blocks,
				Similarity: lineSimilarity(dmp, contents[i].lines, contents[j].lines),
			})
		}
	}

	return report, nil
}

// normalizeLines strips comments and blank lines so formatting differences do
// not hide duplication.
func normalizeLines(content string) []string {
	var out []string
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "//") {
			continue
		}
		out = append(out, trimmed)
	}
	return out
}

// commonBlocks finds exact-match windows of minLines lines, extending each
// match as far as it continues.
func commonBlocks(a, b []string, minLines int) []DuplicateBlock {
	var blocks []DuplicateBlock

	for i := 0; i+minLines <= len(a); i++ {
		for j := 0; j+minLines <= len(b); j++ {
			if !equalSlice(a[i:i+minLines], b[j:j+minLines]) {
				continue
			}
			k := minLines
			for i+k < len(a) && j+k < len(b) && a[i+k] == b[j+k] {
				k++
			}
			blocks = append(blocks, DuplicateBlock{
				Lines:   k,
				Preview: strings.Join(a[i:min(i+3, i+k)], "\n"),
			})
			break // one match per window start
		}
	}

	return blocks
}

// lineSimilarity scores how much of the two files' normalized text is shared.
func lineSimilarity(dmp *diffmatchpatch.DiffMatchPatch, a, b []string) float64 {
	textA := strings.Join(a, "\n")
	textB := strings.Join(b, "\n")
	if textA == "" && textB == "" {
		return 0
	}

	diffs := dmp.DiffMain(textA, textB, false)
	var shared, total int
	for _, d := range diffs {
		n := len(d.Text)
		total += n
		if d.Type == diffmatchpatch.DiffEqual {
			shared += n
		}
	}
	if total == 0 {
		return 0
	}
	return float64(shared) / float64(total)
}

func equalSlice(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
