package analysis

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// LogEntry is one classified log line.
type LogEntry struct {
	LineNumber int    `json:"line_number"`
	Content    string `json:"content"`
	Level      string `json:"level"`
	Timestamp  string `json:"timestamp,omitempty"`
}

// LogReport is the structured result of parsing one log file.
type LogReport struct {
	Entries      []LogEntry `json:"entries"`
	Errors       []LogEntry `json:"errors"`
	Warnings     []LogEntry `json:"warnings"`
	TotalLines   int        `json:"total_lines"`
	ErrorCount   int        `json:"error_count"`
	WarningCount int        `json:"warning_count"`
	Error        string     `json:"error,omitempty"`
}

var (
	errorLinePattern   = regexp.MustCompile(`(?i)(ERROR|CRITICAL|FATAL|Exception|Traceback|panic:)`)
	warningLinePattern = regexp.MustCompile(`(?i)(WARNING|WARN)`)
	timestampPattern   = regexp.MustCompile(`\d{4}-\d{2}-\d{2}[\sT]\d{2}:\d{2}:\d{2}|\d{2}/\d{2}/\d{4}\s\d{2}:\d{2}:\d{2}`)
)

const maxLogLines = 1000

// ParseLogs reads and classifies up to maxLogLines lines of a log file.
// A missing file is reported in-band.
func ParseLogs(path string) LogReport {
	file := ReadFile(path)
	if !file.Exists {
		return LogReport{Error: "log file not found: " + path}
	}

	lines := strings.Split(file.Content, "\n")
	if len(lines) > maxLogLines {
		lines = lines[:maxLogLines]
	}

	var report LogReport
	for i, line := range lines {
		entry := LogEntry{LineNumber: i + 1, Content: line, Level: "INFO"}
		if ts := timestampPattern.FindString(line); ts != "" {
			entry.Timestamp = ts
		}

		switch {
		case errorLinePattern.MatchString(line):
			entry.Level = "ERROR"
			report.Errors = append(report.Errors, entry)
		case warningLinePattern.MatchString(line):
			entry.Level = "WARNING"
			report.Warnings = append(report.Warnings, entry)
		}
		report.Entries = append(report.Entries, entry)
	}

	report.TotalLines = len(report.Entries)
	report.ErrorCount = len(report.Errors)
	report.WarningCount = len(report.Warnings)
	return report
}

// ErrorGroup is one cluster of similar errors.
type ErrorGroup struct {
	Pattern string `json:"pattern"`
	Count   int    `json:"count"`
}

// TopError is a frequent error message.
type TopError struct {
	Message string `json:"message"`
	Count   int    `json:"count"`
}

// ClusterReport groups log errors by exception type.
type ClusterReport struct {
	Clusters       []ErrorGroup `json:"clusters"`
	TopErrors      []TopError   `json:"top_errors"`
	TotalErrors    int          `json:"total_errors"`
	UniquePatterns int          `json:"unique_patterns"`
}

var exceptionTokenPattern = regexp.MustCompile(`\w+Error|\w+Exception`)

// ClusterErrors groups a log report's errors by exception-type token, falling
// back to the first 50 characters of the message when no token is present.
func ClusterErrors(log LogReport) ClusterReport {
	counts := make(map[string]int)
	var order []string
	messageCounts := make(map[string]int)
	var messageOrder []string

	for _, e := range log.Errors {
		pattern := exceptionTokenPattern.FindString(e.Content)
		if pattern == "" {
			pattern = strings.TrimSpace(truncate(e.Content, 50))
		}
		if counts[pattern] == 0 {
			order = append(order, pattern)
		}
		counts[pattern]++

		msg := truncate(e.Content, 100)
		if messageCounts[msg] == 0 {
			messageOrder = append(messageOrder, msg)
		}
		messageCounts[msg]++
	}

	report := ClusterReport{
		TotalErrors:    len(log.Errors),
		UniquePatterns: len(order),
	}
	for _, p := range order {
		report.Clusters = append(report.Clusters, ErrorGroup{Pattern: p, Count: counts[p]})
	}
	sort.SliceStable(report.Clusters, func(i, j int) bool {
		return report.Clusters[i].Count > report.Clusters[j].Count
	})

	sort.SliceStable(messageOrder, func(i, j int) bool {
		return messageCounts[messageOrder[i]] > messageCounts[messageOrder[j]]
	})
	for i, msg := range messageOrder {
		if i >= 10 {
			break
		}
		report.TopErrors = append(report.TopErrors, TopError{Message: msg, Count: messageCounts[msg]})
	}

	return report
}

// Spike is an hour bucket whose error count exceeded twice the mean.
type Spike struct {
	Bucket string `json:"bucket"`
	Count  int    `json:"count"`
}

// AnomalyReport flags unusual error activity.
type AnomalyReport struct {
	Spikes         []Spike  `json:"spikes"`
	Descriptions   []string `json:"anomalies"`
	TotalAnomalies int      `json:"total_anomalies"`
}

// DetectAnomalies buckets timestamped errors by minute-resolution window and
// flags buckets with more than twice the mean count.
func DetectAnomalies(log LogReport) AnomalyReport {
	buckets := make(map[string]int)
	var order []string
	for _, e := range log.Errors {
		if e.Timestamp == "" {
			continue
		}
		key := truncate(e.Timestamp, 16) // YYYY-MM-DD HH:MM
		if buckets[key] == 0 {
			order = append(order, key)
		}
		buckets[key]++
	}

	var report AnomalyReport
	if len(buckets) == 0 {
		return report
	}

	total := 0
	for _, c := range buckets {
		total += c
	}
	mean := float64(total) / float64(len(buckets))

	sort.Strings(order)
	for _, key := range order {
		if float64(buckets[key]) > mean*2 {
			report.Spikes = append(report.Spikes, Spike{Bucket: key, Count: buckets[key]})
		}
	}
	if len(report.Spikes) > 0 {
		report.Descriptions = append(report.Descriptions,
			"error spike detected in "+pluralize(len(report.Spikes), "time bucket"))
	}
	report.TotalAnomalies = len(report.Descriptions)
	return report
}

// TimelineBuckets aggregates error and warning counts per timestamp bucket
// for chart rendering.
func TimelineBuckets(log LogReport) map[string][2]int {
	buckets := make(map[string][2]int)
	for _, e := range log.Errors {
		if e.Timestamp == "" {
			continue
		}
		key := truncate(e.Timestamp, 13) // hour resolution
		counts := buckets[key]
		counts[0]++
		buckets[key] = counts
	}
	for _, w := range log.Warnings {
		if w.Timestamp == "" {
			continue
		}
		key := truncate(w.Timestamp, 13)
		counts := buckets[key]
		counts[1]++
		buckets[key] = counts
	}
	return buckets
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

func pluralize(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return strconv.Itoa(n) + " " + noun + "s"
}
