package analysis

import (
	"fmt"
	"strings"
	"time"
)

// PostmortemReport is a structured incident postmortem assembled from log
// analysis. Document holds the rendered markdown; the typed fields carry the
// inputs so callers can serialize without reparsing.
type PostmortemReport struct {
	Title        string        `json:"title"`
	GeneratedAt  time.Time     `json:"generated_at"`
	Document     string        `json:"document"`
	ErrorCount   int           `json:"error_count"`
	WarningCount int           `json:"warning_count"`
	Clusters     ClusterReport `json:"clusters"`
	Anomalies    AnomalyReport `json:"anomalies"`
}

// BuildPostmortem assembles the six-section postmortem document from a parsed
// log and its derived cluster and anomaly reports.
func BuildPostmortem(source string, log LogReport, clusters ClusterReport, anomalies AnomalyReport) PostmortemReport {
	now := time.Now().UTC()
	report := PostmortemReport{
		Title:        "Incident Postmortem: " + source,
		GeneratedAt:  now,
		ErrorCount:   log.ErrorCount,
		WarningCount: log.WarningCount,
		Clusters:     clusters,
		Anomalies:    anomalies,
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", report.Title)
	fmt.Fprintf(&b, "Generated: %s\n\n", now.Format("2006-01-02 15:04 UTC"))

	b.WriteString("## Summary\n\n")
	fmt.Fprintf(&b, "Analyzed %d log lines: %d errors, %d warnings, %d distinct error patterns.\n\n",
		log.TotalLines, log.ErrorCount, log.WarningCount, clusters.UniquePatterns)

	b.WriteString("## Timeline\n\n")
	if len(anomalies.Spikes) == 0 {
		b.WriteString("No error spikes detected; errors were distributed evenly across the log window.\n\n")
	} else {
		for _, spike := range anomalies.Spikes {
			fmt.Fprintf(&b, "- %s — %d errors (spike)\n", spike.Bucket, spike.Count)
		}
		b.WriteString("\n")
	}

	b.WriteString("## Impact\n\n")
	switch {
	case log.ErrorCount == 0:
		b.WriteString("No errors recorded; impact appears limited to warnings.\n\n")
	case log.ErrorCount > 100:
		fmt.Fprintf(&b, "High error volume (%d). Sustained failure likely affected users for the duration of the window.\n\n", log.ErrorCount)
	default:
		fmt.Fprintf(&b, "Moderate error volume (%d). Impact likely limited to the affected code paths.\n\n", log.ErrorCount)
	}

	b.WriteString("## Root Cause Candidates\n\n")
	if len(clusters.Clusters) == 0 {
		b.WriteString("No recurring error pattern identified.\n\n")
	} else {
		for i, c := range clusters.Clusters {
			if i >= 5 {
				break
			}
			fmt.Fprintf(&b, "%d. `%s` (%d occurrences)\n", i+1, c.Pattern, c.Count)
		}
		b.WriteString("\n")
	}

	b.WriteString("## Detection\n\n")
	if anomalies.TotalAnomalies > 0 {
		b.WriteString("Anomaly detection flagged the spike buckets above; alerting on the dominant error pattern would have paged earlier.\n\n")
	} else {
		b.WriteString("No automated anomaly fired for this window; consider alerting on the top error pattern's rate.\n\n")
	}

	b.WriteString("## Action Items\n\n")
	if len(clusters.TopErrors) > 0 {
		fmt.Fprintf(&b, "- [ ] Fix the dominant error: %s\n", clusters.TopErrors[0].Message)
	}
	b.WriteString("- [ ] Add an alert on the error rate for this service\n")
	b.WriteString("- [ ] Review warning volume and promote recurring warnings to errors where appropriate\n")

	report.Document = b.String()
	return report
}
