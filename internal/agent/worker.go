package agent

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"autopilot/internal/analysis"
	"autopilot/internal/config"
	"autopilot/internal/llm"
	"autopilot/internal/logging"
	"autopilot/internal/memory"
	"autopilot/internal/protocol"
	"autopilot/internal/render"
	"autopilot/internal/safety"
)

// handlerResult is what one action handler produces before narration.
type handlerResult struct {
	Context   string
	ToolsUsed []string
	Bundle    protocol.ReportBundle
}

type handlerFunc func(ctx context.Context, plan protocol.PlanRequest) handlerResult

// Worker executes a plan: it dispatches to the action's handler, then asks
// the model to narrate the completed analysis. Handlers never abort the
// message; a failure becomes a context note for the narration step.
type Worker struct {
	provider llm.CompletionProvider
	walker   *analysis.Walker
	prefs    *memory.LongTerm
	cfg      *config.Config
	dispatch map[string]handlerFunc
}

// NewWorker wires a worker over the capability providers.
func NewWorker(provider llm.CompletionProvider, cfg *config.Config, prefs *memory.LongTerm) *Worker {
	w := &Worker{
		provider: provider,
		walker:   analysis.NewWalker(cfg.Analysis.ExcludeDirs),
		prefs:    prefs,
		cfg:      cfg,
	}
	w.dispatch = map[string]handlerFunc{
		protocol.ActionRepoAnalysis:     w.handleRepoAnalysis,
		protocol.ActionIncidentAnalysis: w.handleIncidentAnalysis,
		protocol.ActionMigration:        w.handleMigration,
		protocol.ActionRefactor:         w.handleRefactor,
		protocol.ActionDocumentation:    w.handleDocumentation,
		protocol.ActionArchitecture:     w.handleArchitecture,
	}
	return w
}

// Work runs the plan and returns the unvalidated draft plus the structured
// bundle.
func (w *Worker) Work(ctx context.Context, plan protocol.PlanRequest) protocol.WorkerResult {
	logging.Info("executing plan", "action", plan.Action, "repo", plan.RepoPath)

	var result handlerResult
	switch plan.Action {
	case protocol.ActionEnforceBoundary:
		// The refusal is fixed text; no model call, no tools. Routing it
		// through narration would let the model soften the boundary.
		return protocol.WorkerResult{Draft: safety.FallbackResponse}
	case protocol.ActionGeneralChat, "":
		result = handlerResult{Context: "Respond to the user's DevOps question."}
	default:
		handler, ok := w.dispatch[plan.Action]
		if !ok {
			result = handlerResult{Context: "Respond to the user's DevOps question."}
			break
		}
		result = w.run(ctx, handler, plan)
	}

	draft := w.narrate(ctx, plan, result)
	return protocol.WorkerResult{
		Draft:     draft,
		ToolsUsed: result.ToolsUsed,
		Bundle:    result.Bundle,
	}
}

// run executes a handler, converting a panic into a context note.
func (w *Worker) run(ctx context.Context, handler handlerFunc, plan protocol.PlanRequest) (result handlerResult) {
	defer func() {
		if r := recover(); r != nil {
			logging.Error("handler panicked", "action", plan.Action, "panic", r)
			result = handlerResult{Context: fmt.Sprintf("Error during analysis: %v", r)}
		}
	}()
	return handler(ctx, plan)
}

func (w *Worker) narrate(ctx context.Context, plan protocol.PlanRequest, result handlerResult) string {
	prompt := fmt.Sprintf(`USER REQUEST: %s

ANALYSIS CONTEXT (ALL ANALYSIS HAS BEEN COMPLETED):
%s

IMPORTANT:
- The analysis has ALREADY BEEN PERFORMED by automated tools.
- Report on the ACTUAL results provided in the context above.
- Do NOT say you cannot execute code or use tools; the work is already done.
- If a visualization was generated, mention it.

Generate a comprehensive DevOps response reporting on the completed analysis results.`,
		plan.Instruction, result.Context)

	draft, err := w.provider.GenerateText(ctx, llm.Request{
		Prompt:            prompt,
		SystemInstruction: workerPrompt,
	})
	if err != nil || strings.TrimSpace(draft) == "" {
		logging.Warn("narration failed, using apology draft", "error", err)
		draft = workerApology
	}
	return draft
}

func repoRoot(plan protocol.PlanRequest) string {
	if plan.RepoPath != "" {
		return plan.RepoPath
	}
	return "."
}

func (w *Worker) handleRepoAnalysis(_ context.Context, plan protocol.PlanRequest) handlerResult {
	root := repoRoot(plan)
	var tools []string
	var bundle protocol.ReportBundle

	tree, err := w.walker.DirectoryTree(root)
	if err != nil {
		return handlerResult{Context: "Error during analysis: " + err.Error()}
	}
	tools = append(tools, "read_directory_tree")

	graph, err := w.walker.DependencyGraph(root)
	if err == nil {
		tools = append(tools, "get_dependency_graph")
	}

	scores := w.complexityScores(root, plan)
	if len(scores) > 0 {
		tools = append(tools, "compute_complexity")
	}

	deadCode, dcErr := w.walker.DetectDeadCode(root)
	if dcErr == nil {
		tools = append(tools, "detect_dead_code")
		bundle.DeadCode = &deadCode
	}

	duplicates, dupErr := w.walker.DetectDuplicates(root, w.cfg.Analysis.MinDuplicateLines)
	if dupErr == nil {
		tools = append(tools, "detect_duplicate_code")
		bundle.Duplicates = &duplicates
	}

	refactors, refErr := w.walker.SuggestRefactors(root, w.cfg.Analysis.MinDuplicateLines)
	if refErr == nil {
		bundle.Refactors = refactors
	}

	bundle.Visuals.DependencyGraph = render.DependencyGraph(graphData(graph))
	bundle.Visuals.Heatmap = render.ComplexityHeatmap(scores)

	var b strings.Builder
	b.WriteString("Repository Structure:\n")
	fmt.Fprintf(&b, "- Total files: %d\n", tree.FileCount)
	fmt.Fprintf(&b, "- Dependency nodes: %d, edges: %d\n\n", graph.NodeCount, graph.EdgeCount)

	b.WriteString("Code Complexity (top files, most complex first):\n")
	if len(scores) == 0 {
		b.WriteString("- No Go source files found for complexity analysis.\n")
	}
	for i, s := range scores {
		if i >= 10 {
			break
		}
		fmt.Fprintf(&b, "- %s: avg %.1f\n", s.File, s.Score)
	}
	fmt.Fprintf(&b, "\nDead code: %d potentially unused functions, %d unused imports.\n",
		len(deadCode.UnusedFunctions), len(deadCode.UnusedImports))
	fmt.Fprintf(&b, "Duplicate code: %d duplicate pairs across %d files.\n",
		duplicates.TotalPairs, duplicates.FilesAnalyzed)
	fmt.Fprintf(&b, "Refactor suggestions generated: %d.\n", len(bundle.Refactors))
	b.WriteString("Visualizations generated: dependency graph, complexity heatmap.\n")

	w.prefs.AddAnalyzedRepo(root, fmt.Sprintf(
		"%d files, %d dependency edges, %d refactor suggestions",
		tree.FileCount, graph.EdgeCount, len(bundle.Refactors)))

	return handlerResult{Context: b.String(), ToolsUsed: tools, Bundle: bundle}
}

// complexityKeywords force a repository-wide complexity scan even when the
// plan names specific target files.
var complexityKeywords = []string{"complexity", "heatmap", "hotspot"}

func wantsFullComplexityScan(instruction string) bool {
	lower := strings.ToLower(instruction)
	for _, k := range complexityKeywords {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}

// complexityScores scores the plan's target files, or the whole repository
// (capped) when no targets are given or the instruction asks for a
// complexity overview.
func (w *Worker) complexityScores(root string, plan protocol.PlanRequest) []render.HeatmapEntry {
	files := plan.TargetPaths
	if len(files) == 0 || wantsFullComplexityScan(plan.Instruction) {
		all, err := w.walker.GoFiles(root)
		if err != nil {
			return nil
		}
		files = all
	}

	limit := w.cfg.Analysis.MaxComplexityFiles
	if limit <= 0 {
		limit = 50
	}

	var entries []render.HeatmapEntry
	for _, f := range files {
		if len(entries) >= limit {
			break
		}
		if !strings.HasSuffix(f, ".go") {
			continue
		}
		report := analysis.ComputeComplexity(filepath.Join(root, f))
		if report.Error != "" {
			continue
		}
		entries = append(entries, render.HeatmapEntry{File: f, Score: report.Average})
	}
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Score > entries[j].Score })
	return entries
}

func (w *Worker) handleIncidentAnalysis(_ context.Context, plan protocol.PlanRequest) handlerResult {
	root := repoRoot(plan)
	var tools []string
	var bundle protocol.ReportBundle

	logFiles := plan.TargetPaths
	if len(logFiles) == 0 {
		logFiles = []string{"autopilot_devops.log"}
	}
	limit := w.cfg.Analysis.MaxLogFiles
	if limit <= 0 {
		limit = 3
	}
	if len(logFiles) > limit {
		logFiles = logFiles[:limit]
	}

	var totalErrors, totalWarnings, clusterCount, anomalyCount int
	merged := make(map[string][2]int)
	for _, logFile := range logFiles {
		path := logFile
		if !filepath.IsAbs(path) {
			path = filepath.Join(root, path)
		}
		log := analysis.ParseLogs(path)
		tools = append(tools, "parse_logs")

		for bucket, counts := range analysis.TimelineBuckets(log) {
			c := merged[bucket]
			c[0] += counts[0]
			c[1] += counts[1]
			merged[bucket] = c
		}

		totalErrors += log.ErrorCount
		totalWarnings += log.WarningCount
		if log.ErrorCount == 0 {
			continue
		}

		clusters := analysis.ClusterErrors(log)
		tools = append(tools, "cluster_errors")
		anomalies := analysis.DetectAnomalies(log)
		tools = append(tools, "detect_anomalies")

		clusterCount += len(clusters.Clusters)
		anomalyCount += anomalies.TotalAnomalies

		// Postmortem covers the first file with errors; later clean files
		// must not displace it.
		if bundle.Postmortem == nil {
			postmortem := analysis.BuildPostmortem(logFile, log, clusters, anomalies)
			tools = append(tools, "generate_postmortem")
			bundle.Postmortem = &postmortem
		}
	}

	// One timeline over all files; drawn even for clean logs, since an
	// empty chart is still an answer.
	bundle.Visuals.Timeline = render.ErrorTimeline(timelinePoints(merged))

	context := fmt.Sprintf(`Log Analysis Summary:
- Log files analyzed: %d
- Total errors found: %d
- Total warnings found: %d
- Error clusters: %d
- Anomalies detected: %d
An error timeline visualization has been generated.`,
		len(logFiles), totalErrors, totalWarnings, clusterCount, anomalyCount)

	return handlerResult{Context: context, ToolsUsed: tools, Bundle: bundle}
}

func (w *Worker) handleMigration(_ context.Context, plan protocol.PlanRequest) handlerResult {
	root := repoRoot(plan)
	var tools []string
	var bundle protocol.ReportBundle

	from := "flask"
	if detected := w.walker.DetectFrameworks(root); len(detected) > 0 {
		from = detected[0]
	}
	tools = append(tools, "detect_frameworks")
	to := w.prefs.MigrationTarget(from)

	outdated := w.walker.ScanOutdated(root)
	tools = append(tools, "list_outdated_libraries")

	planReport := analysis.PlanMigration(from, to)
	tools = append(tools, "generate_migration_plan")
	bundle.Migration = &planReport

	var steps strings.Builder
	for _, s := range planReport.Steps {
		fmt.Fprintf(&steps, "%d. %s: %s\n", s.Order, s.Title, s.Description)
	}
	var breaking strings.Builder
	for _, bc := range planReport.BreakingChanges {
		fmt.Fprintf(&breaking, "- %s\n", bc)
	}

	context := fmt.Sprintf(`Migration Analysis:
- Source framework: %s
- Target framework: %s
- Estimated effort: %s
- Deprecated packages found: %d

Migration steps:
%s
Breaking changes:
%s`, from, to, planReport.Effort, len(outdated.Deps), steps.String(), breaking.String())

	return handlerResult{Context: context, ToolsUsed: tools, Bundle: bundle}
}

func (w *Worker) handleRefactor(_ context.Context, plan protocol.PlanRequest) handlerResult {
	root := repoRoot(plan)

	suggestions, err := w.walker.SuggestRefactors(root, w.cfg.Analysis.MinDuplicateLines)
	if err != nil {
		return handlerResult{Context: "Error during analysis: " + err.Error()}
	}

	var bundle protocol.ReportBundle
	bundle.Refactors = suggestions

	high := 0
	var lines strings.Builder
	for _, s := range suggestions {
		if s.Severity == "HIGH" {
			high++
		}
		fmt.Fprintf(&lines, "- [%s] %s: %s\n", s.Severity, s.File, s.Suggestion)
	}

	context := fmt.Sprintf(`Refactoring Analysis:
- Suggestions: %d (%d high severity)

%s`, len(suggestions), high, lines.String())

	return handlerResult{
		Context:   context,
		ToolsUsed: []string{"compute_complexity", "extract_imports", "detect_duplicate_code"},
		Bundle:    bundle,
	}
}

func (w *Worker) handleDocumentation(_ context.Context, plan protocol.PlanRequest) handlerResult {
	root := repoRoot(plan)

	docs, err := w.walker.GenerateDocs(root)
	if err != nil {
		return handlerResult{Context: "Error during analysis: " + err.Error()}
	}

	context := fmt.Sprintf(`Documentation generated (%d files covered, %d characters).

%s`, docs.FilesCovered, len(docs.Document), docs.Document)

	return handlerResult{
		Context:   context,
		ToolsUsed: []string{"read_directory_tree", "get_dependency_graph", "generate_markdown_docs"},
	}
}

func (w *Worker) handleArchitecture(_ context.Context, plan protocol.PlanRequest) handlerResult {
	root := repoRoot(plan)
	var bundle protocol.ReportBundle

	tree, err := w.walker.DirectoryTree(root)
	if err != nil {
		return handlerResult{Context: "Error during analysis: " + err.Error()}
	}
	graph, err := w.walker.DependencyGraph(root)
	if err != nil {
		return handlerResult{Context: "Error during analysis: " + err.Error()}
	}

	bundle.Visuals.DependencyGraph = render.DependencyGraph(graphData(graph))

	var hubs []string
	inbound := make(map[string]int)
	for _, e := range graph.Edges {
		inbound[e.To]++
	}
	for node, n := range inbound {
		if n >= 2 {
			hubs = append(hubs, fmt.Sprintf("%s (%d dependents)", node, n))
		}
	}
	sort.Strings(hubs)

	context := fmt.Sprintf(`Architecture Analysis:
- Files: %d across %d directories
- Dependency graph: %d nodes, %d edges
- Central modules: %s
A dependency graph visualization has been generated.`,
		tree.FileCount, tree.DirCount, graph.NodeCount, graph.EdgeCount,
		strings.Join(hubs, "; "))

	return handlerResult{
		Context:   context,
		ToolsUsed: []string{"read_directory_tree", "get_dependency_graph"},
		Bundle:    bundle,
	}
}

func graphData(graph analysis.GraphReport) render.GraphData {
	data := render.GraphData{Nodes: graph.Nodes}
	for _, e := range graph.Edges {
		data.Edges = append(data.Edges, [2]string{e.From, e.To})
	}
	return data
}

func timelinePoints(buckets map[string][2]int) []render.TimelinePoint {
	keys := make([]string, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var points []render.TimelinePoint
	for _, k := range keys {
		points = append(points, render.TimelinePoint{
			Bucket:   k,
			Errors:   buckets[k][0],
			Warnings: buckets[k][1],
		})
	}
	return points
}
