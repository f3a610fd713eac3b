package agent

import (
	"context"

	"github.com/google/uuid"

	"autopilot/internal/config"
	"autopilot/internal/fetch"
	"autopilot/internal/llm"
	"autopilot/internal/logging"
	"autopilot/internal/memory"
	"autopilot/internal/protocol"
	"autopilot/internal/safety"
)

// Orchestrator runs the pipeline for each message: resolve repository,
// plan, work, evaluate, persist, respond. It never lets an internal failure
// escape to the caller; every path produces a Response.
type Orchestrator struct {
	SessionID string

	cfg       *config.Config
	planner   *Planner
	worker    *Worker
	evaluator *Evaluator
	fetcher   *fetch.Fetcher
	session   *memory.Session
	prefs     *memory.LongTerm
	repoPath  string
}

// NewOrchestrator assembles the pipeline over a completion provider.
func NewOrchestrator(cfg *config.Config, provider llm.CompletionProvider, prefs *memory.LongTerm) *Orchestrator {
	screener := safety.NewScreener(safety.DiffThresholds{
		MinRemovals:  cfg.Safety.DiffMinRemovals,
		RemovalRatio: cfg.Safety.DiffRemovalRatio,
	})
	return &Orchestrator{
		SessionID: uuid.NewString(),
		cfg:       cfg,
		planner:   NewPlanner(provider, screener),
		worker:    NewWorker(provider, cfg, prefs),
		evaluator: NewEvaluator(provider, screener),
		fetcher:   fetch.NewFetcher(cfg.API.GitHubToken),
		session:   memory.NewSession(cfg.Memory.MaxHistory),
		prefs:     prefs,
	}
}

// SetRepoPath pins the working repository for subsequent messages, e.g. from
// the --repo flag.
func (o *Orchestrator) SetRepoPath(path string) { o.repoPath = path }

// Process handles one user message end to end.
func (o *Orchestrator) Process(ctx context.Context, userInput string) (resp protocol.Response) {
	defer func() {
		if r := recover(); r != nil {
			logging.Error("pipeline panicked", "panic", r)
			resp = o.errorResponse("An internal error occurred while processing your request. Please try again.")
		}
	}()

	logging.Info("processing message", "session", o.SessionID, "length", len(userInput))

	o.resolveRepo(ctx, userInput)

	plan := o.planner.Plan(ctx, userInput, o.session.HistoryString(), o.prefs.PreferencesString())
	plan.RepoPath = o.repoPath
	if plan.RepoPath == "" {
		plan.RepoPath = "."
	}

	work := o.worker.Work(ctx, plan)
	verdict := o.evaluator.Evaluate(ctx, userInput, work.Draft)

	o.persist(userInput, plan, verdict)

	resp = protocol.Response{
		Text:         verdict.FinalResponse,
		Plan:         plan,
		ToolsUsed:    work.ToolsUsed,
		SafetyStatus: verdict.Status,
		Stats:        o.session.Stats(),
	}
	resp.FillReports(work.Bundle)
	return resp
}

// resolveRepo clones a GitHub URL mentioned in the message, if any. Fetch
// failure falls back to the current repo path; it never aborts the message.
func (o *Orchestrator) resolveRepo(ctx context.Context, userInput string) {
	ref := fetch.URLPattern.FindString(userInput)
	if ref == "" {
		return
	}

	repo, err := fetch.ParseURL(ref)
	if err != nil {
		logging.Warn("unparseable repository reference", "ref", ref, "error", err)
		return
	}

	path, err := o.fetcher.CloneOrReuse(ctx, repo)
	if err != nil {
		logging.Warn("repository fetch failed, using local directory", "repo", repo.Slug(), "error", err)
		return
	}

	o.repoPath = path
	logging.Info("repository resolved", "repo", repo.Slug(), "path", path)
}

func (o *Orchestrator) persist(userInput string, plan protocol.PlanRequest, verdict protocol.EvaluationVerdict) {
	o.session.Add("user", userInput)
	o.session.Add("assistant", verdict.FinalResponse)
	if plan.SavePreference != nil && plan.SavePreference.Key != "" {
		o.prefs.SetPreference(plan.SavePreference.Key, plan.SavePreference.Value)
	}
}

// errorResponse is the terminal apology for an uncaught internal failure.
// Such a response never passed safety review, so it carries REJECTED.
func (o *Orchestrator) errorResponse(text string) protocol.Response {
	resp := protocol.Response{
		Text:         text,
		SafetyStatus: protocol.StatusRejected,
		Stats:        o.session.Stats(),
	}
	resp.FillReports(protocol.ReportBundle{})
	return resp
}
