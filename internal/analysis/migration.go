package analysis

import (
	"fmt"
	"strings"
)

// MigrationStep is one ordered step of a migration plan.
type MigrationStep struct {
	Order       int    `json:"order"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// MigrationReport is a framework migration plan. Plans are assembled from a
// static playbook table, not generated text, so they are deterministic.
// Every plan carries at least one breaking change, including the generic
// fallback; a migration without breaking changes is not a migration.
type MigrationReport struct {
	From            string          `json:"from_framework"`
	To              string          `json:"to_framework"`
	Steps           []MigrationStep `json:"steps"`
	BreakingChanges []string        `json:"breaking_changes"`
	Effort          string          `json:"estimated_effort"`
	Compatible      bool            `json:"compatible"`
	Notes           string          `json:"notes,omitempty"`
}

// playbook keys are "from->to" in lowercase.
var migrationPlaybooks = map[string][]MigrationStep{
	"flask->fastapi": {
		{Order: 1, Title: "Inventory routes", Description: "List every Flask route, its methods, and its request/response shapes."},
		{Order: 2, Title: "Introduce Pydantic models", Description: "Define request and response models for each endpoint before touching handlers."},
		{Order: 3, Title: "Port routes incrementally", Description: "Convert @app.route handlers to FastAPI path operations, one blueprint at a time."},
		{Order: 4, Title: "Replace extensions", Description: "Swap Flask-specific extensions (Flask-Login, Flask-SQLAlchemy) for ASGI-compatible equivalents."},
		{Order: 5, Title: "Move to ASGI serving", Description: "Replace the WSGI entrypoint with uvicorn and update deployment manifests."},
		{Order: 6, Title: "Validate behavior parity", Description: "Run the existing integration suite against the new app before cutting traffic over."},
	},
	"django->fastapi": {
		{Order: 1, Title: "Separate domain from ORM", Description: "Extract business logic out of Django views and models into plain modules."},
		{Order: 2, Title: "Choose a data layer", Description: "Decide between keeping the Django ORM standalone or moving to SQLAlchemy."},
		{Order: 3, Title: "Rebuild auth", Description: "Replace Django sessions and middleware with token-based auth dependencies."},
		{Order: 4, Title: "Port views to path operations", Description: "Convert views app by app, starting with the least coupled."},
		{Order: 5, Title: "Port admin and management commands", Description: "Replace manage.py commands with standalone CLI entrypoints."},
		{Order: 6, Title: "Cut over and retire Django", Description: "Route traffic to the new service and remove the Django deployment."},
	},
	"express->fastify": {
		{Order: 1, Title: "Audit middleware", Description: "List Express middleware and find Fastify plugin equivalents."},
		{Order: 2, Title: "Define route schemas", Description: "Add JSON schemas per route to get Fastify's validation and serialization wins."},
		{Order: 3, Title: "Port routes", Description: "Convert app.use/app.get handlers to Fastify route definitions."},
		{Order: 4, Title: "Verify and benchmark", Description: "Run the test suite and compare latency before switching."},
	},
}

var migrationEfforts = map[string]string{
	"flask->fastapi":   "MEDIUM",
	"django->fastapi":  "HIGH",
	"express->fastify": "MEDIUM",
}

var migrationBreakingChanges = map[string][]string{
	"flask->fastapi": {
		"The global request object is gone; handlers receive typed parameters and dependencies instead.",
		"Flask extensions (Flask-Login, Flask-SQLAlchemy, Flask-Migrate) do not run under ASGI and need replacements.",
		"WSGI middleware is incompatible; ASGI middleware has a different call contract.",
	},
	"django->fastapi": {
		"Django ORM querysets, signals, and the admin site have no FastAPI equivalent.",
		"Session-based authentication and Django middleware do not carry over; auth must be rebuilt as dependencies.",
		"manage.py commands stop working once the Django app registry is gone.",
	},
	"express->fastify": {
		"Express middleware is not plugin-compatible; each one needs a Fastify plugin or a rewrite.",
		"Response chaining (res.status().send()) differs; Fastify replies are schema-serialized.",
	},
}

// PlanMigration returns the playbook for a known from->to pair, or a generic
// four-step plan for unknown pairs.
func PlanMigration(from, to string) MigrationReport {
	from = strings.ToLower(strings.TrimSpace(from))
	to = strings.ToLower(strings.TrimSpace(to))
	key := from + "->" + to

	if steps, ok := migrationPlaybooks[key]; ok {
		return MigrationReport{
			From:            from,
			To:              to,
			Steps:           steps,
			BreakingChanges: migrationBreakingChanges[key],
			Effort:          migrationEfforts[key],
			Compatible:      true,
		}
	}

	return MigrationReport{
		From:       from,
		To:         to,
		Compatible: false,
		Effort:     "UNKNOWN",
		Notes:      fmt.Sprintf("no curated playbook for %s to %s; generic plan provided", from, to),
		BreakingChanges: []string{
			fmt.Sprintf("%s idioms have no direct %s equivalent; expect every handler signature to change.", from, to),
			"Framework-specific plugins and extensions will need replacements or rewrites.",
		},
		Steps: []MigrationStep{
			{Order: 1, Title: "Map the surface area", Description: fmt.Sprintf("Inventory every %s-specific construct the codebase depends on.", from)},
			{Order: 2, Title: "Prove the target", Description: fmt.Sprintf("Build a thin vertical slice in %s covering one real endpoint or flow.", to)},
			{Order: 3, Title: "Migrate incrementally", Description: "Port one module at a time, keeping both stacks runnable until parity."},
			{Order: 4, Title: "Validate and cut over", Description: "Run the full test suite against the new stack before retiring the old one."},
		},
	}
}

// DetectFrameworks guesses which web frameworks a repository uses from its
// dependency manifests. Best effort; returns an empty slice when none match.
func (w *Walker) DetectFrameworks(root string) []string {
	markers := []struct {
		file, needle, framework string
	}{
		{"requirements.txt", "flask", "flask"},
		{"requirements.txt", "django", "django"},
		{"requirements.txt", "fastapi", "fastapi"},
		{"package.json", "express", "express"},
		{"package.json", "fastify", "fastify"},
		{"go.mod", "gin-gonic", "gin"},
		{"go.mod", "labstack/echo", "echo"},
	}

	var found []string
	seen := make(map[string]bool)
	for _, m := range markers {
		file := ReadFile(root + "/" + m.file)
		if !file.Exists {
			continue
		}
		if strings.Contains(strings.ToLower(file.Content), m.needle) && !seen[m.framework] {
			seen[m.framework] = true
			found = append(found, m.framework)
		}
	}
	return found
}
