package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"autopilot/internal/agent"
	"autopilot/internal/config"
	"autopilot/internal/llm"
	"autopilot/internal/logging"
	"autopilot/internal/memory"
	"autopilot/internal/ui"
)

var (
	version  = "0.2.0"
	cfgFile  string
	repoPath string
	offline  bool
	logLevel string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "autopilot",
		Short: "Read-only DevOps analysis assistant",
		Long: `AutoPilot routes natural-language DevOps requests through a planner,
worker and safety evaluator backed by static code analysis. It analyzes
repositories and logs, plans migrations, and suggests refactors; it never
executes commands or modifies files.`,
		RunE: runInteractive,
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/autopilot/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&repoPath, "repo", "", "repository to analyze (default is the current directory)")
	rootCmd.PersistentFlags().BoolVar(&offline, "offline", false, "use the deterministic offline provider (no API keys needed)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "analyze [request]",
		Short: "Run a single request and exit",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runOnce,
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("autopilot version %s\n", version)
		},
	})

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func setup() (*agent.Orchestrator, *config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	cfg.Version = version
	if offline {
		cfg.API.Offline = true
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}

	if err := cfg.Validate(); err != nil {
		if errors.Is(err, config.ErrMissingAuth) {
			return nil, nil, fmt.Errorf("%w\n\nGet a free key at https://aistudio.google.com/apikey, or run with --offline", err)
		}
		return nil, nil, err
	}

	configDir := configDir()
	if err := logging.EnableFileLogging(configDir, logging.ParseLevel(cfg.Logging.Level)); err != nil {
		logging.Configure(logging.ParseLevel(cfg.Logging.Level), os.Stderr)
	}

	var provider llm.CompletionProvider
	if cfg.API.Offline {
		provider = llm.NewStubProvider()
	} else {
		provider = llm.NewGeminiProvider(cfg)
	}

	prefs := memory.OpenLongTerm(filepath.Join(configDir, cfg.Memory.PreferencesFile))
	orch := agent.NewOrchestrator(cfg, provider, prefs)
	if repoPath != "" {
		orch.SetRepoPath(repoPath)
	}
	return orch, cfg, nil
}

func configDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		dir := filepath.Join(xdg, "autopilot")
		os.MkdirAll(dir, 0o755)
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	dir := filepath.Join(home, ".config", "autopilot")
	os.MkdirAll(dir, 0o755)
	return dir
}

func runInteractive(cmd *cobra.Command, args []string) error {
	orch, _, err := setup()
	if err != nil {
		return err
	}
	defer logging.Close()

	printer := ui.NewPrinter(os.Stdout)
	shownRepo := repoPath
	if shownRepo == "" {
		shownRepo = "."
	}
	printer.Welcome(version, shownRepo)

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		if input == "exit" || input == "quit" {
			break
		}

		resp := orch.Process(cmd.Context(), input)
		printer.Response(resp)
	}
	return scanner.Err()
}

func runOnce(cmd *cobra.Command, args []string) error {
	orch, _, err := setup()
	if err != nil {
		return err
	}
	defer logging.Close()

	resp := orch.Process(cmd.Context(), strings.Join(args, " "))
	ui.NewPrinter(os.Stdout).Response(resp)
	return nil
}
