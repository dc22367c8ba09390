package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/oakhill-labs/taskforce/internal/config"
	"github.com/oakhill-labs/taskforce/internal/logging"
	"github.com/oakhill-labs/taskforce/internal/manifest"
	"github.com/oakhill-labs/taskforce/internal/orchestrator"
	"github.com/oakhill-labs/taskforce/internal/registry"
	"github.com/oakhill-labs/taskforce/internal/runner"
	"github.com/oakhill-labs/taskforce/pkg/models"
)

var (
	runManifest   string
	runPerAgent   bool
	runCategory   string
	runMode       string
	runLimit      int
	runIterations int
	runConfidence int
	runReport     string
	runWatch      bool
	runDebugLog   string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the agents defined in a manifest",
	Long: `Run loads a YAML manifest of agents and tasks and executes them.

By default all tasks are flattened into one list and executed by the
orchestrator under the effective execution mode, resolved in order from
the --mode flag, the TASKFORCE_MODE environment variable, the config
file, and the built-in default (sequential).

With --per-agent (or --category) every agent instead runs through the
per-agent runner (priority sort, dependency gating, continue-on-error)
and one summary per agent is printed.

Use --watch to re-run automatically whenever the manifest changes.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		applyFlagOverrides(cmd, cfg)
		if err := cfg.Validate(); err != nil {
			return err
		}

		logger, err := logging.NewDebugLogger(cfg.Logging.DebugLog)
		if err != nil {
			return err
		}
		defer logger.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if err := runOnce(ctx, cfg, logger); err != nil {
			return err
		}
		if !runWatch {
			return nil
		}
		return watchAndRerun(ctx, cfg, logger)
	},
}

func init() {
	registerRunFlags(runCmd)
}

// registerRunFlags binds the run command's flags to their package variables.
func registerRunFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&runManifest, "manifest", "f", "taskforce.yaml", "Path to the agent manifest")
	cmd.Flags().BoolVar(&runPerAgent, "per-agent", false, "Run each agent separately instead of the flat orchestrator")
	cmd.Flags().StringVar(&runCategory, "category", "", "Only run agents with this category (implies --per-agent)")
	cmd.Flags().StringVar(&runMode, "mode", "", "Execution mode: sequential, parallel, or ultrathink")
	cmd.Flags().IntVar(&runLimit, "parallel-limit", 0, "Batch size for parallel mode")
	cmd.Flags().IntVar(&runIterations, "max-iterations", 0, "Iteration cap for ultrathink mode")
	cmd.Flags().IntVar(&runConfidence, "target-confidence", 0, "Convergence threshold for ultrathink mode (0-100)")
	cmd.Flags().StringVar(&runReport, "report", "", "Write the run report as JSON to this path")
	cmd.Flags().BoolVar(&runWatch, "watch", false, "Re-run when the manifest changes")
	cmd.Flags().StringVar(&runDebugLog, "debug-log", "", "Write debug logging to this file")
}

// applyFlagOverrides layers explicit flags over the loaded configuration.
func applyFlagOverrides(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("mode") {
		cfg.Execution.Mode = runMode
	}
	if cmd.Flags().Changed("parallel-limit") {
		cfg.Execution.ParallelLimit = runLimit
	}
	if cmd.Flags().Changed("max-iterations") {
		cfg.Execution.MaxIterations = runIterations
	}
	if cmd.Flags().Changed("target-confidence") {
		cfg.Execution.TargetConfidence = runConfidence
	}
	if cmd.Flags().Changed("report") {
		cfg.Report.Path = runReport
	}
	if cmd.Flags().Changed("debug-log") {
		cfg.Logging.DebugLog = runDebugLog
	}
}

func runOnce(ctx context.Context, cfg *config.Config, logger *logging.DebugLogger) error {
	m, err := manifest.Load(runManifest)
	if err != nil {
		return err
	}

	// --per-agent (or --category) selects the per-agent runner path; the
	// default is the flat orchestrator under the effective config mode.
	if runPerAgent || runCategory != "" {
		return runAgents(ctx, logger, m)
	}
	return runOrchestrated(ctx, cfg, logger, m)
}

func runAgents(ctx context.Context, logger *logging.DebugLogger, m *manifest.Manifest) error {
	agents, err := m.BuildAgents()
	if err != nil {
		return err
	}

	reg := registry.New(runner.New(logger), logger)
	for _, agent := range agents {
		reg.Register(agent)
	}

	var results []*models.AgentExecutionResult
	if runCategory != "" {
		results = reg.RunByCategory(ctx, models.Category(runCategory))
	} else {
		results = reg.RunAll(ctx)
	}

	for _, res := range results {
		printAgentResult(res)
	}
	return nil
}

func runOrchestrated(ctx context.Context, cfg *config.Config, logger *logging.DebugLogger, m *manifest.Manifest) error {
	tasks, exec, err := m.Flatten()
	if err != nil {
		return err
	}

	orch, err := orchestrator.New(tasks, exec, orchestrator.Options{
		Mode:             orchestrator.Mode(cfg.Execution.Mode),
		ParallelLimit:    cfg.Execution.ParallelLimit,
		MaxIterations:    cfg.Execution.MaxIterations,
		TargetConfidence: cfg.Execution.TargetConfidence,
		Logger:           logger,
	})
	if err != nil {
		return err
	}

	report, err := orch.Run(ctx)
	if err != nil {
		return err
	}

	printReport(report)

	if cfg.Report.Path != "" {
		if err := writeReport(cfg.Report.Path, report); err != nil {
			return err
		}
		fmt.Printf("report written to %s\n", cfg.Report.Path)
	}
	return nil
}

func printAgentResult(res *models.AgentExecutionResult) {
	header := color.New(color.Bold)
	header.Printf("agent %s\n", res.AgentID)

	for _, tr := range res.Results {
		switch {
		case tr.Success:
			color.Green("  ✓ %s %s", tr.TaskID, tr.Message)
		case strings.HasPrefix(tr.Message, "skipped:"):
			color.Yellow("  - %s %s", tr.TaskID, tr.Message)
		default:
			color.Red("  ✗ %s %s", tr.TaskID, tr.Message)
		}
	}
	fmt.Printf("  %s\n", res.Summary)
}

func printReport(report *orchestrator.Report) {
	s := report.Summary
	color.New(color.Bold).Printf("run %s (%s mode)\n", report.RunID, report.Mode)
	fmt.Printf("  tasks: %d total, %d completed, %d failed, %d skipped\n",
		s.TotalTasks, s.Completed, s.Failed, s.Skipped)
	fmt.Printf("  issues: %d found, %d fixed, %d files modified\n",
		s.IssuesFound, s.IssuesFixed, s.FilesModified)

	line := fmt.Sprintf("  confidence: %d%% after %d iteration(s) in %s",
		s.OverallConfidence, s.Iterations, s.Duration.Round(time.Millisecond))
	if s.Failed > 0 {
		color.Red(line)
	} else {
		color.Green(line)
	}
}

func writeReport(path string, report *orchestrator.Report) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create report directory: %w", err)
		}
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// watchAndRerun blocks watching the manifest file and re-runs on every
// write until the context is cancelled.
func watchAndRerun(ctx context.Context, cfg *config.Config, logger *logging.DebugLogger) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory rather than the file: editors replace files on
	// save, which would drop a file-level watch.
	dir := filepath.Dir(runManifest)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	target := filepath.Clean(runManifest)
	fmt.Printf("watching %s for changes\n", target)

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			fmt.Printf("manifest changed, re-running\n")
			if err := runOnce(ctx, cfg, logger); err != nil {
				color.Red("run failed: %v", err)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			color.Red("watch error: %v", err)
		}
	}
}
