// Command filemover is the CLI entry point for the Plan Engine: scan
// directories for rule matches, build and review a relocation plan,
// simulate or apply it, and undo a prior apply from its journal.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/xuanyiying/filemover-cli/internal/config"
	"github.com/xuanyiying/filemover-cli/internal/executor"
	"github.com/xuanyiying/filemover-cli/internal/journal"
	"github.com/xuanyiying/filemover-cli/internal/output"
	"github.com/xuanyiying/filemover-cli/internal/planner"
	"github.com/xuanyiying/filemover-cli/internal/scanner"
	"github.com/xuanyiying/filemover-cli/internal/setup"
	"github.com/xuanyiying/filemover-cli/internal/tui"
	"github.com/xuanyiying/filemover-cli/internal/types"
	"github.com/xuanyiying/filemover-cli/internal/undo"
	"github.com/xuanyiying/filemover-cli/internal/visualizer"
)

// Exit codes named in the external interface contract.
const (
	exitOK           = 0
	exitGeneric      = 1
	exitConfig       = 10
	exitInvalidArgs  = 11
	exitScan         = 20
	exitIO           = 30
)

// Version is set during build time.
var Version = "0.1.0"

var (
	profileName string
	yesToAll    bool
	noTUI       bool

	console   *output.Console
	configMgr *config.Manager
)

var rootCmd = &cobra.Command{
	Use:   "filemover",
	Short: "Declarative, rule-based bulk folder relocation",
	Long: `filemover scans directories for folders matching declarative
rules, builds a relocation plan with conflict detection, and applies
it with a journal that makes the whole run undoable.

Version: ` + Version,
}

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan configured roots and list matching folders",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadProfile()
		if err != nil {
			return exitErr(exitConfig, err)
		}
		hits, err := runScan(cmd.Context(), cfg)
		if err != nil {
			return exitErr(exitScan, err)
		}
		console.Success("found %d matching folder(s)", len(hits))
		rows := make([][]string, 0, len(hits))
		for _, h := range hits {
			rows = append(rows, []string{h.Path, h.DestPreview})
		}
		console.Table([]string{"Path", "Destination preview"}, rows)
		return nil
	},
}

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Build and display a relocation plan",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, sess, err := buildSession(cmd.Context())
		if err != nil {
			return err
		}
		renderer := visualizer.NewPlanRenderer(console, nil)
		if err := renderer.RenderPlanTree(sess.Plan, os.Stdout); err != nil {
			return exitErr(exitIO, err)
		}
		console.Info("\n%d dirs, %d files, %d conflicts, %d warnings",
			sess.Plan.Summary.CountDirs, sess.Plan.Summary.CountFiles,
			sess.Plan.Summary.Conflicts, sess.Plan.Summary.Warnings)
		return nil
	},
}

var dryRunCmd = &cobra.Command{
	Use:   "dry-run",
	Short: "Simulate a plan without touching the filesystem",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, sess, err := buildSession(cmd.Context())
		if err != nil {
			return err
		}
		report := planner.SimulatePlan(sess.Plan)
		console.Box("Simulation", []string{
			fmt.Sprintf("Estimated successes: %d", report.SuccessEstimate),
			fmt.Sprintf("Remaining conflicts: %d", report.ConflictsRemaining),
			fmt.Sprintf("Skipped nodes:       %d", report.SkippedCount),
			fmt.Sprintf("Estimated duration:  %.1fs", report.EstimatedDurationSecs),
		})
		return nil
	},
}

var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Review and apply a relocation plan",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		_, sess, err := buildSession(ctx)
		if err != nil {
			return err
		}

		if !yesToAll && !noTUI {
			result, err := tui.Run(sess)
			if err != nil {
				return exitErr(exitIO, err)
			}
			if !result.Accepted {
				console.Warning("apply cancelled")
				return nil
			}
		}

		dir, err := config.Dir()
		if err != nil {
			return exitErr(exitConfig, err)
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return exitErr(exitIO, err)
		}
		jw, err := journal.OpenWriter(journalPath(dir))
		if err != nil {
			return exitErr(exitIO, err)
		}
		defer jw.Close()

		bar := output.NewSpinner("applying plan")
		exec := executor.New()
		result, err := exec.Apply(ctx, sess.Plan, jw, nil)
		bar.Stop()
		if err != nil {
			return exitErr(exitIO, err)
		}

		console.Success("%d succeeded, %d failed, %d attempted", result.Succeeded, result.Failed, result.Attempted)
		if result.Failed > 0 {
			return exitErr(exitIO, fmt.Errorf("apply: %d node(s) failed", result.Failed))
		}
		return nil
	},
}

var undoCmd = &cobra.Command{
	Use:   "undo",
	Short: "Undo the operations recorded in the journal",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		dir, err := config.Dir()
		if err != nil {
			return exitErr(exitConfig, err)
		}
		path := journalPath(dir)
		entries, err := journal.ReadAll(path)
		if err != nil {
			return exitErr(exitIO, err)
		}

		actions, blocked := undo.Analyze(entries)
		for _, b := range blocked {
			console.Warning("skipping %s: %s", b.Entry.Dest, b.Issue)
		}
		if len(actions) == 0 {
			console.Info("nothing to undo")
			return nil
		}

		jw, err := journal.OpenWriter(path)
		if err != nil {
			return exitErr(exitIO, err)
		}
		defer jw.Close()

		exec := executor.New()
		result, err := exec.ApplyUndo(ctx, actions, jw)
		if err != nil {
			return exitErr(exitIO, err)
		}
		console.Success("undo: %d succeeded, %d failed", result.Succeeded, result.Failed)
		if result.Failed > 0 {
			return exitErr(exitIO, fmt.Errorf("undo: %d action(s) failed", result.Failed))
		}
		return nil
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage named configuration profiles",
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved profiles",
	RunE: func(cmd *cobra.Command, args []string) error {
		profiles, err := configMgr.List()
		if err != nil {
			return exitErr(exitConfig, err)
		}
		if len(profiles) == 0 {
			console.Info("no profiles saved")
			return nil
		}
		for _, p := range profiles {
			console.Info("%s", p)
		}
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show PROFILE",
	Args:  cobra.ExactArgs(1),
	Short: "Show a profile's configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := configMgr.Load(args[0])
		if err != nil {
			return exitErr(exitConfig, err)
		}
		console.Box(args[0], []string{
			fmt.Sprintf("Roots: %v", cfg.Roots),
			fmt.Sprintf("Rules: %d configured", len(cfg.Rules)),
		})
		return nil
	},
}

var configCreateCmd = &cobra.Command{
	Use:   "create PROFILE",
	Args:  cobra.ExactArgs(1),
	Short: "Interactively create or edit a profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		fromName, _ := cmd.Flags().GetString("from")

		var base *config.Config
		if fromName != "" {
			loaded, err := configMgr.Load(fromName)
			if err != nil {
				return exitErr(exitConfig, err)
			}
			base = &loaded
		}

		if err := setup.RunWizard(configMgr, name, base); err != nil {
			return exitErr(exitConfig, err)
		}
		return nil
	},
}

var configDeleteCmd = &cobra.Command{
	Use:   "delete PROFILE",
	Args:  cobra.ExactArgs(1),
	Short: "Delete a saved profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := configMgr.Delete(args[0]); err != nil {
			return exitErr(exitConfig, err)
		}
		console.Success("profile %q deleted", args[0])
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("filemover v%s\n", Version)
	},
}

func loadProfile() (config.Config, error) {
	if profileName == "" {
		profileName = "default"
	}
	return configMgr.Load(profileName)
}

func runScan(ctx context.Context, cfg config.Config) ([]types.FolderHit, error) {
	if len(cfg.Roots) == 0 {
		return nil, fmt.Errorf("profile %q has no scan roots configured", profileName)
	}
	return scanner.ScanRoots(ctx, cfg.Roots, cfg.Rules, cfg.Options, time.Now().UTC(), nil)
}

func buildSession(ctx context.Context) (config.Config, *planner.Session, error) {
	cfg, err := loadProfile()
	if err != nil {
		return config.Config{}, nil, exitErr(exitConfig, err)
	}
	hits, err := runScan(ctx, cfg)
	if err != nil {
		return config.Config{}, nil, exitErr(exitScan, err)
	}
	sess, err := planner.CreatePlan(hits, cfg.Rules, planner.SystemClock{}, nil)
	if err != nil {
		return config.Config{}, nil, exitErr(exitScan, err)
	}
	return cfg, sess, nil
}

func journalPath(dir string) string {
	return filepath.Join(dir, "journal.ndjson")
}

// exitCodeErr carries the process exit code alongside the error
// message cobra prints, so Execute can translate it after RunE
// returns instead of calling os.Exit from deep inside a command.
type exitCodeErr struct {
	code int
	err  error
}

func (e *exitCodeErr) Error() string { return e.err.Error() }
func (e *exitCodeErr) Unwrap() error { return e.err }

func exitErr(code int, err error) error {
	return &exitCodeErr{code: code, err: err}
}

func init() {
	console = output.NewConsole(os.Stdout)

	dir, err := config.Dir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "filemover: resolve config directory: %v\n", err)
		os.Exit(exitConfig)
	}
	configMgr = config.NewManager(dir)

	rootCmd.PersistentFlags().StringVar(&profileName, "profile", "default", "configuration profile to use")
	applyCmd.Flags().BoolVar(&yesToAll, "yes", false, "apply without interactive review")
	applyCmd.Flags().BoolVar(&noTUI, "no-tui", false, "skip the interactive reviewer and apply the plan without review")
	configCreateCmd.Flags().String("from", "", "seed the new profile from an existing one")

	configCmd.AddCommand(configListCmd, configShowCmd, configCreateCmd, configDeleteCmd)
	rootCmd.AddCommand(scanCmd, planCmd, dryRunCmd, applyCmd, undoCmd, configCmd, versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		code := exitInvalidArgs
		if ec, ok := err.(*exitCodeErr); ok {
			code = ec.code
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(code)
	}
}
