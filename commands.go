package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/crillab/gophergap/gapfile"
	"github.com/crillab/gophergap/internal/config"
	"github.com/crillab/gophergap/internal/telemetry"
)

// app is the state shared by all commands of a run.
type app struct {
	cfg      config.Config
	runID    string
	logger   *slog.Logger
	metrics  *telemetry.SearchMetrics
	shutdown func(context.Context) error
	out      io.Writer
	errOut   io.Writer
	styles   styles
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	a := &app{out: out, errOut: errOut}
	var (
		cfgPath string
		verbose bool
	)
	root := &cobra.Command{
		Use:           "gophergap",
		Short:         "Solves generalized assignment problems with shared tasks",
		Long:          "gophergap finds every maximal assignment of agents to tasks with the best possible profit.\nTasks can be shared by several agents, as long as their budget allows it.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}
			if verbose {
				cfg.Log.Level = "debug"
			}
			a.cfg = cfg
			return nil
		},
	}
	root.PersistentFlags().StringVar(&cfgPath, "config", "", "YAML configuration file")
	root.PersistentFlags().BoolVar(&verbose, "verbose", false, "sets verbose mode on")
	root.AddCommand(newSolveCmd(a), newCheckCmd(a), newExampleCmd(a))
	return root
}

// start sets up logging, tracing and metrics once the configuration is final.
func (a *app) start() error {
	a.runID = uuid.NewString()
	logger, err := newLogger(a.errOut, a.cfg.Log)
	if err != nil {
		return err
	}
	a.logger = logger.With("run_id", a.runID)
	a.shutdown, err = telemetry.SetupTracing(a.cfg.Telemetry.TraceExporter, a.errOut)
	if err != nil {
		return err
	}
	a.metrics = telemetry.NewSearchMetrics()
	a.styles = newStyles(a.out, a.cfg.Output.Color)
	return nil
}

// stop flushes traces and writes metrics, if asked to.
func (a *app) stop() error {
	if err := a.shutdown(context.Background()); err != nil {
		a.logger.Warn("could not flush traces", "error", err)
	}
	if path := a.cfg.Telemetry.MetricsFile; path != "" {
		if err := a.metrics.WriteTextfile(path); err != nil {
			return fmt.Errorf("could not write metrics to %q: %w", path, err)
		}
		a.logger.Debug("metrics written", "path", path)
	}
	return nil
}

func (a *app) run(f func() error) (err error) {
	if err := a.start(); err != nil {
		return err
	}
	defer func() {
		if stopErr := a.stop(); err == nil {
			err = stopErr
		}
	}()
	if err := f(); err != nil {
		a.logger.Error("run failed", "error", err)
		return err
	}
	return nil
}

func newSolveCmd(a *app) *cobra.Command {
	var (
		jobs          int
		maxExpansions int
		timeout       time.Duration
		format        string
		metricsFile   string
	)
	cmd := &cobra.Command{
		Use:   "solve file.yaml...",
		Short: "Prints the optimal, maximal assignments of each problem file",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			if flags.Changed("jobs") {
				a.cfg.Solver.Jobs = jobs
			}
			if flags.Changed("max-expansions") {
				a.cfg.Solver.MaxExpansions = maxExpansions
			}
			if flags.Changed("timeout") {
				a.cfg.Solver.Timeout = timeout
			}
			if flags.Changed("format") {
				a.cfg.Output.Format = format
			}
			if flags.Changed("metrics-file") {
				a.cfg.Telemetry.MetricsFile = metricsFile
			}
			if err := a.cfg.Validate(); err != nil {
				return fmt.Errorf("invalid options: %w", err)
			}
			return a.run(func() error {
				reports, err := a.solveFiles(cmd.Context(), args)
				if err != nil {
					return err
				}
				return a.print(reports)
			})
		},
	}
	cmd.Flags().IntVar(&jobs, "jobs", 1, "how many files are solved concurrently")
	cmd.Flags().IntVar(&maxExpansions, "max-expansions", 0, "stops each search after that many expansions (0: no limit)")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "stops each search after that duration (0: no limit)")
	cmd.Flags().StringVar(&format, "format", "text", "output format (text|yaml)")
	cmd.Flags().StringVar(&metricsFile, "metrics-file", "", "writes Prometheus metrics to that file")
	return cmd
}

func newCheckCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check file.yaml...",
		Short: "Solves each problem file, then audits the result against a brute-force enumeration",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(func() error {
				reports, err := a.solveFiles(cmd.Context(), args)
				if err != nil {
					return err
				}
				var failed []string
				for _, r := range reports {
					if err := a.audit(r); err != nil {
						a.logger.Error("check failed", "file", r.File, "error", err)
						fmt.Fprintf(a.out, "%s %s: %v\n", a.styles.bad.Render("FAIL"), r.File, err)
						failed = append(failed, r.File)
						continue
					}
					fmt.Fprintf(a.out, "%s %s\n", a.styles.good.Render("OK"), r.File)
				}
				if len(failed) > 0 {
					return fmt.Errorf("check failed for %s", strings.Join(failed, ", "))
				}
				return nil
			})
		},
	}
}

func newExampleCmd(a *app) *cobra.Command {
	var printFile bool
	cmd := &cobra.Command{
		Use:   "example",
		Short: "Solves a small sample problem",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if printFile {
				return gapfile.Write(a.out, gapfile.Sample())
			}
			return a.run(func() error {
				r, err := a.solveFile(cmd.Context(), "sample", gapfile.Sample())
				if err != nil {
					return err
				}
				return a.print([]*report{r})
			})
		},
	}
	cmd.Flags().BoolVar(&printFile, "print", false, "prints the sample problem file instead of solving it")
	return cmd
}
