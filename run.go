package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/crillab/gophergap/gap"
	"github.com/crillab/gophergap/gapfile"
	"github.com/crillab/gophergap/internal/config"
	"github.com/crillab/gophergap/internal/telemetry"
	"github.com/crillab/gophergap/verify"
)

// A report is the outcome of the search for one problem file.
type report struct {
	File        string                `yaml:"file"`
	Status      string                `yaml:"status"`
	Profit      *gapfile.Number       `yaml:"profit,omitempty"` // nil if no maximal assignment was found
	Assignments []map[string][]string `yaml:"assignments"`
	Stats       reportStats           `yaml:"stats"`

	pb    *gapfile.Problem
	scale gapfile.Scale
	res   []*gapfile.Assignment
}

type reportStats struct {
	Expanded   int           `yaml:"expanded"`
	Generated  int           `yaml:"generated"`
	Duplicates int           `yaml:"duplicates"`
	Maximal    int           `yaml:"maximal"`
	MaxOpen    int           `yaml:"max_open"`
	Duration   time.Duration `yaml:"duration"`
}

func newLogger(w io.Writer, cfg config.LogConfig) (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return slog.New(slog.NewTextHandler(w, opts)), nil
}

// solveFiles parses and solves each file, at most cfg.Solver.Jobs at a time.
// Reports are returned in the order of paths.
func (a *app) solveFiles(ctx context.Context, paths []string) ([]*report, error) {
	reports := make([]*report, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(a.cfg.Solver.Jobs)
	for i, path := range paths {
		g.Go(func() error {
			f, err := gapfile.ParseFile(path)
			if err != nil {
				a.metrics.RecordFailure(0)
				return err
			}
			r, err := a.solveFile(ctx, path, f)
			if err != nil {
				return err
			}
			reports[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}

// solveFile solves the problem described by f, named name in logs and reports.
func (a *app) solveFile(ctx context.Context, name string, f *gapfile.File) (r *report, err error) {
	ctx, span := telemetry.StartSolve(ctx, a.runID, name)
	start := time.Now()
	var s *gap.Solver[string, string, int64, int64]
	defer func() {
		if err != nil {
			a.metrics.RecordFailure(time.Since(start))
			telemetry.EndSolve(span, gap.Stats{}, gap.Indet, 0, err)
			return
		}
		a.metrics.Record(s.Stats, s.Status(), len(r.res))
		telemetry.EndSolve(span, s.Stats, s.Status(), len(r.res), nil)
	}()

	pb, scale, err := f.Problem()
	if err != nil {
		return nil, fmt.Errorf("invalid problem %q: %w", name, err)
	}
	s, err = gap.New(pb)
	if err != nil {
		return nil, fmt.Errorf("could not solve %q: %w", name, err)
	}
	logger := a.logger.With("file", name)
	s.Logger = logger
	s.MaxExpansions = a.cfg.Solver.MaxExpansions
	if a.cfg.Solver.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.cfg.Solver.Timeout)
		defer cancel()
	}
	status := s.SolveContext(ctx)
	if status != gap.Optimal {
		logger.Warn("search stopped before completion, assignments may not be optimal",
			"expanded", s.Stats.NbExpanded)
	}
	return newReport(name, pb, scale, s), nil
}

func newReport(name string, pb *gapfile.Problem, scale gapfile.Scale, s *gap.Solver[string, string, int64, int64]) *report {
	res := s.Assignments()
	r := &report{
		File:        name,
		Status:      s.Status().String(),
		Assignments: make([]map[string][]string, len(res)),
		Stats: reportStats{
			Expanded:   s.Stats.NbExpanded,
			Generated:  s.Stats.NbGenerated,
			Duplicates: s.Stats.NbDuplicates,
			Maximal:    s.Stats.NbMaximal,
			MaxOpen:    s.Stats.MaxOpen,
			Duration:   s.Stats.Duration,
		},
		pb:    pb,
		scale: scale,
		res:   res,
	}
	if best, ok := s.Best(); ok {
		profit := scale.Profit(best)
		r.Profit = &profit
	}
	for i, as := range res {
		r.Assignments[i] = as.Assigned()
	}
	return r
}

// audit checks the assignments of r are all the optimal, maximal ones.
// Problems too large to be enumerated, or with negative costs, are only checked
// for feasibility and maximality.
func (a *app) audit(r *report) error {
	if r.Status != gap.Optimal.String() {
		return fmt.Errorf("search status is %s", r.Status)
	}
	if err := verify.Check(r.pb, r.res); err != nil {
		return err
	}
	expected, err := verify.BruteForce(r.pb)
	if errors.Is(err, verify.ErrTooLarge) || errors.Is(err, verify.ErrNegativeCost) {
		a.logger.Warn("optimality not checked", "file", r.File, "reason", err)
		return nil
	}
	if err != nil {
		return err
	}
	if len(expected) != len(r.res) {
		return fmt.Errorf("%d optimal assignments found, %d expected", len(r.res), len(expected))
	}
	if got, want := r.res[0].Profit(), expected[0].Profit(); got != want {
		return fmt.Errorf("best profit is %v, %v expected", r.scale.Profit(got), r.scale.Profit(want))
	}
	found := make(map[string]bool, len(r.res))
	for _, as := range r.res {
		found[as.Key()] = true
	}
	for _, as := range expected {
		if !found[as.Key()] {
			return fmt.Errorf("optimal assignment %s is missing", r.scale.Format(as))
		}
	}
	return nil
}
