package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"audiovert/internal/deps"
	"audiovert/internal/encoding"
	"audiovert/internal/execute"
	"audiovert/internal/logging"
	"audiovert/internal/meta"
	"audiovert/internal/plan"
	"audiovert/internal/report"
	"audiovert/internal/runlock"
)

// ErrAborted is returned when planning errors stop the run before execution.
var ErrAborted = errors.New("aborting due to previous errors")

// Options configure one run.
type Options struct {
	Plan    plan.Options
	Execute execute.Options
	// FFmpeg is the encoder command, possibly with a wrapper.
	FFmpeg string
	// FFprobe is used when MetaBackend is "ffprobe".
	FFprobe     string
	MetaBackend string
	KeepGoing   bool
	// Lock guards the output root against concurrent runs; ignored for dry runs.
	Lock    bool
	LockDir string
}

// Result describes a finished run.
type Result struct {
	Plan    *plan.Plan
	Summary execute.Summary
}

// Runner wires planner, executor and report together.
type Runner struct {
	opts   Options
	out    *report.Out
	logger *slog.Logger

	encoder execute.Encoder
	reader  meta.Reader
	// probed is set when reader shells out to ffprobe.
	probed bool
	check  func([]deps.Requirement) []deps.Status
}

// Option customizes a Runner.
type Option func(*Runner)

// WithEncoder replaces the ffmpeg encoder.
func WithEncoder(encoder execute.Encoder) Option {
	return func(r *Runner) { r.encoder = encoder }
}

// WithReader replaces the tag reader selected by MetaBackend.
func WithReader(reader meta.Reader) Option {
	return func(r *Runner) { r.reader = reader }
}

// WithDependencyCheck replaces the PATH lookup of external programs.
func WithDependencyCheck(check func([]deps.Requirement) []deps.Status) Option {
	return func(r *Runner) { r.check = check }
}

// New returns a Runner.
func New(opts Options, out *report.Out, logger *slog.Logger, options ...Option) *Runner {
	r := &Runner{
		opts:   opts,
		out:    out,
		logger: logging.NewComponentLogger(logger, "workflow"),
		check:  deps.CheckBinaries,
	}
	for _, apply := range options {
		apply(r)
	}
	if r.reader == nil {
		r.reader = meta.NewReader(opts.MetaBackend, opts.FFprobe)
		_, r.probed = r.reader.(meta.ProbeReader)
	}
	return r
}

// Run plans and executes. Planning diagnostics are always printed; an
// ErrAborted result still carries the plan.
func (r *Runner) Run(ctx context.Context) (Result, error) {
	var result Result

	if r.opts.Lock && !r.opts.Execute.DryRun {
		lock := runlock.New(r.opts.LockDir, r.lockRoot())
		if err := lock.Acquire(); err != nil {
			return result, err
		}
		defer func() {
			if err := lock.Release(); err != nil {
				r.logger.Warn("release run lock failed", logging.Error(err))
			}
		}()
		r.logger.Debug("run lock acquired", logging.String(logging.FieldPath, lock.Path()))
	}

	if err := r.checkProbe(); err != nil {
		return result, err
	}

	p, err := plan.New(r.opts.Plan, r.reader, r.logger).Plan(ctx)
	if err != nil {
		return result, fmt.Errorf("plan: %w", err)
	}
	result.Plan = p

	r.printDiagnostics(p)
	if len(p.Errors) > 0 && !r.opts.KeepGoing {
		r.logger.Warn("aborting run", logging.Int("errors", len(p.Errors)))
		return result, ErrAborted
	}
	if r.opts.Execute.Verbose {
		r.printMatches(p)
	}

	encoder, err := r.prepareEncoder(p)
	if err != nil {
		return result, err
	}

	exec := execute.New(r.opts.Execute, encoder, r.out, r.logger)
	summary, err := exec.Run(ctx, p)
	result.Summary = summary
	if err != nil {
		return result, err
	}
	if err := r.out.Err(); err != nil {
		return result, fmt.Errorf("write report: %w", err)
	}
	r.logger.Info("run finished",
		logging.Int("completed", summary.Completed),
		logging.Int("failed", summary.Failed),
		logging.Int("trashed", summary.Trashed),
	)
	return result, nil
}

// lockRoot is the output directory, or the first scanned path for in-place runs.
func (r *Runner) lockRoot() string {
	root := r.opts.Plan.ToDir
	if root == "" {
		root = "."
		if len(r.opts.Plan.Paths) > 0 {
			root = r.opts.Plan.Paths[0]
		}
	}
	if abs, err := filepath.Abs(root); err == nil {
		return abs
	}
	return root
}

// checkProbe fails early when tags are read through a missing ffprobe.
// Planning reads tags, so this runs for dry runs too.
func (r *Runner) checkProbe() error {
	if !r.probed || !r.opts.Plan.Meta {
		return nil
	}
	statuses := r.check(deps.Requirements("", false, r.opts.FFprobe, true))
	if err := deps.Missing(statuses); err != nil {
		r.logger.Error("ffprobe unavailable", logging.Error(err))
		return err
	}
	return nil
}

// prepareEncoder builds the encoder and verifies the external programs a
// real run needs.
func (r *Runner) prepareEncoder(p *plan.Plan) (execute.Encoder, error) {
	encoder := r.encoder
	program := ""
	if encoder == nil {
		ffmpeg, err := encoding.New(r.opts.FFmpeg)
		if err != nil {
			return nil, err
		}
		encoder = ffmpeg
		program = ffmpeg.Program()
	}
	if r.opts.Execute.DryRun || !p.HasConvert() || program == "" {
		return encoder, nil
	}
	statuses := r.check(deps.Requirements(program, true, "", false))
	if err := deps.Missing(statuses); err != nil {
		r.logger.Error("encoder unavailable", logging.Error(err))
		return nil, err
	}
	return encoder, nil
}
