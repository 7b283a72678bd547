package execute

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"audiovert/internal/encoding"
	"audiovert/internal/fileutil"
	"audiovert/internal/format"
	"audiovert/internal/logging"
	"audiovert/internal/plan"
	"audiovert/internal/report"
	"audiovert/internal/source"
)

// Encoder runs one encode. *encoding.FFmpeg implements it.
type Encoder interface {
	Encode(ctx context.Context, job encoding.Job) error
	Command(job encoding.Job) []string
}

// Options control execution.
type Options struct {
	DryRun      bool
	Verbose     bool
	TrashSource bool
	TrashDir    string
	PartExt     string
	Bitrates    format.Bitrates
}

// Summary counts task outcomes of one run.
type Summary struct {
	Planned     int
	Completed   int
	Failed      int
	Existing    int
	Trashed     int
	RemovedDirs int
}

// Executor performs the tasks of a plan.
type Executor struct {
	opts    Options
	encoder Encoder
	out     *report.Out
	logger  *slog.Logger
}

// New returns an Executor. encoder may be nil for plans without conversions
// and for dry runs.
func New(opts Options, encoder Encoder, out *report.Out, logger *slog.Logger) *Executor {
	if opts.PartExt == "" {
		opts.PartExt = plan.DefaultPartExt
	}
	return &Executor{
		opts:    opts,
		encoder: encoder,
		out:     out,
		logger:  logging.NewComponentLogger(logger, "executor"),
	}
}

// Run executes every incomplete task of p and then the trash pass. Only
// cancellation returns an error; task failures are reported and counted.
func (e *Executor) Run(ctx context.Context, p *plan.Plan) (Summary, error) {
	summary := Summary{Planned: len(p.Tasks)}
	total := len(p.Tasks)

	for _, task := range p.Tasks {
		if task.Existing {
			summary.Existing++
		}
		if task.Completed() {
			continue
		}
		if err := ctx.Err(); err != nil {
			e.out.Warn("Interrupted, remaining tasks are left for the next run")
			return summary, err
		}

		e.out.Info("Task #%d/#%d: %s", task.Index+1, total, task.Kind)
		e.out.Nest(func() {
			e.runTask(ctx, p, task)
		})

		if task.Completed() {
			summary.Completed++
			e.logger.Debug("task completed",
				logging.Int(logging.FieldTask, task.Index+1),
				logging.String("destination", task.ToPath))
		} else {
			summary.Failed++
		}
	}

	e.trash(p, &summary)
	return summary, nil
}

func (e *Executor) runTask(ctx context.Context, p *plan.Plan, task *plan.Task) {
	DescribeSource(e.out, p, task.Source)
	e.out.Link("to:", report.Path(task.ToPath), task.ToAbs)

	if !e.preRemove(task) {
		return
	}

	switch kind := task.Kind.(type) {
	case *plan.Convert:
		e.convert(ctx, p, task, kind)
	case plan.Transfer:
		e.transfer(p, task, kind.Kind)
	}
}

// preRemove runs the queued removals and keeps the failed ones queued.
func (e *Executor) preRemove(task *plan.Task) bool {
	var remaining []plan.PreRemove
	for _, pending := range task.PreRemove {
		e.out.Info("removing %s", pending.Reason)
		e.out.Nest(func() {
			if e.opts.Verbose {
				e.out.Blank("rm %s", report.Escape(pending.Path))
			} else if pending.Reason == plan.ReasonPartial {
				e.out.Blank("rm <to>.%s", e.opts.PartExt)
			} else {
				e.out.Blank("rm <to>")
			}
			if e.opts.DryRun {
				return
			}
			if err := os.Remove(pending.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
				e.out.Error("%v", err)
				e.logger.Warn("pre-removal failed", logging.String(logging.FieldPath, pending.Path), logging.Error(err))
				remaining = append(remaining, pending)
			}
		})
	}
	task.PreRemove = remaining
	return len(remaining) == 0
}

func (e *Executor) convert(ctx context.Context, p *plan.Plan, task *plan.Task, c *plan.Convert) {
	if !c.Converted {
		job, err := e.job(p, task, c)
		if err != nil {
			e.out.Error("%v", err)
			return
		}
		if !e.makeDir("partial", c.PartPath) {
			return
		}

		e.out.Blank("%s", e.commandLine(job))
		failed := false
		e.out.Nest(func() {
			if e.opts.DryRun {
				c.Converted = true
				return
			}
			if e.encoder == nil {
				e.out.Error("no encoder configured")
				failed = true
				return
			}
			if err := e.encoder.Encode(ctx, job); err != nil {
				e.out.Error("%v", err)
				e.logger.Warn("encode failed",
					logging.String(logging.FieldFormat, c.To.String()),
					logging.String("destination", task.ToPath),
					logging.Error(err))
				failed = true
				return
			}
			c.Converted = true
		})
		if failed {
			return
		}
	}

	if c.Converted && !task.Moved {
		if !e.makeDir("rename", task.ToPath) {
			return
		}
		e.out.Blank("mv <to>.%s <to>", e.opts.PartExt)
		e.out.Nest(func() {
			if e.opts.Verbose {
				e.out.Blank("from: %s", report.Path(c.PartPath))
				e.out.Blank("to: %s", report.Path(task.ToPath))
			}
			if e.opts.DryRun {
				task.Moved = true
				return
			}
			if err := fileutil.Move(c.PartPath, task.ToPath); err != nil {
				e.out.Error("%v", err)
				return
			}
			task.Moved = true
		})
	}
}

func (e *Executor) job(p *plan.Plan, task *plan.Task, c *plan.Convert) (encoding.Job, error) {
	job := encoding.Job{Output: c.PartPath, Format: c.To}
	if kbps, ok := e.opts.Bitrates.Get(c.To); ok {
		job.Bitrate = kbps
	}
	if id, ok := task.Source.File(); ok {
		entry, err := p.Registry.File(id)
		if err != nil {
			return encoding.Job{}, err
		}
		job.Input = entry.Path
		return job, nil
	}
	if e.opts.DryRun {
		job.Data = []byte{}
		return job, nil
	}
	data, err := p.Registry.Contents(task.Source)
	if err != nil {
		return encoding.Job{}, fmt.Errorf("reading source contents: %w", err)
	}
	job.Data = data
	return job, nil
}

func (e *Executor) commandLine(job encoding.Job) string {
	var argv []string
	if e.encoder != nil {
		argv = e.encoder.Command(job)
	} else {
		argv = append([]string{encoding.DefaultBinary}, encoding.Args(job)...)
	}
	cmd := report.NewCommand(argv)
	if !e.opts.Verbose {
		cmd.Replace(argv[0], "<ffmpeg>")
		if job.Data == nil {
			cmd.Replace(job.Input, "<from>")
		}
		cmd.Replace(job.Output, "<to>."+e.opts.PartExt)
	}
	return cmd.String()
}

func (e *Executor) transfer(p *plan.Plan, task *plan.Task, kind plan.TransferKind) {
	if task.Moved {
		return
	}
	if !e.makeDir(kind.String(), task.ToPath) {
		return
	}
	if e.opts.Verbose {
		DescribeSource(e.out, p, task.Source)
		e.out.Blank("to: %s", report.Path(task.ToPath))
	} else {
		e.out.Blank("%s <from> <to>", kind.Command())
	}
	if e.opts.DryRun {
		task.Moved = true
		return
	}

	if err := e.place(p, task, kind); err != nil {
		e.out.Nest(func() {
			e.out.Error("%v", err)
			if errors.Is(err, fileutil.ErrCrossDevice) && kind == plan.Link {
				e.out.Blank("hard links need the output on the same filesystem, use --move or another --to")
			}
		})
		e.logger.Warn("transfer failed",
			logging.String("kind", kind.String()),
			logging.String("destination", task.ToPath),
			logging.Error(err))
		return
	}
	task.Moved = true
}

func (e *Executor) place(p *plan.Plan, task *plan.Task, kind plan.TransferKind) error {
	if task.Source.IsArchive() {
		data, err := p.Registry.Contents(task.Source)
		if err != nil {
			return err
		}
		return fileutil.WriteFileVerified(task.ToPath, data, 0o644)
	}

	id, _ := task.Source.File()
	entry, err := p.Registry.File(id)
	if err != nil {
		return err
	}
	switch kind {
	case plan.Link:
		return fileutil.Link(entry.Abs, task.ToPath)
	case plan.Move:
		return fileutil.Move(entry.Local, task.ToPath)
	default:
		return fileutil.CopyFileVerified(entry.Abs, task.ToPath)
	}
}

func (e *Executor) makeDir(what, target string) bool {
	parent := filepath.Dir(target)
	if info, err := os.Stat(parent); err == nil && info.IsDir() {
		return true
	}
	e.out.Info("making %s dir", what)
	ok := true
	e.out.Nest(func() {
		e.out.Blank("mkdir -p %s", report.Escape(parent))
		if e.opts.DryRun {
			return
		}
		if err := os.MkdirAll(parent, 0o755); err != nil {
			e.out.Error("%v", err)
			ok = false
		}
	})
	return ok
}

// DescribeSource prints the origin of src: a file path, or an archive path
// followed by the entry inside it.
func DescribeSource(out *report.Out, p *plan.Plan, src source.Source) {
	if id, ok := src.File(); ok {
		if entry, err := p.Registry.File(id); err == nil {
			out.Link("from:", report.Path(entry.Path), entry.Abs)
			return
		}
	}
	if id, name, ok := src.Archive(); ok {
		if a, err := p.Registry.Archive(id); err == nil {
			out.Link(fmt.Sprintf("from %s:", a.Kind), report.Path(a.Path), a.Abs)
			out.Nest(func() {
				out.Blank("entry: %s", report.Path(name))
			})
			return
		}
	}
	out.Blank("from: %s", src)
}
