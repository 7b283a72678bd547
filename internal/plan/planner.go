package plan

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"audiovert/internal/archive"
	"audiovert/internal/format"
	"audiovert/internal/logging"
	"audiovert/internal/meta"
	"audiovert/internal/rules"
	"audiovert/internal/source"
)

// DefaultPartExt is the suffix of in-progress conversion outputs.
const DefaultPartExt = "part"

// Options control one planning pass.
type Options struct {
	// Paths are scanned in order; empty means ".".
	Paths      []string
	Conditions []rules.Condition
	// ToDir mirrors sources under this directory instead of converting in place.
	ToDir string
	// Meta enables metadata-derived destinations.
	Meta          bool
	MetaDump      bool
	MetaDumpError bool
	Force         bool
	Move          bool
	// Forced formats are re-encoded even when source and target match.
	Forced  format.Set
	PartExt string
}

// Planner builds a Plan from the filesystem.
type Planner struct {
	opts   Options
	reader meta.Reader
	logger *slog.Logger
	toAbs  string

	plan    *Plan
	planned map[string]source.Source
}

// New returns a Planner. reader may be nil when opts.Meta is false.
func New(opts Options, reader meta.Reader, logger *slog.Logger) *Planner {
	if len(opts.Paths) == 0 {
		opts.Paths = []string{"."}
	}
	if len(opts.Conditions) == 0 {
		opts.Conditions = rules.DefaultConditions()
	}
	if opts.PartExt == "" {
		opts.PartExt = DefaultPartExt
	}
	if reader == nil {
		reader = meta.TagReader{}
	}
	p := &Planner{
		opts:   opts,
		reader: reader,
		logger: logging.NewComponentLogger(logger, "planner"),
	}
	if opts.ToDir != "" {
		if abs, err := filepath.Abs(opts.ToDir); err == nil {
			p.toAbs = abs
		}
	}
	return p
}

// Plan walks every input path and builds the task list. Per-source problems
// are collected in Plan.Errors; only cancellation aborts the walk.
func (p *Planner) Plan(ctx context.Context) (*Plan, error) {
	p.plan = &Plan{Registry: source.NewRegistry()}
	p.planned = make(map[string]source.Source)

	for _, input := range p.opts.Paths {
		if err := p.scan(ctx, input); err != nil {
			return nil, err
		}
	}

	p.logger.Info("plan built",
		logging.Int("tasks", len(p.plan.Tasks)),
		logging.Int("pending", len(p.plan.Pending())),
		logging.Int("errors", len(p.plan.Errors)),
		logging.Int("unsupported", len(p.plan.Unsupported)),
	)
	return p.plan, nil
}

func (p *Planner) scan(ctx context.Context, input string) error {
	info, err := os.Stat(input)
	if err != nil {
		p.pathError(input, err.Error())
		return nil
	}
	if !info.IsDir() {
		return p.visitFile(ctx, scanRoot(filepath.Dir(input)), filepath.Dir(input), input)
	}

	root := scanRoot(input)
	return filepath.WalkDir(input, func(current string, d fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if walkErr != nil {
			p.pathError(current, walkErr.Error())
			return nil
		}
		if d.IsDir() {
			if p.toAbs != "" && current != input {
				if abs, err := filepath.Abs(current); err == nil && abs == p.toAbs {
					return filepath.SkipDir
				}
			}
			return nil
		}
		if !d.Type().IsRegular() && d.Type()&fs.ModeSymlink == 0 {
			return nil
		}
		return p.visitFile(ctx, root, input, current)
	})
}

// scanRoot makes the directory a scan started from absolute, keeping
// symlinks so it lines up with FileEntry.Local; the empty directory cascade
// never climbs above it.
func scanRoot(dir string) string {
	if abs, err := filepath.Abs(dir); err == nil {
		return abs
	}
	return dir
}

type discovered struct {
	src source.Source
	// path is the virtual path used for destinations and self-conversion checks.
	path string
	// base is the directory path is relative to when mirroring under ToDir.
	base string
	root string
	ext  string
}

func (p *Planner) visitFile(ctx context.Context, root, base, current string) error {
	ext := extOf(current)
	if ext == strings.ToLower(p.opts.PartExt) {
		return nil
	}

	if kind, ok := archive.KindFromExt(ext); ok {
		return p.visitArchive(ctx, kind, root, base, current)
	}

	id, err := p.plan.Registry.PushFile(current)
	if err != nil {
		p.pathError(current, err.Error())
		return nil
	}
	return p.visitSource(ctx, discovered{
		src:  source.FromFile(id),
		path: current,
		base: base,
		root: root,
		ext:  ext,
	})
}

func (p *Planner) visitArchive(ctx context.Context, kind archive.Kind, root, base, current string) error {
	id, err := p.plan.Registry.PushArchive(kind, current)
	if err != nil {
		p.pathError(current, err.Error())
		return nil
	}
	dir := strings.TrimSuffix(current, filepath.Ext(current))

	var entries []string
	err = p.plan.Registry.Enumerate(id, func(name string) error {
		entries = append(entries, name)
		return nil
	})
	if err != nil {
		p.pathError(current, err.Error())
		return nil
	}

	for _, name := range entries {
		src := source.FromArchive(id, name)
		if archive.IsTraversal(name) {
			p.sourceError(src, "entry escapes the archive: "+name)
			continue
		}
		err := p.visitSource(ctx, discovered{
			src:  src,
			path: filepath.Join(dir, filepath.FromSlash(name)),
			base: base,
			root: root,
			ext:  strings.ToLower(strings.TrimPrefix(path.Ext(name), ".")),
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (p *Planner) visitSource(ctx context.Context, d discovered) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	from, ok := format.FromExt(d.ext)
	if !ok {
		p.plan.Unsupported = append(p.plan.Unsupported, Unsupported{Source: d.src, Ext: d.ext})
		return nil
	}

	targets := rules.Targets(p.opts.Conditions, from)
	if targets.Empty() {
		return nil
	}
	p.plan.Matches = append(p.plan.Matches, Match{Source: d.src, From: from, To: targets.Formats()})

	var parts *meta.Parts
	if p.opts.Meta {
		resolved, ok := p.readParts(ctx, d)
		if !ok {
			return nil
		}
		parts = &resolved
	}

	for _, to := range targets.Formats() {
		p.addTask(d, from, to, parts)
	}
	return nil
}

func (p *Planner) readParts(ctx context.Context, d discovered) (meta.Parts, bool) {
	in := meta.Input{Ext: d.ext}
	if id, ok := d.src.File(); ok {
		entry, err := p.plan.Registry.File(id)
		if err != nil {
			p.sourceError(d.src, err.Error())
			return meta.Parts{}, false
		}
		in.Path = entry.Abs
	} else {
		data, err := p.plan.Registry.Contents(d.src)
		if err != nil {
			p.sourceError(d.src, err.Error())
			return meta.Parts{}, false
		}
		in.Data = data
	}

	tags, err := p.reader.ReadTags(ctx, in)
	if err != nil {
		p.logger.Debug("tag read failed", logging.String("path", d.path), logging.Error(err))
		p.sourceError(d.src, err.Error())
		return meta.Parts{}, false
	}

	parts, err := meta.Parse(tags)
	if p.opts.MetaDump || (err != nil && p.opts.MetaDumpError) {
		p.plan.MetaDumps = append(p.plan.MetaDumps, MetaDump{Source: d.src, Items: tags.Items})
	}
	if err != nil {
		var incomplete *meta.IncompleteError
		if errors.As(err, &incomplete) {
			p.sourceError(d.src, incomplete.Messages()...)
		} else {
			p.sourceError(d.src, err.Error())
		}
		return meta.Parts{}, false
	}
	return parts, true
}

func (p *Planner) destination(d discovered, to format.Format, parts *meta.Parts) string {
	if parts != nil {
		base := p.opts.ToDir
		if base == "" {
			base = d.base
		}
		return parts.Path(base, to.Ext())
	}
	if p.opts.ToDir != "" {
		rel, err := filepath.Rel(d.base, d.path)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			rel = filepath.Base(d.path)
		}
		return swapExt(filepath.Join(p.opts.ToDir, rel), to)
	}
	return swapExt(d.path, to)
}

func (p *Planner) addTask(d discovered, from, to format.Format, parts *meta.Parts) {
	dest := p.destination(d, to, parts)
	abs, err := filepath.Abs(dest)
	if err != nil {
		p.sourceError(d.src, err.Error())
		return
	}

	if d.src.IsFile() {
		if sourceAbs, err := filepath.Abs(d.path); err == nil && sourceAbs == abs {
			p.logger.Debug("self conversion dropped", logging.String("path", d.path))
			return
		}
	}
	if other, ok := p.planned[abs]; ok && other != d.src {
		p.sourceError(d.src, fmt.Sprintf("destination already planned for another source: %s", dest))
		return
	}
	p.planned[abs] = d.src

	task := &Task{
		Index:  len(p.plan.Tasks),
		Source: d.src,
		From:   from,
		ToPath: dest,
		ToAbs:  abs,
		Root:   d.root,
	}

	var convert *Convert
	switch {
	case from == to && !p.opts.Forced.Has(to):
		kind := Link
		if d.src.IsArchive() {
			kind = Copy
		} else if p.opts.Move {
			kind = Move
		}
		task.Kind = Transfer{Kind: kind}
	default:
		convert = &Convert{PartPath: dest + "." + p.opts.PartExt, From: from, To: to}
		task.Kind = convert
	}

	if exists(dest) {
		if !p.opts.Force {
			p.plan.Exists = append(p.plan.Exists, Exists{Source: d.src, Path: dest, Abs: abs})
			task.Existing = true
			task.Moved = true
			if convert != nil {
				convert.Converted = true
			}
			p.plan.Tasks = append(p.plan.Tasks, task)
			return
		}
		task.PreRemove = append(task.PreRemove, PreRemove{Reason: ReasonExisting, Path: dest})
	}
	if convert != nil && exists(convert.PartPath) {
		task.PreRemove = append(task.PreRemove, PreRemove{Reason: ReasonPartial, Path: convert.PartPath})
	}

	p.plan.Tasks = append(p.plan.Tasks, task)
}

func (p *Planner) pathError(at string, messages ...string) {
	p.plan.Errors = append(p.plan.Errors, PathError{Path: at, Messages: messages})
}

func (p *Planner) sourceError(src source.Source, messages ...string) {
	p.plan.Errors = append(p.plan.Errors, PathError{
		Source:   src,
		Path:     p.plan.DisplayPath(src),
		Messages: messages,
	})
}

func swapExt(p string, to format.Format) string {
	return strings.TrimSuffix(p, filepath.Ext(p)) + "." + to.Ext()
}

func extOf(p string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(p), "."))
}

func exists(p string) bool {
	_, err := os.Lstat(p)
	return err == nil
}
