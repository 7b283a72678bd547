package execute

import (
	"errors"
	"os"
	"path/filepath"

	"audiovert/internal/fileutil"
	"audiovert/internal/logging"
	"audiovert/internal/plan"
	"audiovert/internal/report"
	"audiovert/internal/source"
)

type trashItem struct {
	path string
	root string
}

// trashCandidates returns the plain-file sources whose every task completed,
// once each, in task order. Sources with a Move transfer are already gone.
func trashCandidates(p *plan.Plan) []trashItem {
	type state struct {
		ok   bool
		root string
	}
	var order []source.Source
	states := make(map[source.Source]*state)
	for _, task := range p.Tasks {
		if !task.Source.IsFile() {
			continue
		}
		st, seen := states[task.Source]
		if !seen {
			st = &state{ok: true, root: task.Root}
			states[task.Source] = st
			order = append(order, task.Source)
		}
		if kind, ok := task.Transfer(); ok && kind == plan.Move {
			st.ok = false
		}
		if !task.Completed() {
			st.ok = false
		}
	}

	var items []trashItem
	for _, src := range order {
		st := states[src]
		if !st.ok {
			continue
		}
		id, _ := src.File()
		entry, err := p.Registry.File(id)
		if err != nil {
			continue
		}
		items = append(items, trashItem{path: entry.Local, root: st.root})
	}
	return items
}

func (e *Executor) trash(p *plan.Plan, summary *Summary) {
	if !e.opts.TrashSource {
		return
	}
	items := trashCandidates(p)
	if len(items) == 0 {
		return
	}

	if info, err := os.Stat(e.opts.TrashDir); err != nil || !info.IsDir() {
		e.out.Info("Creating trash directory")
		e.out.Nest(func() {
			e.out.Blank("path: %s", report.Path(e.opts.TrashDir))
			if e.opts.DryRun {
				return
			}
			if err := os.MkdirAll(e.opts.TrashDir, 0o755); err != nil {
				e.out.Error("%v", err)
			}
		})
	}

	var checkEmpty []trashItem
	for _, item := range items {
		target := fileutil.UniquePath(e.opts.TrashDir, filepath.Base(item.path))
		e.out.Info("Trashing source file")
		e.out.Nest(func() {
			e.out.Blank("from: %s", report.Path(item.path))
			e.out.Blank("to: %s", report.Path(target))
			if e.opts.DryRun {
				return
			}
			if err := moveToTrash(item.path, target); err != nil {
				e.out.Error("%v", err)
				e.logger.Warn("trash failed", logging.String("path", item.path), logging.Error(err))
				checkEmpty = append(checkEmpty, trashItem{path: filepath.Dir(item.path), root: item.root})
				return
			}
			summary.Trashed++
		})
	}

	seen := make(map[string]bool)
	for _, dir := range checkEmpty {
		if seen[dir.path] {
			continue
		}
		seen[dir.path] = true
		summary.RemovedDirs += e.removeEmpty(dir.path, dir.root)
	}
}

// moveToTrash renames src into the trash, falling back to a verified copy
// when the trash lives on another filesystem.
func moveToTrash(src, target string) error {
	err := fileutil.Move(src, target)
	if err == nil || !errors.Is(err, fileutil.ErrCrossDevice) {
		return err
	}
	if err := fileutil.CopyFileVerified(src, target); err != nil {
		return err
	}
	return os.Remove(src)
}

// removeEmpty removes dir and its parents while they are empty and below root.
func (e *Executor) removeEmpty(dir, root string) int {
	removed := 0
	for fileutil.IsWithin(root, dir) && fileutil.IsEmptyDir(dir) {
		e.out.Info("removing empty directory:")
		failed := false
		e.out.Nest(func() {
			e.out.Blank("path: %s", report.Path(dir))
			if err := os.Remove(dir); err != nil {
				e.out.Error("%v", err)
				failed = true
			}
		})
		if failed {
			return removed
		}
		removed++
		dir = filepath.Dir(dir)
	}
	return removed
}
