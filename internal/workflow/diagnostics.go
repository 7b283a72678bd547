package workflow

import (
	"strings"

	"audiovert/internal/execute"
	"audiovert/internal/plan"
	"audiovert/internal/report"
)

func (r *Runner) printDiagnostics(p *plan.Plan) {
	for _, u := range p.Unsupported {
		r.out.Warn("Unsupported extension: %s", u.Ext)
		r.out.Nest(func() {
			execute.DescribeSource(r.out, p, u.Source)
		})
	}

	if r.opts.Execute.Verbose {
		for _, e := range p.Exists {
			r.out.Warn("already exists (--force to remove):")
			r.out.Nest(func() {
				execute.DescribeSource(r.out, p, e.Source)
				r.out.Link("to:", report.Path(e.Path), e.Abs)
			})
		}
	}

	for _, e := range p.Errors {
		r.out.Error("Error:")
		r.out.Nest(func() {
			if e.Source.IsFile() || e.Source.IsArchive() {
				execute.DescribeSource(r.out, p, e.Source)
			} else {
				r.out.Blank("path: %s", report.Path(e.Path))
			}
			for _, m := range e.Messages {
				r.out.Error("%s", m)
			}
		})
	}

	for _, d := range p.MetaDumps {
		r.out.Info("Tags:")
		r.out.Nest(func() {
			execute.DescribeSource(r.out, p, d.Source)
			for _, item := range d.Items {
				r.out.Info("%q:", item.Key)
				r.out.Nest(func() {
					r.out.Blank("%s", item)
				})
			}
		})
	}
}

func (r *Runner) printMatches(p *plan.Plan) {
	for _, m := range p.Matches {
		targets := make([]string, 0, len(m.To))
		for _, f := range m.To {
			targets = append(targets, f.String())
		}
		r.out.Info("Found matching conversions: %s -> %s", m.From, strings.Join(targets, ", "))
		r.out.Nest(func() {
			execute.DescribeSource(r.out, p, m.Source)
		})
	}
}
