package report

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"
)

var (
	infoColors  = text.Colors{text.FgGreen, text.Bold}
	warnColors  = text.Colors{text.FgYellow, text.Bold}
	errorColors = text.Colors{text.FgRed, text.Bold}
)

// Out is an indentation-aware line writer.
type Out struct {
	w     io.Writer
	color bool
	depth int
	err   error
}

// New returns an Out writing to w.
func New(w io.Writer, color bool) *Out {
	return &Out{w: w, color: color}
}

// Indent increases the depth by one and returns the func restoring it.
// Calling the returned func more than once has no further effect.
func (o *Out) Indent() func() {
	o.depth++
	done := false
	return func() {
		if done {
			return
		}
		done = true
		o.depth--
	}
}

// Nest runs fn one level deeper.
func (o *Out) Nest(fn func()) {
	defer o.Indent()()
	fn()
}

// Depth returns the current indentation level.
func (o *Out) Depth() int {
	return o.depth
}

func (o *Out) Info(format string, args ...any) {
	o.line(infoColors, format, args...)
}

func (o *Out) Warn(format string, args ...any) {
	o.line(warnColors, format, args...)
}

func (o *Out) Error(format string, args ...any) {
	o.line(errorColors, format, args...)
}

// Blank writes an uncolored line.
func (o *Out) Blank(format string, args ...any) {
	o.line(nil, format, args...)
}

// Link writes "label display", turning display into a terminal hyperlink
// to abs when colors are enabled.
func (o *Out) Link(label, display, abs string) {
	if o.color && abs != "" {
		display = text.Hyperlink("file://"+abs, display)
	}
	o.Blank("%s %s", label, display)
}

// Err returns the first write error.
func (o *Out) Err() error {
	return o.err
}

func (o *Out) line(colors text.Colors, format string, args ...any) {
	if o.err != nil {
		return
	}
	msg := fmt.Sprintf(format, args...)
	if o.color && len(colors) > 0 {
		msg = text.Escape(msg, colors.EscapeSeq())
	}
	_, o.err = io.WriteString(o.w, strings.Repeat("  ", o.depth)+msg+"\n")
}

// Color modes accepted by ResolveColor.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// ResolveColor decides whether output to w is colored.
func ResolveColor(mode string, w io.Writer) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", ColorAuto:
		if os.Getenv("NO_COLOR") != "" {
			return false, nil
		}
		return ShouldColorize(w), nil
	case ColorAlways:
		return true, nil
	case ColorNever:
		return false, nil
	default:
		return false, fmt.Errorf("invalid color mode %q (want auto, always or never)", mode)
	}
}

// ShouldColorize reports whether w is a terminal.
func ShouldColorize(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
