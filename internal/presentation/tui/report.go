package tui

import (
	"fmt"
	"io"
	"os"

	"github.com/aretw0/irep/pkg/domain"
	"github.com/muesli/termenv"
)

// Printer writes reports with or without colors.
type Printer struct {
	out *termenv.Output
}

// NewPrinter colors output only when w is a terminal.
func NewPrinter(w io.Writer) *Printer {
	profile := termenv.Ascii
	if f, ok := w.(*os.File); ok && IsTerminal(f) {
		profile = termenv.EnvColorProfile()
	}
	return &Printer{out: termenv.NewOutput(w, termenv.WithProfile(profile))}
}

// PrintReport writes a one-line summary followed by one line per field error.
func (p *Printer) PrintReport(r *domain.Report) {
	o := p.out
	status := o.String("ok").Foreground(o.Color("2"))
	if !r.OK() {
		status = o.String(plural(r.Count(), "error")).Foreground(o.Color("1")).Bold()
	}
	fmt.Fprintf(o, "%s %s: %s, %s\n", r.Op, r.Path, plural(r.Assigned, "field"), status)

	for _, fe := range r.Errors {
		path := o.String(fe.Path).Bold()
		kind := o.String(fe.Kind.Error()).Foreground(o.Color("3"))
		line := fmt.Sprintf("  %s  %s  %s", path, kind, fe.Reason)
		if fe.Value != "" {
			line += fmt.Sprintf(" (got %s)", fe.Value)
		}
		fmt.Fprintln(o, line)
	}
}

// PrintMessage writes a system message.
func (p *Printer) PrintMessage(format string, args ...any) {
	fmt.Fprintf(p.out, ">>> %s\n", fmt.Sprintf(format, args...))
}

func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
