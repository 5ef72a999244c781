package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/muesli/termenv"
)

// PrintBanner writes the irep banner and version to w.
func PrintBanner(w io.Writer, version string) {
	o := termenv.NewOutput(w)
	lines := []struct {
		text  string
		color string
	}{
		{"  _", "#818cf8"},
		{" (_)_ __ ___ _ __", "#a78bfa"},
		{" | | '__/ _ \\ '_ \\", "#c084fc"},
		{" | | | |  __/ |_) |", "#e879f9"},
		{" |_|_|  \\___| .__/", "#f472b6"},
		{"             |_|", "#fb7185"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, o.String(l.text).Foreground(o.Color(l.color)))
	}
	fmt.Fprintf(w, "  %s\n\n", o.String("v"+strings.TrimSpace(version)).Faint())
}
