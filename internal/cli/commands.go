package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/aretw0/irep/internal/presentation/graph"
	"github.com/aretw0/irep/internal/presentation/tui"
	"github.com/aretw0/irep/internal/validator"
	"github.com/aretw0/irep/pkg/schema"
	"github.com/aretw0/irep/pkg/value"
	"gopkg.in/yaml.v3"
)

// Read reads every path and prints one report per path. Without paths it reads
// every table the deck defines. It fails when any report carries field errors.
func (p *Project) Read(w io.Writer, paths []string) error {
	if len(paths) == 0 {
		for _, name := range p.Binder.Tables() {
			if p.Binder.Exists(name) {
				paths = append(paths, name)
			}
		}
	}

	printer := tui.NewPrinter(w)
	total := 0
	for _, path := range paths {
		report := p.Binder.Read(path)
		printer.PrintReport(report)
		total += report.Count()
	}
	if total > 0 {
		return fmt.Errorf("%d field error(s)", total)
	}
	return nil
}

// Dump reads the deck into a table and prints the table rebuilt from memory
// as YAML or JSON.
func (p *Project) Dump(w io.Writer, table, format string) error {
	if report := p.Binder.Read(table); !report.OK() {
		tui.NewPrinter(w).PrintReport(report)
		return fmt.Errorf("%d field error(s)", report.Count())
	}

	v, report := p.Binder.Snapshot(table)
	if err := report.Err(); err != nil {
		return err
	}
	data := map[string]any{table: value.ToGo(v)}

	switch strings.ToLower(format) {
	case "", "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(data); err != nil {
			return err
		}
		return enc.Close()
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(data)
	default:
		return fmt.Errorf("unknown format %q (use yaml or json)", format)
	}
}

// Publish reads a table, writes it back to the deck and saves its snapshot.
func (p *Project) Publish(ctx context.Context, w io.Writer, table string) error {
	printer := tui.NewPrinter(w)
	if report := p.Binder.Read(table); !report.OK() {
		printer.PrintReport(report)
		return fmt.Errorf("%d field error(s)", report.Count())
	}

	report, err := p.Binder.Publish(ctx, table)
	if err != nil {
		return err
	}
	printer.PrintReport(report)
	return report.Err()
}

// Eval reads the table that owns path, then evaluates the callback at path
// with the given arguments and prints the results, one per line.
func (p *Project) Eval(w io.Writer, path string, args []string) error {
	x := make([]float64, len(args))
	for i, a := range args {
		f, err := strconv.ParseFloat(a, 64)
		if err != nil {
			return fmt.Errorf("argument %d: %w", i+1, err)
		}
		x[i] = f
	}

	table, _, _ := strings.Cut(path, ".")
	if report := p.Binder.Read(table); !report.OK() {
		tui.NewPrinter(w).PrintReport(report)
		return fmt.Errorf("%d field error(s)", report.Count())
	}

	cb, err := p.Binder.Callback(path)
	if err != nil {
		return err
	}
	results, err := cb.Evaluate(x...)
	if err != nil {
		return err
	}
	for _, r := range results {
		fmt.Fprintln(w, strconv.FormatFloat(r, 'g', -1, 64))
	}
	return nil
}

// Lint lists the fields the deck leaves undefined.
func (p *Project) Lint(w io.Writer) error {
	missing := validator.Missing(p.Compiled.Index, p.Binder)
	printer := tui.NewPrinter(w)
	if len(missing) == 0 {
		printer.PrintMessage("Deck defines every field.")
		return nil
	}
	for _, path := range missing {
		fmt.Fprintf(w, "  %s\n", path)
	}
	printer.PrintMessage("%d field(s) keep their defaults.", len(missing))
	return nil
}

// SchemaDoc renders the schema as markdown through render.
func SchemaDoc(w io.Writer, path string, render func(string) (string, error)) error {
	desc, err := schema.Load(path)
	if err != nil {
		return err
	}
	md := schema.Markdown(desc)
	if render != nil {
		if md, err = render(md); err != nil {
			return err
		}
	}
	_, err = io.WriteString(w, md)
	return err
}

// SchemaGraph prints the schema as a Mermaid flowchart.
func SchemaGraph(w io.Writer, path string) error {
	desc, err := schema.Load(path)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, graph.GenerateMermaid(desc, nil))
	return err
}

// Graph prints the schema as a Mermaid flowchart, marking the tables the deck
// defines.
func (p *Project) Graph(w io.Writer) error {
	overlay := &graph.Overlay{}
	for _, name := range p.Binder.Tables() {
		if p.Binder.Exists(name) {
			overlay.Defined = append(overlay.Defined, name)
		}
	}
	_, err := io.WriteString(w, graph.GenerateMermaid(p.Compiled.Description(), overlay))
	return err
}
