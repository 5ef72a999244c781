package schema

import (
	"fmt"
	"strings"
)

// Markdown renders the documentation of a description: one section per table
// followed by one field table per struct.
func Markdown(desc *Description) string {
	var b strings.Builder
	b.WriteString("# Input tables\n\n")
	for _, t := range desc.Tables {
		fmt.Fprintf(&b, "## `%s`\n\n", t.Name)
		dims := dimension(t.Dim, t.Bounds)
		if dims == "" {
			fmt.Fprintf(&b, "Instance of `%s`.\n\n", t.Type)
		} else {
			fmt.Fprintf(&b, "Array %s of `%s`.\n\n", dims, t.Type)
		}
		if t.Doc != "" {
			b.WriteString(t.Doc + "\n\n")
		}
	}

	b.WriteString("# Structs\n")
	for _, s := range desc.Structs {
		fmt.Fprintf(&b, "\n## `%s`\n\n", s.Name)
		if s.Doc != "" {
			b.WriteString(s.Doc + "\n\n")
		}
		b.WriteString("| Field | Type | Dimension | Default | Description |\n")
		b.WriteString("|---|---|---|---|---|\n")
		for _, f := range s.Fields {
			fmt.Fprintf(&b, "| `%s` | %s | %s | %s | %s |\n",
				f.Name, typeLabel(f), dimension(f.Dim, f.Bounds), defaultLabel(f.Default), escape(f.Doc))
		}
	}
	return b.String()
}

func typeLabel(f Field) string {
	switch f.Type {
	case "string":
		return fmt.Sprintf("string(%d)", f.Len)
	case "callback":
		return fmt.Sprintf("callback(%s → %s)", arity(f.Params), arity(f.Returns))
	default:
		return f.Type
	}
}

func arity(p *int) string {
	if p == nil || *p < 0 {
		return "*"
	}
	return fmt.Sprint(*p)
}

func dimension(dim int, bounds []int) string {
	switch {
	case dim > 0:
		return fmt.Sprintf("[1:%d]", dim)
	case len(bounds) == 2:
		return fmt.Sprintf("[%d:%d]", bounds[0], bounds[1])
	default:
		return ""
	}
}

func defaultLabel(v any) string {
	if v == nil {
		return ""
	}
	return escape(fmt.Sprintf("`%v`", v))
}

func escape(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
