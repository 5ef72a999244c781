// Package graph renders a schema as a Mermaid flowchart.
package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/irep/pkg/schema"
)

// Overlay carries deck state to highlight on the graph.
type Overlay struct {
	// Defined lists the tables the deck defines; the others are marked missing.
	Defined []string
}

// GenerateMermaid produces a Mermaid flowchart of the tables and the structs
// they instantiate. Shapes:
// - Table: ((Circle))
// - Built-in struct: [[Subroutine]]
// - Struct: [Rectangle]
// Edges are labelled with the field name and its dimension.
func GenerateMermaid(desc *schema.Description, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	declared := make(map[string]bool, len(desc.Structs))
	for _, s := range desc.Structs {
		declared[s.Name] = true
	}
	builtins := make(map[string]bool)

	for _, t := range desc.Tables {
		fmt.Fprintf(&sb, "    %s((\"%s\"))\n", tableID(t.Name), t.Name)
		fmt.Fprintf(&sb, "    %s -- \"%s\" --> %s\n", tableID(t.Name), edgeLabel("", t.Dim, t.Bounds), structID(t.Type))
		if t.Type == schema.TimeItem {
			builtins[t.Type] = true
		}
	}

	for _, s := range desc.Structs {
		fmt.Fprintf(&sb, "    %s[\"%s\"]\n", structID(s.Name), s.Name)
		for _, f := range s.Fields {
			switch {
			case declared[f.Type]:
			case f.Type == schema.TimeItem:
				builtins[f.Type] = true
			default:
				continue
			}
			fmt.Fprintf(&sb, "    %s -- \"%s\" --> %s\n", structID(s.Name), edgeLabel(f.Name, f.Dim, f.Bounds), structID(f.Type))
		}
	}
	if builtins[schema.TimeItem] {
		fmt.Fprintf(&sb, "    %s[[\"%s\"]]\n", structID(schema.TimeItem), schema.TimeItem)
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text for contrast on both light and dark themes
		sb.WriteString("    classDef defined fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef missing fill:#ffebee,stroke:#b71c1c,stroke-dasharray:4,color:#000;\n")

		defined := make(map[string]bool, len(overlay.Defined))
		for _, name := range overlay.Defined {
			defined[name] = true
		}
		for _, t := range desc.Tables {
			class := "missing"
			if defined[t.Name] {
				class = "defined"
			}
			fmt.Fprintf(&sb, "    class %s %s;\n", tableID(t.Name), class)
		}
	}

	return sb.String()
}

func edgeLabel(name string, dim int, bounds []int) string {
	switch {
	case len(bounds) == 2:
		return fmt.Sprintf("%s[%d:%d]", name, bounds[0], bounds[1])
	case dim > 0:
		return fmt.Sprintf("%s[%d]", name, dim)
	case name == "":
		return "1"
	default:
		return name
	}
}

// Tables and structs live in separate namespaces; prefix them apart.
func tableID(name string) string  { return "t_" + sanitizeMermaidID(name) }
func structID(name string) string { return "s_" + sanitizeMermaidID(name) }

func sanitizeMermaidID(id string) string {
	return strings.NewReplacer(".", "_", "-", "_", "/", "_", "\\", "_", " ", "_").Replace(id)
}
