package graph_test

import (
	"strings"
	"testing"

	"github.com/aretw0/irep/internal/presentation/graph"
	"github.com/aretw0/irep/internal/testutils"
	"github.com/aretw0/irep/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateMermaid(t *testing.T) {
	desc, err := schema.Parse(testutils.Table1Schema(), schema.FormatYAML)
	require.NoError(t, err)

	out := graph.GenerateMermaid(desc, nil)

	tests := []struct {
		name     string
		contains []string
	}{
		{
			name: "Table Shapes",
			contains: []string{
				`t_table1(("table1"))`,
				`t_table4(("table4"))`,
			},
		},
		{
			name: "Table Edges",
			contains: []string{
				`t_table1 -- "1" --> s_irt_table1`,
				`t_table4 -- "[0:98]" --> s_irt_table4`,
			},
		},
		{
			name: "Struct Edges",
			contains: []string{
				`s_irt_table1 -- "table3" --> s_irt_table3`,
				`s_irt_table1 -- "table2[0:5]" --> s_irt_table2`,
				`s_irt_table1 -- "item1" --> s_timeitem`,
			},
		},
		{
			name:     "Built-in Shape",
			contains: []string{`s_timeitem[["timeitem"]]`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, c := range tt.contains {
				assert.Contains(t, out, c)
			}
		})
	}

	assert.True(t, strings.HasPrefix(out, "graph TD\n"))
	assert.NotContains(t, out, "-- \"e[5]\"", "scalar arrays have no edge")
	assert.NotContains(t, out, "classDef")
}

func TestGenerateMermaid_Overlay(t *testing.T) {
	desc, err := schema.Parse(testutils.Table1Schema(), schema.FormatYAML)
	require.NoError(t, err)

	out := graph.GenerateMermaid(desc, &graph.Overlay{Defined: []string{"table1"}})

	assert.Contains(t, out, "class t_table1 defined;")
	assert.Contains(t, out, "class t_table4 missing;")
}
