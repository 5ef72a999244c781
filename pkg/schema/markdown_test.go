package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarkdown(t *testing.T) {
	desc, err := Load("testdata/table1.yaml")
	require.NoError(t, err)

	md := Markdown(desc)
	assert.Contains(t, md, "## `table1`")
	assert.Contains(t, md, "Array [0:98] of `irt_table4`.")
	assert.Contains(t, md, "| `i` | int |  | `42` | An integer |")
	assert.Contains(t, md, "| `f5` | callback(3 → *) |")
	assert.Contains(t, md, "| `s` | string(8) |  | `abcd` |")
	assert.Contains(t, md, "| `table2` | irt_table2 | [0:5] |")
}

func TestMarkdown_EscapesPipes(t *testing.T) {
	desc, err := Load("testdata/mesh.json")
	require.NoError(t, err)
	assert.Contains(t, Markdown(desc), `Mesh file \| optional`)
}
