// Package testutils provides shared fixtures for package tests.
package testutils

import (
	_ "embed"
	"testing"

	"github.com/aretw0/irep/pkg/adapters/memory"
	"github.com/aretw0/irep/pkg/schema"
	"github.com/aretw0/irep/pkg/value"
	"github.com/stretchr/testify/require"
)

//go:embed testdata/table1.yaml
var table1Schema []byte

// Table1Schema returns the raw YAML of the reference schema.
func Table1Schema() []byte {
	return table1Schema
}

// CompileTable1 compiles the reference schema with fresh, defaulted memory.
// It fails the test immediately on error.
func CompileTable1(t testing.TB) *schema.Compiled {
	t.Helper()

	desc, err := schema.Parse(table1Schema, schema.FormatYAML)
	require.NoError(t, err, "Failed to parse reference schema")

	compiled, err := schema.Compile(desc)
	require.NoError(t, err, "Failed to compile reference schema")
	return compiled
}

// Deck builds a memory runtime whose globals are taken from a Go literal.
func Deck(t testing.TB, globals map[string]any) *memory.Runtime {
	t.Helper()

	rt := memory.NewRuntime()
	for name, g := range globals {
		v, err := value.From(g)
		require.NoError(t, err, "Failed to convert global %q", name)
		rt.Set(name, v)
	}
	return rt
}

// Adder returns a function value that sums its arguments.
func Adder() value.Func {
	return func(args []value.Value) ([]value.Value, error) {
		var sum value.Number
		for _, a := range args {
			if n, ok := a.(value.Number); ok {
				sum += n
			}
		}
		return []value.Value{sum}, nil
	}
}
