package tui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/aretw0/irep/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrintReport_Plain(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	r := domain.NewReport("read", "table1")
	r.Assigned = 3
	r.Add(domain.NewFieldError("table1.s", domain.ErrOverflow, "string of length 9 exceeds 7"))
	r.Add(domain.NewFieldError("table1.i", domain.ErrTypeMismatch, "expected an integer").WithValue("2.5"))
	p.PrintReport(r)

	want := "read table1: 3 fields, 2 errors\n" +
		"  table1.s  overflow  string of length 9 exceeds 7\n" +
		"  table1.i  type mismatch  expected an integer (got 2.5)\n"
	assert.Equal(t, want, buf.String())
}

func TestPrintReport_OK(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	r := domain.NewReport("write", "table4")
	r.Assigned = 1
	p.PrintReport(r)
	p.PrintMessage("published %s", "table4")

	assert.Equal(t, "write table4: 1 field, ok\n>>> published table4\n", buf.String())
}

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	PrintBanner(&buf, "0.1.0\n")
	assert.Contains(t, buf.String(), "v0.1.0")
}

func TestPlainRenderer(t *testing.T) {
	render := NewPlainRenderer(80)
	out, err := render("# table1\n\nTest table.")
	require.NoError(t, err)
	assert.Contains(t, out, "table1")
	assert.Contains(t, strings.TrimSpace(out), "Test table.")
}
