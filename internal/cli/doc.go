// Package cli holds the plumbing behind the irep command: opening a schema and
// an input deck into a Binder and printing what the engine reports.
package cli
