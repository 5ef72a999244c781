package domain

import "fmt"

// SlotID identifies a callback or reference slot: the well-known table it lives
// in and its byte offset within that table's memory.
type SlotID struct {
	Table  string
	Offset int
}

func (s SlotID) String() string {
	return fmt.Sprintf("%s+%d", s.Table, s.Offset)
}

// Report is the outcome of one read or write call. Errors are counted, not
// propagated: a non-empty report still describes every field that was written.
type Report struct {
	Op       string // "read" or "write"
	Path     string
	Assigned int // number of leaf slots written
	Errors   []*FieldError
	// Callbacks maps every callback slot touched by the call to its full path.
	Callbacks map[SlotID]string
}

// NewReport creates an empty report for op on path.
func NewReport(op, path string) *Report {
	return &Report{Op: op, Path: path, Callbacks: make(map[SlotID]string)}
}

// Add records an error.
func (r *Report) Add(err *FieldError) {
	r.Errors = append(r.Errors, err)
}

// Count returns the number of errors; zero means full success.
func (r *Report) Count() int {
	return len(r.Errors)
}

// OK reports whether the call completed without errors.
func (r *Report) OK() bool {
	return len(r.Errors) == 0
}

// Err returns nil on success, otherwise an *AggregateError of every FieldError.
func (r *Report) Err() error {
	if len(r.Errors) == 0 {
		return nil
	}
	errs := make([]error, len(r.Errors))
	for i, e := range r.Errors {
		errs[i] = e
	}
	return &AggregateError{Errors: errs}
}

// CallbackName returns the recorded path of the callback slot at id.
func (r *Report) CallbackName(id SlotID) (string, bool) {
	name, ok := r.Callbacks[id]
	return name, ok
}
