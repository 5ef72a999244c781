package ports

import "github.com/aretw0/irep/pkg/value"

// Runtime is the scripting engine that owns the input deck.
// Implementations are not required to be safe for concurrent use.
type Runtime interface {
	// Lookup returns the dynamic value at path, or value.Nil when it is absent.
	// An error means the path could not be evaluated at all.
	Lookup(path string) (value.Value, error)

	// Publish binds v to the global name.
	Publish(name string, v value.Value) error
}
