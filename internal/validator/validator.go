// Package validator compares an input deck against the reflection index.
package validator

import (
	"fmt"
	"strings"

	"github.com/aretw0/irep/pkg/index"
)

// Existence answers whether the deck defines a value at a path.
type Existence interface {
	Exists(path string) bool
}

// Missing crawls every well-known table and returns, in traversal order, the
// paths of fields the deck leaves undefined. Those fields keep their defaults
// after a read. Nested aggregates are only entered when the deck defines them,
// and arrays are reported as a whole.
func Missing(ix *index.Index, deck Existence) []string {
	type node struct {
		path  string
		child int
	}

	var missing []string
	queue := make([]node, 0, ix.Len())
	for _, name := range ix.Tables() {
		if !deck.Exists(name) {
			missing = append(missing, name)
			continue
		}
		top, _ := ix.Table(name)
		if !top.Field.IsScalar() {
			continue
		}
		queue = append(queue, node{path: name, child: top.Field.Child})
	}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, f := range ix.Fields(current.child) {
			if f.Name == "" {
				break
			}
			path := current.path + "." + f.Name
			if !deck.Exists(path) {
				missing = append(missing, path)
				continue
			}
			if f.Type == index.Table && f.IsScalar() {
				queue = append(queue, node{path: path, child: f.Child})
			}
		}
	}
	return missing
}

// Validate fails when the deck leaves any field undefined.
func Validate(ix *index.Index, deck Existence) error {
	missing := Missing(ix, deck)
	if len(missing) == 0 {
		return nil
	}
	return fmt.Errorf("deck leaves %d field(s) undefined:\n  - %s", len(missing), strings.Join(missing, "\n  - "))
}
