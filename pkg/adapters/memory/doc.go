// Package memory provides in-memory adapters: a Runtime backed by a value.Map
// (optionally loaded from a YAML or JSON deck) and a SnapshotStore.
package memory
