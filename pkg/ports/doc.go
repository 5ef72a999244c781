/*
Package ports defines the driven ports (interfaces) of the binding engine.

These interfaces decouple the engine from the scripting runtime that produces
input decks and from the stores that keep published snapshots.

# Key Interfaces

  - Runtime: resolves paths to dynamic values and publishes written tables
    (e.g., gopher-lua or an in-memory deck).
  - SnapshotStore: persists snapshots of written tables (e.g., Redis or memory).
*/
package ports
