// Package lua binds the marshalling engine to an embedded gopher-lua state.
//
// Paths are evaluated as Lua expressions, so metatables and __index
// handlers take part in lookups. Tables and functions are wrapped lazily:
// nothing is copied out of the state until the engine walks it.
package lua
