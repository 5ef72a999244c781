/*
Package value defines the dynamic value model consumed and produced by the
binding engine.

A Value is a closed tagged variant: every value reports one of the six kinds
Nil, Bool, Number, String, Table or Function. Tables expose a lazy key/value
sequence so that adapters backed by a scripting engine do not have to copy
their tables up front.

Map is the in-memory Table used by tests, decks loaded from YAML/JSON and the
writer direction of the engine.
*/
package value
