/*
Package domain contains the shared vocabulary of the binding engine: the error
taxonomy, the per-call Report and the Snapshot published to stores.

It has no dependencies on adapters or on the engine itself.
*/
package domain
