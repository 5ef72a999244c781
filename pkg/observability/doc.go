/*
Package observability exports Prometheus metrics for binding operations.

Every Read, Write and Publish produces a report; Metrics turns reports into
counters of operations, assigned fields and field errors by kind, plus a
latency histogram per operation.
*/
package observability
