/*
Package runtime is the binding engine: it walks dynamic values produced by a
scripting runtime and stores them into the memory regions described by a
reflection index, and it rebuilds dynamic tables from that memory.

The reader never aborts on the first failure. Every failing leaf is recorded
in the call's domain.Report with its full path, the remaining siblings are still
processed, and fields that validated stay written.

An Engine is not safe for concurrent use.
*/
package runtime
