/*
Package index is the reflection index: the descriptors that tell the engine how
each field of a well-known table is laid out in memory.

An Index is built once with New, validated, and frozen. Descriptor lists are
addressed by position; a Table field selects its nested aggregate through
FieldDescriptor.Child. Paths such as "table1.table2[3].i" are tokenized by
ParsePath and resolved to a Location by Index.Resolve.
*/
package index
