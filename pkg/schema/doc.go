// Package schema compiles a declarative description of well-known tables into
// a reflection index with memory regions and default values.
//
// A description lists struct types and the tables that instantiate them:
//
//	structs:
//	  - name: irt_table1
//	    fields:
//	      - {name: i, type: int, default: 42}
//	      - {name: e, type: double, dim: 5, default: 3.14}
//	      - {name: s, type: string, len: 8, default: abcd}
//	      - {name: f1, type: callback, params: 3, returns: 1}
//	tables:
//	  - {name: table1, type: irt_table1}
//
// Field types are int, double, bool, string, callback, reference, pointer,
// timeitem, or the name of another struct. Arrays are declared with dim (bounds
// 1..dim) or with explicit inclusive bounds [lower, upper].
//
// Descriptions can be written in YAML or JSON; Load picks the format from the
// file extension. Markdown renders the documentation strings of a description.
package schema
