/*
Package irep binds the input decks of a scripting runtime to fixed-layout host memory.

A schema describes the host's aggregates (integers, doubles, booleans,
fixed-length strings, nested aggregates, arrays with arbitrary bounds,
callbacks and opaque references). The engine walks the dynamic tables of a
deck and stores every field at its byte offset, reporting each problem with
its full path instead of stopping at the first one. The same schema drives
the inverse direction: memory is rebuilt into tables and published back to
the runtime.

# Concept

The host owns memory; the deck owns intent. Binding never changes the shape
of memory, it only fills declared slots. Callbacks are stored as handles to
runtime functions, or as constant buffers when the deck supplies numbers.
References keep runtime values alive without interpreting them.

# Usage

	package main

	import (
		"fmt"
		"log"

		"github.com/aretw0/irep"
		"github.com/aretw0/irep/pkg/adapters/lua"
		"github.com/aretw0/irep/pkg/schema"
	)

	func main() {
		desc, err := schema.Load("schema.yaml")
		if err != nil {
			log.Fatal(err)
		}
		compiled, err := schema.Compile(desc)
		if err != nil {
			log.Fatal(err)
		}

		rt := lua.New()
		defer rt.Close()
		if err := rt.DoFile("input.lua"); err != nil {
			log.Fatal(err)
		}

		b, err := irep.New(compiled.Index, rt)
		if err != nil {
			log.Fatal(err)
		}

		// 1. Deck -> memory
		if report := b.Read("table1"); !report.OK() {
			fmt.Println(report.Err())
		}

		// 2. Use a callback
		cb, _ := b.Callback("table1.f1")
		out, _ := cb.Evaluate(1, 2, 3)
		fmt.Println(out)

		// 3. Memory -> deck
		b.Write("table1")
	}

# Configuration

IREP_TRACE=1 enables per-field trace logging at Debug level.
IREP_MAX_DEPTH bounds table nesting during a read (default 64).
Options passed to New take precedence over the environment.
*/
package irep
