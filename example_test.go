package irep_test

import (
	"fmt"
	"log"

	"github.com/aretw0/irep"
	"github.com/aretw0/irep/pkg/adapters/memory"
	"github.com/aretw0/irep/pkg/schema"
	"github.com/aretw0/irep/pkg/value"
)

const exampleSchema = `
structs:
  - name: solver
    fields:
      - {name: iterations, type: int, default: 10}
      - {name: tolerance, type: double, default: 1e-6}
      - {name: method, type: string, len: 16, default: cg}
      - {name: source, type: callback, params: 1, returns: 1}
tables:
  - {name: solver, type: solver}
`

// ExampleNew demonstrates binding an in-memory deck to compiled memory.
func ExampleNew() {
	// 1. Compile the schema: layout, memory and defaults
	desc, err := schema.Parse([]byte(exampleSchema), schema.FormatYAML)
	if err != nil {
		log.Fatal(err)
	}
	compiled, err := schema.Compile(desc)
	if err != nil {
		log.Fatal(err)
	}

	// 2. Provide a deck
	deck := value.NewMap()
	deck.SetField("iterations", value.Number(50))
	deck.SetField("method", value.String("gmres"))
	deck.SetField("source", value.Func(func(args []value.Value) ([]value.Value, error) {
		x := args[0].(value.Number)
		return []value.Value{2 * x}, nil
	}))
	rt := memory.NewRuntime()
	rt.Set("solver", deck)

	// 3. Bind
	b, err := irep.New(compiled.Index, rt)
	if err != nil {
		log.Fatal(err)
	}
	report := b.Read("solver")
	fmt.Println("assigned:", report.Assigned, "errors:", report.Count())

	cb, err := b.Callback("solver.source")
	if err != nil {
		log.Fatal(err)
	}
	out, _ := cb.Evaluate(21)
	fmt.Println("source(21) =", out[0])

	var solver struct {
		Iterations int
		Tolerance  float64
		Method     string
	}
	if err := b.Decode("solver", &solver); err != nil {
		log.Fatal(err)
	}
	fmt.Printf("%d %g %s\n", solver.Iterations, solver.Tolerance, solver.Method)

	// Output:
	// assigned: 3 errors: 0
	// source(21) = 42
	// 50 1e-06 gmres
}
