package schema

import (
	"fmt"
	"math"

	"github.com/aretw0/irep/pkg/domain"
	"github.com/aretw0/irep/pkg/index"
	"github.com/aretw0/irep/pkg/layout"
)

// TimeItem is the name of the built-in timing struct: {count int, time double}.
const TimeItem = "timeitem"

// Compiled is a description turned into a frozen index with allocated memory.
type Compiled struct {
	Index *index.Index
	// Structs maps every struct name to its aggregate position in the index.
	Structs map[string]int

	desc    *Description
	layouts *layout.TypeRegistry
}

type compiler struct {
	desc     *Description
	byName   map[string]int // struct name -> position in desc.Structs
	child    map[string]int // struct name -> aggregate position
	order    []string
	layouts  *layout.TypeRegistry
	fields   map[string][]index.FieldDescriptor
	state    map[string]int
	errs     []error
	usesTime bool
}

// Compile validates a description, lays out every struct and allocates the
// memory of every table with its defaults applied.
func Compile(desc *Description) (*Compiled, error) {
	c := &compiler{
		desc:    desc,
		byName:  make(map[string]int),
		child:   make(map[string]int),
		layouts: layout.NewTypeRegistry(),
		fields:  make(map[string][]index.FieldDescriptor),
		state:   make(map[string]int),
	}

	// 1. Register struct names
	for i, s := range desc.Structs {
		switch {
		case s.Name == "":
			c.fail(fmt.Sprintf("structs[%d]", i), "missing name")
		case isBuiltin(s.Name):
			c.fail(s.Name, "struct name shadows a built-in type")
		default:
			if _, dup := c.byName[s.Name]; dup {
				c.fail(s.Name, "duplicate struct name")
				continue
			}
			c.byName[s.Name] = i
		}
	}

	// 2. Lay out every struct, dependencies first
	for _, s := range desc.Structs {
		if _, ok := c.byName[s.Name]; ok {
			c.layoutStruct(s.Name)
		}
	}
	for _, t := range desc.Tables {
		if t.Type == TimeItem {
			c.usesTime = true
		}
	}
	if c.usesTime {
		c.registerTimeItem()
	}
	if len(c.errs) > 0 {
		return nil, &domain.AggregateError{Errors: c.errs}
	}

	// 3. Allocate tables
	aggregates := make([][]index.FieldDescriptor, len(c.order))
	for i, name := range c.order {
		aggregates[i] = c.fields[name]
	}
	tables := c.allocateTables()
	if len(c.errs) > 0 {
		return nil, &domain.AggregateError{Errors: c.errs}
	}

	ix, err := index.New(aggregates, tables)
	if err != nil {
		return nil, err
	}

	out := &Compiled{Index: ix, Structs: c.child, desc: desc, layouts: c.layouts}
	for _, name := range ix.Tables() {
		if err := out.Reset(name); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (c *compiler) fail(path, format string, args ...any) {
	c.errs = append(c.errs, domain.NewFieldError(path, domain.ErrSchema, format, args...))
}

func isBuiltin(name string) bool {
	if name == TimeItem {
		return true
	}
	_, ok := index.ParseTypeTag(name)
	return ok
}

const (
	unvisited = iota
	visiting
	done
)

func (c *compiler) layoutStruct(name string) bool {
	switch c.state[name] {
	case done:
		_, ok := c.layouts.Lookup(name)
		return ok
	case visiting:
		c.fail(name, "struct contains itself")
		return false
	}
	c.state[name] = visiting
	s := c.desc.Structs[c.byName[name]]

	members := make([]layout.Member, 0, len(s.Fields))
	descs := make([]index.FieldDescriptor, 0, len(s.Fields))
	seen := make(map[string]bool, len(s.Fields))
	ok := true
	for _, f := range s.Fields {
		path := name + "." + f.Name
		if f.Name == "" {
			c.fail(name, "field without name")
			ok = false
			continue
		}
		if seen[f.Name] {
			c.fail(path, "duplicate field name")
			ok = false
			continue
		}
		seen[f.Name] = true

		d, m, fieldOK := c.describe(path, f)
		if !fieldOK {
			ok = false
			continue
		}
		descs = append(descs, d)
		members = append(members, m)
	}
	if !ok {
		c.state[name] = done
		return false
	}

	st, err := layout.Pack(members)
	if err != nil {
		c.fail(name, "%v", err)
		c.state[name] = done
		return false
	}
	for i := range descs {
		descs[i].Offset = st.Offsets[i]
	}
	c.layouts.Register(name, st)
	c.fields[name] = descs
	c.child[name] = len(c.order)
	c.order = append(c.order, name)
	c.state[name] = done
	return true
}

func (c *compiler) registerTimeItem() {
	st, _ := layout.Pack([]layout.Member{
		{Name: "count", Size: 4, Align: 4, Count: 1},
		{Name: "time", Size: 8, Align: 8, Count: 1},
	})
	c.layouts.Register(TimeItem, st)
	c.fields[TimeItem] = []index.FieldDescriptor{
		index.Scalar("count", index.Int, 4, st.Offsets[0]).WithDoc("number of timed events"),
		index.Scalar("time", index.Double, 8, st.Offsets[1]).WithDoc("accumulated seconds"),
	}
	c.child[TimeItem] = len(c.order)
	c.order = append(c.order, TimeItem)
}

// describe builds the descriptor (without offset) and layout member of a field.
func (c *compiler) describe(path string, f Field) (index.FieldDescriptor, layout.Member, bool) {
	var (
		d     = index.Scalar(f.Name, index.Int, 0, 0).WithDoc(f.Doc)
		align int
	)

	lower, upper, err := bounds(f.Dim, f.Bounds)
	if err != nil {
		c.fail(path, "%v", err)
		return d, layout.Member{}, false
	}
	d = d.Array(lower, upper)

	if tag, ok := index.ParseTypeTag(f.Type); ok && tag != index.Table {
		d.Type = tag
		switch tag {
		case index.Int:
			d.Size = orDefault(f.Size, 4)
		case index.Double:
			d.Size = orDefault(f.Size, 8)
		case index.Bool:
			d.Size = orDefault(f.Size, 4)
		case index.String:
			if f.Len < 1 {
				c.fail(path, "string field needs len >= 1")
				return d, layout.Member{}, false
			}
			d.Size, d.MaxLen = f.Len, f.Len
			align = 1
		case index.Callback:
			d.Size = layout.CallbackSlotSize
			d = d.WithArity(intOr(f.Params, -1), intOr(f.Returns, -1))
			if d.Returns == 0 {
				c.fail(path, "callback declares zero return values")
				return d, layout.Member{}, false
			}
		case index.Reference:
			d.Size = layout.ReferenceSlotSize
		case index.Pointer:
			d.Size = layout.PointerSize
		}
		if align == 0 {
			align = layout.NaturalAlign(d.Size)
		}
		if (tag == index.Callback || tag == index.Reference) && !d.IsScalar() {
			c.fail(path, "%s fields cannot be arrays", tag)
			return d, layout.Member{}, false
		}
		return d, layout.Member{Name: f.Name, Size: d.Size, Align: align, Count: d.Count()}, true
	}

	// Struct-typed field
	if f.Default != nil {
		c.fail(path, "struct fields take defaults from their struct")
		return d, layout.Member{}, false
	}
	d.Type = index.Table
	switch {
	case f.Type == TimeItem:
		c.usesTime = true
		d.Size = layout.TimeItemSize
		d.Child = -1 // patched once the time item is registered
		return d, layout.Member{Name: f.Name, Size: d.Size, Align: 8, Count: d.Count()}, true
	case c.hasStruct(f.Type):
		if !c.layoutStruct(f.Type) {
			return d, layout.Member{}, false
		}
		st, _ := c.layouts.Lookup(f.Type)
		d.Size = st.Size
		d.Child = c.child[f.Type]
		return d, layout.Member{Name: f.Name, Size: st.Size, Align: st.Align, Count: d.Count()}, true
	default:
		c.fail(path, "unknown type %q", f.Type)
		return d, layout.Member{}, false
	}
}

func (c *compiler) hasStruct(name string) bool {
	_, ok := c.byName[name]
	return ok
}

func (c *compiler) allocateTables() []index.NamedTable {
	// time item fields were laid out with a placeholder child
	if c.usesTime {
		ti := c.child[TimeItem]
		for _, name := range c.order {
			for i := range c.fields[name] {
				if c.fields[name][i].Child == -1 && c.fields[name][i].Type == index.Table {
					c.fields[name][i].Child = ti
				}
			}
		}
	}

	tables := make([]index.NamedTable, 0, len(c.desc.Tables))
	for i, t := range c.desc.Tables {
		path := t.Name
		if path == "" {
			path = fmt.Sprintf("tables[%d]", i)
		}
		if !c.hasStruct(t.Type) && t.Type != TimeItem {
			c.fail(path, "unknown struct %q", t.Type)
			continue
		}
		lower, upper, err := bounds(t.Dim, t.Bounds)
		if err != nil {
			c.fail(path, "%v", err)
			continue
		}
		st, _ := c.layouts.Lookup(t.Type)
		f := index.Scalar(t.Name, index.Table, st.Size, 0).
			WithChild(c.child[t.Type]).
			WithDoc(t.Doc).
			Array(lower, upper)
		tables = append(tables, index.NamedTable{
			Name:     t.Name,
			TopLevel: index.TopLevel{Memory: make([]byte, f.Extent()), Field: f},
		})
	}
	return tables
}

func bounds(dim int, b []int) (int, int, error) {
	switch {
	case dim != 0 && len(b) != 0:
		return 0, 0, fmt.Errorf("use either dim or bounds")
	case dim < 0:
		return 0, 0, fmt.Errorf("negative dim %d", dim)
	case dim > 0:
		return 1, dim, nil
	case len(b) == 0:
		return 1, 0, nil
	case len(b) != 2:
		return 0, 0, fmt.Errorf("bounds needs [lower, upper], got %v", b)
	case b[1] < b[0]:
		return 0, 0, fmt.Errorf("upper bound %d below lower bound %d", b[1], b[0])
	default:
		return b[0], b[1], nil
	}
}

func orDefault(v, def int) int {
	if v == 0 {
		return def
	}
	return v
}

func intOr(p *int, def int) int {
	if p == nil {
		return def
	}
	return *p
}

// Reset restores a table's memory to the declared defaults.
func (c *Compiled) Reset(table string) error {
	top, ok := c.Index.Table(table)
	if !ok {
		return domain.NewFieldError(table, domain.ErrLookup, "unknown table %q", table)
	}
	clear(top.Memory)
	st := c.structOf(top.Field.Child)
	for i := 0; i < top.Field.Count(); i++ {
		if err := c.applyDefaults(top.Memory, i*top.Field.Size, st); err != nil {
			return fmt.Errorf("%s: %w", table, err)
		}
	}
	return nil
}

func (c *Compiled) structOf(child int) string {
	for name, pos := range c.Structs {
		if pos == child {
			return name
		}
	}
	return ""
}

func (c *Compiled) fieldDecl(structName, field string) (Field, bool) {
	for _, s := range c.desc.Structs {
		if s.Name != structName {
			continue
		}
		for _, f := range s.Fields {
			if f.Name == field {
				return f, true
			}
		}
	}
	return Field{}, false
}

func (c *Compiled) applyDefaults(mem []byte, base int, structName string) error {
	child, ok := c.Structs[structName]
	if !ok {
		return nil
	}
	for _, d := range c.Index.Fields(child) {
		for e := 0; e < d.Count(); e++ {
			off := base + d.Offset + e*d.Size
			switch d.Type {
			case index.Table:
				if err := c.applyDefaults(mem, off, c.structOf(d.Child)); err != nil {
					return err
				}
				continue
			case index.Callback:
				if err := layout.WriteCallbackSlot(mem, off, layout.CallbackSlot{
					Params:  int32(d.Params),
					Returns: int32(d.Returns),
				}); err != nil {
					return err
				}
				continue
			}

			decl, ok := c.fieldDecl(structName, d.Name)
			if !ok || decl.Default == nil {
				continue
			}
			def := decl.Default
			if list, isList := def.([]any); isList {
				if e >= len(list) {
					continue
				}
				def = list[e]
			}
			if err := putDefault(mem, off, d, def); err != nil {
				return fmt.Errorf("%s.%s: %w", structName, d.Name, err)
			}
		}
	}
	return nil
}

func putDefault(mem []byte, off int, d index.FieldDescriptor, def any) error {
	switch d.Type {
	case index.Int:
		f, ok := toFloat(def)
		if !ok || f != math.Trunc(f) {
			return fmt.Errorf("default %v is not an integer", def)
		}
		return layout.PutInt(mem, off, d.Size, int64(f))
	case index.Double:
		f, ok := toFloat(def)
		if !ok {
			return fmt.Errorf("default %v is not a number", def)
		}
		return layout.PutFloat(mem, off, d.Size, f)
	case index.Bool:
		b, ok := def.(bool)
		if !ok {
			return fmt.Errorf("default %v is not a boolean", def)
		}
		return layout.PutBool(mem, off, d.Size, b)
	case index.String:
		s, ok := def.(string)
		if !ok {
			s = fmt.Sprint(def)
		}
		return layout.PutString(mem, off, d.MaxLen, s)
	default:
		return fmt.Errorf("%s fields take no default", d.Type)
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float64:
		return n, true
	case float32:
		return float64(n), true
	default:
		return 0, false
	}
}

// Description returns the description the index was compiled from.
func (c *Compiled) Description() *Description {
	return c.desc
}
