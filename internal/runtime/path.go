package runtime

import "strconv"

// pathContext tracks the current location twice: as the diagnostic path used in
// error messages and as the byte offset used to address memory. Both move
// together through push and restore.
type pathContext struct {
	path   []byte
	offset int
}

type mark struct {
	n      int
	offset int
}

func newPathContext(path string, offset int) pathContext {
	return pathContext{path: []byte(path), offset: offset}
}

// field descends into a named field located delta bytes into the current aggregate.
func (p *pathContext) field(name string, delta int) mark {
	m := mark{n: len(p.path), offset: p.offset}
	p.path = append(p.path, '.')
	p.path = append(p.path, name...)
	p.offset += delta
	return m
}

// index descends into an array element located delta bytes from the array start.
func (p *pathContext) index(i, delta int) mark {
	m := mark{n: len(p.path), offset: p.offset}
	p.path = append(p.path, '[')
	p.path = strconv.AppendInt(p.path, int64(i), 10)
	p.path = append(p.path, ']')
	p.offset += delta
	return m
}

// key descends into a key that does not address memory. Used for diagnostics only.
func (p *pathContext) key(k string) mark {
	m := mark{n: len(p.path), offset: p.offset}
	p.path = append(p.path, '[')
	p.path = append(p.path, k...)
	p.path = append(p.path, ']')
	return m
}

func (p *pathContext) restore(m mark) {
	p.path = p.path[:m.n]
	p.offset = m.offset
}

func (p *pathContext) String() string {
	return string(p.path)
}
