package runtime

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPathContext_PushRestore(t *testing.T) {
	p := newPathContext("table1", 0)

	m1 := p.field("table2", 104)
	m2 := p.index(3, 96)
	m3 := p.field("i", 0)
	assert.Equal(t, "table1.table2[3].i", p.String())
	assert.Equal(t, 200, p.offset)

	p.restore(m3)
	k := p.key("x")
	assert.Equal(t, "table1.table2[3][x]", p.String())
	assert.Equal(t, 200, p.offset)

	p.restore(k)
	p.restore(m2)
	assert.Equal(t, "table1.table2", p.String())
	assert.Equal(t, 104, p.offset)

	p.restore(m1)
	assert.Equal(t, "table1", p.String())
	assert.Zero(t, p.offset)
}
