package foundation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOption_TakeEmptiesOnce(t *testing.T) {
	o := Some("swig")
	assert.True(t, o.IsSome())
	assert.Equal(t, "Some(swig)", o.String())

	v, ok := o.Take()
	assert.True(t, ok)
	assert.Equal(t, "swig", v)
	assert.True(t, o.IsNone())

	_, ok = o.Take()
	assert.False(t, ok)
	assert.Equal(t, "None", o.String())

	var nilOpt *Option[int]
	_, ok = nilOpt.Take()
	assert.False(t, ok)
}

func TestOption_GetAndUnwrapOr(t *testing.T) {
	v, ok := None[int]().Get()
	assert.False(t, ok)
	assert.Zero(t, v)
	assert.Equal(t, 7, None[int]().UnwrapOr(7))
	assert.Equal(t, 3, Some(3).UnwrapOr(7))
}
