package detour

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func greeting() string {
	return "hello"
}

func TestFunc(t *testing.T) {
	entry, _, err := FuncEntry(greeting)
	require.NoError(t, err)

	fn := Func[func() string](entry)
	assert.Equal(t, "hello", fn())

	assert.Nil(t, Func[func() string](0))
	assert.Panics(t, func() { Func[int](entry) })
}

func TestFuncEntry(t *testing.T) {
	t.Run("closure", func(t *testing.T) {
		n := 1
		fn := func() int { return n }
		entry, closure, err := FuncEntry(fn)
		require.NoError(t, err)
		assert.NotZero(t, entry)
		assert.NotZero(t, closure)
	})

	t.Run("not a function", func(t *testing.T) {
		_, _, err := FuncEntry(42)
		assert.ErrorContains(t, err, "not a function")
	})

	t.Run("nil function", func(t *testing.T) {
		var fn func()
		_, _, err := FuncEntry(fn)
		assert.Error(t, err)
	})

	t.Run("nil", func(t *testing.T) {
		_, _, err := FuncEntry(nil)
		assert.Error(t, err)
	})
}
