package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveExactName(t *testing.T) {
	r := NewCategoryResolver(newTestSnapshot(t))

	id, ok := r.Resolve("Drones")
	require.True(t, ok)
	assert.Equal(t, "cat-drones", id)

	// Case-insensitive, per the taxonomy index
	id, ok = r.Resolve("trading cards")
	require.True(t, ok)
	assert.Equal(t, "cat-cards", id)
}

func TestResolveTokenMatch(t *testing.T) {
	r := NewCategoryResolver(newTestSnapshot(t))

	// No exact category is named "Software Download", but the "software"
	// token places it.
	id, ok := r.Resolve("Software Download")
	require.True(t, ok)
	assert.Equal(t, "cat-software", id)
}

func TestResolveLongestTokenWins(t *testing.T) {
	r := NewCategoryResolver(newTestSnapshot(t))

	// "smartphones" (11 chars) beats "drones" (6 chars)
	id, ok := r.Resolve("smartphones and drones bundle")
	require.True(t, ok)
	assert.Equal(t, "cat-smartphones", id)
}

func TestResolveTieBreakLexical(t *testing.T) {
	r := NewCategoryResolver(newTestSnapshot(t))

	// "electronics" matches both Electronics and Electronics/Smartphones
	// with the same longest token; lexical id order picks cat-electronics.
	id, ok := r.Resolve("electronics thing")
	require.True(t, ok)
	assert.Equal(t, "cat-electronics", id)
}

func TestResolveUnresolved(t *testing.T) {
	r := NewCategoryResolver(newTestSnapshot(t))

	_, ok := r.Resolve("mystery gadget xyz")
	assert.False(t, ok)

	_, ok = r.Resolve("")
	assert.False(t, ok)

	_, ok = r.Resolve("   ")
	assert.False(t, ok)
}

func TestResolveDeterministic(t *testing.T) {
	r := NewCategoryResolver(newTestSnapshot(t))

	first, ok1 := r.Resolve("gaming consoles accessory")
	second, ok2 := r.Resolve("gaming consoles accessory")
	assert.Equal(t, ok1, ok2)
	assert.Equal(t, first, second)
}
