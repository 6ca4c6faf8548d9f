package rating

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("defaults total", func(t *testing.T) {
		w := New(3, 0)
		assert.Len(t, w.Stars(), DefaultTotal)
		assert.Equal(t, 3, w.Rating())
	})

	t.Run("clamps initial", func(t *testing.T) {
		assert.Equal(t, 5, New(9, 5).Rating())
		assert.Equal(t, 0, New(-1, 5).Rating())
	})
}

func TestWidget_Select(t *testing.T) {
	w := New(0, 5)
	for k := 1; k <= 5; k++ {
		require.NoError(t, w.Select(k))
		assert.Equal(t, k, w.Rating())
	}

	t.Run("rejects out of range", func(t *testing.T) {
		assert.ErrorIs(t, w.Select(0), ErrOutOfRange)
		assert.Error(t, w.Select(6))
		assert.Equal(t, 5, w.Rating())
	})
}

func TestWidget_Hover(t *testing.T) {
	w := New(2, 5)

	for k := 0; k <= 5; k++ {
		w.Hover(k)
		assert.Equal(t, 2, w.Rating(), "hover must not change the committed rating")
	}

	w.Hover(4)
	assert.Equal(t, 4, w.Preview())
	assert.True(t, w.Filled(4))
	assert.False(t, w.Filled(5))

	w.Hover(0)
	assert.Equal(t, 0, w.Preview())
	assert.True(t, w.Filled(2))
	assert.False(t, w.Filled(3))

	w.Hover(99)
	assert.Equal(t, 5, w.Preview())
}

func TestWidget_Stars(t *testing.T) {
	w := New(3, 5)
	stars := w.Stars()
	require.Len(t, stars, 5)

	for i, s := range stars {
		assert.Equal(t, i+1, s.Value)
		assert.Equal(t, i < 3, s.Filled)
	}
	assert.Equal(t, "Rate 1 star", stars[0].Label)
	assert.Equal(t, "Rate 5 stars", stars[4].Label)
}
