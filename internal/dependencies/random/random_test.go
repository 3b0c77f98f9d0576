package random

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCryptoRandomIntnInRange(t *testing.T) {
	r := New()
	for i := 0; i < 200; i++ {
		v := r.Intn(7)
		require.GreaterOrEqual(t, v, 0)
		require.Less(t, v, 7)
	}
	assert.Equal(t, 0, r.Intn(0))
}

func TestSeededRandomIsDeterministic(t *testing.T) {
	a := NewSeeded(42)
	b := NewSeeded(42)
	for i := 0; i < 50; i++ {
		assert.Equal(t, a.Intn(100), b.Intn(100))
	}
}

func TestSampleReturnsDistinctIndexes(t *testing.T) {
	r := NewSeeded(7)
	for trial := 0; trial < 100; trial++ {
		got := Sample(r, 12, 5)
		require.Len(t, got, 5)
		seen := make(map[int]bool)
		for _, v := range got {
			require.GreaterOrEqual(t, v, 0)
			require.Less(t, v, 12)
			require.False(t, seen[v], "duplicate index %d", v)
			seen[v] = true
		}
	}
}

func TestSampleCapsAtPopulation(t *testing.T) {
	got := Sample(NewSeeded(1), 3, 5)
	assert.ElementsMatch(t, []int{0, 1, 2}, got)
	assert.Nil(t, Sample(NewSeeded(1), 0, 5))
}
