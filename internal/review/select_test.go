package review

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lazypower/revisit/internal/record"
)

func dueList(n int) []record.Record {
	out := make([]record.Record, n)
	for i := range out {
		out[i] = rec(fmt.Sprintf("note%d", i), record.Unset)
	}
	return out
}

func TestPickEmpty(t *testing.T) {
	s := NewSelector(rand.NewSource(1))
	_, err := s.Pick(nil)
	assert.ErrorIs(t, err, ErrNothingDue)
}

func TestPickSmallListsAlwaysFirst(t *testing.T) {
	s := NewSelector(rand.NewSource(7))
	for _, n := range []int{1, 2} {
		due := dueList(n)
		for range 200 {
			got, err := s.Pick(due)
			require.NoError(t, err)
			assert.Equal(t, due[0].Path, got.Path, "n=%d", n)
		}
	}
}

func TestIndexStaysInRange(t *testing.T) {
	s := NewSelector(rand.NewSource(3))
	for n := 1; n <= 40; n++ {
		for range 100 {
			i := s.Index(n)
			require.GreaterOrEqual(t, i, 0)
			require.Less(t, i, n)
		}
	}
}

func TestIndexStalenessBias(t *testing.T) {
	const (
		n     = 30
		draws = 10000
	)
	s := NewSelector(rand.NewSource(42))

	older := 0
	hits := make([]int, n)
	for range draws {
		i := s.Index(n)
		hits[i]++
		if i < 20 {
			older++
		}
	}

	frac := float64(older) / draws
	assert.InDelta(t, 0.66, frac, 0.03, "older two-thirds share")
	for i, h := range hits {
		assert.NotZero(t, h, "index %d never drawn", i)
	}
}

func TestPickDoesNotMutate(t *testing.T) {
	due := dueList(9)
	before := append([]record.Record(nil), due...)

	s := NewSelector(rand.NewSource(11))
	for range 50 {
		_, err := s.Pick(due)
		require.NoError(t, err)
	}
	assert.Equal(t, before, due)
}

func TestNewSelectorNilSource(t *testing.T) {
	s := NewSelector(nil)
	_, err := s.Pick(dueList(5))
	assert.NoError(t, err)
}
