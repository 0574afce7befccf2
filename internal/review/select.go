package review

import (
	"math/rand"
	"time"

	"github.com/lazypower/revisit/internal/record"
)

// olderShare is the probability of drawing from the older two thirds of the
// due list.
const olderShare = 0.66

// Selector picks the next item to review from an ascending due list, biased
// toward the most overdue items.
//
// A Selector is not safe for concurrent use.
type Selector struct {
	rng *rand.Rand
}

// NewSelector returns a Selector drawing from src. A nil src seeds from the
// clock.
func NewSelector(src rand.Source) *Selector {
	if src == nil {
		src = rand.NewSource(time.Now().UnixNano())
	}
	return &Selector{rng: rand.New(src)}
}

// Pick returns one record from due, which must already be sorted Ascending.
// It returns ErrNothingDue when due is empty.
func (s *Selector) Pick(due []record.Record) (record.Record, error) {
	if len(due) == 0 {
		return record.Record{}, ErrNothingDue
	}
	return due[s.Index(len(due))], nil
}

// Index draws an index into a due list of length n > 0.
//
// The list splits at (n/3)*2. With probability 0.66 the index is uniform over
// the older part [0, split), otherwise uniform over the newer part [split, n).
// When split is 0 the result is always 0.
func (s *Selector) Index(n int) int {
	split := (n / 3) * 2
	if split == 0 {
		return 0
	}
	if s.rng.Float64() < olderShare {
		return s.rng.Intn(split)
	}
	return split + s.rng.Intn(n-split)
}
