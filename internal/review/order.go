package review

import (
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/lazypower/revisit/internal/record"
)

// Order is a total order over records by last access.
type Order int

const (
	// Ascending puts the oldest (most overdue) records first.
	Ascending Order = iota
	// Descending puts the most recently accessed records first.
	Descending
)

// In both orders an Unset access sorts before every real timestamp, and
// equal keys fall back to a natural, case-insensitive path comparison.

// Sort sorts records in place under o.
func Sort(records []record.Record, o Order) {
	c := newComparer()
	slices.SortFunc(records, func(a, b record.Record) int {
		return c.compare(o, a, b)
	})
}

// Sorted returns a sorted copy of records.
func Sorted(records []record.Record, o Order) []record.Record {
	out := slices.Clone(records)
	Sort(out, o)
	return out
}

// comparer wraps a collator, which keeps internal buffers and so is not
// safe to share across goroutines.
type comparer struct {
	col *collate.Collator
}

func newComparer() *comparer {
	return &comparer{col: collate.New(language.Und, collate.IgnoreCase, collate.Numeric)}
}

func (c *comparer) compare(o Order, a, b record.Record) int {
	if d := c.access(o, a.LastAccessed, b.LastAccessed); d != 0 {
		return d
	}
	return c.paths(a.Path, b.Path)
}

func (c *comparer) access(o Order, a, b record.AccessTime) int {
	if !a.IsSet() || !b.IsSet() {
		// Unset first regardless of direction.
		return a.Compare(b)
	}
	if o == Descending {
		return b.Compare(a)
	}
	return a.Compare(b)
}

// paths compares two paths naturally: case-insensitive, with digit runs
// compared by numeric value ("note2" < "note10").
func (c *comparer) paths(a, b string) int {
	if d := c.col.CompareString(a, b); d != 0 {
		return d
	}
	// Collation ties (e.g. "A.md" vs "a.md") still need a total order.
	return strings.Compare(a, b)
}
