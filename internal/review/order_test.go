package review

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lazypower/revisit/internal/record"
)

func TestPathsNatural(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"note2", "note10", -1},
		{"note10", "note2", 1},
		{"Alpha", "beta", -1},
		{"beta", "Alpha", 1},
		{"a.md", "a.md", 0},
		{"dir/file9.md", "dir/file10.md", -1},
	}
	c := newComparer()
	for _, tt := range tests {
		assert.Equal(t, tt.want, sign(c.paths(tt.a, tt.b)), "%s vs %s", tt.a, tt.b)
	}
}

func TestPathsTotalOnCaseTies(t *testing.T) {
	c := newComparer()
	assert.NotZero(t, c.paths("A.md", "a.md"))
	assert.Equal(t, -sign(c.paths("A.md", "a.md")), sign(c.paths("a.md", "A.md")))
}

func TestSortAscending(t *testing.T) {
	records := []record.Record{
		rec("recent", daysAgo(100)),
		rec("note10", record.Unset),
		rec("oldest", daysAgo(300)),
		rec("note2", record.Unset),
	}

	Sort(records, Ascending)

	assert.Equal(t, []string{"note2", "note10", "oldest", "recent"}, paths(records))
}

func TestSortDescendingKeepsUnsetFirst(t *testing.T) {
	records := []record.Record{
		rec("old", daysAgo(50)),
		rec("never", record.Unset),
		rec("new", daysAgo(1)),
	}

	Sort(records, Descending)

	assert.Equal(t, []string{"never", "new", "old"}, paths(records))
}

func TestOrdersInverseOnAccessSharedTieBreak(t *testing.T) {
	same := daysAgo(5)
	records := []record.Record{
		rec("b", daysAgo(1)),
		rec("x10", same),
		rec("x2", same),
		rec("c", daysAgo(9)),
		rec("u2", record.Unset),
		rec("U1", record.Unset),
	}

	asc := Sorted(records, Ascending)
	desc := Sorted(records, Descending)

	assert.Equal(t, []string{"U1", "u2", "c", "x2", "x10", "b"}, paths(asc))
	assert.Equal(t, []string{"U1", "u2", "b", "x2", "x10", "c"}, paths(desc))

	// Set keys reverse between orders.
	setAsc := slices.DeleteFunc(slices.Clone(asc), func(r record.Record) bool { return !r.LastAccessed.IsSet() })
	setDesc := slices.DeleteFunc(slices.Clone(desc), func(r record.Record) bool { return !r.LastAccessed.IsSet() })
	for i := range setAsc {
		j := len(setDesc) - 1 - i
		assert.True(t, setAsc[i].LastAccessed.Equal(setDesc[j].LastAccessed))
	}
}

func TestOrderCompare(t *testing.T) {
	a := rec("a", daysAgo(3))
	b := rec("b", daysAgo(1))

	c := newComparer()
	assert.Equal(t, -1, sign(c.compare(Ascending, a, b)))
	assert.Equal(t, 1, sign(c.compare(Descending, a, b)))
	assert.Equal(t, -1, sign(c.compare(Descending, rec("z", record.Unset), b)))
}

func TestSortedDoesNotMutate(t *testing.T) {
	records := []record.Record{rec("b", record.Unset), rec("a", record.Unset)}
	_ = Sorted(records, Ascending)
	assert.Equal(t, []string{"b", "a"}, paths(records))
}

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	}
	return 0
}
