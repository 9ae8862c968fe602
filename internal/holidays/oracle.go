package holidays

import (
	"sort"
	"sync/atomic"
	"time"

	"workdays/internal/calendar"
)

// Set is an immutable snapshot of holiday dates keyed by YYYY-MM-DD.
// A Set is never mutated after construction; refreshes build a new one.
type Set map[string]struct{}

// NewSet builds a Set from raw date strings, dropping entries that do not
// parse as calendar dates. It returns the set and the number of dropped
// entries.
func NewSet(dates []string) (Set, int) {
	set := make(Set, len(dates))
	dropped := 0
	for _, d := range dates {
		if _, err := time.Parse(calendar.DateFormat, d); err != nil {
			dropped++
			continue
		}
		set[d] = struct{}{}
	}
	return set, dropped
}

// Dates returns the set's dates in ascending order.
func (s Set) Dates() []string {
	out := make([]string, 0, len(s))
	for d := range s {
		out = append(out, d)
	}
	sort.Strings(out)
	return out
}

// Oracle answers holiday membership for civil dates. Lookups are lock-free
// reads of an atomically swapped snapshot, so concurrent readers never
// observe a partially updated set and never block on a refresh in progress.
// An unpopulated oracle treats every date as a working date.
type Oracle struct {
	set atomic.Pointer[Set]
}

// NewOracle returns an oracle backed by an empty set.
func NewOracle() *Oracle {
	o := &Oracle{}
	empty := Set{}
	o.set.Store(&empty)
	return o
}

// IsHoliday reports whether t's wall calendar date is a holiday. Callers
// pass moments already in the business timezone; only the calendar fields
// are inspected, since holidays are civil dates, not instants.
func (o *Oracle) IsHoliday(t time.Time) bool {
	_, ok := (*o.set.Load())[t.Format(calendar.DateFormat)]
	return ok
}

// Swap atomically replaces the backing set.
func (o *Oracle) Swap(s Set) {
	o.set.Store(&s)
}

// Size returns the number of dates in the current snapshot.
func (o *Oracle) Size() int {
	return len(*o.set.Load())
}

// Dates returns the current snapshot's dates in ascending order.
func (o *Oracle) Dates() []string {
	return (*o.set.Load()).Dates()
}
