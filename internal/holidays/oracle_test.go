package holidays

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewSet_DropsMalformedDates(t *testing.T) {
	set, dropped := NewSet([]string{
		"2025-01-01",
		"2025-13-01", // no such month
		"not-a-date",
		"2025-04-17",
		"2025-02-30", // no such day
	})

	assert.Equal(t, 3, dropped)
	assert.Len(t, set, 2)
	assert.Equal(t, []string{"2025-01-01", "2025-04-17"}, set.Dates())
}

func TestOracle_Lookup(t *testing.T) {
	o := NewOracle()
	assert.Zero(t, o.Size())

	loc, err := time.LoadLocation("America/Bogota")
	assert.NoError(t, err)

	newYear := time.Date(2025, time.January, 1, 10, 0, 0, 0, loc)
	assert.False(t, o.IsHoliday(newYear), "empty oracle must treat every date as working")

	set, _ := NewSet([]string{"2025-01-01", "2025-12-25"})
	o.Swap(set)

	assert.True(t, o.IsHoliday(newYear))
	assert.False(t, o.IsHoliday(newYear.AddDate(0, 0, 1)))
	assert.Equal(t, 2, o.Size())
}

func TestOracle_ConcurrentSwapAndLookup(t *testing.T) {
	o := NewOracle()
	date := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				o.IsHoliday(date)
			}
		}()
	}
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func(seed int) {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				set, _ := NewSet([]string{fmt.Sprintf("2025-01-%02d", (seed+j)%28+1)})
				o.Swap(set)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, o.Size())
}
