package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseQuery(t *testing.T) {
	tests := []struct {
		name     string
		raw      Query
		wantKind string
		check    func(t *testing.T, req Request)
	}{
		{
			name:     "both days and hours absent",
			raw:      Query{},
			wantKind: KindMissingParameter,
		},
		{
			name:     "only date given",
			raw:      Query{Date: "2025-04-10T15:00:00.000Z"},
			wantKind: KindMissingParameter,
		},
		{
			name: "days alone",
			raw:  Query{Days: "5"},
			check: func(t *testing.T, req Request) {
				assert.Equal(t, 5, req.Days)
				assert.Zero(t, req.Hours)
				assert.Nil(t, req.Start)
			},
		},
		{
			name: "hours alone",
			raw:  Query{Hours: "8"},
			check: func(t *testing.T, req Request) {
				assert.Equal(t, 8, req.Hours)
			},
		},
		{
			name:     "days not numeric",
			raw:      Query{Days: "abc"},
			wantKind: KindInvalidDays,
		},
		{
			name:     "days zero",
			raw:      Query{Days: "0"},
			wantKind: KindInvalidDays,
		},
		{
			name:     "days negative",
			raw:      Query{Days: "-1"},
			wantKind: KindInvalidDays,
		},
		{
			name:     "days fractional",
			raw:      Query{Days: "1.5"},
			wantKind: KindInvalidDays,
		},
		{
			name:     "hours not numeric",
			raw:      Query{Hours: "xyz", Days: "1"},
			wantKind: KindInvalidHours,
		},
		{
			name:     "hours zero",
			raw:      Query{Hours: "0"},
			wantKind: KindInvalidHours,
		},
		{
			name:     "days error wins over hours error",
			raw:      Query{Days: "bad", Hours: "bad"},
			wantKind: KindInvalidDays,
		},
		{
			name:     "days error wins over date error",
			raw:      Query{Days: "bad", Date: "also-bad"},
			wantKind: KindInvalidDays,
		},
		{
			name: "date with milliseconds",
			raw:  Query{Days: "1", Date: "2025-04-10T15:00:00.123Z"},
			check: func(t *testing.T, req Request) {
				require.NotNil(t, req.Start)
				assert.Equal(t, time.Date(2025, time.April, 10, 15, 0, 0, 123000000, time.UTC), *req.Start)
			},
		},
		{
			name: "date without milliseconds",
			raw:  Query{Hours: "2", Date: "2025-04-10T15:00:00Z"},
			check: func(t *testing.T, req Request) {
				require.NotNil(t, req.Start)
				assert.Equal(t, time.Date(2025, time.April, 10, 15, 0, 0, 0, time.UTC), *req.Start)
			},
		},
		{
			name:     "date without Z suffix",
			raw:      Query{Days: "1", Date: "2025-04-10T15:00:00"},
			wantKind: KindInvalidDate,
		},
		{
			name:     "date with numeric offset",
			raw:      Query{Days: "1", Date: "2025-04-10T15:00:00+05:00"},
			wantKind: KindInvalidDate,
		},
		{
			name:     "date only, no time part",
			raw:      Query{Days: "1", Date: "2025-04-10"},
			wantKind: KindInvalidDate,
		},
		{
			name:     "impossible calendar date",
			raw:      Query{Days: "1", Date: "2025-02-30T10:00:00Z"},
			wantKind: KindInvalidDate,
		},
		{
			name:     "too many fractional digits",
			raw:      Query{Days: "1", Date: "2025-04-10T15:00:00.123456Z"},
			wantKind: KindInvalidDate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := ParseQuery(tt.raw)
			if tt.wantKind != "" {
				var verr *Error
				require.ErrorAs(t, err, &verr)
				assert.Equal(t, tt.wantKind, verr.Kind)
				assert.NotEmpty(t, verr.Message)
				return
			}
			require.NoError(t, err)
			if tt.check != nil {
				tt.check(t, req)
			}
		})
	}
}
