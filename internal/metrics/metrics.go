package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	calcRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "workdays",
			Name:      "calc_requests_total",
			Help:      "Count of working-date calculations by status.",
		},
		[]string{"status"},
	)

	validationErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "workdays",
			Name:      "validation_errors_total",
			Help:      "Count of rejected requests by error kind.",
		},
		[]string{"kind"},
	)

	holidayRefresh = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "workdays",
			Name:      "holiday_refresh_total",
			Help:      "Count of holiday set refreshes by outcome.",
		},
		[]string{"outcome"},
	)

	holidaysLoaded = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "workdays",
			Name:      "holidays_loaded",
			Help:      "Number of holiday dates in the current snapshot.",
		},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(calcRequests, validationErrors, holidayRefresh, holidaysLoaded)
	})
}

func IncCalcRequest(status string) {
	calcRequests.WithLabelValues(status).Inc()
}

func IncValidationError(kind string) {
	validationErrors.WithLabelValues(kind).Inc()
}

func IncHolidayRefresh(outcome string) {
	holidayRefresh.WithLabelValues(outcome).Inc()
}

func SetHolidaysLoaded(n int) {
	holidaysLoaded.Set(float64(n))
}
