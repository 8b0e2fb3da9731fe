package events

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func newTestRegistry() *prometheus.Registry {
	return prometheus.NewRegistry()
}

func testCounterValue(c prometheus.Counter) float64 {
	return testutil.ToFloat64(c)
}
