package ledger

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	opFetch  = "fetch"
	opAdd    = "add"
	opDelete = "delete"
	opUpdate = "update"
)

var histogramOpDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: "expenses",
		Subsystem: "ledger",
		Name:      "histogram_op_duration_seconds",
		Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2},
	},
	[]string{"op", "error"},
)

func observeOp(op string, start time.Time, err bool) {
	label := "false"
	if err {
		label = "true"
	}
	histogramOpDuration.WithLabelValues(op, label).Observe(time.Since(start).Seconds())
}
