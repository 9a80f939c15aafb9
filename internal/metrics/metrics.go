package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	EvaluationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "fishguard_evaluations_total",
		Help: "Warning evaluations by resulting level",
	}, []string{"level"})
	EvaluationDurationMs = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "fishguard_evaluation_duration_ms",
		Help:    "Warning evaluation duration in milliseconds",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 50, 250, 1000},
	})
	ZoneCacheLoadsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "fishguard_zone_cache_loads_total",
		Help: "Zone file loads that rebuilt the zone cache",
	})
	ReportsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "fishguard_reports_total",
		Help: "Position reports received by source",
	}, []string{"source"})
	WarningsRecordedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "fishguard_warnings_recorded_total",
		Help: "Warning level changes persisted",
	})
)

func init() {
	prometheus.MustRegister(EvaluationsTotal)
	prometheus.MustRegister(EvaluationDurationMs)
	prometheus.MustRegister(ZoneCacheLoadsTotal)
	prometheus.MustRegister(ReportsTotal)
	prometheus.MustRegister(WarningsRecordedTotal)
}

// ObserveEvaluation records one finished evaluation
func ObserveEvaluation(level int, took time.Duration) {
	EvaluationsTotal.WithLabelValues(strconv.Itoa(level)).Inc()
	EvaluationDurationMs.Observe(float64(took.Microseconds()) / 1000)
}

// Handler exposes the registered metrics for scraping
func Handler() http.Handler { return promhttp.Handler() }
