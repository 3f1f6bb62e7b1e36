package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all prometheus metrics
type Metrics struct {
	ScrapeTasks       *prometheus.CounterVec
	OffersScraped     *prometheus.CounterVec
	ScrapeDuration    *prometheus.HistogramVec
	RateLimitDenied   *prometheus.CounterVec
	DuplicatesRemoved prometheus.Counter
	FlightsPersisted  *prometheus.CounterVec
	RunDuration       prometheus.Histogram
}

// NewMetrics creates new prometheus metrics
func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		ScrapeTasks: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scrape_tasks_total",
			Help:      "The total number of scrape tasks by source and outcome",
		}, []string{"source", "status"}),
		OffersScraped: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "offers_scraped_total",
			Help:      "The total number of raw offers returned per source",
		}, []string{"source"}),
		ScrapeDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "scrape_task_duration_seconds",
			Help:      "Time taken by a single scrape task",
			Buckets:   prometheus.DefBuckets,
		}, []string{"source"}),
		RateLimitDenied: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limit_denied_total",
			Help:      "The total number of tasks skipped because a source budget was exhausted",
		}, []string{"source"}),
		DuplicatesRemoved: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "offers_duplicates_removed_total",
			Help:      "The total number of offers merged away by deduplication",
		}),
		FlightsPersisted: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "flights_persisted_total",
			Help:      "The total number of flight records by persistence outcome",
		}, []string{"outcome"}),
		RunDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "End-to-end duration of one orchestration run",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600},
		}),
	}
}
