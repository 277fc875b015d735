package feed

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeLive     = "live"
	outcomeEmpty    = "empty"
	outcomeFallback = "fallback"
)

var (
	ingestTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "blogfeed_ingest_total",
		Help: "Feed ingestions by outcome",
	}, []string{"outcome"})

	fetchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "blogfeed_fetch_duration_seconds",
		Help:    "Time spent fetching and parsing the upstream feed",
		Buckets: prometheus.ExponentialBuckets(0.05, 2, 10), // 50ms .. ~25s
	})
)
