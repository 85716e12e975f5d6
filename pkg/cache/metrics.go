package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	resultHit   = "hit"
	resultMiss  = "miss"
	resultError = "error"
	resultStale = "stale"
)

var requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "attendance",
	Subsystem: "cache",
	Name:      "requests_total",
	Help:      "Cache lookups by cache name and result (hit, miss, error, stale).",
}, []string{"cache", "result"})
