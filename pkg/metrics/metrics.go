package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// WidgetQueries counts widget data requests by widget id and outcome kind
// ("ok" or the error kind).
var WidgetQueries = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "connector_widget_queries_total",
		Help: "Total number of widget data queries served",
	},
	[]string{"widget", "outcome"},
)

// QueryLatency records end-to-end latency for widget data queries.
var QueryLatency = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "connector_widget_query_latency_seconds",
		Help:    "Latency in seconds to serve a widget data query",
		Buckets: prometheus.DefBuckets,
	},
	[]string{"widget"},
)

// Provider call metrics
var (
	ProviderRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "connector_provider_requests_total",
			Help: "Total number of HTTP requests issued to the data provider",
		},
		[]string{"dataset", "outcome"},
	)

	ProviderRetries = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "connector_provider_retries_total",
			Help: "Total number of retried provider requests",
		},
	)

	ProviderLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "connector_provider_latency_seconds",
			Help:    "Latency in seconds of individual provider HTTP calls",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"dataset"},
	)
)

// AuthRejections counts requests refused by the credential guard.
var AuthRejections = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "connector_auth_rejections_total",
		Help: "Total number of requests rejected for a missing or invalid API key",
	},
)

// Response cache metrics
var (
	CacheHits = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "connector_cache_hits_total",
			Help: "Total number of widget queries answered from the response cache",
		},
	)

	CacheMisses = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "connector_cache_misses_total",
			Help: "Total number of widget queries that missed the response cache",
		},
	)
)

func init() {
	prometheus.MustRegister(WidgetQueries, QueryLatency)
	prometheus.MustRegister(ProviderRequests, ProviderRetries, ProviderLatency)
	prometheus.MustRegister(AuthRejections, CacheHits, CacheMisses)
}
