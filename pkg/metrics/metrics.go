package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var Registry = prometheus.NewRegistry()

var (
	AccountOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "giveget",
			Name:      "account_operations_total",
			Help:      "Account lifecycle operations by operation and result code.",
		},
		[]string{"operation", "result"},
	)

	FeedSnapshots = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "giveget",
			Name:      "feed_snapshots_total",
			Help:      "Listing snapshots delivered per collection.",
		},
		[]string{"collection"},
	)

	FeedErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "giveget",
			Name:      "feed_subscription_errors_total",
			Help:      "Listing subscriptions that terminated with an error.",
		},
		[]string{"collection"},
	)

	FeedConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "giveget",
			Name:      "feed_connections",
			Help:      "Open live feed connections.",
		},
	)
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		AccountOperations,
		FeedSnapshots,
		FeedErrors,
		FeedConnections,
	)
}

func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// ObserveAccount records one lifecycle call; result is "ok" or an error code.
func ObserveAccount(operation, result string) {
	AccountOperations.WithLabelValues(operation, result).Inc()
}
