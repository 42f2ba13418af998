package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	namespace = "virtualitems"

	LabelOperation = "operation"
	LabelOutcome   = "outcome"
	LabelTier      = "tier"
	LabelState     = "state"

	OutcomeSuccess = "success"
	OutcomeFailure = "failure"

	TierMemory = "memory"
	TierDisk   = "disk"
	TierRemote = "remote"
	TierMiss   = "miss"
)

var (
	TransportCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transport_calls_total",
			Help:      "Callable function invocations by operation and outcome.",
		},
		[]string{LabelOperation, LabelOutcome},
	)

	TransportLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "transport_call_duration_seconds",
			Help:      "Latency of callable function invocations.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{LabelOperation},
	)

	ThumbnailLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "thumbnail_lookups_total",
			Help:      "Thumbnail resolutions by the tier that answered.",
		},
		[]string{LabelTier},
	)

	Purchases = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "purchases_total",
			Help:      "Purchase requests by terminal state.",
		},
		[]string{LabelState},
	)

	PurchasesPending = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "purchases_pending",
			Help:      "Purchase requests currently awaiting the remote.",
		},
	)
)
