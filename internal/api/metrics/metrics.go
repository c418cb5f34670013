// Package metrics defines and registers all custom Prometheus metrics for the
// ad-directory service. It is the single source of truth for metric names,
// labels, and help strings. Everything is registered on the default registry
// via promauto at package init.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "addirectory"

// ── Directory metrics ─────────────────────────────────────────────────────────

// OffersListedTotal counts directory listing requests that completed.
// Label:
//   - filtered: "city", "category", "both", or "none"
var OffersListedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "offers_listed_total",
		Help:      "Total number of completed offer listing requests, by filter shape.",
	},
	[]string{"filtered"},
)

// IdentitiesProvisionedTotal counts anonymous identities minted during
// listing requests (one per x-access-token response header emitted).
var IdentitiesProvisionedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "identities_provisioned_total",
		Help:      "Total number of anonymous identities auto-provisioned.",
	},
)

// ── Relay metrics ─────────────────────────────────────────────────────────────

// RelayEventsTotal counts relayed broker events.
// Label:
//   - result: "relayed", "duplicate", or "malformed"
var RelayEventsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "relay_events_total",
		Help:      "Total number of broker events handled by the relay, by result.",
	},
	[]string{"result"},
)

// RelayBufferSize tracks the current number of events held in the ring buffer.
var RelayBufferSize = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "relay_buffer_size",
		Help:      "Current number of events held in the relay ring buffer.",
	},
)
