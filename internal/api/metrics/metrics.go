// Package metrics defines the custom Prometheus metrics of the yatube
// service. It is the single source of truth for metric names, labels, and
// help strings.
//
// Call MustRegister once per registry before serving /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "yatube"

// ── Post metrics ──────────────────────────────────────────────────────────────

// PostsCreatedTotal counts posts created through the web form.
// Label:
//   - with_group: "true" when the post was filed under a group
var PostsCreatedTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "posts_created_total",
		Help:      "Total number of posts created.",
	},
	[]string{"with_group"},
)

// PostEditsTotal counts edit attempts.
// Label:
//   - result: "ok", "forbidden" (not the author) or "invalid" (form errors)
var PostEditsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "post_edits_total",
		Help:      "Total number of post edit attempts, by result.",
	},
	[]string{"result"},
)

// ── Listing metrics ───────────────────────────────────────────────────────────

// ListingCacheTotal counts listing reads by cache outcome.
// Labels:
//   - listing: "index", "group" or "profile"
//   - result: "hit" or "miss"
var ListingCacheTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "listing_cache_total",
		Help:      "Total number of listing reads, labelled by cache result (hit/miss).",
	},
	[]string{"listing", "result"},
)

// ── Auth metrics ──────────────────────────────────────────────────────────────

// LoginsTotal counts login attempts.
// Label:
//   - result: "ok" or "failed"
var LoginsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// MustRegister adds every collector above to reg. A collector may be
// registered with several registries.
func MustRegister(reg prometheus.Registerer) {
	reg.MustRegister(
		PostsCreatedTotal,
		PostEditsTotal,
		ListingCacheTotal,
		LoginsTotal,
	)
}

// CacheResult maps a cached flag to the hit/miss label value.
func CacheResult(cached bool) string {
	if cached {
		return "hit"
	}
	return "miss"
}
