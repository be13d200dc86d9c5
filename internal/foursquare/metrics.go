package foursquare

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	mRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "foursquare_requests_total",
		Help: "Foursquare API requests by route and outcome.",
	}, []string{"method", "route", "outcome"})
	mLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "foursquare_request_duration_seconds",
		Help:    "Foursquare API round-trip latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})
)

// actions are the fixed second segments under a resource; anything else in
// that position is an object id.
var actions = map[string]bool{"add": true, "recent": true, "search": true, "resolve": true}

// route collapses the id segment so "checkins/4d62.../addcomment" becomes
// "checkins/{id}/addcomment".
func route(path string) string {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) >= 2 && !actions[parts[1]] {
		parts[1] = "{id}"
	}
	return strings.Join(parts, "/")
}
