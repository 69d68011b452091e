// Package metrics contains definitions of most of the prometheus metrics
// that we use in nodeadmin.
//
// TODO(ameshkov): consider not using promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// constants with the namespace and the subsystem names that we use in our
// prometheus metrics.
const (
	namespace = "nodeadmin"

	subsystemApp    = "app"
	subsystemEditor = "editor"
	subsystemAPI    = "api"
)

// Result label values.
const (
	ResultOK      = "ok"
	ResultInvalid = "invalid"
	ResultEmpty   = "empty"
	ResultError   = "error"
)

// ValidationsTotal is the total number of node validations by result.
var ValidationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: subsystemEditor,
	Name:      "validations_total",
	Help:      "The total number of server node validations.",
}, []string{"result"})

// CommitsTotal is the total number of commit attempts by result.
var CommitsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: subsystemEditor,
	Name:      "commits_total",
	Help:      "The total number of server node commit attempts.",
}, []string{"result"})

// ProtocolsSubmittedTotal counts protocols that were part of a successful
// commit.
var ProtocolsSubmittedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: subsystemEditor,
	Name:      "protocols_submitted_total",
	Help:      "The total number of committed protocol listeners.",
}, []string{"kind"})

// RequestsTotal is the total number of admin API requests.
var RequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: subsystemAPI,
	Name:      "requests_total",
	Help:      "The total number of admin API requests.",
}, []string{"route", "code"})

// UniqueClients is the estimated number of distinct client IP addresses
// that have used the admin API.
var UniqueClients = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: namespace,
	Subsystem: subsystemAPI,
	Name:      "unique_clients",
	Help:      "The estimated number of distinct admin API clients.",
})

// SetUpGauge signals that the server has been started.  Use a function here to
// avoid circular dependencies.
func SetUpGauge(version, branch, revision, goVersion string) {
	upGauge := promauto.NewGauge(
		prometheus.GaugeOpts{
			Name:      "up",
			Namespace: namespace,
			Subsystem: subsystemApp,
			Help:      `A metric with a constant '1' value labeled by the build information.`,
			ConstLabels: prometheus.Labels{
				"version":   version,
				"branch":    branch,
				"revision":  revision,
				"goversion": goVersion,
			},
		},
	)

	upGauge.Set(1)
}
