// Package metrics exposes Prometheus counters for the clinic API.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// LoginsTotal counts login attempts by result: ok, failed, 2fa_required.
	LoginsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "securevet",
		Name:      "logins_total",
		Help:      "Login attempts by result.",
	}, []string{"result"})

	// AppointmentTransitions counts lifecycle transitions: requested,
	// claimed, booked, completed.
	AppointmentTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "securevet",
		Name:      "appointment_transitions_total",
		Help:      "Appointment lifecycle transitions.",
	}, []string{"transition"})

	// HTTPRequests counts handled requests by method, route and status.
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "securevet",
		Name:      "http_requests_total",
		Help:      "Handled HTTP requests.",
	}, []string{"method", "route", "status"})
)

// Handler returns the Prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
