// Package metrics holds the application-level Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "recruiting"

var (
	// AuthRejections counts requests stopped by the authentication or role gate.
	AuthRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "auth_rejections_total",
			Help:      "Requests rejected by the authentication or role gate",
		},
		[]string{"reason"},
	)

	LoginAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "login_attempts_total",
			Help:      "Login attempts by outcome",
		},
		[]string{"result"},
	)

	TenantClaims = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tenant_claims_total",
			Help:      "Tenants successfully claimed",
		},
	)

	ApplicationsSubmitted = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "applications_submitted_total",
			Help:      "Applications successfully submitted",
		},
	)
)

// Rejection reasons.
const (
	ReasonUnauthenticated = "unauthenticated"
	ReasonForbidden       = "forbidden"
)

// Login results.
const (
	LoginSuccess = "success"
	LoginFailure = "failure"
	LoginBlocked = "blocked"
)
