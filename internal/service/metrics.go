package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeOK          = "ok"
	outcomeMalformed   = "malformed"
	outcomeUnavailable = "unavailable"
)

var (
	modelCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ace_model_calls_total",
			Help: "Model calls by outcome (ok, malformed, unavailable)",
		},
		[]string{"outcome"},
	)

	riskEscalationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ace_risk_escalations_total",
			Help: "Answers whose risk tier was raised by the classifier, by resulting tier",
		},
		[]string{"tier"},
	)

	expiredSessionsReclaimed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ace_sessions_reclaimed_total",
			Help: "Expired sessions deleted by the cleanup job",
		},
	)
)
