package auth

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	registrationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storesight_registrations_total",
		Help: "Registration attempts by outcome.",
	}, []string{"result"})
	loginsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storesight_logins_total",
		Help: "Login attempts by outcome.",
	}, []string{"result"})
)
