package handler

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	submissionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "absensi_submissions_total",
		Help: "Attendance submissions by outcome.",
	}, []string{"outcome"})

	feedSubscribers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "absensi_feed_subscribers",
		Help: "Currently connected live-feed clients.",
	})
)
