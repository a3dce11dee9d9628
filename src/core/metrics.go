package main

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Report lifecycle metrics
	reportsSubmittedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "whispr_reports_submitted_total",
		Help: "Total number of reports submitted",
	}, []string{"category"})

	reportsReviewedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "whispr_reports_reviewed_total",
		Help: "Total number of review transitions applied",
	}, []string{"outcome"})

	// Token ledger metrics
	tokensStakedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "whispr_tokens_staked_total",
		Help: "Total tokens locked as stakes on submission",
	})

	tokensRewardedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "whispr_tokens_rewarded_total",
		Help: "Total tokens paid out as approval rewards",
	})

	tokensForfeitedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "whispr_tokens_forfeited_total",
		Help: "Total tokens forfeited on rejection",
	})

	tokensTransferredTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "whispr_tokens_transferred_total",
		Help: "Total tokens moved by user-to-user transfers",
	})

	// Messaging metrics
	messagesSentTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "whispr_messages_sent_total",
		Help: "Total messages appended by explicit send operations",
	}, []string{"sender"})

	// Gauge metrics
	authoritiesGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "whispr_authorities",
		Help: "Current number of registered authorities",
	})

	// HTTP request metrics
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "whispr_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "whispr_http_request_duration_seconds",
		Help:    "Duration of HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})
)
