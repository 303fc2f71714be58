package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RealtimeConnections tracks currently open realtime channels.
	RealtimeConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "loan_assist_realtime_connections",
		Help: "Number of open realtime session channels",
	})

	// QuestionsTotal counts answered questions by channel (websocket or http).
	QuestionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "loan_assist_questions_total",
		Help: "Total questions answered by channel",
	}, []string{"channel"})

	// ResponderFallbacks counts apologies returned instead of model answers.
	ResponderFallbacks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "loan_assist_responder_fallbacks_total",
		Help: "Total apology responses returned after a failed model call",
	})

	// ContextInitDuration tracks how long session context initialization takes.
	ContextInitDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "loan_assist_context_init_duration_seconds",
		Help:    "Session context initialization duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.05, 2, 10), // 50ms to ~25s
	})

	// ContextInitTotal counts initialization attempts by result.
	ContextInitTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "loan_assist_context_init_total",
		Help: "Total session context initializations by result",
	}, []string{"result"})
)
