package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// OperationsTotal counts engine operations by name and outcome.
	OperationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "agora_operations_total",
		Help: "Total number of engine operations by name and outcome",
	}, []string{"operation", "outcome"})

	// RewardCreditsTotal counts reward credits issued for likes.
	RewardCreditsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "agora_reward_credits_total",
		Help: "Total number of reward credits issued for likes",
	})

	// RewardAmountTotal accumulates the total credited reward amount.
	RewardAmountTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "agora_reward_amount_total",
		Help: "Total reward amount credited, in base token units",
	})

	// EventsPublishedTotal counts domain events published by type.
	EventsPublishedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "agora_events_published_total",
		Help: "Total number of domain events published by type",
	}, []string{"type"})

	// WebSocketConnectionsTotal is the gauge of total WebSocket connections.
	WebSocketConnectionsTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "agora_websocket_connections_total",
		Help: "Total number of active WebSocket connections",
	})

	// WebSocketBackpressureDrops counts messages dropped due to backpressure by hub and reason.
	WebSocketBackpressureDrops = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "agora_websocket_backpressure_drops_total",
		Help: "Total number of WebSocket messages dropped due to backpressure",
	}, []string{"hub", "reason"})

	// RedisErrors counts Redis errors by operation type.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "agora_redis_errors_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})
)

// RecordOperation records one engine operation outcome.
func RecordOperation(operation string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "rejected"
	}
	OperationsTotal.WithLabelValues(operation, outcome).Inc()
}

// RecordRewardCredit records a successful reward credit.
func RecordRewardCredit(amount int64) {
	RewardCreditsTotal.Inc()
	RewardAmountTotal.Add(float64(amount))
}
