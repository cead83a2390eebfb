package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	Namespace = "group_watcher"

	BotSubsystem     = "bot"
	WatcherSubsystem = "watcher"
)

var (
	GatewayRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "gateway_requests_total",
			Help:      "Total number of platform gateway requests",
		},
		[]string{"operation", "status"},
	)

	GatewayRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "gateway_request_duration_seconds",
			Help:      "Platform gateway request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"operation"},
	)
)

// Бот метрики.
var (
	CommandsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: BotSubsystem,
			Name:      "commands_total",
			Help:      "Total number of operator commands processed",
		},
		[]string{"command"},
	)

	MessagesSentTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: BotSubsystem,
			Name:      "messages_sent_total",
			Help:      "Total number of bot messages sent to the operator",
		},
		[]string{"kind", "status"},
	)
)

// Watcher метрики.
var (
	PlatformEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: WatcherSubsystem,
			Name:      "platform_events_total",
			Help:      "Total number of platform events by evaluation outcome",
		},
		[]string{"outcome"},
	)

	TriggersTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: WatcherSubsystem,
			Name:      "triggers_total",
			Help:      "Total number of alert cycles started",
		},
	)

	NagsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: WatcherSubsystem,
			Name:      "nags_total",
			Help:      "Total number of nag reminders",
		},
		[]string{"status"},
	)

	AlertActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: Namespace,
			Subsystem: WatcherSubsystem,
			Name:      "alert_active",
			Help:      "1 while an alert cycle is active",
		},
	)
)

func RecordGatewayRequest(operation string, err error, duration time.Duration) {
	status := "success"
	if err != nil {
		status = "error"
	}

	GatewayRequestsTotal.WithLabelValues(operation, status).Inc()
	GatewayRequestDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

func RecordCommand(command string) {
	CommandsTotal.WithLabelValues(command).Inc()
}

func RecordMessageSent(kind string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}

	MessagesSentTotal.WithLabelValues(kind, status).Inc()
}

func RecordPlatformEvent(outcome string) {
	PlatformEventsTotal.WithLabelValues(outcome).Inc()
}

func RecordTrigger() {
	TriggersTotal.Inc()
	AlertActive.Set(1)
}

func RecordNag(capped bool) {
	if capped {
		NagsTotal.WithLabelValues("capped").Inc()
		AlertActive.Set(0)

		return
	}

	NagsTotal.WithLabelValues("sent").Inc()
}

func RecordAlertStopped() {
	AlertActive.Set(0)
}
