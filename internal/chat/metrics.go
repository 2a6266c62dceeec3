package chat

import "github.com/prometheus/client_golang/prometheus"

var (
	connectedSessions = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "chat_connected_sessions",
		Help: "Number of currently connected sessions",
	})

	commandsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "chat_commands_total",
		Help: "Total interpreted commands by type",
	}, []string{"command"})

	commandDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "chat_command_processing_seconds",
		Help:    "Time to process each command type",
		Buckets: prometheus.DefBuckets,
	}, []string{"command"})

	rejectedFullTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "chat_rejected_full_total",
		Help: "Connections rejected because the session table was full",
	})
)

func init() {
	prometheus.MustRegister(connectedSessions)
	prometheus.MustRegister(commandsTotal)
	prometheus.MustRegister(commandDuration)
	prometheus.MustRegister(rejectedFullTotal)
}
