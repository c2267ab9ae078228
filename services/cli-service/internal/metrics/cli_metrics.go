package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"AssistantHubPlatform/pkg/logger"
	"AssistantHubPlatform/pkg/metrics"
)

// CLIMetrics метрики выполнения команд консоли
type CLIMetrics struct {
	*metrics.Metrics

	CommandCount    *prometheus.CounterVec
	CommandDuration *prometheus.HistogramVec

	logger logger.Logger
}

// NewCLIMetrics регистрирует метрики команд в реестре base
func NewCLIMetrics(namespace string, base *metrics.Metrics, log logger.Logger) *CLIMetrics {
	commandCount := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cli",
			Name:      "commands_total",
			Help:      "Total number of executed console commands by status",
		},
		[]string{"command", "status"},
	)

	commandDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "cli",
			Name:      "command_duration_seconds",
			Help:      "Duration of console commands in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"command"},
	)

	base.Registry().MustRegister(commandCount, commandDuration)

	if log == nil {
		log = logger.NewNop()
	}
	return &CLIMetrics{
		Metrics:         base,
		CommandCount:    commandCount,
		CommandDuration: commandDuration,
		logger:          log,
	}
}

// CommandExecuted регистрирует выполнение команды. code пустой для успешных команд.
func (c *CLIMetrics) CommandExecuted(command, code string, duration time.Duration) {
	c.logger.Debug("Command executed",
		logger.String("command", command),
		logger.Bool("success", code == ""),
		logger.Duration("duration", duration))

	c.CommandCount.WithLabelValues(command, getStatusLabel(code)).Inc()
	c.CommandDuration.WithLabelValues(command).Observe(duration.Seconds())
}

func getStatusLabel(code string) string {
	if code == "" {
		return "success"
	}
	return code
}
