// Package metrics exposes the bot's Prometheus collectors and the HTTP
// endpoint that serves them.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var CommandsDispatched = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "byteguard_commands_dispatched_total",
	Help: "Commands dispatched, by command name and outcome",
}, []string{"command", "outcome"})

var CommandDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "byteguard_command_duration_seconds",
	Help:    "Time spent inside command handlers",
	Buckets: prometheus.DefBuckets,
}, []string{"command"})

var ModerationActions = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "byteguard_moderation_actions_total",
	Help: "Moderation actions applied to the platform, by action and result",
}, []string{"action", "result"})

var Notifications = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "byteguard_notifications_total",
	Help: "Direct-message notices, by result",
}, []string{"result"})

var ScheduledUnbansPending = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "byteguard_scheduled_unbans_pending",
	Help: "Temporary bans waiting for their automatic unban",
})

var ScheduledUnbansFired = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "byteguard_scheduled_unbans_fired_total",
	Help: "Automatic unbans attempted, by result",
}, []string{"result"})

var PoolJobs = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "byteguard_pool_jobs_total",
	Help: "Worker pool job transitions, by status",
}, []string{"status"})

// Result maps an error onto the "ok"/"error" label pair used by the counters above.
func Result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
