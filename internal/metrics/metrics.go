package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Connection metrics
	ActiveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "typerace_active_sessions",
		Help: "Number of connected sessions",
	})

	TotalConnections = promauto.NewCounter(prometheus.CounterOpts{
		Name: "typerace_connections_total",
		Help: "Total number of WebSocket connections accepted",
	})

	// Command metrics
	CommandsReceived = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "typerace_commands_received_total",
		Help: "Total number of inbound commands by verb",
	}, []string{"verb"})

	IllegalFrames = promauto.NewCounter(prometheus.CounterOpts{
		Name: "typerace_illegal_frames_total",
		Help: "Total number of frames dropped as unparseable or illegal in the current state",
	})

	// Outbound metrics
	MessagesSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "typerace_messages_sent_total",
		Help: "Total number of outbound messages queued by type",
	}, []string{"type"})

	FramesDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "typerace_frames_dropped_total",
		Help: "Total number of outbound frames dropped on full queues",
	})

	// Game metrics
	ActiveGames = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "typerace_active_games",
		Help: "Number of running games",
	})

	GamesCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "typerace_games_created_total",
		Help: "Total number of games created in the lobby",
	})

	RoundsPlayed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "typerace_rounds_played_total",
		Help: "Total number of rounds scored",
	})

	WordsClaimed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "typerace_words_claimed_total",
		Help: "Total number of successful word claims",
	})

	// Persistence metrics
	SinkErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "typerace_sink_errors_total",
		Help: "Total number of failed top-score sink writes",
	})
)
