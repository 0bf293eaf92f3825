package net

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics are the server's prometheus instruments.
type Metrics struct {
	Connections   prometheus.Gauge
	OpenLobbies   prometheus.Gauge
	ActiveGames   prometheus.Gauge
	GamesFinished *prometheus.CounterVec
	Prompts       prometheus.Counter
	Violations    prometheus.Counter
	Messages      *prometheus.CounterVec
}

// NewMetrics creates the instruments and registers them with reg. A nil
// reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Connections: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "dominion_connections",
			Help: "Open websocket connections",
		}),
		OpenLobbies: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "dominion_open_lobbies",
			Help: "Lobbies waiting for players",
		}),
		ActiveGames: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "dominion_active_games",
			Help: "Games currently running",
		}),
		GamesFinished: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dominion_games_finished_total",
				Help: "Finished games by outcome",
			},
			[]string{"outcome"},
		),
		Prompts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dominion_prompts_total",
			Help: "PROMPT_CARDS messages sent",
		}),
		Violations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dominion_protocol_violations_total",
			Help: "Rejected client messages and prompt responses",
		}),
		Messages: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dominion_client_messages_total",
				Help: "Client messages received by type",
			},
			[]string{"type"},
		),
	}
	if reg != nil {
		reg.MustRegister(m.Connections, m.OpenLobbies, m.ActiveGames, m.GamesFinished, m.Prompts, m.Violations, m.Messages)
	}
	return m
}
