package web

import (
	"encoding/json"
	"log"
	"net/http"
	"sort"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jeengbe/dominion/internal/game"
	dnet "github.com/jeengbe/dominion/internal/net"
)

// CardInfo is the JSON representation of a card for the /api/cards endpoint.
type CardInfo struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Cost     int      `json:"cost"`
	Types    []string `json:"types"`
	Triggers []string `json:"triggers,omitempty"`
}

// KingdomInfo is the JSON representation of a kingdom set for /api/kingdoms.
type KingdomInfo struct {
	Name  string           `json:"name"`
	Piles []game.PileEntry `json:"piles"`
}

// Server is the dominion HTTP server. It hosts the game websocket next to a
// small read-only API and the metrics endpoint.
type Server struct {
	game        *dnet.Server
	kingdomFile string
	registry    *prometheus.Registry
	mux         *http.ServeMux
}

// NewServer creates a new web server. Metrics are registered with registry.
func NewServer(gameServer *dnet.Server, kingdomFile string, registry *prometheus.Registry) *Server {
	s := &Server{
		game:        gameServer,
		kingdomFile: kingdomFile,
		registry:    registry,
		mux:         http.NewServeMux(),
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok\n"))
	})

	// API endpoints
	s.mux.HandleFunc("GET /api/cards", s.handleCards)
	s.mux.HandleFunc("GET /api/kingdoms", s.handleKingdoms)

	s.mux.Handle("GET /metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	// Game protocol
	s.mux.Handle("GET /ws", s.game)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) handleCards(w http.ResponseWriter, r *http.Request) {
	var cards []CardInfo
	for _, id := range game.CardIDs() {
		c := game.LookupCard(id)
		ci := CardInfo{ID: c.ID, Name: c.Name, Cost: c.Cost.Coins}
		for _, t := range c.Types {
			ci.Types = append(ci.Types, t.String())
		}
		for trigger := range c.Abilities {
			ci.Triggers = append(ci.Triggers, trigger.String())
		}
		sort.Strings(ci.Triggers)
		cards = append(cards, ci)
	}
	writeJSON(w, cards)
}

func (s *Server) handleKingdoms(w http.ResponseWriter, r *http.Request) {
	sets, err := game.ParseKingdomFile(s.kingdomFile)
	if err != nil {
		log.Printf("kingdoms: %v", err)
		http.Error(w, "could not read kingdom file", http.StatusInternalServerError)
		return
	}
	kingdoms := make([]KingdomInfo, 0, len(sets))
	for _, set := range sets {
		kingdoms = append(kingdoms, KingdomInfo{Name: set.Name, Piles: set.Piles})
	}
	writeJSON(w, kingdoms)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("write response: %v", err)
	}
}
