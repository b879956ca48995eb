// Command broadcast runs the engine in its own goroutine and fans out
// every tick's snapshot to any number of connected websocket clients, the
// way a live-timing dashboard would consume it. The hub shape (register/
// unregister/broadcast channels guarded by one goroutine) mirrors the
// connection-manager pattern used elsewhere in the pack for streaming
// per-tick state to many readers at once.
package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"

	"github.com/psybe/pitwall/engine"
	"github.com/psybe/pitwall/racestate"
	"github.com/psybe/pitwall/trackmodel"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// hub fans out snapshots to every connected client. A single goroutine
// owns clients, so register/unregister/broadcast never need a lock.
type hub struct {
	register   chan *client
	unregister chan *client
	broadcast  chan racestate.Snapshot
	clients    map[*client]bool
	logger     zerolog.Logger
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

func newHub(logger zerolog.Logger) *hub {
	return &hub{
		register:   make(chan *client),
		unregister: make(chan *client),
		broadcast:  make(chan racestate.Snapshot, 8),
		clients:    make(map[*client]bool),
		logger:     logger,
	}
}

func (h *hub) run() {
	for {
		select {
		case c := <-h.register:
			h.clients[c] = true
			h.logger.Info().Int("clients", len(h.clients)).Msg("client connected")
		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}
		case snap := <-h.broadcast:
			payload, err := json.Marshal(snap)
			if err != nil {
				h.logger.Warn().Err(err).Msg("failed to marshal snapshot")
				continue
			}
			for c := range h.clients {
				select {
				case c.send <- payload:
				default:
					delete(h.clients, c)
					close(c.send)
				}
			}
		}
	}
}

func (c *client) writePump() {
	for msg := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
	_ = c.conn.Close()
}

func (h *hub) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	c := &client{conn: conn, send: make(chan []byte, 4)}
	h.register <- c
	go c.writePump()

	go func() {
		defer func() { h.unregister <- c }()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func main() {
	logger := newLogger()

	track := demoTrack()
	drivers := demoDrivers(20)

	e, err := engine.New(track, drivers, 98765, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build engine")
	}
	e.StartRace()

	h := newHub(logger)
	go h.run()
	go tickLoop(e, h)

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/ws", h.serveWS)
	r.Get("/state", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(e.GetState())
	})

	addr := ":8090"
	logger.Info().Str("addr", addr).Msg("serving live-timing feed")
	if err := http.ListenAndServe(addr, r); err != nil {
		logger.Fatal().Err(err).Msg("server stopped")
	}
}

func tickLoop(e *engine.Engine, h *hub) {
	const tick = 0.1
	ticker := time.NewTicker(time.Duration(tick * float64(time.Second)))
	defer ticker.Stop()
	for range ticker.C {
		snap := e.Update(tick)
		select {
		case h.broadcast <- snap:
		default:
		}
		if snap.Status == racestate.StatusFinished {
			return
		}
	}
}

func newLogger() zerolog.Logger {
	writer := zerolog.ConsoleWriter{Out: os.Stdout, NoColor: !isatty.IsTerminal(os.Stdout.Fd())}
	return zerolog.New(writer).With().Timestamp().Logger()
}

func demoTrack() *trackmodel.Track {
	return &trackmodel.Track{
		ID:                    "demo-circuit",
		TotalDistance:         5800,
		DefaultTotalLaps:      52,
		TireDegradationFactor: 1.0,
		OvertakingDifficulty:  0.4,
		TrackDifficulty:       0.3,
		BaseTemperature:       24,
		WeatherParams:         trackmodel.WeatherParams{Volatility: 0.3, RainProbability: 0.1},
		Sectors: []trackmodel.Sector{
			{ID: 1, Name: "S1", StartDistance: 0, EndDistance: 2000, Type: trackmodel.SectorStraight, Difficulty: 0.2},
			{ID: 2, Name: "S2", StartDistance: 2000, EndDistance: 4200, Type: trackmodel.SectorCornerMediumSpeed, Difficulty: 0.5},
			{ID: 3, Name: "S3", StartDistance: 4200, EndDistance: 5800, Type: trackmodel.SectorCornerHighSpeed, Difficulty: 0.4},
		},
		DRSZones: []trackmodel.DRSZone{{DetectionDistance: 1800, ActivationDistance: 1900, EndDistance: 2300}},
		PitLane:  trackmodel.PitLane{EntryDistance: 5600, ExitDistance: 200, SpeedLimit: 22},
	}
}

func demoDrivers(n int) []trackmodel.Driver {
	drivers := make([]trackmodel.Driver, n)
	for i := range drivers {
		drivers[i] = trackmodel.Driver{
			ID:       fmt.Sprintf("driver-%02d", i),
			Name:     fmt.Sprintf("Driver %d", i),
			BasePace: 90 + float64(i)*0.15,
			Skill: trackmodel.SkillScores{
				Racecraft: 60, Consistency: 70, TyreManagement: 65, WetWeather: 55,
			},
			Personality:    trackmodel.PersonalityScores{Aggression: 40 + float64(i%5)*10, StressResistance: 60, TeamPlayer: 50},
			StartingMorale: 80,
			StartingTrust:  70,
		}
	}
	return drivers
}
