package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
)

// Frame mirrors the live feed wire schema: a timestamped map of per-planet
// factory telemetry, keyed by stringified planet id.
type Frame struct {
	Timestamp float64           `json:"Timestamp"`
	Planets   map[string]Planet `json:"Planets"`
}

type Planet struct {
	Name       string       `json:"Name"`
	Power      Power        `json:"Power"`
	Production []Production `json:"Production"`
	Assemblers []Assembler  `json:"Assemblers"`
	Belts      []Belt       `json:"Belts"`
}

type Power struct {
	GenerationMW       float64 `json:"GenerationMW"`
	ConsumptionMW      float64 `json:"ConsumptionMW"`
	AccumulatorPercent float64 `json:"AccumulatorPercent"`
}

type Production struct {
	ItemName        string  `json:"ItemName"`
	ProductionRate  float64 `json:"ProductionRate"`
	ConsumptionRate float64 `json:"ConsumptionRate"`
	Storage         int     `json:"Storage"`
}

type Assembler struct {
	AssemblerID    int     `json:"AssemblerID"`
	RecipeID       int     `json:"RecipeID"`
	ProductionRate float64 `json:"ProductionRate"`
	TheoreticalMax float64 `json:"TheoreticalMax"`
	InputStarved   bool    `json:"InputStarved"`
	OutputBlocked  bool    `json:"OutputBlocked"`
}

type Belt struct {
	BeltID        int     `json:"BeltID"`
	ItemType      string  `json:"ItemType"`
	Throughput    float64 `json:"Throughput"`
	MaxThroughput float64 `json:"MaxThroughput"`
}

// FeedServer serves synthetic factory frames over websocket, emulating the
// in-game telemetry mod.
type FeedServer struct {
	port       int
	upgrader   websocket.Upgrader
	clients    map[*websocket.Conn]bool
	clientsMux sync.RWMutex
	sim        *FactorySim
	ctx        context.Context
	cancel     context.CancelFunc
}

// FactorySim holds the evolving state of the simulated factory.
type FactorySim struct {
	rng     *rand.Rand
	planets map[string]*planetSim
	mu      sync.Mutex
}

type planetSim struct {
	name      string
	power     Power
	items     []*itemSim
	beltTiers []float64
}

type itemSim struct {
	name        string
	baseRate    float64
	rate        float64
	consumption float64
	storage     int
	recipeID    int
}

func main() {
	var (
		port     = flag.Int("port", 8470, "Websocket feed port")
		interval = flag.Duration("interval", time.Second, "Frame broadcast interval")
		helpFlag = flag.Bool("help", false, "Show help message")
	)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage:\n")
		fmt.Fprintf(os.Stderr, "  test-feed [--port <N>] [--interval <D>]\n")
		fmt.Fprintf(os.Stderr, "  test-feed --help\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fmt.Fprintf(os.Stderr, "  --port N       Websocket feed port (default: 8470)\n")
		fmt.Fprintf(os.Stderr, "  --interval D   Frame broadcast interval (default: 1s)\n")
	}

	flag.Parse()

	if *helpFlag {
		flag.Usage()
		os.Exit(0)
	}

	slog.Info("Starting Test Feed Generator...")

	server := NewFeedServer(*port)
	go server.Run(*interval)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	slog.Info("Test Feed started successfully", "port", *port)
	fmt.Printf("Test Feed running on ws://localhost:%d\n", *port)
	fmt.Printf("Press Ctrl+C to stop...\n\n")

	<-sigChan
	slog.Info("Shutting down...")
	server.Shutdown()
	slog.Info("Test Feed stopped")
}

// NewFeedServer creates a feed server with a two-planet starter factory.
func NewFeedServer(port int) *FeedServer {
	ctx, cancel := context.WithCancel(context.Background())

	return &FeedServer{
		port: port,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients: make(map[*websocket.Conn]bool),
		sim:     NewFactorySim(),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// NewFactorySim seeds a plausible early-game factory: a starter planet with
// iron and circuit lines, and a secondary mining world running a deficit.
func NewFactorySim() *FactorySim {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	return &FactorySim{
		rng: rng,
		planets: map[string]*planetSim{
			"0": {
				name:  "Sparta I",
				power: Power{GenerationMW: 180, ConsumptionMW: 140, AccumulatorPercent: 85},
				items: []*itemSim{
					{name: "iron-ingot", baseRate: 90, rate: 90, consumption: 60, storage: 1200, recipeID: 1},
					{name: "copper-ingot", baseRate: 60, rate: 60, consumption: 45, storage: 800, recipeID: 2},
					{name: "circuit-board", baseRate: 30, rate: 30, consumption: 28, storage: 300, recipeID: 8},
					{name: "gear", baseRate: 45, rate: 45, consumption: 40, storage: 500, recipeID: 5},
				},
				beltTiers: []float64{6, 6, 12, 12, 30},
			},
			"1": {
				name:  "Sparta II",
				power: Power{GenerationMW: 45, ConsumptionMW: 52, AccumulatorPercent: 20},
				items: []*itemSim{
					{name: "stone-brick", baseRate: 24, rate: 24, consumption: 18, storage: 400, recipeID: 3},
					{name: "silicon-ingot", baseRate: 18, rate: 18, consumption: 20, storage: 150, recipeID: 10},
				},
				beltTiers: []float64{6, 12},
			},
		},
	}
}

// Run starts the websocket endpoint and the broadcast loop.
func (s *FeedServer) Run(interval time.Duration) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleWebsocket)

	go s.broadcastLoop(interval)

	addr := fmt.Sprintf(":%d", s.port)
	if err := http.ListenAndServe(addr, mux); err != nil {
		slog.Error("Feed server failed", "error", err)
		os.Exit(1)
	}
}

func (s *FeedServer) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("Failed to upgrade connection", "error", err)
		return
	}

	s.clientsMux.Lock()
	s.clients[conn] = true
	clientCount := len(s.clients)
	s.clientsMux.Unlock()

	slog.Info("Client connected", "clients", clientCount, "addr", conn.RemoteAddr())

	// Drain the connection so pings are answered and closes are noticed.
	go func() {
		defer s.dropClient(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (s *FeedServer) dropClient(conn *websocket.Conn) {
	conn.Close()
	s.clientsMux.Lock()
	delete(s.clients, conn)
	clientCount := len(s.clients)
	s.clientsMux.Unlock()
	slog.Info("Client disconnected", "clients", clientCount)
}

// broadcastLoop advances the simulation and pushes a frame to every client.
func (s *FeedServer) broadcastLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	frameCount := 0

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			frame := s.sim.NextFrame()

			s.clientsMux.RLock()
			conns := make([]*websocket.Conn, 0, len(s.clients))
			for conn := range s.clients {
				conns = append(conns, conn)
			}
			s.clientsMux.RUnlock()

			for _, conn := range conns {
				conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
				if err := conn.WriteJSON(frame); err != nil {
					s.dropClient(conn)
				}
			}

			frameCount++
			if frameCount%30 == 0 {
				slog.Info("Broadcast stats", "frames", frameCount, "clients", len(conns))
			}
		}
	}
}

// NextFrame advances the random walk and renders the wire frame.
func (s *FactorySim) NextFrame() Frame {
	s.mu.Lock()
	defer s.mu.Unlock()

	planets := make(map[string]Planet, len(s.planets))
	for id, sim := range s.planets {
		planets[id] = s.renderPlanet(sim)
	}

	return Frame{
		Timestamp: float64(time.Now().Unix()),
		Planets:   planets,
	}
}

func (s *FactorySim) renderPlanet(sim *planetSim) Planet {
	// Power wobbles a little; consumption tracks assembler activity.
	gen := jitter(s.rng, sim.power.GenerationMW, 0.02)
	cons := jitter(s.rng, sim.power.ConsumptionMW, 0.05)
	acc := sim.power.AccumulatorPercent
	if gen < cons {
		acc = math.Max(0, acc-2)
	} else {
		acc = math.Min(100, acc+1)
	}
	sim.power.AccumulatorPercent = acc

	planet := Planet{
		Name: sim.name,
		Power: Power{
			GenerationMW:       round1(gen),
			ConsumptionMW:      round1(cons),
			AccumulatorPercent: round1(acc),
		},
	}

	for i, item := range sim.items {
		item.rate = clampWalk(s.rng, item.rate, item.baseRate)
		item.storage += int(item.rate-item.consumption) / 6
		if item.storage < 0 {
			item.storage = 0
		}

		planet.Production = append(planet.Production, Production{
			ItemName:        item.name,
			ProductionRate:  round1(item.rate),
			ConsumptionRate: round1(item.consumption),
			Storage:         item.storage,
		})

		// One assembler group per item line. Starvation shows up when the
		// walk drags actual rate well below the theoretical max.
		efficiency := item.rate / item.baseRate
		planet.Assemblers = append(planet.Assemblers, Assembler{
			AssemblerID:    100*i + 1,
			RecipeID:       item.recipeID,
			ProductionRate: round1(item.rate),
			TheoreticalMax: item.baseRate,
			InputStarved:   efficiency < 0.9 && s.rng.Float64() < 0.7,
			OutputBlocked:  efficiency < 0.9 && s.rng.Float64() < 0.2,
		})
	}

	for i, max := range sim.beltTiers {
		load := 0.5 + s.rng.Float64()*0.5
		planet.Belts = append(planet.Belts, Belt{
			BeltID:        200 + i,
			ItemType:      sim.items[i%len(sim.items)].name,
			Throughput:    round1(max * load),
			MaxThroughput: max,
		})
	}

	return planet
}

// clampWalk nudges a rate randomly while keeping it within 40-105% of base.
func clampWalk(rng *rand.Rand, current, base float64) float64 {
	next := current + (rng.Float64()-0.5)*base*0.1
	if next > base*1.05 {
		next = base * 1.05
	}
	if next < base*0.4 {
		next = base * 0.4
	}
	return next
}

func jitter(rng *rand.Rand, value, volatility float64) float64 {
	return value * (1 + (rng.Float64()-0.5)*2*volatility)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// Shutdown closes every client connection.
func (s *FeedServer) Shutdown() {
	s.cancel()

	s.clientsMux.Lock()
	for conn := range s.clients {
		conn.Close()
	}
	s.clients = make(map[*websocket.Conn]bool)
	s.clientsMux.Unlock()

	time.Sleep(500 * time.Millisecond)
}
