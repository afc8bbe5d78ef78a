// Command statestream is a demo presentation-bridge: it drives an Engine
// on a real-time tick clock and forwards each tick's StatePool, re-encoded
// as JSON, to every connected websocket client. It stands in for the
// "presentation/rendering bridge" spec.md §1 treats as an external
// collaborator — it performs no rendering itself, only serialization and
// delivery of already-computed snapshots (SPEC_FULL.md §D).
package main

import (
	"encoding/json"
	"flag"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/embervale/actioncore/engine"
	"github.com/embervale/actioncore/fx"
	"github.com/embervale/actioncore/internal/engconfig"
	"github.com/embervale/actioncore/internal/logx"
	"github.com/embervale/actioncore/resource"
	"github.com/embervale/actioncore/statepool"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// wireRecord is the JSON-over-the-wire shape of one statepool.Record; the
// bridge's consumers never see the engine's internal Go types directly.
type wireRecord struct {
	FastObjID uint64      `json:"fast_obj_id"`
	ClassID   uint8       `json:"class_id"`
	Lifecycle string      `json:"lifecycle"`
	Payload   interface{} `json:"payload"`
}

// hub fans one engine's ticks out to every currently connected client,
// skipping a payload for a client whose buffer is full rather than
// blocking the tick loop on a slow reader; the client stays connected.
type hub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]chan []byte
}

func newHub() *hub { return &hub{clients: make(map[*websocket.Conn]chan []byte)} }

func (h *hub) add(conn *websocket.Conn) chan []byte {
	ch := make(chan []byte, 8)
	h.mu.Lock()
	h.clients[conn] = ch
	h.mu.Unlock()
	return ch
}

func (h *hub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	if ch, ok := h.clients[conn]; ok {
		close(ch)
		delete(h.clients, conn)
	}
	h.mu.Unlock()
}

func (h *hub) broadcast(payload []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn, ch := range h.clients {
		select {
		case ch <- payload:
		default:
			logx.Warn("statestream: skipping payload for slow client", "remote", conn.RemoteAddr())
		}
	}
}

func (h *hub) serveConn(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logx.Error("statestream: upgrade failed", "err", err)
		return
	}
	ch := h.add(conn)
	defer func() {
		h.remove(conn)
		conn.Close()
	}()
	for payload := range ch {
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			return
		}
	}
}

// encodePool renders a StatePool into one JSON array of wireRecords.
func encodePool(pool *statepool.StatePool) ([]byte, error) {
	records := pool.Records()
	out := make([]wireRecord, len(records))
	for i, rec := range records {
		out[i] = wireRecord{
			FastObjID: uint64(rec.FastObjID),
			ClassID:   uint8(rec.ClassID),
			Lifecycle: rec.Lifecycle.String(),
			Payload:   rec.Payload,
		}
	}
	return json.Marshal(out)
}

func main() {
	configPath := flag.String("config", "", "TOML configuration file")
	flag.Parse()

	cfg := engconfig.Defaults
	if *configPath != "" {
		if err := engconfig.Load(*configPath, &cfg); err != nil {
			logx.Error("statestream: loading config", "err", err)
			return
		}
	}
	level, err := logx.ParseLevel(cfg.Log.Level)
	if err != nil {
		logx.Error("statestream: parsing log level", "err", err)
		return
	}
	logx.Default().SetLevel(level)

	var resources *resource.Cache
	if cfg.Resources.Root != "" {
		if loaded, err := resource.Load(cfg.Resources.Root); err == nil {
			resources = loaded
		}
	}

	// The bridge drives the Engine directly rather than through Agent: it
	// needs each tick's raw StatePool to re-encode and broadcast, not just
	// the bus-dispatched StateRef view Agent exposes.
	eng := engine.New(cfg.Engine.TickDuration())
	if resources != nil {
		eng.SetResources(resources)
	}
	eng.Command(engine.CmdNewStage{})
	eng.Command(engine.CmdNewCharacter{
		Position:  fx.V3(0, fx.FromRatio(1, 10), 0),
		Direction: fx.V2(0, fx.One),
		Speed:     fx.FromRatio(1, 2),
		IsMain:    true,
	})

	h := newHub()
	mux := http.NewServeMux()
	mux.HandleFunc("/state", h.serveConn)
	server := &http.Server{Addr: cfg.Stream.ListenAddr, Handler: mux}

	go func() {
		logx.Info("statestream: listening", "addr", cfg.Stream.ListenAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logx.Error("statestream: http server exited", "err", err)
		}
	}()

	tickInterval := time.Duration(float64(time.Second) / cfg.Engine.TickRate)
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	for range ticker.C {
		pool, err := eng.Tick()
		if err != nil {
			logx.Error("statestream: tick failed", "err", err)
			continue
		}
		payload, err := encodePool(pool)
		if err != nil {
			logx.Error("statestream: encoding pool", "err", err)
			continue
		}
		h.broadcast(payload)
	}
}
