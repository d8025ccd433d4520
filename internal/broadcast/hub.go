// Package broadcast implements the broadcast fanout: a duplex
// subscription endpoint that tracks connected clients and pushes a new
// overview to each only when its fingerprint has changed since that
// client's last send.
package broadcast

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/nanovote/votewatch/internal/metrics"
	"github.com/nanovote/votewatch/internal/overview"
	"github.com/nanovote/votewatch/internal/xlog"
)

// SendDeadline is the per-client send deadline.
const SendDeadline = 2 * time.Second

// OverviewSource is implemented by the overview aggregator.
type OverviewSource interface {
	Current() *overview.Overview
}

// wireOverview is the JSON body sent to clients: {"elections": {...}}.
type wireOverview struct {
	Elections elections `json:"elections"`
}

type elections struct {
	Confirmed   []overview.Entry `json:"confirmed"`
	Unconfirmed []overview.Entry `json:"unconfirmed"`
}

// Hub tracks connected clients and fans out overview updates. The client
// set is guarded by a mutex held only for insert/remove; the fanout is
// the set's only writer.
type Hub struct {
	mu      sync.Mutex
	clients map[string]*client

	source atomic.Value // overviewSourceBox
	log    xlog.Logger
}

// overviewSourceBox lets a nil-able interface value live inside
// atomic.Value, which rejects storing different concrete types (including
// nil) directly across calls.
type overviewSourceBox struct{ source OverviewSource }

// NewHub builds a Hub. source may be nil and supplied later via SetSource
// — the aggregator and the hub are constructed in a cycle (the aggregator
// needs the hub as its Notifier, the hub needs the aggregator as its
// OverviewSource), so wiring happens in two steps.
func NewHub(source OverviewSource) *Hub {
	h := &Hub{
		clients: make(map[string]*client),
		log:     xlog.New("component", "broadcast"),
	}
	h.source.Store(overviewSourceBox{source: source})
	return h
}

// SetSource installs the overview source, completing the two-step wiring
// described above.
func (h *Hub) SetSource(source OverviewSource) {
	h.source.Store(overviewSourceBox{source: source})
}

func (h *Hub) getSource() OverviewSource {
	return h.source.Load().(overviewSourceBox).source
}

// Register accepts a new client connection: it is sent the current
// overview immediately (last-sent fingerprint starts null) and then
// tracked for future tick notifications.
func (h *Hub) Register(conn *websocket.Conn) {
	c := &client{
		id:   uuid.NewString(),
		conn: conn,
		tick: make(chan struct{}, 1),
		hub:  h,
		log:  h.log.New("client", conn.RemoteAddr().String()),
	}

	h.mu.Lock()
	h.clients[c.id] = c
	h.mu.Unlock()
	metrics.ConnectedClients.Inc()

	go c.readLoop()
	go c.writeLoop()

	// Immediate send of the current overview on accept.
	c.signal()
}

// Notify is called once per aggregator tick: every registered client is
// asked to compare the new fingerprint against its own last-sent value.
// Sending is non-blocking from the hub's perspective — a slow client only
// blocks its own goroutine.
func (h *Hub) Notify() {
	h.mu.Lock()
	snapshot := make([]*client, 0, len(h.clients))
	for _, c := range h.clients {
		snapshot = append(snapshot, c)
	}
	h.mu.Unlock()

	for _, c := range snapshot {
		c.signal()
	}
}

// ClientCount reports the number of currently registered clients.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *Hub) evict(id string) {
	h.mu.Lock()
	c, ok := h.clients[id]
	if ok {
		delete(h.clients, id)
	}
	h.mu.Unlock()
	if !ok {
		return
	}
	c.conn.Close()
	metrics.ConnectedClients.Dec()
	metrics.ClientsEvicted.Inc()
}
