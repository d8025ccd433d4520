package broadcast

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/nanovote/votewatch/internal/xlog"
)

// client is one connected browser client. Each client is served by its own
// goroutine pair (read/write) so a slow client cannot block others.
type client struct {
	id       string
	conn     *websocket.Conn
	hub      *Hub
	log      xlog.Logger
	lastSent string

	tick     chan struct{}
	stopOnce sync.Once
}

// signal requests that this client re-check the current overview against
// its last-sent fingerprint. It never blocks: a pending signal already
// covers any newer tick.
func (c *client) signal() {
	select {
	case c.tick <- struct{}{}:
	default:
	}
}

func (c *client) writeLoop() {
	for range c.tick {
		c.maybeSend()
	}
}

func (c *client) maybeSend() {
	src := c.hub.getSource()
	if src == nil {
		return
	}
	ov := src.Current()
	if ov == nil || ov.Fingerprint == c.lastSent {
		return
	}

	body := wireOverview{Elections: elections{Confirmed: ov.Confirmed, Unconfirmed: ov.Unconfirmed}}

	c.conn.SetWriteDeadline(time.Now().Add(SendDeadline))
	if err := c.conn.WriteJSON(body); err != nil {
		c.log.Debug("evicting client after send error", "error", err)
		c.evictAndStop()
		return
	}
	c.lastSent = ov.Fingerprint
}

// readLoop discards incoming control/data frames (clients never send a
// payload on this endpoint) and detects disconnects, which evict the
// client the same as a send error.
func (c *client) readLoop() {
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			c.evictAndStop()
			return
		}
	}
}

func (c *client) evictAndStop() {
	c.stopOnce.Do(func() {
		c.hub.evict(c.id)
		close(c.tick)
	})
}
