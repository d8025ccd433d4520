package events

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/nanovote/votewatch/internal/metrics"
	"github.com/nanovote/votewatch/internal/xlog"
)

// ReconnectBackoff is the fixed, uncapped reconnect retry delay.
const ReconnectBackoff = 1 * time.Second

// SampleEvery controls the sampled informational log line: one line per
// this many received frames, never per-message.
const SampleEvery = 1000

// Listener maintains the durable upstream subscription.
type Listener struct {
	url    string
	queue  chan Event
	log    xlog.Logger
	dialer *websocket.Dialer

	frames atomic.Uint64
	drops  atomic.Uint64
}

// NewListener builds a Listener publishing decoded events onto a bounded
// channel of the given capacity.
func NewListener(url string, queueSize int) *Listener {
	return &Listener{
		url:    url,
		queue:  make(chan Event, queueSize),
		log:    xlog.New("component", "listener"),
		dialer: websocket.DefaultDialer,
	}
}

// Events returns the channel the consumer drains.
func (l *Listener) Events() <-chan Event { return l.queue }

// DroppedFrames returns the number of events dropped under backpressure.
func (l *Listener) DroppedFrames() uint64 { return l.drops.Load() }

// Run connects, subscribes, and receives until ctx is cancelled,
// reconnecting with a fixed backoff on any transport or subscription
// error. No events are buffered across reconnects.
func (l *Listener) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		if err := l.runOnce(ctx); err != nil {
			l.log.Warn("upstream connection lost, reconnecting", "error", err, "backoff", ReconnectBackoff)
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(ReconnectBackoff):
		}
	}
}

func (l *Listener) runOnce(ctx context.Context) error {
	conn, _, err := l.dialer.DialContext(ctx, l.url, nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	for _, topic := range AllTopics {
		if err := conn.WriteJSON(subscribeMessage(topic)); err != nil {
			return err
		}
	}

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		l.sample()
		ev, err := DecodeFrame(raw)
		if err != nil {
			// A malformed frame is dropped, counted, and the listener continues.
			metrics.MalformedEvents.Inc()
			l.log.Debug("dropping malformed event", "error", err)
			continue
		}
		l.enqueue(ev)
	}
}

// enqueue implements a freshness-over-completeness backpressure policy:
// when the bounded queue is full, the oldest event is dropped in favor of
// the newest.
func (l *Listener) enqueue(ev Event) {
	select {
	case l.queue <- ev:
		return
	default:
	}
	select {
	case <-l.queue:
		l.drops.Add(1)
		metrics.UpstreamDrops.Inc()
	default:
	}
	select {
	case l.queue <- ev:
	default:
		// Another producer raced us to the freed slot; drop this one too
		// rather than block, preserving the freshness-over-completeness rule.
		l.drops.Add(1)
		metrics.UpstreamDrops.Inc()
	}
}

func (l *Listener) sample() {
	metrics.UpstreamFrames.Inc()
	n := l.frames.Add(1)
	if n%SampleEvery == 0 {
		l.log.Info("processed upstream frames", "count", n, "dropped", l.drops.Load())
	}
}
