package election

import (
	"context"
	"strconv"

	"github.com/nanovote/votewatch/internal/events"
	"github.com/nanovote/votewatch/internal/xlog"
)

// Consumer drains decoded upstream events into a WorkingDelta, completing
// the merger's write side. The overview aggregator separately owns
// draining the WorkingDelta into the main store each tick.
type Consumer struct {
	delta *WorkingDelta
	log   xlog.Logger
}

// NewConsumer builds a Consumer writing into delta.
func NewConsumer(delta *WorkingDelta) *Consumer {
	return &Consumer{delta: delta, log: xlog.New("component", "merger")}
}

// Run applies every event received on ch until ctx is cancelled or ch is
// closed.
func (c *Consumer) Run(ctx context.Context, ch <-chan events.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-ch:
			if !ok {
				return
			}
			c.apply(ev)
		}
	}
}

func (c *Consumer) apply(ev events.Event) {
	switch ev.Topic {
	case events.TopicVote:
		if ev.Vote == nil {
			return
		}
		rawTS, err := strconv.ParseUint(ev.Vote.Timestamp, 10, 64)
		if err != nil {
			c.log.Debug("dropping vote with unparseable timestamp", "timestamp", ev.Vote.Timestamp)
			return
		}
		kind := KindFromTimestamp(rawTS)
		c.delta.ApplyVote(ev.Vote.Blocks, ev.TimeMs, ev.Vote.Account, kind)
	case events.TopicStarted:
		if ev.Hash == nil {
			return
		}
		c.delta.ApplyStarted(ev.Hash.Hash, ev.TimeMs)
	case events.TopicStopped:
		if ev.Hash == nil {
			return
		}
		c.delta.ApplyStopped(ev.Hash.Hash, ev.TimeMs)
	case events.TopicConfirmed:
		if ev.Confirmation == nil {
			return
		}
		c.delta.ApplyConfirmation(ev.Confirmation.Hash, ev.TimeMs, ev.Confirmation.Amount)
	}
}
