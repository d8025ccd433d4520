// Package events implements the upstream listener: a durable,
// auto-reconnecting subscription to the node's event stream, decoding
// frames into a tagged Event and enqueueing them onto a bounded,
// drop-oldest channel for the election merger to consume.
package events

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Topic names the four upstream subscriptions.
type Topic string

const (
	TopicVote      Topic = "vote"
	TopicStarted   Topic = "started_election"
	TopicStopped   Topic = "stopped_election"
	TopicConfirmed Topic = "confirmation"
)

// AllTopics is the subscription set sent after connect.
var AllTopics = []Topic{TopicVote, TopicStarted, TopicStopped, TopicConfirmed}

// VotePayload is the decoded body of a "vote" frame.
type VotePayload struct {
	Account   string   `json:"account"`
	Timestamp string   `json:"timestamp"`
	Blocks    []string `json:"blocks"`
}

// HashPayload is the decoded body of "started_election"/"stopped_election".
type HashPayload struct {
	Hash string `json:"hash"`
}

// ConfirmationPayload is the decoded body of a "confirmation" frame,
// additionally carrying the amount.
type ConfirmationPayload struct {
	Hash   string `json:"hash"`
	Amount string `json:"amount"`
}

// Event is the tagged, decoded frame enqueued by the listener and consumed
// by the merge consumer.
type Event struct {
	Topic  Topic
	TimeMs int64

	Vote         *VotePayload
	Hash         *HashPayload
	Confirmation *ConfirmationPayload
}

// rawFrame mirrors the wire shape {topic, time, message}. time may arrive
// as either a JSON string or a JSON number.
type rawFrame struct {
	Topic   string          `json:"topic"`
	Time    json.RawMessage `json:"time"`
	Message json.RawMessage `json:"message"`
}

// flexInt64 decodes a JSON string-or-number into an int64.
func flexInt64(raw json.RawMessage) (int64, error) {
	var n int64
	if err := json.Unmarshal(raw, &n); err == nil {
		return n, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, fmt.Errorf("events: time field is neither number nor string: %w", err)
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("events: unparseable time %q: %w", s, err)
	}
	return n, nil
}

// DecodeFrame parses one raw upstream frame into an Event. A malformed
// frame or unrecognized topic is reported as an error; the caller drops
// the event and continues.
func DecodeFrame(raw []byte) (Event, error) {
	var f rawFrame
	if err := json.Unmarshal(raw, &f); err != nil {
		return Event{}, fmt.Errorf("events: malformed frame: %w", err)
	}
	t, err := flexInt64(f.Time)
	if err != nil {
		return Event{}, err
	}
	ev := Event{Topic: Topic(f.Topic), TimeMs: t}
	switch ev.Topic {
	case TopicVote:
		var p VotePayload
		if err := json.Unmarshal(f.Message, &p); err != nil {
			return Event{}, fmt.Errorf("events: malformed vote payload: %w", err)
		}
		ev.Vote = &p
	case TopicStarted, TopicStopped:
		var p HashPayload
		if err := json.Unmarshal(f.Message, &p); err != nil {
			return Event{}, fmt.Errorf("events: malformed hash payload: %w", err)
		}
		ev.Hash = &p
	case TopicConfirmed:
		var p ConfirmationPayload
		if err := json.Unmarshal(f.Message, &p); err != nil {
			return Event{}, fmt.Errorf("events: malformed confirmation payload: %w", err)
		}
		ev.Confirmation = &p
	default:
		return Event{}, fmt.Errorf("events: unknown topic %q", f.Topic)
	}
	return ev, nil
}

// subscribeRequest is sent once per topic after connecting.
type subscribeRequest struct {
	Action  string            `json:"action"`
	Topic   string            `json:"topic"`
	Ack     bool              `json:"ack,omitempty"`
	Options *subscribeOptions `json:"options,omitempty"`
}

type subscribeOptions struct {
	IncludeBlock *bool `json:"include_block,omitempty"`
}

func subscribeMessage(t Topic) subscribeRequest {
	req := subscribeRequest{Action: "subscribe", Topic: string(t)}
	if t == TopicConfirmed {
		f := false
		req.Options = &subscribeOptions{IncludeBlock: &f}
	}
	return req
}
