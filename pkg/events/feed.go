// Package events provides the in-process event feed relayers poll, the
// off-chain analogue of chain event logs.
package events

import (
	"context"
	"sync"
	"time"

	"github.com/vialabs/message-gateway/pkg/common"
)

// DefaultCapacity bounds the feed's ring buffer.
const DefaultCapacity = 4096

// Entry is one emitted event with its feed sequence number.
type Entry struct {
	Sequence  uint64       `json:"sequence"`
	Type      string       `json:"type"`
	EmittedAt time.Time    `json:"emitted_at"`
	Payload   common.Event `json:"payload"`
}

// Feed is a bounded, ordered event buffer. Writes never block; once the
// capacity is reached the oldest entries fall off.
type Feed struct {
	mu           sync.RWMutex
	entries      []Entry
	nextSequence uint64
	capacity     int
	timeProvider common.TimeProvider
}

var _ common.Sink = (*Feed)(nil)

func NewFeed(capacity int, timeProvider common.TimeProvider) *Feed {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Feed{
		entries:      make([]Entry, 0, capacity),
		nextSequence: 1,
		capacity:     capacity,
		timeProvider: timeProvider,
	}
}

func eventType(event common.Event) string {
	switch event.(type) {
	case common.SendRequested:
		return "SendRequested"
	case common.TicketAdmitted:
		return "TicketAdmitted"
	case common.MessageFinalized:
		return "MessageFinalized"
	case common.SystemStatusChanged:
		return "SystemStatusChanged"
	default:
		return "Unknown"
	}
}

// Emit appends the event to the feed.
func (f *Feed) Emit(_ context.Context, event common.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	entry := Entry{
		Sequence:  f.nextSequence,
		Type:      eventType(event),
		EmittedAt: f.timeProvider.Now(),
		Payload:   event,
	}
	f.nextSequence++

	f.entries = append(f.entries, entry)
	if len(f.entries) > f.capacity {
		f.entries = f.entries[len(f.entries)-f.capacity:]
	}
	return nil
}

// List returns every retained entry with a sequence number >= since, in
// emission order.
func (f *Feed) List(since uint64) []Entry {
	f.mu.RLock()
	defer f.mu.RUnlock()

	out := make([]Entry, 0, len(f.entries))
	for _, entry := range f.entries {
		if entry.Sequence >= since {
			out = append(out, entry)
		}
	}
	return out
}
