package memory

import (
	"context"
	"sync"
	"time"

	appoutbox "driveshare/internal/app/outbox"
	infraoutbox "driveshare/internal/infra/outbox"
)

type outboxEntry struct {
	record      appoutbox.EventRecord
	state       string
	attempts    int
	nextAttempt time.Time
	lastError   string
}

// Outbox keeps pending events in memory and feeds the publish worker in
// dev mode with the same claim protocol the mongo store speaks.
type Outbox struct {
	mu    sync.Mutex
	queue []*outboxEntry
	index map[string]*outboxEntry
}

func NewOutbox() *Outbox {
	return &Outbox{index: make(map[string]*outboxEntry)}
}

func (o *Outbox) Add(ctx context.Context, record appoutbox.EventRecord) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	entry := &outboxEntry{record: record, state: "NEW", nextAttempt: time.Now().UTC()}
	o.queue = append(o.queue, entry)
	o.index[record.ID] = entry
	return nil
}

func (o *Outbox) Flush(ctx context.Context) error {
	return nil
}

func (o *Outbox) Claim(ctx context.Context, workerID string) (*infraoutbox.EventDocument, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	now := time.Now().UTC()
	for _, entry := range o.queue {
		if entry.state != "NEW" && entry.state != "FAILED" {
			continue
		}
		if entry.nextAttempt.After(now) {
			continue
		}
		entry.state = "CLAIMED"
		return &infraoutbox.EventDocument{
			ID:         entry.record.ID,
			Name:       entry.record.Name,
			Payload:    entry.record.Payload,
			OccurredAt: entry.record.OccurredAt,
			Aggregate:  entry.record.Aggregate,
			Headers:    entry.record.Headers,
			Attempts:   entry.attempts,
		}, nil
	}
	return nil, nil
}

func (o *Outbox) MarkSent(ctx context.Context, id string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if entry, ok := o.index[id]; ok {
		entry.state = "SENT"
	}
	return nil
}

func (o *Outbox) MarkFailed(ctx context.Context, id string, next time.Time, errMsg string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if entry, ok := o.index[id]; ok {
		entry.state = "FAILED"
		entry.attempts++
		entry.nextAttempt = next
		entry.lastError = errMsg
	}
	return nil
}

var (
	_ appoutbox.Outbox  = (*Outbox)(nil)
	_ infraoutbox.Store = (*Outbox)(nil)
)
