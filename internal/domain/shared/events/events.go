package events

import "time"

// DomainEvent is a fact recorded by an aggregate and published after commit.
type DomainEvent interface {
	EventName() string
	AggregateID() string
	OccurredAt() time.Time
}

// Recorder collects pending events inside an aggregate until the
// surrounding use case drains them into the outbox.
type Recorder struct {
	pending []DomainEvent
}

func (r *Recorder) Record(event DomainEvent) {
	if event == nil {
		return
	}
	r.pending = append(r.pending, event)
}

func (r *Recorder) PendingEvents() []DomainEvent {
	out := make([]DomainEvent, len(r.pending))
	copy(out, r.pending)
	return out
}

func (r *Recorder) ClearEvents() {
	r.pending = nil
}

// Base carries the common event fields.
type Base struct {
	Name      string
	Aggregate string
	Time      time.Time
}

func (e Base) EventName() string   { return e.Name }
func (e Base) AggregateID() string { return e.Aggregate }
func (e Base) OccurredAt() time.Time {
	return e.Time
}
