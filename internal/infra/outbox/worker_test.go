package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	docs   []*EventDocument
	sent   []string
	failed []string
}

func (s *fakeStore) Claim(ctx context.Context, workerID string) (*EventDocument, error) {
	if len(s.docs) == 0 {
		return nil, nil
	}
	doc := s.docs[0]
	s.docs = s.docs[1:]
	return doc, nil
}

func (s *fakeStore) MarkSent(ctx context.Context, id string) error {
	s.sent = append(s.sent, id)
	return nil
}

func (s *fakeStore) MarkFailed(ctx context.Context, id string, next time.Time, errMsg string) error {
	s.failed = append(s.failed, id)
	return nil
}

type fakeProducer struct {
	err       error
	topic     string
	key       string
	payload   []byte
	headers   map[string]string
	published int
}

func (p *fakeProducer) Publish(ctx context.Context, topic, key string, payload []byte, headers map[string]string) error {
	if p.err != nil {
		return p.err
	}
	p.published++
	p.topic = topic
	p.key = key
	p.payload = payload
	p.headers = headers
	return nil
}

func confirmedDoc() *EventDocument {
	return &EventDocument{
		ID:         "evt-1",
		Name:       "booking.confirmed",
		Payload:    []byte(`{"car_id":"car-1","total":{"amount":3000,"currency":"INR"}}`),
		OccurredAt: time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC),
		Aggregate:  "bk-1",
	}
}

func TestWorkerPublishesCloudEvent(t *testing.T) {
	store := &fakeStore{docs: []*EventDocument{confirmedDoc()}}
	producer := &fakeProducer{}
	w := &Worker{Store: store, Producer: producer, ID: "w-1"}

	require.NoError(t, w.processOnce(context.Background()))
	assert.Equal(t, []string{"evt-1"}, store.sent)
	assert.Empty(t, store.failed)

	assert.Equal(t, "booking.events.v1", producer.topic)
	assert.Equal(t, "bk-1", producer.key, "key is the aggregate so partitions keep per-booking order")
	assert.Equal(t, "application/cloudevents+json", producer.headers["content-type"])

	var evt map[string]any
	require.NoError(t, json.Unmarshal(producer.payload, &evt))
	assert.Equal(t, "1.0", evt["specversion"])
	assert.Equal(t, "booking.confirmed.v1", evt["type"])
	assert.Equal(t, "app://driveshare", evt["source"])
	data := evt["data"].(map[string]any)
	assert.Equal(t, "car-1", data["car_id"])
}

func TestWorkerMarksFailedOnPublishError(t *testing.T) {
	store := &fakeStore{docs: []*EventDocument{confirmedDoc()}}
	producer := &fakeProducer{err: errors.New("broker down")}
	w := &Worker{Store: store, Producer: producer, ID: "w-1"}

	require.NoError(t, w.processOnce(context.Background()))
	assert.Empty(t, store.sent)
	assert.Equal(t, []string{"evt-1"}, store.failed)
}

func TestWorkerMarksFailedOnBadPayload(t *testing.T) {
	doc := confirmedDoc()
	doc.Payload = []byte("not json")
	store := &fakeStore{docs: []*EventDocument{doc}}
	producer := &fakeProducer{}
	w := &Worker{Store: store, Producer: producer, ID: "w-1"}

	require.NoError(t, w.processOnce(context.Background()))
	assert.Zero(t, producer.published)
	assert.Equal(t, []string{"evt-1"}, store.failed)
}

func TestWorkerEmptyQueueIsANoop(t *testing.T) {
	w := &Worker{Store: &fakeStore{}, Producer: &fakeProducer{}, ID: "w-1"}
	require.NoError(t, w.processOnce(context.Background()))
}

func TestWorkerRequiresDependencies(t *testing.T) {
	w := &Worker{}
	assert.ErrorIs(t, w.Run(context.Background()), ErrWorkerNotConfigured)
}

func TestTopicFor(t *testing.T) {
	w := &Worker{}
	assert.Equal(t, "booking.events.v1", w.topicFor("booking.confirmed"))
	assert.Equal(t, "car.events.v1", w.topicFor("car.listed"))
	assert.Equal(t, "ping.events.v1", w.topicFor("ping"))

	prefixed := &Worker{TopicPrefix: "staging."}
	assert.Equal(t, "staging.booking.events.v1", prefixed.topicFor("booking.confirmed"))
}

func TestNextRetryWalksBackoff(t *testing.T) {
	w := &Worker{Backoff: []time.Duration{time.Second, 5 * time.Second, 30 * time.Second}}

	now := time.Now()
	assert.WithinDuration(t, now.Add(time.Second), w.nextRetry(0), 200*time.Millisecond)
	assert.WithinDuration(t, now.Add(5*time.Second), w.nextRetry(1), 200*time.Millisecond)
	// Attempts beyond the table stay at the last step.
	assert.WithinDuration(t, now.Add(30*time.Second), w.nextRetry(7), 200*time.Millisecond)
}
