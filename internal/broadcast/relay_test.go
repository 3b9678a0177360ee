package broadcast

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSink struct {
	mu        sync.Mutex
	delivered []Event
	fail      bool
	block     chan struct{}
}

func (s *fakeSink) Deliver(ctx context.Context, e Event) error {
	if s.block != nil {
		<-s.block
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return errors.New("broker unavailable")
	}
	s.delivered = append(s.delivered, e)
	return nil
}

func (s *fakeSink) Delivered() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Event(nil), s.delivered...)
}

func TestRelay_DeliversInOrder(t *testing.T) {
	sink := &fakeSink{}
	relay := NewRelay("test", sink, 8)

	relay.Publish(NewOrderEvent(sampleOrder("a")))
	relay.Publish(OrderDeletedEvent("a"))
	relay.Close()

	got := sink.Delivered()
	require.Len(t, got, 2)
	assert.Equal(t, EventNewOrder, got[0].Type)
	assert.Equal(t, EventOrderDeleted, got[1].Type)
}

func TestRelay_FullQueueDropsWithoutBlocking(t *testing.T) {
	sink := &fakeSink{block: make(chan struct{})}
	relay := NewRelay("test", sink, 1)

	// One event is held by the worker, one fits the queue, the rest are dropped.
	for i := 0; i < 10; i++ {
		relay.Publish(OrderDeletedEvent("x"))
	}
	close(sink.block)
	relay.Close()

	got := sink.Delivered()
	assert.GreaterOrEqual(t, len(got), 1)
	assert.LessOrEqual(t, len(got), 2)
}

func TestRelay_FailuresAreNotFatal(t *testing.T) {
	sink := &fakeSink{fail: true}
	relay := NewRelay("test", sink, 4)

	relay.Publish(OrderDeletedEvent("x"))
	relay.Close()

	assert.Empty(t, sink.Delivered())
	assert.NotPanics(t, func() {
		relay.Publish(OrderDeletedEvent("y"))
		relay.Close()
	})
}

type fakeAMQP struct {
	keys []string
}

func (f *fakeAMQP) PublishOrderEvent(routingKey string, v any) error {
	f.keys = append(f.keys, routingKey)
	return nil
}

type fakeKafka struct {
	keys []string
}

func (f *fakeKafka) Publish(_ context.Context, key string, _ any) error {
	f.keys = append(f.keys, key)
	return nil
}

func TestSinks_RoutingKeys(t *testing.T) {
	amqp := &fakeAMQP{}
	require.NoError(t, RabbitSink{Client: amqp}.Deliver(context.Background(), OrderDeletedEvent("o-1")))
	assert.Equal(t, []string{"order-deleted"}, amqp.keys)

	kafka := &fakeKafka{}
	require.NoError(t, KafkaSink{Producer: kafka}.Deliver(context.Background(), NewOrderEvent(sampleOrder("o-2"))))
	assert.Equal(t, []string{"o-2"}, kafka.keys)
}
