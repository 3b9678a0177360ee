package broadcast

import "context"

// AMQPPublisher is the part of the RabbitMQ client a RabbitSink needs.
type AMQPPublisher interface {
	PublishOrderEvent(routingKey string, v any) error
}

// RabbitSink publishes events to a RabbitMQ exchange, routed by event type.
type RabbitSink struct {
	Client AMQPPublisher
}

// Deliver implements Sink.
func (s RabbitSink) Deliver(_ context.Context, e Event) error {
	return s.Client.PublishOrderEvent(string(e.Type), e)
}

// KafkaPublisher is the part of the Kafka producer a KafkaSink needs.
type KafkaPublisher interface {
	Publish(ctx context.Context, key string, event any) error
}

// KafkaSink writes events to a Kafka topic keyed by order id, which keeps
// every event of one order on the same partition.
type KafkaSink struct {
	Producer KafkaPublisher
}

// Deliver implements Sink.
func (s KafkaSink) Deliver(ctx context.Context, e Event) error {
	return s.Producer.Publish(ctx, e.OrderID, e)
}
