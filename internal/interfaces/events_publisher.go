package interfaces

// EventPublisher delivers dashboard events to a downstream sink.
type EventPublisher interface {
	Publish(topic string, event any) error
}
