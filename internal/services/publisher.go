package services

// EventPublisher is the outbound side of the message broker. Satisfied
// by *rabbitmq.Client; tests substitute a mock. A nil publisher is
// allowed and simply skips event publication.
type EventPublisher interface {
	Publish(exchange, routingKey string, body []byte) error
}
