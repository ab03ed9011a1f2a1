package application

import "time"

type MQTTStatus struct {
	MessageCount      uint64
	LastTimePublished time.Time
	Connected         bool
}

// MQTTMessage is the part of a broker message the application reads.
type MQTTMessage interface {
	Topic() string
	Payload() []byte
}

type MQTTClient interface {
	Publish(topic string, qos byte, retained bool, msg any) error
	Subscribe(topic string, qos byte, handler func(msg MQTTMessage)) error
	Unsubscribe(topic string) error

	Connect() error
	Disconnect()
	IsConnected() bool
	Status() MQTTStatus
}
