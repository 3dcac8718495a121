package stream

import (
	"fmt"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// Broker publishes and subscribes to device topics.
type Broker interface {
	Publish(topic string, payload []byte) error
	Subscribe(topic string, handler func(topic string, payload []byte)) error
}

// MQTT is a Broker over a paho client.
type MQTT struct {
	client mqtt.Client
	qos    byte
}

// NewMQTT wraps a connected paho client.
func NewMQTT(client mqtt.Client, qos byte) *MQTT {
	m := new(MQTT)
	m.client = client
	m.qos = qos
	return m
}

func (m *MQTT) Publish(topic string, payload []byte) error {
	token := m.client.Publish(topic, m.qos, false, payload)
	if token.Wait() && token.Error() != nil {
		return fmt.Errorf("stream: publishing to %s: %w", topic, token.Error())
	}
	return nil
}

func (m *MQTT) Subscribe(topic string, handler func(topic string, payload []byte)) error {
	token := m.client.Subscribe(topic, m.qos, func(_ mqtt.Client, msg mqtt.Message) {
		handler(msg.Topic(), msg.Payload())
	})
	if token.Wait() && token.Error() != nil {
		return fmt.Errorf("stream: subscribing to %s: %w", topic, token.Error())
	}
	return nil
}
