package stream

import (
	"encoding/json"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

type message struct {
	topic   string
	payload []byte
}

// fakeBroker records publishes and lets tests deliver messages.
type fakeBroker struct {
	mu        sync.Mutex
	published []message
	handlers  map[string]func(string, []byte)
	err       error
}

func newFakeBroker() *fakeBroker {
	b := new(fakeBroker)
	b.handlers = make(map[string]func(string, []byte))
	return b
}

func (b *fakeBroker) Publish(topic string, payload []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.err != nil {
		return b.err
	}
	b.published = append(b.published, message{topic, payload})
	return nil
}

func (b *fakeBroker) Subscribe(topic string, handler func(string, []byte)) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[topic] = handler
	return nil
}

func (b *fakeBroker) deliver(topic string, payload []byte) {
	b.mu.Lock()
	h := b.handlers[topic]
	b.mu.Unlock()
	h(topic, payload)
}

// under returns the messages published below prefix.
func (b *fakeBroker) under(prefix string) []message {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []message
	for _, m := range b.published {
		if strings.HasPrefix(m.topic, prefix) {
			out = append(out, m)
		}
	}
	return out
}

func decode[T any](t *testing.T, m message) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(m.payload, &v))
	return v
}

var testTopics = Topics{
	Stream:  "tree/stream",
	Program: "tree/program",
	Control: "tree/control",
	Status:  "tree/status",
}
