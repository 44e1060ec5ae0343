// Package events provides the topic-keyed publish-subscribe stream that
// settings providers publish system changes on.
package events

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Topic names one category of system change.
type Topic string

const (
	TopicVolume     Topic = "volume-changed"
	TopicWifi       Topic = "wifi-changed"
	TopicBluetooth  Topic = "bluetooth-changed"
	TopicAirplane   Topic = "airplane-changed"
	TopicLocation   Topic = "location-changed"
	TopicBrightness Topic = "brightness-changed"
	TopicForeground Topic = "enter-foreground"
)

// Event is a single published change.
type Event struct {
	Topic Topic     `json:"topic"`
	Value any       `json:"value,omitempty"`
	Time  time.Time `json:"time"`
}

// Handler receives events for a topic.
type Handler func(Event)

type subscriber struct {
	id      string
	handler Handler
	once    bool
}

// Bus is a publish-subscribe stream keyed by topic.
// Handlers run on the publishing goroutine, outside the bus lock, so a
// handler may remove its own or any other subscription.
type Bus struct {
	mu   sync.Mutex
	subs map[Topic][]*subscriber
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{
		subs: make(map[Topic][]*subscriber),
	}
}

// Subscribe registers h for every event published on topic.
// Call Remove on the returned subscription to release it.
func (b *Bus) Subscribe(topic Topic, h Handler) *Subscription {
	return b.add(topic, h, false)
}

// Once registers h for the next event on topic only. The subscription is
// dropped before h runs, so h sees at most one event even when publishers race.
func (b *Bus) Once(topic Topic, h Handler) *Subscription {
	return b.add(topic, h, true)
}

func (b *Bus) add(topic Topic, h Handler, once bool) *Subscription {
	s := &subscriber{id: uuid.New().String(), handler: h, once: once}

	b.mu.Lock()
	b.subs[topic] = append(b.subs[topic], s)
	b.mu.Unlock()

	return &Subscription{bus: b, topic: topic, id: s.id}
}

// Publish delivers value to every subscriber of topic.
func (b *Bus) Publish(topic Topic, value any) {
	ev := Event{Topic: topic, Value: value, Time: time.Now()}

	b.mu.Lock()
	subs := b.subs[topic]
	targets := make([]Handler, 0, len(subs))
	kept := subs[:0:0]
	for _, s := range subs {
		targets = append(targets, s.handler)
		if !s.once {
			kept = append(kept, s)
		}
	}
	if len(kept) == 0 {
		delete(b.subs, topic)
	} else {
		b.subs[topic] = kept
	}
	b.mu.Unlock()

	for _, h := range targets {
		h(ev)
	}
}

// SubscriberCount returns the number of live subscriptions on topic.
func (b *Bus) SubscriberCount(topic Topic) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs[topic])
}

func (b *Bus) remove(topic Topic, id string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.subs[topic]
	for i, s := range subs {
		if s.id == id {
			b.subs[topic] = append(subs[:i:i], subs[i+1:]...)
			break
		}
	}
	if len(b.subs[topic]) == 0 {
		delete(b.subs, topic)
	}
}

// Subscription is the handle returned by Subscribe and Once.
type Subscription struct {
	bus   *Bus
	topic Topic
	id    string
}

// Topic returns the topic the subscription listens on.
func (s *Subscription) Topic() Topic {
	if s == nil {
		return ""
	}
	return s.topic
}

// Remove releases the subscription. It is safe to call more than once and
// on a nil subscription.
func (s *Subscription) Remove() {
	if s == nil || s.bus == nil {
		return
	}
	s.bus.remove(s.topic, s.id)
}
