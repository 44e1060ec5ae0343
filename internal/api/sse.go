package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/hoppxi/sysset/pkg/events"
)

var allTopics = []events.Topic{
	events.TopicVolume,
	events.TopicWifi,
	events.TopicBluetooth,
	events.TopicAirplane,
	events.TopicLocation,
	events.TopicBrightness,
	events.TopicForeground,
}

// sseEvents streams bus events. Clients first get the capabilities as a
// hello event. ?topic= may be repeated to narrow the stream.
func (h *Handlers) sseEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	topics := allTopics
	if q := r.URL.Query()["topic"]; len(q) > 0 {
		topics = make([]events.Topic, 0, len(q))
		for _, t := range q {
			topics = append(topics, events.Topic(t))
		}
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // Disable nginx buffering

	ch := make(chan events.Event, 32)
	bus := h.setting.Bus()
	for _, t := range topics {
		sub := bus.Subscribe(t, func(e events.Event) {
			select {
			case ch <- e:
			default:
				h.log.Debug("dropping event for slow SSE client", "topic", e.Topic)
			}
		})
		defer sub.Remove()
	}

	sendSSE(w, flusher, "hello", h.setting.Capabilities())

	for {
		select {
		case e := <-ch:
			sendSSE(w, flusher, string(e.Topic), e)
		case <-r.Context().Done():
			return
		}
	}
}

func sendSSE(w http.ResponseWriter, flusher http.Flusher, event string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	_, _ = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data)
	flusher.Flush()
}
