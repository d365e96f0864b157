package liveevents

import (
	"errors"
	"strings"
	"sync"
)

// Event kinds published by the back office.
const (
	KindVisitCreated  = "visit_created"
	KindVisitClosed   = "visit_closed"
	KindVisionCreated = "vision_created"
	KindMissedEntry   = "missed_entry"
	KindCollection    = "collection"
)

// BroadcastKey subscribes to activity across every centre.
const BroadcastKey = "*"

const (
	DefaultBufferSize       = 50
	DefaultSubscriberBuffer = 16
)

type LiveEvent struct {
	Kind       string `json:"kind"`
	CentreID   string `json:"centre_id"`
	VisitID    string `json:"visit_id,omitempty"`
	Customer   string `json:"customer,omitempty"`
	Amount     int64  `json:"amount,omitempty"`
	MissedType string `json:"missed_type,omitempty"`
	OccurredAt string `json:"occurred_at"`
}

type Hub struct {
	mu               sync.RWMutex
	streams          map[string]*stream
	bufferSize       int
	subscriberBuffer int
}

type stream struct {
	mu     sync.Mutex
	buffer []LiveEvent
	subs   map[uint64]chan LiveEvent
	nextID uint64
}

type Subscription struct {
	hub  *Hub
	key  string
	id   uint64
	ch   chan LiveEvent
	once sync.Once
}

func NewHub() *Hub {
	return &Hub{
		streams:          make(map[string]*stream),
		bufferSize:       DefaultBufferSize,
		subscriberBuffer: DefaultSubscriberBuffer,
	}
}

// Publish delivers an event to the centre's stream and the broadcast
// stream. Streams with no subscribers are skipped; slow subscribers drop
// rather than block the publisher.
func (h *Hub) Publish(event LiveEvent) {
	if h == nil {
		return
	}
	key := strings.TrimSpace(event.CentreID)
	if key != "" {
		h.publishTo(key, event)
	}
	h.publishTo(BroadcastKey, event)
}

func (h *Hub) publishTo(key string, event LiveEvent) {
	h.mu.RLock()
	stream := h.streams[key]
	h.mu.RUnlock()
	if stream == nil {
		return
	}

	stream.mu.Lock()
	stream.buffer = append(stream.buffer, event)
	if len(stream.buffer) > h.bufferSize {
		stream.buffer = stream.buffer[len(stream.buffer)-h.bufferSize:]
	}
	subs := make([]chan LiveEvent, 0, len(stream.subs))
	for _, ch := range stream.subs {
		subs = append(subs, ch)
	}
	stream.mu.Unlock()

	for _, ch := range subs {
		select {
		case ch <- event:
		default:
		}
	}
}

// Subscribe opens a stream for the given centre key (or BroadcastKey) and
// returns the retained backlog alongside the subscription.
func (h *Hub) Subscribe(key string) (*Subscription, []LiveEvent, error) {
	if h == nil {
		return nil, nil, errors.New("hub_unavailable")
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, nil, errors.New("invalid_stream_key")
	}

	stream := h.ensureStream(key)
	stream.mu.Lock()
	if stream.subs == nil {
		stream.subs = make(map[uint64]chan LiveEvent)
	}
	id := stream.nextID
	stream.nextID++
	ch := make(chan LiveEvent, h.subscriberBuffer)
	stream.subs[id] = ch
	buffer := append([]LiveEvent(nil), stream.buffer...)
	stream.mu.Unlock()

	return &Subscription{
		hub: h,
		key: key,
		id:  id,
		ch:  ch,
	}, buffer, nil
}

func (h *Hub) ensureStream(key string) *stream {
	h.mu.RLock()
	current := h.streams[key]
	h.mu.RUnlock()
	if current != nil {
		return current
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	current = h.streams[key]
	if current == nil {
		current = &stream{subs: make(map[uint64]chan LiveEvent)}
		h.streams[key] = current
	}
	return current
}

func (h *Hub) unsubscribe(key string, id uint64) {
	if h == nil {
		return
	}

	h.mu.RLock()
	stream := h.streams[key]
	h.mu.RUnlock()
	if stream == nil {
		return
	}

	stream.mu.Lock()
	delete(stream.subs, id)
	remaining := len(stream.subs)
	stream.mu.Unlock()
	if remaining != 0 {
		return
	}

	h.mu.Lock()
	current := h.streams[key]
	if current != stream {
		h.mu.Unlock()
		return
	}
	stream.mu.Lock()
	empty := len(stream.subs) == 0
	stream.mu.Unlock()
	if empty {
		delete(h.streams, key)
	}
	h.mu.Unlock()
}

func (s *Subscription) Events() <-chan LiveEvent {
	if s == nil {
		return nil
	}
	return s.ch
}

func (s *Subscription) Close() {
	if s == nil || s.hub == nil {
		return
	}
	s.once.Do(func() {
		s.hub.unsubscribe(s.key, s.id)
	})
}
