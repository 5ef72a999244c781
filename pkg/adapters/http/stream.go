package http

import (
	"log/slog"
	"sync"
)

// StreamManager fans report events out to SSE subscribers. Subscribers of
// the empty topic receive every event.
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan<- string]struct{}
}

func NewStreamManager() *StreamManager {
	return &StreamManager{
		subscribers: make(map[string]map[chan<- string]struct{}),
	}
}

// Subscribe registers a buffered channel for topic and returns it with its
// cancel function.
func (sm *StreamManager) Subscribe(topic string) (chan string, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan string, 10)
	if _, ok := sm.subscribers[topic]; !ok {
		sm.subscribers[topic] = make(map[chan<- string]struct{})
	}
	sm.subscribers[topic][ch] = struct{}{}

	return ch, func() {
		sm.mu.Lock()
		defer sm.mu.Unlock()
		if subs, ok := sm.subscribers[topic]; ok {
			if _, live := subs[ch]; !live {
				return
			}
			delete(subs, ch)
			close(ch)
			if len(subs) == 0 {
				delete(sm.subscribers, topic)
			}
		}
	}
}

// Broadcast sends msg to the subscribers of topic and of the empty topic.
// Slow subscribers lose messages instead of blocking the sender.
func (sm *StreamManager) Broadcast(topic string, msg string) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	send := func(subs map[chan<- string]struct{}) {
		for ch := range subs {
			select {
			case ch <- msg:
			default:
				slog.Warn("SSE: client buffer full, dropping message", "topic", topic)
			}
		}
	}
	send(sm.subscribers[topic])
	if topic != "" {
		send(sm.subscribers[""])
	}
}
