package events

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
)

// Hub is an in-process event bus used when no NATS URL is configured. It
// implements both Publisher and Subscriber so the live layer works the same
// either way. Topic syntax follows NATS subjects: dot-separated tokens with
// a trailing ">" matching any remainder.
type Hub struct {
	mu   sync.RWMutex
	subs map[*hubSub]struct{}
}

type hubSub struct {
	topic string
	ch    chan []byte
}

func NewHub() *Hub {
	return &Hub{subs: make(map[*hubSub]struct{})}
}

func (h *Hub) Publish(ctx context.Context, topic string, event any) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for s := range h.subs {
		if !topicMatches(s.topic, topic) {
			continue
		}
		select {
		case s.ch <- data:
		default:
			// 溢れた購読者には配らない（遅いSSEクライアントで全体を止めない）
		}
	}
	return nil
}

func (h *Hub) Subscribe(topic string) (<-chan []byte, func(), error) {
	s := &hubSub{topic: topic, ch: make(chan []byte, 64)}

	h.mu.Lock()
	h.subs[s] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, s)
			h.mu.Unlock()
			close(s.ch)
		})
	}
	return s.ch, cancel, nil
}

func (h *Hub) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	for s := range h.subs {
		delete(h.subs, s)
		close(s.ch)
	}
	return nil
}

// topicMatches reports whether a published subject matches a subscription
// pattern. Supports only the trailing ">" wildcard, which is all the live
// layer needs.
func topicMatches(pattern, topic string) bool {
	if pattern == topic || pattern == ">" {
		return true
	}
	if strings.HasSuffix(pattern, ".>") {
		return strings.HasPrefix(topic, strings.TrimSuffix(pattern, ">"))
	}
	return false
}
