package mqtt

import (
	"sort"
	"sync"
)

// Router dispatches inbound messages to per-topic handlers.
//
// A device typically listens on several topics at once (commands, config
// pushes, broadcast announcements). Router holds the topic-to-handler map
// so the set can be subscribed in one call via Client.SubscribeRouter and
// each message is delivered to the right handler.
//
// Registered topics may contain MQTT wildcards. Dispatch tries an exact
// topic match first, then falls back to wildcard matching, so an exact
// route always wins over an overlapping pattern.
//
// Router is safe for concurrent use.
type Router struct {
	mu     sync.RWMutex
	routes map[string]MessageHandler
}

// NewRouter creates an empty router.
func NewRouter() *Router {
	return &Router{
		routes: make(map[string]MessageHandler),
	}
}

// Handle registers a handler for a topic pattern.
//
// Registering the same topic twice replaces the previous handler.
// A nil handler removes the route.
//
// Parameters:
//   - topic: Exact topic or wildcard pattern (e.g. "graylink/+/status")
//   - handler: Callback invoked for each matching message
func (r *Router) Handle(topic string, handler MessageHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if handler == nil {
		delete(r.routes, topic)
		return
	}
	r.routes[topic] = handler
}

// Topics returns the registered topic patterns in sorted order.
func (r *Router) Topics() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	topics := make([]string, 0, len(r.routes))
	for topic := range r.routes {
		topics = append(topics, topic)
	}
	sort.Strings(topics)
	return topics
}

// Dispatch routes a message to the handler registered for its topic.
//
// Resolution order:
//  1. Exact match on the registered topic string
//  2. Wildcard match against registered patterns
//
// Returns ErrNoRoute when no registered route matches, otherwise the
// handler's own return value.
func (r *Router) Dispatch(topic string, payload []byte) error {
	r.mu.RLock()
	handler, exact := r.routes[topic]
	if !exact {
		for pattern, h := range r.routes {
			if TopicMatches(pattern, topic) {
				handler = h
				break
			}
		}
	}
	r.mu.RUnlock()

	if handler == nil {
		return ErrNoRoute
	}
	return handler(topic, payload)
}
