package api

import (
	"net/http"
	"sync"
	"time"

	"causalgate/domain/verdict"
	"causalgate/internal"

	"github.com/gin-gonic/gin"
)

const (
	subscriberBuffer = 16
	keepAliveEvery   = 30 * time.Second
)

// DecisionEvent is one gate decision pushed to stream subscribers
type DecisionEvent struct {
	verdict.Decision
	Timestamp time.Time `json:"timestamp"`
}

type subscriber struct {
	gate string
	ch   chan DecisionEvent
}

// DecisionHub fans gate decisions out to Server-Sent Event subscribers.
// A subscriber with an empty gate filter receives every decision.
type DecisionHub struct {
	mu     sync.RWMutex
	subs   map[*subscriber]struct{}
	logger *internal.Logger
}

// NewDecisionHub creates an empty hub
func NewDecisionHub(logger *internal.Logger) *DecisionHub {
	return &DecisionHub{
		subs:   make(map[*subscriber]struct{}),
		logger: logger.With("stream"),
	}
}

// Subscribe registers a subscriber and returns its channel and a cancel func
func (h *DecisionHub) Subscribe(gate string) (<-chan DecisionEvent, func()) {
	sub := &subscriber{gate: gate, ch: make(chan DecisionEvent, subscriberBuffer)}

	h.mu.Lock()
	h.subs[sub] = struct{}{}
	h.logger.Debug("subscriber added for %q (total %d)", gate, len(h.subs))
	h.mu.Unlock()

	var once sync.Once
	return sub.ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, sub)
			close(sub.ch)
			h.mu.Unlock()
		})
	}
}

// Publish delivers d to every matching subscriber. Slow subscribers miss
// events rather than block the request that produced them.
func (h *DecisionHub) Publish(d verdict.Decision) {
	event := DecisionEvent{Decision: d, Timestamp: time.Now().UTC()}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for sub := range h.subs {
		if sub.gate != "" && sub.gate != d.Gate {
			continue
		}
		select {
		case sub.ch <- event:
		default:
			h.logger.Warn("subscriber buffer full, dropping %s decision for %s", d.Gate, d.Subject)
		}
	}
}

// Subscribers returns the number of connected subscribers
func (h *DecisionHub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// handleDecisionStream streams decisions as SSE until the client disconnects.
// ?gate=mechanism limits the stream to one gate.
func (s *Server) handleDecisionStream(c *gin.Context) {
	events, cancel := s.hub.Subscribe(c.Query("gate"))
	defer cancel()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Status(http.StatusOK)

	ctx := c.Request.Context()
	ticker := time.NewTicker(keepAliveEvery)
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			c.SSEvent("decision", event)
			c.Writer.Flush()
		case <-ticker.C:
			c.SSEvent("ping", gin.H{"timestamp": time.Now().UTC().Format(time.RFC3339)})
			c.Writer.Flush()
		case <-ctx.Done():
			return
		}
	}
}
