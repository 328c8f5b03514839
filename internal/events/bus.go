// Package events provides the in-process event bus carrying telemetry
// signals between the engine, the scheduler and the streaming endpoints.
package events

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// EventType identifies a class of system event.
type EventType string

const (
	// BudgetExceeded fires when a computation ran over its latency budget.
	BudgetExceeded EventType = "hub_budget_exceeded"
	// StrategySelected fires when the scheduler picks an execution strategy.
	StrategySelected EventType = "hub_strategy_selected"
	// ActionsComputed fires when a computation result is committed.
	ActionsComputed EventType = "hub_actions_computed"
	// RatesSynced fires when the exchange-rate table is refreshed.
	RatesSynced EventType = "rates_synced"
	// PrefsCleaned fires when expired snoozes are purged.
	PrefsCleaned EventType = "prefs_cleaned"
)

// Event is a single published event with its payload.
type Event struct {
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Data      EventData `json:"data"`
}

// Bus is a lightweight publish/subscribe hub. Handlers are invoked
// synchronously on the publishing goroutine; slow consumers must buffer
// on their own side (the SSE handler does).
type Bus struct {
	mu       sync.RWMutex
	handlers map[int]func(*Event)
	nextID   int
	log      zerolog.Logger
}

// NewBus creates a new event bus.
func NewBus(log zerolog.Logger) *Bus {
	return &Bus{
		handlers: make(map[int]func(*Event)),
		log:      log.With().Str("component", "event_bus").Logger(),
	}
}

// Subscribe registers a handler for all events and returns its id.
func (b *Bus) Subscribe(handler func(*Event)) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.nextID
	b.nextID++
	b.handlers[id] = handler
	return id
}

// Unsubscribe removes a previously registered handler.
func (b *Bus) Unsubscribe(id int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.handlers, id)
}

// Publish delivers an event to all subscribers. Absence of subscribers is
// fine: telemetry never affects correctness.
func (b *Bus) Publish(data EventData) {
	event := &Event{
		Type:      data.EventType(),
		Timestamp: time.Now().UTC(),
		Data:      data,
	}

	b.mu.RLock()
	handlers := make([]func(*Event), 0, len(b.handlers))
	for _, h := range b.handlers {
		handlers = append(handlers, h)
	}
	b.mu.RUnlock()

	for _, h := range handlers {
		h(event)
	}

	b.log.Debug().Str("type", string(event.Type)).Msg("Event published")
}
