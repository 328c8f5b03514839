package events

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBusPublishSubscribe(t *testing.T) {
	bus := NewBus(zerolog.Nop())

	var received []*Event
	id := bus.Subscribe(func(e *Event) {
		received = append(received, e)
	})

	bus.Publish(&BudgetExceededData{Count: 600, Ms: 250, Budget: 200, Worker: false})

	require.Len(t, received, 1)
	assert.Equal(t, BudgetExceeded, received[0].Type)
	data, ok := received[0].Data.(*BudgetExceededData)
	require.True(t, ok)
	assert.Equal(t, 600, data.Count)

	bus.Unsubscribe(id)
	bus.Publish(&BudgetExceededData{Count: 1})
	assert.Len(t, received, 1)
}

func TestBusNoSubscribers(t *testing.T) {
	bus := NewBus(zerolog.Nop())
	// Publishing without subscribers must be a no-op, not a panic.
	bus.Publish(&RatesSyncedData{Month: "2025-09", Currencies: 3})
}
