package services

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aristath/stagehand/internal/clients/exchangerate"
	"github.com/aristath/stagehand/internal/currency"
	"github.com/aristath/stagehand/internal/events"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateSyncMergesCurrentMonth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"base":"EUR","rates":{"USD":1.15,"GBP":0.88,"JPY":171.2}}`))
	}))
	defer srv.Close()

	client := exchangerate.NewClient(srv.URL, nil, zerolog.Nop())
	provider := currency.NewProvider(currency.DefaultTable())
	bus := events.NewBus(zerolog.Nop())

	var synced []*events.RatesSyncedData
	bus.Subscribe(func(e *events.Event) {
		if data, ok := e.Data.(*events.RatesSyncedData); ok {
			synced = append(synced, data)
		}
	})

	before := provider.Current()

	svc := NewRateSyncService(client, provider, bus, zerolog.Nop())
	require.NoError(t, svc.Sync())

	after := provider.Current()
	assert.NotSame(t, before, after, "sync must swap in a new table")

	months := after.Months()
	row, ok := months[after.LatestMonth()]
	require.True(t, ok)
	assert.Equal(t, 1.15, row["USD"])
	assert.Equal(t, 171.2, row["JPY"])

	// Historical months survive the merge.
	assert.Contains(t, months, "2025-01")

	require.Len(t, synced, 1)
	assert.Equal(t, 3, synced[0].Currencies)
}

func TestRateSyncKeepsTableOnFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := exchangerate.NewClient(srv.URL, nil, zerolog.Nop())
	provider := currency.NewProvider(currency.DefaultTable())
	bus := events.NewBus(zerolog.Nop())

	before := provider.Current()

	svc := NewRateSyncService(client, provider, bus, zerolog.Nop())
	assert.Error(t, svc.Sync())
	assert.Same(t, before, provider.Current(), "failed sync must not touch the table")
}

func TestRateSyncSkipsNonPositiveRates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"base":"EUR","rates":{"USD":1.1,"XXX":0,"YYY":-2}}`))
	}))
	defer srv.Close()

	client := exchangerate.NewClient(srv.URL, nil, zerolog.Nop())
	provider := currency.NewProvider(currency.DefaultTable())
	bus := events.NewBus(zerolog.Nop())

	svc := NewRateSyncService(client, provider, bus, zerolog.Nop())
	require.NoError(t, svc.Sync())

	row := provider.Current().Months()[provider.Current().LatestMonth()]
	assert.Contains(t, row, currency.Code("USD"))
	assert.NotContains(t, row, currency.Code("XXX"))
	assert.NotContains(t, row, currency.Code("YYY"))
}
