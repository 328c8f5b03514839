package server

import (
	"net/http"
	"time"

	"github.com/aristath/stagehand/internal/events"
	"github.com/rs/zerolog"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

// wsEvent is the wire shape for events pushed over the websocket.
type wsEvent struct {
	Type      string      `json:"type"`
	Timestamp string      `json:"timestamp"`
	Data      interface{} `json:"data,omitempty"`
}

// EventsWSHandler pushes telemetry events over a websocket for clients
// that prefer it over SSE.
type EventsWSHandler struct {
	eventBus *events.Bus
	origins  []string
	log      zerolog.Logger
}

// NewEventsWSHandler creates a new websocket events handler.
func NewEventsWSHandler(eventBus *events.Bus, origins []string, log zerolog.Logger) *EventsWSHandler {
	return &EventsWSHandler{
		eventBus: eventBus,
		origins:  origins,
		log:      log.With().Str("component", "events_ws").Logger(),
	}
}

// ServeHTTP handles GET /api/events/ws requests.
func (h *EventsWSHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: h.origins,
	})
	if err != nil {
		h.log.Warn().Err(err).Msg("Websocket accept failed")
		return
	}
	defer conn.Close(websocket.StatusInternalError, "connection closed")

	h.log.Info().Msg("Client connected to websocket event stream")

	eventChan := make(chan *events.Event, 100)
	subID := h.eventBus.Subscribe(func(event *events.Event) {
		select {
		case eventChan <- event:
		default:
			h.log.Warn().
				Str("event_type", string(event.Type)).
				Msg("Websocket event channel full, dropping event")
		}
	})
	defer h.eventBus.Unsubscribe(subID)

	ctx := r.Context()

	if err := wsjson.Write(ctx, conn, wsEvent{
		Type:      "connected",
		Timestamp: time.Now().Format(time.RFC3339),
	}); err != nil {
		return
	}

	heartbeat := time.NewTicker(30 * time.Second)
	defer heartbeat.Stop()

	for {
		select {
		case <-ctx.Done():
			h.log.Info().Msg("Client disconnected from websocket event stream")
			conn.Close(websocket.StatusNormalClosure, "")
			return

		case event := <-eventChan:
			if err := wsjson.Write(ctx, conn, wsEvent{
				Type:      string(event.Type),
				Timestamp: event.Timestamp.Format(time.RFC3339),
				Data:      event.Data,
			}); err != nil {
				h.log.Debug().Err(err).Msg("Websocket write failed, closing")
				return
			}

		case <-heartbeat.C:
			if err := wsjson.Write(ctx, conn, wsEvent{
				Type:      "heartbeat",
				Timestamp: time.Now().Format(time.RFC3339),
			}); err != nil {
				return
			}
		}
	}
}
