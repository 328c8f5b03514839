// Package workers provides one-shot background execution of the scoring
// engine. The caller and the worker goroutine share no state: the request
// and response cross the boundary as msgpack-encoded payloads over
// channels, so races are excluded by construction.
package workers

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/aristath/stagehand/internal/actions"
	"github.com/aristath/stagehand/internal/domain"
	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"
)

// Request is the payload sent to a worker.
type Request struct {
	Now    time.Time           `msgpack:"now"`
	Shows  []domain.Show       `msgpack:"shows"`
	Travel []domain.TravelItem `msgpack:"travel"`
}

// Response is the payload a worker posts back. Exactly one of the two
// shapes is populated: {ok, actions, ms} on success, {ok:false, error}
// on failure.
type Response struct {
	OK      bool               `msgpack:"ok"`
	Actions []domain.HubAction `msgpack:"actions"`
	Ms      float64            `msgpack:"ms"`
	Error   string             `msgpack:"error"`
}

// Worker is a one-shot computation worker. It serves a single request and
// is torn down after the response; workers are never pooled or reused.
type Worker struct {
	engine    *actions.Engine
	log       zerolog.Logger
	requests  chan []byte
	responses chan []byte
	quit      chan struct{}
	quitOnce  sync.Once
}

// Spawn starts a worker goroutine ready to serve one request.
func Spawn(engine *actions.Engine, log zerolog.Logger) *Worker {
	w := &Worker{
		engine:    engine,
		log:       log.With().Str("component", "action_worker").Logger(),
		requests:  make(chan []byte, 1),
		responses: make(chan []byte, 1),
		quit:      make(chan struct{}),
	}
	go w.run()
	return w
}

// run serves at most one request, then exits.
func (w *Worker) run() {
	select {
	case <-w.quit:
		return
	case payload := <-w.requests:
		response := w.handle(payload)
		select {
		case w.responses <- response:
		case <-w.quit:
		}
	}
}

// handle decodes the request, runs the engine and encodes the response.
// Panics inside the computation become {ok:false, error} responses rather
// than taking down the process.
func (w *Worker) handle(payload []byte) []byte {
	var resp Response

	func() {
		defer func() {
			if r := recover(); r != nil {
				w.log.Error().Interface("panic", r).Msg("Worker computation panicked")
				resp = Response{OK: false, Error: fmt.Sprint(r)}
			}
		}()

		var req Request
		if err := msgpack.Unmarshal(payload, &req); err != nil {
			resp = Response{OK: false, Error: fmt.Sprintf("decode request: %v", err)}
			return
		}

		start := time.Now()
		acts := w.engine.Compute(req.Now, req.Shows, req.Travel)
		resp = Response{
			OK:      true,
			Actions: acts,
			Ms:      float64(time.Since(start).Nanoseconds()) / 1e6,
		}
	}()

	out, err := msgpack.Marshal(&resp)
	if err != nil {
		out, _ = msgpack.Marshal(&Response{OK: false, Error: fmt.Sprintf("encode response: %v", err)})
	}
	return out
}

// Dispatch sends the request and waits for the response or context
// cancellation. The worker is terminated on every exit path: one request,
// one response, then gone.
func (w *Worker) Dispatch(ctx context.Context, req Request) (Response, error) {
	defer w.Terminate()

	payload, err := msgpack.Marshal(&req)
	if err != nil {
		return Response{}, fmt.Errorf("encode request: %w", err)
	}

	select {
	case w.requests <- payload:
	case <-ctx.Done():
		return Response{}, ctx.Err()
	}

	select {
	case raw := <-w.responses:
		var resp Response
		if err := msgpack.Unmarshal(raw, &resp); err != nil {
			return Response{}, fmt.Errorf("decode response: %w", err)
		}
		return resp, nil
	case <-ctx.Done():
		return Response{}, ctx.Err()
	}
}

// Terminate tears the worker down. Safe to call more than once.
func (w *Worker) Terminate() {
	w.quitOnce.Do(func() {
		close(w.quit)
	})
}
