package eventlogger

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Worker persists events on a background goroutine so request handlers
// never wait on the events table.
type Worker struct {
	eventCh      chan Event
	logger       EventLogger
	drainTimeout time.Duration

	wg       sync.WaitGroup
	ctx      context.Context
	cancel   context.CancelFunc
	mu       sync.RWMutex
	stopped  bool
	stopOnce sync.Once
}

func NewWorker(logger EventLogger, bufferSize int, drainTimeout time.Duration) *Worker {
	ctx, cancel := context.WithCancel(context.Background())
	if bufferSize <= 0 {
		bufferSize = 1
	}
	return &Worker{
		eventCh:      make(chan Event, bufferSize),
		logger:       logger,
		drainTimeout: drainTimeout,
		ctx:          ctx,
		cancel:       cancel,
	}
}

func (w *Worker) Start() {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		for {
			select {
			case <-w.ctx.Done():
				w.drain()
				return
			case event := <-w.eventCh:
				w.save(w.ctx, event)
			}
		}
	}()
}

func (w *Worker) drain() {
	slog.Info("draining events before shutdown", "remaining_events", len(w.eventCh))

	ctx, cancel := context.WithTimeout(context.Background(), w.drainTimeout)
	defer cancel()

	for {
		select {
		case event := <-w.eventCh:
			w.save(ctx, event)
		default:
			return
		}
	}
}

func (w *Worker) save(ctx context.Context, event Event) {
	if err := w.logger.Save(ctx, event); err != nil {
		slog.Error("failed to save event", "error", err, "event_type", event.Type)
	}
}

// Log queues event. It reports false when the buffer is full or the worker
// has shut down; the event is dropped in both cases.
func (w *Worker) Log(event Event) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()

	if w.stopped {
		slog.Warn("event worker stopped, dropping event", "event_type", event.Type)
		return false
	}

	select {
	case w.eventCh <- event:
		return true
	default:
		slog.Warn("event channel full, dropping event", "event_type", event.Type)
		return false
	}
}

// Shutdown stops accepting events, flushes what is queued and waits for
// the goroutine to exit. Safe to call more than once.
func (w *Worker) Shutdown() {
	w.stopOnce.Do(func() {
		w.mu.Lock()
		w.stopped = true
		w.mu.Unlock()

		w.cancel()
		w.wg.Wait()
	})
}
