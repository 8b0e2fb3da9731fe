// Package events implements the default EventSink: an in-process fan-out
// over buffered Go channels to subscriber functions, the same worker-pool
// idiom the teacher uses for its chunk/embedding job queues, generalized
// here to typed domain events instead of work items. Prometheus counters
// replace the teacher's mutex-guarded int64 counters for the same metrics
// (documents processed, chunks generated, queries handled).
package events

import (
	"context"

	"go.uber.org/zap"

	"qms-rag-core/internal/domain"
)

const subscriberQueueSize = 256

// Handler receives one published domain.Event.
type Handler func(domain.Event)

// Sink is the default in-process ports.EventSink implementation: each
// subscriber gets its own buffered channel and worker goroutine, so one
// slow subscriber cannot block another or the publisher.
type Sink struct {
	logger  *zap.Logger
	queues  []chan domain.Event
	done    chan struct{}
}

// NewSink builds a Sink with no subscribers yet; register them with
// Subscribe before the first Publish.
func NewSink(logger *zap.Logger) *Sink {
	return &Sink{logger: logger, done: make(chan struct{})}
}

// Subscribe registers handler to receive every published event and starts
// its worker goroutine at once. It is not safe to call concurrently with
// Publish, so every Subscribe call comes before the first Publish.
func (s *Sink) Subscribe(handler Handler) {
	queue := make(chan domain.Event, subscriberQueueSize)
	s.queues = append(s.queues, queue)
	go s.drain(queue, handler)
}

func (s *Sink) drain(queue chan domain.Event, handler Handler) {
	for {
		select {
		case e := <-queue:
			handler(e)
		case <-s.done:
			return
		}
	}
}

// Publish fans e out to every subscriber's queue without blocking the
// caller; a full subscriber queue drops the event and logs a warning
// rather than applying backpressure to the use case that published it.
func (s *Sink) Publish(ctx context.Context, e domain.Event) {
	for _, q := range s.queues {
		select {
		case q <- e:
		default:
			s.logger.Warn("event subscriber queue full, dropping event", zap.String("event_type", string(e.Type)))
		}
	}
}

// Close stops every subscriber's worker goroutine.
func (s *Sink) Close() {
	close(s.done)
}
