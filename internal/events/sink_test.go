package events

import (
	"context"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"qms-rag-core/internal/domain"
)

func TestSink_Publish_DeliversToAllSubscribers(t *testing.T) {
	sink := NewSink(zap.NewNop())
	defer sink.Close()

	var mu sync.Mutex
	var gotA, gotB []domain.Event

	sink.Subscribe(func(e domain.Event) {
		mu.Lock()
		gotA = append(gotA, e)
		mu.Unlock()
	})
	sink.Subscribe(func(e domain.Event) {
		mu.Lock()
		gotB = append(gotB, e)
		mu.Unlock()
	})

	sink.Publish(context.Background(), domain.NewEvent(domain.EventDocumentIndexed, domain.DocumentIndexedPayload{IndexedDocumentID: 1, ChunkCount: 3}))

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		mu.Lock()
		done := len(gotA) == 1 && len(gotB) == 1
		mu.Unlock()
		if done {
			break
		}
		time.Sleep(time.Millisecond)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(gotA) != 1 || len(gotB) != 1 {
		t.Fatalf("expected both subscribers to receive the event, got %d and %d", len(gotA), len(gotB))
	}
}

func TestMetrics_Subscribe_IncrementsOnDocumentIndexed(t *testing.T) {
	registry := newTestRegistry()
	metrics := NewMetrics(registry)
	sink := NewSink(zap.NewNop())
	defer sink.Close()
	metrics.Subscribe(sink)

	sink.Publish(context.Background(), domain.NewEvent(domain.EventDocumentIndexed, domain.DocumentIndexedPayload{IndexedDocumentID: 1, ChunkCount: 4}))

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if testCounterValue(metrics.DocumentsProcessed) == 1 {
			break
		}
		time.Sleep(time.Millisecond)
	}

	if got := testCounterValue(metrics.DocumentsProcessed); got != 1 {
		t.Errorf("expected documents_processed == 1, got %v", got)
	}
	if got := testCounterValue(metrics.ChunksGenerated); got != 4 {
		t.Errorf("expected chunks_generated == 4, got %v", got)
	}
}
