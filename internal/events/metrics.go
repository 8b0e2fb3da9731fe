package events

import (
	"github.com/prometheus/client_golang/prometheus"

	"qms-rag-core/internal/domain"
)

// Metrics exposes the three counters the teacher tracked as mutex-guarded
// int64s (documents processed, chunks generated, queries handled), plus a
// chat message counter, as Prometheus counters. All but QueriesHandled are
// updated by subscribing to the Sink.
type Metrics struct {
	DocumentsProcessed prometheus.Counter
	ChunksGenerated    prometheus.Counter
	QueriesHandled     prometheus.Counter
	ChatMessages       prometheus.Counter
}

// NewMetrics registers and returns a Metrics struct on registry.
func NewMetrics(registry prometheus.Registerer) *Metrics {
	m := &Metrics{
		DocumentsProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "qms_rag_documents_processed_total",
			Help: "Total number of documents indexed or reindexed.",
		}),
		ChunksGenerated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "qms_rag_chunks_generated_total",
			Help: "Total number of chunks produced across all indexing runs.",
		}),
		QueriesHandled: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "qms_rag_queries_handled_total",
			Help: "Total number of retrieval queries served.",
		}),
		ChatMessages: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "qms_rag_chat_messages_total",
			Help: "Total number of chat messages persisted.",
		}),
	}
	registry.MustRegister(m.DocumentsProcessed, m.ChunksGenerated, m.QueriesHandled, m.ChatMessages)
	return m
}

// Subscribe wires m up to sink so every published event updates the right
// counter, by registering its own Handler with Sink.Subscribe.
func (m *Metrics) Subscribe(sink *Sink) {
	sink.Subscribe(func(e domain.Event) {
		switch e.Type {
		case domain.EventDocumentIndexed:
			m.DocumentsProcessed.Inc()
			if p, ok := e.Payload.(domain.DocumentIndexedPayload); ok {
				m.ChunksGenerated.Add(float64(p.ChunkCount))
			}
		case domain.EventDocumentReindexed:
			m.DocumentsProcessed.Inc()
			if p, ok := e.Payload.(domain.DocumentReindexedPayload); ok {
				m.ChunksGenerated.Add(float64(p.NewChunkCount))
			}
		case domain.EventChatMessageCreated:
			m.ChatMessages.Inc()
		}
	})
}
