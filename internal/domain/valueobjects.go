package domain

// ChunkMetadata carries the structured detail a chunk was built with, plus
// the fields the vector store denormalizes into its filterable payload
// (document_id, document_type, page_numbers, chunk_text, chunk_type,
// heading_hierarchy, token_count — see internal/indexing's upsert payload).
type ChunkMetadata struct {
	DocumentType     DocumentKind `json:"document_type"`
	ChunkText        string       `json:"chunk_text"`
	PageNumbers      []int        `json:"page_numbers"`
	HeadingHierarchy []string     `json:"heading_hierarchy,omitempty"`
	TokenCount       int          `json:"token_count"`
	SentenceCount    int          `json:"sentence_count,omitempty"`
	Overlap          bool         `json:"overlap,omitempty"`
	OverlapSentences int          `json:"overlap_sentence_count,omitempty"`

	// Role-specific fields, not part of the §3 payload schema but carried
	// so retrieval can filter/cite by the natural key a strategy built the
	// identifier from.
	StepNumber int    `json:"step_number,omitempty"`
	NodeID     string `json:"node_id,omitempty"`
	FieldName  string `json:"field_name,omitempty"`

	Extra map[string]string `json:"extra,omitempty"`
}

// EmbeddingVector is a fixed-dimension float vector plus the model that
// produced it, so callers can tell stale/mismatched-dimension vectors apart
// from a provider switch.
type EmbeddingVector struct {
	Vector    []float32
	Model     string
	Dimension int
}

// NewEmbeddingVector validates dimension consistency before wrapping a raw
// vector.
func NewEmbeddingVector(vector []float32, model string) (EmbeddingVector, error) {
	if len(vector) == 0 {
		return EmbeddingVector{}, NewValidationError("embedding vector must not be empty")
	}
	if model == "" {
		return EmbeddingVector{}, NewValidationError("embedding model must not be empty")
	}
	return EmbeddingVector{Vector: vector, Model: model, Dimension: len(vector)}, nil
}

// SourceReference is a citation from an assistant answer back to the chunk
// that grounded it.
type SourceReference struct {
	ChunkID      string       `json:"chunk_id"`
	DocumentID   int64        `json:"document_id"`
	DocumentName string       `json:"document_name"`
	DocumentType DocumentKind `json:"document_type"`
	Ordinal      int          `json:"ordinal"`
	Score        float64      `json:"score"`
	Excerpt      string       `json:"excerpt"`
}

// RAGConfig is the resolved runtime configuration for the whole core —
// collection name, default chat model, retrieval defaults. See
// internal/config for how it's populated from the environment; that loader
// leaves EmbeddingProvider and EmbeddingModel empty, since the embedding
// provider is chosen by internal/embedding's Factory.
type RAGConfig struct {
	EmbeddingProvider   string
	EmbeddingModel      string
	CollectionName      string
	DefaultChatModel    string
	RetrievalTopK       int
	RetrievalMinScore   float64
	MaxMultiQueryVariants int
}
