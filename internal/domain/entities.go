// Package domain holds the core QMS RAG types: documents, chunks, chat
// sessions and messages, plus the configuration and value objects shared
// across every use case. Nothing in this package talks to Postgres, Qdrant,
// Redis or an LLM provider — those are ports, implemented elsewhere.
package domain

import (
	"time"
)

// DocumentKind is the QMS document type a chunking/prompting decision was
// made for. It is assigned once, during indexing, and stored on every chunk;
// the chat prompt template is picked from the stored value, so chunking and
// prompting never disagree about what kind of document produced a chunk.
type DocumentKind string

const (
	KindFlowchart       DocumentKind = "flowchart"
	KindDatasheet       DocumentKind = "datasheet"
	KindWorkInstruction DocumentKind = "work_instruction"
	KindSOP             DocumentKind = "sop"
	KindGeneric         DocumentKind = "generic"
)

// IndexedDocument is the aggregate root for a document that has gone
// through (or is going through) indexing.
type IndexedDocument struct {
	ID            int64
	UploadID      int64
	Title         string
	DocumentKind  DocumentKind
	ChunkCount    int
	Status        IndexStatus
	LastIndexedAt *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// IndexStatus tracks where an IndexedDocument sits in the indexing
// lifecycle.
type IndexStatus string

const (
	IndexStatusPending  IndexStatus = "pending"
	IndexStatusIndexing IndexStatus = "indexing"
	IndexStatusIndexed  IndexStatus = "indexed"
	IndexStatusFailed   IndexStatus = "failed"
)

// NewIndexedDocument validates and constructs an IndexedDocument in the
// pending state. uploadID must reference a document already owned by the
// external upload/storage collaborator (see ports.UploadSource).
func NewIndexedDocument(uploadID int64, title string, kind DocumentKind) (IndexedDocument, error) {
	if uploadID <= 0 {
		return IndexedDocument{}, NewValidationError("upload_id must be positive")
	}
	if title == "" {
		return IndexedDocument{}, NewValidationError("title must not be empty")
	}
	if !kind.valid() {
		return IndexedDocument{}, NewValidationError("unknown document kind: " + string(kind))
	}
	now := time.Now()
	return IndexedDocument{
		UploadID:     uploadID,
		Title:        title,
		DocumentKind: kind,
		Status:       IndexStatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

func (k DocumentKind) valid() bool {
	switch k {
	case KindFlowchart, KindDatasheet, KindWorkInstruction, KindSOP, KindGeneric:
		return true
	default:
		return false
	}
}

// ChunkType distinguishes the structural role a chunk plays within its
// source document. The set is closed: every strategy in internal/chunking
// emits only these tags (plus ChunkTypeImage, a supplemental tag the
// Generic strategy uses for image chunks, alongside the rest).
type ChunkType string

const (
	ChunkTypeMetadata            ChunkType = "metadata"
	ChunkTypeProcessStep         ChunkType = "process_step"
	ChunkTypeWorkStep            ChunkType = "work_step"
	ChunkTypeProcessOverview     ChunkType = "process_overview"
	ChunkTypeFlowchartNode       ChunkType = "flowchart_node"
	ChunkTypeFlowchartDecision   ChunkType = "flowchart_decision"
	ChunkTypeFlowchartConnections ChunkType = "flowchart_connections"
	ChunkTypeDiagramOverview     ChunkType = "diagram_overview"
	ChunkTypeCriticalRule        ChunkType = "critical_rule"
	ChunkTypeCompliance          ChunkType = "compliance"
	ChunkTypeReferences          ChunkType = "references"
	ChunkTypeDefinitions         ChunkType = "definitions"
	ChunkTypeTechSpecsPhysical   ChunkType = "technical_specs_physical"
	ChunkTypeTechSpecsChemical   ChunkType = "technical_specs_chemical"
	ChunkTypeTechSpecsPerformance ChunkType = "technical_specs_performance"
	ChunkTypeTechSpecsEnvironmental ChunkType = "technical_specs_environmental"
	ChunkTypeApplicationAreas    ChunkType = "application_areas"
	ChunkTypeMaterialCompatibility ChunkType = "material_compatibility"
	ChunkTypeProcessingInstruction ChunkType = "processing_instruction"
	ChunkTypeCuringInformation   ChunkType = "curing_information"
	ChunkTypeSafetySymbols       ChunkType = "safety_symbols"
	ChunkTypeSafetyWarnings      ChunkType = "safety_warnings"
	ChunkTypeFirstAid            ChunkType = "first_aid"
	ChunkTypeStorageRequirements ChunkType = "storage_requirements"
	ChunkTypeDisposal            ChunkType = "disposal"
	ChunkTypeProductVariant      ChunkType = "product_variant"
	ChunkTypeAdditionalInformation ChunkType = "additional_information"
	ChunkTypeDatasheetMetadata   ChunkType = "datasheet_metadata"
	ChunkTypeText                ChunkType = "text"
	ChunkTypeTable               ChunkType = "table"
	ChunkTypeImage               ChunkType = "image"
)

// DocumentChunk is a single retrievable unit produced by the chunking
// engine for one IndexedDocument.
type DocumentChunk struct {
	ID                int64
	IndexedDocumentID int64
	ChunkID           string // human-readable identifier, e.g. "doc_42_page_1_step_6"
	Ordinal           int
	ChunkType         ChunkType
	Text              string
	Metadata          ChunkMetadata
	Embedding         *EmbeddingVector
	CreatedAt         time.Time
}

// NewDocumentChunk validates and constructs a DocumentChunk. Embedding is
// attached later, once the embedding provider has run.
func NewDocumentChunk(indexedDocumentID int64, chunkID string, ordinal int, ct ChunkType, text string, meta ChunkMetadata) (DocumentChunk, error) {
	if indexedDocumentID <= 0 {
		return DocumentChunk{}, NewValidationError("indexed_document_id must be positive")
	}
	if chunkID == "" {
		return DocumentChunk{}, NewValidationError("chunk_id must not be empty")
	}
	if ordinal < 0 {
		return DocumentChunk{}, NewValidationError("ordinal must not be negative")
	}
	if text == "" {
		return DocumentChunk{}, NewValidationError("chunk text must not be empty")
	}
	if len(meta.PageNumbers) == 0 {
		return DocumentChunk{}, NewValidationError("chunk metadata must carry at least one page number")
	}
	return DocumentChunk{
		IndexedDocumentID: indexedDocumentID,
		ChunkID:           chunkID,
		Ordinal:           ordinal,
		ChunkType:         ct,
		Text:              text,
		Metadata:          meta,
		CreatedAt:         time.Now(),
	}, nil
}

// ChatSession groups a sequence of ChatMessages asked against the indexed
// corpus, optionally scoped to a single document.
type ChatSession struct {
	ID         int64
	UserID     int64
	DocumentID *int64
	Title      string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// NewChatSession validates and constructs a ChatSession.
func NewChatSession(userID int64, documentID *int64, title string) (ChatSession, error) {
	if userID <= 0 {
		return ChatSession{}, NewValidationError("user_id must be positive")
	}
	if title == "" {
		title = "New chat"
	}
	now := time.Now()
	return ChatSession{
		UserID:     userID,
		DocumentID: documentID,
		Title:      title,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// MessageRole distinguishes who produced a ChatMessage.
type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

// ChatMessage is one turn in a ChatSession, with optional citations back to
// the chunks that grounded an assistant answer.
type ChatMessage struct {
	ID         int64
	SessionID  int64
	Role       MessageRole
	Content    string
	Sources    []SourceReference
	ModelUsed  string
	CreatedAt  time.Time
}

// NewChatMessage validates and constructs a ChatMessage.
func NewChatMessage(sessionID int64, role MessageRole, content string, sources []SourceReference, modelUsed string) (ChatMessage, error) {
	if sessionID <= 0 {
		return ChatMessage{}, NewValidationError("session_id must be positive")
	}
	if role != RoleUser && role != RoleAssistant {
		return ChatMessage{}, NewValidationError("unknown message role: " + string(role))
	}
	if content == "" {
		return ChatMessage{}, NewValidationError("message content must not be empty")
	}
	return ChatMessage{
		SessionID: sessionID,
		Role:      role,
		Content:   content,
		Sources:   sources,
		ModelUsed: modelUsed,
		CreatedAt: time.Now(),
	}, nil
}
