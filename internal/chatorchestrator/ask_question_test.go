package chatorchestrator

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"qms-rag-core/internal/domain"
	"qms-rag-core/internal/ports"
	"qms-rag-core/internal/retrieval"
)

var errBoom = errors.New("boom")

type fakeChatStore struct {
	sessions map[int64]domain.ChatSession
	messages map[int64][]domain.ChatMessage
	nextSess int64
	nextMsg  int64
}

func newFakeChatStore(sess domain.ChatSession) *fakeChatStore {
	sess.ID = 1
	return &fakeChatStore{
		sessions: map[int64]domain.ChatSession{1: sess},
		messages: make(map[int64][]domain.ChatMessage),
		nextSess: 2,
		nextMsg:  1,
	}
}

func (f *fakeChatStore) SaveSession(ctx context.Context, s domain.ChatSession) (domain.ChatSession, error) {
	if s.ID == 0 {
		s.ID = f.nextSess
		f.nextSess++
	}
	f.sessions[s.ID] = s
	return s, nil
}
func (f *fakeChatStore) GetSession(ctx context.Context, id int64) (domain.ChatSession, error) {
	s, ok := f.sessions[id]
	if !ok {
		return domain.ChatSession{}, domain.NewNotFoundError("chat_session", "missing")
	}
	return s, nil
}
func (f *fakeChatStore) ListSessions(ctx context.Context, userID int64) ([]domain.ChatSession, error) {
	var out []domain.ChatSession
	for _, s := range f.sessions {
		if s.UserID == userID {
			out = append(out, s)
		}
	}
	return out, nil
}
func (f *fakeChatStore) DeleteSession(ctx context.Context, id int64) error {
	delete(f.sessions, id)
	return nil
}
func (f *fakeChatStore) SaveMessage(ctx context.Context, m domain.ChatMessage) (domain.ChatMessage, error) {
	m.ID = f.nextMsg
	f.nextMsg++
	f.messages[m.SessionID] = append(f.messages[m.SessionID], m)
	return m, nil
}
func (f *fakeChatStore) ListMessages(ctx context.Context, sessionID int64) ([]domain.ChatMessage, error) {
	return f.messages[sessionID], nil
}

type fakePermissions struct{ allowed bool }

func (f fakePermissions) CanIndex(ctx context.Context, userID, uploadID int64) (bool, error) {
	return f.allowed, nil
}
func (f fakePermissions) CanAsk(ctx context.Context, userID int64, documentID *int64) (bool, error) {
	return f.allowed, nil
}

type fakeLLM struct {
	content string
	err     error
}

func (f fakeLLM) Name() string { return "fake" }
func (f fakeLLM) Complete(ctx context.Context, model, systemPrompt, userPrompt string) (ports.LLMResponse, error) {
	if f.err != nil {
		return ports.LLMResponse{}, f.err
	}
	return ports.LLMResponse{Content: f.content, ModelUsed: model}, nil
}

type fakeEvents struct {
	published []domain.Event
}

func (f *fakeEvents) Publish(ctx context.Context, e domain.Event) {
	f.published = append(f.published, e)
}

type fakeEmbedder struct{}

func (fakeEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingVector, error) {
	return domain.NewEmbeddingVector([]float32{0.1, 0.2}, "fake")
}
func (fakeEmbedder) EmbedBatch(ctx context.Context, texts []string) ([]domain.EmbeddingVector, error) {
	v, _ := domain.NewEmbeddingVector([]float32{0.1, 0.2}, "fake")
	out := make([]domain.EmbeddingVector, len(texts))
	for i := range out {
		out[i] = v
	}
	return out, nil
}
func (fakeEmbedder) Name() string   { return "fake" }
func (fakeEmbedder) Dimension() int { return 2 }

type fakeVectorStore struct {
	results []ports.VectorSearchResult
}

func (f *fakeVectorStore) EnsureCollection(ctx context.Context, name string, dimension int) error {
	return nil
}
func (f *fakeVectorStore) UpsertPoint(ctx context.Context, collection, pointID string, vector domain.EmbeddingVector, payload map[string]any) error {
	return nil
}
func (f *fakeVectorStore) UpsertBatch(ctx context.Context, collection string, points []ports.VectorPoint) error {
	return nil
}
func (f *fakeVectorStore) Search(ctx context.Context, collection string, query domain.EmbeddingVector, filters map[string]any, topK int, minScore float64) ([]ports.VectorSearchResult, error) {
	return f.results, nil
}
func (f *fakeVectorStore) SearchHybrid(ctx context.Context, collection string, query domain.EmbeddingVector, queryText string, filters map[string]any, topK int, minScore float64) ([]ports.VectorSearchResult, error) {
	return f.results, nil
}
func (f *fakeVectorStore) DeletePoint(ctx context.Context, collection, pointID string) error {
	return nil
}
func (f *fakeVectorStore) DeleteByDocument(ctx context.Context, collection string, documentID int64) (int, error) {
	return 0, nil
}
func (f *fakeVectorStore) CollectionInfo(ctx context.Context, collection string) (ports.CollectionInfo, error) {
	return ports.CollectionInfo{}, nil
}

func TestAskQuestionUseCase_Execute_NoChunksReturnsNoContextCannedAnswer(t *testing.T) {
	chatStore := newFakeChatStore(domain.ChatSession{UserID: 1})
	events := &fakeEvents{}
	svc := retrieval.NewService(fakeEmbedder{}, &fakeVectorStore{}, "col", zap.NewNop())

	u := NewAskQuestionUseCase(svc, chatStore, fakePermissions{allowed: true}, fakeLLM{content: "sollte nicht verwendet werden"}, nil, events, zap.NewNop())

	msg, err := u.Execute(context.Background(), 1, 1, "Wie schalte ich das Gerät aus?", nil, "gpt-4o-mini")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if msg.ModelUsed != noContextModelTag {
		t.Errorf("expected model_used %s, got %s", noContextModelTag, msg.ModelUsed)
	}
	if len(msg.Sources) != 0 {
		t.Errorf("expected no sources, got %v", msg.Sources)
	}
	if len(events.published) != 0 {
		t.Errorf("expected no chat_message_created event on no-context path, got %+v", events.published)
	}
}

func TestAskQuestionUseCase_Execute_HappyPathPersistsAssistantMessage(t *testing.T) {
	chatStore := newFakeChatStore(domain.ChatSession{UserID: 1})
	events := &fakeEvents{}
	vectors := &fakeVectorStore{results: []ports.VectorSearchResult{
		{PointID: "p1", Score: 0.9, Payload: map[string]any{
			"chunk_id": "c1", "chunk_text": "Schritt 1: Gerät ausschalten", "document_type": "sop", "ordinal": 1,
		}},
	}}
	svc := retrieval.NewService(fakeEmbedder{}, vectors, "col", zap.NewNop())

	u := NewAskQuestionUseCase(svc, chatStore, fakePermissions{allowed: true}, fakeLLM{content: "Das Gerät wird ausgeschaltet. **Referenz**: chunk 1"}, nil, events, zap.NewNop())

	msg, err := u.Execute(context.Background(), 1, 1, "Wie schalte ich das Gerät aus?", nil, "gpt-4o-mini")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if msg.ModelUsed != "gpt-4o-mini" {
		t.Errorf("expected model_used gpt-4o-mini, got %s", msg.ModelUsed)
	}
	if len(msg.Sources) != 1 {
		t.Fatalf("expected one source reference, got %d", len(msg.Sources))
	}
	if len(events.published) != 1 || events.published[0].Type != domain.EventChatMessageCreated {
		t.Errorf("expected one chat_message_created event, got %+v", events.published)
	}
	history, _ := chatStore.ListMessages(context.Background(), 1)
	if len(history) != 2 {
		t.Fatalf("expected user + assistant messages persisted, got %d", len(history))
	}
	if history[0].Role != domain.RoleUser {
		t.Errorf("expected first message to be the user's question")
	}
}

func TestAskQuestionUseCase_Execute_EmptyLLMResponseReturnsCannedError(t *testing.T) {
	chatStore := newFakeChatStore(domain.ChatSession{UserID: 1})
	events := &fakeEvents{}
	vectors := &fakeVectorStore{results: []ports.VectorSearchResult{
		{PointID: "p1", Score: 0.9, Payload: map[string]any{"chunk_id": "c1", "chunk_text": "x", "document_type": "generic", "ordinal": 1}},
	}}
	svc := retrieval.NewService(fakeEmbedder{}, vectors, "col", zap.NewNop())

	u := NewAskQuestionUseCase(svc, chatStore, fakePermissions{allowed: true}, fakeLLM{content: ""}, nil, events, zap.NewNop())

	msg, err := u.Execute(context.Background(), 1, 1, "Frage", nil, "gpt-4o-mini")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if msg.ModelUsed != errorModelTag {
		t.Errorf("expected model_used %s, got %s", errorModelTag, msg.ModelUsed)
	}
}

func TestAskQuestionUseCase_Execute_RejectsWhenNotPermitted(t *testing.T) {
	chatStore := newFakeChatStore(domain.ChatSession{UserID: 1})
	svc := retrieval.NewService(fakeEmbedder{}, &fakeVectorStore{}, "col", zap.NewNop())
	u := NewAskQuestionUseCase(svc, chatStore, fakePermissions{allowed: false}, fakeLLM{content: "x"}, nil, &fakeEvents{}, zap.NewNop())

	_, err := u.Execute(context.Background(), 1, 1, "Frage", nil, "gpt-4o-mini")
	if err == nil {
		t.Fatal("expected permission error")
	}
}
