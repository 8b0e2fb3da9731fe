// Package chatorchestrator implements the AskQuestion use case: grounding a
// user's question in retrieved chunks, composing a document-type-specific
// German prompt, invoking the routed LLM provider, and persisting both
// sides of the conversation turn.
package chatorchestrator

import (
	"context"

	"go.uber.org/zap"

	"qms-rag-core/internal/domain"
	"qms-rag-core/internal/ports"
	"qms-rag-core/internal/retrieval"
)

const (
	askTopK     = 5
	askMinScore = 0.7

	noContextModelTag = "no_context"
	errorModelTag     = "error"
)

const noRelevantInformationAnswer = "Entschuldigung, ich konnte keine relevanten Informationen zu Ihrer Frage in den verfügbaren Dokumenten finden. Bitte stellen Sie eine andere Frage oder überprüfen Sie, ob die Dokumente korrekt indexiert sind."

const emptyResponseAnswer = "Entschuldigung, ich konnte keine Antwort generieren. Bitte versuchen Sie es erneut oder verwenden Sie ein anderes Modell."

// AskQuestionUseCase answers one question within a chat session.
type AskQuestionUseCase struct {
	retrieval   *retrieval.Service
	chatStore   ports.ChatStore
	permissions ports.PermissionService
	llm         ports.LLMProvider
	multiQuery  *MultiQueryService
	events      ports.EventSink
	logger      *zap.Logger
}

// NewAskQuestionUseCase builds an AskQuestionUseCase. multiQuery may be nil,
// in which case query expansion is skipped entirely.
func NewAskQuestionUseCase(
	retrievalService *retrieval.Service,
	chatStore ports.ChatStore,
	permissions ports.PermissionService,
	llm ports.LLMProvider,
	multiQuery *MultiQueryService,
	events ports.EventSink,
	logger *zap.Logger,
) *AskQuestionUseCase {
	return &AskQuestionUseCase{
		retrieval:   retrievalService,
		chatStore:   chatStore,
		permissions: permissions,
		llm:         llm,
		multiQuery:  multiQuery,
		events:      events,
		logger:      logger,
	}
}

// Execute answers question within sessionID on behalf of userID, optionally
// scoped to documentID, using requestedModel for the completion call.
func (u *AskQuestionUseCase) Execute(ctx context.Context, userID, sessionID int64, question string, documentID *int64, requestedModel string) (domain.ChatMessage, error) {
	if question == "" {
		return domain.ChatMessage{}, domain.NewValidationError("question must not be empty")
	}

	session, err := u.chatStore.GetSession(ctx, sessionID)
	if err != nil {
		return domain.ChatMessage{}, err
	}

	allowed, err := u.permissions.CanAsk(ctx, userID, documentID)
	if err != nil {
		return domain.ChatMessage{}, err
	}
	if !allowed {
		return domain.ChatMessage{}, domain.NewValidationError("user is not permitted to ask questions here")
	}

	userMsg, err := domain.NewChatMessage(session.ID, domain.RoleUser, question, nil, "")
	if err != nil {
		return domain.ChatMessage{}, err
	}
	if _, err := u.chatStore.SaveMessage(ctx, userMsg); err != nil {
		return domain.ChatMessage{}, err
	}

	queries := []string{question}
	if u.multiQuery != nil {
		if expanded, err := u.multiQuery.Expand(ctx, question); err == nil {
			queries = expanded
		} else {
			u.logger.Warn("multi-query expansion failed, proceeding with original query", zap.Error(err))
		}
	}

	refs, err := u.retrieveAcrossQueries(ctx, queries, documentID)
	if err != nil {
		return domain.ChatMessage{}, err
	}

	if len(refs) == 0 {
		return u.saveAssistantMessage(ctx, session.ID, noRelevantInformationAnswer, nil, noContextModelTag)
	}

	kind := refs[0].DocumentType
	systemPrompt, userPrompt := buildPrompt(question, refs, kind)

	resp, err := u.llm.Complete(ctx, requestedModel, systemPrompt, userPrompt)
	if err != nil {
		u.logger.Warn("llm completion failed", zap.Error(err), zap.String("requested_model", requestedModel))
		return u.saveAssistantMessage(ctx, session.ID,
			"Die Anfrage dauerte zu lange oder es gab einen Fehler. Bitte versuchen Sie es erneut oder verwenden Sie ein anderes Modell.",
			nil, errorModelTag)
	}
	if resp.Content == "" {
		return u.saveAssistantMessage(ctx, session.ID, emptyResponseAnswer, nil, errorModelTag)
	}

	assistantMsg, err := u.saveAssistantMessage(ctx, session.ID, resp.Content, refs, resp.ModelUsed)
	if err != nil {
		return domain.ChatMessage{}, err
	}

	u.events.Publish(ctx, domain.NewEvent(domain.EventChatMessageCreated, domain.ChatMessageCreatedPayload{
		SessionID: session.ID,
		MessageID: assistantMsg.ID,
		Role:      domain.RoleAssistant,
	}))

	return assistantMsg, nil
}

func (u *AskQuestionUseCase) saveAssistantMessage(ctx context.Context, sessionID int64, content string, refs []domain.SourceReference, modelUsed string) (domain.ChatMessage, error) {
	msg, err := domain.NewChatMessage(sessionID, domain.RoleAssistant, content, refs, modelUsed)
	if err != nil {
		return domain.ChatMessage{}, err
	}
	return u.chatStore.SaveMessage(ctx, msg)
}

// retrieveAcrossQueries runs the retrieval service once per expanded query
// variant and merges hits, keeping the highest score seen for any chunk
// that multiple variants surface.
func (u *AskQuestionUseCase) retrieveAcrossQueries(ctx context.Context, queries []string, documentID *int64) ([]domain.SourceReference, error) {
	merged := make(map[string]domain.SourceReference)
	order := make([]string, 0)

	for _, q := range queries {
		refs, err := u.retrieval.Retrieve(ctx, retrieval.Query{
			Text:       q,
			DocumentID: documentID,
			TopK:       askTopK,
			MinScore:   askMinScore,
			Hybrid:     true,
		})
		if err != nil {
			return nil, err
		}
		for _, r := range refs {
			existing, seen := merged[r.ChunkID]
			if !seen {
				order = append(order, r.ChunkID)
				merged[r.ChunkID] = r
				continue
			}
			if r.Score > existing.Score {
				merged[r.ChunkID] = r
			}
		}
	}

	out := make([]domain.SourceReference, 0, len(order))
	for _, id := range order {
		out = append(out, merged[id])
	}
	return out, nil
}
