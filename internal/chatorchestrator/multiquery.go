package chatorchestrator

import (
	"context"
	"regexp"
	"strings"

	"qms-rag-core/internal/domain"
	"qms-rag-core/internal/ports"
)

const maxQueryVariants = 5

const multiQueryModel = "gpt-4o-mini"

const multiQuerySystemPrompt = "Du hilfst dabei, Suchanfragen zu erweitern, um den Recall einer Dokumentensuche zu verbessern."

var numberedLinePrefix = regexp.MustCompile(`^\d+\.\s*`)

// MultiQueryService expands one question into several differently-phrased
// variants via the LLM, to widen retrieval recall before the final search.
type MultiQueryService struct {
	llm ports.LLMProvider
}

// NewMultiQueryService builds a MultiQueryService.
func NewMultiQueryService(llm ports.LLMProvider) *MultiQueryService {
	return &MultiQueryService{llm: llm}
}

// Expand returns up to maxQueryVariants deduplicated phrasings of
// originalQuery, with the original always first. It returns an error on LLM
// failure rather than degrading silently, so the caller can decide whether
// to fall back to the original query alone.
func (s *MultiQueryService) Expand(ctx context.Context, originalQuery string) ([]string, error) {
	trimmed := strings.TrimSpace(originalQuery)
	if trimmed == "" {
		return nil, domain.NewValidationError("query must not be empty")
	}

	prompt := `Erstelle 3-5 verschiedene Formulierungen für diese Frage, um bessere Suchergebnisse zu erzielen:

Original: ` + trimmed + `

Erstelle Varianten die:
- Synonyme verwenden
- Verschiedene Formulierungen nutzen
- Fachbegriffe und Umgangssprache mischen
- Verschiedene Fragewörter verwenden

Format: Eine Frage pro Zeile, nummeriert.`

	resp, err := s.llm.Complete(ctx, multiQueryModel, multiQuerySystemPrompt, prompt)
	if err != nil {
		return nil, err
	}

	variants := parseQueryVariants(resp.Content)
	variants = append([]string{trimmed}, variants...)

	seen := make(map[string]bool, len(variants))
	unique := make([]string, 0, len(variants))
	for _, v := range variants {
		normalized := strings.ToLower(strings.TrimSpace(v))
		if normalized == "" || seen[normalized] {
			continue
		}
		seen[normalized] = true
		unique = append(unique, strings.TrimSpace(v))
	}

	if len(unique) > maxQueryVariants {
		unique = unique[:maxQueryVariants]
	}
	return unique, nil
}

func parseQueryVariants(response string) []string {
	lines := strings.Split(response, "\n")
	variants := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = numberedLinePrefix.ReplaceAllString(line, "")
		if line != "" {
			variants = append(variants, line)
		}
	}
	return variants
}
