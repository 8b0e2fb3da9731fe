package vectorstore

import (
	"context"
	"sort"
	"strings"

	"qms-rag-core/internal/domain"
	"qms-rag-core/internal/ports"
)

// Hybrid scoring constants, pinned to the values the original vector store
// adapter encodes: a vector-search pass over-fetches 2x the requested
// top-k at half the score threshold, then each hit's vector score and a
// text-overlap score are blended 0.7/0.3 before re-sorting and truncating.
const (
	hybridOversampleFactor = 2
	hybridThresholdFactor  = 0.5
	hybridVectorWeight     = 0.7
	hybridTextWeight       = 0.3
	jaccardWeight          = 0.7
	partialMatchWeight     = 0.3
)

// searcher is the subset of ports.VectorStore that searchHybrid needs,
// satisfied by *QdrantStore.
type searcher interface {
	Search(ctx context.Context, collection string, query domain.EmbeddingVector, filters map[string]any, topK int, minScore float64) ([]ports.VectorSearchResult, error)
}

func searchHybrid(ctx context.Context, s searcher, collection string, query domain.EmbeddingVector, queryText string, filters map[string]any, topK int, minScore float64) ([]ports.VectorSearchResult, error) {
	vectorResults, err := s.Search(ctx, collection, query, filters, topK*hybridOversampleFactor, minScore*hybridThresholdFactor)
	if err != nil {
		return nil, err
	}

	hybrid := make([]ports.VectorSearchResult, 0, len(vectorResults))
	for _, r := range vectorResults {
		chunkText, _ := r.Payload["chunk_text"].(string)
		textScore := TextRelevance(queryText, chunkText)
		hybridScore := r.Score*hybridVectorWeight + textScore*hybridTextWeight

		if hybridScore >= minScore {
			r.HybridScore = hybridScore
			hybrid = append(hybrid, r)
		}
	}

	sort.Slice(hybrid, func(i, j int) bool {
		return hybrid[i].HybridScore > hybrid[j].HybridScore
	})

	if len(hybrid) > topK {
		hybrid = hybrid[:topK]
	}
	return hybrid, nil
}

// TextRelevance blends Jaccard similarity over the word sets of query and
// text with a partial-substring-match ratio, exactly as the original
// adapter's _calculate_text_relevance does, clamped to [0, 1].
func TextRelevance(query, text string) float64 {
	queryWords := wordSet(query)
	if len(queryWords) == 0 {
		return 0
	}
	textWords := wordSet(text)

	jaccard := jaccardSimilarity(queryWords, textWords)

	partialMatches := 0
	for qw := range queryWords {
		for tw := range textWords {
			if strings.Contains(tw, qw) || strings.Contains(qw, tw) {
				partialMatches++
			}
		}
	}
	partialScore := float64(partialMatches) / float64(len(queryWords))

	score := jaccard*jaccardWeight + partialScore*partialMatchWeight
	if score > 1.0 {
		score = 1.0
	}
	return score
}

func wordSet(s string) map[string]struct{} {
	words := strings.Fields(strings.ToLower(s))
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

func jaccardSimilarity(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	intersection := 0
	for w := range a {
		if _, ok := b[w]; ok {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}
