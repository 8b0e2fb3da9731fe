package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"math"
	"math/rand"

	"qms-rag-core/internal/domain"
)

// DefaultLocalModel names the local fallback tier. Responses are tagged
// "-mock" when this provider is substituting for an unavailable hosted
// provider rather than being explicitly requested, per the Determinism
// requirement that callers can tell a degraded response apart from a real
// one.
const DefaultLocalModel = "local-hash-embedding"

// LocalDimension is the vector length the local provider produces.
const LocalDimension = 768

// LocalProvider is a dependency-free, deterministic embedding: the same
// text always hashes to the same vector, which is all that's required for
// the retrieval algorithms to function without a hosted model. It does not
// approximate semantic similarity the way a trained model would.
type LocalProvider struct {
	model     string
	dimension int
}

// NewLocalProvider builds a LocalProvider.
func NewLocalProvider(model string, dimension int) *LocalProvider {
	return &LocalProvider{model: model, dimension: dimension}
}

func (p *LocalProvider) Name() string   { return p.model }
func (p *LocalProvider) Dimension() int { return p.dimension }

func (p *LocalProvider) Embed(ctx context.Context, text string) (domain.EmbeddingVector, error) {
	return p.embedOne(text)
}

func (p *LocalProvider) EmbedBatch(ctx context.Context, texts []string) ([]domain.EmbeddingVector, error) {
	vectors := make([]domain.EmbeddingVector, 0, len(texts))
	for _, t := range texts {
		v, err := p.embedOne(t)
		if err != nil {
			return nil, err
		}
		vectors = append(vectors, v)
	}
	return vectors, nil
}

func (p *LocalProvider) embedOne(text string) (domain.EmbeddingVector, error) {
	if text == "" {
		return domain.EmbeddingVector{}, domain.NewValidationError("text must not be empty")
	}

	sum := sha256.Sum256([]byte(text))
	seed := int64(binary.BigEndian.Uint64(sum[:8]))
	rng := rand.New(rand.NewSource(seed))

	vec := make([]float32, p.dimension)
	var norm float64
	for i := range vec {
		v := rng.Float64()*2 - 1
		vec[i] = float32(v)
		norm += v * v
	}
	if norm > 0 {
		scale := float32(1 / math.Sqrt(norm))
		for i := range vec {
			vec[i] *= scale
		}
	}

	return domain.NewEmbeddingVector(vec, p.model)
}
