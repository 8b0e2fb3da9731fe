package chunking

import (
	"regexp"
	"strings"

	"qms-rag-core/internal/domain"
)

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// sanitizeID lowercases s and collapses anything that isn't a letter or
// digit into a single hyphen, for building a safe id suffix (e.g. a
// product_variant identifier) from free-form label text.
func sanitizeID(s string) string {
	s = nonAlnum.ReplaceAllString(strings.ToLower(s), "-")
	return strings.Trim(s, "-")
}

// joinLines drops empty entries and joins the rest one per line, the
// flattening scheme every structured strategy uses to compose
// self-contained chunk text from a list of labeled fields.
func joinLines(lines ...string) string {
	var b strings.Builder
	for _, l := range lines {
		if l == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString(l)
	}
	return b.String()
}

// newChunk builds a single-page DocumentChunk, filling in the page number,
// token estimate and chunk type the way every structured strategy needs.
// ok is false (with a zero-value chunk) when text is empty or the chunk
// fails DocumentChunk validation, so callers can skip optional sections
// without treating an absent field as failure.
func newChunk(indexedDocumentID int64, chunkID string, ordinal int, ct domain.ChunkType, kind domain.DocumentKind, pageNumber int, text string) (domain.DocumentChunk, bool) {
	if text == "" {
		return domain.DocumentChunk{}, false
	}
	meta := domain.ChunkMetadata{
		DocumentType: kind,
		ChunkText:    text,
		PageNumbers:  []int{pageNumber},
		TokenCount:   estimateTokens(text),
	}
	chunk, err := domain.NewDocumentChunk(indexedDocumentID, chunkID, ordinal, ct, text, meta)
	if err != nil {
		return domain.DocumentChunk{}, false
	}
	return chunk, true
}
