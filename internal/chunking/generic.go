package chunking

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"qms-rag-core/internal/domain"
)

// genericPageContent is the fallback per-page shape used for any document
// whose prompt doesn't match one of the QMS-specific structures.
type genericPageContent struct {
	Text   string         `json:"text"`
	Tables []genericTable `json:"tables,omitempty"`
	Images []genericImage `json:"images,omitempty"`
}

type genericTable struct {
	Caption string     `json:"caption,omitempty"`
	Rows    [][]string `json:"rows"`
}

type genericImage struct {
	Description string `json:"description,omitempty"`
	OCRText     string `json:"ocr_text,omitempty"`
}

const (
	genericMaxTokens        = 512
	genericOverlapSentences = 2
)

var sentenceSplitter = regexp.MustCompile(`[.!?]+`)

// GenericStrategy is the fallback strategy: it chunks page text by
// sentence up to a token budget with a short sentence overlap between
// chunks, and additionally emits one chunk per table and per image so
// structured content isn't diluted into prose. It is also the degrade
// target when a document-type-specific strategy fails on a page (§4.1
// Failure semantics).
type GenericStrategy struct{}

func (GenericStrategy) Chunk(indexedDocumentID int64, pageNumber int, content string) ([]domain.DocumentChunk, error) {
	page := decodeGenericPage(content)

	var chunks []domain.DocumentChunk
	ordinal := 0

	for i, text := range chunkPageText(page.Text) {
		overlap := i > 0
		meta := domain.ChunkMetadata{
			DocumentType: domain.KindGeneric,
			ChunkText:    text,
			PageNumbers:  []int{pageNumber},
			TokenCount:   estimateTokens(text),
			SentenceCount: len(splitSentences(text)),
			Overlap:       overlap,
		}
		if overlap {
			meta.OverlapSentences = genericOverlapSentences
		}
		chunk, err := domain.NewDocumentChunk(
			indexedDocumentID,
			ChunkID(indexedDocumentID, pageNumber, "text", ordinal),
			ordinal,
			domain.ChunkTypeText,
			text,
			meta,
		)
		if err == nil {
			chunks = append(chunks, chunk)
			ordinal++
		}
	}

	for i, table := range page.Tables {
		text := renderTable(table)
		if chunk, ok := newChunk(indexedDocumentID, ChunkID(indexedDocumentID, pageNumber, "table", i), ordinal, domain.ChunkTypeTable, domain.KindGeneric, pageNumber, text); ok {
			chunks = append(chunks, chunk)
			ordinal++
		}
	}

	for i, image := range page.Images {
		text := renderImage(image)
		if chunk, ok := newChunk(indexedDocumentID, ChunkID(indexedDocumentID, pageNumber, "image", i), ordinal, domain.ChunkTypeImage, domain.KindGeneric, pageNumber, text); ok {
			chunks = append(chunks, chunk)
			ordinal++
		}
	}

	if len(chunks) == 0 {
		return nil, domain.NewValidationError("generic document produced no chunks")
	}
	return chunks, nil
}

// decodeGenericPage accepts a page's structured {text, tables, images}
// object; if content doesn't parse as that shape at all, it is treated as
// a bare text blob so a plain-text upload still chunks.
func decodeGenericPage(content string) genericPageContent {
	var page genericPageContent
	if err := json.Unmarshal([]byte(content), &page); err == nil && (page.Text != "" || len(page.Tables) > 0 || len(page.Images) > 0) {
		return page
	}
	return genericPageContent{Text: content}
}

// chunkPageText splits text into sentences and packs them into chunks of
// at most genericMaxTokens estimated tokens, carrying the last
// genericOverlapSentences sentences into the next chunk.
func chunkPageText(text string) []string {
	sentences := splitSentences(text)
	if len(sentences) == 0 {
		return nil
	}

	var chunks []string
	var current strings.Builder
	currentTokens := 0

	for i, sentence := range sentences {
		sentenceTokens := estimateTokens(sentence)
		if currentTokens+sentenceTokens > genericMaxTokens && current.Len() > 0 {
			chunks = append(chunks, strings.TrimSpace(current.String()))

			overlap := overlapText(sentences, i, genericOverlapSentences)
			current.Reset()
			current.WriteString(overlap)
			current.WriteString(sentence)
			currentTokens = estimateTokens(current.String())
			continue
		}
		if current.Len() > 0 {
			current.WriteString(" ")
		}
		current.WriteString(sentence)
		currentTokens += sentenceTokens
	}

	if strings.TrimSpace(current.String()) != "" {
		chunks = append(chunks, strings.TrimSpace(current.String()))
	}
	return chunks
}

func splitSentences(text string) []string {
	parts := sentenceSplitter.Split(text, -1)
	sentences := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			sentences = append(sentences, s)
		}
	}
	return sentences
}

func overlapText(sentences []string, currentIndex, overlapCount int) string {
	start := currentIndex - overlapCount
	if start < 0 {
		start = 0
	}
	overlap := sentences[start:currentIndex]
	if len(overlap) == 0 {
		return ""
	}
	return strings.Join(overlap, " ") + " "
}

func renderTable(t genericTable) string {
	if len(t.Rows) == 0 {
		return ""
	}
	var b strings.Builder
	if t.Caption != "" {
		b.WriteString(t.Caption)
		b.WriteString(": ")
	}
	for i, row := range t.Rows {
		if i > 0 {
			b.WriteString(" | ")
		}
		b.WriteString(strings.Join(row, ", "))
	}
	return b.String()
}

func renderImage(img genericImage) string {
	switch {
	case img.Description != "" && img.OCRText != "":
		return fmt.Sprintf("%s (Text im Bild: %s)", img.Description, img.OCRText)
	case img.Description != "":
		return img.Description
	case img.OCRText != "":
		return img.OCRText
	default:
		return ""
	}
}
