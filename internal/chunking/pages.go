package chunking

import (
	"encoding/json"
	"strings"

	"qms-rag-core/internal/domain"
)

// PageInput is one page's raw vision-AI content, ready to hand to a
// Strategy's Chunk method.
type PageInput struct {
	Number  int
	Content string
}

// pagesWrapper is the legacy per-page envelope: {"pages": [{"page_number":
// 1, "content": {...}}, ...]}.
type pagesWrapper struct {
	Pages []struct {
		PageNumber int             `json:"page_number"`
		Content    json.RawMessage `json:"content"`
	} `json:"pages"`
}

// SplitPages resolves raw vision-AI content for a whole document into an
// ordered list of per-page content. A root-level object is canonical and
// treated as a single implicit page 1; a top-level "pages" array is
// accepted as legacy input (see the Open Question decision in DESIGN.md).
func SplitPages(raw string) ([]PageInput, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, domain.NewValidationError("document vision content is empty")
	}

	var wrapped pagesWrapper
	if err := json.Unmarshal([]byte(raw), &wrapped); err == nil && len(wrapped.Pages) > 0 {
		pages := make([]PageInput, 0, len(wrapped.Pages))
		for _, p := range wrapped.Pages {
			pages = append(pages, PageInput{Number: p.PageNumber, Content: string(p.Content)})
		}
		return pages, nil
	}

	return []PageInput{{Number: 1, Content: raw}}, nil
}
