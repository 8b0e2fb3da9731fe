// Package chunking turns a document's prompt text or Vision AI JSON into
// DocumentChunk rows, dispatching on document type the way the QMS
// standard-prompt library encodes it: a flowchart's prompt mentions
// "nodes", a work instruction's mentions "steps" and "step_number", an SOP's
// mentions "process_steps", and anything else falls back to the generic
// text/table/image strategy.
package chunking

import (
	"strings"

	"qms-rag-core/internal/domain"
)

// strategyRule pairs a detection predicate with the DocumentKind it
// implies. Rules are evaluated in order; the first match wins.
type strategyRule struct {
	kind      domain.DocumentKind
	predicate func(promptText string) bool
}

var dispatchTable = []strategyRule{
	{
		kind:      domain.KindFlowchart,
		predicate: func(s string) bool { return strings.Contains(s, `"nodes"`) || strings.Contains(s, `'nodes'`) },
	},
	{
		kind: domain.KindDatasheet,
		predicate: func(s string) bool {
			return strings.Contains(s, `"technical_specifications"`) || strings.Contains(s, `'technical_specifications'`)
		},
	},
	{
		kind: domain.KindWorkInstruction,
		predicate: func(s string) bool {
			return (strings.Contains(s, `"steps"`) || strings.Contains(s, `'steps'`)) &&
				(strings.Contains(s, `"step_number"`) || strings.Contains(s, `'step_number'`))
		},
	},
	{
		kind: domain.KindSOP,
		predicate: func(s string) bool {
			return strings.Contains(s, `"process_steps"`) || strings.Contains(s, `'process_steps'`)
		},
	},
}

// DetectDocumentKind inspects a prompt template body or a piece of Vision
// AI JSON and returns the document kind whose structural markers it
// contains, falling back to KindGeneric. Indexing calls this to pick the
// chunking strategy and stores the result as each chunk's document_type;
// the chat orchestrator picks its prompt template from that stored value,
// so both decisions come from this one table.
func DetectDocumentKind(promptOrVisionJSON string) domain.DocumentKind {
	for _, rule := range dispatchTable {
		if rule.predicate(promptOrVisionJSON) {
			return rule.kind
		}
	}
	return domain.KindGeneric
}

// Strategy builds DocumentChunks for one page of an IndexedDocument's
// Vision JSON content. The Indexing Use Case calls it once per page, in
// page order, and concatenates the results (§4.1, §4.5).
type Strategy interface {
	Chunk(indexedDocumentID int64, pageNumber int, content string) ([]domain.DocumentChunk, error)
}

// ForKind returns the Strategy implementation registered for kind.
func ForKind(kind domain.DocumentKind) Strategy {
	switch kind {
	case domain.KindFlowchart:
		return FlowchartStrategy{}
	case domain.KindDatasheet:
		return DatasheetStrategy{}
	case domain.KindWorkInstruction:
		return WorkInstructionStrategy{}
	case domain.KindSOP:
		return SOPStrategy{}
	default:
		return GenericStrategy{}
	}
}
