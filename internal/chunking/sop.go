package chunking

import (
	"encoding/json"
	"fmt"
	"strings"

	"qms-rag-core/internal/domain"
)

// sopDoc is the Vision AI JSON shape for one page of a standard operating
// procedure: document metadata, an ordered list of process steps (each
// optionally carrying a critical compliance rule), plus the document-wide
// compliance/reference/definition sections that accompany the procedure.
type sopDoc struct {
	DocumentMetadata      map[string]string `json:"document_metadata,omitempty"`
	ProcessSteps          []sopStep         `json:"process_steps"`
	ComplianceRequirements []string         `json:"compliance_requirements,omitempty"`
	CriticalRules         []sopCriticalRule `json:"critical_rules,omitempty"`
	References            []string          `json:"references,omitempty"`
	Definitions           map[string]string `json:"definitions,omitempty"`
}

type sopStep struct {
	StepNumber       int      `json:"step_number"`
	Label            string   `json:"label,omitempty"`
	Description      string   `json:"description"`
	Department       string   `json:"department,omitempty"`
	Inputs           []string `json:"inputs,omitempty"`
	Outputs          []string `json:"outputs,omitempty"`
	DecisionBranches []string `json:"decision_branches,omitempty"`
	Notes            string   `json:"notes,omitempty"`
}

type sopCriticalRule struct {
	StepNumber int    `json:"step_number,omitempty"`
	Rule       string `json:"rule"`
}

// SOPStrategy implements the SOP / Process chunking strategy (§4.1): a
// metadata chunk, one process_step chunk per step, a combined compliance
// chunk, one critical_rule chunk per rule, a references chunk and a
// definitions chunk.
type SOPStrategy struct{}

func (SOPStrategy) Chunk(indexedDocumentID int64, pageNumber int, content string) ([]domain.DocumentChunk, error) {
	var doc sopDoc
	if err := json.Unmarshal([]byte(content), &doc); err != nil {
		return nil, domain.NewValidationError("sop content is not valid JSON: " + err.Error())
	}

	var chunks []domain.DocumentChunk
	ordinal := 0
	add := func(chunkID string, ct domain.ChunkType, text string) {
		if chunk, ok := newChunk(indexedDocumentID, chunkID, ordinal, ct, domain.KindSOP, pageNumber, text); ok {
			chunks = append(chunks, chunk)
			ordinal++
		}
	}

	add(ChunkID(indexedDocumentID, pageNumber, "meta"), domain.ChunkTypeMetadata, renderMetadata(doc.DocumentMetadata))

	for _, step := range doc.ProcessSteps {
		if step.Description == "" {
			continue
		}
		text := joinLines(
			fmt.Sprintf("Prozessschritt %d: %s", step.StepNumber, step.Label),
			step.Description,
			labeledList("Verantwortlich", step.Department),
			labeledList("Eingaben", strings.Join(step.Inputs, ", ")),
			labeledList("Ausgaben", strings.Join(step.Outputs, ", ")),
			labeledList("Entscheidungszweige", strings.Join(step.DecisionBranches, ", ")),
			labeledList("Hinweise", step.Notes),
		)
		add(ChunkID(indexedDocumentID, pageNumber, fmt.Sprintf("step_%d", step.StepNumber)), domain.ChunkTypeProcessStep, text)
	}

	add(ChunkID(indexedDocumentID, pageNumber, "compliance"), domain.ChunkTypeCompliance, strings.Join(doc.ComplianceRequirements, "\n"))

	for i, rule := range doc.CriticalRules {
		if rule.Rule == "" {
			continue
		}
		text := rule.Rule
		if rule.StepNumber > 0 {
			text = fmt.Sprintf("Schritt %d: %s", rule.StepNumber, rule.Rule)
		}
		add(ChunkID(indexedDocumentID, pageNumber, "critical_rule", i), domain.ChunkTypeCriticalRule, text)
	}

	add(ChunkID(indexedDocumentID, pageNumber, "references"), domain.ChunkTypeReferences, strings.Join(doc.References, "\n"))
	add(ChunkID(indexedDocumentID, pageNumber, "definitions"), domain.ChunkTypeDefinitions, renderMetadata(doc.Definitions))

	if len(chunks) == 0 {
		return nil, domain.NewValidationError("sop document produced no chunks")
	}
	return chunks, nil
}

// renderMetadata flattens a field/value map into "field: value" lines; map
// iteration order is non-deterministic in Go, which is fine here since the
// chunk is retrieved by content, not by line position.
func renderMetadata(m map[string]string) string {
	lines := make([]string, 0, len(m))
	for k, v := range m {
		if v == "" {
			continue
		}
		lines = append(lines, fmt.Sprintf("%s: %s", k, v))
	}
	return strings.Join(lines, "\n")
}

func labeledList(label, value string) string {
	if value == "" {
		return ""
	}
	return fmt.Sprintf("%s: %s", label, value)
}
