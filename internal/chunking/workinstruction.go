package chunking

import (
	"encoding/json"
	"fmt"
	"strings"

	"qms-rag-core/internal/domain"
)

// workInstructionDoc is the Vision AI JSON shape for one page of a work
// instruction: document metadata, a process overview, and an ordered list
// of concrete assembly/test steps.
type workInstructionDoc struct {
	DocumentMetadata map[string]string     `json:"document_metadata,omitempty"`
	ProcessOverview  *workInstrOverview    `json:"process_overview,omitempty"`
	Steps            []workInstructionStep `json:"steps"`
}

type workInstrOverview struct {
	Goal           string `json:"goal,omitempty"`
	Scope          string `json:"scope,omitempty"`
	GeneralSafety  string `json:"general_safety,omitempty"`
}

type workInstructionStep struct {
	StepNumber  int                `json:"step_number"`
	Title       string             `json:"title,omitempty"`
	Description string             `json:"description"`
	ArticleData string             `json:"article_data,omitempty"`
	Consumables []workInstrConsumable `json:"consumables,omitempty"`
	Tools       []string           `json:"tools,omitempty"`
	SafetyInstructions []string    `json:"safety_instructions,omitempty"`
	QualityChecks      []string    `json:"quality_checks,omitempty"`
}

// workInstrConsumable is a chemical/adhesive/material used by a step. Per
// §4.1 the hazard note must be carried verbatim into the chunk text, not
// summarized.
type workInstrConsumable struct {
	Name       string `json:"name"`
	HazardNote string `json:"hazard_note,omitempty"`
}

// WorkInstructionStrategy implements the Work Instruction chunking
// strategy (§4.1): a metadata chunk, a process_overview chunk, and one
// work_step chunk per step, flattening each step's consumables (with
// verbatim hazard notes), tools, safety instructions and quality checks
// into self-contained multi-line text.
type WorkInstructionStrategy struct{}

func (WorkInstructionStrategy) Chunk(indexedDocumentID int64, pageNumber int, content string) ([]domain.DocumentChunk, error) {
	var doc workInstructionDoc
	if err := json.Unmarshal([]byte(content), &doc); err != nil {
		return nil, domain.NewValidationError("work instruction content is not valid JSON: " + err.Error())
	}

	var chunks []domain.DocumentChunk
	ordinal := 0
	add := func(chunkID string, ct domain.ChunkType, text string) {
		if chunk, ok := newChunk(indexedDocumentID, chunkID, ordinal, ct, domain.KindWorkInstruction, pageNumber, text); ok {
			chunks = append(chunks, chunk)
			ordinal++
		}
	}

	add(ChunkID(indexedDocumentID, pageNumber, "meta"), domain.ChunkTypeMetadata, renderMetadata(doc.DocumentMetadata))

	if doc.ProcessOverview != nil {
		text := joinLines(
			labeledList("Ziel", doc.ProcessOverview.Goal),
			labeledList("Geltungsbereich", doc.ProcessOverview.Scope),
			labeledList("Allgemeine Sicherheit", doc.ProcessOverview.GeneralSafety),
		)
		add(ChunkID(indexedDocumentID, pageNumber, "overview"), domain.ChunkTypeProcessOverview, text)
	}

	for _, step := range doc.Steps {
		if step.Description == "" {
			continue
		}
		var consumableLines []string
		for _, c := range step.Consumables {
			line := c.Name
			if c.HazardNote != "" {
				line = fmt.Sprintf("%s (Gefahrenhinweis: %s)", c.Name, c.HazardNote)
			}
			consumableLines = append(consumableLines, line)
		}
		text := joinLines(
			fmt.Sprintf("Schritt %d: %s", step.StepNumber, step.Title),
			step.Description,
			labeledList("Artikeldaten", step.ArticleData),
			labeledList("Verbrauchsmaterial", strings.Join(consumableLines, "; ")),
			labeledList("Werkzeuge", strings.Join(step.Tools, ", ")),
			labeledList("Sicherheitshinweise", strings.Join(step.SafetyInstructions, "; ")),
			labeledList("Qualitätsprüfungen", strings.Join(step.QualityChecks, "; ")),
		)
		add(ChunkID(indexedDocumentID, pageNumber, fmt.Sprintf("step_%d", step.StepNumber)), domain.ChunkTypeWorkStep, text)
	}

	if len(chunks) == 0 {
		return nil, domain.NewValidationError("work instruction document produced no chunks")
	}
	return chunks, nil
}
