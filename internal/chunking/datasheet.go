package chunking

import (
	"encoding/json"
	"fmt"
	"strings"

	"qms-rag-core/internal/domain"
)

// datasheetDoc is the Vision AI JSON shape for one page of a technical
// datasheet ("Datenblatt"): metadata, up to four specification groups,
// application/processing info, safety data and product variants.
type datasheetDoc struct {
	DatasheetMetadata    map[string]string   `json:"datasheet_metadata,omitempty"`
	TechnicalSpecifications *datasheetSpecs  `json:"technical_specifications,omitempty"`
	ApplicationInfo      *datasheetAppInfo   `json:"application_info,omitempty"`
	SafetyData           *datasheetSafety    `json:"safety_data,omitempty"`
	ProductVariants      []datasheetVariant  `json:"product_variants,omitempty"`
	AdditionalInformation string             `json:"additional_information,omitempty"`
}

type datasheetSpecs struct {
	Physical      []datasheetField `json:"physical,omitempty"`
	Chemical      []datasheetField `json:"chemical,omitempty"`
	Performance   []datasheetField `json:"performance,omitempty"`
	Environmental []datasheetField `json:"environmental,omitempty"`
}

type datasheetField struct {
	FieldName string `json:"field_name"`
	Value     string `json:"value"`
	Unit      string `json:"unit,omitempty"`
}

type datasheetAppInfo struct {
	Areas                  []string                       `json:"areas,omitempty"`
	MaterialCompatibility  []string                       `json:"material_compatibility,omitempty"`
	ProcessingInstructions []datasheetProcessingInstruction `json:"processing_instructions,omitempty"`
	CuringInformation      string                          `json:"curing_information,omitempty"`
}

type datasheetProcessingInstruction struct {
	StepNumber  int    `json:"step_number"`
	Instruction string `json:"instruction"`
}

// datasheetSafety carries the hazard topic family (§4.1): GHS symbols and
// H/P statements are combined into one safety_symbols chunk; the remaining
// four topics are each independently retrievable.
type datasheetSafety struct {
	GHSSymbols               []string `json:"ghs_symbols,omitempty"`
	HazardStatements         []string `json:"hazard_statements,omitempty"`
	PrecautionaryStatements  []string `json:"precautionary_statements,omitempty"`
	SafetyWarnings           []string `json:"safety_warnings,omitempty"`
	FirstAid                 []string `json:"first_aid,omitempty"`
	StorageRequirements      []string `json:"storage_requirements,omitempty"`
	Disposal                 []string `json:"disposal,omitempty"`
}

type datasheetVariant struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// DatasheetStrategy implements the Datasheet chunking strategy (§4.1):
// datasheet_metadata, up to four technical_specs_* chunks (only for
// populated groups), application-info chunks, the safety chunk family, one
// product_variant chunk per variant, and an additional_information chunk.
type DatasheetStrategy struct{}

func (DatasheetStrategy) Chunk(indexedDocumentID int64, pageNumber int, content string) ([]domain.DocumentChunk, error) {
	var doc datasheetDoc
	if err := json.Unmarshal([]byte(content), &doc); err != nil {
		return nil, domain.NewValidationError("datasheet content is not valid JSON: " + err.Error())
	}

	var chunks []domain.DocumentChunk
	ordinal := 0
	add := func(chunkID string, ct domain.ChunkType, text string) {
		if chunk, ok := newChunk(indexedDocumentID, chunkID, ordinal, ct, domain.KindDatasheet, pageNumber, text); ok {
			chunks = append(chunks, chunk)
			ordinal++
		}
	}

	add(ChunkID(indexedDocumentID, pageNumber, "meta"), domain.ChunkTypeDatasheetMetadata, renderMetadata(doc.DatasheetMetadata))

	if s := doc.TechnicalSpecifications; s != nil {
		add(ChunkID(indexedDocumentID, pageNumber, "specs_physical"), domain.ChunkTypeTechSpecsPhysical, renderFields(s.Physical))
		add(ChunkID(indexedDocumentID, pageNumber, "specs_chemical"), domain.ChunkTypeTechSpecsChemical, renderFields(s.Chemical))
		add(ChunkID(indexedDocumentID, pageNumber, "specs_performance"), domain.ChunkTypeTechSpecsPerformance, renderFields(s.Performance))
		add(ChunkID(indexedDocumentID, pageNumber, "specs_environmental"), domain.ChunkTypeTechSpecsEnvironmental, renderFields(s.Environmental))
	}

	if a := doc.ApplicationInfo; a != nil {
		add(ChunkID(indexedDocumentID, pageNumber, "application_areas"), domain.ChunkTypeApplicationAreas, strings.Join(a.Areas, "\n"))
		add(ChunkID(indexedDocumentID, pageNumber, "material_compatibility"), domain.ChunkTypeMaterialCompatibility, strings.Join(a.MaterialCompatibility, "\n"))
		for _, p := range a.ProcessingInstructions {
			if p.Instruction == "" {
				continue
			}
			text := fmt.Sprintf("Schritt %d: %s", p.StepNumber, p.Instruction)
			add(ChunkID(indexedDocumentID, pageNumber, fmt.Sprintf("processing_instruction_%d", p.StepNumber)), domain.ChunkTypeProcessingInstruction, text)
		}
		add(ChunkID(indexedDocumentID, pageNumber, "curing_information"), domain.ChunkTypeCuringInformation, a.CuringInformation)
	}

	if s := doc.SafetyData; s != nil {
		symbols := joinLines(strings.Join(s.GHSSymbols, ", "), strings.Join(s.HazardStatements, "\n"), strings.Join(s.PrecautionaryStatements, "\n"))
		add(ChunkID(indexedDocumentID, pageNumber, "safety_symbols"), domain.ChunkTypeSafetySymbols, symbols)
		add(ChunkID(indexedDocumentID, pageNumber, "safety_warnings"), domain.ChunkTypeSafetyWarnings, strings.Join(s.SafetyWarnings, "\n"))
		add(ChunkID(indexedDocumentID, pageNumber, "first_aid"), domain.ChunkTypeFirstAid, strings.Join(s.FirstAid, "\n"))
		add(ChunkID(indexedDocumentID, pageNumber, "storage_requirements"), domain.ChunkTypeStorageRequirements, strings.Join(s.StorageRequirements, "\n"))
		add(ChunkID(indexedDocumentID, pageNumber, "disposal"), domain.ChunkTypeDisposal, strings.Join(s.Disposal, "\n"))
	}

	for _, v := range doc.ProductVariants {
		if v.Name == "" {
			continue
		}
		id := v.ID
		if id == "" {
			id = v.Name
		}
		add(ChunkID(indexedDocumentID, pageNumber, fmt.Sprintf("variant_%s", sanitizeID(id))), domain.ChunkTypeProductVariant, v.Name)
	}

	add(ChunkID(indexedDocumentID, pageNumber, "additional_information"), domain.ChunkTypeAdditionalInformation, doc.AdditionalInformation)

	if len(chunks) == 0 {
		return nil, domain.NewValidationError("datasheet document produced no chunks")
	}
	return chunks, nil
}

func renderFields(fields []datasheetField) string {
	lines := make([]string, 0, len(fields))
	for _, f := range fields {
		if f.FieldName == "" || f.Value == "" {
			continue
		}
		line := fmt.Sprintf("%s: %s", f.FieldName, f.Value)
		if f.Unit != "" {
			line = fmt.Sprintf("%s %s", line, f.Unit)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}
