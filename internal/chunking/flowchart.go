package chunking

import (
	"encoding/json"
	"fmt"
	"strings"

	"qms-rag-core/internal/domain"
)

// flowchartDoc is the Vision AI JSON shape for one page of a flowchart
// document: a diagram overview, a flat list of process nodes, a flat list
// of decision points, and the edge list connecting them.
type flowchartDoc struct {
	DiagramOverview  *flowchartOverview `json:"diagram_overview,omitempty"`
	DocumentMetadata map[string]string  `json:"document_metadata,omitempty"`
	Nodes            []flowchartNode    `json:"nodes"`
	Decisions        []flowchartDecision `json:"decisions,omitempty"`
	Connections      []flowchartEdge    `json:"connections,omitempty"`
}

type flowchartOverview struct {
	Title       string   `json:"title,omitempty"`
	Description string   `json:"description,omitempty"`
	Purpose     string   `json:"purpose,omitempty"`
	Swimlanes   []string `json:"swimlanes,omitempty"`
}

type flowchartNode struct {
	ID          string   `json:"id"`
	Type        string   `json:"type,omitempty"`
	Label       string   `json:"label"`
	Description string   `json:"description,omitempty"`
	Department  string   `json:"department,omitempty"`
	Inputs      []string `json:"inputs,omitempty"`
	Outputs     []string `json:"outputs,omitempty"`
	Notes       string   `json:"notes,omitempty"`
}

type flowchartDecision struct {
	ID       string   `json:"id"`
	Question string   `json:"question"`
	Options  []string `json:"options,omitempty"`
	Default  string   `json:"default,omitempty"`
}

type flowchartEdge struct {
	From      string `json:"from"`
	To        string `json:"to"`
	Label     string `json:"label,omitempty"`
	Condition string `json:"condition,omitempty"`
	Type      string `json:"type,omitempty"`
}

// FlowchartStrategy implements the Flowchart chunking strategy (§4.1): a
// diagram_overview chunk, one flowchart_node chunk per node, one
// flowchart_decision chunk per decision point, a single flowchart_connections
// chunk listing every edge, and a metadata chunk if document metadata is
// present.
type FlowchartStrategy struct{}

func (FlowchartStrategy) Chunk(indexedDocumentID int64, pageNumber int, content string) ([]domain.DocumentChunk, error) {
	var doc flowchartDoc
	if err := json.Unmarshal([]byte(content), &doc); err != nil {
		return nil, domain.NewValidationError("flowchart content is not valid JSON: " + err.Error())
	}

	var chunks []domain.DocumentChunk
	ordinal := 0
	add := func(chunkID string, ct domain.ChunkType, text string) {
		if chunk, ok := newChunk(indexedDocumentID, chunkID, ordinal, ct, domain.KindFlowchart, pageNumber, text); ok {
			chunks = append(chunks, chunk)
			ordinal++
		}
	}

	if doc.DiagramOverview != nil {
		o := doc.DiagramOverview
		text := joinLines(
			labeledList("Titel", o.Title),
			o.Description,
			labeledList("Zweck", o.Purpose),
			labeledList("Schwimmbahnen", strings.Join(o.Swimlanes, ", ")),
		)
		add(ChunkID(indexedDocumentID, pageNumber, "overview"), domain.ChunkTypeDiagramOverview, text)
	}

	for _, node := range doc.Nodes {
		text := joinLines(
			labelWithType(node.Label, node.Type),
			node.Description,
			labeledList("Verantwortlich", node.Department),
			labeledList("Eingaben", strings.Join(node.Inputs, ", ")),
			labeledList("Ausgaben", strings.Join(node.Outputs, ", ")),
			labeledList("Hinweise", node.Notes),
		)
		role := "node"
		if node.ID != "" {
			role = fmt.Sprintf("node_%s", sanitizeID(node.ID))
		}
		add(ChunkID(indexedDocumentID, pageNumber, role), domain.ChunkTypeFlowchartNode, text)
	}

	for i, d := range doc.Decisions {
		text := joinLines(
			d.Question,
			labeledList("Optionen", strings.Join(d.Options, ", ")),
			labeledList("Standard", d.Default),
		)
		role := fmt.Sprintf("decision_%d", i)
		if d.ID != "" {
			role = fmt.Sprintf("decision_%s", sanitizeID(d.ID))
		}
		add(ChunkID(indexedDocumentID, pageNumber, role), domain.ChunkTypeFlowchartDecision, text)
	}

	if len(doc.Connections) > 0 {
		lines := make([]string, 0, len(doc.Connections))
		for _, e := range doc.Connections {
			line := fmt.Sprintf("%s -> %s", e.From, e.To)
			if e.Label != "" {
				line = fmt.Sprintf("%s [%s]", line, e.Label)
			}
			if e.Condition != "" {
				line = fmt.Sprintf("%s (Bedingung: %s)", line, e.Condition)
			}
			lines = append(lines, line)
		}
		add(ChunkID(indexedDocumentID, pageNumber, "connections"), domain.ChunkTypeFlowchartConnections, strings.Join(lines, "\n"))
	}

	add(ChunkID(indexedDocumentID, pageNumber, "meta"), domain.ChunkTypeMetadata, renderMetadata(doc.DocumentMetadata))

	if len(chunks) == 0 {
		return nil, domain.NewValidationError("flowchart document produced no chunks")
	}
	return chunks, nil
}

func labelWithType(label, typ string) string {
	if typ == "" {
		return label
	}
	return fmt.Sprintf("[%s] %s", typ, label)
}
