package chatorchestrator

import (
	"strings"
	"testing"

	"qms-rag-core/internal/domain"
)

func TestInstructionsForKind_EachKindCitesReferenceFormat(t *testing.T) {
	kinds := []domain.DocumentKind{
		domain.KindFlowchart, domain.KindWorkInstruction, domain.KindSOP, domain.KindDatasheet, domain.KindGeneric,
	}
	for _, k := range kinds {
		instr := instructionsForKind(k)
		if !strings.Contains(instr, "**Referenz**: chunk") {
			t.Errorf("kind %s missing inline citation instruction", k)
		}
		if !strings.Contains(instr, "Deutsch") {
			t.Errorf("kind %s missing German-language instruction", k)
		}
	}
}

func TestBuildPrompt_NumbersChunksForCitation(t *testing.T) {
	refs := []domain.SourceReference{
		{ChunkID: "c1", Excerpt: "erster Inhalt", DocumentName: "SOP-1"},
		{ChunkID: "c2", Excerpt: "zweiter Inhalt", DocumentName: "SOP-1"},
	}
	_, userPrompt := buildPrompt("Testfrage", refs, domain.KindSOP)

	if !strings.Contains(userPrompt, "Chunk 1:") || !strings.Contains(userPrompt, "Chunk 2:") {
		t.Errorf("expected numbered chunks in prompt, got: %s", userPrompt)
	}
	if !strings.Contains(userPrompt, "Testfrage") {
		t.Error("expected question text embedded in prompt")
	}
}
