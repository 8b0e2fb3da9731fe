package chatorchestrator

import (
	"fmt"
	"strings"

	"qms-rag-core/internal/domain"
)

const citationInstructionExample = `Die Referenz muss direkt nach dem verwendeten Text stehen, NICHT am Ende.`

// instructionsForKind returns the document-type-specific German answer
// instructions, mirroring the four standard prompts the original's prompt
// library ships one per document type, plus a generic fallback.
func instructionsForKind(kind domain.DocumentKind) string {
	switch kind {
	case domain.KindFlowchart:
		return `ANWEISUNGEN (Flussdiagramm):
1. Beantworte die Frage präzise basierend auf dem Prozessfluss und den Entscheidungspunkten
2. Fokussiere dich auf die relevanten Schritte und Entscheidungen im Prozess
3. Verwende konkrete Informationen aus den Nodes und Verbindungen
4. Wenn nach spezifischen Informationen gefragt wird (z.B. Artikelnummern, Schritte), gib diese exakt an
5. Antworte auf Deutsch, kurz und präzise
6. Wenn die Antwort nicht im Kontext steht, sage das ehrlich
7. WICHTIG: Wenn du Informationen aus einem Chunk verwendest, füge direkt nach dem entsprechenden Satz eine Referenz hinzu:
   **Referenz**: chunk [Nummer]
   Beispiel: "Im Schritt 6 wird der Fehler geprüft. **Referenz**: chunk 1"
   ` + citationInstructionExample

	case domain.KindWorkInstruction:
		return `ANWEISUNGEN (Arbeitsanweisung):
1. Beantworte die Frage präzise basierend auf den konkreten Schritten und Anweisungen
2. Verwende die exakten Schrittnummern und Beschreibungen aus dem Dokument
3. Wenn nach spezifischen Informationen gefragt wird (z.B. Artikelnummern, Teilenummern), gib diese EXAKT aus dem Dokument an
4. Fokussiere dich auf die relevanten Textpassagen - vermeide unnötige Erklärungen
5. Antworte auf Deutsch, kurz und präzise - nur die relevanten Informationen
6. Wenn die Antwort nicht im Kontext steht, sage das ehrlich
7. WICHTIG: Wenn du Informationen aus einem Chunk verwendest, füge direkt nach dem entsprechenden Satz eine Referenz hinzu:
   **Referenz**: chunk [Nummer]
   Beispiel: "Die Artikelnummer der Passfeder ist 123.456.789. **Referenz**: chunk 1"
   ` + citationInstructionExample

	case domain.KindSOP:
		return `ANWEISUNGEN (SOP/Prozess):
1. Beantworte die Frage präzise basierend auf den Prozessschritten und Compliance-Anforderungen
2. Verwende die konkreten Prozessschritte und kritischen Regeln aus dem Dokument
3. Wenn nach spezifischen Informationen gefragt wird, gib diese exakt an
4. Strukturiere deine Antwort nach Prozessschritten wenn relevant
5. Antworte auf Deutsch, präzise und fokussiert
6. Wenn die Antwort nicht im Kontext steht, sage das ehrlich
7. WICHTIG: Wenn du Informationen aus einem Chunk verwendest, füge direkt nach dem entsprechenden Satz eine Referenz hinzu:
   **Referenz**: chunk [Nummer]
   Beispiel: "Im Prozessschritt 6 wird der Fehler geprüft. **Referenz**: chunk 1"
   ` + citationInstructionExample

	case domain.KindDatasheet:
		return `ANWEISUNGEN (Datenblatt):
1. Beantworte die Frage präzise basierend auf den technischen Spezifikationen
2. Gib Feldwerte exakt so an, wie sie im Dokument stehen, inklusive Einheiten
3. Wenn nach spezifischen Werten gefragt wird, gib diese exakt an
4. Antworte auf Deutsch, kurz und präzise
5. Wenn die Antwort nicht im Kontext steht, sage das ehrlich
6. WICHTIG: Wenn du Informationen aus einem Chunk verwendest, füge direkt nach dem entsprechenden Satz eine Referenz hinzu:
   **Referenz**: chunk [Nummer]
   Beispiel: "Die Betriebsspannung beträgt 24V. **Referenz**: chunk 1"
   ` + citationInstructionExample

	default:
		return genericInstructions()
	}
}

func genericInstructions() string {
	return `ANWEISUNGEN:
1. Beantworte die Frage präzise und hilfreich basierend auf dem strukturierten Kontext
2. Verwende die Metadaten (Überschriften, Seiten, Typ) für präzise Referenzen
3. Wenn nach spezifischen Informationen gefragt wird (z.B. Artikelnummern), gib diese exakt an
4. Strukturiere deine Antwort übersichtlich mit klaren Abschnitten
5. Antworte auf Deutsch
6. Wenn die Antwort nicht im Kontext steht, sage das ehrlich
7. WICHTIG: Wenn du Informationen aus einem Chunk verwendest, füge direkt nach dem entsprechenden Satz/Absatz eine Referenz hinzu im Format:
   **Referenz**: chunk [Nummer]
   Beispiel: "Die Artikelnummer ist 123.456.789. **Referenz**: chunk 1"
   Die Referenz muss direkt unter oder nach dem Text stehen, der aus diesem Chunk stammt, NICHT am Ende der gesamten Antwort.`
}

// buildContext renders numbered chunks with their source reference metadata
// so the model can cite "chunk N" against a one-indexed list.
func buildContext(refs []domain.SourceReference) string {
	var b strings.Builder
	for i, r := range refs {
		fmt.Fprintf(&b, "Chunk %d:\n", i+1)
		if r.DocumentName != "" {
			fmt.Fprintf(&b, "Dokument: %s\n", r.DocumentName)
		}
		if r.Ordinal > 0 {
			fmt.Fprintf(&b, "Abschnitt: %d\n", r.Ordinal)
		}
		b.WriteString("\nInhalt:\n")
		b.WriteString(r.Excerpt)
		b.WriteString("\n\n---\n")
	}
	return b.String()
}

// buildPrompt assembles the full system/user prompt pair for one question,
// selecting the document-type instructions detected from kind.
func buildPrompt(question string, refs []domain.SourceReference, kind domain.DocumentKind) (systemPrompt, userPrompt string) {
	systemPrompt = "Du bist ein Experte für Qualitätsmanagement und medizinische Dokumentation. Beantworte die folgende Frage basierend auf den bereitgestellten strukturierten Dokument-Auszügen."

	context := buildContext(refs)
	instructions := instructionsForKind(kind)

	userPrompt = fmt.Sprintf(`KONTEXT (aus indexierten Dokumenten mit Metadaten):
%s

FRAGE: %s

%s

ANTWORT (strukturiert mit Metadaten-Referenzen direkt im Text):`, context, question, instructions)

	return systemPrompt, userPrompt
}
