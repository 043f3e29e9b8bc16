package services

import (
	"strconv"
	"strings"
)

// TTAB-Entscheidungen tragen prosecution-entry-Codes in den Bereichen
// 802-849 und 855-894; 850-854 sind explizit ausgenommen.
const (
	decisionCodeLow1  = 802
	decisionCodeHigh1 = 849
	decisionCodeLow2  = 855
	decisionCodeHigh2 = 894
)

// documentTypeKeywords sind die Heuristik-Schlüsselwörter für den
// Dokumenttyp, falls keine Codes vorhanden sind.
var documentTypeKeywords = []string{
	"opinion",
	"decision",
	"ruling",
	"judgment",
	"order",
}

// decisionPhrases sind Formulierungen, die praktisch nur in
// Entscheidungstexten vorkommen.
var decisionPhrases = []string{
	"it is ordered",
	"it is decided",
	"we conclude",
	"we hold",
	"judgment for",
	"proceeding is dismissed",
	"opposition is sustained",
	"opposition is denied",
}

// isDecisionCode prüft, ob ein Code in den gültigen Entscheidungsbereichen liegt.
func isDecisionCode(code int) bool {
	return (code >= decisionCodeLow1 && code <= decisionCodeHigh1) ||
		(code >= decisionCodeLow2 && code <= decisionCodeHigh2)
}

// hasDecisionCode durchsucht alle prosecution-entry-Elemente nach einem
// numerischen Code im Entscheidungsbereich. Nicht-numerische Codes werden
// übersprungen.
func hasDecisionCode(elem *Element) bool {
	for _, entry := range elem.FindAll("prosecution-entry") {
		codeElem := entry.FindFirst("code")
		if codeElem == nil {
			continue
		}
		codeText := strings.TrimSpace(codeElem.FlattenText())
		if codeText == "" {
			continue
		}
		code, err := strconv.Atoi(codeText)
		if err != nil {
			continue
		}
		if isDecisionCode(code) {
			return true
		}
	}
	return false
}

// matchesDocumentType prüft den document-type-Tag gegen die Schlüsselwörter.
func matchesDocumentType(elem *Element) bool {
	typeElem := elem.FindFirst("document-type")
	if typeElem == nil {
		return false
	}
	docType := strings.ToLower(typeElem.FlattenText())
	for _, keyword := range documentTypeKeywords {
		if strings.Contains(docType, keyword) {
			return true
		}
	}
	return false
}

// hasJudgeElement prüft, ob richterbezogene Elemente vorhanden sind.
func hasJudgeElement(elem *Element) bool {
	return elem.FindFirst("judges") != nil || elem.FindFirst("judge") != nil
}

// containsDecisionPhrase prüft den Volltext auf Entscheidungsformulierungen.
func containsDecisionPhrase(elem *Element) bool {
	content := strings.ToLower(elem.FlattenText())
	for _, phrase := range decisionPhrases {
		if strings.Contains(content, phrase) {
			return true
		}
	}
	return false
}

// IsDecisionDocument entscheidet, ob ein Dokumentelement eine Entscheidung
// darstellt. Primär zählen die prosecution-entry-Codes; die Text-Heuristiken
// greifen nur, wenn kein Code gefunden wurde.
func IsDecisionDocument(elem *Element) bool {
	if hasDecisionCode(elem) {
		return true
	}
	if matchesDocumentType(elem) {
		return true
	}
	if hasJudgeElement(elem) {
		return true
	}
	return containsDecisionPhrase(elem)
}
