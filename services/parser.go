package services

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/anseljh/ttab-parser/models"
)

// documentTags sind die Top-Level-Elemente, die je ein Verfahrensdokument
// kapseln. Die Jahrgänge der Bulk-Dateien benennen sie unterschiedlich.
var documentTags = []string{"proceeding-entry", "document", "proceeding", "case", "filing"}

// Parser verarbeitet TTAB-XML-Dateien zu Opinion-Records. Fehler in einem
// einzelnen Dokument brechen die Datei nicht ab, sondern werden gezählt.
type Parser struct {
	extractor *Extractor
	logger    *zap.Logger

	Stats models.ProcessingStats
}

// NewParser erstellt einen neuen Parser.
func NewParser(logger *zap.Logger) *Parser {
	start := time.Now().UTC()
	return &Parser{
		extractor: NewExtractor(logger),
		logger:    logger,
		Stats:     models.ProcessingStats{StartTime: &start},
	}
}

// ParseFile liest eine XML-Datei (auch .gz oder .zip) und liefert alle
// erkannten Entscheidungsdokumente als Opinion-Records.
func (p *Parser) ParseFile(path string) ([]*models.Opinion, error) {
	reader, err := OpenXMLFile(path)
	if err != nil {
		return nil, fmt.Errorf("öffnen von %s fehlgeschlagen: %w", path, err)
	}
	defer reader.Close()

	var opinions []*models.Opinion
	err = StreamDocuments(reader, documentTags, func(doc *Element) error {
		p.Stats.DocumentsProcessed++
		if !IsDecisionDocument(doc) {
			return nil
		}
		p.Stats.OpinionsFound++

		opinion, parseErr := p.parseDocument(doc, path)
		if parseErr != nil {
			// Einzelfehler isolieren, der Stream läuft weiter
			p.Stats.Errors++
			p.logger.Warn("Dokument konnte nicht geparst werden",
				zap.String("file", path),
				zap.Error(parseErr))
			return nil
		}
		p.Stats.OpinionsParsed++
		opinions = append(opinions, opinion)
		return nil
	})
	if err != nil {
		return opinions, fmt.Errorf("XML-Stream in %s fehlgeschlagen: %w", path, err)
	}

	p.Stats.FilesProcessed++
	p.logger.Info("Datei verarbeitet",
		zap.String("file", path),
		zap.Int("opinions", len(opinions)))
	return opinions, nil
}

// ParseDirectory verarbeitet alle XML-Dateien eines Verzeichnisses in
// stabiler Reihenfolge.
func (p *Parser) ParseDirectory(dir string) ([]*models.Opinion, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("lesen von %s fehlgeschlagen: %w", dir, err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if IsXMLFile(entry.Name()) {
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(files)

	var opinions []*models.Opinion
	for _, file := range files {
		fileOpinions, err := p.ParseFile(file)
		if err != nil {
			p.Stats.Errors++
			p.logger.Error("Datei übersprungen", zap.String("file", file), zap.Error(err))
			continue
		}
		opinions = append(opinions, fileOpinions...)
	}

	end := time.Now().UTC()
	p.Stats.EndTime = &end
	return opinions, nil
}

// parseDocument führt die Extraktoren in fester Reihenfolge aus und baut
// daraus einen Opinion-Record. Die Reihenfolge ist relevant: die
// Parteirollen-Auflösung braucht den Verfahrenstyp, die Vertretungs-
// Zusammenfassung die Parteien.
func (p *Parser) parseDocument(doc *Element, sourceFile string) (*models.Opinion, error) {
	opinion := &models.Opinion{SourceFile: filepath.Base(sourceFile)}

	p.extractor.ExtractCaseInfo(doc, opinion)
	p.extractor.ExtractDates(doc, opinion)
	p.extractor.ExtractParties(doc, opinion)
	p.extractor.ExtractJudges(doc, opinion)
	p.extractor.ExtractOutcome(doc, opinion)
	p.extractor.ExtractMarks(doc, opinion)
	p.extractor.ExtractLegalRepresentation(opinion)
	p.extractor.CheckAppealIndicators(doc, opinion)

	opinion.Winner = determineWinner(opinion)
	opinion.Warnings = Validate(opinion)

	raw, err := json.Marshal(map[string]any{
		"tag":  doc.Tag,
		"text": doc.FlattenText(),
	})
	if err == nil {
		opinion.RawData = raw
	}

	return opinion, nil
}

// determineWinner leitet die obsiegende Partei aus Ausgang und Rollen ab.
func determineWinner(op *models.Opinion) string {
	switch op.Outcome {
	case models.OutcomeSustained, models.OutcomeGranted:
		if party := op.OpposerPetitioner(); party != nil {
			return party.Name
		}
	case models.OutcomeDenied, models.OutcomeDismissed:
		if party := op.ApplicantRegistrant(); party != nil {
			return party.Name
		}
	}
	return ""
}

// Validate prüft einen Opinion-Record auf Vollständigkeit. Warnungen
// verwerfen den Record nie, sie werden nur protokolliert.
func Validate(op *models.Opinion) []string {
	var warnings []string

	if op.CaseNumber == "" && op.ProceedingNumber == "" {
		warnings = append(warnings, "kein Aktenzeichen gefunden")
	}
	if len(op.Parties) == 0 {
		warnings = append(warnings, "keine Parteien gefunden")
	} else if len(op.Parties) < 2 {
		warnings = append(warnings, "weniger als zwei Parteien gefunden")
	}
	if len(op.Judges) == 0 {
		warnings = append(warnings, "keine Richter gefunden")
	}
	if op.Outcome == models.OutcomeUnknown {
		warnings = append(warnings, "kein Verfahrensausgang erkannt")
	}
	if op.FilingDate == nil && op.DecisionDate == nil {
		warnings = append(warnings, "weder Einreichungs- noch Entscheidungsdatum gefunden")
	}

	typed := false
	for _, party := range op.Parties {
		if party.PartyType != models.PartyUnknown {
			typed = true
			break
		}
	}
	if len(op.Parties) > 0 && !typed {
		warnings = append(warnings, "keine Parteirollen aufgelöst")
	}

	return warnings
}

// FormatStats liefert eine Zusammenfassung der Parser-Statistik.
func (p *Parser) FormatStats() string {
	if p.Stats.EndTime == nil {
		end := time.Now().UTC()
		p.Stats.EndTime = &end
	}
	return strings.TrimSpace(p.Stats.Summary())
}
