package services

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/anseljh/ttab-parser/models"
	"github.com/anseljh/ttab-parser/providers"
)

// Empirisch kalibrierte Scoring-Gewichte für das Berufungs-Matching.
// Die Schwelle von 3 verlangt mehr als einen einzelnen Parteinamen-Treffer.
const (
	scorePartyMatch          = 2
	scoreBoardReference      = 3
	scoreFiledWithinYear     = 2
	scoreFiledWithinTwoYears = 1
	matchThreshold           = 3

	identifierSearchLimit = 10
	partySearchLimit      = 15
	scoredCandidates      = 10
	maxPartyTerms         = 5
)

var (
	identifierCleaner = regexp.MustCompile(`[^\w\d\-]`)
	partyNameCleaner  = regexp.MustCompile(`[^\w\s]`)
)

// AppealMatcher sucht zu einer TTAB-Entscheidung die zugehörige
// Federal-Circuit-Berufung. Zwei Strategien: erst die präzise
// Aktenzeichen-Suche, dann die unscharfe Parteinamen-Suche mit Scoring.
type AppealMatcher struct {
	provider providers.SearchProvider
	logger   *zap.Logger
}

// NewAppealMatcher erstellt einen neuen Matcher.
func NewAppealMatcher(provider providers.SearchProvider, logger *zap.Logger) *AppealMatcher {
	return &AppealMatcher{provider: provider, logger: logger}
}

// Enabled gibt an, ob ein einsatzbereiter Provider konfiguriert ist.
func (m *AppealMatcher) Enabled() bool {
	return m.provider != nil && m.provider.Enabled()
}

// FindAppeal sucht die Berufung zu einer Entscheidung. Kein Treffer ist
// kein Fehler: die meisten TTAB-Entscheidungen werden nie angefochten.
func (m *AppealMatcher) FindAppeal(op *models.Opinion) (*models.FederalCircuitAppeal, error) {
	if !m.Enabled() {
		return nil, nil
	}

	// Strategie 1: Aktenzeichen-Suche. Ein Treffer über den Identifier ist
	// präzise genug, um das erste Ergebnis ohne Scoring zu übernehmen.
	for _, identifier := range op.CaseIdentifiers() {
		appeal, err := m.searchByIdentifier(identifier)
		if err != nil {
			// Ein fehlgeschlagener Provider-Aufruf beendet die Suche nicht,
			// die Parteinamen-Strategie bleibt als Rückfallebene.
			m.logger.Warn("Aktenzeichen-Suche fehlgeschlagen",
				zap.String("identifier", identifier),
				zap.Error(err))
			continue
		}
		if appeal != nil {
			m.logger.Info("Berufung über Aktenzeichen gefunden",
				zap.String("case_number", identifier),
				zap.String("appeal", appeal.CaseName))
			return appeal, nil
		}
	}

	// Strategie 2: unscharfe Parteinamen-Suche mit Scoring
	return m.searchByParties(op)
}

func (m *AppealMatcher) searchByIdentifier(identifier string) (*models.FederalCircuitAppeal, error) {
	clean := CleanText(identifierCleaner.ReplaceAllString(identifier, " "))

	query := fmt.Sprintf("%q", identifier)
	if clean != "" && clean != identifier {
		query = fmt.Sprintf("%q OR %q", identifier, clean)
	}

	candidates, err := m.provider.Search(query, identifierSearchLimit)
	if err != nil {
		return nil, fmt.Errorf("aktenzeichen-Suche für %s fehlgeschlagen: %w", identifier, err)
	}
	if len(candidates) == 0 {
		return nil, nil
	}
	return m.buildAppeal(candidates[0], identifier), nil
}

func (m *AppealMatcher) searchByParties(op *models.Opinion) (*models.FederalCircuitAppeal, error) {
	var terms []string
	for _, name := range op.PartyNames() {
		clean := CleanText(partyNameCleaner.ReplaceAllString(name, ""))
		if len(clean) > 2 {
			terms = append(terms, clean)
		}
		if len(terms) == maxPartyTerms {
			break
		}
	}
	if len(terms) == 0 {
		return nil, nil
	}

	parts := make([]string, 0, len(terms)+3)
	for _, term := range terms {
		parts = append(parts, fmt.Sprintf("%q", term))
	}
	parts = append(parts, `"TTAB"`, `"Trademark Trial and Appeal Board"`)
	if op.CaseTitle != "" {
		parts = append(parts, fmt.Sprintf("%q", op.CaseTitle))
	}
	query := strings.Join(parts, " OR ")

	candidates, err := m.provider.Search(query, partySearchLimit)
	if err != nil {
		return nil, fmt.Errorf("parteinamen-Suche fehlgeschlagen: %w", err)
	}
	if len(candidates) > scoredCandidates {
		candidates = candidates[:scoredCandidates]
	}

	var best *models.AppealCandidate
	bestScore := 0
	for _, candidate := range candidates {
		score := scoreCandidate(candidate, terms, op.DecisionDate)
		if score > bestScore {
			best, bestScore = candidate, score
		}
	}
	if best == nil || bestScore < matchThreshold {
		return nil, nil
	}

	identifier := op.CaseNumber
	if identifier == "" {
		identifier = op.ProceedingNumber
	}
	m.logger.Info("Berufung über Parteinamen gefunden",
		zap.String("case_number", identifier),
		zap.String("appeal", best.CaseName),
		zap.Int("score", bestScore))
	return m.buildAppeal(best, identifier), nil
}

// scoreCandidate bewertet einen Kandidaten gegen Parteinamen und
// Entscheidungsdatum. Eine Berufung wird nach der Entscheidung eingereicht,
// deshalb zählen nur Einreichungsdaten nach dem Entscheidungsdatum.
func scoreCandidate(candidate *models.AppealCandidate, partyTerms []string, decisionDate *time.Time) int {
	caseName := strings.ToLower(candidate.CaseName)
	score := 0

	for _, term := range partyTerms {
		if strings.Contains(caseName, strings.ToLower(term)) {
			score += scorePartyMatch
		}
	}

	if strings.Contains(caseName, "ttab") || strings.Contains(caseName, "trademark trial") {
		score += scoreBoardReference
	}

	if decisionDate != nil {
		if filed := ParseXMLDate(candidate.DateFiled); filed != nil && filed.After(*decisionDate) {
			switch days := int(filed.Sub(*decisionDate).Hours() / 24); {
			case days <= 365:
				score += scoreFiledWithinYear
			case days <= 730:
				score += scoreFiledWithinTwoYears
			}
		}
	}

	return score
}

func (m *AppealMatcher) buildAppeal(candidate *models.AppealCandidate, caseNumber string) *models.FederalCircuitAppeal {
	appeal := candidate.ToAppeal(caseNumber)
	appeal.FilingDate = ParseXMLDate(candidate.DateFiled)
	return appeal
}
