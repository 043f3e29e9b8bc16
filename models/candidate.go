package models

import "strings"

// AppealCandidate ist ein Suchtreffer eines externen Gerichtsdaten-Providers,
// bevor das Scoring entschieden hat, ob er als Berufung übernommen wird.
type AppealCandidate struct {
	ExternalID   string
	CaseName     string
	DocketNumber string
	DateFiled    string
	Judges       []string
	Citation     string
	Summary      string
	AbsoluteURL  string
}

// ToAppeal wandelt einen akzeptierten Kandidaten in einen persistierbaren
// Appeal-Record um. caseNumber ist das TTAB-Aktenzeichen, über das der
// Treffer gefunden wurde.
func (c *AppealCandidate) ToAppeal(caseNumber string) *FederalCircuitAppeal {
	appeal := &FederalCircuitAppeal{
		CaseNumber:       caseNumber,
		CaseName:         c.CaseName,
		DocketNumber:     c.DocketNumber,
		Citation:         c.Citation,
		CourtListenerID:  c.ExternalID,
		CourtListenerURL: c.AbsoluteURL,
		Judges:           StringList(c.Judges),
	}

	// Ausgang aus der Zusammenfassung, sofern eindeutig erkennbar
	summary := strings.ToLower(c.Summary)
	for _, keyword := range []string{"affirmed", "reversed", "remanded", "dismissed", "granted", "denied"} {
		if strings.Contains(summary, keyword) {
			appeal.Outcome = keyword
			break
		}
	}

	return appeal
}
