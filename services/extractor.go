package services

import (
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/anseljh/ttab-parser/models"
)

var (
	// Aktenzeichen-Muster für den Freitext-Fallback, in Prioritätsreihenfolge.
	caseNumberPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\b\d{2}/\d{6}\b`),
		regexp.MustCompile(`\b\d{8}\b`),
		regexp.MustCompile(`(?i)\bNo\.\s*\d{2}/\d{6}\b`),
		regexp.MustCompile(`(?i)\bProceeding\s+No\.\s*\d{2}/\d{6}\b`),
	}

	// Richter-Muster, in Prioritätsreihenfolge. Entscheidungstexte schreiben
	// Richternamen teils kapitalisiert ("Williams"), teils in Versalien
	// ("SEEHERMAN"); die Namensklasse akzeptiert beides, verlangt aber einen
	// Großbuchstaben am Wortanfang, damit nachfolgender Fließtext nicht
	// mit eingefangen wird.
	judgePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i:Administrative Trademark Judge)\s+([A-Z][A-Za-z]+(?:\s+(?:(?i:and)\s+)?[A-Z][A-Za-z]+)*)`),
		regexp.MustCompile(`\b(?i:Judge)\s+([A-Z][A-Za-z]+(?:\s+(?:(?i:and)\s+)?[A-Z][A-Za-z]+)*)`),
		regexp.MustCompile(`\b(?i:Before)\s+([A-Z][A-Za-z]+(?:\s+(?:(?i:and)\s+)?[A-Z][A-Za-z]+)*(?:,\s*(?:(?i:and)\s+)?[A-Z][A-Za-z]+(?:\s+(?:(?i:and)\s+)?[A-Z][A-Za-z]+)*)*)`),
	}

	// Trennt Namenslisten wie "SEEHERMAN, QUINN and HAIRSTON" in Einzelnamen.
	judgeNameSplitter = regexp.MustCompile(`(?i),|\band\b`)
)

// outcomeRule verbindet Suchphrasen mit einem Verfahrensausgang. Die Regeln
// werden der Reihe nach geprüft: verfahrensspezifische Formulierungen stehen
// vor den generischen, damit "opposition is sustained" nicht als generisches
// "denied" gewertet wird, das später im Text auftaucht.
type outcomeRule struct {
	phrases []string
	outcome models.OutcomeType
}

var outcomeRules = []outcomeRule{
	// Opposition
	{[]string{"opposition is sustained", "sustain the opposition"}, models.OutcomeSustained},
	{[]string{"opposition is denied", "deny the opposition"}, models.OutcomeDenied},
	{[]string{"opposition is dismissed", "dismiss the opposition"}, models.OutcomeDismissed},
	// Cancellation
	{[]string{"cancellation is granted", "grant the petition"}, models.OutcomeGranted},
	{[]string{"cancellation is denied", "deny the petition"}, models.OutcomeDenied},
	{[]string{"cancellation is dismissed", "dismiss the petition"}, models.OutcomeDismissed},
	// Appeal
	{[]string{"reversed"}, models.OutcomeReversed},
	{[]string{"affirmed"}, models.OutcomeAffirmed},
	{[]string{"remanded"}, models.OutcomeRemanded},
	// Settlement
	{[]string{"settled", "settlement"}, models.OutcomeSettled},
	{[]string{"withdrawn"}, models.OutcomeWithdrawn},
	// Generisch
	{[]string{"granted"}, models.OutcomeGranted},
	{[]string{"denied"}, models.OutcomeDenied},
	{[]string{"dismissed"}, models.OutcomeDismissed},
}

// prefixRule bildet einen Aktenzeichen-Präfix auf einen Verfahrenstyp ab.
// Geschlossene, geordnete Liste; andere Präfixe lassen den Typ ungesetzt.
type prefixRule struct {
	prefixes []string
	procType models.ProceedingType
}

var proceedingPrefixRules = []prefixRule{
	{[]string{"91"}, models.ProceedingOpposition},
	{[]string{"92"}, models.ProceedingCancellation},
	{[]string{"70", "71", "72", "73", "74"}, models.ProceedingAppeal},
}

// appealIndicators sind Formulierungen, die auf eine Federal-Circuit-Berufung hindeuten.
var appealIndicators = []string{
	"federal circuit",
	"court of appeals",
	"appeal to the federal circuit",
	"notice of appeal",
	"appeal filed",
	"appealed to",
}

// Extractor bündelt die Feld-Extraktoren. Jeder Extraktor probiert seine
// Tag-Kandidaten in fester Reihenfolge und fällt dann auf Freitext-Muster
// zurück; fehlende Felder bleiben still ungesetzt.
type Extractor struct {
	Logger *zap.Logger
}

// NewExtractor erstellt einen neuen Extractor.
func NewExtractor(logger *zap.Logger) *Extractor {
	return &Extractor{Logger: logger}
}

// ExtractCaseInfo extrahiert Aktenzeichen, Titel und Verfahrenstyp.
func (x *Extractor) ExtractCaseInfo(elem *Element, op *models.Opinion) {
	// 'number' ist das offizielle DTD-Element und steht deshalb vorn.
	caseNumberFields := []string{
		"number",
		"case-number", "proceeding-number", "case_number",
		"proceeding_number", "docket-number", "docket_number",
	}
	for _, field := range caseNumberFields {
		numElem := elem.FindFirst(field)
		if numElem == nil {
			continue
		}
		number := numElem.FlattenText()
		if number == "" {
			continue
		}
		if strings.Contains(field, "proceeding") {
			op.ProceedingNumber = number
		} else {
			op.CaseNumber = number
		}
		break
	}

	// Freitext-Fallback, falls beide Identifier fehlen
	if op.CaseNumber == "" && op.ProceedingNumber == "" {
		if number := ExtractCaseNumberFromText(elem.FlattenText()); number != "" {
			op.CaseNumber = number
		}
	}

	titleFields := []string{"title", "case-title", "name", "caption"}
	for _, field := range titleFields {
		if titleElem := elem.FindFirst(field); titleElem != nil {
			op.CaseTitle = titleElem.FlattenText()
			break
		}
	}

	typeFields := []string{"type-code", "type", "proceeding-type", "case-type"}
	for _, field := range typeFields {
		typeElem := elem.FindFirst(field)
		if typeElem == nil {
			continue
		}
		op.ProceedingType = parseProceedingType(typeElem.FlattenText())
		break
	}

	// Inferenz aus dem Aktenzeichen-Präfix; ein bereits gesetzter Typ wird
	// nie überschrieben.
	if op.ProceedingType == models.ProceedingUnknown && op.CaseNumber != "" {
		op.ProceedingType = InferProceedingType(op.CaseNumber)
	}
}

// parseProceedingType wertet die offiziellen DTD-Typcodes und Klartext aus.
func parseProceedingType(text string) models.ProceedingType {
	upper := strings.ToUpper(strings.TrimSpace(text))
	lower := strings.ToLower(text)
	switch {
	case upper == "OPP" || strings.Contains(lower, "opposition"):
		return models.ProceedingOpposition
	case upper == "CAN" || strings.Contains(lower, "cancellation"):
		return models.ProceedingCancellation
	case upper == "EXA" || strings.Contains(lower, "appeal"):
		return models.ProceedingAppeal
	case upper == "CNU" || strings.Contains(lower, "concurrent"):
		// Concurrent-Use hat keinen eigenen Typ; nächstliegende Kategorie.
		return models.ProceedingExpungement
	case strings.Contains(lower, "expungement"):
		return models.ProceedingExpungement
	case strings.Contains(lower, "reexamination"):
		return models.ProceedingReexamination
	}
	return models.ProceedingUnknown
}

// InferProceedingType leitet den Verfahrenstyp aus dem numerischen
// Aktenzeichen-Präfix ab.
func InferProceedingType(caseNumber string) models.ProceedingType {
	caseNumber = strings.TrimSpace(caseNumber)
	for _, rule := range proceedingPrefixRules {
		for _, prefix := range rule.prefixes {
			if strings.HasPrefix(caseNumber, prefix) {
				return rule.procType
			}
		}
	}
	return models.ProceedingUnknown
}

// ExtractCaseNumberFromText sucht ein Aktenzeichen im Freitext.
func ExtractCaseNumberFromText(text string) string {
	if text == "" {
		return ""
	}
	for _, pattern := range caseNumberPatterns {
		if match := pattern.FindString(text); match != "" {
			return strings.TrimSpace(match)
		}
	}
	return ""
}

// ExtractDates extrahiert Einreichungs- und Entscheidungsdatum.
func (x *Extractor) ExtractDates(elem *Element, op *models.Opinion) {
	filingFields := []string{"filing-date", "filed-date", "file-date", "date-filed"}
	for _, field := range filingFields {
		dateElem := elem.FindFirst(field)
		if dateElem == nil {
			continue
		}
		if op.FilingDate = ParseXMLDate(dateElem.FlattenText()); op.FilingDate != nil {
			break
		}
	}

	decisionFields := []string{"decision-date", "decided-date", "date-decided", "judgment-date"}
	for _, field := range decisionFields {
		dateElem := elem.FindFirst(field)
		if dateElem == nil {
			continue
		}
		if op.DecisionDate = ParseXMLDate(dateElem.FlattenText()); op.DecisionDate != nil {
			break
		}
	}

	// Fallback: FINALDEC-Event in der Prosecution History
	if op.DecisionDate == nil {
		if history := elem.FindFirst("prosecution-history"); history != nil {
			for _, event := range history.FindAll("event") {
				codeElem := event.FindFirst("event-code")
				if codeElem == nil || !strings.Contains(strings.ToUpper(codeElem.FlattenText()), "FINALDEC") {
					continue
				}
				if dateElem := event.FindFirst("event-date"); dateElem != nil {
					if op.DecisionDate = ParseXMLDate(dateElem.FlattenText()); op.DecisionDate != nil {
						break
					}
				}
			}
		}
	}
}

// partyTags sind die bekannten Tag-Namen für Parteielemente.
var partyTags = []string{
	"party", "applicant", "registrant", "opposer", "petitioner",
	"plaintiff", "defendant", "participant",
}

// ExtractParties extrahiert alle Parteien. Parteien ohne auflösbaren Namen
// werden verworfen, nie als Platzhalter behalten.
func (x *Extractor) ExtractParties(elem *Element, op *models.Opinion) {
	// 'party-information' ist der offizielle DTD-Container
	sections := elem.FindAll("party-information")
	if len(sections) == 0 {
		sections = elem.FindAll("parties")
	}
	if len(sections) == 0 {
		sections = []*Element{elem}
	}

	for _, section := range sections {
		var partyElems []*Element
		for _, tag := range partyTags {
			partyElems = append(partyElems, section.FindAll(tag)...)
		}
		for _, partyElem := range partyElems {
			if party := x.parseParty(partyElem, op.ProceedingType); party != nil {
				op.Parties = append(op.Parties, *party)
			}
		}
	}
}

// parseParty parst ein einzelnes Parteielement. Der Name wird nur in den
// direkten Kindern gesucht, damit nicht der name-Tag eines verschachtelten
// Anwalts- oder Adressblocks gegriffen wird.
func (x *Extractor) parseParty(partyElem *Element, procType models.ProceedingType) *models.Party {
	party := &models.Party{}

	nameFields := []string{"name", "party-name", "entity-name"}
	for _, field := range nameFields {
		if nameElem := partyElem.FindDirect(field); nameElem != nil {
			party.Name = nameElem.FlattenText()
			break
		}
	}
	if party.Name == "" {
		party.Name = CleanText(partyElem.Text)
	}
	if party.Name == "" {
		return nil
	}

	party.PartyType = resolvePartyType(partyElem, procType)

	addressFields := []string{"address", "party-address"}
	for _, field := range addressFields {
		if addrElem := partyElem.FindFirst(field); addrElem != nil {
			party.Address = addrElem.FlattenText()
			break
		}
	}

	countryFields := []string{"country", "country-code"}
	for _, field := range countryFields {
		if countryElem := partyElem.FindFirst(field); countryElem != nil {
			party.Country = countryElem.FlattenText()
			break
		}
	}

	for _, attorneyElem := range partyElem.FindAll("attorney") {
		if attorney := x.parseAttorney(attorneyElem); attorney != nil {
			party.Attorneys = append(party.Attorneys, *attorney)
		}
	}

	return party
}

// resolvePartyType löst die Parteirolle auf. Reihenfolge: offizieller
// role-code (P/D, verfahrensabhängig remappt), type-Attribut, Tag-Name,
// role-Attribut im Verfahrenskontext.
func resolvePartyType(partyElem *Element, procType models.ProceedingType) models.PartyType {
	if roleElem := partyElem.FindFirst("role-code"); roleElem != nil {
		switch strings.ToUpper(strings.TrimSpace(roleElem.FlattenText())) {
		case "P":
			switch procType {
			case models.ProceedingOpposition:
				return models.PartyOpposer
			case models.ProceedingCancellation:
				return models.PartyPetitioner
			default:
				return models.PartyPlaintiff
			}
		case "D":
			switch procType {
			case models.ProceedingOpposition:
				return models.PartyApplicant
			case models.ProceedingCancellation:
				return models.PartyRegistrant
			default:
				return models.PartyDefendant
			}
		}
	}

	if attrType := strings.ToLower(partyElem.AttrValue("type")); attrType != "" {
		if pt := keywordPartyType(attrType); pt != models.PartyUnknown {
			return pt
		}
	}

	if pt := keywordPartyType(strings.ToLower(partyElem.Tag)); pt != models.PartyUnknown {
		return pt
	}

	role := strings.ToLower(partyElem.AttrValue("role"))
	switch procType {
	case models.ProceedingOpposition:
		if strings.Contains(role, "applicant") {
			return models.PartyApplicant
		}
		if strings.Contains(role, "opposer") {
			return models.PartyOpposer
		}
	case models.ProceedingCancellation:
		if strings.Contains(role, "registrant") {
			return models.PartyRegistrant
		}
		if strings.Contains(role, "petitioner") {
			return models.PartyPetitioner
		}
	}

	return models.PartyUnknown
}

func keywordPartyType(s string) models.PartyType {
	switch {
	case strings.Contains(s, "applicant"):
		return models.PartyApplicant
	case strings.Contains(s, "registrant"):
		return models.PartyRegistrant
	case strings.Contains(s, "opposer"):
		return models.PartyOpposer
	case strings.Contains(s, "petitioner"):
		return models.PartyPetitioner
	case strings.Contains(s, "plaintiff"):
		return models.PartyPlaintiff
	case strings.Contains(s, "defendant"):
		return models.PartyDefendant
	}
	return models.PartyUnknown
}

// parseAttorney parst ein Anwaltselement.
func (x *Extractor) parseAttorney(attorneyElem *Element) *models.Attorney {
	attorney := &models.Attorney{}

	nameFields := []string{"name", "attorney-name"}
	for _, field := range nameFields {
		if nameElem := attorneyElem.FindDirect(field); nameElem != nil {
			attorney.Name = nameElem.FlattenText()
			break
		}
	}
	if attorney.Name == "" {
		attorney.Name = CleanText(attorneyElem.Text)
	}
	if attorney.Name == "" {
		return nil
	}

	regFields := []string{"registration-number", "reg-number", "bar-number"}
	for _, field := range regFields {
		if regElem := attorneyElem.FindFirst(field); regElem != nil {
			attorney.RegistrationNumber = regElem.FlattenText()
			break
		}
	}

	firmFields := []string{"firm", "law-firm", "firm-name"}
	for _, field := range firmFields {
		if firmElem := attorneyElem.FindFirst(field); firmElem != nil {
			attorney.Firm = firmElem.FlattenText()
			break
		}
	}

	if addrElem := attorneyElem.FindFirst("address"); addrElem != nil {
		attorney.Address = addrElem.FlattenText()
	}
	if phoneElem := attorneyElem.FindFirst("phone"); phoneElem != nil {
		attorney.Phone = phoneElem.FlattenText()
	}
	if emailElem := attorneyElem.FindFirst("email"); emailElem != nil {
		attorney.Email = emailElem.FlattenText()
	}

	return attorney
}

// ExtractJudges extrahiert die Richter, erst strukturell, dann aus dem Freitext.
func (x *Extractor) ExtractJudges(elem *Element, op *models.Opinion) {
	sections := elem.FindAll("judges")
	if len(sections) == 0 {
		sections = elem.FindAll("panel")
	}

	var judgeElems []*Element
	if len(sections) == 0 {
		judgeElems = elem.FindAll("judge")
	} else {
		for _, section := range sections {
			judgeElems = append(judgeElems, section.FindAll("judge")...)
		}
	}

	for _, judgeElem := range judgeElems {
		if judge := x.parseJudge(judgeElem); judge != nil {
			op.Judges = append(op.Judges, *judge)
		}
	}

	if len(op.Judges) == 0 {
		op.Judges = append(op.Judges, JudgesFromText(elem.FlattenText())...)
	}
}

// parseJudge parst ein Richterelement.
func (x *Extractor) parseJudge(judgeElem *Element) *models.Judge {
	judge := &models.Judge{}

	nameFields := []string{"name", "judge-name"}
	for _, field := range nameFields {
		if nameElem := judgeElem.FindDirect(field); nameElem != nil {
			judge.Name = nameElem.FlattenText()
			break
		}
	}
	if judge.Name == "" {
		judge.Name = judgeElem.FlattenText()
	}
	if judge.Name == "" {
		return nil
	}

	if titleElem := judgeElem.FindFirst("title"); titleElem != nil {
		judge.Title = titleElem.FlattenText()
	}
	if roleElem := judgeElem.FindFirst("role"); roleElem != nil {
		judge.Role = roleElem.FlattenText()
	}

	return judge
}

// JudgesFromText sucht Richternamen im Entscheidungstext. Die Muster werden
// in Prioritätsreihenfolge geprüft; das erste Muster mit Treffern gewinnt.
// Namen unter 4 Zeichen und Titelreste wie "Administrative Trademark Judges"
// gelten als Rauschen.
func JudgesFromText(content string) []models.Judge {
	for _, pattern := range judgePatterns {
		matches := pattern.FindAllStringSubmatch(content, -1)
		if len(matches) == 0 {
			continue
		}
		var judges []models.Judge
		for _, match := range matches {
			for _, name := range judgeNameSplitter.Split(match[1], -1) {
				name = CleanText(name)
				if len(name) > 3 && !strings.Contains(strings.ToLower(name), "judge") {
					judges = append(judges, models.Judge{
						Name:  name,
						Title: "Administrative Trademark Judge",
					})
				}
			}
		}
		if len(judges) > 0 {
			return judges
		}
	}
	return nil
}

// ExtractOutcome extrahiert den Verfahrensausgang, erst aus strukturierten
// Tags, dann aus dem Volltext.
func (x *Extractor) ExtractOutcome(elem *Element, op *models.Opinion) {
	outcomeFields := []string{"outcome", "decision", "ruling", "judgment", "disposition"}
	for _, field := range outcomeFields {
		outcomeElem := elem.FindFirst(field)
		if outcomeElem == nil {
			continue
		}
		text := strings.ToLower(outcomeElem.FlattenText())
		op.Outcome = ParseOutcomeText(text)
		op.OutcomeDescription = text
		break
	}

	if op.Outcome == models.OutcomeUnknown {
		content := strings.ToLower(elem.FlattenText())
		op.Outcome = ParseOutcomeText(content)

		// Bis zu drei Sätze mit Ausgangs-Schlüsselwörtern als Beschreibung
		var outcomeSentences []string
		for _, sentence := range strings.Split(content, ".") {
			for _, keyword := range []string{"granted", "denied", "dismissed", "sustained"} {
				if strings.Contains(sentence, keyword) {
					outcomeSentences = append(outcomeSentences, strings.TrimSpace(sentence))
					break
				}
			}
			if len(outcomeSentences) == 3 {
				break
			}
		}
		if len(outcomeSentences) > 0 {
			op.OutcomeDescription = strings.Join(outcomeSentences, ". ")
		}
	}
}

// ParseOutcomeText wertet die geordnete Phrasen-Tabelle gegen den Text aus.
func ParseOutcomeText(text string) models.OutcomeType {
	text = strings.ToLower(text)
	for _, rule := range outcomeRules {
		for _, phrase := range rule.phrases {
			if strings.Contains(text, phrase) {
				return rule.outcome
			}
		}
	}
	return models.OutcomeUnknown
}

// ExtractMarks extrahiert die Markeninformationen.
func (x *Extractor) ExtractMarks(elem *Element, op *models.Opinion) {
	sections := elem.FindAll("trademarks")
	if len(sections) == 0 {
		sections = elem.FindAll("marks")
	}

	var markElems []*Element
	if len(sections) == 0 {
		markElems = elem.FindAll("trademark")
		markElems = append(markElems, elem.FindAll("mark")...)
	} else {
		for _, section := range sections {
			markElems = append(markElems, section.FindAll("trademark")...)
			markElems = append(markElems, section.FindAll("mark")...)
		}
	}

	for _, markElem := range markElems {
		if mark := x.parseMark(markElem); mark != nil {
			op.SubjectMarks = append(op.SubjectMarks, *mark)
		}
	}
}

// parseMark parst ein Markenelement. Eine Marke ohne Text, Registrierungs-
// und Anmeldenummer wird verworfen.
func (x *Extractor) parseMark(markElem *Element) *models.TrademarkMark {
	mark := &models.TrademarkMark{}

	textFields := []string{"mark-text", "text", "mark"}
	for _, field := range textFields {
		if textElem := markElem.FindDirect(field); textElem != nil {
			mark.MarkText = textElem.FlattenText()
			break
		}
	}
	if mark.MarkText == "" {
		mark.MarkText = CleanText(markElem.Text)
	}

	if regElem := markElem.FindFirst("registration-number"); regElem != nil {
		mark.RegistrationNumber = regElem.FlattenText()
	}
	if appElem := markElem.FindFirst("application-number"); appElem != nil {
		mark.ApplicationNumber = appElem.FlattenText()
	}
	if descElem := markElem.FindFirst("description"); descElem != nil {
		mark.MarkDescription = descElem.FlattenText()
	}
	if typeElem := markElem.FindFirst("type"); typeElem != nil {
		mark.MarkType = typeElem.FlattenText()
	}
	if goodsElem := markElem.FindFirst("goods-services"); goodsElem != nil {
		mark.GoodsServices = goodsElem.FlattenText()
	}

	for _, classElem := range markElem.FindAll("class") {
		if classText := classElem.FlattenText(); classText != "" {
			mark.Classes = append(mark.Classes, classText)
		}
	}

	if mark.MarkText == "" && mark.RegistrationNumber == "" && mark.ApplicationNumber == "" {
		return nil
	}
	return mark
}

// ExtractLegalRepresentation leitet die Vertretungs-Zusammenfassung aus den
// Parteien ab: alle Anwälte flach, Kanzleinamen dedupliziert in stabiler
// Reihenfolge.
func (x *Extractor) ExtractLegalRepresentation(op *models.Opinion) {
	seen := make(map[string]bool)
	for _, party := range op.Parties {
		for _, attorney := range party.Attorneys {
			op.AllAttorneys = append(op.AllAttorneys, attorney)
			if attorney.Firm != "" && !seen[attorney.Firm] {
				seen[attorney.Firm] = true
				op.LawFirms = append(op.LawFirms, attorney.Firm)
			}
		}
	}
}

// CheckAppealIndicators setzt das Berufungs-Flag, wenn der Text eine der
// Indikator-Phrasen enthält. Unabhängig davon, ob später ein Appeal-Record
// verknüpft wird.
func (x *Extractor) CheckAppealIndicators(elem *Element, op *models.Opinion) {
	content := strings.ToLower(elem.FlattenText())
	for _, indicator := range appealIndicators {
		if strings.Contains(content, indicator) {
			op.AppealIndicated = true
			return
		}
	}
}
