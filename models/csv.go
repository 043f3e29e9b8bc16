package models

import (
	"strconv"
	"strings"
	"time"
)

// CSVHeaders liefert die Spaltenköpfe des flachen CSV-Exports. Die
// Reihenfolge ist stabil, nachgelagerte Auswertungen hängen daran.
func CSVHeaders() []string {
	return []string{
		"case_number",
		"proceeding_number",
		"proceeding_type",
		"case_title",
		"filing_date",
		"decision_date",
		"outcome",
		"outcome_description",
		"winner",
		"applicant_registrant",
		"applicant_address",
		"opposer_petitioner",
		"opposer_address",
		"judges",
		"trademark_marks",
		"registration_numbers",
		"application_numbers",
		"law_firms",
		"attorneys",
		"federal_circuit_case_number",
		"federal_circuit_case_name",
		"federal_circuit_filing_date",
		"federal_circuit_decision_date",
		"federal_circuit_outcome",
		"federal_circuit_judges",
		"federal_circuit_citation",
		"federal_circuit_url",
		"appeal_indicated",
		"source_file",
	}
}

// CSVRow serialisiert die Opinion als flache CSV-Zeile in der Reihenfolge
// von CSVHeaders. Mehrwertige Felder werden mit "; " zusammengezogen.
func (o *Opinion) CSVRow() []string {
	applicantName, applicantAddr := "", ""
	if applicant := o.ApplicantRegistrant(); applicant != nil {
		applicantName, applicantAddr = applicant.Name, applicant.Address
	}
	opposerName, opposerAddr := "", ""
	if opposer := o.OpposerPetitioner(); opposer != nil {
		opposerName, opposerAddr = opposer.Name, opposer.Address
	}

	var judgeNames []string
	for _, judge := range o.Judges {
		if judge.Name != "" {
			judgeNames = append(judgeNames, judge.Name)
		}
	}

	var markTexts, registrationNumbers, applicationNumbers []string
	for _, mark := range o.SubjectMarks {
		if mark.MarkText != "" {
			markTexts = append(markTexts, mark.MarkText)
		}
		if mark.RegistrationNumber != "" {
			registrationNumbers = append(registrationNumbers, mark.RegistrationNumber)
		}
		if mark.ApplicationNumber != "" {
			applicationNumbers = append(applicationNumbers, mark.ApplicationNumber)
		}
	}

	var attorneyNames []string
	for _, attorney := range o.AllAttorneys {
		if attorney.Name != "" {
			attorneyNames = append(attorneyNames, attorney.Name)
		}
	}

	var fcCaseNumber, fcCaseName, fcFilingDate, fcDecisionDate string
	var fcOutcome, fcJudges, fcCitation, fcURL string
	if fc := o.FederalCircuitAppeal; fc != nil {
		fcCaseNumber = fc.DocketNumber
		fcCaseName = fc.CaseName
		fcFilingDate = csvDate(fc.FilingDate)
		fcDecisionDate = csvDate(fc.DecisionDate)
		fcOutcome = fc.Outcome
		fcJudges = strings.Join(fc.Judges, "; ")
		fcCitation = fc.Citation
		fcURL = fc.CourtListenerURL
	}

	return []string{
		o.CaseNumber,
		o.ProceedingNumber,
		string(o.ProceedingType),
		o.CaseTitle,
		csvDate(o.FilingDate),
		csvDate(o.DecisionDate),
		string(o.Outcome),
		o.OutcomeDescription,
		o.Winner,
		applicantName,
		applicantAddr,
		opposerName,
		opposerAddr,
		strings.Join(judgeNames, "; "),
		strings.Join(markTexts, "; "),
		strings.Join(registrationNumbers, "; "),
		strings.Join(applicationNumbers, "; "),
		strings.Join(o.LawFirms, "; "),
		strings.Join(attorneyNames, "; "),
		fcCaseNumber,
		fcCaseName,
		fcFilingDate,
		fcDecisionDate,
		fcOutcome,
		fcJudges,
		fcCitation,
		fcURL,
		strconv.FormatBool(o.AppealIndicated),
		o.SourceFile,
	}
}

func csvDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}
