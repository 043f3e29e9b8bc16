package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVRowMatchesHeaders(t *testing.T) {
	filing := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	decision := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
	appealFiling := time.Date(2025, 4, 2, 0, 0, 0, 0, time.UTC)

	op := &Opinion{
		CaseNumber:         "91234567",
		ProceedingNumber:   "OPP-91234567",
		ProceedingType:     ProceedingOpposition,
		CaseTitle:          "Acme Corp v. Widget Inc",
		FilingDate:         &filing,
		DecisionDate:       &decision,
		Outcome:            OutcomeSustained,
		OutcomeDescription: "The opposition is sustained.",
		Winner:             "Acme Corp",
		Parties: PartyList{
			{Name: "Acme Corp", PartyType: PartyOpposer, Address: "1 Main St"},
			{Name: "Widget Inc", PartyType: PartyApplicant, Address: "2 Side St"},
		},
		Judges: JudgeList{{Name: "Smith"}, {Name: "Jones"}},
		SubjectMarks: MarkList{
			{MarkText: "WIDGETPRO", RegistrationNumber: "1234567", ApplicationNumber: "87654321"},
		},
		AllAttorneys:    AttorneyList{{Name: "Jane Doe"}},
		LawFirms:        StringList{"Doe & Partner LLP"},
		AppealIndicated: true,
		FederalCircuitAppeal: &FederalCircuitAppeal{
			CaseName:         "Widget Inc v. Acme Corp",
			DocketNumber:     "2025-1234",
			FilingDate:       &appealFiling,
			Outcome:          "affirmed",
			Judges:           StringList{"Moore"},
			Citation:         "123 F.4th 456",
			CourtListenerURL: "https://www.courtlistener.com/opinion/1/",
		},
		SourceFile: "ttab-2025-01-15.xml",
	}

	headers := CSVHeaders()
	row := op.CSVRow()
	require.Len(t, row, len(headers))

	byHeader := make(map[string]string, len(headers))
	for i, header := range headers {
		byHeader[header] = row[i]
	}

	assert.Equal(t, "91234567", byHeader["case_number"])
	assert.Equal(t, "OPP-91234567", byHeader["proceeding_number"])
	assert.Equal(t, "opposition", byHeader["proceeding_type"])
	assert.Equal(t, "2024-03-01", byHeader["filing_date"])
	assert.Equal(t, "2025-01-15", byHeader["decision_date"])
	assert.Equal(t, "sustained", byHeader["outcome"])
	assert.Equal(t, "The opposition is sustained.", byHeader["outcome_description"])
	assert.Equal(t, "Acme Corp", byHeader["winner"])
	assert.Equal(t, "Widget Inc", byHeader["applicant_registrant"])
	assert.Equal(t, "2 Side St", byHeader["applicant_address"])
	assert.Equal(t, "Acme Corp", byHeader["opposer_petitioner"])
	assert.Equal(t, "1 Main St", byHeader["opposer_address"])
	assert.Equal(t, "Smith; Jones", byHeader["judges"])
	assert.Equal(t, "WIDGETPRO", byHeader["trademark_marks"])
	assert.Equal(t, "1234567", byHeader["registration_numbers"])
	assert.Equal(t, "87654321", byHeader["application_numbers"])
	assert.Equal(t, "Doe & Partner LLP", byHeader["law_firms"])
	assert.Equal(t, "Jane Doe", byHeader["attorneys"])
	assert.Equal(t, "2025-1234", byHeader["federal_circuit_case_number"])
	assert.Equal(t, "Widget Inc v. Acme Corp", byHeader["federal_circuit_case_name"])
	assert.Equal(t, "2025-04-02", byHeader["federal_circuit_filing_date"])
	assert.Equal(t, "", byHeader["federal_circuit_decision_date"])
	assert.Equal(t, "affirmed", byHeader["federal_circuit_outcome"])
	assert.Equal(t, "Moore", byHeader["federal_circuit_judges"])
	assert.Equal(t, "123 F.4th 456", byHeader["federal_circuit_citation"])
	assert.Equal(t, "https://www.courtlistener.com/opinion/1/", byHeader["federal_circuit_url"])
	assert.Equal(t, "true", byHeader["appeal_indicated"])
	assert.Equal(t, "ttab-2025-01-15.xml", byHeader["source_file"])
}

func TestCSVRowEmptyOpinion(t *testing.T) {
	row := (&Opinion{}).CSVRow()
	require.Len(t, row, len(CSVHeaders()))
	for i, cell := range row {
		if CSVHeaders()[i] == "appeal_indicated" {
			assert.Equal(t, "false", cell)
			continue
		}
		assert.Empty(t, cell, CSVHeaders()[i])
	}
}
