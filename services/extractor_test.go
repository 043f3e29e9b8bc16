package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/anseljh/ttab-parser/models"
)

func newTestExtractor() *Extractor {
	return NewExtractor(zap.NewNop())
}

func TestExtractCaseInfoNumberTag(t *testing.T) {
	elem := parseElement(t, `<proceeding-entry><number>91234567</number></proceeding-entry>`, "proceeding-entry")
	op := &models.Opinion{}
	newTestExtractor().ExtractCaseInfo(elem, op)

	assert.Equal(t, "91234567", op.CaseNumber)
	assert.Equal(t, models.ProceedingOpposition, op.ProceedingType)
}

func TestExtractCaseInfoProceedingScopedTag(t *testing.T) {
	elem := parseElement(t, `<case><proceeding-number>92000001</proceeding-number></case>`, "case")
	op := &models.Opinion{}
	newTestExtractor().ExtractCaseInfo(elem, op)

	assert.Equal(t, "92000001", op.ProceedingNumber)
	assert.Empty(t, op.CaseNumber)
}

func TestExtractCaseInfoFreeTextFallback(t *testing.T) {
	elem := parseElement(t, `<document><body>In re Proceeding No. 91/123456 before the Board.</body></document>`, "document")
	op := &models.Opinion{}
	newTestExtractor().ExtractCaseInfo(elem, op)

	assert.Equal(t, "91/123456", op.CaseNumber)
}

func TestExtractCaseInfoTypeCodeBeatsPrefix(t *testing.T) {
	// Expliziter Typcode gewinnt, der 91-Präfix darf ihn nicht überschreiben
	xmlStr := `<proceeding-entry>
		<number>91234567</number>
		<type-code>CAN</type-code>
	</proceeding-entry>`
	elem := parseElement(t, xmlStr, "proceeding-entry")
	op := &models.Opinion{}
	newTestExtractor().ExtractCaseInfo(elem, op)

	assert.Equal(t, models.ProceedingCancellation, op.ProceedingType)
}

func TestInferProceedingType(t *testing.T) {
	assert.Equal(t, models.ProceedingOpposition, InferProceedingType("91234567"))
	assert.Equal(t, models.ProceedingCancellation, InferProceedingType("92000001"))
	assert.Equal(t, models.ProceedingAppeal, InferProceedingType("73123456"))
	assert.Equal(t, models.ProceedingAppeal, InferProceedingType("70000001"))
	assert.Equal(t, models.ProceedingUnknown, InferProceedingType("88123456"))
	assert.Equal(t, models.ProceedingUnknown, InferProceedingType(""))
}

func TestExtractCaseNumberFromText(t *testing.T) {
	assert.Equal(t, "91/123456", ExtractCaseNumberFromText("Opposition No. 91/123456 was filed"))
	assert.Equal(t, "91234567", ExtractCaseNumberFromText("Proceeding 91234567 before the Board"))
	assert.Equal(t, "", ExtractCaseNumberFromText("no identifiers here"))
}

func TestExtractDates(t *testing.T) {
	xmlStr := `<proceeding-entry>
		<filing-date>20230301</filing-date>
		<decision-date>2025-01-15</decision-date>
	</proceeding-entry>`
	elem := parseElement(t, xmlStr, "proceeding-entry")
	op := &models.Opinion{}
	newTestExtractor().ExtractDates(elem, op)

	require.NotNil(t, op.FilingDate)
	require.NotNil(t, op.DecisionDate)
	assert.Equal(t, time.Date(2023, time.March, 1, 0, 0, 0, 0, time.UTC), *op.FilingDate)
	assert.Equal(t, time.Date(2025, time.January, 15, 0, 0, 0, 0, time.UTC), *op.DecisionDate)
}

func TestExtractDatesFinaldecFallback(t *testing.T) {
	xmlStr := `<proceeding-entry>
		<prosecution-history>
			<event><event-code>ANSWER</event-code><event-date>20230401</event-date></event>
			<event><event-code>FINALDEC</event-code><event-date>20250115</event-date></event>
		</prosecution-history>
	</proceeding-entry>`
	elem := parseElement(t, xmlStr, "proceeding-entry")
	op := &models.Opinion{}
	newTestExtractor().ExtractDates(elem, op)

	require.NotNil(t, op.DecisionDate)
	assert.Equal(t, time.Date(2025, time.January, 15, 0, 0, 0, 0, time.UTC), *op.DecisionDate)
}

func TestExtractPartiesDirectChildNameWins(t *testing.T) {
	xmlStr := `<proceeding-entry>
		<party-information>
			<party>
				<address><name>Law Offices of Smith</name><country>US</country></address>
				<name>Acme Corp</name>
			</party>
		</party-information>
	</proceeding-entry>`
	elem := parseElement(t, xmlStr, "proceeding-entry")
	op := &models.Opinion{}
	newTestExtractor().ExtractParties(elem, op)

	require.Len(t, op.Parties, 1)
	assert.Equal(t, "Acme Corp", op.Parties[0].Name)
}

func TestExtractPartiesDropsNameless(t *testing.T) {
	xmlStr := `<proceeding-entry>
		<parties>
			<party><address>123 Main St</address></party>
			<party><name>Widget Inc</name></party>
		</parties>
	</proceeding-entry>`
	elem := parseElement(t, xmlStr, "proceeding-entry")
	op := &models.Opinion{}
	newTestExtractor().ExtractParties(elem, op)

	require.Len(t, op.Parties, 1)
	assert.Equal(t, "Widget Inc", op.Parties[0].Name)
}

func TestExtractPartiesRoleCodeRemapOpposition(t *testing.T) {
	xmlStr := `<proceeding-entry>
		<party-information>
			<party><name>Acme Corp</name><role-code>P</role-code></party>
			<party><name>Widget Inc</name><role-code>D</role-code></party>
		</party-information>
	</proceeding-entry>`
	elem := parseElement(t, xmlStr, "proceeding-entry")
	op := &models.Opinion{ProceedingType: models.ProceedingOpposition}
	newTestExtractor().ExtractParties(elem, op)

	require.Len(t, op.Parties, 2)
	assert.Equal(t, models.PartyOpposer, op.Parties[0].PartyType)
	assert.Equal(t, models.PartyApplicant, op.Parties[1].PartyType)
}

func TestExtractPartiesRoleCodeRemapCancellation(t *testing.T) {
	xmlStr := `<proceeding-entry>
		<parties>
			<party><name>Acme Corp</name><role-code>P</role-code></party>
			<party><name>Widget Inc</name><role-code>D</role-code></party>
		</parties>
	</proceeding-entry>`
	elem := parseElement(t, xmlStr, "proceeding-entry")
	op := &models.Opinion{ProceedingType: models.ProceedingCancellation}
	newTestExtractor().ExtractParties(elem, op)

	require.Len(t, op.Parties, 2)
	assert.Equal(t, models.PartyPetitioner, op.Parties[0].PartyType)
	assert.Equal(t, models.PartyRegistrant, op.Parties[1].PartyType)
}

func TestExtractPartiesTypeFromTagName(t *testing.T) {
	xmlStr := `<proceeding-entry>
		<parties>
			<opposer><name>Acme Corp</name></opposer>
			<applicant><name>Widget Inc</name></applicant>
		</parties>
	</proceeding-entry>`
	elem := parseElement(t, xmlStr, "proceeding-entry")
	op := &models.Opinion{}
	newTestExtractor().ExtractParties(elem, op)

	require.Len(t, op.Parties, 2)
	types := map[string]models.PartyType{}
	for _, party := range op.Parties {
		types[party.Name] = party.PartyType
	}
	assert.Equal(t, models.PartyOpposer, types["Acme Corp"])
	assert.Equal(t, models.PartyApplicant, types["Widget Inc"])
}

func TestExtractPartiesWithAttorneys(t *testing.T) {
	xmlStr := `<proceeding-entry>
		<party-information>
			<party>
				<name>Acme Corp</name>
				<attorney>
					<name>Jane Smith</name>
					<firm>Smith IP Law</firm>
					<registration-number>12345</registration-number>
				</attorney>
			</party>
		</party-information>
	</proceeding-entry>`
	elem := parseElement(t, xmlStr, "proceeding-entry")
	op := &models.Opinion{}
	newTestExtractor().ExtractParties(elem, op)

	require.Len(t, op.Parties, 1)
	require.Len(t, op.Parties[0].Attorneys, 1)
	attorney := op.Parties[0].Attorneys[0]
	assert.Equal(t, "Jane Smith", attorney.Name)
	assert.Equal(t, "Smith IP Law", attorney.Firm)
	assert.Equal(t, "12345", attorney.RegistrationNumber)
}

func TestExtractJudgesStructured(t *testing.T) {
	xmlStr := `<proceeding-entry>
		<judges>
			<judge><name>Smith</name></judge>
			<judge><name>Jones</name></judge>
		</judges>
	</proceeding-entry>`
	elem := parseElement(t, xmlStr, "proceeding-entry")
	op := &models.Opinion{}
	newTestExtractor().ExtractJudges(elem, op)

	require.Len(t, op.Judges, 2)
	assert.Equal(t, "Smith", op.Judges[0].Name)
	assert.Equal(t, "Jones", op.Judges[1].Name)
}

func TestJudgesFromTextPatterns(t *testing.T) {
	judges := JudgesFromText("Administrative Trademark Judge Williams delivered the opinion.")
	require.Len(t, judges, 1)
	assert.Equal(t, "Williams", judges[0].Name)
	assert.Equal(t, "Administrative Trademark Judge", judges[0].Title)

	judges = JudgesFromText("Before Adams, Baker, Clark, Administrative Trademark Judges.")
	require.NotEmpty(t, judges)
	names := make([]string, 0, len(judges))
	for _, j := range judges {
		names = append(names, j.Name)
	}
	assert.Contains(t, names, "Adams")
	assert.Contains(t, names, "Baker")
	assert.Contains(t, names, "Clark")
}

func TestJudgesFromTextAllCapsPanel(t *testing.T) {
	// Ältere Entscheidungstexte schreiben die Besetzung in Versalien.
	judges := JudgesFromText("Before SEEHERMAN, QUINN and HAIRSTON, Administrative Trademark Judges.")
	require.Len(t, judges, 3)
	names := make([]string, 0, len(judges))
	for _, j := range judges {
		names = append(names, j.Name)
	}
	assert.Equal(t, []string{"SEEHERMAN", "QUINN", "HAIRSTON"}, names)
}

func TestJudgesFromTextDiscardsShortNames(t *testing.T) {
	judges := JudgesFromText("Before Ed, the hearing was adjourned.")
	assert.Empty(t, judges)
}

func TestExtractOutcomeOrderedRules(t *testing.T) {
	// Die spezifische Formulierung gewinnt gegenüber dem späteren "denied"
	xmlStr := `<document><body>The opposition is sustained; the counterclaim is otherwise denied.</body></document>`
	elem := parseElement(t, xmlStr, "document")
	op := &models.Opinion{}
	newTestExtractor().ExtractOutcome(elem, op)

	assert.Equal(t, models.OutcomeSustained, op.Outcome)
	assert.NotEmpty(t, op.OutcomeDescription)
}

func TestExtractOutcomeStructuredTag(t *testing.T) {
	xmlStr := `<document><decision>Petition to cancel is granted.</decision></document>`
	elem := parseElement(t, xmlStr, "document")
	op := &models.Opinion{}
	newTestExtractor().ExtractOutcome(elem, op)

	assert.Equal(t, models.OutcomeGranted, op.Outcome)
}

func TestParseOutcomeText(t *testing.T) {
	cases := []struct {
		text string
		want models.OutcomeType
	}{
		{"we sustain the opposition", models.OutcomeSustained},
		{"the opposition is dismissed with prejudice", models.OutcomeDismissed},
		{"grant the petition for cancellation", models.OutcomeGranted},
		{"the refusal is affirmed", models.OutcomeAffirmed},
		{"the decision is reversed and remanded", models.OutcomeReversed},
		{"the parties have settled", models.OutcomeSettled},
		{"the opposition was withdrawn", models.OutcomeWithdrawn},
		{"nothing conclusive here", models.OutcomeUnknown},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ParseOutcomeText(tc.text), "text %q", tc.text)
	}
}

func TestExtractMarks(t *testing.T) {
	xmlStr := `<proceeding-entry>
		<trademarks>
			<trademark>
				<mark-text>WIDGETPRO</mark-text>
				<registration-number>5555555</registration-number>
				<class>009</class>
				<class>042</class>
			</trademark>
			<trademark><comment>nothing identifying</comment></trademark>
		</trademarks>
	</proceeding-entry>`
	elem := parseElement(t, xmlStr, "proceeding-entry")
	op := &models.Opinion{}
	newTestExtractor().ExtractMarks(elem, op)

	require.Len(t, op.SubjectMarks, 1)
	mark := op.SubjectMarks[0]
	assert.Equal(t, "WIDGETPRO", mark.MarkText)
	assert.Equal(t, "5555555", mark.RegistrationNumber)
	assert.Equal(t, []string{"009", "042"}, mark.Classes)
}

func TestExtractLegalRepresentationDeduplicatesFirms(t *testing.T) {
	op := &models.Opinion{
		Parties: models.PartyList{
			{Name: "Acme Corp", Attorneys: []models.Attorney{
				{Name: "Jane Smith", Firm: "Smith IP Law"},
				{Name: "Bob Brown", Firm: "Smith IP Law"},
			}},
			{Name: "Widget Inc", Attorneys: []models.Attorney{
				{Name: "Carol White", Firm: "White & Partners"},
			}},
		},
	}
	newTestExtractor().ExtractLegalRepresentation(op)

	assert.Len(t, op.AllAttorneys, 3)
	assert.Equal(t, models.StringList{"Smith IP Law", "White & Partners"}, op.LawFirms)
}

func TestCheckAppealIndicators(t *testing.T) {
	xmlStr := `<document><body>Applicant filed a notice of appeal to the Federal Circuit.</body></document>`
	elem := parseElement(t, xmlStr, "document")
	op := &models.Opinion{}
	newTestExtractor().CheckAppealIndicators(elem, op)
	assert.True(t, op.AppealIndicated)

	neutral := parseElement(t, `<document><body>The answer was timely filed.</body></document>`, "document")
	op2 := &models.Opinion{}
	newTestExtractor().CheckAppealIndicators(neutral, op2)
	assert.False(t, op2.AppealIndicated)
}
