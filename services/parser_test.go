package services

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/anseljh/ttab-parser/models"
)

const sampleProceedingXML = `<?xml version="1.0" encoding="UTF-8"?>
<ttab-proceedings>
	<proceeding-entry>
		<number>91234567</number>
		<filing-date>20230301</filing-date>
		<decision-date>20250115</decision-date>
		<party-information>
			<party><name>Acme Corp</name><role-code>P</role-code></party>
			<party><name>Widget Inc</name><role-code>D</role-code></party>
		</party-information>
		<judges>
			<judge><name>Smith</name></judge>
		</judges>
		<prosecution-history>
			<prosecution-entry><code>820</code></prosecution-entry>
		</prosecution-history>
		<decision>The opposition is sustained and registration is refused.</decision>
	</proceeding-entry>
	<proceeding-entry>
		<number>91765432</number>
		<title>Motion for extension of time</title>
	</proceeding-entry>
</ttab-proceedings>`

func writeSampleFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestParseFileExtractsDecisionDocuments(t *testing.T) {
	path := writeSampleFile(t, "daily.xml", sampleProceedingXML)
	parser := NewParser(zap.NewNop())

	opinions, err := parser.ParseFile(path)
	require.NoError(t, err)

	// Das zweite Dokument trägt keinerlei Entscheidungssignale
	require.Len(t, opinions, 1)
	op := opinions[0]

	assert.Equal(t, "91234567", op.CaseNumber)
	assert.Equal(t, models.ProceedingOpposition, op.ProceedingType)
	assert.Equal(t, models.OutcomeSustained, op.Outcome)
	assert.Equal(t, "Acme Corp", op.Winner)
	require.Len(t, op.Parties, 2)
	assert.Equal(t, models.PartyOpposer, op.Parties[0].PartyType)
	assert.Equal(t, models.PartyApplicant, op.Parties[1].PartyType)
	require.NotNil(t, op.DecisionDate)
	assert.Equal(t, "daily.xml", op.SourceFile)
	assert.Empty(t, op.Warnings)

	assert.Equal(t, 2, parser.Stats.DocumentsProcessed)
	assert.Equal(t, 1, parser.Stats.OpinionsFound)
	assert.Equal(t, 1, parser.Stats.OpinionsParsed)
	assert.Equal(t, 1, parser.Stats.FilesProcessed)
}

func TestParseFileIsRepeatable(t *testing.T) {
	path := writeSampleFile(t, "daily.xml", sampleProceedingXML)

	first, err := NewParser(zap.NewNop()).ParseFile(path)
	require.NoError(t, err)
	second, err := NewParser(zap.NewNop()).ParseFile(path)
	require.NoError(t, err)

	require.Len(t, first, 1)
	require.Len(t, second, 1)
	assert.Equal(t, first[0].CaseNumber, second[0].CaseNumber)
	assert.Equal(t, first[0].Outcome, second[0].Outcome)
	assert.Equal(t, first[0].Winner, second[0].Winner)
}

func TestParseDirectoryProcessesAllXMLFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.xml"), []byte(sampleProceedingXML), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.xml"), []byte(sampleProceedingXML), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("skip"), 0o644))

	parser := NewParser(zap.NewNop())
	opinions, err := parser.ParseDirectory(dir)
	require.NoError(t, err)

	assert.Len(t, opinions, 2)
	assert.Equal(t, 2, parser.Stats.FilesProcessed)
	require.NotNil(t, parser.Stats.EndTime)
}

func TestParseDirectorySkipsBrokenFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.xml.gz"), []byte("not gzip data"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "good.xml"), []byte(sampleProceedingXML), 0o644))

	parser := NewParser(zap.NewNop())
	opinions, err := parser.ParseDirectory(dir)
	require.NoError(t, err)

	assert.Len(t, opinions, 1)
	assert.GreaterOrEqual(t, parser.Stats.Errors, 1)
}

func TestValidateWarnings(t *testing.T) {
	op := &models.Opinion{}
	warnings := Validate(op)
	assert.Contains(t, warnings, "kein Aktenzeichen gefunden")
	assert.Contains(t, warnings, "keine Parteien gefunden")
	assert.Contains(t, warnings, "keine Richter gefunden")
	assert.Contains(t, warnings, "kein Verfahrensausgang erkannt")

	complete := &models.Opinion{
		CaseNumber: "91234567",
		Parties: models.PartyList{
			{Name: "Acme Corp", PartyType: models.PartyOpposer},
			{Name: "Widget Inc", PartyType: models.PartyApplicant},
		},
		Judges:       models.JudgeList{{Name: "Smith"}},
		Outcome:      models.OutcomeSustained,
		DecisionDate: ParseXMLDate("20250115"),
	}
	assert.Empty(t, Validate(complete))
}

func TestValidateSinglePartyWarning(t *testing.T) {
	op := &models.Opinion{
		CaseNumber:   "91234567",
		Parties:      models.PartyList{{Name: "Acme Corp", PartyType: models.PartyOpposer}},
		Judges:       models.JudgeList{{Name: "Smith"}},
		Outcome:      models.OutcomeSustained,
		DecisionDate: ParseXMLDate("20250115"),
	}
	warnings := Validate(op)
	assert.Equal(t, []string{"weniger als zwei Parteien gefunden"}, warnings)
}
