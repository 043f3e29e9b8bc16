package services

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsDecisionCodeRanges(t *testing.T) {
	cases := []struct {
		code int
		want bool
	}{
		{801, false},
		{802, true},
		{820, true},
		{849, true},
		{850, false},
		{852, false},
		{854, false},
		{855, true},
		{880, true},
		{894, true},
		{895, false},
		{100, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, isDecisionCode(tc.code), "code %d", tc.code)
	}
}

func TestIsDecisionDocumentByProsecutionCode(t *testing.T) {
	xmlStr := `<proceeding-entry>
		<prosecution-history>
			<prosecution-entry><code>101</code></prosecution-entry>
			<prosecution-entry><code>820</code></prosecution-entry>
		</prosecution-history>
	</proceeding-entry>`
	elem := parseElement(t, xmlStr, "proceeding-entry")
	assert.True(t, IsDecisionDocument(elem))
}

func TestIsDecisionDocumentSkipsNonNumericCodes(t *testing.T) {
	xmlStr := `<proceeding-entry>
		<prosecution-entry><code>FINALDEC</code></prosecution-entry>
		<prosecution-entry><code>820</code></prosecution-entry>
	</proceeding-entry>`
	elem := parseElement(t, xmlStr, "proceeding-entry")
	assert.True(t, IsDecisionDocument(elem))
}

func TestIsDecisionDocumentExcludedCodeFallsThrough(t *testing.T) {
	// 852 liegt im ausgenommenen Bereich, sonst keine Signale
	xmlStr := `<proceeding-entry>
		<prosecution-entry><code>852</code></prosecution-entry>
		<title>Extension of time</title>
	</proceeding-entry>`
	elem := parseElement(t, xmlStr, "proceeding-entry")
	assert.False(t, IsDecisionDocument(elem))
}

func TestIsDecisionDocumentByDocumentType(t *testing.T) {
	for _, keyword := range []string{"Opinion", "Final Decision", "ORDER"} {
		xmlStr := fmt.Sprintf(`<document><document-type>%s</document-type></document>`, keyword)
		elem := parseElement(t, xmlStr, "document")
		assert.True(t, IsDecisionDocument(elem), "document-type %q", keyword)
	}
}

func TestIsDecisionDocumentByJudgePresence(t *testing.T) {
	xmlStr := `<document><judges><judge><name>Smith</name></judge></judges></document>`
	elem := parseElement(t, xmlStr, "document")
	assert.True(t, IsDecisionDocument(elem))
}

func TestIsDecisionDocumentByDecisionPhrase(t *testing.T) {
	xmlStr := `<document><body>Upon consideration, the opposition is sustained.</body></document>`
	elem := parseElement(t, xmlStr, "document")
	assert.True(t, IsDecisionDocument(elem))
}

func TestIsDecisionDocumentNegative(t *testing.T) {
	xmlStr := `<document><body>Motion for extension of time to file an answer.</body></document>`
	elem := parseElement(t, xmlStr, "document")
	assert.False(t, IsDecisionDocument(elem))
}
