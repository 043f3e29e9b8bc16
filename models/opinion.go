package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// OutcomeType ist der geschlossene Katalog möglicher Verfahrensausgänge.
type OutcomeType string

const (
	OutcomeGranted   OutcomeType = "granted"
	OutcomeDenied    OutcomeType = "denied"
	OutcomeDismissed OutcomeType = "dismissed"
	OutcomeSustained OutcomeType = "sustained"
	OutcomeReversed  OutcomeType = "reversed"
	OutcomeAffirmed  OutcomeType = "affirmed"
	OutcomeRemanded  OutcomeType = "remanded"
	OutcomeSettled   OutcomeType = "settled"
	OutcomeWithdrawn OutcomeType = "withdrawn"
	OutcomeUnknown   OutcomeType = ""
)

// PartyType beschreibt die Rolle einer Partei im Verfahren.
type PartyType string

const (
	PartyApplicant  PartyType = "applicant"
	PartyRegistrant PartyType = "registrant"
	PartyOpposer    PartyType = "opposer"
	PartyPetitioner PartyType = "petitioner"
	PartyPlaintiff  PartyType = "plaintiff"
	PartyDefendant  PartyType = "defendant"
	PartyUnknown    PartyType = ""
)

// ProceedingType ist die geschlossene Klassifikation eines TTAB-Verfahrens.
type ProceedingType string

const (
	ProceedingOpposition    ProceedingType = "opposition"
	ProceedingCancellation  ProceedingType = "cancellation"
	ProceedingAppeal        ProceedingType = "appeal"
	ProceedingExpungement   ProceedingType = "expungement"
	ProceedingReexamination ProceedingType = "reexamination"
	ProceedingUnknown       ProceedingType = ""
)

// TrademarkMark repräsentiert eine im Verfahren genannte Marke.
type TrademarkMark struct {
	MarkText           string   `json:"mark_text,omitempty"`
	MarkDescription    string   `json:"mark_description,omitempty"`
	RegistrationNumber string   `json:"registration_number,omitempty"`
	ApplicationNumber  string   `json:"application_number,omitempty"`
	MarkType           string   `json:"mark_type,omitempty"`
	GoodsServices      string   `json:"goods_services,omitempty"`
	Classes            []string `json:"classes,omitempty"`
}

// Attorney repräsentiert einen Anwalt im Verfahren.
type Attorney struct {
	Name               string `json:"name"`
	RegistrationNumber string `json:"registration_number,omitempty"`
	Firm               string `json:"firm,omitempty"`
	Address            string `json:"address,omitempty"`
	Phone              string `json:"phone,omitempty"`
	Email              string `json:"email,omitempty"`
}

// Party repräsentiert eine Verfahrenspartei inklusive ihrer Anwälte und Marken.
type Party struct {
	Name      string          `json:"name"`
	PartyType PartyType       `json:"party_type,omitempty"`
	Address   string          `json:"address,omitempty"`
	Country   string          `json:"country,omitempty"`
	Attorneys []Attorney      `json:"attorneys,omitempty"`
	Marks     []TrademarkMark `json:"trademark_marks,omitempty"`
}

// Judge repräsentiert einen TTAB-Richter.
type Judge struct {
	Name  string `json:"name"`
	Title string `json:"title,omitempty"`
	Role  string `json:"role,omitempty"`
}

// PartyList wird als JSONB-Spalte gespeichert.
type PartyList []Party

// Value implementiert driver.Valuer für JSONB.
func (p PartyList) Value() (driver.Value, error) {
	return json.Marshal(p)
}

// Scan implementiert sql.Scanner für JSONB.
func (p *PartyList) Scan(value interface{}) error {
	return scanJSON(value, p)
}

// JudgeList wird als JSONB-Spalte gespeichert.
type JudgeList []Judge

func (j JudgeList) Value() (driver.Value, error) {
	return json.Marshal(j)
}

func (j *JudgeList) Scan(value interface{}) error {
	return scanJSON(value, j)
}

// MarkList wird als JSONB-Spalte gespeichert.
type MarkList []TrademarkMark

func (m MarkList) Value() (driver.Value, error) {
	return json.Marshal(m)
}

func (m *MarkList) Scan(value interface{}) error {
	return scanJSON(value, m)
}

// AttorneyList wird als JSONB-Spalte gespeichert.
type AttorneyList []Attorney

func (a AttorneyList) Value() (driver.Value, error) {
	return json.Marshal(a)
}

func (a *AttorneyList) Scan(value interface{}) error {
	return scanJSON(value, a)
}

// StringList wird als JSONB-Spalte gespeichert.
type StringList []string

func (s StringList) Value() (driver.Value, error) {
	return json.Marshal(s)
}

func (s *StringList) Scan(value interface{}) error {
	return scanJSON(value, s)
}

func scanJSON(value interface{}, dest interface{}) error {
	if value == nil {
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return nil
	}
	return json.Unmarshal(bytes, dest)
}

// Opinion repräsentiert eine extrahierte TTAB-Entscheidung.
type Opinion struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Fall-Identifikation
	CaseNumber       string         `json:"case_number,omitempty" gorm:"uniqueIndex;size:100"`
	ProceedingNumber string         `json:"proceeding_number,omitempty" gorm:"size:100"`
	ProceedingType   ProceedingType `json:"proceeding_type,omitempty" gorm:"index;size:50"`
	CaseTitle        string         `json:"case_title,omitempty" gorm:"type:text"`

	FilingDate   *time.Time `json:"filing_date,omitempty"`
	DecisionDate *time.Time `json:"decision_date,omitempty" gorm:"index"`

	Parties PartyList `json:"parties,omitempty" gorm:"type:jsonb"`
	Judges  JudgeList `json:"judges,omitempty" gorm:"type:jsonb"`

	Outcome            OutcomeType `json:"outcome,omitempty" gorm:"size:50"`
	OutcomeDescription string      `json:"outcome_description,omitempty" gorm:"type:text"`
	Winner             string      `json:"winner,omitempty" gorm:"type:text"`

	SubjectMarks MarkList `json:"subject_marks,omitempty" gorm:"type:jsonb"`

	// Abgeleitete Zusammenfassung der Rechtsvertretung
	AllAttorneys AttorneyList `json:"all_attorneys,omitempty" gorm:"type:jsonb"`
	LawFirms     StringList   `json:"law_firms,omitempty" gorm:"type:jsonb"`

	AppealIndicated        bool                  `json:"appeal_indicated"`
	FederalCircuitAppeal   *FederalCircuitAppeal `json:"federal_circuit_appeal,omitempty" gorm:"foreignKey:FederalCircuitAppealID"`
	FederalCircuitAppealID *uint                 `json:"-" gorm:"index"`

	SourceFile string `json:"source_file,omitempty" gorm:"type:text"`

	// Rohdaten für Debugging-Zwecke
	RawData datatypes.JSON `json:"raw_data,omitempty" gorm:"type:jsonb"`

	// Validierungswarnungen des Assemblers; nicht persistiert
	Warnings []string `json:"warnings,omitempty" gorm:"-"`
}

// CaseIdentifiers liefert die Identifier für das Appeal-Matching in Prioritätsreihenfolge.
func (o *Opinion) CaseIdentifiers() []string {
	var ids []string
	if o.CaseNumber != "" {
		ids = append(ids, o.CaseNumber)
	}
	if o.ProceedingNumber != "" {
		ids = append(ids, o.ProceedingNumber)
	}
	return ids
}

// PartyNames liefert alle Parteinamen für das Appeal-Matching.
func (o *Opinion) PartyNames() []string {
	var names []string
	for _, p := range o.Parties {
		if p.Name != "" {
			names = append(names, p.Name)
		}
	}
	return names
}

// ApplicantRegistrant liefert die Partei auf Anmelder-/Inhaberseite.
func (o *Opinion) ApplicantRegistrant() *Party {
	for i := range o.Parties {
		if o.Parties[i].PartyType == PartyApplicant || o.Parties[i].PartyType == PartyRegistrant {
			return &o.Parties[i]
		}
	}
	return nil
}

// OpposerPetitioner liefert die angreifende Partei.
func (o *Opinion) OpposerPetitioner() *Party {
	for i := range o.Parties {
		if o.Parties[i].PartyType == PartyOpposer || o.Parties[i].PartyType == PartyPetitioner {
			return &o.Parties[i]
		}
	}
	return nil
}

// TableName gibt explizit den Tabellennamen an.
func (Opinion) TableName() string {
	return "ttab_opinions"
}
