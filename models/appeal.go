package models

import "time"

// FederalCircuitAppeal repräsentiert eine Federal-Circuit-Berufung zu einer TTAB-Entscheidung.
type FederalCircuitAppeal struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	CaseNumber   string     `json:"case_number,omitempty" gorm:"uniqueIndex;size:100"`
	CaseName     string     `json:"case_name,omitempty" gorm:"type:text"`
	DocketNumber string     `json:"docket_number,omitempty" gorm:"size:100"`
	FilingDate   *time.Time `json:"filing_date,omitempty"`
	DecisionDate *time.Time `json:"decision_date,omitempty"`

	Outcome  string     `json:"outcome,omitempty" gorm:"size:50"`
	Judges   StringList `json:"judges,omitempty" gorm:"type:jsonb"`
	Citation string     `json:"citation,omitempty" gorm:"size:200"`

	// CourtListener-Referenzen; die ID ist der stabile externe Schlüssel
	CourtListenerID  string `json:"courtlistener_id,omitempty" gorm:"index;size:100"`
	CourtListenerURL string `json:"courtlistener_url,omitempty" gorm:"type:text"`
}

// TableName gibt explizit den Tabellennamen an.
func (FederalCircuitAppeal) TableName() string {
	return "federal_circuit_appeals"
}
