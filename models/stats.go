package models

import (
	"fmt"
	"time"
)

// ProcessingStats sammelt die Kennzahlen eines Verarbeitungslaufs.
type ProcessingStats struct {
	FilesProcessed     int        `json:"files_processed"`
	DocumentsProcessed int        `json:"documents_processed"`
	OpinionsFound      int        `json:"opinions_found"`
	OpinionsParsed     int        `json:"opinions_parsed"`
	AppealsFound       int        `json:"appeals_found"`
	Errors             int        `json:"errors"`
	StartTime          *time.Time `json:"start_time,omitempty"`
	EndTime            *time.Time `json:"end_time,omitempty"`
}

// Duration gibt die Laufzeit des Laufs zurück.
func (s *ProcessingStats) Duration() time.Duration {
	if s.StartTime == nil || s.EndTime == nil {
		return 0
	}
	return s.EndTime.Sub(*s.StartTime)
}

// Summary gibt eine lesbare Zusammenfassung des Laufs zurück.
func (s *ProcessingStats) Summary() string {
	return fmt.Sprintf(
		"completed in %.1fs: files=%d documents=%d opinions_found=%d opinions_parsed=%d appeals_found=%d errors=%d",
		s.Duration().Seconds(),
		s.FilesProcessed,
		s.DocumentsProcessed,
		s.OpinionsFound,
		s.OpinionsParsed,
		s.AppealsFound,
		s.Errors,
	)
}
