package services

import (
	"strings"
	"time"
)

// xmlDateLayouts werden der Reihe nach probiert; der erste Treffer gewinnt.
// YYYYMMDD steht vorn, weil das offizielle TTAB-DTD-Format so aussieht.
var xmlDateLayouts = []string{
	"20060102",
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"01/02/2006",
	"01-02-2006",
	"January 2, 2006",
	"Jan 2, 2006",
}

// ParseXMLDate parst die in USPTO-XML vorkommenden Datumsformate.
// Bei Totalausfall wird nil zurückgegeben, niemals ein Fehler.
func ParseXMLDate(dateStr string) *time.Time {
	dateStr = strings.TrimSpace(dateStr)
	if dateStr == "" {
		return nil
	}
	for _, layout := range xmlDateLayouts {
		if t, err := time.Parse(layout, dateStr); err == nil {
			// Uhrzeitanteile werden verworfen; gespeichert wird ein Kalenderdatum.
			d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
			return &d
		}
	}
	return nil
}
