package providers

import "github.com/anseljh/ttab-parser/models"

// SearchProvider ist die gemeinsame Schnittstelle aller externen
// Gerichtsdaten-Provider. Ein Provider ohne Zugangsdaten meldet
// Enabled() == false und wird vom Matching übersprungen.
type SearchProvider interface {
	// Name liefert den Anzeigenamen des Providers für Logs.
	Name() string

	// Enabled gibt an, ob der Provider einsatzbereit konfiguriert ist.
	Enabled() bool

	// Search führt eine Volltextsuche aus und liefert höchstens limit
	// Kandidaten, absteigend nach Einreichungsdatum sortiert.
	Search(query string, limit int) ([]*models.AppealCandidate, error)
}
