package services

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/anseljh/ttab-parser/config"
	"github.com/anseljh/ttab-parser/models"
	"github.com/anseljh/ttab-parser/providers/uspto"
	"github.com/anseljh/ttab-parser/storage"
)

// IngestService orchestriert die Verarbeitungskette: Bulk-Download,
// Archivierung, Parsen, Upsert und Appeal-Anreicherung.
type IngestService struct {
	Config   *config.Config
	DB       *gorm.DB
	S3Client *s3.Client
	Fetcher  *uspto.Fetcher
	Matcher  *AppealMatcher
	Logger   *zap.Logger

	// OnUpsert und OnAppealMatch werden nach erfolgreichem Upsert bzw.
	// Match aufgerufen, etwa für Metriken. Beide dürfen nil sein.
	OnUpsert      func()
	OnAppealMatch func()
}

// RunDaily führt den täglichen Lauf aus: die seit gestern veröffentlichten
// Bulk-Dateien laden, archivieren, parsen und anreichern.
func (s *IngestService) RunDaily(ctx context.Context) error {
	if !s.Fetcher.Enabled() {
		s.Logger.Warn("USPTO-Download deaktiviert, kein API-Key konfiguriert")
		return nil
	}

	from := time.Now().UTC().AddDate(0, 0, -1)
	files, err := s.Fetcher.FetchDaily(from)
	if err != nil {
		return fmt.Errorf("täglicher Bulk-Download fehlgeschlagen: %w", err)
	}
	if len(files) == 0 {
		s.Logger.Info("Keine neuen Bulk-Dateien")
		return nil
	}

	for _, file := range files {
		link, archiveErr := storage.ArchiveFile(ctx, s.S3Client, s.Config, file)
		if archiveErr != nil {
			// Archivfehler stoppen die Verarbeitung nicht
			s.Logger.Error("Archivierung fehlgeschlagen",
				zap.String("file", file),
				zap.Error(archiveErr))
			continue
		}
		s.Logger.Info("Rohdatei archiviert", zap.String("link", link))
	}

	parser := NewParser(s.Logger)
	var opinions []*models.Opinion
	for _, file := range files {
		fileOpinions, parseErr := parser.ParseFile(file)
		if parseErr != nil {
			s.Logger.Error("Datei übersprungen", zap.String("file", file), zap.Error(parseErr))
			continue
		}
		opinions = append(opinions, fileOpinions...)
	}

	if err := s.UpsertOpinions(opinions); err != nil {
		return err
	}

	matched, err := s.EnrichAppeals(ctx)
	parser.Stats.AppealsFound = matched
	s.Logger.Info("Täglicher Lauf abgeschlossen", zap.String("stats", parser.FormatStats()))
	return err
}

// RunDirectory verarbeitet ein lokales Verzeichnis mit XML-Dateien, etwa
// für den Import der Jahres-Archive.
func (s *IngestService) RunDirectory(ctx context.Context, dir string) error {
	parser := NewParser(s.Logger)
	opinions, err := parser.ParseDirectory(dir)
	if err != nil {
		return err
	}

	if err := s.UpsertOpinions(opinions); err != nil {
		return err
	}

	matched, err := s.EnrichAppeals(ctx)
	parser.Stats.AppealsFound = matched
	s.Logger.Info("Verzeichnis verarbeitet",
		zap.String("dir", dir),
		zap.String("stats", parser.FormatStats()))
	return err
}

// UpsertOpinions schreibt die Opinions idempotent in die Datenbank,
// geschlüsselt über das Aktenzeichen. Ein erneuter Lauf über dieselben
// Dateien erzeugt keine Duplikate.
func (s *IngestService) UpsertOpinions(opinions []*models.Opinion) error {
	for _, opinion := range opinions {
		if opinion.CaseNumber == "" {
			if opinion.ProceedingNumber == "" {
				s.Logger.Warn("Opinion ohne Aktenzeichen übersprungen",
					zap.String("title", opinion.CaseTitle))
				continue
			}
			opinion.CaseNumber = opinion.ProceedingNumber
		}

		err := s.DB.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "case_number"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"updated_at", "proceeding_number", "proceeding_type", "case_title",
				"filing_date", "decision_date", "parties", "judges",
				"outcome", "outcome_description", "winner", "subject_marks",
				"all_attorneys", "law_firms", "appeal_indicated",
				"source_file", "raw_data",
			}),
		}).Create(opinion).Error
		if err != nil {
			s.Logger.Error("Upsert fehlgeschlagen",
				zap.String("case_number", opinion.CaseNumber),
				zap.Error(err))
			continue
		}
		if s.OnUpsert != nil {
			s.OnUpsert()
		}
	}
	return nil
}

// EnrichAppeals sucht für alle Opinions ohne verknüpfte Berufung nach
// einem Federal-Circuit-Treffer und gibt die Zahl der neu verknüpften
// Berufungen zurück. Bereits verknüpfte Zeilen werden nicht erneut
// angefragt.
func (s *IngestService) EnrichAppeals(ctx context.Context) (int, error) {
	if !s.Matcher.Enabled() {
		s.Logger.Info("Appeal-Matching deaktiviert")
		return 0, nil
	}

	var opinions []models.Opinion
	err := s.DB.Where("federal_circuit_appeal_id IS NULL").Find(&opinions).Error
	if err != nil {
		return 0, fmt.Errorf("laden der unverknüpften Opinions fehlgeschlagen: %w", err)
	}

	matched := 0
	for i := range opinions {
		select {
		case <-ctx.Done():
			return matched, ctx.Err()
		default:
		}

		opinion := &opinions[i]
		appeal, matchErr := s.Matcher.FindAppeal(opinion)
		if matchErr != nil {
			s.Logger.Error("Appeal-Suche fehlgeschlagen",
				zap.String("case_number", opinion.CaseNumber),
				zap.Error(matchErr))
			continue
		}
		if appeal == nil {
			continue
		}

		if err := s.linkAppeal(opinion, appeal); err != nil {
			s.Logger.Error("Verknüpfen der Berufung fehlgeschlagen",
				zap.String("case_number", opinion.CaseNumber),
				zap.Error(err))
			continue
		}
		matched++
		if s.OnAppealMatch != nil {
			s.OnAppealMatch()
		}
	}

	s.Logger.Info("Appeal-Anreicherung abgeschlossen",
		zap.Int("checked", len(opinions)),
		zap.Int("matched", matched))
	return matched, nil
}

// linkAppeal persistiert die Berufung idempotent über die stabile
// CourtListener-ID und setzt den Fremdschlüssel der Opinion.
func (s *IngestService) linkAppeal(opinion *models.Opinion, appeal *models.FederalCircuitAppeal) error {
	if appeal.CourtListenerID != "" {
		var existing models.FederalCircuitAppeal
		err := s.DB.Where("court_listener_id = ?", appeal.CourtListenerID).First(&existing).Error
		if err == nil {
			appeal.ID = existing.ID
		} else if err != gorm.ErrRecordNotFound {
			return err
		}
	}

	if err := s.DB.Save(appeal).Error; err != nil {
		return err
	}

	opinion.FederalCircuitAppealID = &appeal.ID
	return s.DB.Model(opinion).Update("federal_circuit_appeal_id", appeal.ID).Error
}
