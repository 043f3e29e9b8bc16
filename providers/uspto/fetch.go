// Package uspto lädt die täglichen und jährlichen TTAB-Bulk-XML-Dateien
// über das USPTO Open Data Portal.
package uspto

import (
	"archive/zip"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Produkt-Bezeichner der TTAB-Datensätze im Open Data Portal.
const (
	ProductDaily  = "TTABTDXF"
	ProductYearly = "TTABYR"
)

var httpClient = &http.Client{Timeout: 10 * time.Minute}

// Fetcher lädt TTAB-Bulk-Dateien herunter und entpackt sie in das
// Datenverzeichnis.
type Fetcher struct {
	baseURL string
	apiKey  string
	dataDir string
	logger  *zap.Logger
}

// NewFetcher erstellt einen neuen Fetcher.
func NewFetcher(baseURL, apiKey, dataDir string, logger *zap.Logger) *Fetcher {
	return &Fetcher{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		dataDir: dataDir,
		logger:  logger,
	}
}

// Enabled gibt an, ob ein API-Key konfiguriert ist.
func (f *Fetcher) Enabled() bool {
	return f.apiKey != ""
}

// FetchDaily lädt alle Dateien des Tages-Produkts, die seit from
// veröffentlicht wurden, und liefert die Pfade der entpackten XML-Dateien.
func (f *Fetcher) FetchDaily(from time.Time) ([]string, error) {
	return f.fetchProduct(ProductDaily, from)
}

// FetchYearly lädt die Jahres-Archive seit from.
func (f *Fetcher) FetchYearly(from time.Time) ([]string, error) {
	return f.fetchProduct(ProductYearly, from)
}

func (f *Fetcher) fetchProduct(productID string, from time.Time) ([]string, error) {
	params := url.Values{}
	params.Set("fileDataFromDate", from.Format("2006-01-02"))

	requestURL := fmt.Sprintf("%s/%s?%s", f.baseURL, productID, params.Encode())
	req, err := http.NewRequest(http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("erstellen der Produkt-Anfrage fehlgeschlagen: %w", err)
	}
	req.Header.Set("X-API-KEY", f.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("produkt-Anfrage für %s fehlgeschlagen: %w", productID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("open Data Portal antwortete mit Status %d für %s", resp.StatusCode, productID)
	}

	var response productResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("dekodieren der Produkt-Antwort fehlgeschlagen: %w", err)
	}
	if len(response.BulkDataProductBag) == 0 {
		return nil, fmt.Errorf("produkt %s nicht gefunden", productID)
	}

	product := response.BulkDataProductBag[0]
	f.logger.Info("Bulk-Data-Produkt gefunden",
		zap.String("product", productID),
		zap.Int("files", len(product.ProductFileBag.FileDataBag)))

	if err := os.MkdirAll(f.dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("anlegen von %s fehlgeschlagen: %w", f.dataDir, err)
	}

	var extracted []string
	for _, file := range product.ProductFileBag.FileDataBag {
		if file.FileDownloadURI == "" {
			continue
		}
		// Die API filtert bereits nach fileDataFromDate; ältere Einträge
		// tauchen trotzdem gelegentlich im Bag auf.
		if fileDate, parseErr := time.Parse("2006-01-02", file.FileDate); parseErr == nil && fileDate.Before(from) {
			continue
		}

		paths, err := f.downloadFile(file)
		if err != nil {
			f.logger.Error("Download fehlgeschlagen",
				zap.String("file", file.FileName),
				zap.Error(err))
			continue
		}
		extracted = append(extracted, paths...)
	}
	return extracted, nil
}

// downloadFile lädt eine einzelne Datei herunter. ZIP-Archive werden in das
// Datenverzeichnis entpackt, XML-Dateien direkt gespeichert.
func (f *Fetcher) downloadFile(file fileData) ([]string, error) {
	req, err := http.NewRequest(http.MethodGet, file.FileDownloadURI, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-API-KEY", f.apiKey)

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download antwortete mit Status %d", resp.StatusCode)
	}

	target := filepath.Join(f.dataDir, filepath.Base(file.FileName))
	out, err := os.Create(target)
	if err != nil {
		return nil, err
	}
	size, err := io.Copy(out, resp.Body)
	closeErr := out.Close()
	if err != nil {
		return nil, err
	}
	if closeErr != nil {
		return nil, closeErr
	}

	f.logger.Info("Datei heruntergeladen",
		zap.String("file", file.FileName),
		zap.Int64("bytes", size))

	if strings.HasSuffix(strings.ToLower(target), ".zip") {
		return f.extractZip(target)
	}
	return []string{target}, nil
}

// extractZip entpackt die XML-Dateien eines Archivs in das Datenverzeichnis.
func (f *Fetcher) extractZip(archivePath string) ([]string, error) {
	reader, err := zip.OpenReader(archivePath)
	if err != nil {
		return nil, fmt.Errorf("öffnen von %s fehlgeschlagen: %w", archivePath, err)
	}
	defer reader.Close()

	var extracted []string
	for _, entry := range reader.File {
		if entry.FileInfo().IsDir() {
			continue
		}
		name := filepath.Base(entry.Name)
		if !strings.HasSuffix(strings.ToLower(name), ".xml") {
			continue
		}

		src, err := entry.Open()
		if err != nil {
			return extracted, err
		}
		target := filepath.Join(f.dataDir, name)
		out, err := os.Create(target)
		if err != nil {
			src.Close()
			return extracted, err
		}
		_, err = io.Copy(out, src)
		src.Close()
		if closeErr := out.Close(); err == nil {
			err = closeErr
		}
		if err != nil {
			return extracted, err
		}
		extracted = append(extracted, target)
	}

	f.logger.Info("Archiv entpackt",
		zap.String("archive", filepath.Base(archivePath)),
		zap.Int("xml_files", len(extracted)))
	return extracted, nil
}
