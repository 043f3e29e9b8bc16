// Package courtlistener implementiert den Zugriff auf die CourtListener
// REST-API v4 für die Suche nach Federal-Circuit-Entscheidungen.
package courtlistener

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/anseljh/ttab-parser/models"
)

// courtFederalCircuit ist der CourtListener-Bezeichner des Federal Circuit.
const courtFederalCircuit = "cafc"

// maxPageSize ist das API-Limit pro Suchanfrage.
const maxPageSize = 100

var httpClient = &http.Client{Timeout: 30 * time.Second}

// Client greift auf die CourtListener-Such-API zu. Anfragen werden
// serialisiert und auf minInterval gedrosselt, damit die Rate-Limits
// der API auch bei parallelem Matching eingehalten werden.
type Client struct {
	baseURL     string
	apiToken    string
	minInterval time.Duration
	logger      *zap.Logger

	mu          sync.Mutex
	lastRequest time.Time
}

// New erstellt einen neuen CourtListener-Client.
func New(baseURL, apiToken string, minInterval time.Duration, logger *zap.Logger) *Client {
	return &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		apiToken:    apiToken,
		minInterval: minInterval,
		logger:      logger,
	}
}

// Name liefert den Anzeigenamen des Providers.
func (c *Client) Name() string {
	return "courtlistener"
}

// Enabled gibt an, ob ein API-Token konfiguriert ist. Die API erlaubt
// anonyme Anfragen nur mit stark reduziertem Rate-Limit, deshalb läuft
// das Matching ohne Token nicht an.
func (c *Client) Enabled() bool {
	return c.apiToken != ""
}

// Search sucht Federal-Circuit-Opinions, absteigend nach Einreichungsdatum.
func (c *Client) Search(query string, limit int) ([]*models.AppealCandidate, error) {
	if limit <= 0 || limit > maxPageSize {
		limit = maxPageSize
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("type", "o")
	params.Set("court", courtFederalCircuit)
	params.Set("order_by", "dateFiled desc")
	params.Set("page_size", strconv.Itoa(limit))

	var response searchResponse
	if err := c.get("/search/?"+params.Encode(), &response); err != nil {
		return nil, err
	}

	candidates := make([]*models.AppealCandidate, 0, len(response.Results))
	for _, result := range response.Results {
		candidates = append(candidates, toCandidate(result))
	}
	return candidates, nil
}

// get führt eine gedrosselte GET-Anfrage aus und dekodiert die Antwort.
func (c *Client) get(path string, dest any) error {
	c.throttle()

	req, err := http.NewRequest(http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("erstellen der CourtListener-Anfrage fehlgeschlagen: %w", err)
	}
	req.Header.Set("User-Agent", "ttab-parser/1.0")
	if c.apiToken != "" {
		req.Header.Set("Authorization", "Token "+c.apiToken)
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("CourtListener-Anfrage fehlgeschlagen: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("CourtListener antwortete mit Status %d: %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("dekodieren der CourtListener-Antwort fehlgeschlagen: %w", err)
	}
	return nil
}

// throttle serialisiert die Anfragen und erzwingt den Mindestabstand.
func (c *Client) throttle() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.minInterval > 0 {
		if wait := c.minInterval - time.Since(c.lastRequest); wait > 0 {
			time.Sleep(wait)
		}
	}
	c.lastRequest = time.Now()
}

// toCandidate wandelt einen Suchtreffer in einen Kandidaten um.
func toCandidate(result searchResult) *models.AppealCandidate {
	candidate := &models.AppealCandidate{
		ExternalID:   strconv.Itoa(result.ID),
		CaseName:     result.CaseName,
		DocketNumber: result.DocketNumber,
		DateFiled:    result.DateFiled,
		Summary:      result.Snippet,
		AbsoluteURL:  result.AbsoluteURL,
	}
	if candidate.AbsoluteURL == "" && result.ID != 0 {
		candidate.AbsoluteURL = fmt.Sprintf("https://www.courtlistener.com/opinion/%d/", result.ID)
	}
	if len(result.Citation) > 0 {
		candidate.Citation = result.Citation[0]
	}
	for _, name := range strings.Split(result.Judge, ",") {
		if name = strings.TrimSpace(name); name != "" {
			candidate.Judges = append(candidate.Judges, name)
		}
	}
	return candidate
}
