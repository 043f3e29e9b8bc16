package courtlistener

// searchResponse ist die Antwort des v4-Such-Endpunkts.
type searchResponse struct {
	Count    int            `json:"count"`
	Next     string         `json:"next"`
	Previous string         `json:"previous"`
	Results  []searchResult `json:"results"`
}

// searchResult ist ein einzelner Treffer der Opinion-Suche.
type searchResult struct {
	ID           int      `json:"id"`
	AbsoluteURL  string   `json:"absolute_url"`
	CaseName     string   `json:"caseName"`
	DocketNumber string   `json:"docketNumber"`
	DateFiled    string   `json:"dateFiled"`
	Judge        string   `json:"judge"`
	Citation     []string `json:"citation"`
	Snippet      string   `json:"snippet"`
	Court        string   `json:"court"`
	Status       string   `json:"status"`
}
