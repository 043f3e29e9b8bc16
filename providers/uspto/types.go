package uspto

// productResponse ist die Antwort des Open-Data-Portal-Produkt-Endpunkts.
type productResponse struct {
	Count              int       `json:"count"`
	BulkDataProductBag []product `json:"bulkDataProductBag"`
}

// product beschreibt ein Bulk-Data-Produkt inklusive seiner Dateien.
type product struct {
	ProductIdentifier string       `json:"productIdentifier"`
	ProductTitleText  string       `json:"productTitleText"`
	ProductFileBag    productFiles `json:"productFileBag"`
	LastModifiedDate  string       `json:"lastModifiedDateTime"`
}

type productFiles struct {
	Count       int        `json:"count"`
	FileDataBag []fileData `json:"fileDataBag"`
}

// fileData beschreibt eine einzelne herunterladbare Datei.
type fileData struct {
	FileName        string `json:"fileName"`
	FileSize        int64  `json:"fileSize"`
	FileDate        string `json:"fileDate"`
	FileDownloadURI string `json:"fileDownloadURI"`
	FileTypeText    string `json:"fileTypeText"`
}
