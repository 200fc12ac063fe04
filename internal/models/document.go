package models

type GenerateDocumentRequest struct {
	Images []string `json:"imagensSelecionadas"`
}

// DocumentEvent is a websocket frame sent while a document is assembled
type DocumentEvent struct {
	Event    string `json:"event"` // "progress", "complete", "error"
	Page     int    `json:"page,omitempty"`
	Total    int    `json:"total,omitempty"`
	URL      string `json:"url,omitempty"`
	Size     int    `json:"size,omitempty"`
	Filename string `json:"filename,omitempty"`
	Status   int    `json:"status,omitempty"`
	Error    string `json:"error,omitempty"`
}
