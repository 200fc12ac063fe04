package models

// Photo is a row of tb_imoveis_fotos. The JSON keys follow the table columns
// so the front end can keep reading foto.foto.
type Photo struct {
	ID         int64  `json:"id" db:"id"`
	PropertyID int64  `json:"imovel" db:"imovel"`
	URL        string `json:"foto" db:"foto"`
}
