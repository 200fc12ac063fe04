package models

import "encoding/json"

// Property is a row of view_imoveis. Columns other than the ones mapped to
// fields are kept in Attributes and rendered alongside them.
type Property struct {
	ID          int64
	Code        string
	Name        string
	Description string
	Attributes  map[string]any
}

func (p Property) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(p.Attributes)+4)
	for k, v := range p.Attributes {
		out[k] = v
	}
	out["id"] = p.ID
	out["codigo"] = p.Code
	out["nome"] = p.Name
	out["descricao"] = p.Description
	return json.Marshal(out)
}

type PropertyResponse struct {
	Code     string    `json:"codigo"`
	Property *Property `json:"imovel"`
	Photos   []Photo   `json:"fotos"`
}
