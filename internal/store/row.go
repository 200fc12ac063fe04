package store

import (
	"fmt"

	"imovel-backend/internal/models"
)

// PropertyFromRow maps a view_imoveis row to a Property. id and codigo are
// mandatory; nome and descricao may be NULL.
func PropertyFromRow(row map[string]any) (*models.Property, error) {
	id, ok := toInt64(row["id"])
	if !ok {
		return nil, fmt.Errorf("property row: unexpected id %T", row["id"])
	}
	code, ok := row["codigo"].(string)
	if !ok {
		return nil, fmt.Errorf("property row: unexpected codigo %T", row["codigo"])
	}

	p := &models.Property{
		ID:          id,
		Code:        code,
		Name:        toString(row["nome"]),
		Description: toString(row["descricao"]),
		Attributes:  make(map[string]any, len(row)),
	}
	for k, v := range row {
		switch k {
		case "id", "codigo", "nome", "descricao":
		default:
			p.Attributes[k] = v
		}
	}
	return p, nil
}

func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int32:
		return int64(n), true
	case int16:
		return int64(n), true
	case int:
		return int64(n), true
	default:
		return 0, false
	}
}

func toString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case []byte:
		return string(s)
	default:
		return fmt.Sprint(s)
	}
}
