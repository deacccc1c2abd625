package api

import (
	"bytes"
	"encoding/json"
)

// Optional is a JSON field that distinguishes absent, null, and set.
// Absent fields leave Defined false; an explicit null sets Defined with
// a nil Value.
type Optional[T any] struct {
	Defined bool
	Value   *T
}

// UnmarshalJSON implements json.Unmarshaler. It is only called when
// the field is present in the payload.
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Defined = true
	if bytes.Equal(data, []byte("null")) {
		o.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	o.Value = &v
	return nil
}

// NotePatchRequest is the body for PATCH /api/notes/{id}. Every field
// is optional; a request defining none of them is rejected. When both
// category forms are present the multi-category one wins.
type NotePatchRequest struct {
	CategoryIDs Optional[[]string] `json:"category_ids"`
	CategoryID  Optional[string]   `json:"category_id"`
	IsFavorite  Optional[bool]     `json:"is_favorite"`
}

// CreateNoteRequest is the body for POST /api/notes.
type CreateNoteRequest struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	FilePath string `json:"file_path"`
}

// NameRequest carries a single name, for create and rename endpoints.
type NameRequest struct {
	Name string `json:"name"`
}

// MoveRequest is the body for /move endpoints.
type MoveRequest struct {
	Index     int    `json:"index"`
	Direction string `json:"direction"`
}

// OrderRequest is the body for /order endpoints.
type OrderRequest struct {
	From int `json:"from"`
	To   int `json:"to"`
}

// SubgroupMoveRequest scopes a move to the siblings of one group.
type SubgroupMoveRequest struct {
	GroupID   string `json:"group_id"`
	Index     int    `json:"index"`
	Direction string `json:"direction"`
}

// SubgroupOrderRequest scopes a reorder to the siblings of one group.
type SubgroupOrderRequest struct {
	GroupID string `json:"group_id"`
	From    int    `json:"from"`
	To      int    `json:"to"`
}

type successResponse struct {
	Success bool `json:"success"`
}

type idResponse struct {
	ID      string `json:"id"`
	Success bool   `json:"success"`
}
