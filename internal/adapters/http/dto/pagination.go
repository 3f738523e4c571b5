package dto

import (
	"encoding/base64"
	"encoding/json"
	"errors"
)

// Page sizes accepted by list endpoints.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// ErrInvalidCursor is returned for a cursor that was not minted by this API
// or that belongs to another sort key.
var ErrInvalidCursor = errors.New("invalid cursor")

// PageQuery is the ?cursor=&limit= query of a list endpoint.
type PageQuery struct {
	// Cursor is the NextCursor of the previous page, empty for the first page.
	Cursor string `form:"cursor"`

	Limit int `form:"limit" validate:"omitempty,gte=1,lte=100"`
}

// Size returns the page size, DefaultPageSize when no limit was given.
func (q PageQuery) Size() int {
	switch {
	case q.Limit <= 0:
		return DefaultPageSize
	case q.Limit > MaxPageSize:
		return MaxPageSize
	default:
		return q.Limit
	}
}

// After returns the key the page starts after, or "" for the first page.
func (q PageQuery) After(sortKey string) (string, error) {
	if q.Cursor == "" {
		return "", nil
	}

	cur, err := decodeCursor(q.Cursor)
	if err != nil || cur.SortKey != sortKey {
		return "", ErrInvalidCursor
	}

	return cur.After, nil
}

// Page is one page of a keyset-paginated listing.
type Page[T any] struct {
	Items      []T    `json:"items"`
	NextCursor string `json:"nextCursor,omitempty"`
	HasMore    bool   `json:"hasMore"`
}

// NewPage builds a page from items fetched with size+1 elements: the extra
// element only signals that another page exists and is dropped.
func NewPage[T any](items []T, size int, sortKey string, keyOf func(T) string) Page[T] {
	page := Page[T]{Items: items}
	if len(items) <= size {
		return page
	}

	page.Items = items[:size]
	page.HasMore = true

	if size > 0 {
		page.NextCursor = EncodeCursor(sortKey, keyOf(page.Items[size-1]))
	}

	return page
}

type cursor struct {
	SortKey string `json:"k"`
	After   string `json:"a"`
}

// EncodeCursor returns the opaque cursor resuming a listing sorted on sortKey
// after the given key.
func EncodeCursor(sortKey, after string) string {
	raw, err := json.Marshal(cursor{SortKey: sortKey, After: after})
	if err != nil {
		return ""
	}

	return base64.RawURLEncoding.EncodeToString(raw)
}

func decodeCursor(encoded string) (cursor, error) {
	var cur cursor

	raw, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return cur, ErrInvalidCursor
	}

	if err := json.Unmarshal(raw, &cur); err != nil {
		return cur, ErrInvalidCursor
	}

	return cur, nil
}
