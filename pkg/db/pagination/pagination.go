package pagination

import (
	"encoding/base64"
	"encoding/json"

	"gorm.io/gorm"
)

type Pagination struct {
	PageToken string `form:"page_token"`
	PageSize  int    `form:"page_size,default=50"`
}

type Cursor struct {
	ID        string `json:"id,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
}

type PageInfo struct {
	NextPageToken string `json:"next_page_token"`
	HasMore       bool   `json:"has_more"`
}

func EncodeCursor(data Cursor) (string, error) {
	b, err := json.Marshal(data)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(b), nil
}

func DecodeCursor(data string) (*Cursor, error) {
	b, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, err
	}

	var cursor Cursor
	if err := json.Unmarshal(b, &cursor); err != nil {
		return nil, err
	}
	return &cursor, nil
}

// Apply adds cursor and limit clauses to a statement ordered by
// (created_at desc, id desc). One extra row is fetched so the caller can
// detect whether more pages remain.
func Apply(stmt *gorm.DB, page Pagination) *gorm.DB {
	size := page.PageSize
	if size <= 0 {
		size = 50
	}
	if size > 250 {
		size = 250
	}

	if page.PageToken != "" {
		if cursor, err := DecodeCursor(page.PageToken); err == nil && cursor != nil {
			stmt = stmt.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
		}
	}

	return stmt.Limit(size + 1)
}

// BuildPageInfo trims the probe row and produces next-page metadata.
func BuildPageInfo[T any](items []*T, pageSize int, extractCursor func(*T) string) ([]*T, PageInfo) {
	size := pageSize
	if size <= 0 {
		size = 50
	}
	if len(items) <= size {
		return items, PageInfo{HasMore: false}
	}

	items = items[:size]
	return items, PageInfo{
		HasMore:       true,
		NextPageToken: extractCursor(items[len(items)-1]),
	}
}
