package auth

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// PageRequest selects a zero based page
type PageRequest struct {
	Page int `json:"page"`
	Size int `json:"size"`
}

func (p PageRequest) normalize() PageRequest {
	if p.Page < 0 {
		p.Page = 0
	}
	if p.Size <= 0 {
		p.Size = DefaultPageSize
	}
	if p.Size > MaxPageSize {
		p.Size = MaxPageSize
	}
	return p
}

// Offset is the number of rows skipped
func (p PageRequest) Offset() int {
	return p.Page * p.Size
}

// Page is a slice of results plus the active row count
type Page[T any] struct {
	Items      []T `json:"items"`
	Total      int `json:"total"`
	Page       int `json:"page"`
	Size       int `json:"size"`
	TotalPages int `json:"totalPages"`
}

func newPage[T any](items []T, total int, req PageRequest) *Page[T] {
	req = req.normalize()
	pages := 0
	if total > 0 {
		pages = (total + req.Size - 1) / req.Size
	}
	return &Page[T]{
		Items:      items,
		Total:      total,
		Page:       req.Page,
		Size:       req.Size,
		TotalPages: pages,
	}
}
