package tracker

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// PageRequest selects one page of a listing. Page is 0-based.
type PageRequest struct {
	Page int `json:"page"`
	Size int `json:"size"`
}

// NewPageRequest clamps page and size into range
func NewPageRequest(page, size int) PageRequest {
	return PageRequest{Page: page, Size: size}.Normalize()
}

// Normalize fills defaults and clamps out of range values
func (p PageRequest) Normalize() PageRequest {
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

// Offset is the number of rows to skip
func (p PageRequest) Offset() int {
	p = p.Normalize()
	return p.Page * p.Size
}

// Page is one page of results
type Page[T any] struct {
	Content       []T  `json:"content"`
	Page          int  `json:"page"`
	Size          int  `json:"size"`
	TotalElements int  `json:"total_elements"`
	TotalPages    int  `json:"total_pages"`
	First         bool `json:"first"`
	Last          bool `json:"last"`
}

// NewPage builds a Page from the rows of req and the total row count
func NewPage[T any](content []T, req PageRequest, total int) Page[T] {
	req = req.Normalize()
	if content == nil {
		content = []T{}
	}

	pages := 0
	if total > 0 {
		pages = (total + req.Size - 1) / req.Size
	}

	return Page[T]{
		Content:       content,
		Page:          req.Page,
		Size:          req.Size,
		TotalElements: total,
		TotalPages:    pages,
		First:         req.Page == 0,
		Last:          req.Page >= pages-1,
	}
}

// MapPage converts the content of a page
func MapPage[T, R any](page Page[T], fn func(T) R) Page[R] {
	out := make([]R, 0, len(page.Content))
	for _, item := range page.Content {
		out = append(out, fn(item))
	}
	return Page[R]{
		Content:       out,
		Page:          page.Page,
		Size:          page.Size,
		TotalElements: page.TotalElements,
		TotalPages:    page.TotalPages,
		First:         page.First,
		Last:          page.Last,
	}
}
