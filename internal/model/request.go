package model

// Event log paging limits.
const (
	DefaultEventPageSize = 20
	MaxEventPageSize     = 200
)

// PaginationRequest is the page/page_size query of a listing.
type PaginationRequest struct {
	Page     int `json:"page" form:"page"`
	PageSize int `json:"page_size" form:"page_size"`
}

// DefaultPagination fills in the first page and DefaultEventPageSize.
// A page size above MaxEventPageSize is capped.
func (p *PaginationRequest) DefaultPagination() {
	if p.Page <= 0 {
		p.Page = 1
	}
	switch {
	case p.PageSize <= 0:
		p.PageSize = DefaultEventPageSize
	case p.PageSize > MaxEventPageSize:
		p.PageSize = MaxEventPageSize
	}
}

// Offset returns the number of rows to skip.
func (p *PaginationRequest) Offset() int {
	return (p.Page - 1) * p.PageSize
}
