package domain

// Размеры страницы списка сохранённых сделок.
const (
	DefaultPageSize = 20
	MaxPageSize     = 500
)

// PaginatedResult — страница выборки и общее число записей под фильтром.
type PaginatedResult[T any] struct {
	Items      []T   `json:"items"`
	TotalCount int32 `json:"totalCount"`
	HasMore    bool  `json:"hasMore"`
}

// NormalizePageSize приводит размер страницы из запроса к [1, MaxPageSize].
func NormalizePageSize(size int32) int32 {
	switch {
	case size <= 0:
		return DefaultPageSize
	case size > MaxPageSize:
		return MaxPageSize
	default:
		return size
	}
}

// Pager — номер страницы (с 1) и её размер.
type Pager struct {
	page, perPage int32
}

func NewPager(page int32, perPage int32) *Pager {
	return &Pager{page: page, perPage: perPage}
}

// Limit — LIMIT для SQL. nil или нулевой размер дают DefaultPageSize.
func (p *Pager) Limit() int64 {
	if p == nil || p.perPage <= 0 {
		return DefaultPageSize
	}
	return min(MaxPageSize, int64(p.perPage))
}

// Offset — OFFSET для SQL, согласованный с Limit.
func (p *Pager) Offset() int64 {
	if p == nil || p.page <= 1 {
		return 0
	}
	return int64(p.page-1) * p.Limit()
}
