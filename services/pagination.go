package services

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// Page is a limit/offset window over an ordered list.
type Page struct {
	Limit  int
	Offset int
}

// Normalize clamps the window to sane bounds.
func (p Page) Normalize() Page {
	if p.Limit <= 0 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}

// List is the envelope every list endpoint returns.
type List[T any] struct {
	Items   []T   `json:"items"`
	Total   int64 `json:"total"`
	HasMore bool  `json:"hasMore"`
}

func newList[T any](items []T, total int64, p Page) List[T] {
	if items == nil {
		items = []T{}
	}
	return List[T]{
		Items:   items,
		Total:   total,
		HasMore: total > int64(p.Offset+p.Limit),
	}
}
