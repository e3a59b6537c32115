package models

// Page is the offset/limit window requested by a listing endpoint
type Page struct {
	Page  int64
	Limit int64
}

// Skip is the number of documents before the window
func (p Page) Skip() int64 {
	return (p.Page - 1) * p.Limit
}

// CountData is the envelope returned by every paginated listing
type CountData[T any] struct {
	Page  int64 `json:"page"`
	Limit int64 `json:"limit"`
	Total int64 `json:"total"`
	Data  []T   `json:"data"`
}

// NewCountData never renders a null data array
func NewCountData[T any](p Page, total int64, data []T) CountData[T] {
	if data == nil {
		data = []T{}
	}
	return CountData[T]{Page: p.Page, Limit: p.Limit, Total: total, Data: data}
}

// NotificationPage adds the unread counter to the listing
type NotificationPage struct {
	CountData[Notification]
	Unread int64 `json:"unread"`
}
