package car

import (
	"strings"
)

const (
	defaultSearchLimit = 24
	maxSearchLimit     = 60
)

// SearchSort defines a supported catalog ordering.
type SearchSort string

const (
	SortByPriceAsc  SearchSort = "price_asc"
	SortByPriceDesc SearchSort = "price_desc"
	SortByNewest    SearchSort = "newest"
)

// SearchParams describe catalog filters and paging options. Interval
// filtering (only cars free for a requested slot) happens one level up,
// in the search use case, because it needs the booking repository.
type SearchParams struct {
	City           string
	Owner          OwnerID
	Transmission   Transmission
	FuelType       FuelType
	MinSeats       int
	MaxDailyRate   int64
	Sort           SearchSort
	Limit          int
	Offset         int
	IncludeRemoved bool
}

type SearchResult struct {
	Items []*Car
	Total int
}

// Normalized returns a sanitized copy of params.
func (p SearchParams) Normalized() SearchParams {
	n := p
	n.City = strings.TrimSpace(strings.ToLower(n.City))
	if n.MinSeats < 0 {
		n.MinSeats = 0
	}
	if n.MaxDailyRate < 0 {
		n.MaxDailyRate = 0
	}
	if n.Limit <= 0 {
		n.Limit = defaultSearchLimit
	}
	if n.Limit > maxSearchLimit {
		n.Limit = maxSearchLimit
	}
	if n.Offset < 0 {
		n.Offset = 0
	}
	switch n.Sort {
	case SortByPriceAsc, SortByPriceDesc, SortByNewest:
	default:
		n.Sort = SortByPriceAsc
	}
	return n
}
