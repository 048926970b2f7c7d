package memstore

import (
	"slices"
	"strings"
	"time"

	"snackexport/internal/core/id"
	"snackexport/internal/domain"
)

// doc exposes the columns the generic list helper filters and sorts on.
type doc struct {
	id      id.ID
	number  string
	date    time.Time
	created time.Time
}

// page applies the common filter, ordering and pagination to rows.
func page[T any](rows []T, filter domain.ListFilter, cols func(T) doc) domain.ListResult[T] {
	search := strings.ToLower(strings.TrimSpace(filter.Search))
	kept := make([]T, 0, len(rows))
	for _, r := range rows {
		c := cols(r)
		if len(filter.IDs) > 0 && !slices.Contains(filter.IDs, c.id) {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(c.number), search) {
			continue
		}
		if filter.DateFrom != nil && c.date.Before(*filter.DateFrom) {
			continue
		}
		if filter.DateTo != nil && c.date.After(*filter.DateTo) {
			continue
		}
		kept = append(kept, r)
	}

	field := strings.TrimLeft(filter.OrderBy, "+-")
	slices.SortStableFunc(kept, func(a, b T) int {
		ca, cb := cols(a), cols(b)
		switch field {
		case "number":
			return strings.Compare(ca.number, cb.number)
		case "date":
			return ca.date.Compare(cb.date)
		}
		return ca.created.Compare(cb.created)
	})
	if strings.HasPrefix(filter.OrderBy, "-") {
		slices.Reverse(kept)
	}

	result := domain.ListResult[T]{
		TotalCount: int64(len(kept)),
		Limit:      filter.Limit,
		Offset:     filter.Offset,
	}
	start := min(max(filter.Offset, 0), len(kept))
	end := len(kept)
	if filter.Limit > 0 {
		end = min(start+filter.Limit, len(kept))
	}
	result.Items = kept[start:end]
	return result
}

func containsID(ids []id.ID, v id.ID) bool {
	return slices.Contains(ids, v)
}

func ptrEqual(a *id.ID, b id.ID) bool {
	return a != nil && *a == b
}
