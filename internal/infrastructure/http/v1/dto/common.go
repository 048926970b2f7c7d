// Package dto provides Data Transfer Objects for API requests.
// Responses are the domain documents themselves, serialized through their json tags.
package dto

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"snackexport/internal/core/apperror"
	"snackexport/internal/core/entity"
	"snackexport/internal/core/id"
	"snackexport/internal/domain"
)

const dateLayout = "2006-01-02"

// Date accepts "2006-01-02" or RFC 3339 and holds the UTC calendar date.
type Date struct {
	time.Time
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Date) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}
	t, err := ParseDate(s)
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

// ParseDate parses "2006-01-02" or RFC 3339 into a UTC calendar date.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(dateLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	return entity.DateOf(t), nil
}

// Ptr returns the date as a pointer, nil for a missing date.
func (d *Date) Ptr() *time.Time {
	if d == nil || d.IsZero() {
		return nil
	}
	t := d.Time
	return &t
}

// --- List query ---

// ListQuery contains the query parameters shared by list endpoints.
type ListQuery struct {
	Search   string   `form:"search"`
	IDs      []string `form:"ids"`
	DateFrom string   `form:"dateFrom"`
	DateTo   string   `form:"dateTo"`
	OrderBy  string   `form:"orderBy"`
	Limit    int      `form:"limit" binding:"omitempty,min=1,max=500"`
	Offset   int      `form:"offset" binding:"omitempty,min=0"`
}

// ToFilter converts the query into a domain filter.
func (q ListQuery) ToFilter() (domain.ListFilter, error) {
	f := domain.DefaultListFilter()
	f.Search = strings.TrimSpace(q.Search)
	f.OrderBy = q.OrderBy
	f.Offset = q.Offset
	if q.Limit > 0 {
		f.Limit = q.Limit
	}

	ids, err := ParseIDs("ids", q.IDs)
	if err != nil {
		return f, err
	}
	f.IDs = ids

	if f.DateFrom, err = parseOptionalDate("dateFrom", q.DateFrom); err != nil {
		return f, err
	}
	if f.DateTo, err = parseOptionalDate("dateTo", q.DateTo); err != nil {
		return f, err
	}
	f.Normalize()
	return f, nil
}

func parseOptionalDate(field, s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := ParseDate(s)
	if err != nil {
		return nil, apperror.NewValidation(err.Error()).WithDetail("field", field)
	}
	return &t, nil
}

// ParseIDs parses ids given as repeated or comma-separated values.
func ParseIDs(field string, values []string) ([]id.ID, error) {
	var out []id.ID
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			parsed, err := id.Parse(part)
			if err != nil {
				return nil, apperror.NewValidation("invalid id format").
					WithDetail("field", field).
					WithDetail("value", part)
			}
			out = append(out, parsed)
		}
	}
	return out, nil
}

// ParseOptionalID parses an optional query id.
func ParseOptionalID(field, value string) (*id.ID, error) {
	parsed, err := id.ParseOptional(strings.TrimSpace(value))
	if err != nil {
		return nil, apperror.NewValidation("invalid id format").
			WithDetail("field", field).
			WithDetail("value", value)
	}
	return parsed, nil
}

// SplitValues splits repeated or comma-separated string values.
func SplitValues(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}

// --- Responses ---

// IDResponse for create operations.
type IDResponse struct {
	ID string `json:"id"`
}

// NewIDResponse creates ID response.
func NewIDResponse(i id.ID) IDResponse {
	return IDResponse{ID: i.String()}
}

// SuccessResponse for operations without data.
type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// ErrorResponse for error details.
type ErrorResponse struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}
