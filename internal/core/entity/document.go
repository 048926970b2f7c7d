package entity

import (
	"time"

	"snackexport/internal/core/id"
)

// Document is the base type for numbered workflow documents
// (sales/purchase orders, receiving notes, container plans, outbound orders, logistics records).
type Document struct {
	BaseDocument

	// Number is the document number (auto-generated, unique per document type)
	Number string `db:"number" json:"number"`

	// Remark is an optional free-form comment
	Remark string `db:"remark" json:"remark,omitempty"`
}

// NewDocument creates a new Document with generated ID.
func NewDocument() Document {
	return Document{
		BaseDocument: NewBaseDocument(),
	}
}

// GetID returns the document ID.
func (d *Document) GetID() id.ID {
	return d.ID
}

// GetNumber returns the document number.
func (d *Document) GetNumber() string {
	return d.Number
}

// Today returns the current UTC calendar date with the time component stripped.
func Today() time.Time {
	return DateOf(time.Now().UTC())
}

// DateOf truncates t to its calendar date in UTC.
func DateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
