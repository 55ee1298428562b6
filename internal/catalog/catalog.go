package catalog

import (
	"strings"

	"github.com/yungbote/questionbot-backend/internal/domain/question"
)

// Catalog is the ordered question list. It is built once at startup and only
// read afterwards, so concurrent lookups need no locking.
type Catalog struct {
	records []question.Record
}

func New(records []question.Record) *Catalog {
	cp := make([]question.Record, len(records))
	copy(cp, records)
	return &Catalog{records: cp}
}

func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.records)
}

// At returns the record for a 1-based question index.
func (c *Catalog) At(index int) (question.Record, bool) {
	if c == nil || index < 1 || index > len(c.records) {
		return question.Record{}, false
	}
	return c.records[index-1], true
}

func (c *Catalog) Records() []question.Record {
	if c == nil {
		return nil
	}
	out := make([]question.Record, len(c.records))
	copy(out, c.records)
	return out
}

// FromRows maps spreadsheet rows to records: column 0 is the question text,
// column 1 the ';'-separated quick reply options. Rows with a blank question
// cell produce no record.
func FromRows(rows [][]string) []question.Record {
	out := make([]question.Record, 0, len(rows))
	for _, row := range rows {
		if len(row) == 0 || strings.TrimSpace(row[0]) == "" {
			continue
		}
		opts := []string{}
		if len(row) > 1 && row[1] != "" {
			opts = ParseOptions(row[1])
		}
		out = append(out, question.Record{
			Text:              row[0],
			QuickReplyOptions: opts,
		})
	}
	return out
}

// ParseOptions splits on ';' and trims each piece, keeping order and empty pieces.
func ParseOptions(cell string) []string {
	parts := strings.Split(cell, ";")
	out := make([]string, len(parts))
	for i, p := range parts {
		out[i] = strings.TrimSpace(p)
	}
	return out
}
