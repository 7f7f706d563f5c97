package query

import (
	"errors"
	"strings"
)

var ErrInvalidSortColumn = errors.New("invalid sort column")

// SortColumn is one of the columns a thread may be ordered by.
type SortColumn string

const (
	SortByCreateDate SortColumn = "create_date"
	SortBySenderName SortColumn = "sender_name"
	SortByType       SortColumn = "type"
)

var sortColumns = map[SortColumn]string{
	SortByCreateDate: "m.created_at",
	SortBySenderName: "u.username",
	SortByType:       "m.type",
}

// ParseSortColumn validates a caller supplied column name.
func ParseSortColumn(s string) (SortColumn, error) {
	col := SortColumn(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := sortColumns[col]; !ok {
		return "", ErrInvalidSortColumn
	}
	return col, nil
}

// Sort is an ordering specification.
type Sort struct {
	Column SortColumn
	Asc    bool
}

// DefaultSort is conversation reading order: oldest first.
var DefaultSort = Sort{Column: SortByCreateDate, Asc: true}

func (s Sort) orderBy() string {
	expr, ok := sortColumns[s.Column]
	if !ok {
		expr = sortColumns[SortByCreateDate]
	}
	if s.Asc {
		return expr + " ASC"
	}
	return expr + " DESC"
}
