// Package datasets provides the dataset driver registry, shared parsing
// options, column utilities, preview collection, and the SQLite import
// engine. Format-specific drivers live in subpackages and register
// themselves on import, database/sql style.
package datasets

import (
	"io"
	"time"
)

// ParseOptions carries per-file parsing settings. Zero values mean
// "detect or default": a zero Delimiter/Decimal is filled in by format
// detection, an empty TableName by the driver's default.
type ParseOptions struct {
	Delimiter       rune
	Decimal         rune
	TableName       string
	AssessHeaderRow bool          // scan the leading rows for the best header candidate
	ScanTimeout     time.Duration // abort a stalled row scan, 0 disables
}

// RowProvider supplies tabular data for preview and import. A provider may
// expose several tables (spreadsheet sheets, archive members).
type RowProvider interface {
	TableNames() []string
	Headers(table string) []string
	ColumnTypes(table string) []string
	// ScanRows streams rows of a table through yield. A per-row read error
	// is passed to yield with a nil row; if yield returns an error the scan
	// stops and that error is returned.
	ScanRows(table string, yield func(row []any, err error) error) error
}

// Driver opens a RowProvider over raw input. Implementations register
// themselves via Register in an init function.
type Driver interface {
	Open(source io.Reader, opts *ParseOptions) (RowProvider, error)
}
