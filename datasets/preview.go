package datasets

import (
	"errors"
	"fmt"
)

// Preview holds the leading rows of one table for display before import.
type Preview struct {
	Table   string
	Headers []string
	Types   []string
	Rows    [][]string
}

var errPreviewDone = errors.New("preview complete")

// Collect reads up to n rows of the named table. The provider is consumed;
// streaming providers cannot be previewed and then imported from the same
// instance.
func Collect(provider RowProvider, table string, n int) (*Preview, error) {
	headers := provider.Headers(table)
	if headers == nil {
		return nil, fmt.Errorf("unknown table %q", table)
	}

	p := &Preview{
		Table:   table,
		Headers: headers,
		Types:   provider.ColumnTypes(table),
	}
	err := provider.ScanRows(table, func(row []any, rowErr error) error {
		if rowErr != nil {
			return rowErr
		}
		cells := make([]string, len(row))
		for i, v := range row {
			cells[i] = fmt.Sprintf("%v", v)
		}
		p.Rows = append(p.Rows, cells)
		if len(p.Rows) >= n {
			return errPreviewDone
		}
		return nil
	})
	if err != nil && !errors.Is(err, errPreviewDone) {
		return nil, err
	}
	return p, nil
}
