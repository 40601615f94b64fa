// Package excel provides the spreadsheet dataset driver. Every sheet
// becomes one table.
package excel

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/GBeurier/nirspipe/datasets"
)

func init() {
	datasets.Register("excel", &driver{})
}

type driver struct{}

func (d *driver) Open(source io.Reader, opts *datasets.ParseOptions) (datasets.RowProvider, error) {
	return NewReader(source, opts)
}

// Reader exposes the sheets of a workbook as tables.
type Reader struct {
	file       *excelize.File
	tableNames []string
	headers    map[string][]string
	sheetOf    map[string]string
	headerIdx  map[string]int
	sampleRows map[string][][]string
}

var _ datasets.RowProvider = (*Reader)(nil)
var _ io.Closer = (*Reader)(nil)

// NewReader opens a workbook from source.
func NewReader(source io.Reader, opts *datasets.ParseOptions) (*Reader, error) {
	f, err := excelize.OpenReader(source)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		f.Close()
		return nil, fmt.Errorf("no sheets found in workbook")
	}

	assess := opts != nil && opts.AssessHeaderRow
	tableNames := datasets.TableNames(sheets)
	headers := make(map[string][]string)
	sheetOf := make(map[string]string)
	headerIdx := make(map[string]int)
	sampleRows := make(map[string][][]string)

	for idx, sheet := range sheets {
		table := tableNames[idx]
		sheetOf[table] = sheet
		headerIdx[table] = 0

		rows, err := f.Rows(sheet)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to iterate sheet %s: %w", sheet, err)
		}

		var scanned [][]string
		for i := 0; i < 10 && rows.Next(); i++ {
			cols, err := rows.Columns()
			if err != nil {
				rows.Close()
				f.Close()
				return nil, fmt.Errorf("failed to read row of sheet %s: %w", sheet, err)
			}
			scanned = append(scanned, cols)
		}
		rows.Close()

		if len(scanned) == 0 {
			continue // empty sheet, no headers registered
		}

		hi := 0
		if assess {
			hi = datasets.AssessHeaderRow(scanned, 10)
		}
		headerIdx[table] = hi
		headers[table] = datasets.ColumnNames(scanned[hi])
		if hi+1 < len(scanned) {
			sampleRows[table] = scanned[hi+1:]
		}
	}

	return &Reader{
		file:       f,
		tableNames: tableNames,
		headers:    headers,
		sheetOf:    sheetOf,
		headerIdx:  headerIdx,
		sampleRows: sampleRows,
	}, nil
}

// Close implements io.Closer.
func (r *Reader) Close() error {
	return r.file.Close()
}

// TableNames implements datasets.RowProvider.
func (r *Reader) TableNames() []string {
	return r.tableNames
}

// Headers implements datasets.RowProvider.
func (r *Reader) Headers(table string) []string {
	return r.headers[table]
}

// ColumnTypes implements datasets.RowProvider.
func (r *Reader) ColumnTypes(table string) []string {
	headers := r.headers[table]
	if headers == nil {
		return nil
	}
	return datasets.InferColumnTypes(r.sampleRows[table], len(headers), 0)
}

// ScanRows implements datasets.RowProvider. Unlike the csv driver a
// workbook allows repeated scans.
func (r *Reader) ScanRows(table string, yield func([]any, error) error) error {
	sheet, ok := r.sheetOf[table]
	if !ok {
		return nil
	}
	headers := r.headers[table]

	rows, err := r.file.Rows(sheet)
	if err != nil {
		return fmt.Errorf("failed to iterate sheet %s: %w", sheet, err)
	}
	defer rows.Close()

	skip := r.headerIdx[table] + 1
	rowNum := 0
	for rows.Next() {
		rowNum++
		if rowNum <= skip {
			continue
		}
		cols, err := rows.Columns()
		if err != nil {
			if yerr := yield(nil, fmt.Errorf("failed to read row %d: %w", rowNum, err)); yerr != nil {
				return yerr
			}
			continue
		}
		row := make([]any, len(headers))
		for i := range headers {
			if i < len(cols) {
				row[i] = cols[i]
			} else {
				row[i] = ""
			}
		}
		if err := yield(row, nil); err != nil {
			return err
		}
	}
	return rows.Error()
}
