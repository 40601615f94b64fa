// Package csv provides the delimited-text dataset driver. Delimiter and
// decimal separator default to heuristic detection over the leading sample
// when the caller supplies none.
package csv

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"

	"github.com/GBeurier/nirspipe/datasets"
	"github.com/GBeurier/nirspipe/detect"
)

// DefaultTable is the table name used when the caller supplies none.
const DefaultTable = "tb0"

// sniffBytes is how much of the stream detection peeks at.
const sniffBytes = 8192

func init() {
	datasets.Register("csv", &driver{})
}

type driver struct{}

func (d *driver) Open(source io.Reader, opts *datasets.ParseOptions) (datasets.RowProvider, error) {
	return NewReader(source, opts)
}

// Reader streams a delimited text file as a single table.
// ScanRows can only be called once; the source is consumed.
type Reader struct {
	opts         datasets.ParseOptions
	headers      []string
	bufferedRows [][]string
	csvReader    *csv.Reader
}

var _ datasets.RowProvider = (*Reader)(nil)

// NewReader wraps source in a Reader. A zero Delimiter or Decimal in opts is
// filled in by detection over the first sniffed bytes.
func NewReader(source io.Reader, opts *datasets.ParseOptions) (*Reader, error) {
	var o datasets.ParseOptions
	if opts != nil {
		o = *opts
	}
	if o.TableName == "" {
		o.TableName = DefaultTable
	}

	br := bufio.NewReaderSize(source, 65536)

	if o.Delimiter == 0 || o.Decimal == 0 {
		peeked, _ := br.Peek(sniffBytes)
		res := detect.Detect(string(peeked))
		if o.Delimiter == 0 {
			o.Delimiter = res.Delimiter
		}
		if o.Decimal == 0 {
			o.Decimal = res.Decimal
		}
	}

	reader := csv.NewReader(br)
	reader.Comma = o.Delimiter
	reader.FieldsPerRecord = -1 // allow ragged rows

	var headers []string
	var buffered [][]string

	if o.AssessHeaderRow {
		var scanned [][]string
		for i := 0; i < 10; i++ {
			row, err := reader.Read()
			if err != nil {
				if err == io.EOF {
					break
				}
				return nil, fmt.Errorf("failed to read row for header assessment: %w", err)
			}
			scanned = append(scanned, row)
		}
		if len(scanned) == 0 {
			return nil, fmt.Errorf("file is empty")
		}
		idx := datasets.AssessHeaderRow(scanned, 10)
		headers = scanned[idx]
		if idx+1 < len(scanned) {
			buffered = scanned[idx+1:]
		}
	} else {
		row, err := reader.Read()
		if err != nil {
			if err == io.EOF {
				return nil, fmt.Errorf("file is empty")
			}
			return nil, fmt.Errorf("failed to read headers: %w", err)
		}
		headers = row
	}

	return &Reader{
		opts:         o,
		headers:      datasets.ColumnNames(headers),
		bufferedRows: buffered,
		csvReader:    reader,
	}, nil
}

// Options returns the effective parse options after detection.
func (r *Reader) Options() datasets.ParseOptions {
	return r.opts
}

// TableNames implements datasets.RowProvider.
func (r *Reader) TableNames() []string {
	return []string{r.opts.TableName}
}

// Headers implements datasets.RowProvider.
func (r *Reader) Headers(table string) []string {
	if table == r.opts.TableName {
		return r.headers
	}
	return nil
}

// ColumnTypes implements datasets.RowProvider. Types are inferred from the
// rows buffered during header assessment; without them every column is TEXT.
func (r *Reader) ColumnTypes(table string) []string {
	if table != r.opts.TableName {
		return nil
	}
	return datasets.InferColumnTypes(r.bufferedRows, len(r.headers), r.opts.Decimal)
}

// ScanRows implements datasets.RowProvider. Reading and value conversion
// run in a producer goroutine so yield overlaps with parsing.
func (r *Reader) ScanRows(table string, yield func([]any, error) error) error {
	if table != r.opts.TableName {
		return nil
	}
	if r.csvReader == nil {
		return fmt.Errorf("reader is not initialized")
	}

	type rowOrError struct {
		row []any
		err error
	}
	rowsCh := make(chan rowOrError, 100)

	go func() {
		defer close(rowsCh)
		for _, row := range r.bufferedRows {
			rowsCh <- rowOrError{row: r.convert(row)}
		}
		for {
			row, err := r.csvReader.Read()
			if err != nil {
				if err == io.EOF {
					return
				}
				rowsCh <- rowOrError{err: fmt.Errorf("failed to read row: %w", err)}
				continue
			}
			rowsCh <- rowOrError{row: r.convert(row)}
		}
	}()

	for item := range rowsCh {
		if err := yield(item.row, item.err); err != nil {
			return err
		}
	}
	return nil
}

// convert pads the row to the header width and normalizes comma decimals.
func (r *Reader) convert(row []string) []any {
	out := make([]any, len(r.headers))
	for i := range r.headers {
		if i >= len(row) {
			out[i] = ""
			continue
		}
		out[i] = datasets.NormalizeDecimal(row[i], r.opts.Decimal)
	}
	return out
}
