// Package html provides the dataset driver for HTML table exports, such as
// the report files some instrument software produces.
package html

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"

	"github.com/GBeurier/nirspipe/datasets"
)

func init() {
	datasets.Register("html", &driver{})
}

type driver struct{}

func (d *driver) Open(source io.Reader, opts *datasets.ParseOptions) (datasets.RowProvider, error) {
	return NewReader(source)
}

type tableData struct {
	rawName string
	headers []string
	rows    [][]string
}

// Reader exposes every <table> of a document as one table.
type Reader struct {
	tables     []tableData
	tableNames []string
}

var _ datasets.RowProvider = (*Reader)(nil)

// NewReader parses the document and collects its tables.
func NewReader(source io.Reader) (*Reader, error) {
	tables, err := parseTables(bufio.NewReaderSize(source, 65536))
	if err != nil {
		return nil, err
	}
	if len(tables) == 0 {
		return nil, fmt.Errorf("no tables found in document")
	}

	rawNames := make([]string, len(tables))
	for i, t := range tables {
		if t.rawName != "" {
			rawNames[i] = t.rawName
		} else {
			rawNames[i] = fmt.Sprintf("table%d", i)
		}
	}
	return &Reader{
		tables:     tables,
		tableNames: datasets.TableNames(rawNames),
	}, nil
}

// TableNames implements datasets.RowProvider.
func (r *Reader) TableNames() []string {
	return r.tableNames
}

// Headers implements datasets.RowProvider.
func (r *Reader) Headers(table string) []string {
	if i := r.index(table); i >= 0 {
		return datasets.ColumnNames(r.tables[i].headers)
	}
	return nil
}

// ColumnTypes implements datasets.RowProvider.
func (r *Reader) ColumnTypes(table string) []string {
	if i := r.index(table); i >= 0 {
		return datasets.InferColumnTypes(r.tables[i].rows, len(r.tables[i].headers), 0)
	}
	return nil
}

// ScanRows implements datasets.RowProvider. The slice passed to yield is
// reused across iterations; consumers must copy retained rows.
func (r *Reader) ScanRows(table string, yield func([]any, error) error) error {
	i := r.index(table)
	if i < 0 {
		return nil
	}
	width := len(r.tables[i].headers)
	row := make([]any, width)
	for _, cells := range r.tables[i].rows {
		for c := 0; c < width; c++ {
			if c < len(cells) {
				row[c] = cells[c]
			} else {
				row[c] = ""
			}
		}
		if err := yield(row, nil); err != nil {
			return err
		}
	}
	return nil
}

func (r *Reader) index(table string) int {
	for i, name := range r.tableNames {
		if name == table {
			return i
		}
	}
	return -1
}

func parseTables(reader io.Reader) ([]tableData, error) {
	doc, err := html.Parse(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to parse document: %w", err)
	}

	var tables []tableData
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "table" {
			tables = append(tables, extractTable(n))
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return tables, nil
}

func extractTable(n *html.Node) tableData {
	var name string
	for _, attr := range n.Attr {
		if attr.Key == "id" {
			name = attr.Val
			break
		}
	}

	var rows [][]string
	var visit func(*html.Node)
	visit = func(node *html.Node) {
		if node.Type == html.ElementNode && node.Data == "tr" {
			var row []string
			for c := node.FirstChild; c != nil; c = c.NextSibling {
				if c.Type == html.ElementNode && (c.Data == "td" || c.Data == "th") {
					row = append(row, nodeText(c))
				}
			}
			rows = append(rows, row)
			return // no nested rows
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && c.Data == "table" {
				continue // nested tables are collected separately
			}
			visit(c)
		}
	}
	visit(n)

	if len(rows) == 0 {
		return tableData{rawName: name}
	}
	return tableData{rawName: name, headers: rows[0], rows: rows[1:]}
}

func nodeText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.TextNode {
			sb.WriteString(node.Data)
			return
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.TrimSpace(sb.String())
}
