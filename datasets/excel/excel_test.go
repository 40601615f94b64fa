package excel

import (
	"bytes"
	"reflect"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/GBeurier/nirspipe/datasets"
)

func buildWorkbook(t *testing.T, sheets map[string][][]any) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	first := true
	for sheet, rows := range sheets {
		if first {
			if err := f.SetSheetName("Sheet1", sheet); err != nil {
				t.Fatal(err)
			}
			first = false
		} else {
			if _, err := f.NewSheet(sheet); err != nil {
				t.Fatal(err)
			}
		}
		for i, row := range rows {
			cell, err := excelize.CoordinatesToCellName(1, i+1)
			if err != nil {
				t.Fatal(err)
			}
			if err := f.SetSheetRow(sheet, cell, &row); err != nil {
				t.Fatal(err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatal(err)
	}
	return buf
}

func TestReaderSingleSheet(t *testing.T) {
	buf := buildWorkbook(t, map[string][][]any{
		"Spectra": {
			{"Sample ID", "Wavelength", "Value"},
			{"s1", 350, 0.512},
			{"s2", 351, 0.498},
		},
	})

	r, err := NewReader(buf, nil)
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	defer r.Close()

	if got := r.TableNames(); !reflect.DeepEqual(got, []string{"spectra"}) {
		t.Fatalf("TableNames = %v", got)
	}
	if got := r.Headers("spectra"); !reflect.DeepEqual(got, []string{"sample_id", "wavelength", "value"}) {
		t.Errorf("headers = %v", got)
	}
	if got := r.ColumnTypes("spectra"); !reflect.DeepEqual(got, []string{"TEXT", "INTEGER", "REAL"}) {
		t.Errorf("types = %v", got)
	}

	var rows [][]any
	err = r.ScanRows("spectra", func(row []any, rowErr error) error {
		if rowErr != nil {
			return rowErr
		}
		rows = append(rows, row)
		return nil
	})
	if err != nil {
		t.Fatalf("ScanRows failed: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if rows[0][0] != "s1" {
		t.Errorf("rows[0][0] = %v", rows[0][0])
	}
}

func TestReaderRescan(t *testing.T) {
	buf := buildWorkbook(t, map[string][][]any{
		"Data": {
			{"a", "b"},
			{1, 2},
		},
	})
	r, err := NewReader(buf, nil)
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	defer r.Close()

	count := func() int {
		n := 0
		r.ScanRows("data", func(row []any, rowErr error) error {
			n++
			return nil
		})
		return n
	}
	if first, second := count(), count(); first != 1 || second != 1 {
		t.Errorf("scan counts = %d, %d; want 1, 1", first, second)
	}
}

func TestReaderAssessHeaderRow(t *testing.T) {
	buf := buildWorkbook(t, map[string][][]any{
		"Export": {
			{"exported 2026-01-12"},
			{"id", "wavelength", "value"},
			{"s1", 350, 0.5},
			{"s2", 351, 0.6},
		},
	})
	r, err := NewReader(buf, &datasets.ParseOptions{AssessHeaderRow: true})
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	defer r.Close()

	if got := r.Headers("export"); !reflect.DeepEqual(got, []string{"id", "wavelength", "value"}) {
		t.Errorf("headers = %v", got)
	}

	var rows [][]any
	r.ScanRows("export", func(row []any, rowErr error) error {
		rows = append(rows, row)
		return nil
	})
	if len(rows) != 2 {
		t.Errorf("got %d rows, want 2", len(rows))
	}
}

func TestRegisteredDriver(t *testing.T) {
	buf := buildWorkbook(t, map[string][][]any{
		"Data": {
			{"a", "b"},
			{1, 2},
		},
	})
	p, err := datasets.Open("excel", buf, nil)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if got := p.TableNames(); !reflect.DeepEqual(got, []string{"data"}) {
		t.Errorf("TableNames = %v", got)
	}
}
