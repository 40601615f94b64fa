package csv

import (
	"reflect"
	"strings"
	"testing"

	"github.com/GBeurier/nirspipe/datasets"
)

func collectRows(t *testing.T, r *Reader, table string) [][]any {
	t.Helper()
	var rows [][]any
	err := r.ScanRows(table, func(row []any, rowErr error) error {
		if rowErr != nil {
			return rowErr
		}
		rows = append(rows, row)
		return nil
	})
	if err != nil {
		t.Fatalf("ScanRows failed: %v", err)
	}
	return rows
}

func TestReaderDetectsOptions(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		delimiter rune
		decimal   rune
	}{
		{
			name:      "semicolon with comma decimals",
			input:     "id;wavelength;value\ns1;350;0,512\ns2;351;0,498\n",
			delimiter: ';',
			decimal:   ',',
		},
		{
			name:      "comma delimited",
			input:     "id,wavelength,value\ns1,350,0.512\ns2,351,0.498\n",
			delimiter: ',',
			decimal:   '.',
		},
		{
			name:      "tab delimited",
			input:     "id\twavelength\tvalue\ns1\t350\t0.5\ns2\t351\t0.6\n",
			delimiter: '\t',
			decimal:   '.',
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := NewReader(strings.NewReader(tt.input), nil)
			if err != nil {
				t.Fatalf("NewReader failed: %v", err)
			}
			o := r.Options()
			if o.Delimiter != tt.delimiter {
				t.Errorf("delimiter = %q, want %q", o.Delimiter, tt.delimiter)
			}
			if o.Decimal != tt.decimal {
				t.Errorf("decimal = %q, want %q", o.Decimal, tt.decimal)
			}
		})
	}
}

func TestReaderExplicitOptionsWin(t *testing.T) {
	input := "a|b\n1|2\n"
	r, err := NewReader(strings.NewReader(input), &datasets.ParseOptions{Delimiter: '|', Decimal: '.'})
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	if got := r.Headers(DefaultTable); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("headers = %v", got)
	}
}

func TestReaderStreamsRows(t *testing.T) {
	input := "Sample ID;Wavelength;Value\ns1;350;0,512\ns2;351;0,498\n"
	r, err := NewReader(strings.NewReader(input), nil)
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}

	if got := r.TableNames(); !reflect.DeepEqual(got, []string{DefaultTable}) {
		t.Errorf("TableNames = %v", got)
	}
	if got := r.Headers(DefaultTable); !reflect.DeepEqual(got, []string{"sample_id", "wavelength", "value"}) {
		t.Errorf("headers = %v", got)
	}

	rows := collectRows(t, r, DefaultTable)
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	// Comma decimals are normalized to dots on the way out.
	if rows[0][2] != "0.512" {
		t.Errorf("rows[0][2] = %v, want 0.512", rows[0][2])
	}
	if rows[1][0] != "s2" {
		t.Errorf("rows[1][0] = %v, want s2", rows[1][0])
	}
}

func TestReaderRaggedRowsPadded(t *testing.T) {
	input := "a;b;c\n1;2\n"
	r, err := NewReader(strings.NewReader(input), nil)
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	rows := collectRows(t, r, DefaultTable)
	if len(rows) != 1 || len(rows[0]) != 3 {
		t.Fatalf("rows = %v", rows)
	}
	if rows[0][2] != "" {
		t.Errorf("short row not padded: %v", rows[0])
	}
}

func TestReaderAssessHeaderRow(t *testing.T) {
	input := "exported 2026-01-12\nid;wavelength;value\ns1;350;0,5\ns2;351;0,6\n"
	r, err := NewReader(strings.NewReader(input), &datasets.ParseOptions{AssessHeaderRow: true})
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	if got := r.Headers(DefaultTable); !reflect.DeepEqual(got, []string{"id", "wavelength", "value"}) {
		t.Errorf("headers = %v", got)
	}
	types := r.ColumnTypes(DefaultTable)
	if !reflect.DeepEqual(types, []string{"TEXT", "INTEGER", "REAL"}) {
		t.Errorf("types = %v", types)
	}
	rows := collectRows(t, r, DefaultTable)
	if len(rows) != 2 {
		t.Errorf("got %d rows, want 2", len(rows))
	}
}

func TestReaderCustomTableName(t *testing.T) {
	r, err := NewReader(strings.NewReader("a;b\n1;2\n"), &datasets.ParseOptions{TableName: "spectra"})
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	if got := r.TableNames(); !reflect.DeepEqual(got, []string{"spectra"}) {
		t.Errorf("TableNames = %v", got)
	}
	if r.Headers("tb0") != nil {
		t.Error("Headers should be nil for an unknown table")
	}
}

func TestReaderEmptyInput(t *testing.T) {
	if _, err := NewReader(strings.NewReader(""), nil); err == nil {
		t.Error("NewReader should fail on empty input")
	}
}

func TestRegisteredDriver(t *testing.T) {
	p, err := datasets.Open("csv", strings.NewReader("a;b\n1;2\n"), nil)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if got := p.TableNames(); len(got) != 1 {
		t.Errorf("TableNames = %v", got)
	}
}
