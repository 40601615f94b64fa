package datasets

import (
	"reflect"
	"testing"
)

func TestInferColumnTypes(t *testing.T) {
	rows := [][]string{
		{"s1", "350", "0.512", "3,14"},
		{"s2", "351", "0.498", "2,71"},
		{"s3", "352", "", "1,41"},
	}

	t.Run("dot decimal", func(t *testing.T) {
		got := InferColumnTypes(rows, 4, '.')
		want := []string{"TEXT", "INTEGER", "REAL", "TEXT"}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("InferColumnTypes = %v, want %v", got, want)
		}
	})

	t.Run("comma decimal", func(t *testing.T) {
		got := InferColumnTypes(rows, 4, ',')
		// "0.512" is not numeric under a comma separator.
		want := []string{"TEXT", "INTEGER", "TEXT", "REAL"}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("InferColumnTypes = %v, want %v", got, want)
		}
	})

	t.Run("no rows", func(t *testing.T) {
		got := InferColumnTypes(nil, 2, 0)
		want := []string{"TEXT", "TEXT"}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("InferColumnTypes = %v, want %v", got, want)
		}
	})
}

func TestClassifyNumeric(t *testing.T) {
	tests := []struct {
		val     string
		decimal rune
		want    numericClass
	}{
		{"42", '.', numInteger},
		{"-7", '.', numInteger},
		{"+13", '.', numInteger},
		{"3.14", '.', numReal},
		{"3,14", ',', numReal},
		{"3,14", '.', numNone},
		{"1.2e-3", '.', numReal},
		{"1E5", '.', numReal},
		{"", '.', numNone},
		{"-", '.', numNone},
		{"12.3.4", '.', numNone},
		{"abc", '.', numNone},
		{"1.5e", '.', numNone},
	}
	for _, tt := range tests {
		if got := classifyNumeric(tt.val, tt.decimal); got != tt.want {
			t.Errorf("classifyNumeric(%q, %q) = %d, want %d", tt.val, tt.decimal, got, tt.want)
		}
	}
}

func TestNormalizeDecimal(t *testing.T) {
	tests := []struct {
		val     string
		decimal rune
		want    string
	}{
		{"3,14", ',', "3.14"},
		{"-0,5", ',', "-0.5"},
		{"3,14", '.', "3,14"},
		{"sample,a", ',', "sample,a"},
		{"42", ',', "42"},
	}
	for _, tt := range tests {
		if got := NormalizeDecimal(tt.val, tt.decimal); got != tt.want {
			t.Errorf("NormalizeDecimal(%q, %q) = %q, want %q", tt.val, tt.decimal, got, tt.want)
		}
	}
}

func TestAssessHeaderRow(t *testing.T) {
	tests := []struct {
		name string
		rows [][]string
		want int
	}{
		{
			name: "clean header first",
			rows: [][]string{
				{"id", "wavelength", "value"},
				{"1", "350", "0.5"},
			},
			want: 0,
		},
		{
			name: "metadata line before header",
			rows: [][]string{
				{"exported 2026-01-12"},
				{"id", "wavelength", "value"},
				{"1", "350", "0.5"},
				{"2", "351", "0.6"},
			},
			want: 1,
		},
		{
			name: "empty input",
			rows: nil,
			want: 0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AssessHeaderRow(tt.rows, 10); got != tt.want {
				t.Errorf("AssessHeaderRow = %d, want %d", got, tt.want)
			}
		})
	}
}
