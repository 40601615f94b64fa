package detect

import (
	"strings"
	"testing"
)

func TestDetectDelimiter(t *testing.T) {
	tests := []struct {
		name      string
		content   string
		delimiter rune
	}{
		{
			name:      "semicolon five columns",
			content:   repeatLines("a;b;c;d;e", 8),
			delimiter: ';',
		},
		{
			name:      "comma",
			content:   "col1,col2,col3\n1,2,3\n4,5,6",
			delimiter: ',',
		},
		{
			name:      "tab",
			content:   "col1\tcol2\tcol3\n1\t2\t3",
			delimiter: '\t',
		},
		{
			name:      "pipe",
			content:   "col1|col2|col3\n1|2|3",
			delimiter: '|',
		},
		{
			name:      "single column falls back to semicolon",
			content:   "wavelength\n350\n351\n352",
			delimiter: ';',
		},
		{
			name: "stable semicolon beats noisy comma",
			content: "id;comment;value\n" +
				"1;ok, looks fine;0\n" +
				"2;noisy, with, commas, here;1\n" +
				"3;plain;2",
			delimiter: ';',
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Detect(tt.content)
			if got.Delimiter != tt.delimiter {
				t.Errorf("Detect() delimiter = %q, want %q", got.Delimiter, tt.delimiter)
			}
		})
	}
}

func TestDetectDecimalSeparator(t *testing.T) {
	tests := []struct {
		name    string
		content string
		decimal rune
	}{
		{
			name:    "comma decimals with semicolon delimiter",
			content: "a;b\n3,14;2,71\n1,5;0,25",
			decimal: ',',
		},
		{
			name:    "dot decimals",
			content: "a;b\n3.14;2.71",
			decimal: '.',
		},
		{
			name:    "comma delimiter with integer values stays dot",
			content: "a,b,c\n1,5,2\n3,0,7",
			decimal: '.',
		},
		{
			name:    "comma delimiter ignores comma tokens",
			content: "a,b\n1,5\n2,7\n3,9",
			decimal: '.',
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Detect(tt.content)
			if got.Decimal != tt.decimal {
				t.Errorf("Detect() decimal = %q, want %q", got.Decimal, tt.decimal)
			}
		})
	}
}

func TestDetectFallback(t *testing.T) {
	for _, content := range []string{"", "\n\n\n", "   \n\t\n"} {
		got := Detect(content)
		if got != Fallback {
			t.Errorf("Detect(%q) = %+v, want fallback %+v", content, got, Fallback)
		}
	}
}

func TestDetectIdempotent(t *testing.T) {
	content := "x;y;z\n1,5;2,5;3,5\n4,0;5,0;6,0"
	first := Detect(content)
	second := Detect(content)
	if first != second {
		t.Errorf("Detect not idempotent: %+v vs %+v", first, second)
	}
}

func TestDetectSampleLimit(t *testing.T) {
	// Only the first 10 non-blank lines count; the pipe-heavy tail is ignored.
	head := repeatLines("a;b;c", 10)
	tail := repeatLines("x|y|z|w|v|u|t|s", 50)
	got := Detect(head + "\n" + tail)
	if got.Delimiter != ';' {
		t.Errorf("Detect() delimiter = %q, want ';' from the sampled head", got.Delimiter)
	}
}

func repeatLines(line string, n int) string {
	lines := make([]string, n)
	for i := range lines {
		lines[i] = line
	}
	return strings.Join(lines, "\n")
}
