// Package detect infers tabular parsing defaults (field delimiter and
// decimal separator) from raw file content. Detection is a best guess used
// to pre-fill parse options; it never fails, it degrades to a fallback pair.
package detect

import (
	"regexp"
	"strings"
)

// Result is a detected delimiter / decimal-separator pair.
type Result struct {
	Delimiter rune
	Decimal   rune
}

// Fallback is returned when the sample carries no usable evidence.
var Fallback = Result{Delimiter: ';', Decimal: '.'}

// sampleLines caps how many non-blank lines of the content are examined.
const sampleLines = 10

// candidates in tie-break order: an equal score keeps the earlier delimiter.
var candidates = []rune{';', ',', '\t', '|'}

var decimalToken = regexp.MustCompile(`[0-9]+[.,][0-9]+`)

// Detect guesses the field delimiter and decimal separator of content.
//
// Each candidate delimiter is scored by mean/(1+variance) of its per-line
// occurrence counts over the first ten non-blank lines: a delimiter that
// appears a stable number of times per line (columns − 1) scores high, one
// whose count fluctuates (natural commas in free text) is penalized by the
// variance term. The decimal separator is chosen by counting digit[.,]digit
// tokens; comma evidence is ignored when the delimiter itself is a comma.
//
// Detect is pure and total: identical input yields identical output, and
// insufficient input yields Fallback.
func Detect(content string) Result {
	lines := sample(content)
	if len(lines) == 0 {
		return Fallback
	}

	delimiter := Fallback.Delimiter
	bestScore := 0.0
	for _, cand := range candidates {
		score := consistencyScore(lines, cand)
		if score > bestScore {
			bestScore = score
			delimiter = cand
		}
	}

	dots, commas := 0, 0
	for _, line := range lines {
		for _, tok := range decimalToken.FindAllString(line, -1) {
			switch {
			case strings.ContainsRune(tok, '.'):
				dots++
			case delimiter != ',':
				commas++
			}
		}
	}

	decimal := Fallback.Decimal
	if commas > dots {
		decimal = ','
	}
	return Result{Delimiter: delimiter, Decimal: decimal}
}

// consistencyScore is mean/(1+variance) of the per-line counts of delim,
// or 0 when the delimiter never occurs.
func consistencyScore(lines []string, delim rune) float64 {
	counts := make([]float64, len(lines))
	sum := 0.0
	for i, line := range lines {
		c := float64(strings.Count(line, string(delim)))
		counts[i] = c
		sum += c
	}
	mean := sum / float64(len(lines))
	if mean == 0 {
		return 0
	}
	variance := 0.0
	for _, c := range counts {
		d := c - mean
		variance += d * d
	}
	variance /= float64(len(lines))
	return mean / (1 + variance)
}

func sample(content string) []string {
	var lines []string
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
		if len(lines) == sampleLines {
			break
		}
	}
	return lines
}
