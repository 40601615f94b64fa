package datasets

import (
	"strings"
)

// inferSampleLimit caps how many rows type inference examines.
const inferSampleLimit = 100

// AssessHeaderRow scans up to maxScan rows and returns the index of the
// best header candidate. Spectrometer exports often carry metadata lines
// before the real header row; scoring favors fully populated, unique rows
// whose width matches the following data row, with a mild bias toward
// earlier rows.
func AssessHeaderRow(rows [][]string, maxScan int) int {
	if len(rows) == 0 {
		return 0
	}
	limit := len(rows)
	if limit > maxScan {
		limit = maxScan
	}

	bestScore := -1.0
	bestIndex := 0
	for i := 0; i < limit; i++ {
		row := rows[i]
		if len(row) == 0 {
			continue
		}

		score := 0.0

		nonEmpty := 0
		for _, val := range row {
			if strings.TrimSpace(val) != "" {
				nonEmpty++
			}
		}
		if nonEmpty == len(row) {
			score += 2.0
		} else if nonEmpty > len(row)/2 {
			score += 1.0
		}

		seen := make(map[string]bool, len(row))
		unique := true
		for _, val := range row {
			if seen[val] {
				unique = false
				break
			}
			seen[val] = true
		}
		if unique {
			score += 2.0
		}

		if i+1 < len(rows) && len(row) == len(rows[i+1]) {
			score += 1.0
		}

		score += float64(len(row)) * 0.5
		score -= float64(i) * 0.1

		if score > bestScore {
			bestScore = score
			bestIndex = i
		}
	}
	return bestIndex
}

// InferColumnTypes inspects sample rows and assigns INTEGER, REAL, or TEXT
// per column. decimal is the decimal separator of the source ('.' when 0);
// numeric recognition honors it so "3,14" is a REAL in comma-decimal files.
// Empty cells carry no evidence. A column with no evidence at all is TEXT.
func InferColumnTypes(rows [][]string, columns int, decimal rune) []string {
	if decimal == 0 {
		decimal = '.'
	}

	types := make([]string, columns)
	limit := len(rows)
	if limit > inferSampleLimit {
		limit = inferSampleLimit
	}

	for col := 0; col < columns; col++ {
		allInt, allNum, hasValue := true, true, false
		for r := 0; r < limit; r++ {
			if col >= len(rows[r]) {
				continue
			}
			val := strings.TrimSpace(rows[r][col])
			if val == "" {
				continue
			}
			hasValue = true
			switch classifyNumeric(val, decimal) {
			case numInteger:
			case numReal:
				allInt = false
			default:
				allInt, allNum = false, false
			}
			if !allNum {
				break
			}
		}

		switch {
		case !hasValue || !allNum:
			types[col] = "TEXT"
		case allInt:
			types[col] = "INTEGER"
		default:
			types[col] = "REAL"
		}
	}
	return types
}

type numericClass int

const (
	numNone numericClass = iota
	numInteger
	numReal
)

// classifyNumeric reports whether val is an integer or a decimal number
// under the given decimal separator. Scientific notation is accepted as REAL.
func classifyNumeric(val string, decimal rune) numericClass {
	if val == "" {
		return numNone
	}
	i := 0
	if val[0] == '+' || val[0] == '-' {
		i++
	}
	digits, seenSep, seenExp := 0, false, false
	for ; i < len(val); i++ {
		c := val[i]
		switch {
		case c >= '0' && c <= '9':
			digits++
		case rune(c) == decimal && !seenSep && !seenExp:
			seenSep = true
		case (c == 'e' || c == 'E') && digits > 0 && !seenExp && i+1 < len(val):
			seenExp = true
			if val[i+1] == '+' || val[i+1] == '-' {
				i++
			}
		default:
			return numNone
		}
	}
	if digits == 0 {
		return numNone
	}
	if seenSep || seenExp {
		return numReal
	}
	return numInteger
}

// NormalizeDecimal rewrites a comma-decimal numeric value to canonical dot
// form so it can be stored and compared as a number. Non-numeric values
// pass through untouched.
func NormalizeDecimal(val string, decimal rune) string {
	if decimal != ',' {
		return val
	}
	if classifyNumeric(strings.TrimSpace(val), ',') == numNone {
		return val
	}
	return strings.Replace(val, ",", ".", 1)
}
