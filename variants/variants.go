// Package variants counts and enumerates the concrete pipeline variants a
// generator step produces for a given option list and selection policy.
package variants

import "fmt"

// Mode is the selection policy of a generator step.
type Mode string

const (
	// TryEach uses every option once, independently.
	TryEach Mode = "try-each"
	// Pick chooses subsets; order of the chosen options does not matter.
	Pick Mode = "pick"
	// Arrange chooses ordered subsets.
	Arrange Mode = "arrange"
)

// ParseMode converts a config string to a Mode.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case TryEach, Pick, Arrange:
		return Mode(s), nil
	}
	return "", fmt.Errorf("unknown selection mode %q", s)
}

// Selection describes how many options a generator step picks per variant.
// A single size k is expressed as From == To. For TryEach the range is ignored.
type Selection struct {
	Mode Mode
	From int
	To   int
}

// Single returns a Selection for exactly k chosen options.
func Single(mode Mode, k int) Selection {
	return Selection{Mode: mode, From: k, To: k}
}

// SizeRange returns a Selection over an inclusive size range.
func SizeRange(mode Mode, from, to int) Selection {
	return Selection{Mode: mode, From: from, To: to}
}

// Count returns the number of distinct variants produced from optionCount
// options under the given selection. Out-of-range sizes contribute 0; the
// function never clamps its inputs, callers keep ranges in domain.
func Count(optionCount int, sel Selection) int {
	switch sel.Mode {
	case TryEach:
		return optionCount
	case Pick:
		total := 0
		for k := sel.From; k <= sel.To; k++ {
			total += Binomial(optionCount, k)
		}
		return total
	case Arrange:
		total := 0
		for k := sel.From; k <= sel.To; k++ {
			total += FallingFactorial(optionCount, k)
		}
		return total
	}
	return 0
}

// Binomial returns C(n, k) using the multiplicative formula. Every
// intermediate division is exact in integer arithmetic, so the result is an
// exact non-negative integer. C(n, k) is 0 when k < 0 or k > n.
func Binomial(n, k int) int {
	if k < 0 || k > n {
		return 0
	}
	if k == 0 || k == n {
		return 1
	}
	if k > n-k {
		k = n - k
	}
	result := 1
	for i := 1; i <= k; i++ {
		// (n-k+1)...(n-k+i) is divisible by i! at every step.
		result = result * (n - k + i) / i
	}
	return result
}

// FallingFactorial returns P(n, k) = n·(n−1)···(n−k+1), the number of
// ordered k-selections. It is 0 when k < 0 or k > n and 1 when k == 0.
func FallingFactorial(n, k int) int {
	if k < 0 || k > n {
		return 0
	}
	result := 1
	for i := 0; i < k; i++ {
		result *= n - i
	}
	return result
}

// Combinations enumerates all k-element index subsets of [0, n) in
// lexicographic order. It returns nil when k < 0 or k > n.
func Combinations(n, k int) [][]int {
	if k < 0 || k > n {
		return nil
	}
	var out [][]int
	cur := make([]int, 0, k)
	var walk func(start int)
	walk = func(start int) {
		if len(cur) == k {
			out = append(out, append([]int(nil), cur...))
			return
		}
		for i := start; i < n; i++ {
			cur = append(cur, i)
			walk(i + 1)
			cur = cur[:len(cur)-1]
		}
	}
	walk(0)
	return out
}

// Permutations enumerates all ordered k-element selections of [0, n).
func Permutations(n, k int) [][]int {
	if k < 0 || k > n {
		return nil
	}
	var out [][]int
	used := make([]bool, n)
	cur := make([]int, 0, k)
	var walk func()
	walk = func() {
		if len(cur) == k {
			out = append(out, append([]int(nil), cur...))
			return
		}
		for i := 0; i < n; i++ {
			if used[i] {
				continue
			}
			used[i] = true
			cur = append(cur, i)
			walk()
			cur = cur[:len(cur)-1]
			used[i] = false
		}
	}
	walk()
	return out
}
