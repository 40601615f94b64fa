// Package pipeline models preprocessing pipelines built from plain steps,
// OR-generator nodes, and feature-augmentation nodes, and expands generator
// nodes into concrete pipeline variants.
package pipeline

import (
	"errors"
	"fmt"

	"github.com/GBeurier/nirspipe/variants"
)

// NodeKind discriminates the node types of a pipeline.
type NodeKind string

const (
	// KindStep is a single fixed processing step.
	KindStep NodeKind = "step"
	// KindGenerator is an OR choice among alternative steps; its selection
	// mode decides how many variants it expands to.
	KindGenerator NodeKind = "generator"
	// KindAugment adds chosen feature steps to every variant; order of the
	// chosen options never matters, so arrangement collapses to picking.
	KindAugment NodeKind = "augment"
)

// Node is one stage of a pipeline.
type Node struct {
	Kind      NodeKind
	Name      string
	Options   []string // alternative step names, generator/augment only
	Selection variants.Selection
}

// Pipeline is an ordered list of nodes.
type Pipeline struct {
	Name  string
	Nodes []Node
}

// ErrTooManyVariants is returned by Expand when the expansion would exceed
// the caller's limit.
var ErrTooManyVariants = errors.New("pipeline expands to too many variants")

// selection returns the effective selection of the node. Augment nodes are
// order-independent by construction, so arrange degrades to pick.
func (n Node) selection() variants.Selection {
	sel := n.Selection
	if n.Kind == KindAugment && sel.Mode == variants.Arrange {
		sel.Mode = variants.Pick
	}
	return sel
}

// VariantCount returns how many variants this node contributes. A plain
// step contributes exactly one.
func (n Node) VariantCount() int {
	switch n.Kind {
	case KindStep:
		return 1
	case KindGenerator, KindAugment:
		return variants.Count(len(n.Options), n.selection())
	}
	return 0
}

// VariantCount returns the total number of concrete pipelines the
// definition expands to: the product over all nodes. It is recomputed on
// demand, there is no caching.
func (p *Pipeline) VariantCount() int {
	total := 1
	for _, n := range p.Nodes {
		total *= n.VariantCount()
	}
	return total
}

// Variant is one concrete pipeline: a flat ordered list of step names.
type Variant struct {
	Steps []string
}

// Expand materializes every concrete variant of the pipeline. The limit
// guards against combinatorial blow-up; Expand fails fast when the
// closed-form count already exceeds it.
func (p *Pipeline) Expand(limit int) ([]Variant, error) {
	if limit > 0 {
		if total := p.VariantCount(); total > limit {
			return nil, fmt.Errorf("%w: %d > %d", ErrTooManyVariants, total, limit)
		}
	}

	out := []Variant{{}}
	for _, n := range p.Nodes {
		choices := n.expansions()
		if len(choices) == 0 {
			return nil, fmt.Errorf("node %q expands to nothing", n.Name)
		}
		next := make([]Variant, 0, len(out)*len(choices))
		for _, v := range out {
			for _, c := range choices {
				steps := make([]string, 0, len(v.Steps)+len(c))
				steps = append(steps, v.Steps...)
				steps = append(steps, c...)
				next = append(next, Variant{Steps: steps})
			}
		}
		out = next
	}
	return out, nil
}

// expansions returns the alternative step lists the node contributes.
func (n Node) expansions() [][]string {
	switch n.Kind {
	case KindStep:
		return [][]string{{n.Name}}
	case KindGenerator, KindAugment:
		sel := n.selection()
		switch sel.Mode {
		case variants.TryEach:
			out := make([][]string, len(n.Options))
			for i, opt := range n.Options {
				out[i] = []string{opt}
			}
			return out
		case variants.Pick:
			return n.tuples(variants.Combinations, sel)
		case variants.Arrange:
			return n.tuples(variants.Permutations, sel)
		}
	}
	return nil
}

func (n Node) tuples(enum func(n, k int) [][]int, sel variants.Selection) [][]string {
	var out [][]string
	for k := sel.From; k <= sel.To; k++ {
		for _, idx := range enum(len(n.Options), k) {
			steps := make([]string, len(idx))
			for i, j := range idx {
				steps[i] = n.Options[j]
			}
			out = append(out, steps)
		}
	}
	return out
}

// Validate checks structural invariants: generator/augment nodes need
// options and an in-domain size range.
func (p *Pipeline) Validate() error {
	for _, n := range p.Nodes {
		switch n.Kind {
		case KindStep:
			if n.Name == "" {
				return fmt.Errorf("step node without a name")
			}
		case KindGenerator, KindAugment:
			if len(n.Options) == 0 {
				return fmt.Errorf("node %q has no options", n.Name)
			}
			sel := n.Selection
			if sel.Mode != variants.TryEach {
				if sel.From < 1 || sel.From > sel.To || sel.To > len(n.Options) {
					return fmt.Errorf("node %q has size range [%d,%d] out of [1,%d]",
						n.Name, sel.From, sel.To, len(n.Options))
				}
			}
		default:
			return fmt.Errorf("node %q has unknown kind %q", n.Name, n.Kind)
		}
	}
	return nil
}
