package pipeline

import (
	"errors"
	"reflect"
	"testing"

	"github.com/GBeurier/nirspipe/variants"
)

func TestVariantCount(t *testing.T) {
	tests := []struct {
		name string
		p    Pipeline
		want int
	}{
		{
			name: "steps only",
			p: Pipeline{Nodes: []Node{
				{Kind: KindStep, Name: "snv"},
				{Kind: KindStep, Name: "savgol"},
			}},
			want: 1,
		},
		{
			name: "try each generator",
			p: Pipeline{Nodes: []Node{
				{Kind: KindGenerator, Name: "scatter", Options: []string{"snv", "msc", "detrend"},
					Selection: variants.Selection{Mode: variants.TryEach}},
			}},
			want: 3,
		},
		{
			name: "pick range times arrange",
			p: Pipeline{Nodes: []Node{
				{Kind: KindGenerator, Name: "scatter", Options: []string{"a", "b", "c", "d"},
					Selection: variants.SizeRange(variants.Pick, 1, 2)}, // 4 + 6 = 10
				{Kind: KindGenerator, Name: "order", Options: []string{"x", "y", "z"},
					Selection: variants.Single(variants.Arrange, 2)}, // 6
			}},
			want: 60,
		},
		{
			name: "augment collapses arrange to pick",
			p: Pipeline{Nodes: []Node{
				{Kind: KindAugment, Name: "features", Options: []string{"d1", "d2", "d3"},
					Selection: variants.Single(variants.Arrange, 2)}, // treated as C(3,2) = 3
			}},
			want: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.p.VariantCount(); got != tt.want {
				t.Errorf("VariantCount() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestExpand(t *testing.T) {
	p := Pipeline{Nodes: []Node{
		{Kind: KindStep, Name: "baseline"},
		{Kind: KindGenerator, Name: "scatter", Options: []string{"snv", "msc"},
			Selection: variants.Selection{Mode: variants.TryEach}},
	}}

	got, err := p.Expand(0)
	if err != nil {
		t.Fatalf("Expand failed: %v", err)
	}
	want := []Variant{
		{Steps: []string{"baseline", "snv"}},
		{Steps: []string{"baseline", "msc"}},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Expand() = %v, want %v", got, want)
	}
}

func TestExpandPickRange(t *testing.T) {
	p := Pipeline{Nodes: []Node{
		{Kind: KindGenerator, Name: "g", Options: []string{"a", "b", "c"},
			Selection: variants.SizeRange(variants.Pick, 1, 2)},
	}}

	got, err := p.Expand(0)
	if err != nil {
		t.Fatalf("Expand failed: %v", err)
	}
	if len(got) != p.VariantCount() {
		t.Fatalf("Expand produced %d variants, closed form says %d", len(got), p.VariantCount())
	}
	// Size-1 subsets come before size-2 subsets, each in lexicographic order.
	first, last := got[0].Steps, got[len(got)-1].Steps
	if !reflect.DeepEqual(first, []string{"a"}) || !reflect.DeepEqual(last, []string{"b", "c"}) {
		t.Errorf("unexpected expansion order: first %v, last %v", first, last)
	}
}

func TestExpandArrangeKeepsOrder(t *testing.T) {
	p := Pipeline{Nodes: []Node{
		{Kind: KindGenerator, Name: "g", Options: []string{"a", "b"},
			Selection: variants.Single(variants.Arrange, 2)},
	}}
	got, err := p.Expand(0)
	if err != nil {
		t.Fatalf("Expand failed: %v", err)
	}
	want := []Variant{
		{Steps: []string{"a", "b"}},
		{Steps: []string{"b", "a"}},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Expand() = %v, want %v", got, want)
	}
}

func TestExpandLimit(t *testing.T) {
	p := Pipeline{Nodes: []Node{
		{Kind: KindGenerator, Name: "g", Options: []string{"a", "b", "c", "d", "e"},
			Selection: variants.Single(variants.Arrange, 3)}, // P(5,3) = 60
	}}
	if _, err := p.Expand(10); !errors.Is(err, ErrTooManyVariants) {
		t.Errorf("Expand(10) error = %v, want ErrTooManyVariants", err)
	}
	if _, err := p.Expand(60); err != nil {
		t.Errorf("Expand(60) should succeed, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	bad := []Pipeline{
		{Nodes: []Node{{Kind: KindStep}}},
		{Nodes: []Node{{Kind: KindGenerator, Name: "g"}}},
		{Nodes: []Node{{Kind: KindGenerator, Name: "g", Options: []string{"a", "b"},
			Selection: variants.Single(variants.Pick, 3)}}},
		{Nodes: []Node{{Kind: NodeKind("mystery"), Name: "m"}}},
	}
	for i, p := range bad {
		if err := p.Validate(); err == nil {
			t.Errorf("case %d: Validate() should fail", i)
		}
	}

	good := Pipeline{Nodes: []Node{
		{Kind: KindStep, Name: "snv"},
		{Kind: KindGenerator, Name: "g", Options: []string{"a", "b"},
			Selection: variants.SizeRange(variants.Pick, 1, 2)},
	}}
	if err := good.Validate(); err != nil {
		t.Errorf("Validate() failed on a valid pipeline: %v", err)
	}
}
