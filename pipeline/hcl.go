package pipeline

import (
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/zclconf/go-cty/cty"

	"github.com/GBeurier/nirspipe/variants"
)

// Pipeline definitions are stored as HCL:
//
//	pipeline "baseline" {
//	  node "step" "snv" {}
//
//	  node "generator" "scatter" {
//	    options = ["snv", "msc", "detrend"]
//	    mode    = "pick"
//	    from    = 1
//	    to      = 2
//	  }
//	}
//
// A single chosen size is written as k = 2 instead of from/to.

type fileHCL struct {
	Pipelines []pipelineHCL `hcl:"pipeline,block"`
}

type pipelineHCL struct {
	Name  string    `hcl:"name,label"`
	Nodes []nodeHCL `hcl:"node,block"`
}

type nodeHCL struct {
	Kind    string   `hcl:"kind,label"`
	Name    string   `hcl:"name,label"`
	Options []string `hcl:"options,optional"`
	Mode    string   `hcl:"mode,optional"`
	K       *int     `hcl:"k,optional"`
	From    *int     `hcl:"from,optional"`
	To      *int     `hcl:"to,optional"`
}

// Load reads pipeline definitions from an HCL file.
func Load(path string) ([]*Pipeline, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read pipeline file: %w", err)
	}
	return Parse(content, path)
}

// Parse decodes pipeline definitions from HCL source.
func Parse(src []byte, filename string) ([]*Pipeline, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse pipeline file: %s", diags.Error())
	}

	var raw fileHCL
	if diags := gohcl.DecodeBody(file.Body, nil, &raw); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode pipeline file: %s", diags.Error())
	}

	pipelines := make([]*Pipeline, 0, len(raw.Pipelines))
	for _, p := range raw.Pipelines {
		pipeline := &Pipeline{Name: p.Name}
		for _, n := range p.Nodes {
			node, err := n.toNode()
			if err != nil {
				return nil, fmt.Errorf("pipeline %q: %w", p.Name, err)
			}
			pipeline.Nodes = append(pipeline.Nodes, node)
		}
		if err := pipeline.Validate(); err != nil {
			return nil, fmt.Errorf("pipeline %q: %w", p.Name, err)
		}
		pipelines = append(pipelines, pipeline)
	}
	return pipelines, nil
}

func (n nodeHCL) toNode() (Node, error) {
	node := Node{
		Kind:    NodeKind(n.Kind),
		Name:    n.Name,
		Options: n.Options,
	}
	if node.Kind == KindStep {
		return node, nil
	}

	mode, err := variants.ParseMode(n.Mode)
	if err != nil {
		return Node{}, fmt.Errorf("node %q: %w", n.Name, err)
	}

	switch {
	case mode == variants.TryEach:
		node.Selection = variants.Selection{Mode: mode}
	case n.K != nil:
		node.Selection = variants.Single(mode, *n.K)
	case n.From != nil && n.To != nil:
		node.Selection = variants.SizeRange(mode, *n.From, *n.To)
	default:
		return Node{}, fmt.Errorf("node %q: %s mode needs k or from/to", n.Name, mode)
	}
	return node, nil
}

// Export writes pipeline definitions to an HCL file.
func Export(path string, pipelines []*Pipeline) error {
	f := hclwrite.NewEmptyFile()
	root := f.Body()

	for i, p := range pipelines {
		if i > 0 {
			root.AppendNewline()
		}
		block := root.AppendNewBlock("pipeline", []string{p.Name})
		body := block.Body()
		for _, n := range p.Nodes {
			nodeBody := body.AppendNewBlock("node", []string{string(n.Kind), n.Name}).Body()
			if n.Kind == KindStep {
				continue
			}
			nodeBody.SetAttributeValue("options", stringList(n.Options))
			nodeBody.SetAttributeValue("mode", cty.StringVal(string(n.Selection.Mode)))
			if n.Selection.Mode != variants.TryEach {
				if n.Selection.From == n.Selection.To {
					nodeBody.SetAttributeValue("k", cty.NumberIntVal(int64(n.Selection.From)))
				} else {
					nodeBody.SetAttributeValue("from", cty.NumberIntVal(int64(n.Selection.From)))
					nodeBody.SetAttributeValue("to", cty.NumberIntVal(int64(n.Selection.To)))
				}
			}
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create pipeline file: %w", err)
	}
	defer file.Close()

	if _, err := file.Write(f.Bytes()); err != nil {
		return fmt.Errorf("failed to write pipeline file: %w", err)
	}
	return nil
}

func stringList(values []string) cty.Value {
	if len(values) == 0 {
		return cty.ListValEmpty(cty.String)
	}
	vals := make([]cty.Value, len(values))
	for i, v := range values {
		vals[i] = cty.StringVal(v)
	}
	return cty.ListVal(vals)
}
