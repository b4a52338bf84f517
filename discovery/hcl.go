package discovery

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
)

type hclFile struct {
	Modules []*hclModule `hcl:"module,block"`
	Remain  hcl.Body     `hcl:",remain"`
}

type hclModule struct {
	Name   string   `hcl:"name,label"`
	Remain hcl.Body `hcl:",remain"`
}

// decodeHCL reads module blocks:
//
//	module "message" {
//	  factory = "sprintf"
//	  deps    = ["greeting", "name"]
//	  conf    = { format = "%s, %s!" }
//	}
//
// Attributes are evaluated without variables or functions.
func decodeHCL(path string, src []byte) (map[string]any, error) {
	f, diags := hclparse.NewParser().ParseHCL(src, path)
	if diags.HasErrors() {
		return nil, diags
	}
	var parsed hclFile
	if diags := gohcl.DecodeBody(f.Body, nil, &parsed); diags.HasErrors() {
		return nil, diags
	}
	mods := make(map[string]any, len(parsed.Modules))
	for _, m := range parsed.Modules {
		if _, dup := mods[m.Name]; dup {
			return nil, fmt.Errorf("module %q declared twice", m.Name)
		}
		attrs, diags := m.Remain.JustAttributes()
		if diags.HasErrors() {
			return nil, diags
		}
		body := make(map[string]any, len(attrs))
		for name, attr := range attrs {
			v, diags := attr.Expr.Value(nil)
			if diags.HasErrors() {
				return nil, diags
			}
			native, err := ctyToNative(v)
			if err != nil {
				return nil, fmt.Errorf("module %s: attribute %s: %w", m.Name, name, err)
			}
			body[name] = native
		}
		mods[m.Name] = body
	}
	return map[string]any{"modules": mods}, nil
}

// ctyToNative converts a cty value into plain Go values. Numbers become
// int64 when integral, float64 otherwise.
func ctyToNative(v cty.Value) (any, error) {
	if v.IsNull() || !v.IsKnown() {
		return nil, nil
	}
	ty := v.Type()
	switch {
	case ty == cty.String:
		return v.AsString(), nil
	case ty == cty.Number:
		bf := v.AsBigFloat()
		if bf.IsInt() {
			if i, acc := bf.Int64(); acc == 0 {
				return i, nil
			}
		}
		var f float64
		if err := gocty.FromCtyValue(v, &f); err != nil {
			return nil, err
		}
		return f, nil
	case ty == cty.Bool:
		return v.True(), nil
	case ty.IsListType() || ty.IsTupleType() || ty.IsSetType():
		out := make([]any, 0, v.LengthInt())
		it := v.ElementIterator()
		for it.Next() {
			_, el := it.Element()
			n, err := ctyToNative(el)
			if err != nil {
				return nil, err
			}
			out = append(out, n)
		}
		return out, nil
	case ty.IsObjectType() || ty.IsMapType():
		out := make(map[string]any)
		it := v.ElementIterator()
		for it.Next() {
			k, el := it.Element()
			n, err := ctyToNative(el)
			if err != nil {
				return nil, fmt.Errorf("in attribute %q: %w", k.AsString(), err)
			}
			out[k.AsString()] = n
		}
		return out, nil
	}
	return nil, fmt.Errorf("unsupported type %s", ty.FriendlyName())
}
