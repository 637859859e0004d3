package parse

import (
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/turbot/pipe-fittings/error_helpers"
	"github.com/turbot/pipe-fittings/perr"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"

	"github.com/turbot/adfupgrade/internal/types"
)

const (
	AttributeWorkspaceID = "workspace_id"
	AttributeValue       = "value"
	BlockTypeResolution  = "resolution"
)

var resolutionFileSchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		{
			Name:     AttributeWorkspaceID,
			Required: false,
		},
	},
	Blocks: []hcl.BlockHeaderSchema{
		{
			Type:       BlockTypeResolution,
			LabelNames: []string{"type", "key"},
		},
	},
}

var resolutionBlockSchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		{
			Name:     AttributeValue,
			Required: true,
		},
	},
}

// EnvFunc reads an environment variable. An unset variable is an error rather than an empty string
// so that a missing secret does not silently become an empty connection id.
var EnvFunc = function.New(&function.Spec{
	Params: []function.Parameter{
		{
			Name: "name",
			Type: cty.String,
		},
	},
	Type: function.StaticReturnType(cty.String),
	Impl: func(args []cty.Value, retType cty.Type) (cty.Value, error) {
		name := args[0].AsString()
		v, ok := os.LookupEnv(name)
		if !ok {
			return cty.NilVal, fmt.Errorf("environment variable '%s' is not set", name)
		}
		return cty.StringVal(v), nil
	},
})

func evalContext() *hcl.EvalContext {
	return &hcl.EvalContext{
		Functions: map[string]function.Function{
			"env":    EnvFunc,
			"lower":  stdlib.LowerFunc,
			"upper":  stdlib.UpperFunc,
			"trim":   stdlib.TrimSpaceFunc,
			"format": stdlib.FormatFunc,
		},
		Variables: map[string]cty.Value{},
	}
}

// LoadResolutions reads a resolution file from disk.
func LoadResolutions(path string) ([]types.Resolution, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, perr.BadRequestWithMessage(fmt.Sprintf("unable to read resolutions file %s: %s", path, err))
	}
	return ParseResolutions(data, path)
}

// ParseResolutions decodes the HCL resolution format:
//
//	workspace_id = "..."
//
//	resolution "LinkedServiceToConnectionId" "sql" {
//	  value = env("SQL_CONNECTION_ID")
//	}
//
// Resolutions are returned in file order, workspace_id first.
func ParseResolutions(data []byte, filename string) ([]types.Resolution, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(data, filename)
	if diags.HasErrors() {
		return nil, error_helpers.HclDiagsToError(filename, diags)
	}

	content, diags := file.Body.Content(resolutionFileSchema)
	if diags.HasErrors() {
		return nil, error_helpers.HclDiagsToError(filename, diags)
	}

	evalCtx := evalContext()
	var out []types.Resolution
	seen := map[string]*hcl.Range{}

	add := func(r types.Resolution, rng *hcl.Range) hcl.Diagnostics {
		id := string(r.Type) + "|" + r.Key
		if prev, ok := seen[id]; ok {
			return hcl.Diagnostics{{
				Severity: hcl.DiagError,
				Summary:  fmt.Sprintf("duplicate resolution %s '%s'", r.Type, r.Key),
				Detail:   fmt.Sprintf("first defined at %s", prev.String()),
				Subject:  rng,
			}}
		}
		if err := types.ValidateResolution(r); err != nil {
			return hcl.Diagnostics{{
				Severity: hcl.DiagError,
				Summary:  fmt.Sprintf("invalid resolution %s '%s'", r.Type, r.Key),
				Detail:   err.Error(),
				Subject:  rng,
			}}
		}
		seen[id] = rng
		out = append(out, r)
		return nil
	}

	if attr, ok := content.Attributes[AttributeWorkspaceID]; ok {
		value, moreDiags := decodeString(attr, evalCtx)
		diags = append(diags, moreDiags...)
		if !moreDiags.HasErrors() {
			diags = append(diags, add(types.Resolution{Type: types.ResolutionWorkspaceID, Value: value}, &attr.Range)...)
		}
	}

	for _, block := range content.Blocks {
		r, moreDiags := decodeResolution(block, evalCtx)
		diags = append(diags, moreDiags...)
		if moreDiags.HasErrors() {
			continue
		}
		diags = append(diags, add(r, &block.DefRange)...)
	}

	if diags.HasErrors() {
		return nil, error_helpers.HclDiagsToError(filename, diags)
	}
	return out, nil
}

func decodeResolution(block *hcl.Block, evalCtx *hcl.EvalContext) (types.Resolution, hcl.Diagnostics) {
	t := types.ResolutionType(block.Labels[0])
	if !t.Valid() {
		return types.Resolution{}, hcl.Diagnostics{{
			Severity: hcl.DiagError,
			Summary:  fmt.Sprintf("invalid resolution type '%s'", block.Labels[0]),
			Subject:  &block.LabelRanges[0],
		}}
	}

	content, diags := block.Body.Content(resolutionBlockSchema)
	if diags.HasErrors() {
		return types.Resolution{}, diags
	}

	value, diags := decodeString(content.Attributes[AttributeValue], evalCtx)
	if diags.HasErrors() {
		return types.Resolution{}, diags
	}
	return types.Resolution{Type: t, Key: block.Labels[1], Value: value}, nil
}

func decodeString(attr *hcl.Attribute, evalCtx *hcl.EvalContext) (string, hcl.Diagnostics) {
	v, diags := attr.Expr.Value(evalCtx)
	if diags.HasErrors() {
		return "", diags
	}
	if v.IsNull() || !v.IsKnown() || v.Type() != cty.String {
		return "", hcl.Diagnostics{{
			Severity: hcl.DiagError,
			Summary:  fmt.Sprintf("'%s' must be a string", attr.Name),
			Subject:  &attr.Range,
		}}
	}
	return v.AsString(), nil
}
