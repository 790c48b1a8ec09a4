// Package mcp exposes the manifest-declared tools over the Model Context
// Protocol: tool schema generation, argument resolution, and the handlers
// behind schema_export and schema_search.
package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/spf13/cast"

	"github.com/datapivot/schemabridge/internal/manifest"
)

// BuildTool converts a validated manifest into an mcp.Tool schema.
// Only llm-form parameters are exposed to the model; form-scoped parameters
// are operator configuration resolved from defaults at call time.
func BuildTool(m *manifest.Manifest) mcp.Tool {
	opts := []mcp.ToolOption{mcp.WithDescription(m.Description.LLM)}
	for i := range m.Parameters {
		p := &m.Parameters[i]
		if p.Form != manifest.FormLLM {
			continue
		}
		opts = append(opts, buildParamOption(p))
	}
	return mcp.NewTool(m.Identity.Name, opts...)
}

// buildParamOption maps one manifest parameter to the matching mcp-go tool option.
func buildParamOption(p *manifest.Parameter) mcp.ToolOption {
	var opts []mcp.PropertyOption
	if p.LLMDescription != "" {
		opts = append(opts, mcp.Description(p.LLMDescription))
	}
	if p.Required {
		opts = append(opts, mcp.Required())
	}

	switch p.Type {
	case manifest.TypeNumber:
		if p.Min != nil {
			opts = append(opts, mcp.Min(*p.Min))
		}
		if p.Max != nil {
			opts = append(opts, mcp.Max(*p.Max))
		}
		if p.Default != nil {
			if d, err := cast.ToFloat64E(*p.Default); err == nil {
				opts = append(opts, mcp.DefaultNumber(d))
			}
		}
		return mcp.WithNumber(p.Name, opts...)
	case manifest.TypeSelect:
		opts = append(opts, mcp.Enum(p.OptionValues()...))
		if p.Default != nil {
			opts = append(opts, mcp.DefaultString(*p.Default))
		}
		return mcp.WithString(p.Name, opts...)
	default:
		// string, secret-input, model-selector — all strings on the wire
		return mcp.WithString(p.Name, opts...)
	}
}
