package mcp

import (
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/spf13/cast"

	"github.com/datapivot/schemabridge/internal/manifest"
)

// Resolver resolves tool-call arguments against a manifest's parameter
// contract. Values come from the call arguments first, then the parameter's
// manifest default, then operator-configured defaults.
type Resolver struct {
	m        *manifest.Manifest
	defaults map[string]string
}

// NewResolver creates a resolver for one tool. defaults supplies values for
// form-scoped parameters and may be nil.
func NewResolver(m *manifest.Manifest, defaults map[string]string) *Resolver {
	return &Resolver{m: m, defaults: defaults}
}

// String resolves a string-like parameter (string, secret-input, select,
// model-selector). Select values are checked for option membership.
func (rv *Resolver) String(r mcp.CallToolRequest, name string) (string, error) {
	p, err := rv.param(name)
	if err != nil {
		return "", err
	}

	raw, ok := rv.raw(r, p)
	if !ok {
		if p.Required {
			return "", fmt.Errorf("parameter %q is required", name)
		}
		return "", nil
	}

	val, err := cast.ToStringE(raw)
	if err != nil {
		return "", fmt.Errorf("parameter %q: %w", name, err)
	}
	if p.Type == manifest.TypeSelect && !p.HasOption(val) {
		return "", fmt.Errorf("parameter %q value %q is not one of %v", name, val, p.OptionValues())
	}
	return val, nil
}

// Number resolves a number parameter and enforces its declared range.
// A missing optional parameter resolves to 0.
func (rv *Resolver) Number(r mcp.CallToolRequest, name string) (float64, error) {
	p, err := rv.param(name)
	if err != nil {
		return 0, err
	}

	raw, ok := rv.raw(r, p)
	if !ok {
		if p.Required {
			return 0, fmt.Errorf("parameter %q is required", name)
		}
		return 0, nil
	}

	val, err := cast.ToFloat64E(raw)
	if err != nil {
		return 0, fmt.Errorf("parameter %q: not a number: %v", name, raw)
	}
	if p.Min != nil && val < *p.Min {
		return 0, fmt.Errorf("parameter %q value %v is below minimum %v", name, val, *p.Min)
	}
	if p.Max != nil && val > *p.Max {
		return 0, fmt.Errorf("parameter %q value %v is above maximum %v", name, val, *p.Max)
	}
	return val, nil
}

// Int resolves a number parameter as an integer.
func (rv *Resolver) Int(r mcp.CallToolRequest, name string) (int, error) {
	val, err := rv.Number(r, name)
	if err != nil {
		return 0, err
	}
	return int(val), nil
}

// param looks up a declared parameter. Requesting an undeclared name is a
// programming error in the handler, not bad caller input.
func (rv *Resolver) param(name string) (*manifest.Parameter, error) {
	p := rv.m.Param(name)
	if p == nil {
		return nil, fmt.Errorf("tool %s declares no parameter %q", rv.m.Identity.Name, name)
	}
	return p, nil
}

// raw returns the resolved raw value for a parameter, reporting whether any
// source supplied one. Empty strings count as absent so optional parameters
// fall through to their defaults.
func (rv *Resolver) raw(r mcp.CallToolRequest, p *manifest.Parameter) (interface{}, bool) {
	if args := r.GetArguments(); args != nil {
		if v, ok := args[p.Name]; ok && v != nil {
			if s, isStr := v.(string); !isStr || s != "" {
				return v, true
			}
		}
	}
	if p.Default != nil {
		return *p.Default, true
	}
	if rv.defaults != nil {
		if v, ok := rv.defaults[p.Name]; ok && v != "" {
			return v, true
		}
	}
	return nil, false
}
