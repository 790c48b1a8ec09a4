package manifest

import (
	"fmt"

	"github.com/datapivot/schemabridge/internal/common"
)

var knownTypes = map[string]bool{
	TypeSelect:        true,
	TypeString:        true,
	TypeNumber:        true,
	TypeSecretInput:   true,
	TypeModelSelector: true,
}

// Validate checks a manifest against the schema contract and returns every
// issue found. An empty slice means the manifest is registrable.
func Validate(m *Manifest) []string {
	var issues []string

	if m.Identity.Name == "" {
		issues = append(issues, "identity.name is empty")
	}
	if _, ok := m.Identity.Label[DefaultLocale]; len(m.Identity.Label) > 0 && !ok {
		issues = append(issues, fmt.Sprintf("identity.label missing default locale %s", DefaultLocale))
	}
	if m.Description.LLM == "" {
		issues = append(issues, "description.llm is empty")
	}
	if m.Extra != nil && m.Extra.Python.Source == "" {
		issues = append(issues, "extra.python.source is empty")
	}

	seen := make(map[string]bool, len(m.Parameters))
	for _, p := range m.Parameters {
		if seen[p.Name] {
			issues = append(issues, fmt.Sprintf("duplicate parameter name %q", p.Name))
			continue
		}
		seen[p.Name] = true

		if err := validateParameter(p); err != nil {
			issues = append(issues, err.Error())
		}
	}

	return issues
}

// validateParameter checks one parameter definition.
func validateParameter(p Parameter) error {
	if p.Name == "" {
		return fmt.Errorf("parameter has empty name")
	}
	if !knownTypes[p.Type] {
		return fmt.Errorf("parameter %q has unknown type %q", p.Name, p.Type)
	}
	if p.Form != FormLLM && p.Form != FormForm {
		return fmt.Errorf("parameter %q has invalid form %q (must be %q or %q)", p.Name, p.Form, FormLLM, FormForm)
	}
	if _, ok := p.Label[DefaultLocale]; len(p.Label) > 0 && !ok {
		return fmt.Errorf("parameter %q label missing default locale %s", p.Name, DefaultLocale)
	}

	// A required parameter with a default would never fail required-validation
	// on the host side; the combination is a contract error.
	if p.Required && p.Default != nil {
		return fmt.Errorf("parameter %q is required but declares a default", p.Name)
	}

	switch p.Type {
	case TypeSelect:
		if len(p.Options) == 0 {
			return fmt.Errorf("select parameter %q declares no options", p.Name)
		}
		for _, o := range p.Options {
			if o.Value == "" {
				return fmt.Errorf("select parameter %q has an option with empty value", p.Name)
			}
		}
		if p.Default != nil && !p.HasOption(*p.Default) {
			return fmt.Errorf("select parameter %q default %q is not an option", p.Name, *p.Default)
		}
	case TypeNumber:
		if p.Min != nil && p.Max != nil && *p.Min > *p.Max {
			return fmt.Errorf("number parameter %q has min %v > max %v", p.Name, *p.Min, *p.Max)
		}
	case TypeModelSelector:
		if p.Scope == "" {
			return fmt.Errorf("model-selector parameter %q declares no scope", p.Name)
		}
	}

	if p.Type != TypeNumber && (p.Min != nil || p.Max != nil) {
		return fmt.Errorf("parameter %q declares min/max but is not a number", p.Name)
	}

	return nil
}

// FilterValid drops invalid and duplicate manifests, logging a warning for each.
// Survivors keep their load order.
func FilterValid(manifests []*Manifest, logger *common.Logger) []*Manifest {
	seen := make(map[string]bool, len(manifests))
	valid := make([]*Manifest, 0, len(manifests))
	for _, m := range manifests {
		if issues := Validate(m); len(issues) > 0 {
			for _, issue := range issues {
				logger.Warn().
					Str("tool", m.Identity.Name).
					Str("issue", issue).
					Msg("skipping invalid manifest")
			}
			continue
		}
		if seen[m.Identity.Name] {
			logger.Warn().Str("tool", m.Identity.Name).Msg("skipping duplicate manifest")
			continue
		}
		seen[m.Identity.Name] = true
		valid = append(valid, m)
	}
	return valid
}
