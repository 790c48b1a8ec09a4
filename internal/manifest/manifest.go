// Package manifest defines the declarative tool manifest consumed at startup:
// tool identity, descriptions, and the ordered parameter schema the host
// exposes to model callers.
package manifest

// Parameter types understood by the runtime.
const (
	TypeSelect        = "select"
	TypeString        = "string"
	TypeNumber        = "number"
	TypeSecretInput   = "secret-input"
	TypeModelSelector = "model-selector"
)

// Form values controlling where a parameter is surfaced.
// "llm" parameters appear on the generated tool schema; "form" parameters are
// operator-configured and resolve from config defaults when absent from a call.
const (
	FormLLM  = "llm"
	FormForm = "form"
)

// DefaultLocale is the locale every label map must carry.
const DefaultLocale = "en_US"

// Manifest describes one tool: identity, descriptions, handler binding, and
// the ordered parameter contract.
type Manifest struct {
	Identity    Identity    `yaml:"identity"`
	Description Description `yaml:"description"`
	Extra       *Extra      `yaml:"extra,omitempty"`
	Parameters  []Parameter `yaml:"parameters"`
}

// Identity names the tool and its author.
type Identity struct {
	Name   string            `yaml:"name"`
	Author string            `yaml:"author"`
	Label  map[string]string `yaml:"label"`
}

// Description carries per-locale operator text and the single LLM-facing description.
type Description struct {
	Human map[string]string `yaml:"human"`
	LLM   string            `yaml:"llm"`
}

// Extra holds the handler binding. Source names the handler implementation the
// manifest delegates to; the runtime maps it to a registered Go handler.
type Extra struct {
	Python PythonExtra `yaml:"python"`
}

// PythonExtra is the handler source reference carried by upstream manifests.
type PythonExtra struct {
	Source string `yaml:"source"`
}

// Parameter is one entry of the tool's input contract.
type Parameter struct {
	Name             string            `yaml:"name"`
	Type             string            `yaml:"type"`
	Required         bool              `yaml:"required"`
	Default          *string           `yaml:"default,omitempty"`
	Label            map[string]string `yaml:"label"`
	HumanDescription map[string]string `yaml:"human_description"`
	LLMDescription   string            `yaml:"llm_description"`
	Form             string            `yaml:"form"`
	Options          []Option          `yaml:"options,omitempty"`
	Min              *float64          `yaml:"min,omitempty"`
	Max              *float64          `yaml:"max,omitempty"`
	Scope            string            `yaml:"scope,omitempty"`
}

// Option is one allowed value of a select parameter.
type Option struct {
	Value string            `yaml:"value"`
	Label map[string]string `yaml:"label"`
}

// Param returns the parameter with the given name, or nil.
func (m *Manifest) Param(name string) *Parameter {
	for i := range m.Parameters {
		if m.Parameters[i].Name == name {
			return &m.Parameters[i]
		}
	}
	return nil
}

// OptionValues returns the allowed values of a select parameter in declaration order.
func (p *Parameter) OptionValues() []string {
	values := make([]string, 0, len(p.Options))
	for _, o := range p.Options {
		values = append(values, o.Value)
	}
	return values
}

// HasOption reports whether v is an allowed value of a select parameter.
func (p *Parameter) HasOption(v string) bool {
	for _, o := range p.Options {
		if o.Value == v {
			return true
		}
	}
	return false
}
