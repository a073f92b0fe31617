// Package catalog provides the static registry of evaluable field paths.
// Every field a condition may reference is declared here with its semantic
// type and the operators legal for it. The catalog is configuration: it is
// loaded once (or hot-reloaded as a whole) and is read-only during evaluation.
package catalog

import (
	"errors"
	"fmt"
	"strings"
)

// FieldType is the semantic type of a catalog field.
type FieldType string

const (
	TypeString  FieldType = "string"
	TypeNumber  FieldType = "number"
	TypeBoolean FieldType = "boolean"
	TypeDate    FieldType = "date"
	TypeEnum    FieldType = "enum"
)

// Operator is a comparison operator name (string values for clean JSON serialization).
type Operator string

const (
	OpEq         Operator = "eq"
	OpNe         Operator = "ne"
	OpGt         Operator = "gt"
	OpGte        Operator = "gte"
	OpLt         Operator = "lt"
	OpLte        Operator = "lte"
	OpIn         Operator = "in"
	OpNin        Operator = "nin"
	OpContains   Operator = "contains"
	OpStartsWith Operator = "starts_with"
	OpEndsWith   Operator = "ends_with"
	OpRegex      Operator = "regex"
	OpVersionGt  Operator = "version_gt"
	OpVersionLt  Operator = "version_lt"
)

// Option is one admissible value of an enum field.
type Option struct {
	Value string `json:"value" yaml:"value"`
	Label string `json:"label" yaml:"label"`
}

// FieldDefinition declares one evaluable field: its dotted path (e.g.
// "order.status"), its type, enum options (required iff Type is enum), and
// the operators the field supports. An empty Operators list means the full
// default set for the type.
type FieldDefinition struct {
	Path      string     `json:"path" yaml:"path"`
	Type      FieldType  `json:"type" yaml:"type"`
	Options   []Option   `json:"options,omitempty" yaml:"options,omitempty"`
	Operators []Operator `json:"operators" yaml:"operators,omitempty"`
}

// HasOption reports whether value is one of the enum options.
func (d FieldDefinition) HasOption(value string) bool {
	for _, o := range d.Options {
		if o.Value == value {
			return true
		}
	}
	return false
}

// SupportsOperator reports whether op is legal for this field.
func (d FieldDefinition) SupportsOperator(op Operator) bool {
	for _, o := range d.Operators {
		if o == op {
			return true
		}
	}
	return false
}

// DefaultOperators returns the full operator set for a field type. A concrete
// field may narrow this set but never widen it.
func DefaultOperators(t FieldType) []Operator {
	switch t {
	case TypeString:
		return []Operator{OpEq, OpNe, OpIn, OpNin, OpContains, OpStartsWith, OpEndsWith, OpRegex, OpVersionGt, OpVersionLt}
	case TypeEnum:
		return []Operator{OpEq, OpNe, OpIn, OpNin}
	case TypeNumber, TypeDate:
		return []Operator{OpEq, OpNe, OpGt, OpGte, OpLt, OpLte}
	case TypeBoolean:
		return []Operator{OpEq, OpNe}
	default:
		return nil
	}
}

// Sentinel errors returned when building a Catalog.
var (
	ErrEmptyCatalog    = errors.New("catalog has no fields")
	ErrDuplicatePath   = errors.New("duplicate field path")
	ErrInvalidField    = errors.New("invalid field definition")
	ErrIllegalOperator = errors.New("operator not legal for field type")
)

// Catalog is the immutable registry of field definitions. All lookups are
// safe for concurrent use; a Catalog is never mutated after New returns.
type Catalog struct {
	fields map[string]FieldDefinition
	order  []string
}

// New builds a Catalog from field definitions, validating each one:
// non-empty dotted path, known type, options present exactly for enums, and
// every declared operator within the type's default set. Fields that declare
// no operators receive the full default set for their type.
func New(defs []FieldDefinition) (*Catalog, error) {
	if len(defs) == 0 {
		return nil, ErrEmptyCatalog
	}

	c := &Catalog{
		fields: make(map[string]FieldDefinition, len(defs)),
		order:  make([]string, 0, len(defs)),
	}

	for i, def := range defs {
		if err := validateDefinition(i, def); err != nil {
			return nil, err
		}
		if _, exists := c.fields[def.Path]; exists {
			return nil, fmt.Errorf("%w: %q", ErrDuplicatePath, def.Path)
		}
		if len(def.Operators) == 0 {
			def.Operators = DefaultOperators(def.Type)
		}
		c.fields[def.Path] = def
		c.order = append(c.order, def.Path)
	}

	return c, nil
}

func validateDefinition(i int, def FieldDefinition) error {
	path := strings.TrimSpace(def.Path)
	if path == "" || path != def.Path {
		return fmt.Errorf("%w: field[%d] path must be a non-empty trimmed string", ErrInvalidField, i)
	}
	if strings.HasPrefix(path, ".") || strings.HasSuffix(path, ".") || strings.Contains(path, "..") {
		return fmt.Errorf("%w: field[%d] path %q is not a valid dotted path", ErrInvalidField, i, path)
	}

	defaults := DefaultOperators(def.Type)
	if defaults == nil {
		return fmt.Errorf("%w: field[%d] %q has unknown type %q", ErrInvalidField, i, path, def.Type)
	}

	if def.Type == TypeEnum && len(def.Options) == 0 {
		return fmt.Errorf("%w: field[%d] %q is enum but declares no options", ErrInvalidField, i, path)
	}
	if def.Type != TypeEnum && len(def.Options) > 0 {
		return fmt.Errorf("%w: field[%d] %q declares options but is not enum", ErrInvalidField, i, path)
	}

	allowed := make(map[Operator]struct{}, len(defaults))
	for _, op := range defaults {
		allowed[op] = struct{}{}
	}
	for _, op := range def.Operators {
		if _, ok := allowed[op]; !ok {
			return fmt.Errorf("%w: field[%d] %q declares %q for type %q", ErrIllegalOperator, i, path, op, def.Type)
		}
	}

	return nil
}

// Resolve returns the definition for a field path.
func (c *Catalog) Resolve(path string) (FieldDefinition, bool) {
	def, ok := c.fields[path]
	return def, ok
}

// OperatorsFor returns the operators legal for a field path, or nil when the
// path is unknown.
func (c *Catalog) OperatorsFor(path string) []Operator {
	def, ok := c.fields[path]
	if !ok {
		return nil
	}
	out := make([]Operator, len(def.Operators))
	copy(out, def.Operators)
	return out
}

// Fields returns all definitions in declaration order.
func (c *Catalog) Fields() []FieldDefinition {
	out := make([]FieldDefinition, 0, len(c.order))
	for _, path := range c.order {
		out = append(out, c.fields[path])
	}
	return out
}

// Len returns the number of declared fields.
func (c *Catalog) Len() int { return len(c.order) }
