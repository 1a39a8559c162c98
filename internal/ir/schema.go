package ir

// Schema is the recursive IR node for a JSON Schema / OpenAPI Schema Object.
// A node is either a reference (Ref set, no structural fields) or an inline
// definition. Every node carries Metadata regardless of which form it takes.
type Schema struct {
	// Name is set for component-level schemas only.
	Name string `json:"name,omitempty"`

	// Ref marks this node as a bare reference to another component.
	// A reference node carries no structural fields besides Metadata.
	Ref string `json:"ref,omitempty"`

	Type        SchemaType `json:"type,omitempty"`
	Title       string     `json:"title,omitempty"`
	Description string     `json:"description,omitempty"`
	Format      string     `json:"format,omitempty"`
	Deprecated  bool       `json:"deprecated,omitempty"`
	Example     any        `json:"example,omitempty"`
	Examples    []any      `json:"examples,omitempty"`

	// Object properties, insertion order preserved.
	Properties []Property `json:"properties,omitempty"`
	Required   []string   `json:"required,omitempty"`

	// Array items. TupleItems holds prefixItems for tuple-shaped arrays.
	Items      *Schema   `json:"items,omitempty"`
	TupleItems []*Schema `json:"tupleItems,omitempty"`

	// Additional properties for maps.
	AdditionalProperties *Schema `json:"additionalProperties,omitempty"`

	// Enum and const values.
	Enum  []any `json:"enum,omitempty"`
	Const any   `json:"const,omitempty"`

	// Composition.
	AllOf []*Schema `json:"allOf,omitempty"`
	OneOf []*Schema `json:"oneOf,omitempty"`
	AnyOf []*Schema `json:"anyOf,omitempty"`
	Not   *Schema   `json:"not,omitempty"`

	// Discriminator for oneOf/anyOf polymorphism.
	Discriminator *Discriminator `json:"discriminator,omitempty"`

	// Constraints, copied structurally from the source document.
	Minimum          *float64 `json:"minimum,omitempty"`
	Maximum          *float64 `json:"maximum,omitempty"`
	ExclusiveMinimum bool     `json:"exclusiveMinimum,omitempty"`
	ExclusiveMaximum bool     `json:"exclusiveMaximum,omitempty"`
	MultipleOf       *float64 `json:"multipleOf,omitempty"`
	MinLength        *int64   `json:"minLength,omitempty"`
	MaxLength        *int64   `json:"maxLength,omitempty"`
	Pattern          string   `json:"pattern,omitempty"`
	MinItems         *int64   `json:"minItems,omitempty"`
	MaxItems         *int64   `json:"maxItems,omitempty"`
	UniqueItems      bool     `json:"uniqueItems,omitempty"`
	MinProperties    *int64   `json:"minProperties,omitempty"`
	MaxProperties    *int64   `json:"maxProperties,omitempty"`

	XML          *XML          `json:"xml,omitempty"`
	ExternalDocs *ExternalDocs `json:"externalDocs,omitempty"`

	Metadata Metadata `json:"metadata"`
}

// IsRef reports whether this node is a bare reference.
func (s *Schema) IsRef() bool {
	return s != nil && s.Ref != ""
}

type SchemaType string

const (
	TypeString  SchemaType = "string"
	TypeNumber  SchemaType = "number"
	TypeInteger SchemaType = "integer"
	TypeBoolean SchemaType = "boolean"
	TypeArray   SchemaType = "array"
	TypeObject  SchemaType = "object"
	TypeNull    SchemaType = "null"
)

// Property is one entry of the ordered, duplicate-free property mapping.
type Property struct {
	Name   string  `json:"name"`
	Schema *Schema `json:"schema"`
}

type Discriminator struct {
	PropertyName string            `json:"propertyName"`
	Mapping      map[string]string `json:"mapping,omitempty"`
}

type XML struct {
	Name      string `json:"name,omitempty"`
	Namespace string `json:"namespace,omitempty"`
	Prefix    string `json:"prefix,omitempty"`
	Attribute bool   `json:"attribute,omitempty"`
	Wrapped   bool   `json:"wrapped,omitempty"`
}

type ExternalDocs struct {
	Description string `json:"description,omitempty"`
	URL         string `json:"url,omitempty"`
}

// PresenceChain classifies a schema position as required/optional crossed
// with nullable/non-nullable.
type PresenceChain string

const (
	PresenceRequired         PresenceChain = "required"
	PresenceOptional         PresenceChain = "optional"
	PresenceNullable         PresenceChain = "nullable"
	PresenceOptionalNullable PresenceChain = "optional-nullable"
)

// Presence derives the chain from a position's required flag and the
// schema's nullability.
func Presence(required, nullable bool) PresenceChain {
	switch {
	case required && nullable:
		return PresenceNullable
	case required:
		return PresenceRequired
	case nullable:
		return PresenceOptionalNullable
	default:
		return PresenceOptional
	}
}

// Metadata is owned by every Schema node, reference nodes included.
type Metadata struct {
	Required     bool           `json:"required"`
	Nullable     bool           `json:"nullable"`
	Default      any            `json:"default,omitempty"`
	Presence     PresenceChain  `json:"presence"`
	Dependencies DependencyInfo `json:"dependencies"`

	// CircularWith lists schema names that participate in a reference
	// cycle through this node.
	CircularWith []string `json:"circularWith,omitempty"`
}

// DependencyInfo is the per-node summary copied out of the dependency graph.
type DependencyInfo struct {
	DependsOn    []string `json:"dependsOn,omitempty"`
	DependedOnBy []string `json:"dependedOnBy,omitempty"`
	Depth        int      `json:"depth"`
}
