package ir

import "strings"

// Kind identifies a component kind within the document.
type Kind string

const (
	KindSchema         Kind = "schema"
	KindParameter      Kind = "parameter"
	KindRequestBody    Kind = "requestBody"
	KindResponse       Kind = "response"
	KindSecurityScheme Kind = "securityScheme"
	KindHeader         Kind = "header"
	KindLink           Kind = "link"
	KindCallback       Kind = "callback"
	KindPathItem       Kind = "pathItem"
	KindExample        Kind = "example"
)

// SchemaRefPrefix is the pointer prefix for schema components.
const SchemaRefPrefix = "#/components/schemas/"

// SchemaPointer returns the component pointer for a schema name.
func SchemaPointer(name string) string {
	return SchemaRefPrefix + name
}

// SchemaName extracts the component name from a schema pointer.
// The second return is false when ref does not point into components/schemas.
func SchemaName(ref string) (string, bool) {
	name, ok := strings.CutPrefix(ref, SchemaRefPrefix)
	if !ok || name == "" || strings.Contains(name, "/") {
		return "", false
	}
	return name, true
}

// Component is a named, top-level IR entity. The set of implementations is
// closed; the writer switches exhaustively over it.
type Component interface {
	ComponentKind() Kind
	ComponentName() string
}

type SchemaComponent struct {
	Name   string
	Schema *Schema
}

func (c *SchemaComponent) ComponentKind() Kind   { return KindSchema }
func (c *SchemaComponent) ComponentName() string { return c.Name }

type ParameterComponent struct {
	Name      string
	Parameter *Parameter
}

func (c *ParameterComponent) ComponentKind() Kind   { return KindParameter }
func (c *ParameterComponent) ComponentName() string { return c.Name }

type RequestBodyComponent struct {
	Name        string
	RequestBody *RequestBody
}

func (c *RequestBodyComponent) ComponentKind() Kind   { return KindRequestBody }
func (c *RequestBodyComponent) ComponentName() string { return c.Name }

type ResponseComponent struct {
	Name     string
	Response *Response
}

func (c *ResponseComponent) ComponentKind() Kind   { return KindResponse }
func (c *ResponseComponent) ComponentName() string { return c.Name }

type SecuritySchemeComponent struct {
	Name   string
	Scheme *SecurityScheme
}

func (c *SecuritySchemeComponent) ComponentKind() Kind   { return KindSecurityScheme }
func (c *SecuritySchemeComponent) ComponentName() string { return c.Name }

type HeaderComponent struct {
	Name   string
	Header *Header
}

func (c *HeaderComponent) ComponentKind() Kind   { return KindHeader }
func (c *HeaderComponent) ComponentName() string { return c.Name }

type LinkComponent struct {
	Name string
	Link *Link
}

func (c *LinkComponent) ComponentKind() Kind   { return KindLink }
func (c *LinkComponent) ComponentName() string { return c.Name }

type CallbackComponent struct {
	Name     string
	Callback *Callback
}

func (c *CallbackComponent) ComponentKind() Kind   { return KindCallback }
func (c *CallbackComponent) ComponentName() string { return c.Name }

type PathItemComponent struct {
	Name     string
	PathItem *PathItem
}

func (c *PathItemComponent) ComponentKind() Kind   { return KindPathItem }
func (c *PathItemComponent) ComponentName() string { return c.Name }

type ExampleComponent struct {
	Name    string
	Example *Example
}

func (c *ExampleComponent) ComponentKind() Kind   { return KindExample }
func (c *ExampleComponent) ComponentName() string { return c.Name }
