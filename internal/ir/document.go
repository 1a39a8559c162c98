package ir

// FormatVersion identifies the IR serialization format.
const FormatVersion = "1.0"

// Document is the complete intermediate representation of an OpenAPI
// document. It is built in one pass and immutable thereafter; rebuilding is
// the only way to change it.
type Document struct {
	FormatVersion  string
	OpenAPIVersion string

	Info    Info
	Servers []Server
	Tags    []Tag

	Components []Component
	Operations []Operation

	Graph *DependencyGraph

	// SchemaNames lists schema component names in document order for
	// stable iteration.
	SchemaNames []string

	// Enums is the derived enum catalog, built by one traversal of the
	// whole document.
	Enums []EnumEntry
}

// SchemaComponents returns the schema components in document order.
func (d *Document) SchemaComponents() []*SchemaComponent {
	var out []*SchemaComponent
	for _, c := range d.Components {
		if sc, ok := c.(*SchemaComponent); ok {
			out = append(out, sc)
		}
	}
	return out
}

// ComponentByPointer resolves a component pointer like
// "#/components/schemas/Pet" against the document's component list.
func (d *Document) ComponentByPointer(ref string) Component {
	if name, ok := SchemaName(ref); ok {
		for _, c := range d.Components {
			if sc, isSchema := c.(*SchemaComponent); isSchema && sc.Name == name {
				return sc
			}
		}
	}
	return nil
}

type Info struct {
	Title          string   `json:"title"`
	Summary        string   `json:"summary,omitempty"`
	Description    string   `json:"description,omitempty"`
	TermsOfService string   `json:"termsOfService,omitempty"`
	Version        string   `json:"version"`
	Contact        *Contact `json:"contact,omitempty"`
	License        *License `json:"license,omitempty"`
}

type Contact struct {
	Name  string `json:"name,omitempty"`
	URL   string `json:"url,omitempty"`
	Email string `json:"email,omitempty"`
}

type License struct {
	Name       string `json:"name,omitempty"`
	Identifier string `json:"identifier,omitempty"`
	URL        string `json:"url,omitempty"`
}

type Server struct {
	URL         string `json:"url"`
	Description string `json:"description,omitempty"`
}

type Tag struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// EnumEntry is one catalog entry: a canonical name for an enum value set and
// the schema it was first seen in.
type EnumEntry struct {
	Name        string `json:"name"`
	Values      []any  `json:"values"`
	Description string `json:"description,omitempty"`
	Schema      string `json:"schema,omitempty"`
}

type Method string

const (
	MethodGet     Method = "GET"
	MethodPost    Method = "POST"
	MethodPut     Method = "PUT"
	MethodDelete  Method = "DELETE"
	MethodPatch   Method = "PATCH"
	MethodHead    Method = "HEAD"
	MethodOptions Method = "OPTIONS"
	MethodTrace   Method = "TRACE"
)

type Operation struct {
	ID          string                `json:"id,omitempty"`
	Method      Method                `json:"method"`
	Path        string                `json:"path"`
	Summary     string                `json:"summary,omitempty"`
	Description string                `json:"description,omitempty"`
	Tags        []string              `json:"tags,omitempty"`
	Deprecated  bool                  `json:"deprecated,omitempty"`
	Parameters  []Parameter           `json:"parameters,omitempty"`
	ByLocation  ParameterGroups       `json:"byLocation"`
	RequestBody *RequestBody          `json:"requestBody,omitempty"`
	Responses   []Response            `json:"responses,omitempty"`
	Security    []SecurityRequirement `json:"security,omitempty"`
	// SecurityDeclared records that the operation carried an explicit
	// security list, even an empty one. An empty declared list disables
	// the document defaults, which an absent list does not.
	SecurityDeclared bool                `json:"securityDeclared,omitempty"`
	Callbacks        []OperationCallback `json:"callbacks,omitempty"`
}

type OperationCallback struct {
	Name     string   `json:"name"`
	Callback Callback `json:"callback"`
}

type ParameterLocation string

const (
	LocationPath   ParameterLocation = "path"
	LocationQuery  ParameterLocation = "query"
	LocationHeader ParameterLocation = "header"
	LocationCookie ParameterLocation = "cookie"
)

// ParameterGroups is the flat parameter list regrouped by location, kept so
// consumers do not re-filter.
type ParameterGroups struct {
	Path   []Parameter `json:"path,omitempty"`
	Query  []Parameter `json:"query,omitempty"`
	Header []Parameter `json:"header,omitempty"`
	Cookie []Parameter `json:"cookie,omitempty"`
}

// GroupByLocation partitions params into the four location buckets.
func GroupByLocation(params []Parameter) ParameterGroups {
	var g ParameterGroups
	for _, p := range params {
		switch p.In {
		case LocationPath:
			g.Path = append(g.Path, p)
		case LocationQuery:
			g.Query = append(g.Query, p)
		case LocationHeader:
			g.Header = append(g.Header, p)
		case LocationCookie:
			g.Cookie = append(g.Cookie, p)
		}
	}
	return g
}

type Parameter struct {
	Name        string             `json:"name"`
	In          ParameterLocation  `json:"in"`
	Description string             `json:"description,omitempty"`
	Required    bool               `json:"required,omitempty"`
	Deprecated  bool               `json:"deprecated,omitempty"`
	Schema      *Schema            `json:"schema,omitempty"`
	Content     []MediaTypeContent `json:"content,omitempty"`
}

type RequestBody struct {
	Description string             `json:"description,omitempty"`
	Required    bool               `json:"required,omitempty"`
	Content     []MediaTypeContent `json:"content,omitempty"`
}

type MediaTypeContent struct {
	MediaType string  `json:"mediaType"`
	Schema    *Schema `json:"schema,omitempty"`
	Example   any     `json:"example,omitempty"`
}

type Response struct {
	StatusCode  string             `json:"statusCode"`
	Description string             `json:"description,omitempty"`
	Content     []MediaTypeContent `json:"content,omitempty"`
	Headers     []Header           `json:"headers,omitempty"`
}

type Header struct {
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Required    bool    `json:"required,omitempty"`
	Deprecated  bool    `json:"deprecated,omitempty"`
	Schema      *Schema `json:"schema,omitempty"`
}

type SecurityRequirement struct {
	Name   string   `json:"name"`
	Scopes []string `json:"scopes,omitempty"`
}

type SecurityScheme struct {
	Type         SecuritySchemeType `json:"type"`
	Description  string             `json:"description,omitempty"`
	In           string             `json:"in,omitempty"`
	SchemeName   string             `json:"schemeName,omitempty"`
	Scheme       string             `json:"scheme,omitempty"`
	BearerFormat string             `json:"bearerFormat,omitempty"`
	Flows        *OAuthFlows        `json:"flows,omitempty"`
	OpenIDURL    string             `json:"openIdConnectUrl,omitempty"`
}

type SecuritySchemeType string

const (
	SecurityTypeAPIKey        SecuritySchemeType = "apiKey"
	SecurityTypeHTTP          SecuritySchemeType = "http"
	SecurityTypeOAuth2        SecuritySchemeType = "oauth2"
	SecurityTypeOpenIDConnect SecuritySchemeType = "openIdConnect"
	SecurityTypeMutualTLS     SecuritySchemeType = "mutualTLS"
)

type OAuthFlows struct {
	Implicit          *OAuthFlow `json:"implicit,omitempty"`
	Password          *OAuthFlow `json:"password,omitempty"`
	ClientCredentials *OAuthFlow `json:"clientCredentials,omitempty"`
	AuthorizationCode *OAuthFlow `json:"authorizationCode,omitempty"`
}

type OAuthFlow struct {
	AuthorizationURL string            `json:"authorizationUrl,omitempty"`
	TokenURL         string            `json:"tokenUrl,omitempty"`
	RefreshURL       string            `json:"refreshUrl,omitempty"`
	Scopes           map[string]string `json:"scopes,omitempty"`
}

type Link struct {
	OperationID  string          `json:"operationId,omitempty"`
	OperationRef string          `json:"operationRef,omitempty"`
	Description  string          `json:"description,omitempty"`
	RequestBody  string          `json:"requestBody,omitempty"`
	Parameters   []LinkParameter `json:"parameters,omitempty"`
}

type LinkParameter struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type Callback struct {
	Expressions []CallbackExpression `json:"expressions,omitempty"`
}

type CallbackExpression struct {
	Expression string              `json:"expression"`
	Operations []CallbackOperation `json:"operations,omitempty"`
}

type CallbackOperation struct {
	Method      Method       `json:"method"`
	RequestBody *RequestBody `json:"requestBody,omitempty"`
	Responses   []Response   `json:"responses,omitempty"`
}

type PathItem struct {
	Summary     string      `json:"summary,omitempty"`
	Description string      `json:"description,omitempty"`
	Operations  []Operation `json:"operations,omitempty"`
}

type Example struct {
	Summary       string `json:"summary,omitempty"`
	Description   string `json:"description,omitempty"`
	Value         any    `json:"value,omitempty"`
	ExternalValue string `json:"externalValue,omitempty"`
}
