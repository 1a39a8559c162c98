// Package writer raises an IR document back into a libopenapi OpenAPI model.
// Writing is the inverse of building: feeding the produced model back through
// the builder yields an equal IR document. Derived data (the dependency
// graph, presence chains, the enum catalog) is not written; it is recomputed
// on the next build.
package writer

import (
	"fmt"
	"sort"

	"github.com/pb33f/libopenapi/datamodel/high/base"
	v3 "github.com/pb33f/libopenapi/datamodel/high/v3"
	"github.com/pb33f/libopenapi/orderedmap"
	"go.yaml.in/yaml/v4"

	"github.com/kolah/specir/internal/ir"
)

// Write converts doc into an OpenAPI document model. Component order and
// operation order follow the IR's document order.
func Write(doc *ir.Document) (*v3.Document, error) {
	out := &v3.Document{
		Version: doc.OpenAPIVersion,
		Info:    writeInfo(doc.Info),
		Servers: writeServers(doc.Servers),
		Tags:    writeTags(doc.Tags),
	}
	if out.Version == "" {
		out.Version = "3.1.0"
	}

	components, err := writeComponents(doc.Components)
	if err != nil {
		return nil, err
	}
	out.Components = components

	if len(doc.Operations) > 0 {
		out.Paths = writePaths(doc.Operations)
	}

	return out, nil
}

func writeInfo(info ir.Info) *base.Info {
	out := &base.Info{
		Title:          info.Title,
		Summary:        info.Summary,
		Description:    info.Description,
		TermsOfService: info.TermsOfService,
		Version:        info.Version,
	}
	if info.Contact != nil {
		out.Contact = &base.Contact{
			Name:  info.Contact.Name,
			URL:   info.Contact.URL,
			Email: info.Contact.Email,
		}
	}
	if info.License != nil {
		out.License = &base.License{
			Name:       info.License.Name,
			Identifier: info.License.Identifier,
			URL:        info.License.URL,
		}
	}
	return out
}

func writeServers(servers []ir.Server) []*v3.Server {
	var out []*v3.Server
	for _, s := range servers {
		out = append(out, &v3.Server{URL: s.URL, Description: s.Description})
	}
	return out
}

func writeTags(tags []ir.Tag) []*base.Tag {
	var out []*base.Tag
	for _, t := range tags {
		out = append(out, &base.Tag{Name: t.Name, Description: t.Description})
	}
	return out
}

// writeComponents rebuilds the components sections. The component set is
// closed; an unknown implementation is a programming error and fails loudly.
func writeComponents(components []ir.Component) (*v3.Components, error) {
	if len(components) == 0 {
		return nil, nil
	}

	out := &v3.Components{}
	for _, c := range components {
		switch comp := c.(type) {
		case *ir.SchemaComponent:
			if out.Schemas == nil {
				out.Schemas = orderedmap.New[string, *base.SchemaProxy]()
			}
			out.Schemas.Set(comp.Name, writeSchema(comp.Schema))
		case *ir.ParameterComponent:
			if out.Parameters == nil {
				out.Parameters = orderedmap.New[string, *v3.Parameter]()
			}
			out.Parameters.Set(comp.Name, writeParameter(*comp.Parameter))
		case *ir.RequestBodyComponent:
			if out.RequestBodies == nil {
				out.RequestBodies = orderedmap.New[string, *v3.RequestBody]()
			}
			out.RequestBodies.Set(comp.Name, writeRequestBody(comp.RequestBody))
		case *ir.ResponseComponent:
			if out.Responses == nil {
				out.Responses = orderedmap.New[string, *v3.Response]()
			}
			out.Responses.Set(comp.Name, writeResponse(*comp.Response))
		case *ir.HeaderComponent:
			if out.Headers == nil {
				out.Headers = orderedmap.New[string, *v3.Header]()
			}
			out.Headers.Set(comp.Name, writeHeader(*comp.Header))
		case *ir.SecuritySchemeComponent:
			if out.SecuritySchemes == nil {
				out.SecuritySchemes = orderedmap.New[string, *v3.SecurityScheme]()
			}
			out.SecuritySchemes.Set(comp.Name, writeSecurityScheme(comp.Scheme))
		case *ir.LinkComponent:
			if out.Links == nil {
				out.Links = orderedmap.New[string, *v3.Link]()
			}
			out.Links.Set(comp.Name, writeLink(comp.Link))
		case *ir.CallbackComponent:
			if out.Callbacks == nil {
				out.Callbacks = orderedmap.New[string, *v3.Callback]()
			}
			out.Callbacks.Set(comp.Name, writeCallback(comp.Callback))
		case *ir.PathItemComponent:
			if out.PathItems == nil {
				out.PathItems = orderedmap.New[string, *v3.PathItem]()
			}
			out.PathItems.Set(comp.Name, writePathItemComponent(comp.PathItem))
		case *ir.ExampleComponent:
			if out.Examples == nil {
				out.Examples = orderedmap.New[string, *base.Example]()
			}
			out.Examples.Set(comp.Name, writeExample(comp.Example))
		default:
			return nil, fmt.Errorf("unknown component kind %q for %q", c.ComponentKind(), c.ComponentName())
		}
	}
	return out, nil
}

// writePaths regroups the flat operation list by path, preserving first-seen
// path order.
func writePaths(operations []ir.Operation) *v3.Paths {
	paths := &v3.Paths{PathItems: orderedmap.New[string, *v3.PathItem]()}
	for _, op := range operations {
		item, ok := paths.PathItems.Get(op.Path)
		if !ok {
			item = &v3.PathItem{}
			paths.PathItems.Set(op.Path, item)
		}
		setOperation(item, op.Method, writeOperation(op))
	}
	return paths
}

func setOperation(item *v3.PathItem, method ir.Method, op *v3.Operation) {
	switch method {
	case ir.MethodGet:
		item.Get = op
	case ir.MethodPost:
		item.Post = op
	case ir.MethodPut:
		item.Put = op
	case ir.MethodDelete:
		item.Delete = op
	case ir.MethodPatch:
		item.Patch = op
	case ir.MethodHead:
		item.Head = op
	case ir.MethodOptions:
		item.Options = op
	case ir.MethodTrace:
		item.Trace = op
	}
}

func writeOperation(op ir.Operation) *v3.Operation {
	out := &v3.Operation{
		OperationId: op.ID,
		Summary:     op.Summary,
		Description: op.Description,
		Tags:        op.Tags,
		Deprecated:  truePtr(op.Deprecated),
	}

	for _, p := range op.Parameters {
		out.Parameters = append(out.Parameters, writeParameter(p))
	}
	if op.RequestBody != nil {
		out.RequestBody = writeRequestBody(op.RequestBody)
	}
	out.Responses = writeResponses(op.Responses)

	// Each flattened requirement becomes its own entry; rebuilding flattens
	// them back in the same order. A declared-but-empty list stays a
	// non-nil empty slice so it renders as security: [].
	if op.SecurityDeclared || len(op.Security) > 0 {
		out.Security = []*base.SecurityRequirement{}
	}
	for _, req := range op.Security {
		requirements := orderedmap.New[string, []string]()
		if req.Name != "" {
			requirements.Set(req.Name, req.Scopes)
		}
		out.Security = append(out.Security, &base.SecurityRequirement{Requirements: requirements})
	}

	if len(op.Callbacks) > 0 {
		out.Callbacks = orderedmap.New[string, *v3.Callback]()
		for _, cb := range op.Callbacks {
			out.Callbacks.Set(cb.Name, writeCallback(&cb.Callback))
		}
	}

	return out
}

func writeParameter(p ir.Parameter) *v3.Parameter {
	out := &v3.Parameter{
		Name:        p.Name,
		In:          string(p.In),
		Description: p.Description,
		Required:    truePtr(p.Required),
		Deprecated:  p.Deprecated,
	}
	if p.Schema != nil {
		out.Schema = writeSchema(p.Schema)
	}
	if len(p.Content) > 0 {
		out.Content = writeContent(p.Content)
	}
	return out
}

func writeRequestBody(rb *ir.RequestBody) *v3.RequestBody {
	return &v3.RequestBody{
		Description: rb.Description,
		Required:    truePtr(rb.Required),
		Content:     writeContent(rb.Content),
	}
}

func writeContent(content []ir.MediaTypeContent) *orderedmap.Map[string, *v3.MediaType] {
	if len(content) == 0 {
		return nil
	}
	out := orderedmap.New[string, *v3.MediaType]()
	for _, mtc := range content {
		mt := &v3.MediaType{Example: encodeNode(mtc.Example)}
		if mtc.Schema != nil {
			mt.Schema = writeSchema(mtc.Schema)
		}
		out.Set(mtc.MediaType, mt)
	}
	return out
}

// writeResponses splits the flat response list back into coded responses and
// the default response. The builder always places the default last, so coded
// order is preserved as-is.
func writeResponses(responses []ir.Response) *v3.Responses {
	if len(responses) == 0 {
		return nil
	}
	out := &v3.Responses{}
	for _, r := range responses {
		resp := writeResponse(r)
		if r.StatusCode == "default" {
			out.Default = resp
			continue
		}
		if out.Codes == nil {
			out.Codes = orderedmap.New[string, *v3.Response]()
		}
		out.Codes.Set(r.StatusCode, resp)
	}
	return out
}

func writeResponse(r ir.Response) *v3.Response {
	out := &v3.Response{
		Description: r.Description,
		Content:     writeContent(r.Content),
	}
	if len(r.Headers) > 0 {
		out.Headers = orderedmap.New[string, *v3.Header]()
		for _, h := range r.Headers {
			out.Headers.Set(h.Name, writeHeader(h))
		}
	}
	return out
}

func writeHeader(h ir.Header) *v3.Header {
	out := &v3.Header{
		Description: h.Description,
		Required:    h.Required,
		Deprecated:  h.Deprecated,
	}
	if h.Schema != nil {
		out.Schema = writeSchema(h.Schema)
	}
	return out
}

func writeSecurityScheme(ss *ir.SecurityScheme) *v3.SecurityScheme {
	out := &v3.SecurityScheme{
		Type:             string(ss.Type),
		Description:      ss.Description,
		Name:             ss.SchemeName,
		In:               ss.In,
		Scheme:           ss.Scheme,
		BearerFormat:     ss.BearerFormat,
		OpenIdConnectUrl: ss.OpenIDURL,
	}
	if ss.Flows != nil {
		out.Flows = &v3.OAuthFlows{
			Implicit:          writeOAuthFlow(ss.Flows.Implicit),
			Password:          writeOAuthFlow(ss.Flows.Password),
			ClientCredentials: writeOAuthFlow(ss.Flows.ClientCredentials),
			AuthorizationCode: writeOAuthFlow(ss.Flows.AuthorizationCode),
		}
	}
	return out
}

func writeOAuthFlow(flow *ir.OAuthFlow) *v3.OAuthFlow {
	if flow == nil {
		return nil
	}
	out := &v3.OAuthFlow{
		AuthorizationUrl: flow.AuthorizationURL,
		TokenUrl:         flow.TokenURL,
		RefreshUrl:       flow.RefreshURL,
	}
	if len(flow.Scopes) > 0 {
		out.Scopes = orderedmap.New[string, string]()
		for _, scope := range sortedKeys(flow.Scopes) {
			out.Scopes.Set(scope, flow.Scopes[scope])
		}
	}
	return out
}

func writeLink(l *ir.Link) *v3.Link {
	out := &v3.Link{
		OperationId:  l.OperationID,
		OperationRef: l.OperationRef,
		Description:  l.Description,
		RequestBody:  l.RequestBody,
	}
	if len(l.Parameters) > 0 {
		out.Parameters = orderedmap.New[string, string]()
		for _, p := range l.Parameters {
			out.Parameters.Set(p.Name, p.Value)
		}
	}
	return out
}

func writeCallback(cb *ir.Callback) *v3.Callback {
	out := &v3.Callback{Expression: orderedmap.New[string, *v3.PathItem]()}
	for _, expr := range cb.Expressions {
		item := &v3.PathItem{}
		for _, op := range expr.Operations {
			setOperation(item, op.Method, writeCallbackOperation(op))
		}
		out.Expression.Set(expr.Expression, item)
	}
	return out
}

func writeCallbackOperation(op ir.CallbackOperation) *v3.Operation {
	out := &v3.Operation{}
	if op.RequestBody != nil {
		out.RequestBody = writeRequestBody(op.RequestBody)
	}
	out.Responses = writeResponses(op.Responses)
	return out
}

func writePathItemComponent(item *ir.PathItem) *v3.PathItem {
	out := &v3.PathItem{
		Summary:     item.Summary,
		Description: item.Description,
	}
	for _, op := range item.Operations {
		setOperation(out, op.Method, writeOperation(op))
	}
	return out
}

func writeExample(e *ir.Example) *base.Example {
	return &base.Example{
		Summary:       e.Summary,
		Description:   e.Description,
		Value:         encodeNode(e.Value),
		ExternalValue: e.ExternalValue,
	}
}

// writeSchema raises one IR schema node. Reference nodes become schema proxy
// refs; position metadata (required, presence) is not written because it is
// derived from the parent's required list and the nullable flag on rebuild.
func writeSchema(s *ir.Schema) *base.SchemaProxy {
	if s == nil {
		return nil
	}
	if s.Ref != "" {
		return base.CreateSchemaProxyRef(s.Ref)
	}

	out := &base.Schema{
		Title:       s.Title,
		Description: s.Description,
		Format:      s.Format,
		Deprecated:  truePtr(s.Deprecated),
		Nullable:    truePtr(s.Metadata.Nullable),
		Pattern:     s.Pattern,
		UniqueItems: truePtr(s.UniqueItems),
		Required:    s.Required,
		Example:     encodeNode(s.Example),
		Examples:    encodeNodes(s.Examples),
		Enum:        encodeNodes(s.Enum),
		Const:       encodeNode(s.Const),
		Default:     encodeNode(s.Metadata.Default),
	}

	if s.Type != "" {
		out.Type = []string{string(s.Type)}
	}

	if len(s.Properties) > 0 {
		out.Properties = orderedmap.New[string, *base.SchemaProxy]()
		for _, p := range s.Properties {
			out.Properties.Set(p.Name, writeSchema(p.Schema))
		}
	}

	if s.Items != nil {
		out.Items = &base.DynamicValue[*base.SchemaProxy, bool]{N: 0, A: writeSchema(s.Items)}
	}
	for _, t := range s.TupleItems {
		out.PrefixItems = append(out.PrefixItems, writeSchema(t))
	}
	if s.AdditionalProperties != nil {
		out.AdditionalProperties = &base.DynamicValue[*base.SchemaProxy, bool]{N: 0, A: writeSchema(s.AdditionalProperties)}
	}

	for _, b := range s.AllOf {
		out.AllOf = append(out.AllOf, writeSchema(b))
	}
	for _, b := range s.OneOf {
		out.OneOf = append(out.OneOf, writeSchema(b))
	}
	for _, b := range s.AnyOf {
		out.AnyOf = append(out.AnyOf, writeSchema(b))
	}
	if s.Not != nil {
		out.Not = writeSchema(s.Not)
	}

	if s.Discriminator != nil {
		out.Discriminator = &base.Discriminator{PropertyName: s.Discriminator.PropertyName}
		if len(s.Discriminator.Mapping) > 0 {
			out.Discriminator.Mapping = orderedmap.New[string, string]()
			for _, k := range sortedKeys(s.Discriminator.Mapping) {
				out.Discriminator.Mapping.Set(k, s.Discriminator.Mapping[k])
			}
		}
	}

	out.Minimum = s.Minimum
	out.Maximum = s.Maximum
	out.MultipleOf = s.MultipleOf
	out.MinLength = s.MinLength
	out.MaxLength = s.MaxLength
	out.MinItems = s.MinItems
	out.MaxItems = s.MaxItems
	out.MinProperties = s.MinProperties
	out.MaxProperties = s.MaxProperties

	if s.ExclusiveMinimum {
		out.ExclusiveMinimum = &base.DynamicValue[bool, float64]{N: 0, A: true}
	}
	if s.ExclusiveMaximum {
		out.ExclusiveMaximum = &base.DynamicValue[bool, float64]{N: 0, A: true}
	}

	if s.XML != nil {
		out.XML = &base.XML{
			Name:      s.XML.Name,
			Namespace: s.XML.Namespace,
			Prefix:    s.XML.Prefix,
			Attribute: s.XML.Attribute,
			Wrapped:   s.XML.Wrapped,
		}
	}
	if s.ExternalDocs != nil {
		out.ExternalDocs = &base.ExternalDoc{
			Description: s.ExternalDocs.Description,
			URL:         s.ExternalDocs.URL,
		}
	}

	return base.CreateSchemaProxy(out)
}

func encodeNode(v any) *yaml.Node {
	if v == nil {
		return nil
	}
	n := &yaml.Node{}
	if err := n.Encode(v); err != nil {
		return nil
	}
	return n
}

func encodeNodes(values []any) []*yaml.Node {
	if len(values) == 0 {
		return nil
	}
	out := make([]*yaml.Node, 0, len(values))
	for _, v := range values {
		out = append(out, encodeNode(v))
	}
	return out
}

func truePtr(v bool) *bool {
	if !v {
		return nil
	}
	return &v
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
