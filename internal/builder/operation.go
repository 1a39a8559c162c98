package builder

import (
	"strconv"
	"strings"

	"github.com/pb33f/libopenapi/datamodel/high/base"
	v3 "github.com/pb33f/libopenapi/datamodel/high/v3"
	"github.com/pb33f/libopenapi/orderedmap"

	"github.com/kolah/specir/internal/ir"
	"github.com/kolah/specir/internal/irerrors"
)

// buildComponents lowers every components.* section in a fixed section
// order. Within a section, document order is preserved.
func (b *builder) buildComponents(doc *ir.Document) error {
	c := b.doc.Components
	if c == nil {
		return nil
	}

	if c.Schemas != nil {
		for name, proxy := range c.Schemas.FromOldest() {
			if b.excluded[name] {
				continue
			}
			ctx := buildContext{path: []string{"components", "schemas", name}, required: true}
			schema, err := b.buildComponentSchema(proxy, ctx)
			if err != nil {
				return err
			}
			if schema == nil {
				continue
			}
			schema.Name = name
			doc.Components = append(doc.Components, &ir.SchemaComponent{Name: name, Schema: schema})
		}
	}

	if c.Parameters != nil {
		for name, p := range c.Parameters.FromOldest() {
			ctx := buildContext{path: []string{"components", "parameters", name}}
			param, err := b.buildParameter(p, ctx)
			if err != nil {
				return err
			}
			doc.Components = append(doc.Components, &ir.ParameterComponent{Name: name, Parameter: param})
		}
	}

	if c.RequestBodies != nil {
		for name, rb := range c.RequestBodies.FromOldest() {
			ctx := buildContext{path: []string{"components", "requestBodies", name}}
			body, err := b.buildRequestBody(rb, ctx)
			if err != nil {
				return err
			}
			doc.Components = append(doc.Components, &ir.RequestBodyComponent{Name: name, RequestBody: body})
		}
	}

	if c.Responses != nil {
		for name, resp := range c.Responses.FromOldest() {
			ctx := buildContext{path: []string{"components", "responses", name}}
			response, err := b.buildResponse(name, resp, ctx)
			if err != nil {
				return err
			}
			doc.Components = append(doc.Components, &ir.ResponseComponent{Name: name, Response: response})
		}
	}

	if c.Headers != nil {
		for name, h := range c.Headers.FromOldest() {
			ctx := buildContext{path: []string{"components", "headers", name}}
			header, err := b.buildHeader(name, h, ctx)
			if err != nil {
				return err
			}
			doc.Components = append(doc.Components, &ir.HeaderComponent{Name: name, Header: header})
		}
	}

	if c.SecuritySchemes != nil {
		for name, scheme := range c.SecuritySchemes.FromOldest() {
			doc.Components = append(doc.Components, &ir.SecuritySchemeComponent{
				Name:   name,
				Scheme: buildSecurityScheme(scheme),
			})
		}
	}

	if c.Links != nil {
		for name, l := range c.Links.FromOldest() {
			doc.Components = append(doc.Components, &ir.LinkComponent{Name: name, Link: buildLink(l)})
		}
	}

	if c.Callbacks != nil {
		for name, cb := range c.Callbacks.FromOldest() {
			ctx := buildContext{path: []string{"components", "callbacks", name}}
			callback, err := b.buildCallback(cb, ctx)
			if err != nil {
				return err
			}
			doc.Components = append(doc.Components, &ir.CallbackComponent{Name: name, Callback: callback})
		}
	}

	if c.PathItems != nil {
		for name, item := range c.PathItems.FromOldest() {
			ctx := buildContext{path: []string{"components", "pathItems", name}}
			pathItem, err := b.buildPathItem(item, ctx)
			if err != nil {
				return err
			}
			doc.Components = append(doc.Components, &ir.PathItemComponent{Name: name, PathItem: pathItem})
		}
	}

	if c.Examples != nil {
		for name, e := range c.Examples.FromOldest() {
			doc.Components = append(doc.Components, &ir.ExampleComponent{Name: name, Example: buildExample(e)})
		}
	}

	return nil
}

// methodOps pairs each HTTP method with its operation in a fixed order so
// iteration over a path item is deterministic.
func methodOps(item *v3.PathItem) []struct {
	method ir.Method
	op     *v3.Operation
} {
	return []struct {
		method ir.Method
		op     *v3.Operation
	}{
		{ir.MethodGet, item.Get},
		{ir.MethodPost, item.Post},
		{ir.MethodPut, item.Put},
		{ir.MethodDelete, item.Delete},
		{ir.MethodPatch, item.Patch},
		{ir.MethodHead, item.Head},
		{ir.MethodOptions, item.Options},
		{ir.MethodTrace, item.Trace},
	}
}

func (b *builder) buildOperations(doc *ir.Document) error {
	if b.doc.Paths == nil || b.doc.Paths.PathItems == nil {
		return nil
	}
	for pathStr, item := range b.doc.Paths.PathItems.FromOldest() {
		ctx := buildContext{path: []string{"paths", pathStr}}
		for _, m := range methodOps(item) {
			if m.op == nil {
				continue
			}
			opCtx := ctx.push(strings.ToLower(string(m.method)))
			operation, err := b.buildOperation(m.method, pathStr, item, m.op, opCtx)
			if err != nil {
				return err
			}
			doc.Operations = append(doc.Operations, *operation)
		}
	}
	return nil
}

func (b *builder) buildOperation(method ir.Method, path string, item *v3.PathItem, op *v3.Operation, ctx buildContext) (*ir.Operation, error) {
	operation := &ir.Operation{
		ID:          op.OperationId,
		Method:      method,
		Path:        path,
		Summary:     op.Summary,
		Description: op.Description,
		Tags:        op.Tags,
		Deprecated:  derefBool(op.Deprecated),
	}

	params, err := b.buildOperationParameters(item, op, ctx)
	if err != nil {
		return nil, err
	}
	operation.Parameters = params
	operation.ByLocation = ir.GroupByLocation(params)

	if op.RequestBody != nil {
		body, err := b.buildRequestBody(op.RequestBody, ctx.push("requestBody"))
		if err != nil {
			return nil, err
		}
		operation.RequestBody = body
	}

	responses, err := b.buildResponses(op.Responses, ctx)
	if err != nil {
		return nil, err
	}
	operation.Responses = responses

	if op.Security != nil {
		operation.SecurityDeclared = true
	}
	for _, secReq := range op.Security {
		if secReq == nil || secReq.Requirements == nil || secReq.Requirements.Len() == 0 {
			// An empty requirement permits unauthenticated access; keep it
			// as a nameless entry so the writer can reproduce it.
			operation.Security = append(operation.Security, ir.SecurityRequirement{})
			continue
		}
		for name, scopes := range secReq.Requirements.FromOldest() {
			operation.Security = append(operation.Security, ir.SecurityRequirement{
				Name:   name,
				Scopes: scopes,
			})
		}
	}

	if op.Callbacks != nil {
		for name, cb := range op.Callbacks.FromOldest() {
			callback, err := b.buildCallback(cb, ctx.push("callbacks", name))
			if err != nil {
				return nil, err
			}
			operation.Callbacks = append(operation.Callbacks, ir.OperationCallback{
				Name:     name,
				Callback: *callback,
			})
		}
	}

	return operation, nil
}

// buildOperationParameters merges path-item level parameters into the
// operation's own list. An operation parameter overrides a path-item
// parameter with the same name and location; path-item parameters come
// first, in document order.
func (b *builder) buildOperationParameters(item *v3.PathItem, op *v3.Operation, ctx buildContext) ([]ir.Parameter, error) {
	overridden := func(p *v3.Parameter) bool {
		for _, own := range op.Parameters {
			if own.Name == p.Name && strings.EqualFold(own.In, p.In) {
				return true
			}
		}
		return false
	}

	var params []ir.Parameter
	if item != nil {
		for i, p := range item.Parameters {
			if overridden(p) {
				continue
			}
			param, err := b.buildParameter(p, ctx.push("parameters", strconv.Itoa(i)))
			if err != nil {
				return nil, err
			}
			params = append(params, *param)
		}
	}
	for i, p := range op.Parameters {
		param, err := b.buildParameter(p, ctx.push("parameters", strconv.Itoa(i)))
		if err != nil {
			return nil, err
		}
		params = append(params, *param)
	}
	return params, nil
}

func (b *builder) buildParameter(p *v3.Parameter, ctx buildContext) (*ir.Parameter, error) {
	param := &ir.Parameter{
		Name:        p.Name,
		In:          ir.ParameterLocation(strings.ToLower(p.In)),
		Description: p.Description,
		Required:    derefBool(p.Required),
		Deprecated:  p.Deprecated,
	}

	switch {
	case p.Schema != nil:
		schema, err := b.buildSchemaProxy(p.Schema, ctx.push("schema").withRequired(param.Required), false)
		if err != nil {
			return nil, err
		}
		param.Schema = schema
	case p.Content != nil && p.Content.Len() > 0:
		content, err := b.buildContent(p.Content, ctx, false)
		if err != nil {
			return nil, err
		}
		param.Content = content
	default:
		return nil, &irerrors.InvalidParameterError{
			Name: p.Name,
			In:   strings.ToLower(p.In),
			Path: ctx.loc(),
		}
	}

	return param, nil
}

func (b *builder) buildRequestBody(rb *v3.RequestBody, ctx buildContext) (*ir.RequestBody, error) {
	body := &ir.RequestBody{
		Description: rb.Description,
		Required:    derefBool(rb.Required),
	}
	content, err := b.buildContent(rb.Content, ctx.withRequired(body.Required), true)
	if err != nil {
		return nil, err
	}
	body.Content = content
	return body, nil
}

// buildContent lowers a media-type map in document order. Request-body and
// response positions require single-hop schema refs; parameter content does
// not.
func (b *builder) buildContent(content *orderedmap.Map[string, *v3.MediaType], ctx buildContext, singleHop bool) ([]ir.MediaTypeContent, error) {
	if content == nil {
		return nil, nil
	}
	var out []ir.MediaTypeContent
	for mediaType, mt := range content.FromOldest() {
		mtc := ir.MediaTypeContent{MediaType: mediaType}
		if mt.Schema != nil {
			schema, err := b.buildSchemaProxy(mt.Schema, ctx.push("content", mediaType, "schema"), singleHop)
			if err != nil {
				return nil, err
			}
			mtc.Schema = schema
		}
		mtc.Example = decodeNode(mt.Example)
		out = append(out, mtc)
	}
	return out, nil
}

// buildResponses lowers coded responses in document order and appends the
// default response, when present, last under the "default" status code.
func (b *builder) buildResponses(responses *v3.Responses, ctx buildContext) ([]ir.Response, error) {
	if responses == nil {
		return nil, nil
	}
	var out []ir.Response
	if responses.Codes != nil {
		for code, resp := range responses.Codes.FromOldest() {
			response, err := b.buildResponse(code, resp, ctx.push("responses", code))
			if err != nil {
				return nil, err
			}
			out = append(out, *response)
		}
	}
	if responses.Default != nil {
		response, err := b.buildResponse("default", responses.Default, ctx.push("responses", "default"))
		if err != nil {
			return nil, err
		}
		out = append(out, *response)
	}
	return out, nil
}

func (b *builder) buildResponse(code string, resp *v3.Response, ctx buildContext) (*ir.Response, error) {
	response := &ir.Response{
		StatusCode:  code,
		Description: resp.Description,
	}

	content, err := b.buildContent(resp.Content, ctx.withRequired(true), true)
	if err != nil {
		return nil, err
	}
	response.Content = content

	if resp.Headers != nil {
		for name, h := range resp.Headers.FromOldest() {
			header, err := b.buildHeader(name, h, ctx.push("headers", name))
			if err != nil {
				return nil, err
			}
			response.Headers = append(response.Headers, *header)
		}
	}

	return response, nil
}

func (b *builder) buildHeader(name string, h *v3.Header, ctx buildContext) (*ir.Header, error) {
	header := &ir.Header{
		Name:        name,
		Description: h.Description,
		Required:    h.Required,
		Deprecated:  h.Deprecated,
	}
	if h.Schema != nil {
		schema, err := b.buildSchemaProxy(h.Schema, ctx.push("schema").withRequired(h.Required), false)
		if err != nil {
			return nil, err
		}
		header.Schema = schema
	}
	return header, nil
}

func (b *builder) buildCallback(cb *v3.Callback, ctx buildContext) (*ir.Callback, error) {
	callback := &ir.Callback{}
	if cb.Expression == nil {
		return callback, nil
	}
	for expr, item := range cb.Expression.FromOldest() {
		exprCtx := ctx.push(expr)
		var ops []ir.CallbackOperation
		for _, m := range methodOps(item) {
			if m.op == nil {
				continue
			}
			opCtx := exprCtx.push(strings.ToLower(string(m.method)))
			cbOp := ir.CallbackOperation{Method: m.method}
			if m.op.RequestBody != nil {
				body, err := b.buildRequestBody(m.op.RequestBody, opCtx.push("requestBody"))
				if err != nil {
					return nil, err
				}
				cbOp.RequestBody = body
			}
			responses, err := b.buildResponses(m.op.Responses, opCtx)
			if err != nil {
				return nil, err
			}
			cbOp.Responses = responses
			ops = append(ops, cbOp)
		}
		callback.Expressions = append(callback.Expressions, ir.CallbackExpression{
			Expression: expr,
			Operations: ops,
		})
	}
	return callback, nil
}

func (b *builder) buildPathItem(item *v3.PathItem, ctx buildContext) (*ir.PathItem, error) {
	pathItem := &ir.PathItem{
		Summary:     item.Summary,
		Description: item.Description,
	}
	for _, m := range methodOps(item) {
		if m.op == nil {
			continue
		}
		opCtx := ctx.push(strings.ToLower(string(m.method)))
		operation, err := b.buildOperation(m.method, "", item, m.op, opCtx)
		if err != nil {
			return nil, err
		}
		pathItem.Operations = append(pathItem.Operations, *operation)
	}
	return pathItem, nil
}

func buildSecurityScheme(scheme *v3.SecurityScheme) *ir.SecurityScheme {
	ss := &ir.SecurityScheme{
		Type:         ir.SecuritySchemeType(scheme.Type),
		Description:  scheme.Description,
		In:           scheme.In,
		SchemeName:   scheme.Name,
		Scheme:       scheme.Scheme,
		BearerFormat: scheme.BearerFormat,
		OpenIDURL:    scheme.OpenIdConnectUrl,
	}
	if scheme.Flows != nil {
		ss.Flows = &ir.OAuthFlows{}
		if scheme.Flows.Implicit != nil {
			ss.Flows.Implicit = buildOAuthFlow(scheme.Flows.Implicit)
		}
		if scheme.Flows.Password != nil {
			ss.Flows.Password = buildOAuthFlow(scheme.Flows.Password)
		}
		if scheme.Flows.ClientCredentials != nil {
			ss.Flows.ClientCredentials = buildOAuthFlow(scheme.Flows.ClientCredentials)
		}
		if scheme.Flows.AuthorizationCode != nil {
			ss.Flows.AuthorizationCode = buildOAuthFlow(scheme.Flows.AuthorizationCode)
		}
	}
	return ss
}

func buildOAuthFlow(flow *v3.OAuthFlow) *ir.OAuthFlow {
	f := &ir.OAuthFlow{
		AuthorizationURL: flow.AuthorizationUrl,
		TokenURL:         flow.TokenUrl,
		RefreshURL:       flow.RefreshUrl,
	}
	if flow.Scopes != nil {
		f.Scopes = make(map[string]string)
		for scope, desc := range flow.Scopes.FromOldest() {
			f.Scopes[scope] = desc
		}
	}
	return f
}

func buildLink(l *v3.Link) *ir.Link {
	link := &ir.Link{
		OperationID:  l.OperationId,
		OperationRef: l.OperationRef,
		Description:  l.Description,
		RequestBody:  l.RequestBody,
	}
	if l.Parameters != nil {
		for name, value := range l.Parameters.FromOldest() {
			link.Parameters = append(link.Parameters, ir.LinkParameter{Name: name, Value: value})
		}
	}
	return link
}

func buildExample(e *base.Example) *ir.Example {
	return &ir.Example{
		Summary:       e.Summary,
		Description:   e.Description,
		Value:         decodeNode(e.Value),
		ExternalValue: e.ExternalValue,
	}
}
