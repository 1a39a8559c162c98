package builder

import (
	"fmt"
	"slices"

	"github.com/pb33f/libopenapi/datamodel/high/base"
	"go.yaml.in/yaml/v4"

	"github.com/kolah/specir/internal/ir"
	"github.com/kolah/specir/internal/irerrors"
)

// buildSchemaProxy lowers one schema position. Reference positions are
// validated through the resolver but emitted as bare ref nodes so the
// dependency graph records the edge and the writer re-emits the reference.
// singleHop marks positions whose refs must already be normalized to one
// hop (request-body and response content).
func (b *builder) buildSchemaProxy(proxy *base.SchemaProxy, ctx buildContext, singleHop bool) (*ir.Schema, error) {
	if proxy == nil {
		return nil, nil
	}

	if proxy.IsReference() {
		if ref := proxy.GetReference(); ref != "" {
			return b.buildRef(ref, ctx, singleHop)
		}
	}

	target := proxy.Schema()
	if target == nil {
		return nil, nil
	}

	// The parser may have dereferenced a component ref in place; restore
	// the reference so the edge survives lowering.
	if ref, ok := b.componentSchemas[target]; ok {
		return b.buildRef(ref, ctx, singleHop)
	}

	return b.buildInline(target, ctx)
}

// buildComponentSchema lowers a component's own schema entry. The reverse
// map must not apply at the root: a component's schema is the map's target,
// and lowering it through buildSchemaProxy would collapse every component
// into a reference to itself.
func (b *builder) buildComponentSchema(proxy *base.SchemaProxy, ctx buildContext) (*ir.Schema, error) {
	if proxy == nil {
		return nil, nil
	}
	if proxy.IsReference() {
		if ref := proxy.GetReference(); ref != "" {
			return b.buildRef(ref, ctx, false)
		}
	}
	return b.buildInline(proxy.Schema(), ctx)
}

func (b *builder) buildRef(ref string, ctx buildContext, singleHop bool) (*ir.Schema, error) {
	res, err := b.resolver.Resolve(ref, ir.KindSchema, ctx.loc())
	if err != nil {
		return nil, err
	}
	if singleHop && res.Hops > 0 {
		return nil, &irerrors.NestedReferenceError{
			Ref:    ref,
			Target: ir.SchemaPointer(res.Name),
			Path:   ctx.loc(),
		}
	}

	nullable := false
	if target := res.Schema.Schema(); target != nil {
		nullable = schemaNullable(target)
	}

	return &ir.Schema{
		Ref:      ref,
		Metadata: buildMetadata(ctx.required, nullable, nil),
	}, nil
}

func (b *builder) buildInline(s *base.Schema, ctx buildContext) (*ir.Schema, error) {
	if s == nil {
		return nil, nil
	}

	nullable := schemaNullable(s)
	out := &ir.Schema{
		Title:       s.Title,
		Description: s.Description,
		Format:      s.Format,
		Deprecated:  derefBool(s.Deprecated),
		Pattern:     s.Pattern,
		UniqueItems: derefBool(s.UniqueItems),
		Example:     decodeNode(s.Example),
		Examples:    decodeNodes(s.Examples),
		Enum:        decodeNodes(s.Enum),
		Const:       decodeNode(s.Const),
		Metadata:    buildMetadata(ctx.required, nullable, decodeNode(s.Default)),
	}

	for _, t := range s.Type {
		if t != "null" {
			out.Type = ir.SchemaType(t)
			break
		}
	}
	// A schema typed only "null" has no non-null kind to carry; keep it as
	// the null type rather than an untyped schema.
	if out.Type == "" && slices.Contains(s.Type, "null") {
		out.Type = ir.TypeNull
	}

	if s.Properties != nil {
		for name, propProxy := range s.Properties.FromOldest() {
			propCtx := ctx.push("properties", name).
				withRequired(slices.Contains(s.Required, name))
			prop, err := b.buildSchemaProxy(propProxy, propCtx, false)
			if err != nil {
				return nil, err
			}
			out.Properties = append(out.Properties, ir.Property{Name: name, Schema: prop})
		}
	}
	out.Required = s.Required

	if s.Items != nil && s.Items.IsA() {
		items, err := b.buildSchemaProxy(s.Items.A, ctx.push("items").withRequired(true), false)
		if err != nil {
			return nil, err
		}
		out.Items = items
	}
	for i, tupleProxy := range s.PrefixItems {
		item, err := b.buildSchemaProxy(tupleProxy, ctx.push(fmt.Sprintf("prefixItems[%d]", i)).withRequired(true), false)
		if err != nil {
			return nil, err
		}
		out.TupleItems = append(out.TupleItems, item)
	}

	if s.AdditionalProperties != nil && s.AdditionalProperties.IsA() {
		ap, err := b.buildSchemaProxy(s.AdditionalProperties.A, ctx.push("additionalProperties").withRequired(false), false)
		if err != nil {
			return nil, err
		}
		out.AdditionalProperties = ap
	}

	var err error
	if out.AllOf, err = b.buildSchemaList(s.AllOf, ctx, "allOf"); err != nil {
		return nil, err
	}
	if out.OneOf, err = b.buildSchemaList(s.OneOf, ctx, "oneOf"); err != nil {
		return nil, err
	}
	if out.AnyOf, err = b.buildSchemaList(s.AnyOf, ctx, "anyOf"); err != nil {
		return nil, err
	}
	if s.Not != nil {
		if out.Not, err = b.buildSchemaProxy(s.Not, ctx.push("not").withRequired(false), false); err != nil {
			return nil, err
		}
	}

	if s.Discriminator != nil {
		out.Discriminator = &ir.Discriminator{
			PropertyName: s.Discriminator.PropertyName,
		}
		if s.Discriminator.Mapping != nil {
			out.Discriminator.Mapping = make(map[string]string)
			for k, v := range s.Discriminator.Mapping.FromOldest() {
				out.Discriminator.Mapping[k] = v
			}
		}
	}

	out.Minimum = copyFloat(s.Minimum)
	out.Maximum = copyFloat(s.Maximum)
	out.MultipleOf = copyFloat(s.MultipleOf)
	out.MinLength = copyInt(s.MinLength)
	out.MaxLength = copyInt(s.MaxLength)
	out.MinItems = copyInt(s.MinItems)
	out.MaxItems = copyInt(s.MaxItems)
	out.MinProperties = copyInt(s.MinProperties)
	out.MaxProperties = copyInt(s.MaxProperties)

	if s.ExclusiveMinimum != nil && s.ExclusiveMinimum.IsA() {
		out.ExclusiveMinimum = s.ExclusiveMinimum.A
	}
	if s.ExclusiveMaximum != nil && s.ExclusiveMaximum.IsA() {
		out.ExclusiveMaximum = s.ExclusiveMaximum.A
	}

	if s.XML != nil {
		out.XML = &ir.XML{
			Name:      s.XML.Name,
			Namespace: s.XML.Namespace,
			Prefix:    s.XML.Prefix,
			Attribute: s.XML.Attribute,
			Wrapped:   s.XML.Wrapped,
		}
	}
	if s.ExternalDocs != nil {
		out.ExternalDocs = &ir.ExternalDocs{
			Description: s.ExternalDocs.Description,
			URL:         s.ExternalDocs.URL,
		}
	}

	return out, nil
}

func (b *builder) buildSchemaList(proxies []*base.SchemaProxy, ctx buildContext, keyword string) ([]*ir.Schema, error) {
	var out []*ir.Schema
	for i, proxy := range proxies {
		branch, err := b.buildSchemaProxy(proxy, ctx.push(fmt.Sprintf("%s[%d]", keyword, i)).withRequired(true), false)
		if err != nil {
			return nil, err
		}
		out = append(out, branch)
	}
	return out, nil
}

func buildMetadata(required, nullable bool, def any) ir.Metadata {
	return ir.Metadata{
		Required: required,
		Nullable: nullable,
		Default:  def,
		Presence: ir.Presence(required, nullable),
	}
}

// schemaNullable covers both the 3.0 nullable flag and the 3.1 "null" type
// list entry.
func schemaNullable(s *base.Schema) bool {
	if derefBool(s.Nullable) {
		return true
	}
	return slices.Contains(s.Type, "null")
}

func decodeNode(n *yaml.Node) any {
	if n == nil {
		return nil
	}
	var v any
	if err := n.Decode(&v); err != nil {
		return nil
	}
	return v
}

func decodeNodes(nodes []*yaml.Node) []any {
	if len(nodes) == 0 {
		return nil
	}
	out := make([]any, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, decodeNode(n))
	}
	return out
}

func derefBool(b *bool) bool {
	return b != nil && *b
}

func copyFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}

func copyInt(v *int64) *int64 {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}
