// Package builder lowers a parsed OpenAPI document into the IR. The build is
// a single synchronous pass over an immutable input; the resulting document
// is immutable once returned. All failures are fatal and carry a
// JSON-pointer-like location path.
package builder

import (
	"slices"
	"strings"

	"github.com/pb33f/libopenapi/datamodel/high/base"
	v3 "github.com/pb33f/libopenapi/datamodel/high/v3"

	"github.com/kolah/specir/internal/depgraph"
	"github.com/kolah/specir/internal/ir"
	"github.com/kolah/specir/internal/resolve"
)

// Options carries the additive build inputs.
type Options struct {
	// Bundles are externally-bundled component sets keyed by an opaque
	// hash, produced by a multi-file loader. Optional.
	Bundles map[string]*v3.Components

	// ExcludeSchemas names schema components to leave out of the IR.
	ExcludeSchemas []string
}

type builder struct {
	doc      *v3.Document
	resolver *resolve.Resolver

	// componentSchemas maps resolved schema pointers back to their
	// component ref, so positions the parser already dereferenced are
	// still lowered as references.
	componentSchemas map[*base.Schema]string

	excluded map[string]bool
}

// buildContext threads the location path and the position's required flag
// through every recursive call. It is passed by value; a fresh context is
// created per Build invocation, so concurrent builds never interact.
type buildContext struct {
	path     []string
	required bool
}

func (c buildContext) push(segments ...string) buildContext {
	p := make([]string, len(c.path), len(c.path)+len(segments))
	copy(p, c.path)
	c.path = append(p, segments...)
	return c
}

func (c buildContext) withRequired(required bool) buildContext {
	c.required = required
	return c
}

func (c buildContext) loc() string {
	return strings.Join(c.path, ".")
}

// Build lowers model into a complete IR document.
func Build(model *v3.Document, opts Options) (*ir.Document, error) {
	b := &builder{
		doc:              model,
		resolver:         resolve.New(model, opts.Bundles),
		componentSchemas: make(map[*base.Schema]string),
		excluded:         make(map[string]bool, len(opts.ExcludeSchemas)),
	}
	for _, name := range opts.ExcludeSchemas {
		b.excluded[name] = true
	}

	if model.Components != nil && model.Components.Schemas != nil {
		for name, proxy := range model.Components.Schemas.FromOldest() {
			if proxy.IsReference() {
				continue
			}
			b.componentSchemas[proxy.Schema()] = ir.SchemaPointer(name)
		}
	}

	doc := &ir.Document{
		FormatVersion:  ir.FormatVersion,
		OpenAPIVersion: model.Version,
		Info:           buildInfo(model.Info),
		Servers:        buildServers(model.Servers),
		Tags:           buildTags(model.Tags),
	}

	if err := b.buildComponents(doc); err != nil {
		return nil, err
	}
	if err := b.buildOperations(doc); err != nil {
		return nil, err
	}

	annotateDependencies(doc)
	doc.Enums = buildEnumCatalog(doc)

	return doc, nil
}

func buildInfo(info *base.Info) ir.Info {
	if info == nil {
		return ir.Info{}
	}
	out := ir.Info{
		Title:          info.Title,
		Summary:        info.Summary,
		Description:    info.Description,
		TermsOfService: info.TermsOfService,
		Version:        info.Version,
	}
	if info.Contact != nil {
		out.Contact = &ir.Contact{
			Name:  info.Contact.Name,
			URL:   info.Contact.URL,
			Email: info.Contact.Email,
		}
	}
	if info.License != nil {
		out.License = &ir.License{
			Name:       info.License.Name,
			Identifier: info.License.Identifier,
			URL:        info.License.URL,
		}
	}
	return out
}

func buildServers(servers []*v3.Server) []ir.Server {
	var out []ir.Server
	for _, s := range servers {
		out = append(out, ir.Server{
			URL:         s.URL,
			Description: s.Description,
		})
	}
	return out
}

func buildTags(tags []*base.Tag) []ir.Tag {
	var out []ir.Tag
	for _, t := range tags {
		out = append(out, ir.Tag{
			Name:        t.Name,
			Description: t.Description,
		})
	}
	return out
}

// annotateDependencies builds the dependency graph over the schema
// components and copies the per-node summary into each node's metadata.
func annotateDependencies(doc *ir.Document) {
	schemas := doc.SchemaComponents()
	graph := depgraph.Build(schemas)
	doc.Graph = graph

	cyclesByMember := make(map[string][]string)
	for _, cycle := range graph.CircularReferences {
		for _, member := range cycle {
			for _, other := range cycle {
				if !slices.Contains(cyclesByMember[member], other) {
					cyclesByMember[member] = append(cyclesByMember[member], other)
				}
			}
		}
	}

	for _, sc := range schemas {
		doc.SchemaNames = append(doc.SchemaNames, sc.Name)
		node := graph.Nodes[sc.Name]
		if node == nil {
			continue
		}
		sc.Schema.Metadata.Dependencies = ir.DependencyInfo{
			DependsOn:    node.Dependencies,
			DependedOnBy: node.Dependents,
			Depth:        node.Depth,
		}
		if node.IsCircular {
			sc.Schema.Metadata.CircularWith = cyclesByMember[sc.Name]
		}
	}
}
