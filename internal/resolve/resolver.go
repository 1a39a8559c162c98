// Package resolve maps $ref pointers to concrete components of an OpenAPI
// document. Pointers address the standard components.* location first, then
// any externally-bundled component sets (side-maps keyed by an opaque hash,
// populated by a multi-file loader).
//
// Every failure here is fatal by design: a wrong schema silently substituted
// elsewhere in the pipeline is worse than an explicit failure.
package resolve

import (
	"sort"
	"strings"

	"github.com/pb33f/libopenapi/datamodel/high/base"
	v3 "github.com/pb33f/libopenapi/datamodel/high/v3"
	"github.com/pb33f/libopenapi/orderedmap"

	"github.com/kolah/specir/internal/ir"
	"github.com/kolah/specir/internal/irerrors"
)

// segmentKinds maps the components.* section name to the component kind.
var segmentKinds = map[string]ir.Kind{
	"schemas":         ir.KindSchema,
	"parameters":      ir.KindParameter,
	"requestBodies":   ir.KindRequestBody,
	"responses":       ir.KindResponse,
	"securitySchemes": ir.KindSecurityScheme,
	"headers":         ir.KindHeader,
	"links":           ir.KindLink,
	"callbacks":       ir.KindCallback,
	"pathItems":       ir.KindPathItem,
	"examples":        ir.KindExample,
}

// Resolved is the tagged result of a resolution: exactly one of the typed
// fields matching Kind is set.
type Resolved struct {
	Kind ir.Kind
	Name string

	// Hops counts how many intermediate references were followed before a
	// concrete target was reached. Call sites requiring pre-normalized,
	// single-hop refs reject Hops > 0 targets.
	Hops int

	Schema         *base.SchemaProxy
	Parameter      *v3.Parameter
	RequestBody    *v3.RequestBody
	Response       *v3.Response
	SecurityScheme *v3.SecurityScheme
	Header         *v3.Header
	Link           *v3.Link
	Callback       *v3.Callback
	PathItem       *v3.PathItem
	Example        *base.Example
}

// Resolver resolves component pointers against one document plus optional
// bundle side-maps. It holds no per-resolution state; the seen-pointer guard
// is scoped to each Resolve call.
type Resolver struct {
	components  *v3.Components
	bundles     map[string]*v3.Components
	bundleOrder []string
}

// New creates a resolver for doc. bundles may be nil.
func New(doc *v3.Document, bundles map[string]*v3.Components) *Resolver {
	r := &Resolver{bundles: bundles}
	if doc != nil {
		r.components = doc.Components
	}
	for key := range bundles {
		r.bundleOrder = append(r.bundleOrder, key)
	}
	sort.Strings(r.bundleOrder)
	return r
}

// Resolve follows ref until it reaches a concrete component of the expected
// kind. Schema targets that are themselves references are followed hop by
// hop; revisiting a pointer already on the resolution path is fatal. The at
// argument is the caller's location path, used only in error messages.
func (r *Resolver) Resolve(ref string, expect ir.Kind, at string) (*Resolved, error) {
	seen := make(map[string]bool)
	var chain []string
	cur := ref
	hops := 0

	for {
		kind, name, err := parsePointer(cur, at)
		if err != nil {
			return nil, err
		}
		if kind != expect {
			return nil, &irerrors.WrongReferenceKindError{
				Ref:      cur,
				Path:     at,
				Expected: string(expect),
				Actual:   string(kind),
			}
		}
		if seen[cur] {
			return nil, &irerrors.CircularResolutionError{Ref: ref, Path: at, Chain: append(chain, cur)}
		}
		seen[cur] = true
		chain = append(chain, cur)

		res := r.lookup(kind, name)
		if res == nil {
			return nil, &irerrors.UnresolvedReferenceError{Ref: cur, Path: at}
		}

		// A schema component that is itself a bare reference is another
		// hop on the resolution path.
		if kind == ir.KindSchema && res.Schema != nil && res.Schema.IsReference() {
			cur = res.Schema.GetReference()
			hops++
			continue
		}

		res.Name = name
		res.Hops = hops
		return res, nil
	}
}

// parsePointer validates the "#/components/<kind>/<name>" shape.
func parsePointer(ref, at string) (ir.Kind, string, error) {
	invalid := func(reason string) error {
		return &irerrors.InvalidReferenceError{Ref: ref, Path: at, Reason: reason}
	}
	rest, ok := strings.CutPrefix(ref, "#/components/")
	if !ok {
		return "", "", invalid("pointer must start with #/components/")
	}
	parts := strings.Split(rest, "/")
	if len(parts) != 2 {
		return "", "", invalid("pointer must have the form #/components/<kind>/<name>")
	}
	segment, name := parts[0], parts[1]
	if segment == "" {
		return "", "", invalid("empty component kind segment")
	}
	if name == "" {
		return "", "", invalid("empty component name segment")
	}
	kind, known := segmentKinds[segment]
	if !known {
		return "", "", invalid("unknown component kind " + segment)
	}
	return kind, name, nil
}

// lookup searches the standard location first, then every bundle in stable
// key order. Returns nil when the target is absent everywhere.
func (r *Resolver) lookup(kind ir.Kind, name string) *Resolved {
	if res := lookupIn(r.components, kind, name); res != nil {
		return res
	}
	for _, key := range r.bundleOrder {
		if res := lookupIn(r.bundles[key], kind, name); res != nil {
			return res
		}
	}
	return nil
}

func lookupIn(c *v3.Components, kind ir.Kind, name string) *Resolved {
	if c == nil {
		return nil
	}
	switch kind {
	case ir.KindSchema:
		if v, ok := mapGet(c.Schemas, name); ok {
			return &Resolved{Kind: kind, Schema: v}
		}
	case ir.KindParameter:
		if v, ok := mapGet(c.Parameters, name); ok {
			return &Resolved{Kind: kind, Parameter: v}
		}
	case ir.KindRequestBody:
		if v, ok := mapGet(c.RequestBodies, name); ok {
			return &Resolved{Kind: kind, RequestBody: v}
		}
	case ir.KindResponse:
		if v, ok := mapGet(c.Responses, name); ok {
			return &Resolved{Kind: kind, Response: v}
		}
	case ir.KindSecurityScheme:
		if v, ok := mapGet(c.SecuritySchemes, name); ok {
			return &Resolved{Kind: kind, SecurityScheme: v}
		}
	case ir.KindHeader:
		if v, ok := mapGet(c.Headers, name); ok {
			return &Resolved{Kind: kind, Header: v}
		}
	case ir.KindLink:
		if v, ok := mapGet(c.Links, name); ok {
			return &Resolved{Kind: kind, Link: v}
		}
	case ir.KindCallback:
		if v, ok := mapGet(c.Callbacks, name); ok {
			return &Resolved{Kind: kind, Callback: v}
		}
	case ir.KindPathItem:
		if v, ok := mapGet(c.PathItems, name); ok {
			return &Resolved{Kind: kind, PathItem: v}
		}
	case ir.KindExample:
		if v, ok := mapGet(c.Examples, name); ok {
			return &Resolved{Kind: kind, Example: v}
		}
	}
	return nil
}

func mapGet[V any](m *orderedmap.Map[string, V], key string) (V, bool) {
	if m == nil {
		var zero V
		return zero, false
	}
	return m.Get(key)
}
