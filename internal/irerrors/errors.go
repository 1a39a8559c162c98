// Package irerrors provides the structured error taxonomy raised while
// lowering an OpenAPI document into the IR. All of these are fatal: they
// propagate to the top-level build call and abort it, there is no partial
// or degraded IR. Each error carries a JSON-pointer-like location path.
//
// Sentinels allow quick errors.Is checks; the typed errors carry the
// location detail for errors.As.
package irerrors

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidReference indicates a syntactically malformed $ref pointer.
	ErrInvalidReference = errors.New("invalid reference")

	// ErrWrongReferenceKind indicates a pointer resolving to a component
	// kind incompatible with the position it appears in.
	ErrWrongReferenceKind = errors.New("wrong reference kind")

	// ErrUnresolvedReference indicates a well-formed pointer with no target.
	ErrUnresolvedReference = errors.New("unresolved reference")

	// ErrCircularResolution indicates reference resolution revisited a
	// pointer already on its own resolution path. This guards resolution
	// only; schema graph cycles are legal and reported by the dependency
	// graph instead.
	ErrCircularResolution = errors.New("circular reference resolution")

	// ErrNestedReference indicates a reference resolved to another
	// reference where single-hop resolution was required.
	ErrNestedReference = errors.New("nested reference not allowed")

	// ErrInvalidParameter indicates a parameter carrying neither a schema
	// nor content.
	ErrInvalidParameter = errors.New("invalid parameter")
)

func at(path string) string {
	if path == "" {
		return ""
	}
	return " at " + path
}

// InvalidReferenceError reports a malformed $ref pointer.
type InvalidReferenceError struct {
	Ref    string
	Path   string
	Reason string
}

func (e *InvalidReferenceError) Error() string {
	msg := fmt.Sprintf("invalid reference %q%s", e.Ref, at(e.Path))
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

func (e *InvalidReferenceError) Is(target error) bool {
	return target == ErrInvalidReference
}

// WrongReferenceKindError reports a pointer addressing the wrong component
// kind for its position.
type WrongReferenceKindError struct {
	Ref      string
	Path     string
	Expected string
	Actual   string
}

func (e *WrongReferenceKindError) Error() string {
	return fmt.Sprintf("reference %q%s resolves to %s, expected %s",
		e.Ref, at(e.Path), e.Actual, e.Expected)
}

func (e *WrongReferenceKindError) Is(target error) bool {
	return target == ErrWrongReferenceKind
}

// UnresolvedReferenceError reports a pointer whose target is absent from the
// standard components location and from every bundle side-map.
type UnresolvedReferenceError struct {
	Ref  string
	Path string
}

func (e *UnresolvedReferenceError) Error() string {
	return fmt.Sprintf("unresolved reference %q%s", e.Ref, at(e.Path))
}

func (e *UnresolvedReferenceError) Is(target error) bool {
	return target == ErrUnresolvedReference
}

// CircularResolutionError reports a reference chain that revisits itself
// before reaching a concrete target.
type CircularResolutionError struct {
	Ref   string
	Path  string
	Chain []string
}

func (e *CircularResolutionError) Error() string {
	msg := fmt.Sprintf("circular reference resolution for %q%s", e.Ref, at(e.Path))
	if len(e.Chain) > 0 {
		msg += ": " + strings.Join(e.Chain, " -> ")
	}
	return msg
}

func (e *CircularResolutionError) Is(target error) bool {
	return target == ErrCircularResolution
}

// NestedReferenceError reports a reference that resolved to another
// reference after one hop where the position requires pre-normalized,
// single-hop refs.
type NestedReferenceError struct {
	Ref    string
	Target string
	Path   string
}

func (e *NestedReferenceError) Error() string {
	return fmt.Sprintf("reference %q%s resolves to another reference %q; single-hop resolution required",
		e.Ref, at(e.Path), e.Target)
}

func (e *NestedReferenceError) Is(target error) bool {
	return target == ErrNestedReference
}

// InvalidParameterError reports a parameter with neither schema nor content.
type InvalidParameterError struct {
	Name string
	In   string
	Path string
}

func (e *InvalidParameterError) Error() string {
	return fmt.Sprintf("parameter %q (in %s)%s has neither schema nor content",
		e.Name, e.In, at(e.Path))
}

func (e *InvalidParameterError) Is(target error) bool {
	return target == ErrInvalidParameter
}
