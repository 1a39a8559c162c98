package irerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSentinelMatching(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
	}{
		{
			name:     "invalid reference",
			err:      &InvalidReferenceError{Ref: "#/bad", Path: "components.schemas.Pet"},
			sentinel: ErrInvalidReference,
		},
		{
			name:     "wrong reference kind",
			err:      &WrongReferenceKindError{Ref: "#/components/responses/NotFound", Expected: "schema", Actual: "response"},
			sentinel: ErrWrongReferenceKind,
		},
		{
			name:     "unresolved reference",
			err:      &UnresolvedReferenceError{Ref: "#/components/schemas/Missing"},
			sentinel: ErrUnresolvedReference,
		},
		{
			name:     "circular resolution",
			err:      &CircularResolutionError{Ref: "#/components/schemas/A", Chain: []string{"#/components/schemas/A"}},
			sentinel: ErrCircularResolution,
		},
		{
			name:     "nested reference",
			err:      &NestedReferenceError{Ref: "#/components/schemas/Alias", Target: "#/components/schemas/Real"},
			sentinel: ErrNestedReference,
		},
		{
			name:     "invalid parameter",
			err:      &InvalidParameterError{Name: "limit", In: "query"},
			sentinel: ErrInvalidParameter,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.ErrorIs(t, tt.err, tt.sentinel)
			require.ErrorIs(t, fmt.Errorf("building IR: %w", tt.err), tt.sentinel)
		})
	}
}

func TestSentinelsDoNotCrossMatch(t *testing.T) {
	err := &UnresolvedReferenceError{Ref: "#/components/schemas/Missing"}
	require.NotErrorIs(t, err, ErrInvalidReference)
	require.NotErrorIs(t, err, ErrWrongReferenceKind)
}

func TestErrorsAsExtractsDetail(t *testing.T) {
	wrapped := fmt.Errorf("building IR: %w", &WrongReferenceKindError{
		Ref:      "#/components/responses/NotFound",
		Path:     "paths./pets.get.parameters.0.schema",
		Expected: "schema",
		Actual:   "response",
	})

	var kindErr *WrongReferenceKindError
	require.True(t, errors.As(wrapped, &kindErr))
	require.Equal(t, "schema", kindErr.Expected)
	require.Equal(t, "response", kindErr.Actual)
}

func TestErrorMessagesCarryLocation(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		contains []string
	}{
		{
			name:     "invalid with reason",
			err:      &InvalidReferenceError{Ref: "#/nope", Path: "components.schemas.A", Reason: "pointer must start with #/components/"},
			contains: []string{"#/nope", "components.schemas.A", "pointer must start"},
		},
		{
			name:     "unresolved",
			err:      &UnresolvedReferenceError{Ref: "#/components/schemas/Gone", Path: "paths./x.get"},
			contains: []string{"#/components/schemas/Gone", "paths./x.get"},
		},
		{
			name:     "circular with chain",
			err:      &CircularResolutionError{Ref: "#/components/schemas/A", Chain: []string{"#/components/schemas/A", "#/components/schemas/B"}},
			contains: []string{"circular", "->"},
		},
		{
			name:     "nested",
			err:      &NestedReferenceError{Ref: "#/components/schemas/Alias", Target: "#/components/schemas/Real", Path: "paths./x.get.requestBody"},
			contains: []string{"single-hop", "#/components/schemas/Real"},
		},
		{
			name:     "invalid parameter",
			err:      &InvalidParameterError{Name: "limit", In: "query", Path: "paths./x.get.parameters.0"},
			contains: []string{"limit", "query", "neither schema nor content"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, s := range tt.contains {
				require.Contains(t, tt.err.Error(), s)
			}
		})
	}
}
