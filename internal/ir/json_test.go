package ir

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func sampleDocument() *Document {
	return &Document{
		FormatVersion:  FormatVersion,
		OpenAPIVersion: "3.1.0",
		Info:           Info{Title: "Pet Store", Version: "1.0.0"},
		Servers:        []Server{{URL: "https://api.example.com"}},
		Components: []Component{
			&SchemaComponent{
				Name: "Pet",
				Schema: &Schema{
					Name: "Pet",
					Type: TypeObject,
					Properties: []Property{
						{Name: "id", Schema: &Schema{Type: TypeInteger, Metadata: Metadata{Required: true, Presence: PresenceRequired}}},
						{Name: "tag", Schema: &Schema{Type: TypeString, Metadata: Metadata{Presence: PresenceOptional}}},
					},
					Required: []string{"id"},
					Metadata: Metadata{Required: true, Presence: PresenceRequired},
				},
			},
			&ParameterComponent{
				Name: "limitParam",
				Parameter: &Parameter{
					Name:   "limit",
					In:     LocationQuery,
					Schema: &Schema{Type: TypeInteger},
				},
			},
			&SecuritySchemeComponent{
				Name: "bearerAuth",
				Scheme: &SecurityScheme{
					Type:   SecurityTypeHTTP,
					Scheme: "bearer",
				},
			},
		},
		Operations: []Operation{
			{
				ID:     "listPets",
				Method: MethodGet,
				Path:   "/pets",
				Parameters: []Parameter{
					{Name: "limit", In: LocationQuery, Schema: &Schema{Type: TypeInteger}},
				},
				ByLocation: ParameterGroups{
					Query: []Parameter{
						{Name: "limit", In: LocationQuery, Schema: &Schema{Type: TypeInteger}},
					},
				},
				Responses: []Response{
					{StatusCode: "200", Description: "ok"},
					{StatusCode: "default", Description: "error"},
				},
			},
		},
		Graph: &DependencyGraph{
			Nodes: map[string]*DependencyNode{
				"Pet": {Depth: 0},
			},
			TopologicalOrder: []string{"Pet"},
		},
		SchemaNames: []string{"Pet"},
	}
}

func TestMarshalUnmarshalDocument(t *testing.T) {
	doc := sampleDocument()

	data, err := MarshalDocument(doc)
	require.NoError(t, err)

	decoded, err := UnmarshalDocument(data)
	require.NoError(t, err)
	require.Equal(t, doc, decoded)
}

func TestMarshalDocumentIndentRoundTrip(t *testing.T) {
	doc := sampleDocument()

	data, err := MarshalDocumentIndent(doc)
	require.NoError(t, err)

	decoded, err := UnmarshalDocument(data)
	require.NoError(t, err)
	require.Equal(t, doc, decoded)
}

func TestComponentEnvelopeKinds(t *testing.T) {
	doc := sampleDocument()

	data, err := MarshalDocument(doc)
	require.NoError(t, err)

	decoded, err := UnmarshalDocument(data)
	require.NoError(t, err)
	require.Len(t, decoded.Components, 3)
	require.Equal(t, KindSchema, decoded.Components[0].ComponentKind())
	require.Equal(t, KindParameter, decoded.Components[1].ComponentKind())
	require.Equal(t, KindSecurityScheme, decoded.Components[2].ComponentKind())
	require.Equal(t, "Pet", decoded.Components[0].ComponentName())
}

func TestUnmarshalUnknownKind(t *testing.T) {
	data := []byte(`{"formatVersion":"1.0","openapiVersion":"3.1.0","info":{"title":"t","version":"1"},"components":[{"kind":"bogus","name":"x"}]}`)
	_, err := UnmarshalDocument(data)
	require.Error(t, err)
	require.Contains(t, err.Error(), "unknown component kind")
}

func TestUnmarshalInvalidJSON(t *testing.T) {
	_, err := UnmarshalDocument([]byte("{not json"))
	require.Error(t, err)
}
