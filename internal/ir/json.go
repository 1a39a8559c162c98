package ir

import (
	"fmt"

	"github.com/segmentio/encoding/json"
)

// documentJSON is the serialized shape of Document. The component union is
// flattened into tagged envelopes so the format stays plain JSON.
type documentJSON struct {
	FormatVersion      string           `json:"formatVersion"`
	OpenAPIVersion     string           `json:"openapiVersion"`
	Info               Info             `json:"info"`
	Servers            []Server         `json:"servers,omitempty"`
	Tags               []Tag            `json:"tags,omitempty"`
	Components         []componentJSON  `json:"components,omitempty"`
	Operations         []Operation      `json:"operations,omitempty"`
	Graph              *DependencyGraph `json:"graph,omitempty"`
	SchemaNames        []string         `json:"schemaNames,omitempty"`
	Enums              []EnumEntry      `json:"enums,omitempty"`
}

type componentJSON struct {
	Kind           Kind            `json:"kind"`
	Name           string          `json:"name"`
	Schema         *Schema         `json:"schema,omitempty"`
	Parameter      *Parameter      `json:"parameter,omitempty"`
	RequestBody    *RequestBody    `json:"requestBody,omitempty"`
	Response       *Response       `json:"response,omitempty"`
	SecurityScheme *SecurityScheme `json:"securityScheme,omitempty"`
	Header         *Header         `json:"header,omitempty"`
	Link           *Link           `json:"link,omitempty"`
	Callback       *Callback       `json:"callback,omitempty"`
	PathItem       *PathItem       `json:"pathItem,omitempty"`
	Example        *Example        `json:"example,omitempty"`
}

// MarshalDocument serializes a Document to JSON.
func MarshalDocument(d *Document) ([]byte, error) {
	dj, err := toJSON(d)
	if err != nil {
		return nil, err
	}
	return json.Marshal(dj)
}

// MarshalDocumentIndent serializes a Document to indented JSON, for fixture
// files meant to be diffed.
func MarshalDocumentIndent(d *Document) ([]byte, error) {
	dj, err := toJSON(d)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(dj, "", "  ")
}

// UnmarshalDocument deserializes a Document from JSON.
func UnmarshalDocument(data []byte) (*Document, error) {
	var dj documentJSON
	if err := json.Unmarshal(data, &dj); err != nil {
		return nil, fmt.Errorf("decoding IR document: %w", err)
	}
	return fromJSON(&dj)
}

func toJSON(d *Document) (*documentJSON, error) {
	dj := &documentJSON{
		FormatVersion:  d.FormatVersion,
		OpenAPIVersion: d.OpenAPIVersion,
		Info:           d.Info,
		Servers:        d.Servers,
		Tags:           d.Tags,
		Operations:     d.Operations,
		Graph:          d.Graph,
		SchemaNames:    d.SchemaNames,
		Enums:          d.Enums,
	}
	for _, c := range d.Components {
		env := componentJSON{Kind: c.ComponentKind(), Name: c.ComponentName()}
		switch c := c.(type) {
		case *SchemaComponent:
			env.Schema = c.Schema
		case *ParameterComponent:
			env.Parameter = c.Parameter
		case *RequestBodyComponent:
			env.RequestBody = c.RequestBody
		case *ResponseComponent:
			env.Response = c.Response
		case *SecuritySchemeComponent:
			env.SecurityScheme = c.Scheme
		case *HeaderComponent:
			env.Header = c.Header
		case *LinkComponent:
			env.Link = c.Link
		case *CallbackComponent:
			env.Callback = c.Callback
		case *PathItemComponent:
			env.PathItem = c.PathItem
		case *ExampleComponent:
			env.Example = c.Example
		default:
			return nil, fmt.Errorf("unknown component type %T", c)
		}
		dj.Components = append(dj.Components, env)
	}
	return dj, nil
}

func fromJSON(dj *documentJSON) (*Document, error) {
	d := &Document{
		FormatVersion:  dj.FormatVersion,
		OpenAPIVersion: dj.OpenAPIVersion,
		Info:           dj.Info,
		Servers:        dj.Servers,
		Tags:           dj.Tags,
		Operations:     dj.Operations,
		Graph:          dj.Graph,
		SchemaNames:    dj.SchemaNames,
		Enums:          dj.Enums,
	}
	for _, env := range dj.Components {
		var c Component
		switch env.Kind {
		case KindSchema:
			c = &SchemaComponent{Name: env.Name, Schema: env.Schema}
		case KindParameter:
			c = &ParameterComponent{Name: env.Name, Parameter: env.Parameter}
		case KindRequestBody:
			c = &RequestBodyComponent{Name: env.Name, RequestBody: env.RequestBody}
		case KindResponse:
			c = &ResponseComponent{Name: env.Name, Response: env.Response}
		case KindSecurityScheme:
			c = &SecuritySchemeComponent{Name: env.Name, Scheme: env.SecurityScheme}
		case KindHeader:
			c = &HeaderComponent{Name: env.Name, Header: env.Header}
		case KindLink:
			c = &LinkComponent{Name: env.Name, Link: env.Link}
		case KindCallback:
			c = &CallbackComponent{Name: env.Name, Callback: env.Callback}
		case KindPathItem:
			c = &PathItemComponent{Name: env.Name, PathItem: env.PathItem}
		case KindExample:
			c = &ExampleComponent{Name: env.Name, Example: env.Example}
		default:
			return nil, fmt.Errorf("unknown component kind %q", env.Kind)
		}
		d.Components = append(d.Components, c)
	}
	return d, nil
}
