package builder

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kolah/specir/internal/ir"
	"github.com/kolah/specir/internal/irerrors"
	"github.com/kolah/specir/internal/loader"
)

func buildFromYAML(t *testing.T, spec string, opts Options) (*ir.Document, error) {
	t.Helper()
	result, err := loader.LoadBytes([]byte(spec))
	require.NoError(t, err)
	return Build(&result.Document.Model, opts)
}

func mustBuild(t *testing.T, spec string) *ir.Document {
	t.Helper()
	doc, err := buildFromYAML(t, spec, Options{})
	require.NoError(t, err)
	return doc
}

const petStoreSpec = `
openapi: 3.1.0
info:
  title: Pet Store
  version: 1.0.0
servers:
  - url: https://api.example.com
tags:
  - name: pets
    description: Pet operations
paths:
  /pets:
    parameters:
      - name: traceId
        in: header
        schema:
          type: string
    get:
      operationId: listPets
      tags: [pets]
      parameters:
        - name: limit
          in: query
          schema:
            type: integer
      responses:
        "200":
          description: A list of pets
          content:
            application/json:
              schema:
                type: array
                items:
                  $ref: '#/components/schemas/Pet'
        default:
          description: Unexpected error
          content:
            application/json:
              schema:
                $ref: '#/components/schemas/Error'
    post:
      operationId: createPet
      security:
        - bearerAuth: []
      requestBody:
        required: true
        content:
          application/json:
            schema:
              $ref: '#/components/schemas/Pet'
      responses:
        "201":
          description: Created
components:
  schemas:
    Pet:
      type: object
      required: [id, name]
      properties:
        id:
          type: integer
          format: int64
        name:
          type: string
        tag:
          type: [string, "null"]
        status:
          type: string
          enum: [available, pending, sold]
    Error:
      type: object
      required: [code, message]
      properties:
        code:
          type: integer
        message:
          type: string
  securitySchemes:
    bearerAuth:
      type: http
      scheme: bearer
      bearerFormat: JWT
`

func TestBuildDocumentBasics(t *testing.T) {
	doc := mustBuild(t, petStoreSpec)

	require.Equal(t, ir.FormatVersion, doc.FormatVersion)
	require.Equal(t, "3.1.0", doc.OpenAPIVersion)
	require.Equal(t, "Pet Store", doc.Info.Title)
	require.Len(t, doc.Servers, 1)
	require.Len(t, doc.Tags, 1)
	require.Equal(t, []string{"Pet", "Error"}, doc.SchemaNames)
	require.Len(t, doc.Operations, 2)
}

func TestRequiredOptionalFidelity(t *testing.T) {
	doc := mustBuild(t, petStoreSpec)

	pet := doc.SchemaComponents()[0]
	require.Equal(t, "Pet", pet.Name)
	require.Equal(t, []string{"id", "name"}, pet.Schema.Required)

	byName := make(map[string]*ir.Schema)
	for _, p := range pet.Schema.Properties {
		byName[p.Name] = p.Schema
	}

	require.True(t, byName["id"].Metadata.Required)
	require.Equal(t, ir.PresenceRequired, byName["id"].Metadata.Presence)
	require.True(t, byName["name"].Metadata.Required)
	require.False(t, byName["tag"].Metadata.Required)
	require.True(t, byName["tag"].Metadata.Nullable)
	require.Equal(t, ir.PresenceOptionalNullable, byName["tag"].Metadata.Presence)
	require.False(t, byName["status"].Metadata.Required)
	require.Equal(t, ir.PresenceOptional, byName["status"].Metadata.Presence)
}

func TestOperationsAndParameterMerging(t *testing.T) {
	doc := mustBuild(t, petStoreSpec)

	get := doc.Operations[0]
	require.Equal(t, "listPets", get.ID)
	require.Equal(t, ir.MethodGet, get.Method)
	require.Equal(t, "/pets", get.Path)

	// The path-level traceId header is merged ahead of the operation's own
	// query parameter.
	require.Len(t, get.Parameters, 2)
	require.Equal(t, "traceId", get.Parameters[0].Name)
	require.Equal(t, ir.LocationHeader, get.Parameters[0].In)
	require.Equal(t, "limit", get.Parameters[1].Name)

	require.Len(t, get.ByLocation.Header, 1)
	require.Len(t, get.ByLocation.Query, 1)
	require.Empty(t, get.ByLocation.Path)

	post := doc.Operations[1]
	require.Equal(t, ir.MethodPost, post.Method)
	require.NotNil(t, post.RequestBody)
	require.True(t, post.RequestBody.Required)
	require.Len(t, post.RequestBody.Content, 1)
	require.Equal(t, "application/json", post.RequestBody.Content[0].MediaType)
	require.Equal(t, ir.SchemaPointer("Pet"), post.RequestBody.Content[0].Schema.Ref)

	require.True(t, post.SecurityDeclared)
	require.Len(t, post.Security, 1)
	require.Equal(t, "bearerAuth", post.Security[0].Name)
	require.Empty(t, post.Security[0].Scopes)
}

// Concrete components come out inline. The map restoring parser-dereferenced
// refs applies to nested positions only, never to a component's own root.
func TestComponentRootsStayInline(t *testing.T) {
	doc := mustBuild(t, petStoreSpec)

	for _, sc := range doc.SchemaComponents() {
		require.Empty(t, sc.Schema.Ref, sc.Name)
	}

	pet := doc.SchemaComponents()[0]
	require.Equal(t, ir.TypeObject, pet.Schema.Type)
	require.Len(t, pet.Schema.Properties, 4)
	require.Empty(t, doc.Graph.CircularReferences)
}

func TestOperationParameterOverridesPathParameter(t *testing.T) {
	doc := mustBuild(t, `
openapi: 3.1.0
info: {title: t, version: "1"}
paths:
  /items:
    parameters:
      - name: limit
        in: query
        description: path level
        schema: {type: integer}
    get:
      parameters:
        - name: limit
          in: query
          description: operation level
          schema: {type: integer}
      responses:
        "200": {description: ok}
`)

	op := doc.Operations[0]
	require.Len(t, op.Parameters, 1)
	require.Equal(t, "operation level", op.Parameters[0].Description)
}

// The default response always comes last, regardless of where it appears in
// the source document.
func TestDefaultResponseOrderedLast(t *testing.T) {
	doc := mustBuild(t, `
openapi: 3.1.0
info: {title: t, version: "1"}
paths:
  /items:
    get:
      responses:
        default: {description: error}
        "200": {description: ok}
        "404": {description: missing}
`)

	responses := doc.Operations[0].Responses
	require.Len(t, responses, 3)
	require.Equal(t, "200", responses[0].StatusCode)
	require.Equal(t, "404", responses[1].StatusCode)
	require.Equal(t, "default", responses[2].StatusCode)
}

func TestSelfReferentialSchema(t *testing.T) {
	doc := mustBuild(t, `
openapi: 3.1.0
info: {title: t, version: "1"}
paths: {}
components:
  schemas:
    Node:
      type: object
      properties:
        value:
          type: string
        children:
          type: array
          items:
            $ref: '#/components/schemas/Node'
`)

	require.Equal(t, [][]string{{"Node"}}, doc.Graph.CircularReferences)
	node := doc.SchemaComponents()[0]
	require.True(t, doc.Graph.Nodes["Node"].IsCircular)
	require.Equal(t, []string{"Node"}, node.Schema.Metadata.CircularWith)

	byName := make(map[string]*ir.Schema)
	for _, p := range node.Schema.Properties {
		byName[p.Name] = p.Schema
	}
	require.Equal(t, ir.SchemaPointer("Node"), byName["children"].Items.Ref)
}

func TestDependencyAnnotations(t *testing.T) {
	doc := mustBuild(t, `
openapi: 3.1.0
info: {title: t, version: "1"}
paths: {}
components:
  schemas:
    Order:
      type: object
      properties:
        item:
          $ref: '#/components/schemas/Item'
    Item:
      type: object
      properties:
        name:
          type: string
`)

	components := doc.SchemaComponents()
	order, item := components[0], components[1]

	require.Equal(t, []string{"Item"}, order.Schema.Metadata.Dependencies.DependsOn)
	require.Equal(t, 1, order.Schema.Metadata.Dependencies.Depth)
	require.Equal(t, []string{"Order"}, item.Schema.Metadata.Dependencies.DependedOnBy)
	require.Equal(t, 0, item.Schema.Metadata.Dependencies.Depth)
	require.Equal(t, []string{"Item", "Order"}, doc.Graph.TopologicalOrder)
}

func TestInvalidParameterRejected(t *testing.T) {
	_, err := buildFromYAML(t, `
openapi: 3.1.0
info: {title: t, version: "1"}
paths:
  /items:
    get:
      parameters:
        - name: limit
          in: query
      responses:
        "200": {description: ok}
`, Options{})

	require.ErrorIs(t, err, irerrors.ErrInvalidParameter)

	var paramErr *irerrors.InvalidParameterError
	require.ErrorAs(t, err, &paramErr)
	require.Equal(t, "limit", paramErr.Name)
	require.Equal(t, "query", paramErr.In)
	require.Contains(t, paramErr.Path, "paths./items.get")
}

// Request-body content must point at a concrete schema; an alias component
// that is itself a bare $ref needs another hop and is rejected.
func TestNestedContentReferenceRejected(t *testing.T) {
	_, err := buildFromYAML(t, `
openapi: 3.1.0
info: {title: t, version: "1"}
paths:
  /pets:
    post:
      requestBody:
        content:
          application/json:
            schema:
              $ref: '#/components/schemas/PetAlias'
      responses:
        "201": {description: created}
components:
  schemas:
    Pet:
      type: object
      properties:
        name: {type: string}
    PetAlias:
      $ref: '#/components/schemas/Pet'
`, Options{})

	require.ErrorIs(t, err, irerrors.ErrNestedReference)

	var nested *irerrors.NestedReferenceError
	require.ErrorAs(t, err, &nested)
	require.Equal(t, "#/components/schemas/Pet", nested.Target)
}

// The same alias is fine in a property position, which has no single-hop
// requirement.
func TestAliasAllowedInPropertyPosition(t *testing.T) {
	doc := mustBuild(t, `
openapi: 3.1.0
info: {title: t, version: "1"}
paths: {}
components:
  schemas:
    Pet:
      type: object
      properties:
        name: {type: string}
    PetAlias:
      $ref: '#/components/schemas/Pet'
    Owner:
      type: object
      properties:
        pet:
          $ref: '#/components/schemas/PetAlias'
`)

	owner := doc.SchemaComponents()[2]
	require.Equal(t, ir.SchemaPointer("PetAlias"), owner.Schema.Properties[0].Schema.Ref)
}

func TestWrongKindReferenceRejected(t *testing.T) {
	_, err := buildFromYAML(t, `
openapi: 3.1.0
info: {title: t, version: "1"}
paths: {}
components:
  responses:
    NotFound:
      description: missing
  schemas:
    Thing:
      type: object
      properties:
        oops:
          $ref: '#/components/responses/NotFound'
`, Options{})

	require.ErrorIs(t, err, irerrors.ErrWrongReferenceKind)
}

func TestExcludeSchemas(t *testing.T) {
	doc, err := buildFromYAML(t, petStoreSpec, Options{ExcludeSchemas: []string{"Error"}})
	require.NoError(t, err)

	require.Equal(t, []string{"Pet"}, doc.SchemaNames)
	require.Len(t, doc.SchemaComponents(), 1)
}

func TestEnumCatalog(t *testing.T) {
	doc := mustBuild(t, `
openapi: 3.1.0
info: {title: t, version: "1"}
paths: {}
components:
  schemas:
    Pet:
      type: object
      properties:
        status:
          type: string
          enum: [available, pending, sold]
    Listing:
      type: object
      properties:
        status:
          type: string
          enum: [available, pending, sold]
        sort:
          type: string
          enum: [asc, desc]
`)

	require.Len(t, doc.Enums, 2)

	byName := make(map[string]ir.EnumEntry)
	for _, e := range doc.Enums {
		byName[e.Name] = e
	}

	status, ok := byName["Status"]
	require.True(t, ok, "shared value set takes the common field name")
	require.Equal(t, []any{"available", "pending", "sold"}, status.Values)
	require.Equal(t, "Pet", status.Schema)

	sort, ok := byName["Sort"]
	require.True(t, ok)
	require.Equal(t, []any{"asc", "desc"}, sort.Values)
}

func TestNullableTypeListIn31(t *testing.T) {
	doc := mustBuild(t, `
openapi: 3.1.0
info: {title: t, version: "1"}
paths: {}
components:
  schemas:
    Thing:
      type: object
      properties:
        note:
          type: [string, "null"]
`)

	thing := doc.SchemaComponents()[0]
	note := thing.Schema.Properties[0].Schema
	require.Equal(t, ir.TypeString, note.Type)
	require.True(t, note.Metadata.Nullable)
	require.Equal(t, ir.PresenceOptionalNullable, note.Metadata.Presence)
}

// A schema typed only "null" keeps the null kind instead of degrading to an
// untyped schema.
func TestLoneNullTypeRetained(t *testing.T) {
	doc := mustBuild(t, `
openapi: 3.1.0
info: {title: t, version: "1"}
paths: {}
components:
  schemas:
    Nothing:
      type: "null"
    Wrapper:
      type: object
      properties:
        gap:
          type: ["null"]
`)

	nothing := doc.SchemaComponents()[0]
	require.Equal(t, ir.TypeNull, nothing.Schema.Type)
	require.True(t, nothing.Schema.Metadata.Nullable)

	gap := doc.SchemaComponents()[1].Schema.Properties[0].Schema
	require.Equal(t, ir.TypeNull, gap.Type)
	require.True(t, gap.Metadata.Nullable)
	require.Equal(t, ir.PresenceOptionalNullable, gap.Metadata.Presence)
}

// security: [] disables the document defaults, so it must stay
// distinguishable from an operation that never declares security. An empty
// requirement entry permits anonymous access and survives as a nameless
// requirement.
func TestSecurityDeclarationPreserved(t *testing.T) {
	doc := mustBuild(t, `
openapi: 3.1.0
info: {title: t, version: "1"}
paths:
  /open:
    get:
      security: []
      responses:
        "200": {description: ok}
  /mixed:
    get:
      security:
        - {}
        - bearerAuth: []
      responses:
        "200": {description: ok}
  /plain:
    get:
      responses:
        "200": {description: ok}
components:
  securitySchemes:
    bearerAuth:
      type: http
      scheme: bearer
`)

	open, mixed, plain := doc.Operations[0], doc.Operations[1], doc.Operations[2]

	require.True(t, open.SecurityDeclared)
	require.Empty(t, open.Security)

	require.True(t, mixed.SecurityDeclared)
	require.Len(t, mixed.Security, 2)
	require.Empty(t, mixed.Security[0].Name)
	require.Equal(t, "bearerAuth", mixed.Security[1].Name)

	require.False(t, plain.SecurityDeclared)
	require.Nil(t, plain.Security)
}

func TestDefaultValueCapture(t *testing.T) {
	doc := mustBuild(t, `
openapi: 3.1.0
info: {title: t, version: "1"}
paths: {}
components:
  schemas:
    Page:
      type: object
      properties:
        size:
          type: integer
          default: 20
`)

	page := doc.SchemaComponents()[0]
	size := page.Schema.Properties[0].Schema
	require.Equal(t, 20, size.Metadata.Default)
}

func TestCompositionAndConstraints(t *testing.T) {
	doc := mustBuild(t, `
openapi: 3.1.0
info: {title: t, version: "1"}
paths: {}
components:
  schemas:
    Base:
      type: object
      properties:
        id: {type: integer}
    Extended:
      allOf:
        - $ref: '#/components/schemas/Base'
        - type: object
          properties:
            score:
              type: number
              minimum: 0
              maximum: 100
            code:
              type: string
              minLength: 2
              maxLength: 8
`)

	extended := doc.SchemaComponents()[1]
	require.Equal(t, "Extended", extended.Name)
	require.Len(t, extended.Schema.AllOf, 2)
	require.Equal(t, ir.SchemaPointer("Base"), extended.Schema.AllOf[0].Ref)

	branch := extended.Schema.AllOf[1]
	byName := make(map[string]*ir.Schema)
	for _, p := range branch.Properties {
		byName[p.Name] = p.Schema
	}
	require.Equal(t, float64(0), *byName["score"].Minimum)
	require.Equal(t, float64(100), *byName["score"].Maximum)
	require.Equal(t, int64(2), *byName["code"].MinLength)
	require.Equal(t, int64(8), *byName["code"].MaxLength)

	require.Equal(t, []string{"Base"}, doc.Graph.Nodes["Extended"].Dependencies)
}

func TestSecuritySchemeWithFlows(t *testing.T) {
	doc := mustBuild(t, `
openapi: 3.1.0
info: {title: t, version: "1"}
paths: {}
components:
  securitySchemes:
    oauth:
      type: oauth2
      flows:
        authorizationCode:
          authorizationUrl: https://auth.example.com/authorize
          tokenUrl: https://auth.example.com/token
          scopes:
            read: Read access
            write: Write access
`)

	require.Len(t, doc.Components, 1)
	scheme, ok := doc.Components[0].(*ir.SecuritySchemeComponent)
	require.True(t, ok)
	require.Equal(t, "oauth", scheme.Name)
	require.Equal(t, ir.SecurityTypeOAuth2, scheme.Scheme.Type)
	require.NotNil(t, scheme.Scheme.Flows.AuthorizationCode)
	require.Equal(t, "https://auth.example.com/token", scheme.Scheme.Flows.AuthorizationCode.TokenURL)
	require.Equal(t, map[string]string{"read": "Read access", "write": "Write access"},
		scheme.Scheme.Flows.AuthorizationCode.Scopes)
}

func TestParameterComponents(t *testing.T) {
	doc := mustBuild(t, `
openapi: 3.1.0
info: {title: t, version: "1"}
paths: {}
components:
  parameters:
    limitParam:
      name: limit
      in: query
      required: true
      schema:
        type: integer
`)

	param, ok := doc.Components[0].(*ir.ParameterComponent)
	require.True(t, ok)
	require.Equal(t, "limitParam", param.Name)
	require.Equal(t, "limit", param.Parameter.Name)
	require.True(t, param.Parameter.Required)
	require.Equal(t, ir.TypeInteger, param.Parameter.Schema.Type)
	require.Equal(t, ir.PresenceRequired, param.Parameter.Schema.Metadata.Presence)
}
