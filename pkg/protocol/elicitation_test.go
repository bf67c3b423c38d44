package protocol_test

import (
	"testing"

	"github.com/richard-senior/mcp/pkg/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestDecodeSchema_StructuralDiscrimination covers spec §4.1's table and
// scenario 6: the same fields minus enumNames resolve to a different
// variant.
func TestDecodeSchema_StructuralDiscrimination(t *testing.T) {
	cases := []struct {
		name string
		json string
		kind protocol.PrimitiveSchemaKind
	}{
		{"legacy titled enum", `{"type":"string","title":"S","enum":["a","b"],"enumNames":["A","B"]}`, protocol.SchemaEnumLegacyTitled},
		{"untitled single-select enum", `{"type":"string","title":"S","enum":["a","b"]}`, protocol.SchemaEnumUntitled},
		{"titled single-select enum", `{"type":"string","oneOf":[{"const":"a","title":"A"}]}`, protocol.SchemaEnumTitled},
		{"untitled multi-select enum", `{"type":"array","items":{"enum":["a","b"]}}`, protocol.SchemaMultiEnumUntitled},
		{"titled multi-select enum", `{"type":"array","items":{"anyOf":[{"const":"a","title":"A"}]}}`, protocol.SchemaMultiEnumTitled},
		{"plain string", `{"type":"string"}`, protocol.SchemaString},
		{"number", `{"type":"number"}`, protocol.SchemaNumber},
		{"integer", `{"type":"integer"}`, protocol.SchemaNumber},
		{"boolean", `{"type":"boolean"}`, protocol.SchemaBoolean},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			v, err := protocol.DecodeSchema([]byte(tc.json))
			require.NoError(t, err)
			assert.Equal(t, tc.kind, v.Kind())
		})
	}
}

func TestDecodeSchema_UnknownTypeFails(t *testing.T) {
	_, err := protocol.DecodeSchema([]byte(`{"type":"nonsense"}`))
	assert.Error(t, err)
}

func TestDecodeSchema_ArrayMissingItemsFails(t *testing.T) {
	_, err := protocol.DecodeSchema([]byte(`{"type":"array"}`))
	assert.Error(t, err)
}

func TestEncodeDecodeSchema_RoundTrip(t *testing.T) {
	original := &protocol.EnumTitledSchema{
		Title: "choice",
		OneOf: []protocol.EnumTitledCase{{Const: "a", Title: "Alpha"}, {Const: "b", Title: "Beta"}},
	}
	raw, err := protocol.EncodeSchema(original)
	require.NoError(t, err)
	decoded, err := protocol.DecodeSchema(raw)
	require.NoError(t, err)
	got, ok := decoded.(*protocol.EnumTitledSchema)
	require.True(t, ok)
	assert.Equal(t, original.Title, got.Title)
	assert.Equal(t, original.OneOf, got.OneOf)
}

func TestElicitParams_FormModeRoundTrip(t *testing.T) {
	params := &protocol.ElicitParams{
		Message: "please fill this in",
		RequestedSchema: map[string]protocol.PrimitiveSchemaDefinition{
			"name": &protocol.StringSchema{Title: "Name"},
		},
	}
	data, err := params.MarshalJSON()
	require.NoError(t, err)

	var got protocol.ElicitParams
	require.NoError(t, got.UnmarshalJSON(data))
	assert.Equal(t, params.Message, got.Message)
	assert.False(t, got.IsURLMode())
	require.Contains(t, got.RequestedSchema, "name")
	assert.Equal(t, protocol.SchemaString, got.RequestedSchema["name"].Kind())
}

func TestElicitParams_URLModeRoundTrip(t *testing.T) {
	params := &protocol.ElicitParams{Message: "please confirm", URL: "https://example.com/consent"}
	data, err := params.MarshalJSON()
	require.NoError(t, err)

	var got protocol.ElicitParams
	require.NoError(t, got.UnmarshalJSON(data))
	assert.True(t, got.IsURLMode())
	assert.Equal(t, "https://example.com/consent", got.URL)
}

func TestClientCapabilities_ElicitationSupports_BlankDefaultsToForm(t *testing.T) {
	caps := &protocol.ClientCapabilities{Elicitation: &protocol.ElicitationCapability{}}
	assert.True(t, caps.ElicitationSupports(true, false))
	assert.False(t, caps.ElicitationSupports(false, true))
}

func TestClientCapabilities_ElicitationSupports_FormOnlyRejectsURL(t *testing.T) {
	caps := &protocol.ClientCapabilities{Elicitation: &protocol.ElicitationCapability{Form: true}}
	assert.True(t, caps.ElicitationSupports(true, false))
	assert.False(t, caps.ElicitationSupports(false, true))
}
