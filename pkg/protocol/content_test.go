package protocol_test

import (
	"testing"

	"github.com/richard-senior/mcp/pkg/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeContentBlock_Text(t *testing.T) {
	cb, err := protocol.DecodeContentBlock([]byte(`{"type":"text","text":"hello"}`))
	require.NoError(t, err)
	tc, ok := cb.(*protocol.TextContent)
	require.True(t, ok)
	assert.Equal(t, "hello", tc.Text)
}

func TestDecodeContentBlock_ResourceLinkRequiresName(t *testing.T) {
	_, err := protocol.DecodeContentBlock([]byte(`{"type":"resource_link","uri":"file:///a"}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Name must be provided")
}

// TestDecodeContentBlock_UnknownTypePreserved covers forward compatibility:
// content blocks tolerate unknown discriminators rather than rejecting the
// whole message, unlike Reference (spec §4.1).
func TestDecodeContentBlock_UnknownTypePreserved(t *testing.T) {
	raw := []byte(`{"type":"future_kind","someField":42}`)
	cb, err := protocol.DecodeContentBlock(raw)
	require.NoError(t, err)
	opaque, ok := cb.(*protocol.OpaqueContent)
	require.True(t, ok)

	roundTripped, err := protocol.EncodeContentBlock(opaque)
	require.NoError(t, err)
	assert.JSONEq(t, string(raw), string(roundTripped))
}

func TestContentBlock_EmbeddedResourceRoundTrip(t *testing.T) {
	original := &protocol.EmbeddedResourceContent{
		Resource: &protocol.TextResourceContents{URI: "file:///a.txt", Text: "body", MimeType: "text/plain"},
	}
	raw, err := protocol.EncodeContentBlock(original)
	require.NoError(t, err)

	decoded, err := protocol.DecodeContentBlock(raw)
	require.NoError(t, err)
	got, ok := decoded.(*protocol.EmbeddedResourceContent)
	require.True(t, ok)
	text, ok := got.Resource.(*protocol.TextResourceContents)
	require.True(t, ok)
	assert.Equal(t, "body", text.Text)
}

func TestDecodeResourceContents_StructuralDiscrimination(t *testing.T) {
	blob, err := protocol.DecodeResourceContents([]byte(`{"uri":"u","blob":"Zm9v","text":"ignored-since-blob-present"}`))
	require.NoError(t, err)
	assert.Equal(t, protocol.ResourceContentsBlob, blob.Kind())

	text, err := protocol.DecodeResourceContents([]byte(`{"uri":"u","text":"hi"}`))
	require.NoError(t, err)
	assert.Equal(t, protocol.ResourceContentsText, text.Kind())

	absent, err := protocol.DecodeResourceContents([]byte(`{"uri":"u"}`))
	require.NoError(t, err)
	assert.Equal(t, protocol.ResourceContentsAbsent, absent.Kind())
}

func TestDecodeReference_UnknownTypeFails(t *testing.T) {
	_, err := protocol.DecodeReference([]byte(`{"type":"ref/unknown"}`))
	assert.Error(t, err)
}

func TestDecodeReference_RequiresDiscriminatorFields(t *testing.T) {
	_, err := protocol.DecodeReference([]byte(`{"type":"ref/prompt"}`))
	assert.Error(t, err)
	_, err = protocol.DecodeReference([]byte(`{"type":"ref/resource"}`))
	assert.Error(t, err)
}

func TestCallToolResult_RoundTrip(t *testing.T) {
	result := &protocol.CallToolResult{
		Content: []protocol.ContentBlock{&protocol.TextContent{Text: "42"}},
		IsError: false,
	}
	data, err := result.MarshalJSON()
	require.NoError(t, err)

	var got protocol.CallToolResult
	require.NoError(t, got.UnmarshalJSON(data))
	require.Len(t, got.Content, 1)
	tc, ok := got.Content[0].(*protocol.TextContent)
	require.True(t, ok)
	assert.Equal(t, "42", tc.Text)
}
