package protocol_test

import (
	"testing"

	"github.com/richard-senior/mcp/pkg/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeMessage_Request(t *testing.T) {
	msg, err := protocol.DecodeMessage([]byte(`{"jsonrpc":"2.0","id":1,"method":"tools/list","params":{}}`))
	require.NoError(t, err)
	req, ok := msg.(*protocol.Request)
	require.True(t, ok)
	assert.Equal(t, "tools/list", req.Method)
	assert.False(t, req.ID.IsString())
	assert.Equal(t, int64(1), req.ID.IntValue())
}

func TestDecodeMessage_Notification(t *testing.T) {
	msg, err := protocol.DecodeMessage([]byte(`{"jsonrpc":"2.0","method":"notifications/initialized"}`))
	require.NoError(t, err)
	notif, ok := msg.(*protocol.Notification)
	require.True(t, ok)
	assert.Equal(t, "notifications/initialized", notif.Method)
}

// TestDecodeMessage_LenientErrorPrecedence covers spec §8 scenario 3: when
// both result and error are present, error wins regardless of key order.
func TestDecodeMessage_LenientErrorPrecedence(t *testing.T) {
	msg, err := protocol.DecodeMessage([]byte(`{"jsonrpc":"2.0","id":1,"result":{"data":"value"},"error":null}`))
	require.NoError(t, err)
	resp, ok := msg.(*protocol.Response)
	require.True(t, ok)
	assert.JSONEq(t, `{"data":"value"}`, string(resp.Result))

	msg, err = protocol.DecodeMessage([]byte(`{"jsonrpc":"2.0","id":1,"error":{"code":-32600,"message":"Invalid"},"result":{"data":"ignored"}}`))
	require.NoError(t, err)
	errMsg, ok := msg.(*protocol.ErrorMessage)
	require.True(t, ok)
	assert.Equal(t, -32600, errMsg.Code)
}

func TestDecodeMessage_RejectsWrongVersion(t *testing.T) {
	_, err := protocol.DecodeMessage([]byte(`{"jsonrpc":"1.0","id":1,"method":"ping"}`))
	assert.Error(t, err)
}

func TestDecodeMessage_RejectsAmbiguousFrame(t *testing.T) {
	_, err := protocol.DecodeMessage([]byte(`{"jsonrpc":"2.0"}`))
	assert.Error(t, err)
}

func TestEncodeMessage_NeverEmitsBothResultAndError(t *testing.T) {
	data, err := protocol.EncodeMessage(&protocol.Response{ID: protocol.NewIntID(5), Result: []byte(`{"ok":true}`)})
	require.NoError(t, err)
	assert.NotContains(t, string(data), `"error"`)
}

func TestEncodeMessage_NullResultIsExplicit(t *testing.T) {
	data, err := protocol.EncodeMessage(&protocol.Response{ID: protocol.NewIntID(1)})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"result":null`)
}

func TestRequestID_RoundTrip(t *testing.T) {
	for _, id := range []protocol.RequestID{
		protocol.NewIntID(0),
		protocol.NewIntID(-7),
		protocol.NewStringID(""),
		protocol.NewStringID("abc"),
	} {
		data, err := id.MarshalJSON()
		require.NoError(t, err)
		var got protocol.RequestID
		require.NoError(t, got.UnmarshalJSON(data))
		assert.True(t, id.Equal(got))
	}
}

func TestRequestID_Equal_VariantThenValue(t *testing.T) {
	assert.False(t, protocol.NewIntID(1).Equal(protocol.NewStringID("1")))
	assert.True(t, protocol.NewIntID(1).Equal(protocol.NewIntID(1)))
}

func TestMessage_RoundTrip_Request(t *testing.T) {
	req := &protocol.Request{ID: protocol.NewStringID("r1"), Method: "ping", Params: []byte(`{"a":1}`)}
	data, err := protocol.EncodeMessage(req)
	require.NoError(t, err)
	msg, err := protocol.DecodeMessage(data)
	require.NoError(t, err)
	got, ok := msg.(*protocol.Request)
	require.True(t, ok)
	assert.Equal(t, req.Method, got.Method)
	assert.True(t, req.ID.Equal(got.ID))
	assert.JSONEq(t, string(req.Params), string(got.Params))
}

// TestDecodeMessage_UnknownFieldTolerance covers spec §8's unknown-field
// tolerance property: extra keys at any depth must not break decoding.
func TestDecodeMessage_UnknownFieldTolerance(t *testing.T) {
	msg, err := protocol.DecodeMessage([]byte(`{"jsonrpc":"2.0","id":1,"method":"ping","params":{"a":1,"nested":{"b":[1,2,{"c":3}]}},"futureField":"ignored"}`))
	require.NoError(t, err)
	req := msg.(*protocol.Request)
	assert.Equal(t, "ping", req.Method)
}
