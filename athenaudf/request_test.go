// SPDX-License-Identifier: Apache-2.0

package athenaudf

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseRequestDirect(t *testing.T) {
	payload := json.RawMessage(`{"@type":"PingRequest"}`)
	inner, transport, err := ParseRequest(payload)
	require.NoError(t, err)
	require.Equal(t, TransportDirect, transport)
	require.JSONEq(t, string(payload), string(inner))
}

func TestParseRequestHTTP(t *testing.T) {
	inner := `{"@type":"PingRequest","catalogName":"c"}`
	wrapped, err := json.Marshal(map[string]any{
		"body":    inner,
		"headers": map[string]string{"content-type": "application/json"},
	})
	require.NoError(t, err)

	got, transport, err := ParseRequest(wrapped)
	require.NoError(t, err)
	require.Equal(t, TransportHTTP, transport)
	require.JSONEq(t, inner, string(got))
}

func TestParseRequestHTTPInvalidBody(t *testing.T) {
	wrapped := json.RawMessage(`{"body":"{not json"}`)
	_, transport, err := ParseRequest(wrapped)
	require.Equal(t, TransportHTTP, transport)
	var udfErr *Error
	require.ErrorAs(t, err, &udfErr)
	require.Equal(t, CodeMalformedRequest, udfErr.Code)
}

func TestParseRequestNullBodyIsDirect(t *testing.T) {
	// A JSON null body is not an HTTP wrapper.
	payload := json.RawMessage(`{"@type":"PingRequest","body":null}`)
	_, transport, err := ParseRequest(payload)
	require.NoError(t, err)
	require.Equal(t, TransportDirect, transport)
}

func TestRequestTypeDiscrimination(t *testing.T) {
	kind, err := requestType(json.RawMessage(`{"@type":"PingRequest"}`))
	require.NoError(t, err)
	require.Equal(t, "PingRequest", kind)

	kind, err = requestType(json.RawMessage(`{"@type":"UserDefinedFunctionRequest"}`))
	require.NoError(t, err)
	require.Equal(t, "UserDefinedFunctionRequest", kind)
}

func TestRequestTypeMissing(t *testing.T) {
	_, err := requestType(json.RawMessage(`{"methodName":"f"}`))
	var udfErr *Error
	require.ErrorAs(t, err, &udfErr)
	require.Equal(t, CodeMalformedRequest, udfErr.Code)
}

func TestRequestTypeNotObject(t *testing.T) {
	_, err := requestType(json.RawMessage(`[1,2]`))
	var udfErr *Error
	require.ErrorAs(t, err, &udfErr)
	require.Equal(t, CodeMalformedRequest, udfErr.Code)
}

func TestDecodeUDFRequestMissingMethod(t *testing.T) {
	payload := json.RawMessage(`{"@type":"UserDefinedFunctionRequest","inputRecords":{"aId":"1","schema":"","records":""},"outputSchema":{"schema":""}}`)
	_, err := decodeUDFRequest(payload)
	var udfErr *Error
	require.ErrorAs(t, err, &udfErr)
	require.Equal(t, CodeMalformedRequest, udfErr.Code)
}

func TestDecodeUDFRequestBadBase64(t *testing.T) {
	payload := json.RawMessage(`{"@type":"UserDefinedFunctionRequest","methodName":"f","inputRecords":{"aId":"1","schema":"!!!","records":""},"outputSchema":{"schema":""}}`)
	_, err := decodeUDFRequest(payload)
	var udfErr *Error
	require.ErrorAs(t, err, &udfErr)
	require.Equal(t, CodeBase64Error, udfErr.Code)
}

func TestIdentityOmitted(t *testing.T) {
	// Requests without identity decode cleanly.
	payload := json.RawMessage(`{"@type":"PingRequest","catalogName":"cat","queryId":"q"}`)
	req, err := decodePingRequest(payload)
	require.NoError(t, err)
	require.Equal(t, "cat", *req.CatalogName)
	require.Equal(t, "q", *req.QueryID)
	require.Empty(t, req.Identity.Account)
}

func TestTransportString(t *testing.T) {
	require.Equal(t, "direct", TransportDirect.String())
	require.Equal(t, "http", TransportHTTP.String())
}
