// SPDX-License-Identifier: Apache-2.0

package athenaudf

import (
	"encoding/json"
	"errors"

	"github.com/apache/arrow-go/v18/arrow"
)

// Transport identifies how the inbound invocation payload was wrapped.
type Transport int

const (
	// TransportDirect means the payload object is the invocation itself.
	TransportDirect Transport = iota
	// TransportHTTP means the invocation arrived inside an HTTP-style
	// envelope (API Gateway or a Lambda function URL) and the response must
	// be wrapped the same way.
	TransportHTTP
)

func (t Transport) String() string {
	if t == TransportHTTP {
		return "http"
	}
	return "direct"
}

// Request type discriminators carried in the @type field.
const (
	requestTypePing = "PingRequest"
	requestTypeUDF  = "UserDefinedFunctionRequest"
)

// Identity describes the principal behind an Athena request.
type Identity struct {
	ID        string `json:"id,omitempty"`
	Principal string `json:"principal,omitempty"`
	Account   string `json:"account,omitempty"`
	Arn       string `json:"arn,omitempty"`
}

// PingRequest is the connectivity check Athena sends before dispatching any
// function work.
type PingRequest struct {
	RequestType string   `json:"@type"`
	Identity    Identity `json:"identity"`
	CatalogName *string  `json:"catalogName"`
	QueryID     *string  `json:"queryId"`
}

// UDFRequest is one function invocation: input batches, the declared output
// schema, and the name of the function to apply.
type UDFRequest struct {
	RequestType  string              `json:"@type"`
	Identity     Identity            `json:"identity"`
	InputRecords InputRecords        `json:"inputRecords"`
	OutputSchema OutputSchemaWrapper `json:"outputSchema"`
	MethodName   string              `json:"methodName"`
	FunctionType string              `json:"functionType"`
}

// InputRecords carries the input data: the schema and record buffers are
// separate base64-encoded halves of one Arrow IPC stream. AID is an opaque
// correlation token echoed verbatim in the response.
type InputRecords struct {
	AID     string      `json:"aId"`
	Schema  Base64Bytes `json:"schema"`
	Records Base64Bytes `json:"records"`
}

// OutputSchemaWrapper holds the declared output schema as an IPC buffer.
// Field 0 of the schema names the single output column.
type OutputSchemaWrapper struct {
	Schema Base64Bytes `json:"schema"`
}

// ParseRequest detects the transport wrapping and returns the invocation
// payload. A payload with a string "body" field is HTTP-wrapped; the body
// string is itself the JSON invocation. Anything else is taken directly.
func ParseRequest(payload json.RawMessage) (json.RawMessage, Transport, error) {
	var probe struct {
		Body *string `json:"body"`
	}
	// Non-object payloads fail the probe and fall through; the typed decode
	// rejects them with a proper error.
	if err := json.Unmarshal(payload, &probe); err == nil && probe.Body != nil {
		inner := json.RawMessage(*probe.Body)
		if !json.Valid(inner) {
			return nil, TransportHTTP, newError(CodeMalformedRequest, "http body is not valid JSON")
		}
		return inner, TransportHTTP, nil
	}
	return payload, TransportDirect, nil
}

// requestType extracts the @type discriminator from a payload.
func requestType(payload json.RawMessage) (string, error) {
	var disc struct {
		Type *string `json:"@type"`
	}
	if err := json.Unmarshal(payload, &disc); err != nil {
		return "", wrapError(CodeMalformedRequest, err, "parsing request envelope")
	}
	if disc.Type == nil {
		return "", newError(CodeMalformedRequest, "missing @type field")
	}
	return *disc.Type, nil
}

func decodePingRequest(payload json.RawMessage) (*PingRequest, error) {
	var req PingRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return nil, wrapError(CodeMalformedRequest, err, "decoding ping request")
	}
	return &req, nil
}

func decodeUDFRequest(payload json.RawMessage) (*UDFRequest, error) {
	var req UDFRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		// Base64 failures keep their own code; everything else is a
		// malformed request.
		var perr *Error
		if errors.As(err, &perr) && perr.Code == CodeBase64Error {
			return nil, perr
		}
		return nil, wrapError(CodeMalformedRequest, err, "decoding function request")
	}
	if req.MethodName == "" {
		return nil, newError(CodeMalformedRequest, "missing methodName field")
	}
	return &req, nil
}

// InputBatches decodes the request's input data into record batches.
// The caller owns the returned batches and must Release them.
func (r *UDFRequest) InputBatches() ([]arrow.Record, error) {
	return DecodeBatches(r.InputRecords.Schema, r.InputRecords.Records)
}

// DeclaredOutputSchema decodes the output schema the engine expects back.
func (r *UDFRequest) DeclaredOutputSchema() (*arrow.Schema, error) {
	return DecodeSchema(r.OutputSchema.Schema)
}
