// SPDX-License-Identifier: Apache-2.0

package athenaudf

import (
	"encoding/json"

	"github.com/apache/arrow-go/v18/arrow"
)

// Response type discriminators.
const (
	responseTypePing = "PingResponse"
	responseTypeUDF  = "UserDefinedFunctionResponse"
)

// Fixed values reported in ping responses.
const (
	// DefaultSourceType identifies this implementation to the engine.
	DefaultSourceType = "athena_udf_go"
	// Capabilities is the capability bitmask of this implementation.
	Capabilities = 23
	// SerdeVersion is the serialization protocol version.
	SerdeVersion = 5
)

// PingResponse acknowledges a connectivity check, echoing the request's
// catalog and query identifiers.
type PingResponse struct {
	ResponseType string  `json:"@type"`
	CatalogName  *string `json:"catalogName"`
	QueryID      *string `json:"queryId"`
	SourceType   string  `json:"sourceType"`
	Capabilities uint64  `json:"capabilities"`
	SerdeVersion *uint64 `json:"serdeVersion,omitempty"`
}

// UDFResponse carries the results of a function invocation back to the
// engine, in the same base64-encoded IPC shape as the input.
type UDFResponse struct {
	ResponseType string        `json:"@type"`
	MethodName   string        `json:"methodName"`
	Records      OutputRecords `json:"records"`
}

// OutputRecords mirrors InputRecords for the output direction.
type OutputRecords struct {
	AID     string      `json:"aId"`
	Schema  Base64Bytes `json:"schema"`
	Records Base64Bytes `json:"records"`
}

// NewUDFResponse encodes the output schema and batches into a response.
// The correlation token aID must be the one from the request.
func NewUDFResponse(methodName, aID string, schema *arrow.Schema, batches []arrow.Record) (*UDFResponse, error) {
	schemaBuf, err := EncodeSchema(schema)
	if err != nil {
		return nil, err
	}
	recordsBuf, err := EncodeBatches(batches)
	if err != nil {
		return nil, err
	}
	return &UDFResponse{
		ResponseType: responseTypeUDF,
		MethodName:   methodName,
		Records: OutputRecords{
			AID:     aID,
			Schema:  schemaBuf,
			Records: recordsBuf,
		},
	}, nil
}

// httpEnvelope is the Lambda function-URL response shape used when the
// request arrived HTTP-wrapped.
type httpEnvelope struct {
	StatusCode      int               `json:"statusCode"`
	Headers         map[string]string `json:"headers"`
	Body            string            `json:"body"`
	Cookies         []string          `json:"cookies"`
	IsBase64Encoded bool              `json:"isBase64Encoded"`
}

// WrapResponse serializes a response and applies the transport wrapping the
// request arrived with: Direct returns the JSON object itself, HTTP nests
// it as the body string of a 200 envelope.
func WrapResponse(resp any, transport Transport) (json.RawMessage, error) {
	body, err := json.Marshal(resp)
	if err != nil {
		return nil, wrapError(CodeEncodeError, err, "marshaling response")
	}
	if transport == TransportDirect {
		return body, nil
	}
	wrapped, err := json.Marshal(httpEnvelope{
		StatusCode:      200,
		Headers:         map[string]string{"content-type": "application/json"},
		Body:            string(body),
		Cookies:         []string{},
		IsBase64Encoded: false,
	})
	if err != nil {
		return nil, wrapError(CodeEncodeError, err, "marshaling http envelope")
	}
	return wrapped, nil
}
