// SPDX-License-Identifier: Apache-2.0

package conformance

import (
	"encoding/json"
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"

	"github.com/quarrydata/athena-udf-go/athenaudf"
)

// BuildPingRequest builds a raw ping payload.
func BuildPingRequest(catalogName, queryID string) (json.RawMessage, error) {
	payload, err := json.Marshal(athenaudf.PingRequest{
		RequestType: "PingRequest",
		CatalogName: &catalogName,
		QueryID:     &queryID,
	})
	if err != nil {
		return nil, fmt.Errorf("marshaling ping request: %w", err)
	}
	return payload, nil
}

// BuildUDFRequest builds a raw invocation payload from in-memory batches.
// The batches are encoded into the split schema/records IPC buffers exactly
// as the engine sends them; outputSchema declares the expected result column.
func BuildUDFRequest(methodName, aID string, inputs []arrow.Record, outputSchema *arrow.Schema) (json.RawMessage, error) {
	if len(inputs) == 0 {
		return nil, fmt.Errorf("at least one input batch is required")
	}

	schemaBuf, err := athenaudf.EncodeSchema(inputs[0].Schema())
	if err != nil {
		return nil, err
	}
	recordsBuf, err := athenaudf.EncodeBatches(inputs)
	if err != nil {
		return nil, err
	}
	outputBuf, err := athenaudf.EncodeSchema(outputSchema)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(athenaudf.UDFRequest{
		RequestType: "UserDefinedFunctionRequest",
		InputRecords: athenaudf.InputRecords{
			AID:     aID,
			Schema:  schemaBuf,
			Records: recordsBuf,
		},
		OutputSchema: athenaudf.OutputSchemaWrapper{Schema: outputBuf},
		MethodName:   methodName,
		FunctionType: "SCALAR",
	})
	if err != nil {
		return nil, fmt.Errorf("marshaling function request: %w", err)
	}
	return payload, nil
}

// WrapHTTP nests a payload inside a function-URL style envelope, the way an
// HTTP-fronted deployment receives it.
func WrapHTTP(payload json.RawMessage) (json.RawMessage, error) {
	wrapped, err := json.Marshal(map[string]any{
		"body": string(payload),
	})
	if err != nil {
		return nil, fmt.Errorf("wrapping http request: %w", err)
	}
	return wrapped, nil
}

// OutputSchema builds a single-column nullable output schema declaration.
func OutputSchema(field string, dt arrow.DataType) *arrow.Schema {
	return arrow.NewSchema([]arrow.Field{
		{Name: field, Type: dt, Nullable: true},
	}, nil)
}
