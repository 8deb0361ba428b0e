// SPDX-License-Identifier: Apache-2.0

// Package benchmark holds the fixture registry and request builders used by
// the handler benchmarks.
package benchmark

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/quarrydata/athena-udf-go/athenaudf"
	"github.com/quarrydata/athena-udf-go/conformance"
)

var inputSchema = arrow.NewSchema([]arrow.Field{
	{Name: "s", Type: arrow.BinaryTypes.String, Nullable: true},
}, nil)

// NewRegistry builds the registry the benchmarks run against.
func NewRegistry() *athenaudf.Registry {
	r := athenaudf.NewRegistry()
	athenaudf.Unary(r, "upper", athenaudf.Utf8, athenaudf.Utf8, strings.ToUpper)
	athenaudf.Binary(r, "add", athenaudf.Int64, athenaudf.Int64, athenaudf.Int64,
		func(a, b int64) int64 { return a + b })
	return r
}

// BuildStringBatch builds one string batch of rows values, with every
// tenth row null.
func BuildStringBatch(rows int) arrow.Record {
	b := array.NewStringBuilder(memory.NewGoAllocator())
	defer b.Release()
	b.Reserve(rows)
	for i := 0; i < rows; i++ {
		if i%10 == 9 {
			b.AppendNull()
			continue
		}
		b.Append(fmt.Sprintf("value-%d", i))
	}
	col := b.NewArray()
	defer col.Release()
	return array.NewRecord(inputSchema, []arrow.Array{col}, int64(rows))
}

// BuildUpperRequest builds an invocation payload for the "upper" function
// over a single batch of the given size.
func BuildUpperRequest(rows int) (json.RawMessage, error) {
	batch := BuildStringBatch(rows)
	defer batch.Release()
	return conformance.BuildUDFRequest("upper", "bench", []arrow.Record{batch},
		conformance.OutputSchema("result", arrow.BinaryTypes.String))
}
