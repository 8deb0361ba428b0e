// SPDX-License-Identifier: Apache-2.0

package athenaudf

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// bindInput binds the converter for declared input idx to the column at the
// same position in the batch. Inputs are matched by position, never by
// column name.
func bindInput[T any](batch arrow.Record, idx int, conv Converter[T]) (func(row int) Option[T], error) {
	if idx >= int(batch.NumCols()) {
		return nil, newError(CodeColumnTypeMismatch,
			"function takes %d or more arguments, batch has %d columns", idx+1, batch.NumCols())
	}
	read, err := conv.Bind(batch.Column(idx))
	if err != nil {
		return nil, fmt.Errorf("input column %d: %w", idx, err)
	}
	return read, nil
}

// buildOutput assembles the per-row results into a single-column batch. The
// column is always declared nullable; null propagation means any function
// can produce nulls regardless of its signature.
func buildOutput[O any](out Converter[O], field string, results []Option[O]) arrow.Record {
	mem := memory.NewGoAllocator()
	schema := arrow.NewSchema([]arrow.Field{
		{Name: field, Type: out.DataType(), Nullable: true},
	}, nil)
	col := out.Write(mem, results)
	defer col.Release()
	return array.NewRecord(schema, []arrow.Array{col}, int64(len(results)))
}
