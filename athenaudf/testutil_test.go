// SPDX-License-Identifier: Apache-2.0

package athenaudf

import (
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// stringBatch builds a single-column string batch; nil entries become nulls.
func stringBatch(name string, values []*string) arrow.Record {
	mem := memory.NewGoAllocator()
	b := array.NewStringBuilder(mem)
	defer b.Release()
	for _, v := range values {
		if v == nil {
			b.AppendNull()
		} else {
			b.Append(*v)
		}
	}
	col := b.NewArray()
	defer col.Release()
	schema := arrow.NewSchema([]arrow.Field{
		{Name: name, Type: arrow.BinaryTypes.String, Nullable: true},
	}, nil)
	return array.NewRecord(schema, []arrow.Array{col}, int64(len(values)))
}

// int64Batch builds a batch with one int64 column per input slice; nil
// entries become nulls.
func int64Batch(names []string, cols [][]*int64) arrow.Record {
	mem := memory.NewGoAllocator()
	fields := make([]arrow.Field, len(names))
	arrays := make([]arrow.Array, len(names))
	rows := len(cols[0])
	for i, name := range names {
		b := array.NewInt64Builder(mem)
		for _, v := range cols[i] {
			if v == nil {
				b.AppendNull()
			} else {
				b.Append(*v)
			}
		}
		arrays[i] = b.NewArray()
		b.Release()
		fields[i] = arrow.Field{Name: name, Type: arrow.PrimitiveTypes.Int64, Nullable: true}
	}
	defer func() {
		for _, a := range arrays {
			a.Release()
		}
	}()
	return array.NewRecord(arrow.NewSchema(fields, nil), arrays, int64(rows))
}

func strPtr(s string) *string { return &s }

func i64Ptr(v int64) *int64 { return &v }

// outputSchema builds the single-column declared output schema.
func outputSchema(field string, dt arrow.DataType) *arrow.Schema {
	return arrow.NewSchema([]arrow.Field{
		{Name: field, Type: dt, Nullable: true},
	}, nil)
}

// stringColumn extracts column 0 of a batch as (value, present) pairs.
func stringColumn(batch arrow.Record) []*string {
	arr := batch.Column(0).(*array.String)
	out := make([]*string, arr.Len())
	for i := 0; i < arr.Len(); i++ {
		if !arr.IsNull(i) {
			v := arr.Value(i)
			out[i] = &v
		}
	}
	return out
}

// int64Column extracts column 0 of a batch as (value, present) pairs.
func int64Column(batch arrow.Record) []*int64 {
	arr := batch.Column(0).(*array.Int64)
	out := make([]*int64, arr.Len())
	for i := 0; i < arr.Len(); i++ {
		if !arr.IsNull(i) {
			v := arr.Value(i)
			out[i] = &v
		}
	}
	return out
}
