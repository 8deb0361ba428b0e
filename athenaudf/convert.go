// SPDX-License-Identifier: Apache-2.0

package athenaudf

import (
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// Converter maps one Go scalar type to its Arrow array representation.
// Each supported column type has exactly one converter value; functions are
// registered against converters, not against Arrow types directly.
type Converter[T any] interface {
	// DataType returns the Arrow type this converter reads and writes.
	DataType() arrow.DataType

	// Bind checks col against the expected array type and returns a row
	// accessor. Null positions are reported as absent Options; the accessor
	// itself never fails. Bind fails with a ColumnTypeMismatch error when
	// the column is not the expected array type.
	Bind(col arrow.Array) (func(row int) Option[T], error)

	// Write builds a new array of len(values) elements, placing a null at
	// every absent position.
	Write(mem memory.Allocator, values []Option[T]) arrow.Array
}

// Converters for the supported scalar column types.
var (
	Utf8    Converter[string]  = utf8Converter{}
	Int64   Converter[int64]   = int64Converter{}
	Int32   Converter[int32]   = int32Converter{}
	Float64 Converter[float64] = float64Converter{}
	Boolean Converter[bool]    = booleanConverter{}
	Bytes   Converter[[]byte]  = bytesConverter{}
)

func typeMismatch(want arrow.DataType, col arrow.Array) error {
	return newError(CodeColumnTypeMismatch, "expected %s column, got %s", want, col.DataType())
}

type utf8Converter struct{}

func (utf8Converter) DataType() arrow.DataType { return arrow.BinaryTypes.String }

func (utf8Converter) Bind(col arrow.Array) (func(int) Option[string], error) {
	arr, ok := col.(*array.String)
	if !ok {
		return nil, typeMismatch(arrow.BinaryTypes.String, col)
	}
	return func(row int) Option[string] {
		if arr.IsNull(row) {
			return None[string]()
		}
		return Some(arr.Value(row))
	}, nil
}

func (utf8Converter) Write(mem memory.Allocator, values []Option[string]) arrow.Array {
	b := array.NewStringBuilder(mem)
	defer b.Release()
	b.Reserve(len(values))
	for _, v := range values {
		if s, ok := v.Get(); ok {
			b.Append(s)
		} else {
			b.AppendNull()
		}
	}
	return b.NewArray()
}

type int64Converter struct{}

func (int64Converter) DataType() arrow.DataType { return arrow.PrimitiveTypes.Int64 }

func (int64Converter) Bind(col arrow.Array) (func(int) Option[int64], error) {
	arr, ok := col.(*array.Int64)
	if !ok {
		return nil, typeMismatch(arrow.PrimitiveTypes.Int64, col)
	}
	return func(row int) Option[int64] {
		if arr.IsNull(row) {
			return None[int64]()
		}
		return Some(arr.Value(row))
	}, nil
}

func (int64Converter) Write(mem memory.Allocator, values []Option[int64]) arrow.Array {
	b := array.NewInt64Builder(mem)
	defer b.Release()
	b.Reserve(len(values))
	for _, v := range values {
		if n, ok := v.Get(); ok {
			b.Append(n)
		} else {
			b.AppendNull()
		}
	}
	return b.NewArray()
}

type int32Converter struct{}

func (int32Converter) DataType() arrow.DataType { return arrow.PrimitiveTypes.Int32 }

func (int32Converter) Bind(col arrow.Array) (func(int) Option[int32], error) {
	arr, ok := col.(*array.Int32)
	if !ok {
		return nil, typeMismatch(arrow.PrimitiveTypes.Int32, col)
	}
	return func(row int) Option[int32] {
		if arr.IsNull(row) {
			return None[int32]()
		}
		return Some(arr.Value(row))
	}, nil
}

func (int32Converter) Write(mem memory.Allocator, values []Option[int32]) arrow.Array {
	b := array.NewInt32Builder(mem)
	defer b.Release()
	b.Reserve(len(values))
	for _, v := range values {
		if n, ok := v.Get(); ok {
			b.Append(n)
		} else {
			b.AppendNull()
		}
	}
	return b.NewArray()
}

type float64Converter struct{}

func (float64Converter) DataType() arrow.DataType { return arrow.PrimitiveTypes.Float64 }

func (float64Converter) Bind(col arrow.Array) (func(int) Option[float64], error) {
	arr, ok := col.(*array.Float64)
	if !ok {
		return nil, typeMismatch(arrow.PrimitiveTypes.Float64, col)
	}
	return func(row int) Option[float64] {
		if arr.IsNull(row) {
			return None[float64]()
		}
		return Some(arr.Value(row))
	}, nil
}

func (float64Converter) Write(mem memory.Allocator, values []Option[float64]) arrow.Array {
	b := array.NewFloat64Builder(mem)
	defer b.Release()
	b.Reserve(len(values))
	for _, v := range values {
		if f, ok := v.Get(); ok {
			b.Append(f)
		} else {
			b.AppendNull()
		}
	}
	return b.NewArray()
}

type booleanConverter struct{}

func (booleanConverter) DataType() arrow.DataType { return arrow.FixedWidthTypes.Boolean }

func (booleanConverter) Bind(col arrow.Array) (func(int) Option[bool], error) {
	arr, ok := col.(*array.Boolean)
	if !ok {
		return nil, typeMismatch(arrow.FixedWidthTypes.Boolean, col)
	}
	return func(row int) Option[bool] {
		if arr.IsNull(row) {
			return None[bool]()
		}
		return Some(arr.Value(row))
	}, nil
}

func (booleanConverter) Write(mem memory.Allocator, values []Option[bool]) arrow.Array {
	b := array.NewBooleanBuilder(mem)
	defer b.Release()
	b.Reserve(len(values))
	for _, v := range values {
		if t, ok := v.Get(); ok {
			b.Append(t)
		} else {
			b.AppendNull()
		}
	}
	return b.NewArray()
}

type bytesConverter struct{}

func (bytesConverter) DataType() arrow.DataType { return arrow.BinaryTypes.Binary }

func (bytesConverter) Bind(col arrow.Array) (func(int) Option[[]byte], error) {
	arr, ok := col.(*array.Binary)
	if !ok {
		return nil, typeMismatch(arrow.BinaryTypes.Binary, col)
	}
	return func(row int) Option[[]byte] {
		if arr.IsNull(row) {
			return None[[]byte]()
		}
		return Some(arr.Value(row))
	}, nil
}

func (bytesConverter) Write(mem memory.Allocator, values []Option[[]byte]) arrow.Array {
	b := array.NewBinaryBuilder(mem, arrow.BinaryTypes.Binary)
	defer b.Release()
	b.Reserve(len(values))
	for _, v := range values {
		if data, ok := v.Get(); ok {
			b.Append(data)
		} else {
			b.AppendNull()
		}
	}
	return b.NewArray()
}

// Nullable adapts a converter so the registered function sees nulls
// explicitly instead of having them short-circuit the row. Reading never
// yields top-level absence: a null element becomes Some(None) and a present
// element becomes Some(Some(v)). Writing flattens Some(None) and None to a
// null element.
func Nullable[T any](inner Converter[T]) Converter[Option[T]] {
	return nullableConverter[T]{inner: inner}
}

type nullableConverter[T any] struct {
	inner Converter[T]
}

func (c nullableConverter[T]) DataType() arrow.DataType { return c.inner.DataType() }

func (c nullableConverter[T]) Bind(col arrow.Array) (func(int) Option[Option[T]], error) {
	read, err := c.inner.Bind(col)
	if err != nil {
		return nil, err
	}
	return func(row int) Option[Option[T]] {
		return Some(read(row))
	}, nil
}

func (c nullableConverter[T]) Write(mem memory.Allocator, values []Option[Option[T]]) arrow.Array {
	flat := make([]Option[T], len(values))
	for i, v := range values {
		flat[i] = flatten(v)
	}
	return c.inner.Write(mem, flat)
}
