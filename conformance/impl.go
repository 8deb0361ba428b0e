// SPDX-License-Identifier: Apache-2.0

package conformance

import (
	"strings"

	"github.com/quarrydata/athena-udf-go/athenaudf"
)

// RegisterFunctions registers the conformance function set on a registry.
func RegisterFunctions(r *athenaudf.Registry) {
	// Scalar echo functions, one per supported column type.
	athenaudf.Unary(r, "echo_string", athenaudf.Utf8, athenaudf.Utf8, func(v string) string { return v })
	athenaudf.Unary(r, "echo_bigint", athenaudf.Int64, athenaudf.Int64, func(v int64) int64 { return v })
	athenaudf.Unary(r, "echo_int", athenaudf.Int32, athenaudf.Int32, func(v int32) int32 { return v })
	athenaudf.Unary(r, "echo_double", athenaudf.Float64, athenaudf.Float64, func(v float64) float64 { return v })
	athenaudf.Unary(r, "echo_boolean", athenaudf.Boolean, athenaudf.Boolean, func(v bool) bool { return v })
	athenaudf.Unary(r, "echo_varbinary", athenaudf.Bytes, athenaudf.Bytes, func(v []byte) []byte { return v })

	// Simple transforms.
	athenaudf.Unary(r, "reverse_string", athenaudf.Utf8, athenaudf.Utf8, reverseString)
	athenaudf.Unary(r, "upper_string", athenaudf.Utf8, athenaudf.Utf8, strings.ToUpper)
	athenaudf.Unary(r, "string_length", athenaudf.Utf8, athenaudf.Int64, func(v string) int64 { return int64(len(v)) })
	athenaudf.Unary(r, "negate", athenaudf.Int64, athenaudf.Int64, func(v int64) int64 { return -v })

	// Type crossings.
	athenaudf.Unary(r, "widen_int", athenaudf.Int32, athenaudf.Int64, func(v int32) int64 { return int64(v) })
	athenaudf.Unary(r, "is_positive", athenaudf.Float64, athenaudf.Boolean, func(v float64) bool { return v > 0 })

	// Nullable-aware functions: the function sees nulls instead of the
	// engine short-circuiting the row.
	athenaudf.Unary(r, "null_to_empty",
		athenaudf.Nullable(athenaudf.Utf8), athenaudf.Utf8,
		func(v athenaudf.Option[string]) string {
			if s, ok := v.Get(); ok {
				return s
			}
			return ""
		})
	athenaudf.Unary(r, "reject_empty",
		athenaudf.Utf8, athenaudf.Nullable(athenaudf.Utf8),
		func(v string) athenaudf.Option[string] {
			if v == "" {
				return athenaudf.None[string]()
			}
			return athenaudf.Some(v)
		})

	// One function per arity above one.
	athenaudf.Binary(r, "add_bigints", athenaudf.Int64, athenaudf.Int64, athenaudf.Int64,
		func(a, b int64) int64 { return a + b })
	athenaudf.Ternary(r, "clamp_double",
		athenaudf.Float64, athenaudf.Float64, athenaudf.Float64, athenaudf.Float64,
		func(v, lo, hi float64) float64 {
			if v < lo {
				return lo
			}
			if v > hi {
				return hi
			}
			return v
		})
	athenaudf.Quaternary(r, "join4",
		athenaudf.Utf8, athenaudf.Utf8, athenaudf.Utf8, athenaudf.Utf8, athenaudf.Utf8,
		func(sep, a, b, c string) string { return strings.Join([]string{a, b, c}, sep) })
	athenaudf.Quinary(r, "sum5",
		athenaudf.Int64, athenaudf.Int64, athenaudf.Int64, athenaudf.Int64, athenaudf.Int64, athenaudf.Int64,
		func(a, b, c, d, e int64) int64 { return a + b + c + d + e })
	athenaudf.Senary(r, "sum6",
		athenaudf.Int64, athenaudf.Int64, athenaudf.Int64, athenaudf.Int64, athenaudf.Int64, athenaudf.Int64, athenaudf.Int64,
		func(a, b, c, d, e, f int64) int64 { return a + b + c + d + e + f })
}

func reverseString(v string) string {
	runes := []rune(v)
	for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
		runes[i], runes[j] = runes[j], runes[i]
	}
	return string(runes)
}
