// SPDX-License-Identifier: Apache-2.0

// Package athenaudf implements the AWS Athena user-defined-function
// protocol for Go Lambda handlers.
//
// Athena invokes a UDF Lambda with a JSON payload carrying columnar input
// data as base64-encoded Apache Arrow IPC streams. The package decodes the
// payload, applies a registered scalar function row by row against each
// input batch, and encodes the results back into the same wire shape.
//
// # Registering functions
//
// Functions are collected in a [Registry] built once at process start and
// never mutated afterwards. Registration is typed: each arity from one to
// six inputs has its own generic registration function taking one
// [Converter] per input position plus one for the result.
//
//	reg := athenaudf.NewRegistry()
//	athenaudf.Unary(reg, "to_upper", athenaudf.Utf8, athenaudf.Utf8, strings.ToUpper)
//	athenaudf.Binary(reg, "add", athenaudf.Int64, athenaudf.Int64, athenaudf.Int64,
//		func(a, b int64) int64 { return a + b })
//
//	handler := athenaudf.NewHandler(reg)
//	lambda.Start(handler.Handle)
//
// # Null handling
//
// A function registered with plain converters never sees a null: if any
// input is null at a row, the output is null at that row and the function
// is not called. Wrapping a position with [Nullable] opts that position out
// of the shortcut, delivering nulls as explicit [Option] values:
//
//	athenaudf.Unary(reg, "coalesce_empty",
//		athenaudf.Nullable(athenaudf.Utf8), athenaudf.Utf8,
//		func(s athenaudf.Option[string]) string {
//			v, ok := s.Get()
//			if !ok {
//				return ""
//			}
//			return v
//		})
//
// A [Nullable] output converter likewise lets the function return absence
// for a row whose inputs were all present.
//
// # Transports
//
// Athena reaches the Lambda either directly or through a function URL. The
// handler detects the HTTP wrapping on the way in and mirrors it on the way
// out; callers only ever deal with raw JSON payloads.
package athenaudf
