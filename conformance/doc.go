// SPDX-License-Identifier: Apache-2.0

// Package conformance provides a reference function registry and request
// builders used to exercise the full handler surface: every supported column
// type, every arity, null propagation, and nullable-aware functions. The
// companion command under cmd/athena-udf-conformance-go serves the registry
// over stdio so external harnesses can drive it.
package conformance
