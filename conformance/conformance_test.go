// SPDX-License-Identifier: Apache-2.0

package conformance

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/stretchr/testify/require"

	"github.com/quarrydata/athena-udf-go/athenaudf"
)

func newHandler(t *testing.T) *athenaudf.Handler {
	t.Helper()
	r := athenaudf.NewRegistry()
	RegisterFunctions(r)
	return athenaudf.NewHandler(r)
}

func stringBatch(values []*string) arrow.Record {
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
		{Name: "input", Type: arrow.BinaryTypes.String, Nullable: true},
	}, nil)
	return array.NewRecord(schema, []arrow.Array{col}, int64(len(values)))
}

func ptr(s string) *string { return &s }

func invokeStrings(t *testing.T, method string, values []*string) []*string {
	t.Helper()
	h := newHandler(t)

	batch := stringBatch(values)
	defer batch.Release()

	payload, err := BuildUDFRequest(method, "conf", []arrow.Record{batch},
		OutputSchema("result", arrow.BinaryTypes.String))
	require.NoError(t, err)

	raw, err := h.Handle(context.Background(), payload)
	require.NoError(t, err)

	var resp athenaudf.UDFResponse
	require.NoError(t, json.Unmarshal(raw, &resp))
	require.Equal(t, "conf", resp.Records.AID)

	decoded, err := athenaudf.DecodeBatches(resp.Records.Schema, resp.Records.Records)
	require.NoError(t, err)
	defer athenaudf.ReleaseAll(decoded)
	require.Len(t, decoded, 1)

	arr := decoded[0].Column(0).(*array.String)
	out := make([]*string, arr.Len())
	for i := 0; i < arr.Len(); i++ {
		if !arr.IsNull(i) {
			v := arr.Value(i)
			out[i] = &v
		}
	}
	return out
}

func TestEchoString(t *testing.T) {
	got := invokeStrings(t, "echo_string", []*string{ptr("a"), nil, ptr("b")})
	require.Equal(t, "a", *got[0])
	require.Nil(t, got[1])
	require.Equal(t, "b", *got[2])
}

func TestReverseString(t *testing.T) {
	got := invokeStrings(t, "reverse_string", []*string{ptr("abc"), ptr("héllo")})
	require.Equal(t, "cba", *got[0])
	require.Equal(t, "olléh", *got[1]) // rune-wise, not byte-wise
}

func TestNullToEmptySeesNulls(t *testing.T) {
	got := invokeStrings(t, "null_to_empty", []*string{ptr("x"), nil})
	require.Equal(t, "x", *got[0])
	require.NotNil(t, got[1]) // the null row was handled, not skipped
	require.Equal(t, "", *got[1])
}

func TestRejectEmptyProducesNulls(t *testing.T) {
	got := invokeStrings(t, "reject_empty", []*string{ptr(""), ptr("keep")})
	require.Nil(t, got[0])
	require.Equal(t, "keep", *got[1])
}

func TestBuildPingRequestRoundTrip(t *testing.T) {
	h := newHandler(t)
	payload, err := BuildPingRequest("cat", "query-9")
	require.NoError(t, err)

	raw, err := h.Handle(context.Background(), payload)
	require.NoError(t, err)

	var resp athenaudf.PingResponse
	require.NoError(t, json.Unmarshal(raw, &resp))
	require.Equal(t, "cat", *resp.CatalogName)
	require.Equal(t, "query-9", *resp.QueryID)
	require.Equal(t, uint64(23), resp.Capabilities)
}

func TestWrapHTTPRoundTrip(t *testing.T) {
	h := newHandler(t)
	payload, err := BuildPingRequest("cat", "q")
	require.NoError(t, err)
	wrapped, err := WrapHTTP(payload)
	require.NoError(t, err)

	raw, err := h.Handle(context.Background(), wrapped)
	require.NoError(t, err)

	var env struct {
		StatusCode int    `json:"statusCode"`
		Body       string `json:"body"`
	}
	require.NoError(t, json.Unmarshal(raw, &env))
	require.Equal(t, 200, env.StatusCode)

	var resp athenaudf.PingResponse
	require.NoError(t, json.Unmarshal([]byte(env.Body), &resp))
	require.Equal(t, "cat", *resp.CatalogName)
}

func TestSumAcrossArities(t *testing.T) {
	h := newHandler(t)
	mem := memory.NewGoAllocator()

	for _, tc := range []struct {
		method string
		cols   int
		want   int64
	}{
		{"add_bigints", 2, 2},
		{"sum5", 5, 5},
		{"sum6", 6, 6},
	} {
		fields := make([]arrow.Field, tc.cols)
		arrays := make([]arrow.Array, tc.cols)
		for i := range fields {
			b := array.NewInt64Builder(mem)
			b.Append(1)
			arrays[i] = b.NewArray()
			b.Release()
			fields[i] = arrow.Field{Name: string(rune('a' + i)), Type: arrow.PrimitiveTypes.Int64, Nullable: true}
		}
		batch := array.NewRecord(arrow.NewSchema(fields, nil), arrays, 1)
		for _, a := range arrays {
			a.Release()
		}

		payload, err := BuildUDFRequest(tc.method, "t", []arrow.Record{batch},
			OutputSchema("total", arrow.PrimitiveTypes.Int64))
		batch.Release()
		require.NoError(t, err, tc.method)

		raw, err := h.Handle(context.Background(), payload)
		require.NoError(t, err, tc.method)

		var resp athenaudf.UDFResponse
		require.NoError(t, json.Unmarshal(raw, &resp))
		decoded, err := athenaudf.DecodeBatches(resp.Records.Schema, resp.Records.Records)
		require.NoError(t, err, tc.method)
		require.Equal(t, tc.want, decoded[0].Column(0).(*array.Int64).Value(0), tc.method)
		athenaudf.ReleaseAll(decoded)
	}
}
