// SPDX-License-Identifier: Apache-2.0

package benchmark

import (
	"context"
	"testing"

	"github.com/apache/arrow-go/v18/arrow"

	"github.com/quarrydata/athena-udf-go/athenaudf"
	"github.com/quarrydata/athena-udf-go/conformance"
)

func benchmarkInvoke(b *testing.B, rows int) {
	handler := athenaudf.NewHandler(NewRegistry())
	payload, err := BuildUpperRequest(rows)
	if err != nil {
		b.Fatalf("building request: %v", err)
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := handler.Handle(context.Background(), payload); err != nil {
			b.Fatalf("handle: %v", err)
		}
	}
}

func BenchmarkInvoke100(b *testing.B)   { benchmarkInvoke(b, 100) }
func BenchmarkInvoke1000(b *testing.B)  { benchmarkInvoke(b, 1000) }
func BenchmarkInvoke10000(b *testing.B) { benchmarkInvoke(b, 10000) }

func BenchmarkPing(b *testing.B) {
	handler := athenaudf.NewHandler(NewRegistry())
	payload, err := conformance.BuildPingRequest("catalog", "query")
	if err != nil {
		b.Fatalf("building request: %v", err)
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := handler.Handle(context.Background(), payload); err != nil {
			b.Fatalf("handle: %v", err)
		}
	}
}

func BenchmarkCodecRoundTrip(b *testing.B) {
	batch := BuildStringBatch(1000)
	defer batch.Release()
	schemaBuf, err := athenaudf.EncodeSchema(batch.Schema())
	if err != nil {
		b.Fatalf("encode schema: %v", err)
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		recordsBuf, err := athenaudf.EncodeBatches([]arrow.Record{batch})
		if err != nil {
			b.Fatalf("encode batches: %v", err)
		}
		decoded, err := athenaudf.DecodeBatches(schemaBuf, recordsBuf)
		if err != nil {
			b.Fatalf("decode batches: %v", err)
		}
		athenaudf.ReleaseAll(decoded)
	}
}
