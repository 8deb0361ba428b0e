// SPDX-License-Identifier: Apache-2.0

package athenaudf

import (
	"context"

	"github.com/apache/arrow-go/v18/arrow"
)

// Dispatch kind constants for DispatchInfo.Kind.
const (
	DispatchKindPing   = "ping"
	DispatchKindInvoke = "invoke"
)

// DispatchHook provides observability callpoints around request dispatch.
// Implementations must be safe for concurrent use.
type DispatchHook interface {
	OnDispatchStart(ctx context.Context, info DispatchInfo) (context.Context, HookToken)
	OnDispatchEnd(ctx context.Context, token HookToken, info DispatchInfo, stats *CallStatistics, err error)
}

// HookToken is an opaque value returned by OnDispatchStart and passed back to
// OnDispatchEnd. Only meaningful to the DispatchHook that created it.
type HookToken interface{}

// DispatchInfo carries request metadata passed to hooks.
type DispatchInfo struct {
	Kind      string    // DispatchKindPing or DispatchKindInvoke
	Method    string    // function name, empty for pings
	QueryID   string    // engine query identifier, when present
	Transport Transport // how the request arrived
}

// CallStatistics holds per-invocation I/O counters.
type CallStatistics struct {
	InputBatches  int64
	OutputBatches int64
	InputRows     int64
	OutputRows    int64
	InputBytes    int64
	OutputBytes   int64
}

// RecordInput records one input batch with the given row count and buffer size.
func (s *CallStatistics) RecordInput(numRows, bufferBytes int64) {
	s.InputBatches++
	s.InputRows += numRows
	s.InputBytes += bufferBytes
}

// RecordOutput records one output batch with the given row count and buffer size.
func (s *CallStatistics) RecordOutput(numRows, bufferBytes int64) {
	s.OutputBatches++
	s.OutputRows += numRows
	s.OutputBytes += bufferBytes
}

// batchBufferSize returns the total top-level buffer size in bytes across all
// columns in a record batch.
func batchBufferSize(batch arrow.Record) int64 {
	var total int64
	for i := int64(0); i < batch.NumCols(); i++ {
		col := batch.Column(int(i))
		for _, buf := range col.Data().Buffers() {
			if buf != nil {
				total += int64(buf.Len())
			}
		}
	}
	return total
}
