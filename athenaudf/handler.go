// SPDX-License-Identifier: Apache-2.0

package athenaudf

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/apache/arrow-go/v18/arrow"
)

// Handler dispatches Athena requests against a function registry. It is the
// value wired into lambda.Start (or any other JSON-in/JSON-out harness) via
// its Handle method.
type Handler struct {
	registry   *Registry
	sourceType string
	hook       DispatchHook
}

// NewHandler creates a handler serving the given registry.
func NewHandler(registry *Registry) *Handler {
	if registry == nil {
		panic("athenaudf: NewHandler called with a nil registry")
	}
	return &Handler{
		registry:   registry,
		sourceType: DefaultSourceType,
	}
}

// SetSourceType overrides the sourceType reported in ping responses.
func (h *Handler) SetSourceType(sourceType string) {
	h.sourceType = sourceType
}

// SetDispatchHook registers a hook that is called around each dispatch.
func (h *Handler) SetDispatchHook(hook DispatchHook) {
	h.hook = hook
}

// Handle processes one raw invocation payload and returns the raw response,
// wrapped the same way the request arrived. An error return means the
// request could not be served; the harness surfaces it to the engine.
func (h *Handler) Handle(ctx context.Context, payload json.RawMessage) (json.RawMessage, error) {
	inner, transport, err := ParseRequest(payload)
	if err != nil {
		return nil, err
	}
	kind, err := requestType(inner)
	if err != nil {
		return nil, err
	}

	switch kind {
	case requestTypePing:
		return h.handlePing(ctx, inner, transport)
	case requestTypeUDF:
		return h.handleInvoke(ctx, inner, transport)
	default:
		return nil, newError(CodeUnknownRequestType, "unknown request type %q", kind)
	}
}

func (h *Handler) handlePing(ctx context.Context, payload json.RawMessage, transport Transport) (json.RawMessage, error) {
	req, err := decodePingRequest(payload)
	if err != nil {
		return nil, err
	}

	info := DispatchInfo{Kind: DispatchKindPing, Transport: transport}
	if req.QueryID != nil {
		info.QueryID = *req.QueryID
	}
	ctx, token, hookActive := h.hookStart(ctx, info)

	serde := uint64(SerdeVersion)
	resp := &PingResponse{
		ResponseType: responseTypePing,
		CatalogName:  req.CatalogName,
		QueryID:      req.QueryID,
		SourceType:   h.sourceType,
		Capabilities: Capabilities,
		SerdeVersion: &serde,
	}
	slog.DebugContext(ctx, "ping", "transport", transport.String(), "queryId", info.QueryID)

	if hookActive {
		h.hookEnd(ctx, token, info, &CallStatistics{}, nil)
	}
	return WrapResponse(resp, transport)
}

func (h *Handler) handleInvoke(ctx context.Context, payload json.RawMessage, transport Transport) (json.RawMessage, error) {
	req, err := decodeUDFRequest(payload)
	if err != nil {
		return nil, err
	}

	info := DispatchInfo{Kind: DispatchKindInvoke, Method: req.MethodName, Transport: transport}
	ctx, token, hookActive := h.hookStart(ctx, info)
	stats := &CallStatistics{}

	resp, invokeErr := h.invoke(ctx, req, stats)

	if hookActive {
		h.hookEnd(ctx, token, info, stats, invokeErr)
	}
	if invokeErr != nil {
		slog.ErrorContext(ctx, "invocation failed",
			"method", req.MethodName, "transport", transport.String(), "err", invokeErr)
		return nil, invokeErr
	}
	return WrapResponse(resp, transport)
}

// invoke runs the requested function over every input batch. The first
// failing batch aborts the invocation; no partial responses are produced.
func (h *Handler) invoke(ctx context.Context, req *UDFRequest, stats *CallStatistics) (*UDFResponse, error) {
	if !h.registry.Has(req.MethodName) {
		return nil, newError(CodeUnknownFunction,
			"unknown function %q, registered: %v", req.MethodName, h.registry.Names())
	}

	outputSchema, err := req.DeclaredOutputSchema()
	if err != nil {
		return nil, err
	}
	if outputSchema.NumFields() == 0 {
		return nil, newError(CodeDecodeError, "output schema declares no fields")
	}
	outputField := outputSchema.Field(0).Name

	inputs, err := req.InputBatches()
	if err != nil {
		return nil, err
	}
	defer ReleaseAll(inputs)

	outputs := make([]arrow.Record, 0, len(inputs))
	defer func() {
		for _, out := range outputs {
			out.Release()
		}
	}()
	for _, batch := range inputs {
		stats.RecordInput(batch.NumRows(), batchBufferSize(batch))
		out, err := h.registry.Apply(req.MethodName, batch, outputField)
		if err != nil {
			return nil, err
		}
		outputs = append(outputs, out)
		stats.RecordOutput(out.NumRows(), batchBufferSize(out))
	}

	slog.DebugContext(ctx, "invoked",
		"method", req.MethodName,
		"batches", stats.InputBatches,
		"rows", stats.InputRows)

	return NewUDFResponse(req.MethodName, req.InputRecords.AID, outputSchema, outputs)
}

// Hook callpoints are panic-safe: a misbehaving hook must never take down
// request handling.

func (h *Handler) hookStart(ctx context.Context, info DispatchInfo) (context.Context, HookToken, bool) {
	if h.hook == nil {
		return ctx, nil, false
	}
	var token HookToken
	active := false
	func() {
		defer func() {
			if rv := recover(); rv != nil {
				slog.Error("dispatch hook start panic", "err", rv)
			}
		}()
		hookCtx, t := h.hook.OnDispatchStart(ctx, info)
		if hookCtx != nil {
			ctx = hookCtx
		}
		token = t
		active = true
	}()
	return ctx, token, active
}

func (h *Handler) hookEnd(ctx context.Context, token HookToken, info DispatchInfo, stats *CallStatistics, err error) {
	func() {
		defer func() {
			if rv := recover(); rv != nil {
				slog.Error("dispatch hook end panic", "err", rv)
			}
		}()
		h.hook.OnDispatchEnd(ctx, token, info, stats, err)
	}()
}
