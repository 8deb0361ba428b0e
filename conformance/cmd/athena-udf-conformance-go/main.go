// SPDX-License-Identifier: Apache-2.0

// Command athena-udf-conformance-go serves the conformance registry over
// stdio: one JSON request per input line, one JSON response per output line.
// A failed request produces an {"errorType": ..., "errorMessage": ...} line,
// matching the shape Lambda reports for handler errors.
//
// With --otel, dispatches are traced and metered to stderr through the
// OpenTelemetry stdout exporters.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/quarrydata/athena-udf-go/athenaudf"
	udfotel "github.com/quarrydata/athena-udf-go/athenaudf/otel"
	"github.com/quarrydata/athena-udf-go/conformance"
)

// maxLine bounds a single request line. Athena batches are capped well below
// this; the generous limit keeps synthetic stress inputs working.
const maxLine = 64 << 20

type errorReply struct {
	ErrorType    string `json:"errorType"`
	ErrorMessage string `json:"errorMessage"`
}

func main() {
	registry := athenaudf.NewRegistry()
	conformance.RegisterFunctions(registry)
	handler := athenaudf.NewHandler(registry)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	if len(os.Args) > 1 && os.Args[1] == "--otel" {
		shutdown, err := setupOtel(ctx, handler)
		if err != nil {
			fmt.Fprintf(os.Stderr, "otel setup failed: %v\n", err)
			os.Exit(1)
		}
		defer shutdown()
	}

	out := bufio.NewWriter(os.Stdout)
	defer out.Flush()

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 64*1024), maxLine)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		resp, err := handler.Handle(ctx, json.RawMessage(line))
		if err != nil {
			resp = marshalError(err)
		}
		out.Write(resp)
		out.WriteByte('\n')
		out.Flush()
	}
	if err := scanner.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "stdin read error: %v\n", err)
		os.Exit(1)
	}
}

func marshalError(err error) json.RawMessage {
	reply := errorReply{ErrorType: "HandlerError", ErrorMessage: err.Error()}
	var udfErr *athenaudf.Error
	if errors.As(err, &udfErr) {
		reply.ErrorType = string(udfErr.Code)
	}
	data, merr := json.Marshal(reply)
	if merr != nil {
		return json.RawMessage(`{"errorType":"HandlerError","errorMessage":"unserializable error"}`)
	}
	return data
}

// setupOtel installs stderr-bound trace and metric pipelines and instruments
// the handler. The returned function flushes and shuts the pipelines down.
func setupOtel(_ context.Context, handler *athenaudf.Handler) (func(), error) {
	traceExp, err := stdouttrace.New(stdouttrace.WithWriter(os.Stderr))
	if err != nil {
		return nil, fmt.Errorf("creating trace exporter: %w", err)
	}
	metricExp, err := stdoutmetric.New(stdoutmetric.WithWriter(os.Stderr))
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(traceExp))
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExp)))
	otel.SetTracerProvider(tp)
	otel.SetMeterProvider(mp)

	cfg := udfotel.DefaultConfig()
	cfg.TracerProvider = tp
	cfg.MeterProvider = mp
	udfotel.InstrumentHandler(handler, cfg)

	return func() {
		// Flush with a fresh context; the signal context is already
		// canceled by the time the deferred shutdown runs.
		ctx := context.Background()
		if err := tp.Shutdown(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "trace shutdown: %v\n", err)
		}
		if err := mp.Shutdown(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "metric shutdown: %v\n", err)
		}
	}, nil
}
