// SPDX-License-Identifier: Apache-2.0

package athenaudf

import (
	"fmt"
	"sort"

	"github.com/apache/arrow-go/v18/arrow"
)

// Registry is the table of callable scalar functions. It is built once at
// process start and must not be mutated after the handler starts serving;
// read-only lookups are safe from concurrently running invocations.
type Registry struct {
	funcs map[string]*functionInfo
}

// functionInfo stores the registration details for one scalar function.
type functionInfo struct {
	Name  string
	Arity int
	apply applyFunc
}

// applyFunc runs the function over one batch, producing the single-column
// output batch named outputField.
type applyFunc func(batch arrow.Record, outputField string) (arrow.Record, error)

// NewRegistry creates an empty function registry.
func NewRegistry() *Registry {
	return &Registry{funcs: make(map[string]*functionInfo)}
}

func (r *Registry) register(name string, arity int, apply applyFunc) {
	if name == "" {
		panic("athenaudf: registering a function with an empty name")
	}
	if _, dup := r.funcs[name]; dup {
		panic(fmt.Sprintf("athenaudf: function %q registered twice", name))
	}
	r.funcs[name] = &functionInfo{Name: name, Arity: arity, apply: apply}
}

// Has reports whether a function is registered under name.
func (r *Registry) Has(name string) bool {
	_, ok := r.funcs[name]
	return ok
}

// Names returns the registered function names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.funcs))
	for name := range r.funcs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Apply runs the named function row by row over one input batch. The
// caller owns the returned batch and must Release it.
func (r *Registry) Apply(name string, batch arrow.Record, outputField string) (arrow.Record, error) {
	info, ok := r.funcs[name]
	if !ok {
		return nil, newError(CodeUnknownFunction, "unknown function %q, registered: %v", name, r.Names())
	}
	return info.apply(batch, outputField)
}

// Unary registers a one-input scalar function.
func Unary[I1, O any](r *Registry, name string, in1 Converter[I1], out Converter[O], fn func(I1) O) {
	r.register(name, 1, func(batch arrow.Record, outputField string) (arrow.Record, error) {
		read1, err := bindInput(batch, 0, in1)
		if err != nil {
			return nil, err
		}
		results := make([]Option[O], batch.NumRows())
		for row := range results {
			v1, ok := read1(row).Get()
			if !ok {
				continue
			}
			results[row] = Some(fn(v1))
		}
		return buildOutput(out, outputField, results), nil
	})
}

// Binary registers a two-input scalar function.
func Binary[I1, I2, O any](r *Registry, name string, in1 Converter[I1], in2 Converter[I2], out Converter[O], fn func(I1, I2) O) {
	r.register(name, 2, func(batch arrow.Record, outputField string) (arrow.Record, error) {
		read1, err := bindInput(batch, 0, in1)
		if err != nil {
			return nil, err
		}
		read2, err := bindInput(batch, 1, in2)
		if err != nil {
			return nil, err
		}
		results := make([]Option[O], batch.NumRows())
		for row := range results {
			v1, ok1 := read1(row).Get()
			v2, ok2 := read2(row).Get()
			if !ok1 || !ok2 {
				continue
			}
			results[row] = Some(fn(v1, v2))
		}
		return buildOutput(out, outputField, results), nil
	})
}

// Ternary registers a three-input scalar function.
func Ternary[I1, I2, I3, O any](r *Registry, name string, in1 Converter[I1], in2 Converter[I2], in3 Converter[I3], out Converter[O], fn func(I1, I2, I3) O) {
	r.register(name, 3, func(batch arrow.Record, outputField string) (arrow.Record, error) {
		read1, err := bindInput(batch, 0, in1)
		if err != nil {
			return nil, err
		}
		read2, err := bindInput(batch, 1, in2)
		if err != nil {
			return nil, err
		}
		read3, err := bindInput(batch, 2, in3)
		if err != nil {
			return nil, err
		}
		results := make([]Option[O], batch.NumRows())
		for row := range results {
			v1, ok1 := read1(row).Get()
			v2, ok2 := read2(row).Get()
			v3, ok3 := read3(row).Get()
			if !ok1 || !ok2 || !ok3 {
				continue
			}
			results[row] = Some(fn(v1, v2, v3))
		}
		return buildOutput(out, outputField, results), nil
	})
}

// Quaternary registers a four-input scalar function.
func Quaternary[I1, I2, I3, I4, O any](r *Registry, name string, in1 Converter[I1], in2 Converter[I2], in3 Converter[I3], in4 Converter[I4], out Converter[O], fn func(I1, I2, I3, I4) O) {
	r.register(name, 4, func(batch arrow.Record, outputField string) (arrow.Record, error) {
		read1, err := bindInput(batch, 0, in1)
		if err != nil {
			return nil, err
		}
		read2, err := bindInput(batch, 1, in2)
		if err != nil {
			return nil, err
		}
		read3, err := bindInput(batch, 2, in3)
		if err != nil {
			return nil, err
		}
		read4, err := bindInput(batch, 3, in4)
		if err != nil {
			return nil, err
		}
		results := make([]Option[O], batch.NumRows())
		for row := range results {
			v1, ok1 := read1(row).Get()
			v2, ok2 := read2(row).Get()
			v3, ok3 := read3(row).Get()
			v4, ok4 := read4(row).Get()
			if !ok1 || !ok2 || !ok3 || !ok4 {
				continue
			}
			results[row] = Some(fn(v1, v2, v3, v4))
		}
		return buildOutput(out, outputField, results), nil
	})
}

// Quinary registers a five-input scalar function.
func Quinary[I1, I2, I3, I4, I5, O any](r *Registry, name string, in1 Converter[I1], in2 Converter[I2], in3 Converter[I3], in4 Converter[I4], in5 Converter[I5], out Converter[O], fn func(I1, I2, I3, I4, I5) O) {
	r.register(name, 5, func(batch arrow.Record, outputField string) (arrow.Record, error) {
		read1, err := bindInput(batch, 0, in1)
		if err != nil {
			return nil, err
		}
		read2, err := bindInput(batch, 1, in2)
		if err != nil {
			return nil, err
		}
		read3, err := bindInput(batch, 2, in3)
		if err != nil {
			return nil, err
		}
		read4, err := bindInput(batch, 3, in4)
		if err != nil {
			return nil, err
		}
		read5, err := bindInput(batch, 4, in5)
		if err != nil {
			return nil, err
		}
		results := make([]Option[O], batch.NumRows())
		for row := range results {
			v1, ok1 := read1(row).Get()
			v2, ok2 := read2(row).Get()
			v3, ok3 := read3(row).Get()
			v4, ok4 := read4(row).Get()
			v5, ok5 := read5(row).Get()
			if !ok1 || !ok2 || !ok3 || !ok4 || !ok5 {
				continue
			}
			results[row] = Some(fn(v1, v2, v3, v4, v5))
		}
		return buildOutput(out, outputField, results), nil
	})
}

// Senary registers a six-input scalar function, the largest arity the
// engine dispatches.
func Senary[I1, I2, I3, I4, I5, I6, O any](r *Registry, name string, in1 Converter[I1], in2 Converter[I2], in3 Converter[I3], in4 Converter[I4], in5 Converter[I5], in6 Converter[I6], out Converter[O], fn func(I1, I2, I3, I4, I5, I6) O) {
	r.register(name, 6, func(batch arrow.Record, outputField string) (arrow.Record, error) {
		read1, err := bindInput(batch, 0, in1)
		if err != nil {
			return nil, err
		}
		read2, err := bindInput(batch, 1, in2)
		if err != nil {
			return nil, err
		}
		read3, err := bindInput(batch, 2, in3)
		if err != nil {
			return nil, err
		}
		read4, err := bindInput(batch, 3, in4)
		if err != nil {
			return nil, err
		}
		read5, err := bindInput(batch, 4, in5)
		if err != nil {
			return nil, err
		}
		read6, err := bindInput(batch, 5, in6)
		if err != nil {
			return nil, err
		}
		results := make([]Option[O], batch.NumRows())
		for row := range results {
			v1, ok1 := read1(row).Get()
			v2, ok2 := read2(row).Get()
			v3, ok3 := read3(row).Get()
			v4, ok4 := read4(row).Get()
			v5, ok5 := read5(row).Get()
			v6, ok6 := read6(row).Get()
			if !ok1 || !ok2 || !ok3 || !ok4 || !ok5 || !ok6 {
				continue
			}
			results[row] = Some(fn(v1, v2, v3, v4, v5, v6))
		}
		return buildOutput(out, outputField, results), nil
	})
}
