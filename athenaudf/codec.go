// SPDX-License-Identifier: Apache-2.0

package athenaudf

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// endOfStream is the IPC end-of-stream marker: the 0xFFFFFFFF continuation
// bytes followed by a zero metadata length.
var endOfStream = [8]byte{0xFF, 0xFF, 0xFF, 0xFF, 0, 0, 0, 0}

// The wire protocol splits one logical IPC stream into two buffers: a
// schema buffer holding only the framed schema message, and a records
// buffer holding only the framed batch messages (each preceded by its
// dictionary messages, if any). The reader re-concatenates the two buffers
// and parses them as a single stream, so neither buffer may contain an
// end-of-stream marker and the records buffer must not repeat the schema.

// EncodeSchema serializes a schema as a single framed IPC message.
func EncodeSchema(schema *arrow.Schema) ([]byte, error) {
	var buf bytes.Buffer
	w := ipc.NewWriter(&buf, ipc.WithSchema(schema), ipc.WithAllocator(memory.NewGoAllocator()))
	if err := w.Close(); err != nil {
		return nil, wrapError(CodeEncodeError, err, "encoding schema")
	}
	return trimEndOfStream(buf.Bytes()), nil
}

// EncodeBatches serializes record batches as a sequence of framed IPC batch
// messages without a leading schema message. All batches must share one
// schema. Encoding zero batches yields an empty buffer; that is the wire
// representation of an empty result, not an error.
func EncodeBatches(batches []arrow.Record) ([]byte, error) {
	if len(batches) == 0 {
		return []byte{}, nil
	}

	schema := batches[0].Schema()
	var buf bytes.Buffer
	w := ipc.NewWriter(&buf, ipc.WithSchema(schema), ipc.WithAllocator(memory.NewGoAllocator()))
	for _, batch := range batches {
		if err := w.Write(batch); err != nil {
			return nil, wrapError(CodeEncodeError, err, "encoding batch")
		}
	}
	if err := w.Close(); err != nil {
		return nil, wrapError(CodeEncodeError, err, "closing batch stream")
	}

	header, err := EncodeSchema(schema)
	if err != nil {
		return nil, err
	}
	stream := trimEndOfStream(buf.Bytes())
	if !bytes.HasPrefix(stream, header) {
		return nil, newError(CodeEncodeError, "batch stream does not begin with its schema message")
	}
	return stream[len(header):], nil
}

// trimEndOfStream drops a trailing end-of-stream marker, if present.
func trimEndOfStream(stream []byte) []byte {
	if len(stream) >= len(endOfStream) && bytes.Equal(stream[len(stream)-len(endOfStream):], endOfStream[:]) {
		return stream[:len(stream)-len(endOfStream)]
	}
	return stream
}

// DecodeBatches parses the schema buffer immediately followed by the
// records buffer as one IPC stream and returns the contained batches.
// The caller owns the returned batches and must Release them.
func DecodeBatches(schemaBytes, recordBytes []byte) ([]arrow.Record, error) {
	combined := make([]byte, 0, len(schemaBytes)+len(recordBytes))
	combined = append(combined, schemaBytes...)
	combined = append(combined, recordBytes...)

	r, err := ipc.NewReader(bytes.NewReader(combined))
	if err != nil {
		return nil, wrapError(CodeDecodeError, err, "opening record stream")
	}
	defer r.Release()

	var batches []arrow.Record
	for r.Next() {
		rec := r.Record()
		rec.Retain() // keep alive after the reader is released
		batches = append(batches, rec)
	}
	// A stream assembled from the two buffers has no end-of-stream marker,
	// so a plain EOF is the normal termination.
	if err := r.Err(); err != nil && !errors.Is(err, io.EOF) {
		ReleaseAll(batches)
		return nil, wrapError(CodeDecodeError, err, "reading record stream")
	}
	return batches, nil
}

// DecodeSchema parses a schema buffer produced by EncodeSchema or any
// compliant IPC writer.
func DecodeSchema(schemaBytes []byte) (*arrow.Schema, error) {
	r, err := ipc.NewReader(bytes.NewReader(schemaBytes))
	if err != nil {
		return nil, wrapError(CodeDecodeError, err, "decoding schema")
	}
	defer r.Release()
	return r.Schema(), nil
}

// ReleaseAll releases every batch in the slice.
func ReleaseAll(batches []arrow.Record) {
	for _, b := range batches {
		b.Release()
	}
}

// Base64Bytes is a byte buffer carried through JSON as a standard
// base64-encoded string.
type Base64Bytes []byte

func (b Base64Bytes) MarshalJSON() ([]byte, error) {
	return json.Marshal(base64.StdEncoding.EncodeToString(b))
}

func (b *Base64Bytes) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return wrapError(CodeBase64Error, err, "base64 field is not a JSON string")
	}
	decoded, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return wrapError(CodeBase64Error, err, "invalid base64 payload")
	}
	*b = decoded
	return nil
}
