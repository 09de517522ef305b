package obwire

import (
	"fmt"
	"strings"

	"github.com/hugozhu/obclient/errors"
)

// Protocol version announced in the startup message.
const (
	protoVersionMajor uint16 = 3
	protoVersionMinor uint16 = 0
)

// Message tags. The naming buries the wire byte in the suffix so the reader
// can match a constant against captured traffic at a glance.
const (
	msgQueryQ           byte = 'Q'
	msgAuthResultR      byte = 'R'
	msgReadyForQueryZ   byte = 'Z'
	msgRowDescriptionT  byte = 'T'
	msgDataRowD         byte = 'D'
	msgCommandCompleteC byte = 'C'
	msgErrorResponseE   byte = 'E'
)

// authStatusOK is the auth-result payload value meaning no authentication
// is required. The target server accepts no other outcome.
const authStatusOK uint32 = 0

// rowDescriptionMetaLen is the fixed metadata following each column name:
// table OID, attribute number, type OID, type length, type modifier and
// format code groupings, none of which this client interprets.
const rowDescriptionMetaLen = 18

// Error report field codes commonly sent by the server.
const (
	errFieldSeverity byte = 'S'
	errFieldCode     byte = 'C'
	errFieldMessage  byte = 'M'
)

// ServerError is an error report ('E') sent by the server. It is a normal,
// expected outcome of query execution rather than a client defect; the
// connection remains usable after one is received.
type ServerError struct {
	Fields map[byte]string
}

// Error implements the error interface.
func (e *ServerError) Error() string {
	var b strings.Builder
	b.WriteString("server error")
	if sev, ok := e.Fields[errFieldSeverity]; ok {
		b.WriteString(": " + sev)
	}
	if code, ok := e.Fields[errFieldCode]; ok {
		fmt.Fprintf(&b, " (%s)", code)
	}
	if msg, ok := e.Fields[errFieldMessage]; ok {
		b.WriteString(": " + msg)
	}
	return b.String()
}

// Severity returns the 'S' field, if present.
func (e *ServerError) Severity() string { return e.Fields[errFieldSeverity] }

// Code returns the 'C' field, if present.
func (e *ServerError) Code() string { return e.Fields[errFieldCode] }

// Message returns the 'M' field, if present.
func (e *ServerError) Message() string { return e.Fields[errFieldMessage] }

// decodeRowDescription parses a 'T' payload into the ordered column names.
// The order matches the field order of the data rows that follow.
func decodeRowDescription(payload []byte) ([]string, error) {
	b := newReadBuffer(payload)
	count, err := b.getUint16()
	if err != nil {
		return nil, errors.Trace(err)
	}
	columns := make([]string, 0, count)
	for i := uint16(0); i < count; i++ {
		name, err := b.getString()
		if err != nil {
			return nil, errors.Trace(err)
		}
		if err := b.skip(rowDescriptionMetaLen); err != nil {
			return nil, errors.Trace(err)
		}
		columns = append(columns, name)
	}
	return columns, nil
}

// decodeDataRow parses a 'D' payload into the ordered field values.
// A field whose declared length is smaller than 1 is SQL NULL and decodes
// to a nil element, not an empty slice.
func decodeDataRow(payload []byte) ([][]byte, error) {
	b := newReadBuffer(payload)
	count, err := b.getUint16()
	if err != nil {
		return nil, errors.Trace(err)
	}
	row := make([][]byte, 0, count)
	for i := uint16(0); i < count; i++ {
		length, err := b.getInt32()
		if err != nil {
			return nil, errors.Trace(err)
		}
		if length < 1 {
			row = append(row, nil)
			continue
		}
		value, err := b.getBytes(int(length))
		if err != nil {
			return nil, errors.Trace(err)
		}
		row = append(row, value)
	}
	return row, nil
}

// decodeErrorReport parses an 'E' payload: null-terminated fields, each
// keyed by its first byte, ended by an empty field or the payload end.
func decodeErrorReport(payload []byte) (*ServerError, error) {
	b := newReadBuffer(payload)
	fields := make(map[byte]string)
	for b.remaining() > 0 {
		field, err := b.getString()
		if err != nil {
			return nil, errors.Trace(err)
		}
		if field == "" {
			break
		}
		fields[field[0]] = field[1:]
	}
	return &ServerError{Fields: fields}, nil
}
