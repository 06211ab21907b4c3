// Package errors defines the error codes and error types reported by the
// sfzkit document model and its consumers.
package errors

import (
	"fmt"
	"strings"
)

// ErrorCode identifies a class of SFZ processing error.
type ErrorCode string

const (
	// ErrParse indicates the source text could not be scanned.
	ErrParse ErrorCode = "sfz-parse-error"
	// ErrOpcodeOutsideHeader indicates an opcode appeared before any header.
	ErrOpcodeOutsideHeader ErrorCode = "sfz-opcode-outside-header"
	// ErrCurvePointOutsideHeader indicates a curve point appeared before any header.
	ErrCurvePointOutsideHeader ErrorCode = "sfz-curve-point-outside-header"
	// ErrUnknownHeader indicates a header tag with no known variant.
	ErrUnknownHeader ErrorCode = "sfz-unknown-header"
	// ErrUnresolvedOpcode indicates an opcode name with no schema definition.
	// This is a soft diagnostic, not a processing failure.
	ErrUnresolvedOpcode ErrorCode = "sfz-unresolved-opcode"
	// ErrEmptyTriggerQuery indicates a trigger-match query with no criteria.
	ErrEmptyTriggerQuery ErrorCode = "sfz-empty-trigger-query"
	// ErrSampleProbe indicates a sample file's properties could not be read.
	ErrSampleProbe ErrorCode = "sfz-sample-probe-error"
)

// Structure describes a document structure violation found while building
// the tree, with line/column context from the source.
type Structure struct {
	Code    ErrorCode
	Message string
	Line    int
	Column  int
}

// NewStructure creates a structure error with position context.
func NewStructure(code ErrorCode, message string, line, column int) *Structure {
	return &Structure{Code: code, Message: message, Line: line, Column: column}
}

func (e *Structure) Error() string {
	var sb strings.Builder
	sb.WriteString(string(e.Code))
	if e.Line > 0 {
		fmt.Fprintf(&sb, " at %d:%d", e.Line, e.Column)
	}
	sb.WriteString(": ")
	sb.WriteString(e.Message)
	return sb.String()
}

// InvalidQuery describes a malformed consumer query, such as a trigger-match
// test that constrains no axis at all.
type InvalidQuery struct {
	Code    ErrorCode
	Message string
}

// NewInvalidQuery creates an invalid query error.
func NewInvalidQuery(code ErrorCode, message string) *InvalidQuery {
	return &InvalidQuery{Code: code, Message: message}
}

func (e *InvalidQuery) Error() string {
	return string(e.Code) + ": " + e.Message
}

// Probe describes a sample file whose encoding could not be read.
type Probe struct {
	Path    string
	Message string
}

// NewProbe creates a sample probe error.
func NewProbe(path, message string) *Probe {
	return &Probe{Path: path, Message: message}
}

func (e *Probe) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrSampleProbe, e.Path, e.Message)
}

// Parse describes a scanning failure with source position context.
type Parse struct {
	Path    string
	Line    int
	Column  int
	Message string
}

func (e *Parse) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s at %d:%d: %s", ErrParse, e.Line, e.Column, e.Message)
	}
	return fmt.Sprintf("%s in %s at %d:%d: %s", ErrParse, e.Path, e.Line, e.Column, e.Message)
}
