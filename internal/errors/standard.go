// Package errors provides standardized error values for the Diesel compiler
package errors

import (
	"fmt"
	"runtime"
)

// ErrorCategory represents different categories of errors
type ErrorCategory string

const (
	CategoryContract   ErrorCategory = "CONTRACT"
	CategorySymbol     ErrorCategory = "SYMBOL"
	CategoryValidation ErrorCategory = "VALIDATION"
	CategoryFormat     ErrorCategory = "FORMAT"
)

// StandardError provides a consistent error format
type StandardError struct {
	Category ErrorCategory
	Code     string
	Message  string
	Context  map[string]interface{}
	Caller   string
}

// Error implements the error interface
func (e *StandardError) Error() string {
	return fmt.Sprintf("[%s:%s] %s (caller: %s)", e.Category, e.Code, e.Message, e.Caller)
}

// Is reports whether target is a *StandardError with the same category and code.
// This lets callers match with errors.Is against the sentinel constructors below.
func (e *StandardError) Is(target error) bool {
	t, ok := target.(*StandardError)
	if !ok {
		return false
	}
	return t.Category == e.Category && t.Code == e.Code
}

// NewStandardError creates a new standardized error
func NewStandardError(category ErrorCategory, code, message string, context map[string]interface{}) *StandardError {
	pc, _, _, ok := runtime.Caller(2)
	caller := "unknown"
	if ok {
		if fn := runtime.FuncForPC(pc); fn != nil {
			caller = fn.Name()
		}
	}

	return &StandardError{
		Category: category,
		Code:     code,
		Message:  message,
		Context:  context,
		Caller:   caller,
	}
}

// Codes used across packages.
const (
	CodeAbstractOptimize = "ABSTRACT_OPTIMIZE"
	CodeMissingChild     = "MISSING_CHILD"
	CodeUnknownSymbol    = "UNKNOWN_SYMBOL"
	CodeDuplicateSymbol  = "DUPLICATE_SYMBOL"
	CodeBadVersion       = "BAD_VERSION"
	CodeBadNode          = "BAD_NODE"
)

// AbstractOptimize reports an attempt to optimize a node kind that must never
// be present as a concrete node in a well-formed tree.
func AbstractOptimize(kind string) *StandardError {
	return NewStandardError(CategoryContract, CodeAbstractOptimize,
		fmt.Sprintf("Trying to optimize abstract class %s.", kind),
		map[string]interface{}{"kind": kind})
}

// MissingChild reports a node whose mandatory child is nil.
func MissingChild(kind, child string) *StandardError {
	return NewStandardError(CategoryContract, CodeMissingChild,
		fmt.Sprintf("%s node has no %s", kind, child),
		map[string]interface{}{"kind": kind, "child": child})
}

func UnknownSymbol(index int) *StandardError {
	return NewStandardError(CategorySymbol, CodeUnknownSymbol,
		fmt.Sprintf("Symbol index %d is not in the symbol table", index),
		map[string]interface{}{"index": index})
}

func DuplicateSymbol(name string) *StandardError {
	return NewStandardError(CategorySymbol, CodeDuplicateSymbol,
		fmt.Sprintf("Symbol %q is already declared", name),
		map[string]interface{}{"name": name})
}

func BadVersion(version, constraint string) *StandardError {
	return NewStandardError(CategoryFormat, CodeBadVersion,
		fmt.Sprintf("Format version %q does not satisfy %s", version, constraint),
		map[string]interface{}{"version": version, "constraint": constraint})
}

func BadNode(where, details string) *StandardError {
	return NewStandardError(CategoryValidation, CodeBadNode,
		fmt.Sprintf("Invalid node at %s: %s", where, details),
		map[string]interface{}{"where": where, "details": details})
}
