package diagnostic

import (
	"fmt"

	"github.com/diesel-lang/diesel/internal/position"
)

// Codes reported while folding constants.
const (
	CodeInvalidRealOperation = "E3101"
	CodeDivisionByZero       = "E3102"
	CodeUnexpectedOperator   = "E3199"
)

// InvalidRealOperation reports an integer-only operator applied to a real operand.
func InvalidRealOperation(pos position.Position, op string) *Diagnostic {
	return NewDiagnostic().
		Error().
		Type().
		Code(CodeInvalidRealOperation).
		Title("Invalid operation").
		Message(fmt.Sprintf("%s is not defined for real operands", op)).
		At(pos).
		Tag("fold").
		Build()
}

// DivisionByZero reports a constant integer divisor of zero.
func DivisionByZero(pos position.Position, op string) *Diagnostic {
	return NewDiagnostic().
		Error().
		Type().
		Code(CodeDivisionByZero).
		Title("Division by zero").
		Message(fmt.Sprintf("right operand of %s is the constant 0", op)).
		At(pos).
		Tag("fold").
		Build()
}

// UnexpectedOperator reports a node that reached folding with a tag the folder
// does not know how to evaluate.
func UnexpectedOperator(pos position.Position, op string) *Diagnostic {
	return NewDiagnostic().
		Error().
		Internal().
		Code(CodeUnexpectedOperator).
		Title("Unexpected operator").
		Message(fmt.Sprintf("cannot fold %s", op)).
		At(pos).
		Build()
}
