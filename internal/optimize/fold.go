package optimize

import (
	"github.com/diesel-lang/diesel/internal/ast"
	"github.com/diesel-lang/diesel/internal/diagnostic"
	"github.com/diesel-lang/diesel/internal/symtab"
)

// IsFoldableBinary reports whether node is a binary operation that
// FoldConstants handles: add, sub, or, and, mult, divide, idiv or mod.
// Relations are folded by FoldRelation.
func IsFoldableBinary(node ast.Expression) bool {
	b, ok := ast.AsBinary(node)
	return ok && b.Op.IsOperation()
}

// outcome of one fold attempt.
type outcome int

const (
	notConstant outcome = iota // an operand is not a compile-time constant
	folded
	rejected // operands are constant but the operation cannot be evaluated
)

// FoldConstants evaluates a binary operation whose operands are both
// constants and returns the literal that replaces it. It returns nil and
// false when expr is not a foldable operation, when an operand is not
// constant, or when the operation is rejected; in the last case a
// diagnostic has been reported.
func (o *Optimizer) FoldConstants(expr ast.Expression) (ast.Expression, bool) {
	if !IsFoldableBinary(expr) {
		return nil, false
	}
	b, _ := ast.AsBinary(expr)
	lit, res := o.foldOperation(b, o.diags)
	return lit, res == folded
}

// FoldRelation evaluates a comparison of two constants to the integer
// literal 1 or 0.
func (o *Optimizer) FoldRelation(expr ast.Expression) (ast.Expression, bool) {
	b, ok := ast.AsBinary(expr)
	if !ok || !b.Op.IsRelation() {
		return nil, false
	}
	lit, res := o.foldRelation(b, o.diags)
	return lit, res == folded
}

// constant is a resolved operand. Integers are also available widened.
type constant struct {
	i int64
	r float64
}

// resolve returns the value of e if it is a literal or a constant
// identifier of e's own type.
func (o *Optimizer) resolve(e ast.Expression) (constant, bool) {
	switch e.ExprType() {
	case symtab.IntegerType:
		if lit, ok := ast.AsInteger(e); ok {
			return constant{i: lit.Value, r: float64(lit.Value)}, true
		}
		if sym, ok := o.constantSymbol(e); ok {
			return constant{i: sym.Value.Int, r: float64(sym.Value.Int)}, true
		}
	case symtab.RealType:
		if lit, ok := ast.AsReal(e); ok {
			return constant{r: lit.Value}, true
		}
		if sym, ok := o.constantSymbol(e); ok {
			return constant{r: sym.Value.Real}, true
		}
	}
	return constant{}, false
}

func (o *Optimizer) constantSymbol(e ast.Expression) (*symtab.Symbol, bool) {
	id, ok := ast.AsId(e)
	if !ok || o.syms == nil {
		return nil, false
	}
	sym, err := o.syms.Get(id.Sym)
	if err != nil {
		o.logger.Debug("identifier %s at %s: %v", id.Name, id.At, err)
		return nil, false
	}
	if !sym.IsConstant() {
		return nil, false
	}
	return sym, true
}

func bothInteger(b *ast.Binary) bool {
	return b.Left.ExprType() == symtab.IntegerType && b.Right.ExprType() == symtab.IntegerType
}

func (o *Optimizer) foldOperation(b *ast.Binary, diags diagnostic.Reporter) (ast.Expression, outcome) {
	left, ok := o.resolve(b.Left)
	if !ok {
		return nil, notConstant
	}
	right, ok := o.resolve(b.Right)
	if !ok {
		return nil, notConstant
	}

	if bothInteger(b) {
		return o.foldIntegers(b, left.i, right.i, diags)
	}
	return o.foldReals(b, left.r, right.r, diags)
}

func (o *Optimizer) foldIntegers(b *ast.Binary, l, r int64, diags diagnostic.Reporter) (ast.Expression, outcome) {
	switch b.Op {
	case ast.TagDivide, ast.TagIDiv, ast.TagMod:
		if r == 0 {
			if o.policy == DiagnoseZeroDivisor {
				diags.Report(diagnostic.DivisionByZero(b.At, b.Op.Operator()))
			}
			return nil, rejected
		}
	}

	var v int64
	switch b.Op {
	case ast.TagAdd:
		v = l + r
	case ast.TagSub:
		v = l - r
	case ast.TagMult:
		v = l * r
	case ast.TagDivide:
		return &ast.Real{At: b.At, Value: float64(l) / float64(r)}, folded
	case ast.TagIDiv:
		v = l / r
	case ast.TagMod:
		v = l % r
	case ast.TagOr:
		v = truth(l != 0 || r != 0)
	case ast.TagAnd:
		v = truth(l != 0 && r != 0)
	default:
		diags.Report(diagnostic.UnexpectedOperator(b.At, b.Op.String()))
		return nil, rejected
	}
	return &ast.Integer{At: b.At, Value: v}, folded
}

func (o *Optimizer) foldReals(b *ast.Binary, l, r float64, diags diagnostic.Reporter) (ast.Expression, outcome) {
	var v float64
	switch b.Op {
	case ast.TagAdd:
		v = l + r
	case ast.TagSub:
		v = l - r
	case ast.TagMult:
		v = l * r
	case ast.TagDivide:
		v = l / r
	case ast.TagOr, ast.TagAnd, ast.TagMod, ast.TagIDiv:
		diags.Report(diagnostic.InvalidRealOperation(b.At, b.Op.Operator()))
		return nil, rejected
	default:
		diags.Report(diagnostic.UnexpectedOperator(b.At, b.Op.String()))
		return nil, rejected
	}
	return &ast.Real{At: b.At, Value: v}, folded
}

func (o *Optimizer) foldRelation(b *ast.Binary, diags diagnostic.Reporter) (ast.Expression, outcome) {
	left, ok := o.resolve(b.Left)
	if !ok {
		return nil, notConstant
	}
	right, ok := o.resolve(b.Right)
	if !ok {
		return nil, notConstant
	}

	var cmp int
	if bothInteger(b) {
		cmp = compare(left.i, right.i)
	} else {
		// NaN compares unequal to everything, including itself.
		if left.r != left.r || right.r != right.r {
			return &ast.Integer{At: b.At, Value: truth(b.Op == ast.TagNotEqual)}, folded
		}
		cmp = compare(left.r, right.r)
	}

	var v bool
	switch b.Op {
	case ast.TagEqual:
		v = cmp == 0
	case ast.TagNotEqual:
		v = cmp != 0
	case ast.TagLessThan:
		v = cmp < 0
	case ast.TagGreaterThan:
		v = cmp > 0
	default:
		diags.Report(diagnostic.UnexpectedOperator(b.At, b.Op.String()))
		return nil, rejected
	}
	return &ast.Integer{At: b.At, Value: truth(v)}, folded
}

func compare[T int64 | float64](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func truth(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
