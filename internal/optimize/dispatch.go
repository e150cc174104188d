package optimize

import (
	"github.com/diesel-lang/diesel/internal/ast"
	"github.com/diesel-lang/diesel/internal/diagnostic"
	"github.com/diesel-lang/diesel/internal/errors"
)

// walker carries one pass over a tree. Statement slots that hold a value
// (assignment rhs, conditions, return value) and binary operands are
// folded after their own subtree has been optimized. Call arguments,
// unary operands and array indices are optimized but never replaced.
type walker struct {
	opt   *Optimizer
	stats Stats

	// rejected holds the nodes already rejected by an earlier pass of the
	// same pipeline. They are neither reported nor counted again.
	rejected map[*ast.Binary]struct{}
}

var _ ast.Visitor = (*walker)(nil)

func (w *walker) expr(e ast.Expression) {
	if e != nil {
		e.Accept(w)
	}
}

func (w *walker) stmts(l *ast.StmtList) {
	if l != nil {
		l.Accept(w)
	}
}

func (w *walker) args(l *ast.ExprList) {
	if l != nil {
		l.Accept(w)
	}
}

// fold returns the literal replacing e, or e itself.
func (w *walker) fold(e ast.Expression) ast.Expression {
	b, ok := ast.AsBinary(e)
	if !ok {
		return e
	}

	var diags diagnostic.Reporter = w.opt.diags
	_, seen := w.rejected[b]
	if seen {
		diags = nopReporter{}
	}

	var (
		lit ast.Expression
		res outcome
	)
	relation := b.Op.IsRelation()
	if relation {
		lit, res = w.opt.foldRelation(b, diags)
	} else {
		lit, res = w.opt.foldOperation(b, diags)
	}

	switch res {
	case folded:
		if relation {
			w.stats.RelationsFolded++
		} else {
			w.stats.ConstantsFolded++
		}
		return lit
	case rejected:
		if !seen {
			w.stats.FoldsRejected++
			if w.rejected != nil {
				w.rejected[b] = struct{}{}
			}
		}
	}
	return e
}

func require(kind, child string, present bool) {
	if !present {
		panic(errors.MissingChild(kind, child))
	}
}

// ===== Lists =====

func (w *walker) VisitStmtList(node *ast.StmtList) {
	w.stats.NodesVisited++
	if node.Preceding != nil {
		node.Preceding.Accept(w)
	}
	if node.Last != nil {
		node.Last.Accept(w)
	}
}

func (w *walker) VisitExprList(node *ast.ExprList) {
	w.stats.NodesVisited++
	if node.Preceding != nil {
		node.Preceding.Accept(w)
	}
	w.expr(node.Last)
}

func (w *walker) VisitElsifList(node *ast.ElsifList) {
	w.stats.NodesVisited++
	if node.Preceding != nil {
		node.Preceding.Accept(w)
	}
	if node.Last != nil {
		node.Last.Accept(w)
	}
}

// ===== Expressions =====

// VisitId leaves identifiers alone, constant or not.
func (w *walker) VisitId(node *ast.Id) {
	w.stats.NodesVisited++
}

func (w *walker) VisitIndexed(node *ast.Indexed) {
	w.stats.NodesVisited++
	require("indexed", "index", node.Index != nil)
	w.expr(node.Index)
}

func (w *walker) VisitInteger(node *ast.Integer) { w.stats.NodesVisited++ }
func (w *walker) VisitReal(node *ast.Real)       { w.stats.NodesVisited++ }

func (w *walker) VisitBinaryOperation(node *ast.BinaryOperation) {
	w.stats.NodesVisited++
	w.binary(&node.Binary)
}

func (w *walker) VisitBinaryRelation(node *ast.BinaryRelation) {
	w.stats.NodesVisited++
	w.binary(&node.Binary)
}

func (w *walker) binary(b *ast.Binary) {
	require(b.Op.String(), "left operand", b.Left != nil)
	require(b.Op.String(), "right operand", b.Right != nil)

	w.expr(b.Left)
	w.expr(b.Right)
	b.Left = w.fold(b.Left)
	b.Right = w.fold(b.Right)
}

func (w *walker) VisitUMinus(node *ast.UMinus) {
	w.stats.NodesVisited++
	require("uminus", "operand", node.Expr != nil)
	w.expr(node.Expr)
}

func (w *walker) VisitNot(node *ast.Not) {
	w.stats.NodesVisited++
	require("not", "operand", node.Expr != nil)
	w.expr(node.Expr)
}

// VisitCast does nothing. Casts are not folded and their operand is not
// visited.
func (w *walker) VisitCast(node *ast.Cast) {
	w.stats.NodesVisited++
}

func (w *walker) VisitFunctionCall(node *ast.FunctionCall) {
	w.stats.NodesVisited++
	w.args(node.Args)
}

// ===== Statements =====

func (w *walker) VisitProcedureCall(node *ast.ProcedureCall) {
	w.stats.NodesVisited++
	w.args(node.Args)
}

func (w *walker) VisitAssign(node *ast.Assign) {
	w.stats.NodesVisited++
	require("assign", "lhs", node.Lhs != nil)
	require("assign", "rhs", node.Rhs != nil)

	w.expr(node.Lhs)
	w.expr(node.Rhs)
	node.Rhs = w.fold(node.Rhs)
}

func (w *walker) VisitWhile(node *ast.While) {
	w.stats.NodesVisited++
	require("while", "condition", node.Condition != nil)

	w.expr(node.Condition)
	w.stmts(node.Body)
	node.Condition = w.fold(node.Condition)
}

func (w *walker) VisitIf(node *ast.If) {
	w.stats.NodesVisited++
	require("if", "condition", node.Condition != nil)

	w.expr(node.Condition)
	w.stmts(node.Body)
	node.Condition = w.fold(node.Condition)

	if node.Elsifs != nil {
		node.Elsifs.Accept(w)
	}
	w.stmts(node.Else)
}

func (w *walker) VisitElsif(node *ast.Elsif) {
	w.stats.NodesVisited++
	require("elsif", "condition", node.Condition != nil)

	w.expr(node.Condition)
	w.stmts(node.Body)
	node.Condition = w.fold(node.Condition)
}

func (w *walker) VisitReturn(node *ast.Return) {
	w.stats.NodesVisited++
	if node.Value == nil {
		return
	}
	w.expr(node.Value)
	node.Value = w.fold(node.Value)
}

// ===== Routine heads =====

func (w *walker) VisitProcedureHead(node *ast.ProcedureHead) {
	panic(errors.AbstractOptimize(node.Tag().String()))
}

func (w *walker) VisitFunctionHead(node *ast.FunctionHead) {
	panic(errors.AbstractOptimize(node.Tag().String()))
}
