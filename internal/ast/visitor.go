// Visitor dispatch for the Diesel AST. Every concrete node kind has exactly
// one Visit method, so a type implementing Visitor handles the whole tree.
package ast

// Visitor receives one call per concrete node kind.
type Visitor interface {
	// Lists.
	VisitStmtList(node *StmtList)
	VisitExprList(node *ExprList)
	VisitElsifList(node *ElsifList)

	// Expressions.
	VisitId(node *Id)
	VisitIndexed(node *Indexed)
	VisitInteger(node *Integer)
	VisitReal(node *Real)
	VisitBinaryOperation(node *BinaryOperation)
	VisitBinaryRelation(node *BinaryRelation)
	VisitUMinus(node *UMinus)
	VisitNot(node *Not)
	VisitCast(node *Cast)
	VisitFunctionCall(node *FunctionCall)

	// Statements.
	VisitProcedureCall(node *ProcedureCall)
	VisitAssign(node *Assign)
	VisitWhile(node *While)
	VisitIf(node *If)
	VisitElsif(node *Elsif)
	VisitReturn(node *Return)

	// Routine heads.
	VisitProcedureHead(node *ProcedureHead)
	VisitFunctionHead(node *FunctionHead)
}

// BaseVisitor provides a default implementation of the Visitor interface
// that does nothing. Embed it to override only the methods you need.
type BaseVisitor struct{}

func (v *BaseVisitor) VisitStmtList(node *StmtList)               {}
func (v *BaseVisitor) VisitExprList(node *ExprList)               {}
func (v *BaseVisitor) VisitElsifList(node *ElsifList)             {}
func (v *BaseVisitor) VisitId(node *Id)                           {}
func (v *BaseVisitor) VisitIndexed(node *Indexed)                 {}
func (v *BaseVisitor) VisitInteger(node *Integer)                 {}
func (v *BaseVisitor) VisitReal(node *Real)                       {}
func (v *BaseVisitor) VisitBinaryOperation(node *BinaryOperation) {}
func (v *BaseVisitor) VisitBinaryRelation(node *BinaryRelation)   {}
func (v *BaseVisitor) VisitUMinus(node *UMinus)                   {}
func (v *BaseVisitor) VisitNot(node *Not)                         {}
func (v *BaseVisitor) VisitCast(node *Cast)                       {}
func (v *BaseVisitor) VisitFunctionCall(node *FunctionCall)       {}
func (v *BaseVisitor) VisitProcedureCall(node *ProcedureCall)     {}
func (v *BaseVisitor) VisitAssign(node *Assign)                   {}
func (v *BaseVisitor) VisitWhile(node *While)                     {}
func (v *BaseVisitor) VisitIf(node *If)                           {}
func (v *BaseVisitor) VisitElsif(node *Elsif)                     {}
func (v *BaseVisitor) VisitReturn(node *Return)                   {}
func (v *BaseVisitor) VisitProcedureHead(node *ProcedureHead)     {}
func (v *BaseVisitor) VisitFunctionHead(node *FunctionHead)       {}

// Children returns the direct children of node in evaluation order.
// Absent optional children are skipped.
func Children(node Node) []Node {
	var out []Node
	add := func(children ...Node) {
		for _, c := range children {
			if !isNil(c) {
				out = append(out, c)
			}
		}
	}

	switch n := node.(type) {
	case *StmtList:
		add(n.Preceding, n.Last)
	case *ExprList:
		add(n.Preceding, n.Last)
	case *ElsifList:
		add(n.Preceding, n.Last)
	case *Indexed:
		add(n.Id, n.Index)
	case *BinaryOperation:
		add(n.Left, n.Right)
	case *BinaryRelation:
		add(n.Left, n.Right)
	case *UMinus:
		add(n.Expr)
	case *Not:
		add(n.Expr)
	case *Cast:
		add(n.Expr)
	case *FunctionCall:
		add(n.Id, n.Args)
	case *ProcedureCall:
		add(n.Id, n.Args)
	case *Assign:
		add(n.Lhs, n.Rhs)
	case *While:
		add(n.Condition, n.Body)
	case *If:
		add(n.Condition, n.Body, n.Elsifs, n.Else)
	case *Elsif:
		add(n.Condition, n.Body)
	case *Return:
		add(n.Value)
	case *ProcedureHead:
		add(n.Id)
	case *FunctionHead:
		add(n.Id)
	}
	return out
}

// isNil catches typed nil pointers stored in a Node interface.
func isNil(n Node) bool {
	switch v := n.(type) {
	case nil:
		return true
	case *StmtList:
		return v == nil
	case *ExprList:
		return v == nil
	case *ElsifList:
		return v == nil
	case *Elsif:
		return v == nil
	case *Id:
		return v == nil
	}
	return false
}

// Inspect traverses the tree rooted at node in depth-first pre-order.
// If fn returns false the children of that node are skipped.
func Inspect(node Node, fn func(Node) bool) {
	if isNil(node) || !fn(node) {
		return
	}
	for _, c := range Children(node) {
		Inspect(c, fn)
	}
}

// Count returns the number of nodes in the tree rooted at node.
func Count(node Node) int {
	n := 0
	Inspect(node, func(Node) bool {
		n++
		return true
	})
	return n
}
