// Package ast defines the Abstract Syntax Tree (AST) nodes for Diesel programs.
//
// The tree is built by the parser and handed to the later stages (constant
// folding, quad generation). Every node carries a Tag naming its concrete
// kind and the Position it was parsed from. A node owns its children; the
// only references that leave the tree are symbol table indices held by
// identifiers. Children are replaced by assigning the parent's field, never
// by mutating the child in place.
package ast

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/diesel-lang/diesel/internal/position"
	"github.com/diesel-lang/diesel/internal/symtab"
)

// Node is the base interface for all AST nodes
type Node interface {
	// Tag returns the concrete kind of the node
	Tag() Tag
	// Pos returns the source position the node was parsed from
	Pos() position.Position
	// String returns a source-like rendering of the node
	String() string
	// Accept dispatches to the visitor method for the node's kind
	Accept(visitor Visitor)
}

// Expression represents all expression nodes in the AST
type Expression interface {
	Node
	// ExprType returns the type symbol computed by the type checker
	ExprType() symtab.Index
	expressionNode()
}

// Statement represents all statement nodes in the AST
type Statement interface {
	Node
	statementNode()
}

// ===== Lists =====

// StmtList is a statement sequence. Preceding holds every statement before Last.
type StmtList struct {
	At        position.Position
	Preceding *StmtList
	Last      Statement
}

// NewStmtList chains stmts in order. It returns nil for no statements.
func NewStmtList(stmts ...Statement) *StmtList {
	var list *StmtList
	for _, s := range stmts {
		list = &StmtList{At: s.Pos(), Preceding: list, Last: s}
	}
	return list
}

// Statements returns the statements in execution order.
func (l *StmtList) Statements() []Statement {
	var out []Statement
	for n := l; n != nil; n = n.Preceding {
		if n.Last != nil {
			out = append(out, n.Last)
		}
	}
	reverse(out)
	return out
}

func (l *StmtList) Tag() Tag               { return TagStmtList }
func (l *StmtList) Pos() position.Position { return l.At }
func (l *StmtList) Accept(visitor Visitor) { visitor.VisitStmtList(l) }
func (l *StmtList) String() string {
	var parts []string
	for _, s := range l.Statements() {
		parts = append(parts, s.String())
	}
	return strings.Join(parts, "; ")
}

// ExprList is an argument list. Preceding holds every expression before Last.
type ExprList struct {
	At        position.Position
	Preceding *ExprList
	Last      Expression
}

// NewExprList chains exprs in order. It returns nil for no expressions.
func NewExprList(exprs ...Expression) *ExprList {
	var list *ExprList
	for _, e := range exprs {
		list = &ExprList{At: e.Pos(), Preceding: list, Last: e}
	}
	return list
}

// Expressions returns the expressions in evaluation order.
func (l *ExprList) Expressions() []Expression {
	var out []Expression
	for n := l; n != nil; n = n.Preceding {
		if n.Last != nil {
			out = append(out, n.Last)
		}
	}
	reverse(out)
	return out
}

func (l *ExprList) Tag() Tag               { return TagExprList }
func (l *ExprList) Pos() position.Position { return l.At }
func (l *ExprList) Accept(visitor Visitor) { visitor.VisitExprList(l) }
func (l *ExprList) String() string {
	var parts []string
	for _, e := range l.Expressions() {
		parts = append(parts, e.String())
	}
	return strings.Join(parts, ", ")
}

// ElsifList holds the elsif clauses of an if statement.
type ElsifList struct {
	At        position.Position
	Preceding *ElsifList
	Last      *Elsif
}

// NewElsifList chains clauses in order. It returns nil for no clauses.
func NewElsifList(clauses ...*Elsif) *ElsifList {
	var list *ElsifList
	for _, c := range clauses {
		list = &ElsifList{At: c.At, Preceding: list, Last: c}
	}
	return list
}

// Clauses returns the elsif clauses in source order.
func (l *ElsifList) Clauses() []*Elsif {
	var out []*Elsif
	for n := l; n != nil; n = n.Preceding {
		if n.Last != nil {
			out = append(out, n.Last)
		}
	}
	reverse(out)
	return out
}

func (l *ElsifList) Tag() Tag               { return TagElsifList }
func (l *ElsifList) Pos() position.Position { return l.At }
func (l *ElsifList) Accept(visitor Visitor) { visitor.VisitElsifList(l) }
func (l *ElsifList) String() string {
	var parts []string
	for _, c := range l.Clauses() {
		parts = append(parts, c.String())
	}
	return strings.Join(parts, " ")
}

func reverse[T any](s []T) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}

// ===== Expressions =====

// Id is a use of a declared name.
type Id struct {
	At   position.Position
	Name string
	Sym  symtab.Index // symbol table entry; referenced, not owned
	Type symtab.Index
}

func (i *Id) Tag() Tag               { return TagId }
func (i *Id) Pos() position.Position { return i.At }
func (i *Id) ExprType() symtab.Index { return i.Type }
func (i *Id) expressionNode()        {}
func (i *Id) String() string         { return i.Name }
func (i *Id) Accept(visitor Visitor) { visitor.VisitId(i) }

// Indexed is an array element access.
type Indexed struct {
	At    position.Position
	Id    *Id
	Index Expression
	Type  symtab.Index
}

func (i *Indexed) Tag() Tag               { return TagIndexed }
func (i *Indexed) Pos() position.Position { return i.At }
func (i *Indexed) ExprType() symtab.Index { return i.Type }
func (i *Indexed) expressionNode()        {}
func (i *Indexed) String() string         { return fmt.Sprintf("%s[%s]", i.Id, i.Index) }
func (i *Indexed) Accept(visitor Visitor) { visitor.VisitIndexed(i) }

// Integer is an integer literal.
type Integer struct {
	At    position.Position
	Value int64
}

func (i *Integer) Tag() Tag               { return TagInteger }
func (i *Integer) Pos() position.Position { return i.At }
func (i *Integer) ExprType() symtab.Index { return symtab.IntegerType }
func (i *Integer) expressionNode()        {}
func (i *Integer) String() string         { return strconv.FormatInt(i.Value, 10) }
func (i *Integer) Accept(visitor Visitor) { visitor.VisitInteger(i) }

// Real is a real literal.
type Real struct {
	At    position.Position
	Value float64
}

func (r *Real) Tag() Tag               { return TagReal }
func (r *Real) Pos() position.Position { return r.At }
func (r *Real) ExprType() symtab.Index { return symtab.RealType }
func (r *Real) expressionNode()        {}
func (r *Real) Accept(visitor Visitor) { visitor.VisitReal(r) }
func (r *Real) String() string {
	s := strconv.FormatFloat(r.Value, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eEnN") {
		s += ".0"
	}
	return s
}

// Binary holds what binary operations and relations have in common.
type Binary struct {
	At    position.Position
	Op    Tag
	Left  Expression
	Right Expression
	Type  symtab.Index
}

func (b *Binary) Tag() Tag               { return b.Op }
func (b *Binary) Pos() position.Position { return b.At }
func (b *Binary) ExprType() symtab.Index { return b.Type }
func (b *Binary) expressionNode()        {}
func (b *Binary) String() string {
	return fmt.Sprintf("(%s %s %s)", b.Left, b.Op.Operator(), b.Right)
}

// BinaryOperation is one of add, sub, mult, divide, idiv, mod, or, and.
type BinaryOperation struct {
	Binary
}

// NewOperation builds a binary operation and derives its result type from
// the operands: integer when both are integer (except divide, which is
// always real), real otherwise. It panics if op is not an operation tag.
func NewOperation(at position.Position, op Tag, left, right Expression) *BinaryOperation {
	if !op.IsOperation() {
		panic(fmt.Sprintf("ast: %s is not a binary operation", op))
	}
	return &BinaryOperation{Binary{At: at, Op: op, Left: left, Right: right, Type: OperationType(op, left, right)}}
}

// OperationType is the result type of op applied to left and right.
func OperationType(op Tag, left, right Expression) symtab.Index {
	if op == TagDivide {
		return symtab.RealType
	}
	if left.ExprType() == symtab.IntegerType && right.ExprType() == symtab.IntegerType {
		return symtab.IntegerType
	}
	return symtab.RealType
}

func (b *BinaryOperation) Accept(visitor Visitor) { visitor.VisitBinaryOperation(b) }

// BinaryRelation is one of equal, notequal, lessthan, greaterthan.
// Its value is an integer, 1 for true and 0 for false.
type BinaryRelation struct {
	Binary
}

// NewRelation builds a comparison. It panics if op is not a relation tag.
func NewRelation(at position.Position, op Tag, left, right Expression) *BinaryRelation {
	if !op.IsRelation() {
		panic(fmt.Sprintf("ast: %s is not a binary relation", op))
	}
	return &BinaryRelation{Binary{At: at, Op: op, Left: left, Right: right, Type: symtab.IntegerType}}
}

func (b *BinaryRelation) Accept(visitor Visitor) { visitor.VisitBinaryRelation(b) }

// UMinus is arithmetic negation.
type UMinus struct {
	At   position.Position
	Expr Expression
	Type symtab.Index
}

func (u *UMinus) Tag() Tag               { return TagUMinus }
func (u *UMinus) Pos() position.Position { return u.At }
func (u *UMinus) ExprType() symtab.Index { return u.Type }
func (u *UMinus) expressionNode()        {}
func (u *UMinus) String() string         { return fmt.Sprintf("-%s", u.Expr) }
func (u *UMinus) Accept(visitor Visitor) { visitor.VisitUMinus(u) }

// Not is logical negation.
type Not struct {
	At   position.Position
	Expr Expression
}

func (n *Not) Tag() Tag               { return TagNot }
func (n *Not) Pos() position.Position { return n.At }
func (n *Not) ExprType() symtab.Index { return symtab.IntegerType }
func (n *Not) expressionNode()        {}
func (n *Not) String() string         { return fmt.Sprintf("not %s", n.Expr) }
func (n *Not) Accept(visitor Visitor) { visitor.VisitNot(n) }

// Cast converts an integer expression to real. The type checker inserts it.
type Cast struct {
	At   position.Position
	Expr Expression
}

func (c *Cast) Tag() Tag               { return TagCast }
func (c *Cast) Pos() position.Position { return c.At }
func (c *Cast) ExprType() symtab.Index { return symtab.RealType }
func (c *Cast) expressionNode()        {}
func (c *Cast) String() string         { return fmt.Sprintf("real(%s)", c.Expr) }
func (c *Cast) Accept(visitor Visitor) { visitor.VisitCast(c) }

// FunctionCall calls a function; Args may be nil.
type FunctionCall struct {
	At   position.Position
	Id   *Id
	Args *ExprList
	Type symtab.Index
}

func (f *FunctionCall) Tag() Tag               { return TagFunctionCall }
func (f *FunctionCall) Pos() position.Position { return f.At }
func (f *FunctionCall) ExprType() symtab.Index { return f.Type }
func (f *FunctionCall) expressionNode()        {}
func (f *FunctionCall) String() string         { return fmt.Sprintf("%s(%s)", f.Id, listString(f.Args)) }
func (f *FunctionCall) Accept(visitor Visitor) { visitor.VisitFunctionCall(f) }

func listString(l *ExprList) string {
	if l == nil {
		return ""
	}
	return l.String()
}

// ===== Statements =====

// ProcedureCall calls a procedure; Args may be nil.
type ProcedureCall struct {
	At   position.Position
	Id   *Id
	Args *ExprList
}

func (p *ProcedureCall) Tag() Tag               { return TagProcedureCall }
func (p *ProcedureCall) Pos() position.Position { return p.At }
func (p *ProcedureCall) statementNode()         {}
func (p *ProcedureCall) String() string         { return fmt.Sprintf("%s(%s)", p.Id, listString(p.Args)) }
func (p *ProcedureCall) Accept(visitor Visitor) { visitor.VisitProcedureCall(p) }

// Assign stores Rhs into Lhs, which is an *Id or an *Indexed.
type Assign struct {
	At  position.Position
	Lhs Expression
	Rhs Expression
}

func (a *Assign) Tag() Tag               { return TagAssign }
func (a *Assign) Pos() position.Position { return a.At }
func (a *Assign) statementNode()         {}
func (a *Assign) String() string         { return fmt.Sprintf("%s := %s", a.Lhs, a.Rhs) }
func (a *Assign) Accept(visitor Visitor) { visitor.VisitAssign(a) }

// While loops over Body while Condition is non-zero.
type While struct {
	At        position.Position
	Condition Expression
	Body      *StmtList
}

func (w *While) Tag() Tag               { return TagWhile }
func (w *While) Pos() position.Position { return w.At }
func (w *While) statementNode()         {}
func (w *While) Accept(visitor Visitor) { visitor.VisitWhile(w) }
func (w *While) String() string {
	return fmt.Sprintf("while %s do %s end", w.Condition, stmtsString(w.Body))
}

// If is a conditional with optional elsif clauses and else body.
type If struct {
	At        position.Position
	Condition Expression
	Body      *StmtList
	Elsifs    *ElsifList
	Else      *StmtList
}

func (i *If) Tag() Tag               { return TagIf }
func (i *If) Pos() position.Position { return i.At }
func (i *If) statementNode()         {}
func (i *If) Accept(visitor Visitor) { visitor.VisitIf(i) }
func (i *If) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "if %s then %s", i.Condition, stmtsString(i.Body))
	for _, c := range i.Elsifs.Clauses() {
		fmt.Fprintf(&b, " %s", c)
	}
	if i.Else != nil {
		fmt.Fprintf(&b, " else %s", stmtsString(i.Else))
	}
	b.WriteString(" end")
	return b.String()
}

// Elsif is one clause of an if statement.
type Elsif struct {
	At        position.Position
	Condition Expression
	Body      *StmtList
}

func (e *Elsif) Tag() Tag               { return TagElsif }
func (e *Elsif) Pos() position.Position { return e.At }
func (e *Elsif) Accept(visitor Visitor) { visitor.VisitElsif(e) }
func (e *Elsif) String() string {
	return fmt.Sprintf("elsif %s then %s", e.Condition, stmtsString(e.Body))
}

// Return leaves the current routine. Value is nil inside procedures.
type Return struct {
	At    position.Position
	Value Expression
}

func (r *Return) Tag() Tag               { return TagReturn }
func (r *Return) Pos() position.Position { return r.At }
func (r *Return) statementNode()         {}
func (r *Return) Accept(visitor Visitor) { visitor.VisitReturn(r) }
func (r *Return) String() string {
	if r.Value == nil {
		return "return"
	}
	return fmt.Sprintf("return %s", r.Value)
}

func stmtsString(l *StmtList) string {
	if l == nil {
		return ""
	}
	return l.String()
}

// ===== Routine heads =====

// ProcedureHead names a procedure while its block is being parsed. The parser
// consumes it; it never belongs in a finished statement list.
type ProcedureHead struct {
	At position.Position
	Id *Id
}

func (p *ProcedureHead) Tag() Tag               { return TagProcedureHead }
func (p *ProcedureHead) Pos() position.Position { return p.At }
func (p *ProcedureHead) statementNode()         {}
func (p *ProcedureHead) String() string         { return fmt.Sprintf("procedure %s", p.Id) }
func (p *ProcedureHead) Accept(visitor Visitor) { visitor.VisitProcedureHead(p) }

// FunctionHead names a function while its block is being parsed.
type FunctionHead struct {
	At   position.Position
	Id   *Id
	Type symtab.Index
}

func (f *FunctionHead) Tag() Tag               { return TagFunctionHead }
func (f *FunctionHead) Pos() position.Position { return f.At }
func (f *FunctionHead) statementNode()         {}
func (f *FunctionHead) String() string         { return fmt.Sprintf("function %s", f.Id) }
func (f *FunctionHead) Accept(visitor Visitor) { visitor.VisitFunctionHead(f) }
