package program

import (
	"bytes"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"
	"gopkg.in/yaml.v3"

	"github.com/diesel-lang/diesel/internal/ast"
	"github.com/diesel-lang/diesel/internal/errors"
	"github.com/diesel-lang/diesel/internal/position"
	"github.com/diesel-lang/diesel/internal/symtab"
)

// Program is a decoded compilation unit.
type Program struct {
	File    string
	Source  *position.SourceFile // nil when the document carries no source text
	Symbols *symtab.Table
	Body    *ast.StmtList
}

// Load reads and decodes the document at path.
func Load(path string) (*Program, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read program: %w", err)
	}
	prog, err := Decode(data, path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return prog, nil
}

// Decode parses a document. filename is used when the document names no
// file of its own.
func Decode(data []byte, filename string) (*Program, error) {
	var doc Document
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to parse program: %w", err)
	}
	return FromDocument(&doc, filename)
}

// CheckVersion verifies that version satisfies FormatConstraint.
func CheckVersion(version string) error {
	constraint, err := semver.NewConstraint(FormatConstraint)
	if err != nil {
		return err
	}
	v, err := semver.NewVersion(version)
	if err != nil || !constraint.Check(v) {
		return errors.BadVersion(version, FormatConstraint)
	}
	return nil
}

// FromDocument builds the symbol table and tree described by doc.
func FromDocument(doc *Document, filename string) (*Program, error) {
	if err := CheckVersion(doc.FormatVersion); err != nil {
		return nil, err
	}

	file := doc.File
	if file == "" {
		file = filename
	}
	b := &builder{file: file, syms: symtab.New()}

	for i := range doc.Symbols {
		if err := b.declare(&doc.Symbols[i]); err != nil {
			return nil, err
		}
	}

	body, err := b.stmts(doc.Body, position.Position{Filename: file})
	if err != nil {
		return nil, err
	}

	prog := &Program{File: file, Symbols: b.syms, Body: body}
	if doc.Source != "" {
		prog.Source = position.NewSourceFile(file, doc.Source)
	}
	return prog, nil
}

type builder struct {
	file string
	syms *symtab.Table
}

func (b *builder) fail(at position.Position, format string, args ...interface{}) error {
	return errors.BadNode(at.String(), fmt.Sprintf(format, args...))
}

func (b *builder) pos(p Pos, parent position.Position) (position.Position, error) {
	switch len(p) {
	case 0:
		return parent, nil
	case 2:
		return position.Position{Filename: b.file, Line: p[0], Column: p[1]}, nil
	}
	return parent, b.fail(parent, "pos must be [line, column], got %v", []int(p))
}

func (b *builder) typeIndex(at position.Position, name string) (symtab.Index, error) {
	idx, ok := b.syms.Lookup(name)
	if ok {
		if sym, _ := b.syms.Get(idx); sym.Tag == symtab.SymNameType {
			return idx, nil
		}
	}
	return symtab.NullSym, b.fail(at, "unknown type %q", name)
}

// ===== Symbols =====

func (b *builder) declare(d *SymbolDecl) error {
	at, err := b.pos(d.Pos, position.Position{Filename: b.file})
	if err != nil {
		return err
	}

	typ := symtab.VoidType
	if d.Type != "" {
		if typ, err = b.typeIndex(at, d.Type); err != nil {
			return err
		}
	}

	switch d.Kind {
	case "const":
		value, err := b.constValue(at, d, typ)
		if err != nil {
			return err
		}
		_, err = b.syms.EnterConstant(at, d.Name, typ, value)
		return err
	case "var":
		_, err = b.syms.EnterVariable(at, d.Name, typ)
	case "array":
		if d.Size <= 0 {
			return b.fail(at, "array %s needs a positive size", d.Name)
		}
		_, err = b.syms.EnterArray(at, d.Name, typ, d.Size)
	case "param":
		_, err = b.syms.EnterParameter(at, d.Name, typ)
	case "proc":
		_, err = b.syms.EnterProcedure(at, d.Name)
	case "func":
		_, err = b.syms.EnterFunction(at, d.Name, typ)
	default:
		return b.fail(at, "symbol %s has unknown kind %q", d.Name, d.Kind)
	}
	return err
}

func (b *builder) constValue(at position.Position, d *SymbolDecl, typ symtab.Index) (symtab.ConstValue, error) {
	if d.Value == nil || d.Value.Kind != yaml.ScalarNode {
		return symtab.ConstValue{}, b.fail(at, "constant %s needs a scalar value", d.Name)
	}
	text := d.Value.Value

	switch typ {
	case symtab.IntegerType:
		v, err := strconv.ParseInt(text, 0, 64)
		if err != nil {
			return symtab.ConstValue{}, b.fail(at, "constant %s: %q is not an integer", d.Name, text)
		}
		return symtab.ConstValue{Int: v}, nil
	case symtab.RealType:
		var v float64
		if err := d.Value.Decode(&v); err != nil {
			return symtab.ConstValue{}, b.fail(at, "constant %s: %q is not a real", d.Name, text)
		}
		return symtab.ConstValue{Real: v}, nil
	}
	return symtab.ConstValue{}, b.fail(at, "constant %s must be integer or real", d.Name)
}

// resolve returns the identifier node for name.
func (b *builder) resolve(at position.Position, name string) (*ast.Id, *symtab.Symbol, error) {
	idx, ok := b.syms.Lookup(name)
	if !ok {
		return nil, nil, b.fail(at, "undeclared identifier %q", name)
	}
	sym, err := b.syms.Get(idx)
	if err != nil {
		return nil, nil, err
	}
	return &ast.Id{At: at, Name: name, Sym: idx, Type: sym.Type}, sym, nil
}

// ===== Expressions =====

func (e *Expr) kinds() []string {
	var set []string
	mark := func(name string, present bool) {
		if present {
			set = append(set, name)
		}
	}
	mark("int", e.Int != nil)
	mark("real", e.Real != nil)
	mark("id", e.Id != "")
	mark("index", e.Index != nil)
	mark("op", e.Op != "")
	mark("uminus", e.UMinus != nil)
	mark("not", e.Not != nil)
	mark("cast", e.Cast != nil)
	mark("call", e.Call != "")
	return set
}

func (b *builder) expr(e *Expr, parent position.Position) (ast.Expression, error) {
	if e == nil {
		return nil, b.fail(parent, "missing expression")
	}
	at, err := b.pos(e.Pos, parent)
	if err != nil {
		return nil, err
	}

	kinds := e.kinds()
	if len(kinds) != 1 {
		return nil, b.fail(at, "expression must have exactly one of int, real, id, index, op, uminus, not, cast, call; got %v", kinds)
	}

	switch kinds[0] {
	case "int":
		return &ast.Integer{At: at, Value: *e.Int}, nil
	case "real":
		return &ast.Real{At: at, Value: *e.Real}, nil
	case "id":
		id, _, err := b.resolve(at, e.Id)
		if err != nil {
			return nil, err
		}
		return id, nil
	case "index":
		return b.indexed(e, at)
	case "op":
		return b.binary(e, at)
	case "uminus":
		operand, err := b.expr(e.UMinus, at)
		if err != nil {
			return nil, err
		}
		return &ast.UMinus{At: at, Expr: operand, Type: operand.ExprType()}, nil
	case "not":
		operand, err := b.expr(e.Not, at)
		if err != nil {
			return nil, err
		}
		return &ast.Not{At: at, Expr: operand}, nil
	case "cast":
		operand, err := b.expr(e.Cast, at)
		if err != nil {
			return nil, err
		}
		return &ast.Cast{At: at, Expr: operand}, nil
	default:
		return b.call(e, at)
	}
}

func (b *builder) indexed(e *Expr, at position.Position) (ast.Expression, error) {
	if e.Of == "" {
		return nil, b.fail(at, "index needs the array name in of")
	}
	id, sym, err := b.resolve(at, e.Of)
	if err != nil {
		return nil, err
	}
	if sym.Tag != symtab.SymArray {
		return nil, b.fail(at, "%s is not an array", e.Of)
	}
	index, err := b.expr(e.Index, at)
	if err != nil {
		return nil, err
	}
	return &ast.Indexed{At: at, Id: id, Index: index, Type: sym.Type}, nil
}

// parseOperator accepts a tag name ("idiv") or its source spelling ("div").
func parseOperator(s string) (ast.Tag, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for tag := ast.TagAdd; tag <= ast.TagGreaterThan; tag++ {
		if s == tag.String() || s == tag.Operator() {
			return tag, true
		}
	}
	return 0, false
}

func (b *builder) binary(e *Expr, at position.Position) (ast.Expression, error) {
	tag, ok := parseOperator(e.Op)
	if !ok {
		return nil, b.fail(at, "unknown operator %q", e.Op)
	}
	left, err := b.expr(e.Left, at)
	if err != nil {
		return nil, err
	}
	right, err := b.expr(e.Right, at)
	if err != nil {
		return nil, err
	}

	if tag.IsRelation() {
		return ast.NewRelation(at, tag, left, right), nil
	}
	node := ast.NewOperation(at, tag, left, right)
	if e.Type != "" {
		// Folding derives the result from the operands, so an annotation
		// may only restate the type they imply.
		typ, err := b.typeIndex(at, e.Type)
		if err != nil {
			return nil, err
		}
		if typ != node.Type {
			return nil, b.fail(at, "%s of %s and %s has type %s, not %s", tag,
				b.syms.TypeName(left.ExprType()), b.syms.TypeName(right.ExprType()),
				b.syms.TypeName(node.Type), e.Type)
		}
	}
	return node, nil
}

func (b *builder) args(list []*Expr, at position.Position) (*ast.ExprList, error) {
	exprs := make([]ast.Expression, 0, len(list))
	for _, a := range list {
		e, err := b.expr(a, at)
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, e)
	}
	return ast.NewExprList(exprs...), nil
}

func (b *builder) call(e *Expr, at position.Position) (ast.Expression, error) {
	id, sym, err := b.resolve(at, e.Call)
	if err != nil {
		return nil, err
	}
	if sym.Tag != symtab.SymFunc {
		return nil, b.fail(at, "%s is not a function", e.Call)
	}
	args, err := b.args(e.Args, at)
	if err != nil {
		return nil, err
	}
	return &ast.FunctionCall{At: at, Id: id, Args: args, Type: sym.Type}, nil
}

// ===== Statements =====

func (b *builder) stmts(list []*Stmt, parent position.Position) (*ast.StmtList, error) {
	out := make([]ast.Statement, 0, len(list))
	for _, s := range list {
		stmt, err := b.stmt(s, parent)
		if err != nil {
			return nil, err
		}
		out = append(out, stmt)
	}
	return ast.NewStmtList(out...), nil
}

func (s *Stmt) count() int {
	n := 0
	for _, present := range []bool{
		s.Assign != nil, s.If != nil, s.While != nil, s.Return != nil,
		s.PCall != nil, s.ProcHead != nil, s.FuncHead != nil,
	} {
		if present {
			n++
		}
	}
	return n
}

func (b *builder) stmt(s *Stmt, parent position.Position) (ast.Statement, error) {
	if s == nil || s.count() != 1 {
		return nil, b.fail(parent, "statement must have exactly one of assign, if, while, return, pcall, prochead, funchead")
	}

	switch {
	case s.Assign != nil:
		return b.assign(s.Assign, parent)
	case s.If != nil:
		return b.ifStmt(s.If, parent)
	case s.While != nil:
		return b.while(s.While, parent)
	case s.Return != nil:
		return b.ret(s.Return, parent)
	case s.PCall != nil:
		return b.pcall(s.PCall, parent)
	case s.ProcHead != nil:
		at, err := b.pos(s.ProcHead.Pos, parent)
		if err != nil {
			return nil, err
		}
		id, _, err := b.resolve(at, s.ProcHead.Name)
		if err != nil {
			return nil, err
		}
		return &ast.ProcedureHead{At: at, Id: id}, nil
	default:
		at, err := b.pos(s.FuncHead.Pos, parent)
		if err != nil {
			return nil, err
		}
		id, sym, err := b.resolve(at, s.FuncHead.Name)
		if err != nil {
			return nil, err
		}
		return &ast.FunctionHead{At: at, Id: id, Type: sym.Type}, nil
	}
}

func (b *builder) assign(s *AssignStmt, parent position.Position) (ast.Statement, error) {
	at, err := b.pos(s.Pos, parent)
	if err != nil {
		return nil, err
	}
	lhs, err := b.expr(s.Lhs, at)
	if err != nil {
		return nil, err
	}
	switch lhs.(type) {
	case *ast.Id, *ast.Indexed:
	default:
		return nil, b.fail(at, "cannot assign to %s", lhs)
	}
	rhs, err := b.expr(s.Rhs, at)
	if err != nil {
		return nil, err
	}
	return &ast.Assign{At: at, Lhs: lhs, Rhs: rhs}, nil
}

func (b *builder) ifStmt(s *IfStmt, parent position.Position) (ast.Statement, error) {
	at, err := b.pos(s.Pos, parent)
	if err != nil {
		return nil, err
	}
	cond, err := b.expr(s.Cond, at)
	if err != nil {
		return nil, err
	}
	body, err := b.stmts(s.Then, at)
	if err != nil {
		return nil, err
	}

	clauses := make([]*ast.Elsif, 0, len(s.Elsif))
	for _, c := range s.Elsif {
		if c == nil {
			return nil, b.fail(at, "empty elsif clause")
		}
		cat, err := b.pos(c.Pos, at)
		if err != nil {
			return nil, err
		}
		ccond, err := b.expr(c.Cond, cat)
		if err != nil {
			return nil, err
		}
		cbody, err := b.stmts(c.Then, cat)
		if err != nil {
			return nil, err
		}
		clauses = append(clauses, &ast.Elsif{At: cat, Condition: ccond, Body: cbody})
	}

	elseBody, err := b.stmts(s.Else, at)
	if err != nil {
		return nil, err
	}
	return &ast.If{At: at, Condition: cond, Body: body, Elsifs: ast.NewElsifList(clauses...), Else: elseBody}, nil
}

func (b *builder) while(s *WhileStmt, parent position.Position) (ast.Statement, error) {
	at, err := b.pos(s.Pos, parent)
	if err != nil {
		return nil, err
	}
	cond, err := b.expr(s.Cond, at)
	if err != nil {
		return nil, err
	}
	body, err := b.stmts(s.Do, at)
	if err != nil {
		return nil, err
	}
	return &ast.While{At: at, Condition: cond, Body: body}, nil
}

func (b *builder) ret(s *ReturnStmt, parent position.Position) (ast.Statement, error) {
	at, err := b.pos(s.Pos, parent)
	if err != nil {
		return nil, err
	}
	r := &ast.Return{At: at}
	if s.Value != nil {
		if r.Value, err = b.expr(s.Value, at); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (b *builder) pcall(s *CallStmt, parent position.Position) (ast.Statement, error) {
	at, err := b.pos(s.Pos, parent)
	if err != nil {
		return nil, err
	}
	id, sym, err := b.resolve(at, s.Name)
	if err != nil {
		return nil, err
	}
	if sym.Tag != symtab.SymProc {
		return nil, b.fail(at, "%s is not a procedure", s.Name)
	}
	args, err := b.args(s.Args, at)
	if err != nil {
		return nil, err
	}
	return &ast.ProcedureCall{At: at, Id: id, Args: args}, nil
}
