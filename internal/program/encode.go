package program

import (
	"bytes"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/diesel-lang/diesel/internal/ast"
	"github.com/diesel-lang/diesel/internal/position"
	"github.com/diesel-lang/diesel/internal/symtab"
)

// Document returns the interchange form of p. Predefined types are not
// listed among the symbols.
func (p *Program) Document() *Document {
	doc := &Document{FormatVersion: FormatVersion, File: p.File}
	if p.Source != nil {
		doc.Source = p.Source.Content
	}

	e := &encoder{syms: p.Symbols}
	for i := symtab.RealType + 1; int(i) < p.Symbols.Len(); i++ {
		sym, err := p.Symbols.Get(i)
		if err != nil {
			continue
		}
		doc.Symbols = append(doc.Symbols, e.symbol(sym))
	}
	doc.Body = e.stmts(p.Body)
	return doc
}

// Encode renders p as YAML.
func (p *Program) Encode() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(p.Document()); err != nil {
		return nil, fmt.Errorf("failed to encode program: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode program: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteFile encodes p into path.
func (p *Program) WriteFile(path string) error {
	data, err := p.Encode()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write program: %w", err)
	}
	return nil
}

type encoder struct {
	syms *symtab.Table
}

func pos(at position.Position) Pos {
	if !at.IsValid() {
		return nil
	}
	return Pos{at.Line, at.Column}
}

func (e *encoder) typeName(idx symtab.Index) string {
	return e.syms.TypeName(idx)
}

func (e *encoder) symbol(sym *symtab.Symbol) SymbolDecl {
	d := SymbolDecl{Name: sym.Name, Kind: sym.Tag.String(), Pos: pos(sym.Pos)}
	if sym.Tag != symtab.SymProc && sym.Type != symtab.NullSym {
		d.Type = e.typeName(sym.Type)
	}

	switch sym.Tag {
	case symtab.SymConst:
		if sym.Type == symtab.IntegerType {
			d.Value = &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.FormatInt(sym.Value.Int, 10)}
		} else {
			d.Value = &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: formatReal(sym.Value.Real)}
		}
	case symtab.SymArray:
		d.Size = sym.Size
	}
	return d
}

// formatReal spells v the way YAML resolves back to a float, keeping a
// decimal point on integral values.
func formatReal(v float64) string {
	switch {
	case math.IsNaN(v):
		return ".nan"
	case math.IsInf(v, 1):
		return ".inf"
	case math.IsInf(v, -1):
		return "-.inf"
	}
	s := strconv.FormatFloat(v, 'g', -1, 64)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s
}

func (e *encoder) exprs(l *ast.ExprList) []*Expr {
	var out []*Expr
	for _, x := range l.Expressions() {
		out = append(out, e.expr(x))
	}
	return out
}

func (e *encoder) expr(x ast.Expression) *Expr {
	out := &Expr{Pos: pos(x.Pos())}

	switch n := x.(type) {
	case *ast.Integer:
		v := n.Value
		out.Int = &v
	case *ast.Real:
		v := n.Value
		out.Real = &v
	case *ast.Id:
		out.Id = n.Name
	case *ast.Indexed:
		out.Of = n.Id.Name
		out.Index = e.expr(n.Index)
	case *ast.BinaryOperation:
		out.Op = n.Op.String()
		out.Left = e.expr(n.Left)
		out.Right = e.expr(n.Right)
	case *ast.BinaryRelation:
		out.Op = n.Op.String()
		out.Left = e.expr(n.Left)
		out.Right = e.expr(n.Right)
	case *ast.UMinus:
		out.UMinus = e.expr(n.Expr)
	case *ast.Not:
		out.Not = e.expr(n.Expr)
	case *ast.Cast:
		out.Cast = e.expr(n.Expr)
	case *ast.FunctionCall:
		out.Call = n.Id.Name
		out.Args = e.exprs(n.Args)
	}
	return out
}

func (e *encoder) stmts(l *ast.StmtList) []*Stmt {
	var out []*Stmt
	for _, s := range l.Statements() {
		out = append(out, e.stmt(s))
	}
	return out
}

func (e *encoder) stmt(s ast.Statement) *Stmt {
	at := pos(s.Pos())

	switch n := s.(type) {
	case *ast.Assign:
		return &Stmt{Assign: &AssignStmt{Pos: at, Lhs: e.expr(n.Lhs), Rhs: e.expr(n.Rhs)}}
	case *ast.If:
		out := &IfStmt{Pos: at, Cond: e.expr(n.Condition), Then: e.stmts(n.Body), Else: e.stmts(n.Else)}
		for _, c := range n.Elsifs.Clauses() {
			out.Elsif = append(out.Elsif, &ElsifBlock{Pos: pos(c.At), Cond: e.expr(c.Condition), Then: e.stmts(c.Body)})
		}
		return &Stmt{If: out}
	case *ast.While:
		return &Stmt{While: &WhileStmt{Pos: at, Cond: e.expr(n.Condition), Do: e.stmts(n.Body)}}
	case *ast.Return:
		out := &ReturnStmt{Pos: at}
		if n.Value != nil {
			out.Value = e.expr(n.Value)
		}
		return &Stmt{Return: out}
	case *ast.ProcedureCall:
		return &Stmt{PCall: &CallStmt{Pos: at, Name: n.Id.Name, Args: e.exprs(n.Args)}}
	case *ast.ProcedureHead:
		return &Stmt{ProcHead: &HeadStmt{Pos: at, Name: n.Id.Name}}
	case *ast.FunctionHead:
		return &Stmt{FuncHead: &HeadStmt{Pos: at, Name: n.Id.Name, Type: e.typeName(n.Type)}}
	}
	return &Stmt{}
}
