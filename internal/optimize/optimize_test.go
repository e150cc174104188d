package optimize

import (
	"math"
	"testing"

	"github.com/diesel-lang/diesel/internal/ast"
	"github.com/diesel-lang/diesel/internal/diagnostic"
	"github.com/diesel-lang/diesel/internal/errors"
	"github.com/diesel-lang/diesel/internal/position"
	"github.com/diesel-lang/diesel/internal/symtab"
)

// createTestPos creates a position in a fixed test file
func createTestPos(line, col int) position.Position {
	return position.Position{Filename: "fold.d", Line: line, Column: col}
}

// fixture holds a symbol table with a few constants and variables.
type fixture struct {
	syms   *symtab.Table
	engine *diagnostic.Engine
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	syms := symtab.New()
	at := createTestPos(1, 1)

	mustEnter := func(_ symtab.Index, err error) {
		if err != nil {
			t.Fatalf("symbol setup: %v", err)
		}
	}
	mustEnter(syms.EnterConstant(at, "n", symtab.IntegerType, symtab.ConstValue{Int: 10}))
	mustEnter(syms.EnterConstant(at, "zero", symtab.IntegerType, symtab.ConstValue{Int: 0}))
	mustEnter(syms.EnterConstant(at, "pi", symtab.RealType, symtab.ConstValue{Real: 3.5}))
	mustEnter(syms.EnterVariable(at, "x", symtab.IntegerType))
	mustEnter(syms.EnterVariable(at, "y", symtab.RealType))
	mustEnter(syms.EnterVariable(at, "z", symtab.IntegerType))
	mustEnter(syms.EnterProcedure(at, "write"))

	return &fixture{syms: syms, engine: diagnostic.NewEngine(diagnostic.Config{})}
}

func (f *fixture) optimizer(opts ...Option) *Optimizer {
	return New(f.syms, f.engine, opts...)
}

func (f *fixture) id(name string) *ast.Id {
	idx, ok := f.syms.Lookup(name)
	if !ok {
		panic("unknown test symbol " + name)
	}
	sym, _ := f.syms.Get(idx)
	return &ast.Id{At: createTestPos(1, 1), Name: name, Sym: idx, Type: sym.Type}
}

func intLit(v int64) *ast.Integer { return &ast.Integer{At: createTestPos(1, 1), Value: v} }
func realLit(v float64) *ast.Real { return &ast.Real{At: createTestPos(1, 1), Value: v} }
func op(tag ast.Tag, l, r ast.Expression) *ast.BinaryOperation {
	return ast.NewOperation(createTestPos(2, 7), tag, l, r)
}
func rel(tag ast.Tag, l, r ast.Expression) *ast.BinaryRelation {
	return ast.NewRelation(createTestPos(2, 7), tag, l, r)
}

func (f *fixture) assign(name string, rhs ast.Expression) *ast.Assign {
	return &ast.Assign{At: createTestPos(2, 1), Lhs: f.id(name), Rhs: rhs}
}

func TestIsFoldableBinary(t *testing.T) {
	tests := []struct {
		name string
		expr ast.Expression
		want bool
	}{
		{"add", op(ast.TagAdd, intLit(1), intLit(2)), true},
		{"sub", op(ast.TagSub, intLit(1), intLit(2)), true},
		{"mult", op(ast.TagMult, intLit(1), intLit(2)), true},
		{"divide", op(ast.TagDivide, intLit(1), intLit(2)), true},
		{"idiv", op(ast.TagIDiv, intLit(1), intLit(2)), true},
		{"mod", op(ast.TagMod, intLit(1), intLit(2)), true},
		{"or", op(ast.TagOr, intLit(1), intLit(2)), true},
		{"and", op(ast.TagAnd, intLit(1), intLit(2)), true},
		{"relation", rel(ast.TagEqual, intLit(1), intLit(2)), false},
		{"literal", intLit(1), false},
		{"uminus", &ast.UMinus{Expr: intLit(1), Type: symtab.IntegerType}, false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsFoldableBinary(tt.expr); got != tt.want {
				t.Errorf("IsFoldableBinary() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFoldIntegers(t *testing.T) {
	f := newFixture(t)
	o := f.optimizer()

	tests := []struct {
		name string
		tag  ast.Tag
		l, r int64
		want int64
	}{
		{"add", ast.TagAdd, 2, 3, 5},
		{"sub", ast.TagSub, 2, 3, -1},
		{"mult", ast.TagMult, -4, 3, -12},
		{"idiv truncates", ast.TagIDiv, -7, 2, -3},
		{"mod sign follows dividend", ast.TagMod, -7, 2, -1},
		{"or", ast.TagOr, 0, 5, 1},
		{"or both zero", ast.TagOr, 0, 0, 0},
		{"and", ast.TagAnd, 3, -2, 1},
		{"and with zero", ast.TagAnd, 3, 0, 0},
		{"overflow wraps", ast.TagAdd, math.MaxInt64, 1, math.MinInt64},
		{"min int idiv -1", ast.TagIDiv, math.MinInt64, -1, math.MinInt64},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expr := op(tt.tag, intLit(tt.l), intLit(tt.r))
			got, ok := o.FoldConstants(expr)
			if !ok {
				t.Fatal("expected the operation to fold")
			}
			lit, isInt := ast.AsInteger(got)
			if !isInt {
				t.Fatalf("folded to %T, want *ast.Integer", got)
			}
			if lit.Value != tt.want {
				t.Errorf("value = %d, want %d", lit.Value, tt.want)
			}
			if lit.Pos() != expr.Pos() {
				t.Errorf("position = %s, want %s", lit.Pos(), expr.Pos())
			}
		})
	}

	if f.engine.ErrorCount() != 0 {
		t.Errorf("unexpected diagnostics: %v", f.engine.Diagnostics())
	}
}

func TestIntegerDivisionIdentities(t *testing.T) {
	o := newFixture(t).optimizer()

	for a := int64(-9); a <= 9; a++ {
		for b := int64(-4); b <= 4; b++ {
			if b == 0 {
				continue
			}
			q, ok := o.FoldConstants(op(ast.TagIDiv, intLit(a), intLit(b)))
			if !ok {
				t.Fatalf("%d div %d did not fold", a, b)
			}
			m, ok := o.FoldConstants(op(ast.TagMod, intLit(a), intLit(b)))
			if !ok {
				t.Fatalf("%d mod %d did not fold", a, b)
			}
			d, ok := o.FoldConstants(op(ast.TagDivide, intLit(a), intLit(b)))
			if !ok {
				t.Fatalf("%d / %d did not fold", a, b)
			}

			quot := q.(*ast.Integer).Value
			if quot != a/b {
				t.Errorf("%d div %d = %d, want %d", a, b, quot, a/b)
			}
			if got := m.(*ast.Integer).Value; got != a-b*quot {
				t.Errorf("%d mod %d = %d, want %d", a, b, got, a-b*quot)
			}
			quo, isReal := d.(*ast.Real)
			if !isReal {
				t.Fatalf("%d / %d folded to %T, want *ast.Real", a, b, d)
			}
			if quo.Value != float64(a)/float64(b) {
				t.Errorf("%d / %d = %g, want %g", a, b, quo.Value, float64(a)/float64(b))
			}
		}
	}
}

func TestDivideYieldsReal(t *testing.T) {
	o := newFixture(t).optimizer()

	got, ok := o.FoldConstants(op(ast.TagDivide, intLit(5), intLit(2)))
	if !ok {
		t.Fatal("5 / 2 did not fold")
	}
	lit, isReal := ast.AsReal(got)
	if !isReal || lit.Value != 2.5 {
		t.Errorf("5 / 2 = %v, want real 2.5", got)
	}
}

func TestFoldReals(t *testing.T) {
	tests := []struct {
		name string
		tag  ast.Tag
		l, r float64
		want float64
	}{
		{"add", ast.TagAdd, 1.5, 2.25, 3.75},
		{"sub", ast.TagSub, 1.5, 2.25, -0.75},
		{"mult", ast.TagMult, 1.5, -2, -3},
		{"divide", ast.TagDivide, 1, 4, 0.25},
		{"divide by zero", ast.TagDivide, 1, 0, math.Inf(1)},
		{"negative divide by zero", ast.TagDivide, -1, 0, math.Inf(-1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			got, ok := f.optimizer().FoldConstants(op(tt.tag, realLit(tt.l), realLit(tt.r)))
			if !ok {
				t.Fatal("expected the operation to fold")
			}
			lit, isReal := ast.AsReal(got)
			if !isReal {
				t.Fatalf("folded to %T, want *ast.Real", got)
			}
			if lit.Value != tt.want {
				t.Errorf("value = %g, want %g", lit.Value, tt.want)
			}
			if f.engine.ErrorCount() != 0 {
				t.Errorf("unexpected diagnostics: %v", f.engine.Diagnostics())
			}
		})
	}

	t.Run("zero by zero", func(t *testing.T) {
		got, ok := newFixture(t).optimizer().FoldConstants(op(ast.TagDivide, realLit(0), realLit(0)))
		if !ok || !math.IsNaN(got.(*ast.Real).Value) {
			t.Errorf("0.0 / 0.0 = %v, want NaN", got)
		}
	})
}

func TestInvalidRealOperations(t *testing.T) {
	for _, tag := range []ast.Tag{ast.TagMod, ast.TagOr, ast.TagAnd, ast.TagIDiv} {
		t.Run(tag.String(), func(t *testing.T) {
			f := newFixture(t)
			expr := op(tag, realLit(7.5), realLit(2))

			if got, ok := f.optimizer().FoldConstants(expr); ok || got != nil {
				t.Errorf("FoldConstants() = %v, %v; want no replacement", got, ok)
			}

			diags := f.engine.Diagnostics()
			if len(diags) != 1 {
				t.Fatalf("got %d diagnostics, want 1", len(diags))
			}
			if diags[0].Code != diagnostic.CodeInvalidRealOperation {
				t.Errorf("code = %s, want %s", diags[0].Code, diagnostic.CodeInvalidRealOperation)
			}
			if diags[0].Pos != expr.Pos() {
				t.Errorf("diagnostic at %s, want %s", diags[0].Pos, expr.Pos())
			}
		})
	}
}

func TestMixedOperandsWiden(t *testing.T) {
	o := newFixture(t).optimizer()

	tests := []struct {
		name string
		expr ast.Expression
		want float64
	}{
		{"int plus real", op(ast.TagAdd, intLit(2), realLit(0.5)), 2.5},
		{"real plus int", op(ast.TagAdd, realLit(0.5), intLit(2)), 2.5},
		{"real minus int", op(ast.TagSub, realLit(10), intLit(4)), 6},
		{"int times real", op(ast.TagMult, intLit(3), realLit(0.5)), 1.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := o.FoldConstants(tt.expr)
			if !ok {
				t.Fatal("expected the operation to fold")
			}
			if lit, isReal := ast.AsReal(got); !isReal || lit.Value != tt.want {
				t.Errorf("folded to %v, want real %g", got, tt.want)
			}
		})
	}
}

func TestConstantIdentifiers(t *testing.T) {
	f := newFixture(t)
	o := f.optimizer()

	tests := []struct {
		name string
		expr ast.Expression
		want string
	}{
		{"integer constant", op(ast.TagMult, f.id("n"), intLit(2)), "20"},
		{"real constant", op(ast.TagAdd, f.id("pi"), realLit(1)), "4.5"},
		{"integer and real constants", op(ast.TagAdd, f.id("n"), f.id("pi")), "13.5"},
		{"constant on the right", op(ast.TagSub, intLit(1), f.id("n")), "-9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := o.FoldConstants(tt.expr)
			if !ok {
				t.Fatal("expected the operation to fold")
			}
			if got.String() != tt.want {
				t.Errorf("folded to %s, want %s", got, tt.want)
			}
		})
	}

	// A constant identifier folds exactly like a literal of the same value.
	viaId, _ := o.FoldConstants(op(ast.TagIDiv, f.id("n"), intLit(3)))
	viaLit, _ := o.FoldConstants(op(ast.TagIDiv, intLit(10), intLit(3)))
	if viaId.String() != viaLit.String() {
		t.Errorf("n div 3 = %s, 10 div 3 = %s", viaId, viaLit)
	}
}

func TestVariablesNeverFold(t *testing.T) {
	f := newFixture(t)
	o := f.optimizer()

	for _, expr := range []ast.Expression{
		op(ast.TagAdd, f.id("x"), intLit(1)),
		op(ast.TagAdd, intLit(1), f.id("x")),
		op(ast.TagMult, f.id("y"), realLit(2)),
		op(ast.TagMod, f.id("y"), realLit(2)), // invalid, but y is not constant
		rel(ast.TagEqual, f.id("x"), f.id("n")),
		op(ast.TagAdd, op(ast.TagAdd, intLit(1), intLit(2)), intLit(3)), // nested, not yet folded
	} {
		if got, ok := o.FoldConstants(expr); ok || got != nil {
			t.Errorf("FoldConstants(%s) = %v, want no fold", expr, got)
		}
		if got, ok := o.FoldRelation(expr); ok || got != nil {
			t.Errorf("FoldRelation(%s) = %v, want no fold", expr, got)
		}
	}

	if f.engine.ErrorCount() != 0 {
		t.Errorf("resolution failures must be silent, got %v", f.engine.Diagnostics())
	}
}

func TestFoldRelation(t *testing.T) {
	f := newFixture(t)
	o := f.optimizer()

	tests := []struct {
		name string
		expr ast.Expression
		want int64
	}{
		{"equal ints", rel(ast.TagEqual, intLit(3), intLit(3)), 1},
		{"not equal ints", rel(ast.TagNotEqual, intLit(3), intLit(3)), 0},
		{"less than", rel(ast.TagLessThan, intLit(1), intLit(2)), 1},
		{"greater than", rel(ast.TagGreaterThan, intLit(1), intLit(2)), 0},
		{"mixed", rel(ast.TagGreaterThan, f.id("n"), realLit(9.5)), 1},
		{"reals", rel(ast.TagEqual, f.id("pi"), realLit(3.5)), 1},
		{"large ints stay exact", rel(ast.TagEqual, intLit(math.MaxInt64), intLit(math.MaxInt64-1)), 0},
		{"nan is not equal", rel(ast.TagNotEqual, realLit(math.NaN()), realLit(math.NaN())), 1},
		{"nan is not less", rel(ast.TagLessThan, realLit(math.NaN()), realLit(1)), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := o.FoldRelation(tt.expr)
			if !ok {
				t.Fatal("expected the relation to fold")
			}
			lit, isInt := ast.AsInteger(got)
			if !isInt || lit.Value != tt.want {
				t.Errorf("folded to %v, want %d", got, tt.want)
			}
		})
	}

	if _, ok := o.FoldRelation(op(ast.TagAdd, intLit(1), intLit(2))); ok {
		t.Error("FoldRelation must not fold operations")
	}
	if _, ok := o.FoldConstants(rel(ast.TagEqual, intLit(1), intLit(1))); ok {
		t.Error("FoldConstants must not fold relations")
	}
}

func TestZeroDivisor(t *testing.T) {
	tests := []struct {
		name      string
		policy    ZeroDivisorPolicy
		wantDiags int
	}{
		{"diagnose", DiagnoseZeroDivisor, 1},
		{"defer", DeferZeroDivisor, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			o := f.optimizer(WithZeroDivisorPolicy(tt.policy))

			expr := op(ast.TagMod, intLit(7), intLit(0))
			stmt := f.assign("z", expr)
			stats := o.Pass(ast.NewStmtList(stmt))

			if stmt.Rhs != ast.Expression(expr) {
				t.Errorf("7 mod 0 was replaced by %s", stmt.Rhs)
			}
			if got := f.engine.ErrorCount(); got != tt.wantDiags {
				t.Fatalf("got %d errors, want %d", got, tt.wantDiags)
			}
			if tt.wantDiags > 0 && f.engine.Diagnostics()[0].Code != diagnostic.CodeDivisionByZero {
				t.Errorf("code = %s, want %s", f.engine.Diagnostics()[0].Code, diagnostic.CodeDivisionByZero)
			}
			if stats.FoldsRejected != 1 || stats.Folded() != 0 {
				t.Errorf("stats = %s", stats)
			}
		})
	}

	t.Run("constant zero identifier", func(t *testing.T) {
		f := newFixture(t)
		for _, tag := range []ast.Tag{ast.TagDivide, ast.TagIDiv, ast.TagMod} {
			if _, ok := f.optimizer().FoldConstants(op(tag, f.id("n"), f.id("zero"))); ok {
				t.Errorf("n %s zero folded", tag.Operator())
			}
		}
		if got := f.engine.ErrorCount(); got != 3 {
			t.Errorf("got %d errors, want 3", got)
		}
	})
}

func TestParseZeroDivisorPolicy(t *testing.T) {
	tests := []struct {
		in      string
		want    ZeroDivisorPolicy
		wantErr bool
	}{
		{"", DiagnoseZeroDivisor, false},
		{"diagnose", DiagnoseZeroDivisor, false},
		{" Defer ", DeferZeroDivisor, false},
		{"ignore", DiagnoseZeroDivisor, true},
	}

	for _, tt := range tests {
		got, err := ParseZeroDivisorPolicy(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseZeroDivisorPolicy(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseZeroDivisorPolicy(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestRunFoldsLeftOperandOfSum(t *testing.T) {
	f := newFixture(t)
	x := f.id("x")
	sum := op(ast.TagAdd, op(ast.TagMult, intLit(2), intLit(3)), x)
	stmt := f.assign("z", sum)

	f.optimizer().Run(ast.NewStmtList(stmt))

	if stmt.Rhs != ast.Expression(sum) {
		t.Fatalf("2 * 3 + x was replaced by %s", stmt.Rhs)
	}
	if lit, ok := ast.AsInteger(sum.Left); !ok || lit.Value != 6 {
		t.Errorf("left operand = %s, want 6", sum.Left)
	}
	if sum.Right != ast.Expression(x) {
		t.Errorf("right operand = %s, want x untouched", sum.Right)
	}
}

func TestRunStatementSlots(t *testing.T) {
	f := newFixture(t)
	at := createTestPos(3, 1)

	tests := []struct {
		name string
		stmt ast.Statement
		want string
	}{
		{
			name: "nested chain in assignment",
			stmt: f.assign("z", op(ast.TagAdd, op(ast.TagAdd, intLit(2), intLit(3)), intLit(4))),
			want: "z := 9",
		},
		{
			name: "while condition",
			stmt: &ast.While{At: at, Condition: rel(ast.TagLessThan, f.id("n"), intLit(20)),
				Body: ast.NewStmtList(f.assign("x", op(ast.TagSub, f.id("n"), intLit(1))))},
			want: "while 1 do x := 9 end",
		},
		{
			name: "if with elsif and else",
			stmt: &ast.If{At: at,
				Condition: rel(ast.TagEqual, f.id("x"), op(ast.TagMult, intLit(2), intLit(2))),
				Body:      ast.NewStmtList(f.assign("y", op(ast.TagDivide, intLit(1), intLit(4)))),
				Elsifs: ast.NewElsifList(&ast.Elsif{At: at,
					Condition: op(ast.TagAnd, intLit(1), intLit(0)),
					Body:      ast.NewStmtList(f.assign("z", op(ast.TagMod, intLit(9), intLit(4))))}),
				Else: ast.NewStmtList(f.assign("z", op(ast.TagOr, f.id("zero"), intLit(0)))),
			},
			want: "if (x = 4) then y := 0.25 elsif 0 then z := 1 else z := 0 end",
		},
		{
			name: "return value",
			stmt: &ast.Return{At: at, Value: op(ast.TagSub, realLit(1), f.id("pi"))},
			want: "return -2.5",
		},
		{
			name: "return without value",
			stmt: &ast.Return{At: at},
			want: "return",
		},
		{
			name: "call arguments are not replaced",
			stmt: &ast.ProcedureCall{At: at, Id: f.id("write"), Args: ast.NewExprList(
				op(ast.TagAdd, intLit(1), intLit(2)),
				op(ast.TagMult, op(ast.TagAdd, intLit(1), intLit(2)), f.id("x")),
			)},
			want: "write((1 + 2), (3 * x))",
		},
		{
			name: "unary operands are not replaced",
			stmt: f.assign("z", op(ast.TagAdd,
				&ast.UMinus{At: at, Expr: op(ast.TagAdd, intLit(1), intLit(2)), Type: symtab.IntegerType},
				&ast.Not{At: at, Expr: op(ast.TagAnd, op(ast.TagOr, intLit(1), intLit(0)), f.id("x"))})),
			want: "z := (-(1 + 2) + not (1 and x))",
		},
		{
			name: "casts are left alone",
			stmt: &ast.Assign{At: at, Lhs: f.id("y"), Rhs: &ast.Cast{At: at,
				Expr: op(ast.TagAdd, op(ast.TagAdd, intLit(1), intLit(2)), intLit(3))}},
			want: "y := real(((1 + 2) + 3))",
		},
		{
			name: "array index",
			stmt: &ast.Assign{At: at,
				Lhs: &ast.Indexed{At: at, Id: f.id("x"), Type: symtab.IntegerType,
					Index: op(ast.TagAdd, op(ast.TagAdd, intLit(1), intLit(2)), f.id("z"))},
				Rhs: intLit(0)},
			want: "x[(3 + z)] := 0",
		},
		{
			name: "function call in condition",
			stmt: &ast.While{At: at, Condition: rel(ast.TagGreaterThan,
				&ast.FunctionCall{At: at, Id: f.id("write"), Type: symtab.IntegerType,
					Args: ast.NewExprList(op(ast.TagAdd, f.id("x"), op(ast.TagIDiv, intLit(8), intLit(2))))},
				op(ast.TagSub, intLit(1), intLit(1)))},
			want: "while (write((x + 4)) > 0) do  end",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f.engine.Clear()
			f.optimizer().Run(ast.NewStmtList(tt.stmt))
			if got := tt.stmt.String(); got != tt.want {
				t.Errorf("after optimization:\n got %s\nwant %s", got, tt.want)
			}
			if f.engine.HasErrors() {
				t.Errorf("unexpected diagnostics: %v", f.engine.Diagnostics())
			}
		})
	}
}

func TestRunIsIdempotent(t *testing.T) {
	f := newFixture(t)
	build := func() *ast.StmtList {
		return ast.NewStmtList(
			f.assign("x", op(ast.TagAdd, op(ast.TagMult, intLit(2), intLit(3)), f.id("z"))),
			f.assign("z", op(ast.TagSub, op(ast.TagMult, f.id("n"), intLit(3)), op(ast.TagIDiv, intLit(7), intLit(2)))),
			&ast.If{At: createTestPos(5, 1), Condition: rel(ast.TagLessThan, f.id("pi"), intLit(4)),
				Body: ast.NewStmtList(f.assign("y", op(ast.TagDivide, f.id("y"), op(ast.TagAdd, realLit(1), realLit(1)))))},
		)
	}

	once := build()
	o := f.optimizer()
	o.Run(once)
	want := once.String()

	second := o.Pass(once)
	if got := once.String(); got != want {
		t.Errorf("second pass changed the tree:\n got %s\nwant %s", got, want)
	}
	if second.Folded() != 0 || second.FoldsRejected != 0 {
		t.Errorf("second pass stats = %s, want nothing folded", second)
	}
	if want != "x := (6 + z); z := 27; if 1 then y := (y / 2.0) end" {
		t.Errorf("first pass produced %s", want)
	}
}

func TestPassStats(t *testing.T) {
	f := newFixture(t)
	body := ast.NewStmtList(
		f.assign("z", op(ast.TagAdd, intLit(1), intLit(2))),
		&ast.While{At: createTestPos(3, 1), Condition: rel(ast.TagEqual, intLit(1), intLit(1))},
		f.assign("y", op(ast.TagMod, realLit(1), realLit(2))),
	)

	stats := f.optimizer().Pass(body)

	// 3 statement list links, 3 statements, 2 ids, 3 binary nodes, 6 literals
	want := Stats{NodesVisited: 17, ConstantsFolded: 1, RelationsFolded: 1, FoldsRejected: 1}
	if stats != want {
		t.Errorf("Pass() = %s, want %s", stats, want)
	}
	if f.engine.ErrorCount() != 1 {
		t.Errorf("got %d errors, want 1", f.engine.ErrorCount())
	}

	var total Stats
	total.Add(stats)
	total.Add(stats)
	if total.ConstantsFolded != 2 || total.NodesVisited != 34 {
		t.Errorf("Add() = %s", total)
	}
}

func TestRunEmptyBody(t *testing.T) {
	f := newFixture(t)
	o := f.optimizer()
	o.Run(nil)
	if stats := o.Pass(nil); stats != (Stats{}) {
		t.Errorf("Pass(nil) = %s", stats)
	}
}

func TestHeadNodesAreFatal(t *testing.T) {
	f := newFixture(t)
	at := createTestPos(4, 1)

	tests := []struct {
		name string
		head ast.Statement
		kind string
	}{
		{"procedure head", &ast.ProcedureHead{At: at, Id: f.id("write")}, "procedurehead"},
		{"function head", &ast.FunctionHead{At: at, Id: f.id("write"), Type: symtab.IntegerType}, "functionhead"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := f.assign("x", op(ast.TagAdd, intLit(1), intLit(2)))
			afterRhs := op(ast.TagAdd, intLit(3), intLit(4))
			after := f.assign("z", afterRhs)

			defer func() {
				r := recover()
				se, ok := r.(*errors.StandardError)
				if !ok {
					t.Fatalf("recovered %v, want *errors.StandardError", r)
				}
				if se.Category != errors.CategoryContract || se.Code != errors.CodeAbstractOptimize {
					t.Errorf("error = %v", se)
				}
				if se.Message != "Trying to optimize abstract class "+tt.kind+"." {
					t.Errorf("message = %q", se.Message)
				}
				if before.String() != "x := 3" {
					t.Errorf("statement before the head = %s, want it folded", before)
				}
				if after.Rhs != ast.Expression(afterRhs) || afterRhs.String() != "(3 + 4)" {
					t.Errorf("statement after the head was modified: %s", after)
				}
			}()

			f.optimizer().Run(ast.NewStmtList(before, tt.head, after))
			t.Fatal("Run returned normally")
		})
	}
}

func TestMissingChildIsFatal(t *testing.T) {
	f := newFixture(t)

	defer func() {
		se, ok := recover().(*errors.StandardError)
		if !ok {
			t.Fatal("expected a *errors.StandardError panic")
		}
		if se.Code != errors.CodeMissingChild {
			t.Errorf("code = %s, want %s", se.Code, errors.CodeMissingChild)
		}
	}()

	f.optimizer().Run(ast.NewStmtList(&ast.Assign{At: createTestPos(1, 1), Lhs: f.id("x")}))
}

func TestPipeline(t *testing.T) {
	f := newFixture(t)

	t.Run("stops after a pass that folds nothing", func(t *testing.T) {
		body := ast.NewStmtList(f.assign("z", op(ast.TagAdd, op(ast.TagAdd, intLit(2), intLit(3)), intLit(4))))
		p := NewPipeline(f.optimizer(), 0)

		if p.MaxPasses() != DefaultMaxPasses {
			t.Errorf("MaxPasses() = %d, want %d", p.MaxPasses(), DefaultMaxPasses)
		}
		if passes := p.Run(body); passes != 2 {
			t.Errorf("Run() = %d passes, want 2", passes)
		}
		if body.String() != "z := 9" {
			t.Errorf("body = %s", body)
		}
		if p.Stats().ConstantsFolded != 2 {
			t.Errorf("Stats() = %s", p.Stats())
		}
	})

	t.Run("nothing to fold", func(t *testing.T) {
		p := NewPipeline(f.optimizer(), 3)
		if passes := p.Run(ast.NewStmtList(f.assign("z", f.id("x")))); passes != 1 {
			t.Errorf("Run() = %d passes, want 1", passes)
		}
	})

	t.Run("pass limit", func(t *testing.T) {
		p := NewPipeline(f.optimizer(), 1)
		body := ast.NewStmtList(f.assign("z", op(ast.TagAdd, intLit(2), intLit(3))))
		if passes := p.Run(body); passes != 1 {
			t.Errorf("Run() = %d passes, want 1", passes)
		}
	})

	t.Run("rejected nodes are reported once", func(t *testing.T) {
		f := newFixture(t)
		body := ast.NewStmtList(
			f.assign("x", op(ast.TagMod, intLit(7), intLit(0))),
			f.assign("y", op(ast.TagMod, realLit(1.5), realLit(2))),
			f.assign("z", op(ast.TagAdd, intLit(1), intLit(2))),
		)
		p := NewPipeline(f.optimizer(), 0)

		if passes := p.Run(body); passes != 2 {
			t.Fatalf("Run() = %d passes, want 2", passes)
		}
		if got := f.engine.ErrorCount(); got != 2 {
			t.Errorf("ErrorCount() = %d, want 2: %v", got, f.engine.Diagnostics())
		}
		if p.Stats().FoldsRejected != 2 {
			t.Errorf("Stats() = %s, want 2 rejected", p.Stats())
		}

		// A new run starts without memory of the previous one.
		p.Run(body)
		if got := f.engine.ErrorCount(); got != 4 {
			t.Errorf("ErrorCount() after second Run = %d, want 4", got)
		}
	})

	t.Run("nil body", func(t *testing.T) {
		if passes := NewPipeline(f.optimizer(), 2).Run(nil); passes != 0 {
			t.Errorf("Run(nil) = %d passes, want 0", passes)
		}
	})
}

type recordingLogger struct {
	lines int
}

func (l *recordingLogger) Debug(string, ...interface{}) { l.lines++ }

func TestWithLogger(t *testing.T) {
	f := newFixture(t)
	logger := &recordingLogger{}
	o := f.optimizer(WithLogger(logger), WithLogger(nil))

	o.Run(ast.NewStmtList(f.assign("z", intLit(1))))
	if logger.lines != 1 {
		t.Errorf("logged %d lines, want 1", logger.lines)
	}
	if o.Policy() != DiagnoseZeroDivisor {
		t.Errorf("default policy = %s", o.Policy())
	}
}

func TestNilReporter(t *testing.T) {
	f := newFixture(t)
	o := New(f.syms, nil)
	if _, ok := o.FoldConstants(op(ast.TagMod, realLit(1), realLit(2))); ok {
		t.Error("invalid operation folded")
	}
}
