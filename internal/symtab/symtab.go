// Package symtab holds the symbol table consulted by the later compiler
// stages. Symbols are addressed by Index; constant symbols carry their
// value, fixed at declaration.
package symtab

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/diesel-lang/diesel/internal/errors"
	"github.com/diesel-lang/diesel/internal/position"
)

// Index addresses a symbol in a Table.
type Index int

// NullSym is the index of no symbol.
const NullSym Index = -1

// Predefined type symbols, installed by New in this order.
const (
	VoidType Index = iota
	IntegerType
	RealType
)

// Tag identifies what a symbol denotes.
type Tag int

const (
	SymUndef Tag = iota
	SymConst
	SymVar
	SymArray
	SymParam
	SymProc
	SymFunc
	SymNameType
)

func (t Tag) String() string {
	switch t {
	case SymConst:
		return "const"
	case SymVar:
		return "var"
	case SymArray:
		return "array"
	case SymParam:
		return "param"
	case SymProc:
		return "proc"
	case SymFunc:
		return "func"
	case SymNameType:
		return "nametype"
	default:
		return "undef"
	}
}

// ConstValue is the payload of a constant symbol. Which field is
// meaningful depends on the symbol's Type.
type ConstValue struct {
	Int  int64
	Real float64
}

// Symbol is one entry of the table.
type Symbol struct {
	Name  string
	Tag   Tag
	Type  Index // type symbol; NullSym for type symbols themselves
	Level int   // block nesting level of the declaration
	Pos   position.Position
	Value ConstValue // only for SymConst
	Size  int        // array cardinality, only for SymArray
}

// IsConstant reports whether the symbol is a named constant.
func (s *Symbol) IsConstant() bool {
	return s != nil && s.Tag == SymConst
}

// Resolver is the read-only view of a table needed by later passes.
type Resolver interface {
	Get(idx Index) (*Symbol, error)
}

// Table stores symbols in declaration order.
type Table struct {
	symbols []*Symbol
	byName  map[string][]Index
	level   int
}

// New returns a table holding the predefined void, integer and real types.
func New() *Table {
	t := &Table{byName: make(map[string][]Index)}
	for _, name := range []string{"void", "integer", "real"} {
		t.add(&Symbol{Name: name, Tag: SymNameType, Type: NullSym})
	}
	return t
}

func (t *Table) add(s *Symbol) Index {
	idx := Index(len(t.symbols))
	t.symbols = append(t.symbols, s)
	t.byName[s.Name] = append(t.byName[s.Name], idx)
	return idx
}

// Get returns the symbol at idx.
func (t *Table) Get(idx Index) (*Symbol, error) {
	if idx < 0 || int(idx) >= len(t.symbols) {
		return nil, errors.UnknownSymbol(int(idx))
	}
	return t.symbols[idx], nil
}

// Len returns the number of symbols, predefined ones included.
func (t *Table) Len() int {
	return len(t.symbols)
}

// Lookup returns the most recent symbol declared with name.
func (t *Table) Lookup(name string) (Index, bool) {
	indices := t.byName[name]
	if len(indices) == 0 {
		return NullSym, false
	}
	return indices[len(indices)-1], true
}

// OpenScope enters a nested block; names declared after it may shadow outer ones.
func (t *Table) OpenScope() {
	t.level++
}

// CloseScope leaves the current block. Symbols stay addressable by index.
func (t *Table) CloseScope() {
	if t.level > 0 {
		t.level--
	}
}

// Level returns the current block nesting level.
func (t *Table) Level() int {
	return t.level
}

func (t *Table) enter(pos position.Position, name string, tag Tag, typ Index) (*Symbol, Index, error) {
	if name == "" {
		return nil, NullSym, errors.BadNode(pos.String(), "symbol without a name")
	}
	if prev, ok := t.Lookup(name); ok && t.symbols[prev].Level == t.level {
		return nil, NullSym, errors.DuplicateSymbol(name)
	}
	if typ != NullSym {
		ts, err := t.Get(typ)
		if err != nil {
			return nil, NullSym, err
		}
		if ts.Tag != SymNameType {
			return nil, NullSym, errors.BadNode(pos.String(), fmt.Sprintf("%s is not a type", ts.Name))
		}
	}
	s := &Symbol{Name: name, Tag: tag, Type: typ, Level: t.level, Pos: pos}
	return s, t.add(s), nil
}

// EnterConstant declares a named constant of type integer or real.
func (t *Table) EnterConstant(pos position.Position, name string, typ Index, value ConstValue) (Index, error) {
	if typ != IntegerType && typ != RealType {
		return NullSym, errors.BadNode(pos.String(), "constants must be integer or real")
	}
	s, idx, err := t.enter(pos, name, SymConst, typ)
	if err != nil {
		return NullSym, err
	}
	if typ == IntegerType {
		value.Real = float64(value.Int)
	}
	s.Value = value
	return idx, nil
}

// EnterVariable declares a variable.
func (t *Table) EnterVariable(pos position.Position, name string, typ Index) (Index, error) {
	_, idx, err := t.enter(pos, name, SymVar, typ)
	return idx, err
}

// EnterArray declares an array variable of size elements.
func (t *Table) EnterArray(pos position.Position, name string, typ Index, size int) (Index, error) {
	s, idx, err := t.enter(pos, name, SymArray, typ)
	if err != nil {
		return NullSym, err
	}
	s.Size = size
	return idx, nil
}

// EnterParameter declares a formal parameter.
func (t *Table) EnterParameter(pos position.Position, name string, typ Index) (Index, error) {
	_, idx, err := t.enter(pos, name, SymParam, typ)
	return idx, err
}

// EnterProcedure declares a procedure.
func (t *Table) EnterProcedure(pos position.Position, name string) (Index, error) {
	_, idx, err := t.enter(pos, name, SymProc, VoidType)
	return idx, err
}

// EnterFunction declares a function returning typ.
func (t *Table) EnterFunction(pos position.Position, name string, typ Index) (Index, error) {
	_, idx, err := t.enter(pos, name, SymFunc, typ)
	return idx, err
}

// TypeName returns the name of a type symbol, or "?" if idx is not one.
func (t *Table) TypeName(idx Index) string {
	s, err := t.Get(idx)
	if err != nil || s.Tag != SymNameType {
		return "?"
	}
	return s.Name
}

// Dump writes the table in declaration order.
func (t *Table) Dump(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "INDEX\tNAME\tTAG\tTYPE\tLEVEL\tVALUE")
	for i, s := range t.symbols {
		value := ""
		switch {
		case s.Tag == SymConst && s.Type == IntegerType:
			value = fmt.Sprintf("%d", s.Value.Int)
		case s.Tag == SymConst:
			value = fmt.Sprintf("%g", s.Value.Real)
		case s.Tag == SymArray:
			value = fmt.Sprintf("[%d]", s.Size)
		}
		typ := "-"
		if s.Type != NullSym {
			typ = t.TypeName(s.Type)
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\t%s\n", i, s.Name, s.Tag, typ, s.Level, value)
	}
	return tw.Flush()
}
