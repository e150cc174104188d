// Package program reads and writes the YAML interchange form of a type
// checked Diesel compilation unit: its symbol table and its statement body.
//
// A document looks like
//
//	format_version: "1.0.0"
//	file: demo.d
//	symbols:
//	  - {name: n, kind: const, type: integer, value: 10}
//	  - {name: x, kind: var, type: real}
//	body:
//	  - assign:
//	      pos: [3, 5]
//	      lhs: {id: x}
//	      rhs: {op: add, left: {real: 1.5}, right: {id: n}}
//
// Every node may carry a pos; a node without one inherits its parent's.
package program

import "gopkg.in/yaml.v3"

// FormatVersion is written into every encoded document.
const FormatVersion = "1.0.0"

// FormatConstraint is the range of format versions Decode accepts.
const FormatConstraint = "^1.0"

// Document is the top-level YAML mapping.
type Document struct {
	FormatVersion string       `yaml:"format_version"`
	File          string       `yaml:"file,omitempty"`
	Source        string       `yaml:"source,omitempty"`
	Symbols       []SymbolDecl `yaml:"symbols,omitempty"`
	Body          []*Stmt      `yaml:"body"`
}

// Pos is a [line, column] pair.
type Pos []int

// SymbolDecl declares one symbol. Value is only read for constants and
// Size only for arrays.
type SymbolDecl struct {
	Name  string     `yaml:"name"`
	Kind  string     `yaml:"kind"`
	Type  string     `yaml:"type,omitempty"`
	Value *yaml.Node `yaml:"value,omitempty"`
	Size  int        `yaml:"size,omitempty"`
	Pos   Pos        `yaml:"pos,flow,omitempty"`
}

// Expr is an expression. Exactly one of the kind keys is set: int, real,
// id, index, op, uminus, not, cast or call.
type Expr struct {
	Pos Pos `yaml:"pos,flow,omitempty"`

	Int  *int64   `yaml:"int,omitempty"`
	Real *float64 `yaml:"real,omitempty"`
	Id   string   `yaml:"id,omitempty"`

	Index *Expr  `yaml:"index,omitempty"`
	Of    string `yaml:"of,omitempty"`

	Op    string `yaml:"op,omitempty"`
	Left  *Expr  `yaml:"left,omitempty"`
	Right *Expr  `yaml:"right,omitempty"`
	Type  string `yaml:"type,omitempty"`

	UMinus *Expr `yaml:"uminus,omitempty"`
	Not    *Expr `yaml:"not,omitempty"`
	Cast   *Expr `yaml:"cast,omitempty"`

	Call string  `yaml:"call,omitempty"`
	Args []*Expr `yaml:"args,omitempty"`
}

// Stmt is a statement. Exactly one field is set.
type Stmt struct {
	Assign   *AssignStmt `yaml:"assign,omitempty"`
	If       *IfStmt     `yaml:"if,omitempty"`
	While    *WhileStmt  `yaml:"while,omitempty"`
	Return   *ReturnStmt `yaml:"return,omitempty"`
	PCall    *CallStmt   `yaml:"pcall,omitempty"`
	ProcHead *HeadStmt   `yaml:"prochead,omitempty"`
	FuncHead *HeadStmt   `yaml:"funchead,omitempty"`
}

type AssignStmt struct {
	Pos Pos   `yaml:"pos,flow,omitempty"`
	Lhs *Expr `yaml:"lhs"`
	Rhs *Expr `yaml:"rhs"`
}

type IfStmt struct {
	Pos   Pos           `yaml:"pos,flow,omitempty"`
	Cond  *Expr         `yaml:"cond"`
	Then  []*Stmt       `yaml:"then,omitempty"`
	Elsif []*ElsifBlock `yaml:"elsif,omitempty"`
	Else  []*Stmt       `yaml:"else,omitempty"`
}

type ElsifBlock struct {
	Pos  Pos     `yaml:"pos,flow,omitempty"`
	Cond *Expr   `yaml:"cond"`
	Then []*Stmt `yaml:"then,omitempty"`
}

type WhileStmt struct {
	Pos  Pos     `yaml:"pos,flow,omitempty"`
	Cond *Expr   `yaml:"cond"`
	Do   []*Stmt `yaml:"do,omitempty"`
}

type ReturnStmt struct {
	Pos   Pos   `yaml:"pos,flow,omitempty"`
	Value *Expr `yaml:"value,omitempty"`
}

type CallStmt struct {
	Pos  Pos     `yaml:"pos,flow,omitempty"`
	Name string  `yaml:"name"`
	Args []*Expr `yaml:"args,omitempty"`
}

// HeadStmt names a routine. Type is only used by funchead.
type HeadStmt struct {
	Pos  Pos    `yaml:"pos,flow,omitempty"`
	Name string `yaml:"name"`
	Type string `yaml:"type,omitempty"`
}
