// Package optimize implements constant folding on the Diesel AST.
//
// The optimizer walks a statement list depth first and replaces binary
// operations and relations whose operands are compile-time constants with
// a single literal. Operands are constants when they are literals or
// identifiers bound to constant symbols. Identifiers themselves are never
// rewritten; later stages consult the symbol table for them.
//
// Folding happens in the parent: a node first optimizes its children and
// then assigns the folded literal into its own child slot. The folded
// literal takes the source position of the expression it replaces.
package optimize

import (
	"fmt"
	"strings"

	"github.com/diesel-lang/diesel/internal/ast"
	"github.com/diesel-lang/diesel/internal/diagnostic"
	"github.com/diesel-lang/diesel/internal/symtab"
)

// ZeroDivisorPolicy selects what happens to an integer divide, idiv or mod
// whose divisor is the constant 0.
type ZeroDivisorPolicy int

const (
	// DiagnoseZeroDivisor reports a type diagnostic and leaves the node.
	DiagnoseZeroDivisor ZeroDivisorPolicy = iota
	// DeferZeroDivisor leaves the node without a report; the fault happens at run time.
	DeferZeroDivisor
)

func (p ZeroDivisorPolicy) String() string {
	switch p {
	case DiagnoseZeroDivisor:
		return "diagnose"
	case DeferZeroDivisor:
		return "defer"
	default:
		return "unknown"
	}
}

// ParseZeroDivisorPolicy accepts the names printed by String.
func ParseZeroDivisorPolicy(s string) (ZeroDivisorPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "diagnose":
		return DiagnoseZeroDivisor, nil
	case "defer":
		return DeferZeroDivisor, nil
	}
	return DiagnoseZeroDivisor, fmt.Errorf("unknown zero divisor policy %q (want diagnose or defer)", s)
}

// Logger receives per-pass statistics. *cli.Logger satisfies it.
type Logger interface {
	Debug(format string, args ...interface{})
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}

type nopReporter struct{}

func (nopReporter) Report(*diagnostic.Diagnostic) {}

// Option configures an Optimizer.
type Option func(*Optimizer)

// WithZeroDivisorPolicy sets the zero divisor policy. The default is DiagnoseZeroDivisor.
func WithZeroDivisorPolicy(policy ZeroDivisorPolicy) Option {
	return func(o *Optimizer) { o.policy = policy }
}

// WithLogger sets the logger used for pass statistics.
func WithLogger(logger Logger) Option {
	return func(o *Optimizer) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// Optimizer folds constant expressions. It keeps no state between calls;
// one value may be reused for any number of trees resolved by the same
// symbol table.
type Optimizer struct {
	syms   symtab.Resolver
	diags  diagnostic.Reporter
	policy ZeroDivisorPolicy
	logger Logger
}

// New returns an optimizer resolving identifiers through syms and reporting
// folding errors to diags. A nil diags discards reports.
func New(syms symtab.Resolver, diags diagnostic.Reporter, opts ...Option) *Optimizer {
	o := &Optimizer{
		syms:   syms,
		diags:  diags,
		policy: DiagnoseZeroDivisor,
		logger: nopLogger{},
	}
	if o.diags == nil {
		o.diags = nopReporter{}
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Policy returns the zero divisor policy in effect.
func (o *Optimizer) Policy() ZeroDivisorPolicy { return o.policy }

// Stats counts what one pass did.
type Stats struct {
	NodesVisited    int // nodes whose Visit method ran
	ConstantsFolded int // binary operations replaced by a literal
	RelationsFolded int // relations replaced by 0 or 1
	FoldsRejected   int // constant operands that could not be folded (invalid real op, zero divisor)
}

// Folded returns the number of replacements made.
func (s Stats) Folded() int { return s.ConstantsFolded + s.RelationsFolded }

// Add accumulates other into s.
func (s *Stats) Add(other Stats) {
	s.NodesVisited += other.NodesVisited
	s.ConstantsFolded += other.ConstantsFolded
	s.RelationsFolded += other.RelationsFolded
	s.FoldsRejected += other.FoldsRejected
}

func (s Stats) String() string {
	return fmt.Sprintf("Visited: %d, Constants: %d, Relations: %d, Rejected: %d",
		s.NodesVisited, s.ConstantsFolded, s.RelationsFolded, s.FoldsRejected)
}

// Run optimizes body in place. A nil body is left alone.
//
// Run panics with a *errors.StandardError of category CONTRACT when it
// meets a procedure or function head, or a node missing a mandatory
// child. Nodes visited before that point keep their replacements; nothing
// is modified after it.
func (o *Optimizer) Run(body *ast.StmtList) {
	o.Pass(body)
}

// Pass is Run returning the statistics of the traversal.
func (o *Optimizer) Pass(body *ast.StmtList) Stats {
	return o.pass(body, nil)
}

// pass runs one traversal. rejected, when non-nil, carries the nodes
// rejected by earlier passes over the same tree and collects new ones.
func (o *Optimizer) pass(body *ast.StmtList, rejected map[*ast.Binary]struct{}) Stats {
	if body == nil {
		return Stats{}
	}
	w := &walker{opt: o, rejected: rejected}
	body.Accept(w)
	o.logger.Debug("constant folding pass: %s", w.stats)
	return w.stats
}
