package ast

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/diesel-lang/diesel/internal/symtab"
)

// TypeNamer resolves type symbols for printing. *symtab.Table implements it.
type TypeNamer interface {
	TypeName(idx symtab.Index) string
}

// Fprint writes an indented dump of the tree rooted at node, one node per line.
// names may be nil, in which case expression types are printed as indices.
func Fprint(w io.Writer, node Node, names TypeNamer) error {
	bw := bufio.NewWriter(w)
	p := &printer{w: bw, names: names}
	p.print(node, 0)
	if p.err != nil {
		return p.err
	}
	return bw.Flush()
}

type printer struct {
	w     *bufio.Writer
	names TypeNamer
	err   error
}

func (p *printer) print(node Node, depth int) {
	if p.err != nil || isNil(node) {
		return
	}

	var b strings.Builder
	b.WriteString(strings.Repeat("  ", depth))
	b.WriteString(node.Tag().String())
	if detail := p.detail(node); detail != "" {
		b.WriteString(" ")
		b.WriteString(detail)
	}
	if e, ok := node.(Expression); ok {
		fmt.Fprintf(&b, " : %s", p.typeName(e.ExprType()))
	}
	fmt.Fprintf(&b, " <%s>\n", node.Pos())

	if _, err := p.w.WriteString(b.String()); err != nil {
		p.err = err
		return
	}
	for _, c := range Children(node) {
		p.print(c, depth+1)
	}
}

func (p *printer) detail(node Node) string {
	switch n := node.(type) {
	case *Id:
		return fmt.Sprintf("%s #%d", n.Name, n.Sym)
	case *Integer, *Real:
		return n.String()
	case *BinaryOperation:
		return fmt.Sprintf("%q", n.Op.Operator())
	case *BinaryRelation:
		return fmt.Sprintf("%q", n.Op.Operator())
	}
	return ""
}

func (p *printer) typeName(idx symtab.Index) string {
	if p.names == nil {
		return fmt.Sprintf("#%d", idx)
	}
	return p.names.TypeName(idx)
}
