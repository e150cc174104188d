package ast

// Checked narrowings. Each returns false instead of failing when the
// expression is of another kind.

// AsBinary returns the operands of a binary operation or relation.
func AsBinary(e Expression) (*Binary, bool) {
	switch n := e.(type) {
	case *BinaryOperation:
		if n != nil {
			return &n.Binary, true
		}
	case *BinaryRelation:
		if n != nil {
			return &n.Binary, true
		}
	}
	return nil, false
}

// AsInteger returns e as an integer literal.
func AsInteger(e Expression) (*Integer, bool) {
	n, ok := e.(*Integer)
	return n, ok && n != nil
}

// AsReal returns e as a real literal.
func AsReal(e Expression) (*Real, bool) {
	n, ok := e.(*Real)
	return n, ok && n != nil
}

// AsId returns e as an identifier.
func AsId(e Expression) (*Id, bool) {
	n, ok := e.(*Id)
	return n, ok && n != nil
}

// IsLiteral reports whether e is an integer or real literal.
func IsLiteral(e Expression) bool {
	switch e.(type) {
	case *Integer, *Real:
		return true
	}
	return false
}
