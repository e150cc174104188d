package ast

// Tag identifies the concrete kind of a node.
type Tag int

const (
	TagStmtList Tag = iota
	TagExprList
	TagElsifList

	TagId
	TagIndexed
	TagInteger
	TagReal

	// Binary operations
	TagAdd
	TagSub
	TagMult
	TagDivide
	TagIDiv
	TagMod
	TagOr
	TagAnd

	// Binary relations
	TagEqual
	TagNotEqual
	TagLessThan
	TagGreaterThan

	TagUMinus
	TagNot
	TagCast
	TagFunctionCall

	TagProcedureCall
	TagAssign
	TagWhile
	TagIf
	TagElsif
	TagReturn

	TagProcedureHead
	TagFunctionHead
)

var tagNames = [...]string{
	TagStmtList:      "stmt_list",
	TagExprList:      "expr_list",
	TagElsifList:     "elsif_list",
	TagId:            "id",
	TagIndexed:       "indexed",
	TagInteger:       "integer",
	TagReal:          "real",
	TagAdd:           "add",
	TagSub:           "sub",
	TagMult:          "mult",
	TagDivide:        "divide",
	TagIDiv:          "idiv",
	TagMod:           "mod",
	TagOr:            "or",
	TagAnd:           "and",
	TagEqual:         "equal",
	TagNotEqual:      "notequal",
	TagLessThan:      "lessthan",
	TagGreaterThan:   "greaterthan",
	TagUMinus:        "uminus",
	TagNot:           "not",
	TagCast:          "cast",
	TagFunctionCall:  "functioncall",
	TagProcedureCall: "procedurecall",
	TagAssign:        "assign",
	TagWhile:         "while",
	TagIf:            "if",
	TagElsif:         "elsif",
	TagReturn:        "return",
	TagProcedureHead: "procedurehead",
	TagFunctionHead:  "functionhead",
}

func (t Tag) String() string {
	if t < 0 || int(t) >= len(tagNames) {
		return "unknown"
	}
	return tagNames[t]
}

// Operator returns the source spelling of a binary operation or relation tag.
func (t Tag) Operator() string {
	switch t {
	case TagAdd:
		return "+"
	case TagSub:
		return "-"
	case TagMult:
		return "*"
	case TagDivide:
		return "/"
	case TagIDiv:
		return "div"
	case TagMod:
		return "mod"
	case TagOr:
		return "or"
	case TagAnd:
		return "and"
	case TagEqual:
		return "="
	case TagNotEqual:
		return "<>"
	case TagLessThan:
		return "<"
	case TagGreaterThan:
		return ">"
	default:
		return t.String()
	}
}

// IsOperation reports whether t is an arithmetic or logical binary operation.
func (t Tag) IsOperation() bool {
	return t >= TagAdd && t <= TagAnd
}

// IsRelation reports whether t is a binary comparison.
func (t Tag) IsRelation() bool {
	return t >= TagEqual && t <= TagGreaterThan
}

// ParseTag returns the tag named s, as printed by Tag.String.
func ParseTag(s string) (Tag, bool) {
	for i, name := range tagNames {
		if name == s {
			return Tag(i), true
		}
	}
	return 0, false
}
