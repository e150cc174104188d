package format

import "github.com/diesel-lang/diesel/internal/ast"

// Listing renders each top-level statement of body on its own line.
func Listing(body *ast.StmtList) []string {
	if body == nil {
		return nil
	}
	stmts := body.Statements()
	lines := make([]string, len(stmts))
	for i, s := range stmts {
		lines[i] = s.String()
	}
	return lines
}

// DiffBodies renders a unified diff between two listings of the same file.
func DiffBodies(filename string, before, after []string, options DiffOptions) string {
	df := NewDiffFormatter(options)
	return df.FormatDiff(filename, df.GenerateDiff(before, after))
}
