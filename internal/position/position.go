// Package position provides source locations for the Diesel compiler.
// Every AST node and diagnostic carries a Position so that folding
// errors can be reported against the line that produced them.
package position

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// Position represents a single point in source code
type Position struct {
	Filename string // Source file name
	Line     int    // 1-based line number
	Column   int    // 1-based column number
}

// At returns a position without a file name.
func At(line, column int) Position {
	return Position{Line: line, Column: column}
}

// IsValid returns true if the position is valid
func (p Position) IsValid() bool {
	return p.Line > 0 && p.Column > 0
}

// String returns a string representation of the position
func (p Position) String() string {
	if p.Filename != "" {
		return fmt.Sprintf("%s:%d:%d", filepath.Base(p.Filename), p.Line, p.Column)
	}
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Before returns true if this position comes before other
func (p Position) Before(other Position) bool {
	if p.Filename != other.Filename {
		return p.Filename < other.Filename
	}
	if p.Line != other.Line {
		return p.Line < other.Line
	}
	return p.Column < other.Column
}

// SourceFile represents a source file with content split into lines
type SourceFile struct {
	Filename string   // File path
	Content  string   // Source code content
	Lines    []string // Lines of source code for efficient access
}

// NewSourceFile creates a new source file from content
func NewSourceFile(filename, content string) *SourceFile {
	return &SourceFile{
		Filename: filename,
		Content:  content,
		Lines:    strings.Split(content, "\n"),
	}
}

// GetLine returns the specified line (1-based) or empty string if invalid
func (sf *SourceFile) GetLine(lineNum int) string {
	if lineNum < 1 || lineNum > len(sf.Lines) {
		return ""
	}
	return strings.TrimRight(sf.Lines[lineNum-1], "\r")
}

// Excerpt renders the line holding pos followed by a caret under its column.
// It returns the empty string when the line does not exist.
func (sf *SourceFile) Excerpt(pos Position) string {
	if sf == nil || !pos.IsValid() {
		return ""
	}
	if pos.Line > len(sf.Lines) {
		return ""
	}

	line := sf.GetLine(pos.Line)
	runes := []rune(line)

	var b strings.Builder
	fmt.Fprintf(&b, "%4d | %s\n", pos.Line, line)
	b.WriteString("     | ")

	// Keep tabs so the caret lines up with the source.
	for i := 1; i < pos.Column && i <= len(runes); i++ {
		if runes[i-1] == '\t' {
			b.WriteByte('\t')
		} else {
			b.WriteByte(' ')
		}
	}
	if pos.Column > utf8.RuneCountInString(line)+1 {
		b.WriteString(strings.Repeat(" ", pos.Column-len(runes)-1))
	}
	b.WriteString("^\n")

	return b.String()
}
