// Package format renders line diffs of program listings.
package format

import (
	"fmt"
	"strings"
)

// DiffOptions controls diff generation.
type DiffOptions struct {
	Context     int  // Number of context lines to show
	ShowNumbers bool // Show line numbers
}

// DefaultDiffOptions returns default diff options.
func DefaultDiffOptions() DiffOptions {
	return DiffOptions{Context: 3}
}

// DiffResult represents the result of a diff operation.
type DiffResult struct {
	Hunks      []Hunk
	Stats      DiffStat
	HasChanges bool
}

// Hunk represents a contiguous block of changes.
type Hunk struct {
	Header        string
	Lines         []Line
	OriginalStart int
	OriginalCount int
	ModifiedStart int
	ModifiedCount int
}

// Line represents a single line in a diff.
type Line struct {
	Content string
	Type    LineType
	Number  int
}

// LineType represents the type of a diff line.
type LineType int

const (
	LineTypeContext LineType = iota // Unchanged context line
	LineTypeAdded                   // Added line (+)
	LineTypeRemoved                 // Removed line (-)
)

// DiffStat contains statistics about changes.
type DiffStat struct {
	LinesAdded   int
	LinesRemoved int
}

// DiffFormatter generates unified diffs between two listings.
type DiffFormatter struct {
	options DiffOptions
}

// NewDiffFormatter creates a new diff formatter. A negative context is
// treated as zero.
func NewDiffFormatter(options DiffOptions) *DiffFormatter {
	options.Context = max(0, options.Context)
	return &DiffFormatter{options: options}
}

// GenerateDiff compares two listings line by line.
func (df *DiffFormatter) GenerateDiff(original, modified []string) *DiffResult {
	hunks := df.generateHunks(original, modified, editScript(original, modified))

	result := &DiffResult{
		Hunks:      hunks,
		HasChanges: len(hunks) > 0,
	}
	for _, h := range hunks {
		for _, l := range h.Lines {
			switch l.Type {
			case LineTypeAdded:
				result.Stats.LinesAdded++
			case LineTypeRemoved:
				result.Stats.LinesRemoved++
			}
		}
	}
	return result
}

// FormatDiff renders result in unified format. It returns "" when nothing
// changed.
func (df *DiffFormatter) FormatDiff(filename string, result *DiffResult) string {
	if !result.HasChanges {
		return ""
	}

	var output strings.Builder
	fmt.Fprintf(&output, "--- %s\t(original)\n", filename)
	fmt.Fprintf(&output, "+++ %s\t(optimized)\n", filename)

	for _, hunk := range result.Hunks {
		output.WriteString(hunk.Header + "\n")
		for _, line := range hunk.Lines {
			prefix := " "
			switch line.Type {
			case LineTypeAdded:
				prefix = "+"
			case LineTypeRemoved:
				prefix = "-"
			}

			if df.options.ShowNumbers {
				fmt.Fprintf(&output, "%s%4d: %s\n", prefix, line.Number, line.Content)
			} else {
				fmt.Fprintf(&output, "%s%s\n", prefix, line.Content)
			}
		}
	}
	return output.String()
}

// edit is one step of an edit script. a and b index the original and
// modified listings.
type edit struct {
	kind LineType
	a, b int
}

// editScript returns a shortest edit script turning original into
// modified, computed from the longest common subsequence.
func editScript(original, modified []string) []edit {
	n, m := len(original), len(modified)
	lcs := make([][]int, n+1)
	for i := range lcs {
		lcs[i] = make([]int, m+1)
	}
	for i := n - 1; i >= 0; i-- {
		for j := m - 1; j >= 0; j-- {
			if original[i] == modified[j] {
				lcs[i][j] = lcs[i+1][j+1] + 1
			} else {
				lcs[i][j] = max(lcs[i+1][j], lcs[i][j+1])
			}
		}
	}

	var script []edit
	i, j := 0, 0
	for i < n && j < m {
		switch {
		case original[i] == modified[j]:
			script = append(script, edit{LineTypeContext, i, j})
			i++
			j++
		case lcs[i+1][j] >= lcs[i][j+1]:
			script = append(script, edit{LineTypeRemoved, i, j})
			i++
		default:
			script = append(script, edit{LineTypeAdded, i, j})
			j++
		}
	}
	for ; i < n; i++ {
		script = append(script, edit{LineTypeRemoved, i, m})
	}
	for ; j < m; j++ {
		script = append(script, edit{LineTypeAdded, n, j})
	}
	return script
}

// generateHunks groups changes closer than twice the context into one hunk.
func (df *DiffFormatter) generateHunks(original, modified []string, script []edit) []Hunk {
	context := df.options.Context

	var hunks []Hunk
	for i := 0; i < len(script); {
		if script[i].kind == LineTypeContext {
			i++
			continue
		}

		start := max(0, i-context)
		end := i
		for end < len(script) {
			if script[end].kind != LineTypeContext {
				end++
				continue
			}
			run := end
			for run < len(script) && script[run].kind == LineTypeContext {
				run++
			}
			if run == len(script) || run-end > 2*context {
				break
			}
			end = run
		}

		stop := min(len(script), end+context)
		hunks = append(hunks, newHunk(original, modified, script[start:stop]))
		i = stop
	}
	return hunks
}

func newHunk(original, modified []string, edits []edit) Hunk {
	h := Hunk{
		OriginalStart: edits[0].a + 1,
		ModifiedStart: edits[0].b + 1,
	}
	for _, e := range edits {
		switch e.kind {
		case LineTypeContext:
			h.Lines = append(h.Lines, Line{Type: e.kind, Number: e.a + 1, Content: original[e.a]})
			h.OriginalCount++
			h.ModifiedCount++
		case LineTypeRemoved:
			h.Lines = append(h.Lines, Line{Type: e.kind, Number: e.a + 1, Content: original[e.a]})
			h.OriginalCount++
		case LineTypeAdded:
			h.Lines = append(h.Lines, Line{Type: e.kind, Number: e.b + 1, Content: modified[e.b]})
			h.ModifiedCount++
		}
	}
	// An empty side starts at the line before the change.
	if h.OriginalCount == 0 {
		h.OriginalStart--
	}
	if h.ModifiedCount == 0 {
		h.ModifiedStart--
	}
	h.Header = fmt.Sprintf("@@ -%d,%d +%d,%d @@",
		h.OriginalStart, h.OriginalCount, h.ModifiedStart, h.ModifiedCount)
	return h
}
