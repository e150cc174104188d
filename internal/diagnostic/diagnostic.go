// Diagnostic reporting for the Diesel compiler.
// Collects type and semantic errors raised while folding constants and
// reports the error count that the driver uses as its exit status.

package diagnostic

import (
	"fmt"
	"sort"
	"strings"

	"github.com/diesel-lang/diesel/internal/position"
)

// DiagnosticLevel represents the severity level of a diagnostic message.
type DiagnosticLevel int

const (
	DiagnosticError DiagnosticLevel = iota
	DiagnosticWarning
	DiagnosticNote
)

func (dl DiagnosticLevel) String() string {
	switch dl {
	case DiagnosticError:
		return "error"
	case DiagnosticWarning:
		return "warning"
	case DiagnosticNote:
		return "note"
	default:
		return "unknown"
	}
}

// DiagnosticCategory represents the category of diagnostic.
type DiagnosticCategory int

const (
	DiagnosticType DiagnosticCategory = iota
	DiagnosticSemantic
	DiagnosticInternal
)

func (dc DiagnosticCategory) String() string {
	switch dc {
	case DiagnosticType:
		return "type"
	case DiagnosticSemantic:
		return "semantic"
	case DiagnosticInternal:
		return "internal"
	default:
		return "unknown"
	}
}

// Diagnostic represents a single diagnostic message.
type Diagnostic struct {
	Code     string
	Title    string
	Message  string
	Tags     []string
	Pos      position.Position
	Level    DiagnosticLevel
	Category DiagnosticCategory
}

// String renders the diagnostic on one line, the way type errors were printed
// by the original compiler driver.
func (d *Diagnostic) String() string {
	s := fmt.Sprintf("%s: %s[%s]: %s", d.Pos, d.Level, d.Code, d.Title)
	if d.Message != "" {
		s += ": " + d.Message
	}
	return s
}

// DiagnosticBuilder helps construct diagnostic messages with fluent API.
type DiagnosticBuilder struct {
	diagnostic *Diagnostic
}

// NewDiagnostic creates a new diagnostic builder.
func NewDiagnostic() *DiagnosticBuilder {
	return &DiagnosticBuilder{diagnostic: &Diagnostic{}}
}

func (db *DiagnosticBuilder) Error() *DiagnosticBuilder {
	db.diagnostic.Level = DiagnosticError

	return db
}

func (db *DiagnosticBuilder) Warning() *DiagnosticBuilder {
	db.diagnostic.Level = DiagnosticWarning

	return db
}

func (db *DiagnosticBuilder) Note() *DiagnosticBuilder {
	db.diagnostic.Level = DiagnosticNote

	return db
}

func (db *DiagnosticBuilder) Type() *DiagnosticBuilder {
	db.diagnostic.Category = DiagnosticType

	return db
}

func (db *DiagnosticBuilder) Semantic() *DiagnosticBuilder {
	db.diagnostic.Category = DiagnosticSemantic

	return db
}

func (db *DiagnosticBuilder) Internal() *DiagnosticBuilder {
	db.diagnostic.Category = DiagnosticInternal

	return db
}

func (db *DiagnosticBuilder) Code(code string) *DiagnosticBuilder {
	db.diagnostic.Code = code

	return db
}

func (db *DiagnosticBuilder) Title(title string) *DiagnosticBuilder {
	db.diagnostic.Title = title

	return db
}

func (db *DiagnosticBuilder) Message(message string) *DiagnosticBuilder {
	db.diagnostic.Message = message

	return db
}

func (db *DiagnosticBuilder) At(pos position.Position) *DiagnosticBuilder {
	db.diagnostic.Pos = pos

	return db
}

func (db *DiagnosticBuilder) Tag(tag string) *DiagnosticBuilder {
	db.diagnostic.Tags = append(db.diagnostic.Tags, tag)

	return db
}

func (db *DiagnosticBuilder) Build() *Diagnostic {
	return db.diagnostic
}

// Reporter receives diagnostics. The optimizer only depends on this.
type Reporter interface {
	Report(d *Diagnostic)
}

// Engine manages the collection and processing of diagnostics.
type Engine struct {
	diagnostics []Diagnostic
	config      Config
	truncated   bool
}

// Config controls diagnostic behavior.
type Config struct {
	IgnoreCodes      []string
	MaxErrors        int // 0 means no limit
	WarningsAsErrors bool
}

// NewEngine creates a new diagnostic engine.
func NewEngine(config Config) *Engine {
	return &Engine{
		diagnostics: make([]Diagnostic, 0),
		config:      config,
	}
}

// Report adds a diagnostic to the engine.
func (de *Engine) Report(diagnostic *Diagnostic) {
	if de.shouldIgnore(diagnostic) || de.truncated {
		return
	}

	d := *diagnostic
	if de.config.WarningsAsErrors && d.Level == DiagnosticWarning {
		d.Level = DiagnosticError
	}

	de.diagnostics = append(de.diagnostics, d)

	if de.config.MaxErrors > 0 && de.ErrorCount() >= de.config.MaxErrors {
		de.truncated = true
		de.diagnostics = append(de.diagnostics, *NewDiagnostic().
			Note().
			Internal().
			Code("N0001").
			Title("Too many errors").
			Message(fmt.Sprintf("Stopping after %d errors", de.config.MaxErrors)).
			At(d.Pos).
			Build())
	}
}

// shouldIgnore checks if a diagnostic should be ignored based on config.
func (de *Engine) shouldIgnore(diagnostic *Diagnostic) bool {
	// Errors are never suppressed, they decide the exit status.
	if diagnostic.Level == DiagnosticError {
		return false
	}
	for _, code := range de.config.IgnoreCodes {
		if diagnostic.Code == code {
			return true
		}
	}
	return false
}

// Diagnostics returns all diagnostics.
func (de *Engine) Diagnostics() []Diagnostic {
	return de.diagnostics
}

// ErrorCount returns the number of error-level diagnostics.
func (de *Engine) ErrorCount() int {
	n := 0
	for _, diag := range de.diagnostics {
		if diag.Level == DiagnosticError {
			n++
		}
	}
	return n
}

// WarningCount returns the number of warning-level diagnostics.
func (de *Engine) WarningCount() int {
	n := 0
	for _, diag := range de.diagnostics {
		if diag.Level == DiagnosticWarning {
			n++
		}
	}
	return n
}

// HasErrors returns true if there are any errors.
func (de *Engine) HasErrors() bool {
	return de.ErrorCount() > 0
}

// Clear removes all diagnostics.
func (de *Engine) Clear() {
	de.diagnostics = de.diagnostics[:0]
	de.truncated = false
}

// Sort orders diagnostics by position and severity.
func (de *Engine) Sort() {
	sort.SliceStable(de.diagnostics, func(i, j int) bool {
		a, b := de.diagnostics[i], de.diagnostics[j]
		if a.Pos != b.Pos {
			return a.Pos.Before(b.Pos)
		}
		return a.Level < b.Level
	})
}

// Summary returns a one line summary such as "2 error(s), 1 warning(s)".
func (de *Engine) Summary() string {
	errorCount := de.ErrorCount()
	warningCount := de.WarningCount()

	if errorCount == 0 && warningCount == 0 {
		return "no issues found"
	}

	var parts []string
	if errorCount > 0 {
		parts = append(parts, fmt.Sprintf("%d error(s)", errorCount))
	}
	if warningCount > 0 {
		parts = append(parts, fmt.Sprintf("%d warning(s)", warningCount))
	}
	return strings.Join(parts, ", ")
}
