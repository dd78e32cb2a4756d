// Package diag defines the diagnostics raised while preprocessing and the
// rendering used by the top-level reporter.
package diag

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/fwessels/sixcc/internal/token"
)

// Kind classifies a diagnostic.
type Kind int

const (
	ExpectedIdentifier Kind = iota
	ExpectedCommaOrRParen
	EllipsisNotLast
	DuplicateParameter
	ExpectedLeftParen
	TooFewArguments
	TooManyArguments
	IllegalMacroRedefinition
	IncludeOpenFailed
	ExpectedHeaderName
	DirectiveNotFollowedByNewline
	OrphanedEndif
	OrphanedElse
	ExpectedEndif
	ConditionalNotTerminated
	UnexpectedEOF
	UnknownDirective
	DirectiveInArguments
	InvalidExpression
	IncludeDepthExceeded
	CustomError

	// Non-fatal kinds.
	CustomWarning
	MultiByteCharacter
)

var kindNames = [...]string{
	ExpectedIdentifier:            "expected-identifier",
	ExpectedCommaOrRParen:         "expected-comma-or-rparen",
	EllipsisNotLast:               "ellipsis-not-last",
	DuplicateParameter:            "duplicate-parameter",
	ExpectedLeftParen:             "expected-left-parenthesis",
	TooFewArguments:               "too-few-arguments",
	TooManyArguments:              "too-many-arguments",
	IllegalMacroRedefinition:      "illegal-macro-redefinition",
	IncludeOpenFailed:             "include-open-failed",
	ExpectedHeaderName:            "expected-header-name",
	DirectiveNotFollowedByNewline: "directive-not-followed-by-newline",
	OrphanedEndif:                 "orphaned-endif",
	OrphanedElse:                  "orphaned-else",
	ExpectedEndif:                 "expected-endif",
	ConditionalNotTerminated:      "conditional-not-terminated",
	UnexpectedEOF:                 "unexpected-end-of-file",
	UnknownDirective:              "unknown-directive",
	DirectiveInArguments:          "directive-in-arguments",
	InvalidExpression:             "invalid-expression",
	IncludeDepthExceeded:          "include-depth-exceeded",
	CustomError:                   "custom-error",
	CustomWarning:                 "custom-warning",
	MultiByteCharacter:            "multi-byte-character-implementation-defined",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// Fatal reports whether a diagnostic of this kind aborts preprocessing.
func (k Kind) Fatal() bool {
	return k < CustomWarning
}

// Diagnostic is a single reported condition. Fatal diagnostics travel as
// errors; non-fatal ones are collected in a List.
type Diagnostic struct {
	Kind    Kind
	Span    token.Span
	Related []token.Span
	Message string
	// Cause is the underlying error, if any.
	Cause error
}

// New returns a diagnostic of kind k at span with a formatted message.
func New(k Kind, span token.Span, format string, args ...interface{}) *Diagnostic {
	return &Diagnostic{
		Kind:    k,
		Span:    span,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap is New with an underlying cause.
func Wrap(err error, k Kind, span token.Span, format string, args ...interface{}) *Diagnostic {
	d := New(k, span, format, args...)
	d.Cause = err
	return d
}

// WithRelated attaches additional spans, e.g. a previous definition.
func (d *Diagnostic) WithRelated(spans ...token.Span) *Diagnostic {
	d.Related = append(d.Related, spans...)
	return d
}

func (d *Diagnostic) Error() string {
	var b strings.Builder
	if d.Span.Start.IsValid() {
		b.WriteString(d.Span.String())
		b.WriteString(": ")
	}
	b.WriteString(d.Kind.String())
	if d.Message != "" {
		b.WriteString(": ")
		b.WriteString(d.Message)
	}
	if d.Cause != nil {
		b.WriteString(": ")
		b.WriteString(d.Cause.Error())
	}
	return b.String()
}

func (d *Diagnostic) Unwrap() error {
	return d.Cause
}

// Is matches diagnostics by kind, so errors.Is(err, &Diagnostic{Kind: k})
// works through wrapping.
func (d *Diagnostic) Is(target error) bool {
	t, ok := target.(*Diagnostic)
	return ok && t.Kind == d.Kind
}

// List collects non-fatal diagnostics in the order they were reported.
type List struct {
	items []*Diagnostic
}

func (l *List) Add(d *Diagnostic) {
	l.items = append(l.items, d)
}

func (l *List) Len() int {
	if l == nil {
		return 0
	}
	return len(l.items)
}

// Items returns the collected diagnostics.
func (l *List) Items() []*Diagnostic {
	if l == nil {
		return nil
	}
	return l.items
}
