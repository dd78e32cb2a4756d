// Package token defines the values exchanged between the tokenizer, the
// preprocessor and the parser.
package token

import (
	"fmt"
	"strconv"
)

// Kind tags the value carried by a Token.
type Kind int

const (
	EOF Kind = iota
	Newline
	Ident
	Keyword
	Directive
	Number
	Char
	String
	HeaderName
	Punct
)

var kindNames = [...]string{
	EOF:        "EOF",
	Newline:    "newline",
	Ident:      "identifier",
	Keyword:    "keyword",
	Directive:  "directive",
	Number:     "pp-number",
	Char:       "character constant",
	String:     "string constant",
	HeaderName: "header name",
	Punct:      "punctuator",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// DirectiveKind identifies a preprocessing directive. The set is closed.
type DirectiveKind int

const (
	NoDirective DirectiveKind = iota
	Define
	Undef
	Include
	If
	Ifdef
	Ifndef
	Elif
	Elifdef
	Elifndef
	Else
	Endif
	Error
	Warning
	UnknownDirective

	NumDirectives
)

var directiveNames = [...]string{
	NoDirective:      "",
	Define:           "define",
	Undef:            "undef",
	Include:          "include",
	If:               "if",
	Ifdef:            "ifdef",
	Ifndef:           "ifndef",
	Elif:             "elif",
	Elifdef:          "elifdef",
	Elifndef:         "elifndef",
	Else:             "else",
	Endif:            "endif",
	Error:            "error",
	Warning:          "warning",
	UnknownDirective: "unknown",
}

var directivesByName = map[string]DirectiveKind{}

func init() {
	for d := Define; d < UnknownDirective; d++ {
		directivesByName[directiveNames[d]] = d
	}
}

func (d DirectiveKind) String() string {
	if d >= 0 && int(d) < len(directiveNames) {
		return directiveNames[d]
	}
	return "DirectiveKind(" + strconv.Itoa(int(d)) + ")"
}

// LookupDirective maps a directive name (without the '#') to its kind.
func LookupDirective(name string) DirectiveKind {
	if d, ok := directivesByName[name]; ok {
		return d
	}
	return UnknownDirective
}

var keywords = map[string]bool{
	"auto": true, "break": true, "case": true, "char": true, "const": true,
	"continue": true, "default": true, "do": true, "double": true, "else": true,
	"enum": true, "extern": true, "float": true, "for": true, "goto": true,
	"if": true, "inline": true, "int": true, "long": true, "register": true,
	"restrict": true, "return": true, "short": true, "signed": true, "sizeof": true,
	"static": true, "struct": true, "switch": true, "typedef": true, "union": true,
	"unsigned": true, "void": true, "volatile": true, "while": true,
	"_Bool": true, "_Noreturn": true, "_Static_assert": true,
}

// IsKeyword reports whether s is a C keyword.
func IsKeyword(s string) bool {
	return keywords[s]
}

// Pos is a 1-based line/column location in a named file.
type Pos struct {
	File string
	Line int
	Col  int
}

func (p Pos) String() string {
	if p.File == "" {
		return fmt.Sprintf("%d:%d", p.Line, p.Col)
	}
	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Col)
}

// IsValid reports whether the position has a line number.
func (p Pos) IsValid() bool { return p.Line > 0 }

// Span covers the source text of a token or directive. End is exclusive.
type Span struct {
	Start Pos
	End   Pos
}

func (s Span) String() string { return s.Start.String() }

// File returns the file the span starts in.
func (s Span) File() string { return s.Start.File }

// Token is an immutable lexical token.
type Token struct {
	Kind Kind
	// Text is the spelling of the token. For directives it is the name
	// without the leading '#'.
	Text      string
	Directive DirectiveKind
	Span      Span
	// Space is set when whitespace precedes the token on its line.
	Space bool
}

// Is reports whether t is the punctuator p.
func (t Token) Is(p string) bool {
	return t.Kind == Punct && t.Text == p
}

// IsName reports whether t can name a macro or a macro parameter.
func (t Token) IsName() bool {
	return t.Kind == Ident || t.Kind == Keyword
}

func (t Token) String() string {
	switch t.Kind {
	case EOF:
		return "EOF"
	case Newline:
		return `\n`
	case Directive:
		return "#" + t.Text
	}
	return t.Text
}

// Equal reports whether two tokens have the same kind and spelling.
// Spans and spacing are ignored.
func (t Token) Equal(u Token) bool {
	return t.Kind == u.Kind && t.Text == u.Text && t.Directive == u.Directive
}

// Tokenizer produces raw tokens from one input. After the input is
// exhausted Next keeps returning an EOF token.
type Tokenizer interface {
	Next() Token
}
