package preprocessor

import (
	"github.com/fwessels/sixcc/internal/token"
)

// Handler selects the routine run for a token kind. The set is closed;
// dispatch is a switch in Preprocessor.invoke.
type Handler uint8

const (
	NoHandler Handler = iota
	IdentifierHandler
	DefineHandler
	UndefHandler
	IncludeHandler
	IfHandler
	IfdefHandler
	IfndefHandler
	ElifHandler
	ElseHandler
	EndifHandler
	ErrorHandler
	WarningHandler
	UnknownHandler
)

// Table maps directive kinds and identifiers to handlers. It is built once
// and handed to the preprocessor through Options.
type Table struct {
	directives [token.NumDirectives]Handler
	names      Handler
}

// DefaultTable returns the standard directive set.
func DefaultTable() *Table {
	t := &Table{names: IdentifierHandler}
	t.directives[token.Define] = DefineHandler
	t.directives[token.Undef] = UndefHandler
	t.directives[token.Include] = IncludeHandler
	t.directives[token.If] = IfHandler
	t.directives[token.Ifdef] = IfdefHandler
	t.directives[token.Ifndef] = IfndefHandler
	t.directives[token.Elif] = ElifHandler
	t.directives[token.Elifdef] = ElifHandler
	t.directives[token.Elifndef] = ElifHandler
	t.directives[token.Else] = ElseHandler
	t.directives[token.Endif] = EndifHandler
	t.directives[token.Error] = ErrorHandler
	t.directives[token.Warning] = WarningHandler
	t.directives[token.UnknownDirective] = UnknownHandler
	return t
}

// Set overrides the handler for directive d, e.g. to make #warning fatal
// by mapping it to ErrorHandler.
func (t *Table) Set(d token.DirectiveKind, h Handler) {
	t.directives[d] = h
}

// SetNames sets the handler for identifiers and keywords. NoHandler turns
// off macro expansion.
func (t *Table) SetNames(h Handler) {
	t.names = h
}

func (t *Table) lookup(tok token.Token) Handler {
	switch tok.Kind {
	case token.Directive:
		if h := t.directives[tok.Directive]; h != NoHandler {
			return h
		}
		// directive tokens never reach the parser
		return UnknownHandler
	case token.Ident, token.Keyword:
		return t.names
	}
	return NoHandler
}
