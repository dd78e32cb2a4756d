package preprocessor

import (
	"github.com/fwessels/sixcc/internal/diag"
	"github.com/fwessels/sixcc/internal/token"
)

// identifier handles a name token. A parameter of the invocation that
// produced it is replaced by its argument; a macro name starts an
// invocation; anything else is emitted as is.
func (p *Preprocessor) identifier(tok token.Token) (token.Token, bool, error) {
	if p.macros.substitute(tok.Text) {
		return token.Token{}, false, nil
	}
	ctx := p.macros.origin
	m := p.macros.Lookup(tok.Text, false)
	if m == nil {
		return tok, true, nil
	}
	inv := &invocation{
		macro:  m,
		body:   m.body,
		site:   tok.Span,
		hidden: ctx.hidden().add(m.Name),
	}
	if m.Kind == FunctionLike {
		args, err := p.readArguments(tok, m)
		if err != nil {
			return token.Token{}, false, err
		}
		inv.args = args
	}
	p.macros.push(inv)
	return token.Token{}, false, nil
}

// readArguments reads "( args )" after the name of a function-like macro
// and binds the arguments to the parameters.
func (p *Preprocessor) readArguments(name token.Token, m *Macro) (map[string][]token.Token, error) {
	for {
		open, err := p.nextUnexpanded()
		if err != nil {
			return nil, err
		}
		if open.Kind == token.Newline && !p.inDirective {
			continue
		}
		if !open.Is("(") {
			return nil, diag.New(diag.ExpectedLeftParen, open.Span,
				"function-like macro %s must be followed by '(', found %s", m.Name, describe(open)).WithRelated(m.Span)
		}
		break
	}
	args, commas, err := p.gatherArguments(name)
	if err != nil {
		return nil, err
	}
	return bindArguments(name, m, args, commas)
}

// gatherArguments splits the tokens up to the matching ')' into
// arguments at top-level commas. Parentheses nest; commas inside them
// belong to the argument. The separating commas are returned as well.
// No macro is expanded while gathering.
func (p *Preprocessor) gatherArguments(name token.Token) (args [][]token.Token, commas []token.Token, err error) {
	depth := 1
	cur := []token.Token{}
	for {
		tok, err := p.nextUnexpanded()
		if err != nil {
			return nil, nil, err
		}
		switch {
		case tok.Kind == token.EOF, tok.Kind == token.Newline && p.inDirective:
			return nil, nil, diag.New(diag.UnexpectedEOF, tok.Span,
				"unterminated argument list invoking macro %s", name.Text).WithRelated(name.Span)
		case tok.Kind == token.Newline:
			continue
		case tok.Kind == token.Directive:
			return nil, nil, diag.New(diag.DirectiveInArguments, tok.Span,
				"#%s inside the arguments of macro %s", tok.Text, name.Text).WithRelated(name.Span)
		case tok.Is("("):
			depth++
		case tok.Is(")"):
			depth--
			if depth == 0 {
				return append(args, cur), commas, nil
			}
		case tok.Is(",") && depth == 1:
			args = append(args, cur)
			commas = append(commas, tok)
			cur = []token.Token{}
			continue
		}
		cur = append(cur, tok)
	}
}

// bindArguments maps parameter names to argument token sequences.
// Arguments beyond the named parameters of a variadic macro are joined,
// commas included, into __VA_ARGS__.
func bindArguments(name token.Token, m *Macro, args [][]token.Token, commas []token.Token) (map[string][]token.Token, error) {
	n := len(m.Params)
	if n == 0 && len(args) == 1 && len(args[0]) == 0 {
		// M() passes no arguments to a macro without parameters
		args = nil
	}
	if len(args) < n {
		return nil, diag.New(diag.TooFewArguments, name.Span,
			"macro %s requires %d arguments, but only %d given", m.Name, n, len(args)).WithRelated(m.Span)
	}
	if len(args) > n && !m.Variadic {
		return nil, diag.New(diag.TooManyArguments, name.Span,
			"macro %s passed %d arguments, but takes just %d", m.Name, len(args), n).WithRelated(m.Span)
	}

	bound := make(map[string][]token.Token, n+1)
	for i, param := range m.Params {
		bound[param] = args[i]
	}
	if m.Variadic {
		va := []token.Token{}
		for i := n; i < len(args); i++ {
			if i > n {
				va = append(va, commas[i-1])
			}
			va = append(va, args[i]...)
		}
		bound[VarArgs] = va
	}
	return bound, nil
}
