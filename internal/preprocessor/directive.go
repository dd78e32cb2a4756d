package preprocessor

import (
	"log/slog"
	"strings"

	"github.com/fwessels/sixcc/internal/diag"
	"github.com/fwessels/sixcc/internal/token"
)

// invoke runs handler h for tok. It returns a token to emit, or ok=false
// when the token was consumed and the caller must pull again.
func (p *Preprocessor) invoke(h Handler, tok token.Token) (out token.Token, ok bool, err error) {
	switch h {
	case IdentifierHandler:
		return p.identifier(tok)
	case DefineHandler:
		err = p.define(tok)
	case UndefHandler:
		err = p.undef(tok)
	case IncludeHandler:
		err = p.include(tok)
	case IfHandler:
		err = p.ifExpr(tok)
	case IfdefHandler:
		err = p.ifdef(tok, true)
	case IfndefHandler:
		err = p.ifdef(tok, false)
	case ElifHandler:
		err = p.elif(tok)
	case ElseHandler:
		err = p.els(tok)
	case EndifHandler:
		err = p.endif(tok)
	case ErrorHandler:
		err = p.message(tok, true)
	case WarningHandler:
		err = p.message(tok, false)
	default:
		err = diag.New(diag.UnknownDirective, tok.Span, "invalid preprocessing directive #%s", tok.Text)
	}
	return token.Token{}, false, err
}

// expectNewline consumes the end of a directive line.
func (p *Preprocessor) expectNewline(dir token.Token) error {
	tok, err := p.nextRaw()
	if err != nil {
		return err
	}
	if !isLineEnd(tok) {
		return diag.New(diag.DirectiveNotFollowedByNewline, tok.Span,
			"extra token %q after #%s", tok.Text, dir.Text).WithRelated(dir.Span)
	}
	return nil
}

// directiveName reads the macro name operand of a directive.
func (p *Preprocessor) directiveName(dir token.Token) (token.Token, error) {
	name, err := p.nextRaw()
	if err != nil {
		return name, err
	}
	if !name.IsName() {
		return name, diag.New(diag.ExpectedIdentifier, name.Span,
			"#%s expects a macro name, found %s", dir.Text, describe(name))
	}
	return name, nil
}

func describe(tok token.Token) string {
	switch tok.Kind {
	case token.Newline:
		return "end of line"
	case token.EOF:
		return "end of file"
	}
	return tok.Kind.String() + " " + strings.TrimSpace(tok.String())
}

func (p *Preprocessor) define(dir token.Token) error {
	name, err := p.directiveName(dir)
	if err != nil {
		return err
	}
	m := &Macro{Name: name.Text, Kind: ObjectLike, Span: name.Span}

	var body []token.Token
	first, err := p.nextRaw()
	if err != nil {
		return err
	}
	switch {
	case first.Is("(") && !first.Space:
		m.Kind = FunctionLike
		if err := p.defineParams(m); err != nil {
			return err
		}
	case isLineEnd(first):
		return p.register(m, nil)
	default:
		body = append(body, first)
	}

	rest, err := p.restOfLine().Collect()
	if err != nil {
		return err
	}
	return p.register(m, append(body, rest...))
}

func (p *Preprocessor) register(m *Macro, body []token.Token) error {
	if err := p.macros.Register(m, body); err != nil {
		return err
	}
	p.log.Debug("macro defined",
		slog.String("name", m.Name),
		slog.String("kind", m.Kind.String()),
		slog.Int("params", len(m.Params)),
		slog.String("at", m.Span.String()))
	return nil
}

// defineParams parses the parameter list after "#define NAME(".
func (p *Preprocessor) defineParams(m *Macro) error {
	seen := map[string]bool{}
	for i := 0; ; i++ {
		tok, err := p.nextRaw()
		if err != nil {
			return err
		}
		if i == 0 && tok.Is(")") {
			return nil
		}
		if tok.Is("...") {
			m.Variadic = true
			end, err := p.nextRaw()
			if err != nil {
				return err
			}
			switch {
			case end.Is(")"):
				return nil
			case end.Is(","):
				return diag.New(diag.EllipsisNotLast, tok.Span, "'...' must be the last parameter of macro %s", m.Name)
			}
			return diag.New(diag.ExpectedCommaOrRParen, end.Span, "expected ')' after '...', found %s", describe(end))
		}
		if !tok.IsName() {
			return diag.New(diag.ExpectedIdentifier, tok.Span, "expected parameter name, found %s", describe(tok))
		}
		if seen[tok.Text] {
			return diag.New(diag.DuplicateParameter, tok.Span, "duplicate parameter %s in macro %s", tok.Text, m.Name)
		}
		seen[tok.Text] = true
		m.Params = append(m.Params, tok.Text)

		sep, err := p.nextRaw()
		if err != nil {
			return err
		}
		switch {
		case sep.Is(","):
		case sep.Is(")"):
			return nil
		default:
			return diag.New(diag.ExpectedCommaOrRParen, sep.Span, "expected ',' or ')' in parameter list, found %s", describe(sep))
		}
	}
}

func (p *Preprocessor) undef(dir token.Token) error {
	name, err := p.directiveName(dir)
	if err != nil {
		return err
	}
	if err := p.expectNewline(dir); err != nil {
		return err
	}
	p.macros.Unregister(name.Text)
	p.log.Debug("macro undefined", slog.String("name", name.Text))
	return nil
}

func (p *Preprocessor) include(dir token.Token) error {
	hdr, err := p.nextRaw()
	if err != nil {
		return err
	}
	var angled bool
	switch {
	case hdr.Kind == token.String && strings.HasPrefix(hdr.Text, `"`) && len(hdr.Text) >= 2:
	case hdr.Kind == token.HeaderName && strings.HasSuffix(hdr.Text, ">") && len(hdr.Text) >= 2:
		angled = true
	default:
		return diag.New(diag.ExpectedHeaderName, hdr.Span, "#include expects \"FILENAME\" or <FILENAME>, found %s", describe(hdr))
	}
	if err := p.expectNewline(dir); err != nil {
		return err
	}
	header := hdr.Text[1 : len(hdr.Text)-1]

	if p.sources.depth() >= p.opts.MaxIncludeDepth {
		return diag.New(diag.IncludeDepthExceeded, dir.Span, "#include nested more than %d levels", p.opts.MaxIncludeDepth)
	}
	requesting := p.sources.top().name
	var path string
	var src []byte
	if angled {
		path, src, err = p.opts.Includes.IncludeAngled(requesting, header)
	} else {
		path, src, err = p.opts.Includes.IncludeQuote(requesting, header)
	}
	if err != nil {
		return diag.Wrap(err, diag.IncludeOpenFailed, dir.Span, "cannot open %s", hdr.Text)
	}
	p.sources.push(&sourceFrame{
		name: path,
		tz:   p.opts.Tokenizer(path, src, p.diags),
		site: dir.Span,
	})
	p.log.Debug("entering include", slog.String("file", path), slog.Int("depth", p.sources.depth()))
	return nil
}

// message handles #error and #warning.
func (p *Preprocessor) message(dir token.Token, fatal bool) error {
	toks, err := p.restOfLine().Collect()
	if err != nil {
		return err
	}
	if len(toks) == 0 {
		return diag.New(diag.UnexpectedEOF, dir.Span, "#%s without a message", dir.Text)
	}
	text := spell(toks)
	if fatal {
		return diag.New(diag.CustomError, dir.Span, "%s", text)
	}
	p.diags.Add(diag.New(diag.CustomWarning, dir.Span, "%s", text))
	p.log.Warn("#warning", slog.String("message", text), slog.String("at", dir.Span.String()))
	return nil
}
