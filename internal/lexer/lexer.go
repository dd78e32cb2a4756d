// Package lexer is the reference tokenizer feeding the preprocessor. It
// splits a byte stream into raw C tokens with spans, keeping line
// boundaries as Newline tokens and marking directive names.
package lexer

import (
	"github.com/fwessels/sixcc/internal/diag"
	"github.com/fwessels/sixcc/internal/token"
)

// Lexer tokenizes a single input.
type Lexer struct {
	src   []byte
	file  string
	off   int
	line  int
	col   int
	diags *diag.List

	// bol is set until the first token of a line has been produced.
	bol bool
	// lineHasTokens is set once a token other than Newline was produced on the current line.
	lineHasTokens bool
	// wantHeader is set right after an #include directive name.
	wantHeader bool
	done       bool
}

// New returns a lexer over src. Non-fatal diagnostics are added to diags,
// which may be nil.
func New(file string, src []byte, diags *diag.List) *Lexer {
	return &Lexer{
		src:   src,
		file:  file,
		line:  1,
		col:   1,
		diags: diags,
		bol:   true,
	}
}

func (lx *Lexer) pos() token.Pos {
	return token.Pos{File: lx.file, Line: lx.line, Col: lx.col}
}

func (lx *Lexer) peek(n int) byte {
	i := lx.off + n
	for i < len(lx.src) {
		// backslash-newline splices are invisible
		if lx.src[i] == '\\' && i+1 < len(lx.src) && lx.src[i+1] == '\n' {
			i += 2
			continue
		}
		if n == 0 {
			return lx.src[i]
		}
		n--
		i++
	}
	return 0
}

func (lx *Lexer) skipSplices() {
	for lx.off+1 < len(lx.src) && lx.src[lx.off] == '\\' && lx.src[lx.off+1] == '\n' {
		lx.off += 2
		lx.line++
		lx.col = 1
	}
}

func (lx *Lexer) advance() byte {
	lx.skipSplices()
	if lx.off >= len(lx.src) {
		return 0
	}
	ch := lx.src[lx.off]
	lx.off++
	if ch == '\n' {
		lx.line++
		lx.col = 1
	} else {
		lx.col++
	}
	lx.skipSplices()
	return ch
}

func (lx *Lexer) atEOF() bool {
	lx.skipSplices()
	return lx.off >= len(lx.src)
}

// skipSpace skips blanks and comments up to, but not including, a newline.
// It reports whether anything was skipped.
func (lx *Lexer) skipSpace() bool {
	skipped := false
	for !lx.atEOF() {
		ch := lx.peek(0)
		switch {
		case ch == ' ' || ch == '\t' || ch == '\r' || ch == '\f' || ch == '\v':
			lx.advance()
		case ch == '/' && lx.peek(1) == '/':
			for !lx.atEOF() && lx.peek(0) != '\n' {
				lx.advance()
			}
		case ch == '/' && lx.peek(1) == '*':
			lx.advance()
			lx.advance()
			for !lx.atEOF() {
				if lx.peek(0) == '*' && lx.peek(1) == '/' {
					lx.advance()
					lx.advance()
					break
				}
				lx.advance()
			}
		default:
			return skipped
		}
		skipped = true
	}
	return skipped
}

func (lx *Lexer) emit(kind token.Kind, text string, start token.Pos, space bool) token.Token {
	tok := token.Token{
		Kind:  kind,
		Text:  text,
		Span:  token.Span{Start: start, End: lx.pos()},
		Space: space,
	}
	if kind == token.Newline {
		lx.bol = true
		lx.lineHasTokens = false
		lx.wantHeader = false
	} else {
		lx.bol = false
		lx.lineHasTokens = true
	}
	return tok
}

// Next returns the next raw token.
func (lx *Lexer) Next() token.Token {
	for {
		space := lx.skipSpace()
		start := lx.pos()
		if lx.atEOF() {
			if lx.lineHasTokens {
				return lx.emit(token.Newline, "\n", start, false)
			}
			lx.done = true
			return token.Token{Kind: token.EOF, Span: token.Span{Start: start, End: start}}
		}

		ch := lx.peek(0)
		if ch == '\n' {
			lx.advance()
			if !lx.lineHasTokens {
				// blank lines carry no information for the preprocessor
				lx.bol = true
				continue
			}
			return lx.emit(token.Newline, "\n", start, false)
		}

		if ch == '#' && lx.bol {
			if tok, ok := lx.directive(start, space); ok {
				return tok
			}
			continue
		}

		if lx.wantHeader && ch == '<' {
			return lx.headerName(start, space)
		}
		lx.wantHeader = false

		switch {
		case isIdentStart(ch):
			if q := lx.literalPrefix(); q != 0 {
				return lx.quoted(start, space, q)
			}
			return lx.ident(start, space)
		case isDigit(ch) || (ch == '.' && isDigit(lx.peek(1))):
			return lx.number(start, space)
		case ch == '"' || ch == '\'':
			return lx.quoted(start, space, ch)
		}
		return lx.punct(start, space)
	}
}

// directive lexes '#' at the start of a line. A lone '#' is the null
// directive and produces no token.
func (lx *Lexer) directive(start token.Pos, space bool) (token.Token, bool) {
	lx.advance()
	lx.skipSpace()
	if lx.atEOF() || lx.peek(0) == '\n' {
		return token.Token{}, false
	}
	var name []byte
	for !lx.atEOF() && isIdentPart(lx.peek(0)) {
		name = append(name, lx.advance())
	}
	if len(name) == 0 {
		// something like "# 1": keep the rest of the line visible as an unknown directive
		tok := lx.emit(token.Directive, "", start, space)
		tok.Directive = token.UnknownDirective
		return tok, true
	}
	tok := lx.emit(token.Directive, string(name), start, space)
	tok.Directive = token.LookupDirective(tok.Text)
	lx.wantHeader = tok.Directive == token.Include
	return tok, true
}

func (lx *Lexer) headerName(start token.Pos, space bool) token.Token {
	var text []byte
	text = append(text, lx.advance())
	for !lx.atEOF() && lx.peek(0) != '\n' {
		ch := lx.advance()
		text = append(text, ch)
		if ch == '>' {
			break
		}
	}
	return lx.emit(token.HeaderName, string(text), start, space)
}

func (lx *Lexer) ident(start token.Pos, space bool) token.Token {
	var text []byte
	for !lx.atEOF() && isIdentPart(lx.peek(0)) {
		text = append(text, lx.advance())
	}
	s := string(text)
	if token.IsKeyword(s) {
		return lx.emit(token.Keyword, s, start, space)
	}
	return lx.emit(token.Ident, s, start, space)
}

// literalPrefix returns the quote character when the identifier at the
// cursor is an encoding prefix of a string or character constant.
func (lx *Lexer) literalPrefix() byte {
	switch lx.peek(0) {
	case 'L', 'U':
		if q := lx.peek(1); q == '"' || q == '\'' {
			return q
		}
	case 'u':
		if q := lx.peek(1); q == '"' || q == '\'' {
			return q
		}
		if lx.peek(1) == '8' {
			if q := lx.peek(2); q == '"' || q == '\'' {
				return q
			}
		}
	}
	return 0
}

func (lx *Lexer) number(start token.Pos, space bool) token.Token {
	var text []byte
	for !lx.atEOF() {
		ch := lx.peek(0)
		if (ch == '+' || ch == '-') && len(text) > 0 {
			last := text[len(text)-1]
			if last == 'e' || last == 'E' || last == 'p' || last == 'P' {
				text = append(text, lx.advance())
				continue
			}
		}
		if !isIdentPart(ch) && ch != '.' {
			break
		}
		text = append(text, lx.advance())
	}
	return lx.emit(token.Number, string(text), start, space)
}

func (lx *Lexer) quoted(start token.Pos, space bool, quote byte) token.Token {
	var text []byte
	for lx.peek(0) != quote {
		text = append(text, lx.advance())
	}
	text = append(text, lx.advance())
	chars := 0
	for !lx.atEOF() {
		ch := lx.peek(0)
		if ch == '\n' {
			break
		}
		text = append(text, lx.advance())
		if ch == quote {
			break
		}
		chars++
		if ch == '\\' && !lx.atEOF() && lx.peek(0) != '\n' {
			text = append(text, lx.advance())
		}
	}
	kind := token.String
	if quote == '\'' {
		kind = token.Char
	}
	tok := lx.emit(kind, string(text), start, space)
	if kind == token.Char && chars > 1 && lx.diags != nil {
		lx.diags.Add(diag.New(diag.MultiByteCharacter, tok.Span,
			"multi-character constant %s has an implementation-defined value", tok.Text))
	}
	return tok
}

var punctuators = []string{
	"...", "<<=", ">>=",
	"->", "++", "--", "<<", ">>", "<=", ">=", "==", "!=", "&&", "||",
	"*=", "/=", "%=", "+=", "-=", "&=", "^=", "|=", "##",
}

func (lx *Lexer) punct(start token.Pos, space bool) token.Token {
	for _, p := range punctuators {
		match := true
		for i := 0; i < len(p); i++ {
			if lx.peek(i) != p[i] {
				match = false
				break
			}
		}
		if match {
			for i := 0; i < len(p); i++ {
				lx.advance()
			}
			return lx.emit(token.Punct, p, start, space)
		}
	}
	return lx.emit(token.Punct, string(lx.advance()), start, space)
}

func isIdentStart(b byte) bool {
	return b == '_' || (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z')
}

func isIdentPart(b byte) bool {
	return isIdentStart(b) || isDigit(b)
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

// Tokens drains a lexer over src and returns every token up to, not
// including, EOF.
func Tokens(file string, src []byte, diags *diag.List) []token.Token {
	lx := New(file, src, diags)
	var toks []token.Token
	for {
		tok := lx.Next()
		if tok.Kind == token.EOF {
			return toks
		}
		toks = append(toks, tok)
	}
}
