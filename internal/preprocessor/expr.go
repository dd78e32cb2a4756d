package preprocessor

import (
	"strconv"
	"strings"

	"github.com/fwessels/sixcc/internal/diag"
	"github.com/fwessels/sixcc/internal/token"
)

// exprCondition reads the rest of an #if or #elif line, expands macros in
// it and evaluates it as an integer constant expression.
func (p *Preprocessor) exprCondition(dir token.Token) (bool, error) {
	toks, err := p.expressionLine(dir)
	if err != nil {
		return false, err
	}
	if len(toks) == 0 {
		return false, diag.New(diag.InvalidExpression, dir.Span, "#%s with no expression", dir.Text)
	}
	v, err := evalExpression(toks, dir)
	if err != nil {
		return false, err
	}
	return v != 0, nil
}

// expressionLine collects the macro-expanded tokens of the current line.
// "defined NAME" and "defined(NAME)" are replaced by 1 or 0 before their
// operand could be expanded.
func (p *Preprocessor) expressionLine(dir token.Token) ([]token.Token, error) {
	p.inDirective = true
	defer func() { p.inDirective = false }()

	var toks []token.Token
	for {
		tok, err := p.nextUnexpanded()
		if err != nil {
			return nil, err
		}
		if isLineEnd(tok) {
			return toks, nil
		}
		if !tok.IsName() {
			toks = append(toks, tok)
			continue
		}
		if tok.Text == "defined" {
			v, err := p.definedOperator(tok)
			if err != nil {
				return nil, err
			}
			toks = append(toks, v)
			continue
		}
		out, ok, err := p.identifier(tok)
		if err != nil {
			return nil, err
		}
		if ok {
			toks = append(toks, out)
		}
	}
}

func (p *Preprocessor) definedOperator(op token.Token) (token.Token, error) {
	tok, err := p.nextUnexpanded()
	if err != nil {
		return tok, err
	}
	paren := tok.Is("(")
	if paren {
		if tok, err = p.nextUnexpanded(); err != nil {
			return tok, err
		}
	}
	if !tok.IsName() {
		return tok, diag.New(diag.ExpectedIdentifier, tok.Span, "operator \"defined\" requires an identifier, found %s", describe(tok))
	}
	if paren {
		closing, err := p.nextUnexpanded()
		if err != nil {
			return closing, err
		}
		if !closing.Is(")") {
			return closing, diag.New(diag.ExpectedCommaOrRParen, closing.Span, "missing ')' after \"defined\"")
		}
	}
	v := "0"
	if p.macros.IsDefined(tok.Text) {
		v = "1"
	}
	return token.Token{Kind: token.Number, Text: v, Span: op.Span, Space: op.Space}, nil
}

// exprParser evaluates a preprocessor constant expression by precedence
// climbing. When live is false the operands are parsed but errors such as
// division by zero are not raised, which gives && || ?: their
// short-circuit behavior.
type exprParser struct {
	toks []token.Token
	pos  int
	dir  token.Token
}

func evalExpression(toks []token.Token, dir token.Token) (int64, error) {
	ep := &exprParser{toks: toks, dir: dir}
	v, err := ep.conditional(true)
	if err != nil {
		return 0, err
	}
	if ep.pos < len(ep.toks) {
		return 0, ep.errorf(ep.toks[ep.pos], "unexpected %s in #%s expression", describe(ep.toks[ep.pos]), dir.Text)
	}
	return v, nil
}

func (ep *exprParser) errorf(at token.Token, format string, args ...interface{}) error {
	span := at.Span
	if !span.Start.IsValid() {
		span = ep.dir.Span
	}
	return diag.New(diag.InvalidExpression, span, format, args...)
}

func (ep *exprParser) peek() (token.Token, bool) {
	if ep.pos >= len(ep.toks) {
		return token.Token{}, false
	}
	return ep.toks[ep.pos], true
}

func (ep *exprParser) accept(punct string) bool {
	if tok, ok := ep.peek(); ok && tok.Is(punct) {
		ep.pos++
		return true
	}
	return false
}

func (ep *exprParser) conditional(live bool) (int64, error) {
	c, err := ep.binary(1, live)
	if err != nil {
		return 0, err
	}
	if !ep.accept("?") {
		return c, nil
	}
	a, err := ep.conditional(live && c != 0)
	if err != nil {
		return 0, err
	}
	if !ep.accept(":") {
		tok, _ := ep.peek()
		return 0, ep.errorf(tok, "expected ':' in conditional expression")
	}
	b, err := ep.conditional(live && c == 0)
	if err != nil {
		return 0, err
	}
	if c != 0 {
		return a, nil
	}
	return b, nil
}

var binaryPrec = map[string]int{
	"||": 1,
	"&&": 2,
	"|":  3,
	"^":  4,
	"&":  5,
	"==": 6, "!=": 6,
	"<": 7, ">": 7, "<=": 7, ">=": 7,
	"<<": 8, ">>": 8,
	"+": 9, "-": 9,
	"*": 10, "/": 10, "%": 10,
}

func (ep *exprParser) binary(minPrec int, live bool) (int64, error) {
	l, err := ep.unary(live)
	if err != nil {
		return 0, err
	}
	for {
		op, ok := ep.peek()
		if !ok || op.Kind != token.Punct {
			return l, nil
		}
		prec, ok := binaryPrec[op.Text]
		if !ok || prec < minPrec {
			return l, nil
		}
		ep.pos++
		rlive := live
		switch op.Text {
		case "&&":
			rlive = live && l != 0
		case "||":
			rlive = live && l == 0
		}
		r, err := ep.binary(prec+1, rlive)
		if err != nil {
			return 0, err
		}
		if l, err = ep.apply(op, l, r, rlive); err != nil {
			return 0, err
		}
	}
}

func boolValue(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

func (ep *exprParser) apply(op token.Token, l, r int64, live bool) (int64, error) {
	switch op.Text {
	case "||":
		return boolValue(l != 0 || r != 0), nil
	case "&&":
		return boolValue(l != 0 && r != 0), nil
	case "|":
		return l | r, nil
	case "^":
		return l ^ r, nil
	case "&":
		return l & r, nil
	case "==":
		return boolValue(l == r), nil
	case "!=":
		return boolValue(l != r), nil
	case "<":
		return boolValue(l < r), nil
	case ">":
		return boolValue(l > r), nil
	case "<=":
		return boolValue(l <= r), nil
	case ">=":
		return boolValue(l >= r), nil
	case "<<":
		return l << uint64(r&63), nil
	case ">>":
		return l >> uint64(r&63), nil
	case "+":
		return l + r, nil
	case "-":
		return l - r, nil
	case "*":
		return l * r, nil
	case "/", "%":
		if r == 0 {
			if live {
				return 0, ep.errorf(op, "division by zero in #%s", ep.dir.Text)
			}
			return 0, nil
		}
		if op.Text == "/" {
			return l / r, nil
		}
		return l % r, nil
	}
	return 0, ep.errorf(op, "unexpected operator %s", op.Text)
}

func (ep *exprParser) unary(live bool) (int64, error) {
	tok, ok := ep.peek()
	if !ok {
		return 0, ep.errorf(ep.dir, "#%s expression ends unexpectedly", ep.dir.Text)
	}
	ep.pos++
	switch {
	case tok.Is("!"):
		v, err := ep.unary(live)
		return boolValue(v == 0), err
	case tok.Is("~"):
		v, err := ep.unary(live)
		return ^v, err
	case tok.Is("-"):
		v, err := ep.unary(live)
		return -v, err
	case tok.Is("+"):
		return ep.unary(live)
	case tok.Is("("):
		v, err := ep.conditional(live)
		if err != nil {
			return 0, err
		}
		if !ep.accept(")") {
			return 0, ep.errorf(tok, "missing ')' in #%s expression", ep.dir.Text)
		}
		return v, nil
	case tok.Kind == token.Number:
		return ep.number(tok)
	case tok.Kind == token.Char:
		return charValue(tok.Text), nil
	case tok.IsName():
		// identifiers left after expansion are zero
		return 0, nil
	}
	return 0, ep.errorf(tok, "unexpected %s in #%s expression", describe(tok), ep.dir.Text)
}

func (ep *exprParser) number(tok token.Token) (int64, error) {
	s := strings.TrimRight(tok.Text, "uUlL")
	if v, err := strconv.ParseInt(s, 0, 64); err == nil {
		return v, nil
	}
	if v, err := strconv.ParseUint(s, 0, 64); err == nil {
		return int64(v), nil
	}
	return 0, ep.errorf(tok, "invalid integer constant %s in #%s", tok.Text, ep.dir.Text)
}

// charValue evaluates a character constant. Multi-character constants
// combine their bytes, first character most significant.
func charValue(text string) int64 {
	i := strings.IndexByte(text, '\'')
	body := strings.TrimSuffix(text[i+1:], "'")
	var v int64
	for len(body) > 0 {
		var c int64
		c, body = unescape(body)
		v = v<<8 | (c & 0xff)
	}
	return v
}

func unescape(s string) (int64, string) {
	if s[0] != '\\' || len(s) == 1 {
		return int64(s[0]), s[1:]
	}
	switch c := s[1]; c {
	case 'n':
		return '\n', s[2:]
	case 't':
		return '\t', s[2:]
	case 'r':
		return '\r', s[2:]
	case 'a':
		return 7, s[2:]
	case 'b':
		return 8, s[2:]
	case 'f':
		return 12, s[2:]
	case 'v':
		return 11, s[2:]
	case 'x':
		j := 2
		for j < len(s) && strings.IndexByte("0123456789abcdefABCDEF", s[j]) >= 0 {
			j++
		}
		v, _ := strconv.ParseInt(s[2:j], 16, 64)
		return v, s[j:]
	case '0', '1', '2', '3', '4', '5', '6', '7':
		j := 1
		for j < len(s) && j < 4 && s[j] >= '0' && s[j] <= '7' {
			j++
		}
		v, _ := strconv.ParseInt(s[1:j], 8, 64)
		return v, s[j:]
	default:
		return int64(c), s[2:]
	}
}
