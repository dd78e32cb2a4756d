package preprocessor

import (
	"github.com/fwessels/sixcc/internal/diag"
	"github.com/fwessels/sixcc/internal/token"
)

// ifdef handles #ifdef (want=true) and #ifndef (want=false).
func (p *Preprocessor) ifdef(dir token.Token, want bool) error {
	taken, err := p.definedCondition(dir, want)
	if err != nil {
		return err
	}
	return p.enterConditional(dir, taken)
}

func (p *Preprocessor) ifExpr(dir token.Token) error {
	taken, err := p.exprCondition(dir)
	if err != nil {
		return err
	}
	return p.enterConditional(dir, taken)
}

func (p *Preprocessor) enterConditional(dir token.Token, taken bool) error {
	f := p.sources.top()
	f.pushCond(dir.Span)
	if taken {
		return nil
	}
	return p.skipGroup(f)
}

// definedCondition reads "NAME <newline>" and reports whether NAME being
// defined equals want.
func (p *Preprocessor) definedCondition(dir token.Token, want bool) (bool, error) {
	name, err := p.directiveName(dir)
	if err != nil {
		return false, err
	}
	if err := p.expectNewline(dir); err != nil {
		return false, err
	}
	return p.macros.IsDefined(name.Text) == want, nil
}

// condition evaluates the controlling condition of an #if-family
// directive.
func (p *Preprocessor) condition(dir token.Token) (bool, error) {
	switch dir.Directive {
	case token.If, token.Elif:
		return p.exprCondition(dir)
	case token.Ifndef, token.Elifndef:
		return p.definedCondition(dir, false)
	}
	return p.definedCondition(dir, true)
}

// elif is reached when the group before it was taken, so the rest of the
// conditional is skipped.
func (p *Preprocessor) elif(dir token.Token) error {
	f := p.sources.top()
	c := f.openCond()
	if c == nil {
		return diag.New(diag.OrphanedElse, dir.Span, "#%s without #if", dir.Text)
	}
	if c.sawElse {
		return diag.New(diag.ExpectedEndif, dir.Span, "#%s after #else", dir.Text).WithRelated(c.open)
	}
	return p.skipRest(f, false)
}

// els is reached when the group before it was taken.
func (p *Preprocessor) els(dir token.Token) error {
	f := p.sources.top()
	c := f.openCond()
	if c == nil {
		return diag.New(diag.OrphanedElse, dir.Span, "#else without #if")
	}
	if c.sawElse {
		return diag.New(diag.ExpectedEndif, dir.Span, "#else after #else").WithRelated(c.open)
	}
	if err := p.expectNewline(dir); err != nil {
		return err
	}
	c.sawElse = true
	return p.skipRest(f, true)
}

func (p *Preprocessor) endif(dir token.Token) error {
	f := p.sources.top()
	if f.openCond() == nil {
		return diag.New(diag.OrphanedEndif, dir.Span, "#endif without #if")
	}
	if err := p.expectNewline(dir); err != nil {
		return err
	}
	f.popCond()
	return nil
}

// nextSkipped reads the next raw token of f while a group is skipped. The
// end of the file ends the skip with an error; it never falls back to the
// including file.
func (p *Preprocessor) nextSkipped(f *sourceFrame) (token.Token, error) {
	tok := f.tz.Next()
	if tok.Kind == token.EOF {
		return tok, diag.New(diag.ConditionalNotTerminated, tok.Span,
			"missing #endif at end of %s", f.name).WithRelated(f.openCond().open)
	}
	return tok, nil
}

// skipGroup skips a group that was not taken. It returns when a later
// branch of the same conditional is taken or its #endif is consumed.
// Nested conditionals inside the skipped text are skipped whole.
func (p *Preprocessor) skipGroup(f *sourceFrame) error {
	depth := 0
	for {
		tok, err := p.nextSkipped(f)
		if err != nil {
			return err
		}
		if tok.Kind != token.Directive {
			continue
		}
		switch tok.Directive {
		case token.If, token.Ifdef, token.Ifndef:
			depth++
			continue
		case token.Endif:
			if depth > 0 {
				depth--
				continue
			}
			return p.endif(tok)
		}
		if depth > 0 {
			continue
		}

		c := f.openCond()
		switch tok.Directive {
		case token.Elif, token.Elifdef, token.Elifndef:
			if c.sawElse {
				return diag.New(diag.ExpectedEndif, tok.Span, "#%s after #else", tok.Text).WithRelated(c.open)
			}
			taken, err := p.condition(tok)
			if err != nil {
				return err
			}
			if taken {
				return nil
			}
		case token.Else:
			if c.sawElse {
				return diag.New(diag.ExpectedEndif, tok.Span, "#else after #else").WithRelated(c.open)
			}
			if err := p.expectNewline(tok); err != nil {
				return err
			}
			c.sawElse = true
			return nil
		}
	}
}

// skipRest skips to the #endif of a conditional whose taken group just
// ended. After #else only #endif may close it.
func (p *Preprocessor) skipRest(f *sourceFrame, afterElse bool) error {
	depth := 0
	for {
		tok, err := p.nextSkipped(f)
		if err != nil {
			return err
		}
		if tok.Kind != token.Directive {
			continue
		}
		switch tok.Directive {
		case token.If, token.Ifdef, token.Ifndef:
			depth++
		case token.Endif:
			if depth > 0 {
				depth--
				continue
			}
			return p.endif(tok)
		case token.Else, token.Elif, token.Elifdef, token.Elifndef:
			if depth > 0 {
				continue
			}
			if afterElse {
				return diag.New(diag.ExpectedEndif, tok.Span, "expected #endif, found #%s", tok.Text).WithRelated(f.openCond().open)
			}
			afterElse = tok.Directive == token.Else
		}
	}
}
