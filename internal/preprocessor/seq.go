package preprocessor

import (
	"github.com/fwessels/sixcc/internal/token"
)

// tokenSeq is a single-pass, lazily pulled sequence of tokens that ends
// at the first token matching stop. The stop token is consumed and kept
// in last; it is not yielded. A tokenSeq cannot be restarted.
type tokenSeq struct {
	pull func() (token.Token, error)
	stop func(token.Token) bool
	done bool
	last token.Token
}

func (s *tokenSeq) Next() (token.Token, bool, error) {
	if s.done {
		return token.Token{}, false, nil
	}
	tok, err := s.pull()
	if err != nil {
		s.done = true
		return tok, false, err
	}
	if s.stop(tok) {
		s.done = true
		s.last = tok
		return token.Token{}, false, nil
	}
	return tok, true, nil
}

// Collect drains the rest of the sequence.
func (s *tokenSeq) Collect() ([]token.Token, error) {
	var toks []token.Token
	for {
		tok, ok, err := s.Next()
		if err != nil {
			return nil, err
		}
		if !ok {
			return toks, nil
		}
		toks = append(toks, tok)
	}
}

func isLineEnd(tok token.Token) bool {
	return tok.Kind == token.Newline || tok.Kind == token.EOF
}

// restOfLine yields the unexpanded tokens up to the end of the current
// directive line.
func (p *Preprocessor) restOfLine() *tokenSeq {
	return &tokenSeq{pull: p.nextRaw, stop: isLineEnd}
}
