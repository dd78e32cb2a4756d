package preprocessor

import (
	"github.com/fwessels/sixcc/internal/token"
)

// invocation is one in-progress macro expansion. It refers to the
// replacement list by arena index and keeps only a cursor and the bound
// arguments.
type invocation struct {
	macro  *Macro
	body   int
	cursor int
	args   map[string][]token.Token
	reader *argReader
	site   token.Span

	// hidden holds the macros active where the invocation started plus
	// its own macro. It applies to body and argument tokens alike while
	// the frame is open.
	hidden *hideset
}

// argReader rescans a substituted argument before the macro body resumes.
type argReader struct {
	toks []token.Token
	pos  int
}

// origin records where the most recently served token came from.
type origin struct {
	inv     *invocation
	fromArg bool
}

func (o origin) hidden() *hideset {
	if o.inv == nil {
		return emptyHS
	}
	return o.inv.hidden
}

// bodyFrame returns the invocation whose replacement list produced the
// last token, or nil.
func (o origin) bodyFrame() *invocation {
	if o.fromArg {
		return nil
	}
	return o.inv
}

// Depth returns the current macro nesting depth.
func (s *Store) Depth() int {
	return len(s.stack)
}

// Push makes inv the active invocation.
func (s *Store) push(inv *invocation) {
	s.stack = append(s.stack, inv)
}

func (s *Store) top() *invocation {
	if len(s.stack) == 0 {
		return nil
	}
	return s.stack[len(s.stack)-1]
}

// BoundArgument returns the tokens bound to parameter name in the
// invocation whose replacement list produced the last token.
func (s *Store) BoundArgument(name string) ([]token.Token, bool) {
	inv := s.origin.bodyFrame()
	if inv == nil || inv.args == nil {
		return nil, false
	}
	arg, ok := inv.args[name]
	return arg, ok
}

// substitute starts rescanning the argument bound to name in the
// invocation that produced the last token. It reports false when name is
// not a parameter there.
func (s *Store) substitute(name string) bool {
	arg, ok := s.BoundArgument(name)
	if !ok {
		return false
	}
	s.origin.inv.reader = &argReader{toks: arg}
	return true
}

func (inv *invocation) exhausted(bodies [][]token.Token) bool {
	if inv.reader != nil && inv.reader.pos < len(inv.reader.toks) {
		return false
	}
	return inv.cursor >= len(bodies[inv.body])
}

// PopIfExhausted drops finished invocations from the top of the stack.
func (s *Store) PopIfExhausted() {
	for len(s.stack) > 0 && s.top().exhausted(s.bodies) {
		s.stack[len(s.stack)-1] = nil
		s.stack = s.stack[:len(s.stack)-1]
	}
}

// next serves the next token from the active invocations: first the
// argument being rescanned, then the replacement list. Finished
// invocations are popped so an outer body resumes where it stopped. It
// reports false once no invocation is active.
func (s *Store) next() (token.Token, bool) {
	for {
		inv := s.top()
		if inv == nil {
			s.origin = origin{}
			return token.Token{}, false
		}
		if r := inv.reader; r != nil {
			if r.pos < len(r.toks) {
				tok := r.toks[r.pos]
				r.pos++
				s.origin = origin{inv: inv, fromArg: true}
				return tok, true
			}
			inv.reader = nil
		}
		body := s.bodies[inv.body]
		if inv.cursor < len(body) {
			tok := body[inv.cursor]
			inv.cursor++
			s.origin = origin{inv: inv}
			return tok, true
		}
		s.PopIfExhausted()
	}
}
