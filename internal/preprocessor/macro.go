package preprocessor

import (
	"github.com/fwessels/sixcc/internal/diag"
	"github.com/fwessels/sixcc/internal/token"
)

// VarArgs is the parameter name bound to the variable arguments of a
// variadic macro.
const VarArgs = "__VA_ARGS__"

type MacroKind int

const (
	ObjectLike MacroKind = iota
	FunctionLike
)

func (k MacroKind) String() string {
	if k == FunctionLike {
		return "function-like"
	}
	return "object-like"
}

// Macro is a registered definition. Its replacement list lives in the
// Store's arena and is never modified after registration.
type Macro struct {
	Name     string
	Kind     MacroKind
	Span     token.Span
	Params   []string
	Variadic bool

	body int
}

// Store maps macro names to definitions and owns the stack of active
// invocations.
type Store struct {
	defs   map[string]*Macro
	bodies [][]token.Token

	stack  []*invocation
	origin origin
}

func NewStore() *Store {
	return &Store{defs: map[string]*Macro{}}
}

func (s *Store) IsDefined(name string) bool {
	_, ok := s.defs[name]
	return ok
}

// Len returns the number of defined macros.
func (s *Store) Len() int {
	return len(s.defs)
}

// Register adds m with the given replacement list. Redefining a name with
// an identical definition is a no-op; any other redefinition is an
// IllegalMacroRedefinition diagnostic referencing both definitions.
func (s *Store) Register(m *Macro, body []token.Token) error {
	if old, ok := s.defs[m.Name]; ok {
		if identicalDefinitions(old, s.bodies[old.body], m, body) {
			return nil
		}
		return diag.New(diag.IllegalMacroRedefinition, m.Span,
			"macro %s redefined with a different definition", m.Name).WithRelated(old.Span)
	}
	m.body = len(s.bodies)
	s.bodies = append(s.bodies, body)
	s.defs[m.Name] = m
	return nil
}

// Unregister removes name. Removing an undefined name is not an error.
// The replacement list stays in the arena so active invocations of the
// old definition can finish.
func (s *Store) Unregister(name string) {
	delete(s.defs, name)
}

// Body returns the replacement list of m.
func (s *Store) Body(m *Macro) []token.Token {
	return s.bodies[m.body]
}

// Lookup returns the definition of name. Unless allowActive is set, a
// macro that is being expanded in the context of the most recently served
// token is reported as undefined, which stops both direct and mutual
// recursion.
func (s *Store) Lookup(name string, allowActive bool) *Macro {
	m, ok := s.defs[name]
	if !ok {
		return nil
	}
	if !allowActive && s.origin.hidden().contains(name) {
		return nil
	}
	return m
}

func identicalDefinitions(a *Macro, abody []token.Token, b *Macro, bbody []token.Token) bool {
	if a.Kind != b.Kind || a.Variadic != b.Variadic || len(a.Params) != len(b.Params) {
		return false
	}
	for i, p := range a.Params {
		if b.Params[i] != p {
			return false
		}
	}
	if len(abody) != len(bbody) {
		return false
	}
	for i, t := range abody {
		u := bbody[i]
		if !t.Equal(u) {
			return false
		}
		if i > 0 && t.Space != u.Space {
			return false
		}
	}
	return true
}
