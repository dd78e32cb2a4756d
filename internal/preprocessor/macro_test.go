package preprocessor

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/fwessels/sixcc/internal/diag"
	"github.com/fwessels/sixcc/internal/lexer"
	"github.com/fwessels/sixcc/internal/token"
)

// body lexes a replacement list without its line end.
func body(src string) []token.Token {
	var toks []token.Token
	for _, tok := range lexer.Tokens("test.c", []byte(src), nil) {
		if tok.Kind != token.Newline {
			toks = append(toks, tok)
		}
	}
	return toks
}

func TestStoreRegister(t *testing.T) {
	s := NewStore()
	add := &Macro{Name: "ADD", Kind: FunctionLike, Params: []string{"a", "b"}}
	if err := s.Register(add, body("a + b")); err != nil {
		t.Fatal(err)
	}
	if !s.IsDefined("ADD") || s.Len() != 1 {
		t.Fatalf("ADD not registered")
	}
	if diff := cmp.Diff(body("a + b"), s.Body(s.Lookup("ADD", false))); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}

	for _, tt := range []struct {
		name string
		m    *Macro
		body string
		ok   bool
	}{
		{"identical", &Macro{Name: "ADD", Kind: FunctionLike, Params: []string{"a", "b"}}, "a  +  b", true},
		{"different spacing", &Macro{Name: "ADD", Kind: FunctionLike, Params: []string{"a", "b"}}, "a+b", false},
		{"different parameters", &Macro{Name: "ADD", Kind: FunctionLike, Params: []string{"x", "y"}}, "a + b", false},
		{"variadic", &Macro{Name: "ADD", Kind: FunctionLike, Params: []string{"a", "b"}, Variadic: true}, "a + b", false},
		{"object-like", &Macro{Name: "ADD"}, "a + b", false},
	} {
		t.Run(tt.name, func(t *testing.T) {
			err := s.Register(tt.m, body(tt.body))
			if tt.ok {
				if err != nil {
					t.Fatal(err)
				}
				return
			}
			if diff := cmp.Diff(diag.IllegalMacroRedefinition, diagKind(t, err)); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
	if s.Len() != 1 {
		t.Errorf("got %d macros, want 1", s.Len())
	}
}

func TestStoreUnregisterWhileActive(t *testing.T) {
	s := NewStore()
	m := &Macro{Name: "A"}
	if err := s.Register(m, body("1 2")); err != nil {
		t.Fatal(err)
	}
	s.push(&invocation{macro: m, body: m.body, hidden: emptyHS.add("A")})
	first, _ := s.next()
	s.Unregister("A")
	s.Unregister("A")
	second, ok := s.next()
	if !ok || first.Text != "1" || second.Text != "2" {
		t.Fatalf("got %v %v", first, second)
	}
	if _, ok := s.next(); ok {
		t.Errorf("invocation not finished")
	}
	if s.IsDefined("A") || s.Depth() != 0 {
		t.Errorf("A still defined or active")
	}
}

func TestStoreLookupHidden(t *testing.T) {
	s := NewStore()
	for _, name := range []string{"A", "B"} {
		if err := s.Register(&Macro{Name: name}, nil); err != nil {
			t.Fatal(err)
		}
	}
	s.origin = origin{inv: &invocation{hidden: emptyHS.add("A")}}
	if s.Lookup("A", false) != nil {
		t.Errorf("A is being expanded and must be hidden")
	}
	if s.Lookup("A", true) == nil || s.Lookup("B", false) == nil {
		t.Errorf("lookup failed")
	}
	s.origin.fromArg = true
	if s.Lookup("A", false) != nil {
		t.Errorf("A is hidden in its own arguments too")
	}
}

func TestHideset(t *testing.T) {
	a := emptyHS.add("A")
	ab := a.add("B")
	if !ab.contains("A") || !ab.contains("B") || a.contains("B") || emptyHS.contains("A") {
		t.Errorf("unexpected membership")
	}
	if a.add("A") != a {
		t.Errorf("adding a member must not grow the set")
	}
}

func TestBindArguments(t *testing.T) {
	name := token.Token{Kind: token.Ident, Text: "F"}
	comma := token.Token{Kind: token.Punct, Text: ","}
	arg := func(s string) []token.Token { return body(s) }
	m := &Macro{Name: "F", Kind: FunctionLike, Params: []string{"fmt"}, Variadic: true}

	got, err := bindArguments(name, m, [][]token.Token{arg("f"), arg("1"), arg("g(2, 3)")}, []token.Token{comma, comma})
	if err != nil {
		t.Fatal(err)
	}
	want := map[string][]token.Token{
		"fmt":   arg("f"),
		VarArgs: append(append(arg("1"), comma), arg("g(2, 3)")...),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}
