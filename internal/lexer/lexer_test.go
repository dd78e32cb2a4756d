package lexer

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/fwessels/sixcc/internal/diag"
	"github.com/fwessels/sixcc/internal/token"
)

var kindTags = map[token.Kind]string{
	token.Ident:      "ident",
	token.Keyword:    "keyword",
	token.Number:     "number",
	token.Char:       "char",
	token.String:     "string",
	token.HeaderName: "header-name",
	token.Punct:      "punct",
}

// spell renders tokens as kind:text, one per element.
func spell(toks []token.Token) string {
	var parts []string
	for _, tok := range toks {
		switch tok.Kind {
		case token.Newline:
			parts = append(parts, "\\n")
		case token.Directive:
			parts = append(parts, "#"+tok.Text)
		default:
			parts = append(parts, kindTags[tok.Kind]+":"+tok.Text)
		}
	}
	return strings.Join(parts, " ")
}

type lexTest struct {
	name   string
	input  string
	output string
}

var lexTests = []lexTest{
	{
		"empty",
		"",
		"",
	},
	{
		"blank lines and comments",
		"\n  // line\n/* block\n comment */\n\n",
		"",
	},
	{
		"identifiers and keywords",
		"int x_1",
		"keyword:int ident:x_1 \\n",
	},
	{
		"numbers",
		"0x1fUL 1.5e+10 .5 1..2",
		"number:0x1fUL number:1.5e+10 number:.5 number:1..2 \\n",
	},
	{
		"punctuators",
		"a->b <<= ... ## +++",
		"ident:a punct:-> ident:b punct:<<= punct:... punct:## punct:++ punct:+ \\n",
	},
	{
		"literals",
		`"a\"b" 'c' L"w" u8"x" u'y'`,
		`string:"a\"b" char:'c' string:L"w" string:u8"x" char:u'y' \n`,
	},
	{
		"directive",
		"  #  define X\n#\nX # Y\n",
		"#define ident:X \\n ident:X punct:# ident:Y \\n",
	},
	{
		"header name",
		"#include <stdio.h>\na < b",
		"#include header-name:<stdio.h> \\n ident:a punct:< ident:b \\n",
	},
	{
		"quoted include",
		`#include "x.h"`,
		`#include string:"x.h" \n`,
	},
	{
		"line splice",
		"#define A 1 \\\n 2\nB\\\nC",
		"#define ident:A number:1 number:2 \\n ident:BC \\n",
	},
}

func TestLex(t *testing.T) {
	for _, tt := range lexTests {
		t.Run(tt.name, func(t *testing.T) {
			got := spell(Tokens("test.c", []byte(tt.input), nil))
			if diff := cmp.Diff(tt.output, got); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestPositions(t *testing.T) {
	toks := Tokens("f.c", []byte("a\n  /* x */ bb"), nil)
	var got []token.Span
	for _, tok := range toks {
		got = append(got, tok.Span)
	}
	want := []token.Span{
		{Start: token.Pos{File: "f.c", Line: 1, Col: 1}, End: token.Pos{File: "f.c", Line: 1, Col: 2}},
		{Start: token.Pos{File: "f.c", Line: 1, Col: 2}, End: token.Pos{File: "f.c", Line: 2, Col: 1}},
		{Start: token.Pos{File: "f.c", Line: 2, Col: 11}, End: token.Pos{File: "f.c", Line: 2, Col: 13}},
		{Start: token.Pos{File: "f.c", Line: 2, Col: 13}, End: token.Pos{File: "f.c", Line: 2, Col: 13}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
	if !toks[2].Space || toks[0].Space {
		t.Errorf("leading space flags wrong: %v", toks)
	}
}

func TestEOFRepeats(t *testing.T) {
	lx := New("f.c", []byte("x"), nil)
	for _, want := range []token.Kind{token.Ident, token.Newline, token.EOF, token.EOF} {
		if got := lx.Next().Kind; got != want {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestMultiByteCharacter(t *testing.T) {
	var diags diag.List
	Tokens("f.c", []byte("'ab' 'c' '\\n'"), &diags)
	if diags.Len() != 1 {
		t.Fatalf("got %d diagnostics, want 1", diags.Len())
	}
	d := diags.Items()[0]
	if d.Kind != diag.MultiByteCharacter || d.Kind.Fatal() {
		t.Errorf("got %v", d)
	}
}
