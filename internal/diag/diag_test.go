package diag

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"

	"github.com/fwessels/sixcc/internal/token"
)

func span(file string, line, col int) token.Span {
	p := token.Pos{File: file, Line: line, Col: col}
	return token.Span{Start: p, End: p}
}

func TestKind(t *testing.T) {
	if !ConditionalNotTerminated.Fatal() || CustomWarning.Fatal() || MultiByteCharacter.Fatal() {
		t.Errorf("wrong severity")
	}
	for k := ExpectedIdentifier; k <= MultiByteCharacter; k++ {
		if s := k.String(); s == "" || strings.HasPrefix(s, "Kind(") {
			t.Errorf("kind %d has no name", int(k))
		}
	}
}

func TestError(t *testing.T) {
	cause := errors.New("file not found")
	d := Wrap(cause, IncludeOpenFailed, span("a.c", 3, 1), "cannot open %s", `"x.h"`)
	if diff := cmp.Diff(`a.c:3:1: include-open-failed: cannot open "x.h": file not found`, d.Error()); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
	wrapped := errors.Wrap(d, "preprocess")
	if !errors.Is(wrapped, &Diagnostic{Kind: IncludeOpenFailed}) {
		t.Errorf("errors.Is does not match the kind")
	}
	if errors.Is(wrapped, &Diagnostic{Kind: OrphanedEndif}) {
		t.Errorf("errors.Is matched a different kind")
	}
	if errors.Cause(errors.Unwrap(d)) != cause {
		t.Errorf("cause lost")
	}
}

func TestList(t *testing.T) {
	var nilList *List
	if nilList.Len() != 0 || nilList.Items() != nil {
		t.Errorf("nil list not empty")
	}
	var l List
	l.Add(New(CustomWarning, span("a.c", 1, 1), "w"))
	if l.Len() != 1 {
		t.Errorf("got %d items", l.Len())
	}
}

func TestRender(t *testing.T) {
	for _, tt := range []struct {
		name string
		d    *Diagnostic
		out  string
	}{
		{
			"redefinition",
			New(IllegalMacroRedefinition, span("a.c", 2, 9), "macro FOO redefined").WithRelated(span("a.c", 1, 9)),
			"a.c:2:9: error: macro FOO redefined [illegal-macro-redefinition]\n" +
				"note: first defined at line 1\n",
		},
		{
			"conditional opened in another file",
			New(ConditionalNotTerminated, span("b.h", 9, 1), "").WithRelated(span("a.c", 4, 1)),
			"b.h:9:1: error: conditional-not-terminated [conditional-not-terminated]\n" +
				"note: conditional opened in a.c:4:1\n",
		},
		{
			"warning from the command line",
			New(CustomWarning, token.Span{}, "careful").WithRelated(token.Span{}),
			"<command line>: warning: careful [custom-warning]\n" +
				"note: see on the command line\n",
		},
	} {
		t.Run(tt.name, func(t *testing.T) {
			var b strings.Builder
			if err := Render(&b, tt.d, false); err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(tt.out, b.String()); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRenderColor(t *testing.T) {
	var b strings.Builder
	if err := Render(&b, New(OrphanedEndif, span("a.c", 1, 1), "#endif without #if"), true); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(b.String(), ansiRed+"error:"+ansiReset) {
		t.Errorf("no color in %q", b.String())
	}
	b.Reset()
	if err := Render(&b, New(CustomWarning, span("a.c", 1, 1), "careful"), true); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(b.String(), "\x1b[1;35mwarning:"+ansiReset) {
		t.Errorf("warning not magenta in %q", b.String())
	}
}
