package preprocessor

import (
	"log/slog"

	"github.com/fwessels/sixcc/internal/diag"
	"github.com/fwessels/sixcc/internal/token"
)

// sourceFrame is one open input. Conditionals must be closed in the file
// that opened them, so each frame tracks its own.
type sourceFrame struct {
	name  string
	tz    token.Tokenizer
	conds []condFrame
	// site is the #include directive that opened the frame.
	site token.Span
}

type condFrame struct {
	open    token.Span
	sawElse bool
}

func (f *sourceFrame) openCond() *condFrame {
	if len(f.conds) == 0 {
		return nil
	}
	return &f.conds[len(f.conds)-1]
}

func (f *sourceFrame) pushCond(open token.Span) {
	f.conds = append(f.conds, condFrame{open: open})
}

func (f *sourceFrame) popCond() {
	f.conds = f.conds[:len(f.conds)-1]
}

// sourceStack models #include nesting. The top frame is the active input.
type sourceStack struct {
	frames []*sourceFrame
	log    *slog.Logger
}

func (s *sourceStack) push(f *sourceFrame) {
	s.frames = append(s.frames, f)
}

func (s *sourceStack) top() *sourceFrame {
	return s.frames[len(s.frames)-1]
}

func (s *sourceStack) depth() int {
	return len(s.frames)
}

// conditionalDepth sums the open conditionals of every open file.
func (s *sourceStack) conditionalDepth() int {
	n := 0
	for _, f := range s.frames {
		n += len(f.conds)
	}
	return n
}

// next reads from the top frame. End of file pops back to the including
// file; only the outermost frame's EOF is returned. Closing a file with
// open conditionals is an error.
func (s *sourceStack) next() (token.Token, error) {
	for {
		f := s.top()
		tok := f.tz.Next()
		if tok.Kind != token.EOF {
			return tok, nil
		}
		if c := f.openCond(); c != nil {
			return tok, diag.New(diag.ConditionalNotTerminated, tok.Span,
				"missing #endif at end of %s", f.name).WithRelated(c.open)
		}
		if len(s.frames) == 1 {
			return tok, nil
		}
		s.frames[len(s.frames)-1] = nil
		s.frames = s.frames[:len(s.frames)-1]
		s.log.Debug("leaving include", slog.String("file", f.name), slog.String("included_at", f.site.String()), slog.Int("depth", len(s.frames)))
	}
}
