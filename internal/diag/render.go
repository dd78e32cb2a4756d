package diag

import (
	"fmt"
	"io"
)

const (
	ansiRed     = "\x1b[1;31m"
	ansiMagenta = "\x1b[1;35m"
	ansiCyan    = "\x1b[1;36m"
	ansiBold    = "\x1b[1m"
	ansiReset   = "\x1b[0m"
)

// Render writes d in the usual "file:line:col: severity: message" form,
// followed by one note per related span. A related span in the same file
// as the primary span is shown by line only.
func Render(w io.Writer, d *Diagnostic, color bool) error {
	paint := func(code, s string) string {
		if !color {
			return s
		}
		return code + s + ansiReset
	}

	severity, code := "error", ansiRed
	if !d.Kind.Fatal() {
		severity, code = "warning", ansiMagenta
	}

	msg := d.Message
	if d.Cause != nil {
		if msg != "" {
			msg += ": "
		}
		msg += d.Cause.Error()
	}
	if msg == "" {
		msg = d.Kind.String()
	}

	loc := "<command line>"
	if d.Span.Start.IsValid() {
		loc = d.Span.String()
	}
	if _, err := fmt.Fprintf(w, "%s: %s %s [%s]\n", paint(ansiBold, loc), paint(code, severity+":"), msg, d.Kind); err != nil {
		return err
	}

	for _, rel := range d.Related {
		var where string
		switch {
		case !rel.Start.IsValid():
			where = "on the command line"
		case rel.File() == d.Span.File():
			where = fmt.Sprintf("at line %d", rel.Start.Line)
		default:
			where = "in " + rel.String()
		}
		if _, err := fmt.Fprintf(w, "%s %s\n", paint(ansiCyan, "note:"), noteText(d.Kind, where)); err != nil {
			return err
		}
	}
	return nil
}

func noteText(k Kind, where string) string {
	switch k {
	case IllegalMacroRedefinition:
		return "first defined " + where
	case ConditionalNotTerminated:
		return "conditional opened " + where
	default:
		return "see " + where
	}
}
