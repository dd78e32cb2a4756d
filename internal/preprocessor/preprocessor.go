// Package preprocessor turns the raw token stream of a C source file into
// the token stream the parser consumes: it runs directives, keeps the
// macro definitions and expands macro invocations.
package preprocessor

import (
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/afero"

	"github.com/fwessels/sixcc/internal/diag"
	"github.com/fwessels/sixcc/internal/lexer"
	"github.com/fwessels/sixcc/internal/token"
)

// DefaultMaxIncludeDepth bounds #include nesting.
const DefaultMaxIncludeDepth = 200

// TokenizerFunc creates the tokenizer for one input.
type TokenizerFunc func(file string, src []byte, diags *diag.List) token.Tokenizer

// Options configures a Preprocessor. The zero value is usable.
type Options struct {
	// Includes resolves #include; nil searches the OS filesystem
	// relative to the including file only.
	Includes IncludeSearcher
	// Tokenizer defaults to the lexer package.
	Tokenizer TokenizerFunc
	// Table defaults to DefaultTable().
	Table *Table
	// Logger defaults to discarding everything.
	Logger *slog.Logger
	// Diagnostics receives non-fatal diagnostics; nil allocates a list.
	Diagnostics     *diag.List
	MaxIncludeDepth int
}

type Preprocessor struct {
	opts    Options
	table   *Table
	log     *slog.Logger
	diags   *diag.List
	macros  *Store
	sources sourceStack

	// inDirective is set while the rest of a directive line is expanded.
	inDirective bool
	err         error
}

func defaultTokenizer(file string, src []byte, diags *diag.List) token.Tokenizer {
	return lexer.New(file, src, diags)
}

// New returns a preprocessor reading src, named file.
func New(file string, src []byte, opts Options) *Preprocessor {
	if opts.Tokenizer == nil {
		opts.Tokenizer = defaultTokenizer
	}
	if opts.Diagnostics == nil {
		opts.Diagnostics = &diag.List{}
	}
	return NewFromTokenizer(file, opts.Tokenizer(file, src, opts.Diagnostics), opts)
}

// NewFromTokenizer returns a preprocessor reading from an existing tokenizer.
func NewFromTokenizer(file string, tz token.Tokenizer, opts Options) *Preprocessor {
	if opts.Tokenizer == nil {
		opts.Tokenizer = defaultTokenizer
	}
	if opts.Diagnostics == nil {
		opts.Diagnostics = &diag.List{}
	}
	if opts.Table == nil {
		opts.Table = DefaultTable()
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if opts.MaxIncludeDepth <= 0 {
		opts.MaxIncludeDepth = DefaultMaxIncludeDepth
	}
	if opts.Includes == nil {
		// a zero cache size cannot fail
		opts.Includes, _ = NewFileSearcher(afero.NewOsFs(), nil, 0)
	}
	p := &Preprocessor{
		opts:   opts,
		table:  opts.Table,
		log:    opts.Logger,
		diags:  opts.Diagnostics,
		macros: NewStore(),
	}
	p.sources.log = opts.Logger
	p.sources.push(&sourceFrame{name: file, tz: tz})
	return p
}

// Diagnostics returns the non-fatal diagnostics reported so far.
func (p *Preprocessor) Diagnostics() *diag.List {
	return p.diags
}

// Macros exposes the macro store.
func (p *Preprocessor) Macros() *Store {
	return p.macros
}

func (p *Preprocessor) IsDefined(name string) bool {
	return p.macros.IsDefined(name)
}

// ConditionalDepth returns the number of open #if groups across all open
// files.
func (p *Preprocessor) ConditionalDepth() int {
	return p.sources.conditionalDepth()
}

// Define registers an object-like macro as if by "#define name value",
// typically for -D command line options.
func (p *Preprocessor) Define(name, value string) error {
	tz := p.opts.Tokenizer("<command line>", []byte(value), p.diags)
	var body []token.Token
	for {
		tok := tz.Next()
		if tok.Kind == token.EOF {
			break
		}
		if tok.Kind == token.Newline {
			continue
		}
		tok.Span = token.Span{}
		body = append(body, tok)
	}
	return p.macros.Register(&Macro{Name: name, Kind: ObjectLike}, body)
}

// Undefine removes a macro, as if by "#undef name".
func (p *Preprocessor) Undefine(name string) {
	p.macros.Unregister(name)
}

// ParseDefine splits a command line definition "NAME=VALUE". A missing
// value defaults to "1".
func ParseDefine(s string) (name, value string) {
	if i := strings.IndexByte(s, '='); i >= 0 {
		return s[:i], s[i+1:]
	}
	return s, "1"
}

// Next returns the next token for the parser. It never returns directives,
// newlines or macro names that are subject to expansion. At the end of the
// input it returns an EOF token. Once an error has been returned every
// later call returns it again.
func (p *Preprocessor) Next() (token.Token, error) {
	if p.err != nil {
		return token.Token{Kind: token.EOF}, p.err
	}
	for {
		tok, err := p.next()
		if err != nil {
			p.err = err
			return token.Token{Kind: token.EOF}, err
		}
		if tok.Kind != token.Newline {
			return tok, nil
		}
	}
}

// All drains the preprocessor and returns every token before EOF.
func (p *Preprocessor) All() ([]token.Token, error) {
	var toks []token.Token
	for {
		tok, err := p.Next()
		if err != nil {
			return toks, err
		}
		if tok.Kind == token.EOF {
			return toks, nil
		}
		toks = append(toks, tok)
	}
}

// next runs handlers until a token is produced. Newlines are returned so
// that directive handlers can see line boundaries.
func (p *Preprocessor) next() (token.Token, error) {
	for {
		tok, err := p.nextRaw()
		if err != nil {
			return tok, err
		}
		h := p.table.lookup(tok)
		if h == NoHandler {
			return tok, nil
		}
		out, ok, err := p.invoke(h, tok)
		if err != nil {
			return out, err
		}
		if ok {
			return out, nil
		}
	}
}

// nextRaw is the token multiplexer: a rescanned argument first, then the
// innermost macro body, then the current file.
func (p *Preprocessor) nextRaw() (token.Token, error) {
	if tok, ok := p.macros.next(); ok {
		return tok, nil
	}
	return p.sources.next()
}

// nextUnexpanded is nextRaw with macro parameters substituted. No macro is
// expanded.
func (p *Preprocessor) nextUnexpanded() (token.Token, error) {
	for {
		tok, err := p.nextRaw()
		if err != nil {
			return tok, err
		}
		if tok.IsName() && p.macros.substitute(tok.Text) {
			continue
		}
		return tok, nil
	}
}

// Format joins token spellings with single spaces.
func Format(toks []token.Token) string {
	var b strings.Builder
	for i, tok := range toks {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(tok.String())
	}
	return b.String()
}

// spell renders tokens the way they were written, keeping a single blank
// where the source had whitespace.
func spell(toks []token.Token) string {
	var b strings.Builder
	for i, tok := range toks {
		if i > 0 && tok.Space {
			b.WriteByte(' ')
		}
		b.WriteString(tok.String())
	}
	return b.String()
}
