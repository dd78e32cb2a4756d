/*
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package sixcc

import (
	"log/slog"
	"sort"

	"github.com/pkg/errors"
	"github.com/spf13/afero"

	"github.com/fwessels/sixcc/internal/config"
	"github.com/fwessels/sixcc/internal/diag"
	"github.com/fwessels/sixcc/internal/preprocessor"
	"github.com/fwessels/sixcc/internal/token"
)

type Options struct {
	// Fs is searched for headers. Nil means the OS filesystem.
	Fs          afero.Fs
	IncludeDirs []string
	// Defines are "NAME" or "NAME=VALUE", applied in order before Undefines.
	Defines         []string
	Undefines       []string
	MaxIncludeDepth int
	HeaderCacheSize int
	Logger          *slog.Logger
}

// OptionsFromConfig converts a loaded configuration. Defines are sorted by
// name so that runs are reproducible.
func OptionsFromConfig(cfg *config.Config) Options {
	names := make([]string, 0, len(cfg.Defines))
	for name := range cfg.Defines {
		names = append(names, name)
	}
	sort.Strings(names)
	defines := make([]string, 0, len(names))
	for _, name := range names {
		defines = append(defines, name+"="+cfg.Defines[name])
	}
	return Options{
		IncludeDirs:     append([]string(nil), cfg.IncludeDirs...),
		Defines:         defines,
		Undefines:       append([]string(nil), cfg.Undefines...),
		MaxIncludeDepth: cfg.MaxIncludeDepth,
		HeaderCacheSize: cfg.HeaderCacheSize,
	}
}

// Result is the output of Preprocess.
type Result struct {
	Tokens []token.Token
	// Warnings holds the non-fatal diagnostics.
	Warnings []*diag.Diagnostic
}

// Text returns the tokens separated by single spaces.
func (r *Result) Text() string {
	return preprocessor.Format(r.Tokens)
}

// Preprocess runs the preprocessor over src, named name, to completion.
// A fatal diagnostic is returned as the error, a *diag.Diagnostic in most
// cases. The partial result is returned along with it.
func Preprocess(name string, src []byte, opts Options) (*Result, error) {
	fs := opts.Fs
	if fs == nil {
		fs = afero.NewOsFs()
	}
	searcher, err := preprocessor.NewFileSearcher(fs, opts.IncludeDirs, opts.HeaderCacheSize)
	if err != nil {
		return nil, err
	}
	diags := &diag.List{}
	pp := preprocessor.New(name, src, preprocessor.Options{
		Includes:        searcher,
		Logger:          opts.Logger,
		Diagnostics:     diags,
		MaxIncludeDepth: opts.MaxIncludeDepth,
	})
	for _, def := range opts.Defines {
		n, v := preprocessor.ParseDefine(def)
		if err := pp.Define(n, v); err != nil {
			return nil, errors.Wrapf(err, "-D%s", def)
		}
	}
	for _, n := range opts.Undefines {
		pp.Undefine(n)
	}

	toks, err := pp.All()
	return &Result{Tokens: toks, Warnings: diags.Items()}, err
}
