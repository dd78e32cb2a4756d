package preprocessor

import (
	"path/filepath"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

// DefaultHeaderCacheSize is the number of header files kept in memory.
const DefaultHeaderCacheSize = 64

// IncludeSearcher resolves header names to file contents.
type IncludeSearcher interface {
	// IncludeQuote is invoked for #include "foo.h". It returns the
	// resolved path and the file contents.
	IncludeQuote(requestingFile, header string) (string, []byte, error)
	// IncludeAngled is invoked for #include <foo.h>.
	IncludeAngled(requestingFile, header string) (string, []byte, error)
}

// FileSearcher looks headers up on a filesystem: quoted includes relative
// to the including file first, then the include directories in order.
type FileSearcher struct {
	fs    afero.Fs
	dirs  []string
	cache *lru.Cache[string, []byte]
}

// NewFileSearcher returns a searcher over fs. A cacheSize of zero or less
// selects DefaultHeaderCacheSize.
func NewFileSearcher(fs afero.Fs, dirs []string, cacheSize int) (*FileSearcher, error) {
	if cacheSize <= 0 {
		cacheSize = DefaultHeaderCacheSize
	}
	cache, err := lru.New[string, []byte](cacheSize)
	if err != nil {
		return nil, errors.Wrap(err, "header cache")
	}
	return &FileSearcher{fs: fs, dirs: dirs, cache: cache}, nil
}

func (s *FileSearcher) IncludeQuote(requestingFile, header string) (string, []byte, error) {
	if filepath.IsAbs(header) {
		return s.read(filepath.Clean(header))
	}
	if requestingFile != "" {
		cand := filepath.Join(filepath.Dir(requestingFile), header)
		if s.exists(cand) {
			return s.read(cand)
		}
	}
	return s.IncludeAngled(requestingFile, header)
}

func (s *FileSearcher) IncludeAngled(requestingFile, header string) (string, []byte, error) {
	if filepath.IsAbs(header) {
		return s.read(filepath.Clean(header))
	}
	for _, dir := range s.dirs {
		cand := filepath.Join(dir, header)
		if s.exists(cand) {
			return s.read(cand)
		}
	}
	return "", nil, errors.Errorf("cannot find %q in %d include directories", header, len(s.dirs))
}

func (s *FileSearcher) exists(path string) bool {
	st, err := s.fs.Stat(path)
	return err == nil && !st.IsDir()
}

func (s *FileSearcher) read(path string) (string, []byte, error) {
	if src, ok := s.cache.Get(path); ok {
		return path, src, nil
	}
	src, err := afero.ReadFile(s.fs, path)
	if err != nil {
		return "", nil, errors.Wrapf(err, "read %s", path)
	}
	s.cache.Add(path, src)
	return path, src, nil
}

// Cached reports whether path is in the header cache.
func (s *FileSearcher) Cached(path string) bool {
	return s.cache.Contains(path)
}
