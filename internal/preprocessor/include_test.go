package preprocessor

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileSearcher(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/proj/src/a.h", []byte("local a"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/proj/inc1/a.h", []byte("inc1 a"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/proj/inc2/a.h", []byte("inc2 a"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/proj/inc2/b.h", []byte("inc2 b"), 0o644))
	require.NoError(t, fs.MkdirAll("/proj/inc1/b.h", 0o755))

	s, err := NewFileSearcher(fs, []string{"/proj/inc1", "/proj/inc2"}, 2)
	require.NoError(t, err)

	path, src, err := s.IncludeQuote("/proj/src/main.c", "a.h")
	require.NoError(t, err)
	assert.Equal(t, "/proj/src/a.h", path)
	assert.Equal(t, "local a", string(src))

	path, src, err = s.IncludeAngled("/proj/src/main.c", "a.h")
	require.NoError(t, err)
	assert.Equal(t, "/proj/inc1/a.h", path)
	assert.Equal(t, "inc1 a", string(src))

	// a directory does not satisfy the search
	path, _, err = s.IncludeQuote("/proj/src/main.c", "b.h")
	require.NoError(t, err)
	assert.Equal(t, "/proj/inc2/b.h", path)

	_, _, err = s.IncludeAngled("/proj/src/main.c", "c.h")
	assert.ErrorContains(t, err, `cannot find "c.h"`)

	path, _, err = s.IncludeAngled("", "/proj/src/a.h")
	require.NoError(t, err)
	assert.Equal(t, "/proj/src/a.h", path)
}

func TestFileSearcherCache(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/inc/a.h", []byte("first"), 0o644))

	s, err := NewFileSearcher(fs, []string{"/inc"}, 0)
	require.NoError(t, err)

	_, src, err := s.IncludeAngled("main.c", "a.h")
	require.NoError(t, err)
	assert.True(t, s.Cached("/inc/a.h"))

	require.NoError(t, afero.WriteFile(fs, "/inc/a.h", []byte("second"), 0o644))
	_, again, err := s.IncludeAngled("main.c", "a.h")
	require.NoError(t, err)
	assert.Equal(t, string(src), string(again), "headers are read once")
}
