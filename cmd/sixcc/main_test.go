package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

type runResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

func runApp(t *testing.T, args ...string) (runResult, error) {
	t.Helper()
	app := newApp()
	var stdout, stderr strings.Builder
	app.Writer = &stdout
	app.ErrWriter = &stderr
	exitCode := 0
	saved := cli.OsExiter
	cli.OsExiter = func(code int) { exitCode = code }
	defer func() { cli.OsExiter = saved }()
	err := app.Run(append([]string{"sixcc"}, args...))
	return runResult{stdout.String(), stderr.String(), exitCode}, err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "inc/sys.h", "#define WIDTH 8\n")
	src := writeFile(t, dir, "main.c", `#include <sys.h>
#define AREA(h) (WIDTH * h)
int a = AREA(HEIGHT);
`)

	res, err := runApp(t, "-I", filepath.Join(dir, "inc"), "-D", "HEIGHT=3", src)
	require.NoError(t, err)
	assert.Equal(t, "int a = ( 8 * 3 ) ;\n", res.Stdout)
	assert.Empty(t, res.Stderr)
}

func TestRunOutputFile(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, dir, "main.c", "#ifndef X\nint x;\n#endif\n")
	out := filepath.Join(dir, "main.i")

	res, err := runApp(t, "-D", "X", "-o", out, src)
	require.NoError(t, err)
	assert.Empty(t, res.Stdout)
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "\n", string(data))
}

func TestRunConfig(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "hdr/a.h", "int from_header;\n")
	conf := writeFile(t, dir, "sixcc.yaml", `include_dirs:
  - `+filepath.Join(dir, "hdr")+`
defines:
  LIMIT: "10"
  GONE: "1"
undefines:
  - GONE
`)
	src := writeFile(t, dir, "main.c", "#include <a.h>\n#ifdef GONE\nbad\n#endif\nint n = LIMIT;\n")

	res, err := runApp(t, "--config", conf, src)
	require.NoError(t, err)
	assert.Equal(t, "int from_header ; int n = 10 ;\n", res.Stdout)
}

func TestRunWarning(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, dir, "main.c", "#warning careful\nint x;\n")

	res, err := runApp(t, "--color", "never", src)
	require.NoError(t, err)
	assert.Equal(t, "int x ;\n", res.Stdout)
	assert.Contains(t, res.Stderr, "main.c:1:")
	assert.Contains(t, res.Stderr, "warning: careful")
}

func TestRunFatal(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, dir, "main.c", "#if 1\nint x;\n")

	res, err := runApp(t, "--color", "never", src)
	require.Error(t, err)
	assert.Equal(t, 1, res.ExitCode)
	assert.Empty(t, res.Stdout)
	assert.Contains(t, res.Stderr, "error:")
	assert.Contains(t, res.Stderr, "[conditional-not-terminated]")
}

func TestRunUsage(t *testing.T) {
	_, err := runApp(t)
	assert.ErrorContains(t, err, "expected exactly one input file")

	dir := t.TempDir()
	src := writeFile(t, dir, "main.c", "x\n")
	_, err = runApp(t, "--color", "sometimes", src)
	assert.ErrorContains(t, err, "invalid --color")

	_, err = runApp(t, "--log-level", "loud", src)
	assert.ErrorContains(t, err, "unknown log level")
}

func TestWriteOutput(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.i")
	require.NoError(t, writeOutput(path, "int x ;"))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "int x ;\n", string(data))

	assert.ErrorContains(t, writeOutput(filepath.Join(dir, "missing", "out.i"), "x"), "create output")

	_, err = runApp(t, "-o", filepath.Join(dir, "missing", "out.i"), writeFile(t, dir, "main.c", "x\n"))
	assert.ErrorContains(t, err, "create output")
}
