//go:build amd64

package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pboyd/detour/versions"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFingerprint_Self(t *testing.T) {
	exe, err := os.Executable()
	require.NoError(t, err)

	want, err := versions.Fingerprint(exe)
	require.NoError(t, err)

	out, err := run(t, "fingerprint", exe)
	require.NoError(t, err)
	assert.Equal(t, want+"\nunknown build\n", out)
}

// selfSymbol returns the full name of writeGoSymbols in the test binary.
func selfSymbol(t *testing.T, exe string) string {
	t.Helper()

	out, err := run(t, "symbols", exe, ".writeGoSymbols")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.NotEmpty(t, lines)
	fields := strings.Split(lines[0], "\t")
	require.Len(t, fields, 3)
	require.True(t, strings.HasSuffix(fields[2], ".writeGoSymbols"))
	return fields[2]
}

func TestSymbols_Self(t *testing.T) {
	exe, err := os.Executable()
	require.NoError(t, err)

	name := selfSymbol(t, exe)

	t.Cleanup(func() {
		goVar, goPackage, output = "", "main", ""
	})
	path := filepath.Join(t.TempDir(), "syms.go")
	_, err = run(t, "symbols", "--go", "Syms", "--package", "syms", "-o", path, exe, name)
	require.NoError(t, err)

	src, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(src), `"`+name+`",`)
}

func TestPrologue_Self(t *testing.T) {
	exe, err := os.Executable()
	require.NoError(t, err)

	out, err := run(t, "prologue", exe, selfSymbol(t, exe))
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.GreaterOrEqual(t, len(lines), 2)
	assert.True(t, strings.HasPrefix(lines[len(lines)-1], "size: "))

	_, err = run(t, "prologue", exe, "no.such.symbol")
	assert.Error(t, err)
}
