package output

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sitepack/internal/bundle"
)

func TestWriteCreatesDirectoryAndFile(t *testing.T) {
	dir := t.TempDir()
	dest := filepath.Join(dir, "dist", "preview", "index.html")
	art := &bundle.Artifact{HTML: []byte("<!DOCTYPE html>\n<html></html>\n"), EventCount: 5}

	sum, err := Write(dest, art)
	require.NoError(t, err)

	body, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, art.HTML, body)

	assert.Equal(t, dest, sum.Path)
	assert.Equal(t, len(art.HTML), sum.Bytes)
	assert.Equal(t, 5, sum.EventCount)
}

func TestWriteOverwritesUnconditionally(t *testing.T) {
	dir := t.TempDir()
	dest := filepath.Join(dir, "index.html")
	require.NoError(t, os.WriteFile(dest, []byte("old artifact"), 0o644))

	art := &bundle.Artifact{HTML: []byte("new artifact"), EventCount: 0}
	_, err := Write(dest, art)
	require.NoError(t, err)

	body, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "new artifact", string(body))
}

func TestWriteLeavesNoTempFile(t *testing.T) {
	dir := t.TempDir()
	dest := filepath.Join(dir, "index.html")

	_, err := Write(dest, &bundle.Artifact{HTML: []byte("x")})
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, strings.HasPrefix(e.Name(), ".sitepack-artifact-"), "temp file left behind: %s", e.Name())
	}
}

func TestWriteSizeRounding(t *testing.T) {
	cases := []struct {
		bytes  int
		sizeKB int
	}{
		{100, 0},
		{512, 1},
		{1024, 1},
		{1536, 2},
		{10 * 1024, 10},
	}
	for _, tc := range cases {
		dest := filepath.Join(t.TempDir(), "index.html")
		sum, err := Write(dest, &bundle.Artifact{HTML: make([]byte, tc.bytes)})
		require.NoError(t, err)
		assert.Equal(t, tc.sizeKB, sum.SizeKB, "bytes=%d", tc.bytes)
	}
}

func TestWriteRejectsBadArguments(t *testing.T) {
	_, err := Write("", &bundle.Artifact{})
	require.Error(t, err)

	_, err = Write(filepath.Join(t.TempDir(), "x.html"), nil)
	require.Error(t, err)
}
