package workspace

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, rel, content string) string {
	t.Helper()
	path := filepath.Join(dir, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestOSReadStatExists(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "schema.xsd", "<schema/>")

	o := NewOS([]string{dir})
	assert.True(t, o.Exists(path))
	assert.False(t, o.Exists(dir), "directories are not files")
	assert.False(t, o.Exists(filepath.Join(dir, "missing.xsd")))

	b, err := o.Read(path)
	require.NoError(t, err)
	assert.Equal(t, "<schema/>", string(b))

	_, err = o.Read(filepath.Join(dir, "missing.xsd"))
	assert.ErrorIs(t, err, ErrNotExist)

	mt, err := o.Stat(path)
	require.NoError(t, err)
	assert.False(t, mt.IsZero())

	_, err = o.Stat(filepath.Join(dir, "missing.xsd"))
	assert.ErrorIs(t, err, ErrNotExist)
}

func TestOSSearchByFilename(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a/common.xsd", "<schema/>")
	b := writeFile(t, dir, "b/nested/common.xsd", "<schema/>")
	writeFile(t, dir, "a/other.xsd", "<schema/>")

	o := NewOS([]string{dir})
	hits := o.SearchByFilename("common.xsd")
	assert.Equal(t, []string{a, b}, hits, "sorted, other names excluded")

	assert.Empty(t, o.SearchByFilename(""))
	assert.Empty(t, o.SearchByFilename("absent.xsd"))
}

func TestOSSearchExcludesAndCaps(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "src/common.xsd", "<schema/>")
	writeFile(t, dir, "vendor/dep/common.xsd", "<schema/>")

	o := NewOS([]string{dir}, WithExclude("vendor/**"))
	hits := o.SearchByFilename("common.xsd")
	require.Len(t, hits, 1)
	assert.Contains(t, hits[0], "src")

	capped := NewOS([]string{dir}, WithMaxResults(1))
	assert.Len(t, capped.SearchByFilename("common.xsd"), 1)
}

func TestOSSearchMissingRootTolerated(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "common.xsd", "<schema/>")

	o := NewOS([]string{filepath.Join(dir, "nope"), dir})
	hits := o.SearchByFilename("common.xsd")
	assert.Len(t, hits, 1)
}

func TestMem(t *testing.T) {
	m := NewMem(map[string]string{
		"/ws/a/common.xsd": "<a/>",
		"/ws/b/common.xsd": "<b/>",
		"/ws/root.xsd":     "<r/>",
	})

	assert.True(t, m.Exists("/ws/root.xsd"))
	assert.False(t, m.Exists("/ws/other.xsd"))

	b, err := m.Read("/ws/root.xsd")
	require.NoError(t, err)
	assert.Equal(t, "<r/>", string(b))

	_, err = m.Read("/ws/other.xsd")
	assert.ErrorIs(t, err, ErrNotExist)

	hits := m.SearchByFilename("common.xsd")
	assert.Equal(t, []string{"/ws/a/common.xsd", "/ws/b/common.xsd"}, hits)
}

func TestMemTouchBumpsTimestamp(t *testing.T) {
	m := NewMem(map[string]string{"/ws/root.xsd": "<r/>"})

	before, err := m.Stat("/ws/root.xsd")
	require.NoError(t, err)

	m.Touch("/ws/root.xsd", "<r2/>")

	after, err := m.Stat("/ws/root.xsd")
	require.NoError(t, err)
	assert.True(t, after.After(before))

	b, _ := m.Read("/ws/root.xsd")
	assert.Equal(t, "<r2/>", string(b))
}
