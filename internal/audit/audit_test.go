package audit

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerDisabledIsNoop(t *testing.T) {
	dir := t.TempDir()
	l := New(dir, false)

	require.NoError(t, l.LogRewrite("a/index.html", []string{"legacy-links"}))
	_, err := os.Stat(filepath.Join(dir, Dir))
	assert.True(t, os.IsNotExist(err))

	entries, err := l.Read()
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.False(t, l.Enabled())
}

func TestLoggerAppendsEntriesWithRunID(t *testing.T) {
	dir := t.TempDir()
	first := New(dir, true)
	second := New(dir, true)
	require.NotEqual(t, first.RunID(), second.RunID())

	require.NoError(t, first.LogRewrite("a/index.html", []string{"legacy-links", "double-dots"}))
	require.NoError(t, first.LogPrune("xmlrpc.php"))
	require.NoError(t, second.LogRewrite("b/index.html", nil))

	all, err := first.Read()
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "rewrite", all[0].Operation)
	assert.Equal(t, []string{"legacy-links", "double-dots"}, all[0].Passes)
	assert.False(t, all[0].Timestamp.IsZero())

	run, err := first.ReadRun(first.RunID())
	require.NoError(t, err)
	require.Len(t, run, 2)
	assert.Equal(t, "xmlrpc.php", run[1].File)
	assert.Equal(t, "prune", run[1].Operation)
}

func TestReadSkipsMalformedLines(t *testing.T) {
	dir := t.TempDir()
	l := New(dir, true)
	require.NoError(t, l.LogPrune("simulateur.html"))

	f, err := os.OpenFile(filepath.Join(dir, Dir, "audit.log"), os.O_APPEND|os.O_WRONLY, 0644)
	require.NoError(t, err)
	_, err = f.WriteString("not json\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	entries, err := l.Read()
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
