package logger

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDailyWriterRollsByDay(t *testing.T) {
	dir := t.TempDir()
	w, err := NewDailyWriter(filepath.Join(dir, "logs"))
	require.NoError(t, err)

	day1 := time.Date(2026, 3, 1, 23, 59, 0, 0, time.UTC)
	w.now = func() time.Time { return day1 }
	_, err = w.Write([]byte("first\n"))
	require.NoError(t, err)

	w.now = func() time.Time { return day1.Add(2 * time.Minute) }
	_, err = w.Write([]byte("second\n"))
	require.NoError(t, err)

	b1, err := os.ReadFile(filepath.Join(dir, "logs", "albedo_2026-03-01.log"))
	require.NoError(t, err)
	b2, err := os.ReadFile(filepath.Join(dir, "logs", "albedo_2026-03-02.log"))
	require.NoError(t, err)
	assert.Equal(t, "first\n", string(b1))
	assert.Equal(t, "second\n", string(b2))
}

func TestNewWritesToFile(t *testing.T) {
	dir := t.TempDir()
	l, err := New(Options{Dir: dir})
	require.NoError(t, err)
	l.Info("hello")
	_ = l.Sync()

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	b, err := os.ReadFile(filepath.Join(dir, entries[0].Name()))
	require.NoError(t, err)
	assert.Contains(t, string(b), `"msg":"hello"`)
}
