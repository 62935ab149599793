package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRelevantFiltersToWatchedPaths(t *testing.T) {
	dir := t.TempDir()
	watched := filepath.Join(dir, "root.xsd")
	require.NoError(t, os.WriteFile(watched, []byte("<a/>"), 0o644))

	w, err := New([]string{watched}, 0, nil)
	require.NoError(t, err)
	defer w.Close()

	assert.True(t, w.relevant(fsnotify.Event{Name: watched, Op: fsnotify.Write}))
	assert.True(t, w.relevant(fsnotify.Event{Name: watched, Op: fsnotify.Create}))
	assert.True(t, w.relevant(fsnotify.Event{Name: watched, Op: fsnotify.Rename}))
	assert.False(t, w.relevant(fsnotify.Event{Name: watched, Op: fsnotify.Chmod}))
	assert.False(t, w.relevant(fsnotify.Event{Name: watched, Op: fsnotify.Remove}))
	assert.False(t, w.relevant(fsnotify.Event{Name: filepath.Join(dir, "other.xsd"), Op: fsnotify.Write}))
}

func TestRunInvokesCallbackOnWrite(t *testing.T) {
	dir := t.TempDir()
	watched := filepath.Join(dir, "root.xsd")
	require.NoError(t, os.WriteFile(watched, []byte("<a/>"), 0o644))

	w, err := New([]string{watched}, 10*time.Millisecond, nil)
	require.NoError(t, err)
	defer w.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	changed := make(chan struct{}, 1)
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, func() {
			select {
			case changed <- struct{}{}:
			default:
			}
		})
	}()

	// Give the watcher a moment to arm before the edit.
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, os.WriteFile(watched, []byte("<b/>"), 0o644))

	select {
	case <-changed:
	case <-ctx.Done():
		t.Fatal("no change callback before timeout")
	}

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestRunDebouncesBursts(t *testing.T) {
	dir := t.TempDir()
	watched := filepath.Join(dir, "root.xsd")
	require.NoError(t, os.WriteFile(watched, []byte("<a/>"), 0o644))

	w, err := New([]string{watched}, 100*time.Millisecond, nil)
	require.NoError(t, err)
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	calls := make(chan struct{}, 16)
	go func() { _ = w.Run(ctx, func() { calls <- struct{}{} }) }()

	time.Sleep(50 * time.Millisecond)
	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(watched, []byte("<b/>"), 0o644))
		time.Sleep(10 * time.Millisecond)
	}

	select {
	case <-calls:
	case <-time.After(5 * time.Second):
		t.Fatal("no change callback for burst")
	}
	select {
	case <-calls:
		t.Fatal("burst was not coalesced into one callback")
	case <-time.After(300 * time.Millisecond):
	}
}

func TestNewToleratesMissingDirectory(t *testing.T) {
	w, err := New([]string{"/definitely/not/here/root.xsd"}, 0, nil)
	require.NoError(t, err, "unwatchable directories are logged, not fatal")
	require.NoError(t, w.Close())
}
