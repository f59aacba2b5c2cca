package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, data string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
}

// start runs w in the background. The returned wait stops it and returns the
// result of Run.
func start(t *testing.T, w *Watcher) (*atomic.Int32, func() error) {
	t.Helper()
	var calls atomic.Int32
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, func() { calls.Add(1) })
	}()

	var once sync.Once
	var result error
	wait := func() error {
		once.Do(func() {
			cancel()
			select {
			case result = <-done:
			case <-time.After(2 * time.Second):
				t.Error("Run did not return after cancel")
			}
		})
		return result
	}
	t.Cleanup(func() {
		_ = wait()
		_ = w.Close()
	})
	return &calls, wait
}

func TestWatcher_FiresOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scenario.yaml")
	writeFile(t, path, "a")

	w, err := New(path, WithDebounce(50*time.Millisecond))
	require.NoError(t, err)
	assert.Equal(t, path, w.Path())

	calls, _ := start(t, w)
	writeFile(t, path, "b")

	assert.Eventually(t, func() bool { return calls.Load() == 1 }, 2*time.Second, 10*time.Millisecond)
}

func TestWatcher_Debounces(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scenario.yaml")
	writeFile(t, path, "a")

	w, err := New(path, WithDebounce(200*time.Millisecond))
	require.NoError(t, err)
	calls, _ := start(t, w)

	for _, s := range []string{"b", "c", "d"} {
		writeFile(t, path, s)
	}

	assert.Eventually(t, func() bool { return calls.Load() >= 1 }, 2*time.Second, 10*time.Millisecond)
	time.Sleep(400 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scenario.yaml")
	writeFile(t, path, "a")

	w, err := New(path, WithDebounce(20*time.Millisecond))
	require.NoError(t, err)
	calls, _ := start(t, w)

	writeFile(t, filepath.Join(dir, "other.yaml"), "x")
	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, int32(0), calls.Load())
}

func TestWatcher_CancelReturnsNil(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	writeFile(t, path, "a")

	w, err := New(path)
	require.NoError(t, err)
	_, wait := start(t, w)

	assert.NoError(t, wait())
}

func TestNew_MissingPath(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, ErrPathNotExist)
}

func TestWatcher_Closed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	writeFile(t, path, "a")

	w, err := New(path)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	require.NoError(t, w.Close())
	assert.ErrorIs(t, w.Run(context.Background(), func() {}), ErrWatcherClosed)
}

func TestRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	writeFile(t, path, "a")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var calls atomic.Int32
	done := make(chan error, 1)
	go func() {
		done <- Run(ctx, path, 20*time.Millisecond, func() {
			calls.Add(1)
			cancel()
		})
	}()

	// The watch is installed asynchronously, so keep touching the file.
	assert.Eventually(t, func() bool {
		_ = os.WriteFile(path, []byte(time.Now().String()), 0o644)
		return calls.Load() > 0
	}, 2*time.Second, 50*time.Millisecond)

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return")
	}
}
