package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestDataWatcher_DebouncesWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gallery-data.json")
	require.NoError(t, os.WriteFile(path, []byte("[]\n"), 0644))

	var calls atomic.Int32
	dw, err := New(path, func(string) { calls.Add(1) }, zap.NewNop())
	require.NoError(t, err)
	dw.debounce = 50 * time.Millisecond
	require.NoError(t, dw.Start(context.Background()))
	defer dw.Stop()

	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(path, []byte("[]\n"), 0644))
	}

	require.Eventually(t, func() bool { return calls.Load() == 1 }, 2*time.Second, 10*time.Millisecond)
	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load(), "one callback per burst")
}

func TestDataWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gallery-data.json")

	var calls atomic.Int32
	dw, err := New(path, func(string) { calls.Add(1) }, zap.NewNop())
	require.NoError(t, err)
	dw.debounce = 20 * time.Millisecond
	require.NoError(t, dw.Start(context.Background()))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.json"), []byte("{}"), 0644))
	time.Sleep(150 * time.Millisecond)
	dw.Stop()

	assert.Zero(t, calls.Load())
}

func TestDataWatcher_StopWithoutStart(t *testing.T) {
	dw, err := New(filepath.Join(t.TempDir(), "x.json"), func(string) {}, zap.NewNop())
	require.NoError(t, err)
	dw.Stop()
}
