package watcher

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/php-denken/schubser/davpath"
	"github.com/php-denken/schubser/syncer"
)

type fakeClient struct {
	mu    sync.Mutex
	files map[string]string
	cols  map[string]struct{}
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		files: make(map[string]string),
		cols:  make(map[string]struct{}),
	}
}

func (f *fakeClient) StatFile(ctx context.Context, rel string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.files[rel]
	return ok, nil
}

func (f *fakeClient) StatCollection(ctx context.Context, rel string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.cols[rel]
	return ok, nil
}

func (f *fakeClient) MakeCollection(ctx context.Context, rel string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cols[rel] = struct{}{}
	return nil
}

func (f *fakeClient) PutFile(ctx context.Context, rel string, r io.Reader, size int64, contentType string) error {
	raw, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.files[rel] = string(raw)
	return nil
}

func (f *fakeClient) content(rel string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.files[rel]
	return v, ok
}

func (f *fakeClient) preset(rel string, content string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.files[rel] = content
}

func newTestWatcher(t *testing.T, settle time.Duration) (*Watcher, *fakeClient, string) {
	t.Helper()
	root := t.TempDir()
	cli := newFakeClient()
	s, err := syncer.New(syncer.WithClient(cli), syncer.WithFS(osfs.New("/")))
	require.NoError(t, err)
	w, err := New(WithSyncer(s), WithRoot(root), WithSettleDelay(settle))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = w.fsw.Close()
	})
	return w, cli, root
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("condition not met within %v", timeout)
}

func TestNewValidatesInput(t *testing.T) {
	s, err := syncer.New(syncer.WithClient(newFakeClient()))
	require.NoError(t, err)
	_, err = New(WithRoot(t.TempDir()))
	assert.Error(t, err)
	_, err = New(WithSyncer(s))
	assert.Error(t, err)
	fp := filepath.Join(t.TempDir(), "plain.txt")
	require.NoError(t, os.WriteFile(fp, []byte("x"), 0644))
	_, err = New(WithSyncer(s), WithRoot(fp))
	assert.Error(t, err)
}

func TestHandleEventFiltering(t *testing.T) {
	ctx := context.Background()
	w, _, root := newTestWatcher(t, 10*time.Millisecond)
	fp := filepath.Join(root, "a.txt")
	require.NoError(t, os.WriteFile(fp, []byte("a"), 0644))

	// only create and write matter
	w.handleEvent(ctx, fsnotify.Event{Name: fp, Op: fsnotify.Remove})
	w.handleEvent(ctx, fsnotify.Event{Name: fp, Op: fsnotify.Chmod})
	assert.Zero(t, w.queue.Len())
	// vanished files are ignored
	w.handleEvent(ctx, fsnotify.Event{Name: filepath.Join(root, "gone.txt"), Op: fsnotify.Create})
	assert.Zero(t, w.queue.Len())
	// directories are watched, not uploaded
	sub := filepath.Join(root, "sub")
	require.NoError(t, os.Mkdir(sub, 0755))
	w.handleEvent(ctx, fsnotify.Event{Name: sub, Op: fsnotify.Create})
	assert.Zero(t, w.queue.Len())

	// an event burst on one file queues a single entry
	w.handleEvent(ctx, fsnotify.Event{Name: fp, Op: fsnotify.Create})
	w.handleEvent(ctx, fsnotify.Event{Name: fp, Op: fsnotify.Write})
	assert.Equal(t, 1, w.queue.Len())
	ent, ok := w.queue.Dequeue()
	require.True(t, ok)
	assert.Equal(t, fp, ent.localPath)
	assert.Equal(t, davpath.Join(w.remoteRoot, "a.txt"), ent.remotePath)
}

func TestProcessEntryUploadsSettledFile(t *testing.T) {
	ctx := context.Background()
	w, cli, root := newTestWatcher(t, 10*time.Millisecond)
	fp := filepath.Join(root, "a.txt")
	require.NoError(t, os.WriteFile(fp, []byte("hello"), 0644))

	w.processEntry(ctx, queueEntry{localPath: fp, remotePath: "r/a.txt"})
	got, ok := cli.content("r/a.txt")
	require.True(t, ok)
	assert.Equal(t, "hello", got)
	assert.Contains(t, cli.cols, "r")
}

func TestProcessEntrySkipsChangingFile(t *testing.T) {
	ctx := context.Background()
	w, cli, root := newTestWatcher(t, 300*time.Millisecond)
	fp := filepath.Join(root, "grow.txt")
	require.NoError(t, os.WriteFile(fp, []byte("v1"), 0644))

	done := make(chan struct{})
	go func() {
		defer close(done)
		w.processEntry(ctx, queueEntry{localPath: fp, remotePath: "r/grow.txt"})
	}()
	// grow the file inside the settle window, the push must back off
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, os.WriteFile(fp, []byte("v1 and then some"), 0644))
	<-done
	_, ok := cli.content("r/grow.txt")
	assert.False(t, ok)
}

func TestProcessEntryNeverOverwrites(t *testing.T) {
	ctx := context.Background()
	w, cli, root := newTestWatcher(t, 10*time.Millisecond)
	fp := filepath.Join(root, "a.txt")
	require.NoError(t, os.WriteFile(fp, []byte("local"), 0644))
	cli.preset("r/a.txt", "remote wins")

	w.processEntry(ctx, queueEntry{localPath: fp, remotePath: "r/a.txt"})
	got, _ := cli.content("r/a.txt")
	assert.Equal(t, "remote wins", got)
}

func TestProcessEntryHonorsCancel(t *testing.T) {
	w, cli, root := newTestWatcher(t, 10*time.Second)
	fp := filepath.Join(root, "a.txt")
	require.NoError(t, os.WriteFile(fp, []byte("x"), 0644))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	w.processEntry(ctx, queueEntry{localPath: fp, remotePath: "r/a.txt"})
	assert.Less(t, time.Since(start), time.Second)
	_, ok := cli.content("r/a.txt")
	assert.False(t, ok)
}

func TestRunUploadsNewFiles(t *testing.T) {
	w, cli, root := newTestWatcher(t, 20*time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx)
	}()
	time.Sleep(100 * time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(root, "new.txt"), []byte("fresh"), 0644))
	sub := filepath.Join(root, "sub")
	require.NoError(t, os.Mkdir(sub, 0755))
	// give the event loop a beat to register the new directory
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(sub, "deep.txt"), []byte("deeper"), 0644))

	waitFor(t, 3*time.Second, func() bool {
		_, ok1 := cli.content(davpath.Join(w.remoteRoot, "new.txt"))
		_, ok2 := cli.content(davpath.Join(w.remoteRoot, "sub/deep.txt"))
		return ok1 && ok2
	})
	cancel()
	require.NoError(t, <-done)
}

func TestRunStopsPromptly(t *testing.T) {
	w, _, _ := newTestWatcher(t, time.Minute)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx)
	}()
	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop after cancel")
	}
}
