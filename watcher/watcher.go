// Package watcher keeps a local directory tree mirrored upward: every file
// that appears or finishes writing under the root is pushed through the
// additive uploader. Existing remote files are still never overwritten, so
// watch mode only ships brand-new content.
package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/php-denken/schubser/davpath"
	"github.com/php-denken/schubser/syncer"
)

const defaultIdlePoll = 100 * time.Millisecond

type Watcher struct {
	c          *config
	fsw        *fsnotify.Watcher
	queue      *queue
	root       string
	remoteRoot string
}

func New(opts ...Option) (*Watcher, error) {
	c := &config{
		Settle: 500 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.Syncer == nil {
		return nil, fmt.Errorf("no syncer found")
	}
	if len(c.Root) == 0 {
		return nil, fmt.Errorf("no watch root found")
	}
	root, err := filepath.Abs(c.Root)
	if err != nil {
		return nil, fmt.Errorf("resolve watch root failed, err:%w", err)
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("stat watch root failed, err:%w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("watch root is not a directory, path:%s", root)
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fs watcher failed, err:%w", err)
	}
	return &Watcher{
		c:          c,
		fsw:        fsw,
		queue:      newQueue(),
		root:       root,
		remoteRoot: davpath.Normalize(filepath.Base(root)),
	}, nil
}

// Run blocks until ctx is done. The event loop only stats and enqueues, so it
// keeps draining fsnotify no matter how long uploads take; a worker does the
// settle wait and the actual pushing.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fsw.Close()
	if err := w.addRecursive(w.root); err != nil {
		return fmt.Errorf("register watch tree failed, err:%w", err)
	}
	logutil.GetLogger(ctx).Info("watching directory",
		zap.String("root", w.root), zap.String("remote_root", w.remoteRoot))
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		w.processLoop(ctx)
	}()
	defer wg.Wait()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			w.handleEvent(ctx, ev)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			logutil.GetLogger(ctx).Error("fs watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			return w.fsw.Add(p)
		}
		return nil
	})
}

func (w *Watcher) handleEvent(ctx context.Context, ev fsnotify.Event) {
	if ev.Op&(fsnotify.Create|fsnotify.Write) == 0 {
		return
	}
	info, err := os.Stat(ev.Name)
	if err != nil {
		return
	}
	if info.IsDir() {
		if ev.Op&fsnotify.Create != 0 {
			if err := w.addRecursive(ev.Name); err != nil {
				logutil.GetLogger(ctx).Error("watch new directory failed",
					zap.String("path", ev.Name), zap.Error(err))
			}
		}
		return
	}
	if !info.Mode().IsRegular() {
		return
	}
	rel, err := filepath.Rel(w.root, ev.Name)
	if err != nil {
		logutil.GetLogger(ctx).Error("relativize path failed", zap.String("path", ev.Name), zap.Error(err))
		return
	}
	w.queue.Enqueue(ev.Name, davpath.Join(w.remoteRoot, davpath.Normalize(rel)))
}

func (w *Watcher) processLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		ent, ok := w.queue.Dequeue()
		if !ok {
			if !w.sleep(ctx, defaultIdlePoll) {
				return
			}
			continue
		}
		w.processEntry(ctx, ent)
	}
}

func (w *Watcher) processEntry(ctx context.Context, ent queueEntry) {
	info, err := os.Stat(ent.localPath)
	if err != nil {
		return
	}
	// let the writer finish; if the file keeps changing, a later event will
	// bring it back
	if !w.sleep(ctx, w.c.Settle) {
		return
	}
	cur, err := os.Stat(ent.localPath)
	if err != nil {
		return
	}
	if cur.Size() != info.Size() || !cur.ModTime().Equal(info.ModTime()) {
		logutil.GetLogger(ctx).Debug("file still changing, wait for next event",
			zap.String("path", ent.localPath))
		return
	}
	out := w.c.Syncer.SyncFile(ctx, ent.localPath, ent.remotePath)
	if out.Kind == syncer.OutcomeFailed {
		logutil.GetLogger(ctx).Error("push file failed",
			zap.String("local", ent.localPath), zap.String("remote", ent.remotePath), zap.Error(out.Err))
	}
}

func (w *Watcher) sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
