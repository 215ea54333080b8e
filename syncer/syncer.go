// Package syncer implements the additive upload of local files and directory
// trees to a webdav collection: existing remote content is never overwritten,
// missing collections are created on the way, and one item's failure never
// stops its siblings.
package syncer

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/google/uuid"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/php-denken/schubser/davpath"
)

type Syncer struct {
	c *config
}

func New(opts ...Option) (*Syncer, error) {
	c := &config{
		Thread: 1,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.Client == nil {
		return nil, fmt.Errorf("no webdav client found")
	}
	if c.Thread < 1 {
		c.Thread = 1
	}
	if c.FS == nil {
		c.FS = osfs.New("/")
	}
	return &Syncer{c: c}, nil
}

// run carries the per-invocation state: the collection cache and the
// singleflight group that keeps parallel ensures from duplicating probes.
type run struct {
	*Syncer
	id    string
	cache *dirCache
	group singleflight.Group
}

func (s *Syncer) newRun() *run {
	return &run{
		Syncer: s,
		id:     uuid.NewString(),
		cache:  newDirCache(),
	}
}

// Sync processes the given local paths in order and returns the aggregated
// report. Inspect Report.Err for partial failure.
func (s *Syncer) Sync(ctx context.Context, paths []string) *Report {
	r := s.newRun()
	rp := &Report{RunID: r.id}
	logutil.GetLogger(ctx).Info("start sync run",
		zap.String("run_id", r.id), zap.Int("item_cnt", len(paths)), zap.Int("thread", s.c.Thread))
	for _, p := range paths {
		rp.Items = append(rp.Items, r.syncOne(ctx, p)...)
	}
	logutil.GetLogger(ctx).Info("sync run finished",
		zap.String("run_id", r.id),
		zap.Int("created", rp.Count(OutcomeCreated)),
		zap.Int("already_exists", rp.Count(OutcomeAlreadyExists)),
		zap.Int("skipped", rp.Count(OutcomeSkipped)),
		zap.Int("failed", rp.Count(OutcomeFailed)))
	return rp
}

// SyncFile uploads a single local file to the given remote-relative location,
// ensuring its parent collections first. Used by watch mode, where the remote
// path keeps the position of the file under the watched root.
func (s *Syncer) SyncFile(ctx context.Context, localPath string, remoteRel string) Outcome {
	r := s.newRun()
	rel := davpath.Normalize(remoteRel)
	if parent := parentOf(rel); len(parent) != 0 {
		if out := r.ensureDir(ctx, parent); out.Kind == OutcomeFailed {
			return Outcome{Kind: OutcomeFailed, LocalPath: localPath, RemotePath: rel, Err: out.Err}
		}
	}
	return r.uploadFile(ctx, localPath, rel)
}

func (r *run) syncOne(ctx context.Context, p string) []Outcome {
	abs, err := filepath.Abs(p)
	if err != nil {
		return []Outcome{{Kind: OutcomeFailed, LocalPath: p, Err: fmt.Errorf("resolve path failed, err:%w", err)}}
	}
	info, err := r.c.FS.Stat(abs)
	if err != nil {
		if os.IsNotExist(err) {
			err = fmt.Errorf("%w, path:%s", ErrPathMissing, p)
		}
		logutil.GetLogger(ctx).Error("skip argument, stat failed", zap.String("path", p), zap.Error(err))
		return []Outcome{{Kind: OutcomeFailed, LocalPath: p, Err: err}}
	}
	base := filepath.Base(abs)
	if info.IsDir() {
		return r.walkTree(ctx, abs, davpath.Normalize(base))
	}
	if !info.Mode().IsRegular() {
		logutil.GetLogger(ctx).Info("skip non-regular file", zap.String("path", p))
		return []Outcome{{Kind: OutcomeSkipped, LocalPath: p}}
	}
	return []Outcome{r.uploadFile(ctx, abs, davpath.Normalize(base))}
}

func parentOf(rel string) string {
	parent := path.Dir(rel)
	if parent == "." || parent == "/" {
		return ""
	}
	return parent
}
