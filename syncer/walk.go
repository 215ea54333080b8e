package syncer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-git/go-billy/v5/util"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/php-denken/schubser/davpath"
)

type walkItem struct {
	local string
	rel   string
}

// walkTree uploads every regular file under localRoot to the collection
// remoteRoot, creating missing collections on the way. One file's failure
// never stops the others; only an unresolved collection suppresses the files
// beneath it.
func (r *run) walkTree(ctx context.Context, localRoot string, remoteRoot string) []Outcome {
	rootOut := r.ensureDir(ctx, remoteRoot)
	if rootOut.Kind == OutcomeFailed {
		// nothing under an uncreated root is attempted
		return []Outcome{rootOut}
	}
	// the report carries one outcome per file; collection work is logged and
	// only surfaces here when it fails
	var outs []Outcome
	var files []walkItem
	werr := util.Walk(r.c.FS, localRoot, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			logutil.GetLogger(ctx).Error("walk entry failed", zap.String("path", p), zap.Error(err))
			outs = append(outs, Outcome{Kind: OutcomeFailed, LocalPath: p, Err: err})
			return nil
		}
		if info.IsDir() {
			return nil
		}
		if !info.Mode().IsRegular() {
			logutil.GetLogger(ctx).Info("skip non-regular file", zap.String("path", p))
			outs = append(outs, Outcome{Kind: OutcomeSkipped, LocalPath: p})
			return nil
		}
		rel, err := filepath.Rel(localRoot, p)
		if err != nil {
			outs = append(outs, Outcome{Kind: OutcomeFailed, LocalPath: p, Err: fmt.Errorf("rel path failed, err:%w", err)})
			return nil
		}
		files = append(files, walkItem{local: p, rel: davpath.Join(remoteRoot, davpath.Normalize(rel))})
		return nil
	})
	if werr != nil {
		outs = append(outs, Outcome{Kind: OutcomeFailed, LocalPath: localRoot, Err: fmt.Errorf("walk tree failed, err:%w", werr)})
		return outs
	}
	results := make([]Outcome, len(files))
	eg, subctx := errgroup.WithContext(ctx)
	eg.SetLimit(r.c.Thread)
	for i, item := range files {
		i, item := i, item
		eg.Go(func() error {
			results[i] = r.uploadOne(subctx, item)
			return nil
		})
	}
	_ = eg.Wait()
	return append(outs, results...)
}

func (r *run) uploadOne(ctx context.Context, item walkItem) Outcome {
	if parent := parentOf(item.rel); len(parent) != 0 {
		if out := r.ensureDir(ctx, parent); out.Kind == OutcomeFailed {
			return Outcome{Kind: OutcomeFailed, LocalPath: item.local, RemotePath: item.rel, Err: out.Err}
		}
	}
	return r.uploadFile(ctx, item.local, item.rel)
}
