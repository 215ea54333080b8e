package syncer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/php-denken/schubser/davpath"
	"github.com/php-denken/schubser/webdav"
)

// ensureDir confirms that the collection and all its ancestors exist,
// creating the missing ones left to right. Creation is idempotent: a server
// answering "already there" to MKCOL counts as success, so concurrent ensures
// on the same path can not trip each other. Failure at one segment aborts the
// deeper ones, a child can not be created under an unresolved parent.
func (r *run) ensureDir(ctx context.Context, dir string) Outcome {
	out := Outcome{Kind: OutcomeAlreadyExists, RemotePath: dir}
	var prefix string
	for _, seg := range strings.Split(dir, "/") {
		if len(seg) == 0 {
			continue
		}
		prefix = davpath.Join(prefix, seg)
		created, err := r.ensureStep(ctx, prefix)
		if err != nil {
			out.Kind = OutcomeFailed
			out.Err = err
			return out
		}
		if created {
			out.Kind = OutcomeCreated
		}
	}
	return out
}

func (r *run) ensureStep(ctx context.Context, prefix string) (bool, error) {
	if r.cache.Has(prefix) {
		return false, nil
	}
	if err := r.cache.FailedAt(prefix); err != nil {
		return false, err
	}
	v, err, _ := r.group.Do(prefix, func() (interface{}, error) {
		if r.cache.Has(prefix) {
			return false, nil
		}
		exist, err := r.c.Client.StatCollection(ctx, prefix)
		if err != nil {
			// could not tell, treat as absent and let mkcol decide
			logutil.GetLogger(ctx).Warn("collection probe failed, assume absent",
				zap.String("path", prefix), zap.Error(err))
		}
		if exist {
			r.cache.Mark(prefix)
			return false, nil
		}
		if err := r.c.Client.MakeCollection(ctx, prefix); err != nil {
			if errors.Is(err, webdav.ErrCollectionExists) {
				r.cache.Mark(prefix)
				return false, nil
			}
			werr := fmt.Errorf("make collection failed, path:%s, err:%w", prefix, err)
			logutil.GetLogger(ctx).Error("make collection failed",
				zap.String("path", prefix), zap.Error(err))
			r.cache.MarkFailed(prefix, werr)
			return false, werr
		}
		logutil.GetLogger(ctx).Info("collection created", zap.String("path", prefix))
		r.cache.Mark(prefix)
		return true, nil
	})
	if err != nil {
		return false, err
	}
	return v.(bool), nil
}
