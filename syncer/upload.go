package syncer

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gabriel-vasile/mimetype"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
)

// uploadFile pushes one local file to the given remote-relative path. An
// already existing remote file is left untouched.
func (r *run) uploadFile(ctx context.Context, localPath string, rel string) Outcome {
	out := Outcome{LocalPath: localPath, RemotePath: rel}
	exist, err := r.c.Client.StatFile(ctx, rel)
	if err != nil {
		// could not tell, treat as absent; a wrong guess only costs one put
		logutil.GetLogger(ctx).Warn("file probe failed, assume absent",
			zap.String("path", rel), zap.Error(err))
	}
	if exist {
		logutil.GetLogger(ctx).Debug("remote file exists, skip upload", zap.String("path", rel))
		out.Kind = OutcomeAlreadyExists
		return out
	}
	info, err := r.c.FS.Stat(localPath)
	if err != nil {
		return r.failUpload(ctx, out, fmt.Errorf("stat local file failed, err:%w", err))
	}
	f, err := r.c.FS.Open(localPath)
	if err != nil {
		return r.failUpload(ctx, out, fmt.Errorf("open local file failed, err:%w", err))
	}
	defer f.Close()
	var ctype string
	if mt, err := mimetype.DetectReader(f); err == nil {
		ctype = mt.String()
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return r.failUpload(ctx, out, fmt.Errorf("rewind local file failed, err:%w", err))
	}
	start := time.Now()
	if err := r.c.Client.PutFile(ctx, rel, f, info.Size(), ctype); err != nil {
		return r.failUpload(ctx, out, fmt.Errorf("put file failed, err:%w", err))
	}
	logutil.GetLogger(ctx).Info("file uploaded",
		zap.String("path", rel),
		zap.String("size", humanize.IBytes(uint64(info.Size()))),
		zap.Duration("cost", time.Since(start)))
	out.Kind = OutcomeCreated
	return out
}

func (r *run) failUpload(ctx context.Context, out Outcome, err error) Outcome {
	logutil.GetLogger(ctx).Error("upload file failed",
		zap.String("local", out.LocalPath), zap.String("remote", out.RemotePath), zap.Error(err))
	out.Kind = OutcomeFailed
	out.Err = err
	return out
}
