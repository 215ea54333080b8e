// Package webdav is the client side of the small webdav subset this tool
// needs: existence probes, collection creation and whole-file upload.
package webdav

import (
	"context"
	"errors"
	"fmt"
	"io"
)

// ErrCollectionExists reports that a MakeCollection target is already present
// on the server. Callers doing an idempotent ensure treat it as success.
var ErrCollectionExists = errors.New("collection already exists")

// StatusError carries a non-success http status from the server.
type StatusError struct {
	Method string
	Path   string
	Code   int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status, method:%s, path:%s, code:%d", e.Method, e.Path, e.Code)
}

// IClient talks to one webdav server with fixed credentials and tls mode.
// All paths are relative to the configured base url and unencoded; the
// implementation percent-encodes them exactly once, so probing and creating a
// resource always address the same bytes.
type IClient interface {
	// StatFile reports whether a file resource exists. Only a plain 200
	// counts; redirects are not followed. A transport failure is returned to
	// the caller together with exists=false.
	StatFile(ctx context.Context, rel string) (bool, error)
	// StatCollection reports whether a collection exists, via a depth-0
	// listing probe. Any 2xx status counts, 207 multi-status included.
	StatCollection(ctx context.Context, rel string) (bool, error)
	// MakeCollection creates a single collection. The parent must already
	// exist. Returns ErrCollectionExists when the server signals the target
	// is already there.
	MakeCollection(ctx context.Context, rel string) error
	// PutFile streams r as the full content of the resource.
	PutFile(ctx context.Context, rel string, r io.Reader, size int64, contentType string) error
}
