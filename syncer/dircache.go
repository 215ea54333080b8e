package syncer

import "sync"

// dirCache remembers which remote collections were confirmed or created
// during one run, plus the ones whose creation failed so a broken subtree is
// not retried for every file beneath it. Entries live for the whole run.
type dirCache struct {
	mu     sync.RWMutex
	known  map[string]struct{}
	failed map[string]error
}

func newDirCache() *dirCache {
	return &dirCache{
		known:  make(map[string]struct{}),
		failed: make(map[string]error),
	}
}

func (d *dirCache) Has(path string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.known[path]
	return ok
}

func (d *dirCache) Mark(path string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.known[path] = struct{}{}
}

func (d *dirCache) FailedAt(path string) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.failed[path]
}

func (d *dirCache) MarkFailed(path string, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.failed[path] = err
}
