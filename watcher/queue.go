package watcher

import "sync"

type queueEntry struct {
	localPath  string
	remotePath string
}

// queue decouples event intake from the settle-and-upload work, deduplicating
// by local path so a burst of write events costs one upload.
type queue struct {
	mu      sync.Mutex
	entries []queueEntry
	set     map[string]struct{}
}

func newQueue() *queue {
	return &queue{
		set: make(map[string]struct{}),
	}
}

func (q *queue) Enqueue(localPath string, remotePath string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if _, ok := q.set[localPath]; ok {
		return false
	}
	q.entries = append(q.entries, queueEntry{
		localPath:  localPath,
		remotePath: remotePath,
	})
	q.set[localPath] = struct{}{}
	return true
}

func (q *queue) Dequeue() (queueEntry, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.entries) == 0 {
		return queueEntry{}, false
	}
	ent := q.entries[0]
	q.entries = q.entries[1:]
	delete(q.set, ent.localPath)
	return ent, true
}

func (q *queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.entries)
}
