package watcher

import (
	"time"

	"github.com/php-denken/schubser/syncer"
)

type config struct {
	Syncer *syncer.Syncer
	Root   string
	Settle time.Duration
}

type Option func(*config)

func WithSyncer(s *syncer.Syncer) Option {
	return func(c *config) {
		c.Syncer = s
	}
}

func WithRoot(root string) Option {
	return func(c *config) {
		c.Root = root
	}
}

// WithSettleDelay sets how long a file has to stay unchanged after an event
// before it is uploaded, so half-written files are not pushed.
func WithSettleDelay(d time.Duration) Option {
	return func(c *config) {
		c.Settle = d
	}
}
