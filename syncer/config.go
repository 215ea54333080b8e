package syncer

import (
	"github.com/go-git/go-billy/v5"

	"github.com/php-denken/schubser/webdav"
)

type config struct {
	Client webdav.IClient
	FS     billy.Filesystem
	Thread int
}

type Option func(*config)

func WithClient(cli webdav.IClient) Option {
	return func(c *config) {
		c.Client = cli
	}
}

// WithFS sets the local filesystem the syncer reads from. Defaults to the os
// filesystem; tests use memfs.
func WithFS(fs billy.Filesystem) Option {
	return func(c *config) {
		c.FS = fs
	}
}

// WithThread bounds parallel file uploads inside one directory walk. 1 keeps
// the strictly sequential behavior.
func WithThread(t int) Option {
	return func(c *config) {
		c.Thread = t
	}
}
