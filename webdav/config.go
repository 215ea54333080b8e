package webdav

import "time"

type config struct {
	BaseURL            string
	Username           string
	Password           string
	InsecureSkipVerify bool
	Timeout            time.Duration
}

type Option func(*config)

// WithBaseURL sets the collection root every relative path is resolved
// against. It has to end with '/' and is used as-is, never re-encoded.
func WithBaseURL(u string) Option {
	return func(c *config) {
		c.BaseURL = u
	}
}

func WithAuth(user string, pass string) Option {
	return func(c *config) {
		c.Username = user
		c.Password = pass
	}
}

func WithInsecureSkipVerify(v bool) Option {
	return func(c *config) {
		c.InsecureSkipVerify = v
	}
}

func WithTimeout(t time.Duration) Option {
	return func(c *config) {
		c.Timeout = t
	}
}
