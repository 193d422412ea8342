package request

import (
	"net/http"
	"net/url"
	"time"
)

// DefaultTimeout applies when neither the client nor the call sets one.
const DefaultTimeout = 5 * time.Second

// Config is the per-client and per-call request configuration. A call works
// on a merged copy; client defaults are never mutated.
type Config struct {
	BaseURL string
	Timeout time.Duration
	Header  http.Header
	Query   url.Values
}

// Option adjusts the configuration of a single call.
type Option func(*Config)

// WithHeader sets a header for one call, replacing any client default.
func WithHeader(key, value string) Option {
	return func(c *Config) {
		if c.Header == nil {
			c.Header = http.Header{}
		}
		c.Header.Set(key, value)
	}
}

// WithTimeout overrides the client timeout for one call.
func WithTimeout(d time.Duration) Option {
	return func(c *Config) {
		if d > 0 {
			c.Timeout = d
		}
	}
}

// WithBaseURL points one call at a different base URL.
func WithBaseURL(base string) Option {
	return func(c *Config) {
		if base != "" {
			c.BaseURL = base
		}
	}
}

// WithQuery adds a query parameter to one call.
func WithQuery(key, value string) Option {
	return func(c *Config) {
		if c.Query == nil {
			c.Query = url.Values{}
		}
		c.Query.Add(key, value)
	}
}

// merge layers o over c. Non-zero fields of o win; headers and query values
// are combined key by key with o taking precedence.
func (c Config) merge(o Config) Config {
	out := c.clone()
	if o.BaseURL != "" {
		out.BaseURL = o.BaseURL
	}
	if o.Timeout > 0 {
		out.Timeout = o.Timeout
	}
	for k, v := range o.Header {
		if out.Header == nil {
			out.Header = http.Header{}
		}
		out.Header[k] = append([]string(nil), v...)
	}
	for k, v := range o.Query {
		if out.Query == nil {
			out.Query = url.Values{}
		}
		out.Query[k] = append([]string(nil), v...)
	}
	return out
}

func (c Config) clone() Config {
	out := c
	if c.Header != nil {
		out.Header = c.Header.Clone()
	}
	if c.Query != nil {
		out.Query = make(url.Values, len(c.Query))
		for k, v := range c.Query {
			out.Query[k] = append([]string(nil), v...)
		}
	}
	return out
}

func (c Config) with(opts []Option) Config {
	out := c.clone()
	for _, opt := range opts {
		if opt != nil {
			opt(&out)
		}
	}
	return out
}
