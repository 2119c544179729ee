package model

import "strings"

// Context carries the configuration snapshot used to serve one request.
type Context struct {
	Config  *ScannerConfig
	Options Options
}

func NewContext(c *ScannerConfig, o Options) *Context {
	if c == nil {
		c = DefaultConfig()
	}
	return &Context{
		Config:  c,
		Options: o,
	}
}

// APIKey returns the persisted key, falling back to the one from static config.
func (c *Context) APIKey() string {
	if key := strings.TrimSpace(c.Options.GrocyAPIKey); key != "" {
		return key
	}
	return strings.TrimSpace(c.Config.Grocy.APIKey)
}

// KnownBaseURL returns the persisted resolved url, else the static override, else "".
func (c *Context) KnownBaseURL() string {
	if u := strings.TrimSpace(c.Options.ResolvedGrocyURL); u != "" {
		return strings.TrimRight(u, "/")
	}
	return strings.TrimRight(strings.TrimSpace(c.Config.Grocy.URL), "/")
}
