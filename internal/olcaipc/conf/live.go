package conf

import (
	"sync/atomic"
	"time"
)

// Live serves the getters of the most recently stored Config, so a reloaded
// file takes effect for requests that start after the swap.
type Live struct {
	p atomic.Pointer[Config]
}

func NewLive(c *Config) *Live {
	l := &Live{}
	l.Store(c)
	return l
}

func (l *Live) Store(c *Config) {
	l.p.Store(c)
}

func (l *Live) Load() *Config {
	return l.p.Load()
}

func (l *Live) GetHTTPAddr() string            { return l.Load().GetHTTPAddr() }
func (l *Live) GetProductSystem() string       { return l.Load().GetProductSystem() }
func (l *Live) GetImpactMethod() string        { return l.Load().GetImpactMethod() }
func (l *Live) GetImpactFilter() string        { return l.Load().GetImpactFilter() }
func (l *Live) GetPollInterval() time.Duration { return l.Load().GetPollInterval() }
