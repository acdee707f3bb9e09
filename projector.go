package trafficcast

import (
	"sync"
	"time"
)

type cacheKey struct {
	airport         string
	baselineVersion uint64
	forecastVersion uint64
	now             int64
	eta             int64
}

// Projector remembers the last projection it computed and returns it again while the input
// versions and the rounded now and ETA are unchanged. The cache only saves work; a miss
// always recomputes. Safe for concurrent use.
type Projector struct {
	opt *Options

	mu      sync.Mutex
	lastKey cacheKey
	last    *Projection
	hits    uint64
}

// New creates a Projector using the provided options. If no options are provided a default
// is used.
func New(opt *Options) *Projector {
	if opt == nil {
		opt = NewDefaultOptions()
	}
	return &Projector{opt: opt}
}

func (p *Projector) key(in Input, now, eta time.Time) cacheKey {
	k := cacheKey{
		baselineVersion: in.BaselineVersion,
		forecastVersion: in.ForecastVersion,
	}
	if in.Clock != nil {
		k.airport = in.Clock.Airport
	}
	rounding := p.opt.NowRounding
	if rounding <= 0 {
		rounding = time.Nanosecond
	}
	k.now = now.Round(rounding).UnixNano()
	k.eta = eta.Round(rounding).UnixNano()
	return k
}

// Project returns the projection for the inputs, reusing the previous result when nothing it
// depends on has changed. The returned projection is shared and must be treated as read-only.
func (p *Projector) Project(in Input, now, eta time.Time) *Projection {
	k := p.key(in, now, eta)

	p.mu.Lock()
	if p.last != nil && p.lastKey == k {
		p.hits++
		res := p.last
		p.mu.Unlock()
		return res
	}
	p.mu.Unlock()

	res := Project(in, now, eta, p.opt)

	p.mu.Lock()
	p.lastKey = k
	p.last = res
	p.mu.Unlock()
	return res
}

// Hits returns how many projections were served from the cache
func (p *Projector) Hits() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.hits
}

// Reset drops the remembered projection
func (p *Projector) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.last = nil
	p.lastKey = cacheKey{}
}
