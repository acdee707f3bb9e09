package trafficcast

import (
	"time"

	"github.com/aouyang1/go-trafficcast/window"
)

// DefaultNowRounding is the granularity now and the ETA are rounded to before projecting
const DefaultNowRounding = time.Minute

// Options configures a projection
type Options struct {
	WindowPolicy window.Policy `json:"window_policy"`
	NowRounding  time.Duration `json:"now_rounding"`
}

// NewDefaultOptions returns a 2h lookback, 2h past the ETA, and minute rounding of now
func NewDefaultOptions() *Options {
	return &Options{
		WindowPolicy: window.NewDefaultPolicy(),
		NowRounding:  DefaultNowRounding,
	}
}
