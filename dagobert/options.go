package dagobert

import "github.com/luchiniatwork/dag-o-bert/dagobert/observe"

// Option configures a single Run/RunSync call.
type Option func(*runConfig)

type runConfig struct {
	observer observe.Observer
}

// WithObserver attaches an Observer that receives a Record for every
// node once it finishes executing. The default, if no observer is
// supplied, is observe.Null{} — dispatch is a no-op.
func WithObserver(o observe.Observer) Option {
	return func(c *runConfig) {
		c.observer = o
	}
}

func buildConfig(opts []Option) *runConfig {
	cfg := &runConfig{observer: observe.Null{}}
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}
	return cfg
}
