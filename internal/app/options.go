package app

type options struct {
	clock Clock
}

type Option func(*options)

func WithClock(clock Clock) Option {
	return func(o *options) {
		o.clock = clock
	}
}

func buildOptions(opts []Option) options {
	o := options{clock: systemClock}
	for _, opt := range opts {
		opt(&o)
	}

	return o
}
