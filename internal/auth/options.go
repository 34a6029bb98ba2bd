package auth

import "time"

// Option configures the token and OTP components.
type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock overrides the time source used for issuing and checking expiry.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

func applyOptions(opts []Option) options {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
