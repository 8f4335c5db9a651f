package registry

import "golang.org/x/crypto/bcrypt"

type settings struct {
	hashCost int
}

// Option configures a registry implementation.
type Option func(*settings)

// WithHashCost overrides the bcrypt cost used for client secrets.
func WithHashCost(cost int) Option {
	return func(s *settings) {
		s.hashCost = cost
	}
}

func newSettings(opts []Option) settings {
	s := settings{hashCost: bcrypt.DefaultCost}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}
