package session

import (
	"github.com/sirupsen/logrus"

	"github.com/dshills/geostorm/internal/config"
	"github.com/dshills/geostorm/internal/event"
)

// Option configures a Session during creation.
type Option func(*Session)

// WithConfig replaces the default configuration.
func WithConfig(cfg config.Config) Option {
	return func(s *Session) {
		s.cfg = cfg
	}
}

// WithBus shares an existing event bus instead of creating one.
func WithBus(bus *event.Bus) Option {
	return func(s *Session) {
		if bus != nil {
			s.bus = bus
		}
	}
}

// WithLogger routes session logging through the given logger.
func WithLogger(log *logrus.Logger) Option {
	return func(s *Session) {
		if log != nil {
			s.log = log.WithField("component", "session")
		}
	}
}

// WithPixelSize sets the initial map-units-per-pixel scale.
func WithPixelSize(unitsPerPixel float64) Option {
	return func(s *Session) {
		if unitsPerPixel > 0 {
			s.pixelSize = unitsPerPixel
		}
	}
}
