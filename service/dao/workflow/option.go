package workflow

import "github.com/viant/waypoint/service/meta"

type Option func(*Service)

// WithMetaService sets the meta service
func WithMetaService(meta *meta.Service) Option {
	return func(s *Service) {
		s.metaService = meta
	}
}

// WithCache toggles caching of loaded workflows by URL
func WithCache(enabled bool) Option {
	return func(s *Service) {
		s.cacheEnabled = enabled
	}
}
