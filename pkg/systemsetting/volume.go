package systemsetting

import (
	"context"

	"github.com/hoppxi/sysset/pkg/events"
)

// GetVolume returns the level of the given channel in 0..1. An empty type
// means VolumeMusic.
func (s *Setting) GetVolume(ctx context.Context, typ VolumeType) (float64, error) {
	if typ == "" {
		typ = VolumeMusic
	}
	return s.provider.GetVolume(ctx, typ)
}

// SetVolume sets a channel level. Unset options take their defaults.
func (s *Setting) SetVolume(ctx context.Context, val float64, cfg VolumeConfig) bool {
	cfg = cfg.withDefaults()
	if err := s.provider.SetVolume(ctx, val, cfg); err != nil {
		s.log.Debug("set volume rejected", "value", val, "type", cfg.Type, "err", err)
		return false
	}
	return true
}

// SetVolumeType sets the level of a single channel.
//
// Deprecated: use SetVolume with a VolumeConfig.
func (s *Setting) SetVolumeType(ctx context.Context, val float64, typ VolumeType) bool {
	s.log.Warn("SetVolumeType(val, type) is deprecated, use SetVolume(val, VolumeConfig) instead", "deprecated", true)
	return s.SetVolume(ctx, val, VolumeConfig{Type: typ})
}

// AddVolumeListener calls h with every volume change.
func (s *Setting) AddVolumeListener(h events.Handler) *events.Subscription {
	return s.bus.Subscribe(events.TopicVolume, h)
}

// RemoveVolumeListener releases a subscription from AddVolumeListener.
// A nil subscription is ignored.
func (s *Setting) RemoveVolumeListener(sub *events.Subscription) {
	sub.Remove()
}
