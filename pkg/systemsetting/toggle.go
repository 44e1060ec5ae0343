package systemsetting

import (
	"context"

	"github.com/hoppxi/sysset/pkg/events"
)

// IsWifiEnabled reports whether wifi is on. The provider's numeric state
// counts as on only when strictly positive.
func (s *Setting) IsWifiEnabled(ctx context.Context) (bool, error) {
	state, err := s.provider.IsWifiEnabled(ctx)
	if err != nil {
		return false, err
	}
	return state > 0, nil
}

// IsLocationEnabled reports whether location services are on.
func (s *Setting) IsLocationEnabled(ctx context.Context) (bool, error) {
	return s.provider.IsLocationEnabled(ctx)
}

// IsBluetoothEnabled reports whether the bluetooth radio is on.
func (s *Setting) IsBluetoothEnabled(ctx context.Context) (bool, error) {
	return s.provider.IsBluetoothEnabled(ctx)
}

// IsAirplaneEnabled reports whether airplane mode is on.
func (s *Setting) IsAirplaneEnabled(ctx context.Context) (bool, error) {
	return s.provider.IsAirplaneEnabled(ctx)
}

// SwitchWifi asks the platform to toggle wifi. complete, which may be nil,
// runs once the change is observed; the returned channel is closed at the
// same moment. If the change is never observed neither happens.
func (s *Setting) SwitchWifi(ctx context.Context, complete func()) <-chan struct{} {
	return s.toggle(ctx, events.TopicWifi, true, s.provider.SwitchWifi, complete)
}

// SwitchWifiSilence toggles wifi without a confirmation UI where the
// platform allows it, and falls back to SwitchWifi elsewhere.
func (s *Setting) SwitchWifiSilence(ctx context.Context, complete func()) <-chan struct{} {
	if !s.caps.SilentToggle {
		return s.SwitchWifi(ctx, complete)
	}
	return s.toggle(ctx, events.TopicWifi, false, s.provider.SwitchWifiSilence, complete)
}

// SwitchLocation asks the platform to toggle location services.
func (s *Setting) SwitchLocation(ctx context.Context, complete func()) <-chan struct{} {
	return s.toggle(ctx, events.TopicLocation, true, s.provider.SwitchLocation, complete)
}

// SwitchBluetooth asks the platform to toggle the bluetooth radio.
func (s *Setting) SwitchBluetooth(ctx context.Context, complete func()) <-chan struct{} {
	return s.toggle(ctx, events.TopicBluetooth, true, s.provider.SwitchBluetooth, complete)
}

// SwitchBluetoothSilence toggles bluetooth without a confirmation UI where
// the platform allows it, and falls back to SwitchBluetooth elsewhere.
func (s *Setting) SwitchBluetoothSilence(ctx context.Context, complete func()) <-chan struct{} {
	if !s.caps.SilentToggle {
		return s.SwitchBluetooth(ctx, complete)
	}
	return s.toggle(ctx, events.TopicBluetooth, false, s.provider.SwitchBluetoothSilence, complete)
}

// SwitchAirplane asks the platform to toggle airplane mode.
func (s *Setting) SwitchAirplane(ctx context.Context, complete func()) <-chan struct{} {
	return s.toggle(ctx, events.TopicAirplane, true, s.provider.SwitchAirplane, complete)
}

// toggle runs one switch: gate check, arm the completion listener, then
// issue the request in the background. The listener is armed first so a
// change published while the request is still in flight is not missed.
func (s *Setting) toggle(ctx context.Context, topic events.Topic, gated bool, issue func(context.Context) error, complete func()) <-chan struct{} {
	if gated && s.switchingDenied() {
		done := make(chan struct{})
		if complete != nil {
			complete()
		}
		close(done)
		return done
	}

	done := s.listenEvent(topic, complete)

	issued := make(chan struct{})
	s.mu.Lock()
	s.issued[issued] = struct{}{}
	s.mu.Unlock()

	bg := context.WithoutCancel(ctx)
	go func() {
		defer func() {
			s.mu.Lock()
			delete(s.issued, issued)
			s.mu.Unlock()
			close(issued)
		}()
		if err := issue(bg); err != nil {
			s.log.Warn("switch request failed", "topic", topic, "err", err)
		}
	}()
	return done
}

// WaitIssued blocks until every switch request started so far has returned
// from the provider, or ctx is done. A returned request has been applied or
// has failed; its change event may still be on the way.
func (s *Setting) WaitIssued(ctx context.Context) error {
	s.mu.Lock()
	pending := make([]chan struct{}, 0, len(s.issued))
	for ch := range s.issued {
		pending = append(pending, ch)
	}
	s.mu.Unlock()

	for _, ch := range pending {
		select {
		case <-ch:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// switchingDenied is the app-store gate for confirming toggles.
func (s *Setting) switchingDenied() bool {
	if !s.caps.GatedToggles {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.appStore == nil {
		if !s.appStoreWarned {
			s.appStoreWarned = true
			s.log.Warn(appStoreWarning)
		}
		return false
	}
	return *s.appStore
}

// listenEvent runs complete on the next event of topic, or of the
// foreground topic when the provider publishes no change notifications.
func (s *Setting) listenEvent(topic events.Topic, complete func()) <-chan struct{} {
	if !s.caps.ChangeNotifications {
		topic = events.TopicForeground
	}

	done := make(chan struct{})
	s.bus.Once(topic, func(events.Event) {
		if complete != nil {
			complete()
		}
		close(done)
	})
	return done
}

func (s *Setting) activeListener(ctx context.Context, name string) bool {
	if err := s.provider.ActiveListener(ctx, name); err != nil {
		s.log.Warn("cannot activate listener", "listener", name, "err", err)
		return false
	}
	return true
}

// AddBluetoothListener starts bluetooth monitoring and calls h with every
// change. It returns nil if monitoring could not be started.
func (s *Setting) AddBluetoothListener(ctx context.Context, h events.Handler) *events.Subscription {
	if !s.activeListener(ctx, ListenerBluetooth) {
		return nil
	}
	return s.bus.Subscribe(events.TopicBluetooth, h)
}

// AddWifiListener starts wifi monitoring and calls h with every change. It
// returns nil on platforms that cannot monitor wifi or if monitoring could
// not be started.
func (s *Setting) AddWifiListener(ctx context.Context, h events.Handler) *events.Subscription {
	if !s.caps.WifiListener {
		return nil
	}
	if !s.activeListener(ctx, ListenerWifi) {
		return nil
	}
	return s.bus.Subscribe(events.TopicWifi, h)
}

// RemoveListener releases a listener subscription. A nil subscription is
// ignored.
func (s *Setting) RemoveListener(sub *events.Subscription) {
	sub.Remove()
}
