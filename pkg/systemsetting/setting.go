// Package systemsetting is a uniform facade over device system settings:
// screen brightness, volume, and the wifi, bluetooth, airplane and location
// toggles. The actual work is done by a Provider; the facade normalizes the
// differences between provider variants, keeps a save/restore snapshot of
// the brightness, and bridges the provider's change events into listener
// subscriptions.
package systemsetting

import (
	"context"
	"log/slog"
	"sync"

	"github.com/hoppxi/sysset/pkg/events"
)

// BrightnessUnset is the saved brightness before SaveBrightness has run.
const BrightnessUnset = -1.0

const appStoreWarning = "SetAppStore(isAppStore bool) must be called explicitly: true for an app-store build, false otherwise"

// Option configures a Setting.
type Option func(*Setting)

// WithLogger sets the logger used for developer warnings.
func WithLogger(l *slog.Logger) Option {
	return func(s *Setting) {
		if l != nil {
			s.log = l
		}
	}
}

// WithAppStore declares the distribution-channel flag up front.
func WithAppStore(isAppStore bool) Option {
	return func(s *Setting) {
		s.appStore = &isAppStore
	}
}

// Setting is the settings facade. Create one per process with New.
type Setting struct {
	provider Provider
	bus      *events.Bus
	caps     Capabilities
	log      *slog.Logger

	mu              sync.Mutex
	savedBrightness float64
	savedMode       ScreenMode
	appStore        *bool
	appStoreWarned  bool
	// issued holds one channel per switch request still running in the
	// provider.
	issued map[chan struct{}]struct{}
}

// New returns a facade over p. Change events are expected on bus; a nil bus
// gets a private one.
func New(p Provider, bus *events.Bus, opts ...Option) *Setting {
	if bus == nil {
		bus = events.NewBus()
	}
	s := &Setting{
		provider:        p,
		bus:             bus,
		caps:            p.Capabilities(),
		log:             slog.Default(),
		savedBrightness: BrightnessUnset,
		savedMode:       ScreenModeAutomatic,
		issued:          make(map[chan struct{}]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Capabilities returns the capabilities of the underlying provider.
func (s *Setting) Capabilities() Capabilities {
	return s.caps
}

// Bus returns the event stream the facade listens on.
func (s *Setting) Bus() *events.Bus {
	return s.bus
}

// SetAppStore declares whether this is an app-store build, which forbids
// automatic radio toggling on gated platforms.
func (s *Setting) SetAppStore(isAppStore bool) {
	s.mu.Lock()
	s.appStore = &isAppStore
	s.mu.Unlock()
}

// AppStore returns the declared flag and whether it was declared at all.
func (s *Setting) AppStore() (isAppStore, declared bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.appStore == nil {
		return false, false
	}
	return *s.appStore, true
}

// GetBrightness returns the system brightness in 0..1.
func (s *Setting) GetBrightness(ctx context.Context) (float64, error) {
	return s.provider.GetBrightness(ctx)
}

// SetBrightness sets the system brightness and reports whether the provider
// accepted it. A missing write permission shows up as false.
func (s *Setting) SetBrightness(ctx context.Context, val float64) bool {
	if err := s.provider.SetBrightness(ctx, val); err != nil {
		s.log.Debug("set brightness rejected", "value", val, "err", err)
		return false
	}
	return true
}

// SetBrightnessForce switches the screen mode to manual before setting the
// brightness, since automatic mode ignores direct writes. If the mode
// cannot be switched the brightness is left alone.
func (s *Setting) SetBrightnessForce(ctx context.Context, val float64) bool {
	if s.caps.ScreenMode {
		if !s.SetScreenMode(ctx, ScreenModeManual) {
			return false
		}
	}
	return s.SetBrightness(ctx, val)
}

// SetAppBrightness sets a brightness for this application only. Platforms
// without that concept set the system brightness instead. It always reports
// true; failures are only logged.
func (s *Setting) SetAppBrightness(ctx context.Context, val float64) bool {
	if !s.caps.AppBrightness {
		s.SetBrightness(ctx, val)
		return true
	}
	if err := s.provider.SetAppBrightness(ctx, val); err != nil {
		s.log.Debug("set app brightness failed", "value", val, "err", err)
	}
	return true
}

// GetAppBrightness returns the application brightness, or the system
// brightness on platforms without one.
func (s *Setting) GetAppBrightness(ctx context.Context) (float64, error) {
	if !s.caps.AppBrightness {
		return s.GetBrightness(ctx)
	}
	return s.provider.GetAppBrightness(ctx)
}

// GrantWriteSettingPermission shows the platform's write-settings prompt
// where there is one. Check the outcome with a later SetBrightness.
func (s *Setting) GrantWriteSettingPermission(ctx context.Context) {
	if !s.caps.WriteSettingPrompt {
		return
	}
	if err := s.provider.OpenWriteSetting(ctx); err != nil {
		s.log.Warn("cannot open write setting", "err", err)
	}
}

// GetScreenMode returns the screen-brightness mode, ScreenModeUnknown on
// platforms without one.
func (s *Setting) GetScreenMode(ctx context.Context) (ScreenMode, error) {
	if !s.caps.ScreenMode {
		return ScreenModeUnknown, nil
	}
	return s.provider.GetScreenMode(ctx)
}

// SetScreenMode sets the screen-brightness mode and reports success.
func (s *Setting) SetScreenMode(ctx context.Context, mode ScreenMode) bool {
	if !s.caps.ScreenMode {
		return true
	}
	if err := s.provider.SetScreenMode(ctx, mode); err != nil {
		s.log.Debug("set screen mode rejected", "mode", mode, "err", err)
		return false
	}
	return true
}

// SaveBrightness captures the current brightness and screen mode for a
// later RestoreBrightness.
func (s *Setting) SaveBrightness(ctx context.Context) error {
	val, err := s.GetBrightness(ctx)
	if err != nil {
		return err
	}
	mode, err := s.GetScreenMode(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.savedBrightness = val
	s.savedMode = mode
	s.mu.Unlock()
	return nil
}

// RestoreBrightness re-applies the saved brightness and screen mode without
// waiting for them to take effect, and returns the brightness applied. If
// nothing was saved it warns and returns BrightnessUnset.
func (s *Setting) RestoreBrightness(ctx context.Context) float64 {
	s.mu.Lock()
	val, mode := s.savedBrightness, s.savedMode
	s.mu.Unlock()

	if val == BrightnessUnset {
		s.log.Warn("SaveBrightness() should be called at least once before RestoreBrightness()")
		return val
	}

	bg := context.WithoutCancel(ctx)
	go func() {
		s.SetBrightness(bg, val)
		s.SetScreenMode(bg, mode)
	}()
	return val
}
