// Package mock provides an in-memory settings provider for tests and for
// running the CLI without touching the host.
package mock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hoppxi/sysset/pkg/events"
	"github.com/hoppxi/sysset/pkg/systemsetting"
)

// Op names a provider operation for failure injection and call recording.
type Op string

const (
	OpGetBrightness          Op = "GetBrightness"
	OpSetBrightness          Op = "SetBrightness"
	OpGetAppBrightness       Op = "GetAppBrightness"
	OpSetAppBrightness       Op = "SetAppBrightness"
	OpOpenWriteSetting       Op = "OpenWriteSetting"
	OpGetScreenMode          Op = "GetScreenMode"
	OpSetScreenMode          Op = "SetScreenMode"
	OpGetVolume              Op = "GetVolume"
	OpSetVolume              Op = "SetVolume"
	OpIsWifiEnabled          Op = "IsWifiEnabled"
	OpSwitchWifi             Op = "SwitchWifi"
	OpSwitchWifiSilence      Op = "SwitchWifiSilence"
	OpIsLocationEnabled      Op = "IsLocationEnabled"
	OpSwitchLocation         Op = "SwitchLocation"
	OpIsBluetoothEnabled     Op = "IsBluetoothEnabled"
	OpSwitchBluetooth        Op = "SwitchBluetooth"
	OpSwitchBluetoothSilence Op = "SwitchBluetoothSilence"
	OpIsAirplaneEnabled      Op = "IsAirplaneEnabled"
	OpSwitchAirplane         Op = "SwitchAirplane"
	OpActiveListener         Op = "ActiveListener"
)

// Call is one recorded provider call.
type Call struct {
	Op   Op
	Args []any
	// Mode is the screen mode at the time of the call.
	Mode systemsetting.ScreenMode
}

// Provider is a thread-safe in-memory systemsetting.Provider.
type Provider struct {
	mu   sync.Mutex
	bus  *events.Bus
	caps systemsetting.Capabilities

	brightness    float64
	appBrightness float64
	mode          systemsetting.ScreenMode
	volumes       map[systemsetting.VolumeType]float64
	wifi          int
	location      bool
	bluetooth     bool
	airplane      bool

	fail        map[Op]error
	delay       map[Op]time.Duration
	calls       []Call
	active      map[string]bool
	autoPublish bool
}

// New creates a mock with the given capabilities. Changes are published on
// bus when auto-publish is on.
func New(bus *events.Bus, caps systemsetting.Capabilities) *Provider {
	if caps.Platform == "" {
		caps.Platform = "mock"
	}
	return &Provider{
		bus:           bus,
		caps:          caps,
		brightness:    0.5,
		appBrightness: 0.5,
		mode:          systemsetting.ScreenModeAutomatic,
		volumes: map[systemsetting.VolumeType]float64{
			systemsetting.VolumeMusic: 0.5,
		},
		wifi:   1,
		fail:   make(map[Op]error),
		delay:  make(map[Op]time.Duration),
		active: make(map[string]bool),
	}
}

// SetFail makes op return err. A nil err clears the failure.
func (m *Provider) SetFail(op Op, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.fail, op)
		return
	}
	m.fail[op] = err
}

// SetDelay makes the switch op block for d before it applies, as a
// provider waiting on a confirmation dialog would. Zero clears it.
func (m *Provider) SetDelay(op Op, d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if d <= 0 {
		delete(m.delay, op)
		return
	}
	m.delay[op] = d
}

// SetAutoPublish makes switches publish their change topic, or the
// foreground topic for providers without change notifications.
func (m *Provider) SetAutoPublish(on bool) {
	m.mu.Lock()
	m.autoPublish = on
	m.mu.Unlock()
}

// SetWifiState sets the raw wifi state returned by IsWifiEnabled.
func (m *Provider) SetWifiState(state int) {
	m.mu.Lock()
	m.wifi = state
	m.mu.Unlock()
}

// SetState seeds the brightness and screen mode.
func (m *Provider) SetState(brightness float64, mode systemsetting.ScreenMode) {
	m.mu.Lock()
	m.brightness = brightness
	m.mode = mode
	m.mu.Unlock()
}

// State returns the current brightness and screen mode.
func (m *Provider) State() (float64, systemsetting.ScreenMode) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.brightness, m.mode
}

// Volume returns the stored level of a channel.
func (m *Provider) Volume(typ systemsetting.VolumeType) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.volumes[typ]
}

// Calls returns a copy of the recorded calls.
func (m *Provider) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Call, len(m.calls))
	copy(out, m.calls)
	return out
}

// CallCount returns how many times op was called.
func (m *Provider) CallCount(op Op) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.calls {
		if c.Op == op {
			n++
		}
	}
	return n
}

// Active reports whether ActiveListener succeeded for name.
func (m *Provider) Active(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active[name]
}

// record logs the call and returns the injected failure for op, if any.
// Callers hold m.mu.
func (m *Provider) record(op Op, args ...any) error {
	m.calls = append(m.calls, Call{Op: op, Args: args, Mode: m.mode})
	return m.fail[op]
}

func (m *Provider) Capabilities() systemsetting.Capabilities {
	return m.caps
}

func (m *Provider) GetBrightness(ctx context.Context) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record(OpGetBrightness); err != nil {
		return 0, err
	}
	return m.brightness, nil
}

func (m *Provider) SetBrightness(ctx context.Context, val float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record(OpSetBrightness, val); err != nil {
		return err
	}
	m.brightness = val
	return nil
}

func (m *Provider) GetAppBrightness(ctx context.Context) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record(OpGetAppBrightness); err != nil {
		return 0, err
	}
	if !m.caps.AppBrightness {
		return 0, systemsetting.ErrUnsupported
	}
	return m.appBrightness, nil
}

func (m *Provider) SetAppBrightness(ctx context.Context, val float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record(OpSetAppBrightness, val); err != nil {
		return err
	}
	if !m.caps.AppBrightness {
		return systemsetting.ErrUnsupported
	}
	m.appBrightness = val
	return nil
}

func (m *Provider) OpenWriteSetting(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.record(OpOpenWriteSetting)
}

func (m *Provider) GetScreenMode(ctx context.Context) (systemsetting.ScreenMode, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record(OpGetScreenMode); err != nil {
		return systemsetting.ScreenModeUnknown, err
	}
	if !m.caps.ScreenMode {
		return systemsetting.ScreenModeUnknown, systemsetting.ErrUnsupported
	}
	return m.mode, nil
}

func (m *Provider) SetScreenMode(ctx context.Context, mode systemsetting.ScreenMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record(OpSetScreenMode, mode); err != nil {
		return err
	}
	if !m.caps.ScreenMode {
		return systemsetting.ErrUnsupported
	}
	m.mode = mode
	return nil
}

func (m *Provider) GetVolume(ctx context.Context, typ systemsetting.VolumeType) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record(OpGetVolume, typ); err != nil {
		return 0, err
	}
	v, ok := m.volumes[typ]
	if !ok {
		return 0, fmt.Errorf("unknown volume type %q", typ)
	}
	return v, nil
}

func (m *Provider) SetVolume(ctx context.Context, val float64, cfg systemsetting.VolumeConfig) error {
	m.mu.Lock()
	if err := m.record(OpSetVolume, val, cfg); err != nil {
		m.mu.Unlock()
		return err
	}
	m.volumes[cfg.Type] = val
	publish := m.autoPublish
	m.mu.Unlock()

	if publish && m.bus != nil {
		m.bus.Publish(events.TopicVolume, val)
	}
	return nil
}

func (m *Provider) IsWifiEnabled(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record(OpIsWifiEnabled); err != nil {
		return 0, err
	}
	return m.wifi, nil
}

func (m *Provider) IsLocationEnabled(ctx context.Context) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record(OpIsLocationEnabled); err != nil {
		return false, err
	}
	return m.location, nil
}

func (m *Provider) IsBluetoothEnabled(ctx context.Context) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record(OpIsBluetoothEnabled); err != nil {
		return false, err
	}
	return m.bluetooth, nil
}

func (m *Provider) IsAirplaneEnabled(ctx context.Context) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record(OpIsAirplaneEnabled); err != nil {
		return false, err
	}
	return m.airplane, nil
}

func (m *Provider) SwitchWifi(ctx context.Context) error {
	return m.flip(ctx, OpSwitchWifi, events.TopicWifi, func() any {
		if m.wifi > 0 {
			m.wifi = 0
		} else {
			m.wifi = 1
		}
		return m.wifi > 0
	})
}

func (m *Provider) SwitchWifiSilence(ctx context.Context) error {
	if !m.caps.SilentToggle {
		return systemsetting.ErrUnsupported
	}
	return m.flip(ctx, OpSwitchWifiSilence, events.TopicWifi, func() any {
		if m.wifi > 0 {
			m.wifi = 0
		} else {
			m.wifi = 1
		}
		return m.wifi > 0
	})
}

func (m *Provider) SwitchLocation(ctx context.Context) error {
	return m.flip(ctx, OpSwitchLocation, events.TopicLocation, func() any {
		m.location = !m.location
		return m.location
	})
}

func (m *Provider) SwitchBluetooth(ctx context.Context) error {
	return m.flip(ctx, OpSwitchBluetooth, events.TopicBluetooth, func() any {
		m.bluetooth = !m.bluetooth
		return m.bluetooth
	})
}

func (m *Provider) SwitchBluetoothSilence(ctx context.Context) error {
	if !m.caps.SilentToggle {
		return systemsetting.ErrUnsupported
	}
	return m.flip(ctx, OpSwitchBluetoothSilence, events.TopicBluetooth, func() any {
		m.bluetooth = !m.bluetooth
		return m.bluetooth
	})
}

func (m *Provider) SwitchAirplane(ctx context.Context) error {
	return m.flip(ctx, OpSwitchAirplane, events.TopicAirplane, func() any {
		m.airplane = !m.airplane
		return m.airplane
	})
}

// flip waits out any configured delay, records op and applies the state
// change. With auto-publish on, it publishes the outcome outside the lock.
func (m *Provider) flip(ctx context.Context, op Op, topic events.Topic, apply func() any) error {
	m.mu.Lock()
	d := m.delay[op]
	m.mu.Unlock()
	if d > 0 {
		select {
		case <-time.After(d):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	m.mu.Lock()
	if err := m.record(op); err != nil {
		m.mu.Unlock()
		return err
	}
	value := apply()
	publish := m.autoPublish
	if !m.caps.ChangeNotifications {
		topic = events.TopicForeground
		value = nil
	}
	m.mu.Unlock()

	if publish && m.bus != nil {
		m.bus.Publish(topic, value)
	}
	return nil
}

func (m *Provider) ActiveListener(ctx context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record(OpActiveListener, name); err != nil {
		return err
	}
	m.active[name] = true
	return nil
}
