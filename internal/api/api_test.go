package api_test

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/hoppxi/sysset/internal/api"
	"github.com/hoppxi/sysset/pkg/events"
	"github.com/hoppxi/sysset/pkg/provider"
	"github.com/hoppxi/sysset/pkg/provider/mock"
	"github.com/hoppxi/sysset/pkg/systemsetting"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	*httptest.Server
	mock *mock.Provider
	bus  *events.Bus
}

// newTestServer spins up a full router over a facade backed by a mock.
func newTestServer(t *testing.T, caps systemsetting.Capabilities) *testServer {
	t.Helper()

	bus := events.NewBus()
	m := mock.New(bus, caps)
	s := systemsetting.New(m, bus)

	srv := httptest.NewServer(api.NewRouter(s, nil))
	t.Cleanup(srv.Close)
	return &testServer{Server: srv, mock: m, bus: bus}
}

// do is a convenience helper for making requests to the test server.
func (ts *testServer) do(t *testing.T, method, path, body string) *http.Response {
	t.Helper()
	var bodyReader io.Reader
	if body != "" {
		bodyReader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, ts.URL+path, bodyReader)
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func TestCapabilities(t *testing.T) {
	ts := newTestServer(t, provider.SandboxedCapabilities)

	resp := ts.do(t, http.MethodGet, "/api/capabilities", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var caps systemsetting.Capabilities
	decode(t, resp, &caps)
	assert.Equal(t, provider.SandboxedCapabilities, caps)
}

func TestBrightness(t *testing.T) {
	ts := newTestServer(t, provider.NativeCapabilities)

	resp := ts.do(t, http.MethodPut, "/api/brightness", `{"value":0.3,"force":true}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var ok struct{ OK bool }
	decode(t, resp, &ok)
	assert.True(t, ok.OK)

	v, mode := ts.mock.State()
	assert.InDelta(t, 0.3, v, 1e-9)
	assert.Equal(t, systemsetting.ScreenModeManual, mode)

	resp = ts.do(t, http.MethodGet, "/api/brightness", "")
	var got struct{ Value float64 }
	decode(t, resp, &got)
	assert.InDelta(t, 0.3, got.Value, 1e-9)
}

func TestBrightnessValidation(t *testing.T) {
	ts := newTestServer(t, provider.NativeCapabilities)

	resp := ts.do(t, http.MethodPut, "/api/brightness", `{not json`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	resp = ts.do(t, http.MethodPut, "/api/brightness", `{"force":true}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestBrightnessProviderFailure(t *testing.T) {
	ts := newTestServer(t, provider.NativeCapabilities)
	ts.mock.SetFail(mock.OpGetBrightness, errors.New("no backlight"))

	resp := ts.do(t, http.MethodGet, "/api/brightness", "")
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	resp.Body.Close()
}

func TestRestoreWithoutSave(t *testing.T) {
	ts := newTestServer(t, provider.NativeCapabilities)

	resp := ts.do(t, http.MethodPost, "/api/brightness/restore", "")
	var got struct{ Value float64 }
	decode(t, resp, &got)
	assert.Equal(t, systemsetting.BrightnessUnset, got.Value)
	assert.Zero(t, ts.mock.CallCount(mock.OpSetBrightness))
}

func TestSaveRestore(t *testing.T) {
	ts := newTestServer(t, provider.NativeCapabilities)
	ts.mock.SetState(0.7, systemsetting.ScreenModeManual)

	resp := ts.do(t, http.MethodPost, "/api/brightness/save", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	ts.mock.SetState(0.1, systemsetting.ScreenModeAutomatic)

	resp = ts.do(t, http.MethodPost, "/api/brightness/restore", "")
	var got struct{ Value float64 }
	decode(t, resp, &got)
	assert.InDelta(t, 0.7, got.Value, 1e-9)

	require.Eventually(t, func() bool {
		v, mode := ts.mock.State()
		return v == 0.7 && mode == systemsetting.ScreenModeManual
	}, time.Second, 5*time.Millisecond)
}

func TestScreenMode(t *testing.T) {
	ts := newTestServer(t, provider.NativeCapabilities)

	resp := ts.do(t, http.MethodPut, "/api/screen-mode", `{"mode":"manual"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = ts.do(t, http.MethodGet, "/api/screen-mode", "")
	var got struct{ Mode string }
	decode(t, resp, &got)
	assert.Equal(t, "manual", got.Mode)

	resp = ts.do(t, http.MethodPut, "/api/screen-mode", `{"mode":"dim"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestVolume(t *testing.T) {
	ts := newTestServer(t, provider.NativeCapabilities)

	resp := ts.do(t, http.MethodPut, "/api/volume", `{"value":0.8,"type":"alarm","showUI":true}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
	assert.InDelta(t, 0.8, ts.mock.Volume(systemsetting.VolumeAlarm), 1e-9)

	resp = ts.do(t, http.MethodGet, "/api/volume?type=alarm", "")
	var got struct{ Value float64 }
	decode(t, resp, &got)
	assert.InDelta(t, 0.8, got.Value, 1e-9)

	// No type means music.
	resp = ts.do(t, http.MethodGet, "/api/volume", "")
	decode(t, resp, &got)
	assert.InDelta(t, 0.5, got.Value, 1e-9)
}

func TestToggleState(t *testing.T) {
	ts := newTestServer(t, provider.NativeCapabilities)
	ts.mock.SetWifiState(-1)

	resp := ts.do(t, http.MethodGet, "/api/wifi", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var got struct{ Enabled bool }
	decode(t, resp, &got)
	assert.False(t, got.Enabled)

	resp = ts.do(t, http.MethodGet, "/api/teleporter", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestSwitchWaitsForCompletion(t *testing.T) {
	ts := newTestServer(t, provider.NativeCapabilities)
	ts.mock.SetAutoPublish(true)

	resp := ts.do(t, http.MethodPost, "/api/bluetooth/switch?wait=2s", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var got struct{ Completed bool }
	decode(t, resp, &got)
	assert.True(t, got.Completed)
	assert.Equal(t, 1, ts.mock.CallCount(mock.OpSwitchBluetooth))
}

func TestSwitchWithoutWaitIsAccepted(t *testing.T) {
	ts := newTestServer(t, provider.NativeCapabilities)

	resp := ts.do(t, http.MethodPost, "/api/wifi/switch?silent=true", "")
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
	resp.Body.Close()

	require.Eventually(t, func() bool {
		return ts.mock.CallCount(mock.OpSwitchWifiSilence) == 1
	}, time.Second, 5*time.Millisecond)
}

func TestSwitchRejectsBadInput(t *testing.T) {
	ts := newTestServer(t, provider.NativeCapabilities)

	resp := ts.do(t, http.MethodPost, "/api/location/switch?silent=1", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	resp = ts.do(t, http.MethodPost, "/api/wifi/switch?wait=soon", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestAppStoreGatesSandboxedSwitch(t *testing.T) {
	ts := newTestServer(t, provider.SandboxedCapabilities)

	resp := ts.do(t, http.MethodPut, "/api/app-store", `{"value":true}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = ts.do(t, http.MethodPost, "/api/airplane/switch?wait=1s", "")
	var got struct{ Completed bool }
	decode(t, resp, &got)
	assert.True(t, got.Completed)
	assert.Zero(t, ts.mock.CallCount(mock.OpSwitchAirplane))
}

func TestSSEStream(t *testing.T) {
	ts := newTestServer(t, provider.NativeCapabilities)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/api/subscribe?topic=volume-changed", nil)
	require.NoError(t, err)

	client := &http.Client{Transport: &http.Transport{DisableCompression: true}}
	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.HasPrefix(resp.Header.Get("Content-Type"), "text/event-stream"))

	lines := make(chan string, 16)
	go func() {
		scanner := bufio.NewScanner(resp.Body)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		close(lines)
	}()

	next := func() string {
		select {
		case l, ok := <-lines:
			require.True(t, ok, "stream closed")
			return l
		case <-time.After(2 * time.Second):
			t.Fatal("timed out reading SSE stream")
			return ""
		}
	}

	assert.Equal(t, "event: hello", next())
	assert.True(t, strings.HasPrefix(next(), "data: "))
	assert.Equal(t, "", next())

	// The hello event is written after the subscription is in place.
	ts.bus.Publish(events.TopicVolume, 0.25)
	assert.Equal(t, "event: volume-changed", next())

	var e events.Event
	require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(next(), "data: ")), &e))
	assert.Equal(t, events.TopicVolume, e.Topic)
	assert.InDelta(t, 0.25, e.Value, 1e-9)
}
