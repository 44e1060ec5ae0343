package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hoppxi/sysset/pkg/systemsetting"
)

type valueBody struct {
	Value float64 `json:"value"`
}

type okBody struct {
	OK bool `json:"ok"`
}

type enabledBody struct {
	Enabled bool `json:"enabled"`
}

func (h *Handlers) getCapabilities(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.setting.Capabilities())
}

func (h *Handlers) setAppStore(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Value bool `json:"value"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	h.setting.SetAppStore(req.Value)
	writeJSON(w, http.StatusOK, okBody{OK: true})
}

func (h *Handlers) getBrightness(w http.ResponseWriter, r *http.Request) {
	v, err := h.setting.GetBrightness(r.Context())
	if err != nil {
		writeError(w, http.StatusBadGateway, err)
		return
	}
	writeJSON(w, http.StatusOK, valueBody{Value: v})
}

func (h *Handlers) setBrightness(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Value *float64 `json:"value"`
		Force bool     `json:"force"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Value == nil {
		writeError(w, http.StatusBadRequest, errors.New("value is required"))
		return
	}

	var ok bool
	if req.Force {
		ok = h.setting.SetBrightnessForce(r.Context(), *req.Value)
	} else {
		ok = h.setting.SetBrightness(r.Context(), *req.Value)
	}
	writeJSON(w, http.StatusOK, okBody{OK: ok})
}

func (h *Handlers) saveBrightness(w http.ResponseWriter, r *http.Request) {
	if err := h.setting.SaveBrightness(r.Context()); err != nil {
		writeError(w, http.StatusBadGateway, err)
		return
	}
	writeJSON(w, http.StatusOK, okBody{OK: true})
}

func (h *Handlers) restoreBrightness(w http.ResponseWriter, r *http.Request) {
	// The re-apply outlives the request.
	v := h.setting.RestoreBrightness(context.WithoutCancel(r.Context()))
	writeJSON(w, http.StatusOK, valueBody{Value: v})
}

func (h *Handlers) getAppBrightness(w http.ResponseWriter, r *http.Request) {
	v, err := h.setting.GetAppBrightness(r.Context())
	if err != nil {
		writeError(w, http.StatusBadGateway, err)
		return
	}
	writeJSON(w, http.StatusOK, valueBody{Value: v})
}

func (h *Handlers) setAppBrightness(w http.ResponseWriter, r *http.Request) {
	var req valueBody
	if !decodeJSON(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, okBody{OK: h.setting.SetAppBrightness(r.Context(), req.Value)})
}

type modeBody struct {
	Mode string `json:"mode"`
}

func (h *Handlers) getScreenMode(w http.ResponseWriter, r *http.Request) {
	m, err := h.setting.GetScreenMode(r.Context())
	if err != nil {
		writeError(w, http.StatusBadGateway, err)
		return
	}
	writeJSON(w, http.StatusOK, modeBody{Mode: m.String()})
}

func (h *Handlers) setScreenMode(w http.ResponseWriter, r *http.Request) {
	var req modeBody
	if !decodeJSON(w, r, &req) {
		return
	}
	m, err := systemsetting.ParseScreenMode(req.Mode)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, okBody{OK: h.setting.SetScreenMode(r.Context(), m)})
}

func (h *Handlers) grantWriteSetting(w http.ResponseWriter, r *http.Request) {
	h.setting.GrantWriteSettingPermission(context.WithoutCancel(r.Context()))
	writeJSON(w, http.StatusAccepted, okBody{OK: true})
}

func (h *Handlers) getVolume(w http.ResponseWriter, r *http.Request) {
	typ := systemsetting.VolumeType(r.URL.Query().Get("type"))
	v, err := h.setting.GetVolume(r.Context(), typ)
	if err != nil {
		writeError(w, http.StatusBadGateway, err)
		return
	}
	writeJSON(w, http.StatusOK, valueBody{Value: v})
}

func (h *Handlers) setVolume(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Value *float64 `json:"value"`
		systemsetting.VolumeConfig
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Value == nil {
		writeError(w, http.StatusBadRequest, errors.New("value is required"))
		return
	}
	writeJSON(w, http.StatusOK, okBody{OK: h.setting.SetVolume(r.Context(), *req.Value, req.VolumeConfig)})
}

// toggle is one switchable setting as seen by the API.
type toggle struct {
	get    func(context.Context) (bool, error)
	flip   func(context.Context, func()) <-chan struct{}
	silent func(context.Context, func()) <-chan struct{}
}

func (h *Handlers) toggles() map[string]toggle {
	s := h.setting
	return map[string]toggle{
		"wifi":      {get: s.IsWifiEnabled, flip: s.SwitchWifi, silent: s.SwitchWifiSilence},
		"bluetooth": {get: s.IsBluetoothEnabled, flip: s.SwitchBluetooth, silent: s.SwitchBluetoothSilence},
		"location":  {get: s.IsLocationEnabled, flip: s.SwitchLocation},
		"airplane":  {get: s.IsAirplaneEnabled, flip: s.SwitchAirplane},
	}
}

func (h *Handlers) lookupToggle(w http.ResponseWriter, r *http.Request) (toggle, bool) {
	name := chi.URLParam(r, "setting")
	t, ok := h.toggles()[name]
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Errorf("unknown setting %q", name))
	}
	return t, ok
}

func (h *Handlers) getToggle(w http.ResponseWriter, r *http.Request) {
	t, ok := h.lookupToggle(w, r)
	if !ok {
		return
	}
	on, err := t.get(r.Context())
	if err != nil {
		writeError(w, http.StatusBadGateway, err)
		return
	}
	writeJSON(w, http.StatusOK, enabledBody{Enabled: on})
}

type switchBody struct {
	Completed bool `json:"completed"`
}

// switchToggle issues a switch. With ?wait=<duration> it answers once the
// switch completes or the wait runs out; otherwise it answers 202 at once.
func (h *Handlers) switchToggle(w http.ResponseWriter, r *http.Request) {
	t, ok := h.lookupToggle(w, r)
	if !ok {
		return
	}

	flip := t.flip
	if silent, _ := strconv.ParseBool(r.URL.Query().Get("silent")); silent {
		if t.silent == nil {
			writeError(w, http.StatusBadRequest, errors.New("no silent switch for "+chi.URLParam(r, "setting")))
			return
		}
		flip = t.silent
	}

	var wait time.Duration
	if s := r.URL.Query().Get("wait"); s != "" {
		d, err := time.ParseDuration(s)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("invalid wait: %w", err))
			return
		}
		wait = d
	}

	done := flip(context.WithoutCancel(r.Context()), nil)
	if wait <= 0 {
		writeJSON(w, http.StatusAccepted, switchBody{})
		return
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-done:
		writeJSON(w, http.StatusOK, switchBody{Completed: true})
	case <-timer.C:
		writeJSON(w, http.StatusAccepted, switchBody{})
	case <-r.Context().Done():
	}
}
