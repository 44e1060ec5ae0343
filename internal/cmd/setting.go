package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"github.com/hoppxi/sysset/internal/manager"
	"github.com/hoppxi/sysset/pkg/events"
	"github.com/hoppxi/sysset/pkg/provider"
	"github.com/hoppxi/sysset/pkg/provider/mock"
	"github.com/hoppxi/sysset/pkg/systemsetting"
	"github.com/spf13/cobra"
)

// newMock builds the provider behind --mock.
var newMock = mock.New

// session is one facade plus what it takes to tear it down.
type session struct {
	setting *systemsetting.Setting
	config  manager.Config
	closer  io.Closer
}

func (s *session) Close() {
	if s.closer != nil {
		_ = s.closer.Close()
	}
}

// openSession builds the facade from config. With watch, the native
// provider starts its change watchers.
func openSession(ctx context.Context, opts *options, watch bool) (*session, error) {
	cfg, err := manager.NewConfigManager(opts.configPath).Load()
	if err != nil {
		return nil, err
	}

	bus := events.NewBus()
	log := slog.Default()

	var p systemsetting.Provider
	if opts.mock {
		platform, err := provider.Detect(cfg.Platform)
		if err != nil {
			return nil, err
		}
		caps := provider.NativeCapabilities
		if platform == provider.PlatformSandboxed {
			caps = provider.SandboxedCapabilities
		}
		m := newMock(bus, caps)
		m.SetAutoPublish(true)
		p = m
	} else {
		pc := cfg.Provider()
		pc.Logger = log
		if watch {
			p, err = provider.New(ctx, pc, bus)
		} else {
			p, err = provider.Select(pc, bus)
		}
		if err != nil {
			return nil, err
		}
	}

	setOpts := []systemsetting.Option{systemsetting.WithLogger(log)}
	if cfg.AppStore != nil {
		setOpts = append(setOpts, systemsetting.WithAppStore(*cfg.AppStore))
	}

	s := &session{
		setting: systemsetting.New(p, bus, setOpts...),
		config:  cfg,
	}
	if c, ok := p.(io.Closer); ok {
		s.closer = c
	}
	return s, nil
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}

func printValue(cmd *cobra.Command, v float64) {
	fmt.Fprintln(cmd.OutOrStdout(), strconv.FormatFloat(v, 'f', -1, 64))
}

func printOK(cmd *cobra.Command, ok bool) error {
	if !ok {
		return fmt.Errorf("%s was rejected by the system", cmd.Name())
	}
	fmt.Fprintln(cmd.OutOrStdout(), "OK")
	return nil
}
