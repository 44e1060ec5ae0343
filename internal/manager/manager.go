package manager

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/hoppxi/sysset/internal/api"
	"github.com/hoppxi/sysset/pkg/systemsetting"
)

// IPC commands understood by the daemon.
const (
	CmdStatus  = "STATUS"
	CmdStop    = "STOP"
	CmdSave    = "SAVE"
	CmdRestore = "RESTORE"
)

// SocketPath returns the daemon's unix socket path.
func SocketPath() string {
	var baseDir string
	if runtimeDir := os.Getenv("XDG_RUNTIME_DIR"); runtimeDir != "" {
		baseDir = runtimeDir
	} else {
		baseDir = os.TempDir()
	}

	socketDir := filepath.Join(baseDir, "sysset")
	if err := os.MkdirAll(socketDir, 0o755); err != nil {
		return filepath.Join(os.TempDir(), "sysset-socket.sock")
	}
	return filepath.Join(socketDir, "socket.sock")
}

// Daemon keeps one settings facade alive so that saved brightness and
// listeners span CLI invocations.
type Daemon struct {
	Setting    *systemsetting.Setting
	Config     *ConfigManager
	SocketPath string
	// HTTPAddr enables the HTTP API when set.
	HTTPAddr string

	log      *slog.Logger
	stopOnce sync.Once
	stop     chan struct{}
}

func NewDaemon(s *systemsetting.Setting, cfg *ConfigManager, log *slog.Logger) *Daemon {
	if log == nil {
		log = slog.Default()
	}
	return &Daemon{
		Setting:    s,
		Config:     cfg,
		SocketPath: SocketPath(),
		log:        log,
		stop:       make(chan struct{}),
	}
}

// Stop asks Run to return.
func (d *Daemon) Stop() {
	d.stopOnce.Do(func() { close(d.stop) })
}

// Run serves IPC, and HTTP when configured, until ctx is done or a STOP
// command arrives.
func (d *Daemon) Run(ctx context.Context) error {
	_ = os.Remove(d.SocketPath)

	listener, err := net.Listen("unix", d.SocketPath)
	if err != nil {
		return fmt.Errorf("error listening on socket: %w", err)
	}
	defer os.Remove(d.SocketPath)
	defer listener.Close()

	d.log.Info("IPC server listening", "socket", d.SocketPath)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		d.serveIPC(listener)
	}()

	var srv *http.Server
	if d.HTTPAddr != "" {
		srv = &http.Server{
			Addr:              d.HTTPAddr,
			Handler:           api.NewRouter(d.Setting, d.log),
			ReadHeaderTimeout: 5 * time.Second,
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			d.log.Info("HTTP API listening", "addr", d.HTTPAddr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				d.log.Error("HTTP API failed", "err", err)
			}
		}()
	}

	if d.Config != nil {
		if err := d.Config.Watch(d.stop, d.applyConfig); err != nil {
			d.log.Warn("config reload disabled", "err", err)
		}
	}

	select {
	case <-ctx.Done():
	case <-d.stop:
	}
	d.Stop()

	d.log.Info("shutting down")
	listener.Close()
	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}
	wg.Wait()
	return nil
}

// applyConfig carries live config changes into the facade. Only the
// app-store flag can change without a restart.
func (d *Daemon) applyConfig(cfg Config) {
	if cfg.AppStore == nil {
		return
	}
	d.log.Info("config reloaded", "app_store", *cfg.AppStore)
	d.Setting.SetAppStore(*cfg.AppStore)
}

func (d *Daemon) serveIPC(listener net.Listener) {
	for {
		conn, err := listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}
			continue
		}
		go d.handleConnection(conn)
	}
}

func (d *Daemon) handleConnection(conn net.Conn) {
	defer conn.Close()
	_ = conn.SetDeadline(time.Now().Add(5 * time.Second))

	buf := make([]byte, 1024)
	n, err := conn.Read(buf)
	if err != nil {
		return
	}

	command := strings.TrimSpace(string(buf[:n]))
	ctx := context.Background()

	switch command {
	case CmdStop:
		d.log.Info("received STOP via IPC")
		_, _ = conn.Write([]byte("OK: Shutting down."))
		d.Stop()

	case CmdStatus:
		caps := d.Setting.Capabilities()
		_, _ = conn.Write([]byte("OK: running platform=" + caps.Platform))

	case CmdSave:
		if err := d.Setting.SaveBrightness(ctx); err != nil {
			_, _ = conn.Write([]byte("ERR: " + err.Error()))
			return
		}
		_, _ = conn.Write([]byte("OK: saved"))

	case CmdRestore:
		v := d.Setting.RestoreBrightness(ctx)
		_, _ = conn.Write([]byte("OK: " + strconv.FormatFloat(v, 'f', -1, 64)))

	default:
		_, _ = conn.Write([]byte("ERR: unknown command"))
	}
}

// SendIPCCommand sends cmd to the daemon listening on socketPath and
// returns its reply.
func SendIPCCommand(socketPath, cmd string) (string, error) {
	conn, err := net.DialTimeout("unix", socketPath, 500*time.Millisecond)
	if err != nil {
		return "", err
	}
	defer conn.Close()

	if _, err := conn.Write([]byte(cmd)); err != nil {
		return "", err
	}

	buf := make([]byte, 1024)
	n, err := conn.Read(buf)
	if err != nil && err != io.EOF {
		return "", err
	}

	return string(buf[:n]), nil
}

// ParseReply splits an IPC reply into its payload, or an error for ERR
// replies.
func ParseReply(reply string) (string, error) {
	if rest, ok := strings.CutPrefix(reply, "OK: "); ok {
		return rest, nil
	}
	if rest, ok := strings.CutPrefix(reply, "ERR: "); ok {
		return "", errors.New(rest)
	}
	return "", fmt.Errorf("malformed reply %q", reply)
}
