package subscribe

import (
	"log/slog"
	"strings"
	"syscall"
)

// DisplayEvents reports backlight changes seen as kernel uevents until stop
// is closed.
func DisplayEvents(stop <-chan struct{}) <-chan struct{} {
	events := make(chan struct{}, 1)

	go func() {
		defer close(events)

		fd, err := syscall.Socket(syscall.AF_NETLINK, syscall.SOCK_RAW, syscall.NETLINK_KOBJECT_UEVENT)
		if err != nil {
			slog.Warn("failed to open netlink socket", "err", err)
			return
		}
		defer syscall.Close(fd)

		addr := &syscall.SockaddrNetlink{
			Family: syscall.AF_NETLINK,
			Groups: 1, // listen to broadcast uevents
		}
		if err := syscall.Bind(fd, addr); err != nil {
			slog.Warn("failed to bind netlink socket", "err", err)
			return
		}

		// Wake up once a second to notice stop.
		tv := syscall.Timeval{Sec: 1}
		if err := syscall.SetsockoptTimeval(fd, syscall.SOL_SOCKET, syscall.SO_RCVTIMEO, &tv); err != nil {
			slog.Warn("failed to set netlink timeout", "err", err)
		}

		buf := make([]byte, 4096)
		for {
			select {
			case <-stop:
				return
			default:
			}

			n, _, err := syscall.Recvfrom(fd, buf, 0)
			if err != nil {
				if err != syscall.EAGAIN && err != syscall.EINTR {
					slog.Debug("netlink recv error", "err", err)
				}
				continue
			}

			if isBacklightChange(buf[:n]) {
				select {
				case events <- struct{}{}:
				default:
				}
			}
		}
	}()

	return events
}

// isBacklightChange matches a uevent datagram: a header line followed by
// NUL separated KEY=VALUE pairs.
func isBacklightChange(msg []byte) bool {
	var subsystem, action bool
	for _, field := range strings.Split(string(msg), "\x00") {
		switch field {
		case "SUBSYSTEM=backlight":
			subsystem = true
		case "ACTION=change":
			action = true
		}
	}
	return subsystem && action
}
