package subscribe

import (
	"fmt"

	"github.com/godbus/dbus/v5"
)

// propertyMatch is a PropertiesChanged match rule on the system bus.
type propertyMatch struct {
	conn    *dbus.Conn
	rule    string
	signals chan *dbus.Signal
}

// matchProperties registers rule and returns once the bus daemon has
// accepted it. Signals emitted after that are delivered on m.signals.
func matchProperties(rule string) (*propertyMatch, error) {
	conn, err := dbus.SystemBus()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to system bus: %w", err)
	}

	m := &propertyMatch{conn: conn, rule: rule, signals: make(chan *dbus.Signal, 32)}
	conn.Signal(m.signals)
	if err := conn.BusObject().Call("org.freedesktop.DBus.AddMatch", 0, rule).Err; err != nil {
		conn.RemoveSignal(m.signals)
		return nil, fmt.Errorf("AddMatch failed: %w", err)
	}
	return m, nil
}

func (m *propertyMatch) Close() {
	m.conn.RemoveSignal(m.signals)
	m.conn.BusObject().Call("org.freedesktop.DBus.RemoveMatch", 0, m.rule)
}
