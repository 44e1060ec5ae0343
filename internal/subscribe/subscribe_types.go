package subscribe

// AudioEvent carries the default sink volume after a change, in 0..1.
type AudioEvent struct {
	Sink   string
	Volume float64
	Muted  bool
}

// NetworkKind tells which NetworkManager radio state changed.
type NetworkKind int

const (
	NetworkWifi NetworkKind = iota
	NetworkAirplane
)

func (k NetworkKind) String() string {
	if k == NetworkAirplane {
		return "airplane"
	}
	return "wifi"
}

type NetworkEvent struct {
	Kind NetworkKind
}

type BluetoothEvent struct {
	Adapter string
	Powered bool
}
