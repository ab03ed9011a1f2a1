package application

type ConnectionState int

const (
	Disconnected ConnectionState = iota
	Connected
	ConnectionFailed
)

func (c ConnectionState) String() string {
	switch c {
	case Connected:
		return "Connected"
	case ConnectionFailed:
		return "Connection Failed"
	default:
		return "Disconnected"
	}
}

type Screen int

const (
	HomeScreen Screen = iota
	DeviceListScreen
	AddDeviceScreen
)

func (s Screen) String() string {
	switch s {
	case DeviceListScreen:
		return "devices"
	case AddDeviceScreen:
		return "add-device"
	default:
		return "home"
	}
}

// State is everything the presentation layer renders. Observers receive
// copies; the controller loop owns the original.
type State struct {
	Screen     Screen
	Connection ConnectionState
	Reading    *Reading

	Devices       []MonitoringDevice
	RemoteDevices []MonitoringDevice

	Form AddDeviceForm

	// Message is the last user-facing notice, e.g. a failed backend call.
	Message string
}

func (s State) clone() State {
	out := s
	if s.Reading != nil {
		r := *s.Reading
		out.Reading = &r
	}
	out.Devices = append([]MonitoringDevice(nil), s.Devices...)
	out.RemoteDevices = append([]MonitoringDevice(nil), s.RemoteDevices...)
	return out
}
