package adapters

import (
	"encoding/json"
	"fmt"
	"sensor-monitor/application"
)

const DevicesKey = "devices_list"

// DeviceStore keeps the whole device list as one JSON array under DevicesKey.
type DeviceStore struct {
	prefs Preferences
}

func NewDeviceStore(prefs Preferences) (*DeviceStore, error) {
	if prefs == nil {
		return nil, fmt.Errorf("preferences are required")
	}
	return &DeviceStore{prefs: prefs}, nil
}

func (s *DeviceStore) Save(devices []application.MonitoringDevice) error {
	if devices == nil {
		devices = []application.MonitoringDevice{}
	}
	data, err := json.Marshal(devices)
	if err != nil {
		return err
	}
	return s.prefs.Set(DevicesKey, string(data))
}

// Load returns an empty list when nothing was saved yet. A value that does
// not decode fails with application.ErrCorruptDeviceStore.
func (s *DeviceStore) Load() ([]application.MonitoringDevice, error) {
	value, ok, err := s.prefs.Get(DevicesKey)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []application.MonitoringDevice{}, nil
	}

	var devices []application.MonitoringDevice
	if err := json.Unmarshal([]byte(value), &devices); err != nil {
		return nil, fmt.Errorf("%w: %v", application.ErrCorruptDeviceStore, err)
	}
	if devices == nil {
		devices = []application.MonitoringDevice{}
	}
	return devices, nil
}

var _ application.DeviceStore = &DeviceStore{}
