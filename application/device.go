package application

import (
	"context"
	"fmt"
	"sync"
)

type MonitoringDevice struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type DeviceStore interface {
	Save(devices []MonitoringDevice) error
	Load() ([]MonitoringDevice, error)
}

type RemoteDeviceClient interface {
	ListDevices(ctx context.Context) ([]MonitoringDevice, error)
	CreateDevice(ctx context.Context, device MonitoringDevice) error
}

// DeviceList is the locally persisted list of monitoring devices. Every
// mutation is followed by exactly one full write to the store.
type DeviceList struct {
	store   DeviceStore
	devices []MonitoringDevice

	mu sync.RWMutex
}

func NewDeviceList(store DeviceStore) (*DeviceList, error) {
	if store == nil {
		return nil, fmt.Errorf("DeviceStore is nil")
	}

	devices, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("load devices: %w", err)
	}
	return &DeviceList{store: store, devices: devices}, nil
}

func (l *DeviceList) All() []MonitoringDevice {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]MonitoringDevice, len(l.devices))
	copy(out, l.devices)
	return out
}

func (l *DeviceList) Add(device MonitoringDevice) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	next := append(append([]MonitoringDevice{}, l.devices...), device)
	if err := l.store.Save(next); err != nil {
		return fmt.Errorf("save devices: %w", err)
	}
	l.devices = next
	return nil
}

// Remove deletes the first entry equal to device. It reports false, without
// writing, when no entry matches.
func (l *DeviceList) Remove(device MonitoringDevice) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	idx := -1
	for i, d := range l.devices {
		if d == device {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false, nil
	}

	next := make([]MonitoringDevice, 0, len(l.devices)-1)
	next = append(next, l.devices[:idx]...)
	next = append(next, l.devices[idx+1:]...)
	if err := l.store.Save(next); err != nil {
		return false, fmt.Errorf("save devices: %w", err)
	}
	l.devices = next
	return true, nil
}
