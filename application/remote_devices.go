package application

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
)

type RemoteDevicesParams struct {
	Client RemoteDeviceClient

	Log zerolog.Logger
}

// RemoteDevices keeps the last device list fetched from the backend. Its
// methods block on the network and are meant to run off the UI loop.
type RemoteDevices struct {
	client  RemoteDeviceClient
	devices []MonitoringDevice

	mu sync.RWMutex

	log zerolog.Logger
}

func NewRemoteDevices(params RemoteDevicesParams) (*RemoteDevices, error) {
	if params.Client == nil {
		return nil, fmt.Errorf("RemoteDeviceClient is nil")
	}
	return &RemoteDevices{client: params.Client, log: params.Log}, nil
}

func (r *RemoteDevices) All() []MonitoringDevice {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]MonitoringDevice, len(r.devices))
	copy(out, r.devices)
	return out
}

// Load replaces the list with the backend's. On failure onError receives a
// non-empty message and the list is left as it was.
func (r *RemoteDevices) Load(ctx context.Context, onError func(msg string)) {
	devices, err := r.client.ListDevices(ctx)
	if err != nil {
		r.log.Warn().Err(err).Msg("failed to load devices")
		onError(failureMessage("Failed to load devices", err))
		return
	}

	r.mu.Lock()
	r.devices = append([]MonitoringDevice{}, devices...)
	r.mu.Unlock()

	r.log.Debug().Int("count", len(devices)).Msg("devices loaded")
}

func (r *RemoteDevices) Add(ctx context.Context, device MonitoringDevice, onSuccess func(), onError func(msg string)) {
	if err := r.client.CreateDevice(ctx, device); err != nil {
		r.log.Warn().Err(err).Str("device_id", device.ID).Msg("failed to add device")
		onError(failureMessage("Failed to add device", err))
		return
	}

	r.mu.Lock()
	r.devices = append(r.devices, device)
	r.mu.Unlock()

	onSuccess()
}

func failureMessage(prefix string, err error) string {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return fmt.Sprintf("%s: %s", prefix, httpErr.Message)
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return prefix
}
