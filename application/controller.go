package application

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc/pool"
)

const DefaultControllerWorkers = 4

// TelemetryFactory builds a fresh telemetry session delivering readings to onReading.
type TelemetryFactory func(onReading func(r Reading)) (TelemetryService, error)

type ControllerParams struct {
	Devices       *DeviceList
	RemoteDevices *RemoteDevices
	NewTelemetry  TelemetryFactory

	Workers int

	Log zerolog.Logger
}

func (p *ControllerParams) EnsureDefaults() {
	if p.Workers <= 0 {
		p.Workers = DefaultControllerWorkers
	}
}

// Controller owns the presentation State. All mutations run on the loop
// started by Run; network calls run on a worker pool and post their results
// back to the loop.
type Controller struct {
	params ControllerParams

	state State
	mu    sync.RWMutex

	updates chan func(s *State)
	done    chan struct{}

	observers []func(State)
	obsMu     sync.Mutex

	workers *pool.Pool
	closed  bool
	workMu  sync.Mutex

	session   TelemetryService
	sessionMu sync.Mutex

	ctx    context.Context
	cancel context.CancelFunc

	log zerolog.Logger
}

func NewController(params ControllerParams) (*Controller, error) {
	if params.Devices == nil {
		return nil, fmt.Errorf("DeviceList is nil")
	}
	if params.RemoteDevices == nil {
		return nil, fmt.Errorf("RemoteDevices is nil")
	}
	if params.NewTelemetry == nil {
		return nil, fmt.Errorf("NewTelemetry is nil")
	}
	params.EnsureDefaults()

	ctx, cancel := context.WithCancel(context.Background())
	return &Controller{
		params:  params,
		state:   State{Devices: params.Devices.All()},
		updates: make(chan func(s *State), 64),
		done:    make(chan struct{}),
		workers: pool.New().WithMaxGoroutines(params.Workers),
		ctx:     ctx,
		cancel:  cancel,
		log:     params.Log,
	}, nil
}

// State returns a snapshot of the current state.
func (c *Controller) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state.clone()
}

// Observe registers fn to be called on the loop with a snapshot after every update.
func (c *Controller) Observe(fn func(State)) {
	c.obsMu.Lock()
	defer c.obsMu.Unlock()
	c.observers = append(c.observers, fn)
}

// Run processes updates until ctx is done, then releases the telemetry
// session and waits for in-flight work.
func (c *Controller) Run(ctx context.Context) error {
	c.notify(c.State())

	for {
		select {
		case <-ctx.Done():
			c.shutdown()
			return nil
		case fn := <-c.updates:
			c.mu.Lock()
			fn(&c.state)
			snapshot := c.state.clone()
			c.mu.Unlock()

			c.notify(snapshot)
		}
	}
}

func (c *Controller) shutdown() {
	close(c.done)
	c.cancel()

	c.workMu.Lock()
	c.closed = true
	c.workMu.Unlock()
	c.workers.Wait()

	c.sessionMu.Lock()
	defer c.sessionMu.Unlock()
	if c.session != nil {
		c.session.Stop()
		c.session = nil
	}
	c.log.Info().Msg("controller stopped")
}

func (c *Controller) notify(s State) {
	c.obsMu.Lock()
	observers := append([]func(State){}, c.observers...)
	c.obsMu.Unlock()

	for _, fn := range observers {
		fn(s)
	}
}

func (c *Controller) post(fn func(s *State)) {
	select {
	case <-c.done:
	case c.updates <- fn:
	}
}

func (c *Controller) goWork(fn func()) {
	c.workMu.Lock()
	defer c.workMu.Unlock()

	if c.closed {
		return
	}
	c.workers.Go(fn)
}

// Connect opens a new telemetry session, closing the previous one first.
func (c *Controller) Connect() {
	c.goWork(func() {
		c.sessionMu.Lock()
		defer c.sessionMu.Unlock()

		if c.session != nil {
			c.session.Stop()
			c.session = nil
		}

		session, err := c.params.NewTelemetry(func(r Reading) {
			c.post(func(s *State) {
				s.Reading = &r
			})
		})
		if err != nil {
			c.log.Error().Err(err).Msg("failed to create telemetry session")
			c.post(func(s *State) { s.Connection = ConnectionFailed })
			return
		}

		err = session.Start()
		switch {
		case err == nil:
			c.session = session
			c.post(func(s *State) { s.Connection = Connected })
		case errors.Is(err, ErrSubscribeFailure):
			// connected without a subscription: nothing to show, keep the
			// session so it gets closed later
			c.session = session
			c.post(func(s *State) { s.Connection = Connected })
		default:
			c.log.Warn().Err(err).Msg("connect failed")
			session.Stop()
			c.post(func(s *State) { s.Connection = ConnectionFailed })
		}
	})
}

// Disconnect releases the telemetry session, if any.
func (c *Controller) Disconnect() {
	c.goWork(func() {
		c.sessionMu.Lock()
		defer c.sessionMu.Unlock()

		if c.session == nil {
			return
		}
		c.session.Stop()
		c.session = nil
		c.post(func(s *State) { s.Connection = Disconnected })
	})
}

func (c *Controller) ShowDevices() {
	c.post(func(s *State) {
		s.Screen = DeviceListScreen
	})
}

func (c *Controller) ShowAddDevice() {
	c.post(func(s *State) {
		s.Screen = AddDeviceScreen
		s.Form = AddDeviceForm{}
	})
}

func (c *Controller) Back() {
	c.post(func(s *State) {
		s.Screen = HomeScreen
	})
}

func (c *Controller) CancelAddDevice() {
	c.post(func(s *State) {
		if s.Screen == AddDeviceScreen {
			s.Screen = HomeScreen
		}
	})
}

func (c *Controller) SetDeviceID(v string) {
	c.post(func(s *State) { s.Form.SetID(v) })
}

func (c *Controller) SetDeviceName(v string) {
	c.post(func(s *State) { s.Form.SetName(v) })
}

// SubmitDevice validates the form and, when accepted, appends the device to
// the local list and returns to the home screen.
func (c *Controller) SubmitDevice() {
	c.post(func(s *State) {
		if s.Screen != AddDeviceScreen {
			return
		}
		_ = s.Form.Submit(func(d MonitoringDevice) {
			if err := c.params.Devices.Add(d); err != nil {
				c.log.Error().Err(err).Msg("failed to save device")
				s.Message = err.Error()
				return
			}
			s.Devices = c.params.Devices.All()
			s.Form = AddDeviceForm{}
			s.Screen = HomeScreen
		})
	})
}

func (c *Controller) DeleteDevice(device MonitoringDevice) {
	c.post(func(s *State) {
		removed, err := c.params.Devices.Remove(device)
		if err != nil {
			c.log.Error().Err(err).Msg("failed to save devices")
			s.Message = err.Error()
			return
		}
		if removed {
			s.Devices = c.params.Devices.All()
		}
	})
}

// LoadRemoteDevices fetches the backend's device list.
func (c *Controller) LoadRemoteDevices() {
	c.goWork(func() {
		failed := false
		c.params.RemoteDevices.Load(c.ctx, func(msg string) {
			failed = true
			c.post(func(s *State) { s.Message = msg })
		})
		if failed {
			return
		}

		devices := c.params.RemoteDevices.All()
		c.post(func(s *State) {
			s.RemoteDevices = devices
			s.Message = fmt.Sprintf("Loaded %d devices", len(devices))
		})
	})
}

// PushDevice creates device on the backend.
func (c *Controller) PushDevice(device MonitoringDevice) {
	c.goWork(func() {
		c.params.RemoteDevices.Add(c.ctx, device,
			func() {
				devices := c.params.RemoteDevices.All()
				c.post(func(s *State) {
					s.RemoteDevices = devices
					s.Message = fmt.Sprintf("Device %s added", device.Name)
				})
			},
			func(msg string) {
				c.post(func(s *State) { s.Message = msg })
			})
	})
}
