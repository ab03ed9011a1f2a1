package adapters

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"sensor-monitor/application"
	"strconv"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// ConsoleController is the set of presentation actions the console drives.
type ConsoleController interface {
	Observe(fn func(application.State))

	Connect()
	Disconnect()
	ShowDevices()
	ShowAddDevice()
	Back()
	CancelAddDevice()
	SetDeviceID(v string)
	SetDeviceName(v string)
	SubmitDevice()
	DeleteDevice(device application.MonitoringDevice)
	LoadRemoteDevices()
	PushDevice(device application.MonitoringDevice)
}

type ConsoleParams struct {
	Controller ConsoleController

	In  io.Reader
	Out io.Writer

	Log zerolog.Logger
}

// Console is a line-oriented front end: it renders every state update and
// turns typed commands into controller actions.
type Console struct {
	params ConsoleParams

	last application.State
	mu   sync.Mutex

	log zerolog.Logger
}

func NewConsole(params ConsoleParams) (*Console, error) {
	if params.Controller == nil {
		return nil, fmt.Errorf("Controller is nil")
	}
	if params.In == nil || params.Out == nil {
		return nil, fmt.Errorf("console needs both input and output")
	}

	c := &Console{params: params, log: params.Log}
	params.Controller.Observe(c.Render)
	return c, nil
}

// Render writes the screen for s.
func (c *Console) Render(s application.State) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.last = s
	fmt.Fprint(c.params.Out, RenderState(s))
}

// Run reads commands until input ends, "quit" is typed or ctx is done.
func (c *Console) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := make(chan string)
	errs := make(chan error, 1)

	go func() {
		defer close(lines)

		scanner := bufio.NewScanner(c.params.In)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		errs <- scanner.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-errs:
					return err
				default:
					return nil
				}
			}
			if quit := c.Exec(line); quit {
				return nil
			}
		}
	}
}

// Exec runs one command line and reports whether the user asked to quit.
func (c *Console) Exec(line string) bool {
	cmd, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
	arg = strings.TrimSpace(arg)
	ctrl := c.params.Controller

	switch strings.ToLower(cmd) {
	case "":
	case "connect":
		ctrl.Connect()
	case "disconnect":
		ctrl.Disconnect()
	case "devices":
		ctrl.ShowDevices()
	case "add":
		ctrl.ShowAddDevice()
	case "id":
		ctrl.SetDeviceID(arg)
	case "name":
		ctrl.SetDeviceName(arg)
	case "submit":
		ctrl.SubmitDevice()
	case "cancel":
		ctrl.CancelAddDevice()
	case "back":
		ctrl.Back()
	case "delete":
		if d, ok := c.deviceAt(arg); ok {
			ctrl.DeleteDevice(d)
		}
	case "remote":
		ctrl.LoadRemoteDevices()
	case "push":
		if d, ok := c.deviceAt(arg); ok {
			ctrl.PushDevice(d)
		}
	case "help":
		fmt.Fprint(c.params.Out, helpText)
	case "quit", "exit":
		return true
	default:
		fmt.Fprintf(c.params.Out, "unknown command %q, type help\n", cmd)
	}
	return false
}

// deviceAt resolves a 1-based position in the last rendered local list.
func (c *Console) deviceAt(arg string) (application.MonitoringDevice, bool) {
	c.mu.Lock()
	devices := c.last.Devices
	c.mu.Unlock()

	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 || n > len(devices) {
		fmt.Fprintf(c.params.Out, "no device at position %q\n", arg)
		return application.MonitoringDevice{}, false
	}
	return devices[n-1], true
}

const helpText = `commands:
  connect | disconnect        open or close the telemetry connection
  devices | back              show the device list | return home
  add                         open the add-device form
  id <value> | name <value>   fill the form
  submit | cancel             add the device | close the form
  delete <n>                  delete the n-th local device
  remote                      load devices from the backend
  push <n>                    create the n-th local device on the backend
  quit
`

// RenderState draws the current screen as plain text.
func RenderState(s application.State) string {
	var b strings.Builder

	switch s.Screen {
	case application.DeviceListScreen:
		renderDeviceList(&b, s)
	default:
		renderHome(&b, s)
		if s.Screen == application.AddDeviceScreen {
			renderForm(&b, s.Form)
		}
	}

	if s.Message != "" {
		fmt.Fprintf(&b, "> %s\n", s.Message)
	}
	return b.String()
}

func renderHome(b *strings.Builder, s application.State) {
	r := application.DisplayReading(s.Reading)

	b.WriteString("== Sensor App ==\n")
	fmt.Fprintf(b, "Status: %s\n", s.Connection)
	fmt.Fprintf(b, "Temperature: %s\n", r.Temperature)
	fmt.Fprintf(b, "Humidity: %s\n", r.Humidity)
	fmt.Fprintf(b, "Pressure: %s\n", r.Pressure)
	fmt.Fprintf(b, "Luminosity: %s\n", r.Luminosity)
	b.WriteString("[connect] Connect to MQTT  [devices] View Devices  [add] Add Monitoring Device\n")
}

func renderForm(b *strings.Builder, f application.AddDeviceForm) {
	b.WriteString("-- Add Monitoring Device --\n")
	fmt.Fprintf(b, "Device ID (number): %s\n", f.ID)
	fmt.Fprintf(b, "Device Name: %s\n", f.Name)
	if f.Error != "" {
		fmt.Fprintf(b, "! %s\n", f.Error)
	}
	b.WriteString("[id <value>] [name <value>] [submit] [cancel]\n")
}

func renderDeviceList(b *strings.Builder, s application.State) {
	b.WriteString("== Devices List ==\n")
	if len(s.Devices) == 0 {
		b.WriteString("(no devices)\n")
	}
	for i, d := range s.Devices {
		fmt.Fprintf(b, "%d. ID: %s  Name: %s  [delete %d]\n", i+1, d.ID, d.Name, i+1)
	}

	if len(s.RemoteDevices) > 0 {
		b.WriteString("-- Remote Devices --\n")
		for _, d := range s.RemoteDevices {
			fmt.Fprintf(b, "ID: %s  Name: %s\n", d.ID, d.Name)
		}
	}
	b.WriteString("[back] [remote] [push <n>]\n")
}
