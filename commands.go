package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sensor-monitor/adapters"
	"sensor-monitor/application"
	"strings"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"
)

func moduleLogger(module string) zerolog.Logger {
	return logger.With().Str("module", module).Logger()
}

func mqttClientParams(ctx *cli.Context) adapters.MQTTClientParams {
	return adapters.MQTTClientParams{
		ClientID: ctx.String(FlagMQTTClientID.Name),
		Username: ctx.String(FlagMQTTUsername.Name),
		Password: ctx.String(FlagMQTTPassword.Name),
		Host:     ctx.String(FlagMQTTHost.Name),
		Port:     ctx.Int(FlagMQTTPort.Name),
		TLS:      ctx.Bool(FlagMQTTTLS.Name),
		Log:      moduleLogger("mqtt-client"),
	}
}

func newRemoteDevices(ctx *cli.Context) (*application.RemoteDevices, error) {
	client := adapters.NewRestDeviceClient(adapters.RestDeviceClientParams{
		BaseURL:  ctx.String(FlagAPIUrl.Name),
		Username: ctx.String(FlagAPIUsername.Name),
		Password: ctx.String(FlagAPIPassword.Name),
		Log:      moduleLogger("rest-client"),
	})

	return application.NewRemoteDevices(application.RemoteDevicesParams{
		Client: client,
		Log:    moduleLogger("remote-devices"),
	})
}

// openDeviceList loads the local device list from the configured store. The
// returned func releases the store's resources.
func openDeviceList(ctx *cli.Context) (*application.DeviceList, func(), error) {
	var prefs adapters.Preferences
	closer := func() {}

	switch ctx.String(FlagStore.Name) {
	case "file":
		path := ctx.String(FlagStorePath.Name)
		if path == "" {
			p, err := adapters.DefaultPreferencesPath()
			if err != nil {
				return nil, nil, err
			}
			path = p
		}
		logger.Debug().Str("path", path).Msg("using file preferences")
		prefs = adapters.NewFilePreferences(path)
	case "redis":
		client, err := adapters.NewRedisClient(ctx.String(FlagRedisURL.Name))
		if err != nil {
			return nil, nil, err
		}
		closer = func() { _ = client.Close() }
		prefs = adapters.NewRedisPreferences(client, adapters.DefaultPreferencesName)
	default:
		return nil, nil, fmt.Errorf("invalid store %q", ctx.String(FlagStore.Name))
	}

	store, err := adapters.NewDeviceStore(prefs)
	if err != nil {
		closer()
		return nil, nil, err
	}

	list, err := application.NewDeviceList(store)
	if err != nil {
		closer()
		return nil, nil, err
	}
	return list, closer, nil
}

func runAction(ctx *cli.Context) error {
	appCtx, cancel := signalContext()
	defer cancel()

	devices, closeStore, err := openDeviceList(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	remote, err := newRemoteDevices(ctx)
	if err != nil {
		return err
	}

	topic := ctx.String(FlagMQTTTopic.Name)
	controller, err := application.NewController(application.ControllerParams{
		Devices:       devices,
		RemoteDevices: remote,
		NewTelemetry: func(onReading func(r application.Reading)) (application.TelemetryService, error) {
			return application.NewTelemetryService(application.TelemetryServiceParams{
				MQTTClient: adapters.NewMQTTClient(mqttClientParams(ctx)),
				Topic:      topic,
				QoS:        application.QoSAtLeastOnce,
				OnReading:  onReading,
				Log:        moduleLogger("telemetry"),
			})
		},
		Log: moduleLogger("controller"),
	})
	if err != nil {
		return err
	}

	console, err := adapters.NewConsole(adapters.ConsoleParams{
		Controller: controller,
		In:         os.Stdin,
		Out:        os.Stdout,
		Log:        moduleLogger("console"),
	})
	if err != nil {
		return err
	}

	runCtx, stop := context.WithCancel(appCtx)
	defer stop()

	g, gctx := errgroup.WithContext(runCtx)
	g.Go(func() error {
		return controller.Run(gctx)
	})
	g.Go(func() error {
		defer stop()
		return console.Run(gctx)
	})
	return g.Wait()
}

func watchAction(ctx *cli.Context) error {
	appCtx, cancel := signalContext()
	defer cancel()

	log := moduleLogger("watch")
	service, err := application.NewTelemetryService(application.TelemetryServiceParams{
		MQTTClient: adapters.NewMQTTClient(mqttClientParams(ctx)),
		Topic:      ctx.String(FlagMQTTTopic.Name),
		QoS:        application.QoSAtLeastOnce,
		OnReading: func(r application.Reading) {
			log.Info().
				Float64(application.FieldTemperature, r.Temperature).
				Float64(application.FieldHumidity, r.Humidity).
				Float64(application.FieldPressure, r.Pressure).
				Float64(application.FieldLuminosity, r.Luminosity).
				Msg("reading")
		},
		Log: moduleLogger("telemetry"),
	})
	if err != nil {
		return err
	}

	log.Info().Msg("watching...")
	return service.Run(appCtx)
}

func publishAction(ctx *cli.Context) error {
	client := adapters.NewMQTTClient(mqttClientParams(ctx))
	if err := client.Connect(); err != nil {
		return fmt.Errorf("%w: %v", application.ErrConnectionFailure, err)
	}
	defer client.Disconnect()

	payload, err := json.Marshal(application.Reading{
		Temperature: ctx.Float64(FlagTemperature.Name),
		Humidity:    ctx.Float64(FlagHumidity.Name),
		Pressure:    ctx.Float64(FlagPressure.Name),
		Luminosity:  ctx.Float64(FlagLuminosity.Name),
	})
	if err != nil {
		return err
	}

	topic := ctx.String(FlagMQTTTopic.Name)
	if err := client.Publish(topic, application.QoSAtLeastOnce, false, payload); err != nil {
		return err
	}

	status := client.Status()
	logger.Info().
		Str("topic", topic).
		Uint64("message_count", status.MessageCount).
		Time("last_time_published", status.LastTimePublished).
		Msg("reading published")
	return nil
}

// deviceArgs reads "<id> <name...>" and validates it like the add form does.
func deviceArgs(ctx *cli.Context) (application.MonitoringDevice, error) {
	args := ctx.Args().Slice()
	var id, name string
	if len(args) > 0 {
		id = args[0]
	}
	if len(args) > 1 {
		name = strings.Join(args[1:], " ")
	}
	if err := application.ValidateDevice(id, name); err != nil {
		return application.MonitoringDevice{}, err
	}
	return application.MonitoringDevice{ID: id, Name: name}, nil
}

func printDevices(devices []application.MonitoringDevice) {
	if len(devices) == 0 {
		fmt.Println("(no devices)")
		return
	}
	for i, d := range devices {
		fmt.Printf("%d. ID: %s  Name: %s\n", i+1, d.ID, d.Name)
	}
}

func devicesListAction(ctx *cli.Context) error {
	devices, closeStore, err := openDeviceList(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	printDevices(devices.All())
	return nil
}

func devicesAddAction(ctx *cli.Context) error {
	device, err := deviceArgs(ctx)
	if err != nil {
		return err
	}

	devices, closeStore, err := openDeviceList(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	return devices.Add(device)
}

func devicesDeleteAction(ctx *cli.Context) error {
	id := ctx.Args().First()
	name := strings.Join(ctx.Args().Tail(), " ")
	if id == "" {
		return fmt.Errorf("device id is required")
	}

	devices, closeStore, err := openDeviceList(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	for _, d := range devices.All() {
		if d.ID == id && (name == "" || d.Name == name) {
			_, err := devices.Remove(d)
			return err
		}
	}
	return fmt.Errorf("no device with id %q", id)
}

func remoteListAction(ctx *cli.Context) error {
	remote, err := newRemoteDevices(ctx)
	if err != nil {
		return err
	}

	var failure error
	remote.Load(ctx.Context, func(msg string) {
		failure = errors.New(msg)
	})
	if failure != nil {
		return failure
	}

	printDevices(remote.All())
	return nil
}

func remoteAddAction(ctx *cli.Context) error {
	device, err := deviceArgs(ctx)
	if err != nil {
		return err
	}

	remote, err := newRemoteDevices(ctx)
	if err != nil {
		return err
	}

	var failure error
	remote.Add(ctx.Context, device,
		func() {
			fmt.Printf("Device %s added\n", device.Name)
		},
		func(msg string) {
			failure = errors.New(msg)
		})
	return failure
}
