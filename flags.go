package main

import (
	"sensor-monitor/adapters"
	"sensor-monitor/application"

	"github.com/urfave/cli/v2"
)

var FlagLogLevel = &cli.StringFlag{
	Name:     "log-level",
	EnvVars:  []string{"LOG_LEVEL"},
	Value:    "info",
	Required: false,
}

var FlagLogWriter = &cli.StringFlag{
	Name:     "log-writer",
	Usage:    "one of: [console, json]",
	EnvVars:  []string{"LOG_WRITER"},
	Value:    "console",
	Required: false,
}

var FlagMQTTHost = &cli.StringFlag{
	Name:    "mqtt-host",
	Usage:   "broker host name",
	EnvVars: []string{"MQTT_HOST"},
	Value:   "594bf801d8c342e993ed74b68dbbc232.s1.eu.hivemq.cloud",
}

var FlagMQTTPort = &cli.IntFlag{
	Name:    "mqtt-port",
	EnvVars: []string{"MQTT_PORT"},
	Value:   8883,
}

var FlagMQTTTLS = &cli.BoolFlag{
	Name:    "mqtt-tls",
	Usage:   "connect with TLS (ssl://)",
	EnvVars: []string{"MQTT_TLS"},
	Value:   true,
}

var FlagMQTTClientID = &cli.StringFlag{
	Name:    "mqtt-client-id",
	EnvVars: []string{"MQTT_CLIENT_ID"},
	Value:   "sensor-monitor",
}

var FlagMQTTUsername = &cli.StringFlag{
	Name:    "mqtt-username",
	EnvVars: []string{"MQTT_USERNAME"},
}

var FlagMQTTPassword = &cli.StringFlag{
	Name:    "mqtt-password",
	EnvVars: []string{"MQTT_PASSWORD"},
}

var FlagMQTTTopic = &cli.StringFlag{
	Name:    "mqtt-topic",
	EnvVars: []string{"MQTT_TOPIC"},
	Value:   application.DefaultTelemetryTopic,
}

var FlagAPIUrl = &cli.StringFlag{
	Name:    "api-url",
	Usage:   "device backend base url",
	EnvVars: []string{"API_URL"},
	Value:   adapters.DefaultAPIBaseURL,
}

var FlagAPIUsername = &cli.StringFlag{
	Name:    "api-username",
	EnvVars: []string{"API_USERNAME"},
}

var FlagAPIPassword = &cli.StringFlag{
	Name:    "api-password",
	EnvVars: []string{"API_PASSWORD"},
}

var FlagStore = &cli.StringFlag{
	Name:    "store",
	Usage:   "one of: [file, redis]",
	EnvVars: []string{"DEVICE_STORE"},
	Value:   "file",
}

var FlagStorePath = &cli.StringFlag{
	Name:    "store-path",
	Usage:   "preferences file, defaults to <config dir>/sensor-monitor/devices_prefs.json",
	EnvVars: []string{"DEVICE_STORE_PATH"},
}

var FlagRedisURL = &cli.StringFlag{
	Name:    "redis-url",
	Usage:   "redis://host:port/db",
	EnvVars: []string{"REDIS_URL"},
	Value:   "redis://localhost:6379/0",
}

var FlagTemperature = &cli.Float64Flag{Name: "temperature", Usage: "°C", Required: true}
var FlagHumidity = &cli.Float64Flag{Name: "humidity", Usage: "%", Required: true}
var FlagPressure = &cli.Float64Flag{Name: "pressure", Usage: "hPa", Required: true}
var FlagLuminosity = &cli.Float64Flag{Name: "luminosity", Usage: "lx", Required: true}
