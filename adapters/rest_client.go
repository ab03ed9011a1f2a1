package adapters

import (
	"context"
	"encoding/json"
	"fmt"
	"sensor-monitor/application"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
)

const (
	DefaultAPIBaseURL = "https://automacorp.devmind.cleverapps.io/api"

	devicesPath = "devices"
)

type RestDeviceClientParams struct {
	BaseURL  string
	Username string
	Password string

	// Timeout is left to the HTTP client's default when zero.
	Timeout time.Duration

	Log zerolog.Logger
}

func (p *RestDeviceClientParams) EnsureDefaults() {
	if p.BaseURL == "" {
		p.BaseURL = DefaultAPIBaseURL
	}
}

type RestDeviceClient struct {
	client *resty.Client

	log zerolog.Logger
}

func NewRestDeviceClient(params RestDeviceClientParams) *RestDeviceClient {
	params.EnsureDefaults()

	r := &RestDeviceClient{log: params.Log}

	client := resty.New().
		SetBaseURL(params.BaseURL).
		SetHeader("Accept", "application/json").
		SetBasicAuth(params.Username, params.Password).
		OnBeforeRequest(func(c *resty.Client, req *resty.Request) error {
			r.log.Debug().Str("method", req.Method).Str("url", req.URL).Msg("request")
			return nil
		})
	if params.Timeout > 0 {
		client.SetTimeout(params.Timeout)
	}
	r.client = client

	return r
}

func (r *RestDeviceClient) ListDevices(ctx context.Context) ([]application.MonitoringDevice, error) {
	resp, err := r.client.R().
		SetContext(ctx).
		Get(devicesPath)
	if err != nil {
		return nil, &application.UnexpectedError{Message: err.Error()}
	}
	if !resp.IsSuccess() {
		return nil, &application.HTTPError{StatusCode: resp.StatusCode(), Message: resp.Status()}
	}

	var devices []application.MonitoringDevice
	if err := json.Unmarshal(resp.Body(), &devices); err != nil {
		return nil, &application.UnexpectedError{Message: fmt.Sprintf("decode devices: %v", err)}
	}
	if devices == nil {
		devices = []application.MonitoringDevice{}
	}
	return devices, nil
}

func (r *RestDeviceClient) CreateDevice(ctx context.Context, device application.MonitoringDevice) error {
	resp, err := r.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(device).
		Post(devicesPath)
	if err != nil {
		return &application.UnexpectedError{Message: err.Error()}
	}
	if !resp.IsSuccess() {
		return &application.HTTPError{StatusCode: resp.StatusCode(), Message: resp.Status()}
	}
	return nil
}

var _ application.RemoteDeviceClient = &RestDeviceClient{}
