package application

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type MockMQTTClient struct {
	mock.Mock
}

func (m *MockMQTTClient) Publish(topic string, qos byte, retained bool, msg any) error {
	return m.Called(topic, qos, retained, msg).Error(0)
}

func (m *MockMQTTClient) Subscribe(topic string, qos byte, handler func(msg MQTTMessage)) error {
	return m.Called(topic, qos, handler).Error(0)
}

func (m *MockMQTTClient) Unsubscribe(topic string) error {
	return m.Called(topic).Error(0)
}

func (m *MockMQTTClient) Connect() error {
	return m.Called().Error(0)
}

func (m *MockMQTTClient) Disconnect() {
	m.Called()
}

func (m *MockMQTTClient) IsConnected() bool {
	return m.Called().Bool(0)
}

func (m *MockMQTTClient) Status() MQTTStatus {
	return m.Called().Get(0).(MQTTStatus)
}

var _ MQTTClient = &MockMQTTClient{}

type MockDeviceStore struct {
	mock.Mock
}

func (m *MockDeviceStore) Save(devices []MonitoringDevice) error {
	return m.Called(devices).Error(0)
}

func (m *MockDeviceStore) Load() ([]MonitoringDevice, error) {
	args := m.Called()

	var devices []MonitoringDevice
	if d := args.Get(0); d != nil {
		devices = d.([]MonitoringDevice)
	}
	return devices, args.Error(1)
}

var _ DeviceStore = &MockDeviceStore{}

type MockRemoteDeviceClient struct {
	mock.Mock
}

func (m *MockRemoteDeviceClient) ListDevices(ctx context.Context) ([]MonitoringDevice, error) {
	args := m.Called(ctx)

	var devices []MonitoringDevice
	if d := args.Get(0); d != nil {
		devices = d.([]MonitoringDevice)
	}
	return devices, args.Error(1)
}

func (m *MockRemoteDeviceClient) CreateDevice(ctx context.Context, device MonitoringDevice) error {
	return m.Called(ctx, device).Error(0)
}

var _ RemoteDeviceClient = &MockRemoteDeviceClient{}

type testMessage struct {
	topic   string
	payload []byte
}

func (m testMessage) Topic() string   { return m.topic }
func (m testMessage) Payload() []byte { return m.payload }
