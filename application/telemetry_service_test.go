package application

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestNewTelemetryService_NoMQTTClient(t *testing.T) {
	service, err := NewTelemetryService(TelemetryServiceParams{})
	require.Error(t, err)
	assert.Nil(t, service)
}

func TestTelemetryService_Start(t *testing.T) {
	mClient := &MockMQTTClient{}

	var readings []Reading
	service, err := NewTelemetryService(TelemetryServiceParams{
		MQTTClient: mClient,
		QoS:        QoSAtLeastOnce,
		OnReading: func(r Reading) {
			readings = append(readings, r)
		},
	})
	require.NoError(t, err)

	var handler func(msg MQTTMessage)
	mClient.On("Connect").Return(nil).Once()
	mClient.On("Subscribe", DefaultTelemetryTopic, QoSAtLeastOnce, mock.Anything).Run(func(args mock.Arguments) {
		handler = args.Get(2).(func(msg MQTTMessage))
	}).Return(nil).Once()

	err = service.Start()
	require.NoError(t, err)
	require.NotNil(t, handler)

	handler(testMessage{topic: DefaultTelemetryTopic, payload: []byte(`{"temperature": 20.5, "humidity": 41, "pressure": 1012.25, "luminosity": 320}`)})
	handler(testMessage{topic: DefaultTelemetryTopic, payload: []byte(`{"temperature": "hot"}`)})
	handler(testMessage{topic: DefaultTelemetryTopic, payload: []byte(`{"temperature": 21, "humidity": 40, "pressure": 1012, "luminosity": 310}`)})

	assert.Equal(t, []Reading{
		{Temperature: 20.5, Humidity: 41, Pressure: 1012.25, Luminosity: 320},
		{Temperature: 21, Humidity: 40, Pressure: 1012, Luminosity: 310},
	}, readings)

	mClient.On("IsConnected").Return(true)
	stats := service.(*telemetryService).Stats()
	assert.Equal(t, TelemetryStats{Received: 3, Dropped: 1, Connected: true}, stats)

	mClient.AssertExpectations(t)
}

func TestTelemetryService_Start_ConnectError(t *testing.T) {
	mClient := &MockMQTTClient{}

	service, err := NewTelemetryService(TelemetryServiceParams{MQTTClient: mClient})
	require.NoError(t, err)

	mClient.On("Connect").Return(fmt.Errorf("not authorized")).Once()

	err = service.Start()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConnectionFailure)

	mClient.AssertExpectations(t)
	mClient.AssertNotCalled(t, "Subscribe", mock.Anything, mock.Anything, mock.Anything)
}

func TestTelemetryService_Start_SubscribeError(t *testing.T) {
	mClient := &MockMQTTClient{}

	service, err := NewTelemetryService(TelemetryServiceParams{MQTTClient: mClient, Topic: "rooms/a"})
	require.NoError(t, err)

	mClient.On("Connect").Return(nil).Once()
	mClient.On("Subscribe", "rooms/a", byte(0), mock.Anything).Return(fmt.Errorf("subscribe timeout")).Once()

	err = service.Start()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSubscribeFailure)

	// nothing to unsubscribe, the connection is still closed
	mClient.On("Disconnect").Return().Once()
	service.Stop()

	mClient.AssertExpectations(t)
	mClient.AssertNotCalled(t, "Unsubscribe", mock.Anything)
}

func TestTelemetryService_Stop(t *testing.T) {
	mClient := &MockMQTTClient{}

	service, err := NewTelemetryService(TelemetryServiceParams{MQTTClient: mClient})
	require.NoError(t, err)

	mClient.On("Connect").Return(nil).Once()
	mClient.On("Subscribe", DefaultTelemetryTopic, byte(0), mock.Anything).Return(nil).Once()
	mClient.On("Unsubscribe", DefaultTelemetryTopic).Return(nil).Once()
	mClient.On("Disconnect").Return().Once()

	require.NoError(t, service.Start())

	service.Stop()
	service.Stop()

	mClient.AssertExpectations(t)
}

func TestTelemetryService_Run(t *testing.T) {
	mClient := &MockMQTTClient{}

	service, err := NewTelemetryService(TelemetryServiceParams{
		MQTTClient:     mClient,
		ReportInterval: 10 * time.Millisecond,
	})
	require.NoError(t, err)

	mClient.On("Connect").Return(nil).Once()
	mClient.On("Subscribe", DefaultTelemetryTopic, byte(0), mock.Anything).Return(nil).Once()
	mClient.On("IsConnected").Return(true).Maybe()
	mClient.On("Unsubscribe", DefaultTelemetryTopic).Return(nil).Once()
	mClient.On("Disconnect").Return().Once()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err = service.Run(ctx)
	require.NoError(t, err)

	mClient.AssertExpectations(t)
}

func TestTelemetryService_Run_ConnectError(t *testing.T) {
	mClient := &MockMQTTClient{}

	service, err := NewTelemetryService(TelemetryServiceParams{MQTTClient: mClient})
	require.NoError(t, err)

	mClient.On("Connect").Return(fmt.Errorf("refused")).Once()

	err = service.Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConnectionFailure)

	mClient.AssertExpectations(t)
}
