package adapters

import (
	"crypto/tls"
	"fmt"
	"sensor-monitor/application"
	"sync"
	"sync/atomic"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog"
)

const (
	MQTTDefaultConnectTimeout     = 30 * time.Second
	MQTTDefaultPublishTimeout     = 5 * time.Second
	MQTTDefaultSubscribeTimeout   = 5 * time.Second
	MQTTDefaultDisconnectQuiesce  = 250
	MQTTDefaultUnsubscribeTimeout = 2 * time.Second
)

var (
	ErrMQTTNotConnected       = fmt.Errorf("not connected")
	ErrMQTTConnectTimeout     = fmt.Errorf("connect timeout")
	ErrMQTTPublishTimeout     = fmt.Errorf("publish timeout")
	ErrMQTTSubscribeTimeout   = fmt.Errorf("subscribe timeout")
	ErrMQTTUnsubscribeTimeout = fmt.Errorf("unsubscribe timeout")
)

type MQTTClientParams struct {
	ClientID string
	Username string
	Password string
	Host     string
	Port     int
	TLS      bool

	ConnectTimeout     time.Duration
	PublishTimeout     time.Duration
	SubscribeTimeout   time.Duration
	UnsubscribeTimeout time.Duration

	NewClientFunc func(options *mqtt.ClientOptions) mqtt.Client

	Log zerolog.Logger
}

func (m *MQTTClientParams) EnsureDefaults() {
	if m.ConnectTimeout == 0 {
		m.ConnectTimeout = MQTTDefaultConnectTimeout
	}

	if m.PublishTimeout == 0 {
		m.PublishTimeout = MQTTDefaultPublishTimeout
	}

	if m.SubscribeTimeout == 0 {
		m.SubscribeTimeout = MQTTDefaultSubscribeTimeout
	}

	if m.UnsubscribeTimeout == 0 {
		m.UnsubscribeTimeout = MQTTDefaultUnsubscribeTimeout
	}

	if m.NewClientFunc == nil {
		m.NewClientFunc = mqtt.NewClient
	}
}

// BrokerURL is ssl://host:port with TLS, tcp://host:port without.
func (m *MQTTClientParams) BrokerURL() string {
	scheme := "tcp"
	if m.TLS {
		scheme = "ssl"
	}
	return fmt.Sprintf("%s://%s:%d", scheme, m.Host, m.Port)
}

type MQTTClient struct {
	params MQTTClientParams

	client mqtt.Client

	connected          uint64
	msgCount           uint64
	msgCountUpdateTime atomic.Pointer[time.Time]

	topics map[string]struct{}
	mu     sync.Mutex

	log zerolog.Logger
}

func NewMQTTClient(params MQTTClientParams) *MQTTClient {
	params.EnsureDefaults()

	m := &MQTTClient{params: params, topics: map[string]struct{}{}, log: params.Log}
	m.client = m.newMqttClient()

	t := time.Unix(0, 0)
	m.msgCountUpdateTime.Store(&t)

	return m
}

func (m *MQTTClient) Connect() error {
	if atomic.LoadUint64(&m.connected) == 1 {
		return nil
	}

	tc := time.NewTimer(m.params.ConnectTimeout)
	defer tc.Stop()

	token := m.client.Connect()
	select {
	case <-tc.C:
		return ErrMQTTConnectTimeout
	case <-token.Done():
		if token.Error() != nil {
			return token.Error()
		}
	}

	atomic.StoreUint64(&m.connected, 1)
	return nil
}

func (m *MQTTClient) IsConnected() bool {
	if atomic.LoadUint64(&m.connected) == 0 {
		return false
	}
	return true
}

func (m *MQTTClient) Status() application.MQTTStatus {
	return application.MQTTStatus{
		MessageCount:      atomic.LoadUint64(&m.msgCount),
		LastTimePublished: *m.msgCountUpdateTime.Load(),
		Connected:         m.IsConnected(),
	}
}

func (m *MQTTClient) Publish(topic string, qos byte, retained bool, msg any) error {
	if !m.IsConnected() {
		return ErrMQTTNotConnected
	}

	tc := time.NewTimer(m.params.PublishTimeout)
	defer tc.Stop()

	token := m.client.Publish(topic, qos, retained, msg)
	select {
	case <-tc.C:
		return ErrMQTTPublishTimeout
	case <-token.Done():
		if token.Error() != nil {
			return token.Error()
		}
	}

	t := time.Now()
	m.msgCountUpdateTime.Store(&t)
	atomic.AddUint64(&m.msgCount, 1)
	return nil
}

func (m *MQTTClient) Subscribe(topic string, qos byte, handler func(msg application.MQTTMessage)) error {
	if !m.IsConnected() {
		return ErrMQTTNotConnected
	}

	token := m.client.Subscribe(topic, qos, func(client mqtt.Client, msg mqtt.Message) {
		handler(msg)
	})
	if !token.WaitTimeout(m.params.SubscribeTimeout) {
		return ErrMQTTSubscribeTimeout
	}
	if token.Error() != nil {
		return token.Error()
	}

	m.mu.Lock()
	m.topics[topic] = struct{}{}
	m.mu.Unlock()

	m.log.Debug().Str("topic", topic).Msg("subscribed")
	return nil
}

func (m *MQTTClient) Unsubscribe(topic string) error {
	m.mu.Lock()
	_, ok := m.topics[topic]
	delete(m.topics, topic)
	m.mu.Unlock()

	if !ok || !m.IsConnected() {
		return nil
	}

	token := m.client.Unsubscribe(topic)
	if !token.WaitTimeout(m.params.UnsubscribeTimeout) {
		return ErrMQTTUnsubscribeTimeout
	}
	return token.Error()
}

func (m *MQTTClient) Disconnect() {
	m.client.Disconnect(MQTTDefaultDisconnectQuiesce)
	atomic.StoreUint64(&m.connected, 0)
	m.log.Info().Msg("disconnected")
}

func (m *MQTTClient) PublishHandler(client mqtt.Client, msg mqtt.Message) {
	m.log.Debug().Str("topic", msg.Topic()).Msg("unrouted message")
}

func (m *MQTTClient) OnConnect(client mqtt.Client) {
	m.log.Info().Msgf("connected to %s", m.params.BrokerURL())
	atomic.StoreUint64(&m.connected, 1)
}

func (m *MQTTClient) OnConnectionLost(client mqtt.Client, err error) {
	m.log.Warn().Msgf("connection lost: %v", err)
	atomic.StoreUint64(&m.connected, 0)
}

func (m *MQTTClient) newMqttClient() mqtt.Client {
	opts := mqtt.NewClientOptions()

	opts.AddBroker(m.params.BrokerURL())
	opts.SetClientID(m.params.ClientID)
	opts.SetUsername(m.params.Username)
	opts.SetPassword(m.params.Password)
	if m.params.TLS {
		opts.SetTLSConfig(&tls.Config{MinVersion: tls.VersionTLS12})
	}

	// a lost connection stays lost until the user connects again
	opts.SetAutoReconnect(false)
	opts.SetConnectRetry(false)

	opts.SetDefaultPublishHandler(m.PublishHandler)
	opts.OnConnect = m.OnConnect
	opts.OnConnectionLost = m.OnConnectionLost

	return m.params.NewClientFunc(opts)
}

var _ application.MQTTClient = &MQTTClient{}
