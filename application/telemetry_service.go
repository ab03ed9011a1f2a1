package application

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultTelemetryTopic = "rooms/sensors/data"
	// QoSAtLeastOnce is MQTT QoS 1.
	QoSAtLeastOnce = byte(1)

	DefaultReportInterval = 30 * time.Second
)

type TelemetryService interface {
	// Start connects and subscribes. A subscribe failure leaves the
	// connection open and is reported as ErrSubscribeFailure.
	Start() error
	// Stop unsubscribes and closes the connection. Safe to call more than once.
	Stop()
	// Run starts the service, reports counters periodically and stops when
	// ctx is done.
	Run(ctx context.Context) error
}

type TelemetryStats struct {
	Received  uint64
	Dropped   uint64
	Connected bool
}

type TelemetryServiceParams struct {
	MQTTClient MQTTClient

	Topic string
	QoS   byte

	OnReading func(r Reading)

	ReportInterval time.Duration

	Log zerolog.Logger
}

func (p *TelemetryServiceParams) EnsureDefaults() {
	if p.Topic == "" {
		p.Topic = DefaultTelemetryTopic
	}
	if p.ReportInterval == 0 {
		p.ReportInterval = DefaultReportInterval
	}
	if p.OnReading == nil {
		p.OnReading = func(Reading) {}
	}
}

type telemetryService struct {
	params TelemetryServiceParams

	received   uint64
	dropped    uint64
	subscribed atomic.Bool

	stopOnce sync.Once

	log zerolog.Logger
}

func NewTelemetryService(params TelemetryServiceParams) (TelemetryService, error) {
	if params.MQTTClient == nil {
		return nil, fmt.Errorf("MQTTClient is nil")
	}
	params.EnsureDefaults()
	return &telemetryService{params: params, log: params.Log}, nil
}

func (t *telemetryService) Start() error {
	if err := t.params.MQTTClient.Connect(); err != nil {
		return fmt.Errorf("%w: %v", ErrConnectionFailure, err)
	}

	err := t.params.MQTTClient.Subscribe(t.params.Topic, t.params.QoS, t.handleMessage)
	if err != nil {
		t.log.Warn().Err(err).Str("topic", t.params.Topic).Msg("subscribe failed")
		return fmt.Errorf("%w: %v", ErrSubscribeFailure, err)
	}
	t.subscribed.Store(true)

	t.log.Info().Str("topic", t.params.Topic).Uint8("qos", t.params.QoS).Msg("subscribed")
	return nil
}

func (t *telemetryService) Stop() {
	t.stopOnce.Do(func() {
		if t.subscribed.Load() {
			if err := t.params.MQTTClient.Unsubscribe(t.params.Topic); err != nil {
				t.log.Warn().Err(err).Str("topic", t.params.Topic).Msg("unsubscribe failed")
			}
			t.subscribed.Store(false)
		}
		t.params.MQTTClient.Disconnect()
		t.log.Info().Msg("telemetry stopped")
	})
}

func (t *telemetryService) Stats() TelemetryStats {
	return TelemetryStats{
		Received:  atomic.LoadUint64(&t.received),
		Dropped:   atomic.LoadUint64(&t.dropped),
		Connected: t.params.MQTTClient.IsConnected(),
	}
}

func (t *telemetryService) handleMessage(msg MQTTMessage) {
	atomic.AddUint64(&t.received, 1)

	r, err := Project(msg.Payload())
	if err != nil {
		atomic.AddUint64(&t.dropped, 1)
		t.log.Debug().Err(err).Str("topic", msg.Topic()).Msg("payload dropped")
		return
	}
	t.params.OnReading(r)
}

func (t *telemetryService) Run(ctx context.Context) error {
	if err := t.Start(); err != nil && !errors.Is(err, ErrSubscribeFailure) {
		return err
	}

	g := errgroup.Group{}

	// release the subscription on shutdown
	g.Go(func() error {
		<-ctx.Done()
		t.Stop()
		return nil
	})

	// telemetry reporter
	g.Go(func() error {
		ticker := time.NewTicker(t.params.ReportInterval)
		defer ticker.Stop()

		last := TelemetryStats{}

	ReporterLoop:
		for {
			select {
			case <-ctx.Done():
				break ReporterLoop
			case <-ticker.C:
				stats := t.Stats()
				t.log.Info().
					Uint64("received", stats.Received-last.Received).
					Uint64("dropped", stats.Dropped-last.Dropped).
					Bool("is_connected", stats.Connected).
					Msg("telemetry report")
				last = stats
			}
		}

		return nil
	})

	return g.Wait()
}
