package telemetry

import (
	"context"
	"net/url"
	"time"

	"github.com/eclipse/paho.golang/autopaho"
	"github.com/eclipse/paho.golang/paho"

	"acoustimon/internal/errors"
	"acoustimon/internal/identity"
	"acoustimon/internal/logger"
)

const (
	mqttKeepAliveSeconds = 30
	mqttQoS              = 1
)

// MQTTUploader publishes payloads to a broker topic. The session layer keeps
// the connection up in the background; an upload either publishes within the
// caller's deadline or fails for this cycle.
type MQTTUploader struct {
	cm    *autopaho.ConnectionManager
	topic string
}

func NewMQTTUploader(ctx context.Context, brokerURL, topic string, id identity.Identity) (*MQTTUploader, error) {
	errFactory := errors.New()

	u, err := url.Parse(brokerURL)
	if err != nil {
		return nil, errFactory.Wrap(ErrInvalidEndpoint, err)
	}

	cfg := autopaho.ClientConfig{
		ServerUrls: []*url.URL{u},
		KeepAlive:  mqttKeepAliveSeconds,
		OnConnectionUp: func(_ *autopaho.ConnectionManager, _ *paho.Connack) {
			logger.Info().Str("broker", brokerURL).Msg("Telemetry broker connected")
		},
		OnConnectError: func(err error) {
			logger.Warn().Err(err).Msg("Telemetry broker connection failed")
		},
		ClientConfig: paho.ClientConfig{
			ClientID: id.ID,
			OnClientError: func(err error) {
				logger.Warn().Err(err).Msg("Telemetry broker client error")
			},
		},
	}

	cm, err := autopaho.NewConnection(ctx, cfg)
	if err != nil {
		return nil, errFactory.Wrap(ErrConnectFailed, err)
	}

	return &MQTTUploader{
		cm:    cm,
		topic: topic,
	}, nil
}

func (u *MQTTUploader) Upload(ctx context.Context, payload []byte) error {
	errFactory := errors.New()

	if err := u.cm.AwaitConnection(ctx); err != nil {
		return errFactory.Wrap(ErrConnectFailed, err)
	}

	_, err := u.cm.Publish(ctx, &paho.Publish{
		QoS:     mqttQoS,
		Topic:   u.topic,
		Payload: payload,
	})
	if err != nil {
		return errFactory.Wrap(ErrUploadFailed, err)
	}

	return nil
}

func (u *MQTTUploader) Close() error {
	errFactory := errors.New()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if err := u.cm.Disconnect(ctx); err != nil {
		return errFactory.Wrap(ErrShutdownFailed, err)
	}

	return nil
}
