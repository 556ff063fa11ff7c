package events

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
)

// Subjects for derived-artifact notifications. Partner-facing clients listen
// here instead of polling.
const (
	SubjectServiceStarted = "coach.service.started"
	SubjectSessionSaved   = "coach.session.saved"
	SubjectAlertCreated   = "coach.alert.created"
	SubjectAdviceCreated  = "coach.advice.created"
)

// Publisher emits JSON events over NATS. A nil Publisher is valid and drops
// every event, so callers never branch on configuration.
type Publisher struct {
	conn   *nats.Conn
	logger *slog.Logger
}

func Connect(url, token string, logger *slog.Logger) (*Publisher, error) {
	opts := []nats.Option{
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(60),
		nats.ReconnectWait(2 * time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("nats disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			logger.Info("nats reconnected")
		}),
	}
	if token != "" {
		opts = append(opts, nats.Token(token))
	}

	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	return &Publisher{conn: nc, logger: logger}, nil
}

func (p *Publisher) Publish(subject string, data any) error {
	if p == nil {
		return nil
	}
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	return p.conn.Publish(subject, payload)
}

func (p *Publisher) Close() {
	if p == nil {
		return
	}
	p.conn.Close()
}
