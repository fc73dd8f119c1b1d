package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nats-io/nats.go"

	"fraudstream/internal/domain"
	"fraudstream/pkg/crypto"
)

var _ Sink = (*NATSSink)(nil)

// NATSSink publishes outcomes as JSON. Alerts go to
// <prefix>.<fraud_type> (lowercased), error records to <prefix>.errors.
// When a signer is configured, each message carries an HMAC of its
// payload in the X-Signature header so consumers can verify integrity.
type NATSSink struct {
	conn          *nats.Conn
	subjectPrefix string
	signer        *crypto.Signer
	logger        *slog.Logger
}

func NewNATSSink(url, subjectPrefix string, signer *crypto.Signer, logger *slog.Logger) (*NATSSink, error) {
	if logger == nil {
		logger = slog.Default()
	}

	conn, err := nats.Connect(url,
		nats.ReconnectWait(2*time.Second),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			logger.Warn("nats disconnected", slog.String("error", fmt.Sprintf("%v", err)))
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("nats reconnected", slog.String("url", nc.ConnectedUrl()))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to nats: %w", err)
	}

	return &NATSSink{
		conn:          conn,
		subjectPrefix: subjectPrefix,
		signer:        signer,
		logger:        logger,
	}, nil
}

func (s *NATSSink) Write(ctx context.Context, outcome domain.Outcome) error {
	payload, err := json.Marshal(outcome)
	if err != nil {
		return fmt.Errorf("failed to marshal outcome: %w", err)
	}

	msg := nats.NewMsg(s.subject(outcome))
	msg.Data = payload
	if s.signer != nil {
		msg.Header.Set("X-Signature", s.signer.Sign(payload))
	}

	if err := s.conn.PublishMsg(msg); err != nil {
		return fmt.Errorf("failed to publish outcome: %w", err)
	}
	return nil
}

func (s *NATSSink) subject(outcome domain.Outcome) string {
	switch rec := outcome.(type) {
	case domain.FraudAlert:
		return s.subjectPrefix + "." + strings.ToLower(string(rec.FraudType))
	default:
		return s.subjectPrefix + ".errors"
	}
}

func (s *NATSSink) Close() error {
	if err := s.conn.Drain(); err != nil {
		s.conn.Close()
		return err
	}
	return nil
}
