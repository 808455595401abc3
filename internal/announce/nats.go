package announce

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/stationops/nowplayd/pkg/logger"
)

// NATSAnnouncer publishes every update to a NATS subject.
type NATSAnnouncer struct {
	conn    *nats.Conn
	subject string
}

// NewNATS connects to the NATS server. An empty URL means the announcer is
// disabled and nil is returned.
func NewNATS(url, subject string) (*NATSAnnouncer, error) {
	if url == "" {
		return nil, nil
	}

	opts := []nats.Option{
		nats.Name("nowplayd"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2 * time.Second),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			logger.Log.Warnf("NATS disconnected: %v", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Log.Infof("NATS reconnected to %v", nc.ConnectedUrl())
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			logger.Log.Warn("NATS connection closed")
		}),
	}

	conn, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS at %s: %w", url, err)
	}

	logger.Log.Infof("NATS client connected to %s", conn.ConnectedUrl())

	return &NATSAnnouncer{
		conn:    conn,
		subject: subject,
	}, nil
}

func (a *NATSAnnouncer) Name() string { return "nats" }

// Announce publishes the update to the configured subject.
func (a *NATSAnnouncer) Announce(update Update) error {
	data, err := json.Marshal(update)
	if err != nil {
		return fmt.Errorf("failed to marshal update: %w", err)
	}
	return a.conn.Publish(a.subject, data)
}

// Close drains pending publishes and closes the connection.
func (a *NATSAnnouncer) Close() error {
	if err := a.conn.Flush(); err != nil {
		logger.Log.Warnf("NATS flush failed: %v", err)
	}
	a.conn.Close()
	return nil
}
