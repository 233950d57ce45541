package webhooklog

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go"
)

// DefaultSubjectPrefix is used when no prefix is configured.
const DefaultSubjectPrefix = "kaizen.webhooks"

type publisher interface {
	Publish(subject string, data []byte) error
}

// NATSPublisher publishes each entry on "<prefix>.<source>".
type NATSPublisher struct {
	conn   publisher
	close  func()
	prefix string
}

// NewNATSPublisher connects to url.
func NewNATSPublisher(url, prefix string) (*NATSPublisher, error) {
	conn, err := nats.Connect(url, nats.Name("kaizen-webhooks"))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	slog.Info("NATS publisher connected", "url", url, "prefix", subjectPrefix(prefix))
	return &NATSPublisher{conn: conn, close: conn.Close, prefix: subjectPrefix(prefix)}, nil
}

func subjectPrefix(p string) string {
	if p == "" {
		return DefaultSubjectPrefix
	}
	return p
}

// Subject returns the subject used for source.
func (p *NATSPublisher) Subject(source string) string {
	return p.prefix + "." + source
}

func (p *NATSPublisher) Record(_ context.Context, e Entry) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to marshal entry: %w", err)
	}
	if err := p.conn.Publish(p.Subject(e.SourceName), data); err != nil {
		return fmt.Errorf("failed to publish entry: %w", err)
	}
	return nil
}

// Close drops the connection.
func (p *NATSPublisher) Close() {
	if p.close != nil {
		p.close()
	}
}
