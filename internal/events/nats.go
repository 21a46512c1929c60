package events

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/nats-io/nats.go"

	"git.home.luguber.info/inful/sitepress/internal/foundation/errors"
)

// Publisher is the subset of *nats.Conn used by NATSSink.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// NATSSink mirrors events to NATS as JSON on "<subject>.<event name>".
type NATSSink struct {
	pub     Publisher
	subject string
	close   func()
}

// DefaultSubject is used when no subject is configured.
const DefaultSubject = "sitepress.posts"

// ConnectNATS dials url and returns a sink publishing under subject.
func ConnectNATS(url, subject string) (*NATSSink, error) {
	conn, err := nats.Connect(url, nats.Name("sitepress"))
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "failed to connect to NATS").
			WithContext("url", url).
			Build()
	}
	slog.Info("NATS event sink connected", "url", url, "subject", subject)
	s := NewNATSSink(conn, subject)
	s.close = conn.Close
	return s, nil
}

// NewNATSSink wraps an existing publisher.
func NewNATSSink(pub Publisher, subject string) *NATSSink {
	if subject == "" {
		subject = DefaultSubject
	}
	return &NATSSink{pub: pub, subject: subject}
}

func (s *NATSSink) Name() string { return "nats" }

// Subject returns the subject evt is published on.
func (s *NATSSink) Subject(evt Event) string {
	return s.subject + "." + evt.EventName()
}

func (s *NATSSink) Deliver(ctx context.Context, evt Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(evt)
	if err != nil {
		return errors.WrapError(err, errors.CategoryInternal, "failed to marshal event").
			WithContext("event", evt.EventName()).
			Build()
	}
	return s.pub.Publish(s.Subject(evt), data)
}

// Close closes the underlying connection when the sink owns it.
func (s *NATSSink) Close() {
	if s.close != nil {
		s.close()
	}
}
