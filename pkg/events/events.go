// Package events publishes domain events for downstream consumers
// (analytics, notifications). Publishing never fails a request.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

const (
	SubjectDetectionSaved = "krishi.detection.saved"
	SubjectChatSaved      = "krishi.chat.saved"
)

type Publisher interface {
	Publish(ctx context.Context, subject string, payload any) error
	Close() error
}

type DetectionSaved struct {
	ID         uint      `json:"id"`
	UserID     string    `json:"user_id"`
	Disease    string    `json:"disease"`
	Confidence float64   `json:"confidence"`
	At         time.Time `json:"at"`
}

type ChatSaved struct {
	ID        uint      `json:"id"`
	UserID    string    `json:"user_id,omitempty"`
	SessionID string    `json:"session_id"`
	Language  string    `json:"language"`
	Degraded  bool      `json:"translation_degraded"`
	At        time.Time `json:"at"`
}

// NATS publishes JSON payloads on a shared connection.
type NATS struct {
	nc     *nats.Conn
	logger *zap.Logger
}

func NewNATS(url string, logger *zap.Logger) (*NATS, error) {
	nc, err := nats.Connect(url,
		nats.Name("krishi-drishti-backend"),
		nats.Timeout(5*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			logger.Warn("nats disconnected", zap.Error(err))
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Info("nats reconnected", zap.String("url", c.ConnectedUrl()))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	logger.Info("connected to NATS", zap.String("url", nc.ConnectedUrl()))
	return &NATS{nc: nc, logger: logger}, nil
}

func (n *NATS) Publish(_ context.Context, subject string, payload any) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", subject, err)
	}
	if err := n.nc.Publish(subject, b); err != nil {
		return fmt.Errorf("publish %s: %w", subject, err)
	}
	return nil
}

func (n *NATS) Close() error {
	if n.nc != nil && !n.nc.IsClosed() {
		// flush what is buffered, then close
		return n.nc.Drain()
	}
	return nil
}

// Noop drops every event. Used when NATS_URL is empty.
type Noop struct{}

func (Noop) Publish(context.Context, string, any) error { return nil }
func (Noop) Close() error                               { return nil }

// Emit publishes and logs failures instead of returning them.
func Emit(ctx context.Context, p Publisher, logger *zap.Logger, subject string, payload any) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, subject, payload); err != nil {
		logger.Warn("event publish failed", zap.String("subject", subject), zap.Error(err))
	}
}

// Recorder keeps published events in memory for tests.
type Recorder struct {
	mu     sync.Mutex
	Events []Recorded
	Err    error
}

type Recorded struct {
	Subject string
	Payload any
}

func (r *Recorder) Publish(_ context.Context, subject string, payload any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.Events = append(r.Events, Recorded{Subject: subject, Payload: payload})
	return nil
}

func (r *Recorder) Close() error { return nil }

// Subjects lists recorded subjects in publish order.
func (r *Recorder) Subjects() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.Events))
	for i, e := range r.Events {
		out[i] = e.Subject
	}
	return out
}
