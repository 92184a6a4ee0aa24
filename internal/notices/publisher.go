package notices

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"
)

const defaultPublishTimeout = 30 * time.Second

// DigestMessage is the payload handed to the delivery pipeline; an email
// sender downstream consumes it.
type DigestMessage struct {
	UserID      uuid.UUID `json:"user_id"`
	Body        string    `json:"body"`
	GeneratedAt time.Time `json:"generated_at"`
}

type publishResult interface {
	Get(ctx context.Context) (string, error)
}

type publisher interface {
	Publish(ctx context.Context, msg *gcppubsub.Message) publishResult
}

// Publisher hands rendered digests to the notification topic.
type Publisher struct {
	pub publisher
	now func() time.Time
}

// NewPublisher wraps a Pub/Sub publisher for digest hand-off.
func NewPublisher(p *gcppubsub.Publisher) (*Publisher, error) {
	if p == nil {
		return nil, fmt.Errorf("notices: pubsub publisher is required")
	}
	return &Publisher{pub: &gcpPublisher{Publisher: p}, now: time.Now}, nil
}

// PublishDigest sends one user's digest and waits for the server ack.
func (p *Publisher) PublishDigest(ctx context.Context, userID uuid.UUID, body string) error {
	payload, err := json.Marshal(DigestMessage{
		UserID:      userID,
		Body:        body,
		GeneratedAt: p.now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("encoding digest for user %s: %w", userID, err)
	}

	publishCtx, cancel := context.WithTimeout(ctx, defaultPublishTimeout)
	defer cancel()

	result := p.pub.Publish(publishCtx, &gcppubsub.Message{
		Data: payload,
		Attributes: map[string]string{
			"user_id": userID.String(),
		},
	})
	if result == nil {
		return errors.New("digest publisher returned nil result")
	}
	if _, err := result.Get(publishCtx); err != nil {
		return fmt.Errorf("publishing digest for user %s: %w", userID, err)
	}
	return nil
}

type gcpPublisher struct {
	*gcppubsub.Publisher
}

func (p *gcpPublisher) Publish(ctx context.Context, msg *gcppubsub.Message) publishResult {
	if p == nil || p.Publisher == nil {
		return nil
	}
	return p.Publisher.Publish(ctx, msg)
}
