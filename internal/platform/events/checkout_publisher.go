package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"cloud.google.com/go/pubsub"

	domain "github.com/eventloft/api/internal/domain"
)

// PubSubCheckoutPublisher hands finalized carts to the order-creation service
// over a Pub/Sub topic.
type PubSubCheckoutPublisher struct {
	topic   *pubsub.Topic
	marshal func(any) ([]byte, error)
}

// NewPubSubCheckoutPublisher constructs a Pub/Sub backed checkout publisher.
func NewPubSubCheckoutPublisher(topic *pubsub.Topic) (*PubSubCheckoutPublisher, error) {
	if topic == nil {
		return nil, errors.New("checkout publisher: topic is required")
	}
	return &PubSubCheckoutPublisher{
		topic:   topic,
		marshal: json.Marshal,
	}, nil
}

// PublishCheckout enqueues the submission and returns the broker message ID.
func (p *PubSubCheckoutPublisher) PublishCheckout(ctx context.Context, submission domain.CheckoutSubmission) (string, error) {
	if p == nil || p.topic == nil {
		return "", errors.New("checkout publisher: not initialised")
	}

	data, err := p.marshal(submission)
	if err != nil {
		return "", fmt.Errorf("marshal checkout submission: %w", err)
	}

	attrs := make(map[string]string)
	setAttr(attrs, "submissionId", submission.ID)
	setAttr(attrs, "cartKey", submission.CartKey)
	setAttr(attrs, "userId", submission.UserID)
	setAttr(attrs, "sessionId", submission.SessionID)
	setAttr(attrs, "total", domain.FormatCents(submission.Totals.Total))

	result := p.topic.Publish(ctx, &pubsub.Message{
		Data:       data,
		Attributes: attrs,
	})

	id, err := result.Get(ctx)
	if err != nil {
		return "", fmt.Errorf("publish checkout submission: %w", err)
	}
	return id, nil
}

func setAttr(attrs map[string]string, key string, value string) {
	if v := strings.TrimSpace(value); v != "" {
		attrs[key] = v
	}
}
