// Package queue hands inbound events to the events worker through SQS.
package queue

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqsTypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/google/uuid"

	"omc/internal/types"
)

// Message attribute names set on every published event.
const (
	AttrRequestID = "request_id"
	AttrChannel   = "kanaal"
)

// SQSSender abstracts the SQS operations of the publisher for testability.
// Production code uses the *sqs.Client from aws-sdk-go-v2.
type SQSSender interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
	GetQueueAttributes(ctx context.Context, params *sqs.GetQueueAttributesInput, optFns ...func(*sqs.Options)) (*sqs.GetQueueAttributesOutput, error)
}

// EventPublisher enqueues raw notification events. The body is forwarded
// unchanged so the worker decodes exactly what the event source sent.
type EventPublisher struct {
	client   SQSSender
	queueURL string
	logger   *slog.Logger
}

// NewEventPublisher creates an EventPublisher for queueURL.
func NewEventPublisher(client SQSSender, queueURL string, logger *slog.Logger) *EventPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &EventPublisher{client: client, queueURL: queueURL, logger: logger}
}

// Publish enqueues raw and returns the SQS message id. A request id is
// generated when ctx carries none.
func (p *EventPublisher) Publish(ctx context.Context, event types.NotificationEvent, raw []byte) (string, error) {
	requestID := types.GetRequestID(ctx)
	if requestID == "" {
		requestID = uuid.NewString()
	}

	input := &sqs.SendMessageInput{
		QueueUrl:    aws.String(p.queueURL),
		MessageBody: aws.String(string(raw)),
		MessageAttributes: map[string]sqsTypes.MessageAttributeValue{
			AttrRequestID: {
				DataType:    aws.String("String"),
				StringValue: aws.String(requestID),
			},
			AttrChannel: {
				DataType:    aws.String("String"),
				StringValue: aws.String(string(event.Channel)),
			},
		},
	}

	out, err := p.client.SendMessage(ctx, input)
	if err != nil {
		return "", types.NewAppError(
			types.ErrCodeInternalQueue,
			fmt.Sprintf("failed to enqueue event to %s", p.queueURL),
			err,
		)
	}

	messageID := aws.ToString(out.MessageId)
	p.logger.InfoContext(ctx, "event enqueued",
		"queue_url", p.queueURL,
		"message_id", messageID,
		"request_id", requestID,
		"channel", event.Channel,
		"resource", event.Resource,
		"action", event.Action,
	)
	return messageID, nil
}

// Name identifies the publisher as a health probe.
func (p *EventPublisher) Name() string {
	return "sqs"
}

// Check verifies that the queue exists and is reachable.
func (p *EventPublisher) Check(ctx context.Context) error {
	_, err := p.client.GetQueueAttributes(ctx, &sqs.GetQueueAttributesInput{
		QueueUrl:       aws.String(p.queueURL),
		AttributeNames: []sqsTypes.QueueAttributeName{sqsTypes.QueueAttributeNameApproximateNumberOfMessages},
	})
	if err != nil {
		return fmt.Errorf("queue %s unreachable: %w", p.queueURL, err)
	}
	return nil
}
