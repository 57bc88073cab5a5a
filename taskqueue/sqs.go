// taskqueue/sqs.go
package taskqueue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
)

// SQSQueue is a durable, delay-capable, at-least-once task channel backed by
// one SQS queue.
type SQSQueue struct {
	client *sqs.Client
	url    string
}

// Message is one received task, held until Delete acknowledges it. A message
// that is never deleted is redelivered by SQS.
type Message struct {
	Body          []byte
	ReceiptHandle string
}

// NewSQSQueue resolves (or creates) the named queue.
func NewSQSQueue(ctx context.Context, cfg aws.Config, name string) (*SQSQueue, error) {
	client := sqs.NewFromConfig(cfg)

	out, err := client.GetQueueUrl(ctx, &sqs.GetQueueUrlInput{QueueName: aws.String(name)})
	if err != nil {
		var notFound *types.QueueDoesNotExist
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to resolve queue %s: %w", name, err)
		}
		created, cerr := client.CreateQueue(ctx, &sqs.CreateQueueInput{QueueName: aws.String(name)})
		if cerr != nil {
			return nil, fmt.Errorf("failed to create queue %s: %w", name, cerr)
		}
		return &SQSQueue{client: client, url: aws.ToString(created.QueueUrl)}, nil
	}
	return &SQSQueue{client: client, url: aws.ToString(out.QueueUrl)}, nil
}

// Send enqueues a task, JSON-encoded, delivered no sooner than delay from now.
func (q *SQSQueue) Send(ctx context.Context, payload any, delay time.Duration) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode task: %w", err)
	}

	// SQS only supports whole-second delays up to 15 minutes.
	secs := int32(delay / time.Second)
	if secs < 0 {
		secs = 0
	}
	if secs > 900 {
		secs = 900
	}

	_, err = q.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:     aws.String(q.url),
		MessageBody:  aws.String(string(body)),
		DelaySeconds: secs,
	})
	if err != nil {
		return fmt.Errorf("failed to send task: %w", err)
	}
	return nil
}

// Receive long-polls for up to wait and returns at most max messages.
func (q *SQSQueue) Receive(ctx context.Context, max int32, wait time.Duration) ([]Message, error) {
	out, err := q.client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
		QueueUrl:            aws.String(q.url),
		MaxNumberOfMessages: max,
		WaitTimeSeconds:     int32(wait / time.Second),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to receive tasks: %w", err)
	}

	msgs := make([]Message, 0, len(out.Messages))
	for _, m := range out.Messages {
		msgs = append(msgs, Message{
			Body:          []byte(aws.ToString(m.Body)),
			ReceiptHandle: aws.ToString(m.ReceiptHandle),
		})
	}
	return msgs, nil
}

// Delete acknowledges a message so it is not redelivered.
func (q *SQSQueue) Delete(ctx context.Context, receiptHandle string) error {
	_, err := q.client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(q.url),
		ReceiptHandle: aws.String(receiptHandle),
	})
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return nil
}
