package scorenotify

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
)

// SqsClient is the part of *sqs.Client the listener needs.
type SqsClient interface {
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
}

type SqsListener struct {
	client   SqsClient
	queueUrl string
	inv      Invalidator
	logger   *slog.Logger

	// pause after a failed receive
	retryDelay time.Duration
}

func NewSqsListener(client SqsClient, queueUrl string, inv Invalidator, logger *slog.Logger) *SqsListener {
	return &SqsListener{
		client:     client,
		queueUrl:   queueUrl,
		inv:        inv,
		logger:     logger.With("listener", "sqs", "queue_url", queueUrl),
		retryDelay: time.Second,
	}
}

// Start long-polls the queue until ctx is cancelled. Every received message
// is deleted before it is handled, so a failing notification is never
// redelivered.
func (l *SqsListener) Start(ctx context.Context) error {
	l.logger.Info("listening for scored participations")
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		output, err := l.client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
			QueueUrl:            aws.String(l.queueUrl),
			MaxNumberOfMessages: 10,
			WaitTimeSeconds:     5,
		})
		if err != nil {
			if errors.Is(err, context.Canceled) || ctx.Err() != nil {
				return nil
			}
			l.logger.Error("failed to receive messages", "error", err)
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(l.retryDelay):
			}
			continue
		}

		for _, msg := range output.Messages {
			if msg.ReceiptHandle != nil {
				_, err := l.client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
					QueueUrl:      aws.String(l.queueUrl),
					ReceiptHandle: msg.ReceiptHandle,
				})
				if err != nil {
					l.logger.Error("failed to delete message", "error", err)
				}
			}
			if msg.Body == nil {
				l.logger.Error("dropping notification without body")
				continue
			}
			handleBody(ctx, l.inv, l.logger, []byte(*msg.Body))
		}
	}
}
