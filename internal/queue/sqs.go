package queue

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/cenkalti/backoff/v5"
	"github.com/rs/zerolog/log"
)

const (
	defaultEnqueueTimeout = 10 * time.Second
	defaultMaxTries       = 4
)

// sqsAPI is the subset of the SQS client used by the queue.
type sqsAPI interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// SQSQueue implements Queue using AWS SQS. SQS provides the durability and
// at-least-once delivery contract; this type adds serialization, a bounded
// timeout and a capped retry policy around the send.
type SQSQueue struct {
	client   sqsAPI
	queueURL string
	timeout  time.Duration
	maxTries uint
}

// SQSOption configures an SQSQueue.
type SQSOption func(*SQSQueue)

// WithEnqueueTimeout bounds the total time spent on one enqueue, retries
// included. Timeout is reported as ErrQueueUnavailable.
func WithEnqueueTimeout(d time.Duration) SQSOption {
	return func(q *SQSQueue) { q.timeout = d }
}

// WithMaxTries sets how many send attempts are made before giving up.
func WithMaxTries(n uint) SQSOption {
	return func(q *SQSQueue) { q.maxTries = n }
}

// NewSQSQueue creates an SQS-backed queue for the given queue URL.
func NewSQSQueue(client sqsAPI, queueURL string, opts ...SQSOption) *SQSQueue {
	q := &SQSQueue{
		client:   client,
		queueURL: queueURL,
		timeout:  defaultEnqueueTimeout,
		maxTries: defaultMaxTries,
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Enqueue serializes the job and sends it to SQS, retrying transient
// failures with exponential backoff. When the retry policy is exhausted or
// the bounded timeout elapses, the failure surfaces as ErrQueueUnavailable
// so the caller can decide whether to retry the triggering operation.
func (q *SQSQueue) Enqueue(ctx context.Context, job Job) error {
	body, err := Encode(job)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, q.timeout)
	defer cancel()

	operation := func() (struct{}, error) {
		_, err := q.client.SendMessage(ctx, &sqs.SendMessageInput{
			QueueUrl:    aws.String(q.queueURL),
			MessageBody: aws.String(string(body)),
		})
		return struct{}{}, err
	}

	_, err = backoff.Retry(ctx, operation,
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxTries(q.maxTries),
	)
	if err != nil {
		log.Error().Err(err).Str("job_type", job.JobType()).Msg("Failed to send job to SQS")
		return fmt.Errorf("%w: %v", ErrQueueUnavailable, err)
	}

	log.Debug().Str("job_type", job.JobType()).Msg("Job enqueued")
	return nil
}
