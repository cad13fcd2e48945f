package queue

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// fakeSQS records sent bodies and fails the first failUntil calls.
type fakeSQS struct {
	sent      []string
	calls     int
	failUntil int
}

func (f *fakeSQS) SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	f.calls++
	if f.calls <= f.failUntil {
		return nil, errors.New("throttled")
	}
	f.sent = append(f.sent, *params.MessageBody)
	return &sqs.SendMessageOutput{}, nil
}

func TestSQSQueueEnqueue(t *testing.T) {
	fake := &fakeSQS{}
	q := NewSQSQueue(fake, "https://sqs.test/queue")

	job := ScanDocumentJob{OrgID: uuid.New(), FileID: "file-1"}
	require.NoError(t, q.Enqueue(context.Background(), job))

	want, err := Encode(job)
	require.NoError(t, err)
	require.Equal(t, []string{string(want)}, fake.sent)
}

func TestSQSQueueRetriesTransientFailures(t *testing.T) {
	fake := &fakeSQS{failUntil: 2}
	q := NewSQSQueue(fake, "https://sqs.test/queue", WithEnqueueTimeout(5*time.Second))

	err := q.Enqueue(context.Background(), ProvisionBucketJob{OrgID: uuid.New()})
	require.NoError(t, err)
	require.Equal(t, 3, fake.calls)
	require.Len(t, fake.sent, 1)
}

func TestSQSQueueExhaustedRetriesSurfaceAsUnavailable(t *testing.T) {
	fake := &fakeSQS{failUntil: 100}
	q := NewSQSQueue(fake, "https://sqs.test/queue",
		WithMaxTries(2),
		WithEnqueueTimeout(5*time.Second),
	)

	err := q.Enqueue(context.Background(), ProvisionBucketJob{OrgID: uuid.New()})
	require.ErrorIs(t, err, ErrQueueUnavailable)
	require.Empty(t, fake.sent)
}
