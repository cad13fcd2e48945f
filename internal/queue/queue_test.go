package queue

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestEncodeIsDeterministic(t *testing.T) {
	job := ScanDocumentJob{OrgID: uuid.MustParse("0198d3a0-0000-7000-8000-000000000001"), FileID: "file-1"}

	first, err := Encode(job)
	require.NoError(t, err)

	for range 5 {
		again, err := Encode(job)
		require.NoError(t, err)
		require.Equal(t, first, again)
	}
}

func TestEncodeEnvelope(t *testing.T) {
	orgID := uuid.New()
	data, err := Encode(ProvisionBucketJob{OrgID: orgID})
	require.NoError(t, err)

	var env struct {
		Type    string          `json:"type"`
		Payload json.RawMessage `json:"payload"`
	}
	require.NoError(t, json.Unmarshal(data, &env))
	require.Equal(t, "provision_bucket", env.Type)

	var job ProvisionBucketJob
	require.NoError(t, json.Unmarshal(env.Payload, &job))
	require.Equal(t, orgID, job.OrgID)
}

func TestMemoryQueueFIFO(t *testing.T) {
	ctx := context.Background()
	q := NewMemoryQueue()

	jobs := []Job{
		ScanDocumentJob{OrgID: uuid.New(), FileID: "first"},
		ScanDocumentJob{OrgID: uuid.New(), FileID: "second"},
		ProvisionBucketJob{OrgID: uuid.New()},
	}
	for _, job := range jobs {
		require.NoError(t, q.Enqueue(ctx, job))
	}
	require.Equal(t, 3, q.Len())

	drained := q.Drain()
	require.Len(t, drained, 3)
	require.Zero(t, q.Len())

	for i, job := range jobs {
		want, err := Encode(job)
		require.NoError(t, err)
		require.Equal(t, want, drained[i])
	}
}
