// Package queue hands durable units of work to a backing store for
// asynchronous processing, decoupling request latency from long-running side
// effects such as document scanning.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrQueueUnavailable is returned when the durable backing store cannot
// accept a job after the retry policy is exhausted. The failure propagates
// to the caller; jobs are never silently dropped.
var ErrQueueUnavailable = errors.New("queue unavailable")

// Job is implemented by each kind of background work payload.
type Job interface {
	JobType() string
}

// ScanDocumentJob requests a virus/content scan of an uploaded file.
type ScanDocumentJob struct {
	OrgID  uuid.UUID `json:"org_id"`
	FileID string    `json:"file_id"`
}

func (ScanDocumentJob) JobType() string { return "scan_document" }

// ProvisionBucketJob requests storage provisioning for a new organization.
type ProvisionBucketJob struct {
	OrgID uuid.UUID `json:"org_id"`
}

func (ProvisionBucketJob) JobType() string { return "provision_bucket" }

// envelope is the wire format for queued jobs: a type tag plus the job's own
// fields. Consumers dispatch on the tag.
type envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Encode serializes a job deterministically: struct fields marshal in
// declaration order, so identical jobs produce identical bytes.
func Encode(job Job) ([]byte, error) {
	payload, err := json.Marshal(job)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal job payload: %w", err)
	}

	data, err := json.Marshal(envelope{Type: job.JobType(), Payload: payload})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal job envelope: %w", err)
	}

	return data, nil
}

// Queue accepts durable, serialized units of work. Once Enqueue returns nil
// the job is guaranteed deliverable to a future worker at least once;
// consumers must be idempotent.
type Queue interface {
	Enqueue(ctx context.Context, job Job) error
}
