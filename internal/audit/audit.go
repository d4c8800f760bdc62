// Package audit records extraction runs in BigQuery for traceability.
package audit

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"
	"github.com/google/uuid"

	"github.com/dvloznov/docai-extract/internal/logger"
)

const runsTable = "extraction_runs"

// RunRow is the schema of the extraction_runs table.
type RunRow struct {
	RunID       string `bigquery:"run_id"`       // REQUIRED
	StoragePath string `bigquery:"storage_path"` // NULLABLE
	Kind        string `bigquery:"kind"`         // REQUIRED

	StartedTS  time.Time              `bigquery:"started_ts"`  // REQUIRED
	FinishedTS bigquery.NullTimestamp `bigquery:"finished_ts"` // NULLABLE

	Status       string `bigquery:"status"`        // NULLABLE
	ErrorMessage string `bigquery:"error_message"` // NULLABLE
}

// Recorder records the lifecycle of an extraction run. Implementations must
// tolerate failures: auditing never blocks extraction.
type Recorder interface {
	// StartRun records a new run and returns its ID.
	StartRun(ctx context.Context, storagePath, kind string) (string, error)

	// FinishRun marks the run as succeeded.
	FinishRun(ctx context.Context, runID string) error

	// FailRun marks the run as failed with the given error.
	FailRun(ctx context.Context, runID string, runErr error)
}

// BigQueryRecorder writes run rows to <dataset>.extraction_runs.
type BigQueryRecorder struct {
	client  *bigquery.Client
	dataset string
}

// NewBigQueryRecorder creates a recorder against the given project and dataset.
func NewBigQueryRecorder(ctx context.Context, projectID, dataset string) (*BigQueryRecorder, error) {
	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("audit: bigquery client: %w", err)
	}
	return &BigQueryRecorder{client: client, dataset: dataset}, nil
}

// StartRun inserts a new row with status=RUNNING and returns the run ID.
func (r *BigQueryRecorder) StartRun(ctx context.Context, storagePath, kind string) (string, error) {
	runID := uuid.NewString()

	q := r.client.Query(fmt.Sprintf(`
		INSERT %s.%s (
			run_id,
			storage_path,
			kind,
			started_ts,
			status
		)
		VALUES (
			@run_id,
			@storage_path,
			@kind,
			@started_ts,
			@status
		)
	`, r.dataset, runsTable))

	q.Parameters = []bigquery.QueryParameter{
		{Name: "run_id", Value: runID},
		{Name: "storage_path", Value: storagePath},
		{Name: "kind", Value: kind},
		{Name: "started_ts", Value: time.Now()},
		{Name: "status", Value: "RUNNING"},
	}

	if err := r.runQuery(ctx, q); err != nil {
		return "", fmt.Errorf("StartRun: %w", err)
	}
	return runID, nil
}

// FinishRun sets status=SUCCESS and finished_ts, clears error_message.
func (r *BigQueryRecorder) FinishRun(ctx context.Context, runID string) error {
	q := r.client.Query(fmt.Sprintf(`
		UPDATE %s.%s
		SET status = @status,
		    finished_ts = @finished_ts,
		    error_message = ""
		WHERE run_id = @run_id
	`, r.dataset, runsTable))

	q.Parameters = []bigquery.QueryParameter{
		{Name: "status", Value: "SUCCESS"},
		{Name: "finished_ts", Value: time.Now()},
		{Name: "run_id", Value: runID},
	}

	if err := r.runQuery(ctx, q); err != nil {
		return fmt.Errorf("FinishRun: %w", err)
	}
	return nil
}

// FailRun sets status=FAILED, finished_ts and error_message. Errors are
// logged rather than returned: a failed audit write must not mask the
// extraction error the caller is already handling.
func (r *BigQueryRecorder) FailRun(ctx context.Context, runID string, runErr error) {
	log := logger.FromContext(ctx)

	errMsg := ""
	if runErr != nil {
		errMsg = runErr.Error()
		const maxLen = 2000
		if len(errMsg) > maxLen {
			errMsg = errMsg[:maxLen]
		}
	}

	q := r.client.Query(fmt.Sprintf(`
		UPDATE %s.%s
		SET status = @status,
		    finished_ts = @finished_ts,
		    error_message = @error_message
		WHERE run_id = @run_id
	`, r.dataset, runsTable))

	q.Parameters = []bigquery.QueryParameter{
		{Name: "status", Value: "FAILED"},
		{Name: "finished_ts", Value: time.Now()},
		{Name: "error_message", Value: errMsg},
		{Name: "run_id", Value: runID},
	}

	if err := r.runQuery(ctx, q); err != nil {
		log.Error().
			Err(err).
			Str("run_id", runID).
			Msg("FailRun: recording failed run")
	}
}

func (r *BigQueryRecorder) runQuery(ctx context.Context, q *bigquery.Query) error {
	job, err := q.Run(ctx)
	if err != nil {
		return fmt.Errorf("running query: %w", err)
	}
	status, err := job.Wait(ctx)
	if err != nil {
		return fmt.Errorf("waiting for job: %w", err)
	}
	if err := status.Err(); err != nil {
		return fmt.Errorf("job error: %w", err)
	}
	return nil
}

// Close releases the underlying BigQuery client.
func (r *BigQueryRecorder) Close() error {
	return r.client.Close()
}

// NopRecorder is used when no audit dataset is configured.
type NopRecorder struct{}

func (NopRecorder) StartRun(ctx context.Context, storagePath, kind string) (string, error) {
	return "", nil
}

func (NopRecorder) FinishRun(ctx context.Context, runID string) error { return nil }

func (NopRecorder) FailRun(ctx context.Context, runID string, runErr error) {}

var _ Recorder = (*BigQueryRecorder)(nil)
var _ Recorder = NopRecorder{}
