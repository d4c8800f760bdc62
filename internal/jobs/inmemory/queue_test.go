package inmemory

import (
	"context"
	"testing"
	"time"

	"github.com/dvloznov/docai-extract/internal/jobs"
)

func TestStore_SaveAndGet(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	job := &jobs.ExtractDocumentJob{
		JobID:       "job-1",
		StoragePath: "gs://bucket/statement.pdf",
		Kind:        "bank",
		Status:      jobs.JobStatusPending,
		CreatedAt:   time.Now(),
	}
	if err := store.SaveJob(ctx, job); err != nil {
		t.Fatalf("SaveJob: %v", err)
	}

	got, err := store.GetJob(ctx, "job-1")
	if err != nil {
		t.Fatalf("GetJob: %v", err)
	}
	if got.StoragePath != job.StoragePath || got.Kind != "bank" {
		t.Errorf("unexpected job: %+v", got)
	}

	// Mutating the returned copy must not affect the stored job.
	got.Status = jobs.JobStatusFailed
	again, _ := store.GetJob(ctx, "job-1")
	if again.Status != jobs.JobStatusPending {
		t.Errorf("stored job mutated through returned copy: %v", again.Status)
	}

	if _, err := store.GetJob(ctx, "missing"); err == nil {
		t.Error("expected error for unknown job ID")
	}

	if err := store.SaveJob(ctx, &jobs.ExtractDocumentJob{}); err == nil {
		t.Error("expected error for empty job ID")
	}
}

func TestStore_ListJobsFilter(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	base := time.Now()

	seed := []*jobs.ExtractDocumentJob{
		{JobID: "a", Kind: "form", Status: jobs.JobStatusCompleted, CreatedAt: base},
		{JobID: "b", Kind: "bank", Status: jobs.JobStatusPending, CreatedAt: base.Add(time.Second)},
		{JobID: "c", Kind: "bank", Status: jobs.JobStatusCompleted, CreatedAt: base.Add(2 * time.Second)},
	}
	for _, j := range seed {
		if err := store.SaveJob(ctx, j); err != nil {
			t.Fatal(err)
		}
	}

	banks, err := store.ListJobs(ctx, jobs.JobFilter{Kind: "bank"})
	if err != nil {
		t.Fatalf("ListJobs: %v", err)
	}
	if len(banks) != 2 {
		t.Fatalf("got %d bank jobs, want 2", len(banks))
	}
	// Newest first.
	if banks[0].JobID != "c" || banks[1].JobID != "b" {
		t.Errorf("order = %s, %s; want c, b", banks[0].JobID, banks[1].JobID)
	}

	done, err := store.ListJobs(ctx, jobs.JobFilter{Status: jobs.JobStatusCompleted, Limit: 1})
	if err != nil {
		t.Fatalf("ListJobs: %v", err)
	}
	if len(done) != 1 || done[0].JobID != "c" {
		t.Errorf("unexpected limited result: %+v", done)
	}

	none, err := store.ListJobs(ctx, jobs.JobFilter{Offset: 10})
	if err != nil {
		t.Fatalf("ListJobs: %v", err)
	}
	if len(none) != 0 {
		t.Errorf("got %d jobs past offset, want 0", len(none))
	}
}

func TestQueue_PublishAndProcess(t *testing.T) {
	store := NewStore()
	queue := NewQueue(10, store)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	processed := make(chan string, 1)
	handler := func(ctx context.Context, job jobs.Job) error {
		processed <- job.GetID()
		return nil
	}
	if err := queue.Start(ctx, handler); err != nil {
		t.Fatalf("Start: %v", err)
	}

	job := &jobs.ExtractDocumentJob{StoragePath: "gs://bucket/form.pdf", Kind: "form"}
	if err := queue.PublishExtractDocument(ctx, job); err != nil {
		t.Fatalf("PublishExtractDocument: %v", err)
	}
	if job.JobID == "" {
		t.Fatal("expected a generated job ID")
	}
	if job.MaxRetries != 3 {
		t.Errorf("MaxRetries = %d, want default 3", job.MaxRetries)
	}

	select {
	case id := <-processed:
		if id != job.JobID {
			t.Errorf("processed job %q, want %q", id, job.JobID)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("job was not processed")
	}

	// The store eventually reflects completion.
	deadline := time.After(2 * time.Second)
	for {
		got, err := store.GetJob(context.Background(), job.JobID)
		if err == nil && got.Status == jobs.JobStatusCompleted {
			break
		}
		select {
		case <-deadline:
			t.Fatalf("job never completed, last status: %+v", got)
		case <-time.After(10 * time.Millisecond):
		}
	}

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer stopCancel()
	if err := queue.Stop(stopCtx); err != nil {
		t.Fatalf("Stop: %v", err)
	}

	if err := queue.PublishExtractDocument(ctx, &jobs.ExtractDocumentJob{}); err == nil {
		t.Error("expected error publishing to a stopped queue")
	}
}
