package executor

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"neobase-ai/internal/apperrors"
)

func TestBoundedExecutorRejectsWhenSaturated(t *testing.T) {
	be := NewBoundedExecutor(1)
	release := make(chan struct{})
	started := make(chan struct{})

	_, err := be.Submit(context.Background(), func(ctx context.Context) (any, error) {
		close(started)
		<-release
		return nil, nil
	})
	if err != nil {
		t.Fatal(err)
	}
	<-started

	if _, err := be.Submit(context.Background(), func(ctx context.Context) (any, error) {
		return nil, nil
	}); !errors.Is(err, apperrors.ErrTooManyRequests) {
		t.Fatalf("expected ErrTooManyRequests, got %v", err)
	}

	close(release)
	be.Shutdown()
}

func TestBoundedExecutorFreesSlotAfterCompletion(t *testing.T) {
	be := NewBoundedExecutor(1)

	ch, err := be.Submit(context.Background(), func(ctx context.Context) (any, error) {
		return 42, nil
	})
	if err != nil {
		t.Fatal(err)
	}
	r := <-ch
	if r.err != nil || r.value.(int) != 42 {
		t.Fatalf("unexpected result %+v", r)
	}

	if _, err := be.Submit(context.Background(), func(ctx context.Context) (any, error) {
		return nil, nil
	}); err != nil {
		t.Fatalf("expected the freed slot to admit a new task, got %v", err)
	}
	be.Shutdown()
}

type fakeCanceller struct {
	mu        sync.Mutex
	cancelled []string
}

func (f *fakeCanceller) CancelJob(jobID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancelled = append(f.cancelled, jobID)
	return nil
}

func (f *fakeCanceller) snapshot() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.cancelled...)
}

func TestCancellableExecutorRejectsJobsForAlreadyCancelledRequest(t *testing.T) {
	canceller := &fakeCanceller{}
	e := NewCancellableExecutor(canceller)
	defer e.Stop()

	e.CancelByRequestID("req-1")

	err := e.OnQueryStart("req-1", "page-1", "job-1")
	if !errors.Is(err, apperrors.ErrCancelledQuery) {
		t.Fatalf("expected ErrCancelledQuery, got %v", err)
	}
}

func TestCancellableExecutorOnQueryEndClearsTracking(t *testing.T) {
	canceller := &fakeCanceller{}
	e := NewCancellableExecutor(canceller)
	defer e.Stop()

	if err := e.OnQueryStart("req-1", "page-1", "job-1"); err != nil {
		t.Fatal(err)
	}
	e.OnQueryEnd("req-1", "page-1", "job-1")

	if _, ok := e.jobsByRequest["req-1"]; ok {
		t.Fatal("expected the request's job set to be cleaned up once empty")
	}
	if _, ok := e.jobsByPage["page-1"]; ok {
		t.Fatal("expected the page's job set to be cleaned up once empty")
	}
}

func TestCancellableExecutorSweepCancelsTrackedJobs(t *testing.T) {
	canceller := &fakeCanceller{}
	e := NewCancellableExecutor(canceller)
	defer e.Stop()

	if err := e.OnQueryStart("req-1", "page-1", "job-1"); err != nil {
		t.Fatal(err)
	}
	e.CancelByPageID("page-1")

	deadline := time.Now().Add(2 * sweepInterval)
	for time.Now().Before(deadline) {
		if len(canceller.snapshot()) > 0 {
			break
		}
		time.Sleep(50 * time.Millisecond)
	}

	got := canceller.snapshot()
	if len(got) != 1 || got[0] != "job-1" {
		t.Fatalf("expected the sweeper to cancel job-1, got %v", got)
	}
}
