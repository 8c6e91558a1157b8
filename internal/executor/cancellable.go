package executor

import (
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"

	"neobase-ai/internal/apperrors"
)

const (
	cancellationRegistrySize = 100
	cancellationTTL          = 60 * time.Second
	sweepInterval            = 5 * time.Second
)

// Canceller is implemented by a warehouse driver that can cancel an
// in-flight job given the id it handed back from OnQueryStart.
type Canceller interface {
	CancelJob(jobID string) error
}

// CancellableExecutor layers request/page-scoped cancellation on top of a
// warehouse driver: OnQueryStart/OnQueryEnd bracket a job's lifetime so the
// registry always knows which job ids belong to which request or page, and
// CancelByRequestID/CancelByPageID mark an id for cancellation. Every five
// seconds a background sweeper asks the backing Canceller to cancel each
// job tracked under a marked id, mirroring
// CancellableBigQueryExecutor's periodic cancel loop.
type CancellableExecutor struct {
	canceller Canceller

	cancelledRequestIDs *lru.LRU[string, bool]
	cancelledPageIDs    *lru.LRU[string, bool]

	mu            sync.Mutex
	jobsByRequest map[string]map[string]struct{}
	jobsByPage    map[string]map[string]struct{}

	stop chan struct{}
}

// NewCancellableExecutor starts the background sweeper immediately; call
// Stop to shut it down.
func NewCancellableExecutor(canceller Canceller) *CancellableExecutor {
	e := &CancellableExecutor{
		canceller:           canceller,
		cancelledRequestIDs: lru.NewLRU[string, bool](cancellationRegistrySize, nil, cancellationTTL),
		cancelledPageIDs:    lru.NewLRU[string, bool](cancellationRegistrySize, nil, cancellationTTL),
		jobsByRequest:       map[string]map[string]struct{}{},
		jobsByPage:          map[string]map[string]struct{}{},
		stop:                make(chan struct{}),
	}
	go e.sweep()
	return e
}

// OnQueryStart registers jobID as belonging to requestID/pageID, unless one
// of them has already been cancelled, in which case it returns
// apperrors.ErrCancelledQuery and the caller must not proceed with the job.
func (e *CancellableExecutor) OnQueryStart(requestID, pageID, jobID string) error {
	if e.isCancelled(requestID, pageID) {
		return apperrors.ErrCancelledQuery
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	addJob(e.jobsByRequest, requestID, jobID)
	addJob(e.jobsByPage, pageID, jobID)
	return nil
}

// OnQueryEnd unregisters jobID. Call it whether the job succeeded, failed,
// or was cancelled — the registry must not leak entries for finished jobs.
func (e *CancellableExecutor) OnQueryEnd(requestID, pageID, jobID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	removeJob(e.jobsByRequest, requestID, jobID)
	removeJob(e.jobsByPage, pageID, jobID)
}

// CancelByRequestID marks requestID as cancelled: OnQueryStart rejects new
// jobs under it, and the next sweep cancels the jobs tracked under it and
// then clears the mark.
func (e *CancellableExecutor) CancelByRequestID(requestID string) {
	e.cancelledRequestIDs.Add(requestID, true)
}

// CancelByPageID marks pageID as cancelled: OnQueryStart rejects new jobs
// under it, and the next sweep cancels the jobs tracked under it and then
// clears the mark.
func (e *CancellableExecutor) CancelByPageID(pageID string) {
	e.cancelledPageIDs.Add(pageID, true)
}

// Stop ends the background sweeper. Already-tracked jobs are left alone;
// callers shutting down should drain the backing executor first.
func (e *CancellableExecutor) Stop() {
	close(e.stop)
}

func (e *CancellableExecutor) isCancelled(requestID, pageID string) bool {
	_, reqCancelled := e.cancelledRequestIDs.Get(requestID)
	_, pageCancelled := e.cancelledPageIDs.Get(pageID)
	return reqCancelled || pageCancelled
}

func (e *CancellableExecutor) sweep() {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-e.stop:
			return
		case <-ticker.C:
			e.cancelTracked(e.cancelledPageIDs, e.jobsByPage)
			e.cancelTracked(e.cancelledRequestIDs, e.jobsByRequest)
		}
	}
}

func (e *CancellableExecutor) cancelTracked(cancelled *lru.LRU[string, bool], jobs map[string]map[string]struct{}) {
	for _, id := range cancelled.Keys() {
		e.mu.Lock()
		jobIDs := make([]string, 0, len(jobs[id]))
		for jobID := range jobs[id] {
			jobIDs = append(jobIDs, jobID)
		}
		e.mu.Unlock()

		for _, jobID := range jobIDs {
			_ = e.canceller.CancelJob(jobID)
		}
		cancelled.Remove(id)
	}
}

func addJob(byID map[string]map[string]struct{}, id, jobID string) {
	set, ok := byID[id]
	if !ok {
		set = map[string]struct{}{}
		byID[id] = set
	}
	set[jobID] = struct{}{}
}

func removeJob(byID map[string]map[string]struct{}, id, jobID string) {
	set, ok := byID[id]
	if !ok {
		return
	}
	delete(set, jobID)
	if len(set) == 0 {
		delete(byID, id)
	}
}
