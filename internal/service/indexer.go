package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"repocast/internal/models"
)

// ---- Analysis service contract ---------------------------------------------

// IndexingClient is the slice of the analysis service the coordinator needs.
type IndexingClient interface {
	SubmitForIndexing(ctx context.Context, ref models.RepoRef) error
	GetIndexStatus(ctx context.Context, ref models.RepoRef) (models.IndexState, error)
}

// ProgressFunc receives advisory status notifications during the poll loop.
// Notifications are observability only, never required for correctness.
type ProgressFunc func(state models.IndexState)

// ---- Coordinator -----------------------------------------------------------

// defaultPollInterval is how often the coordinator re-queries index status.
const defaultPollInterval = 3 * time.Second

// Indexer drives the analysis service through the submit → poll → ready
// lifecycle with a bounded wall-clock wait. It is agnostic to deployment
// mode: the caller supplies the budget.
type Indexer struct {
	client   IndexingClient
	interval time.Duration
	progress ProgressFunc
}

// NewIndexer wires the analysis client with the default poll interval and a
// log-based progress notifier.
func NewIndexer(client IndexingClient) *Indexer {
	return &Indexer{
		client:   client,
		interval: defaultPollInterval,
		progress: func(s models.IndexState) {
			log.Printf("[Indexer] status=%s files=%d", s.Status, s.FilesProcessed)
		},
	}
}

// WithInterval overrides the poll interval (tests).
func (ix *Indexer) WithInterval(d time.Duration) *Indexer {
	ix.interval = d
	return ix
}

// WithProgress replaces the progress notifier.
func (ix *Indexer) WithProgress(fn ProgressFunc) *Indexer {
	ix.progress = fn
	return ix
}

// EnsureIndexed blocks until the repository is indexed, the service reports a
// terminal failure (ErrIndexingFailed), or maxWait elapses (ErrIndexingTimeout).
//
// An already-completed index returns immediately without resubmitting; a
// failed index is resubmitted; an unknown repository is submitted fresh.
func (ix *Indexer) EnsureIndexed(ctx context.Context, ref models.RepoRef, maxWait time.Duration) error {
	state, err := ix.client.GetIndexStatus(ctx, ref)
	if err != nil {
		return fmt.Errorf("%w: status check: %v", ErrIndexingFailed, err)
	}
	ix.notify(state)

	switch state.Status {
	case models.IndexCompleted:
		return nil
	case models.IndexFailed, models.IndexUnknown:
		if err := ix.client.SubmitForIndexing(ctx, ref); err != nil {
			return fmt.Errorf("%w: submit: %v", ErrIndexingFailed, err)
		}
	}

	deadline := time.Now().Add(maxWait)
	ticker := time.NewTicker(ix.interval)
	defer ticker.Stop()

	for {
		if time.Now().After(deadline) {
			return fmt.Errorf("%w: %s not ready after %s", ErrIndexingTimeout, ref.FullName(), maxWait)
		}

		select {
		case <-ctx.Done():
			// Caller cancellation is not a timeout; let the cause through.
			return fmt.Errorf("indexing wait: %w", ctx.Err())
		case <-ticker.C:
		}

		state, err = ix.client.GetIndexStatus(ctx, ref)
		if err != nil {
			return fmt.Errorf("%w: status check: %v", ErrIndexingFailed, err)
		}
		ix.notify(state)

		switch state.Status {
		case models.IndexCompleted:
			return nil
		case models.IndexFailed:
			return fmt.Errorf("%w: service reported failure for %s", ErrIndexingFailed, ref.FullName())
		}
	}
}

func (ix *Indexer) notify(state models.IndexState) {
	if ix.progress != nil {
		ix.progress(state)
	}
}
