package service

import "errors"

// Pipeline failure taxonomy. Every stage fails the whole request with one of
// these (wrapped with context); only per-path enrichment degrades locally.
var (
	// ErrIndexingFailed means the analysis service reported a terminal
	// failure while preparing the repository.
	ErrIndexingFailed = errors.New("indexing failed")

	// ErrIndexingTimeout means the caller's wait budget elapsed before the
	// repository reached the completed state.
	ErrIndexingTimeout = errors.New("indexing timed out")

	// ErrQueryFailed means one of the five gather questions did not succeed.
	// There is no partial-result policy: the whole gather fails.
	ErrQueryFailed = errors.New("repository query failed")

	// ErrInsufficientCitations means fewer than MinCitations verifiable
	// paths survived enrichment—the repository is too sparse, binary-heavy,
	// or the answers did not name real files.
	ErrInsufficientCitations = errors.New("insufficient verified citations")
)
