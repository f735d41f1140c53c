package sync

import (
	"fmt"
	"time"
)

// Mode identifies which reconciliation flow a run executed.
type Mode string

const (
	ModeSync   Mode = "sync"
	ModeRemove Mode = "remove"
)

// Status is the overall outcome of a run.
type Status string

const (
	// StatusSuccess means every attempted operation completed.
	StatusSuccess Status = "success"
	// StatusPartial means the run finished but some per-file operations
	// failed and were skipped.
	StatusPartial Status = "partial"
	// StatusFailed means the run aborted before completing, typically
	// because the manifest could not be fetched or validated.
	StatusFailed Status = "failed"
	// StatusCanceled means cancellation was requested and honored.
	StatusCanceled Status = "canceled"
)

// ExitCode maps a run status to a process exit code.
func (s Status) ExitCode() int {
	switch s {
	case StatusSuccess:
		return 0
	case StatusPartial:
		return 2
	case StatusCanceled:
		return 130
	default:
		return 1
	}
}

// Counters accumulates per-file outcomes across the phases of a run.
type Counters struct {
	Downloaded int
	Updated    int
	Unchanged  int
	Failed     int
	Deleted    int
	Missing    int
	PrunedDirs int
}

// Changed reports whether the run modified anything on disk.
func (c *Counters) Changed() bool {
	return c.Downloaded > 0 || c.Updated > 0 || c.Deleted > 0 || c.PrunedDirs > 0
}

// Summary is the final report of a run, published in the Done event and
// returned by the engine.
type Summary struct {
	RunID    string
	Mode     Mode
	Status   Status
	Counters Counters
	Err      error
	Duration time.Duration
}

func (s *Summary) String() string {
	c := &s.Counters
	switch s.Mode {
	case ModeRemove:
		return fmt.Sprintf("%s: %d deleted, %d already absent, %d failed (%s)",
			s.Status, c.Deleted, c.Missing, c.Failed, s.Duration.Round(time.Millisecond))
	default:
		return fmt.Sprintf("%s: %d downloaded, %d updated, %d unchanged, %d deleted, %d failed (%s)",
			s.Status, c.Downloaded, c.Updated, c.Unchanged, c.Deleted, c.Failed, s.Duration.Round(time.Millisecond))
	}
}
