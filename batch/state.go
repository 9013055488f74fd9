package batch

import "sync"

// sharedState is the only mutable state shared by workers and the consumer.
// Every read-modify-write happens under mu.
type sharedState struct {
	mu         sync.Mutex
	batchCount int
	nextIndex  int
	completed  int
	delivered  int
	cancelled  bool
	err        error
	reported   bool
}

func newSharedState(batchCount int) *sharedState {
	return &sharedState{batchCount: batchCount}
}

// allocate hands out the next unprocessed index. ok is false once every index
// has been handed out or the pipeline is cancelled; it never blocks.
func (s *sharedState) allocate() (index int, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancelled || s.nextIndex == s.batchCount {
		return 0, false
	}
	index = s.nextIndex
	s.nextIndex++
	return index, true
}

// cancel sets the cancelled flag and reports whether this call set it.
func (s *sharedState) cancel() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancelled {
		return false
	}
	s.cancelled = true
	return true
}

func (s *sharedState) isCancelled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancelled
}

// fail records err as the pipeline failure and cancels. Failures after
// cancellation are ignored, so a transform aborted by teardown is not
// reported as its own error.
func (s *sharedState) fail(err error) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancelled {
		return false
	}
	s.err = err
	s.cancelled = true
	return true
}

func (s *sharedState) markCompleted() {
	s.mu.Lock()
	s.completed++
	s.mu.Unlock()
}

// unmarkCompleted rolls back a completion whose batch was never enqueued.
func (s *sharedState) unmarkCompleted() {
	s.mu.Lock()
	s.completed--
	s.mu.Unlock()
}

func (s *sharedState) markDelivered() {
	s.mu.Lock()
	s.delivered++
	s.mu.Unlock()
}

func (s *sharedState) failure() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// takeFailure returns the failure the first time it is called and nil afterwards.
func (s *sharedState) takeFailure() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.reported {
		return nil
	}
	s.reported = true
	return s.err
}

type counters struct {
	allocated, completed, delivered int
}

func (s *sharedState) counters() counters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return counters{allocated: s.nextIndex, completed: s.completed, delivered: s.delivered}
}
