package parallel

import (
	"sync/atomic"
	"testing"
)

func TestExecuteAllRunsEverything(t *testing.T) {
	pool := New(4)
	defer pool.Close()

	var count atomic.Int64
	work := make([]func(), 100)
	for i := range work {
		work[i] = func() { count.Add(1) }
	}

	pool.ExecuteAll(work)
	if got := count.Load(); got != 100 {
		t.Errorf("executed %d items, want 100", got)
	}
}

func TestExecuteAllSingleWorker(t *testing.T) {
	pool := New(1)
	defer pool.Close()

	var count atomic.Int64
	work := make([]func(), 32)
	for i := range work {
		work[i] = func() { count.Add(1) }
	}

	pool.ExecuteAll(work)
	if got := count.Load(); got != 32 {
		t.Errorf("executed %d items, want 32", got)
	}
}

func TestExecuteAllMoreWorkThanQueue(t *testing.T) {
	// More items than total queue capacity forces submit-side blocking
	// and work stealing.
	pool := New(2)
	defer pool.Close()

	var count atomic.Int64
	work := make([]func(), 1000)
	for i := range work {
		work[i] = func() { count.Add(1) }
	}

	pool.ExecuteAll(work)
	if got := count.Load(); got != 1000 {
		t.Errorf("executed %d items, want 1000", got)
	}
}

func TestDefaultWorkerCount(t *testing.T) {
	pool := New(0)
	defer pool.Close()
	if pool.Workers() <= 0 {
		t.Errorf("Workers = %d, want positive", pool.Workers())
	}
}

func TestCloseIdempotent(t *testing.T) {
	pool := New(2)
	pool.Close()
	pool.Close()
	if pool.IsRunning() {
		t.Error("pool still running after Close")
	}

	// Work after Close is a no-op, not a panic.
	pool.ExecuteAll([]func(){func() { t.Error("work ran after Close") }})
}
