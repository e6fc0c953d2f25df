package shardqueue

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

// Jobs for the same key run strictly in submission order.
func TestSubmit_FIFOPerKey(t *testing.T) {
	ex := NewShardExecutor(Config{Shards: 4, QueueSize: 64, MaxAttempts: 1})
	defer ex.Stop()

	const n = 50
	order := make(chan int, n)
	for i := 0; i < n; i++ {
		i := i
		if err := ex.Submit(context.Background(), "it_abc", JobFunc(func(context.Context) error {
			order <- i
			return nil
		})); err != nil {
			t.Fatalf("submit %d: %v", i, err)
		}
	}
	if err := ex.Barrier(context.Background(), "it_abc"); err != nil {
		t.Fatalf("barrier: %v", err)
	}
	close(order)
	prev := -1
	for got := range order {
		if got != prev+1 {
			t.Fatalf("out of order: got %d after %d", got, prev)
		}
		prev = got
	}
}

// Different keys may make progress even when one key's job blocks.
func TestSubmit_KeysIndependent(t *testing.T) {
	ex := NewShardExecutor(Config{Shards: 8, QueueSize: 8, MaxAttempts: 1})
	defer ex.Stop()

	release := make(chan struct{})
	blocked := make(chan struct{})
	if err := ex.Submit(context.Background(), "it_block", JobFunc(func(context.Context) error {
		close(blocked)
		<-release
		return nil
	})); err != nil {
		t.Fatalf("submit blocker: %v", err)
	}
	<-blocked

	// With 8 shards at least one of these keys hashes away from it_block.
	ran := make(chan string, 8)
	for _, key := range []string{"it_a", "it_b", "it_c", "it_d", "it_e", "it_f", "it_g", "it_h"} {
		key := key
		_ = ex.Submit(context.Background(), key, JobFunc(func(context.Context) error {
			ran <- key
			return nil
		}))
	}
	select {
	case <-ran:
	case <-time.After(time.Second):
		t.Fatal("no independent key made progress while another shard was blocked")
	}
	close(release)
}

func TestSubmit_AfterStop(t *testing.T) {
	ex := NewShardExecutor(Config{Shards: 1, QueueSize: 1, MaxAttempts: 1})
	ex.Stop()
	err := ex.Submit(context.Background(), "k", JobFunc(func(context.Context) error { return nil }))
	if !errors.Is(err, ErrExecutorClosed) {
		t.Fatalf("err = %v, want ErrExecutorClosed", err)
	}
}

func TestSubmit_QueueFull(t *testing.T) {
	ex := NewShardExecutor(Config{Shards: 1, QueueSize: 1, EnqueueTimeout: 20 * time.Millisecond, MaxAttempts: 1})
	defer ex.Stop()

	release := make(chan struct{})
	defer close(release)
	started := make(chan struct{})
	_ = ex.Submit(context.Background(), "k", JobFunc(func(context.Context) error {
		close(started)
		<-release
		return nil
	}))
	<-started
	// Fills the single queue slot.
	_ = ex.Submit(context.Background(), "k", JobFunc(func(context.Context) error { return nil }))

	err := ex.Submit(context.Background(), "k", JobFunc(func(context.Context) error { return nil }))
	if !errors.Is(err, ErrQueueFull) {
		t.Fatalf("err = %v, want ErrQueueFull", err)
	}
	var qf *QueueFullError
	if !errors.As(err, &qf) {
		t.Fatalf("err should be *QueueFullError, got %T", err)
	}
}

// Recoverable errors are retried up to MaxAttempts, then reported once.
func TestRetry_RecoverableUntilMaxAttempts(t *testing.T) {
	var handled int32
	cfg := Config{Shards: 1, QueueSize: 8, MaxAttempts: 3, BaseBackoff: time.Millisecond, MaxInterval: 2 * time.Millisecond}
	cfg.ErrorHandler = func(error) { atomic.AddInt32(&handled, 1) }
	ex := NewShardExecutor(cfg)
	defer ex.Stop()

	var runs int32
	_ = ex.Submit(context.Background(), "k", JobFunc(func(context.Context) error {
		atomic.AddInt32(&runs, 1)
		return errors.New("transient")
	}))
	if err := ex.Barrier(context.Background(), "k"); err != nil {
		t.Fatalf("barrier: %v", err)
	}
	if got := atomic.LoadInt32(&runs); got != 3 {
		t.Fatalf("runs = %d, want 3", got)
	}
	if got := atomic.LoadInt32(&handled); got != 1 {
		t.Fatalf("handler calls = %d, want 1", got)
	}
}

// Irrecoverable errors fail fast without retry.
func TestRetry_IrrecoverableFailsFast(t *testing.T) {
	var handled int32
	cfg := Config{Shards: 1, QueueSize: 8, MaxAttempts: 5, BaseBackoff: time.Millisecond}
	cfg.ErrorHandler = func(error) { atomic.AddInt32(&handled, 1) }
	ex := NewShardExecutor(cfg)
	defer ex.Stop()

	var runs int32
	_ = ex.Submit(context.Background(), "k", jobReturning(&runs))
	if err := ex.Barrier(context.Background(), "k"); err != nil {
		t.Fatalf("barrier: %v", err)
	}
	if got := atomic.LoadInt32(&runs); got != 1 {
		t.Fatalf("runs = %d, want 1", got)
	}
	if got := atomic.LoadInt32(&handled); got != 1 {
		t.Fatalf("handler calls = %d, want 1", got)
	}
}

func TestBarrier_FlushesPriorJobs(t *testing.T) {
	ex := NewShardExecutor(Config{Shards: 2, QueueSize: 16, MaxAttempts: 1})
	defer ex.Stop()

	var done int32
	for i := 0; i < 10; i++ {
		_ = ex.Submit(context.Background(), "it_x", JobFunc(func(context.Context) error {
			atomic.AddInt32(&done, 1)
			return nil
		}))
	}
	if err := ex.Barrier(context.Background(), "it_x"); err != nil {
		t.Fatalf("barrier: %v", err)
	}
	if got := atomic.LoadInt32(&done); got != 10 {
		t.Fatalf("done = %d, want 10", got)
	}
}
