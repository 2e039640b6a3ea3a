package async

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestRevalidationQueue_ProcessesAllJobsBeforeShutdown(t *testing.T) {
	var mu sync.Mutex
	seen := map[uuid.UUID]int{}
	target := RevalidatorFunc(func(_ context.Context, id uuid.UUID) error {
		mu.Lock()
		defer mu.Unlock()
		seen[id]++
		return nil
	})

	q := NewRevalidationQueue(target, nil, WithWorkers(3), WithQueueSize(2))
	var ids []uuid.UUID
	for i := 0; i < 25; i++ {
		id := uuid.New()
		ids = append(ids, id)
		if err := q.Enqueue(context.Background(), Job{DocumentID: id, Reason: "test"}); err != nil {
			t.Fatalf("Enqueue: %v", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	q.Shutdown(ctx)

	mu.Lock()
	defer mu.Unlock()
	for _, id := range ids {
		if seen[id] != 1 {
			t.Errorf("document %s processed %d times, want 1", id, seen[id])
		}
	}
}

func TestRevalidationQueue_RejectsAfterShutdown(t *testing.T) {
	q := NewRevalidationQueue(RevalidatorFunc(func(context.Context, uuid.UUID) error { return nil }), nil)
	q.Shutdown(context.Background())
	q.Shutdown(context.Background())

	err := q.Enqueue(context.Background(), Job{DocumentID: uuid.New()})
	if !errors.Is(err, ErrQueueClosed) {
		t.Errorf("err = %v, want ErrQueueClosed", err)
	}
}

func TestRevalidationQueue_BackpressureHonoursContext(t *testing.T) {
	release := make(chan struct{})
	target := RevalidatorFunc(func(ctx context.Context, _ uuid.UUID) error {
		<-release
		return nil
	})
	q := NewRevalidationQueue(target, nil, WithWorkers(1), WithQueueSize(1))
	defer func() {
		close(release)
		q.Shutdown(context.Background())
	}()

	// one job held by the worker, one buffered
	_ = q.Enqueue(context.Background(), Job{DocumentID: uuid.New()})
	_ = q.Enqueue(context.Background(), Job{DocumentID: uuid.New()})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	// the buffer may still have room if the worker has not picked up the first job yet
	var err error
	for i := 0; i < 3 && err == nil; i++ {
		err = q.Enqueue(ctx, Job{DocumentID: uuid.New()})
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("err = %v, want context.DeadlineExceeded", err)
	}
}
