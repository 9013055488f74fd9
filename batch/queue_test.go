package batch

import (
	"context"
	"testing"
	"time"
)

func TestQueue_FIFO(t *testing.T) {
	q := newQueue[string](3)
	for i, s := range []string{"a", "b", "c"} {
		if !q.push(item[string]{index: i, batch: s}) {
			t.Fatalf("push %q rejected", s)
		}
	}
	if q.len() != 3 || q.capacity() != 3 {
		t.Fatalf("len=%d cap=%d", q.len(), q.capacity())
	}
	for i, want := range []string{"a", "b", "c"} {
		it, out := q.pop(context.Background())
		if out != popItem || it.batch != want || it.index != i {
			t.Fatalf("pop = (%+v, %d), want %q", it, out, want)
		}
	}
}

func TestQueue_PushBlocksUntilCancel(t *testing.T) {
	q := newQueue[int](1)
	q.push(item[int]{batch: 1})

	result := make(chan bool)
	go func() { result <- q.push(item[int]{batch: 2}) }()

	select {
	case <-result:
		t.Fatal("push into a full queue must block")
	case <-time.After(20 * time.Millisecond):
	}

	q.cancel()
	select {
	case accepted := <-result:
		if accepted {
			t.Fatal("push woken by cancel must not be accepted")
		}
	case <-time.After(time.Second):
		t.Fatal("cancel did not wake the blocked push")
	}
	if q.len() != 1 {
		t.Errorf("expected 1 buffered item, got %d", q.len())
	}
}

func TestQueue_PushAfterCancelRejected(t *testing.T) {
	q := newQueue[int](4)
	q.cancel()
	q.cancel()
	if q.push(item[int]{batch: 1}) {
		t.Fatal("push after cancel must be rejected")
	}
	if q.len() != 0 {
		t.Fatalf("expected empty queue, got %d", q.len())
	}
}

func TestQueue_PopOutcomes(t *testing.T) {
	t.Run("timeout", func(t *testing.T) {
		q := newQueue[int](1)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()
		if _, out := q.pop(ctx); out != popTimeout {
			t.Fatalf("expected timeout, got %d", out)
		}
	})

	t.Run("cancelled", func(t *testing.T) {
		q := newQueue[int](1)
		q.push(item[int]{batch: 1})
		q.cancel()
		if _, out := q.pop(context.Background()); out != popCancelled {
			t.Fatalf("expected cancelled, got %d", out)
		}
	})

	t.Run("exhausted after buffered items", func(t *testing.T) {
		q := newQueue[int](2)
		q.push(item[int]{batch: 7})
		close(q.finished)
		it, out := q.pop(context.Background())
		if out != popItem || it.batch != 7 {
			t.Fatalf("expected buffered item first, got (%+v, %d)", it, out)
		}
		if _, out := q.pop(context.Background()); out != popExhausted {
			t.Fatalf("expected exhausted, got %d", out)
		}
	})

	t.Run("wakes blocked consumer", func(t *testing.T) {
		q := newQueue[int](1)
		done := make(chan popOutcome)
		go func() {
			_, out := q.pop(context.Background())
			done <- out
		}()
		time.Sleep(10 * time.Millisecond)
		close(q.finished)
		select {
		case out := <-done:
			if out != popExhausted {
				t.Fatalf("expected exhausted, got %d", out)
			}
		case <-time.After(time.Second):
			t.Fatal("consumer not woken")
		}
	})
}

func TestQueue_Drain(t *testing.T) {
	q := newQueue[int](4)
	for i := range 3 {
		q.push(item[int]{batch: i})
	}
	if n := q.drain(); n != 3 {
		t.Fatalf("expected 3 dropped, got %d", n)
	}
	if n := q.drain(); n != 0 {
		t.Fatalf("expected nothing left, got %d", n)
	}
}
