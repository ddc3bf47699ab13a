package relay

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestSendRecvOrder(t *testing.T) {
	r := New[int]()
	for i := 1; i <= 3; i++ {
		if !r.Send(i) {
			t.Fatalf("Send(%d) rejected on open relay", i)
		}
	}
	ctx := context.Background()
	for want := 1; want <= 3; want++ {
		got, err := r.Recv(ctx)
		if err != nil {
			t.Fatalf("Recv: %v", err)
		}
		if got != want {
			t.Errorf("Recv = %d, want %d", got, want)
		}
	}
	if r.Len() != 0 {
		t.Errorf("Len = %d after draining", r.Len())
	}
}

func TestFailDeliversBacklogThenErrorOnce(t *testing.T) {
	r := New[string]()
	r.Send("a")
	boom := errors.New("boom")
	r.Fail(boom)
	if r.Send("late") {
		t.Error("Send accepted after Fail")
	}

	ctx := context.Background()
	got, err := r.Recv(ctx)
	if err != nil || got != "a" {
		t.Fatalf("Recv = (%q, %v), want (\"a\", nil)", got, err)
	}
	if _, err := r.Recv(ctx); !errors.Is(err, boom) {
		t.Fatalf("Recv err = %v, want boom", err)
	}
	// The terminal error is consumed exactly once.
	if _, err := r.Recv(ctx); !errors.Is(err, ErrDone) {
		t.Fatalf("Recv err = %v, want ErrDone", err)
	}
}

func TestEnd(t *testing.T) {
	r := New[int]()
	r.Send(7)
	r.End()
	ctx := context.Background()
	if got, err := r.Recv(ctx); err != nil || got != 7 {
		t.Fatalf("Recv = (%d, %v), want (7, nil)", got, err)
	}
	if _, err := r.Recv(ctx); !errors.Is(err, ErrDone) {
		t.Fatalf("Recv err = %v, want ErrDone", err)
	}
}

func TestCloseDiscardsAndMutesProducer(t *testing.T) {
	r := New[int]()
	r.Send(1)
	r.Close()
	r.Close() // idempotent

	if r.Send(2) {
		t.Error("Send accepted after Close")
	}
	r.Fail(errors.New("ignored"))
	r.End()

	if _, err := r.Recv(context.Background()); !errors.Is(err, ErrClosed) {
		t.Fatalf("Recv err = %v, want ErrClosed", err)
	}
}

func TestRecvBlocksUntilSend(t *testing.T) {
	r := New[int]()
	go func() {
		time.Sleep(10 * time.Millisecond)
		r.Send(42)
	}()
	got, err := r.Recv(context.Background())
	if err != nil || got != 42 {
		t.Fatalf("Recv = (%d, %v), want (42, nil)", got, err)
	}
}

func TestRecvHonorsContext(t *testing.T) {
	r := New[int]()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if _, err := r.Recv(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Recv err = %v, want deadline exceeded", err)
	}
	// The relay stays usable after a context miss.
	r.Send(1)
	if got, err := r.Recv(context.Background()); err != nil || got != 1 {
		t.Fatalf("Recv = (%d, %v), want (1, nil)", got, err)
	}
}

func TestTryRecvEmptyOpen(t *testing.T) {
	r := New[int]()
	if _, ok, err := r.TryRecv(); ok || err != nil {
		t.Fatalf("TryRecv on empty open relay = (ok=%v, err=%v)", ok, err)
	}
}
