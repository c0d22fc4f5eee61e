package parallel

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestFuture_Value(t *testing.T) {
	f := Go(func() (int, error) { return 42, nil })

	v, err := f.Wait(context.Background())
	if err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
	if v != 42 {
		t.Errorf("Wait() = %d, want 42", v)
	}

	// A second Wait returns the same result.
	if v2, _ := f.Wait(context.Background()); v2 != 42 {
		t.Errorf("second Wait() = %d, want 42", v2)
	}
}

func TestFuture_Error(t *testing.T) {
	want := errors.New("boom")
	f := Go(func() (string, error) { return "", want })

	if _, err := f.Wait(context.Background()); !errors.Is(err, want) {
		t.Errorf("Wait() error = %v, want %v", err, want)
	}
}

func TestFuture_WaitCanceled(t *testing.T) {
	release := make(chan struct{})
	f := Go(func() (int, error) {
		<-release
		return 1, nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	if _, err := f.Wait(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Wait() error = %v, want DeadlineExceeded", err)
	}

	close(release)
	select {
	case <-f.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("work did not finish after release")
	}
	if v, err := f.Wait(context.Background()); err != nil || v != 1 {
		t.Errorf("Wait() after release = (%d, %v), want (1, nil)", v, err)
	}
}
