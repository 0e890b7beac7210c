package shard

import (
	"errors"
	"testing"
)

func TestSubmitRunsOnExecutorAndReturnsValue(t *testing.T) {
	e := NewExecutor(4)
	defer e.Close()

	got, err := Submit(e, func() (int, error) { return 42, nil })
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 42 {
		t.Fatalf("expected 42, got %d", got)
	}
}

func TestSubmitPropagatesError(t *testing.T) {
	e := NewExecutor(4)
	defer e.Close()

	wantErr := errors.New("boom")
	_, err := Submit(e, func() (int, error) { return 0, wantErr })
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected wrapped error, got %v", err)
	}
}

func TestSubmitOverloadedWhenInboxFull(t *testing.T) {
	e := NewExecutor(1)
	defer e.Close()

	block := make(chan struct{})
	started := make(chan struct{})
	go func() {
		Submit(e, func() (int, error) {
			close(started)
			<-block
			return 0, nil
		})
	}()
	<-started

	// The running task has drained the inbox slot; of a second and third
	// submission, one takes that free slot and waits behind the busy
	// goroutine, and the other finds the inbox full and reports Overloaded
	// rather than blocking. The first task is released once a result is in.
	errCh := make(chan error, 2)
	go func() {
		_, err := Submit(e, func() (int, error) { return 1, nil })
		errCh <- err
	}()
	go func() {
		_, err := Submit(e, func() (int, error) { return 2, nil })
		errCh <- err
	}()

	overloaded := 0
	for i := 0; i < 2; i++ {
		if err := <-errCh; errors.Is(err, ErrOverloaded) {
			overloaded++
		}
		if i == 0 {
			close(block)
		}
	}
	if overloaded == 0 {
		t.Fatalf("expected at least one Overloaded error while the executor was busy")
	}
}
