package state

import (
	"context"
	"testing"
	"time"
)

func newTestEnv(t *testing.T) (*Env, *State, chan func(*State) error) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	dispatchChan := make(chan func(*State) error, 10)
	env := &Env{
		DispatchChannel: dispatchChan,
		Context:         ctx,
		Cancel: func(err error) {
			cancel()
		},
	}
	return env, &State{Env: env}, dispatchChan
}

func TestDispatch(t *testing.T) {
	env, state, dispatchChan := newTestEnv(t)

	var called bool
	env.Dispatch(func(s *State) error {
		called = true
		return nil
	})

	select {
	case f := <-dispatchChan:
		if err := f(state); err != nil {
			t.Errorf("Dispatch error: %v", err)
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatal("Timed out waiting for dispatched function")
	}
	if !called {
		t.Fatal("Dispatch function was not executed")
	}
}

func TestDispatchWait(t *testing.T) {
	env, state, dispatchChan := newTestEnv(t)

	go func() {
		for f := range dispatchChan {
			_ = f(state)
		}
	}()

	res, err := env.DispatchWait(func(s *State) (any, error) {
		return 42, nil
	})
	if err != nil {
		t.Fatalf("DispatchWait error: %v", err)
	}
	if res != 42 {
		t.Fatalf("Expected 42, got %v", res)
	}
}

func TestScheduleTask(t *testing.T) {
	env, state, dispatchChan := newTestEnv(t)

	var taskCalled bool
	env.ScheduleTask(func(s *State) error {
		taskCalled = true
		return nil
	}, 50*time.Millisecond)

	select {
	case <-dispatchChan:
		t.Fatal("Task dispatched before its delay elapsed")
	case <-time.After(10 * time.Millisecond):
	}

	select {
	case f := <-dispatchChan:
		if err := f(state); err != nil {
			t.Errorf("Scheduled task error: %v", err)
		}
	case <-time.After(500 * time.Millisecond):
		t.Fatal("No task was scheduled")
	}
	if !taskCalled {
		t.Fatal("Scheduled task was not executed")
	}
}

func TestRepeatTask(t *testing.T) {
	env, state, dispatchChan := newTestEnv(t)

	var count int
	env.RepeatTask(func(s *State) error {
		count++
		if count >= 3 {
			env.Cancel(nil)
		}
		return nil
	}, 10*time.Millisecond)

loop:
	for {
		select {
		case f := <-dispatchChan:
			if err := f(state); err != nil {
				t.Fatalf("RepeatTask error: %v", err)
			}
		case <-env.Context.Done():
			break loop
		case <-time.After(500 * time.Millisecond):
			t.Fatal("Timed out waiting for RepeatTask to execute")
		}
	}
	if count < 3 {
		t.Fatalf("Expected at least 3 executions, got %d", count)
	}
}
