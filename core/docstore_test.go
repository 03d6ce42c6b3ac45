package core

import (
	"context"
	"testing"

	"github.com/pkg/errors"
)

// stubStore counts RunTx attempts and fails the first `failures` of them
// with a transient error (or every one of them with alwaysErr).
type stubStore struct {
	calls     int
	failures  int
	alwaysErr error
}

var _ Store = (*stubStore)(nil)

func (s *stubStore) Get(ctx context.Context, collection, id string) (Doc, error) {
	return Doc{}, ErrDocNotFound
}
func (s *stubStore) Query(ctx context.Context, collection string, filter Filter) ([]Doc, error) {
	return nil, nil
}
func (s *stubStore) Put(ctx context.Context, collection string, doc Doc) error { return nil }
func (s *stubStore) Delete(ctx context.Context, collection, id string) error   { return nil }
func (s *stubStore) Close(ctx context.Context) error                           { return nil }

func (s *stubStore) RunTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	s.calls++
	if s.alwaysErr != nil {
		return s.alwaysErr
	}
	if s.calls <= s.failures {
		return NewTransientError(errors.New("write conflict"))
	}
	return fn(ctx, s)
}

func TestRunInTxRetriesTransient(t *testing.T) {
	store := &stubStore{failures: 2}

	var ran bool
	err := RunInTx(context.Background(), store, func(ctx context.Context, tx Tx) error {
		ran = true
		return nil
	})
	if err != nil {
		t.Fatalf("RunInTx() failed: %v", err)
	}
	if !ran {
		t.Error("expected fn to run after retries")
	}
	if store.calls != 3 {
		t.Errorf("expected 3 attempts, got %d", store.calls)
	}
}

func TestRunInTxExhaustsAttempts(t *testing.T) {
	store := &stubStore{alwaysErr: NewTransientError(errors.New("write conflict"))}

	err := RunInTx(context.Background(), store, func(ctx context.Context, tx Tx) error {
		return nil
	})
	if !IsTransient(err) {
		t.Fatalf("expected a transient error, got %v", err)
	}
	if store.calls != 3 {
		t.Errorf("expected 3 attempts, got %d", store.calls)
	}
}

func TestRunInTxFailsFastOnOtherErrors(t *testing.T) {
	boom := errors.New("boom")
	store := &stubStore{alwaysErr: boom}

	err := RunInTx(context.Background(), store, func(ctx context.Context, tx Tx) error {
		return nil
	})
	if errors.Cause(err) != boom {
		t.Fatalf("expected boom, got %v", err)
	}
	if store.calls != 1 {
		t.Errorf("expected 1 attempt, got %d", store.calls)
	}
}

func TestRunInTxStopsOnCanceledContext(t *testing.T) {
	store := &stubStore{alwaysErr: NewTransientError(errors.New("write conflict"))}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := RunInTx(ctx, store, func(ctx context.Context, tx Tx) error {
		return nil
	})
	if errors.Cause(err) != context.Canceled {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if store.calls != 1 {
		t.Errorf("expected 1 attempt, got %d", store.calls)
	}
}
