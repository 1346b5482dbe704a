package task

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"
)

var mockTaskSeq atomic.Int64

// mockTask is a Task whose behaviour is set per test.
type mockTask struct {
	id     string
	execFn func(ctx context.Context) error
}

func (m *mockTask) ID() string {
	return m.id
}

func (m *mockTask) Type() string {
	return "mock_task"
}

func (m *mockTask) Execute(ctx context.Context) error {
	if m.execFn != nil {
		return m.execFn(ctx)
	}
	return nil
}

func newMockTask() *mockTask {
	return &mockTask{id: fmt.Sprintf("mock_%d", mockTaskSeq.Add(1))}
}

func setupTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
}

// failRecordingTask is a mockTask that also records Fail calls.
type failRecordingTask struct {
	*mockTask
	executed atomic.Bool
	failed   chan error
}

func newFailRecordingTask() *failRecordingTask {
	ft := &failRecordingTask{mockTask: newMockTask(), failed: make(chan error, 1)}
	ft.execFn = func(ctx context.Context) error {
		ft.executed.Store(true)
		return nil
	}
	return ft
}

func (f *failRecordingTask) Fail(ctx context.Context, cause error) {
	f.failed <- cause
}
