package task

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTaskQueue(t *testing.T) {
	logger := setupTestLogger()

	queue := NewTaskQueue(10, logger)
	assert.Equal(t, 10, cap(queue.ch))
	assert.Equal(t, 0, queue.Len())

	// Sizes below one still give a usable queue
	queue = NewTaskQueue(0, logger)
	assert.Equal(t, 1, cap(queue.ch))
}

func TestEnqueue(t *testing.T) {
	logger := setupTestLogger()
	queue := NewTaskQueue(2, logger)

	require.NoError(t, queue.Enqueue(newMockTask()))
	require.NoError(t, queue.Enqueue(newMockTask()))
	assert.Equal(t, 2, queue.Len())

	// Enqueue never blocks on a saturated buffer
	err := queue.Enqueue(newMockTask())
	assert.ErrorIs(t, err, ErrQueueFull)
	assert.Equal(t, 2, queue.Len())
}

func TestClose(t *testing.T) {
	logger := setupTestLogger()
	queue := NewTaskQueue(5, logger)

	task := newMockTask()
	require.NoError(t, queue.Enqueue(task))

	queue.Close()
	assert.True(t, queue.closed)

	// Closing twice is safe
	queue.Close()

	err := queue.Enqueue(newMockTask())
	assert.ErrorIs(t, err, ErrQueueClosed)

	// Buffered tasks stay readable after close
	got, ok := <-queue.Tasks()
	require.True(t, ok)
	assert.Equal(t, task.ID(), got.ID())

	_, ok = <-queue.Tasks()
	assert.False(t, ok)
}

func TestTasksChannel(t *testing.T) {
	logger := setupTestLogger()
	queue := NewTaskQueue(1, logger)

	task := newMockTask()
	require.NoError(t, queue.Enqueue(task))

	select {
	case got := <-queue.Tasks():
		assert.Equal(t, task.ID(), got.ID())
	default:
		t.Fatal("expected a task on the channel")
	}
}

func TestConcurrentEnqueue(t *testing.T) {
	logger := setupTestLogger()
	queue := NewTaskQueue(100, logger)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				assert.NoError(t, queue.Enqueue(newMockTask()))
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 100, queue.Len())
}

func TestConcurrentEnqueueAndClose(t *testing.T) {
	logger := setupTestLogger()
	queue := NewTaskQueue(1000, logger)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				err := queue.Enqueue(newMockTask())
				if err != nil {
					assert.ErrorIs(t, err, ErrQueueClosed)
				}
			}
		}()
	}
	queue.Close()
	wg.Wait()

	// Draining must terminate once the buffer is empty
	count := 0
	for range queue.Tasks() {
		count++
	}
	assert.LessOrEqual(t, count, 500)
}
