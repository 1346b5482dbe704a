package task

import "context"

// TaskTypeYouTubeGeneration tags runs that turn a video transcript into icons.
const TaskTypeYouTubeGeneration = "youtube_generation"

// Task is one background run. Execute records its own outcome in the
// TaskStore; the returned error only reaches the runner's error handler.
type Task interface {
	ID() string
	Type() string
	Execute(ctx context.Context) error
}

// TaskSource hands buffered tasks to workers. The channel closes once the
// source stops accepting work and has been drained.
type TaskSource interface {
	Tasks() <-chan Task
}
