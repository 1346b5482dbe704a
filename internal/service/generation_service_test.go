package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tahina-randria/finary-icons-platform/internal/domain"
	"github.com/tahina-randria/finary-icons-platform/internal/generation"
	"github.com/tahina-randria/finary-icons-platform/internal/platform/logger"
	"github.com/tahina-randria/finary-icons-platform/internal/platform/memstore"
	"github.com/tahina-randria/finary-icons-platform/internal/service"
	"github.com/tahina-randria/finary-icons-platform/internal/task"
)

type stubTranscripts struct{}

func (stubTranscripts) FetchTranscript(ctx context.Context, videoURL string) ([]domain.TranscriptSegment, error) {
	return []domain.TranscriptSegment{{Text: "hello", Start: 0, Duration: 1}}, nil
}

type stubConcepts struct{}

func (stubConcepts) ExtractConcepts(ctx context.Context, transcript string, maxConcepts int) ([]domain.Concept, error) {
	return nil, generation.ErrNoConcepts
}

type stubImages struct{}

func (stubImages) GenerateImage(ctx context.Context, c domain.Concept) (*generation.GeneratedImage, error) {
	return nil, generation.ErrGenerationFailed
}

// fakeRunner records submitted runs and optionally rejects them.
type fakeRunner struct {
	mu        sync.Mutex
	err       error
	submitted []task.Task
}

func (r *fakeRunner) Submit(t task.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.submitted = append(r.submitted, t)
	return r.err
}

type serviceFixture struct {
	store   *task.TaskStore
	runner  *fakeRunner
	service *service.GenerationService
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()
	log, _ := logger.NewTestLogger(t)
	ctx := context.Background()

	s, err := task.NewTaskStore(ctx, nil, memstore.NewTaskBackend(), log)
	require.NoError(t, err)

	factory, err := task.NewYouTubeTaskFactory(task.YouTubeTaskDeps{
		Updater:     s,
		Transcripts: stubTranscripts{},
		Concepts:    stubConcepts{},
		Images:      stubImages{},
	}, log)
	require.NoError(t, err)

	runner := &fakeRunner{}
	svc, err := service.NewGenerationService(s, runner, factory, service.GenerationConfig{
		DefaultMaxConcepts: 30,
		MaxConceptsLimit:   50,
	}, log)
	require.NoError(t, err)

	return &serviceFixture{store: s, runner: runner, service: svc}
}

func TestNewGenerationService_Validation(t *testing.T) {
	t.Parallel()
	f := newServiceFixture(t)
	cfg := service.GenerationConfig{DefaultMaxConcepts: 30, MaxConceptsLimit: 50}

	_, err := service.NewGenerationService(nil, f.runner, nil, cfg, nil)
	assert.Error(t, err)

	_, err = service.NewGenerationService(f.store, nil, nil, cfg, nil)
	assert.Error(t, err)

	_, err = service.NewGenerationService(f.store, f.runner, nil, cfg, nil)
	assert.Error(t, err)
}

func TestGenerationService_SubmitYouTube(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newServiceFixture(t)

	result, err := f.service.SubmitYouTube(ctx, service.YouTubeRequest{
		URL:          "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
		MaxConcepts:  10,
		MinPriority:  domain.PriorityHigh,
		AutoGenerate: true,
	})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(result.TaskID, "gen_yt_"), result.TaskID)
	assert.Len(t, result.TaskID, len("gen_yt_")+12)
	assert.Equal(t, domain.TaskStatusPending, result.Status)
	assert.Equal(t, 30, result.EstimatedTimeSeconds)
	assert.Equal(t, "YouTube processing task created. Will extract up to 10 concepts.", result.Message)

	require.Len(t, f.runner.submitted, 1)
	assert.Equal(t, result.TaskID, f.runner.submitted[0].ID())
	assert.Equal(t, task.TaskTypeYouTubeGeneration, f.runner.submitted[0].Type())

	record, err := f.store.Get(ctx, result.TaskID)
	require.NoError(t, err)
	assert.Equal(t, domain.TaskStatusPending, record.Status)
	assert.Equal(t, domain.SourceYouTube, record.SourceType)

	src, err := domain.DecodeYouTubeSource(record)
	require.NoError(t, err)
	assert.Equal(t, 10, src.MaxConcepts)
	assert.Equal(t, domain.PriorityHigh, src.MinPriority)
	assert.True(t, src.AutoGenerate)
}

func TestGenerationService_SubmitYouTube_Defaults(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newServiceFixture(t)

	result, err := f.service.SubmitYouTube(ctx, service.YouTubeRequest{
		URL: "https://youtu.be/dQw4w9WgXcQ",
	})
	require.NoError(t, err)
	assert.Equal(t, 30, result.EstimatedTimeSeconds)

	record, err := f.store.Get(ctx, result.TaskID)
	require.NoError(t, err)
	src, err := domain.DecodeYouTubeSource(record)
	require.NoError(t, err)
	assert.Equal(t, 30, src.MaxConcepts)
	assert.Equal(t, domain.PriorityMedium, src.MinPriority)
	assert.False(t, src.AutoGenerate)
}

func TestGenerationService_SubmitYouTube_InvalidRequest(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		req  service.YouTubeRequest
	}{
		{"missing url", service.YouTubeRequest{URL: "  "}},
		{"too many concepts", service.YouTubeRequest{URL: "https://youtu.be/dQw4w9WgXcQ", MaxConcepts: 51}},
		{"negative concepts", service.YouTubeRequest{URL: "https://youtu.be/dQw4w9WgXcQ", MaxConcepts: -1}},
		{"unknown priority", service.YouTubeRequest{URL: "https://youtu.be/dQw4w9WgXcQ", MinPriority: "urgent"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f := newServiceFixture(t)

			_, err := f.service.SubmitYouTube(context.Background(), tt.req)
			assert.ErrorIs(t, err, service.ErrInvalidRequest)
			assert.Empty(t, f.runner.submitted)
		})
	}
}

func TestGenerationService_SubmitYouTube_QueueFull(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newServiceFixture(t)
	f.runner.err = task.ErrQueueFull

	_, err := f.service.SubmitYouTube(ctx, service.YouTubeRequest{
		URL:          "https://youtu.be/dQw4w9WgXcQ",
		AutoGenerate: true,
	})
	require.ErrorIs(t, err, service.ErrBusy)

	require.Len(t, f.runner.submitted, 1)
	record, err := f.store.Get(ctx, f.runner.submitted[0].ID())
	require.NoError(t, err)
	assert.Equal(t, domain.TaskStatusFailed, record.Status)
	assert.Contains(t, record.Error, "queue is full")
	assert.NotNil(t, record.CompletedAt)
}

type failingFactory struct{}

func (failingFactory) CreateTask(taskID string, source domain.YouTubeSource) (*task.YouTubeGenerationTask, error) {
	return nil, task.ErrEmptyVideoURL
}

// countingStore records how many task records were created.
type countingStore struct {
	*task.TaskStore
	creates int
}

func (c *countingStore) Create(ctx context.Context, id string, sourceType domain.SourceType, sourceData json.RawMessage) (*domain.GenerationTask, error) {
	c.creates++
	return c.TaskStore.Create(ctx, id, sourceType, sourceData)
}

func TestGenerationService_SubmitYouTube_FactoryErrorCreatesNoRecord(t *testing.T) {
	t.Parallel()
	log, _ := logger.NewTestLogger(t)

	s, err := task.NewTaskStore(context.Background(), nil, memstore.NewTaskBackend(), log)
	require.NoError(t, err)
	counting := &countingStore{TaskStore: s}
	runner := &fakeRunner{}

	svc, err := service.NewGenerationService(counting, runner, failingFactory{}, service.GenerationConfig{
		DefaultMaxConcepts: 30,
		MaxConceptsLimit:   50,
	}, log)
	require.NoError(t, err)

	_, err = svc.SubmitYouTube(context.Background(), service.YouTubeRequest{
		URL:          "https://youtu.be/dQw4w9WgXcQ",
		AutoGenerate: true,
	})
	require.ErrorIs(t, err, task.ErrEmptyVideoURL)
	assert.Zero(t, counting.creates)
	assert.Empty(t, runner.submitted)
}

func TestGenerationService_GetStatus(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newServiceFixture(t)

	_, err := f.service.GetStatus(ctx, "gen_yt_unknown")
	assert.ErrorIs(t, err, service.ErrTaskNotFound)

	result, err := f.service.SubmitYouTube(ctx, service.YouTubeRequest{URL: "https://youtu.be/dQw4w9WgXcQ"})
	require.NoError(t, err)

	view, err := f.service.GetStatus(ctx, result.TaskID)
	require.NoError(t, err)
	assert.Equal(t, result.TaskID, view.TaskID)
	assert.Equal(t, domain.TaskStatusPending, view.Status)
	assert.Equal(t, 0, view.Progress)
	require.NotNil(t, view.Message)
	assert.Nil(t, view.Error)
	assert.Nil(t, view.CompletedAt)
	assert.Nil(t, view.GeneratedIcons)

	// Running the queued task drives the record to a terminal state
	require.Error(t, f.runner.submitted[0].Execute(ctx))
	view, err = f.service.GetStatus(ctx, result.TaskID)
	require.NoError(t, err)
	assert.Equal(t, domain.TaskStatusFailed, view.Status)
	require.NotNil(t, view.Error)
	assert.True(t, strings.HasPrefix(*view.Error, "YouTube generation failed: "))
	assert.Len(t, view.Transcript, 1)
}

func TestProjectStatus_NullResultFields(t *testing.T) {
	t.Parallel()

	record, err := domain.NewGenerationTask("gen_yt_abc", domain.SourceYouTube, json.RawMessage(`{}`), fixedTime())
	require.NoError(t, err)

	data, err := json.Marshal(service.ProjectStatus(record))
	require.NoError(t, err)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(data, &payload))
	assert.Equal(t, "gen_yt_abc", payload["task_id"])
	assert.Equal(t, "pending", payload["status"])
	assert.Contains(t, payload, "error")
	assert.Nil(t, payload["error"])
	assert.Contains(t, payload, "generated_icons")
	assert.Nil(t, payload["generated_icons"])
	assert.Nil(t, payload["extracted_concepts"])
	assert.Nil(t, payload["completed_at"])
	assert.NotContains(t, payload, "source_data")
}

func TestEstimatedTimeSeconds(t *testing.T) {
	t.Parallel()
	assert.Equal(t, 90, service.EstimatedTimeSeconds(30, true))
	assert.Equal(t, 30, service.EstimatedTimeSeconds(30, false))
	assert.Equal(t, 3, service.EstimatedTimeSeconds(1, true))
}

func TestServiceError_Unwrap(t *testing.T) {
	t.Parallel()
	inner := errors.New("boom")
	err := &service.ServiceError{Service: "generation service", Operation: "submit", Message: "failed", Err: inner}
	assert.ErrorIs(t, err, inner)
	assert.Equal(t, "generation service submit failed: failed: boom", err.Error())
}
