package redisstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/tahina-randria/finary-icons-platform/internal/domain"
	"github.com/tahina-randria/finary-icons-platform/internal/store"
)

// maxTxRetries bounds optimistic transaction retries when a watched key
// changes between read and write.
const maxTxRetries = 5

// Options configures a TaskBackend.
type Options struct {
	// KeyPrefix is prepended to the task ID to form the Redis key.
	KeyPrefix string

	// TTL is the retention window, refreshed on every write.
	TTL time.Duration
}

// TaskBackend stores each task as one JSON string value with an expiry.
type TaskBackend struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

var _ store.TaskBackend = (*TaskBackend)(nil)

// NewClient builds a client from a redis:// URL.
func NewClient(url string, dialTimeout time.Duration) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}
	if dialTimeout > 0 {
		opts.DialTimeout = dialTimeout
	}
	opts.MaxRetries = 1
	return redis.NewClient(opts), nil
}

// NewTaskBackend wraps client. It does not contact the server.
func NewTaskBackend(client redis.UniversalClient, opts Options) *TaskBackend {
	if opts.TTL <= 0 {
		opts.TTL = 24 * time.Hour
	}
	return &TaskBackend{
		client: client,
		prefix: opts.KeyPrefix,
		ttl:    opts.TTL,
	}
}

// Name implements store.TaskBackend.
func (b *TaskBackend) Name() string { return "redis" }

// Key returns the Redis key for a task ID.
func (b *TaskBackend) Key(id string) string {
	return b.prefix + id
}

// Ping implements store.TaskBackend.
func (b *TaskBackend) Ping(ctx context.Context) error {
	if err := b.client.Ping(ctx).Err(); err != nil {
		return unavailable("ping", err)
	}
	return nil
}

// Create implements store.TaskBackend.
func (b *TaskBackend) Create(ctx context.Context, task *domain.GenerationTask) error {
	data, err := EncodeTask(task)
	if err != nil {
		return store.NewOpError("task", "create", "encode", errors.Join(store.ErrInvalidEntity, err))
	}
	if err := b.client.Set(ctx, b.Key(task.ID), data, b.ttl).Err(); err != nil {
		return unavailable("create", err)
	}
	return nil
}

// CreateIfAbsent implements store.TaskBackend.
func (b *TaskBackend) CreateIfAbsent(ctx context.Context, task *domain.GenerationTask) error {
	data, err := EncodeTask(task)
	if err != nil {
		return store.NewOpError("task", "create", "encode", errors.Join(store.ErrInvalidEntity, err))
	}
	created, err := b.client.SetNX(ctx, b.Key(task.ID), data, b.ttl).Result()
	if err != nil {
		return unavailable("create", err)
	}
	if !created {
		return fmt.Errorf("%w: %s", store.ErrDuplicateTask, task.ID)
	}
	return nil
}

// Update implements store.TaskBackend using WATCH/MULTI/EXEC so concurrent
// writers to the same key never lose an update.
func (b *TaskBackend) Update(ctx context.Context, id string, mutate store.MutateFunc) error {
	key := b.Key(id)
	var mutateErr error

	txf := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return fmt.Errorf("%w: %s", store.ErrTaskNotFound, id)
		}
		if err != nil {
			return unavailable("update", err)
		}

		task, err := DecodeTask(data)
		if err != nil {
			return store.NewOpError("task", "update", "decode", err)
		}
		if err := mutate(task); err != nil {
			mutateErr = err
			return err
		}

		out, err := EncodeTask(task)
		if err != nil {
			return store.NewOpError("task", "update", "encode", errors.Join(store.ErrInvalidEntity, err))
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, out, b.ttl)
			return nil
		})
		return err
	}

	for attempt := 0; attempt < maxTxRetries; attempt++ {
		mutateErr = nil
		err := b.client.Watch(ctx, txf, key)

		var opErr *store.OpError
		switch {
		case err == nil:
			return nil
		case errors.Is(err, redis.TxFailedErr):
			continue
		case mutateErr != nil:
			return mutateErr
		case errors.As(err, &opErr), errors.Is(err, store.ErrNotFound):
			return err
		default:
			return unavailable("update", err)
		}
	}

	return store.NewOpError("task", "update", fmt.Sprintf("key %s kept changing", key), store.ErrUpdateFailed)
}

// Get implements store.TaskBackend.
func (b *TaskBackend) Get(ctx context.Context, id string) (*domain.GenerationTask, error) {
	data, err := b.client.Get(ctx, b.Key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: %s", store.ErrTaskNotFound, id)
	}
	if err != nil {
		return nil, unavailable("get", err)
	}

	task, err := DecodeTask(data)
	if err != nil {
		return nil, store.NewOpError("task", "get", "decode", err)
	}
	return task, nil
}

// Exists implements store.TaskBackend.
func (b *TaskBackend) Exists(ctx context.Context, id string) (bool, error) {
	n, err := b.client.Exists(ctx, b.Key(id)).Result()
	if err != nil {
		return false, unavailable("exists", err)
	}
	return n > 0, nil
}

func unavailable(op string, err error) error {
	return store.NewOpError("task", op, "redis command failed", fmt.Errorf("%w: %w", store.ErrBackendUnavailable, err))
}
