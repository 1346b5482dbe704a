// Package task runs generation requests in the background and tracks their
// state.
//
// TaskStore keeps task records on a primary backend (Redis) and falls back,
// permanently, to an in-process backend the first time the primary fails.
// YouTubeGenerationTask drives one record from PENDING to COMPLETED or FAILED.
// TaskRunner executes tasks on a bounded worker pool so submission never
// blocks on pipeline completion.
package task
