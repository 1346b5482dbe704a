// Package config handles configuration loading, parsing, and validation
// from environment variables and an optional config.yaml file. Variables use
// the ICONS_ prefix with dots replaced by underscores, for example
// ICONS_REDIS_URL or ICONS_TASK_WORKER_COUNT.
package config
