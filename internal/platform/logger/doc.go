// Package logger builds the process slog.Logger from server configuration
// and moves request and task scoped loggers through context.Context, so a
// pipeline step logs with the task_id and trace_id of the run that owns it.
package logger
