// Package testdb provides database helpers for integration tests. Tests that
// use it skip themselves when no test database URL is configured.
package testdb
