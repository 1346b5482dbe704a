// Package redisstore implements store.TaskBackend on Redis.
//
// Each task is a single string key holding a JSON document whose timestamps
// are RFC 3339 text and whose status is its textual tag. Every write sets the
// key's expiry, so a record disappears one retention window after its last
// update.
package redisstore
