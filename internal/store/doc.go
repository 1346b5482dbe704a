// Package store holds the persistence contracts the rest of the service codes
// against. TaskBackend keeps generation task records and is implemented by
// redisstore and memstore; IconStore is the Postgres icon catalog.
package store
