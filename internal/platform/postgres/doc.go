// Package postgres provides the PostgreSQL implementation of the icon
// catalog (store.IconStore) together with its embedded goose migrations.
// It handles query execution and the mapping between domain.Icon values
// and rows of the icons table.
package postgres
