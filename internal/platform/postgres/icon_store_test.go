//go:build integration

package postgres_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tahina-randria/finary-icons-platform/internal/domain"
	"github.com/tahina-randria/finary-icons-platform/internal/platform/postgres"
	"github.com/tahina-randria/finary-icons-platform/internal/store"
	"github.com/tahina-randria/finary-icons-platform/internal/testdb"
)

func newTestIcon(t *testing.T, name, category string, createdAt time.Time) *domain.Icon {
	t.Helper()
	icon, err := domain.NewIcon(domain.Concept{
		Name:              name,
		Category:          category,
		Priority:          domain.PriorityHigh,
		VisualDescription: "a " + name,
	}, "glass 3D icon of "+name, "https://cdn.example.com/"+name+".png")
	require.NoError(t, err)
	icon.CreatedAt = createdAt.UTC().Truncate(time.Microsecond)
	return icon
}

func TestPostgresIconStore_CreateAndGet(t *testing.T) {
	t.Parallel()
	db := testdb.GetTestDBWithT(t)

	testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
		iconStore := postgres.NewPostgresIconStore(tx, nil)
		ctx := context.Background()
		icon := newTestIcon(t, "Voiture", "vehicules", time.Now())

		require.NoError(t, iconStore.Create(ctx, icon))

		got, err := iconStore.GetByID(ctx, icon.ID)
		require.NoError(t, err)
		assert.Equal(t, icon.ID, got.ID)
		assert.Equal(t, "Voiture", got.Name)
		assert.Equal(t, []string{"vehicules", "high"}, got.Tags)
		assert.True(t, icon.CreatedAt.Equal(got.CreatedAt))
	})
}

func TestPostgresIconStore_CreateDuplicate(t *testing.T) {
	t.Parallel()
	db := testdb.GetTestDBWithT(t)

	testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
		iconStore := postgres.NewPostgresIconStore(tx, nil)
		icon := newTestIcon(t, "Banque", "finance", time.Now())
		require.NoError(t, iconStore.Create(context.Background(), icon))

		err := iconStore.Create(context.Background(), icon)
		assert.ErrorIs(t, err, store.ErrDuplicate)
	})
}

func TestPostgresIconStore_GetMissing(t *testing.T) {
	t.Parallel()
	db := testdb.GetTestDBWithT(t)

	testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
		_, err := postgres.NewPostgresIconStore(tx, nil).GetByID(context.Background(), uuid.New())
		assert.ErrorIs(t, err, store.ErrIconNotFound)
	})
}

func TestPostgresIconStore_CreateInvalid(t *testing.T) {
	t.Parallel()
	db := testdb.GetTestDBWithT(t)

	testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
		err := postgres.NewPostgresIconStore(tx, nil).Create(context.Background(), &domain.Icon{ID: uuid.New()})
		assert.ErrorIs(t, err, store.ErrInvalidEntity)
		assert.ErrorIs(t, err, domain.ErrEmptyIconName)
	})
}

func TestPostgresIconStore_List(t *testing.T) {
	t.Parallel()
	db := testdb.GetTestDBWithT(t)

	testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
		iconStore := postgres.NewPostgresIconStore(tx, nil)
		ctx := context.Background()
		_, err := tx.ExecContext(ctx, `DELETE FROM icons`)
		require.NoError(t, err)

		base := time.Now().Add(-time.Hour)
		for i, seed := range []struct{ name, category string }{
			{"Voiture", "vehicules"},
			{"Camion", "vehicules"},
			{"Banque", "finance"},
			{"Ingenieur", "metiers"},
		} {
			icon := newTestIcon(t, seed.name, seed.category, base.Add(time.Duration(i)*time.Minute))
			require.NoError(t, iconStore.Create(ctx, icon))
		}

		page, err := iconStore.List(ctx, store.IconFilter{Page: 1, PageSize: 2})
		require.NoError(t, err)
		assert.Equal(t, 4, page.Total)
		require.Len(t, page.Icons, 2)
		assert.Equal(t, "Ingenieur", page.Icons[0].Name)
		assert.Equal(t, "Banque", page.Icons[1].Name)

		page, err = iconStore.List(ctx, store.IconFilter{Page: 2, PageSize: 2})
		require.NoError(t, err)
		require.Len(t, page.Icons, 2)
		assert.Equal(t, "Camion", page.Icons[0].Name)

		page, err = iconStore.List(ctx, store.IconFilter{Category: "vehicules", Page: 1, PageSize: 10})
		require.NoError(t, err)
		assert.Equal(t, 2, page.Total)

		page, err = iconStore.List(ctx, store.IconFilter{Search: "banq", Page: 1, PageSize: 10})
		require.NoError(t, err)
		require.Len(t, page.Icons, 1)
		assert.Equal(t, "Banque", page.Icons[0].Name)

		page, err = iconStore.List(ctx, store.IconFilter{Search: "metiers", Page: 1, PageSize: 10})
		require.NoError(t, err)
		require.Len(t, page.Icons, 1)
		assert.Equal(t, "Ingenieur", page.Icons[0].Name)
	})
}
