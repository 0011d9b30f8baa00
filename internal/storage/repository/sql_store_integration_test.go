//go:build integration

package repository

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BaramayStation/TetraCryptPQC-Nexus-sub000/internal/database"
	storageDomain "github.com/BaramayStation/TetraCryptPQC-Nexus-sub000/internal/storage/domain"
	"github.com/BaramayStation/TetraCryptPQC-Nexus-sub000/internal/testutil"
)

func TestSQLStores_Integration(t *testing.T) {
	tests := []struct {
		name    string
		skip    func(t *testing.T)
		setup   func(t *testing.T) *sql.DB
		cleanup func(t *testing.T, db *sql.DB)
		newFn   func(db *sql.DB, namespace string) storageDomain.Store
	}{
		{
			name:    "postgres",
			skip:    testutil.SkipIfNoPostgres,
			setup:   testutil.SetupPostgresDB,
			cleanup: testutil.CleanupPostgresDB,
			newFn: func(db *sql.DB, namespace string) storageDomain.Store {
				return NewPostgreSQLStore("sql", db, database.NewTxManager(db), namespace, newTestLogger())
			},
		},
		{
			name:    "mysql",
			skip:    testutil.SkipIfNoMySQL,
			setup:   testutil.SetupMySQLDB,
			cleanup: testutil.CleanupMySQLDB,
			newFn: func(db *sql.DB, namespace string) storageDomain.Store {
				return NewMySQLStore("sql", db, database.NewTxManager(db), namespace, newTestLogger())
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.skip(t)
			db := tt.setup(t)
			defer testutil.TeardownDB(t, db)
			defer tt.cleanup(t, db)

			ctx := context.Background()
			store := tt.newFn(db, "vault")
			other := tt.newFn(db, "keys")

			require.True(t, store.IsAvailable(ctx))
			assert.Equal(t, storageDomain.KindPersistent, store.Kind())

			require.True(t, store.Write(ctx, "b", []byte("one")))
			require.True(t, store.Write(ctx, "a", []byte("two")))
			require.True(t, store.Write(ctx, "a", []byte("three")))

			got, outcome := store.Read(ctx, "a")
			assert.Equal(t, storageDomain.OutcomeFound, outcome)
			assert.Equal(t, []byte("three"), got)

			keys, ok := store.List(ctx)
			require.True(t, ok)
			assert.Equal(t, []string{"a", "b"}, keys)

			_, outcome = other.Read(ctx, "a")
			assert.Equal(t, storageDomain.OutcomeAbsent, outcome, "namespaces are isolated")

			shredder, ok := store.(storageDomain.Shredder)
			require.True(t, ok)
			require.True(t, shredder.Shred(ctx, "a", storageDomain.WipePasses))
			_, outcome = store.Read(ctx, "a")
			assert.Equal(t, storageDomain.OutcomeAbsent, outcome)

			require.True(t, store.Delete(ctx, "b"))
			keys, ok = store.List(ctx)
			require.True(t, ok)
			assert.Empty(t, keys)
		})
	}
}
