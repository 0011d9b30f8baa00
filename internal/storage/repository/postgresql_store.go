package repository

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/BaramayStation/TetraCryptPQC-Nexus-sub000/internal/database"
	storageDomain "github.com/BaramayStation/TetraCryptPQC-Nexus-sub000/internal/storage/domain"
)

// PostgreSQLStore is a durable Store persisting values in the vault_entries
// table of a PostgreSQL database.
type PostgreSQLStore struct {
	name      string
	namespace string
	db        *sql.DB
	txManager database.TxManager
	logger    *slog.Logger
}

// NewPostgreSQLStore creates a PostgreSQL-backed store scoped to namespace.
func NewPostgreSQLStore(
	name string,
	db *sql.DB,
	txManager database.TxManager,
	namespace string,
	logger *slog.Logger,
) *PostgreSQLStore {
	return &PostgreSQLStore{
		name:      name,
		namespace: namespace,
		db:        db,
		txManager: txManager,
		logger:    logger,
	}
}

// Name returns the provider name.
func (p *PostgreSQLStore) Name() string {
	return p.name
}

// Kind returns KindPersistent.
func (p *PostgreSQLStore) Kind() storageDomain.Kind {
	return storageDomain.KindPersistent
}

// IsAvailable pings the database.
func (p *PostgreSQLStore) IsAvailable(ctx context.Context) bool {
	if err := p.db.PingContext(ctx); err != nil {
		logSQLFailure(p.logger, p.name, "probe", "", err)
		return false
	}
	return true
}

// Write upserts the value for key.
func (p *PostgreSQLStore) Write(ctx context.Context, key string, data []byte) bool {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO vault_entries (namespace, storage_key, data, updated_at)
			  VALUES ($1, $2, $3, $4)
			  ON CONFLICT (namespace, storage_key)
			  DO UPDATE SET data = EXCLUDED.data, updated_at = EXCLUDED.updated_at`

	if _, err := querier.ExecContext(ctx, query, p.namespace, key, data, time.Now().UTC()); err != nil {
		logSQLFailure(p.logger, p.name, "write", key, err)
		return false
	}
	return true
}

// Read selects the value for key.
func (p *PostgreSQLStore) Read(ctx context.Context, key string) ([]byte, storageDomain.Outcome) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT data FROM vault_entries WHERE namespace = $1 AND storage_key = $2`

	var data []byte
	if err := querier.QueryRowContext(ctx, query, p.namespace, key).Scan(&data); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storageDomain.OutcomeAbsent
		}
		logSQLFailure(p.logger, p.name, "read", key, err)
		return nil, storageDomain.OutcomeUnavailable
	}
	return data, storageDomain.OutcomeFound
}

// Delete removes the row for key. Deleting a missing row succeeds.
func (p *PostgreSQLStore) Delete(ctx context.Context, key string) bool {
	querier := database.GetTx(ctx, p.db)

	query := `DELETE FROM vault_entries WHERE namespace = $1 AND storage_key = $2`

	if _, err := querier.ExecContext(ctx, query, p.namespace, key); err != nil {
		logSQLFailure(p.logger, p.name, "delete", key, err)
		return false
	}
	return true
}

// Shred overwrites the stored column once per pass and deletes the row, all
// inside one transaction.
func (p *PostgreSQLStore) Shred(ctx context.Context, key string, passes []storageDomain.WipePass) bool {
	err := p.txManager.WithTx(ctx, func(ctx context.Context) error {
		querier := database.GetTx(ctx, p.db)

		var size int
		err := querier.QueryRowContext(
			ctx,
			`SELECT octet_length(data) FROM vault_entries WHERE namespace = $1 AND storage_key = $2 FOR UPDATE`,
			p.namespace,
			key,
		).Scan(&size)
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		if err != nil {
			return err
		}

		for _, pass := range passes {
			if _, err := querier.ExecContext(
				ctx,
				`UPDATE vault_entries SET data = $1 WHERE namespace = $2 AND storage_key = $3`,
				pass.Pattern(size),
				p.namespace,
				key,
			); err != nil {
				return err
			}
		}

		_, err = querier.ExecContext(
			ctx,
			`DELETE FROM vault_entries WHERE namespace = $1 AND storage_key = $2`,
			p.namespace,
			key,
		)
		return err
	})
	if err != nil {
		logSQLFailure(p.logger, p.name, "shred", key, err)
		return false
	}
	return true
}

// List returns every key stored in the namespace.
func (p *PostgreSQLStore) List(ctx context.Context) ([]string, bool) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT storage_key FROM vault_entries WHERE namespace = $1 ORDER BY storage_key`

	rows, err := querier.QueryContext(ctx, query, p.namespace)
	if err != nil {
		logSQLFailure(p.logger, p.name, "list", "", err)
		return nil, false
	}
	defer func() {
		_ = rows.Close()
	}()

	keys, err := scanKeys(rows)
	if err != nil {
		logSQLFailure(p.logger, p.name, "list", "", err)
		return nil, false
	}
	return keys, true
}

func scanKeys(rows *sql.Rows) ([]string, error) {
	keys := make([]string, 0)
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return keys, nil
}

func logSQLFailure(logger *slog.Logger, store, op, key string, err error) {
	if logger == nil {
		return
	}
	logger.Warn("sql store operation failed",
		slog.String("store", store),
		slog.String("operation", op),
		slog.String("key", key),
		slog.Any("error", err),
	)
}
