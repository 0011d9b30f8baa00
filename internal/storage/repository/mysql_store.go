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

// MySQLStore is a durable Store persisting values in the vault_entries
// table of a MySQL database.
type MySQLStore struct {
	name      string
	namespace string
	db        *sql.DB
	txManager database.TxManager
	logger    *slog.Logger
}

// NewMySQLStore creates a MySQL-backed store scoped to namespace.
func NewMySQLStore(
	name string,
	db *sql.DB,
	txManager database.TxManager,
	namespace string,
	logger *slog.Logger,
) *MySQLStore {
	return &MySQLStore{
		name:      name,
		namespace: namespace,
		db:        db,
		txManager: txManager,
		logger:    logger,
	}
}

// Name returns the provider name.
func (p *MySQLStore) Name() string {
	return p.name
}

// Kind returns KindPersistent.
func (p *MySQLStore) Kind() storageDomain.Kind {
	return storageDomain.KindPersistent
}

// IsAvailable pings the database.
func (p *MySQLStore) IsAvailable(ctx context.Context) bool {
	if err := p.db.PingContext(ctx); err != nil {
		logSQLFailure(p.logger, p.name, "probe", "", err)
		return false
	}
	return true
}

// Write upserts the value for key.
func (p *MySQLStore) Write(ctx context.Context, key string, data []byte) bool {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO vault_entries (namespace, storage_key, data, updated_at)
			  VALUES (?, ?, ?, ?)
			  ON DUPLICATE KEY UPDATE data = VALUES(data), updated_at = VALUES(updated_at)`

	if _, err := querier.ExecContext(ctx, query, p.namespace, key, data, time.Now().UTC()); err != nil {
		logSQLFailure(p.logger, p.name, "write", key, err)
		return false
	}
	return true
}

// Read selects the value for key.
func (p *MySQLStore) Read(ctx context.Context, key string) ([]byte, storageDomain.Outcome) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT data FROM vault_entries WHERE namespace = ? AND storage_key = ?`

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
func (p *MySQLStore) Delete(ctx context.Context, key string) bool {
	querier := database.GetTx(ctx, p.db)

	query := `DELETE FROM vault_entries WHERE namespace = ? AND storage_key = ?`

	if _, err := querier.ExecContext(ctx, query, p.namespace, key); err != nil {
		logSQLFailure(p.logger, p.name, "delete", key, err)
		return false
	}
	return true
}

// Shred overwrites the stored column once per pass and deletes the row, all
// inside one transaction.
func (p *MySQLStore) Shred(ctx context.Context, key string, passes []storageDomain.WipePass) bool {
	err := p.txManager.WithTx(ctx, func(ctx context.Context) error {
		querier := database.GetTx(ctx, p.db)

		var size int
		err := querier.QueryRowContext(
			ctx,
			`SELECT LENGTH(data) FROM vault_entries WHERE namespace = ? AND storage_key = ? FOR UPDATE`,
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
				`UPDATE vault_entries SET data = ? WHERE namespace = ? AND storage_key = ?`,
				pass.Pattern(size),
				p.namespace,
				key,
			); err != nil {
				return err
			}
		}

		_, err = querier.ExecContext(
			ctx,
			`DELETE FROM vault_entries WHERE namespace = ? AND storage_key = ?`,
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
func (p *MySQLStore) List(ctx context.Context) ([]string, bool) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT storage_key FROM vault_entries WHERE namespace = ? ORDER BY storage_key`

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
