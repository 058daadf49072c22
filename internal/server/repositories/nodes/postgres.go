package nodes

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/semanticapi/internal/common"
	"github.com/dmitrijs2005/semanticapi/internal/dbx"
	"github.com/dmitrijs2005/semanticapi/internal/server/models"
)

var _ Repository = (*PostgresRepository)(nil)

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Get(ctx context.Context, serverID int, nodeID string) (*models.NodeValue, error) {
	query :=
		`SELECT server_id, node_id, value, status, updated_at FROM node_values
		 WHERE server_id = $1 AND node_id = $2
		 `

	v := &models.NodeValue{}
	var raw []byte
	err := r.db.QueryRowContext(ctx, query, serverID, nodeID).
		Scan(&v.ServerID, &v.NodeID, &raw, &v.Status, &v.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	v.Value = raw
	return v, nil
}

// Put upserts the current value and appends it to node_writes in one
// transaction.
func (r *PostgresRepository) Put(ctx context.Context, v *models.NodeValue) error {
	return dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		upsert :=
			`INSERT INTO node_values (server_id, node_id, value, status, updated_at)
			 VALUES ($1, $2, $3, $4, $5)
			 ON CONFLICT (server_id, node_id)
			 DO UPDATE SET value = EXCLUDED.value, status = EXCLUDED.status, updated_at = EXCLUDED.updated_at
			 `
		if _, err := tx.ExecContext(ctx, upsert, v.ServerID, v.NodeID, []byte(v.Value), v.Status, v.UpdatedAt); err != nil {
			return fmt.Errorf("error performing sql request: %w", err)
		}

		history :=
			`INSERT INTO node_writes (server_id, node_id, value, written_at)
			 VALUES ($1, $2, $3, $4)
			 `
		if _, err := tx.ExecContext(ctx, history, v.ServerID, v.NodeID, []byte(v.Value), v.UpdatedAt); err != nil {
			return fmt.Errorf("error performing sql request: %w", err)
		}

		return nil
	})
}
