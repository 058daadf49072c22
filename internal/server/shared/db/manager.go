// Package db opens the server's storage backend and hands out repositories.
package db

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/semanticapi/internal/server/repositories/nodes"
)

type RepositoryManager interface {
	RunMigrations(context.Context) error
	Conn() *sql.DB
	Nodes() nodes.Repository
	Close() error
}
