package db

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/semanticapi/internal/server/repositories/nodes"
)

// InMemoryRepositoryManager is used when no DSN is configured.
type InMemoryRepositoryManager struct {
	nodes nodes.Repository
}

func NewInMemoryRepositoryManager() RepositoryManager {
	return InMemoryRepositoryManager{nodes: nodes.NewMemoryRepository()}
}

func (m InMemoryRepositoryManager) Conn() *sql.DB {
	return nil
}

func (m InMemoryRepositoryManager) RunMigrations(ctx context.Context) error {
	return nil
}

func (m InMemoryRepositoryManager) Nodes() nodes.Repository {
	return m.nodes
}

func (m InMemoryRepositoryManager) Close() error {
	return nil
}
