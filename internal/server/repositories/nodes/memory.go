package nodes

import (
	"context"
	"slices"
	"sync"

	"github.com/dmitrijs2005/semanticapi/internal/common"
	"github.com/dmitrijs2005/semanticapi/internal/server/models"
)

var _ Repository = (*MemoryRepository)(nil)

type nodeKey struct {
	serverID int
	nodeID   string
}

type MemoryRepository struct {
	mu     sync.RWMutex
	values map[nodeKey]models.NodeValue
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{values: make(map[nodeKey]models.NodeValue)}
}

func (r *MemoryRepository) Get(ctx context.Context, serverID int, nodeID string) (*models.NodeValue, error) {
	r.mu.RLock()
	v, ok := r.values[nodeKey{serverID, nodeID}]
	r.mu.RUnlock()

	if !ok {
		return nil, common.ErrorNotFound
	}
	v.Value = slices.Clone(v.Value)
	return &v, nil
}

func (r *MemoryRepository) Put(ctx context.Context, v *models.NodeValue) error {
	stored := *v
	stored.Value = slices.Clone(v.Value)

	r.mu.Lock()
	r.values[nodeKey{v.ServerID, v.NodeID}] = stored
	r.mu.Unlock()
	return nil
}
