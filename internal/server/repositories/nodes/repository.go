// Package nodes stores the last known value of each OPC-UA node per server.
package nodes

import (
	"context"

	"github.com/dmitrijs2005/semanticapi/internal/server/models"
)

type Repository interface {
	// Get returns common.ErrorNotFound when the node has never been written.
	Get(ctx context.Context, serverID int, nodeID string) (*models.NodeValue, error)
	Put(ctx context.Context, v *models.NodeValue) error
}
