package client

import (
	"context"
	"encoding/json"

	"github.com/dmitrijs2005/semanticapi/internal/client/models"
)

// TokenClient talks to the token service.
type TokenClient interface {
	Close() error
	Login(ctx context.Context, username string, password []byte) error
	Refresh(ctx context.Context) (bool, error)
	IsRefreshable(ctx context.Context) (bool, error)
	WhoAmI(ctx context.Context) (string, error)
	Ping(ctx context.Context) error
}

// DataClient reads and writes node values over the HTTP API.
type DataClient interface {
	Servers(ctx context.Context) ([]models.Server, error)
	GetNode(ctx context.Context, serverID int, icon string) (*models.NodeValue, error)
	PostNode(ctx context.Context, serverID int, icon string, value json.RawMessage) error
	Logout(ctx context.Context) error
}
