package serverconf

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dmitrijs2005/semanticapi/internal/common"
	"github.com/dmitrijs2005/semanticapi/internal/logging"
	"github.com/dmitrijs2005/semanticapi/internal/server/models"
	"github.com/dmitrijs2005/semanticapi/internal/server/repositories/nodes"
)

type NodeService struct {
	servers *Registry
	repo    nodes.Repository
	logger  logging.Logger
	now     func() time.Time
}

func NewNodeService(servers *Registry, repo nodes.Repository, l logging.Logger) *NodeService {
	return &NodeService{
		servers: servers,
		repo:    repo,
		logger:  l.With("module", "serverconf"),
		now:     time.Now,
	}
}

func (s *NodeService) resolve(serverID int, icon string) (models.NodeID, error) {
	if _, err := s.servers.Lookup(serverID); err != nil {
		return models.NodeID{}, err
	}
	id, err := models.ParseNodeID(icon)
	if err != nil {
		return models.NodeID{}, fmt.Errorf("%w: %v", common.ErrorValidation, err)
	}
	return id, nil
}

// Get returns the stored value of a node.
func (s *NodeService) Get(ctx context.Context, serverID int, icon string) (*models.NodeValue, error) {
	id, err := s.resolve(serverID, icon)
	if err != nil {
		return nil, err
	}

	v, err := s.repo.Get(ctx, serverID, id.String())
	if err != nil {
		return nil, err
	}
	return v, nil
}

// Put stores body as the node's new value. body must be valid JSON.
func (s *NodeService) Put(ctx context.Context, serverID int, icon string, body []byte) error {
	id, err := s.resolve(serverID, icon)
	if err != nil {
		return err
	}
	if !json.Valid(body) {
		return fmt.Errorf("%w: body is not valid JSON", common.ErrorValidation)
	}

	v := &models.NodeValue{
		ServerID:  serverID,
		NodeID:    id.String(),
		Value:     json.RawMessage(body),
		Status:    models.StatusGood,
		UpdatedAt: s.now().UTC(),
	}
	if err := s.repo.Put(ctx, v); err != nil {
		s.logger.Error(ctx, "node write failed", "server", serverID, "node", id.OPCUA(), "error", err)
		return fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}

	s.logger.Info(ctx, "node written", "server", serverID, "node", id.OPCUA())
	return nil
}

// Servers lists the configured servers.
func (s *NodeService) Servers() []models.Server {
	return s.servers.List()
}
