// Package serverconf resolves configured OPC-UA servers and serves the last
// known values of their nodes.
package serverconf

import (
	"fmt"

	"github.com/dmitrijs2005/semanticapi/internal/common"
	"github.com/dmitrijs2005/semanticapi/internal/server/config"
	"github.com/dmitrijs2005/semanticapi/internal/server/models"
)

// Registry is a read-only index over config.ServerOptions.
type Registry struct {
	byID    map[int]config.ServerIdentity
	servers []models.Server
}

// NewRegistry rejects duplicate ids.
func NewRegistry(opts config.ServerOptions) (*Registry, error) {
	r := &Registry{
		byID:    make(map[int]config.ServerIdentity, len(opts.Servers)),
		servers: make([]models.Server, 0, len(opts.Servers)),
	}

	for _, s := range opts.Servers {
		if _, dup := r.byID[s.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate server id %d", common.ErrorValidation, s.ID)
		}
		r.byID[s.ID] = s
		r.servers = append(r.servers, models.Server{ID: s.ID, Name: s.Name, URL: s.URL})
	}
	return r, nil
}

func (r *Registry) Lookup(id int) (config.ServerIdentity, error) {
	s, ok := r.byID[id]
	if !ok {
		return config.ServerIdentity{}, fmt.Errorf("server %d: %w", id, common.ErrorNotFound)
	}
	return s, nil
}

// List returns the servers in configuration order.
func (r *Registry) List() []models.Server {
	out := make([]models.Server, len(r.servers))
	copy(out, r.servers)
	return out
}
