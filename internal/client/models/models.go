// Package models holds the client's view of API payloads.
package models

import (
	"encoding/json"
	"fmt"
)

// Server is one entry of GET /api/serverconf.
type Server struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url"`
}

func (s Server) String() string {
	return fmt.Sprintf("%d\t%s\t%s", s.ID, s.Name, s.URL)
}

// NodeValue is the body of GET /api/serverconf/{id}/allnodes/{icon}.
type NodeValue struct {
	Value  json.RawMessage `json:"value"`
	Status string          `json:"status"`
}
